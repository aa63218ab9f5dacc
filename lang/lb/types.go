// Package lb implements the LB intermediate language: a block-structured,
// statically-typed surface syntax with lexical scoping, if/while, and
// continue/break. It is the highest-level IL in the pipeline; package
// lower eliminates its scopes and control structures to produce LA.
package lb

import (
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
)

// Node is implemented by every LB syntax node, replacing the deep
// inheritance + visitor dispatch of the source implementation with a
// closed, exhaustively-switched sum type.
type Node interface {
	Span() (start, end token.Pos)
}

// Program is the ordered function list; the first function is the entry
// point.
type Program struct {
	Funcs []*Function
}

// Param is one function parameter: a name and its static type.
type Param struct {
	Name string
	Type iltype.Type
}

// Function is a name, parameter list, return type, and a body block that
// introduces the function's top-level scope.
type Function struct {
	Name   string
	Params []Param
	Ret    iltype.Type
	Body   *Block
	Pos    token.Pos
}

func (f *Function) Span() (token.Pos, token.Pos) { return f.Pos, f.Pos }

// Block is a scope: an ordered statement list whose declarations are
// visible from the point of declaration to the end of the block,
// including nested blocks, and may shadow an outer declaration of the
// same name.
type Block struct {
	Stmts []Stmt
	Start token.Pos
	End   token.Pos
}

func (b *Block) Span() (token.Pos, token.Pos) { return b.Start, b.End }

// operandFromExpr type-asserts e to the single-operand leaf form used
// when an expression is exactly one variable or number, for callers that
// need an operand.Operand rather than an lb.Expr (e.g. lowering a trivial
// `a <- b` assignment). ok is false for compound expressions.
func operandFromExpr(e Expr) (operand.Operand, bool) {
	switch e := e.(type) {
	case *VarExpr:
		return operand.Variable{Name: e.Name}, true
	case *NumberExpr:
		return operand.Number(e.Value), true
	default:
		return nil, false
	}
}
