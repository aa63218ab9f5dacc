package lb

import (
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/token"
)

// Expr is implemented by every LB expression node. Unlike LA and below,
// LB expressions may nest arbitrarily deep; package lower flattens each
// one into a sequence of three-operand instructions.
type Expr interface {
	Node
	isExpr()
}

// VarExpr is a reference to a declared variable.
type VarExpr struct {
	Name string
	Pos  token.Pos
}

func (*VarExpr) isExpr()                        {}
func (e *VarExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// NumberExpr is an integer literal.
type NumberExpr struct {
	Value int64
	Pos   token.Pos
}

func (*NumberExpr) isExpr()                        {}
func (e *NumberExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// BinExpr is a binary arithmetic expression.
type BinExpr struct {
	Op   ilnum.ArithOp
	L, R Expr
	Pos  token.Pos
}

func (*BinExpr) isExpr() {}
func (e *BinExpr) Span() (token.Pos, token.Pos) {
	start, _ := e.L.Span()
	_, end := e.R.Span()
	return start, end
}

// CmpExpr is a comparison expression; it may only appear as the
// condition of an IfStmt or WhileStmt.
type CmpExpr struct {
	Op   ilnum.CmpOp
	L, R Expr
	Pos  token.Pos
}

func (*CmpExpr) isExpr() {}
func (e *CmpExpr) Span() (token.Pos, token.Pos) {
	start, _ := e.L.Span()
	_, end := e.R.Span()
	return start, end
}

// MemExpr addresses one element of an array or tuple variable: Base
// indexed by Indices, one index per array dimension, or a single index
// for a tuple.
type MemExpr struct {
	Base    string
	Indices []Expr
	Pos     token.Pos
}

func (*MemExpr) isExpr()                        {}
func (e *MemExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// LoadExpr reads the value addressed by Mem.
type LoadExpr struct {
	Mem *MemExpr
}

func (*LoadExpr) isExpr()                        {}
func (e *LoadExpr) Span() (token.Pos, token.Pos) { return e.Mem.Span() }

// LenExpr is the array-length or tuple-length operator. Dim is nil for a
// tuple or a rank-1 array; for rank>=2 it selects which dimension's
// extent to read.
type LenExpr struct {
	Var string
	Dim Expr
	Pos token.Pos
}

func (*LenExpr) isExpr()                        {}
func (e *LenExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// NewArrayExpr allocates a fresh array with one size per dimension; its
// rank is len(Dims).
type NewArrayExpr struct {
	Dims []Expr
	Pos  token.Pos
}

func (*NewArrayExpr) isExpr()                        {}
func (e *NewArrayExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// NewTupleExpr allocates a fresh tuple of the given length.
type NewTupleExpr struct {
	Len Expr
	Pos token.Pos
}

func (*NewTupleExpr) isExpr()                        {}
func (e *NewTupleExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }

// CallExpr invokes either a user-defined function or one of the five
// fixed runtime entry points, used in expression position.
type CallExpr struct {
	Callee    string
	IsRuntime bool
	Args      []Expr
	Pos       token.Pos
}

func (*CallExpr) isExpr()                        {}
func (e *CallExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }
