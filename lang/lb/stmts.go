package lb

import (
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/token"
)

// Stmt is implemented by every LB statement node.
type Stmt interface {
	Node
	isStmt()
}

// DeclStmt declares a new variable, visible from this point to the end
// of the enclosing Block. A variable may be declared
// without an initializer; reading it before assignment is a Non-goal
// check this compiler does not perform.
type DeclStmt struct {
	Name string
	Type iltype.Type
	Init Expr // nil if no initializer
	Pos  token.Pos
}

func (*DeclStmt) isStmt()                        {}
func (s *DeclStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Pos }

// AssignStmt writes Rhs into Lhs, which must be a *VarExpr or a *MemExpr.
type AssignStmt struct {
	Lhs Expr
	Rhs Expr
	Pos token.Pos
}

func (*AssignStmt) isStmt() {}
func (s *AssignStmt) Span() (token.Pos, token.Pos) {
	start, _ := s.Lhs.Span()
	_, end := s.Rhs.Span()
	return start, end
}

// CallStmt is a call made for its side effect; its result, if any, is
// discarded.
type CallStmt struct {
	Call *CallExpr
}

func (*CallStmt) isStmt()                        {}
func (s *CallStmt) Span() (token.Pos, token.Pos) { return s.Call.Span() }

// IfStmt is a two-armed conditional; Else is nil when the source had no
// else clause.
type IfStmt struct {
	Cond       *CmpExpr
	Then, Else *Block
	Pos        token.Pos
}

func (*IfStmt) isStmt()                        {}
func (s *IfStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Then.End }

// WhileStmt is a pre-tested loop. Break and Continue statements lexically
// inside Body target this loop's exit and re-test respectively, resolved
// via the lowerer's loop-context stack.
type WhileStmt struct {
	Cond *CmpExpr
	Body *Block
	Pos  token.Pos
}

func (*WhileStmt) isStmt()                        {}
func (s *WhileStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Body.End }

// BreakStmt exits the nearest lexically enclosing WhileStmt. It is an
// Input-malformed error outside any loop.
type BreakStmt struct {
	Pos token.Pos
}

func (*BreakStmt) isStmt()                        {}
func (s *BreakStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Pos }

// ContinueStmt jumps to the re-test of the nearest lexically enclosing
// WhileStmt. It is an Input-malformed error outside any loop.
type ContinueStmt struct {
	Pos token.Pos
}

func (*ContinueStmt) isStmt()                        {}
func (s *ContinueStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Pos }

// ReturnStmt exits the enclosing function. Value is nil iff the
// function's declared return type is iltype.Void.
type ReturnStmt struct {
	Value Expr
	Pos   token.Pos
}

func (*ReturnStmt) isStmt()                        {}
func (s *ReturnStmt) Span() (token.Pos, token.Pos) { return s.Pos, s.Pos }
