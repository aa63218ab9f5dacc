// Package la implements the LA intermediate language: a flat instruction
// set over typed, globally-unique-named variables, with two-target
// conditional branches. LB lowers to LA by eliminating lexical scope,
// if/while, and continue/break; the lower package owns that
// transformation. la.Instr satisfies cfg.Instr so lang/cfg can build and
// validate LA's control-flow graphs.
package la

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
)

// Instr is implemented by every LA instruction.
type Instr interface {
	IsTerminator() bool
	Targets() []string
	String() string
}

// Decl declares name with its static type; every variable referenced
// anywhere in the function must have exactly one Decl.
type Decl struct {
	Name string
	Type iltype.Type
}

func (Decl) IsTerminator() bool { return false }
func (Decl) Targets() []string  { return nil }
func (d Decl) String() string   { return fmt.Sprintf("var %%%s %s", d.Name, d.Type) }

// Assign copies Src into Dst.
type Assign struct {
	Dst operand.Variable
	Src operand.Operand
}

func (Assign) IsTerminator() bool { return false }
func (Assign) Targets() []string  { return nil }
func (a Assign) String() string   { return fmt.Sprintf("%s <- %s", a.Dst, a.Src) }

// Arith computes Dst <- L Op R.
type Arith struct {
	Dst  operand.Variable
	Op   ilnum.ArithOp
	L, R operand.Operand
}

func (Arith) IsTerminator() bool { return false }
func (Arith) Targets() []string  { return nil }
func (a Arith) String() string   { return fmt.Sprintf("%s <- %s %s %s", a.Dst, a.L, a.Op, a.R) }

// Load reads the memory location addressed by Mem into Dst. Pos is the
// source position of the memory expression that produced it, carried
// through to the tagging pass so a failing bounds check can report the
// line to the runtime; it is not part of Load's textual form and does
// not round-trip through Fprint/ParseBytes.
type Load struct {
	Dst operand.Variable
	Mem operand.MemoryLocation
	Pos token.Pos
}

func (Load) IsTerminator() bool { return false }
func (Load) Targets() []string  { return nil }
func (l Load) String() string   { return fmt.Sprintf("%s <- %s", l.Dst, l.Mem) }

// Store writes Src into the memory location addressed by Mem. Pos carries
// the same tagging-pass information as Load.Pos.
type Store struct {
	Mem operand.MemoryLocation
	Src operand.Operand
	Pos token.Pos
}

func (Store) IsTerminator() bool { return false }
func (Store) Targets() []string  { return nil }
func (s Store) String() string   { return fmt.Sprintf("%s <- %s", s.Mem, s.Src) }

// Len reads an array's extent along Dim (nil for rank-1 arrays and
// tuples) into Dst.
type Len struct {
	Dst operand.Variable
	Arr operand.Variable
	Dim operand.Operand // nil for rank-1/tuple
}

func (Len) IsTerminator() bool { return false }
func (Len) Targets() []string  { return nil }
func (l Len) String() string {
	if l.Dim == nil {
		return fmt.Sprintf("%s <- length(%s)", l.Dst, l.Arr)
	}
	return fmt.Sprintf("%s <- length(%s, %s)", l.Dst, l.Arr, l.Dim)
}

// NewArray allocates a fresh array of the given dimensions; the array's
// rank is len(Dims).
type NewArray struct {
	Dst  operand.Variable
	Dims []operand.Operand
}

func (NewArray) IsTerminator() bool { return false }
func (NewArray) Targets() []string  { return nil }
func (n NewArray) String() string {
	parts := make([]string, len(n.Dims))
	for i, d := range n.Dims {
		parts[i] = d.String()
	}
	return fmt.Sprintf("%s <- new Array(%s)", n.Dst, strings.Join(parts, ", "))
}

// NewTuple allocates a fresh tuple of the given length.
type NewTuple struct {
	Dst operand.Variable
	Len operand.Operand
}

func (NewTuple) IsTerminator() bool { return false }
func (NewTuple) Targets() []string  { return nil }
func (n NewTuple) String() string   { return fmt.Sprintf("%s <- new Tuple(%s)", n.Dst, n.Len) }

// Call invokes Callee for its side effect only; any result is discarded.
type Call struct {
	Callee operand.Operand
	Args   []operand.Operand
}

func (Call) IsTerminator() bool { return false }
func (Call) Targets() []string  { return nil }
func (c Call) String() string   { return fmt.Sprintf("call %s %s", c.Callee, joinOperands(c.Args)) }

// CallAssign invokes Callee and stores its result in Dst.
type CallAssign struct {
	Dst    operand.Variable
	Callee operand.Operand
	Args   []operand.Operand
}

func (CallAssign) IsTerminator() bool { return false }
func (CallAssign) Targets() []string  { return nil }
func (c CallAssign) String() string {
	return fmt.Sprintf("%s <- call %s %s", c.Dst, c.Callee, joinOperands(c.Args))
}

// Return exits a void function.
type Return struct{}

func (Return) IsTerminator() bool { return true }
func (Return) Targets() []string  { return nil }
func (Return) String() string     { return "return" }

// ReturnVal exits a function with a value.
type ReturnVal struct {
	Value operand.Operand
}

func (ReturnVal) IsTerminator() bool { return true }
func (ReturnVal) Targets() []string  { return nil }
func (r ReturnVal) String() string   { return fmt.Sprintf("return %s", r.Value) }

// Branch is an unconditional jump.
type Branch struct {
	Target string
}

func (Branch) IsTerminator() bool    { return true }
func (b Branch) Targets() []string   { return []string{b.Target} }
func (b Branch) String() string      { return fmt.Sprintf("goto :%s", b.Target) }

// CJump is LA's two-target conditional branch: control transfers to True
// when L Op R holds, to False otherwise. The IR/L3 lowering that follows
// rewrites this into a one-target cjump with an implicit fall-through.
type CJump struct {
	Op          ilnum.CmpOp
	L, R        operand.Operand
	True, False string
}

func (CJump) IsTerminator() bool  { return true }
func (c CJump) Targets() []string { return []string{c.True, c.False} }
func (c CJump) String() string {
	return fmt.Sprintf("if %s %s %s goto :%s else :%s", c.L, c.Op, c.R, c.True, c.False)
}

func joinOperands(ops []operand.Operand) string {
	parts := make([]string, len(ops))
	for i, o := range ops {
		parts[i] = o.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
