// Package ir implements the IR intermediate language: LA with variables
// erased to untyped tagged integers/pointers and every array/tuple
// access preceded by an explicit null or bounds check branching to a
// per-function error-handler block. Its instruction shapes
// mirror la's one-for-one; only the Decl and type-carrying fields are
// gone, since a tagged value's representation no longer depends on a
// static type.
package ir

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/operand"
)

// Instr is implemented by every IR instruction.
type Instr interface {
	IsTerminator() bool
	Targets() []string
	String() string
}

// Assign copies Src into Dst.
type Assign struct {
	Dst operand.Variable
	Src operand.Operand
}

func (Assign) IsTerminator() bool { return false }
func (Assign) Targets() []string  { return nil }
func (a Assign) String() string   { return fmt.Sprintf("%s <- %s", a.Dst, a.Src) }

// Arith computes Dst <- L Op R over tagged integers.
type Arith struct {
	Dst  operand.Variable
	Op   ilnum.ArithOp
	L, R operand.Operand
}

func (Arith) IsTerminator() bool { return false }
func (Arith) Targets() []string  { return nil }
func (a Arith) String() string   { return fmt.Sprintf("%s <- %s %s %s", a.Dst, a.L, a.Op, a.R) }

// Load reads the memory location addressed by Mem into Dst. By the time
// a Load appears in an IR block, the tagging pass has already emitted
// the CJump(s) proving Mem's base is non-null and its indices in range.
type Load struct {
	Dst operand.Variable
	Mem operand.MemoryLocation
}

func (Load) IsTerminator() bool { return false }
func (Load) Targets() []string  { return nil }
func (l Load) String() string   { return fmt.Sprintf("%s <- %s", l.Dst, l.Mem) }

// Store writes Src into the checked memory location addressed by Mem.
type Store struct {
	Mem operand.MemoryLocation
	Src operand.Operand
}

func (Store) IsTerminator() bool { return false }
func (Store) Targets() []string  { return nil }
func (s Store) String() string   { return fmt.Sprintf("%s <- %s", s.Mem, s.Src) }

// Len reads an array's tagged extent along Dim (nil for rank-1/tuple).
type Len struct {
	Dst operand.Variable
	Arr operand.Variable
	Dim operand.Operand
}

func (Len) IsTerminator() bool { return false }
func (Len) Targets() []string  { return nil }
func (l Len) String() string {
	if l.Dim == nil {
		return fmt.Sprintf("%s <- length(%s)", l.Dst, l.Arr)
	}
	return fmt.Sprintf("%s <- length(%s, %s)", l.Dst, l.Arr, l.Dim)
}

// NewArray calls the allocate runtime entry point to build a fresh array
// of the given (already tagged) dimensions.
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

// NewTuple calls the allocate runtime entry point to build a fresh tuple.
type NewTuple struct {
	Dst operand.Variable
	Len operand.Operand
}

func (NewTuple) IsTerminator() bool { return false }
func (NewTuple) Targets() []string  { return nil }
func (n NewTuple) String() string   { return fmt.Sprintf("%s <- new Tuple(%s)", n.Dst, n.Len) }

// Call invokes Callee for its side effect only.
type Call struct {
	Callee operand.Operand
	Args   []operand.Operand
}

func (Call) IsTerminator() bool { return false }
func (Call) Targets() []string  { return nil }
func (c Call) String() string   { return fmt.Sprintf("call %s%s", c.Callee, joinOperands(c.Args)) }

// CallAssign invokes Callee and stores its result in Dst.
type CallAssign struct {
	Dst    operand.Variable
	Callee operand.Operand
	Args   []operand.Operand
}

func (CallAssign) IsTerminator() bool { return false }
func (CallAssign) Targets() []string  { return nil }
func (c CallAssign) String() string {
	return fmt.Sprintf("%s <- call %s%s", c.Dst, c.Callee, joinOperands(c.Args))
}

// Return exits a void function.
type Return struct{}

func (Return) IsTerminator() bool { return true }
func (Return) Targets() []string  { return nil }
func (Return) String() string     { return "return" }

// ReturnVal exits a function with a tagged value.
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

func (Branch) IsTerminator() bool  { return true }
func (b Branch) Targets() []string { return []string{b.Target} }
func (b Branch) String() string    { return fmt.Sprintf("goto :%s", b.Target) }

// CJump is IR's two-target conditional branch, used both for
// source-level if/while conditions lowered from LA and for the
// tagging pass's synthetic null/bounds checks. The IR
// trace scheduler (lang/trace) is what eventually collapses this to
// L3's one-target form by choosing which side falls through.
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
