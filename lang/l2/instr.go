package l2

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
)

// Instr is implemented by every L2/L1 instruction.
type Instr interface {
	IsTerminator() bool
	Targets() []string
	String() string
	// Defs and Uses report the operands this instruction writes and
	// reads, in the vocabulary liveness analysis needs: Defs
	// is at most one operand (this IL has no multi-assignment), Uses may
	// be several. Register and Number operands are included for
	// uniformity but liveness only tracks Variable entries.
	Defs() []Operand
	Uses() []Operand
}

// Assign copies Src into Dst.
type Assign struct {
	Dst Operand
	Src Operand
}

func (Assign) IsTerminator() bool { return false }
func (Assign) Targets() []string  { return nil }
func (a Assign) String() string   { return fmt.Sprintf("%s <- %s", a.Dst, a.Src) }
func (a Assign) Defs() []Operand  { return []Operand{a.Dst} }
func (a Assign) Uses() []Operand  { return []Operand{a.Src} }

// Arith computes Dst <- L Op R.
type Arith struct {
	Dst  Operand
	Op   ilnum.ArithOp
	L, R Operand
}

func (Arith) IsTerminator() bool { return false }
func (Arith) Targets() []string  { return nil }
func (a Arith) String() string   { return fmt.Sprintf("%s <- %s %s %s", a.Dst, a.L, a.Op, a.R) }
func (a Arith) Defs() []Operand  { return []Operand{a.Dst} }
func (a Arith) Uses() []Operand  { return []Operand{a.L, a.R} }

// Load reads the memory location Mem into Dst.
type Load struct {
	Dst Operand
	Mem MemoryLocation
}

func (Load) IsTerminator() bool { return false }
func (Load) Targets() []string  { return nil }
func (l Load) String() string   { return fmt.Sprintf("%s <- %s", l.Dst, l.Mem) }
func (l Load) Defs() []Operand  { return []Operand{l.Dst} }
func (l Load) Uses() []Operand  { return []Operand{l.Mem.Base} }

// Store writes Src into the memory location Mem.
type Store struct {
	Mem MemoryLocation
	Src Operand
}

func (Store) IsTerminator() bool { return false }
func (Store) Targets() []string  { return nil }
func (s Store) String() string   { return fmt.Sprintf("%s <- %s", s.Mem, s.Src) }
func (s Store) Defs() []Operand  { return nil }
func (s Store) Uses() []Operand  { return []Operand{s.Mem.Base, s.Src} }

// Len reads an array's tagged extent along Dim (nil for rank-1/tuple).
type Len struct {
	Dst Operand
	Arr Operand
	Dim Operand
}

func (Len) IsTerminator() bool { return false }
func (Len) Targets() []string  { return nil }
func (l Len) String() string {
	if l.Dim == nil {
		return fmt.Sprintf("%s <- length(%s)", l.Dst, l.Arr)
	}
	return fmt.Sprintf("%s <- length(%s, %s)", l.Dst, l.Arr, l.Dim)
}
func (l Len) Defs() []Operand { return []Operand{l.Dst} }
func (l Len) Uses() []Operand {
	if l.Dim == nil {
		return []Operand{l.Arr}
	}
	return []Operand{l.Arr, l.Dim}
}

// NewArray calls the allocate runtime entry point.
type NewArray struct {
	Dst  Operand
	Dims []Operand
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
func (n NewArray) Defs() []Operand { return []Operand{n.Dst} }
func (n NewArray) Uses() []Operand { return n.Dims }

// NewTuple calls the allocate runtime entry point.
type NewTuple struct {
	Dst Operand
	Len Operand
}

func (NewTuple) IsTerminator() bool { return false }
func (NewTuple) Targets() []string  { return nil }
func (n NewTuple) String() string   { return fmt.Sprintf("%s <- new Tuple(%s)", n.Dst, n.Len) }
func (n NewTuple) Defs() []Operand  { return []Operand{n.Dst} }
func (n NewTuple) Uses() []Operand  { return []Operand{n.Len} }

// Call invokes Callee for its side effect only. Every argument register
// is a use (the call site is responsible for having moved its actual
// arguments into ArgRegisters before the Call), and every caller-saved
// register is implicitly a def, since the callee may clobber it; that
// is modelled directly in Defs so liveness treats a call as killing
// caller-saved registers the way a real call would.
type Call struct {
	Callee Operand
	NArgs  int
}

func (Call) IsTerminator() bool { return false }
func (Call) Targets() []string  { return nil }
func (c Call) String() string   { return fmt.Sprintf("call %s %d", c.Callee, c.NArgs) }
func (c Call) Defs() []Operand {
	defs := make([]Operand, len(CallerSaved))
	for i, r := range CallerSaved {
		defs[i] = Register{Reg: r}
	}
	return defs
}
func (c Call) Uses() []Operand {
	uses := []Operand{c.Callee}
	for i := 0; i < c.NArgs && i < len(ArgRegisters); i++ {
		uses = append(uses, Register{Reg: ArgRegisters[i]})
	}
	return uses
}

// Return exits a void function.
type Return struct{}

func (Return) IsTerminator() bool { return true }
func (Return) Targets() []string  { return nil }
func (Return) String() string     { return "return" }
func (Return) Defs() []Operand    { return nil }
func (Return) Uses() []Operand    { return nil }

// ReturnVal exits a function, first moving Value into rax.
type ReturnVal struct {
	Value Operand
}

func (ReturnVal) IsTerminator() bool { return true }
func (ReturnVal) Targets() []string  { return nil }
func (r ReturnVal) String() string   { return fmt.Sprintf("return %s", r.Value) }
func (r ReturnVal) Defs() []Operand  { return []Operand{Register{Reg: RAX}} }
func (r ReturnVal) Uses() []Operand  { return []Operand{r.Value} }

// Branch is an unconditional jump.
type Branch struct {
	Target string
}

func (Branch) IsTerminator() bool  { return true }
func (b Branch) Targets() []string { return []string{b.Target} }
func (b Branch) String() string    { return fmt.Sprintf("goto :%s", b.Target) }
func (b Branch) Defs() []Operand   { return nil }
func (b Branch) Uses() []Operand   { return nil }

// CJump is L2's one-target conditional branch, inherited unchanged from
// L3 (the tiling pass never needs to reintroduce a second target).
type CJump struct {
	Op   ilnum.CmpOp
	L, R Operand
	True string
}

func (CJump) IsTerminator() bool  { return true }
func (c CJump) Targets() []string { return []string{c.True} }
func (c CJump) String() string {
	return fmt.Sprintf("if %s %s %s goto :%s", c.L, c.Op, c.R, c.True)
}
func (c CJump) Defs() []Operand { return nil }
func (c CJump) Uses() []Operand { return []Operand{c.L, c.R} }
