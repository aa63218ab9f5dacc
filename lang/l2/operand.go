// Package l2 implements L2, the pre-register-allocation IL produced by
// tiling L3. L2 keeps L3's three-address instruction shapes
// but widens the operand vocabulary with Register, so that the register
// allocator (lang/regalloc) can work purely by operand substitution:
// colouring replaces every Variable operand with the Register it was
// assigned, and spilling replaces it with a MemoryLocation addressing a
// stack slot plus the Load/Store pair needed to get a value in and out
// of it. This keeps L2 and L1 the same instruction shapes,
// differing only in which operand variant fills each slot.
package l2

import (
	"fmt"

	"github.com/mna/sixpass/lang/ilnum"
)

// Reg names one of the sixteen general-purpose x86-64 registers this
// compiler's register allocator draws from.
type Reg string

const (
	R8  Reg = "r8"
	R9  Reg = "r9"
	R10 Reg = "r10"
	R11 Reg = "r11"
	R12 Reg = "r12"
	R13 Reg = "r13"
	R14 Reg = "r14"
	R15 Reg = "r15"
	RAX Reg = "rax"
	RBX Reg = "rbx"
	RCX Reg = "rcx"
	RDX Reg = "rdx"
	RDI Reg = "rdi"
	RSI Reg = "rsi"
	RBP Reg = "rbp"
	RSP Reg = "rsp"
)

// GPRegisters lists every allocatable register in a fixed order; the
// allocator's colouring pass assigns colours 0..len(GPRegisters)-1 to
// this slice's indices. rbp and rsp are excluded: they are reserved for
// the frame pointer and stack pointer and never hold a coloured
// variable.
var GPRegisters = []Reg{R8, R9, R10, R11, R12, R13, R14, R15, RAX, RBX, RCX, RDX, RDI, RSI}

// CallerSaved lists the registers a callee is free to clobber.
var CallerSaved = []Reg{R10, R11, RAX, RCX, RDX, RDI, RSI, R8, R9}

// ArgRegisters lists the registers used for the first six call
// arguments, in order.
var ArgRegisters = []Reg{RDI, RSI, RDX, RCX, R8, R9}

// Operand is implemented by every L2/L1 operand.
type Operand interface {
	isOperand()
	String() string
}

// Register is a physical register, the form every Variable is replaced
// with once the allocator colours it successfully.
type Register struct{ Reg Reg }

func (Register) isOperand()     {}
func (r Register) String() string { return string(r.Reg) }

// Variable is an allocator-visible virtual register; it only survives
// into L1 if spilling could not avoid it (which should never happen,
// since a spilled variable is always rewritten to a stack MemoryLocation
// before L1 is emitted).
type Variable struct{ Name string }

func (Variable) isOperand()     {}
func (v Variable) String() string { return "%" + v.Name }

// Number is an immediate tagged integer.
type Number int64

func (Number) isOperand()     {}
func (n Number) String() string { return fmt.Sprintf("%d", int64(n)) }

// MemoryLocation addresses Base+Offset, where Base is a Register or
// Variable and Offset is a fixed byte displacement.
type MemoryLocation struct {
	Base   Operand
	Offset int64
}

func (MemoryLocation) isOperand() {}
func (m MemoryLocation) String() string {
	return fmt.Sprintf("mem %s %d", m.Base, m.Offset)
}

// FunctionName names a user-defined function by its LB-level name.
type FunctionName struct{ Name string }

func (FunctionName) isOperand()     {}
func (f FunctionName) String() string { return "@" + f.Name }

// IncomingArgsBase stands in for the stack pointer as it was at function
// entry, before the prologue reserves space for locals and spills. A
// seventh-or-later parameter is read relative to this base rather than
// Register{RSP} directly, since the frame size it has to clear isn't
// known until the register allocator finishes spilling; the allocator's
// frame-finalization step rewrites every occurrence to Register{RSP}
// with the final frame size folded into the offset, the same pass that
// assigns Function.StackSlots.
type IncomingArgsBase struct{}

func (IncomingArgsBase) isOperand()     {}
func (IncomingArgsBase) String() string { return "argbase" }

// Label names a block within the same function.
type Label struct{ Name string }

func (Label) isOperand()     {}
func (l Label) String() string { return ":" + l.Name }

// RuntimeFunction names one of the five fixed runtime entry points.
type RuntimeFunction struct{ Func ilnum.RuntimeFunc }

func (RuntimeFunction) isOperand()     {}
func (r RuntimeFunction) String() string { return r.Func.String() }

var regByName = func() map[string]Reg {
	m := map[string]Reg{}
	for _, r := range append(append([]Reg{}, GPRegisters...), RBP, RSP) {
		m[string(r)] = r
	}
	return m
}()

// LookupReg returns the Reg named by s, if any.
func LookupReg(s string) (Reg, bool) {
	r, ok := regByName[s]
	return r, ok
}
