// Package operand implements the operand taxonomy shared by every IL:
// variables, integer literals, memory locations, labels, and callables
// (function names and runtime functions). The taxonomy is uniform across
// levels; each IL package restricts which operand kinds its instructions
// may hold.
package operand

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/iltype"
)

// Operand is implemented by every operand variant. It replaces the deep
// inheritance + visitor dispatch of the source implementation with a
// closed, exhaustively-switched sum type.
type Operand interface {
	isOperand()
	String() string
}

// Variable is a named symbol, unique within its owning function.
type Variable struct {
	Name string
	Typ  iltype.Type // nil at IL levels where operands are untyped (IR/L3/L2/L1)
}

func (Variable) isOperand()     {}
func (v Variable) String() string { return "%" + v.Name }

// Number is a 64-bit signed integer literal.
type Number int64

func (Number) isOperand()       {}
func (n Number) String() string { return fmt.Sprintf("%d", int64(n)) }

// MemoryLocation addresses a base variable plus an index list. The index
// count equals the array rank, or is exactly 1 for a tuple access.
type MemoryLocation struct {
	Base    Variable
	Indices []Operand
}

func (MemoryLocation) isOperand() {}
func (m MemoryLocation) String() string {
	var sb strings.Builder
	sb.WriteString(m.Base.String())
	for _, idx := range m.Indices {
		sb.WriteByte('[')
		sb.WriteString(idx.String())
		sb.WriteByte(']')
	}
	return sb.String()
}

// Label is a named branch target, unique within its function and
// renameable to a program-globally-unique string by the LB→LA lowerer.
type Label struct {
	Name string
}

func (Label) isOperand()       {}
func (l Label) String() string { return ":" + l.Name }

// FunctionName is a symbolic reference to a user-defined callable.
type FunctionName struct {
	Name string
}

func (FunctionName) isOperand()       {}
func (f FunctionName) String() string { return "@" + f.Name }

// RuntimeFunction is a symbolic reference to one of the five fixed
// runtime library entry points.
type RuntimeFunction struct {
	Func ilnum.RuntimeFunc
}

func (RuntimeFunction) isOperand()       {}
func (f RuntimeFunction) String() string { return f.Func.String() }

// Vars returns the set of Variables directly referenced by op (its own
// identity if op is a Variable, its base and index variables if op is a
// MemoryLocation, or nil otherwise). It is the building block every
// GEN/KILL rule in the liveness analyser is expressed with.
func Vars(op Operand) []Variable {
	switch o := op.(type) {
	case Variable:
		return []Variable{o}
	case MemoryLocation:
		vars := []Variable{o.Base}
		for _, idx := range o.Indices {
			vars = append(vars, Vars(idx)...)
		}
		return vars
	default:
		return nil
	}
}
