// Package l1 is the register-allocated IL the register allocator
// produces from L2: every instruction shape, operand
// vocabulary, and textual format is identical to L2's, the only
// difference being that colouring has replaced each Variable with a
// Register, or spilling has replaced it with a stack MemoryLocation.
// Because nothing about the shape changes, this package re-exports
// lang/l2's types directly rather than redeclaring them, and adds the
// two things that are genuinely L1-specific: a reference interpreter
// for the compiler's -i flag and the final x86-64 text emission.
package l1

import "github.com/mna/sixpass/lang/l2"

type (
	Program         = l2.Program
	Function        = l2.Function
	Block           = l2.Block
	Instr           = l2.Instr
	Operand         = l2.Operand
	Register        = l2.Register
	Variable        = l2.Variable
	Number          = l2.Number
	MemoryLocation  = l2.MemoryLocation
	FunctionName    = l2.FunctionName
	Label           = l2.Label
	RuntimeFunction = l2.RuntimeFunction
	Reg             = l2.Reg
)

var (
	ParseBytes = l2.ParseBytes
	Fprint     = l2.Fprint
)
