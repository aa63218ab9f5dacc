// Package l3 implements L3, the three-address IL with a one-target
// conditional branch (the other target is always "fall through to the
// next block in this function's fixed linear order"). L3 only exists
// inside the ir pass: lang/trace picks the block order, lang/trace's
// reduce rewrites IR's two-target CJumps down to one target where the
// chosen order makes the second target redundant, and lang/tile builds
// expression trees and tiles directly from the result. L3 is never
// parsed or printed as a standalone file.
package l3

import (
	"fmt"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/operand"
)

// Instr is implemented by every L3 instruction.
type Instr interface {
	IsTerminator() bool
	Targets() []string
	String() string
}

// The non-branching IR instructions carry over to L3 unchanged; aliasing
// them rather than redeclaring keeps lang/tile's tree builder able to
// type-switch on one shared vocabulary for both ILs.
type (
	Assign     = ir.Assign
	Arith      = ir.Arith
	Load       = ir.Load
	Store      = ir.Store
	Len        = ir.Len
	NewArray   = ir.NewArray
	NewTuple   = ir.NewTuple
	Call       = ir.Call
	CallAssign = ir.CallAssign
	Return     = ir.Return
	ReturnVal  = ir.ReturnVal
	Branch     = ir.Branch
)

// CJump is L3's one-target conditional branch: control transfers to
// True when L Op R holds, otherwise execution falls through to the
// next block in the function's Blocks slice.
type CJump struct {
	Op   ilnum.CmpOp
	L, R operand.Operand
	True string
}

func (CJump) IsTerminator() bool  { return true }
func (c CJump) Targets() []string { return []string{c.True} }
func (c CJump) String() string {
	return fmt.Sprintf("if %s %s %s goto :%s", c.L, c.Op, c.R, c.True)
}

// Block is one basic block in fixed linear order; unlike lang/cfg.Block
// it carries no predecessor/successor indices, since after scheduling
// the only thing that matters is "what comes next in this slice".
type Block struct {
	Label  string
	Instrs []Instr
}

// Function is a scheduled, one-target-branch function body. The four
// error-handler labels carry over from ir.Function unchanged: scheduling
// only reorders and reduces branches, it never touches which block a
// safety check's failing edge targets.
type Function struct {
	Name   string
	Params []string
	Blocks []*Block

	NullCheckFail string
	TensorError3  string
	TensorError4  string
	TupleError3   string
}

// Program is the ordered function list.
type Program struct {
	Funcs []*Function
}
