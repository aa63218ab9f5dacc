// Package tile implements maximal-munch instruction selection from L3
// into L2. Each basic block's flat instruction stream is first merged
// into a forest of expression trees (buildForest, in tree.go): an
// operand that names the immediately preceding instruction's result,
// used nowhere else in the block, is folded into its consumer as a
// subtree rather than left a leaf. A worklist (doTiling, in tiles.go)
// then repeatedly pulls the highest-cost matching tile for the next
// untiled tree, lets it emit L2 into its own codeBlock, and queues the
// subtrees it merged in as that block's children; a post-order walk of
// the resulting forest is the function's final instruction order.
//
// L2 (and the L1 the register allocator later produces from it) stay
// three-address rather than mirroring x86's two-address arithmetic
// instructions directly, so a tile's own emission never needs to dodge
// a destructive two-address slot — that only becomes a concern once
// colouring can alias two L2 variables onto the same physical
// register, which lang/l1/codegen.go handles at emission time.
package tile

import (
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/operand"
)

// convert maps a shared operand.Operand (used by la, ir, and l3) onto
// its l2 counterpart. MemoryLocation never reaches here directly: a
// Load/Store's Mem is always address-lowered by lowerAddress first.
func convert(op operand.Operand) l2.Operand {
	switch op := op.(type) {
	case operand.Variable:
		return l2.Variable{Name: op.Name}
	case operand.Number:
		return l2.Number(op)
	case operand.FunctionName:
		return l2.FunctionName{Name: op.Name}
	case operand.RuntimeFunction:
		return l2.RuntimeFunction{Func: op.Func}
	default:
		panic("tile: unexpected operand type in convert")
	}
}

func convertList(ops []operand.Operand) []l2.Operand {
	out := make([]l2.Operand, len(ops))
	for i, o := range ops {
		out[i] = convert(o)
	}
	return out
}
