package tile

import (
	"github.com/mna/sixpass/lang/l3"
	"github.com/mna/sixpass/lang/operand"
)

// treeNode is one node of a per-block expression forest. A leaf names an
// operand directly; an internal node wraps the L3 instruction that
// computes its value (or performs its effect), with each of the
// instruction's own operand positions resolved to either a leaf or,
// where §4.5's merge rule applies, a nested node for the instruction
// that produced it.
type treeNode struct {
	instr    l3.Instr        // nil for a leaf
	leaf     operand.Operand // set iff instr == nil
	operands []*treeNode     // operand subtrees, in the instruction's natural order
}

func (n *treeNode) isLeaf() bool { return n.instr == nil }

// operandSlots lists the operand positions of in eligible for merging:
// the values a tile would otherwise convert one-to-one from a leaf.
// Load, Len, NewArray, NewTuple, Branch, and Return expose none — their shape is
// synthesized by a dedicated address/allocation pass (lowerAddress,
// lenAddress, lowerAllocate) rather than folded from a child
// expression, and a bare control-transfer carries no operand at all.
func operandSlots(in l3.Instr) []operand.Operand {
	switch in := in.(type) {
	case l3.Assign:
		return []operand.Operand{in.Src}
	case l3.Arith:
		return []operand.Operand{in.L, in.R}
	case l3.Store:
		return []operand.Operand{in.Src}
	case l3.ReturnVal:
		return []operand.Operand{in.Value}
	case l3.CJump:
		return []operand.Operand{in.L, in.R}
	case l3.Call:
		return append([]operand.Operand(nil), in.Args...)
	case l3.CallAssign:
		return append([]operand.Operand(nil), in.Args...)
	default:
		return nil
	}
}

// dstName returns the variable an instruction binds its result to, for
// whichever L3 instruction shapes actually produce one.
func dstName(in l3.Instr) (string, bool) {
	switch in := in.(type) {
	case l3.Assign:
		return in.Dst.Name, true
	case l3.Arith:
		return in.Dst.Name, true
	case l3.Load:
		return in.Dst.Name, true
	case l3.NewArray:
		return in.Dst.Name, true
	case l3.NewTuple:
		return in.Dst.Name, true
	case l3.CallAssign:
		return in.Dst.Name, true
	default:
		return "", false
	}
}

func l3Uses(in l3.Instr) []operand.Operand {
	switch in := in.(type) {
	case l3.Assign:
		return []operand.Operand{in.Src}
	case l3.Arith:
		return []operand.Operand{in.L, in.R}
	case l3.Load:
		return []operand.Operand{in.Mem.Base}
	case l3.Store:
		ops := append([]operand.Operand{in.Mem.Base}, in.Mem.Indices...)
		return append(ops, in.Src)
	case l3.Len:
		if in.Dim != nil {
			return []operand.Operand{in.Arr, in.Dim}
		}
		return []operand.Operand{in.Arr}
	case l3.NewArray:
		return in.Dims
	case l3.NewTuple:
		return []operand.Operand{in.Len}
	case l3.Call:
		return in.Args
	case l3.CallAssign:
		return in.Args
	case l3.ReturnVal:
		return []operand.Operand{in.Value}
	case l3.CJump:
		return []operand.Operand{in.L, in.R}
	default:
		return nil
	}
}

// buildForest partitions one basic block's flat instruction stream into
// rooted trees per §4.5: an operand is inlined as a subtree when it
// names a variable defined by the immediately preceding instruction,
// used exactly once in the rest of the block, and otherwise left a
// leaf. Because the merge candidate is always the literal previous
// instruction, there is never an intervening instruction to worry about
// clobbering the value in between: adjacency alone rules that out.
// Calls, stores, returns, and branches are never themselves absorbed
// into a parent (dstName reports no result for them, so no later
// operand can name them), matching the contract that they are
// always tree roots.
func buildForest(instrs []l3.Instr) []*treeNode {
	useCount := map[string]int{}
	for _, in := range instrs {
		for _, u := range l3Uses(in) {
			if v, ok := u.(operand.Variable); ok {
				useCount[v.Name]++
			}
		}
	}

	nodes := make([]*treeNode, len(instrs))
	consumed := make([]bool, len(instrs))

	for i, in := range instrs {
		n := &treeNode{instr: in}
		slots := operandSlots(in)
		n.operands = make([]*treeNode, len(slots))
		for j, op := range slots {
			n.operands[j] = &treeNode{leaf: op}
		}

		if i > 0 {
			if prevName, ok := dstName(instrs[i-1]); ok && useCount[prevName] == 1 {
				for j, op := range slots {
					if v, ok2 := op.(operand.Variable); ok2 && v.Name == prevName {
						n.operands[j] = nodes[i-1]
						consumed[i-1] = true
						break
					}
				}
			}
		}
		nodes[i] = n
	}

	var roots []*treeNode
	for i, n := range nodes {
		if !consumed[i] {
			roots = append(roots, n)
		}
	}
	return roots
}
