package tile

import (
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/l3"
)

// tile is a pattern over the expression-tree grammar paired with the
// L2 it emits. Its cost is a fixed weight per instruction shape that
// match returns (0 when the tile does not match); a
// node with no matching tile is a fatal "no tile matched" error, since
// the tile set is meant to be closed over every L3 shape the tree
// builder can produce.
type tile interface {
	match(n *treeNode) int
	apply(n *treeNode, fn *funcSelect) []*treeNode
}

// tileSet is the fixed, closed catalogue doTiling selects from. Order
// doesn't matter for correctness — at most one tile ever matches a
// given node shape in this grammar — but keeping it in roughly
// cost-descending order mirrors how a richer catalogue (one with
// genuinely overlapping patterns) would read.
var tileSet = []tile{
	callAssignTile{},
	arithTile{},
	assignTile{},
	loadTile{},
	storeTile{},
	lenTile{},
	newArrayTile{},
	newTupleTile{},
	callTile{},
	condBranchTile{},
	returnValTile{},
	returnTile{},
	branchTile{},
}

func bestTile(n *treeNode) (tile, int) {
	var best tile
	bestCost := 0
	for _, t := range tileSet {
		if c := t.match(n); c > bestCost {
			bestCost, best = c, t
		}
	}
	return best, bestCost
}

// codeBlock is one tile application's emitted instructions, linked as
// a child of the block owning the node it was tiled from. A post-order
// traversal (flatten) of the per-root forest of codeBlocks yields the
// final instruction order: every subtree a node's operands were merged
// from runs before the node's own instructions reference its result.
type codeBlock struct {
	instrs   []l2.Instr
	children []*codeBlock
}

func (b *codeBlock) append(in l2.Instr) { b.instrs = append(b.instrs, in) }

func flatten(b *codeBlock) []l2.Instr {
	var out []l2.Instr
	for _, c := range b.children {
		out = append(out, flatten(c)...)
	}
	return append(out, b.instrs...)
}

// doTiling runs the worklist algorithm over one block's forest: pop the
// head, select its highest-cost matching tile, apply it into a fresh
// codeBlock linked under its parent (or as a new root), and push the
// tile's returned frontier — the merged operand subtrees still needing
// their own tile — back onto the queue with that codeBlock as their
// parent.
func doTiling(fn *funcSelect, forest []*treeNode) []*codeBlock {
	type entry struct {
		node   *treeNode
		parent *codeBlock
	}
	var roots []*codeBlock
	queue := make([]entry, len(forest))
	for i, n := range forest {
		queue[i] = entry{node: n}
	}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		t, cost := bestTile(e.node)
		if cost == 0 {
			panic("tile: no tile matched")
		}

		blk := &codeBlock{}
		if e.parent == nil {
			roots = append(roots, blk)
		} else {
			e.parent.children = append(e.parent.children, blk)
		}

		fn.sink = blk.append
		frontier := t.apply(e.node, fn)
		for _, c := range frontier {
			queue = append(queue, entry{node: c, parent: blk})
		}
	}
	return roots
}

// operandValue resolves a tree node to the L2 operand its computed
// value lives in: a leaf converts its operand directly; a merged node
// names the variable the instruction it wraps already binds its result
// to, since that instruction's own codeBlock is guaranteed by flatten
// to run first.
func operandValue(n *treeNode) l2.Operand {
	if n.isLeaf() {
		return convert(n.leaf)
	}
	name, ok := dstName(n.instr)
	if !ok {
		panic("tile: merged operand's instruction has no result")
	}
	return l2.Variable{Name: name}
}

func resolvedOperands(n *treeNode) []l2.Operand {
	out := make([]l2.Operand, len(n.operands))
	for i, c := range n.operands {
		out[i] = operandValue(c)
	}
	return out
}

// mergedChildren is every tile's frontier: the operand subtrees that
// were folded in rather than left a leaf, and so still need their own
// tile applied before this node's codeBlock can run.
func mergedChildren(n *treeNode) []*treeNode {
	var out []*treeNode
	for _, c := range n.operands {
		if !c.isLeaf() {
			out = append(out, c)
		}
	}
	return out
}

type assignTile struct{}

func (assignTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Assign); ok {
		return 2
	}
	return 0
}

func (assignTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Assign)
	fn.emit(l2.Assign{Dst: convert(in.Dst), Src: resolvedOperands(n)[0]})
	return mergedChildren(n)
}

// arithTile emits the straightforward three-address L2.Arith; L2 keeps
// a virtual, three-address shape rather than x86's destructive
// two-address form, so there is nothing here to stash or skip yet —
// colouring is what can make Dst and an operand share one physical
// register, and lang/l1/codegen.go is what notices and works around
// that once colouring has actually happened.
type arithTile struct{}

func (arithTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Arith); ok {
		return 3
	}
	return 0
}

func (arithTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Arith)
	ops := resolvedOperands(n)
	fn.emit(l2.Arith{Dst: convert(in.Dst), Op: in.Op, L: ops[0], R: ops[1]})
	return mergedChildren(n)
}

type loadTile struct{}

func (loadTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Load); ok {
		return 2
	}
	return 0
}

func (loadTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Load)
	mem := lowerAddress(in.Mem, fn.fresh, fn.emit)
	fn.emit(l2.Load{Dst: convert(in.Dst), Mem: mem})
	return mergedChildren(n)
}

type storeTile struct{}

func (storeTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Store); ok {
		return 2
	}
	return 0
}

func (storeTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Store)
	mem := lowerAddress(in.Mem, fn.fresh, fn.emit)
	fn.emit(l2.Store{Mem: mem, Src: resolvedOperands(n)[0]})
	return mergedChildren(n)
}

type lenTile struct{}

func (lenTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Len); ok {
		return 2
	}
	return 0
}

func (lenTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Len)
	var dim l2.Operand
	if in.Dim != nil {
		dim = convert(in.Dim)
	}
	lenAddress(convert(in.Dst), l2.Variable{Name: in.Arr.Name}, dim, fn.fresh, fn.emit)
	return nil
}

type newArrayTile struct{}

func (newArrayTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.NewArray); ok {
		return 2
	}
	return 0
}

func (newArrayTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.NewArray)
	fn.lowerAllocate(convert(in.Dst), convertList(in.Dims))
	return nil
}

type newTupleTile struct{}

func (newTupleTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.NewTuple); ok {
		return 2
	}
	return 0
}

func (newTupleTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.NewTuple)
	fn.lowerAllocate(convert(in.Dst), []l2.Operand{convert(in.Len)})
	return nil
}

type callTile struct{}

func (callTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Call); ok {
		return 2
	}
	return 0
}

func (callTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Call)
	fn.loadArgsL2(resolvedOperands(n))
	fn.emit(l2.Call{Callee: convert(in.Callee), NArgs: len(in.Args)})
	return mergedChildren(n)
}

type callAssignTile struct{}

func (callAssignTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.CallAssign); ok {
		return 3
	}
	return 0
}

func (callAssignTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.CallAssign)
	fn.loadArgsL2(resolvedOperands(n))
	fn.emit(l2.Call{Callee: convert(in.Callee), NArgs: len(in.Args)})
	fn.emit(l2.Assign{Dst: convert(in.Dst), Src: l2.Register{Reg: l2.RAX}})
	return mergedChildren(n)
}

type returnTile struct{}

func (returnTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Return); ok {
		return 1
	}
	return 0
}

func (returnTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	fn.emit(l2.Return{})
	return nil
}

type returnValTile struct{}

func (returnValTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.ReturnVal); ok {
		return 1
	}
	return 0
}

func (returnValTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	fn.emit(l2.ReturnVal{Value: resolvedOperands(n)[0]})
	return mergedChildren(n)
}

type branchTile struct{}

func (branchTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.Branch); ok {
		return 1
	}
	return 0
}

func (branchTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.Branch)
	fn.emit(l2.Branch{Target: in.Target})
	return nil
}

// condBranchTile translates L3's single-target CJump directly, keeping
// whichever of the five comparisons the instruction already carries:
// unlike a target needing ≤/< normalisation, x86 has a jcc for every
// ordering (jl, jle, je, jge, jg — see lang/l1/codegen.go's
// cmpMnemonic), so there is no swap to perform here.
type condBranchTile struct{}

func (condBranchTile) match(n *treeNode) int {
	if _, ok := n.instr.(l3.CJump); ok {
		return 2
	}
	return 0
}

func (condBranchTile) apply(n *treeNode, fn *funcSelect) []*treeNode {
	in := n.instr.(l3.CJump)
	ops := resolvedOperands(n)
	fn.emit(l2.CJump{Op: in.Op, L: ops[0], R: ops[1], True: in.True})
	return mergedChildren(n)
}
