// Package regalloc turns an L2 program, where every Variable is still a
// virtual register, into an L1 program where Variable has been replaced
// by either a Register or a spill-slot MemoryLocation.
// Analysis runs per function in three stages — liveness, then the
// interference graph built from it, then iterated simplify/select
// colouring that falls back to spilling when no colour is free — kept
// as three separate passes rather than one fused walk.
package regalloc

import "github.com/mna/sixpass/lang/l2"

// varSet is a set of virtual register names.
type varSet map[string]bool

func (s varSet) clone() varSet {
	out := make(varSet, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s varSet) equal(o varSet) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if !o[k] {
			return false
		}
	}
	return true
}

func vars(ops []l2.Operand) []string {
	var out []string
	for _, op := range ops {
		if v, ok := op.(l2.Variable); ok {
			out = append(out, v.Name)
		}
	}
	return out
}

// cfg is the successor map a function's blocks imply: every target named
// by its last instruction, plus a fallthrough to the next block in
// order when that instruction doesn't unconditionally leave the block
// (CJump is L2's only conditional terminator; everything else that ends
// a block either names every successor explicitly or leaves the
// function entirely).
type cfg struct {
	index map[string]int
	succs [][]string
}

func buildCFG(f *l2.Function) *cfg {
	c := &cfg{index: map[string]int{}}
	for i, b := range f.Blocks {
		c.index[b.Label] = i
	}
	c.succs = make([][]string, len(f.Blocks))
	for i, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			continue
		}
		last := b.Instrs[len(b.Instrs)-1]
		targets := last.Targets()
		if _, isCJump := last.(l2.CJump); isCJump && i+1 < len(f.Blocks) {
			targets = append(append([]string{}, targets...), f.Blocks[i+1].Label)
		}
		c.succs[i] = targets
	}
	return c
}

// instrLive records the live-in and live-out variable sets around one
// instruction, indexed in execution order within its block.
type instrLive struct {
	in, out varSet
}

// FunctionLiveness is the per-block, per-instruction liveness result for
// one function.
type FunctionLiveness struct {
	blocks [][]instrLive // blocks[b][i] is the i-th instruction of block b
}

// At returns the live-in and live-out sets for the i-th instruction of
// block b.
func (fl *FunctionLiveness) At(b, i int) (in, out varSet) {
	il := fl.blocks[b][i]
	return il.in, il.out
}

// Analyze runs backward liveness dataflow to a fixpoint over f's blocks,
// grounded on the same GEN/KILL-per-instruction formulation the
// teacher's own liveness pass would use for an L2-shaped IL: a
// variable is live-in at an instruction if it is used there, or is
// live-out and not killed there.
func Analyze(f *l2.Function) *FunctionLiveness {
	g := buildCFG(f)
	n := len(f.Blocks)
	blockIn := make([]varSet, n)
	blockOut := make([]varSet, n)
	for i := range blockIn {
		blockIn[i] = varSet{}
		blockOut[i] = varSet{}
	}

	changed := true
	for changed {
		changed = false
		for i := n - 1; i >= 0; i-- {
			out := varSet{}
			for _, s := range g.succs[i] {
				si := g.index[s]
				for v := range blockIn[si] {
					out[v] = true
				}
			}
			in := computeBlockIn(f.Blocks[i], out)
			if !in.equal(blockIn[i]) || !out.equal(blockOut[i]) {
				changed = true
			}
			blockIn[i] = in
			blockOut[i] = out
		}
	}

	fl := &FunctionLiveness{blocks: make([][]instrLive, n)}
	for i, b := range f.Blocks {
		fl.blocks[i] = computeInstrLive(b, blockOut[i])
	}
	return fl
}

// computeBlockIn runs one backward pass over a block's instructions
// starting from its live-out set, returning its live-in set.
func computeBlockIn(b *l2.Block, out varSet) varSet {
	live := out.clone()
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		in := b.Instrs[i]
		for _, d := range vars(in.Defs()) {
			delete(live, d)
		}
		for _, u := range vars(in.Uses()) {
			live[u] = true
		}
	}
	return live
}

// computeInstrLive replays the same backward walk, this time recording
// the in/out set at every instruction rather than only the block's
// entry set.
func computeInstrLive(b *l2.Block, out varSet) []instrLive {
	result := make([]instrLive, len(b.Instrs))
	live := out.clone()
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		in := b.Instrs[i]
		instrOut := live.clone()
		for _, d := range vars(in.Defs()) {
			delete(live, d)
		}
		for _, u := range vars(in.Uses()) {
			live[u] = true
		}
		result[i] = instrLive{in: live.clone(), out: instrOut}
	}
	return result
}
