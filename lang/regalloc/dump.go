package regalloc

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/l2"
	"golang.org/x/exp/slices"
)

// DumpLiveness renders the live-in/live-out set at every instruction of
// f, grounded on original_source/L2/src/liveness_analyzer.cpp's own
// LivenessResult::dump(): the -l flag's restricted l2-command output,
// the liveness stage on its own with nothing downstream run.
func DumpLiveness(f *l2.Function) string {
	fl := Analyze(f)
	var b strings.Builder
	for bi, blk := range f.Blocks {
		fmt.Fprintf(&b, "%s:\n", blk.Label)
		for ii, in := range blk.Instrs {
			liveIn, out := fl.At(bi, ii)
			fmt.Fprintf(&b, "  %-40s in={%s} out={%s}\n", in, sortedJoin(liveIn), sortedJoin(out))
		}
	}
	return b.String()
}

func sortedJoin(s varSet) string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// DumpInterference renders f's interference graph as a sorted
// adjacency list, grounded on
// original_source/L2/src/interference_analyzer.cpp's own
// InterferenceResult::dump(): the -i flag's restricted l2-command
// output, stopping after graph construction with no colouring attempt.
func DumpInterference(f *l2.Function) string {
	fl := Analyze(f)
	g := Build(f, fl)

	names := append([]string{}, f.Locals...)
	slices.Sort(names)

	var b strings.Builder
	for _, n := range names {
		nb := g.neighbors(n)
		slices.Sort(nb)
		fmt.Fprintf(&b, "%s: %s\n", n, strings.Join(nb, ", "))
	}
	return b.String()
}

// DumpSpills runs the same colour/spill loop AllocateFunction does,
// grounded on original_source/L2/src/spiller.cpp's own dump(): the -s
// flag's restricted l2-command output, reporting which variables
// colouring could not place in a register and the slot each was
// finally given, without emitting the allocated L1 function itself.
func DumpSpills(f *l2.Function) string {
	cur := EliminateDeadCode(f)
	var base int64
	rounds := 0
	slots := map[string]int64{}

	for {
		fl := Analyze(cur)
		g := Build(cur, fl)
		colours, spilled := colourGraph(g, cur.Locals)
		if len(spilled) == 0 {
			break
		}
		rounds++
		spillSet := map[string]bool{}
		for _, s := range spilled {
			spillSet[s] = true
		}
		next, _, roundSlots := rewriteSpills(cur, colours, spillSet, base)
		for name, off := range roundSlots {
			slots[name] = off
		}
		base = int64(next.StackSlots)
		cur = EliminateDeadCode(next)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "spill rounds: %d\n", rounds)
	if len(slots) == 0 {
		fmt.Fprintln(&b, "  (no spills)")
		return b.String()
	}
	names := make([]string, 0, len(slots))
	for n := range slots {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(&b, "  %%%s -> %d(%%rsp)\n", n, slots[n])
	}
	return b.String()
}
