// Package trace implements IR trace scheduling: choosing a
// linear block order for each function that maximizes fall-through, then
// reducing IR's two-target CJump and explicit direct branches down to
// L3's one-target shape wherever the chosen order makes the second
// target implicit. The edge-profit model and greedy walk are adapted
// directly from original_source's trace.cpp: an edge's profit is +1 for
// a single-successor source and +1 again if it closes a loop, and the
// walk always prefers the highest-profit unvisited successor, falling
// back to a forward scan for a fresh edge and then a reverse scan for
// any edge with an unvisited target.
package trace

import (
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/l3"
	"golang.org/x/exp/slices"
)

type edge struct {
	from, to int
	profit   int
}

// ScheduleProgram schedules every function independently. With optimize
// false (the -O 0 path), every function keeps its original block order
// instead of the greedy profit-maximizing walk; reduce still runs, since
// L3's one-target CJump shape is mandatory input to tiling, not itself
// an optimization.
func ScheduleProgram(p *ir.Program, optimize bool) *l3.Program {
	out := &l3.Program{}
	for _, f := range p.Funcs {
		out.Funcs = append(out.Funcs, scheduleFunction(f, optimize))
	}
	return out
}

func scheduleFunction(f *ir.Function, optimize bool) *l3.Function {
	var ord []int
	if optimize {
		ord = order(f)
	} else {
		ord = identityOrder(f)
	}
	return reduce(f, ord)
}

func identityOrder(f *ir.Function) []int {
	n := len(f.CFG.Blocks)
	ord := make([]int, n)
	for i := range ord {
		ord[i] = i
	}
	return ord
}

func order(f *ir.Function) []int {
	n := len(f.CFG.Blocks)
	edges := computeEdges(f)

	sorted := append([]edge(nil), edges...)
	slices.SortStableFunc(sorted, func(a, b edge) bool { return a.profit > b.profit })

	byFrom := make([][]edge, n)
	for _, e := range edges {
		byFrom[e.from] = append(byFrom[e.from], e)
	}

	visited := make([]bool, n)
	result := make([]int, 0, n)
	cur := 0 // entry block
	for len(result) < n {
		result = append(result, cur)
		visited[cur] = true

		best, bestProfit := -1, -1
		for _, e := range byFrom[cur] {
			if !visited[e.to] && e.profit > bestProfit {
				best, bestProfit = e.to, e.profit
			}
		}
		if best != -1 {
			cur = best
			continue
		}

		next := selectNext(sorted, visited, n)
		if next == -1 {
			break
		}
		cur = next
	}
	return result
}

// selectNext implements the original's fallback: first a forward scan
// for any edge whose endpoints are both unvisited, then a reverse scan
// for any edge whose target alone is unvisited, then any remaining
// unvisited block at all (a disconnected region of the CFG).
func selectNext(sorted []edge, visited []bool, n int) int {
	for _, e := range sorted {
		if !visited[e.from] && !visited[e.to] {
			return e.from
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if !visited[e.to] {
			return e.to
		}
	}
	for i := 0; i < n; i++ {
		if !visited[i] {
			return i
		}
	}
	return -1
}

func computeEdges(f *ir.Function) []edge {
	n := len(f.CFG.Blocks)
	onStack := make([]bool, n)
	visited := make([]bool, n)
	var edges []edge

	var dfs func(i int)
	dfs = func(i int) {
		visited[i] = true
		onStack[i] = true
		b := f.CFG.Blocks[i]
		for _, s := range b.Succs {
			profit := 0
			if len(b.Succs) == 1 {
				profit++
			}
			if onStack[s] {
				profit++ // back edge closes a loop
			}
			edges = append(edges, edge{from: i, to: s, profit: profit})
			if !visited[s] {
				dfs(s)
			}
		}
		onStack[i] = false
	}
	if n > 0 {
		dfs(0)
	}
	for i := 0; i < n; i++ {
		if !visited[i] {
			dfs(i)
		}
	}
	return edges
}

func negate(op ilnum.CmpOp) (ilnum.CmpOp, bool) {
	switch op {
	case ilnum.LT:
		return ilnum.GE, true
	case ilnum.LE:
		return ilnum.GT, true
	case ilnum.GE:
		return ilnum.LT, true
	case ilnum.GT:
		return ilnum.LE, true
	default:
		// EQ has no representable negation among the five comparisons;
		// the reducer falls back to an explicit two-instruction form.
		return op, false
	}
}

func reduce(f *ir.Function, order []int) *l3.Function {
	labelIndex := make(map[string]int, len(f.CFG.Blocks))
	for i, b := range f.CFG.Blocks {
		labelIndex[b.Label] = i
	}

	blocks := make([]*l3.Block, len(order))
	for pos, idx := range order {
		b := f.CFG.Blocks[idx]
		nb := &l3.Block{Label: b.Label}

		var nextIdx int = -1
		if pos+1 < len(order) {
			nextIdx = order[pos+1]
		}

		for i, in := range b.Instrs {
			last := i == len(b.Instrs)-1
			if !last {
				nb.Instrs = append(nb.Instrs, in)
				continue
			}

			switch in := in.(type) {
			case ir.CJump:
				trueIdx, falseIdx := labelIndex[in.True], labelIndex[in.False]
				switch {
				case falseIdx == nextIdx:
					nb.Instrs = append(nb.Instrs, l3.CJump{Op: in.Op, L: in.L, R: in.R, True: in.True})
				case trueIdx == nextIdx:
					if negOp, ok := negate(in.Op); ok {
						nb.Instrs = append(nb.Instrs, l3.CJump{Op: negOp, L: in.L, R: in.R, True: in.False})
					} else {
						nb.Instrs = append(nb.Instrs,
							l3.CJump{Op: in.Op, L: in.L, R: in.R, True: in.True},
							l3.Branch{Target: in.False})
					}
				default:
					nb.Instrs = append(nb.Instrs,
						l3.CJump{Op: in.Op, L: in.L, R: in.R, True: in.True},
						l3.Branch{Target: in.False})
				}

			case ir.Branch:
				if labelIndex[in.Target] == nextIdx {
					// redundant: execution already falls through to Target
				} else {
					nb.Instrs = append(nb.Instrs, in)
				}

			default:
				nb.Instrs = append(nb.Instrs, in)
			}
		}
		blocks[pos] = nb
	}

	return &l3.Function{
		Name:   f.Name,
		Params: f.CFG.Params,
		Blocks: blocks,

		NullCheckFail: f.NullCheckFail,
		TensorError3:  f.TensorError3,
		TensorError4:  f.TensorError4,
		TupleError3:   f.TupleError3,
	}
}
