package regalloc

import (
	"github.com/mna/sixpass/lang/l2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// sortedKeys returns m's keys in sorted order, so that a tie between two
// equally-good candidates (same degree) resolves the same way on every
// run instead of depending on Go's randomised map iteration order.
func sortedKeys(m map[string]bool) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

// colouring maps a virtual register's name to the physical register it
// was assigned.
type colouring map[string]l2.Reg

// colourAttempt is one simplify/select pass over g. It
// never spills itself — a node the simplify phase cannot place safely
// is pushed to the stack anyway as a spill candidate, and the select
// phase decides whether a colour actually turns up for it once its
// real-time neighbourhood (not its original degree) is known. Nodes
// select() could not colour are returned as needsSpill.
type colourAttempt struct {
	g         *graph
	stack     []string
	removed   map[string]bool
	neighbors map[string][]string // each node's neighbor set at the moment it was pushed
}

const numColours = 14 // len(l2.GPRegisters)

func colourGraph(g *graph, locals []string) (colouring, []string) {
	ca := &colourAttempt{g: g, removed: map[string]bool{}, neighbors: map[string][]string{}}
	remaining := map[string]bool{}
	for _, name := range locals {
		remaining[name] = true
	}

	for len(remaining) > 0 {
		if name, ok := ca.pickSimplifiable(remaining); ok {
			ca.push(name)
			delete(remaining, name)
			continue
		}
		name := ca.pickSpillCandidate(remaining)
		ca.push(name)
		delete(remaining, name)
	}

	return ca.selectAll()
}

// pickSimplifiable returns a variable node whose current degree (among
// nodes not yet pushed) is below the number of available colours —
// such a node is always colourable no matter what its neighbours get,
// so it's safe to set aside without risking a spill.
func (ca *colourAttempt) pickSimplifiable(remaining map[string]bool) (string, bool) {
	for _, name := range sortedKeys(remaining) {
		if ca.liveDegree(name) < numColours {
			return name, true
		}
	}
	return "", false
}

// pickSpillCandidate picks the node with the highest current degree,
// the conventional heuristic for which variable is most likely to free
// up the most colouring room when it is finally forced to spill.
func (ca *colourAttempt) pickSpillCandidate(remaining map[string]bool) string {
	best, bestDeg := "", -1
	for _, name := range sortedKeys(remaining) {
		if d := ca.liveDegree(name); d > bestDeg {
			best, bestDeg = name, d
		}
	}
	return best
}

func (ca *colourAttempt) liveDegree(name string) int {
	n := 0
	if s, ok := ca.g.adj[name]; ok {
		s.Iter(func(m string, _ struct{}) (stop bool) {
			if !ca.removed[m] {
				n++
			}
			return false
		})
	}
	return n
}

func (ca *colourAttempt) push(name string) {
	ca.neighbors[name] = ca.g.neighbors(name)
	ca.removed[name] = true
	ca.stack = append(ca.stack, name)
}

// selectAll pops the stack in reverse push order, assigning each node
// the first register none of its still-coloured neighbours holds.
func (ca *colourAttempt) selectAll() (colouring, []string) {
	colours := colouring{}
	for _, r := range l2.GPRegisters {
		colours[string(r)] = r // registers are pre-coloured to themselves
	}

	var needsSpill []string
	for i := len(ca.stack) - 1; i >= 0; i-- {
		name := ca.stack[i]
		used := map[l2.Reg]bool{}
		for _, nb := range ca.neighbors[name] {
			if c, ok := colours[nb]; ok {
				used[c] = true
			}
		}
		assigned := false
		for _, r := range l2.GPRegisters {
			if !used[r] {
				colours[name] = r
				assigned = true
				break
			}
		}
		if !assigned {
			needsSpill = append(needsSpill, name)
		}
	}
	return colours, needsSpill
}
