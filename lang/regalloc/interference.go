package regalloc

import (
	"github.com/dolthub/swiss"
	"github.com/mna/sixpass/lang/l2"
)

// adjSet is one node's neighbour set. The interference graph is built
// once per function and then probed heavily during colouring (liveDegree
// runs once per simplify/spill decision), the same lookup-heavy access
// pattern lang/operand.SymTab backs with a swiss.Map rather than a plain
// Go map.
type adjSet = swiss.Map[string, struct{}]

// graph is an undirected interference graph over virtual registers and
// the physical registers they compete with. Physical registers are
// nodes too, pre-coloured to themselves, so that a variable simultaneously
// live with a register it cannot share is rejected during selection the
// same way two variables sharing a colour would be.
type graph struct {
	adj map[string]*adjSet
}

func newGraph() *graph {
	return &graph{adj: map[string]*adjSet{}}
}

func (g *graph) addNode(name string) {
	if _, ok := g.adj[name]; !ok {
		g.adj[name] = swiss.NewMap[string, struct{}](8)
	}
}

func (g *graph) addEdge(a, b string) {
	if a == b {
		return
	}
	g.addNode(a)
	g.addNode(b)
	g.adj[a].Put(b, struct{}{})
	g.adj[b].Put(a, struct{}{})
}

func (g *graph) degree(n string) int {
	if s, ok := g.adj[n]; ok {
		return s.Count()
	}
	return 0
}

func (g *graph) neighbors(n string) []string {
	s, ok := g.adj[n]
	if !ok {
		return nil
	}
	out := make([]string, 0, s.Count())
	s.Iter(func(m string, _ struct{}) (stop bool) {
		out = append(out, m)
		return false
	})
	return out
}

func (g *graph) removeNode(n string) {
	if s, ok := g.adj[n]; ok {
		s.Iter(func(m string, _ struct{}) (stop bool) {
			g.adj[m].Delete(n)
			return false
		})
	}
	delete(g.adj, n)
}

// operandName returns the graph node name for an operand that
// participates in colouring (a Variable or a Register), and false for
// anything else (Number, MemoryLocation, ...).
func operandName(op l2.Operand) (string, bool) {
	switch op := op.(type) {
	case l2.Variable:
		return op.Name, true
	case l2.Register:
		return string(op.Reg), true
	}
	return "", false
}

// Build constructs f's interference graph from its liveness result:
// a defined variable interferes with everything live
// immediately after it, except — for a plain copy — the value it was
// copied from, since a move whose source is dead after it can still be
// coalesced onto the same colour. Every general-purpose register is
// added as a pre-coloured node so a variable simultaneously live with
// one never gets assigned it. Shift instructions get one further,
// machine-specific edge: codegen moves the shift count through %rcx as
// scratch before the shift executes (lang/l1's Arith case), so the
// destination can never be coloured rcx or a live count variable would
// be clobbered by that move.
func Build(f *l2.Function, fl *FunctionLiveness) *graph {
	g := newGraph()
	for _, r := range l2.GPRegisters {
		g.addNode(string(r))
	}
	for _, name := range f.Locals {
		g.addNode(name)
	}

	for bi, b := range f.Blocks {
		for ii, in := range b.Instrs {
			_, out := fl.At(bi, ii)
			defs := in.Defs()

			var moveSrc string
			if asn, ok := in.(l2.Assign); ok {
				if n, ok := operandName(asn.Src); ok {
					moveSrc = n
				}
			}

			for _, d := range defs {
				dn, ok := operandName(d)
				if !ok {
					continue
				}
				for v := range out {
					if v == dn || v == moveSrc {
						continue
					}
					g.addEdge(dn, v)
				}
			}

			if ar, ok := in.(l2.Arith); ok && ar.Op.IsShift() {
				if dn, ok := operandName(ar.Dst); ok {
					g.addEdge(dn, string(l2.RCX))
				}
			}
		}
	}
	return g
}
