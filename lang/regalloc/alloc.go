package regalloc

import "github.com/mna/sixpass/lang/l2"

// AllocateProgram runs register allocation over every function of p,
// returning an equivalent program with every Variable operand replaced
// by a Register or a stack MemoryLocation. The result is an
// *l2.Program only in Go's type system; semantically it is L1, and
// lang/l1 imports this package's output directly since L1 is defined as
// L2's instruction shapes with colouring already applied.
// eliminateDeadCode gates the -O 1/2 dead-code pass; allocation itself
// always runs, since a program with live spills has to be assigned
// registers or stack slots regardless of optimisation level.
func AllocateProgram(p *l2.Program, eliminateDeadCode bool) *l2.Program {
	out := &l2.Program{}
	for _, f := range p.Funcs {
		out.Funcs = append(out.Funcs, AllocateFunction(f, eliminateDeadCode))
	}
	return out
}

// AllocateFunction iterates simplify/select colouring and spill
// rewriting until every variable in f has either a register or a stack
// slot. Dead code elimination, when enabled, runs once up front, since
// spill rewriting is cheaper to do over a program with no unreachable
// definitions, and again after each spill round, since a spilled
// value's reload can itself become dead if colouring later proves it
// unnecessary.
func AllocateFunction(f *l2.Function, eliminateDeadCode bool) *l2.Function {
	cur := f
	if eliminateDeadCode {
		cur = EliminateDeadCode(f)
	}
	var base int64

	for {
		fl := Analyze(cur)
		g := Build(cur, fl)
		colours, spilled := colourGraph(g, cur.Locals)

		if len(spilled) == 0 {
			return finalize(cur, colours, base)
		}

		spillSet := map[string]bool{}
		for _, s := range spilled {
			spillSet[s] = true
		}
		next, _, _ := rewriteSpills(cur, colours, spillSet, base)
		base = int64(next.StackSlots)
		cur = next
		if eliminateDeadCode {
			cur = EliminateDeadCode(next)
		}
	}
}

// finalize applies a colouring with no remaining spills, substituting
// every Variable for its Register and resolving IncomingArgsBase (the
// seventh-parameter case, see lang/tile's bindParams) now that the
// frame's final size is known.
func finalize(f *l2.Function, colours colouring, base int64) *l2.Function {
	frame := base
	out := &l2.Function{Name: f.Name, Params: f.Params, StackSlots: int(frame)}
	for _, b := range f.Blocks {
		nb := &l2.Block{Label: b.Label}
		for _, in := range b.Instrs {
			nb.Instrs = append(nb.Instrs, substitute(in, colours, frame))
		}
		out.Blocks = append(out.Blocks, nb)
	}
	return out
}

func substitute(in l2.Instr, colours colouring, frame int64) l2.Instr {
	sub := func(op l2.Operand) l2.Operand {
		if v, ok := op.(l2.Variable); ok {
			if r, ok := colours[v.Name]; ok {
				return l2.Register{Reg: r}
			}
			return op
		}
		return op
	}
	subMem := func(m l2.MemoryLocation) l2.MemoryLocation {
		if _, ok := m.Base.(l2.IncomingArgsBase); ok {
			return l2.MemoryLocation{Base: l2.Register{Reg: l2.RSP}, Offset: m.Offset + frame}
		}
		return l2.MemoryLocation{Base: sub(m.Base), Offset: m.Offset}
	}

	switch in := in.(type) {
	case l2.Assign:
		return l2.Assign{Dst: sub(in.Dst), Src: sub(in.Src)}
	case l2.Arith:
		return l2.Arith{Dst: sub(in.Dst), Op: in.Op, L: sub(in.L), R: sub(in.R)}
	case l2.Load:
		return l2.Load{Dst: sub(in.Dst), Mem: subMem(in.Mem)}
	case l2.Store:
		return l2.Store{Mem: subMem(in.Mem), Src: sub(in.Src)}
	case l2.Len:
		var dim l2.Operand
		if in.Dim != nil {
			dim = sub(in.Dim)
		}
		return l2.Len{Dst: sub(in.Dst), Arr: sub(in.Arr), Dim: dim}
	case l2.NewArray:
		dims := make([]l2.Operand, len(in.Dims))
		for i, d := range in.Dims {
			dims[i] = sub(d)
		}
		return l2.NewArray{Dst: sub(in.Dst), Dims: dims}
	case l2.NewTuple:
		return l2.NewTuple{Dst: sub(in.Dst), Len: sub(in.Len)}
	case l2.Call:
		return l2.Call{Callee: sub(in.Callee), NArgs: in.NArgs}
	case l2.Return:
		return in
	case l2.ReturnVal:
		return l2.ReturnVal{Value: sub(in.Value)}
	case l2.Branch:
		return in
	case l2.CJump:
		return l2.CJump{Op: in.Op, L: sub(in.L), R: sub(in.R), True: in.True}
	default:
		return in
	}
}
