package regalloc

import "github.com/mna/sixpass/lang/l2"

// hasSideEffect reports whether in must run regardless of whether
// anything reads what it defines.
func hasSideEffect(in l2.Instr) bool {
	switch in.(type) {
	case l2.Store, l2.Call, l2.Branch, l2.CJump, l2.Return, l2.ReturnVal:
		return true
	default:
		return false
	}
}

// EliminateDeadCode drops a pure instruction whose defined variable is
// never live after it, re-running liveness to a fixpoint since removing
// one dead definition can let its own operands' last use disappear in
// turn. NewArray/NewTuple are never eliminated even though
// they define a value, since allocation is observable through the
// runtime's memory bookkeeping.
func EliminateDeadCode(f *l2.Function) *l2.Function {
	for {
		fl := Analyze(f)
		changed := false
		out := &l2.Function{Name: f.Name, Params: f.Params, Locals: f.Locals, StackSlots: f.StackSlots}
		for bi, b := range f.Blocks {
			nb := &l2.Block{Label: b.Label}
			for ii, in := range b.Instrs {
				if isDeadDef(f.Blocks[bi], in, fl, bi, ii) {
					changed = true
					continue
				}
				nb.Instrs = append(nb.Instrs, in)
			}
			out.Blocks = append(out.Blocks, nb)
		}
		f = out
		if !changed {
			return f
		}
	}
}

func isDeadDef(b *l2.Block, in l2.Instr, fl *FunctionLiveness, bi, ii int) bool {
	if hasSideEffect(in) {
		return false
	}
	switch in.(type) {
	case l2.NewArray, l2.NewTuple:
		return false
	}
	defs := vars(in.Defs())
	if len(defs) == 0 {
		return false
	}
	_, out := fl.At(bi, ii)
	for _, d := range defs {
		if out[d] {
			return false
		}
	}
	return true
}
