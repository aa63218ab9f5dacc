package regalloc

import (
	"fmt"

	"github.com/mna/sixpass/lang/l2"
)

// spillState tracks the stack slot assigned to each variable that
// colouring could not place, and the fresh temporaries rewriting
// introduces.
type spillState struct {
	slot     map[string]int64
	nextSlot int64
	tmp      int
	locals   map[string]bool
}

func newSpillState(base int64) *spillState {
	return &spillState{slot: map[string]int64{}, nextSlot: base, locals: map[string]bool{}}
}

// slotFor assigns name a word within the frame the function's prologue
// reserves with subq. Offsets are relative to rsp and therefore
// positive and within [0, StackSlots*8) — this compiler establishes no
// per-function frame pointer (lang/l1's codegen only saves rbp once, at
// the program's entry trampoline), so every stack reference has to be
// rsp-relative like the rest of the frame.
func (s *spillState) slotFor(name string) l2.MemoryLocation {
	off, ok := s.slot[name]
	if !ok {
		off = s.nextSlot * 8
		s.slot[name] = off
		s.nextSlot++
	}
	return l2.MemoryLocation{Base: l2.Register{Reg: l2.RSP}, Offset: off}
}

func (s *spillState) fresh() l2.Variable {
	name := fmt.Sprintf("spill%d", s.tmp)
	s.tmp++
	s.locals[name] = true
	return l2.Variable{Name: name}
}

// rewriteSpills replaces every use and def of a spilled variable with a
// fresh temporary loaded immediately before (for a use) or stored
// immediately after (for a def), so the next colouring attempt only
// ever sees that temporary live across a single instruction — short
// enough to always be colourable.
// Variables that colouring placed successfully are rewritten straight
// to their assigned Register.
func rewriteSpills(f *l2.Function, colours colouring, spilled map[string]bool, base int64) (*l2.Function, bool, map[string]int64) {
	st := newSpillState(base)
	any := false

	out := &l2.Function{Name: f.Name, Params: f.Params}
	for _, b := range f.Blocks {
		nb := &l2.Block{Label: b.Label}
		for _, in := range b.Instrs {
			rewritten, before, after := rewriteInstr(in, colours, spilled, st)
			if before != nil || after != nil {
				any = true
			}
			nb.Instrs = append(nb.Instrs, before...)
			nb.Instrs = append(nb.Instrs, rewritten)
			nb.Instrs = append(nb.Instrs, after...)
		}
		out.Blocks = append(out.Blocks, nb)
	}

	locals := make([]string, 0, len(st.locals))
	for name := range st.locals {
		locals = append(locals, name)
	}
	out.Locals = locals
	out.StackSlots = int(st.nextSlot)
	return out, any, st.slot
}

// rewriteInstr substitutes every operand of in, returning any Load/Store
// instructions that must surround it to move a spilled value through
// its stack slot.
func rewriteInstr(in l2.Instr, colours colouring, spilled map[string]bool, st *spillState) (l2.Instr, []l2.Instr, []l2.Instr) {
	var before, after []l2.Instr

	sub := func(op l2.Operand, isDef bool) l2.Operand {
		v, ok := op.(l2.Variable)
		if !ok {
			return op
		}
		if spilled[v.Name] {
			tmp := st.fresh()
			mem := st.slotFor(v.Name)
			if isDef {
				after = append(after, l2.Store{Mem: mem, Src: tmp})
			} else {
				before = append(before, l2.Load{Dst: tmp, Mem: mem})
			}
			return tmp
		}
		if r, ok := colours[v.Name]; ok {
			return l2.Register{Reg: r}
		}
		return op
	}

	subMem := func(m l2.MemoryLocation) l2.MemoryLocation {
		return l2.MemoryLocation{Base: sub(m.Base, false), Offset: m.Offset}
	}

	switch in := in.(type) {
	case l2.Assign:
		return l2.Assign{Dst: sub(in.Dst, true), Src: sub(in.Src, false)}, before, after
	case l2.Arith:
		l, r := sub(in.L, false), sub(in.R, false)
		return l2.Arith{Dst: sub(in.Dst, true), Op: in.Op, L: l, R: r}, before, after
	case l2.Load:
		mem := subMem(in.Mem)
		return l2.Load{Dst: sub(in.Dst, true), Mem: mem}, before, after
	case l2.Store:
		mem := subMem(in.Mem)
		return l2.Store{Mem: mem, Src: sub(in.Src, false)}, before, after
	case l2.Len:
		var dim l2.Operand
		if in.Dim != nil {
			dim = sub(in.Dim, false)
		}
		return l2.Len{Dst: sub(in.Dst, true), Arr: sub(in.Arr, false), Dim: dim}, before, after
	case l2.NewArray:
		dims := make([]l2.Operand, len(in.Dims))
		for i, d := range in.Dims {
			dims[i] = sub(d, false)
		}
		return l2.NewArray{Dst: sub(in.Dst, true), Dims: dims}, before, after
	case l2.NewTuple:
		return l2.NewTuple{Dst: sub(in.Dst, true), Len: sub(in.Len, false)}, before, after
	case l2.Call:
		return l2.Call{Callee: sub(in.Callee, false), NArgs: in.NArgs}, before, after
	case l2.Return:
		return in, before, after
	case l2.ReturnVal:
		return l2.ReturnVal{Value: sub(in.Value, false)}, before, after
	case l2.Branch:
		return in, before, after
	case l2.CJump:
		l, r := sub(in.L, false), sub(in.R, false)
		return l2.CJump{Op: in.Op, L: l, R: r, True: in.True}, before, after
	default:
		return in, before, after
	}
}
