package tile

import (
	"fmt"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/l3"
	"golang.org/x/exp/slices"
)

// SelectProgram tiles every function of a scheduled L3 program into L2.
func SelectProgram(p *l3.Program) *l2.Program {
	out := &l2.Program{}
	for _, f := range p.Funcs {
		out.Funcs = append(out.Funcs, selectFunction(f))
	}
	return out
}

// funcSelect accumulates one function's L2 body across both the
// unconditional steps (argument binding) and the tiling worklist.
// sink is where emit currently appends: the entry block's instruction
// list while binding params, or a codeBlock under construction while a
// tile is applying, swapped in by doTiling around each apply call.
type funcSelect struct {
	block    *l2.Block
	blocks   []*l2.Block
	tmpCount int
	locals   map[string]bool
	sink     func(l2.Instr)
}

func (fn *funcSelect) emit(in l2.Instr) {
	fn.sink(in)
	for _, d := range in.Defs() {
		if v, ok := d.(l2.Variable); ok {
			fn.locals[v.Name] = true
		}
	}
	for _, u := range in.Uses() {
		if v, ok := u.(l2.Variable); ok {
			fn.locals[v.Name] = true
		}
	}
}

func (fn *funcSelect) fresh() l2.Variable {
	name := fmt.Sprintf("addr%d", fn.tmpCount)
	fn.tmpCount++
	v := l2.Variable{Name: name}
	fn.locals[name] = true
	return v
}

// bindParams copies each incoming argument register into the Variable
// its parameter name denotes, as the entry block's first instructions.
// Binding params this way rather than special-casing them in codegen
// means the allocator sees an ordinary Variable def like any other and
// is free to colour it straight to its argument register (coalescing
// the move away) or to any other register or spill slot. A param past
// the sixth arrives on the caller's stack above the return address; its
// offset also has to clear whatever the callee's own prologue reserves
// for locals, so that leg is resolved against a stack-slot-relative
// base the allocator substitutes once it knows the frame size, the same
// way a spilled Variable is.
func (fn *funcSelect) bindParams(params []string) {
	for i, name := range params {
		if i >= len(l2.ArgRegisters) {
			off := int64(8*(i-len(l2.ArgRegisters)) + 8)
			fn.emit(l2.Load{Dst: l2.Variable{Name: name}, Mem: l2.MemoryLocation{Base: l2.IncomingArgsBase{}, Offset: off}})
			continue
		}
		fn.emit(l2.Assign{Dst: l2.Variable{Name: name}, Src: l2.Register{Reg: l2.ArgRegisters[i]}})
	}
}

func (fn *funcSelect) loadArgsL2(args []l2.Operand) {
	for i, src := range args {
		if i < len(l2.ArgRegisters) {
			fn.emit(l2.Assign{Dst: l2.Register{Reg: l2.ArgRegisters[i]}, Src: src})
			continue
		}
		fn.emit(l2.Store{Mem: l2.MemoryLocation{Base: l2.Register{Reg: l2.RSP}, Offset: int64(8 * (i - len(l2.ArgRegisters)))}, Src: src})
	}
}

// lowerAllocate implements NewArray/NewTuple in terms of the allocate
// runtime entry point, whose fixed two-argument signature (word count,
// fill value) means the header fields this compiler's array/tuple
// layout relies on — a rank marker plus one length per dimension,
// mirrored by lowerAddress and lenAddress — must be written explicitly
// with Store instructions right after the call returns.
func (fn *funcSelect) lowerAllocate(dst l2.Operand, dims []l2.Operand) {
	total := fn.fresh()
	fn.emit(l2.Assign{Dst: total, Src: dims[0]})
	for _, d := range dims[1:] {
		fn.emit(l2.Arith{Dst: total, Op: ilnum.Mul, L: total, R: d})
	}
	words := fn.fresh()
	fn.emit(l2.Arith{Dst: words, Op: ilnum.Add, L: total, R: l2.Number(int64(len(dims) + 1))})

	fn.loadArgsL2([]l2.Operand{words, l2.Number(0)})
	fn.emit(l2.Call{Callee: l2.RuntimeFunction{Func: ilnum.Allocate}, NArgs: 2})

	ptr := fn.fresh()
	fn.emit(l2.Assign{Dst: ptr, Src: l2.Register{Reg: l2.RAX}})
	fn.emit(l2.Store{Mem: l2.MemoryLocation{Base: ptr, Offset: 0}, Src: l2.Number(int64(len(dims)))})
	for i, d := range dims {
		fn.emit(l2.Store{Mem: l2.MemoryLocation{Base: ptr, Offset: int64(i+1) * 8}, Src: d})
	}
	fn.emit(l2.Assign{Dst: dst, Src: ptr})
}

func selectFunction(f *l3.Function) *l2.Function {
	fn := &funcSelect{locals: map[string]bool{}}
	for _, name := range f.Params {
		fn.locals[name] = true
	}

	var blocks []*l2.Block
	for i, b := range f.Blocks {
		fn.block = &l2.Block{Label: b.Label}
		blocks = append(blocks, fn.block)
		fn.sink = func(in l2.Instr) { fn.block.Instrs = append(fn.block.Instrs, in) }
		if i == 0 {
			fn.bindParams(f.Params)
		}

		forest := buildForest(b.Instrs)
		for _, root := range doTiling(fn, forest) {
			fn.block.Instrs = append(fn.block.Instrs, flatten(root)...)
		}
	}

	locals := make([]string, 0, len(fn.locals))
	for name := range fn.locals {
		locals = append(locals, name)
	}
	slices.Sort(locals)

	return &l2.Function{Name: f.Name, Params: f.Params, Blocks: blocks, Locals: locals}
}
