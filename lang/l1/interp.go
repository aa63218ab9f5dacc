package l1

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
)

// runtimeAbort is the panic value a runtime error entry point raises;
// tuple-error and tensor-error never return control to the caller, the
// same way the generated assembly never falls through a call to either.
type runtimeAbort struct{ msg string }

// Run interprets p directly over its L1 instructions (the -i flag),
// rather than assembling and executing machine code, giving this
// compiler a reference execution path independent of lang/l1's own
// code generator. The original compiler's own interpreter was never
// finished (its L1 interpreter source is a bare TODO), so this one owes
// nothing to it beyond the instruction set it walks.
func Run(p *Program, stdout io.Writer, stdin io.Reader) (err error) {
	if len(p.Funcs) == 0 {
		return fmt.Errorf("l1: program has no functions")
	}
	m := newMachine(p, stdout, stdin)

	defer func() {
		if r := recover(); r != nil {
			if ab, ok := r.(runtimeAbort); ok {
				err = fmt.Errorf("l1: %s", ab.msg)
				return
			}
			panic(r)
		}
	}()

	m.regs[l2.RSP] = 1 << 40
	m.call(p.Funcs[0], nil)
	return nil
}

type machine struct {
	funcs    map[string]*Function
	mem      map[int64]int64
	regs     map[l2.Reg]int64
	nextHeap int64
	out      io.Writer
	in       *bufio.Reader
}

func newMachine(p *Program, stdout io.Writer, stdin io.Reader) *machine {
	m := &machine{
		funcs:    map[string]*Function{},
		mem:      map[int64]int64{},
		regs:     map[l2.Reg]int64{},
		nextHeap: 1 << 20,
		out:      stdout,
		in:       bufio.NewReader(stdin),
	}
	for _, f := range p.Funcs {
		m.funcs[strings.TrimPrefix(f.Name, "@")] = f
	}
	return m
}

// call executes f with args already expected to sit in the leading
// ArgRegisters (the caller always moves them there itself, the same
// convention lang/tile's loadArgs establishes before every l2.Call),
// saving and restoring whichever callee-saved registers f's own body
// uses so a caller's live value in one survives the call exactly the
// way the pushq/popq pair lang/l1's codegen emits around f would.
func (m *machine) call(f *Function, args []int64) int64 {
	for i, a := range args {
		if i < len(l2.ArgRegisters) {
			m.regs[l2.ArgRegisters[i]] = a
		}
	}

	savedVals := map[l2.Reg]int64{}
	for _, r := range usedCalleeSaved(f) {
		savedVals[r] = m.regs[r]
	}
	frame := int64(f.StackSlots) * 8
	m.regs[l2.RSP] -= frame

	ret := m.execBlocks(f)

	m.regs[l2.RSP] += frame
	for r, v := range savedVals {
		m.regs[r] = v
	}
	return ret
}

func (m *machine) execBlocks(f *Function) int64 {
	index := map[string]int{}
	for i, b := range f.Blocks {
		index[b.Label] = i
	}

	i := 0
	for i < len(f.Blocks) {
		b := f.Blocks[i]
		next, retVal, returned := m.execBlock(f, b, i, index)
		if returned {
			return retVal
		}
		i = next
	}
	return 0
}

// execBlock runs every instruction of b, reporting the index of the
// block execution continues at. A one-target CJump falls through to
// the next block in order when its condition is false, mirroring the
// fallthrough lang/trace's scheduler relied on when it dropped the
// second target.
func (m *machine) execBlock(f *Function, b *Block, bi int, index map[string]int) (next int, retVal int64, returned bool) {
	for _, in := range b.Instrs {
		switch in := in.(type) {
		case l2.Assign:
			m.store(in.Dst, m.eval(in.Src))
		case l2.Arith:
			m.store(in.Dst, arith(in.Op, m.eval(in.L), m.eval(in.R)))
		case l2.Load:
			m.store(in.Dst, m.mem[m.addr(in.Mem)])
		case l2.Store:
			m.mem[m.addr(in.Mem)] = m.eval(in.Src)
		case l2.Call:
			m.doCall(in.Callee, in.NArgs)
		case l2.Return:
			return 0, 0, true
		case l2.ReturnVal:
			return 0, m.eval(in.Value), true
		case l2.Branch:
			return index[in.Target], 0, false
		case l2.CJump:
			if compare(in.Op, m.eval(in.L), m.eval(in.R)) {
				return index[in.True], 0, false
			}
			return bi + 1, 0, false
		default:
			panic(fmt.Sprintf("l1: %T cannot be interpreted directly", in))
		}
	}
	return bi + 1, 0, false
}

func (m *machine) doCall(callee Operand, nargs int) {
	args := make([]int64, nargs)
	for i := 0; i < nargs && i < len(l2.ArgRegisters); i++ {
		args[i] = m.regs[l2.ArgRegisters[i]]
	}

	switch callee := callee.(type) {
	case FunctionName:
		f, ok := m.funcs[strings.TrimPrefix(callee.Name, "@")]
		if !ok {
			panic(runtimeAbort{fmt.Sprintf("call to undefined function %s", callee.Name)})
		}
		m.regs[l2.RAX] = m.call(f, args)
	case RuntimeFunction:
		m.regs[l2.RAX] = m.runtimeCall(callee.Func, args)
	default:
		panic(fmt.Sprintf("l1: unsupported call target %v", callee))
	}
}

func (m *machine) runtimeCall(fn ilnum.RuntimeFunc, args []int64) int64 {
	switch fn {
	case ilnum.Print:
		// the argument is a tagged integer (2n+1); print the decoded n
		fmt.Fprintln(m.out, args[0]>>1)
		return 0
	case ilnum.Input:
		var v int64
		if _, err := fmt.Fscan(m.in, &v); err != nil {
			panic(runtimeAbort{"input: " + err.Error()})
		}
		return v
	case ilnum.Allocate:
		words, fill := args[0], args[1]
		addr := m.nextHeap
		m.nextHeap += words * 8
		for i := int64(0); i < words; i++ {
			m.mem[addr+i*8] = fill
		}
		return addr
	case ilnum.TupleError:
		panic(runtimeAbort{"tuple length mismatch"})
	case ilnum.TensorError:
		panic(runtimeAbort{"array index out of bounds"})
	default:
		panic(fmt.Sprintf("l1: unknown runtime function %v", fn))
	}
}

func (m *machine) eval(op Operand) int64 {
	switch op := op.(type) {
	case Register:
		return m.regs[op.Reg]
	case Number:
		return int64(op)
	default:
		panic(fmt.Sprintf("l1: operand %v is not a value", op))
	}
}

func (m *machine) addr(mem MemoryLocation) int64 {
	base, ok := mem.Base.(Register)
	if !ok {
		panic(fmt.Sprintf("l1: memory base %v did not survive allocation", mem.Base))
	}
	return m.regs[base.Reg] + mem.Offset
}

func (m *machine) store(dst Operand, v int64) {
	r, ok := dst.(Register)
	if !ok {
		panic(fmt.Sprintf("l1: assignment target %v did not survive allocation", dst))
	}
	m.regs[r.Reg] = v
}

func arith(op ilnum.ArithOp, l, r int64) int64 {
	switch op {
	case ilnum.Add:
		return l + r
	case ilnum.Sub:
		return l - r
	case ilnum.Mul:
		return l * r
	case ilnum.And:
		return l & r
	case ilnum.Shl:
		return l << uint(r)
	case ilnum.Shr:
		return l >> uint(r)
	default:
		panic(fmt.Sprintf("l1: unknown arithmetic operator %v", op))
	}
}

func compare(op ilnum.CmpOp, l, r int64) bool {
	switch op {
	case ilnum.LT:
		return l < r
	case ilnum.LE:
		return l <= r
	case ilnum.EQ:
		return l == r
	case ilnum.GE:
		return l >= r
	case ilnum.GT:
		return l > r
	default:
		panic(fmt.Sprintf("l1: unknown comparison operator %v", op))
	}
}
