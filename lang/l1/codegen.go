package l1

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
)

// Generate emits x86-64 AT&T-syntax assembly for p. A go() trampoline
// saves the callee-saved registers, calls the entry function, and
// restores them, while every function prologue/epilogue reserves and
// releases its locals directly on the stack rather than through a
// frame pointer.
func Generate(w io.Writer, p *Program) error {
	if len(p.Funcs) == 0 {
		return fmt.Errorf("l1: program has no functions")
	}
	entry := p.Funcs[0]

	fmt.Fprintln(w, ".text")
	fmt.Fprintln(w, "  .globl go")
	fmt.Fprintln(w, "go:")
	for _, r := range []string{"rbx", "rbp", "r12", "r13", "r14", "r15"} {
		fmt.Fprintf(w, "  pushq %%%s\n", r)
	}
	fmt.Fprintf(w, "  call _%s\n", strings.TrimPrefix(entry.Name, "@"))
	for _, r := range []string{"r15", "r14", "r13", "r12", "rbp", "rbx"} {
		fmt.Fprintf(w, "  popq %%%s\n", r)
	}
	fmt.Fprintln(w, "  retq")

	for _, f := range p.Funcs {
		if err := generateFunc(w, f); err != nil {
			return err
		}
	}
	return nil
}

// calleeSaved lists the registers a function must restore before
// returning if it clobbers them, matching the go() trampoline's own
// list minus rbp (never assigned a variable) minus rsp.
var calleeSaved = []l2.Reg{l2.RBX, l2.R12, l2.R13, l2.R14, l2.R15}

// usedCalleeSaved reports which of calleeSaved the allocator actually
// coloured a variable to in f, in calleeSaved order, so generateFunc
// only pushes/pops the ones this function's own body touches. The
// allocator keeps anything live across a call out of caller-saved
// registers (l2.Call.Defs models the clobber), but it is free to use a
// callee-saved register for a purely local value, and that use has to
// be preserved across any call f itself makes.
func usedCalleeSaved(f *Function) []l2.Reg {
	seen := map[l2.Reg]bool{}
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			for _, op := range append(in.Defs(), in.Uses()...) {
				if r, ok := op.(Register); ok {
					seen[r.Reg] = true
				}
			}
		}
	}
	var out []l2.Reg
	for _, r := range calleeSaved {
		if seen[r] {
			out = append(out, r)
		}
	}
	return out
}

func generateFunc(w io.Writer, f *Function) error {
	fmt.Fprintf(w, "_%s:\n", strings.TrimPrefix(f.Name, "@"))
	saved := usedCalleeSaved(f)
	for _, r := range saved {
		fmt.Fprintf(w, "  pushq %%%s\n", r)
	}
	frame := int64(f.StackSlots) * 8
	if frame > 0 {
		fmt.Fprintf(w, "  subq $%d, %%rsp\n", frame)
	}

	for _, b := range f.Blocks {
		fmt.Fprintf(w, "%s:\n", localLabel(f.Name, b.Label))
		for _, in := range b.Instrs {
			if err := generateInstr(w, f, in, frame, saved); err != nil {
				return err
			}
		}
	}
	return nil
}

func epilogue(w io.Writer, frame int64, saved []l2.Reg) {
	if frame > 0 {
		fmt.Fprintf(w, "  addq $%d, %%rsp\n", frame)
	}
	for i := len(saved) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  popq %%%s\n", saved[i])
	}
}

func localLabel(fn, label string) string {
	return "_" + strings.TrimPrefix(fn, "@") + "_" + label
}

func x86Operand(op Operand) (string, error) {
	switch op := op.(type) {
	case Register:
		return "%" + string(op.Reg), nil
	case Number:
		return fmt.Sprintf("$%d", int64(op)), nil
	case MemoryLocation:
		base, err := x86Operand(op.Base)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d(%s)", op.Offset, base), nil
	case FunctionName:
		return "_" + strings.TrimPrefix(op.Name, "@"), nil
	case RuntimeFunction:
		return op.Func.String(), nil
	default:
		return "", fmt.Errorf("l1: operand %v reached code generation unallocated", op)
	}
}

func arithMnemonic(op ilnum.ArithOp) string {
	switch op {
	case ilnum.Add:
		return "addq"
	case ilnum.Sub:
		return "subq"
	case ilnum.Mul:
		return "imulq"
	case ilnum.And:
		return "andq"
	case ilnum.Shl:
		return "shlq"
	case ilnum.Shr:
		return "sarq"
	default:
		return "??"
	}
}

func cmpJump(op ilnum.CmpOp) string {
	switch op {
	case ilnum.LT:
		return "jl"
	case ilnum.LE:
		return "jle"
	case ilnum.EQ:
		return "je"
	case ilnum.GE:
		return "jge"
	case ilnum.GT:
		return "jg"
	default:
		return "??"
	}
}

func generateInstr(w io.Writer, f *Function, in Instr, frame int64, saved []l2.Reg) error {
	switch in := in.(type) {
	case l2.Assign:
		dst, err := x86Operand(in.Dst)
		if err != nil {
			return err
		}
		src, err := x86Operand(in.Src)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  movq %s, %s\n", src, dst)

	case l2.Arith:
		dst, err := x86Operand(in.Dst)
		if err != nil {
			return err
		}
		l, err := x86Operand(in.L)
		if err != nil {
			return err
		}
		r, err := x86Operand(in.R)
		if err != nil {
			return err
		}

		// Coloring can assign Dst the same register as R's variable while
		// L's differs; moving L into Dst first would then clobber R before
		// it is read. clobbered is false whenever L and Dst already
		// coincide too, since in that case there is nothing left to move.
		clobbered := l != dst && r == dst

		if in.Op.IsShift() {
			if reg, ok := in.R.(Register); ok && reg.Reg != "rcx" {
				// The shift count must move into %rcx before L moves into Dst:
				// L's move can otherwise clobber the register R lives in when
				// R and Dst alias (the same hazard as the non-shift ops below).
				fmt.Fprintf(w, "  movq %%%s, %%rcx\n", reg.Reg)
				if l != dst {
					fmt.Fprintf(w, "  movq %s, %s\n", l, dst)
				}
				fmt.Fprintf(w, "  %s %%cl, %s\n", arithMnemonic(in.Op), dst)
				break
			}
			if l != dst {
				fmt.Fprintf(w, "  movq %s, %s\n", l, dst)
			}
			fmt.Fprintf(w, "  %s %s, %s\n", arithMnemonic(in.Op), r, dst)
			break
		}

		switch {
		case clobbered && in.Op == ilnum.Sub:
			// Dst already holds R's value; subq L, Dst leaves R-L, so negate
			// to recover L-R.
			fmt.Fprintf(w, "  subq %s, %s\n", l, dst)
			fmt.Fprintf(w, "  negq %s\n", dst)
		case clobbered && (in.Op == ilnum.Add || in.Op == ilnum.Mul || in.Op == ilnum.And):
			// Commutative: Dst already holds R's value, so applying L
			// directly computes the same result as L op R.
			fmt.Fprintf(w, "  %s %s, %s\n", arithMnemonic(in.Op), l, dst)
		default:
			if l != dst {
				fmt.Fprintf(w, "  movq %s, %s\n", l, dst)
			}
			fmt.Fprintf(w, "  %s %s, %s\n", arithMnemonic(in.Op), r, dst)
		}

	case l2.Load:
		mem, err := x86Operand(in.Mem)
		if err != nil {
			return err
		}
		dst, err := x86Operand(in.Dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  movq %s, %s\n", mem, dst)

	case l2.Store:
		mem, err := x86Operand(in.Mem)
		if err != nil {
			return err
		}
		src, err := x86Operand(in.Src)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  movq %s, %s\n", src, mem)

	case l2.Call:
		callee, err := x86Operand(in.Callee)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  call %s\n", callee)

	case l2.Return:
		epilogue(w, frame, saved)
		fmt.Fprintln(w, "  retq")

	case l2.ReturnVal:
		val, err := x86Operand(in.Value)
		if err != nil {
			return err
		}
		if val != "%rax" {
			fmt.Fprintf(w, "  movq %s, %%rax\n", val)
		}
		epilogue(w, frame, saved)
		fmt.Fprintln(w, "  retq")

	case l2.Branch:
		fmt.Fprintf(w, "  jmp %s\n", localLabel(f.Name, in.Target))

	case l2.CJump:
		l, err := x86Operand(in.L)
		if err != nil {
			return err
		}
		r, err := x86Operand(in.R)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  cmpq %s, %s\n", r, l)
		fmt.Fprintf(w, "  %s %s\n", cmpJump(in.Op), localLabel(f.Name, in.True))

	default:
		return fmt.Errorf("l1: %T has no tagged-runtime lowering and cannot be assembled directly; the allocator must eliminate it first", in)
	}
	return nil
}
