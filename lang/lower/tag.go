package lower

import (
	"fmt"

	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
)

// TagProgram erases LA's static types down to tagged integers (low bit
// 1) and untagged pointers (low bit 0), and turns every array/tuple
// access into an explicit null/bounds-checked address computation. An
// integer literal n encodes at compile time to 2n+1; a tagged variable
// decodes through a fresh shr-by-1 temp wherever its raw value is
// actually needed (arithmetic operands, comparison operands, array/
// tuple indices). Pointer-typed values are never shifted: a variable
// operand is already in whatever representation its type implies, so
// encode/decode only ever rewrite Number literals, plus, for decode, a
// Variable's one fresh temp.
func TagProgram(p *la.Program) (*ir.Program, error) {
	out := &ir.Program{}
	for _, f := range p.Funcs {
		out.Funcs = append(out.Funcs, tagFunction(f))
	}
	if err := ir.Link(out); err != nil {
		return nil, err
	}
	return out, nil
}

type funcTag struct {
	blocks   []*cfg.Block[ir.Instr]
	cur      *cfg.Block[ir.Instr]
	lblCount int
	tmpCount int

	nullCheckFail string
	tensorError3  string
	tensorError4  string
	tupleError3   string

	// Reserved variables, declared once per function and mutated by
	// every safety check rather than redeclared fresh each time,
	// mirroring the single errorLine/errorDim/errorLen/errorIndex set
	// original_source's IRGenerator allocates per function. There is no
	// port of the original's errorCheck boolean: ir.CJump already
	// carries its comparison's operands directly, so the two-target
	// branch itself is the check, with nothing to stash between
	// computing it and branching on it.
	lineVar, dimVar, lenVar, idxVar operand.Variable
}

func (ft *funcTag) newBlock(label string) {
	b := &cfg.Block[ir.Instr]{Label: label}
	ft.blocks = append(ft.blocks, b)
	ft.cur = b
}

func (ft *funcTag) emit(in ir.Instr) { ft.cur.Instrs = append(ft.cur.Instrs, in) }

func (ft *funcTag) freshLabel(base string) string {
	name := fmt.Sprintf("%s%d", base, ft.lblCount)
	ft.lblCount++
	return name
}

func (ft *funcTag) freshVar(base string) operand.Variable {
	name := fmt.Sprintf("%s%d", base, ft.tmpCount)
	ft.tmpCount++
	return operand.Variable{Name: name}
}

func stripVar(v operand.Variable) operand.Variable { return operand.Variable{Name: v.Name} }

// encode rewrites op for a resting (tagged) use: an integer literal n
// becomes the compile-time constant 2n+1; a variable is already tagged
// and passes through with its LA-level Typ erased, since IR operands
// carry no static type.
func (ft *funcTag) encode(op operand.Operand) operand.Operand {
	switch o := op.(type) {
	case operand.Number:
		return operand.Number(int64(o)*2 + 1)
	case operand.Variable:
		return stripVar(o)
	default:
		return op
	}
}

// decode rewrites op for a raw-integer use: a literal is already raw
// (the grammar never tags a literal occurrence, only a tagged
// variable's resting value), so it passes through unchanged; a variable
// is arithmetic-right-shifted by one into a freshly declared temp,
// since shifting in place would destroy the tagged value any other use
// of the same variable still needs.
func (ft *funcTag) decode(op operand.Operand) operand.Operand {
	switch o := op.(type) {
	case operand.Number:
		return o
	case operand.Variable:
		tmp := ft.freshVar("dec")
		ft.emit(ir.Arith{Dst: tmp, Op: ilnum.Shr, L: stripVar(o), R: operand.Number(1)})
		return tmp
	default:
		return op
	}
}

func (ft *funcTag) encodeList(ops []operand.Operand) []operand.Operand {
	out := make([]operand.Operand, len(ops))
	for i, o := range ops {
		out[i] = ft.encode(o)
	}
	return out
}

func tagFunction(f *la.Function) *ir.Function {
	nullCheck, tensor3, tensor4, tuple3 := ir.ErrHandlerLabels(f.Name)
	ft := &funcTag{
		nullCheckFail: nullCheck,
		tensorError3:  tensor3,
		tensorError4:  tensor4,
		tupleError3:   tuple3,
	}
	ft.lineVar = ft.freshVar("errLine")
	ft.dimVar = ft.freshVar("errDim")
	ft.lenVar = ft.freshVar("errLen")
	ft.idxVar = ft.freshVar("errIndex")

	params := make(map[string]bool, len(f.CFG.Params))
	for _, p := range f.CFG.Params {
		params[p] = true
	}

	for i, b := range f.CFG.Blocks {
		ft.newBlock(b.Label)
		if i == 0 {
			ft.emitDeclInits(f.Decls, params)
		}
		for _, in := range b.Instrs {
			ft.tagInstr(in)
		}
	}

	ft.newBlock(ft.nullCheckFail)
	ft.emit(ir.Call{
		Callee: operand.RuntimeFunction{Func: ilnum.TensorError},
		Args:   []operand.Operand{ft.lineVar},
	})
	ft.emit(ir.Return{})

	ft.newBlock(ft.tensorError3)
	ft.emit(ir.Call{
		Callee: operand.RuntimeFunction{Func: ilnum.TensorError},
		Args:   []operand.Operand{ft.lineVar, ft.lenVar, ft.idxVar},
	})
	ft.emit(ir.Return{})

	ft.newBlock(ft.tensorError4)
	ft.emit(ir.Call{
		Callee: operand.RuntimeFunction{Func: ilnum.TensorError},
		Args:   []operand.Operand{ft.lineVar, ft.dimVar, ft.lenVar, ft.idxVar},
	})
	ft.emit(ir.Return{})

	ft.newBlock(ft.tupleError3)
	ft.emit(ir.Call{
		Callee: operand.RuntimeFunction{Func: ilnum.TupleError},
		Args:   []operand.Operand{ft.lineVar, ft.lenVar, ft.idxVar},
	})
	ft.emit(ir.Return{})

	return &ir.Function{
		Name:    f.Name,
		NParams: len(f.CFG.Params),
		CFG:     &cfg.Function[ir.Instr]{Name: f.Name, Params: f.CFG.Params, Blocks: ft.blocks},

		NullCheckFail: ft.nullCheckFail,
		TensorError3:  ft.tensorError3,
		TensorError4:  ft.tensorError4,
		TupleError3:   ft.tupleError3,
	}
}

// emitDeclInits gives every non-parameter declared variable its
// representation's zero value at function entry: the encoded integer
// zero (1) for int64, the null pointer (0) for array/tuple/code. A
// parameter already holds its caller-supplied value and is never
// reinitialised.
func (ft *funcTag) emitDeclInits(decls []la.Decl, params map[string]bool) {
	for _, d := range decls {
		if params[d.Name] {
			continue
		}
		init := operand.Number(0)
		if d.Type.Kind() == iltype.KindInt64 {
			init = operand.Number(1)
		}
		ft.emit(ir.Assign{Dst: operand.Variable{Name: d.Name}, Src: init})
	}
}

// emitCheckedMem emits the null-pointer and bounds checks spec.md §4.8
// requires before any access through mem, in order: null check first,
// then one low/high bounds test per index. A rank-1 access branches to
// the tuple-error handler when the base is a tuple, to the rank-1
// tensor-error handler otherwise; a rank>=2 access always branches to
// the rank>=2 tensor-error handler and additionally records which
// dimension failed. It returns mem rewritten with its base untagged and
// its indices decoded to raw integers, ready for ir.Load/ir.Store.
func (ft *funcTag) emitCheckedMem(mem operand.MemoryLocation, pos token.Pos) operand.MemoryLocation {
	base := stripVar(mem.Base)

	ft.emit(ir.Assign{Dst: ft.lineVar, Src: operand.Number(int64(pos.Line())*2 + 1)})

	okBase := ft.freshLabel("ok")
	ft.emit(ir.CJump{Op: ilnum.EQ, L: base, R: operand.Number(0), True: ft.nullCheckFail, False: okBase})
	ft.newBlock(okBase)

	rank := len(mem.Indices)
	decoded := make([]operand.Operand, rank)

	if rank > 1 {
		for i, idx := range mem.Indices {
			ft.emit(ir.Assign{Dst: ft.dimVar, Src: operand.Number(int64(i)*2 + 1)})
			ft.emit(ir.Len{Dst: ft.lenVar, Arr: base, Dim: operand.Number(int64(i))})
			ft.emit(ir.Assign{Dst: ft.idxVar, Src: ft.encode(idx)})
			ft.emitBoundsTest(ft.tensorError4)
			decoded[i] = ft.decode(idx)
		}
		return operand.MemoryLocation{Base: base, Indices: decoded}
	}

	handler := ft.tensorError3
	var dim operand.Operand
	if mem.Base.Typ == iltype.Tuple {
		handler = ft.tupleError3
	} else {
		dim = operand.Number(0)
	}
	ft.emit(ir.Len{Dst: ft.lenVar, Arr: base, Dim: dim})
	ft.emit(ir.Assign{Dst: ft.idxVar, Src: ft.encode(mem.Indices[0])})
	ft.emitBoundsTest(handler)
	decoded[0] = ft.decode(mem.Indices[0])

	return operand.MemoryLocation{Base: base, Indices: decoded}
}

// emitBoundsTest emits the two comparisons every bounds check shares:
// errIndex < 1 (raw index negative, since encode(0) = 1) and
// errLen <= errIndex. Both compare the encoded/tagged values directly
// rather than decoding first: encode is a strictly increasing affine
// map, so it preserves whatever ordering the raw values would compare
// under, and original_source's own getIRMemLocWithCheck never decodes
// either side of these two tests either.
func (ft *funcTag) emitBoundsTest(handler string) {
	okLow := ft.freshLabel("ok")
	ft.emit(ir.CJump{Op: ilnum.LT, L: ft.idxVar, R: operand.Number(1), True: handler, False: okLow})
	ft.newBlock(okLow)

	okHigh := ft.freshLabel("ok")
	ft.emit(ir.CJump{Op: ilnum.LE, L: ft.lenVar, R: ft.idxVar, True: handler, False: okHigh})
	ft.newBlock(okHigh)
}

func (ft *funcTag) tagInstr(in la.Instr) {
	switch in := in.(type) {
	case la.Assign:
		ft.emit(ir.Assign{Dst: stripVar(in.Dst), Src: ft.encode(in.Src)})

	case la.Arith:
		dl, dr := ft.decode(in.L), ft.decode(in.R)
		dst := stripVar(in.Dst)
		ft.emit(ir.Arith{Dst: dst, Op: in.Op, L: dl, R: dr})
		ft.emit(ir.Arith{Dst: dst, Op: ilnum.Shl, L: dst, R: operand.Number(1)})
		ft.emit(ir.Arith{Dst: dst, Op: ilnum.Add, L: dst, R: operand.Number(1)})

	case la.Load:
		mem := ft.emitCheckedMem(in.Mem, in.Pos)
		ft.emit(ir.Load{Dst: stripVar(in.Dst), Mem: mem})

	case la.Store:
		mem := ft.emitCheckedMem(in.Mem, in.Pos)
		ft.emit(ir.Store{Mem: mem, Src: ft.encode(in.Src)})

	case la.Len:
		var dim operand.Operand
		if in.Dim != nil {
			dim = ft.decode(in.Dim)
		}
		ft.emit(ir.Len{Dst: stripVar(in.Dst), Arr: stripVar(in.Arr), Dim: dim})

	case la.NewArray:
		ft.emit(ir.NewArray{Dst: stripVar(in.Dst), Dims: ft.encodeList(in.Dims)})

	case la.NewTuple:
		ft.emit(ir.NewTuple{Dst: stripVar(in.Dst), Len: ft.encode(in.Len)})

	case la.Call:
		ft.emit(ir.Call{Callee: in.Callee, Args: ft.encodeList(in.Args)})

	case la.CallAssign:
		ft.emit(ir.CallAssign{Dst: stripVar(in.Dst), Callee: in.Callee, Args: ft.encodeList(in.Args)})

	case la.Return:
		ft.emit(ir.Return{})

	case la.ReturnVal:
		ft.emit(ir.ReturnVal{Value: ft.encode(in.Value)})

	case la.Branch:
		ft.emit(ir.Branch{Target: in.Target})

	case la.CJump:
		dl, dr := ft.decode(in.L), ft.decode(in.R)
		ft.emit(ir.CJump{Op: in.Op, L: dl, R: dr, True: in.True, False: in.False})
	}
}
