// Package lower implements the two scope- and representation-eliminating
// passes of the pipeline: LowerProgram erases
// lexical blocks, if/while and continue/break down to a flat labelled
// instruction sequence with globally-unique names; TagProgram erases static types down to tagged integers/pointers and
// makes every array/tuple access's safety check explicit. Both passes
// build their output function body the way a bytecode compiler builds a
// function: accumulate instructions into a "current"
// block, start a fresh block on any label target, and never look
// backwards once a block is closed by its terminator.
package lower

import (
	"fmt"

	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/operand"
)

var runtimeNameToFunc = map[string]ilnum.RuntimeFunc{
	"print": ilnum.Print, "input": ilnum.Input, "allocate": ilnum.Allocate,
	"tuple_error": ilnum.TupleError, "tensor_error": ilnum.TensorError,
}

type funcLower struct {
	decls    []la.Decl
	types    map[string]iltype.Type
	blocks   []*cfg.Block[la.Instr]
	cur      *cfg.Block[la.Instr]
	tmpCount int
	lblCount int
	loops    []loopCtx
}

func (fl *funcLower) newBlock(label string) *cfg.Block[la.Instr] {
	b := &cfg.Block[la.Instr]{Label: label}
	fl.blocks = append(fl.blocks, b)
	fl.cur = b
	return b
}

func (fl *funcLower) emit(in la.Instr) { fl.cur.Instrs = append(fl.cur.Instrs, in) }

// emitTerm appends a terminator to the current block, then opens a fresh
// unreachable block so any LB statements lexically following a
// break/continue/return (dead code the source grammar permits) still
// have somewhere to land without violating the "one terminator, at the
// end" CFG invariant.
func (fl *funcLower) emitTerm(in la.Instr) {
	fl.emit(in)
	fl.newBlock(fl.freshLabel("dead"))
}

func (fl *funcLower) freshLabel(base string) string {
	name := fmt.Sprintf("%s%d", base, fl.lblCount)
	fl.lblCount++
	return name
}

func (fl *funcLower) freshVar(typ iltype.Type) operand.Variable {
	name := fmt.Sprintf("t%d", fl.tmpCount)
	fl.tmpCount++
	fl.decls = append(fl.decls, la.Decl{Name: name, Type: typ})
	fl.types[name] = typ
	return operand.Variable{Name: name, Typ: typ}
}

// LowerProgram erases every function's lexical scoping and structured
// control flow, producing an LA program of flat, globally-uniquely-named
// instructions.
func LowerProgram(p *lb.Program) (*la.Program, error) {
	out := &la.Program{}
	for _, f := range p.Funcs {
		lf, err := lowerFunction(f)
		if err != nil {
			return nil, err
		}
		out.Funcs = append(out.Funcs, lf)
	}
	if err := la.Link(out); err != nil {
		return nil, err
	}
	return out, nil
}

func lowerFunction(f *lb.Function) (*la.Function, error) {
	fl := &funcLower{types: map[string]iltype.Type{}}
	root := newRootScope()

	var paramNames []string
	for _, param := range f.Params {
		laName := root.declare(param.Name)
		fl.decls = append(fl.decls, la.Decl{Name: laName, Type: param.Type})
		fl.types[laName] = param.Type
		paramNames = append(paramNames, laName)
	}

	fl.newBlock("entry")
	fl.lowerBlock(f.Body, root)

	if len(fl.cur.Instrs) == 0 || !fl.cur.Instrs[len(fl.cur.Instrs)-1].IsTerminator() {
		if f.Ret == iltype.Void {
			fl.emit(la.Return{})
		} else {
			fl.emit(la.ReturnVal{Value: operand.Number(0)})
		}
	}

	cfgFn := &cfg.Function[la.Instr]{Name: f.Name, Params: paramNames, Blocks: fl.blocks}
	var paramTypes []iltype.Type
	for _, p := range f.Params {
		paramTypes = append(paramTypes, p.Type)
	}
	return &la.Function{Name: f.Name, ParamTypes: paramTypes, Ret: f.Ret, Decls: fl.decls, CFG: cfgFn}, nil
}

func (fl *funcLower) lowerBlock(b *lb.Block, sc *scope) {
	for _, s := range b.Stmts {
		fl.lowerStmt(s, sc)
	}
}

func (fl *funcLower) lowerStmt(s lb.Stmt, sc *scope) {
	switch s := s.(type) {
	case *lb.DeclStmt:
		laName := sc.declare(s.Name)
		fl.decls = append(fl.decls, la.Decl{Name: laName, Type: s.Type})
		fl.types[laName] = s.Type
		if s.Init != nil {
			v := fl.lowerExpr(s.Init, sc)
			fl.emit(la.Assign{Dst: operand.Variable{Name: laName, Typ: s.Type}, Src: v})
		}

	case *lb.AssignStmt:
		rhs := fl.lowerExpr(s.Rhs, sc)
		switch lhs := s.Lhs.(type) {
		case *lb.VarExpr:
			laName, _ := sc.lookup(lhs.Name)
			fl.emit(la.Assign{Dst: operand.Variable{Name: laName, Typ: fl.types[laName]}, Src: rhs})
		case *lb.MemExpr:
			mem := fl.lowerMem(lhs, sc)
			fl.emit(la.Store{Mem: mem, Src: rhs, Pos: lhs.Pos})
		}

	case *lb.CallStmt:
		args := fl.lowerExprList(s.Call.Args, sc)
		fl.emit(la.Call{Callee: fl.calleeOperand(s.Call), Args: args})

	case *lb.IfStmt:
		fl.lowerIf(s, sc)

	case *lb.WhileStmt:
		fl.lowerWhile(s, sc)

	case *lb.BreakStmt:
		if len(fl.loops) == 0 {
			panic(ilerr.Malformedf(s.Pos, "break outside a loop"))
		}
		top := fl.loops[len(fl.loops)-1]
		fl.emitTerm(la.Branch{Target: top.exit})

	case *lb.ContinueStmt:
		if len(fl.loops) == 0 {
			panic(ilerr.Malformedf(s.Pos, "continue outside a loop"))
		}
		top := fl.loops[len(fl.loops)-1]
		fl.emitTerm(la.Branch{Target: top.header})

	case *lb.ReturnStmt:
		if s.Value == nil {
			fl.emitTerm(la.Return{})
		} else {
			v := fl.lowerExpr(s.Value, sc)
			fl.emitTerm(la.ReturnVal{Value: v})
		}
	}
}

func (fl *funcLower) lowerIf(s *lb.IfStmt, sc *scope) {
	thenLbl := fl.freshLabel("then")
	joinLbl := fl.freshLabel("endif")
	elseLbl := joinLbl
	if s.Else != nil {
		elseLbl = fl.freshLabel("else")
	}

	l, r := fl.lowerExpr(s.Cond.L, sc), fl.lowerExpr(s.Cond.R, sc)
	fl.emitCJumpNoNewBlock(s.Cond.Op, l, r, thenLbl, elseLbl)

	fl.newBlock(thenLbl)
	fl.lowerBlock(s.Then, sc.enter())
	if len(fl.cur.Instrs) == 0 || !fl.cur.Instrs[len(fl.cur.Instrs)-1].IsTerminator() {
		fl.emit(la.Branch{Target: joinLbl})
	}

	if s.Else != nil {
		fl.newBlock(elseLbl)
		fl.lowerBlock(s.Else, sc.enter())
		if len(fl.cur.Instrs) == 0 || !fl.cur.Instrs[len(fl.cur.Instrs)-1].IsTerminator() {
			fl.emit(la.Branch{Target: joinLbl})
		}
	}

	fl.newBlock(joinLbl)
}

func (fl *funcLower) lowerWhile(s *lb.WhileStmt, sc *scope) {
	headerLbl := fl.freshLabel("while")
	bodyLbl := fl.freshLabel("body")
	exitLbl := fl.freshLabel("endwhile")

	fl.emit(la.Branch{Target: headerLbl})
	fl.newBlock(headerLbl)
	l, r := fl.lowerExpr(s.Cond.L, sc), fl.lowerExpr(s.Cond.R, sc)
	fl.emitCJumpNoNewBlock(s.Cond.Op, l, r, bodyLbl, exitLbl)

	fl.newBlock(bodyLbl)
	fl.loops = append(fl.loops, loopCtx{header: headerLbl, exit: exitLbl})
	fl.lowerBlock(s.Body, sc.enter())
	fl.loops = fl.loops[:len(fl.loops)-1]
	if len(fl.cur.Instrs) == 0 || !fl.cur.Instrs[len(fl.cur.Instrs)-1].IsTerminator() {
		fl.emit(la.Branch{Target: headerLbl})
	}

	fl.newBlock(exitLbl)
}

func (fl *funcLower) emitCJumpNoNewBlock(op ilnum.CmpOp, l, r operand.Operand, trueLbl, falseLbl string) {
	fl.emit(la.CJump{Op: op, L: l, R: r, True: trueLbl, False: falseLbl})
}

func (fl *funcLower) lowerExprList(exprs []lb.Expr, sc *scope) []operand.Operand {
	out := make([]operand.Operand, len(exprs))
	for i, e := range exprs {
		out[i] = fl.lowerExpr(e, sc)
	}
	return out
}

func (fl *funcLower) lowerMem(m *lb.MemExpr, sc *scope) operand.MemoryLocation {
	laName, _ := sc.lookup(m.Base)
	return operand.MemoryLocation{
		Base:    operand.Variable{Name: laName, Typ: fl.types[laName]},
		Indices: fl.lowerExprList(m.Indices, sc),
	}
}

func (fl *funcLower) calleeOperand(c *lb.CallExpr) operand.Operand {
	if c.IsRuntime {
		return operand.RuntimeFunction{Func: runtimeNameToFunc[c.Callee]}
	}
	return operand.FunctionName{Name: c.Callee}
}

func (fl *funcLower) lowerExpr(e lb.Expr, sc *scope) operand.Operand {
	switch e := e.(type) {
	case *lb.VarExpr:
		laName, _ := sc.lookup(e.Name)
		return operand.Variable{Name: laName, Typ: fl.types[laName]}

	case *lb.NumberExpr:
		return operand.Number(e.Value)

	case *lb.BinExpr:
		l, r := fl.lowerExpr(e.L, sc), fl.lowerExpr(e.R, sc)
		t := fl.freshVar(iltype.Int64)
		fl.emit(la.Arith{Dst: t, Op: e.Op, L: l, R: r})
		return t

	case *lb.LoadExpr:
		mem := fl.lowerMem(e.Mem, sc)
		t := fl.freshVar(iltype.Int64)
		fl.emit(la.Load{Dst: t, Mem: mem, Pos: e.Mem.Pos})
		return t

	case *lb.LenExpr:
		laName, _ := sc.lookup(e.Var)
		var dim operand.Operand
		if e.Dim != nil {
			dim = fl.lowerExpr(e.Dim, sc)
		}
		t := fl.freshVar(iltype.Int64)
		fl.emit(la.Len{Dst: t, Arr: operand.Variable{Name: laName, Typ: fl.types[laName]}, Dim: dim})
		return t

	case *lb.NewArrayExpr:
		dims := fl.lowerExprList(e.Dims, sc)
		t := fl.freshVar(iltype.NewArray(len(dims)))
		fl.emit(la.NewArray{Dst: t, Dims: dims})
		return t

	case *lb.NewTupleExpr:
		ln := fl.lowerExpr(e.Len, sc)
		t := fl.freshVar(iltype.Tuple)
		fl.emit(la.NewTuple{Dst: t, Len: ln})
		return t

	case *lb.CallExpr:
		args := fl.lowerExprList(e.Args, sc)
		t := fl.freshVar(iltype.Int64)
		fl.emit(la.CallAssign{Dst: t, Callee: fl.calleeOperand(e), Args: args})
		return t

	default:
		panic(fmt.Sprintf("lower: unhandled expression type %T", e))
	}
}
