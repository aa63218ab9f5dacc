package ir

import (
	"errors"

	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/lbscan"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
)

var errPanicMode = errors.New("ir: panic mode")

// ParseBytes parses the textual IR dump produced by Fprint.
func ParseBytes(fset *token.FileSet, filename string, src []byte) (*Program, error) {
	var p irParser
	p.file = fset.AddFile(filename, src)
	p.scanner.Init(p.file, src, func(pos token.Pos, msg string) { p.errs.Add(pos, "%s", msg) })
	p.advance()
	return p.parseProgram()
}

type irParser struct {
	file    *token.File
	scanner lbscan.Scanner
	errs    ilerr.List

	tok token.Token
	val token.Value
}

func (p *irParser) advance()          { p.tok = p.scanner.Scan(&p.val) }
func (p *irParser) at(kw string) bool { return p.tok == token.IDENT && p.val.Raw == kw }

func (p *irParser) fail(format string, args ...any) {
	p.errs.Add(p.val.Pos, format, args...)
	panic(errPanicMode)
}

func (p *irParser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.fail("expected %s, found %s", tok.GoString(), p.tok.GoString())
	}
	v := p.val
	p.advance()
	return v
}

func (p *irParser) expectKw(kw string) {
	if !p.at(kw) {
		p.fail("expected %q, found %q", kw, p.val.Raw)
	}
	p.advance()
}

func (p *irParser) parseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
		}
		if e := p.errs.Err(); e != nil {
			err = e
		}
	}()

	prog = &Program{}
	for p.tok != token.EOF {
		prog.Funcs = append(prog.Funcs, p.parseFunction())
	}
	if err == nil {
		err = Link(prog)
	}
	return prog, err
}

func (p *irParser) parseFunction() *Function {
	name := p.expect(token.FUNC)
	f := &Function{Name: name.Raw, CFG: &cfg.Function[Instr]{Name: name.Raw}}

	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		if len(f.CFG.Params) > 0 {
			p.expect(token.COMMA)
		}
		pname := p.expect(token.VAR)
		f.CFG.Params = append(f.CFG.Params, pname.Raw)
	}
	p.expect(token.RPAREN)
	f.NParams = len(f.CFG.Params)

	for p.tok == token.LABEL {
		f.CFG.Blocks = append(f.CFG.Blocks, p.parseBlock())
	}

	// Fprint has no slot for the error-handler labels, so a function read
	// back from a prog.IR file has to rederive them the same way
	// lang/lower/tag.go names them when first synthesizing the blocks,
	// the same gap lang/l2/parse.go's collectLocals closes for L2's
	// virtual-register list.
	f.NullCheckFail, f.TensorError3, f.TensorError4, f.TupleError3 = ErrHandlerLabels(f.Name)

	return f
}

func (p *irParser) parseBlock() *cfg.Block[Instr] {
	lbl := p.expect(token.LABEL)
	b := &cfg.Block[Instr]{Label: lbl.Raw}
	for p.tok != token.LABEL && p.tok != token.FUNC && p.tok != token.EOF {
		in := p.parseInstr()
		b.Instrs = append(b.Instrs, in)
		if in.IsTerminator() {
			break
		}
	}
	return b
}

var runtimeFuncs = map[string]ilnum.RuntimeFunc{
	"print": ilnum.Print, "input": ilnum.Input, "allocate": ilnum.Allocate,
	"tuple_error": ilnum.TupleError, "tensor_error": ilnum.TensorError,
}

func (p *irParser) parseOperand() operand.Operand {
	switch {
	case p.tok == token.NUMBER:
		v := p.val.Int
		p.advance()
		return operand.Number(v)
	case p.tok == token.VAR:
		name := p.val.Raw
		p.advance()
		if p.tok != token.LBRACK {
			return operand.Variable{Name: name}
		}
		return p.parseMem(name)
	case p.tok == token.FUNC:
		name := p.val.Raw
		p.advance()
		return operand.FunctionName{Name: name}
	case p.tok == token.IDENT:
		if rf, ok := runtimeFuncs[p.val.Raw]; ok {
			p.advance()
			return operand.RuntimeFunction{Func: rf}
		}
		fallthrough
	default:
		p.fail("expected an operand, found %s", p.tok.GoString())
		return nil
	}
}

func (p *irParser) parseMem(base string) operand.MemoryLocation {
	m := operand.MemoryLocation{Base: operand.Variable{Name: base}}
	for p.tok == token.LBRACK {
		p.advance()
		m.Indices = append(m.Indices, p.parseOperand())
		p.expect(token.RBRACK)
	}
	return m
}

func (p *irParser) parseArgs() []operand.Operand {
	p.expect(token.LPAREN)
	var args []operand.Operand
	for p.tok != token.RPAREN {
		if len(args) > 0 {
			p.expect(token.COMMA)
		}
		args = append(args, p.parseOperand())
	}
	p.expect(token.RPAREN)
	return args
}

func (p *irParser) cmpOp() ilnum.CmpOp {
	switch p.tok {
	case token.LT:
		p.advance()
		return ilnum.LT
	case token.LE:
		p.advance()
		return ilnum.LE
	case token.EQ:
		p.advance()
		return ilnum.EQ
	case token.GE:
		p.advance()
		return ilnum.GE
	case token.GT:
		p.advance()
		return ilnum.GT
	default:
		p.fail("expected a comparison operator, found %s", p.tok.GoString())
		return 0
	}
}

func (p *irParser) arithOp() (ilnum.ArithOp, bool) {
	switch p.tok {
	case token.PLUS:
		p.advance()
		return ilnum.Add, true
	case token.MINUS:
		p.advance()
		return ilnum.Sub, true
	case token.STAR:
		p.advance()
		return ilnum.Mul, true
	case token.AMP:
		p.advance()
		return ilnum.And, true
	case token.SHL:
		p.advance()
		return ilnum.Shl, true
	case token.SHR:
		p.advance()
		return ilnum.Shr, true
	default:
		return 0, false
	}
}

func (p *irParser) parseInstr() Instr {
	switch {
	case p.at("call"):
		p.advance()
		callee := p.parseOperand()
		args := p.parseArgs()
		return Call{Callee: callee, Args: args}

	case p.at("return"):
		p.advance()
		if p.tok == token.LABEL || p.tok == token.FUNC || p.tok == token.EOF {
			return Return{}
		}
		return ReturnVal{Value: p.parseOperand()}

	case p.at("goto"):
		p.advance()
		lbl := p.expect(token.LABEL)
		return Branch{Target: lbl.Raw}

	case p.at("if"):
		p.advance()
		l := p.parseOperand()
		op := p.cmpOp()
		r := p.parseOperand()
		p.expectKw("goto")
		tl := p.expect(token.LABEL)
		p.expectKw("else")
		fl := p.expect(token.LABEL)
		return CJump{Op: op, L: l, R: r, True: tl.Raw, False: fl.Raw}

	case p.tok == token.VAR:
		return p.parseVarInstr()

	default:
		mem := p.parseMemTarget()
		p.expect(token.ARROW)
		src := p.parseOperand()
		return Store{Mem: mem, Src: src}
	}
}

func (p *irParser) parseMemTarget() operand.MemoryLocation {
	name := p.expect(token.VAR)
	return p.parseMem(name.Raw)
}

func (p *irParser) parseVarInstr() Instr {
	name := p.expect(token.VAR)
	dst := operand.Variable{Name: name.Raw}

	if p.tok == token.LBRACK {
		mem := p.parseMem(name.Raw)
		p.expect(token.ARROW)
		src := p.parseOperand()
		return Store{Mem: mem, Src: src}
	}

	p.expect(token.ARROW)

	switch {
	case p.at("length"):
		p.advance()
		p.expect(token.LPAREN)
		arr := p.expect(token.VAR)
		l := Len{Dst: dst, Arr: operand.Variable{Name: arr.Raw}}
		if p.tok == token.COMMA {
			p.advance()
			l.Dim = p.parseOperand()
		}
		p.expect(token.RPAREN)
		return l

	case p.at("new"):
		p.advance()
		switch {
		case p.at("Array"):
			p.advance()
			dims := p.parseArgs()
			return NewArray{Dst: dst, Dims: dims}
		case p.at("Tuple"):
			p.advance()
			p.expect(token.LPAREN)
			length := p.parseOperand()
			p.expect(token.RPAREN)
			return NewTuple{Dst: dst, Len: length}
		default:
			p.fail("expected %q or %q after 'new'", "Array", "Tuple")
			return nil
		}

	case p.at("call"):
		p.advance()
		callee := p.parseOperand()
		args := p.parseArgs()
		return CallAssign{Dst: dst, Callee: callee, Args: args}

	default:
		first := p.parseOperand()
		if op, ok := p.arithOp(); ok {
			second := p.parseOperand()
			return Arith{Dst: dst, Op: op, L: first, R: second}
		}
		if mem, ok := first.(operand.MemoryLocation); ok {
			return Load{Dst: dst, Mem: mem}
		}
		return Assign{Dst: dst, Src: first}
	}
}
