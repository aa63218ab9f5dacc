package la

import (
	"errors"

	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/lbscan"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
)

var errPanicMode = errors.New("la: panic mode")

// ParseBytes parses the textual LA dump produced by Fprint.
func ParseBytes(fset *token.FileSet, filename string, src []byte) (*Program, error) {
	var p laParser
	p.file = fset.AddFile(filename, src)
	p.scanner.Init(p.file, src, func(pos token.Pos, msg string) { p.errs.Add(pos, "%s", msg) })
	p.advance()
	return p.parseProgram()
}

type laParser struct {
	file    *token.File
	scanner lbscan.Scanner
	errs    ilerr.List

	tok token.Token
	val token.Value

	// types mirrors every Decl collected for the function currently being
	// parsed, since a standalone LA text file only declares a variable's
	// type once but every later occurrence of operand.Variable still
	// needs Typ populated the same way lang/lower's tagging pass relies
	// on it being populated for a program built in memory.
	types map[string]iltype.Type
}

func (p *laParser) typeOf(name string) iltype.Type { return p.types[name] }

func (p *laParser) advance()                { p.tok = p.scanner.Scan(&p.val) }
func (p *laParser) at(kw string) bool       { return p.tok == token.IDENT && p.val.Raw == kw }
func (p *laParser) fail(format string, args ...any) {
	p.errs.Add(p.val.Pos, format, args...)
	panic(errPanicMode)
}

func (p *laParser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.fail("expected %s, found %s", tok.GoString(), p.tok.GoString())
	}
	v := p.val
	p.advance()
	return v
}

func (p *laParser) expectKw(kw string) {
	if !p.at(kw) {
		p.fail("expected %q, found %q", kw, p.val.Raw)
	}
	p.advance()
}

func (p *laParser) parseProgram() (prog *Program, err error) {
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

func (p *laParser) parseType() iltype.Type {
	name := p.expect(token.IDENT)
	switch name.Raw {
	case "int64":
		return iltype.Int64
	case "code":
		return iltype.Code
	case "void":
		return iltype.Void
	case "tuple":
		return iltype.Tuple
	case "array1":
		return iltype.NewArray(1)
	case "array2":
		return iltype.NewArray(2)
	case "array3":
		return iltype.NewArray(3)
	default:
		p.fail("unknown type %q", name.Raw)
		return nil
	}
}

func (p *laParser) parseFunction() *Function {
	name := p.expect(token.FUNC)
	f := &Function{Name: name.Raw, CFG: &cfg.Function[Instr]{Name: name.Raw}}
	p.types = map[string]iltype.Type{}

	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		if len(f.CFG.Params) > 0 {
			p.expect(token.COMMA)
		}
		pname := p.expect(token.VAR)
		ptyp := p.parseType()
		f.CFG.Params = append(f.CFG.Params, pname.Raw)
		f.ParamTypes = append(f.ParamTypes, ptyp)
		f.Decls = append(f.Decls, Decl{Name: pname.Raw, Type: ptyp})
		p.types[pname.Raw] = ptyp
	}
	p.expect(token.RPAREN)
	f.Ret = p.parseType()

	for p.at("var") {
		p.advance()
		vname := p.expect(token.VAR)
		vtyp := p.parseType()
		if _, dup := p.types[vname.Raw]; !dup {
			f.Decls = append(f.Decls, Decl{Name: vname.Raw, Type: vtyp})
		}
		p.types[vname.Raw] = vtyp
	}

	for p.tok == token.LABEL {
		f.CFG.Blocks = append(f.CFG.Blocks, p.parseBlock())
	}
	return f
}

func (p *laParser) parseBlock() *cfg.Block[Instr] {
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

func (p *laParser) parseOperand() operand.Operand {
	switch {
	case p.tok == token.NUMBER:
		v := p.val.Int
		p.advance()
		return operand.Number(v)
	case p.tok == token.VAR:
		name := p.val.Raw
		p.advance()
		if p.tok != token.LBRACK {
			return operand.Variable{Name: name, Typ: p.typeOf(name)}
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

var runtimeFuncs = map[string]ilnum.RuntimeFunc{
	"print": ilnum.Print, "input": ilnum.Input, "allocate": ilnum.Allocate,
	"tuple_error": ilnum.TupleError, "tensor_error": ilnum.TensorError,
}

func (p *laParser) parseMem(base string) operand.MemoryLocation {
	m := operand.MemoryLocation{Base: operand.Variable{Name: base, Typ: p.typeOf(base)}}
	for p.tok == token.LBRACK {
		p.advance()
		m.Indices = append(m.Indices, p.parseOperand())
		p.expect(token.RBRACK)
	}
	return m
}

func (p *laParser) parseArgs() []operand.Operand {
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

func (p *laParser) cmpOp() ilnum.CmpOp {
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

func (p *laParser) arithOp() (ilnum.ArithOp, bool) {
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

func (p *laParser) parseInstr() Instr {
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
		pos := p.val.Pos
		mem := p.parseMemTarget()
		p.expect(token.ARROW)
		src := p.parseOperand()
		return Store{Mem: mem, Src: src, Pos: pos}
	}
}

func (p *laParser) parseMemTarget() operand.MemoryLocation {
	name := p.expect(token.VAR)
	return p.parseMem(name.Raw)
}

func (p *laParser) parseVarInstr() Instr {
	pos := p.val.Pos
	name := p.expect(token.VAR)
	dst := operand.Variable{Name: name.Raw, Typ: p.typeOf(name.Raw)}

	if p.tok == token.LBRACK {
		mem := p.parseMem(name.Raw)
		p.expect(token.ARROW)
		src := p.parseOperand()
		return Store{Mem: mem, Src: src, Pos: pos}
	}

	p.expect(token.ARROW)

	switch {
	case p.at("length"):
		p.advance()
		p.expect(token.LPAREN)
		arr := p.expect(token.VAR)
		l := Len{Dst: dst, Arr: operand.Variable{Name: arr.Raw, Typ: p.typeOf(arr.Raw)}}
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
			return Load{Dst: dst, Mem: mem, Pos: pos}
		}
		return Assign{Dst: dst, Src: first}
	}
}
