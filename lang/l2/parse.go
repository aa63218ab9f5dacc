package l2

import (
	"errors"

	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/lbscan"
	"github.com/mna/sixpass/lang/token"
	"golang.org/x/exp/slices"
)

var errPanicMode = errors.New("l2: panic mode")

// ParseBytes parses the textual L2/L1 dump produced by Fprint.
func ParseBytes(fset *token.FileSet, filename string, src []byte) (*Program, error) {
	var p l2Parser
	p.file = fset.AddFile(filename, src)
	p.scanner.Init(p.file, src, func(pos token.Pos, msg string) { p.errs.Add(pos, "%s", msg) })
	p.advance()
	return p.parseProgram()
}

type l2Parser struct {
	file    *token.File
	scanner lbscan.Scanner
	errs    ilerr.List

	tok token.Token
	val token.Value
}

func (p *l2Parser) advance()          { p.tok = p.scanner.Scan(&p.val) }
func (p *l2Parser) at(kw string) bool { return p.tok == token.IDENT && p.val.Raw == kw }

func (p *l2Parser) fail(format string, args ...any) {
	p.errs.Add(p.val.Pos, format, args...)
	panic(errPanicMode)
}

func (p *l2Parser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.fail("expected %s, found %s", tok.GoString(), p.tok.GoString())
	}
	v := p.val
	p.advance()
	return v
}

func (p *l2Parser) expectKw(kw string) {
	if !p.at(kw) {
		p.fail("expected %q, found %q", kw, p.val.Raw)
	}
	p.advance()
}

func (p *l2Parser) parseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
		}
		err = p.errs.Err()
	}()

	prog = &Program{}
	for p.tok != token.EOF {
		prog.Funcs = append(prog.Funcs, p.parseFunction())
	}
	return prog, err
}

func (p *l2Parser) parseFunction() *Function {
	name := p.expect(token.FUNC)
	f := &Function{Name: name.Raw}

	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		if len(f.Params) > 0 {
			p.expect(token.COMMA)
		}
		pname := p.expect(token.VAR)
		f.Params = append(f.Params, pname.Raw)
	}
	p.expect(token.RPAREN)
	slots := p.expect(token.NUMBER)
	f.StackSlots = int(slots.Int)

	for p.tok == token.LABEL {
		f.Blocks = append(f.Blocks, p.parseBlock())
	}
	f.Locals = collectLocals(f)
	return f
}

// collectLocals recovers f.Locals from its instructions: Fprint never
// prints the field, so a function read back from prog.L2 has to
// rediscover which names are virtual registers the same way
// lang/tile's funcSelect accumulated them while emitting the function
// in the first place.
func collectLocals(f *Function) []string {
	seen := map[string]bool{}
	for _, name := range f.Params {
		seen[name] = true
	}
	for _, b := range f.Blocks {
		for _, in := range b.Instrs {
			for _, op := range append(in.Defs(), in.Uses()...) {
				if v, ok := op.(Variable); ok {
					seen[v.Name] = true
				}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (p *l2Parser) parseBlock() *Block {
	lbl := p.expect(token.LABEL)
	b := &Block{Label: lbl.Raw}
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

func (p *l2Parser) parseOperand() Operand {
	switch {
	case p.tok == token.NUMBER:
		v := p.val.Int
		p.advance()
		return Number(v)
	case p.tok == token.VAR:
		name := p.val.Raw
		p.advance()
		return Variable{Name: name}
	case p.tok == token.FUNC:
		name := p.val.Raw
		p.advance()
		return FunctionName{Name: name}
	case p.at("mem"):
		p.advance()
		base := p.parseOperand()
		off := p.expect(token.NUMBER)
		return MemoryLocation{Base: base, Offset: off.Int}
	case p.tok == token.IDENT:
		if p.val.Raw == "argbase" {
			p.advance()
			return IncomingArgsBase{}
		}
		if rf, ok := runtimeFuncs[p.val.Raw]; ok {
			p.advance()
			return RuntimeFunction{Func: rf}
		}
		if r, ok := LookupReg(p.val.Raw); ok {
			p.advance()
			return Register{Reg: r}
		}
		p.fail("unknown operand %q", p.val.Raw)
		return nil
	default:
		p.fail("expected an operand, found %s", p.tok.GoString())
		return nil
	}
}

func (p *l2Parser) cmpOp() ilnum.CmpOp {
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

func (p *l2Parser) arithOp() (ilnum.ArithOp, bool) {
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

func (p *l2Parser) parseInstr() Instr {
	switch {
	case p.at("call"):
		p.advance()
		callee := p.parseOperand()
		n := p.expect(token.NUMBER)
		return Call{Callee: callee, NArgs: int(n.Int)}

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
		return CJump{Op: op, L: l, R: r, True: tl.Raw}

	default:
		dst := p.parseOperand()
		if mem, ok := dst.(MemoryLocation); ok {
			p.expect(token.ARROW)
			src := p.parseOperand()
			return Store{Mem: mem, Src: src}
		}
		p.expect(token.ARROW)
		return p.parseRhs(dst)
	}
}

func (p *l2Parser) parseRhs(dst Operand) Instr {
	switch {
	case p.at("length"):
		p.advance()
		p.expect(token.LPAREN)
		arr := p.parseOperand()
		l := Len{Dst: dst, Arr: arr}
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
			p.expect(token.LPAREN)
			var dims []Operand
			for p.tok != token.RPAREN {
				if len(dims) > 0 {
					p.expect(token.COMMA)
				}
				dims = append(dims, p.parseOperand())
			}
			p.expect(token.RPAREN)
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

	default:
		first := p.parseOperand()
		if op, ok := p.arithOp(); ok {
			second := p.parseOperand()
			return Arith{Dst: dst, Op: op, L: first, R: second}
		}
		if mem, ok := first.(MemoryLocation); ok {
			return Load{Dst: dst, Mem: mem}
		}
		return Assign{Dst: dst, Src: first}
	}
}
