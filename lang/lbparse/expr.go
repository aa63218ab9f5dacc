package lbparse

import (
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/runtimeabi"
	"github.com/mna/sixpass/lang/token"
)

var runtimeNames = map[string]ilnum.RuntimeFunc{
	"print":        ilnum.Print,
	"input":        ilnum.Input,
	"allocate":     ilnum.Allocate,
	"tuple_error":  ilnum.TupleError,
	"tensor_error": ilnum.TensorError,
}

// parseExpr parses a left-associative chain of arithmetic operators over
// primaries; LB does not distinguish operator precedence tiers,
// so + - * & << >> all bind at the same level, evaluated left to right.
func (p *parser) parseExpr() lb.Expr {
	l := p.parsePrimary()
	for {
		op, ok := p.arithOp()
		if !ok {
			return l
		}
		pos := p.val.Pos
		p.advance()
		r := p.parsePrimary()
		l = &lb.BinExpr{Op: op, L: l, R: r, Pos: pos}
	}
}

func (p *parser) arithOp() (ilnum.ArithOp, bool) {
	switch p.tok {
	case token.PLUS:
		return ilnum.Add, true
	case token.MINUS:
		return ilnum.Sub, true
	case token.STAR:
		return ilnum.Mul, true
	case token.AMP:
		return ilnum.And, true
	case token.SHL:
		return ilnum.Shl, true
	case token.SHR:
		return ilnum.Shr, true
	default:
		return 0, false
	}
}

func (p *parser) parsePrimary() lb.Expr {
	switch {
	case p.tok == token.NUMBER:
		v := p.val
		p.advance()
		return &lb.NumberExpr{Value: v.Int, Pos: v.Pos}

	case p.tok == token.VAR:
		v := p.val
		p.advance()
		if p.tok != token.LBRACK {
			return &lb.VarExpr{Name: v.Raw, Pos: v.Pos}
		}
		return &lb.LoadExpr{Mem: p.parseIndices(v.Raw, v.Pos)}

	case p.tok == token.FUNC:
		return p.parseCallExpr()

	case p.at("new"):
		return p.parseNew()

	case p.at("length"):
		return p.parseLength()

	case p.tok == token.IDENT:
		if _, ok := runtimeNames[p.val.Raw]; ok {
			return p.parseCallExpr()
		}
		fallthrough

	default:
		p.errs.Add(p.val.Pos, "expected an expression, found %s", p.describeCur())
		panic(errPanicMode)
	}
}

// parseCallExpr parses a call to a user function (@name(...)) or to one
// of the five fixed runtime entry points (print(...), input(), ...).
func (p *parser) parseCallExpr() *lb.CallExpr {
	pos := p.val.Pos
	c := &lb.CallExpr{Pos: pos}
	switch p.tok {
	case token.FUNC:
		c.Callee = p.val.Raw
		p.advance()
	case token.IDENT:
		if _, ok := runtimeNames[p.val.Raw]; !ok {
			p.errs.Add(pos, "unknown runtime function %q", p.val.Raw)
			panic(errPanicMode)
		}
		c.Callee = p.val.Raw
		c.IsRuntime = true
		p.advance()
	default:
		p.errs.Add(pos, "expected a call, found %s", p.describeCur())
		panic(errPanicMode)
	}

	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		if len(c.Args) > 0 {
			p.expect(token.COMMA)
		}
		c.Args = append(c.Args, p.parseExpr())
	}
	p.expect(token.RPAREN)

	if c.IsRuntime {
		p.checkRuntimeArity(pos, runtimeNames[c.Callee], len(c.Args))
	}
	return c
}

// checkRuntimeArity validates argCount against fn's calling convention:
// an exact match for a fixed-arity entry, membership in
// runtimeabi.TensorErrorArity for the one variable-arity entry.
func (p *parser) checkRuntimeArity(pos token.Pos, fn ilnum.RuntimeFunc, argCount int) {
	for _, e := range runtimeabi.Entries {
		if e.Func != fn {
			continue
		}
		if e.VarArity {
			for _, n := range runtimeabi.TensorErrorArity {
				if n == argCount {
					return
				}
			}
			p.errs.Add(pos, "%s expects %v arguments, got %d", fn, runtimeabi.TensorErrorArity, argCount)
			return
		}
		if argCount != e.FixedArgs {
			p.errs.Add(pos, "%s expects %d argument(s), got %d", fn, e.FixedArgs, argCount)
		}
		return
	}
}

// parseNew parses "new" "array" "(" dims ")" or "new" "tuple" "(" len ")".
func (p *parser) parseNew() lb.Expr {
	pos := p.expectKw("new")
	switch {
	case p.at("array"):
		p.advance()
		p.expect(token.LPAREN)
		n := &lb.NewArrayExpr{Pos: pos}
		for p.tok != token.RPAREN {
			if len(n.Dims) > 0 {
				p.expect(token.COMMA)
			}
			n.Dims = append(n.Dims, p.parseExpr())
		}
		p.expect(token.RPAREN)
		return n
	case p.at("tuple"):
		p.advance()
		p.expect(token.LPAREN)
		length := p.parseExpr()
		p.expect(token.RPAREN)
		return &lb.NewTupleExpr{Len: length, Pos: pos}
	default:
		p.errs.Add(p.val.Pos, "expected %q or %q after 'new', found %s", "array", "tuple", p.describeCur())
		panic(errPanicMode)
	}
}

// parseLength parses "length" "(" VAR ["," Expr] ")".
func (p *parser) parseLength() lb.Expr {
	pos := p.expectKw("length")
	p.expect(token.LPAREN)
	v := p.expect(token.VAR)
	l := &lb.LenExpr{Var: v.Raw, Pos: pos}
	if p.tok == token.COMMA {
		p.advance()
		l.Dim = p.parseExpr()
	}
	p.expect(token.RPAREN)
	return l
}
