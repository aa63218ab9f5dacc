package lbparse

import (
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/token"
)

func (p *parser) parseBlock() *lb.Block {
	start := p.expect(token.LBRACE).Pos
	b := &lb.Block{Start: start}
	for p.tok != token.RBRACE {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	b.End = p.val.Pos
	p.advance() // RBRACE
	return b
}

func (p *parser) parseStmt() lb.Stmt {
	switch {
	case p.at("var"):
		return p.parseDecl()
	case p.at("if"):
		return p.parseIf()
	case p.at("while"):
		return p.parseWhile()
	case p.at("break"):
		pos := p.val.Pos
		p.advance()
		return &lb.BreakStmt{Pos: pos}
	case p.at("continue"):
		pos := p.val.Pos
		p.advance()
		return &lb.ContinueStmt{Pos: pos}
	case p.at("return"):
		return p.parseReturn()
	case p.tok == token.VAR:
		return p.parseAssign()
	default:
		// a bare call used for its side effect
		call := p.parseCallExpr()
		return &lb.CallStmt{Call: call}
	}
}

func (p *parser) parseDecl() *lb.DeclStmt {
	pos := p.expectKw("var")
	name := p.expect(token.VAR)
	typ := p.parseType()
	s := &lb.DeclStmt{Name: name.Raw, Type: typ, Pos: pos}
	if p.tok == token.ARROW {
		p.advance()
		s.Init = p.parseExpr()
	}
	return s
}

func (p *parser) parseAssign() *lb.AssignStmt {
	lhs := p.parseLValue()
	pos := p.expect(token.ARROW).Pos
	rhs := p.parseExpr()
	return &lb.AssignStmt{Lhs: lhs, Rhs: rhs, Pos: pos}
}

// parseLValue parses a %var, optionally indexed, as an assignment target.
func (p *parser) parseLValue() lb.Expr {
	v := p.expect(token.VAR)
	if p.tok != token.LBRACK {
		return &lb.VarExpr{Name: v.Raw, Pos: v.Pos}
	}
	return p.parseIndices(v.Raw, v.Pos)
}

func (p *parser) parseIndices(base string, pos token.Pos) *lb.MemExpr {
	m := &lb.MemExpr{Base: base, Pos: pos}
	for p.tok == token.LBRACK {
		p.advance()
		m.Indices = append(m.Indices, p.parseExpr())
		p.expect(token.RBRACK)
	}
	return m
}

func (p *parser) parseIf() *lb.IfStmt {
	pos := p.expectKw("if")
	cond := p.parseCmp()
	then := p.parseBlock()
	s := &lb.IfStmt{Cond: cond, Then: then, Pos: pos}
	if p.at("else") {
		p.advance()
		s.Else = p.parseBlock()
	}
	return s
}

func (p *parser) parseWhile() *lb.WhileStmt {
	pos := p.expectKw("while")
	cond := p.parseCmp()
	body := p.parseBlock()
	return &lb.WhileStmt{Cond: cond, Body: body, Pos: pos}
}

func (p *parser) parseReturn() *lb.ReturnStmt {
	pos := p.expectKw("return")
	s := &lb.ReturnStmt{Pos: pos}
	if p.tok != token.RBRACE {
		s.Value = p.parseExpr()
	}
	return s
}

func (p *parser) parseCmp() *lb.CmpExpr {
	pos := p.val.Pos
	l := p.parseExpr()
	op := p.cmpOp()
	r := p.parseExpr()
	return &lb.CmpExpr{Op: op, L: l, R: r, Pos: pos}
}

func (p *parser) cmpOp() ilnum.CmpOp {
	pos := p.val.Pos
	var op ilnum.CmpOp
	switch p.tok {
	case token.LT:
		op = ilnum.LT
	case token.LE:
		op = ilnum.LE
	case token.EQ:
		op = ilnum.EQ
	case token.GE:
		op = ilnum.GE
	case token.GT:
		op = ilnum.GT
	default:
		p.errs.Add(pos, "expected a comparison operator, found %s", p.describeCur())
		panic(errPanicMode)
	}
	p.advance()
	return op
}
