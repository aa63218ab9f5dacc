// Package lbparse implements the recursive-descent parser that turns LB
// surface syntax into a *lb.Program. Its error-recovery shape (expect,
// panic on parse error, recover once in parseProgram, so parsing stops
// at the first syntax error) follows a
// recursive-descent parser with panic-mode recovery; unlike a
// Lua-derived grammar, LB's grammar has no statement ambiguity requiring
// multi-token lookahead, so there is a single parser type with no Mode
// bitflags.
package lbparse

import (
	"errors"
	"fmt"
	"os"

	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/lbscan"
	"github.com/mna/sixpass/lang/token"
)

// ParseFile reads and parses the named file as an LB program.
func ParseFile(fset *token.FileSet, filename string) (*lb.Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseBytes(fset, filename, src)
}

// ParseBytes parses src, registering it in fset under filename.
func ParseBytes(fset *token.FileSet, filename string, src []byte) (*lb.Program, error) {
	var p parser
	p.init(fset, filename, src)
	return p.parseProgram()
}

var errPanicMode = errors.New("lbparse: panic mode")

type parser struct {
	file    *token.File
	scanner lbscan.Scanner
	errs    ilerr.List

	tok token.Token
	val token.Value
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, src)
	p.scanner.Init(p.file, src, func(pos token.Pos, msg string) {
		p.errs.Add(pos, "%s", msg)
	})
	p.advance()
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

// at reports whether the current token is an IDENT whose literal is kw.
func (p *parser) at(kw string) bool {
	return p.tok == token.IDENT && p.val.Raw == kw
}

func (p *parser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.errorExpected(tok.GoString())
	}
	v := p.val
	p.advance()
	return v
}

// expectKw consumes an IDENT token whose literal must be kw.
func (p *parser) expectKw(kw string) token.Pos {
	if !p.at(kw) {
		p.errorExpected(fmt.Sprintf("%q", kw))
	}
	pos := p.val.Pos
	p.advance()
	return pos
}

func (p *parser) errorExpected(what string) {
	p.errs.Add(p.val.Pos, "expected %s, found %s", what, p.describeCur())
	panic(errPanicMode)
}

func (p *parser) describeCur() string {
	if p.val.Raw != "" {
		return fmt.Sprintf("%q", p.val.Raw)
	}
	return p.tok.GoString()
}

func (p *parser) parseProgram() (prog *lb.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
		}
		err = p.errs.Err()
	}()

	prog = &lb.Program{}
	for p.tok != token.EOF {
		prog.Funcs = append(prog.Funcs, p.parseFunction())
	}
	return prog, nil
}

func (p *parser) parseFunction() *lb.Function {
	pos := p.expectKw("func")
	name := p.expect(token.IDENT)

	f := &lb.Function{Name: name.Raw, Pos: pos}
	p.expect(token.LPAREN)
	for p.tok != token.RPAREN {
		if len(f.Params) > 0 {
			p.expect(token.COMMA)
		}
		pname := p.expect(token.VAR)
		ptyp := p.parseType()
		f.Params = append(f.Params, lb.Param{Name: pname.Raw, Type: ptyp})
	}
	p.expect(token.RPAREN)
	f.Ret = p.parseType()
	f.Body = p.parseBlock()
	return f
}

// parseType recognizes the fixed set of LB type spellings: int64, code,
// void, tuple, and array<N> for an N-dimensional array (e.g. "array1",
// "array2").
func (p *parser) parseType() iltype.Type {
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
		p.errs.Add(name.Pos, "unknown type %q", name.Raw)
		panic(errPanicMode)
	}
}
