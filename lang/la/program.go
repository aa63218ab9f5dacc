package la

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/iltype"
)

// Function is one LA function: a typed signature plus the cfg.Function
// carrying its basic blocks.
type Function struct {
	Name       string
	ParamTypes []iltype.Type
	Ret        iltype.Type
	Decls      []Decl // every local variable's declared type, including params
	CFG        *cfg.Function[Instr]
}

// Program is the ordered function list; the first function is the entry
// point.
type Program struct {
	Funcs []*Function
}

// Link resolves every function's block linkage. It must be called after
// building or parsing a Program and before any liveness/trace analysis.
func Link(p *Program) error {
	for _, f := range p.Funcs {
		if err := cfg.Link(f.CFG); err != nil {
			return err
		}
	}
	return nil
}

// Fprint writes a textual dump of p, the format this package's
// ParseBytes reads back in.
func Fprint(w io.Writer, p *Program) {
	for i, f := range p.Funcs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fprintFunc(w, f)
	}
}

func fprintFunc(w io.Writer, f *Function) {
	params := make([]string, len(f.CFG.Params))
	for i, name := range f.CFG.Params {
		params[i] = fmt.Sprintf("%%%s %s", name, f.ParamTypes[i])
	}
	fmt.Fprintf(w, "@%s(%s) %s\n", f.Name, strings.Join(params, ", "), f.Ret)
	for _, d := range f.Decls {
		fmt.Fprintf(w, "  %s\n", d)
	}
	for _, b := range f.CFG.Blocks {
		fmt.Fprintf(w, ":%s\n", b.Label)
		for _, in := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", in)
		}
	}
}
