package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/sixpass/lang/cfg"
)

// Function is one IR function.
type Function struct {
	Name    string
	NParams int
	CFG     *cfg.Function[Instr]

	// Each function owns four synthetic tail blocks implementing the
	// safety-check failure handlers; a failing CJump's True edge targets
	// whichever of these matches the check that failed. Every label is
	// derived from Name so it never collides with a sibling function's
	// handlers and so a round-tripped program (Fprint has no slot for
	// these) can rederive them the same way ErrHandlerLabels does.
	NullCheckFail string // null-pointer check: tensor_error(line)
	TensorError3  string // rank-1 array bounds: tensor_error(line, len, index)
	TensorError4  string // rank>=2 array bounds: tensor_error(line, dim, len, index)
	TupleError3   string // rank-1 tuple bounds: tuple_error(line, len, index)
}

// ErrHandlerLabels returns the four deterministic error-handler block
// labels for a function named name, the single source of truth both
// lang/lower/tag.go (synthesizing them) and ParseBytes (rederiving them
// for a function read back from text) build from.
func ErrHandlerLabels(name string) (nullCheck, tensor3, tensor4, tuple3 string) {
	return name + "_nullCheckFail", name + "_tensorError3", name + "_tensorError4", name + "_tupleError3"
}

// Program is the ordered function list; the first function is the entry
// point.
type Program struct {
	Funcs []*Function
}

// Link resolves every function's block linkage.
func Link(p *Program) error {
	for _, f := range p.Funcs {
		if err := cfg.Link(f.CFG); err != nil {
			return err
		}
	}
	return nil
}

// Fprint writes a textual dump of p.
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
		params[i] = "%" + name
	}
	fmt.Fprintf(w, "@%s(%s)\n", f.Name, strings.Join(params, ", "))
	for _, b := range f.CFG.Blocks {
		fmt.Fprintf(w, ":%s\n", b.Label)
		for _, in := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", in)
		}
	}
}
