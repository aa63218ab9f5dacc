package l2

import (
	"fmt"
	"io"
	"strings"
)

// Block is one basic block in fixed linear order, matching L3's shape:
// no predecessor/successor tracking, since scheduling already happened
// upstream in lang/trace and this IL never reorders blocks again.
type Block struct {
	Label  string
	Instrs []Instr
}

// Function is one function body. Before register allocation every
// Variable use refers to a name in Locals; after allocation, Locals is
// cleared and spilled variables have been rewritten to StackSlots
// MemoryLocations instead.
type Function struct {
	Name       string
	Params     []string
	Blocks     []*Block
	Locals     []string // virtual registers live in this function, pre-allocation
	StackSlots int      // number of spill slots reserved in this function's frame
}

// Program is the ordered function list.
type Program struct {
	Funcs []*Function
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
	params := make([]string, len(f.Params))
	for i, name := range f.Params {
		params[i] = "%" + name
	}
	fmt.Fprintf(w, "@%s(%s) %d\n", f.Name, strings.Join(params, ", "), f.StackSlots)
	for _, b := range f.Blocks {
		fmt.Fprintf(w, ":%s\n", b.Label)
		for _, in := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", in)
		}
	}
}
