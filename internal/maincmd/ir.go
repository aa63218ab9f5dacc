package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/l3"
	"github.com/mna/sixpass/lang/tile"
	"github.com/mna/sixpass/lang/trace"
)

// Ir parses an IR file (prog.IR), trace-schedules it down to L3 and
// tiles the result into L2, writing prog.L2. L3 never gets a file of
// its own; -v dumps it to stdout between the
// two sub-steps instead.
func (c *Cmd) Ir(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug().Str("file", filename).Msg("parsing IR")

	prog, err := ir.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("ir: %w", err)
	}
	if err := ir.Link(prog); err != nil {
		return fmt.Errorf("ir: %w", err)
	}

	log.Debug().Msg("trace-scheduling IR to L3")
	l3Prog := trace.ScheduleProgram(prog, c.OptLevel >= 2)
	if c.Verbose {
		dumpVerbose(stdio, "L3", func() string { return fprintL3(l3Prog) })
	}

	log.Debug().Msg("tiling L3 to L2")
	l2Prog := tile.SelectProgram(l3Prog)

	var buf bytes.Buffer
	l2.Fprint(&buf, l2Prog)
	if c.Verbose {
		dumpVerbose(stdio, "L2", buf.String)
	}

	log.Debug().Str("file", "prog.L2").Msg("writing output")
	return writeOutput("prog.L2", buf.String())
}

// fprintL3 renders l3.Program the same way l2.Fprint renders L2, since
// L3 carries no Fprint of its own.
func fprintL3(p *l3.Program) string {
	var buf bytes.Buffer
	for i, f := range p.Funcs {
		if i > 0 {
			fmt.Fprintln(&buf)
		}
		fmt.Fprintf(&buf, "function %s(%s) {\n", f.Name, joinParams(f.Params))
		for _, b := range f.Blocks {
			fmt.Fprintf(&buf, "%s:\n", b.Label)
			for _, in := range b.Instrs {
				fmt.Fprintf(&buf, "  %s\n", in)
			}
		}
		fmt.Fprintln(&buf, "}")
	}
	return buf.String()
}

func joinParams(params []string) string {
	out := ""
	for i, p := range params {
		if i > 0 {
			out += ", "
		}
		out += "%" + p
	}
	return out
}
