package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/cfg"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lower"
)

// La parses an LA file (prog.a) and tags it with the runtime safety
// checks the IR stage requires, writing prog.IR.
func (c *Cmd) La(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug().Str("file", filename).Msg("parsing LA")

	prog, err := la.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("la: %w", err)
	}
	if err := la.Link(prog); err != nil {
		return fmt.Errorf("la: %w", err)
	}

	log.Debug().Msg("tagging LA to IR")
	irProg, err := lower.TagProgram(prog)
	if err != nil {
		return fmt.Errorf("la: %w", err)
	}
	if err := ir.Link(irProg); err != nil {
		return fmt.Errorf("la: %w", err)
	}

	var buf bytes.Buffer
	ir.Fprint(&buf, irProg)
	if c.Verbose {
		dumpVerbose(stdio, "IR", buf.String)
		for _, f := range irProg.Funcs {
			f := f
			dumpVerbose(stdio, "IR CFG "+f.Name, func() string { return cfg.DumpLinkage(f.CFG) })
		}
	}

	log.Debug().Str("file", "prog.IR").Msg("writing output")
	return writeOutput("prog.IR", buf.String())
}
