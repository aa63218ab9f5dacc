package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lbparse"
	"github.com/mna/sixpass/lang/lower"
)

// Lb parses an LB source file and lowers it to LA, writing prog.a.
func (c *Cmd) Lb(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug().Str("file", filename).Msg("parsing LB source")

	prog, err := lbparse.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("lb: %w", err)
	}

	log.Debug().Msg("lowering LB to LA")
	laProg, err := lower.LowerProgram(prog)
	if err != nil {
		return fmt.Errorf("lb: %w", err)
	}
	if err := la.Link(laProg); err != nil {
		return fmt.Errorf("lb: %w", err)
	}

	var buf bytes.Buffer
	la.Fprint(&buf, laProg)
	if c.Verbose {
		dumpVerbose(stdio, "LA", buf.String)
	}

	log.Debug().Str("file", "prog.a").Msg("writing output")
	return writeOutput("prog.a", buf.String())
}
