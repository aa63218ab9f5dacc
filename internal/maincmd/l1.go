package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/l1"
)

// L1 parses an L1 file (prog.L1) and either assembles it to prog.S or,
// with -i, interprets it directly without ever touching the
// code-generation path.
func (c *Cmd) L1(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug().Str("file", filename).Msg("parsing L1")

	prog, err := l1.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("l1: %w", err)
	}

	if c.InterferenceOnly {
		log.Debug().Msg("interpreting L1 directly")
		if err := l1.Run(prog, stdio.Stdout, stdio.Stdin); err != nil {
			return fmt.Errorf("l1: %w", err)
		}
		return nil
	}

	if c.GenCode == 0 {
		log.Debug().Msg("code generation disabled by -g 0")
		return nil
	}

	var buf bytes.Buffer
	if err := l1.Generate(&buf, prog); err != nil {
		return fmt.Errorf("l1: %w", err)
	}
	if c.Verbose {
		dumpVerbose(stdio, "S", buf.String)
	}

	log.Debug().Str("file", "prog.S").Msg("writing output")
	return writeOutput("prog.S", buf.String())
}
