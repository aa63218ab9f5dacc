package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/l1"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/regalloc"
)

// L2 parses an L2 file (prog.L2) and runs register allocation, writing
// the result as prog.L1. With -s, -l, or -i it instead
// prints each function's spill, liveness, or interference report and
// stops there, a restricted diagnostic dump rather than running
// allocation to completion.
func (c *Cmd) L2(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}
	log.Debug().Str("file", filename).Msg("parsing L2")

	prog, err := l2.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("l2: %w", err)
	}

	if c.SpillOnly || c.LivenessOnly || c.InterferenceOnly {
		for _, f := range prog.Funcs {
			switch {
			case c.SpillOnly:
				fmt.Fprintf(stdio.Stdout, "function %s:\n%s", f.Name, regalloc.DumpSpills(f))
			case c.LivenessOnly:
				fmt.Fprintf(stdio.Stdout, "function %s:\n%s", f.Name, regalloc.DumpLiveness(f))
			case c.InterferenceOnly:
				fmt.Fprintf(stdio.Stdout, "function %s:\n%s", f.Name, regalloc.DumpInterference(f))
			}
		}
		return nil
	}

	log.Debug().Msg("allocating registers")
	allocated := regalloc.AllocateProgram(prog, c.OptLevel >= 1)

	var buf bytes.Buffer
	l1.Fprint(&buf, allocated)
	if c.Verbose {
		dumpVerbose(stdio, "L1", buf.String)
	}

	log.Debug().Str("file", "prog.L1").Msg("writing output")
	return writeOutput("prog.L1", buf.String())
}
