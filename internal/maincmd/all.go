package maincmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/l1"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lbparse"
	"github.com/mna/sixpass/lang/lower"
	"github.com/mna/sixpass/lang/regalloc"
	"github.com/mna/sixpass/lang/tile"
	"github.com/mna/sixpass/lang/trace"
)

// All runs every pass over a single LB source file in sequence, writing
// all five pass-boundary files along the way rather than
// only the last one, so a failure midway still leaves the earlier
// stages on disk for inspection.
func (c *Cmd) All(ctx context.Context, stdio mainer.Stdio, args []string) error {
	log := c.logger(stdio)
	fset, filename, src, err := readSource(args)
	if err != nil {
		return err
	}

	log.Debug().Str("file", filename).Msg("parsing LB source")
	lbProg, err := lbparse.ParseBytes(fset, filename, src)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}

	log.Debug().Msg("lowering LB to LA")
	laProg, err := lower.LowerProgram(lbProg)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}
	if err := la.Link(laProg); err != nil {
		return fmt.Errorf("all: %w", err)
	}
	var laBuf bytes.Buffer
	la.Fprint(&laBuf, laProg)
	if err := writeOutput("prog.a", laBuf.String()); err != nil {
		return err
	}

	log.Debug().Msg("tagging LA to IR")
	irProg, err := lower.TagProgram(laProg)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}
	if err := ir.Link(irProg); err != nil {
		return fmt.Errorf("all: %w", err)
	}
	var irBuf bytes.Buffer
	ir.Fprint(&irBuf, irProg)
	if err := writeOutput("prog.IR", irBuf.String()); err != nil {
		return err
	}

	log.Debug().Msg("trace-scheduling IR to L3")
	l3Prog := trace.ScheduleProgram(irProg, c.OptLevel >= 2)
	if c.Verbose {
		dumpVerbose(stdio, "L3", func() string { return fprintL3(l3Prog) })
	}

	log.Debug().Msg("tiling L3 to L2")
	l2Prog := tile.SelectProgram(l3Prog)
	var l2Buf bytes.Buffer
	l2.Fprint(&l2Buf, l2Prog)
	if err := writeOutput("prog.L2", l2Buf.String()); err != nil {
		return err
	}

	log.Debug().Msg("allocating registers")
	allocated := regalloc.AllocateProgram(l2Prog, c.OptLevel >= 1)
	var l1Buf bytes.Buffer
	l1.Fprint(&l1Buf, allocated)
	if err := writeOutput("prog.L1", l1Buf.String()); err != nil {
		return err
	}

	if c.GenCode == 0 {
		log.Debug().Msg("code generation disabled by -g 0")
		return nil
	}

	var asmBuf bytes.Buffer
	if err := l1.Generate(&asmBuf, allocated); err != nil {
		return fmt.Errorf("all: %w", err)
	}
	if c.Verbose {
		dumpVerbose(stdio, "S", asmBuf.String)
	}
	log.Debug().Str("file", "prog.S").Msg("writing output")
	return writeOutput("prog.S", asmBuf.String())
}
