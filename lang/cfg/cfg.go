// Package cfg implements the Block/Function/Program arena shared by the
// two CFG-shaped ILs, LA and IR. Predecessor/successor links are
// block-array indices rather than pointers, so the trace scheduler can
// permute a Function's block order by permuting one slice without
// invalidating any reference.
package cfg

import (
	"fmt"

	"github.com/kylelemons/godebug/pretty"
)

// Instr is implemented by every IL's instruction type so this package can
// build and validate block linkage without knowing the concrete
// instruction set it is gluing together.
type Instr interface {
	// IsTerminator reports whether this instruction ends its basic block.
	IsTerminator() bool
	// Targets returns the label names this instruction may transfer
	// control to. Empty for non-terminators and for return instructions.
	Targets() []string
}

// Block is one basic block: a label, an ordered instruction list whose
// last element is its sole terminator, and successor/predecessor sets
// expressed as indices into the owning Function's Blocks slice.
type Block[I Instr] struct {
	Label  string
	Instrs []I
	Succs  []int
	Preds  []int
}

// Terminator returns the block's terminating instruction.
func (b *Block[I]) Terminator() I { return b.Instrs[len(b.Instrs)-1] }

// Function owns an ordered list of Blocks; the first is the entry block.
type Function[I Instr] struct {
	Name   string
	Params []string
	Blocks []*Block[I]
}

// Entry returns the function's entry block.
func (f *Function[I]) Entry() *Block[I] { return f.Blocks[0] }

// IndexOf returns the index of block b within f.Blocks, or -1.
func (f *Function[I]) IndexOf(b *Block[I]) int {
	for i, bb := range f.Blocks {
		if bb == b {
			return i
		}
	}
	return -1
}

// Program owns an ordered list of Functions; the first is the entry
// point.
type Program[I Instr] struct {
	Functions []*Function[I]
}

// Link resolves every terminator's label targets against the function's
// block labels, (re)populating Succs and Preds. It enforces a simple
// structural invariant: a block has exactly one terminator; successors
// are exactly the terminator's jump targets; predecessors are
// consistent with all other blocks' successors.
func Link[I Instr](f *Function[I]) error {
	index := make(map[string]int, len(f.Blocks))
	for i, b := range f.Blocks {
		if _, dup := index[b.Label]; dup {
			return fmt.Errorf("cfg: function %s: duplicate block label %q", f.Name, b.Label)
		}
		index[b.Label] = i
	}

	for _, b := range f.Blocks {
		if len(b.Instrs) == 0 {
			return fmt.Errorf("cfg: function %s: block %q has no instructions", f.Name, b.Label)
		}
		for _, in := range b.Instrs[:len(b.Instrs)-1] {
			if in.IsTerminator() {
				return fmt.Errorf("cfg: function %s: block %q has a terminator before its end", f.Name, b.Label)
			}
		}
		term := b.Instrs[len(b.Instrs)-1]
		if !term.IsTerminator() {
			return fmt.Errorf("cfg: function %s: block %q does not end in a terminator", f.Name, b.Label)
		}

		b.Succs = b.Succs[:0]
		for _, lbl := range term.Targets() {
			ti, ok := index[lbl]
			if !ok {
				return fmt.Errorf("cfg: function %s: block %q branches to undefined label %q", f.Name, b.Label, lbl)
			}
			b.Succs = append(b.Succs, ti)
		}
	}

	for _, b := range f.Blocks {
		b.Preds = nil
	}
	for i, b := range f.Blocks {
		for _, s := range b.Succs {
			f.Blocks[s].Preds = append(f.Blocks[s].Preds, i)
		}
	}
	return nil
}

// blockLinkage is the part of a Block worth dumping under -v: the
// instruction payload is already rendered by each IL's own printer, so
// this only carries the linkage Link computed.
type blockLinkage struct {
	Label string
	Succs []int
	Preds []int
}

// DumpLinkage renders f's block linkage (labels, successor and
// predecessor indices) for -v output, independent of however the
// owning IL chooses to print its instructions.
func DumpLinkage[I Instr](f *Function[I]) string {
	links := make([]blockLinkage, len(f.Blocks))
	for i, b := range f.Blocks {
		links[i] = blockLinkage{Label: b.Label, Succs: b.Succs, Preds: b.Preds}
	}
	return pretty.Sprint(links)
}

// Check validates that every block's Succs/Preds are mutually consistent
// with every other block's.
func Check[I Instr](f *Function[I]) error {
	for i, b := range f.Blocks {
		for _, s := range b.Succs {
			if s < 0 || s >= len(f.Blocks) {
				return fmt.Errorf("cfg: function %s: block %d has out-of-range successor %d", f.Name, i, s)
			}
			found := false
			for _, p := range f.Blocks[s].Preds {
				if p == i {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("cfg: function %s: block %d -> %d missing reciprocal predecessor", f.Name, i, s)
			}
		}
	}
	return nil
}
