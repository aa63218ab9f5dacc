package trace

import (
	"testing"

	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/l3"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseIR(t *testing.T, src string) *ir.Program {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := ir.ParseBytes(fset, "test", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestScheduleDiamondDropsRedundantBranches(t *testing.T) {
	prog := mustParseIR(t, `
@f(%n)
:entry
if %n > 0 goto :then else :otherwise
:then
%x <- 1
goto :join
:otherwise
%x <- 2
goto :join
:join
return %x
`)
	out := ScheduleProgram(prog, true)
	require.Len(t, out.Funcs, 1)
	f := out.Funcs[0]
	require.Len(t, f.Blocks, 4)

	var sawOneTargetCJump bool
	danglingBranches := 0
	for i, b := range f.Blocks {
		for _, in := range b.Instrs {
			switch in := in.(type) {
			case l3.CJump:
				sawOneTargetCJump = true
			case l3.Branch:
				next := ""
				if i+1 < len(f.Blocks) {
					next = f.Blocks[i+1].Label
				}
				if in.Target == next {
					danglingBranches++
				}
			}
		}
	}
	assert.True(t, sawOneTargetCJump, "the if/else CJump must reduce to a one-target form")
	assert.Zero(t, danglingBranches, "a branch to the immediately-next block must be dropped")
}

func TestScheduleLoopKeepsBackEdgeOrdering(t *testing.T) {
	prog := mustParseIR(t, `
@loop(%n)
:entry
goto :header
:header
if %n > 0 goto :body else :exit
:body
%n <- %n - 1
goto :header
:exit
return %n
`)
	out := ScheduleProgram(prog, true)
	f := out.Funcs[0]
	require.Len(t, f.Blocks, 4)

	labels := make(map[string]int, len(f.Blocks))
	for i, b := range f.Blocks {
		labels[b.Label] = i
	}
	assert.Less(t, labels["header"], labels["body"], "loop header must precede its body in the chosen order")

	var sawBackBranch bool
	for _, in := range f.Blocks[labels["body"]].Instrs {
		if br, ok := in.(l3.Branch); ok && br.Target == "header" {
			sawBackBranch = true
		}
		if cj, ok := in.(l3.CJump); ok && cj.True == "header" {
			sawBackBranch = true
		}
	}
	assert.True(t, sawBackBranch, "the loop body must still jump back to its header")
}

// TestScheduleEqualityFallsBackToExplicitBranch exercises the one
// CmpOp negate has no answer for: EQ has no single-comparison opposite
// among the five, so when the chosen order makes the true edge (not
// the false edge) fall through, reduce must keep both the CJump and an
// explicit trailing Branch rather than flip the condition.
func TestScheduleEqualityFallsBackToExplicitBranch(t *testing.T) {
	prog := mustParseIR(t, `
@f(%n)
:entry
if %n = 0 goto :zero else :nonzero
:nonzero
return %n
:zero
return 0
`)
	out := ScheduleProgram(prog, true)
	f := out.Funcs[0]
	require.Len(t, f.Blocks, 3)

	entry := f.Blocks[0]
	require.Len(t, entry.Instrs, 2)
	cj, ok := entry.Instrs[0].(l3.CJump)
	require.True(t, ok, "expected the CJump to survive unreduced")
	assert.Equal(t, "zero", cj.True)
	br, ok := entry.Instrs[1].(l3.Branch)
	require.True(t, ok, "expected an explicit trailing Branch to the false target")
	assert.Equal(t, "nonzero", br.Target)
}

// TestScheduleWithoutOptimizeKeepsDeclarationOrder covers the -O 0 path:
// optimize=false must skip the profit-maximizing walk and keep each
// function's blocks in the order they were declared, while reduce still
// collapses the CJump to one target wherever that declaration order
// happens to make the false edge fall through.
func TestScheduleWithoutOptimizeKeepsDeclarationOrder(t *testing.T) {
	prog := mustParseIR(t, `
@f(%n)
:entry
if %n = 0 goto :zero else :nonzero
:nonzero
return %n
:zero
return 0
`)
	out := ScheduleProgram(prog, false)
	f := out.Funcs[0]
	require.Len(t, f.Blocks, 3)
	assert.Equal(t, []string{"entry", "nonzero", "zero"}, []string{f.Blocks[0].Label, f.Blocks[1].Label, f.Blocks[2].Label})

	entry := f.Blocks[0]
	require.Len(t, entry.Instrs, 1, "the false edge falls through to the next declared block, so no explicit Branch is needed")
	cj, ok := entry.Instrs[0].(l3.CJump)
	require.True(t, ok)
	assert.Equal(t, "zero", cj.True)
}
