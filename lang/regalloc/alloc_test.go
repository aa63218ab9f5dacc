package regalloc

import (
	"strconv"
	"strings"
	"testing"

	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseL2(t *testing.T, src string) *l2.Function {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := l2.ParseBytes(fset, "test", []byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)
	return prog.Funcs[0]
}

func TestAnalyzeLivenessAcrossBranch(t *testing.T) {
	f := mustParseL2(t, `
@f(%n) 0
:entry
if %n > 0 goto :pos
:fall
%r <- 0
goto :join
:pos
%r <- 1
goto :join
:join
return %r
`)
	fl := Analyze(f)

	// %r is live out of both the "then" assignment and the fallthrough
	// assignment, since both reach :join where it's read.
	_, outFallthrough := fl.At(1, 0) // %r <- 0
	_, outPos := fl.At(2, 0)         // %r <- 1
	assert.True(t, outFallthrough["r"])
	assert.True(t, outPos["r"])

	// %n is dead after the CJump: nothing past :entry reads it again.
	_, outEntry := fl.At(0, 0)
	assert.False(t, outEntry["n"])
}

func TestBuildInterferenceExcludesMoveSource(t *testing.T) {
	f := mustParseL2(t, `
@f() 0
:entry
%a <- 1
%b <- %a
return %b
`)
	fl := Analyze(f)
	g := Build(f, fl)

	// %b <- %a is a plain copy; %b must not interfere with its own
	// source even though %a is live at the point %b is defined.
	assert.NotContains(t, g.neighbors("b"), "a")
}

// seventeenLiveVars builds a function with seventeen variables defined
// before any of them is consumed, so the clique they form in the
// interference graph exceeds the allocator's fourteen-colour budget
// and at least one of them must spill.
func seventeenLiveVars() string {
	var b strings.Builder
	b.WriteString("@f() 0\n:entry\n")
	for i := 0; i < 17; i++ {
		b.WriteString("%v")
		b.WriteString(strconv.Itoa(i))
		b.WriteString(" <- ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\n")
	}
	b.WriteString("%s <- %v0 + %v1\n")
	for i := 2; i < 17; i++ {
		b.WriteString("%s <- %s + %v")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\n")
	}
	b.WriteString("return %s\n")
	return b.String()
}

func TestAllocateFunctionSpillsWhenSeventeenVarsAreLive(t *testing.T) {
	f := mustParseL2(t, seventeenLiveVars())

	fl := Analyze(f)
	g := Build(f, fl)
	_, spilled := colourGraph(g, f.Locals)
	require.NotEmpty(t, spilled, "seventeen simultaneously live variables must exceed fourteen colours")

	out := AllocateFunction(f, true)

	var sawSpillLoad bool
	for _, b := range out.Blocks {
		for _, in := range b.Instrs {
			if ld, ok := in.(l2.Load); ok {
				if mem, ok := ld.Mem.Base.(l2.Register); ok && mem.Reg == l2.RSP {
					sawSpillLoad = true
				}
			}
		}
	}
	assert.True(t, sawSpillLoad, "a spilled variable's use must be preceded by a load from its stack slot")
	assert.Greater(t, out.StackSlots, 0)

	// every remaining Variable operand must have been resolved; nothing
	// should reach the final function still unassigned.
	for _, b := range out.Blocks {
		for _, in := range b.Instrs {
			for _, op := range append(in.Defs(), in.Uses()...) {
				_, isVar := op.(l2.Variable)
				assert.False(t, isVar, "operand %v was not coloured or spilled", op)
			}
		}
	}
}

func TestAllocateFunctionSkipsDeadCodeEliminationWhenDisabled(t *testing.T) {
	f := mustParseL2(t, `
@f() 0
:entry
%dead <- 1 + 2
%live <- 3
return %live
`)
	out := AllocateFunction(f, false)

	var sawArithInstr bool
	for _, b := range out.Blocks {
		for _, in := range b.Instrs {
			if _, ok := in.(l2.Arith); ok {
				sawArithInstr = true
			}
		}
	}
	assert.True(t, sawArithInstr, "the dead def must survive allocation when eliminateDeadCode is false")
}

func TestEliminateDeadCodeDropsUnusedPureDef(t *testing.T) {
	f := mustParseL2(t, `
@f() 0
:entry
%dead <- 1 + 2
%live <- 3
return %live
`)
	out := EliminateDeadCode(f)
	for _, b := range out.Blocks {
		for _, in := range b.Instrs {
			if a, ok := in.(l2.Arith); ok {
				if v, ok := a.Dst.(l2.Variable); ok {
					assert.NotEqual(t, "dead", v.Name)
				}
			}
		}
	}
}

func TestEliminateDeadCodeKeepsAllocatingInstructions(t *testing.T) {
	f := mustParseL2(t, `
@f() 0
:entry
%p <- new Array(4)
return 0
`)
	out := EliminateDeadCode(f)
	var sawNewArray bool
	for _, b := range out.Blocks {
		for _, in := range b.Instrs {
			if _, ok := in.(l2.NewArray); ok {
				sawNewArray = true
			}
		}
	}
	assert.True(t, sawNewArray, "NewArray must survive dead-code elimination even when its result is unused")
}
