package lower

import (
	"testing"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lbparse"
	"github.com/mna/sixpass/lang/operand"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *la.Program {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := lbparse.ParseBytes(fset, "test", []byte(src))
	require.NoError(t, err)
	laProg, err := LowerProgram(prog)
	require.NoError(t, err)
	return laProg
}

func TestLowerWhileHasHeaderBodyExitBlocks(t *testing.T) {
	laProg := mustParse(t, `
func loop(%n int64) void {
  while %n > 0 {
    %n <- %n - 1
  }
  return
}
`)
	f := laProg.Funcs[0]
	var sawCJump, sawBranchBack bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if _, ok := in.(la.CJump); ok {
				sawCJump = true
			}
			if br, ok := in.(la.Branch); ok {
				for _, other := range f.CFG.Blocks {
					if other.Label == br.Target {
						sawBranchBack = true
					}
				}
			}
		}
	}
	assert.True(t, sawCJump, "while condition must lower to a CJump")
	assert.True(t, sawBranchBack, "loop body must branch back to a real label")
}

func TestLowerBreakTargetsExit(t *testing.T) {
	laProg := mustParse(t, `
func f() void {
  while 1 > 0 {
    break
  }
  return
}
`)
	f := laProg.Funcs[0]
	found := false
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if _, ok := in.(la.Branch); ok {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestTagProgramInsertsNullCheck(t *testing.T) {
	laProg := mustParse(t, `
func f(%a array1, %i int64) int64 {
  var %x int64 <- %a[%i]
  return %x
}
`)
	irProg, err := TagProgram(laProg)
	require.NoError(t, err)
	f := irProg.Funcs[0]
	var sawEqCheck, sawLoad bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			switch in := in.(type) {
			case ir.CJump:
				if in.Op == ilnum.EQ {
					sawEqCheck = true
				}
			case ir.Load:
				sawLoad = true
			}
		}
	}
	assert.True(t, sawEqCheck, "array load must be preceded by a null check")
	assert.True(t, sawLoad)
	assert.NotEmpty(t, f.NullCheckFail)

	var routesToNullCheck bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if cj, ok := in.(ir.CJump); ok && cj.Op == ilnum.EQ && cj.True == f.NullCheckFail {
				routesToNullCheck = true
			}
		}
	}
	assert.True(t, routesToNullCheck, "null check must route its failing edge to NullCheckFail")
}

func TestTagProgramRoutesTupleAccessToTupleErrorHandler(t *testing.T) {
	laProg := mustParse(t, `
func f() int64 {
  var %t tuple <- new tuple(2)
  var %x int64 <- %t[0]
  return %x
}
`)
	irProg, err := TagProgram(laProg)
	require.NoError(t, err)
	f := irProg.Funcs[0]
	require.NotEmpty(t, f.TupleError3)

	var routesToTupleError bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if cj, ok := in.(ir.CJump); ok && cj.True == f.TupleError3 {
				routesToTupleError = true
			}
		}
	}
	assert.True(t, routesToTupleError, "a tuple access's bounds check must route its failing edge to TupleError3, not TensorError3")

	var sawTupleErrorCall bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if c, ok := in.(ir.Call); ok {
				if rf, ok := c.Callee.(operand.RuntimeFunction); ok && rf.Func == ilnum.TupleError {
					sawTupleErrorCall = true
					assert.Len(t, c.Args, 3, "tuple_error takes (line, len, index)")
				}
			}
		}
	}
	assert.True(t, sawTupleErrorCall)
}

func TestTagProgramRankTwoArrayUsesFourArgTensorError(t *testing.T) {
	laProg := mustParse(t, `
func f(%a array2, %i int64, %j int64) int64 {
  var %x int64 <- %a[%i][%j]
  return %x
}
`)
	irProg, err := TagProgram(laProg)
	require.NoError(t, err)
	f := irProg.Funcs[0]
	require.NotEmpty(t, f.TensorError4)

	var routesToTensorError4 bool
	var sawFourArgCall bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			if cj, ok := in.(ir.CJump); ok && cj.True == f.TensorError4 {
				routesToTensorError4 = true
			}
			if c, ok := in.(ir.Call); ok {
				if rf, ok := c.Callee.(operand.RuntimeFunction); ok && rf.Func == ilnum.TensorError {
					if len(c.Args) == 4 {
						sawFourArgCall = true
					}
				}
			}
		}
	}
	assert.True(t, routesToTensorError4, "a rank-2 access's bounds checks must route to TensorError4")
	assert.True(t, sawFourArgCall, "tensor_error for a rank>=2 access takes (line, dim, len, index)")
}

func TestTagProgramArithDecodesOperandsAndReencodesResult(t *testing.T) {
	laProg := mustParse(t, `
func f(%a int64, %b int64) int64 {
  var %c int64 <- %a + %b
  return %c
}
`)
	irProg, err := TagProgram(laProg)
	require.NoError(t, err)
	f := irProg.Funcs[0]

	var sawDecodeShift, sawAdd, sawReencodeShl, sawReencodeAdd1 bool
	for _, b := range f.CFG.Blocks {
		for _, in := range b.Instrs {
			a, ok := in.(ir.Arith)
			if !ok {
				continue
			}
			switch a.Op {
			case ilnum.Shr:
				sawDecodeShift = true
			case ilnum.Add:
				if n, ok := a.R.(operand.Number); ok && n == 1 {
					sawReencodeAdd1 = true
				} else {
					sawAdd = true
				}
			case ilnum.Shl:
				if n, ok := a.R.(operand.Number); ok && n == 1 {
					sawReencodeShl = true
				}
			}
		}
	}
	assert.True(t, sawDecodeShift, "each tagged operand must be decoded via a shr-by-1 before the raw add")
	assert.True(t, sawAdd, "the raw arithmetic must still run on the decoded operands")
	assert.True(t, sawReencodeShl && sawReencodeAdd1, "the result must be re-tagged with shl 1; add 1")
}
