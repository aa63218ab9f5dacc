package l1

import (
	"bytes"
	"testing"

	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/lbparse"
	"github.com/mna/sixpass/lang/lower"
	"github.com/mna/sixpass/lang/regalloc"
	"github.com/mna/sixpass/lang/tile"
	"github.com/mna/sixpass/lang/token"
	"github.com/mna/sixpass/lang/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compile runs src through every pass up to register allocation,
// mirroring what the CLI's "all" command chains together, so the
// interpreter and the code generator tests always exercise
// real allocator output rather than a hand-built L1 fixture.
func compile(t *testing.T, src string) *Program {
	t.Helper()
	fset := token.NewFileSet()
	lbProg, err := lbparse.ParseBytes(fset, "test", []byte(src))
	require.NoError(t, err)
	laProg, err := lower.LowerProgram(lbProg)
	require.NoError(t, err)
	require.NoError(t, la.Link(laProg))
	irProg, err := lower.TagProgram(laProg)
	require.NoError(t, err)
	l3Prog := trace.ScheduleProgram(irProg, true)
	l2Prog := tile.SelectProgram(l3Prog)
	return regalloc.AllocateProgram(l2Prog, true)
}

func TestRunPrintsArithmeticResult(t *testing.T) {
	prog := compile(t, `
func main() void {
  var %x int64 <- 2
  var %y int64 <- 3
  print(%x * %y + 1)
}
`)
	var out bytes.Buffer
	require.NoError(t, Run(prog, &out, &bytes.Buffer{}))
	assert.Equal(t, "7\n", out.String())
}

func TestRunRecursiveCallPreservesCallerState(t *testing.T) {
	prog := compile(t, `
func fact(%n int64) int64 {
  var %r int64 <- 1
  while %n > 0 {
    %r <- %r * %n
    %n <- %n - 1
  }
  return %r
}

func main() void {
  print(fact(5))
}
`)
	var out bytes.Buffer
	require.NoError(t, Run(prog, &out, &bytes.Buffer{}))
	assert.Equal(t, "120\n", out.String())
}

func TestRunArrayIndexOutOfBoundsAborts(t *testing.T) {
	prog := compile(t, `
func main() void {
  var %a array1 <- new array(3)
  print(%a[5])
}
`)
	err := Run(prog, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
