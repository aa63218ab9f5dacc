package lbparse

import (
	"strings"
	"testing"

	"github.com/mna/sixpass/lang/iltype"
	"github.com/mna/sixpass/lang/lb"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *lb.Program {
	t.Helper()
	fset := token.NewFileSet()
	prog, err := ParseBytes(fset, "test", []byte(src))
	require.NoError(t, err)
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parse(t, `
func main(%n int64) int64 {
  var %r int64 <- %n + 1
  return %r
}
`)
	require.Len(t, prog.Funcs, 1)
	f := prog.Funcs[0]
	assert.Equal(t, "main", f.Name)
	require.Len(t, f.Params, 1)
	assert.Equal(t, "n", f.Params[0].Name)
	assert.Equal(t, iltype.Int64, f.Params[0].Type)
	assert.Equal(t, iltype.Int64, f.Ret)
	require.Len(t, f.Body.Stmts, 2)
}

func TestParseIfWhileBreak(t *testing.T) {
	prog := parse(t, `
func loop(%n int64) void {
  while %n > 0 {
    if %n = 5 {
      break
    }
    %n <- %n - 1
  }
  return
}
`)
	f := prog.Funcs[0]
	require.Len(t, f.Body.Stmts, 2)
}

func TestParseArrayAndTuple(t *testing.T) {
	prog := parse(t, `
func make() array1 {
  var %a array1 <- new array(10)
  %a[0] <- 1
  var %t tuple <- new tuple(2)
  var %l int64 <- length(%a)
  return %a
}
`)
	f := prog.Funcs[0]
	require.Len(t, f.Body.Stmts, 5)
}

func TestParseCalls(t *testing.T) {
	prog := parse(t, `
func main() void {
  print(42)
  @helper(1, 2)
  return
}
`)
	f := prog.Funcs[0]
	require.Len(t, f.Body.Stmts, 3)
}

func TestParseErrorReported(t *testing.T) {
	fset := token.NewFileSet()
	_, err := ParseBytes(fset, "test", []byte(`func main() void { %x <- } `))
	assert.Error(t, err)
}

func TestParseRuntimeCallArityRejectsMismatch(t *testing.T) {
	fset := token.NewFileSet()
	_, err := ParseBytes(fset, "test", []byte(`
func main() void {
  print(1, 2)
  return
}
`))
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "print expects 1 argument")
	}
}

func TestParseRuntimeCallArityAcceptsAnyTensorErrorArity(t *testing.T) {
	for _, n := range []int{1, 3, 4} {
		args := make([]string, n)
		for i := range args {
			args[i] = "0"
		}
		src := "func main() void {\n  tensor_error(" + strings.Join(args, ", ") + ")\n  return\n}\n"
		_, err := ParseBytes(token.NewFileSet(), "test", []byte(src))
		assert.NoError(t, err, "tensor_error with %d args should parse", n)
	}

	_, err := ParseBytes(token.NewFileSet(), "test", []byte(`
func main() void {
  tensor_error(0, 0)
  return
}
`))
	assert.Error(t, err)
}
