package la_test

import (
	"bytes"
	"testing"

	"github.com/mna/sixpass/lang/la"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const factSrc = `@fact(%n int64) int64
  var %n int64
  var %r int64
:entry
  %r <- 1
:loop
  if %n > 0 goto :body else :done
:body
  %r <- %r * %n
  %n <- %n - 1
  goto :loop
:done
  return %r
`

func TestParseBytesRoundTripsThroughFprint(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := la.ParseBytes(fset, "test", []byte(factSrc))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	f := prog.Funcs[0]
	assert.Equal(t, "fact", f.Name)
	assert.Equal(t, []string{"n"}, f.CFG.Params)
	assert.Len(t, f.CFG.Blocks, 4)

	var buf bytes.Buffer
	la.Fprint(&buf, prog)
	assert.Equal(t, factSrc, buf.String())
}

func TestParseBytesRejectsUndefinedLabel(t *testing.T) {
	fset := token.NewFileSet()
	_, err := la.ParseBytes(fset, "test", []byte(`@f() void
:entry
goto :missing
`))
	assert.Error(t, err)
}

func TestParseBytesRejectsMalformedSyntax(t *testing.T) {
	fset := token.NewFileSet()
	_, err := la.ParseBytes(fset, "test", []byte(`@f(`))
	assert.Error(t, err)
}
