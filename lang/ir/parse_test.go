package ir_test

import (
	"bytes"
	"testing"

	"github.com/mna/sixpass/lang/ir"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkedLoadSrc = `@get(%a, %i)
:entry
  if %a = 0 goto :err_get else :ok0
:ok0
  if %i < 0 goto :err_get else :ok1
:ok1
  %l <- length(%a)
  if %i >= %l goto :err_get else :ok2
:ok2
  %v <- %a[%i]
  return %v
:err_get
  call tensor_error(1)
  return
`

func TestParseBytesRoundTripsThroughFprint(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := ir.ParseBytes(fset, "test", []byte(checkedLoadSrc))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	f := prog.Funcs[0]
	assert.Equal(t, "get", f.Name)
	assert.Equal(t, 2, f.NParams)

	var buf bytes.Buffer
	ir.Fprint(&buf, prog)
	assert.Equal(t, checkedLoadSrc, buf.String())
}

func TestParseBytesRederivesErrorHandlerLabels(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := ir.ParseBytes(fset, "test", []byte(checkedLoadSrc))
	require.NoError(t, err)

	wantNullCheck, wantTensor3, wantTensor4, wantTuple3 := ir.ErrHandlerLabels("get")
	f := prog.Funcs[0]
	assert.Equal(t, wantNullCheck, f.NullCheckFail)
	assert.Equal(t, wantTensor3, f.TensorError3)
	assert.Equal(t, wantTensor4, f.TensorError4)
	assert.Equal(t, wantTuple3, f.TupleError3)
}

func TestParseBytesRejectsUndefinedLabel(t *testing.T) {
	fset := token.NewFileSet()
	_, err := ir.ParseBytes(fset, "test", []byte(`@f()
:entry
goto :missing
`))
	assert.Error(t, err)
}
