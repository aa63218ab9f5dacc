package l2_test

import (
	"bytes"
	"testing"

	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addSrc = `@add(%n) 0
:entry
  %r <- %n + 1
  return %r
`

func TestParseBytesRoundTripsThroughFprint(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := l2.ParseBytes(fset, "test", []byte(addSrc))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	f := prog.Funcs[0]
	assert.Equal(t, "add", f.Name)
	assert.Equal(t, []string{"n"}, f.Params)
	assert.Equal(t, 0, f.StackSlots)
	assert.Equal(t, []string{"n", "r"}, f.Locals)

	var buf bytes.Buffer
	l2.Fprint(&buf, prog)
	assert.Equal(t, addSrc, buf.String())
}

// calcSrc exercises the post-tiling operand vocabulary (Register,
// MemoryLocation, RuntimeFunction) plus a one-target CJump whose false
// edge is the next block in sequence rather than an explicit goto.
const calcSrc = `@calc(%n) 1
:entry
  %t <- %n * 2
  if %t > 10 goto :big
:small
  mem rbp -8 <- rax
  call print 1
  return
:big
  return %t
`

func TestParseBytesRoundTripsRegistersAndMemory(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := l2.ParseBytes(fset, "test", []byte(calcSrc))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	f := prog.Funcs[0]
	require.Len(t, f.Blocks, 3)
	assert.Equal(t, "entry", f.Blocks[0].Label)
	assert.Equal(t, "small", f.Blocks[1].Label)
	assert.Equal(t, "big", f.Blocks[2].Label)
	assert.Equal(t, []string{"n", "t"}, f.Locals)

	var buf bytes.Buffer
	l2.Fprint(&buf, prog)
	assert.Equal(t, calcSrc, buf.String())
}

func TestParseBytesRejectsMalformedSyntax(t *testing.T) {
	fset := token.NewFileSet()
	_, err := l2.ParseBytes(fset, "test", []byte(`@f(`))
	assert.Error(t, err)
}

func TestParseBytesRejectsUnknownOperand(t *testing.T) {
	fset := token.NewFileSet()
	_, err := l2.ParseBytes(fset, "test", []byte(`@f() 0
:entry
  %x <- bogus
  return %x
`))
	assert.Error(t, err)
}
