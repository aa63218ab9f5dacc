package ilnum_test

import (
	"testing"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/stretchr/testify/assert"
)

func TestCmpOpStringAndSwap(t *testing.T) {
	cases := []struct {
		op      ilnum.CmpOp
		str     string
		swapped ilnum.CmpOp
	}{
		{ilnum.LT, "<", ilnum.LT},
		{ilnum.LE, "<=", ilnum.LE},
		{ilnum.EQ, "=", ilnum.EQ},
		{ilnum.GE, ">=", ilnum.LE},
		{ilnum.GT, ">", ilnum.LT},
	}
	for _, c := range cases {
		assert.Equal(t, c.str, c.op.String())
		assert.Equal(t, c.swapped, c.op.Swap())
	}
}

func TestArithOpStringAndIsShift(t *testing.T) {
	assert.Equal(t, "+", ilnum.Add.String())
	assert.Equal(t, "<<", ilnum.Shl.String())
	assert.True(t, ilnum.Shl.IsShift())
	assert.True(t, ilnum.Shr.IsShift())
	assert.False(t, ilnum.Add.IsShift())
	assert.False(t, ilnum.Mul.IsShift())
}

func TestRuntimeFuncArity(t *testing.T) {
	n, fixed := ilnum.Print.Arity()
	assert.True(t, fixed)
	assert.Equal(t, 1, n)

	n, fixed = ilnum.Input.Arity()
	assert.True(t, fixed)
	assert.Equal(t, 0, n)

	_, fixed = ilnum.TensorError.Arity()
	assert.False(t, fixed)
}

func TestRuntimeFuncString(t *testing.T) {
	assert.Equal(t, "print", ilnum.Print.String())
	assert.Equal(t, "tensor_error", ilnum.TensorError.String())
}
