package iltype_test

import (
	"testing"

	"github.com/mna/sixpass/lang/iltype"
	"github.com/stretchr/testify/assert"
)

func TestSingletonTypesKindAndShape(t *testing.T) {
	cases := []struct {
		typ       iltype.Type
		kind      iltype.Kind
		str       string
		isPointer bool
		decodable bool
	}{
		{iltype.Int64, iltype.KindInt64, "int64", false, true},
		{iltype.Tuple, iltype.KindTuple, "tuple", true, false},
		{iltype.Code, iltype.KindCode, "code", true, false},
		{iltype.Void, iltype.KindVoid, "void", false, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, c.typ.Kind())
		assert.Equal(t, c.str, c.typ.String())
		assert.Equal(t, c.isPointer, c.typ.IsPointer())
		assert.Equal(t, c.decodable, c.typ.Decodable())
	}
}

func TestNewArrayIsInternedByRank(t *testing.T) {
	a1 := iltype.NewArray(1)
	a1again := iltype.NewArray(1)
	a2 := iltype.NewArray(2)

	assert.Same(t, a1, a1again)
	assert.NotSame(t, a1, a2)
	assert.Equal(t, "int64[]", a1.String())
	assert.Equal(t, "int64[][]", a2.String())
	assert.True(t, a1.IsPointer())
	assert.False(t, a1.Decodable())
}

func TestNewArrayRejectsNonPositiveRank(t *testing.T) {
	assert.Panics(t, func() { iltype.NewArray(0) })
	assert.Panics(t, func() { iltype.NewArray(-1) })
}

func TestAsArray(t *testing.T) {
	arr := iltype.NewArray(3)
	a, ok := iltype.AsArray(arr)
	if assert.True(t, ok) {
		assert.Equal(t, 3, a.Rank())
	}

	_, ok = iltype.AsArray(iltype.Int64)
	assert.False(t, ok)
}
