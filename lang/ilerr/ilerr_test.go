package ilerr_test

import (
	"errors"
	"testing"

	"github.com/mna/sixpass/lang/ilerr"
	"github.com/mna/sixpass/lang/token"
	"github.com/stretchr/testify/assert"
)

func TestErrorFormatsWithAndWithoutPosition(t *testing.T) {
	withPos := ilerr.Malformedf(token.MakePos(3, 7), "undeclared variable %q", "x")
	assert.Equal(t, `3:7: malformed input: undeclared variable "x"`, withPos.Error())

	noPos := ilerr.Malformedf(token.Pos(0), "top-level failure")
	assert.Equal(t, "malformed input: top-level failure", noPos.Error())
}

func TestBugRecoverRoundTrips(t *testing.T) {
	got := func() (e *ilerr.Error) {
		defer func() { e = ilerr.Recover(recover()) }()
		ilerr.Bug("block %q has no terminator", "b0")
		return nil
	}()
	if assert.NotNil(t, got) {
		assert.Equal(t, ilerr.Invariant, got.Kind)
		assert.Contains(t, got.Error(), "invariant violated")
	}
}

func TestRecoverRepanicsNonIlerrValues(t *testing.T) {
	assert.Panics(t, func() {
		defer func() { ilerr.Recover(recover()) }()
		panic("not an ilerr.Error")
	})
}

func TestRecoverOfNilReturnsNil(t *testing.T) {
	assert.Nil(t, ilerr.Recover(nil))
}

func TestListErrorMessageAndErrSemantics(t *testing.T) {
	var l ilerr.List
	assert.Nil(t, l.Err())
	assert.Equal(t, "no errors", l.Error())

	l.Add(token.MakePos(1, 1), "first problem")
	assert.Equal(t, l[0].Error(), l.Error())
	assert.Equal(t, l, l.Err())

	l.Add(token.MakePos(2, 1), "second problem")
	assert.Contains(t, l.Error(), "and 1 more errors")

	unwrapped := l.Unwrap()
	assert.Len(t, unwrapped, 2)
	var target *ilerr.Error
	assert.True(t, errors.As(unwrapped[0], &target))
}
