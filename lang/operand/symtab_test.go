package operand_test

import (
	"testing"

	"github.com/mna/sixpass/lang/operand"
	"github.com/stretchr/testify/assert"
)

func TestSymTabDeclareRejectsDuplicates(t *testing.T) {
	st := operand.NewSymTab(4)
	assert.True(t, st.Declare("x"))
	assert.False(t, st.Declare("x"))
	assert.True(t, st.Has("x"))
	assert.False(t, st.Has("y"))
	assert.Equal(t, 1, st.Count())
}

func TestSymTabFreshPrefixAvoidsExistingNames(t *testing.T) {
	st := operand.NewSymTab(4)
	st.Declare("spill")
	st.Declare("spill_")

	prefix := st.FreshPrefix("spill")
	assert.False(t, st.Has(prefix))
	assert.True(t, st.Declare(prefix))
}

func TestSymTabFreshPrefixWithNoCollisionReturnsBaseUnchanged(t *testing.T) {
	st := operand.NewSymTab(1)
	assert.Equal(t, "tmp", st.FreshPrefix("tmp"))
}
