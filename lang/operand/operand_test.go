package operand_test

import (
	"testing"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/operand"
	"github.com/stretchr/testify/assert"
)

func TestOperandStrings(t *testing.T) {
	assert.Equal(t, "%x", operand.Variable{Name: "x"}.String())
	assert.Equal(t, "42", operand.Number(42).String())
	assert.Equal(t, "-7", operand.Number(-7).String())
	assert.Equal(t, ":loop", operand.Label{Name: "loop"}.String())
	assert.Equal(t, "@fact", operand.FunctionName{Name: "fact"}.String())
	assert.Equal(t, "print", operand.RuntimeFunction{Func: ilnum.Print}.String())
}

func TestMemoryLocationStringNestsIndices(t *testing.T) {
	m := operand.MemoryLocation{
		Base: operand.Variable{Name: "a"},
		Indices: []operand.Operand{
			operand.Number(1),
			operand.Variable{Name: "i"},
		},
	}
	assert.Equal(t, "%a[1][%i]", m.String())
}

func TestVarsCollectsBaseAndNestedIndexVariables(t *testing.T) {
	mem := operand.MemoryLocation{
		Base: operand.Variable{Name: "a"},
		Indices: []operand.Operand{
			operand.MemoryLocation{
				Base:    operand.Variable{Name: "b"},
				Indices: []operand.Operand{operand.Variable{Name: "i"}},
			},
		},
	}
	vars := operand.Vars(mem)
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"a", "b", "i"}, names)
}

func TestVarsOfNonVariableOperandIsNil(t *testing.T) {
	assert.Nil(t, operand.Vars(operand.Number(3)))
	assert.Nil(t, operand.Vars(operand.Label{Name: "l"}))
}
