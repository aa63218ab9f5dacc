package tile

import (
	"testing"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/l3"
	"github.com/mna/sixpass/lang/operand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// x <- a + b; y <- x * 2: x is defined by the immediately preceding
// instruction and used nowhere else in the block, so it must merge
// into y's multiply rather than surface as its own tree.
func TestBuildForestMergesSingleUseIntoConsumer(t *testing.T) {
	instrs := []l3.Instr{
		l3.Arith{Dst: operand.Variable{Name: "x"}, Op: ilnum.Add, L: operand.Variable{Name: "a"}, R: operand.Variable{Name: "b"}},
		l3.Arith{Dst: operand.Variable{Name: "y"}, Op: ilnum.Mul, L: operand.Variable{Name: "x"}, R: operand.Number(2)},
	}

	forest := buildForest(instrs)
	require.Len(t, forest, 1, "x's definition must be absorbed rather than stand as its own root")

	root := forest[0]
	yArith, ok := root.instr.(l3.Arith)
	require.True(t, ok)
	assert.Equal(t, "y", yArith.Dst.Name)

	require.Len(t, root.operands, 2)
	assert.False(t, root.operands[0].isLeaf(), "x's arith must be folded into y's left operand")
	xArith, ok := root.operands[0].instr.(l3.Arith)
	require.True(t, ok)
	assert.Equal(t, "x", xArith.Dst.Name)

	assert.True(t, root.operands[1].isLeaf())
	assert.Equal(t, operand.Number(2), root.operands[1].leaf)
}

// A variable used more than once in the block can never be folded away
// — each use still needs to read the one place its value lives.
func TestBuildForestLeavesMultiUseVariableAsLeaf(t *testing.T) {
	instrs := []l3.Instr{
		l3.Arith{Dst: operand.Variable{Name: "x"}, Op: ilnum.Add, L: operand.Variable{Name: "a"}, R: operand.Variable{Name: "b"}},
		l3.Arith{Dst: operand.Variable{Name: "y"}, Op: ilnum.Mul, L: operand.Variable{Name: "x"}, R: operand.Variable{Name: "x"}},
	}

	forest := buildForest(instrs)
	require.Len(t, forest, 2, "x is used twice, so its definition must remain its own root")
	assert.True(t, forest[1].operands[0].isLeaf())
	assert.True(t, forest[1].operands[1].isLeaf())
}

// Calls, stores, returns, and branches are always roots: dstName reports
// no result for them, so no later instruction can fold them in. A return
// still absorbs its own operand when the producing instruction
// immediately precedes it with a single use.
func TestBuildForestKeepsReturnAsRoot(t *testing.T) {
	instrs := []l3.Instr{
		l3.Arith{Dst: operand.Variable{Name: "v"}, Op: ilnum.Add, L: operand.Number(1), R: operand.Number(1)},
		l3.ReturnVal{Value: operand.Variable{Name: "v"}},
	}
	forest := buildForest(instrs)
	require.Len(t, forest, 1)
	_, ok := forest[0].instr.(l3.ReturnVal)
	require.True(t, ok)
	assert.False(t, forest[0].operands[0].isLeaf(), "the ReturnVal's operand still folds v's single use in")
}

// Tiling the merged scenario-2 forest must never materialize a "y <-
// x" move: the merge means x's computed value already feeds directly
// into y's Arith as an operand, not through an intermediate Assign.
func TestTilingMergedArithSkipsRedundantMove(t *testing.T) {
	instrs := []l3.Instr{
		l3.Arith{Dst: operand.Variable{Name: "x"}, Op: ilnum.Add, L: operand.Variable{Name: "a"}, R: operand.Variable{Name: "b"}},
		l3.Arith{Dst: operand.Variable{Name: "y"}, Op: ilnum.Mul, L: operand.Variable{Name: "x"}, R: operand.Number(2)},
	}

	fn := &funcSelect{locals: map[string]bool{}}
	forest := buildForest(instrs)
	roots := doTiling(fn, forest)
	require.Len(t, roots, 1)

	out := flatten(roots[0])
	require.Len(t, out, 2, "only the two Arith instructions should be emitted")
	for _, in := range out {
		if a, ok := in.(l2.Assign); ok {
			t.Fatalf("unexpected Assign in tiled output: %v", a)
		}
	}

	first, ok := out[0].(l2.Arith)
	require.True(t, ok)
	assert.Equal(t, "x", first.Dst.(l2.Variable).Name)

	second, ok := out[1].(l2.Arith)
	require.True(t, ok)
	assert.Equal(t, "y", second.Dst.(l2.Variable).Name)
	assert.Equal(t, l2.Variable{Name: "x"}, second.L)
}
