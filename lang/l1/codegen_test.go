package l1

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmitsTrampolineAndEntryCall(t *testing.T) {
	prog := compile(t, `
func main() void {
  print(1)
}
`)
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, prog))
	out := buf.String()

	assert.Contains(t, out, ".globl go")
	assert.Contains(t, out, "go:")
	assert.Contains(t, out, "call _main")
	assert.Contains(t, out, "retq")
	assert.Contains(t, out, "_main:")
}

// seventeenLiveVars forces the allocator to spill at least one variable
// to the stack, so the generated prologue must reserve a frame for it.
func seventeenLiveVars() string {
	var b strings.Builder
	b.WriteString("func main() void {\n")
	for i := 0; i < 17; i++ {
		b.WriteString("  var %v" + strconv.Itoa(i) + " int64 <- " + strconv.Itoa(i) + "\n")
	}
	b.WriteString("  var %s int64 <- %v0 + %v1\n")
	for i := 2; i < 17; i++ {
		b.WriteString("  %s <- %s + %v" + strconv.Itoa(i) + "\n")
	}
	b.WriteString("  print(%s)\n")
	b.WriteString("}\n")
	return b.String()
}

func TestGenerateReservesStackFrameForSpills(t *testing.T) {
	prog := compile(t, seventeenLiveVars())
	var buf bytes.Buffer
	require.NoError(t, Generate(&buf, prog))
	assert.Contains(t, buf.String(), "subq $", "a spilled function must reserve a stack frame")
}

// When colouring assigns R's variable the same register as Dst, moving
// L into Dst first (the naive two-address lowering) would destroy R
// before it's read. These exercise generateInstr directly against a
// hand-built l2.Arith rather than going through the full pipeline, since
// which two virtual variables colouring happens to alias isn't something
// a source snippet can pin down without running the allocator.
func TestGenerateArithHandlesDestinationOperandAlias(t *testing.T) {
	f := &Function{Name: "f"}

	cases := []struct {
		name string
		in   l2.Arith
		want []string
	}{
		{
			name: "sub with R aliased to Dst negates after subtracting in reverse",
			in:   l2.Arith{Dst: Register{Reg: l2.RAX}, Op: ilnum.Sub, L: Register{Reg: l2.RBX}, R: Register{Reg: l2.RAX}},
			want: []string{"subq %rbx, %rax", "negq %rax"},
		},
		{
			name: "commutative add with R aliased to Dst applies L directly",
			in:   l2.Arith{Dst: Register{Reg: l2.RAX}, Op: ilnum.Add, L: Register{Reg: l2.RBX}, R: Register{Reg: l2.RAX}},
			want: []string{"addq %rbx, %rax"},
		},
		{
			name: "shift count aliased to Dst moves into rcx before L clobbers it",
			in:   l2.Arith{Dst: Register{Reg: l2.RAX}, Op: ilnum.Shl, L: Register{Reg: l2.RBX}, R: Register{Reg: l2.RAX}},
			want: []string{"movq %rax, %rcx", "movq %rbx, %rax", "shlq %cl, %rax"},
		},
		{
			name: "immediate shift count is never routed through rcx",
			in:   l2.Arith{Dst: Register{Reg: l2.RAX}, Op: ilnum.Shr, L: Register{Reg: l2.RBX}, R: Number(3)},
			want: []string{"movq %rbx, %rax", "sarq $3, %rax"},
		},
		{
			name: "no alias: ordinary move-then-op",
			in:   l2.Arith{Dst: Register{Reg: l2.RAX}, Op: ilnum.Add, L: Register{Reg: l2.RBX}, R: Register{Reg: l2.RCX}},
			want: []string{"movq %rbx, %rax", "addq %rcx, %rax"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, generateInstr(&buf, f, tc.in, 0, nil))
			out := buf.String()
			for _, want := range tc.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestGenerateRejectsUnallocatedOperand(t *testing.T) {
	prog := compile(t, `
func main() void {
  print(1)
}
`)
	// corrupt the allocator's output by reintroducing a bare variable
	// operand, simulating a bug upstream that let one slip through.
	prog.Funcs[0].Blocks[0].Instrs[0] = Assign{Dst: Variable{Name: "leaked"}, Src: Number(1)}

	var buf bytes.Buffer
	err := Generate(&buf, prog)
	assert.Error(t, err)
}
