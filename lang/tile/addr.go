package tile

import (
	"github.com/mna/sixpass/lang/ilnum"
	"github.com/mna/sixpass/lang/l2"
	"github.com/mna/sixpass/lang/operand"
)

// lowerAddress expands a logical array/tuple access into the byte
// address it denotes, emitting every intermediate instruction via emit
// and returning the final MemoryLocation a Load/Store should use.
//
// The layout this assumes — a header of rank+1 words (a word holding
// the rank, one word per dimension's length) followed by flat
// row-major data — since this compiler's IR no longer carries static
// array extents once types are erased, this tiler instead
// loads each dimension's length from its word in the header. A tuple access has
// exactly one index and is addressed identically to a rank-1 array,
// sharing its two-word header (rank marker plus length) — collapsing
// the two into one runtime layout sidesteps needing type information
// this IL has already discarded. A dimension's length is always at a
// fixed word offset in the header, so every fetch of one here is a
// direct Load rather than a standalone Len instruction — the same
// simplification lenAddress below applies to the user-facing length()
// builtin.
func lowerAddress(mem operand.MemoryLocation, fresh func() l2.Variable, emit func(l2.Instr)) l2.MemoryLocation {
	base := l2.Variable{Name: mem.Base.Name}
	rank := len(mem.Indices)
	idx := convertList(mem.Indices)

	offset := fresh()
	emit(l2.Assign{Dst: offset, Src: idx[rank-1]})

	if rank > 1 {
		accum := fresh()
		emit(l2.Load{Dst: accum, Mem: l2.MemoryLocation{Base: base, Offset: int64(rank) * 8}})

		for i := rank - 2; i >= 0; i-- {
			tmp := fresh()
			emit(l2.Arith{Dst: tmp, Op: ilnum.Mul, L: accum, R: idx[i]})
			emit(l2.Arith{Dst: offset, Op: ilnum.Add, L: offset, R: tmp})
			if i > 0 {
				dim := fresh()
				emit(l2.Load{Dst: dim, Mem: l2.MemoryLocation{Base: base, Offset: int64(i+1) * 8}})
				emit(l2.Arith{Dst: accum, Op: ilnum.Mul, L: accum, R: dim})
			}
		}
	}

	headerWords := int64(rank + 1)
	emit(l2.Arith{Dst: offset, Op: ilnum.Add, L: offset, R: l2.Number(headerWords)})
	emit(l2.Arith{Dst: offset, Op: ilnum.Shl, L: offset, R: l2.Number(3)})

	addr := fresh()
	emit(l2.Arith{Dst: addr, Op: ilnum.Add, L: base, R: offset})
	return l2.MemoryLocation{Base: addr, Offset: 0}
}

// lenAddress implements the length() builtin: dim nil means the
// rank-1/tuple case (the single length word at word 1); a constant dim
// folds straight into the Load's byte offset; a dim computed at
// runtime (length(%a, %i) with a variable %i) needs the word index
// added and scaled before the dereference.
func lenAddress(dst l2.Operand, arr l2.Variable, dim l2.Operand, fresh func() l2.Variable, emit func(l2.Instr)) {
	if dim == nil {
		emit(l2.Load{Dst: dst, Mem: l2.MemoryLocation{Base: arr, Offset: 8}})
		return
	}
	if n, ok := dim.(l2.Number); ok {
		emit(l2.Load{Dst: dst, Mem: l2.MemoryLocation{Base: arr, Offset: (int64(n) + 1) * 8}})
		return
	}

	word := fresh()
	emit(l2.Arith{Dst: word, Op: ilnum.Add, L: dim, R: l2.Number(1)})
	byteOff := fresh()
	emit(l2.Arith{Dst: byteOff, Op: ilnum.Shl, L: word, R: l2.Number(3)})
	addr := fresh()
	emit(l2.Arith{Dst: addr, Op: ilnum.Add, L: arr, R: byteOff})
	emit(l2.Load{Dst: dst, Mem: l2.MemoryLocation{Base: addr, Offset: 0}})
}
