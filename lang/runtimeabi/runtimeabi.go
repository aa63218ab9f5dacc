// Package runtimeabi names the fixed external collaborator every lowered
// program links against: five runtime entry points providing print,
// input, allocation and the two error-reporting calls the LA→IR tagging
// pass emits. The runtime itself is an opaque library; this
// package only records the calling convention the lowering passes must
// honor.
package runtimeabi

import "github.com/mna/sixpass/lang/ilnum"

// TensorErrorArity is the set of argument counts the tensor-error entry
// point may be called with, depending on which safety check failed:
// 1 for a null-pointer check, 3 for a rank-1 bounds check, 4 for a
// rank>=2 dimension check.
var TensorErrorArity = []int{1, 3, 4}

// Entry describes one runtime function's calling convention.
type Entry struct {
	Func      ilnum.RuntimeFunc
	VarArity  bool  // true only for tensor-error
	FixedArgs int   // valid only if !VarArity
	Returns   bool  // false for calls that never return control (error handlers)
}

// Entries lists the five fixed runtime functions.
var Entries = []Entry{
	{Func: ilnum.Print, FixedArgs: 1, Returns: true},
	{Func: ilnum.Input, FixedArgs: 0, Returns: true},
	{Func: ilnum.Allocate, FixedArgs: 2, Returns: true},
	{Func: ilnum.TupleError, FixedArgs: 3, Returns: false},
	{Func: ilnum.TensorError, VarArity: true, Returns: false},
}
