// Package iltype implements the LA/LB compile-time type system: int64,
// rank-parameterised arrays of int64, tuple, code (function pointer), and
// void (return type only). Every type except array is an interned
// singleton; array is interned per rank so that two arrays of the same
// rank compare equal by identity.
package iltype

import "fmt"

// Kind discriminates the five type variants.
type Kind int8

const (
	KindInt64 Kind = iota
	KindArray
	KindTuple
	KindCode
	KindVoid
)

// Type is the interface implemented by every compile-time type. Values are
// interned: two Types describing the same type are the same Go value, so
// callers may compare with ==.
type Type interface {
	Kind() Kind
	String() string

	// IsPointer reports whether a runtime value of this type is represented
	// as an untagged pointer (low tag bit 0) rather than a tagged integer.
	IsPointer() bool

	// Decodable reports whether a runtime value of this type may be
	// right-shifted to recover its integer value. Only int64 is decodable;
	// attempting to decode code or void is an analysis-invariant violation.
	Decodable() bool
}

type int64Type struct{}

func (int64Type) Kind() Kind        { return KindInt64 }
func (int64Type) String() string    { return "int64" }
func (int64Type) IsPointer() bool   { return false }
func (int64Type) Decodable() bool   { return true }

// Int64 is the interned int64 type.
var Int64 Type = int64Type{}

type tupleType struct{}

func (tupleType) Kind() Kind      { return KindTuple }
func (tupleType) String() string  { return "tuple" }
func (tupleType) IsPointer() bool { return true }
func (tupleType) Decodable() bool { return false }

// Tuple is the interned tuple type.
var Tuple Type = tupleType{}

type codeType struct{}

func (codeType) Kind() Kind      { return KindCode }
func (codeType) String() string  { return "code" }
func (codeType) IsPointer() bool { return true }
func (codeType) Decodable() bool { return false }

// Code is the interned function-pointer type.
var Code Type = codeType{}

type voidType struct{}

func (voidType) Kind() Kind      { return KindVoid }
func (voidType) String() string  { return "void" }
func (voidType) IsPointer() bool { return false }
func (voidType) Decodable() bool { return false }

// Void is the interned void type, valid only as a function return type.
var Void Type = voidType{}

// arrayType is rank-parameterised; instances are interned by rank in the
// package-level arrayCache so that NewArray(2) always returns the same
// value.
type arrayType struct{ rank int }

func (a *arrayType) Kind() Kind      { return KindArray }
func (a *arrayType) IsPointer() bool { return true }
func (a *arrayType) Decodable() bool { return false }
func (a *arrayType) String() string {
	if a.rank == 1 {
		return "int64[]"
	}
	return fmt.Sprintf("int64%s", bracketRepeat(a.rank))
}

func bracketRepeat(n int) string {
	b := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		b = append(b, '[', ']')
	}
	return string(b)
}

// Rank returns the array's rank (number of dimensions), always >= 1.
func (a *arrayType) Rank() int { return a.rank }

var arrayCache = map[int]*arrayType{}

// NewArray returns the interned array type of the given positive rank.
// Calling NewArray with the same rank always returns the identical value.
func NewArray(rank int) Type {
	if rank < 1 {
		panic("iltype: array rank must be positive")
	}
	if t, ok := arrayCache[rank]; ok {
		return t
	}
	t := &arrayType{rank: rank}
	arrayCache[rank] = t
	return t
}

// AsArray reports whether t is an array type and returns it asserted to
// the concrete type exposing Rank().
func AsArray(t Type) (a interface {
	Type
	Rank() int
}, ok bool) {
	at, ok := t.(*arrayType)
	return at, ok
}
