package operand

import "github.com/dolthub/swiss"

// SymTab is a per-function name table used for the "unique within a
// function" invariant that Variable, Label and parameter names must
// satisfy. It is backed by a swiss.Map, the same hash map a runtime
// dictionary value would use — here keyed by name
// instead of by a runtime Value, since symbol tables are a compile-time
// concern.
type SymTab struct {
	names *swiss.Map[string, struct{}]
}

// NewSymTab returns an empty table sized for the given expected entry
// count.
func NewSymTab(size int) *SymTab {
	if size < 1 {
		size = 1
	}
	return &SymTab{names: swiss.NewMap[string, struct{}](uint32(size))}
}

// Declare registers name, reporting false if it was already present
// (caller should raise an Input-malformed "duplicate variable
// declaration" error).
func (t *SymTab) Declare(name string) bool {
	if _, ok := t.names.Get(name); ok {
		return false
	}
	t.names.Put(name, struct{}{})
	return true
}

// Has reports whether name was declared.
func (t *SymTab) Has(name string) bool {
	_, ok := t.names.Get(name)
	return ok
}

// Count returns the number of declared names.
func (t *SymTab) Count() int { return t.names.Count() }

// FreshPrefix returns a prefix string guaranteed not to be a prefix of
// any name currently in the table, by repeatedly extending base until no
// declared name starts with it.
func (t *SymTab) FreshPrefix(base string) string {
	prefix := base
	for {
		collides := false
		t.names.Iter(func(name string, _ struct{}) (stop bool) {
			if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
				collides = true
				return true
			}
			return false
		})
		if !collides {
			return prefix
		}
		prefix += "_"
	}
}
