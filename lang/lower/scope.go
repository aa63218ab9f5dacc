package lower

import "github.com/dolthub/swiss"

// scope is one LB lexical block, tracked only long enough to compute a
// globally-unique LA name for every variable it declares. Naming walks
// the block tree assigning each block a path string built from its
// index among its parent's children ('_' for the function's top-level
// block, then 'a', 'b', ... for each nested block in turn), turning
// nested lexical blocks into short disambiguating suffixes.
type scope struct {
	parent   *scope
	path     string
	children int // number of child scopes created so far, for path assignment
	names    *swiss.Map[string, string] // LB name -> LA name, declared directly in this scope
}

func newRootScope() *scope {
	return &scope{path: "_", names: swiss.NewMap[string, string](4)}
}

func (s *scope) enter() *scope {
	letter := letterFor(s.children)
	s.children++
	return &scope{parent: s, path: s.path + letter, names: swiss.NewMap[string, string](4)}
}

func letterFor(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	if i < 52 {
		return string(rune('A' + i - 26))
	}
	return "_" + string(rune('a'+i%26))
}

// declare records name's LA rename within this scope and returns it. The
// LA name is the LB name suffixed with this scope's path, which is
// unique across the whole function because no two scopes share a path
// and a scope never declares the same LB name twice.
func (s *scope) declare(name string) string {
	laName := name + "$" + s.path
	s.names.Put(name, laName)
	return laName
}

// lookup resolves name by walking outward from s to the function's root
// scope, implementing LB's standard lexical shadowing rule.
func (s *scope) lookup(name string) (string, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if laName, ok := cur.names.Get(name); ok {
			return laName, true
		}
	}
	return "", false
}
