// Package ilerr implements the compiler's error taxonomy: input-malformed
// and analysis-invariant-violated errors abort compilation; resource-
// exhausted conditions are recovered from by the caller; user-runtime
// errors never become Go errors at all (they are lowered into branches to
// the runtime, see lang/lower).
package ilerr

import (
	"fmt"
	"strings"

	"github.com/mna/sixpass/lang/token"
)

// Kind discriminates why compilation aborted.
type Kind int8

const (
	// Malformed means the input failed to parse, or referenced an
	// undeclared variable, missing label, or duplicate declaration.
	Malformed Kind = iota
	// Invariant means an internal consistency check failed: a bug in this
	// compiler, not in the input program.
	Invariant
)

func (k Kind) String() string {
	if k == Invariant {
		return "invariant violated"
	}
	return "malformed input"
}

// Error is a single diagnostic with an optional source position.
type Error struct {
	Kind    Kind
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	if e.Pos.Unknown() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s: %s", line, col, e.Kind, e.Message)
}

// Malformedf builds an Input-malformed Error.
func Malformedf(pos token.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: Malformed, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Bug panics with an Analysis-invariant-violated Error. It is called from
// deep inside a pass (exhaustive switch default cases, corrupted-CFG
// checks, tile-matching dead ends) where threading an error return through
// every caller would obscure the algorithm; internal/maincmd recovers the
// panic at the top of each pass driver and reports it as an abort, the
// same way an internal inconsistency (e.g. a stack depth mismatch) is
// treated as an unrecoverable "oops" rather than a propagated error.
func Bug(format string, args ...interface{}) {
	panic(&Error{Kind: Invariant, Message: fmt.Sprintf(format, args...)})
}

// Recover turns a panic raised by Bug back into an *Error. It must be
// called via `defer` with recover() passed as its argument; non-ilerr
// panics are re-raised.
func Recover(r interface{}) *Error {
	if r == nil {
		return nil
	}
	if e, ok := r.(*Error); ok {
		return e
	}
	panic(r)
}

// List collects multiple Errors, e.g. every malformed-input diagnostic a
// parser found before giving up — a sortable slice of positioned errors
// satisfying Unwrap() []error, the same shape go/scanner.ErrorList uses.
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(l[0].Error())
	fmt.Fprintf(&sb, " (and %d more errors)", len(l)-1)
	return sb.String()
}

// Unwrap exposes each Error for errors.Is/As traversal.
func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Add appends a new Malformed error to the list.
func (l *List) Add(pos token.Pos, format string, args ...interface{}) {
	*l = append(*l, Malformedf(pos, format, args...))
}

// Err returns l as an error, or nil if l is empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
