// Package grammar holds the project's two EBNF grammars — grammar_lb.ebnf
// for LB surface syntax and grammar_l2.ebnf for the textual L2/L1 dump
// format — checked against golang.org/x/exp/ebnf in grammar_test.go so a
// grammar edit that breaks EBNF well-formedness or introduces an
// unreachable production fails the build rather than the next person to
// read lbparse or lang/l2/parse.go by hand.
package grammar
