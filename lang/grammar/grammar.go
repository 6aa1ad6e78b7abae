// Package grammar holds grammar.ebnf, a descriptive (not executable) EBNF
// account of Pact's surface syntax, checked for internal consistency by
// grammar_test.go's golang.org/x/exp/ebnf.Verify call. It is not consulted
// by the parser — lang/parser's recursive-descent builders are the actual
// source of truth — but documents the shape spec.md §4.4's dispatch table
// describes in prose.
package grammar
