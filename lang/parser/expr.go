// Package parser converts a DecoratedToken stream into the AST (stage P):
// the expression builder (infix→postfix, spec.md §4.3) and the statement
// builders (spec.md §4.4).
package parser

import (
	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
)

// classPriority ranks operator classes: Calculation > Relation > Logical
// (spec.md §4.3). Assignment never reaches the expression builder.
var classPriority = map[decorator.OperatorClass]int{
	decorator.Logical:     1,
	decorator.Relation:    2,
	decorator.Calculation: 3,
}

// calcSubPriority breaks ties within Calculation: {*, /, %} > {+, -}.
var calcSubPriority = map[decorator.OperatorSub]int{
	decorator.OpPlus:  1,
	decorator.OpMinus: 1,
	decorator.OpTimes: 2,
	decorator.OpDivide: 2,
	decorator.OpMod:   2,
}

// priorityHigherOrEqual reports whether operator a must be popped from the
// operator stack before pushing operator b, per spec.md §4.3: first compare
// class, then (only within Calculation) compare sub-kind. Relation and
// Logical operators are each a single tier.
func priorityHigherOrEqual(a, b decorator.Operator) bool {
	if a.Class != b.Class {
		return classPriority[a.Class] >= classPriority[b.Class]
	}
	if a.Class == decorator.Calculation {
		return calcSubPriority[a.Sub] >= calcSubPriority[b.Sub]
	}
	return true
}

// InfixToPostfix implements the shunting-yard algorithm of spec.md §4.3.
// Brackets are consumed and never appear in the output. An unbalanced
// bracket is reported as a fatal Parsing-stage issue (spec.md §4.3:
// "fatal code-generation fault" — raised here, at the earliest point the
// imbalance can be detected, see SPEC_FULL.md §4.3).
func InfixToPostfix(tokens []decorator.DecoratedToken) (ast.Expression, *issue.General) {
	var output []decorator.DecoratedToken
	var stack []decorator.DecoratedToken

	isOpenBracket := func(t decorator.DecoratedToken) bool {
		return t.Tag == decorator.TContainer && t.Container == decorator.Bracket
	}

	for _, tok := range tokens {
		switch {
		case tok.IsData():
			output = append(output, tok)

		case isOpenBracket(tok):
			stack = append(stack, tok)

		case tok.Tag == decorator.TContainer && tok.Container == decorator.AntiBracket:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if isOpenBracket(top) {
					found = true
					break
				}
				output = append(output, top)
			}
			if !found {
				return ast.Expression{}, issue.Fatal(issue.Parsing, tok.Pos, "E-UNBALANCED", "unbalanced closing bracket")
			}

		case tok.IsOperator():
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if isOpenBracket(top) {
					break
				}
				if !priorityHigherOrEqual(top.Operator, tok.Operator) {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)

		default:
			return ast.Expression{}, issue.Fatal(issue.Parsing, tok.Pos, "E-ILLEGAL-TOKEN", "illegal token in expression")
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if isOpenBracket(top) {
			return ast.Expression{}, issue.Fatal(issue.Parsing, top.Pos, "E-UNBALANCED", "unbalanced opening bracket")
		}
		output = append(output, top)
	}

	return ast.Expression{Postfix: output}, nil
}
