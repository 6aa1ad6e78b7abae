package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlang/pactc/lang/decorator"
)

// postfixToInfix is a reference converter built only for this test: it
// undoes InfixToPostfix by evaluating the postfix stream on a stack of
// token fragments, wrapping every operator application in explicit
// brackets so precedence survives being fed back through the real
// shunting-yard builder. It is deliberately not exported and has no
// production caller — spec.md §8's L1 ("infix_to_postfix(infix_to_postfix⁻¹(p))
// = p for any postfix sequence p produced by the builder") names exactly
// this "reference converter for test" requirement.
func postfixToInfix(postfix []decorator.DecoratedToken) ([]decorator.DecoratedToken, bool) {
	open := decorator.DecoratedToken{Tag: decorator.TContainer, Container: decorator.Bracket}
	closeTok := decorator.DecoratedToken{Tag: decorator.TContainer, Container: decorator.AntiBracket}

	var stack [][]decorator.DecoratedToken
	for _, tok := range postfix {
		switch {
		case tok.IsData():
			stack = append(stack, []decorator.DecoratedToken{tok})

		case tok.IsOperator() && tok.Operator.Sub == decorator.OpNot:
			if len(stack) < 1 {
				return nil, false
			}
			operand := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			frag := append([]decorator.DecoratedToken{tok, open}, operand...)
			frag = append(frag, closeTok)
			stack = append(stack, frag)

		case tok.IsOperator():
			if len(stack) < 2 {
				return nil, false
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			frag := append([]decorator.DecoratedToken{open}, left...)
			frag = append(frag, tok)
			frag = append(frag, right...)
			frag = append(frag, closeTok)
			stack = append(stack, frag)

		default:
			return nil, false
		}
	}

	if len(stack) != 1 {
		return nil, false
	}
	return stack[0], true
}

// sameShape compares two DecoratedToken sequences by the fields that
// matter to InfixToPostfix and to postfix equality (tag, operator,
// container, identifier/literal payload) — positions legitimately differ
// between the original postfix and the round-tripped one, since the
// reference converter's synthetic bracket tokens have no source position.
func sameShape(t *testing.T, got, want []decorator.DecoratedToken) bool {
	t.Helper()
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		g, w := got[i], want[i]
		if g.Tag != w.Tag || g.Operator != w.Operator || g.Container != w.Container ||
			g.Identifier != w.Identifier || g.LitKind != w.LitKind || g.IntVal != w.IntVal ||
			g.FloatVal != w.FloatVal || g.BoolVal != w.BoolVal || g.StringVal != w.StringVal {
			return false
		}
	}
	return true
}

func TestInfixToPostfixRoundTripsThroughReferenceConverter(t *testing.T) {
	// L1: infix_to_postfix(infix_to_postfix⁻¹(p)) = p for every postfix
	// sequence p the real builder produces, across arithmetic, relational,
	// logical, unary and nested-grouping shapes.
	sources := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"a < b + c",
		"a && b < c",
		"a || b && c",
		"!a",
		"!a && b",
		"a - b - c",
		"a / b * c % 2",
		"(a + b) * (c - d)",
		"a == b != c",
		"1",
		"foo",
	}

	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			toks := decorateSrc(t, src)
			original, issues := InfixToPostfix(toks)
			require.Nil(t, issues)

			infix, ok := postfixToInfix(original.Postfix)
			require.True(t, ok, "reference converter failed to invert %q", src)

			roundTripped, issues := InfixToPostfix(infix)
			require.Nil(t, issues)

			assert.True(t, sameShape(t, roundTripped.Postfix, original.Postfix),
				"round trip mismatch for %q: got %q, want %q", src, roundTripped.String(), original.String())
		})
	}
}
