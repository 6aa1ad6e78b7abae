package decorator_test

import (
	"testing"

	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decorate(t *testing.T, src string) []decorator.DecoratedToken {
	t.Helper()
	raw := lexer.Tokenize([]byte(src), true)
	toks, issues := decorator.Decorate(raw)
	require.Nil(t, issues)
	return toks
}

func TestDecorateKeyword(t *testing.T) {
	toks := decorate(t, "decl")
	require.Len(t, toks, 1)
	assert.Equal(t, decorator.TKeyword, toks[0].Tag)
	assert.Equal(t, decorator.KwDecl, toks[0].Keyword)
}

func TestDecorateIdentifier(t *testing.T) {
	toks := decorate(t, "foo")
	require.Len(t, toks, 1)
	assert.Equal(t, decorator.TIdentifier, toks[0].Tag)
	assert.Equal(t, "foo", toks[0].Identifier)
}

func TestDecorateLiterals(t *testing.T) {
	toks := decorate(t, `42 3.5 true "hi"`)
	require.Len(t, toks, 4)

	assert.Equal(t, decorator.LitInt, toks[0].LitKind)
	assert.EqualValues(t, 42, toks[0].IntVal)

	assert.Equal(t, decorator.LitFloat, toks[1].LitKind)
	assert.InDelta(t, 3.5, toks[1].FloatVal, 0.0001)

	assert.Equal(t, decorator.LitBool, toks[2].LitKind)
	assert.True(t, toks[2].BoolVal)

	assert.Equal(t, decorator.LitString, toks[3].LitKind)
	assert.Equal(t, "hi", toks[3].StringVal)
}

func TestDecorateOperatorClassAndPriorityShape(t *testing.T) {
	toks := decorate(t, "+ * < == && =")
	want := []decorator.Operator{
		{Class: decorator.Calculation, Sub: decorator.OpPlus},
		{Class: decorator.Calculation, Sub: decorator.OpTimes},
		{Class: decorator.Relation, Sub: decorator.OpLt},
		{Class: decorator.Relation, Sub: decorator.OpEq},
		{Class: decorator.Logical, Sub: decorator.OpAnd},
		{Class: decorator.Assignment, Sub: decorator.OpNone},
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Operator, "index %d", i)
	}
}

func TestDecorateContainers(t *testing.T) {
	toks := decorate(t, "( ) { } , ;")
	want := []decorator.ContainerKind{
		decorator.Bracket, decorator.AntiBracket, decorator.Brace,
		decorator.AntiBrace, decorator.Comma, decorator.Semi,
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equal(t, w, toks[i].Container, "index %d", i)
	}
}

func TestDecorateUnexpectedTokenSurfacesIssue(t *testing.T) {
	raw := lexer.Tokenize([]byte("foo $ bar"), true)
	_, issues := decorator.Decorate(raw)
	require.NotNil(t, issues)
	assert.Len(t, issues.Issues, 1)
}
