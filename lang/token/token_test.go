package token_test

import (
	"testing"

	"github.com/pactlang/pactc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePosition(t *testing.T) {
	src := "ab\ncde\nf"
	f := token.NewFile("test.pact", len(src))
	for i, b := range []byte(src) {
		if b == '\n' {
			f.AddLine(i)
		}
	}

	cases := []struct {
		off  int
		want token.Position
	}{
		{0, token.Position{Filename: "test.pact", Line: 1, Column: 1}},
		{2, token.Position{Filename: "test.pact", Line: 1, Column: 3}},
		{3, token.Position{Filename: "test.pact", Line: 2, Column: 1}},
		{6, token.Position{Filename: "test.pact", Line: 2, Column: 4}},
		{7, token.Position{Filename: "test.pact", Line: 3, Column: 1}},
	}
	for _, c := range cases {
		got := f.Position(f.Pos(c.off))
		assert.Equal(t, c.want, got)
	}
}

func TestPositionString(t *testing.T) {
	require.Equal(t, "test.pact:1:1", token.Position{Filename: "test.pact", Line: 1, Column: 1}.String())
	require.Equal(t, "-", token.Position{}.String())
}

func TestNoPos(t *testing.T) {
	f := token.NewFile("empty.pact", 0)
	got := f.Position(token.NoPos)
	assert.False(t, got.IsValid())
	assert.Equal(t, "empty.pact", got.Filename)
}
