package issue_test

import (
	"errors"
	"testing"

	"github.com/pactlang/pactc/lang/issue"
	"github.com/pactlang/pactc/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneralErr(t *testing.T) {
	var g issue.General
	require.Nil(t, g.Err())

	g.Add(issue.Error, issue.Parsing, 12, "E001", "unexpected token")
	require.NotNil(t, g.Err())
	assert.True(t, g.HasErrors())
}

func TestGeneralSortAndUnwrap(t *testing.T) {
	var g issue.General
	g.Add(issue.Error, issue.Parsing, 30, "E002", "second")
	g.Add(issue.Error, issue.Parsing, 10, "E001", "first")
	g.Sort()

	require.Len(t, g.Issues, 2)
	assert.Equal(t, token.Pos(10), g.Issues[0].Pos)
	assert.Equal(t, token.Pos(30), g.Issues[1].Pos)

	unwrapped := g.Unwrap()
	require.Len(t, unwrapped, 2)

	var base issue.Base
	require.True(t, errors.As(unwrapped[0], &base))
}

func TestFatalIsSingleIssue(t *testing.T) {
	g := issue.Fatal(issue.CodeGeneration, 0, "E100", "unpaired scope")
	require.Len(t, g.Issues, 1)
	assert.Equal(t, issue.CodeGeneration, g.Issues[0].Position)
}

func TestMerge(t *testing.T) {
	var a, b issue.General
	a.Add(issue.Warning, issue.Parsing, 1, "", "a")
	b.Add(issue.Warning, issue.Parsing, 2, "", "b")
	a.Merge(&b)
	require.Len(t, a.Issues, 2)
}
