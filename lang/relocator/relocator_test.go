package relocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlang/pactc/lang/codegen"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/lexer"
	"github.com/pactlang/pactc/lang/parser"
)

func generate(t *testing.T, src, entry string) *codegen.CommandList {
	t.Helper()
	raw := lexer.Tokenize([]byte(src), true)
	toks, issues := decorator.Decorate(raw)
	require.Nil(t, issues)
	file, issues := parser.BuildFile(toks, entry)
	require.Nil(t, issues)
	list, issues := codegen.Generate(file)
	require.Nil(t, issues)
	return list
}

func TestResolveTargetsIfElseBreakDomain(t *testing.T) {
	list := generate(t, `
		decl main() int {
			decl var int foo;
			if (foo > 1) {
				foo = 1;
			} else {
				foo = 2;
			}
			return foo;
		}
	`, "main")

	issues := ResolveTargets(list)
	require.Nil(t, issues)

	for _, target := range list.Credential.Targets {
		assert.NotEqual(t, codegen.Undefined, target.Type)
		if target.Type != codegen.EnterFunction {
			// Every non-EnterFunction target has been resolved to some
			// concrete delta. Zero is a legitimate delta: the if block's
			// BreakDomain resolves to the DomainDestroy reference recorded
			// at its own jump's position.
			_ = target.RelocatedAddress
		}
	}
}

func TestResolveTargetsWhileBreakIsBeforeDomainDestroy(t *testing.T) {
	list := generate(t, `
		decl main() int {
			decl var int foo;
			while (foo < 10) {
				if (foo == 5) { break; }
				foo = foo + 1;
			}
			return foo;
		}
	`, "main")

	issues := ResolveTargets(list)
	require.Nil(t, issues)

	var breakTarget *codegen.RelocationTarget
	for i := range list.Credential.Targets {
		if list.Credential.Targets[i].Type == codegen.BreakIteration {
			breakTarget = &list.Credential.Targets[i]
		}
	}
	require.NotNil(t, breakTarget)
	assert.Greater(t, breakTarget.RelocatedAddress, int32(0))
}

func TestResolveTargetsDomainHeadMatchesOwnScope(t *testing.T) {
	list := generate(t, `
		decl main() int {
			decl var int foo;
			if (foo > 1) {
				if (foo > 2) {
					foo = 1;
				}
			}
			return foo;
		}
	`, "main")

	issues := ResolveTargets(list)
	require.Nil(t, issues)

	var domainHeads int
	for _, target := range list.Credential.Targets {
		if target.Type == codegen.DomainHead {
			domainHeads++
			assert.Greater(t, target.RelocatedAddress, int32(0))
		}
	}
	assert.Equal(t, 2, domainHeads)
}

func TestResolveTargetsBreakOutsideFunctionEndFails(t *testing.T) {
	refs := []codegen.RelocationReference{
		{Type: codegen.RefIterationHead, Pos: 0},
		{Type: codegen.RefFunctionEnd, Pos: 10},
		{Type: codegen.RefIterationInterrupt, Pos: 20},
	}
	pos, ok := resolveBreakIteration(5, refs)
	assert.False(t, ok)
	assert.Equal(t, 0, pos)
}

func TestResolveTargetsIterationHeadNoLoopFails(t *testing.T) {
	list := &codegen.CommandList{
		Credential: codegen.Credential{
			Targets: []codegen.RelocationTarget{{Type: codegen.IterationHead, Pos: 3}},
		},
	}
	issues := ResolveTargets(list)
	require.NotNil(t, issues)
	assert.True(t, issues.HasErrors())
}

func TestResolveTargetsUndefinedIsFatal(t *testing.T) {
	list := &codegen.CommandList{
		Credential: codegen.Credential{
			Targets: []codegen.RelocationTarget{{Type: codegen.Undefined, Pos: 0}},
		},
	}
	issues := ResolveTargets(list)
	require.NotNil(t, issues)
}

func TestBreakDomainBugMatchesFirstDomainDestroyRegardlessOfPosition(t *testing.T) {
	// Faithful reproduction of the source compiler's documented bug: the
	// BreakDomain target resolves to the very first DomainDestroy in the
	// whole reference list, even when a much closer one exists and the
	// target's own n payload says otherwise.
	refs := []codegen.RelocationReference{
		{Type: codegen.RefDomainCreate, Pos: 0},
		{Type: codegen.RefDomainDestroy, Pos: 2},
		{Type: codegen.RefDomainCreate, Pos: 10},
		{Type: codegen.RefDomainDestroy, Pos: 20},
	}
	pos, ok := firstDomainDestroy(refs)
	require.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestApplyRelocationWritesAddrLenPlusOneBytes(t *testing.T) {
	list := generate(t, `
		decl main() int {
			decl var int foo;
			if (foo > 1) { foo = 1; }
			return foo;
		}
	`, "main")

	before := len(list.Commands)
	issues := ResolveTargets(list)
	require.Nil(t, issues)
	issues = ApplyRelocation(list)
	require.Nil(t, issues)

	assert.Equal(t, before, len(list.Commands))
}

func TestApplyRelocationEnterFunctionWritesAbsoluteSlot(t *testing.T) {
	list := generate(t, `
		decl helper() int { return 1; }
		decl main() int {
			helper();
			return 0;
		}
	`, "main")

	issues := ResolveTargets(list)
	require.Nil(t, issues)
	issues = ApplyRelocation(list)
	require.Nil(t, issues)

	var found bool
	for _, target := range list.Credential.Targets {
		if target.Type == codegen.EnterFunction {
			found = true
			mode := list.Commands[target.Pos+target.Offset]
			assert.Equal(t, byte(0x00), mode)
		}
	}
	assert.True(t, found)
}

func TestApplyRelocationIsIdempotent(t *testing.T) {
	list := generate(t, `
		decl main() int {
			decl var int foo;
			while (foo < 10) { foo = foo + 1; }
			return foo;
		}
	`, "main")

	require.Nil(t, ResolveTargets(list))
	require.Nil(t, ApplyRelocation(list))
	first := append([]byte(nil), list.Commands...)

	require.Nil(t, ApplyRelocation(list))
	assert.Equal(t, first, list.Commands)
}

func TestApplyRelocationUnresolvedLinkIsFatal(t *testing.T) {
	list := &codegen.CommandList{
		Commands: make([]byte, 16),
		Credential: codegen.Credential{
			Targets: []codegen.RelocationTarget{
				{Type: codegen.EnterFunction, Pos: 0, Offset: 2, FuncName: "nowhere"},
			},
		},
	}
	issues := ApplyRelocation(list)
	require.NotNil(t, issues)
}

func TestApplyRelocationExternalLinkStillUnresolvedIsFatal(t *testing.T) {
	// A `link`ed function (spec.md §4.4) that never got a body from a
	// Combined unit is unresolved by definition (single-package output,
	// SPEC_FULL.md §4.4) — it must still fatal if something actually
	// targets it via EnterFunction, even though Generate itself no longer
	// fatals just for declaring the link.
	list := &codegen.CommandList{
		Commands:      make([]byte, 16),
		FunctionTable: []codegen.FunctionEntry{{Name: "vanished", External: true}},
		Credential: codegen.Credential{
			Targets: []codegen.RelocationTarget{
				{Type: codegen.EnterFunction, Pos: 0, Offset: 2, FuncName: "vanished"},
			},
		},
	}
	issues := ApplyRelocation(list)
	require.NotNil(t, issues)
	assert.True(t, issues.HasErrors())
}
