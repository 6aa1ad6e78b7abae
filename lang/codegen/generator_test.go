package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/lexer"
	"github.com/pactlang/pactc/lang/parser"
)

func buildFile(t *testing.T, src, entry string) ast.File {
	t.Helper()
	raw := lexer.Tokenize([]byte(src), true)
	toks, issues := decorator.Decorate(raw)
	require.Nil(t, issues)
	file, issues := parser.BuildFile(toks, entry)
	require.Nil(t, issues)
	return file
}

func TestGenerateSimpleAssignment(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			decl var int foo;
			foo = 2 + 3 * 4;
			return foo;
		}
	`, "main")

	list, issues := Generate(file)
	require.Nil(t, issues)
	require.Len(t, list.FunctionTable, 1)
	assert.Equal(t, "main", list.FunctionTable[0].Name)
	assert.Equal(t, uint32(0), list.FunctionTable[0].Slot)
	assert.NotEmpty(t, list.Commands)

	// No DomainCreate/DomainDestroy pair is present (no compound
	// statements at all in this body).
	for _, r := range list.Credential.References {
		assert.NotEqual(t, RefDomainCreate, r.Type)
	}
	assert.Empty(t, list.Credential.Targets)
}

func TestGenerateWhileWithBreak(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			decl var int foo;
			while (foo < 10) {
				foo = foo + 1;
				if (foo == 5) { break; }
			}
			return foo;
		}
	`, "main")

	list, issues := Generate(file)
	require.Nil(t, issues)

	var iterHeads, iterInterrupts, domainCreates, domainDestroys int
	for _, r := range list.Credential.References {
		switch r.Type {
		case RefIterationHead:
			iterHeads++
		case RefIterationInterrupt:
			iterInterrupts++
		case RefDomainCreate:
			domainCreates++
		case RefDomainDestroy:
			domainDestroys++
		}
	}
	assert.Equal(t, 1, iterHeads)
	assert.Equal(t, 1, iterInterrupts)
	assert.Equal(t, domainCreates, domainDestroys)
	assert.GreaterOrEqual(t, domainCreates, 2) // while + if

	var breakTargets int
	for _, target := range list.Credential.Targets {
		if target.Type == BreakIteration {
			breakTargets++
		}
	}
	assert.Equal(t, 1, breakTargets)
}

func TestGenerateIfElifElse(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			decl var int foo;
			if (foo > 1202) {
				foo = foo + 1;
			} else {
				foo = foo + 2;
			}
			return foo;
		}
	`, "main")

	list, issues := Generate(file)
	require.Nil(t, issues)

	var breakDomains, elseEntrances, endElses int
	for _, target := range list.Credential.Targets {
		if target.Type == BreakDomain {
			breakDomains++
		}
	}
	for _, r := range list.Credential.References {
		switch r.Type {
		case RefElseEntrance:
			elseEntrances++
		case RefEndElse:
			endElses++
		}
	}
	assert.Equal(t, 1, breakDomains)
	assert.Equal(t, 1, elseEntrances)
	assert.Equal(t, 1, endElses)
}

func TestGenerateFunctionCallRelocation(t *testing.T) {
	file := buildFile(t, `
		decl helper() int { return 1; }
		decl main() int {
			helper();
			return 0;
		}
	`, "main")

	list, issues := Generate(file)
	require.Nil(t, issues)
	require.Len(t, list.FunctionTable, 2)
	assert.Equal(t, "helper", list.FunctionTable[0].Name)
	assert.Equal(t, "main", list.FunctionTable[1].Name)

	var found bool
	for _, target := range list.Credential.Targets {
		if target.Type == EnterFunction && target.FuncName == "helper" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateUnresolvedEntryIsFatal(t *testing.T) {
	file := buildFile(t, `decl helper() int { return 1; }`, "main")
	_, issues := Generate(file)
	require.NotNil(t, issues)
	assert.True(t, issues.HasErrors())
}

func TestGenerateSwitchIsFatal(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			switch (1) {
				case 1 { return 1; }
			}
			return 0;
		}
	`, "main")
	_, issues := Generate(file)
	require.NotNil(t, issues)
	assert.True(t, issues.HasErrors())
}

func TestGenerateBreakOutsideLoopIsFatal(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			break;
			return 0;
		}
	`, "main")
	_, issues := Generate(file)
	require.NotNil(t, issues)
}

func TestGenerateUndeclaredIdentifierIsFatal(t *testing.T) {
	file := buildFile(t, `
		decl main() int {
			return undeclared;
		}
	`, "main")
	_, issues := Generate(file)
	require.NotNil(t, issues)
}

func TestGenerateLinkedFunctionWithoutLocalBodyIsExternalNotFatal(t *testing.T) {
	file := buildFile(t, `
		link vanished;
		decl main() int { return 0; }
	`, "main")
	list, issues := Generate(file)
	require.Nil(t, issues)

	var found bool
	for _, f := range list.FunctionTable {
		if f.Name == "vanished" {
			found = true
			assert.True(t, f.External)
		}
	}
	assert.True(t, found, "link with no local body should still produce a function table row")
}

func TestGenerateLinkMatchingLocalFunctionIsNotExternal(t *testing.T) {
	file := buildFile(t, `
		link helper;
		decl helper() int { return 1; }
		decl main() int { return 0; }
	`, "main")
	list, issues := Generate(file)
	require.Nil(t, issues)

	var entries int
	for _, f := range list.FunctionTable {
		if f.Name == "helper" {
			entries++
			assert.False(t, f.External)
		}
	}
	assert.Equal(t, 1, entries, "a link matching a local body must not add a second row")
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	file := buildFile(t, `
		decl helper() int { return 1; }
		decl main() int {
			decl var int foo;
			foo = 1 + 2;
			while (foo < 10) { foo = foo + 1; }
			helper();
			return foo;
		}
	`, "main")
	list, issues := Generate(file)
	require.Nil(t, issues)
	out := Disassemble(list)
	assert.Contains(t, out, "functions:")
	assert.Contains(t, out, "code:")
}
