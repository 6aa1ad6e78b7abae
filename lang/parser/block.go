package parser

import (
	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
)

// statementBuilders lists every statement builder in the dispatch order of
// spec.md §4.4. The action-block builder walks the token stream, trying
// each candidate at the current cursor in turn; the first one to match
// wins. A builder that recognizes its leading token but then finds
// malformed syntax reports a fatal issue rather than falling through to the
// next candidate (spec.md §4.4: ambiguity is resolved by leading token, not
// backtracking).
var statementBuilders []func([]decorator.DecoratedToken, int) builderResult

func init() {
	statementBuilders = []func([]decorator.DecoratedToken, int) builderResult{
		declarationBuilder,
		ifBuilder,
		whileBuilder,
		loopBuilder,
		switchBuilder,
		returnBuilder,
		simpleBuilder,
		assignmentBuilder,
		callBuilder,
		nestedBlockBuilder,
	}
}

// BuildActionBlock parses a flat token slice (no enclosing braces) into an
// ActionBlock by repeatedly dispatching to the statement builders (spec.md
// §4.4). It returns every issue it collects rather than stopping at the
// first one, merging them into a single *issue.General (spec.md §7: a
// General carries every issue raised during one compilation).
func BuildActionBlock(tokens []decorator.DecoratedToken) (ast.ActionBlock, *issue.General) {
	var block ast.ActionBlock
	var all *issue.General

	cursor := 0
	for cursor < len(tokens) {
		matched := false
		for _, build := range statementBuilders {
			res := build(tokens, cursor)
			if res.issues != nil {
				all = issue.Merge(all, res.issues)
				if !res.ok {
					// Builder recognized its leading token but failed: skip to
					// the next statement boundary to keep collecting issues
					// instead of aborting the whole block.
					next := findSemicolon(tokens, cursor)
					if next == -1 {
						cursor = len(tokens)
					} else {
						cursor = next + 1
					}
					matched = true
					break
				}
			}
			if res.ok {
				if res.nested != nil {
					block.Actions = append(block.Actions, res.nested.Actions...)
				} else {
					block.Actions = append(block.Actions, res.action)
				}
				cursor = res.next
				matched = true
				break
			}
		}
		if !matched {
			all = issue.Merge(all, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNEXPECTED-TOKEN", "unexpected token in statement position"))
			cursor++
		}
	}

	if len(tokens) > 0 {
		block.Start, block.End = tokens[0].Pos, tokens[len(tokens)-1].Pos
	}
	return block, all
}
