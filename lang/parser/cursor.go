package parser

import "github.com/pactlang/pactc/lang/decorator"

// findSemicolon returns the index, relative to tokens, of the next
// top-level (paren-depth 0) semicolon starting at cursor, or -1 if none is
// found before the end of tokens.
func findSemicolon(tokens []decorator.DecoratedToken, cursor int) int {
	depth := 0
	for i := cursor; i < len(tokens); i++ {
		t := tokens[i]
		if t.Tag != decorator.TContainer {
			continue
		}
		switch t.Container {
		case decorator.Bracket:
			depth++
		case decorator.AntiBracket:
			depth--
		case decorator.Semi:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// findMatchingBrace returns the index of the AntiBrace matching the Brace
// at tokens[openIdx], or -1 if unbalanced.
func findMatchingBrace(tokens []decorator.DecoratedToken, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(tokens); i++ {
		t := tokens[i]
		if t.Tag != decorator.TContainer {
			continue
		}
		switch t.Container {
		case decorator.Brace:
			depth++
		case decorator.AntiBrace:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isKeyword(t decorator.DecoratedToken, kw decorator.Keyword) bool {
	return t.Tag == decorator.TKeyword && t.Keyword == kw
}

func isContainer(t decorator.DecoratedToken, c decorator.ContainerKind) bool {
	return t.Tag == decorator.TContainer && t.Container == c
}

func isAssignOp(t decorator.DecoratedToken) bool {
	return t.Tag == decorator.TOperator && t.Operator.Class == decorator.Assignment
}
