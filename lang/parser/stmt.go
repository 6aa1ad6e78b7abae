package parser

import (
	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
	"github.com/pactlang/pactc/lang/token"
)

// builderResult is returned by every statement builder. ok==false means the
// builder did not recognize the statement starting at cursor and the
// dispatcher should try the next candidate, leaving cursor untouched
// (spec.md §4.4: "If a builder cannot match, it reports failure by
// returning an empty result and leaving the cursor untouched").
type builderResult struct {
	action ast.Action
	// nested carries a bare `{ ... }` statement's body. It is kept out of
	// the action field because a nested block is not one of spec.md §3's
	// Action variants — the dispatcher splices its actions directly into
	// the parent block instead of wrapping them in a synthetic node.
	nested *ast.ActionBlock
	next   int
	ok     bool
	issues *issue.General
}

func noMatch() builderResult { return builderResult{} }

func fail(g *issue.General) builderResult { return builderResult{issues: g} }

// declarationBuilder recognizes `decl var|const <type> <identifier>;`
// (spec.md §4.4, row "decl"). Function declarations (`decl <name>(...)..`)
// are handled separately by the file-level builder (see file.go); this
// builder only matches the variable/constant form and defers otherwise.
func declarationBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwDecl) {
		return noMatch()
	}
	if cursor+1 >= len(tokens) {
		return noMatch()
	}
	isVar := isKeyword(tokens[cursor+1], decorator.KwVar)
	isConst := isKeyword(tokens[cursor+1], decorator.KwConst)
	if !isVar && !isConst {
		return noMatch() // function declaration, not a statement
	}

	semi := findSemicolon(tokens, cursor)
	if semi != cursor+4 || tokens[cursor+2].Tag != decorator.TIdentifier || tokens[cursor+3].Tag != decorator.TIdentifier {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-BAD-DECL", "malformed declaration"))
	}

	return builderResult{
		action: ast.Declaration{
			IsVariable: isVar,
			DataType:   tokens[cursor+2].Identifier,
			Identifier: tokens[cursor+3].Identifier,
			Pos:        tokens[cursor].Pos,
		},
		next: semi + 1,
		ok:   true,
	}
}

// assignmentBuilder recognizes `<identifier> = <expr>;`.
func assignmentBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor+1 >= len(tokens) || tokens[cursor].Tag != decorator.TIdentifier || !isAssignOp(tokens[cursor+1]) {
		return noMatch()
	}

	semi := findSemicolon(tokens, cursor)
	if semi == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-NO-SEMI", "missing ';' after assignment"))
	}

	expr, errs := InfixToPostfix(tokens[cursor+2 : semi])
	if errs != nil {
		return fail(errs)
	}

	return builderResult{
		action: ast.Assignment{Identifier: tokens[cursor].Identifier, Value: expr, Pos: tokens[cursor].Pos},
		next:   semi + 1,
		ok:     true,
	}
}

// callBuilder recognizes `<identifier>(<arg>, <arg>, ...);`.
func callBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor+1 >= len(tokens) || tokens[cursor].Tag != decorator.TIdentifier || !isContainer(tokens[cursor+1], decorator.Bracket) {
		return noMatch()
	}

	closeIdx := findMatchingBracket(tokens, cursor+1)
	if closeIdx == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNBALANCED", "unbalanced call arguments"))
	}
	if closeIdx+1 >= len(tokens) || !isContainer(tokens[closeIdx+1], decorator.Semi) {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-NO-SEMI", "missing ';' after call"))
	}

	args, errs := parseArgumentList(tokens, cursor+1, closeIdx)
	if errs != nil {
		return fail(errs)
	}

	return builderResult{
		action: ast.Call{FunctionName: tokens[cursor].Identifier, Arguments: args, Pos: tokens[cursor].Pos},
		next:   closeIdx + 2,
		ok:     true,
	}
}

// findMatchingBracket returns the index of the ')' matching the '(' at
// tokens[openIdx].
func findMatchingBracket(tokens []decorator.DecoratedToken, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(tokens); i++ {
		if !isContainer(tokens[i], decorator.Bracket) && !isContainer(tokens[i], decorator.AntiBracket) {
			continue
		}
		if isContainer(tokens[i], decorator.Bracket) {
			depth++
		} else {
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseArgumentList splits the comma-separated tokens strictly between
// '(' at openIdx and ')' at closeIdx into individual postfix expressions.
func parseArgumentList(tokens []decorator.DecoratedToken, openIdx, closeIdx int) ([]ast.Expression, *issue.General) {
	var args []ast.Expression
	start := openIdx + 1
	if start == closeIdx {
		return nil, nil // no arguments
	}

	depth := 0
	for i := start; i <= closeIdx; i++ {
		t := tokens[i]
		atEnd := i == closeIdx
		isTopComma := !atEnd && isContainer(t, decorator.Comma) && depth == 0
		if t.Tag == decorator.TContainer {
			switch t.Container {
			case decorator.Bracket:
				depth++
			case decorator.AntiBracket:
				depth--
			}
		}
		if isTopComma || atEnd {
			expr, errs := InfixToPostfix(tokens[start:i])
			if errs != nil {
				return nil, errs
			}
			args = append(args, expr)
			start = i + 1
		}
	}
	return args, nil
}

// returnBuilder recognizes `return <expr>;` or the bare `return;`.
func returnBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwReturn) {
		return noMatch()
	}

	semi := findSemicolon(tokens, cursor)
	if semi == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-NO-SEMI", "missing ';' after return"))
	}

	var expr ast.Expression
	if semi > cursor+1 {
		var errs *issue.General
		expr, errs = InfixToPostfix(tokens[cursor+1 : semi])
		if errs != nil {
			return fail(errs)
		}
	}

	return builderResult{action: ast.Return{Value: expr, Pos: tokens[cursor].Pos}, next: semi + 1, ok: true}
}

// simpleBuilder recognizes the bodiless `break;`/`continue;` statements.
func simpleBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) {
		return noMatch()
	}
	isBreak := isKeyword(tokens[cursor], decorator.KwBreak)
	isContinue := isKeyword(tokens[cursor], decorator.KwContinue)
	if !isBreak && !isContinue {
		return noMatch()
	}
	if cursor+1 >= len(tokens) || !isContainer(tokens[cursor+1], decorator.Semi) {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-NO-SEMI", "missing ';'"))
	}
	var action ast.Action
	if isBreak {
		action = ast.Break{Pos: tokens[cursor].Pos}
	} else {
		action = ast.Continue{Pos: tokens[cursor].Pos}
	}
	return builderResult{action: action, next: cursor + 2, ok: true}
}

// conditionBlockHeader parses `( <expr> ) {` starting at cursor and returns
// the condition expression plus the index of the opening '{'.
func conditionBlockHeader(tokens []decorator.DecoratedToken, cursor int) (ast.Expression, int, *issue.General) {
	if cursor >= len(tokens) || !isContainer(tokens[cursor], decorator.Bracket) {
		return ast.Expression{}, -1, issue.Fatal(issue.Parsing, lastPos(tokens), "E-EXPECT-PAREN", "expected '(' after condition keyword")
	}
	closeIdx := findMatchingBracket(tokens, cursor)
	if closeIdx == -1 {
		return ast.Expression{}, -1, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNBALANCED", "unbalanced condition")
	}
	expr, errs := InfixToPostfix(tokens[cursor+1 : closeIdx])
	if errs != nil {
		return ast.Expression{}, -1, errs
	}
	if closeIdx+1 >= len(tokens) || !isContainer(tokens[closeIdx+1], decorator.Brace) {
		return ast.Expression{}, -1, issue.Fatal(issue.Parsing, tokens[closeIdx].Pos, "E-EXPECT-BRACE", "expected '{' after condition")
	}
	return expr, closeIdx + 1, nil
}

// lastPos returns the position of the last token, or token.NoPos if
// tokens is empty, for use when an error occurs at end-of-input.
func lastPos(tokens []decorator.DecoratedToken) token.Pos {
	if len(tokens) == 0 {
		return token.NoPos
	}
	return tokens[len(tokens)-1].Pos
}

// whileBuilder recognizes `while (<expr>) { <body> }`.
func whileBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwWhile) {
		return noMatch()
	}
	cond, braceIdx, errs := conditionBlockHeader(tokens, cursor+1)
	if errs != nil {
		return fail(errs)
	}
	endBrace := findMatchingBrace(tokens, braceIdx)
	if endBrace == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced while body"))
	}
	body, berrs := BuildActionBlock(tokens[braceIdx+1:endBrace])
	if berrs != nil {
		return fail(berrs)
	}
	body.Start, body.End = tokens[braceIdx].Pos, tokens[endBrace].Pos

	return builderResult{
		action: ast.While{Condition: cond, Body: body, Pos: tokens[cursor].Pos},
		next:   endBrace + 1,
		ok:     true,
	}
}

// loopBuilder recognizes `loop { <body> }`.
func loopBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwLoop) {
		return noMatch()
	}
	if cursor+1 >= len(tokens) || !isContainer(tokens[cursor+1], decorator.Brace) {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-EXPECT-BRACE", "expected '{' after loop"))
	}
	braceIdx := cursor + 1
	endBrace := findMatchingBrace(tokens, braceIdx)
	if endBrace == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced loop body"))
	}
	body, berrs := BuildActionBlock(tokens[braceIdx+1:endBrace])
	if berrs != nil {
		return fail(berrs)
	}
	body.Start, body.End = tokens[braceIdx].Pos, tokens[endBrace].Pos

	return builderResult{action: ast.Loop{Body: body, Pos: tokens[cursor].Pos}, next: endBrace + 1, ok: true}
}

// ifBuilder recognizes `if (<e>) {..} (elif (<e>) {..})* (else {..})?`.
func ifBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwIf) {
		return noMatch()
	}
	pos := tokens[cursor].Pos

	ifBlock, next, errs := parseConditionBlock(tokens, cursor+1)
	if errs != nil {
		return fail(errs)
	}

	var elifs []ast.ConditionBlock
	for next < len(tokens) && isKeyword(tokens[next], decorator.KwElif) {
		var cb ast.ConditionBlock
		cb, next, errs = parseConditionBlock(tokens, next+1)
		if errs != nil {
			return fail(errs)
		}
		elifs = append(elifs, cb)
	}

	var elseBlock *ast.ActionBlock
	if next < len(tokens) && isKeyword(tokens[next], decorator.KwElse) {
		if next+1 >= len(tokens) || !isContainer(tokens[next+1], decorator.Brace) {
			return fail(issue.Fatal(issue.Parsing, tokens[next].Pos, "E-EXPECT-BRACE", "expected '{' after else"))
		}
		braceIdx := next + 1
		endBrace := findMatchingBrace(tokens, braceIdx)
		if endBrace == -1 {
			return fail(issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced else body"))
		}
		body, berrs := BuildActionBlock(tokens[braceIdx+1:endBrace])
		if berrs != nil {
			return fail(berrs)
		}
		body.Start, body.End = tokens[braceIdx].Pos, tokens[endBrace].Pos
		elseBlock = &body
		next = endBrace + 1
	}

	return builderResult{
		action: ast.If{IfBlock: ifBlock, ElifBlocks: elifs, ElseBlock: elseBlock, Pos: pos},
		next:   next,
		ok:     true,
	}
}

func parseConditionBlock(tokens []decorator.DecoratedToken, cursor int) (ast.ConditionBlock, int, *issue.General) {
	cond, braceIdx, errs := conditionBlockHeader(tokens, cursor)
	if errs != nil {
		return ast.ConditionBlock{}, 0, errs
	}
	endBrace := findMatchingBrace(tokens, braceIdx)
	if endBrace == -1 {
		return ast.ConditionBlock{}, 0, issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced condition body")
	}
	body, berrs := BuildActionBlock(tokens[braceIdx+1:endBrace])
	if berrs != nil {
		return ast.ConditionBlock{}, 0, berrs
	}
	body.Start, body.End = tokens[braceIdx].Pos, tokens[endBrace].Pos
	return ast.ConditionBlock{Condition: cond, Body: body}, endBrace + 1, nil
}

// switchBuilder recognizes `switch (<expr>) { case <v> {..} ... default {..}? }`.
// The AST node is built but, per spec.md §9, no code generator branch
// exists for it: attempting to lower a Switch is a fatal CodeGeneration
// issue (see lang/codegen).
func switchBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isKeyword(tokens[cursor], decorator.KwSwitch) {
		return noMatch()
	}
	pos := tokens[cursor].Pos
	if cursor+1 >= len(tokens) || !isContainer(tokens[cursor+1], decorator.Bracket) {
		return fail(issue.Fatal(issue.Parsing, pos, "E-EXPECT-PAREN", "expected '(' after switch"))
	}
	closeParen := findMatchingBracket(tokens, cursor+1)
	if closeParen == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor+1].Pos, "E-UNBALANCED", "unbalanced switch condition"))
	}
	cond, errs := InfixToPostfix(tokens[cursor+2 : closeParen])
	if errs != nil {
		return fail(errs)
	}
	if closeParen+1 >= len(tokens) || !isContainer(tokens[closeParen+1], decorator.Brace) {
		return fail(issue.Fatal(issue.Parsing, tokens[closeParen].Pos, "E-EXPECT-BRACE", "expected '{' after switch condition"))
	}
	braceIdx := closeParen + 1
	endBrace := findMatchingBrace(tokens, braceIdx)
	if endBrace == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced switch body"))
	}

	cases, cerrs := parseSwitchCases(tokens[braceIdx+1 : endBrace])
	if cerrs != nil {
		return fail(cerrs)
	}

	return builderResult{
		action: ast.Switch{Condition: cond, Cases: cases, Pos: pos},
		next:   endBrace + 1,
		ok:     true,
	}
}

func parseSwitchCases(tokens []decorator.DecoratedToken) ([]ast.SwitchCase, *issue.General) {
	var cases []ast.SwitchCase
	i := 0
	for i < len(tokens) {
		isCase := isKeyword(tokens[i], decorator.KwCase)
		isDefault := isKeyword(tokens[i], decorator.KwDefault)
		if !isCase && !isDefault {
			return nil, issue.Fatal(issue.Parsing, tokens[i].Pos, "E-BAD-SWITCH", "expected 'case' or 'default'")
		}

		var value string
		cursor := i + 1
		if isCase {
			if cursor >= len(tokens) || !(tokens[cursor].IsData()) {
				return nil, issue.Fatal(issue.Parsing, tokens[i].Pos, "E-BAD-SWITCH", "expected case value")
			}
			value = describeSwitchValue(tokens[cursor])
			cursor++
		}
		if cursor >= len(tokens) || !isContainer(tokens[cursor], decorator.Brace) {
			return nil, issue.Fatal(issue.Parsing, tokens[i].Pos, "E-EXPECT-BRACE", "expected '{' after case/default")
		}
		endBrace := findMatchingBrace(tokens, cursor)
		if endBrace == -1 {
			return nil, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNBALANCED", "unbalanced case body")
		}
		body, berrs := BuildActionBlock(tokens[cursor+1 : endBrace])
		if berrs != nil {
			return nil, berrs
		}
		body.Start, body.End = tokens[cursor].Pos, tokens[endBrace].Pos
		cases = append(cases, ast.SwitchCase{IsDefault: isDefault, Value: value, Actions: body})
		i = endBrace + 1
	}
	return cases, nil
}

func describeSwitchValue(t decorator.DecoratedToken) string {
	if t.Tag == decorator.TIdentifier {
		return t.Identifier
	}
	return ast.Expression{Postfix: []decorator.DecoratedToken{t}}.String()
}

// nestedBlockBuilder recognizes a bare `{ <body> }` statement.
func nestedBlockBuilder(tokens []decorator.DecoratedToken, cursor int) builderResult {
	if cursor >= len(tokens) || !isContainer(tokens[cursor], decorator.Brace) {
		return noMatch()
	}
	endBrace := findMatchingBrace(tokens, cursor)
	if endBrace == -1 {
		return fail(issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNBALANCED", "unbalanced nested block"))
	}
	body, berrs := BuildActionBlock(tokens[cursor+1 : endBrace])
	if berrs != nil {
		return fail(berrs)
	}
	body.Start, body.End = tokens[cursor].Pos, tokens[endBrace].Pos
	// A bare nested block has no dedicated Action variant in spec.md's
	// Action set, so its body is spliced directly into the parent block by
	// the dispatcher (see BuildActionBlock) rather than wrapped in a node.
	return builderResult{nested: &body, next: endBrace + 1, ok: true}
}
