package parser

import (
	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
)

// BuildFile parses a complete DecoratedToken stream into an ast.File.
// entryFunctionName is supplied by the caller (spec.md §6's
// compile(source_text, entry_function_name, metadata) interface) rather
// than discovered from the source, so it is only recorded here, not
// validated against the parsed function set — the code generator reports a
// fatal issue if no function with that name exists (spec.md §4.5).
//
// Two file-level forms are recognized: function declarations
// (`decl <name>(<params>) <return_type> { <body> }`) and `link` statements
// (`link <name>;`), a feature present in spec.md's keyword set but never
// wired into the original Action list — this supplements it at file scope,
// recording an external function name the code generator may target via
// EnterFunction without requiring a body in this compilation unit (see
// SPEC_FULL.md §4.4, §12).
func BuildFile(tokens []decorator.DecoratedToken, entryFunctionName string) (ast.File, *issue.General) {
	file := ast.File{EntryFunction: entryFunctionName}
	var all *issue.General

	cursor := 0
	for cursor < len(tokens) {
		switch {
		case isKeyword(tokens[cursor], decorator.KwLink):
			link, next, errs := parseLink(tokens, cursor)
			if errs != nil {
				all = issue.Merge(all, errs)
				cursor = recoverToSemicolon(tokens, cursor)
				continue
			}
			file.Links = append(file.Links, link)
			cursor = next

		case isKeyword(tokens[cursor], decorator.KwDecl):
			fn, next, errs := parseFunction(tokens, cursor)
			if errs != nil {
				all = issue.Merge(all, errs)
				cursor = recoverToSemicolon(tokens, cursor)
				continue
			}
			file.Functions = append(file.Functions, fn)
			cursor = next

		default:
			all = issue.Merge(all, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-UNEXPECTED-TOKEN", "expected 'decl' or 'link' at file scope"))
			cursor++
		}
	}

	return file, all
}

func recoverToSemicolon(tokens []decorator.DecoratedToken, cursor int) int {
	semi := findSemicolon(tokens, cursor)
	if semi == -1 {
		return len(tokens)
	}
	return semi + 1
}

// parseLink recognizes `link <name>;`.
func parseLink(tokens []decorator.DecoratedToken, cursor int) (string, int, *issue.General) {
	if cursor+1 >= len(tokens) || tokens[cursor+1].Tag != decorator.TIdentifier {
		return "", 0, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-BAD-LINK", "expected function name after link")
	}
	semi := findSemicolon(tokens, cursor)
	if semi != cursor+2 {
		return "", 0, issue.Fatal(issue.Parsing, tokens[cursor].Pos, "E-BAD-LINK", "malformed link statement")
	}
	return tokens[cursor+1].Identifier, semi + 1, nil
}

// parseFunction recognizes `decl <name>(<params>) <return_type> { <body> }`.
// Parameters are `<type> <name>` pairs; only the name is retained on
// ast.Function (spec.md's data model carries no static type checker, so
// parameter types are parsed for syntactic completeness and then dropped,
// matching how Declaration's DataType is likewise uninterpreted past the
// parser).
func parseFunction(tokens []decorator.DecoratedToken, cursor int) (ast.Function, int, *issue.General) {
	pos := tokens[cursor].Pos
	if cursor+1 >= len(tokens) || tokens[cursor+1].Tag != decorator.TIdentifier {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, pos, "E-BAD-FUNC", "expected function name after decl")
	}
	name := tokens[cursor+1].Identifier

	if cursor+2 >= len(tokens) || !isContainer(tokens[cursor+2], decorator.Bracket) {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, pos, "E-BAD-FUNC", "expected '(' after function name")
	}
	closeParen := findMatchingBracket(tokens, cursor+2)
	if closeParen == -1 {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, tokens[cursor+2].Pos, "E-UNBALANCED", "unbalanced parameter list")
	}

	params, errs := parseParameterList(tokens, cursor+2, closeParen)
	if errs != nil {
		return ast.Function{}, 0, errs
	}

	if closeParen+1 >= len(tokens) || tokens[closeParen+1].Tag != decorator.TIdentifier {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, tokens[closeParen].Pos, "E-BAD-FUNC", "expected return type after parameter list")
	}
	returnType := tokens[closeParen+1].Identifier

	if closeParen+2 >= len(tokens) || !isContainer(tokens[closeParen+2], decorator.Brace) {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, tokens[closeParen+1].Pos, "E-EXPECT-BRACE", "expected '{' to open function body")
	}
	braceIdx := closeParen + 2
	endBrace := findMatchingBrace(tokens, braceIdx)
	if endBrace == -1 {
		return ast.Function{}, 0, issue.Fatal(issue.Parsing, tokens[braceIdx].Pos, "E-UNBALANCED", "unbalanced function body")
	}

	body, berrs := BuildActionBlock(tokens[braceIdx+1 : endBrace])
	if berrs != nil {
		return ast.Function{}, 0, berrs
	}
	body.Start, body.End = tokens[braceIdx].Pos, tokens[endBrace].Pos

	return ast.Function{
		Name:       name,
		Parameters: params,
		ReturnType: returnType,
		Body:       body,
		Pos:        pos,
	}, endBrace + 1, nil
}

// parseParameterList splits `<type> <name>, <type> <name>, ...` strictly
// between the '(' at openIdx and ')' at closeIdx, returning just the names.
func parseParameterList(tokens []decorator.DecoratedToken, openIdx, closeIdx int) ([]string, *issue.General) {
	if openIdx+1 == closeIdx {
		return nil, nil
	}

	var names []string
	i := openIdx + 1
	for i < closeIdx {
		if i+1 >= closeIdx || tokens[i].Tag != decorator.TIdentifier || tokens[i+1].Tag != decorator.TIdentifier {
			return nil, issue.Fatal(issue.Parsing, tokens[i].Pos, "E-BAD-PARAM", "expected '<type> <name>' parameter")
		}
		names = append(names, tokens[i+1].Identifier)
		i += 2
		if i < closeIdx {
			if !isContainer(tokens[i], decorator.Comma) {
				return nil, issue.Fatal(issue.Parsing, tokens[i].Pos, "E-BAD-PARAM", "expected ',' between parameters")
			}
			i++
		}
	}
	return names, nil
}
