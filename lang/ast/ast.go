// Package ast defines the AST produced by the parser (stage P): Expression,
// the tagged Action variants, ActionBlock, ConditionBlock, Function and
// File (spec.md §3). Nodes are a strict tree — no back-pointers, no cycles
// (spec.md §9) — and are treated as immutable by every later stage.
//
// The Node interface (Span + fmt.Stringer) is kept small to fit Pact's much
// smaller node set.
package ast

import (
	"fmt"

	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/token"
)

// Node is implemented by every AST node.
type Node interface {
	fmt.Stringer
	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)
}

// Expression is the reverse-Polish (postfix) form of an infix expression
// (spec.md §3): an ordered sequence of decorated tokens, brackets already
// consumed by the conversion.
type Expression struct {
	Postfix []decorator.DecoratedToken
}

func (e Expression) Span() (start, end token.Pos) {
	if len(e.Postfix) == 0 {
		return token.NoPos, token.NoPos
	}
	return e.Postfix[0].Pos, e.Postfix[len(e.Postfix)-1].Pos
}

func (e Expression) String() string {
	s := ""
	for i, tok := range e.Postfix {
		if i > 0 {
			s += " "
		}
		s += describeToken(tok)
	}
	return s
}

func describeToken(tok decorator.DecoratedToken) string {
	switch tok.Tag {
	case decorator.TIdentifier:
		return tok.Identifier
	case decorator.TLiteral:
		switch tok.LitKind {
		case decorator.LitInt:
			return fmt.Sprintf("%d", tok.IntVal)
		case decorator.LitFloat:
			return fmt.Sprintf("%g", tok.FloatVal)
		case decorator.LitBool:
			return fmt.Sprintf("%t", tok.BoolVal)
		case decorator.LitString:
			return fmt.Sprintf("%q", tok.StringVal)
		}
	case decorator.TOperator:
		return operatorSymbol(tok.Operator)
	}
	return "?"
}

func operatorSymbol(op decorator.Operator) string {
	switch op.Sub {
	case decorator.OpPlus:
		return "+"
	case decorator.OpMinus:
		return "-"
	case decorator.OpTimes:
		return "*"
	case decorator.OpDivide:
		return "/"
	case decorator.OpMod:
		return "%"
	case decorator.OpLt:
		return "<"
	case decorator.OpLe:
		return "<="
	case decorator.OpGt:
		return ">"
	case decorator.OpGe:
		return ">="
	case decorator.OpEq:
		return "=="
	case decorator.OpNeq:
		return "!="
	case decorator.OpAnd:
		return "&&"
	case decorator.OpOr:
		return "||"
	case decorator.OpNot:
		return "!"
	default:
		return "="
	}
}

// ActionBlock is an ordered sequence of statements forming one lexical
// scope.
type ActionBlock struct {
	Actions []Action
	Start   token.Pos
	End     token.Pos
}

func (b ActionBlock) Span() (start, end token.Pos) { return b.Start, b.End }
func (b ActionBlock) String() string                { return fmt.Sprintf("block(%d actions)", len(b.Actions)) }

// ConditionBlock pairs a condition expression with the body it guards; used
// by If/Elif and While.
type ConditionBlock struct {
	Condition Expression
	Body      ActionBlock
}

func (c ConditionBlock) Span() (start, end token.Pos) {
	s, _ := c.Condition.Span()
	_, e := c.Body.Span()
	return s, e
}
func (c ConditionBlock) String() string { return "condition " + c.Condition.String() }

// Function is a top-level function definition.
type Function struct {
	Name       string
	Parameters []string
	ReturnType string
	Body       ActionBlock
	Pos        token.Pos
}

func (f Function) Span() (start, end token.Pos) { return f.Pos, f.Body.End }
func (f Function) String() string                { return "function " + f.Name }

// File is the parsed top-level unit: an ordered set of functions plus the
// name of the function to treat as the program's entry point.
type File struct {
	Functions    []Function
	Links        []string // supplemented `link` declarations, see SPEC_FULL.md §4.4
	EntryFunction string
}

func (f File) Span() (start, end token.Pos) {
	if len(f.Functions) == 0 {
		return token.NoPos, token.NoPos
	}
	s, _ := f.Functions[0].Span()
	_, e := f.Functions[len(f.Functions)-1].Span()
	return s, e
}
func (f File) String() string { return fmt.Sprintf("file(%d functions)", len(f.Functions)) }
