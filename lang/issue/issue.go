// Package issue implements the pipeline's three-level diagnostic model: a
// GeneralIssue is an ordered list of IssueBase entries, each tagged with a
// severity Level and the pipeline Position at which it was raised.
//
// The accumulate/sort/Err()/Unwrap() idiom follows go/scanner.ErrorList's
// own shape: an always-allocated list that turns into an idiomatic optional
// error through Err(), with Unwrap() exposing the individual issues for
// errors.Is/errors.As.
package issue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pactlang/pactc/lang/token"
)

// Level is the severity of an issue.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Position identifies which pipeline stage raised the issue.
type Position int

const (
	LexicalAnalysis Position = iota
	Parsing
	CodeGeneration
	Relocation
)

func (p Position) String() string {
	switch p {
	case LexicalAnalysis:
		return "lexical analysis"
	case Parsing:
		return "parsing"
	case CodeGeneration:
		return "code generation"
	case Relocation:
		return "relocation"
	default:
		return "unknown stage"
	}
}

// Base is a single diagnostic entry.
type Base struct {
	Level    Level
	Position Position
	Code     string
	Detail   string
	Pos      token.Pos
}

func (b Base) Error() string {
	if b.Code != "" {
		return fmt.Sprintf("%s [%s]: %s (%s)", b.Level, b.Position, b.Detail, b.Code)
	}
	return fmt.Sprintf("%s [%s]: %s", b.Level, b.Position, b.Detail)
}

// General is an ordered collection of diagnostics produced over the course
// of a compilation. It implements the error interface and Unwrap() []error
// so callers may use errors.Is/errors.As over the collected issues, exactly
// like go/scanner.ErrorList.
type General struct {
	Issues []Base
}

// Add appends a new issue to the list.
func (g *General) Add(level Level, position Position, pos token.Pos, code, detail string) {
	g.Issues = append(g.Issues, Base{Level: level, Position: position, Code: code, Detail: detail, Pos: pos})
}

// Fatal appends a single Error-level issue and returns *General as an error,
// matching the pipeline convention that a structural invariant violation
// aborts compilation with exactly one issue (spec.md §7).
func Fatal(position Position, pos token.Pos, code, detail string) *General {
	g := &General{}
	g.Add(Error, position, pos, code, detail)
	return g
}

// HasErrors reports whether any issue has Error level.
func (g *General) HasErrors() bool {
	if g == nil {
		return false
	}
	for _, b := range g.Issues {
		if b.Level == Error {
			return true
		}
	}
	return false
}

// Sort orders issues by position (byte offset), matching scanner.ErrorList's
// sort-by-position convention.
func (g *General) Sort() {
	sort.SliceStable(g.Issues, func(i, j int) bool { return g.Issues[i].Pos < g.Issues[j].Pos })
}

// Err returns g as an error if it has any issues, or nil otherwise. This
// mirrors scanner.ErrorList.Err(), which callers use to turn an
// always-allocated list into an idiomatic optional error.
func (g *General) Err() error {
	if g == nil || len(g.Issues) == 0 {
		return nil
	}
	return g
}

func (g *General) Error() string {
	switch len(g.Issues) {
	case 0:
		return "no issues"
	case 1:
		return g.Issues[0].Error()
	default:
		var sb strings.Builder
		for i, b := range g.Issues {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(b.Error())
		}
		return sb.String()
	}
}

// Unwrap exposes each issue as its own error, matching go/scanner.ErrorList's
// Unwrap() []error (Go 1.20+ multi-error convention).
func (g *General) Unwrap() []error {
	errs := make([]error, len(g.Issues))
	for i, b := range g.Issues {
		errs[i] = b
	}
	return errs
}

// Merge appends the issues of other (if any) to g and returns g.
func (g *General) Merge(other *General) *General {
	if other == nil {
		return g
	}
	g.Issues = append(g.Issues, other.Issues...)
	return g
}

// Merge combines a and b, returning b itself if a is nil. Callers
// that accumulate issues across many sub-calls use this instead of the
// method so they don't need to special-case the first merge.
func Merge(a, b *General) *General {
	if a == nil {
		return b
	}
	return a.Merge(b)
}
