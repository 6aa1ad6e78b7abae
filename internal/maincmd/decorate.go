package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/lexer"
)

// Decorate runs the lexer and decorator over each file in args and prints
// the classified token stream.
func (c *Cmd) Decorate(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return DecorateFiles(ctx, stdio, args...)
}

func DecorateFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}
		raw := lexer.Tokenize(src, true)
		decorated, issues := decorator.Decorate(raw)
		for _, dt := range decorated {
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s\n", name, dt.Pos, describeDecorated(dt))
		}
		if issues.HasErrors() {
			printError(stdio, issues)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("decorate: one or more files failed")
	}
	return nil
}

func describeDecorated(dt decorator.DecoratedToken) string {
	switch dt.Tag {
	case decorator.TKeyword:
		return "keyword " + dt.Keyword.String()
	case decorator.TIdentifier:
		return "identifier " + dt.Identifier
	case decorator.TLiteral:
		return fmt.Sprintf("literal(%d)", dt.LitKind)
	case decorator.TOperator:
		return fmt.Sprintf("operator(class=%d,sub=%d)", dt.Operator.Class, dt.Operator.Sub)
	case decorator.TContainer:
		return fmt.Sprintf("container(%d)", dt.Container)
	default:
		return "?"
	}
}
