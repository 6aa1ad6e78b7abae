package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/lexer"
	"github.com/pactlang/pactc/lang/parser"
)

// Parse runs the lexer, decorator and parser over each file in args and
// prints the resulting statement tree.
func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	entry := c.Entry
	if entry == "" {
		entry = "main"
	}
	return ParseFiles(ctx, stdio, entry, args...)
}

func ParseFiles(ctx context.Context, stdio mainer.Stdio, entryFunctionName string, files ...string) error {
	printer := ast.Printer{Output: stdio.Stdout}

	var failed bool
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}

		raw := lexer.Tokenize(src, true)
		decorated, dissues := decorator.Decorate(raw)
		if dissues.HasErrors() {
			printError(stdio, dissues)
			failed = true
			continue
		}

		file, pissues := parser.BuildFile(decorated, entryFunctionName)
		if pissues.HasErrors() {
			printError(stdio, pissues)
			failed = true
			continue
		}

		fmt.Fprintf(stdio.Stdout, "%s:\n", name)
		if err := printer.Print(file); err != nil {
			printError(stdio, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("parse: one or more files failed")
	}
	return nil
}
