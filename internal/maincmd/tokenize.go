package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/pactlang/pactc/lang/lexer"
)

// Tokenize runs the lexer over each file in args and prints its raw token
// stream, one RawToken per line.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(ctx, stdio, args...)
}

func TokenizeFiles(ctx context.Context, stdio mainer.Stdio, files ...string) error {
	var failed bool
	for _, name := range files {
		src, err := os.ReadFile(name)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}
		for _, tok := range lexer.Tokenize(src, true) {
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s %q\n", name, tok.Pos, tok.Kind, tok.Text)
		}
	}
	if failed {
		return fmt.Errorf("tokenize: one or more files failed")
	}
	return nil
}
