package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mna/mainer"

	"github.com/pactlang/pactc/lang/codegen"
	"github.com/pactlang/pactc/lang/compile"
	"github.com/pactlang/pactc/lang/pkgfile"
)

// Compile runs the full pipeline over each file in args, writing a package
// file for each and, if --disassemble is set, printing its disassembly
// (SPEC_FULL.md §12). -o is only meaningful with a single input file.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	entry := c.Entry
	if entry == "" {
		entry = "main"
	}
	if c.Output != "" && len(args) > 1 {
		return printError(stdio, fmt.Errorf("compile: -o requires exactly one input file"))
	}

	var failed bool
	for _, name := range args {
		out := c.Output
		if out == "" {
			out = strings.TrimSuffix(name, filepath.Ext(name)) + ".pact"
		}
		if err := compileOne(ctx, stdio, name, out, entry, c.Disassemble); err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("compile: one or more files failed")
	}
	return nil
}

func compileOne(ctx context.Context, stdio mainer.Stdio, in, out, entry string, disassemble bool) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return printError(stdio, err)
	}

	start := time.Now()
	res, issues := compile.Compile(ctx, src, entry, pkgfile.DefaultMetadata())
	elapsed := time.Since(start)
	if issues != nil {
		return printError(stdio, issues)
	}

	if err := pkgfile.Write(out, res.Metadata, res.Commands.Commands); err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintf(stdio.Stdout, "%s -> %s (%d bytes, %s)\n", in, out, len(res.Package), elapsed)

	if disassemble {
		fmt.Fprint(stdio.Stderr, codegen.Disassemble(res.Commands))
	}
	return nil
}
