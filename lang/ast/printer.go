package ast

import (
	"fmt"
	"io"
)

// Printer renders a File as an indented tree, one Node per line. It is the
// `parse` command's output format. Pact has no comment syntax (the lexer
// recognizes none), so there is no comment-filtering option to expose here.
type Printer struct {
	Output io.Writer
}

// Print writes file's function and statement tree to p.Output.
func (p Printer) Print(file File) error {
	for _, fn := range file.Functions {
		if err := p.printLine(0, fn.String()); err != nil {
			return err
		}
		if err := p.printBlock(1, fn.Body); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) printBlock(depth int, block ActionBlock) error {
	for _, act := range block.Actions {
		if err := p.printLine(depth, act.String()); err != nil {
			return err
		}
		if err := p.printNested(depth+1, act); err != nil {
			return err
		}
	}
	return nil
}

// printNested descends into the bodies of compound actions so the tree
// reflects actual nesting instead of a flat statement list.
func (p Printer) printNested(depth int, act Action) error {
	switch a := act.(type) {
	case If:
		if err := p.printBlock(depth, a.IfBlock.Body); err != nil {
			return err
		}
		for _, elif := range a.ElifBlocks {
			if err := p.printLine(depth, "elif "+elif.Condition.String()); err != nil {
				return err
			}
			if err := p.printBlock(depth+1, elif.Body); err != nil {
				return err
			}
		}
		if a.ElseBlock != nil {
			if err := p.printLine(depth, "else"); err != nil {
				return err
			}
			if err := p.printBlock(depth+1, *a.ElseBlock); err != nil {
				return err
			}
		}
	case While:
		return p.printBlock(depth, a.Body)
	case Loop:
		return p.printBlock(depth, a.Body)
	case Switch:
		for _, c := range a.Cases {
			label := "default"
			if !c.IsDefault {
				label = "case " + c.Value
			}
			if err := p.printLine(depth, label); err != nil {
				return err
			}
			if err := p.printBlock(depth+1, c.Actions); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p Printer) printLine(depth int, s string) error {
	_, err := fmt.Fprintf(p.Output, "%*s%s\n", depth*2, "", s)
	return err
}
