package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/pactlang/pactc/lang/codegen"
	"github.com/pactlang/pactc/lang/pkgfile"
)

// Disasm reads a previously compiled package file and prints its header
// fields alongside a disassembly of its command stream.
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, name := range args {
		if err := disasmOne(stdio, name); err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("disasm: one or more files failed")
	}
	return nil
}

func disasmOne(stdio mainer.Stdio, name string) error {
	meta, commands, err := pkgfile.Read(name)
	if err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintf(stdio.Stdout, "%s:\n", name)
	fmt.Fprintf(stdio.Stdout, "\tvariable_slot_alignment\t%d\n", meta.VariableSlotAlignment)
	fmt.Fprintf(stdio.Stdout, "\tdata_alignment\t%d\n", meta.DataAlignment)
	fmt.Fprintf(stdio.Stdout, "\tcommand_alignment\t%d\n", meta.CommandAlignment)
	fmt.Fprintf(stdio.Stdout, "\tdomain_layer_count_alignment\t%d\n", meta.DomainLayerCountAlignment)
	fmt.Fprintf(stdio.Stdout, "\taddress_alignment\t%d\n", meta.AddressAlignment)
	fmt.Fprintf(stdio.Stdout, "\tentry_point_offset\t%d\n", meta.EntryPointOffset)

	list := &codegen.CommandList{Commands: commands}
	fmt.Fprint(stdio.Stdout, codegen.Disassemble(list))
	return nil
}
