package codegen

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Disassemble renders a CommandList in a human-readable textual form: a
// flat listing of opcodes with their decoded payloads, annotated with the
// function table, string pool and relocation credential so the output is
// self-contained and useful for inspecting a compiled package without
// re-running the whole pipeline.
func Disassemble(list *CommandList) string {
	var sb strings.Builder

	sb.WriteString("functions:\n")
	for _, f := range list.FunctionTable {
		if f.External {
			fmt.Fprintf(&sb, "\t%s\t(external)\n", f.Name)
			continue
		}
		fmt.Fprintf(&sb, "\t%s\t@%d\n", f.Name, f.Slot)
	}

	if list.StringPool != nil {
		if vals := list.StringPool.Values(); len(vals) > 0 {
			sb.WriteString("strings:\n")
			for i, s := range vals {
				fmt.Fprintf(&sb, "\t%03d\t%q\n", i, s)
			}
		}
	}

	sb.WriteString("code:\n")
	pos := 0
	for pos < len(list.Commands) {
		if pos+2 > len(list.Commands) {
			fmt.Fprintf(&sb, "\t%04d\t<truncated>\n", pos)
			break
		}
		root := OpRoot(list.Commands[pos])
		sub := list.Commands[pos+1]
		start := pos
		pos += 2

		switch root {
		case OpPushLiteral:
			pos = disasmLiteral(&sb, list, start, litSub(sub), pos)
		case OpLoad, OpStore, OpDeclare:
			slot := binary.BigEndian.Uint32(list.Commands[pos : pos+slotSize])
			fmt.Fprintf(&sb, "\t%04d\t%s\tslot=%d\n", start, root, slot)
			pos += slotSize
		case OpBinary:
			fmt.Fprintf(&sb, "\t%04d\t%s\top=%d\n", start, root, sub)
		case OpUnaryNot, OpPop, OpReturn:
			fmt.Fprintf(&sb, "\t%04d\t%s\n", start, root)
		case OpJumpIfFalse, OpJump, OpCall:
			end := pos + AddrLen + 1
			if end > len(list.Commands) {
				end = len(list.Commands)
			}
			fmt.Fprintf(&sb, "\t%04d\t%s\tplaceholder=% x\n", start, root, list.Commands[pos:end])
			pos = end
		default:
			fmt.Fprintf(&sb, "\t%04d\t<unknown opcode %d>\n", start, root)
		}
	}

	if len(list.Credential.References) > 0 {
		sb.WriteString("references:\n")
		for _, r := range list.Credential.References {
			fmt.Fprintf(&sb, "\t%04d\t%s\n", r.Pos, r.Type)
		}
	}
	if len(list.Credential.Targets) > 0 {
		sb.WriteString("targets:\n")
		for _, t := range list.Credential.Targets {
			fmt.Fprintf(&sb, "\t%04d+%d\t%s", t.Pos, t.Offset, t.Type)
			switch t.Type {
			case BreakDomain, IgnoreDomain:
				fmt.Fprintf(&sb, "(%d)", t.N)
			case EnterFunction:
				fmt.Fprintf(&sb, "(%s)", t.FuncName)
			case Relative:
				fmt.Fprintf(&sb, "(%d)", t.RelativeDelta)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func disasmLiteral(sb *strings.Builder, list *CommandList, start int, kind litSub, pos int) int {
	switch kind {
	case litInt:
		v := int64(binary.BigEndian.Uint64(list.Commands[pos : pos+8]))
		fmt.Fprintf(sb, "\t%04d\tPUSHL\tint=%d\n", start, v)
		return pos + 8
	case litFloat:
		v := math.Float64frombits(binary.BigEndian.Uint64(list.Commands[pos : pos+8]))
		fmt.Fprintf(sb, "\t%04d\tPUSHL\tfloat=%g\n", start, v)
		return pos + 8
	case litBool:
		fmt.Fprintf(sb, "\t%04d\tPUSHL\tbool=%t\n", start, list.Commands[pos] != 0)
		return pos + 1
	case litString:
		idx := binary.BigEndian.Uint32(list.Commands[pos : pos+slotSize])
		fmt.Fprintf(sb, "\t%04d\tPUSHL\tstring=#%d\n", start, idx)
		return pos + slotSize
	default:
		fmt.Fprintf(sb, "\t%04d\tPUSHL\t<unknown literal kind %d>\n", start, kind)
		return pos
	}
}
