package codegen

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/pactlang/pactc/lang/ast"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
)

// Debug gates trace output describing each function's emitted command
// range as it is combined into the package's command list. Off by default;
// the CLI's --debug flag sets it, a plain fmt.Fprintf(os.Stderr,
// ...)-under-a-bool-gate idiom rather than a structured-logging dependency.
var Debug bool

// Generate lowers an entire file into one combined CommandList (spec.md
// §4.5). Each function is generated independently, then appended in order
// via Combine, recording each function's start offset in CommandEntries and
// FunctionTable (spec.md §3: "command_entries[0] is the start byte of the
// first emitted function").
func Generate(file ast.File) (*CommandList, *issue.General) {
	out := &CommandList{StringPool: NewStringPool()}
	var all *issue.General

	for _, fn := range file.Functions {
		fnList, issues := generateFunction(fn, out.StringPool)
		if issues != nil {
			all = issue.Merge(all, issues)
			continue
		}

		slot := uint32(len(out.Commands))
		out.CommandEntries = append(out.CommandEntries, len(out.Commands))
		out.FunctionTable = append(out.FunctionTable, FunctionEntry{Name: fn.Name, Slot: slot})
		if Debug {
			fmt.Fprintf(os.Stderr, "codegen: function %s: slot=%d len=%d\n", fn.Name, slot, len(fnList.Commands))
		}
		Combine(out, fnList)
	}

	// A `link` naming a function this unit does not define is not a fatal
	// error here: spec.md §4.4/SPEC_FULL.md §4.4's whole point is that the
	// body may arrive later, from a separately compiled unit, via Combine.
	// Record it as an External placeholder row; lang/relocator only fatals
	// on it if something actually tries to EnterFunction a name still
	// External once relocation runs (see lang/relocator.ApplyRelocation).
	for _, link := range file.Links {
		if !hasFunction(out.FunctionTable, link) {
			out.FunctionTable = append(out.FunctionTable, FunctionEntry{Name: link, External: true})
		}
	}

	if !hasLocalFunction(out.FunctionTable, file.EntryFunction) {
		all = issue.Merge(all, issue.Fatal(issue.CodeGeneration, 0, "E-NO-ENTRY",
			"entry function not found: "+file.EntryFunction))
	}

	if all != nil {
		return nil, all
	}
	return out, nil
}

func hasFunction(table []FunctionEntry, name string) bool {
	for _, f := range table {
		if f.Name == name {
			return true
		}
	}
	return false
}

// hasLocalFunction reports whether name has a real (non-External) entry —
// an entry point must have an actual body to jump into, unlike a call
// target, which an External `link` row may satisfy until relocation.
func hasLocalFunction(table []FunctionEntry, name string) bool {
	for _, f := range table {
		if f.Name == name && !f.External {
			return true
		}
	}
	return false
}

// genCtx threads the per-function mutable state through statement lowering:
// the slot table, the loop-nesting depth (to fatal on break/continue
// outside a loop — an invariant spec.md's relocator would otherwise only
// catch much later, at relocation time) and the accumulating CommandList.
type genCtx struct {
	list      *CommandList
	slots     *slotTable
	loopDepth int
}

func generateFunction(fn ast.Function, pool *StringPool) (*CommandList, *issue.General) {
	ctx := &genCtx{
		list:  &CommandList{StringPool: pool},
		slots: newSlotTable(),
	}
	for _, p := range fn.Parameters {
		ctx.slots.declare(p)
	}

	issues := ctx.genBlock(fn.Body)
	ctx.emitReturn(ast.Expression{}) // empty Expression, emitReturn cannot fail
	ctx.list.Credential.References = append(ctx.list.Credential.References,
		RelocationReference{Type: RefFunctionEnd, Pos: len(ctx.list.Commands)})

	if issues.HasErrors() {
		return nil, issues
	}
	return ctx.list, issues
}

func (c *genCtx) genBlock(block ast.ActionBlock) *issue.General {
	var all *issue.General
	for _, action := range block.Actions {
		if issues := c.genAction(action); issues != nil {
			all = issue.Merge(all, issues)
		}
	}
	return all
}

func (c *genCtx) genAction(action ast.Action) *issue.General {
	switch a := action.(type) {
	case ast.Declaration:
		return c.genDeclaration(a)
	case ast.Assignment:
		return c.genAssignment(a)
	case ast.Call:
		return c.genCall(a, true)
	case ast.Return:
		return c.genReturn(a)
	case ast.If:
		return c.genIf(a)
	case ast.While:
		return c.genWhile(a)
	case ast.Loop:
		return c.genLoop(a)
	case ast.Switch:
		return issue.Fatal(issue.CodeGeneration, a.Pos, "E-SWITCH-UNSUPPORTED",
			"switch has no code generator lowering")
	case ast.Break:
		return c.genBreak(a)
	case ast.Continue:
		return c.genContinue(a)
	default:
		return issue.Fatal(issue.CodeGeneration, 0, "E-UNKNOWN-ACTION", "unknown action kind")
	}
}

func (c *genCtx) genDeclaration(d ast.Declaration) *issue.General {
	slot := c.slots.declare(d.Identifier)
	c.emit2(OpDeclare, 0)
	c.emitSlot(slot)
	return nil
}

func (c *genCtx) genAssignment(a ast.Assignment) *issue.General {
	if issues := c.genExpression(a.Value); issues != nil {
		return issues
	}
	slot, ok := c.slots.lookup(a.Identifier)
	if !ok {
		return issue.Fatal(issue.CodeGeneration, a.Pos, "E-UNDECLARED", "assignment to undeclared identifier: "+a.Identifier)
	}
	c.emit2(OpStore, 0)
	c.emitSlot(slot)
	return nil
}

func (c *genCtx) genCall(call ast.Call, discardResult bool) *issue.General {
	var all *issue.General
	for _, arg := range call.Arguments {
		if issues := c.genExpression(arg); issues != nil {
			all = issue.Merge(all, issues)
		}
	}
	if all != nil {
		return all
	}

	pos := len(c.list.Commands)
	c.emit2(OpCall, byte(len(call.Arguments)))
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: EnterFunction, Pos: pos, Offset: offset, FuncName: call.FunctionName,
	})

	if discardResult {
		c.emit2(OpPop, 0)
	}
	return nil
}

func (c *genCtx) genReturn(r ast.Return) *issue.General {
	return c.emitReturn(r.Value)
}

func (c *genCtx) emitReturn(value ast.Expression) *issue.General {
	hasValue := byte(0)
	var issues *issue.General
	if len(value.Postfix) > 0 {
		hasValue = 1
		issues = c.genExpression(value)
	}
	c.emit2(OpReturn, hasValue)
	return issues
}

// genExpression emits the stack-machine code for one postfix expression.
func (c *genCtx) genExpression(expr ast.Expression) *issue.General {
	for _, tok := range expr.Postfix {
		switch tok.Tag {
		case decorator.TIdentifier:
			slot, ok := c.slots.lookup(tok.Identifier)
			if !ok {
				return issue.Fatal(issue.CodeGeneration, tok.Pos, "E-UNDECLARED", "undeclared identifier: "+tok.Identifier)
			}
			c.emit2(OpLoad, 0)
			c.emitSlot(slot)

		case decorator.TLiteral:
			c.genLiteral(tok)

		case decorator.TOperator:
			if tok.Operator.Sub == decorator.OpNot {
				c.emit2(OpUnaryNot, 0)
			} else {
				c.emit2(OpBinary, operatorByte(tok.Operator))
			}

		default:
			return issue.Fatal(issue.CodeGeneration, tok.Pos, "E-BAD-EXPR-TOKEN", "unexpected token in expression")
		}
	}
	return nil
}

func (c *genCtx) genLiteral(tok decorator.DecoratedToken) {
	switch tok.LitKind {
	case decorator.LitInt:
		c.emit2(OpPushLiteral, byte(litInt))
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(tok.IntVal))
		c.list.Commands = append(c.list.Commands, buf[:]...)
	case decorator.LitFloat:
		c.emit2(OpPushLiteral, byte(litFloat))
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(tok.FloatVal))
		c.list.Commands = append(c.list.Commands, buf[:]...)
	case decorator.LitBool:
		b := byte(0)
		if tok.BoolVal {
			b = 1
		}
		c.emit2(OpPushLiteral, byte(litBool))
		c.list.Commands = append(c.list.Commands, b)
	case decorator.LitString:
		idx := c.list.StringPool.Intern(tok.StringVal)
		c.emit2(OpPushLiteral, byte(litString))
		c.emitSlot(idx)
	}
}

func (c *genCtx) genIf(ifAct ast.If) *issue.General {
	var all *issue.General
	k := len(ifAct.ElifBlocks)
	if ifAct.ElseBlock != nil {
		k++
	}

	remaining := k
	if issues := c.genConditionBlock(ifAct.IfBlock, remaining); issues != nil {
		all = issue.Merge(all, issues)
	}
	remaining--

	for _, elif := range ifAct.ElifBlocks {
		if issues := c.genConditionBlock(elif, remaining); issues != nil {
			all = issue.Merge(all, issues)
		}
		remaining--
	}

	if ifAct.ElseBlock != nil {
		c.list.Credential.References = append(c.list.Credential.References,
			RelocationReference{Type: RefElseEntrance, Pos: len(c.list.Commands)})
		if issues := c.genBlock(*ifAct.ElseBlock); issues != nil {
			all = issue.Merge(all, issues)
		}
		c.list.Credential.References = append(c.list.Credential.References,
			RelocationReference{Type: RefEndElse, Pos: len(c.list.Commands)})
	}

	return all
}

// genConditionBlock lowers one if/elif alternative: DomainCreate, the
// condition, a conditional jump to DomainHead on false, the body,
// DomainDestroy, then an unconditional BreakDomain(skipRemaining) jump over
// the rest of the chain (spec.md §4.5).
func (c *genCtx) genConditionBlock(cb ast.ConditionBlock, skipRemaining int) *issue.General {
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainCreate, Pos: len(c.list.Commands)})

	if issues := c.genExpression(cb.Condition); issues != nil {
		return issues
	}

	pos := len(c.list.Commands)
	c.emit2(OpJumpIfFalse, 0)
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: DomainHead, Pos: pos, Offset: offset,
	})

	issues := c.genBlock(cb.Body)

	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainDestroy, Pos: len(c.list.Commands)})

	pos = len(c.list.Commands)
	c.emit2(OpJump, 0)
	offset = len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: BreakDomain, Pos: pos, Offset: offset, N: skipRemaining,
	})

	return issues
}

func (c *genCtx) genWhile(w ast.While) *issue.General {
	var all *issue.General
	c.loopDepth++
	defer func() { c.loopDepth-- }()

	headPos := len(c.list.Commands)
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainCreate, Pos: headPos})
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefIterationHead, Pos: headPos})

	if issues := c.genExpression(w.Condition); issues != nil {
		all = issue.Merge(all, issues)
	}

	pos := len(c.list.Commands)
	c.emit2(OpJumpIfFalse, 0)
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: DomainHead, Pos: pos, Offset: offset,
	})

	if issues := c.genBlock(w.Body); issues != nil {
		all = issue.Merge(all, issues)
	}

	pos = len(c.list.Commands)
	c.emit2(OpJump, 0)
	offset = len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: IterationHead, Pos: pos, Offset: offset,
	})

	endPos := len(c.list.Commands)
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainDestroy, Pos: endPos})
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefIterationInterrupt, Pos: endPos})

	return all
}

// genLoop lowers an infinite loop: no condition, only exited by break.
func (c *genCtx) genLoop(l ast.Loop) *issue.General {
	var all *issue.General
	c.loopDepth++
	defer func() { c.loopDepth-- }()

	headPos := len(c.list.Commands)
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainCreate, Pos: headPos})
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefIterationHead, Pos: headPos})

	if issues := c.genBlock(l.Body); issues != nil {
		all = issue.Merge(all, issues)
	}

	pos := len(c.list.Commands)
	c.emit2(OpJump, 0)
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: IterationHead, Pos: pos, Offset: offset,
	})

	endPos := len(c.list.Commands)
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefDomainDestroy, Pos: endPos})
	c.list.Credential.References = append(c.list.Credential.References,
		RelocationReference{Type: RefIterationInterrupt, Pos: endPos})

	return all
}

func (c *genCtx) genBreak(b ast.Break) *issue.General {
	if c.loopDepth == 0 {
		return issue.Fatal(issue.CodeGeneration, b.Pos, "E-BREAK-OUTSIDE-LOOP", "break outside any loop")
	}
	pos := len(c.list.Commands)
	c.emit2(OpJump, 0)
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: BreakIteration, Pos: pos, Offset: offset,
	})
	return nil
}

func (c *genCtx) genContinue(ct ast.Continue) *issue.General {
	if c.loopDepth == 0 {
		return issue.Fatal(issue.CodeGeneration, ct.Pos, "E-CONTINUE-OUTSIDE-LOOP", "continue outside any loop")
	}
	pos := len(c.list.Commands)
	c.emit2(OpJump, 0)
	offset := len(c.list.Commands) - pos
	c.reservePlaceholder()
	c.list.Credential.Targets = append(c.list.Credential.Targets, RelocationTarget{
		Type: IterationHead, Pos: pos, Offset: offset,
	})
	return nil
}

// emit2 appends the 2-byte (root, sub) opcode pair, MSB-first (spec.md §4.5).
func (c *genCtx) emit2(root OpRoot, sub byte) {
	c.list.Commands = append(c.list.Commands, byte(root), sub)
}

// emitSlot appends a fixed-width slot/string-pool-index payload.
func (c *genCtx) emitSlot(slot uint32) {
	var buf [slotSize]byte
	binary.BigEndian.PutUint32(buf[:], slot)
	c.list.Commands = append(c.list.Commands, buf[:]...)
}

// reservePlaceholder appends jump_command_address_placeholder_len(addr_len)
// zero bytes for a to-be-relocated jump address (spec.md §4.5). The
// relocator's addr_len is a package-wide constant (see lang/relocator), so
// the placeholder width is fixed here to match it.
func (c *genCtx) reservePlaceholder() {
	const placeholderLen = AddrLen + 1
	var buf [placeholderLen]byte
	c.list.Commands = append(c.list.Commands, buf[:]...)
}
