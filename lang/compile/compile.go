// Package compile orchestrates the full L→D→P→G→R pipeline (spec.md §2)
// behind the single `compile(source_text, entry_function_name, metadata) →
// package_bytes | CompilationError` entry point of spec.md §6.
//
// A thin driver that takes the output of one stage and feeds the next,
// threading an unused context.Context through for future cancellation
// support (spec.md §5: "no operation blocks; no task is cancellable
// mid-flight" — the ctx parameter exists so a future multi-file driver can
// plumb mainer.CancelOnSignal through, without the core pipeline itself
// ever selecting on ctx.Done()).
package compile

import (
	"context"

	"github.com/pactlang/pactc/lang/codegen"
	"github.com/pactlang/pactc/lang/decorator"
	"github.com/pactlang/pactc/lang/issue"
	"github.com/pactlang/pactc/lang/lexer"
	"github.com/pactlang/pactc/lang/parser"
	"github.com/pactlang/pactc/lang/pkgfile"
	"github.com/pactlang/pactc/lang/relocator"
)

// Result carries every observable artifact of a successful compilation: the
// resolved, patched command list (useful to callers that want to
// disassemble it, e.g. the `compile --disassemble` CLI flag) alongside the
// final serialized package bytes.
type Result struct {
	Commands *codegen.CommandList
	Metadata pkgfile.Metadata
	Package  []byte
}

// Compile runs the full pipeline over source, lowering it to Pact's
// relocatable command format and patching it into a self-describing package
// (spec.md §6). entryFunctionName names the function the emitted package's
// PackageMetadata.EntryPointOffset should resolve to; meta supplies the
// remaining fields verbatim except AddressAlignment, which is always set to
// codegen.AddrLen (spec.md §6's typical values are pkgfile.DefaultMetadata()).
//
// On any error the returned *issue.General describes every issue collected
// up to the point compilation stopped and no partial Result is returned,
// matching spec.md §7: "on any error, no output file is created".
func Compile(ctx context.Context, source []byte, entryFunctionName string, meta pkgfile.Metadata) (*Result, *issue.General) {
	_ = ctx // reserved for a future multi-file driver, see package doc

	raw := lexer.Tokenize(source, true)

	decorated, issues := decorator.Decorate(raw)
	if issues.HasErrors() {
		return nil, issues
	}

	file, perrs := parser.BuildFile(decorated, entryFunctionName)
	if perrs.HasErrors() {
		return nil, perrs
	}

	cmds, gerrs := codegen.Generate(file)
	if gerrs != nil {
		return nil, gerrs
	}

	if rerrs := relocator.ResolveTargets(cmds); rerrs.HasErrors() {
		return nil, rerrs
	}
	if rerrs := relocator.ApplyRelocation(cmds); rerrs.HasErrors() {
		return nil, rerrs
	}

	padToAlignment(cmds, meta.CommandAlignment)

	meta.AddressAlignment = codegen.AddrLen
	meta.EntryPointOffset = entryPointOffset(cmds, entryFunctionName)
	pkg := pkgfile.Marshal(meta, cmds.Commands)

	return &Result{Commands: cmds, Metadata: meta, Package: pkg}, nil
}

// padToAlignment appends trailing zero bytes until the command stream's
// length is a multiple of alignment (spec.md §6's command_alignment field,
// §8 scenario 6: "commands whose length is a multiple of
// command_alignment"). A zero byte decodes as OpNop's root value, so the
// padding still reads as (trailing, truncated) no-op commands. Padding only
// ever grows the tail, so no previously recorded offset — CommandEntries, a
// RelocationTarget's Pos, a RelocationReference's Pos — is invalidated.
func padToAlignment(list *codegen.CommandList, alignment uint32) {
	if alignment == 0 {
		return
	}
	for uint32(len(list.Commands))%alignment != 0 {
		list.Commands = append(list.Commands, 0)
	}
}

// entryPointOffset looks up name's slot in list's function table. Generate
// already fails the whole compilation if the entry function is absent
// (spec.md §4.5 "E-NO-ENTRY"), so by the time this runs the lookup always
// succeeds.
func entryPointOffset(list *codegen.CommandList, name string) uint32 {
	for _, f := range list.FunctionTable {
		if f.Name == name {
			return f.Slot
		}
	}
	return 0
}
