// Package relocator implements the two-pass resolution contract of spec.md
// §4.6: ResolveTargets (pass 1, calculate_ref_to_target in the original)
// turns each symbolic RelocationTarget into a concrete signed delta or
// function slot, then ApplyRelocation (pass 2, apply_relocation) patches the
// placeholder bytes codegen reserved for it. The passes are strictly
// ordered: EnterFunction targets are left untouched by pass 1 and only
// resolved in pass 2, since a function's slot is already known directly
// from the function table and needs no reference-walking.
//
// Symbol resolution runs over a flat instruction stream with its
// address-patching logic split into two strictly ordered passes, rather
// than a single-pass label resolution, to match the two-pass
// symbolic-reference model spec.md §4.6 describes.
package relocator

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/pactlang/pactc/lang/codegen"
	"github.com/pactlang/pactc/lang/issue"
	"github.com/pactlang/pactc/lang/token"
)

// Debug gates trace output describing each target's resolved address and
// the mode byte ApplyRelocation patches in for it. Off by default; the
// CLI's --debug flag sets it, matching lang/codegen.Debug's register.
var Debug bool

// ResolveTargets is pass 1: it walks every RelocationTarget in list and
// fills in its RelocatedAddress (or, for EnterFunction, defers to pass 2)
// by the resolver rules of spec.md §4.6. An Undefined target, or a failure
// to find the reference a target depends on, is a fatal issue.
func ResolveTargets(list *codegen.CommandList) *issue.General {
	var all *issue.General
	refs := list.Credential.References

	for i := range list.Credential.Targets {
		t := &list.Credential.Targets[i]

		switch t.Type {
		case codegen.Relative:
			t.RelocatedAddress = t.RelativeDelta

		case codegen.DomainHead:
			pos, ok := resolveDomainHead(t.Pos, refs)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-UNPAIRED-DOMAIN",
					"no matching scope-end found for DomainHead target"))
				continue
			}
			t.RelocatedAddress = int32(pos - t.Pos)

		case codegen.BreakDomain:
			// Deliberately reproduces the source compiler's bug: it resolves
			// to the first DomainDestroy in the entire reference list,
			// ignoring both the target's own position and its n payload
			// (spec.md §4.6, §9). A corrected resolver would instead walk n
			// matched DomainDestroys strictly after the target.
			pos, ok := firstDomainDestroy(refs)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-NO-DOMAIN-DESTROY",
					"BreakDomain target but no DomainDestroy reference exists"))
				continue
			}
			t.RelocatedAddress = int32(pos - t.Pos)

		case codegen.IgnoreDomain:
			pos, ok := resolveIgnoreDomain(t.Pos, t.N, refs)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-IGNORE-DOMAIN-SHORT",
					"fewer than n complete scopes follow the IgnoreDomain target"))
				continue
			}
			t.RelocatedAddress = int32(pos - t.Pos)

		case codegen.IterationHead:
			pos, ok := nearestPriorIterationHead(t.Pos, refs)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-NO-ENCLOSING-LOOP",
					"IterationHead target but no loop encloses it"))
				continue
			}
			t.RelocatedAddress = int32(pos - t.Pos)

		case codegen.BreakIteration:
			pos, ok := resolveBreakIteration(t.Pos, refs)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-BREAK-PAST-FUNCTION-END",
					"BreakIteration target has no following iteration-interrupt before its function ends"))
				continue
			}
			t.RelocatedAddress = int32(pos - t.Pos)

		case codegen.EnterFunction:
			// resolved in ApplyRelocation, once the function table is consulted.

		case codegen.Undefined:
			all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-UNDEFINED-TARGET",
				"relocation target left undefined by code generation"))

		default:
			all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-UNKNOWN-TARGET",
				"unknown relocation target type"))
		}
	}

	return all
}

// resolveDomainHead implements spec.md §4.6's DomainHead rule: scan
// references at or after pos, incrementing a counter on DomainDestroy and
// decrementing on DomainCreate, starting from -1 (the scope this target
// itself lives in is already "open" and awaits exactly one DomainDestroy);
// the reference where the counter returns to zero is the match.
func resolveDomainHead(pos int, refs []codegen.RelocationReference) (int, bool) {
	counter := -1
	for _, r := range refs {
		if r.Pos < pos {
			continue
		}
		switch r.Type {
		case codegen.RefDomainCreate:
			counter--
		case codegen.RefDomainDestroy:
			counter++
			if counter == 0 {
				return r.Pos, true
			}
		}
	}
	return 0, false
}

func firstDomainDestroy(refs []codegen.RelocationReference) (int, bool) {
	for _, r := range refs {
		if r.Type == codegen.RefDomainDestroy {
			return r.Pos, true
		}
	}
	return 0, false
}

// resolveIgnoreDomain pairs off n complete DomainCreate/DomainDestroy spans
// strictly after pos and returns the final DomainDestroy of the n-th span.
func resolveIgnoreDomain(pos, n int, refs []codegen.RelocationReference) (int, bool) {
	depth := 0
	spans := 0
	for _, r := range refs {
		if r.Pos <= pos {
			continue
		}
		switch r.Type {
		case codegen.RefDomainCreate:
			depth++
		case codegen.RefDomainDestroy:
			depth--
			if depth == 0 {
				spans++
				if spans == n {
					return r.Pos, true
				}
			}
		}
	}
	return 0, false
}

// nearestPriorIterationHead finds the last IterationHead reference at or
// before pos.
func nearestPriorIterationHead(pos int, refs []codegen.RelocationReference) (int, bool) {
	best := 0
	found := false
	for _, r := range refs {
		if r.Type != codegen.RefIterationHead {
			continue
		}
		if r.Pos <= pos && (!found || r.Pos > best) {
			best = r.Pos
			found = true
		}
	}
	return best, found
}

// resolveBreakIteration finds the nearest following iteration-interrupt
// reference, failing if a FunctionEnd reference lies strictly between pos
// and it (spec.md §4.6: "fail if it lies past the enclosing function's
// end").
func resolveBreakIteration(pos int, refs []codegen.RelocationReference) (int, bool) {
	interruptPos, haveInterrupt := -1, false
	functionEndPos, haveFunctionEnd := -1, false

	for _, r := range refs {
		if r.Pos <= pos {
			continue
		}
		if r.Type == codegen.RefIterationInterrupt && (!haveInterrupt || r.Pos < interruptPos) {
			interruptPos, haveInterrupt = r.Pos, true
		}
		if r.Type == codegen.RefFunctionEnd && (!haveFunctionEnd || r.Pos < functionEndPos) {
			functionEndPos, haveFunctionEnd = r.Pos, true
		}
	}

	if !haveInterrupt {
		return 0, false
	}
	if haveFunctionEnd && functionEndPos < interruptPos {
		return 0, false
	}
	return interruptPos, true
}

// ApplyRelocation is pass 2: it patches every placeholder's addr_len+1
// bytes in list.Commands with the address pass 1 computed (or, for
// EnterFunction, the target function's table slot). Calling it twice with
// the same resolved Credential produces identical bytes (spec.md §4.6's
// idempotence invariant L2), since every write derives from
// RelocatedAddress/FuncName rather than from previously patched bytes.
func ApplyRelocation(list *codegen.CommandList) *issue.General {
	var all *issue.General

	for _, t := range list.Credential.Targets {
		start := t.Pos + t.Offset
		end := start + codegen.AddrLen + 1
		if end > len(list.Commands) {
			all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-PLACEHOLDER-OUT-OF-RANGE",
				"relocation placeholder extends past end of command stream"))
			continue
		}

		var mode byte
		var magnitude uint32

		if t.Type == codegen.EnterFunction {
			entry, ok := lookupFunction(list.FunctionTable, t.FuncName)
			if !ok {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-UNRESOLVED-LINK",
					"EnterFunction target names a function absent from the function table: "+t.FuncName))
				continue
			}
			if entry.External {
				all = issue.Merge(all, issue.Fatal(issue.Relocation, token.Pos(t.Pos), "E-UNRESOLVED-LINK",
					"linked function never defined in this package: "+t.FuncName))
				continue
			}
			mode = 0x00
			magnitude = entry.Slot
		} else {
			addr := t.RelocatedAddress
			if addr < 0 {
				mode = 0x0B
				magnitude = uint32(-addr)
			} else {
				mode = 0x0F
				magnitude = uint32(addr)
			}
		}

		list.Commands[start] = mode
		binary.BigEndian.PutUint32(list.Commands[start+1:end], magnitude)
		if Debug {
			fmt.Fprintf(os.Stderr, "relocator: target@%d type=%v mode=%#02x magnitude=%d\n", t.Pos, t.Type, mode, magnitude)
		}
	}

	return all
}

func lookupFunction(table []codegen.FunctionEntry, name string) (codegen.FunctionEntry, bool) {
	for _, f := range table {
		if f.Name == name {
			return f, true
		}
	}
	return codegen.FunctionEntry{}, false
}
