package codegen

// Combine appends src's commands, targets, references, string pool entries
// and function table to dst in place, shifting every embedded
// command_array_position in src's Credential by dst's current command
// length (spec.md §4.5: "When one RelocatableCommandList is appended to
// another, every embedded command_array_position (in both targets and
// references) is shifted by the host's current command length. Relative(x)
// targets keep their x and their shifted position."). This is the only
// place merging can introduce off-by-one errors, per spec.md §4.5 — see
// the associativity test in combine_test.go (I5).
func Combine(dst, src *CommandList) {
	shift := len(dst.Commands)

	for _, t := range src.Credential.Targets {
		t.Pos += shift
		dst.Credential.Targets = append(dst.Credential.Targets, t)
	}
	for _, r := range src.Credential.References {
		r.Pos += shift
		dst.Credential.References = append(dst.Credential.References, r)
	}
	for _, e := range src.CommandEntries {
		dst.CommandEntries = append(dst.CommandEntries, e+shift)
	}
	for _, f := range src.FunctionTable {
		f.Slot += uint32(shift)
		mergeFunctionEntry(dst, f)
	}

	dst.Commands = append(dst.Commands, src.Commands...)

	if src.StringPool != nil && src.StringPool != dst.StringPool {
		for _, s := range src.StringPool.Values() {
			dst.StringPool.Intern(s)
		}
	}
}

// mergeFunctionEntry adds f to dst's function table, unless dst already
// carries an unresolved External placeholder for f.Name — a `link`
// statement with no local body (spec.md §4.4) — in which case a real f
// resolves that placeholder in place instead of appending a duplicate row.
// This is the mechanism that lets a separately compiled unit satisfy
// another unit's `link` once the two are Combined.
func mergeFunctionEntry(dst *CommandList, f FunctionEntry) {
	if !f.External {
		for i, existing := range dst.FunctionTable {
			if existing.External && existing.Name == f.Name {
				dst.FunctionTable[i] = f
				return
			}
		}
	}
	dst.FunctionTable = append(dst.FunctionTable, f)
}
