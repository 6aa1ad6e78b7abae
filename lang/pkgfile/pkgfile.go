// Package pkgfile serializes and reads the compiled package file layout of
// spec.md §6: a fixed-size big-endian Metadata header immediately followed
// by the command bytes. Writing is atomic (temp-file-then-rename), matching
// spec.md §7's "on success, the output file is atomically replaced" and the
// standard atomic-write convention for tool output.
package pkgfile

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// headerSize is the byte width of a serialized Metadata: six uint32 fields,
// big-endian.
const headerSize = 6 * 4

// Metadata is spec.md §6's PackageMetadata: the six alignment/offset fields
// that accompany every compiled package.
type Metadata struct {
	VariableSlotAlignment     uint32
	DataAlignment             uint32
	CommandAlignment          uint32
	DomainLayerCountAlignment uint32
	AddressAlignment          uint32
	EntryPointOffset          uint32
}

// DefaultMetadata returns the "typical" values spec.md §6 lists for each
// field. lang/compile.Compile overwrites AddressAlignment with the fixed
// addr_len of lang/codegen.AddrLen and EntryPointOffset with the entry
// function's resolved offset.
func DefaultMetadata() Metadata {
	return Metadata{
		VariableSlotAlignment:     2,
		DataAlignment:             8,
		CommandAlignment:          4,
		DomainLayerCountAlignment: 2,
		AddressAlignment:          8,
		EntryPointOffset:          5,
	}
}

// marshal serializes m in the declared field order, big-endian.
func (m Metadata) marshal() []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint32(buf[0:4], m.VariableSlotAlignment)
	binary.BigEndian.PutUint32(buf[4:8], m.DataAlignment)
	binary.BigEndian.PutUint32(buf[8:12], m.CommandAlignment)
	binary.BigEndian.PutUint32(buf[12:16], m.DomainLayerCountAlignment)
	binary.BigEndian.PutUint32(buf[16:20], m.AddressAlignment)
	binary.BigEndian.PutUint32(buf[20:24], m.EntryPointOffset)
	return buf
}

// unmarshalMetadata is the inverse of marshal.
func unmarshalMetadata(buf []byte) (Metadata, error) {
	if len(buf) < headerSize {
		return Metadata{}, fmt.Errorf("pkgfile: header too short: got %d bytes, want %d", len(buf), headerSize)
	}
	return Metadata{
		VariableSlotAlignment:     binary.BigEndian.Uint32(buf[0:4]),
		DataAlignment:             binary.BigEndian.Uint32(buf[4:8]),
		CommandAlignment:          binary.BigEndian.Uint32(buf[8:12]),
		DomainLayerCountAlignment: binary.BigEndian.Uint32(buf[12:16]),
		AddressAlignment:          binary.BigEndian.Uint32(buf[16:20]),
		EntryPointOffset:          binary.BigEndian.Uint32(buf[20:24]),
	}, nil
}

// Marshal assembles header and commands into the package file layout of
// spec.md §6 (header immediately followed by command bytes) without
// touching the filesystem — the form lang/compile.Compile returns to its
// caller, which may write it with Write or hand it to another collaborator.
func Marshal(header Metadata, commands []byte) []byte {
	buf := header.marshal()
	return append(buf, commands...)
}

// Write assembles header and commands into the package file layout and
// atomically replaces path: the bytes are written to a temp file in the
// same directory, then renamed into place, so a crash mid-write never
// leaves a truncated file at path.
func Write(path string, header Metadata, commands []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("pkgfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(header.marshal()); err != nil {
		tmp.Close()
		return fmt.Errorf("pkgfile: write header: %w", err)
	}
	if _, err := tmp.Write(commands); err != nil {
		tmp.Close()
		return fmt.Errorf("pkgfile: write commands: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pkgfile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("pkgfile: rename into place: %w", err)
	}
	return nil
}

// Read loads a package file previously written by Write, splitting it back
// into its Metadata header and command bytes.
func Read(path string) (Metadata, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("pkgfile: read file: %w", err)
	}
	header, err := unmarshalMetadata(data)
	if err != nil {
		return Metadata{}, nil, err
	}
	return header, data[headerSize:], nil
}
