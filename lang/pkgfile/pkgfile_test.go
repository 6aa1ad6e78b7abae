package pkgfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pact")
	header := DefaultMetadata()
	commands := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	require.NoError(t, Write(path, header, commands))

	gotHeader, gotCommands, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)
	assert.Equal(t, commands, gotCommands)
}

func TestWriteLeavesNoTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.pact")
	require.NoError(t, Write(path, DefaultMetadata(), []byte{0xAA}))

	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, entries)
}

func TestWriteOverwritesExistingFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pact")
	require.NoError(t, Write(path, DefaultMetadata(), []byte{1}))
	require.NoError(t, Write(path, DefaultMetadata(), []byte{2, 3}))

	_, commands, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, commands)
}

func TestMetadataMarshalOrderIsBigEndianDeclaredOrder(t *testing.T) {
	m := Metadata{
		VariableSlotAlignment:     1,
		DataAlignment:             2,
		CommandAlignment:          3,
		DomainLayerCountAlignment: 4,
		AddressAlignment:          5,
		EntryPointOffset:          6,
	}
	buf := m.marshal()
	require.Len(t, buf, headerSize)
	// Big-endian uint32(1) has its nonzero byte last in its 4-byte field.
	assert.Equal(t, byte(1), buf[3])
	assert.Equal(t, byte(6), buf[23])

	back, err := unmarshalMetadata(buf)
	require.NoError(t, err)
	assert.Equal(t, m, back)
}
