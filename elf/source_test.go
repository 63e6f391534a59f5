package elf

import (
	goelf "debug/elf"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/midbel/elfsym/internal/elftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.o"), ReadOnly, false)

	var oe *OpenError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "open", oe.Op)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenEmpty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.o")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := Open(file, ReadOnly, false)
	var oe *OpenError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "mmap", oe.Op)
	assert.Equal(t, file, oe.Path)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestOpenTooLarge(t *testing.T) {
	file := filepath.Join(t.TempDir(), "large.o")
	require.NoError(t, os.WriteFile(file, elftest.Object(goelf.ELFCLASS32, "main"), 0o644))

	defer func(n int64) { maxMapSize = n }(maxMapSize)
	maxMapSize = 16

	_, err := Open(file, ReadOnly, false)
	var oe *OpenError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "mmap", oe.Op)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestOpenPrivate(t *testing.T) {
	var (
		want = elftest.Object(goelf.ELFCLASS64, "main")
		file = filepath.Join(t.TempDir(), "private.o")
	)
	require.NoError(t, os.WriteFile(file, want, 0o644))

	src, err := Open(file, ReadWrite, false)
	require.NoError(t, err)
	assert.Equal(t, len(want), src.Len())
	assert.Equal(t, ReadWrite, src.Mode())
	assert.False(t, src.Persist())
	assert.Equal(t, want, src.Bytes())

	src.Bytes()[0x20] ^= 0xff
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewSource(t *testing.T) {
	b := []byte("\x7fELF")
	src := NewSource(b)
	assert.Equal(t, 4, src.Len())
	assert.Equal(t, "", src.Path())
	assert.Equal(t, ReadOnly, src.Mode())

	_, ok := src.slice(2, 2)
	assert.True(t, ok)
	_, ok = src.slice(2, 3)
	assert.False(t, ok)
	_, ok = src.slice(^uint64(0), 2)
	assert.False(t, ok)

	require.NoError(t, src.Close())
	_, ok = src.slice(0, 1)
	assert.False(t, ok)
}

func TestWithin(t *testing.T) {
	assert.True(t, within[uint64](0, 0, 0))
	assert.True(t, within[uint64](4, 4, 8))
	assert.False(t, within[uint64](4, 5, 8))
	assert.False(t, within[uint64](9, 0, 8))
	assert.False(t, within[uint64](2, ^uint64(0), 8))
}

func TestOpenFile(t *testing.T) {
	var (
		dir  = t.TempDir()
		file = filepath.Join(dir, "object.o")
	)
	require.NoError(t, os.WriteFile(file, elftest.Object(goelf.ELFCLASS32, "main", "exit"), 0o644))

	f, err := OpenFile(file)
	require.NoError(t, err)
	assert.Equal(t, Class32, f.Class())
	assert.Equal(t, file, f.Source().Path())

	sym, err := f.Lookup("exit")
	require.NoError(t, err)
	assert.Equal(t, "0x00001010", f.FormatAddr(sym.Value))
	require.NoError(t, f.Close())

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("not an object file"), 0o644))
	_, err = OpenFile(text)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrMagic)
}
