//go:build unix

package elf

import (
	goelf "debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/midbel/elfsym/internal/elftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenShared(t *testing.T) {
	var (
		want = elftest.Object(goelf.ELFCLASS64, "main")
		file = filepath.Join(t.TempDir(), "shared.o")
	)
	require.NoError(t, os.WriteFile(file, want, 0o644))

	src, err := Open(file, ReadWrite, true)
	require.NoError(t, err)
	src.Bytes()[goelf.EI_OSABI] = byte(goelf.ELFOSABI_LINUX)
	require.NoError(t, src.Close())

	got, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, byte(goelf.ELFOSABI_LINUX), got[goelf.EI_OSABI])

	f, err := OpenFile(file)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, goelf.ELFOSABI_LINUX, f.Header().OSABI)
}
