package elf

import (
	goelf "debug/elf"
	"testing"

	"github.com/midbel/elfsym/internal/elftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveName(t *testing.T) {
	for _, c := range classes {
		b := elftest.New(c)
		b.Add(elftest.Section{Type: goelf.SHT_STRTAB, Data: []byte("foo\x00bar")})
		b.Add(elftest.Section{Type: goelf.SHT_PROGBITS, Data: []byte("baz\x00")})
		f := load(t, b.Bytes())

		data := []struct {
			Offset uint32
			Want   string
		}{
			{Offset: 0, Want: "foo"},
			{Offset: 1, Want: "oo"},
			{Offset: 3, Want: ""},
			{Offset: 4, Want: "bar"},
			{Offset: 6, Want: "r"},
		}
		for _, d := range data {
			got, err := f.ResolveName(1, d.Offset)
			require.NoError(t, err)
			assert.Equal(t, d.Want, got)
		}
	}
}

func TestResolveNameInvalid(t *testing.T) {
	b := elftest.New(goelf.ELFCLASS64)
	b.Add(elftest.Section{Type: goelf.SHT_STRTAB, Data: []byte("foo\x00bar")})
	b.Add(elftest.Section{Type: goelf.SHT_PROGBITS, Data: []byte("baz\x00")})
	f := load(t, b.Bytes())

	data := []struct {
		Section int
		Offset  uint32
	}{
		{Section: 1, Offset: 7},
		{Section: 1, Offset: 1000},
		{Section: 2, Offset: 0},
		{Section: 0, Offset: 0},
		{Section: -1, Offset: 0},
		{Section: 3, Offset: 0},
	}
	for _, d := range data {
		_, err := f.ResolveName(d.Section, d.Offset)
		var fe *FormatError
		require.ErrorAs(t, err, &fe, "section %d, offset %d", d.Section, d.Offset)
		assert.Equal(t, StageString, fe.Stage)
		assert.ErrorIs(t, err, ErrReference)
	}
}

func TestSectionNameWithoutTable(t *testing.T) {
	b := elftest.New(goelf.ELFCLASS32)
	b.Add(elftest.Section{Type: goelf.SHT_PROGBITS, Data: []byte{1, 2, 3, 4}})
	f := load(t, b.Bytes())

	name, err := f.SectionName(1)
	require.NoError(t, err)
	assert.Equal(t, "", name)
}
