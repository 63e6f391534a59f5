package elf

import (
	goelf "debug/elf"
	"io"
	"testing"

	"github.com/midbel/elfsym/internal/elftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symtab(c goelf.Class, strs []byte, link uint32, entsize uint64, syms ...elftest.Symbol) []byte {
	b := elftest.New(c)
	b.Add(elftest.Section{Type: goelf.SHT_STRTAB, Data: strs})
	b.Add(elftest.Section{
		Type:    goelf.SHT_SYMTAB,
		Data:    elftest.Symbols(c, syms...),
		Link:    link,
		Entsize: entsize,
	})
	b.Add(elftest.Section{Type: goelf.SHT_PROGBITS, Data: make([]byte, 8)})
	return b.Bytes()
}

func TestSymbols(t *testing.T) {
	for _, c := range classes {
		var (
			info = goelf.ST_INFO(goelf.STB_GLOBAL, goelf.STT_FUNC)
			data = symtab(c, []byte("foo\x00bar\x00"), 1, elftest.SymbolSize(c),
				elftest.Symbol{NameOff: 0, Value: 0x10, Size: 4, Info: info, Shndx: 3},
				elftest.Symbol{NameOff: 4, Value: 0x14, Size: 4, Info: info, Shndx: 3},
			)
			f = load(t, data)
		)
		rs, err := f.Symbols(2)
		require.NoError(t, err)
		assert.Equal(t, 2, rs.Section())
		assert.Equal(t, 1, rs.Link())
		assert.Equal(t, 2, rs.Len())

		sym, err := rs.Next()
		require.NoError(t, err)
		assert.Equal(t, "foo", sym.Name)
		assert.Equal(t, 0, sym.Index)
		assert.Equal(t, uint64(0x10), sym.Value)
		assert.Equal(t, goelf.STB_GLOBAL, sym.Bind())
		assert.Equal(t, goelf.STT_FUNC, sym.Type())

		sym, err = rs.Next()
		require.NoError(t, err)
		assert.Equal(t, "bar", sym.Name)
		assert.Equal(t, 1, sym.Index)
		assert.Equal(t, uint32(4), sym.NameOff)

		_, err = rs.Next()
		assert.Equal(t, io.EOF, err)
		_, err = rs.Next()
		assert.Equal(t, io.EOF, err)
	}
}

func TestSymbolsAcrossClasses(t *testing.T) {
	var all [][]Symbol
	for _, c := range classes {
		f := load(t, elftest.Object(c, "main", "init", "fini"))
		i, _, err := f.NextSymbolTable(0)
		require.NoError(t, err)
		rs, err := f.Symbols(i)
		require.NoError(t, err)
		list, err := rs.All()
		require.NoError(t, err)
		all = append(all, list)
	}
	require.Len(t, all[0], 4)
	assert.Equal(t, all[0], all[1])
}

func TestSymbolsDuplicate(t *testing.T) {
	data := symtab(goelf.ELFCLASS64, []byte("\x00dup\x00"), 1, elftest.SymbolSize(goelf.ELFCLASS64),
		elftest.Symbol{},
		elftest.Symbol{NameOff: 1, Value: 0x100},
		elftest.Symbol{NameOff: 1, Value: 0x200},
	)
	f := load(t, data)

	rs, err := f.Symbols(2)
	require.NoError(t, err)
	list, err := rs.All()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "", list[0].Name)
	assert.Equal(t, "dup", list[1].Name)
	assert.Equal(t, "dup", list[2].Name)

	sym, err := f.Lookup("dup")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x100), sym.Value)
}

func TestSymbolsLargerStride(t *testing.T) {
	c := goelf.ELFCLASS32
	size := elftest.SymbolSize(c)

	var syms []byte
	for _, s := range []elftest.Symbol{{NameOff: 0, Value: 1}, {NameOff: 4, Value: 2}} {
		syms = append(syms, elftest.Symbols(c, s)...)
		syms = append(syms, make([]byte, 8)...)
	}
	b := elftest.New(c)
	b.Add(elftest.Section{Type: goelf.SHT_STRTAB, Data: []byte("foo\x00bar\x00")})
	b.Add(elftest.Section{Type: goelf.SHT_SYMTAB, Data: syms, Link: 1, Entsize: size + 8})
	f := load(t, b.Bytes())

	rs, err := f.Symbols(2)
	require.NoError(t, err)
	list, err := rs.All()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bar", list[1].Name)
	assert.Equal(t, uint64(2), list[1].Value)
}

func TestLookup(t *testing.T) {
	for _, c := range classes {
		f := load(t, elftest.Object(c, "main", "helper"))

		sym, err := f.Lookup("helper")
		require.NoError(t, err)
		assert.Equal(t, 2, sym.Index)
		assert.Equal(t, uint64(0x1010), sym.Value)
		assert.Equal(t, uint64(0x10), sym.Size)
		assert.Equal(t, uint16(1), sym.Shndx)
		assert.False(t, sym.Undefined())

		_, err = f.Lookup("missing")
		assert.ErrorIs(t, err, ErrSymbolNotFound)
	}
}

func TestSymbolsInvalid(t *testing.T) {
	var (
		c    = goelf.ELFCLASS64
		size = elftest.SymbolSize(c)
		strs = []byte("foo\x00")
		sym  = elftest.Symbol{NameOff: 0}
	)
	data := []struct {
		Name    string
		Input   []byte
		Section int
		Err     error
	}{
		{Name: "entsize-zero", Input: symtab(c, strs, 1, 0, sym), Section: 2, Err: ErrEntrySize},
		{Name: "entsize-small", Input: symtab(c, strs, 1, size-1, sym), Section: 2, Err: ErrEntrySize},
		{Name: "link-zero", Input: symtab(c, strs, 0, size, sym), Section: 2, Err: ErrLink},
		{Name: "link-outside", Input: symtab(c, strs, 99, size, sym), Section: 2, Err: ErrLink},
		{Name: "link-progbits", Input: symtab(c, strs, 3, size, sym), Section: 2, Err: ErrLink},
		{Name: "not-symtab", Input: symtab(c, strs, 1, size, sym), Section: 1, Err: ErrReference},
		{Name: "index", Input: symtab(c, strs, 1, size, sym), Section: 10, Err: ErrIndex},
	}
	for _, d := range data {
		f := load(t, d.Input)
		_, err := f.Symbols(d.Section)
		var fe *FormatError
		assert.ErrorAs(t, err, &fe, d.Name)
		assert.ErrorIs(t, err, d.Err, d.Name)
	}
}

func TestSymbolsBadName(t *testing.T) {
	data := symtab(goelf.ELFCLASS32, []byte("foo\x00"), 1, elftest.SymbolSize(goelf.ELFCLASS32),
		elftest.Symbol{NameOff: 0},
		elftest.Symbol{NameOff: 100},
	)
	f := load(t, data)

	rs, err := f.Symbols(2)
	require.NoError(t, err)
	_, err = rs.Next()
	require.NoError(t, err)

	_, err = rs.Next()
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageSymbol, fe.Stage)
	assert.Equal(t, 1, fe.Index)
	assert.ErrorIs(t, err, ErrReference)

	_, again := rs.Next()
	assert.Equal(t, err, again)
}

func TestSymbolsClosed(t *testing.T) {
	f := load(t, elftest.Object(goelf.ELFCLASS64, "main"))
	rs, err := f.Symbols(3)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = rs.Next()
	assert.ErrorIs(t, err, ErrClosed)
}
