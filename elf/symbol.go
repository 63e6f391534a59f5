package elf

import (
	"errors"
	"io"
)

// Symbols returns a reader over the entries of the symbol table held by
// the given section. Names are resolved through the string table named by
// the link field of the section.
func (f *File) Symbols(section int) (*SymbolReader, error) {
	s, err := f.Section(section)
	if err != nil {
		return nil, err
	}
	if !s.IsSymbolTable() {
		return nil, indexError(StageSymbol, section, ErrReference)
	}
	if s.Entsize == 0 || s.Entsize < uint64(f.lay.symbolSize) {
		return nil, indexError(StageSymbol, section, ErrEntrySize)
	}
	link := int(s.Link)
	if link <= 0 || link >= f.NumSections() {
		return nil, indexError(StageSymbol, section, ErrLink)
	}
	strtab, err := f.stringTable(link)
	if err != nil {
		if errors.Is(err, ErrReference) {
			return nil, indexError(StageSymbol, section, ErrLink)
		}
		return nil, err
	}
	data, ok := f.src.slice(s.Offset, s.Size)
	if !ok {
		return nil, offsetError(StageSymbol, section, s.Offset, f.invalid())
	}
	r := SymbolReader{
		file:    f,
		section: section,
		offset:  s.Offset,
		data:    data,
		stride:  s.Entsize,
		count:   s.Size / s.Entsize,
		strtab:  strtab,
	}
	return &r, nil
}

// SymbolReader decodes the entries of one symbol table in table order.
// Next returns io.EOF once every entry has been read.
type SymbolReader struct {
	file    *File
	section int
	offset  uint64
	data    []byte
	stride  uint64
	count   uint64
	next    uint64
	strtab  *stringTable
	err     error
}

// Section is the index of the symbol table section.
func (r *SymbolReader) Section() int {
	return r.section
}

// Link is the index of the string table used for names.
func (r *SymbolReader) Link() int {
	return r.strtab.index
}

// Len is the number of entries in the table.
func (r *SymbolReader) Len() int {
	return int(r.count)
}

func (r *SymbolReader) Next() (Symbol, error) {
	if r.err != nil {
		return Symbol{}, r.err
	}
	if r.next >= r.count {
		return Symbol{}, io.EOF
	}
	sym, err := r.decode()
	if err != nil {
		r.err = err
		return Symbol{}, err
	}
	r.next++
	return sym, nil
}

func (r *SymbolReader) decode() (Symbol, error) {
	var (
		index = int(r.next)
		off   = r.next * r.stride
	)
	if r.file.src.closed {
		return Symbol{}, offsetError(StageSymbol, index, r.offset+off, ErrClosed)
	}
	sym, err := r.file.lay.symbol(r.data[off : off+r.stride])
	if err != nil {
		return Symbol{}, offsetError(StageSymbol, index, r.offset+off, err)
	}
	sym.Index = index
	if sym.Name, err = r.strtab.lookup(sym.NameOff); err != nil {
		return Symbol{}, offsetError(StageSymbol, index, uint64(sym.NameOff), ErrReference)
	}
	return sym, nil
}

// All decodes every remaining entry.
func (r *SymbolReader) All() ([]Symbol, error) {
	list := make([]Symbol, 0, r.count-r.next)
	for {
		sym, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		list = append(list, sym)
	}
	return list, nil
}
