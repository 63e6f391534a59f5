// Package elf gives read access to little-endian ELF objects of both
// classes mapped in memory.
package elf

import (
	"errors"
	"io"
)

// File is a decoded object. The width class is fixed when the header is
// decoded and every view derived from the file uses it.
type File struct {
	hdr Header
	src *Source
	lay *layout
}

// OpenFile maps path read-only with a private mapping and decodes its header.
func OpenFile(path string) (*File, error) {
	return OpenFileMode(path, ReadOnly, false)
}

func OpenFileMode(path string, mode Mode, persist bool) (*File, error) {
	src, err := Open(path, mode, persist)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return f, nil
}

// NewFile decodes the header found at the start of src.
func NewFile(src *Source) (*File, error) {
	lay, h, err := decodeHeader(src.Bytes())
	if err != nil {
		return nil, err
	}
	f := File{
		hdr: h,
		src: src,
		lay: lay,
	}
	return &f, nil
}

func (f *File) Header() Header {
	return f.hdr
}

func (f *File) Class() Class {
	return f.lay.class
}

func (f *File) Source() *Source {
	return f.src
}

func (f *File) FormatAddr(v uint64) string {
	return f.lay.FormatAddr(v)
}

func (f *File) Close() error {
	return f.src.Close()
}

// SymbolTables lists the indexes of all SYMTAB and DYNSYM sections in
// table order.
func (f *File) SymbolTables() ([]int, error) {
	var (
		list []int
		next int
	)
	for next < f.NumSections() {
		i, _, err := f.NextSymbolTable(next)
		if err != nil {
			if errors.Is(err, ErrNoSymbolTable) {
				break
			}
			return nil, err
		}
		list = append(list, i)
		next = i + 1
	}
	return list, nil
}

// Lookup returns the first symbol called name, searching every symbol
// table in section order.
func (f *File) Lookup(name string) (Symbol, error) {
	tables, err := f.SymbolTables()
	if err != nil {
		return Symbol{}, err
	}
	for _, t := range tables {
		rs, err := f.Symbols(t)
		if err != nil {
			return Symbol{}, err
		}
		for {
			sym, err := rs.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return Symbol{}, err
			}
			if sym.Name == name {
				return sym, nil
			}
		}
	}
	return Symbol{}, ErrSymbolNotFound
}
