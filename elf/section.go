package elf

import (
	"io"
)

func (f *File) NumSections() int {
	return int(f.hdr.Shnum)
}

// Section decodes the i-th entry of the section header table. Entries are
// located with the stride declared in the header, not with the native
// size of the record.
func (f *File) Section(i int) (Section, error) {
	if i < 0 || i >= f.NumSections() {
		return Section{}, indexError(StageSection, i, ErrIndex)
	}
	stride := uint64(f.hdr.Shentsize)
	if stride < uint64(f.lay.sectionSize) {
		return Section{}, indexError(StageSection, i, ErrEntrySize)
	}
	off, ok := f.lay.record(f.hdr.Shoff, uint64(i), stride)
	if !ok {
		return Section{}, offsetError(StageSection, i, f.hdr.Shoff, ErrBounds)
	}
	b, ok := f.src.slice(off, uint64(f.lay.sectionSize))
	if !ok {
		return Section{}, offsetError(StageSection, i, off, f.invalid())
	}
	s, err := f.lay.section(b)
	if err != nil {
		return Section{}, offsetError(StageSection, i, off, err)
	}
	if s.HasData() && !within(s.Offset, s.Size, uint64(f.src.Len())) {
		return Section{}, offsetError(StageSection, i, s.Offset, ErrBounds)
	}
	return s, nil
}

// SectionData returns the content of the i-th section as a view into the
// source. Sections without file content give an empty slice.
func (f *File) SectionData(i int) ([]byte, error) {
	s, err := f.Section(i)
	if err != nil {
		return nil, err
	}
	if !s.HasData() {
		return []byte{}, nil
	}
	b, ok := f.src.slice(s.Offset, s.Size)
	if !ok {
		return nil, offsetError(StageSection, i, s.Offset, f.invalid())
	}
	return b, nil
}

// SectionName resolves the name of the i-th section through the section
// name string table declared by the header.
func (f *File) SectionName(i int) (string, error) {
	s, err := f.Section(i)
	if err != nil {
		return "", err
	}
	if f.hdr.Shstrndx == IndexUndef {
		return "", nil
	}
	return f.ResolveName(int(f.hdr.Shstrndx), s.NameOff)
}

func (f *File) SectionByName(name string) (int, Section, error) {
	rs := f.Sections()
	for {
		i, s, err := rs.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return -1, Section{}, err
		}
		n, err := f.SectionName(i)
		if err != nil {
			return -1, Section{}, err
		}
		if n == name {
			return i, s, nil
		}
	}
	return -1, Section{}, ErrSectionNotFound
}

// NextSymbolTable returns the first SYMTAB or DYNSYM section whose index is
// not lower than start. start equal to the number of sections is accepted
// and reports ErrNoSymbolTable.
func (f *File) NextSymbolTable(start int) (int, Section, error) {
	if start < 0 || start > f.NumSections() {
		return -1, Section{}, indexError(StageSection, start, ErrIndex)
	}
	for i := start; i < f.NumSections(); i++ {
		s, err := f.Section(i)
		if err != nil {
			return -1, Section{}, err
		}
		if s.IsSymbolTable() {
			return i, s, nil
		}
	}
	return -1, Section{}, ErrNoSymbolTable
}

// Sections returns a new reader over the section header table.
func (f *File) Sections() *SectionReader {
	return &SectionReader{file: f}
}

// SectionReader walks the section header table in order. Next returns
// io.EOF after the last entry; any other error is returned again by every
// following call.
type SectionReader struct {
	file *File
	next int
	err  error
}

func (r *SectionReader) Next() (int, Section, error) {
	if r.err != nil {
		return -1, Section{}, r.err
	}
	if r.next >= r.file.NumSections() {
		return -1, Section{}, io.EOF
	}
	s, err := r.file.Section(r.next)
	if err != nil {
		r.err = err
		return -1, Section{}, err
	}
	i := r.next
	r.next++
	return i, s, nil
}

// Reset rewinds the reader to the first entry.
func (r *SectionReader) Reset() {
	r.next = 0
	r.err = nil
}

func (f *File) invalid() error {
	if f.src.closed {
		return ErrClosed
	}
	return ErrBounds
}
