package elf

import (
	"bytes"
)

// ResolveName reads the NUL terminated string found at off in the string
// table held by section. The scan stops at the end of the section when no
// terminator is found first.
func (f *File) ResolveName(section int, off uint32) (string, error) {
	if section < 0 || section >= f.NumSections() {
		return "", indexError(StageString, section, ErrReference)
	}
	s, err := f.Section(section)
	if err != nil {
		return "", err
	}
	if s.Type != SectionStrtab || uint64(off) >= s.Size {
		return "", offsetError(StageString, section, uint64(off), ErrReference)
	}
	b, ok := f.src.slice(s.Offset+uint64(off), s.Size-uint64(off))
	if !ok {
		return "", offsetError(StageString, section, s.Offset, f.invalid())
	}
	return cstring(b), nil
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// stringTable is a string table section bound once for repeated lookups.
type stringTable struct {
	index int
	data  []byte
}

func (f *File) stringTable(index int) (*stringTable, error) {
	s, err := f.Section(index)
	if err != nil {
		return nil, err
	}
	if s.Type != SectionStrtab {
		return nil, indexError(StageString, index, ErrReference)
	}
	b, ok := f.src.slice(s.Offset, s.Size)
	if !ok {
		return nil, offsetError(StageString, index, s.Offset, f.invalid())
	}
	return &stringTable{index: index, data: b}, nil
}

func (t *stringTable) lookup(off uint32) (string, error) {
	if uint64(off) >= uint64(len(t.data)) {
		return "", offsetError(StageString, t.index, uint64(off), ErrReference)
	}
	return cstring(t.data[off:]), nil
}
