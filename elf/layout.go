package elf

import (
	"bytes"
	"encoding/binary"
	"math"

	goelf "debug/elf"
)

// physical records of both classes, as stored in the file.
type (
	header32  goelf.Header32
	header64  goelf.Header64
	section32 goelf.Section32
	section64 goelf.Section64
	sym32     goelf.Sym32
	sym64     goelf.Sym64
	prog32    goelf.Prog32
	prog64    goelf.Prog64
)

type headerRecord interface {
	header() Header
}

type sectionRecord interface {
	section() Section
}

type symbolRecord interface {
	symbol() Symbol
}

type progRecord interface {
	prog() Prog
}

// layout gathers everything that depends on the class of a file. One
// layout is chosen when the header is decoded and every later access of
// the same file goes through it.
type layout struct {
	class Class

	headerSize  int
	sectionSize int
	symbolSize  int
	progSize    int

	newHeader  func() headerRecord
	newSection func() sectionRecord
	newSymbol  func() symbolRecord
	newProg    func() progRecord
}

var layout32 = &layout{
	class:       Class32,
	headerSize:  binary.Size(header32{}),
	sectionSize: binary.Size(section32{}),
	symbolSize:  goelf.Sym32Size,
	progSize:    binary.Size(prog32{}),
	newHeader:   func() headerRecord { return new(header32) },
	newSection:  func() sectionRecord { return new(section32) },
	newSymbol:   func() symbolRecord { return new(sym32) },
	newProg:     func() progRecord { return new(prog32) },
}

var layout64 = &layout{
	class:       Class64,
	headerSize:  binary.Size(header64{}),
	sectionSize: binary.Size(section64{}),
	symbolSize:  goelf.Sym64Size,
	progSize:    binary.Size(prog64{}),
	newHeader:   func() headerRecord { return new(header64) },
	newSection:  func() sectionRecord { return new(section64) },
	newSymbol:   func() symbolRecord { return new(sym64) },
	newProg:     func() progRecord { return new(prog64) },
}

func layoutOf(c Class) (*layout, bool) {
	switch c {
	case Class32:
		return layout32, true
	case Class64:
		return layout64, true
	default:
		return nil, false
	}
}

func (l *layout) header(b []byte) (Header, error) {
	r := l.newHeader()
	if err := decodeRecord(b, l.headerSize, r); err != nil {
		return Header{}, err
	}
	return r.header(), nil
}

func (l *layout) section(b []byte) (Section, error) {
	r := l.newSection()
	if err := decodeRecord(b, l.sectionSize, r); err != nil {
		return Section{}, err
	}
	return r.section(), nil
}

func (l *layout) symbol(b []byte) (Symbol, error) {
	r := l.newSymbol()
	if err := decodeRecord(b, l.symbolSize, r); err != nil {
		return Symbol{}, err
	}
	return r.symbol(), nil
}

func (l *layout) prog(b []byte) (Prog, error) {
	r := l.newProg()
	if err := decodeRecord(b, l.progSize, r); err != nil {
		return Prog{}, err
	}
	return r.prog(), nil
}

// record computes base + index*stride, reporting false on overflow.
func (l *layout) record(base, index, stride uint64) (uint64, bool) {
	if stride != 0 && index > (math.MaxUint64-base)/stride {
		return 0, false
	}
	return base + index*stride, true
}

func (l *layout) FormatAddr(v uint64) string {
	return l.class.FormatAddr(v)
}

func decodeRecord(b []byte, size int, v any) error {
	if len(b) < size {
		return ErrBounds
	}
	return binary.Read(bytes.NewReader(b[:size]), binary.LittleEndian, v)
}

func (h *header32) header() Header {
	return Header{
		Ident:       h.Ident,
		Class:       Class(h.Ident[goelf.EI_CLASS]),
		Data:        Data(h.Ident[goelf.EI_DATA]),
		Version:     Version(h.Ident[goelf.EI_VERSION]),
		OSABI:       OSABI(h.Ident[goelf.EI_OSABI]),
		ABIVersion:  h.Ident[goelf.EI_ABIVERSION],
		Type:        Type(h.Type),
		Machine:     Machine(h.Machine),
		FileVersion: Version(h.Version),
		Entry:       uint64(h.Entry),
		Phoff:       uint64(h.Phoff),
		Shoff:       uint64(h.Shoff),
		Flags:       h.Flags,
		Ehsize:      h.Ehsize,
		Phentsize:   h.Phentsize,
		Phnum:       h.Phnum,
		Shentsize:   h.Shentsize,
		Shnum:       h.Shnum,
		Shstrndx:    h.Shstrndx,
	}
}

func (h *header64) header() Header {
	return Header{
		Ident:       h.Ident,
		Class:       Class(h.Ident[goelf.EI_CLASS]),
		Data:        Data(h.Ident[goelf.EI_DATA]),
		Version:     Version(h.Ident[goelf.EI_VERSION]),
		OSABI:       OSABI(h.Ident[goelf.EI_OSABI]),
		ABIVersion:  h.Ident[goelf.EI_ABIVERSION],
		Type:        Type(h.Type),
		Machine:     Machine(h.Machine),
		FileVersion: Version(h.Version),
		Entry:       h.Entry,
		Phoff:       h.Phoff,
		Shoff:       h.Shoff,
		Flags:       h.Flags,
		Ehsize:      h.Ehsize,
		Phentsize:   h.Phentsize,
		Phnum:       h.Phnum,
		Shentsize:   h.Shentsize,
		Shnum:       h.Shnum,
		Shstrndx:    h.Shstrndx,
	}
}

func (s *section32) section() Section {
	return Section{
		NameOff:   s.Name,
		Type:      SectionType(s.Type),
		Flags:     SectionFlag(s.Flags),
		Addr:      uint64(s.Addr),
		Offset:    uint64(s.Off),
		Size:      uint64(s.Size),
		Link:      s.Link,
		Info:      s.Info,
		Addralign: uint64(s.Addralign),
		Entsize:   uint64(s.Entsize),
	}
}

func (s *section64) section() Section {
	return Section{
		NameOff:   s.Name,
		Type:      SectionType(s.Type),
		Flags:     SectionFlag(s.Flags),
		Addr:      s.Addr,
		Offset:    s.Off,
		Size:      s.Size,
		Link:      s.Link,
		Info:      s.Info,
		Addralign: s.Addralign,
		Entsize:   s.Entsize,
	}
}

func (s *sym32) symbol() Symbol {
	return Symbol{
		NameOff: s.Name,
		Value:   uint64(s.Value),
		Size:    uint64(s.Size),
		Info:    s.Info,
		Other:   s.Other,
		Shndx:   s.Shndx,
	}
}

func (s *sym64) symbol() Symbol {
	return Symbol{
		NameOff: s.Name,
		Value:   s.Value,
		Size:    s.Size,
		Info:    s.Info,
		Other:   s.Other,
		Shndx:   s.Shndx,
	}
}

func (p *prog32) prog() Prog {
	return Prog{
		Type:   ProgType(p.Type),
		Flags:  ProgFlag(p.Flags),
		Offset: uint64(p.Off),
		Vaddr:  uint64(p.Vaddr),
		Paddr:  uint64(p.Paddr),
		Filesz: uint64(p.Filesz),
		Memsz:  uint64(p.Memsz),
		Align:  uint64(p.Align),
	}
}

func (p *prog64) prog() Prog {
	return Prog{
		Type:   ProgType(p.Type),
		Flags:  ProgFlag(p.Flags),
		Offset: p.Off,
		Vaddr:  p.Vaddr,
		Paddr:  p.Paddr,
		Filesz: p.Filesz,
		Memsz:  p.Memsz,
		Align:  p.Align,
	}
}
