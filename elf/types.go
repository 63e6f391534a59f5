package elf

import (
	"fmt"

	goelf "debug/elf"
)

var magic = []byte{0x7F, 0x45, 0x4c, 0x46}

const identLen = goelf.EI_NIDENT

// Class is the width class of an object: it selects the physical layout
// of every address and offset field.
type Class uint8

const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

func (c Class) String() string {
	return goelf.Class(c).String()
}

func (c Class) Valid() bool {
	return c == Class32 || c == Class64
}

// Bits returns 32 or 64, or 0 for an invalid class.
func (c Class) Bits() int {
	switch c {
	case Class32:
		return 32
	case Class64:
		return 64
	default:
		return 0
	}
}

// FormatAddr renders an address padded to the width of the class.
func (c Class) FormatAddr(v uint64) string {
	if c == Class32 {
		return fmt.Sprintf("0x%08x", uint32(v))
	}
	return fmt.Sprintf("0x%016x", v)
}

// FormatOffset renders a file offset.
func (c Class) FormatOffset(v uint64) string {
	if c == Class32 {
		return fmt.Sprintf("%d", uint32(v))
	}
	return fmt.Sprintf("%d", v)
}

type (
	Data        = goelf.Data
	Version     = goelf.Version
	OSABI       = goelf.OSABI
	Type        = goelf.Type
	Machine     = goelf.Machine
	SectionType = goelf.SectionType
	SectionFlag = goelf.SectionFlag
	SymBind     = goelf.SymBind
	SymType     = goelf.SymType
	SymVis      = goelf.SymVis
	ProgType    = goelf.ProgType
	ProgFlag    = goelf.ProgFlag
)

const (
	DataNone = goelf.ELFDATANONE
	DataLSB  = goelf.ELFDATA2LSB
	DataMSB  = goelf.ELFDATA2MSB
)

const (
	TypeNone = goelf.ET_NONE
	TypeRel  = goelf.ET_REL
	TypeExec = goelf.ET_EXEC
	TypeDyn  = goelf.ET_DYN
	TypeCore = goelf.ET_CORE
)

const (
	SectionNull     = goelf.SHT_NULL
	SectionProgbits = goelf.SHT_PROGBITS
	SectionSymtab   = goelf.SHT_SYMTAB
	SectionStrtab   = goelf.SHT_STRTAB
	SectionNobits   = goelf.SHT_NOBITS
	SectionDynsym   = goelf.SHT_DYNSYM
)

// section indexes with a special meaning in symbols and headers.
const (
	IndexUndef   = uint16(goelf.SHN_UNDEF)
	IndexAbs     = uint16(goelf.SHN_ABS)
	IndexCommon  = uint16(goelf.SHN_COMMON)
	IndexReserve = uint16(goelf.SHN_LORESERVE)
)

// Header is the width independent view of the file header.
type Header struct {
	Ident       [identLen]byte
	Class       Class
	Data        Data
	Version     Version
	OSABI       OSABI
	ABIVersion  uint8
	Type        Type
	Machine     Machine
	FileVersion Version
	Entry       uint64
	Phoff       uint64
	Shoff       uint64
	Flags       uint32
	Ehsize      uint16
	Phentsize   uint16
	Phnum       uint16
	Shentsize   uint16
	Shnum       uint16
	Shstrndx    uint16
}

// Section is one row of the section header table.
type Section struct {
	NameOff   uint32
	Type      SectionType
	Flags     SectionFlag
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	Addralign uint64
	Entsize   uint64
}

// HasData reports whether the section occupies bytes in the file.
func (s Section) HasData() bool {
	return s.Type != SectionNull && s.Type != SectionNobits
}

func (s Section) IsSymbolTable() bool {
	return s.Type == SectionSymtab || s.Type == SectionDynsym
}

// Symbol is one entry of a SYMTAB or DYNSYM section with its name
// resolved through the linked string table.
type Symbol struct {
	Index   int
	Name    string
	NameOff uint32
	Value   uint64
	Size    uint64
	Info    uint8
	Other   uint8
	Shndx   uint16
}

func (s Symbol) Bind() SymBind {
	return goelf.ST_BIND(s.Info)
}

func (s Symbol) Type() SymType {
	return goelf.ST_TYPE(s.Info)
}

func (s Symbol) Visibility() SymVis {
	return goelf.ST_VISIBILITY(s.Other)
}

func (s Symbol) Undefined() bool {
	return s.Shndx == IndexUndef
}

// Prog is one row of the program header table.
type Prog struct {
	Type   ProgType
	Flags  ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}
