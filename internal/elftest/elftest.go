// Package elftest builds small little-endian ELF images in memory.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// Section describes a section to lay out after the header. Size and
// Offset, when not zero, replace the values computed from Data so that
// malformed tables can be produced.
type Section struct {
	Name    string
	Type    elf.SectionType
	Flags   elf.SectionFlag
	Addr    uint64
	Data    []byte
	Link    uint32
	Info    uint32
	Align   uint64
	Entsize uint64

	Size   uint64
	Offset uint64
}

type Symbol struct {
	NameOff uint32
	Value   uint64
	Size    uint64
	Info    uint8
	Other   uint8
	Shndx   uint16
}

type Prog struct {
	Type   elf.ProgType
	Flags  elf.ProgFlag
	Offset uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Builder lays out a header, the program headers, the section contents and
// finally the section header table. Section 0 is always the null section;
// the sections of the builder start at index 1. When at least one section
// has a name, a .shstrtab section is appended after them.
type Builder struct {
	Class   elf.Class
	Type    elf.Type
	Machine elf.Machine
	OSABI   elf.OSABI
	Entry   uint64
	Flags   uint32

	Sections []Section
	Progs    []Prog

	// overrides of the header fields, used when not zero
	Shentsize uint16
	Shnum     uint16
	Shoff     uint64

	// NoSections omits the section header table, including the null entry.
	NoSections bool
}

func New(class elf.Class) *Builder {
	return &Builder{
		Class:   class,
		Type:    elf.ET_REL,
		Machine: elf.EM_X86_64,
	}
}

func (b *Builder) Add(s Section) int {
	b.Sections = append(b.Sections, s)
	return len(b.Sections)
}

func (b *Builder) is64() bool {
	return b.Class == elf.ELFCLASS64
}

func (b *Builder) sizes() (ehsize, phsize, shsize int) {
	if b.is64() {
		return 64, 56, 64
	}
	return 52, 32, 40
}

// Bytes produces the image.
func (b *Builder) Bytes() []byte {
	var (
		ehsize, phsize, shsize = b.sizes()
		sections               = append([]Section{{}}, b.Sections...)
		names                  = make([]uint32, len(sections))
		shstrndx               int
	)
	if b.named() {
		var tab bytes.Buffer
		tab.WriteByte(0)
		for i, s := range sections {
			if s.Name == "" {
				continue
			}
			names[i] = uint32(tab.Len())
			tab.WriteString(s.Name)
			tab.WriteByte(0)
		}
		names = append(names, uint32(tab.Len()))
		tab.WriteString(".shstrtab")
		tab.WriteByte(0)
		sections = append(sections, Section{Type: elf.SHT_STRTAB, Data: tab.Bytes()})
		shstrndx = len(sections) - 1
	}

	var (
		pos     = ehsize + len(b.Progs)*phsize
		offsets = make([]uint64, len(sections))
		content bytes.Buffer
	)
	for i, s := range sections {
		if i == 0 {
			continue
		}
		for pos%8 != 0 {
			content.WriteByte(0)
			pos++
		}
		offsets[i] = uint64(pos)
		content.Write(s.Data)
		pos += len(s.Data)
	}
	for pos%8 != 0 {
		content.WriteByte(0)
		pos++
	}
	shoff := uint64(pos)

	var out bytes.Buffer
	if b.NoSections {
		b.writeHeader(&out, 0, 0, 0, ehsize, phsize, shsize)
		for _, p := range b.Progs {
			b.writeProg(&out, p)
		}
		return out.Bytes()
	}
	b.writeHeader(&out, shoff, len(sections), shstrndx, ehsize, phsize, shsize)
	for _, p := range b.Progs {
		b.writeProg(&out, p)
	}
	out.Write(content.Bytes())
	for i, s := range sections {
		var (
			off  = offsets[i]
			size = uint64(len(s.Data))
		)
		if s.Offset != 0 {
			off = s.Offset
		}
		if s.Size != 0 {
			size = s.Size
		}
		b.writeSection(&out, s, names[i], off, size)
		if pad := int(b.Shentsize) - shsize; b.Shentsize != 0 && pad > 0 {
			out.Write(make([]byte, pad))
		}
	}
	return out.Bytes()
}

func (b *Builder) named() bool {
	for _, s := range b.Sections {
		if s.Name != "" {
			return true
		}
	}
	return false
}

func (b *Builder) ident() [elf.EI_NIDENT]byte {
	var id [elf.EI_NIDENT]byte
	copy(id[:], elf.ELFMAG)
	id[elf.EI_CLASS] = byte(b.Class)
	id[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	id[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	id[elf.EI_OSABI] = byte(b.OSABI)
	return id
}

func (b *Builder) writeHeader(w *bytes.Buffer, shoff uint64, shnum, shstrndx, ehsize, phsize, shsize int) {
	var phoff uint64
	if len(b.Progs) > 0 {
		phoff = uint64(ehsize)
	}
	if b.Shoff != 0 {
		shoff = b.Shoff
	}
	if b.Shnum != 0 {
		shnum = int(b.Shnum)
	}
	if b.Shentsize != 0 {
		shsize = int(b.Shentsize)
	}
	if b.is64() {
		h := elf.Header64{
			Ident:     b.ident(),
			Type:      uint16(b.Type),
			Machine:   uint16(b.Machine),
			Version:   uint32(elf.EV_CURRENT),
			Entry:     b.Entry,
			Phoff:     phoff,
			Shoff:     shoff,
			Flags:     b.Flags,
			Ehsize:    uint16(ehsize),
			Phentsize: uint16(phsize),
			Phnum:     uint16(len(b.Progs)),
			Shentsize: uint16(shsize),
			Shnum:     uint16(shnum),
			Shstrndx:  uint16(shstrndx),
		}
		binary.Write(w, binary.LittleEndian, &h)
		return
	}
	h := elf.Header32{
		Ident:     b.ident(),
		Type:      uint16(b.Type),
		Machine:   uint16(b.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     uint32(b.Entry),
		Phoff:     uint32(phoff),
		Shoff:     uint32(shoff),
		Flags:     b.Flags,
		Ehsize:    uint16(ehsize),
		Phentsize: uint16(phsize),
		Phnum:     uint16(len(b.Progs)),
		Shentsize: uint16(shsize),
		Shnum:     uint16(shnum),
		Shstrndx:  uint16(shstrndx),
	}
	binary.Write(w, binary.LittleEndian, &h)
}

func (b *Builder) writeSection(w *bytes.Buffer, s Section, name uint32, off, size uint64) {
	if b.is64() {
		sh := elf.Section64{
			Name:      name,
			Type:      uint32(s.Type),
			Flags:     uint64(s.Flags),
			Addr:      s.Addr,
			Off:       off,
			Size:      size,
			Link:      s.Link,
			Info:      s.Info,
			Addralign: s.Align,
			Entsize:   s.Entsize,
		}
		binary.Write(w, binary.LittleEndian, &sh)
		return
	}
	sh := elf.Section32{
		Name:      name,
		Type:      uint32(s.Type),
		Flags:     uint32(s.Flags),
		Addr:      uint32(s.Addr),
		Off:       uint32(off),
		Size:      uint32(size),
		Link:      s.Link,
		Info:      s.Info,
		Addralign: uint32(s.Align),
		Entsize:   uint32(s.Entsize),
	}
	binary.Write(w, binary.LittleEndian, &sh)
}

func (b *Builder) writeProg(w *bytes.Buffer, p Prog) {
	if b.is64() {
		ph := elf.Prog64{
			Type:   uint32(p.Type),
			Flags:  uint32(p.Flags),
			Off:    p.Offset,
			Vaddr:  p.Vaddr,
			Paddr:  p.Paddr,
			Filesz: p.Filesz,
			Memsz:  p.Memsz,
			Align:  p.Align,
		}
		binary.Write(w, binary.LittleEndian, &ph)
		return
	}
	ph := elf.Prog32{
		Type:   uint32(p.Type),
		Flags:  uint32(p.Flags),
		Off:    uint32(p.Offset),
		Vaddr:  uint32(p.Vaddr),
		Paddr:  uint32(p.Paddr),
		Filesz: uint32(p.Filesz),
		Memsz:  uint32(p.Memsz),
		Align:  uint32(p.Align),
	}
	binary.Write(w, binary.LittleEndian, &ph)
}

// SymbolSize is the native size of a symbol entry for the class.
func SymbolSize(class elf.Class) uint64 {
	if class == elf.ELFCLASS64 {
		return elf.Sym64Size
	}
	return elf.Sym32Size
}

// Symbols encodes a symbol table for the class.
func Symbols(class elf.Class, syms ...Symbol) []byte {
	var w bytes.Buffer
	for _, s := range syms {
		if class == elf.ELFCLASS64 {
			e := elf.Sym64{
				Name:  s.NameOff,
				Info:  s.Info,
				Other: s.Other,
				Shndx: s.Shndx,
				Value: s.Value,
				Size:  s.Size,
			}
			binary.Write(&w, binary.LittleEndian, &e)
			continue
		}
		e := elf.Sym32{
			Name:  s.NameOff,
			Value: uint32(s.Value),
			Size:  uint32(s.Size),
			Info:  s.Info,
			Other: s.Other,
			Shndx: s.Shndx,
		}
		binary.Write(&w, binary.LittleEndian, &e)
	}
	return w.Bytes()
}

// Strings builds a string table starting with the empty string and
// returns the offset of every given string.
func Strings(list ...string) ([]byte, []uint32) {
	var (
		buf  bytes.Buffer
		offs = make([]uint32, len(list))
	)
	buf.WriteByte(0)
	for i, s := range list {
		offs[i] = uint32(buf.Len())
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	return buf.Bytes(), offs
}

// Object builds a relocatable object with a .strtab and a .symtab holding
// one global function per name, preceded by the null symbol.
func Object(class elf.Class, names ...string) []byte {
	var (
		b          = New(class)
		strs, offs = Strings(names...)
		syms       = []Symbol{{}}
	)
	for i, o := range offs {
		syms = append(syms, Symbol{
			NameOff: o,
			Value:   uint64(0x1000 + i*0x10),
			Size:    0x10,
			Info:    elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
			Shndx:   1,
		})
	}
	text := make([]byte, 0x10*len(names))
	b.Add(Section{Name: ".text", Type: elf.SHT_PROGBITS, Flags: elf.SHF_ALLOC | elf.SHF_EXECINSTR, Data: text, Align: 16})
	strndx := b.Add(Section{Name: ".strtab", Type: elf.SHT_STRTAB, Data: strs, Align: 1})
	b.Add(Section{
		Name:    ".symtab",
		Type:    elf.SHT_SYMTAB,
		Data:    Symbols(class, syms...),
		Link:    uint32(strndx),
		Info:    1,
		Align:   8,
		Entsize: SymbolSize(class),
	})
	return b.Bytes()
}
