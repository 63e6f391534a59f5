package desc

import (
	"fmt"
)

type Desc struct {
	Val  int
	Name string
	Text string
}

type Table []Desc

// Lookup finds the entry of t describing v.
func Lookup(t Table, v int) (Desc, bool) {
	for _, d := range t {
		if d.Val == v {
			return d, true
		}
	}
	return Desc{}, false
}

// Name gives the symbolic name of v, or unknown(0x..) when t does not
// describe it.
func Name(t Table, v int) string {
	d, ok := Lookup(t, v)
	if !ok {
		return unknown(v)
	}
	return d.Name
}

// Format renders v as NAME:val - description.
func Format(t Table, v int) string {
	d, ok := Lookup(t, v)
	if !ok {
		return unknown(v)
	}
	return fmt.Sprintf("%s:%d - %s", d.Name, d.Val, d.Text)
}

// Flags gives the names of the bits of v described by t, in table order.
// Bits left over are rendered as a single unknown value.
func Flags(t Table, v int) []string {
	var list []string
	for _, d := range t {
		if d.Val != 0 && v&d.Val == d.Val {
			list = append(list, d.Name)
			v &^= d.Val
		}
	}
	if v != 0 {
		list = append(list, unknown(v))
	}
	return list
}

func unknown(v int) string {
	return fmt.Sprintf("unknown(0x%x)", v)
}

var Class = Table{
	{Val: 0, Name: "ELFCLASSNONE", Text: "invalid class"},
	{Val: 1, Name: "ELFCLASS32", Text: "32-bit objects"},
	{Val: 2, Name: "ELFCLASS64", Text: "64-bit objects"},
}

var Data = Table{
	{Val: 0, Name: "ELFDATANONE", Text: "unknown data format"},
	{Val: 1, Name: "ELFDATA2LSB", Text: "two's complement, little-endian"},
	{Val: 2, Name: "ELFDATA2MSB", Text: "two's complement, big-endian"},
}

var Version = Table{
	{Val: 0, Name: "EV_NONE", Text: "invalid version"},
	{Val: 1, Name: "EV_CURRENT", Text: "current version"},
}

var OSABI = Table{
	{Val: 0, Name: "ELFOSABI_NONE", Text: "UNIX System V ABI"},
	{Val: 1, Name: "ELFOSABI_HPUX", Text: "HP-UX operating system"},
	{Val: 2, Name: "ELFOSABI_NETBSD", Text: "NetBSD"},
	{Val: 3, Name: "ELFOSABI_LINUX", Text: "GNU/Linux"},
	{Val: 4, Name: "ELFOSABI_HURD", Text: "GNU/Hurd"},
	{Val: 6, Name: "ELFOSABI_SOLARIS", Text: "Solaris"},
	{Val: 7, Name: "ELFOSABI_AIX", Text: "AIX"},
	{Val: 8, Name: "ELFOSABI_IRIX", Text: "IRIX"},
	{Val: 9, Name: "ELFOSABI_FREEBSD", Text: "FreeBSD"},
	{Val: 10, Name: "ELFOSABI_TRU64", Text: "TRU64 UNIX"},
	{Val: 11, Name: "ELFOSABI_MODESTO", Text: "Novell Modesto"},
	{Val: 12, Name: "ELFOSABI_OPENBSD", Text: "OpenBSD"},
	{Val: 13, Name: "ELFOSABI_OPENVMS", Text: "OpenVMS"},
	{Val: 14, Name: "ELFOSABI_NSK", Text: "HP Non-Stop Kernel"},
	{Val: 15, Name: "ELFOSABI_AROS", Text: "Amiga Research OS"},
	{Val: 16, Name: "ELFOSABI_FENIXOS", Text: "FenixOS"},
	{Val: 17, Name: "ELFOSABI_CLOUDABI", Text: "Nuxi CloudABI"},
	{Val: 97, Name: "ELFOSABI_ARM", Text: "ARM"},
	{Val: 255, Name: "ELFOSABI_STANDALONE", Text: "standalone (embedded) application"},
}

var Type = Table{
	{Val: 0, Name: "ET_NONE", Text: "unknown type"},
	{Val: 1, Name: "ET_REL", Text: "relocatable file"},
	{Val: 2, Name: "ET_EXEC", Text: "executable file"},
	{Val: 3, Name: "ET_DYN", Text: "shared object"},
	{Val: 4, Name: "ET_CORE", Text: "core file"},
}

var Machine = Table{
	{Val: 0, Name: "EM_NONE", Text: "unknown machine"},
	{Val: 2, Name: "EM_SPARC", Text: "Sun Microsystems SPARC"},
	{Val: 3, Name: "EM_386", Text: "Intel 80386"},
	{Val: 4, Name: "EM_68K", Text: "Motorola 68000"},
	{Val: 8, Name: "EM_MIPS", Text: "MIPS RS3000 (big-endian only)"},
	{Val: 15, Name: "EM_PARISC", Text: "HP/PA"},
	{Val: 18, Name: "EM_SPARC32PLUS", Text: "SPARC with enhanced instruction set"},
	{Val: 20, Name: "EM_PPC", Text: "PowerPC"},
	{Val: 21, Name: "EM_PPC64", Text: "PowerPC 64-bit"},
	{Val: 22, Name: "EM_S390", Text: "IBM S/390"},
	{Val: 40, Name: "EM_ARM", Text: "Advanced RISC Machines"},
	{Val: 42, Name: "EM_SH", Text: "Renesas SuperH"},
	{Val: 43, Name: "EM_SPARCV9", Text: "SPARC v9 64-bit"},
	{Val: 50, Name: "EM_IA_64", Text: "Intel Itanium"},
	{Val: 62, Name: "EM_X86_64", Text: "AMD x86-64"},
	{Val: 183, Name: "EM_AARCH64", Text: "ARM 64-bit"},
	{Val: 243, Name: "EM_RISCV", Text: "RISC-V"},
	{Val: 247, Name: "EM_BPF", Text: "Linux BPF"},
	{Val: 258, Name: "EM_LOONGARCH", Text: "LoongArch"},
}

var SectionType = Table{
	{Val: 0, Name: "SHT_NULL", Text: "inactive section header"},
	{Val: 1, Name: "SHT_PROGBITS", Text: "information defined by the program"},
	{Val: 2, Name: "SHT_SYMTAB", Text: "symbol table"},
	{Val: 3, Name: "SHT_STRTAB", Text: "string table"},
	{Val: 4, Name: "SHT_RELA", Text: "relocation entries with explicit addends"},
	{Val: 5, Name: "SHT_HASH", Text: "symbol hash table"},
	{Val: 6, Name: "SHT_DYNAMIC", Text: "dynamic linking information"},
	{Val: 7, Name: "SHT_NOTE", Text: "notes"},
	{Val: 8, Name: "SHT_NOBITS", Text: "occupies no space in the file"},
	{Val: 9, Name: "SHT_REL", Text: "relocation entries without explicit addends"},
	{Val: 10, Name: "SHT_SHLIB", Text: "reserved"},
	{Val: 11, Name: "SHT_DYNSYM", Text: "minimal set of dynamic linking symbols"},
	{Val: 14, Name: "SHT_INIT_ARRAY", Text: "array of initialization functions"},
	{Val: 15, Name: "SHT_FINI_ARRAY", Text: "array of termination functions"},
	{Val: 16, Name: "SHT_PREINIT_ARRAY", Text: "array of pre-initialization functions"},
	{Val: 17, Name: "SHT_GROUP", Text: "section group"},
	{Val: 18, Name: "SHT_SYMTAB_SHNDX", Text: "extended section indexes"},
	{Val: 0x6ffffff5, Name: "SHT_GNU_ATTRIBUTES", Text: "object attributes"},
	{Val: 0x6ffffff6, Name: "SHT_GNU_HASH", Text: "GNU style symbol hash table"},
	{Val: 0x6ffffff7, Name: "SHT_GNU_LIBLIST", Text: "list of prelink dependencies"},
	{Val: 0x6ffffffd, Name: "SHT_GNU_VERDEF", Text: "versions defined by file"},
	{Val: 0x6ffffffe, Name: "SHT_GNU_VERNEED", Text: "versions needed by file"},
	{Val: 0x6fffffff, Name: "SHT_GNU_VERSYM", Text: "symbol versions"},
}

var SectionFlag = Table{
	{Val: 0x1, Name: "SHF_WRITE", Text: "writable"},
	{Val: 0x2, Name: "SHF_ALLOC", Text: "occupies memory during execution"},
	{Val: 0x4, Name: "SHF_EXECINSTR", Text: "executable"},
	{Val: 0x10, Name: "SHF_MERGE", Text: "might be merged"},
	{Val: 0x20, Name: "SHF_STRINGS", Text: "contains NUL terminated strings"},
	{Val: 0x40, Name: "SHF_INFO_LINK", Text: "info field holds a section index"},
	{Val: 0x80, Name: "SHF_LINK_ORDER", Text: "preserve order after combining"},
	{Val: 0x100, Name: "SHF_OS_NONCONFORMING", Text: "non-standard OS specific handling required"},
	{Val: 0x200, Name: "SHF_GROUP", Text: "member of a section group"},
	{Val: 0x400, Name: "SHF_TLS", Text: "holds thread-local data"},
	{Val: 0x800, Name: "SHF_COMPRESSED", Text: "compressed data"},
}

var SymBind = Table{
	{Val: 0, Name: "STB_LOCAL", Text: "local symbol"},
	{Val: 1, Name: "STB_GLOBAL", Text: "global symbol"},
	{Val: 2, Name: "STB_WEAK", Text: "weak symbol"},
	{Val: 10, Name: "STB_GNU_UNIQUE", Text: "unique symbol"},
}

var SymType = Table{
	{Val: 0, Name: "STT_NOTYPE", Text: "type not specified"},
	{Val: 1, Name: "STT_OBJECT", Text: "data object"},
	{Val: 2, Name: "STT_FUNC", Text: "function or other executable code"},
	{Val: 3, Name: "STT_SECTION", Text: "associated with a section"},
	{Val: 4, Name: "STT_FILE", Text: "name of the source file"},
	{Val: 5, Name: "STT_COMMON", Text: "uninitialized common block"},
	{Val: 6, Name: "STT_TLS", Text: "thread-local storage"},
	{Val: 10, Name: "STT_GNU_IFUNC", Text: "indirect function"},
}

var SymVis = Table{
	{Val: 0, Name: "STV_DEFAULT", Text: "default visibility"},
	{Val: 1, Name: "STV_INTERNAL", Text: "processor specific hidden class"},
	{Val: 2, Name: "STV_HIDDEN", Text: "not visible to other components"},
	{Val: 3, Name: "STV_PROTECTED", Text: "visible but not preemptible"},
}

var ProgType = Table{
	{Val: 0, Name: "PT_NULL", Text: "unused entry"},
	{Val: 1, Name: "PT_LOAD", Text: "loadable segment"},
	{Val: 2, Name: "PT_DYNAMIC", Text: "dynamic linking information"},
	{Val: 3, Name: "PT_INTERP", Text: "path of the program interpreter"},
	{Val: 4, Name: "PT_NOTE", Text: "auxiliary information"},
	{Val: 5, Name: "PT_SHLIB", Text: "reserved"},
	{Val: 6, Name: "PT_PHDR", Text: "program header table"},
	{Val: 7, Name: "PT_TLS", Text: "thread-local storage template"},
	{Val: 0x6474e550, Name: "PT_GNU_EH_FRAME", Text: "exception handling frame"},
	{Val: 0x6474e551, Name: "PT_GNU_STACK", Text: "stack executability"},
	{Val: 0x6474e552, Name: "PT_GNU_RELRO", Text: "read-only after relocation"},
	{Val: 0x6474e553, Name: "PT_GNU_PROPERTY", Text: "GNU property notes"},
}

var ProgFlag = Table{
	{Val: 0x1, Name: "PF_X", Text: "execute"},
	{Val: 0x2, Name: "PF_W", Text: "write"},
	{Val: 0x4, Name: "PF_R", Text: "read"},
}
