package dump

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/ianlancetaylor/demangle"
	"github.com/midbel/elfsym/ar"
	"github.com/midbel/elfsym/elf"
	"github.com/midbel/elfsym/internal/desc"
	"github.com/midbel/textwrap"
	"github.com/sirupsen/logrus"
)

var ErrNotObject = errors.New("not an object file")

type Option func(*Dumper)

func Verbose(b bool) Option {
	return func(d *Dumper) { d.verbose = b }
}

func Demangle(b bool) Option {
	return func(d *Dumper) { d.demangle = b }
}

// DefinedOnly hides the undefined symbols.
func DefinedOnly(b bool) Option {
	return func(d *Dumper) { d.definedOnly = b }
}

// SkipInvalid makes archive members that are not valid objects be
// reported and skipped instead of failing the whole archive.
func SkipInvalid(b bool) Option {
	return func(d *Dumper) { d.skipInvalid = b }
}

// Dumper renders the content of object files as text.
type Dumper struct {
	w   io.Writer
	log *logrus.Entry

	verbose     bool
	demangle    bool
	definedOnly bool
	skipInvalid bool
}

func New(w io.Writer, log *logrus.Entry, opts ...Option) *Dumper {
	d := Dumper{
		w:   w,
		log: log,
	}
	for _, o := range opts {
		o(&d)
	}
	return &d
}

func (d *Dumper) newWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(d.w, 12, 2, 2, ' ', 0)
}

const headerTemplate = `- magic       : {{.Magic}}
- class       : {{desc "class" .Class}}
- data        : {{desc "data" .Data}}
- version     : {{desc "version" .Version}}
- os/abi      : {{desc "osabi" .OSABI}}
- abi version : {{.ABIVersion}}
- type        : {{desc "type" .Type}}
- machine     : {{desc "machine" .Machine}}
- file version: {{.FileVersion}}
- entry       : {{addr .Entry}}
- phoff       : {{.Phoff}}
- shoff       : {{.Shoff}}
- flags       : {{printf "%#x" .Flags}}
- ehsize      : {{.Ehsize}}
- phentsize   : {{.Phentsize}}
- phnum       : {{.Phnum}}
- shentsize   : {{.Shentsize}}
- shnum       : {{.Shnum}}
- shstrndx    : {{.Shstrndx}}
`

var tables = map[string]desc.Table{
	"class":   desc.Class,
	"data":    desc.Data,
	"version": desc.Version,
	"osabi":   desc.OSABI,
	"type":    desc.Type,
	"machine": desc.Machine,
}

// Header prints the identification bytes and the file header.
func (d *Dumper) Header(f *elf.File) error {
	fs := template.FuncMap{
		"addr": f.FormatAddr,
		"desc": func(n string, v int) string {
			if d.verbose {
				return desc.Format(tables[n], v)
			}
			return desc.Name(tables[n], v)
		},
	}
	t, err := template.New("header").Funcs(fs).Parse(headerTemplate)
	if err != nil {
		return err
	}
	h := f.Header()
	c := struct {
		Magic       string
		Class       int
		Data        int
		Version     int
		OSABI       int
		ABIVersion  uint8
		Type        int
		Machine     int
		FileVersion int
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
	}{
		Magic:       fmt.Sprintf("% x", h.Ident[:4]),
		Class:       int(h.Class),
		Data:        int(h.Data),
		Version:     int(h.Version),
		OSABI:       int(h.OSABI),
		ABIVersion:  h.ABIVersion,
		Type:        int(h.Type),
		Machine:     int(h.Machine),
		FileVersion: int(h.FileVersion),
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
	d.log.WithField("stage", "header").Debug("header decoded")
	return t.Execute(d.w, c)
}

// Sections prints one row per entry of the section header table.
func (d *Dumper) Sections(f *elf.File) error {
	var (
		w     = d.newWriter()
		rs    = f.Sections()
		notes []string
	)
	fmt.Fprintln(w, "[nr]\tname\ttype\tflags\taddress\toffset\tsize\tlink\tinfo\talign\tentsize")
	for {
		i, s, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.Flush()
			return err
		}
		name, err := f.SectionName(i)
		if err != nil {
			w.Flush()
			return err
		}
		fmt.Fprintf(w, "[%2d]\t%s\t%s\t%s\t%s\t%#x\t%d\t%d\t%d\t%d\t%d\n",
			i,
			name,
			short(desc.SectionType, int(s.Type), "SHT_"),
			sectionFlags(s.Flags),
			f.FormatAddr(s.Addr),
			s.Offset,
			s.Size,
			s.Link,
			s.Info,
			s.Addralign,
			s.Entsize,
		)
		if d.verbose {
			notes = append(notes, d.describeSection(i, name, s))
		}
	}
	d.log.WithFields(logrus.Fields{"stage": "sections", "count": f.NumSections()}).Debug("section table read")
	if err := w.Flush(); err != nil {
		return err
	}
	if len(notes) > 0 {
		fmt.Fprintln(d.w)
		for _, n := range notes {
			fmt.Fprintln(d.w, n)
		}
	}
	return nil
}

func (d *Dumper) describeSection(i int, name string, s elf.Section) string {
	var (
		t    = desc.Format(desc.SectionType, int(s.Type))
		list []string
	)
	for _, f := range desc.Flags(desc.SectionFlag, int(s.Flags)) {
		if x, ok := lookupName(desc.SectionFlag, f); ok {
			list = append(list, x.Text)
		} else {
			list = append(list, f)
		}
	}
	str := fmt.Sprintf("[%2d] %s: %s", i, name, t)
	if len(list) > 0 {
		str += "; " + strings.Join(list, ", ")
	}
	return textwrap.Wrap(str)
}

// Segments prints one row per entry of the program header table.
func (d *Dumper) Segments(f *elf.File) error {
	var (
		w  = d.newWriter()
		rs = f.Progs()
	)
	defer w.Flush()

	fmt.Fprintln(w, "type\toffset\tvirtaddr\tphysaddr\tfilesz\tmemsz\tflags\talign")
	for {
		_, p, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%#x\t%s\t%s\t%#x\t%#x\t%s\t%#x\n",
			short(desc.ProgType, int(p.Type), "PT_"),
			p.Offset,
			f.FormatAddr(p.Vaddr),
			f.FormatAddr(p.Paddr),
			p.Filesz,
			p.Memsz,
			progFlags(p.Flags),
			p.Align,
		)
	}
	d.log.WithFields(logrus.Fields{"stage": "segments", "count": f.NumProgs()}).Debug("program header table read")
	return nil
}

// Symbols prints every symbol table of f in section order.
func (d *Dumper) Symbols(f *elf.File) error {
	tables, err := f.SymbolTables()
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		d.log.WithField("stage", "symbols").Warn("no symbols")
		return nil
	}
	for _, t := range tables {
		if err := d.symbolTable(f, t); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dumper) symbolTable(f *elf.File, index int) error {
	rs, err := f.Symbols(index)
	if err != nil {
		return err
	}
	name, err := f.SectionName(index)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.w, "symbol table '%s' [%d] contains %d entries:\n", name, index, rs.Len())

	w := d.newWriter()
	defer w.Flush()

	fmt.Fprintln(w, "num\tvalue\tsize\ttype\tbind\tvis\tndx\tname")
	for {
		sym, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if d.definedOnly && sym.Undefined() {
			continue
		}
		d.printSymbol(w, f, sym)
	}
	d.log.WithFields(logrus.Fields{"stage": "symbols", "section": index, "count": rs.Len()}).Debug("symbol table read")
	return nil
}

func (d *Dumper) printSymbol(w io.Writer, f *elf.File, sym elf.Symbol) {
	fmt.Fprintf(w, "%d:\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
		sym.Index,
		f.FormatAddr(sym.Value),
		sym.Size,
		short(desc.SymType, int(sym.Type()), "STT_"),
		short(desc.SymBind, int(sym.Bind()), "STB_"),
		short(desc.SymVis, int(sym.Visibility()), "STV_"),
		sectionIndex(sym.Shndx),
		d.symbolName(sym.Name),
	)
}

func (d *Dumper) symbolName(name string) string {
	if !d.demangle {
		return name
	}
	return demangle.Filter(name)
}

// Lookup prints the first symbol found for each name. Every name is
// searched even when a previous one is missing.
func (d *Dumper) Lookup(f *elf.File, names []string) error {
	w := d.newWriter()
	defer w.Flush()

	var errs []error
	for _, n := range names {
		sym, err := f.Lookup(n)
		if err != nil {
			d.log.WithFields(logrus.Fields{"stage": "lookup", "symbol": n}).Debug(err)
			errs = append(errs, fmt.Errorf("%s: %w", n, err))
			continue
		}
		d.printSymbol(w, f, sym)
	}
	return errors.Join(errs...)
}

// File prints the symbols of path, member by member when path is a
// static archive.
func (d *Dumper) File(path string) error {
	src, err := elf.Open(path, elf.ReadOnly, false)
	if err != nil {
		return err
	}
	defer src.Close()

	if ar.IsArchive(src.Bytes()) {
		return d.archive(path, bytes.NewReader(src.Bytes()))
	}
	f, err := elf.NewFile(src)
	if err != nil {
		return err
	}
	return d.Symbols(f)
}

// Archive prints the symbols of every object stored in the archive at
// path.
func (d *Dumper) Archive(path string) error {
	src, err := elf.Open(path, elf.ReadOnly, false)
	if err != nil {
		return err
	}
	defer src.Close()
	return d.archive(path, bytes.NewReader(src.Bytes()))
}

func (d *Dumper) archive(path string, r io.Reader) error {
	rs, err := ar.NewReader(r)
	if err != nil {
		return err
	}
	for {
		m, err := rs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		log := d.log.WithField("member", m.Name)
		if !elf.Identify(m.Data) {
			if d.skipInvalid {
				log.Warn("skipping member: not an object file")
				continue
			}
			return fmt.Errorf("%s(%s): %w", path, m.Name, ErrNotObject)
		}
		f, err := elf.NewFile(elf.NewSource(m.Data))
		if err != nil {
			if d.skipInvalid {
				log.WithError(err).Warn("skipping member")
				continue
			}
			return fmt.Errorf("%s(%s): %w", path, m.Name, err)
		}
		fmt.Fprintf(d.w, "\n%s(%s):\n", path, m.Name)
		if err := d.Symbols(f); err != nil {
			return fmt.Errorf("%s(%s): %w", path, m.Name, err)
		}
	}
	return nil
}

func short(t desc.Table, v int, prefix string) string {
	return strings.TrimPrefix(desc.Name(t, v), prefix)
}

func lookupName(t desc.Table, name string) (desc.Desc, bool) {
	for _, d := range t {
		if d.Name == name {
			return d, true
		}
	}
	return desc.Desc{}, false
}

func sectionIndex(ndx uint16) string {
	switch ndx {
	case elf.IndexUndef:
		return "UND"
	case elf.IndexAbs:
		return "ABS"
	case elf.IndexCommon:
		return "COM"
	default:
		return fmt.Sprintf("%d", ndx)
	}
}

var sectionLetters = []struct {
	Flag   elf.SectionFlag
	Letter byte
}{
	{Flag: 0x1, Letter: 'W'},
	{Flag: 0x2, Letter: 'A'},
	{Flag: 0x4, Letter: 'X'},
	{Flag: 0x10, Letter: 'M'},
	{Flag: 0x20, Letter: 'S'},
	{Flag: 0x40, Letter: 'I'},
	{Flag: 0x80, Letter: 'L'},
	{Flag: 0x100, Letter: 'O'},
	{Flag: 0x200, Letter: 'G'},
	{Flag: 0x400, Letter: 'T'},
	{Flag: 0x800, Letter: 'C'},
}

func sectionFlags(flags elf.SectionFlag) string {
	var str []byte
	for _, x := range sectionLetters {
		if flags&x.Flag != 0 {
			str = append(str, x.Letter)
		}
	}
	if len(str) == 0 {
		return "-"
	}
	return string(str)
}

func progFlags(flags elf.ProgFlag) string {
	str := []byte("---")
	if flags&0x4 != 0 {
		str[0] = 'R'
	}
	if flags&0x2 != 0 {
		str[1] = 'W'
	}
	if flags&0x1 != 0 {
		str[2] = 'E'
	}
	return string(str)
}
