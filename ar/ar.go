package ar

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/midbel/tape"
)

var (
	magic    = []byte("!<arch>\n")
	linefeed = []byte{0x60, 0x0A}
)

const headerLen = 60

const (
	gnuIndex   = "/"
	gnuIndex64 = "/SYM64/"
	gnuNames   = "//"
	bsdIndex   = "__.SYMDEF"
	bsdSorted  = "__.SYMDEF SORTED"
)

var (
	ErrMagic    = errors.New("ar: invalid magic")
	ErrHeader   = errors.New("ar: invalid member header")
	ErrLongName = errors.New("ar: invalid long name reference")
	ErrSize     = errors.New("ar: invalid member size")
)

// Member is one file stored in an archive. Data holds the whole content
// of the member and Header the fields decoded from its header, Filename
// being the raw name.
type Member struct {
	Name   string
	Size   int64
	Data   []byte
	Header tape.Header
}

// IsArchive reports whether b starts with the archive signature.
func IsArchive(b []byte) bool {
	return bytes.HasPrefix(b, magic)
}

// Reader gives the members of a static archive in the order they are
// stored. Symbol index members are skipped and the names of the GNU long
// name table are resolved.
type Reader struct {
	inner *bufio.Reader
	names []byte
	err   error
}

func NewReader(r io.Reader) (*Reader, error) {
	rs := bufio.NewReader(r)
	if b, err := rs.Peek(len(magic)); err != nil || !IsArchive(b) {
		return nil, ErrMagic
	}
	if _, err := rs.Discard(len(magic)); err != nil {
		return nil, err
	}
	return &Reader{inner: rs}, nil
}

func (r *Reader) Next() (*Member, error) {
	if r.err != nil {
		return nil, r.err
	}
	m, err := r.next()
	if err != nil {
		r.err = err
	}
	return m, err
}

func (r *Reader) next() (*Member, error) {
	for {
		h, err := r.readHeader()
		if err != nil {
			return nil, err
		}
		data, err := r.read(h)
		if err != nil {
			return nil, err
		}
		switch h.Filename {
		case gnuIndex, gnuIndex64:
			continue
		case gnuNames:
			r.names = data
			continue
		}
		name, err := r.resolve(h.Filename)
		if err != nil {
			return nil, err
		}
		if name == bsdIndex || name == bsdSorted {
			continue
		}
		m := Member{
			Name:   name,
			Size:   h.Size,
			Data:   data,
			Header: *h,
		}
		return &m, nil
	}
}

// readHeader decodes the fixed size header of the next member. Numeric
// fields left blank, as in the GNU long name table, are read as zero.
func (r *Reader) readHeader() (*tape.Header, error) {
	b := make([]byte, headerLen)
	switch _, err := io.ReadFull(r.inner, b); {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	if !bytes.Equal(b[58:], linefeed) {
		return nil, fmt.Errorf("%w: bad terminator %q", ErrHeader, b[58:])
	}
	var h tape.Header
	h.Filename = string(bytes.TrimRight(b[:16], " "))
	if h.Filename == "" {
		return nil, fmt.Errorf("%w: empty name", ErrHeader)
	}
	when, err := readHeaderField(b[16:28], 10)
	if err != nil {
		return nil, err
	}
	h.ModTime = time.Unix(when, 0).UTC()
	if h.Uid, err = readHeaderField(b[28:34], 10); err != nil {
		return nil, err
	}
	if h.Gid, err = readHeaderField(b[34:40], 10); err != nil {
		return nil, err
	}
	if h.Mode, err = readHeaderField(b[40:48], 8); err != nil {
		return nil, err
	}
	if h.Size, err = readHeaderField(b[48:58], 10); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSize, h.Filename, err)
	}
	return &h, nil
}

// read gives the content of the member described by h and consumes the
// padding byte that follows odd sized members.
func (r *Reader) read(h *tape.Header) ([]byte, error) {
	if h.Size < 0 {
		return nil, fmt.Errorf("%w: %s: %d", ErrSize, h.Filename, h.Size)
	}
	data, err := io.ReadAll(io.LimitReader(r.inner, h.Size))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != h.Size {
		return nil, fmt.Errorf("%w: %s: %d bytes read, %d expected", ErrSize, h.Filename, len(data), h.Size)
	}
	if h.Size%2 == 1 {
		if _, err := r.inner.ReadByte(); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}
	return data, nil
}

func readHeaderField(b []byte, base int) (int64, error) {
	str := string(bytes.TrimSpace(b))
	if str == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(str, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrHeader, str)
	}
	return n, nil
}

func (r *Reader) resolve(name string) (string, error) {
	return resolveName(name, r.names)
}

// resolveName gives the real name of a member. "/<n>" refers to the entry
// starting at offset n in the long name table, entries being terminated
// by "/\n". Short names may end with a "/".
func resolveName(name string, table []byte) (string, error) {
	if len(name) > 1 && name[0] == '/' {
		off, err := strconv.Atoi(name[1:])
		if err != nil || off < 0 || off >= len(table) {
			return "", fmt.Errorf("%w: %s", ErrLongName, name)
		}
		rest := table[off:]
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[:i]
		}
		return strings.TrimSuffix(string(rest), "/"), nil
	}
	return strings.TrimSuffix(name, "/"), nil
}

// List reads every member of the archive stored in file.
func List(file string) ([]*Member, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := NewReader(f)
	if err != nil {
		return nil, err
	}
	var ms []*Member
	for {
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}
