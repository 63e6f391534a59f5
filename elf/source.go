package elf

import (
	"math"
	"os"

	"golang.org/x/exp/constraints"
)

// maxMapSize is the largest file that can be addressed by a slice.
var maxMapSize int64 = math.MaxInt

// Mode selects the intent a file is opened with.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Source owns the bytes of one object file. Bytes come either from a
// memory mapping of the file or from a caller supplied slice.
type Source struct {
	path    string
	file    *os.File
	data    []byte
	mode    Mode
	persist bool
	mapped  bool
	closed  bool
}

// Open maps the file at path. With persist set, the mapping is shared and
// writes (if any) reach the file, otherwise it is private and copy on
// write.
func Open(path string, mode Mode, persist bool) (*Source, error) {
	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, &OpenError{Op: "open", Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &OpenError{Op: "stat", Path: path, Err: err}
	}
	if info.Size() == 0 {
		f.Close()
		return nil, &OpenError{Op: "mmap", Path: path, Err: ErrEmpty}
	}
	if info.Size() > maxMapSize {
		f.Close()
		return nil, &OpenError{Op: "mmap", Path: path, Err: ErrTooLarge}
	}
	data, err := mmap(f, int(info.Size()), mode, persist)
	if err != nil {
		f.Close()
		return nil, &OpenError{Op: "mmap", Path: path, Err: err}
	}
	s := Source{
		path:    path,
		file:    f,
		data:    data,
		mode:    mode,
		persist: persist,
		mapped:  true,
	}
	return &s, nil
}

// NewSource wraps bytes already in memory. The slice is not copied.
func NewSource(b []byte) *Source {
	return &Source{
		data: b,
		mode: ReadOnly,
	}
}

func (s *Source) Path() string  { return s.path }
func (s *Source) Mode() Mode    { return s.mode }
func (s *Source) Persist() bool { return s.persist }

func (s *Source) Len() int {
	return len(s.data)
}

// Bytes gives direct access to the region. The slice must not be used
// after Close.
func (s *Source) Bytes() []byte {
	return s.data
}

// Close releases the mapping and the descriptor. Calling it twice is a
// no-op.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.mapped {
		err = munmap(s.data)
	}
	s.data = nil
	if s.file != nil {
		if e := s.file.Close(); err == nil {
			err = e
		}
		s.file = nil
	}
	if err != nil {
		return &OpenError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

func (s *Source) slice(off, size uint64) ([]byte, bool) {
	if s.closed {
		return nil, false
	}
	lo, hi, ok := span(off, size, len(s.data))
	if !ok {
		return nil, false
	}
	return s.data[lo:hi], true
}

// span gives the half open range covered by size bytes starting at off
// when it lies inside [0, limit).
func span[T constraints.Unsigned](off, size T, limit int) (int, int, bool) {
	var (
		o = uint64(off)
		n = uint64(size)
		m = uint64(limit)
	)
	if o > m || n > m-o {
		return 0, 0, false
	}
	return int(o), int(o + n), true
}

// within reports whether size bytes at off fit in limit bytes.
func within[T constraints.Unsigned](off, size, limit T) bool {
	return off <= limit && size <= limit-off
}
