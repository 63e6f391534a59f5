package elf

import "io"

func (f *File) NumProgs() int {
	return int(f.hdr.Phnum)
}

// Prog decodes the i-th entry of the program header table.
func (f *File) Prog(i int) (Prog, error) {
	if i < 0 || i >= f.NumProgs() {
		return Prog{}, indexError(StageSegment, i, ErrIndex)
	}
	stride := uint64(f.hdr.Phentsize)
	if stride < uint64(f.lay.progSize) {
		return Prog{}, indexError(StageSegment, i, ErrEntrySize)
	}
	off, ok := f.lay.record(f.hdr.Phoff, uint64(i), stride)
	if !ok {
		return Prog{}, offsetError(StageSegment, i, f.hdr.Phoff, ErrBounds)
	}
	b, ok := f.src.slice(off, uint64(f.lay.progSize))
	if !ok {
		return Prog{}, offsetError(StageSegment, i, off, f.invalid())
	}
	p, err := f.lay.prog(b)
	if err != nil {
		return Prog{}, offsetError(StageSegment, i, off, err)
	}
	if !within(p.Offset, p.Filesz, uint64(f.src.Len())) {
		return Prog{}, offsetError(StageSegment, i, p.Offset, ErrBounds)
	}
	return p, nil
}

func (f *File) Progs() *ProgReader {
	return &ProgReader{file: f}
}

// ProgReader walks the program header table in order.
type ProgReader struct {
	file *File
	next int
	err  error
}

func (r *ProgReader) Next() (int, Prog, error) {
	if r.err != nil {
		return -1, Prog{}, r.err
	}
	if r.next >= r.file.NumProgs() {
		return -1, Prog{}, io.EOF
	}
	p, err := r.file.Prog(r.next)
	if err != nil {
		r.err = err
		return -1, Prog{}, err
	}
	i := r.next
	r.next++
	return i, p, nil
}
