//go:build !unix

package elf

import (
	"errors"
	"io"
	"os"
)

var errPersist = errors.New("shared mapping not supported on this platform")

// without mmap the file is read once in memory; a persisting read-write
// mapping can not be emulated.
func mmap(f *os.File, size int, mode Mode, persist bool) ([]byte, error) {
	if mode == ReadWrite && persist {
		return nil, errPersist
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return b, nil
}

func munmap(b []byte) error {
	return nil
}
