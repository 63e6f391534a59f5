//go:build unix

package elf

import (
	"os"

	"golang.org/x/sys/unix"
)

func mmap(f *os.File, size int, mode Mode, persist bool) ([]byte, error) {
	prot := unix.PROT_READ
	if mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}
	flags := unix.MAP_PRIVATE
	if persist {
		flags = unix.MAP_SHARED
	}
	return unix.Mmap(int(f.Fd()), 0, size, prot, flags)
}

func munmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
