//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func osMap(f *os.File, size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

func osAdviseRandom(b []byte) error { return madvise(b, unix.MADV_RANDOM) }

func osWillNeed(b []byte) error { return madvise(b, unix.MADV_WILLNEED) }

// madvise drops EINVAL, which some kernels return for ranges that end
// mid-page.
func madvise(b []byte, advice int) error {
	if len(b) == 0 {
		return nil
	}
	if err := unix.Madvise(b, advice); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
