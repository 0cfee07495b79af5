package mmap

import (
	"errors"
	"io"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by reads on an unmapped Region.
	ErrClosed = errors.New("mmap: region is closed")
	// ErrTooLarge is returned for files that do not fit the address space.
	ErrTooLarge = errors.New("mmap: file too large to map")
)

// headSize covers the file header and the first subgrid header of any PFB
// file, which every open reads before anything else.
const headSize = 4096

// Region is a read-only view of a whole PFB file.
type Region struct {
	data   []byte
	closed atomic.Bool
	unmap  func() error
}

// Open maps the file at path. Subgrid reads land at computed offsets all
// over the file, so readahead is disabled for the body while the head of
// the file is faulted in ahead of the header parse.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Region{}, nil
	}
	if int64(int(size)) != size {
		return nil, ErrTooLarge
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	r := &Region{data: data, unmap: unmap}
	r.hint()
	return r, nil
}

// hint is best effort; a failed madvise only costs page faults.
func (r *Region) hint() {
	_ = osAdviseRandom(r.data)
	_ = osWillNeed(r.data[:min(len(r.data), headSize)])
}

// Close unmaps the file. It is idempotent.
func (r *Region) Close() error {
	if r.closed.Swap(true) || r.unmap == nil {
		return nil
	}
	return r.unmap()
}

// Bytes returns the file contents, or nil after Close. Callers must stop
// using the slice before Close.
func (r *Region) Bytes() []byte {
	if r.closed.Load() {
		return nil
	}
	return r.data
}

// Len returns the file size in bytes.
func (r *Region) Len() int64 {
	return int64(len(r.data))
}

// ReadAt copies from the mapped file, returning io.EOF for reads that run
// past its end.
func (r *Region) ReadAt(p []byte, off int64) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
