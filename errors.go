package pfb

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("pfb: malformed file")

	// ErrIndex is matched by every *IndexError.
	ErrIndex = errors.New("pfb: subgrid coordinate out of range")

	// ErrClosed is returned when reading from a closed File.
	ErrClosed = errors.New("pfb: file is closed")
)

// FormatError reports a malformed or truncated PFB file, or a computed block
// that does not fit inside the source.
//
// Want and Have are byte counts when the failure is a bounds failure, and
// zero otherwise.
type FormatError struct {
	Op     string
	Offset int64
	Want   int64
	Have   int64
	Reason string
}

func (e *FormatError) Error() string {
	if e.Want > 0 || e.Have > 0 {
		return fmt.Sprintf("pfb: %s at offset %d: %s (want %d bytes, have %d)", e.Op, e.Offset, e.Reason, e.Want, e.Have)
	}
	return fmt.Sprintf("pfb: %s at offset %d: %s", e.Op, e.Offset, e.Reason)
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IndexError reports a topology coordinate outside [0,P)x[0,Q)x[0,R).
type IndexError struct {
	X, Y, Z int
	P, Q, R int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("pfb: subgrid (%d,%d,%d) outside topology %dx%dx%d", e.X, e.Y, e.Z, e.P, e.Q, e.R)
}

// Is reports whether target is ErrIndex.
func (e *IndexError) Is(target error) bool { return target == ErrIndex }

func truncated(op string, off, want, size int64) error {
	have := size - off
	if have < 0 {
		have = 0
	}
	return &FormatError{Op: op, Offset: off, Want: want, Have: have, Reason: "truncated"}
}

func malformed(op string, off int64, format string, args ...any) error {
	return &FormatError{Op: op, Offset: off, Reason: fmt.Sprintf(format, args...)}
}
