package pfb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// On-disk sizes of the fixed parts of a PFB file.
const (
	// PreambleSize covers origin, extents and spacing (60 bytes) and the
	// word after them, which is padding in the padded layout and the
	// subgrid count in the packed one.
	PreambleSize = 64
	// FileHeaderSize is the preamble plus the subgrid count.
	FileHeaderSize = PreambleSize + 4
	// PackedHeaderSize is the file header as ParFlow writes it: the subgrid
	// count directly follows the spacing at offset 60.
	PackedHeaderSize = 64
	// SubgridHeaderSize is nine big-endian int32 values.
	SubgridHeaderSize = 9 * 4
	// CellSize is the size of one big-endian float64 value.
	CellSize = 8
)

const packedCountOffset = PackedHeaderSize - 4

// HeaderLayout says where the subgrid count is stored.
type HeaderLayout int

const (
	// LayoutDetect reads the word at 64 and falls back to the packed layout
	// when it is zero, which is the x origin of the first subgrid in a
	// packed file and never a valid count in a padded one.
	LayoutDetect HeaderLayout = iota
	// LayoutPadded stores the count at 64; subgrids start at 68.
	LayoutPadded
	// LayoutPacked stores the count at 60; subgrids start at 64.
	LayoutPacked
)

func (l HeaderLayout) String() string {
	switch l {
	case LayoutDetect:
		return "detect"
	case LayoutPadded:
		return "padded"
	case LayoutPacked:
		return "packed"
	default:
		return fmt.Sprintf("HeaderLayout(%d)", int(l))
	}
}

// ParseHeaderLayout parses the String form of a HeaderLayout.
func ParseHeaderLayout(s string) (HeaderLayout, error) {
	for _, l := range []HeaderLayout{LayoutDetect, LayoutPadded, LayoutPacked} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("pfb: unknown header layout %q (want detect, padded or packed)", s)
}

// Source is a random-access byte source. blobstore.Blob satisfies it.
//
// Implementations used concurrently must support independent positioned
// reads; nothing in this package keeps a shared cursor.
type Source interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Size() int64
}

// FileHeader is the global description of a PFB dataset.
type FileHeader struct {
	X0, Y0, Z0  float64
	NX, NY, NZ  int
	DX, DY, DZ  float64
	NumSubgrids int
	// Packed is set when the count was stored at 60 rather than 64.
	Packed bool
}

// Cells returns NX*NY*NZ.
func (h FileHeader) Cells() int { return h.NX * h.NY * h.NZ }

// Layout returns the layout the header was read with.
func (h FileHeader) Layout() HeaderLayout {
	if h.Packed {
		return LayoutPacked
	}
	return LayoutPadded
}

// Size is the length of the file header in bytes.
func (h FileHeader) Size() int64 {
	if h.Packed {
		return PackedHeaderSize
	}
	return FileHeaderSize
}

// SubgridsOffset is the offset of the first subgrid header.
func (h FileHeader) SubgridsOffset() int64 { return h.Size() }

func (h FileHeader) countOffset() int64 { return h.Size() - 4 }

// SubgridHeader is the 36-byte header preceding each subgrid's data.
type SubgridHeader struct {
	IX, IY, IZ int
	NX, NY, NZ int
	RX, RY, RZ int
}

// Cells returns NX*NY*NZ.
func (h SubgridHeader) Cells() int { return h.NX * h.NY * h.NZ }

// DataLen is the size in bytes of the data block that follows the header.
func (h SubgridHeader) DataLen() int64 { return int64(h.Cells()) * CellSize }

// ReadFileHeader parses the file header at offset 0, detecting its layout.
func ReadFileHeader(ctx context.Context, src Source) (FileHeader, error) {
	return ReadFileHeaderLayout(ctx, src, LayoutDetect)
}

// ReadFileHeaderLayout parses the file header at offset 0 in the given
// layout. The preamble and the padded subgrid count are read separately.
func ReadFileHeaderLayout(ctx context.Context, src Source, layout HeaderLayout) (FileHeader, error) {
	var fh FileHeader

	buf := make([]byte, PreambleSize)
	if err := readFull(ctx, src, "read file header", buf, 0); err != nil {
		return fh, err
	}
	fh.X0 = f64(buf[0:])
	fh.Y0 = f64(buf[8:])
	fh.Z0 = f64(buf[16:])
	fh.NX = i32(buf[24:])
	fh.NY = i32(buf[28:])
	fh.NZ = i32(buf[32:])
	fh.DX = f64(buf[36:])
	fh.DY = f64(buf[44:])
	fh.DZ = f64(buf[52:])

	switch layout {
	case LayoutPacked:
		fh.Packed = true
		fh.NumSubgrids = i32(buf[packedCountOffset:])
	case LayoutPadded, LayoutDetect:
		cnt := make([]byte, 4)
		if err := readFull(ctx, src, "read subgrid count", cnt, PreambleSize); err != nil {
			return fh, err
		}
		fh.NumSubgrids = i32(cnt)
		if layout == LayoutDetect && fh.NumSubgrids == 0 && i32(buf[packedCountOffset:]) > 0 {
			fh.Packed = true
			fh.NumSubgrids = i32(buf[packedCountOffset:])
		}
	default:
		return fh, fmt.Errorf("pfb: unknown header layout %d", int(layout))
	}

	if fh.NX <= 0 || fh.NY <= 0 || fh.NZ <= 0 {
		return fh, malformed("read file header", 24, "non-positive extent %dx%dx%d", fh.NX, fh.NY, fh.NZ)
	}
	if fh.NumSubgrids <= 0 {
		return fh, malformed("read subgrid count", fh.countOffset(), "non-positive subgrid count %d", fh.NumSubgrids)
	}
	return fh, nil
}

// ReadSubgridHeader parses the subgrid header starting at off.
func ReadSubgridHeader(ctx context.Context, src Source, off int64) (SubgridHeader, error) {
	buf := make([]byte, SubgridHeaderSize)
	if err := readFull(ctx, src, "read subgrid header", buf, off); err != nil {
		return SubgridHeader{}, err
	}
	return parseSubgridHeader(buf, off)
}

func parseSubgridHeader(buf []byte, off int64) (SubgridHeader, error) {
	h := SubgridHeader{
		IX: i32(buf[0:]),
		IY: i32(buf[4:]),
		IZ: i32(buf[8:]),
		NX: i32(buf[12:]),
		NY: i32(buf[16:]),
		NZ: i32(buf[20:]),
		RX: i32(buf[24:]),
		RY: i32(buf[28:]),
		RZ: i32(buf[32:]),
	}
	if h.NX <= 0 || h.NY <= 0 || h.NZ <= 0 {
		return h, malformed("read subgrid header", off, "non-positive extent %dx%dx%d", h.NX, h.NY, h.NZ)
	}
	return h, nil
}

// readFull fills p from off. Requests past the end of the source become a
// *FormatError; any other read failure is returned as is.
func readFull(ctx context.Context, src Source, op string, p []byte, off int64) error {
	size := src.Size()
	want := int64(len(p))
	if off < 0 {
		return malformed(op, off, "negative offset")
	}
	if off+want > size {
		return truncated(op, off, want, size)
	}
	n, err := src.ReadAt(ctx, p, off)
	if int64(n) == want {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Op: op, Offset: off, Want: want, Have: int64(n), Reason: "short read"}
	}
	return err
}

func i32(b []byte) int { return int(int32(binary.BigEndian.Uint32(b))) }

func f64(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }

// decodeCells converts big-endian float64 values from src into dst.
func decodeCells(dst []float64, src []byte) {
	for i := range dst {
		dst[i] = f64(src[i*CellSize:])
	}
}
