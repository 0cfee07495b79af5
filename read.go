package pfb

import (
	"context"
	"fmt"
)

// Subgrid is one subgrid read from a file: its on-disk header, where it was
// found, and its values.
type Subgrid struct {
	Header   SubgridHeader
	Location SubgridLocation
	Grid     *Grid
}

// mappable is implemented by sources that expose their bytes directly, such
// as memory-mapped blobs.
type mappable interface {
	Bytes() ([]byte, error)
}

// ReadSubgridData reads the full NX*NY*NZ data block of loc in one read.
func ReadSubgridData(ctx context.Context, src Source, loc SubgridLocation) (*Grid, error) {
	g := NewGrid(loc.NX, loc.NY, loc.NZ)
	if err := readCells(ctx, src, "read subgrid data", g.Data, loc.DataOffset); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadSubgridPlane reads z-plane k of loc, shaped (NX, NY). For the usual
// single-layer subgrid, k is 0 and the result is the whole block.
func ReadSubgridPlane(ctx context.Context, src Source, loc SubgridLocation, k int) (*Grid, error) {
	if k < 0 || k >= loc.NZ {
		return nil, fmt.Errorf("pfb: plane %d outside subgrid depth %d: %w", k, loc.NZ, ErrIndex)
	}
	g := NewGrid(loc.NX, loc.NY, 1)
	off := loc.DataOffset + int64(k)*int64(loc.NX*loc.NY)*CellSize
	if err := readCells(ctx, src, "read subgrid plane", g.Data, off); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadSubgrid reads the header and data of loc with a single bounded read
// and checks that the stored header agrees with the computed location.
func ReadSubgrid(ctx context.Context, src Source, loc SubgridLocation) (*Subgrid, error) {
	n := SubgridHeaderSize + loc.DataLen()
	buf, err := readBlock(ctx, src, "read subgrid", loc.HeaderOffset, n)
	if err != nil {
		return nil, err
	}

	h, err := parseSubgridHeader(buf[:SubgridHeaderSize], loc.HeaderOffset)
	if err != nil {
		return nil, err
	}
	if h.NX != loc.NX || h.NY != loc.NY || h.NZ != loc.NZ || h.IX != loc.IX || h.IY != loc.IY || h.IZ != loc.IZ {
		return nil, malformed("read subgrid", loc.HeaderOffset,
			"stored header origin (%d,%d,%d) extent %dx%dx%d, computed (%d,%d,%d) extent %dx%dx%d",
			h.IX, h.IY, h.IZ, h.NX, h.NY, h.NZ, loc.IX, loc.IY, loc.IZ, loc.NX, loc.NY, loc.NZ)
	}

	g := NewGrid(loc.NX, loc.NY, loc.NZ)
	decodeCells(g.Data, buf[SubgridHeaderSize:])
	return &Subgrid{Header: h, Location: loc, Grid: g}, nil
}

func readCells(ctx context.Context, src Source, op string, dst []float64, off int64) error {
	buf, err := readBlock(ctx, src, op, off, int64(len(dst))*CellSize)
	if err != nil {
		return err
	}
	decodeCells(dst, buf)
	return nil
}

// readBlock returns n bytes at off. Mapped sources are sliced without a
// copy, so the result must not outlive the source.
func readBlock(ctx context.Context, src Source, op string, off, n int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m, ok := src.(mappable); ok {
		if b, err := m.Bytes(); err == nil && b != nil {
			if off < 0 {
				return nil, malformed(op, off, "negative offset")
			}
			if off+n > int64(len(b)) {
				return nil, truncated(op, off, n, int64(len(b)))
			}
			return b[off : off+n], nil
		}
	}
	buf := make([]byte, n)
	if err := readFull(ctx, src, op, buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}
