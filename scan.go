package pfb

import (
	"context"
	"time"
)

// ScanSubgrids walks the subgrid headers of a file in storage order,
// starting at the first subgrid header, and calls fn with each header and its
// offset. Each step reads one 36-byte header; the data blocks are skipped.
//
// This is the sequential alternative to Locate. It needs no topology, so it
// also works for files whose decomposition cannot be derived.
func ScanSubgrids(ctx context.Context, src Source, fh FileHeader, fn func(h SubgridHeader, off int64) error) error {
	off := fh.SubgridsOffset()
	for i := 0; i < fh.NumSubgrids; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		h, err := ReadSubgridHeader(ctx, src, off)
		if err != nil {
			return err
		}
		if h.IX < 0 || h.IY < 0 || h.IZ < 0 || h.IX+h.NX > fh.NX || h.IY+h.NY > fh.NY || h.IZ+h.NZ > fh.NZ {
			return malformed("scan subgrids", off, "subgrid %d at (%d,%d,%d) extent %dx%dx%d exceeds grid %dx%dx%d",
				i, h.IX, h.IY, h.IZ, h.NX, h.NY, h.NZ, fh.NX, fh.NY, fh.NZ)
		}
		if err := fn(h, off); err != nil {
			return err
		}
		off += SubgridHeaderSize + h.DataLen()
	}
	return nil
}

// ReadAll reads every subgrid sequentially and assembles the global grid.
// Intended for small files and for cross-checking the located reads.
func (f *File) ReadAll(ctx context.Context) (*Grid, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	start := time.Now()
	out := NewGrid(f.header.NX, f.header.NY, f.header.NZ)
	n := 0
	err := ScanSubgrids(ctx, f.src, f.header, func(h SubgridHeader, off int64) error {
		g := NewGrid(h.NX, h.NY, h.NZ)
		if err := readCells(ctx, f.src, "read subgrid data", g.Data, off+SubgridHeaderSize); err != nil {
			return err
		}
		out.paste(g, 0, 0, 0, h.IX, h.IY, h.IZ, h.NX, h.NY, h.NZ)
		n++
		return nil
	})
	f.opts.metricsCollector.RecordScan(n, time.Since(start), err)
	f.opts.logger.LogScan(ctx, "sequential read", n, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
