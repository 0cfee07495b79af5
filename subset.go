package pfb

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReadBounds reads the cells inside b into a grid of b's extent. Only the
// subgrids intersecting b are read, up to the configured concurrency at a
// time.
func (f *File) ReadBounds(ctx context.Context, b Bounds) (*Grid, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	if err := b.Validate(f.header); err != nil {
		return nil, err
	}

	start := time.Now()
	sel := SelectBounds(f.topo, b)
	nx, ny, nz := b.Extent()
	out := NewGrid(nx, ny, nz)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.concurrency)
	for _, idx := range sel.Indices() {
		g.Go(func() error {
			loc, err := f.LocateIndex(idx)
			if err != nil {
				return err
			}
			sg, err := f.readSubgrid(gctx, loc)
			if err != nil {
				return err
			}
			x0, x1 := max(b.X0, loc.IX), min(b.X1, loc.IX+loc.NX)
			y0, y1 := max(b.Y0, loc.IY), min(b.Y1, loc.IY+loc.NY)
			z0, z1 := max(b.Z0, loc.IZ), min(b.Z1, loc.IZ+loc.NZ)
			// Subgrids cover disjoint cells, so concurrent pastes never overlap.
			out.paste(sg.Grid,
				x0-loc.IX, y0-loc.IY, z0-loc.IZ,
				x0-b.X0, y0-b.Y0, z0-b.Z0,
				x1-x0, y1-y0, z1-z0)
			return nil
		})
	}
	err := g.Wait()

	f.opts.metricsCollector.RecordScan(sel.Len(), time.Since(start), err)
	f.opts.logger.LogScan(ctx, "bounds read", sel.Len(), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
