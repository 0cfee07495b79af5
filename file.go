package pfb

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hydroframe/pfb/blobstore"
	"github.com/hydroframe/pfb/resource"
)

// File is an open PFB file. The header and topology are parsed once by
// Open; every later read is a single positioned read of one subgrid.
//
// A File is safe for concurrent use when its Source supports concurrent
// positioned reads, which all blobstore implementations do. Close waits for
// reads in flight, so a mapped source is never unmapped under a decode.
type File struct {
	name   string
	src    Source
	closer io.Closer
	opts   options

	header FileHeader
	first  SubgridHeader
	topo   Topology

	// mu is held shared by every read and exclusively by Close.
	mu     sync.RWMutex
	closed atomic.Bool
}

// Open opens name from store and parses its header.
func Open(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*File, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := newFile(ctx, name, blob, blob, optFns)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return f, nil
}

// NewFile parses the header of src. Closing the returned File does not
// close src.
func NewFile(ctx context.Context, src Source, optFns ...Option) (*File, error) {
	return newFile(ctx, "", src, nil, optFns)
}

func newFile(ctx context.Context, name string, src Source, closer io.Closer, optFns []Option) (*File, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if name != "" {
		opts.logger = opts.logger.WithFile(name)
	}
	if opts.rc != nil {
		src = &limitedSource{Source: src, rc: opts.rc}
	}

	f := &File{name: name, src: src, closer: closer, opts: opts}

	start := time.Now()
	err := f.parse(ctx)
	opts.metricsCollector.RecordOpen(time.Since(start), err)
	opts.logger.LogOpen(ctx, f.header, f.topo, err)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) parse(ctx context.Context) error {
	fh, err := ReadFileHeaderLayout(ctx, f.src, f.opts.layout)
	if err != nil {
		return err
	}
	first, err := ReadSubgridHeader(ctx, f.src, fh.SubgridsOffset())
	if err != nil {
		return err
	}
	if first.IX != 0 || first.IY != 0 || first.IZ != 0 {
		return malformed("read subgrid header", fh.SubgridsOffset(), "first subgrid origin (%d,%d,%d), want (0,0,0)", first.IX, first.IY, first.IZ)
	}

	var topo Topology
	if p := f.opts.topology; p != nil {
		topo, err = NewTopology(fh, p[0], p[1], p[2])
		if err == nil && (topo.X.Full != first.NX || topo.Y.Full != first.NY || topo.Z.Full != first.NZ) {
			err = malformed("derive topology", fh.SubgridsOffset(),
				"first subgrid extent %dx%dx%d does not match topology %s", first.NX, first.NY, first.NZ, topo)
		}
	} else {
		topo, err = DeriveTopology(fh, first)
	}
	if err != nil {
		return err
	}

	f.header, f.first, f.topo = fh, first, topo
	return nil
}

// Name returns the name the file was opened with, if any.
func (f *File) Name() string { return f.name }

// Header returns the file header.
func (f *File) Header() FileHeader { return f.header }

// First returns the header of the first subgrid.
func (f *File) First() SubgridHeader { return f.first }

// Topology returns the subgrid tiling.
func (f *File) Topology() Topology { return f.topo }

// Size returns the length of the underlying source in bytes.
func (f *File) Size() int64 { return f.src.Size() }

// Locate returns the location of subgrid (x, y, z). It fails with a
// *FormatError when the subgrid would extend past the end of the file.
func (f *File) Locate(x, y, z int) (SubgridLocation, error) {
	loc, err := Locate(f.header, f.topo, x, y, z)
	if err != nil {
		return loc, err
	}
	return loc, checkBounds(loc, f.src.Size())
}

// LocateIndex is Locate addressed by storage index.
func (f *File) LocateIndex(n int) (SubgridLocation, error) {
	loc, err := LocateIndex(f.header, f.topo, n)
	if err != nil {
		return loc, err
	}
	return loc, checkBounds(loc, f.src.Size())
}

// ReadSubgrid reads subgrid (x, y, z) with its header.
func (f *File) ReadSubgrid(ctx context.Context, x, y, z int) (*Subgrid, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	loc, err := f.Locate(x, y, z)
	if err != nil {
		return nil, err
	}
	return f.readSubgrid(ctx, loc)
}

// readSubgrid expects the caller to hold a read reference.
func (f *File) readSubgrid(ctx context.Context, loc SubgridLocation) (*Subgrid, error) {
	start := time.Now()
	var (
		sg  *Subgrid
		err error
	)
	if f.opts.verifyHeaders {
		sg, err = ReadSubgrid(ctx, f.src, loc)
	} else {
		var g *Grid
		g, err = ReadSubgridData(ctx, f.src, loc)
		if err == nil {
			sg = &Subgrid{Header: f.headerFor(loc), Location: loc, Grid: g}
		}
	}
	f.opts.metricsCollector.RecordRead(loc.End()-loc.HeaderOffset, time.Since(start), err)
	f.opts.logger.LogRead(ctx, loc, err)
	return sg, err
}

// ReadSubgridData reads only the data block of subgrid (x, y, z).
func (f *File) ReadSubgridData(ctx context.Context, x, y, z int) (*Grid, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	loc, err := f.Locate(x, y, z)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	g, err := ReadSubgridData(ctx, f.src, loc)
	f.opts.metricsCollector.RecordRead(loc.DataLen(), time.Since(start), err)
	f.opts.logger.LogRead(ctx, loc, err)
	return g, err
}

// ReadPlane reads z-plane k of subgrid (x, y, z), shaped (NX, NY).
func (f *File) ReadPlane(ctx context.Context, x, y, z, k int) (*Grid, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()
	loc, err := f.Locate(x, y, z)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	g, err := ReadSubgridPlane(ctx, f.src, loc, k)
	f.opts.metricsCollector.RecordRead(int64(loc.NX*loc.NY)*CellSize, time.Since(start), err)
	f.opts.logger.LogRead(ctx, loc, err)
	return g, err
}

// headerFor synthesises the stored header of loc without reading it.
func (f *File) headerFor(loc SubgridLocation) SubgridHeader {
	return SubgridHeader{
		IX: loc.IX, IY: loc.IY, IZ: loc.IZ,
		NX: loc.NX, NY: loc.NY, NZ: loc.NZ,
		RX: f.first.RX, RY: f.first.RY, RZ: f.first.RZ,
	}
}

// acquire takes a read reference, failing once Close has started. Reads
// must not acquire twice: a waiting Close would block the second acquire.
func (f *File) acquire() error {
	f.mu.RLock()
	if f.closed.Load() {
		f.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (f *File) release() { f.mu.RUnlock() }

// Close releases the underlying blob when the File was created by Open,
// after reads in flight have finished. It is idempotent.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// limitedSource charges every read against a resource controller's IO budget.
type limitedSource struct {
	Source
	rc *resource.Controller
}

func (s *limitedSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := s.rc.AcquireIO(ctx, len(p)); err != nil {
		return 0, err
	}
	return s.Source.ReadAt(ctx, p, off)
}
