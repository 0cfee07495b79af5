package pfb

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hydroframe/pfb/blobstore"
	"github.com/hydroframe/pfb/resource"
	"github.com/hydroframe/pfb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assembleSubgrids(t *testing.T, f *File) *Grid {
	t.Helper()
	ctx := context.Background()
	fh, topo := f.Header(), f.Topology()
	out := NewGrid(fh.NX, fh.NY, fh.NZ)
	for gz := 0; gz < topo.R; gz++ {
		for gy := 0; gy < topo.Q; gy++ {
			for gx := 0; gx < topo.P; gx++ {
				sg, err := f.ReadSubgrid(ctx, gx, gy, gz)
				require.NoError(t, err)
				loc := sg.Location
				assert.Equal(t, SubgridHeader{
					IX: loc.IX, IY: loc.IY, IZ: loc.IZ,
					NX: loc.NX, NY: loc.NY, NZ: loc.NZ,
					RX: 1, RY: 1, RZ: 1,
				}, sg.Header)
				out.paste(sg.Grid, 0, 0, 0, loc.IX, loc.IY, loc.IZ, loc.NX, loc.NY, loc.NZ)
			}
		}
	}
	return out
}

func TestFile_RoundTrip(t *testing.T) {
	for name, l := range layouts {
		data := testutil.Build(l, nil)

		t.Run(name+"/mapped", func(t *testing.T) {
			f := openBytes(t, data)
			assert.Equal(t, "test.pfb", f.Name())
			assert.Equal(t, int64(len(data)), f.Size())
			assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))
		})

		t.Run(name+"/copied", func(t *testing.T) {
			f, err := NewFile(context.Background(), plainSource{data})
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))
		})
	}
}

func TestFile_RandomValues(t *testing.T) {
	rng := testutil.NewRNG(7)
	l := layouts["93x40 5x3"]
	values := rng.Field(l.NX, l.NY, l.NZ, -50, 50)
	f := openBytes(t, testutil.Build(l, values))

	g, err := f.ReadSubgridData(context.Background(), 3, 2, 0)
	require.NoError(t, err)
	// Tile (3,2) starts at x=57, y=27 and is 18x13.
	require.Equal(t, 18, g.NX)
	require.Equal(t, 13, g.NY)
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			require.Equal(t, values[(27+y)*l.NX+57+x], g.At(x, y, 0), "seed %d", rng.Seed())
		}
	}
}

func TestFile_HeaderAndTopology(t *testing.T) {
	l := layouts["10x10 3x3"]
	l.Origin = [3]float64{100, 200, 0}
	l.Spacing = [3]float64{1000, 1000, 2}
	f := openBytes(t, testutil.Build(l, nil))

	fh := f.Header()
	assert.Equal(t, 100.0, fh.X0)
	assert.Equal(t, 1000.0, fh.DX)
	assert.Equal(t, 9, fh.NumSubgrids)
	assert.Equal(t, SubgridHeader{NX: 4, NY: 4, NZ: 1, RX: 1, RY: 1, RZ: 1}, f.First())
	assert.Equal(t, Axis{Count: 3, Full: 4, Remainder: 1}, f.Topology().X)
}

func TestFile_WithTopology(t *testing.T) {
	// 4 cells over 3 tiles is 2,1,1. Ceiling division from the first
	// subgrid only finds 2 tiles.
	l := testutil.Layout{NX: 4, NY: 4, NZ: 1, P: 3, Q: 1, R: 1}
	data := testutil.Build(l, nil)
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "odd.pfb", data))

	_, err := Open(ctx, store, "odd.pfb")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Open(ctx, store, "odd.pfb", WithTopology(2, 1, 1))
	assert.ErrorIs(t, err, ErrFormat)

	f, err := Open(ctx, store, "odd.pfb", WithTopology(3, 1, 1))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))

	// 10 cells over 6 tiles.
	l = testutil.Layout{NX: 10, NY: 2, NZ: 1, P: 6, Q: 1, R: 1}
	f = openBytes(t, testutil.Build(l, nil), WithTopology(6, 1, 1))
	assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))
}

func TestFile_FirstSubgridMismatch(t *testing.T) {
	l := layouts["10x10 3x3"]
	data := testutil.Build(l, nil)
	ctx := context.Background()

	shifted := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(shifted[FileHeaderSize:], 1)
	_, err := NewFile(ctx, plainSource{shifted})
	assert.ErrorIs(t, err, ErrFormat)

	// A 9x1x1 split starts with a 2-wide subgrid; the stored one is 4 wide.
	_, err = NewFile(ctx, plainSource{data}, WithTopology(9, 1, 1))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFile_HeaderCheck(t *testing.T) {
	l := layouts["10x10 3x3"]
	data := testutil.Build(l, nil)
	off := testutil.TileOffsets(l)[4]
	binary.BigEndian.PutUint32(data[off:], 99)

	f := openBytes(t, data)
	_, err := f.ReadSubgrid(context.Background(), 1, 1, 0)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, off, fe.Offset)

	f = openBytes(t, data, WithHeaderCheck(false))
	sg, err := f.ReadSubgrid(context.Background(), 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, sg.Header.IX)
	assert.Equal(t, testutil.CellValue(4, 4, 0), sg.Grid.At(0, 0, 0))
}

func TestFile_Truncated(t *testing.T) {
	l := layouts["10x10 3x3"]
	data := testutil.Build(l, nil)
	ctx := context.Background()

	f := openBytes(t, data[:len(data)-8])

	_, err := f.ReadSubgrid(ctx, 0, 0, 0)
	require.NoError(t, err)

	_, err = f.Locate(2, 2, 0)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, testutil.TileOffsets(l)[8], fe.Offset)

	_, err = f.ReadSubgrid(ctx, 2, 2, 0)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = f.ReadSubgridData(ctx, 2, 2, 0)
	assert.ErrorIs(t, err, ErrFormat)

	for _, n := range []int{0, 40, 66, 70} {
		_, err = NewFile(ctx, plainSource{data[:n]})
		assert.ErrorIs(t, err, ErrFormat, "length %d", n)
	}
}

func TestFile_IndexError(t *testing.T) {
	f := openBytes(t, testutil.Build(layouts["10x10 3x3"], nil))
	ctx := context.Background()

	_, err := f.ReadSubgrid(ctx, 3, 0, 0)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = f.ReadSubgridData(ctx, 0, 0, 1)
	assert.ErrorIs(t, err, ErrIndex)
	_, err = f.LocateIndex(9)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestFile_ReadPlane(t *testing.T) {
	l := layouts["7x5x5 2x2x2"]
	f := openBytes(t, testutil.Build(l, nil))
	ctx := context.Background()

	// Tile (1,1,1) starts at (4,3,3) and is 3x2x2.
	loc, err := f.Locate(1, 1, 1)
	require.NoError(t, err)
	require.Equal(t, [6]int{4, 3, 3, 3, 2, 2}, [6]int{loc.IX, loc.IY, loc.IZ, loc.NX, loc.NY, loc.NZ})

	g, err := f.ReadPlane(ctx, 1, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NZ)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, testutil.CellValue(4+x, 3+y, 4), g.At(x, y, 0))
		}
	}

	full, err := f.ReadSubgridData(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, full.Plane(1).Data, g.Data)

	_, err = f.ReadPlane(ctx, 1, 1, 1, 2)
	assert.ErrorIs(t, err, ErrIndex)
}

func TestFile_Close(t *testing.T) {
	f := openBytes(t, testutil.Build(layouts["10x10 3x3"], nil))
	ctx := context.Background()

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err := f.ReadSubgrid(ctx, 0, 0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.ReadSubgridData(ctx, 0, 0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.ReadPlane(ctx, 0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.ReadAll(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = f.ReadBounds(ctx, Bounds{X1: 1, Y1: 1, Z1: 1})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFile_NotFound(t *testing.T) {
	_, err := Open(context.Background(), blobstore.NewMemoryStore(), "missing.pfb")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFile_Metrics(t *testing.T) {
	l := layouts["10x10 3x3"]
	mc := &BasicMetricsCollector{}
	f := openBytes(t, testutil.Build(l, nil), WithMetricsCollector(mc))
	ctx := context.Background()

	_, err := f.ReadSubgrid(ctx, 0, 0, 0)
	require.NoError(t, err)
	_, err = f.ReadSubgridData(ctx, 2, 2, 0)
	require.NoError(t, err)
	_, err = f.ReadAll(ctx)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.OpenCount)
	assert.Equal(t, int64(0), stats.OpenErrors)
	assert.Equal(t, int64(2), stats.ReadCount)
	assert.Equal(t, int64(36+16*8+9*8), stats.ReadBytes)
	assert.Equal(t, int64(1), stats.ScanCount)
	assert.Equal(t, int64(9), stats.ScanSubgrids)

	bad := &BasicMetricsCollector{}
	_, err = NewFile(ctx, plainSource{nil}, WithMetricsCollector(bad))
	require.Error(t, err)
	assert.Equal(t, int64(1), bad.GetStats().OpenErrors)
}

func TestFile_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := openBytes(t, testutil.Build(layouts["10x10 3x3"], nil), WithLogger(logger))

	_, err := f.ReadSubgrid(context.Background(), 1, 0, 0)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"header parsed"`)
	assert.Contains(t, out, `"file":"test.pfb"`)
	assert.Contains(t, out, `"msg":"subgrid read completed"`)
	assert.Contains(t, out, `"grid_x":1`)
}

func TestFile_ResourceController(t *testing.T) {
	l := layouts["11x9x3 3x2x2"]
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
	f := openBytes(t, testutil.Build(l, nil), WithResourceController(rc))
	assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))
}

func TestFile_LocalStore(t *testing.T) {
	l := layouts["12x12x2 even"]
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "WY2003"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "WY2003", "press.pfb"), testutil.Build(l, nil), 0o644))

	ctx := context.Background()
	for name, store := range map[string]blobstore.Store{
		"mmap": blobstore.NewLocalStore(dir),
		"file": blobstore.NewFileStore(dir),
	} {
		t.Run(name, func(t *testing.T) {
			f, err := Open(ctx, store, "WY2003/press.pfb")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, expectedGrid(l), assembleSubgrids(t, f))
		})
	}
}

func TestFile_CanceledMapped(t *testing.T) {
	f := openBytes(t, testutil.Build(layouts["10x10 3x3"], nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ReadSubgrid(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.ReadSubgridData(ctx, 1, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = f.ReadPlane(ctx, 1, 1, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile_CloseDuringReads(t *testing.T) {
	l := layouts["93x40 5x3"]
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "press.pfb"), testutil.Build(l, nil), 0o644))

	ctx := context.Background()
	f, err := Open(ctx, blobstore.NewLocalStore(dir), "press.pfb")
	require.NoError(t, err)

	want := expectedGrid(l)
	locs := make([]SubgridLocation, f.Topology().NumSubgrids())
	for i := range locs {
		locs[i], err = f.LocateIndex(i)
		require.NoError(t, err)
	}

	var (
		wg     sync.WaitGroup
		closed atomic.Int64
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				loc := locs[i%len(locs)]
				sg, err := f.ReadSubgrid(ctx, loc.GridX, loc.GridY, loc.GridZ)
				if errors.Is(err, ErrClosed) {
					closed.Add(1)
					return
				}
				if !assert.NoError(t, err) {
					return
				}
				// Decoded values stay valid after the mapping goes away.
				assert.Equal(t, want.At(loc.IX, loc.IY, 0), sg.Grid.At(0, 0, 0))
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, f.Close())
	wg.Wait()
	assert.Equal(t, int64(8), closed.Load())
}
