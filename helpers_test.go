package pfb

import (
	"context"
	"testing"

	"github.com/hydroframe/pfb/blobstore"
	"github.com/hydroframe/pfb/testutil"
	"github.com/stretchr/testify/require"
)

// plainSource is a Source without the zero-copy Bytes method.
type plainSource struct {
	data []byte
}

func (s plainSource) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	return blobstore.NewBytesBlob(s.data).ReadAt(ctx, p, off)
}

func (s plainSource) Size() int64 { return int64(len(s.data)) }

// layouts covers even and uneven splits, several z tiles and thick subgrids.
var layouts = map[string]testutil.Layout{
	"10x10 3x3":      {NX: 10, NY: 10, NZ: 1, P: 3, Q: 3, R: 1},
	"93x40 5x3":      {NX: 93, NY: 40, NZ: 1, P: 5, Q: 3, R: 1},
	"12x12x2 even":   {NX: 12, NY: 12, NZ: 2, P: 4, Q: 4, R: 1},
	"7x5x5 2x2x2":    {NX: 7, NY: 5, NZ: 5, P: 2, Q: 2, R: 2},
	"11x9x3 3x2x2":   {NX: 11, NY: 9, NZ: 3, P: 3, Q: 2, R: 2},
	"single subgrid": {NX: 5, NY: 5, NZ: 1, P: 1, Q: 1, R: 1},
	"unit tiles":     {NX: 3, NY: 2, NZ: 1, P: 3, Q: 2, R: 1},
}

func openBytes(t *testing.T, data []byte, opts ...Option) *File {
	t.Helper()
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "test.pfb", data))
	f, err := Open(ctx, store, "test.pfb", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func expectedGrid(l testutil.Layout) *Grid {
	return &Grid{NX: l.NX, NY: l.NY, NZ: l.NZ, Data: testutil.CoordField(l.NX, l.NY, l.NZ)}
}
