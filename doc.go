// Package pfb reads ParFlow Binary (PFB) files one subgrid at a time.
//
// A PFB file stores a 3D float64 field as a 68-byte file header followed by
// P*Q*R subgrids, each a 36-byte header and its big-endian data. Subgrid
// sizes differ by at most one cell per axis, so the file header plus the
// first subgrid header are enough to compute where any subgrid starts.
// Reading subgrid N costs two small header reads and one bounded data read,
// independent of N and of the file size.
//
// # Quick Start
//
// Local files:
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("/hydrodata/forcing")
//	f, _ := pfb.Open(ctx, store, "WY2003/NLDAS.Temp.daily.mean.001.pfb")
//	defer f.Close()
//
//	sg, _ := f.ReadSubgrid(ctx, 24, 24, 0)
//	fmt.Println(sg.Location.NX, sg.Location.NY, sg.Grid.At(0, 0, 0))
//
// Object storage:
//
//	store, _ := s3.New(ctx, "hydrodata", s3.WithPrefix("forcing/"))
//	f, _ := pfb.Open(ctx, store, name)
//
// # Size Classes
//
// Each axis is split into Count tiles. The first Remainder tiles have Full
// cells and the rest Full-1, so a horizontal tiling has up to four tile
// shapes. Locate sums the data bytes of each shape that precedes the target
// subgrid:
//
//	t := f.Topology()
//	fmt.Println(t.P, t.Q, t.SizeClasses())
//	loc, _ := f.Locate(4, 2, 0)
//	fmt.Println(loc.HeaderOffset, loc.DataOffset, loc.NX, loc.NY)
//
// # Other Reads
//
//   - ReadBounds reads a global cell box from only the subgrids it touches.
//   - ReadAll walks every header sequentially; useful for small files.
//
// # Errors
//
// Malformed or truncated files produce a *FormatError (errors.Is ErrFormat),
// coordinates outside the topology an *IndexError (errors.Is ErrIndex). Errors
// from the underlying store are returned unchanged.
package pfb
