// Package testutil provides testing utilities for pfb.
//
// This package is intended for use in tests and benchmarks only.
// It builds synthetic PFB files with known layouts and values.
//
// # Synthetic Files
//
//	data := testutil.Build(testutil.Layout{NX: 10, NY: 10, NZ: 1, P: 3, Q: 3, R: 1}, nil)
//	store := blobstore.NewMemoryStore()
//	store.Put(ctx, "test.pfb", data)
//
// With a nil value slice every cell holds CellValue(x, y, z), so a value
// read from the wrong place is easy to spot.
//
// # Random Fields
//
//	rng := testutil.NewRNG(seed)
//	values := rng.Field(nx, ny, nz, 250, 310)
package testutil
