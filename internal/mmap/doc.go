// Package mmap maps PFB files read-only for LocalStore.
//
// A Region is the whole file. Opening one hints the kernel for random
// access and faults in the first page, which holds the file header and the
// first subgrid header:
//
//	r, err := mmap.Open("NLDAS.Temp.daily.mean.001.pfb")
//	if err != nil { ... }
//	defer r.Close()
//
//	sub := r.Bytes()[off : off+n]
//
// Unix uses mmap(2) and madvise(2). Windows uses MapViewOfFile without
// hints.
//
// Reads are safe from any goroutine. Close is idempotent, but slices from
// Bytes must not be used after it.
package mmap
