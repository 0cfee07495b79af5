package cache

import "context"

// CacheKey identifies one fixed-size block of a blob.
type CacheKey struct {
	// Path is the blob name as given to the store.
	Path string
	// Block is the block index, i.e. byte offset / block size.
	Block uint64
}

// head reports whether the block holds the start of the file. For a PFB
// file that is the file header and the first subgrid header, which every
// open reads.
func (k CacheKey) head() bool { return k.Block == 0 }

// BlockCache caches immutable blocks of blobs. Returned slices are
// read-only.
type BlockCache interface {
	// Get returns a cached block.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. b must not be modified afterwards.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Forget drops every block of the named blob.
	Forget(path string)
	Close() error
	// Stats returns hit and miss counts.
	Stats() (hits, misses int64)
}
