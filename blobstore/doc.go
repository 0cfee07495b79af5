// Package blobstore provides read-only access to PFB files wherever they are
// stored.
//
// Store opens named blobs and lists them by prefix. A Blob is a sized,
// context-aware io.ReaderAt. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - FileStore: local filesystem, positioned reads on file handles
//   - MemoryStore: in-memory, for tests and fixtures
//   - s3.Store: Amazon S3 with ranged GETs
//   - minio.Store: MinIO or any S3-compatible server
//
// # Wrappers
//
//   - CachingStore: fixed-size block cache in front of any store
//   - DecompressingStore: transparent .zst and .lz4 decompression
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
//	type Blob interface {
//	    ReadAt(ctx, p, off) (int, error)
//	    Size() int64
//	    Close() error
//	}
//
// Blobs whose bytes are already in memory can also implement Mappable so
// that readers slice them instead of copying.
package blobstore
