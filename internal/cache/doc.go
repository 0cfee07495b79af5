// Package cache provides LRU caching for fixed-size blob blocks.
//
// # Block Cache (RAM)
//
// LRUBlockCache is a byte-bounded LRU that evicts head blocks (block 0,
// holding the PFB file header) only after every body block is gone.
// ShardedLRUBlockCache spreads blocks over 64 of them so concurrent subgrid
// reads rarely contend. Both can charge cached bytes to a
// resource.Controller.
//
// # Disk Cache (L2)
//
// For object storage, DiskBlockCache keeps fetched blocks on local disk:
//   - Async writes bounded by a semaphore
//   - LRU eviction with a configurable size limit
//   - Rebuilds its index from disk on startup
//
// TieredCache layers a RAM cache over a disk cache.
package cache
