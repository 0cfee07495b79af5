// Package resource limits the resources used while reading many PFB files or
// subgrids at once.
//
// The Controller manages three resource types:
//
//   - Memory: Track and limit bytes held by decoded grids and caches
//   - Concurrency: Limit the number of reads in flight
//   - IO: Token-bucket rate limit on bytes read from a store
//
// # Usage
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:         8,
//	    IOLimitBytesPerSec: 200 << 20, // 200MB/s
//	})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
//	if err := rc.AcquireIO(ctx, n); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
