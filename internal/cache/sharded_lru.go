package cache

import (
	"context"
	"hash/maphash"

	"github.com/hydroframe/pfb/resource"
)

const numShards = 64

// ShardedLRUBlockCache spreads blocks over LRU shards so that workers
// reading different subgrids rarely share a lock. Blocks of one file land
// on different shards.
type ShardedLRUBlockCache struct {
	shards [numShards]*LRUBlockCache
	seed   maphash.Seed
}

// NewShardedLRUBlockCache splits capacity evenly across the shards.
func NewShardedLRUBlockCache(capacity int64, rc *resource.Controller) *ShardedLRUBlockCache {
	s := &ShardedLRUBlockCache{seed: maphash.MakeSeed()}
	per := max(capacity/numShards, 1)
	for i := range s.shards {
		s.shards[i] = NewLRUBlockCache(per, rc)
	}
	return s
}

func (s *ShardedLRUBlockCache) shard(key CacheKey) *LRUBlockCache {
	h := maphash.String(s.seed, key.Path) ^ (key.Block * 0x9e3779b97f4a7c15)
	return s.shards[h%numShards]
}

func (s *ShardedLRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	return s.shard(key).Get(ctx, key)
}

func (s *ShardedLRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	s.shard(key).Set(ctx, key, b)
}

func (s *ShardedLRUBlockCache) Forget(path string) {
	for _, sh := range s.shards {
		sh.Forget(path)
	}
}

func (s *ShardedLRUBlockCache) Close() error { return nil }

func (s *ShardedLRUBlockCache) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the cached bytes across all shards.
func (s *ShardedLRUBlockCache) Size() int64 {
	var n int64
	for _, sh := range s.shards {
		n += sh.Size()
	}
	return n
}
