package cache

import (
	"context"
	"errors"
)

// TieredCache checks a memory cache before a disk cache. Disk hits are
// promoted to memory; new blocks go to both tiers.
type TieredCache struct {
	l1 BlockCache
	l2 BlockCache
}

// NewTieredCache combines a fast l1 with a larger l2.
func NewTieredCache(l1, l2 BlockCache) *TieredCache {
	return &TieredCache{l1: l1, l2: l2}
}

// Get returns a block from the first tier that has it.
func (t *TieredCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	if b, ok := t.l1.Get(ctx, key); ok {
		return b, true
	}
	b, ok := t.l2.Get(ctx, key)
	if ok {
		t.l1.Set(ctx, key, b)
	}
	return b, ok
}

// Set caches a block in both tiers.
func (t *TieredCache) Set(ctx context.Context, key CacheKey, b []byte) {
	t.l1.Set(ctx, key, b)
	t.l2.Set(ctx, key, b)
}

// Forget drops path from both tiers.
func (t *TieredCache) Forget(path string) {
	t.l1.Forget(path)
	t.l2.Forget(path)
}

// Close closes both tiers.
func (t *TieredCache) Close() error {
	return errors.Join(t.l1.Close(), t.l2.Close())
}

// Stats reports the l1 hits plus the l2 hits, and the l2 misses, so that
// misses count blocks fetched from the backing store.
func (t *TieredCache) Stats() (hits, misses int64) {
	h1, _ := t.l1.Stats()
	h2, m2 := t.l2.Stats()
	return h1 + h2, m2
}
