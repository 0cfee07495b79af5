package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hydroframe/pfb/resource"
)

// LRUBlockCache is a byte-bounded LRU over file blocks. Head blocks are
// kept on their own list and only evicted once no body block is left, so a
// scan over many subgrids does not push out the headers needed to reopen
// the files.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[CacheKey]*list.Element
	heads    *list.List
	body     *list.List
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type block struct {
	key  CacheKey
	data []byte
}

// NewLRUBlockCache creates a cache holding at most capacity bytes. A non-nil
// rc is charged for every cached byte.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity: capacity,
		items:    make(map[CacheKey]*list.Element),
		heads:    list.New(),
		body:     list.New(),
		rc:       rc,
	}
}

func (c *LRUBlockCache) listFor(key CacheKey) *list.List {
	if key.head() {
		return c.heads
	}
	return c.body
}

func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.listFor(key).MoveToFront(e)
	return e.Value.(*block).data, true
}

// Set caches a block. Blocks larger than the capacity, or that the resource
// controller refuses, are dropped.
func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(b))
	if n > c.capacity {
		return
	}
	if e, ok := c.items[key]; ok {
		c.remove(e)
	}
	c.makeRoom(n)
	if !c.rc.TryAcquireMemory(n) {
		return
	}
	c.items[key] = c.listFor(key).PushFront(&block{key: key, data: b})
	c.size += n
}

// makeRoom evicts until n more bytes fit. Local eviction runs first so the
// released bytes are available to the controller.
func (c *LRUBlockCache) makeRoom(n int64) {
	for c.size+n > c.capacity {
		e := c.body.Back()
		if e == nil {
			e = c.heads.Back()
		}
		if e == nil {
			return
		}
		c.remove(e)
	}
}

func (c *LRUBlockCache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.items {
		if key.Path == path {
			c.remove(e)
		}
	}
}

func (c *LRUBlockCache) remove(e *list.Element) {
	b := e.Value.(*block)
	c.listFor(b.key).Remove(e)
	delete(c.items, b.key)
	n := int64(len(b.data))
	c.size -= n
	c.rc.ReleaseMemory(n)
}

func (c *LRUBlockCache) Close() error { return nil }

func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the cached bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
