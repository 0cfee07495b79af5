package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hydroframe/pfb/internal/fs"
	"golang.org/x/sync/semaphore"
)

// DiskCacheConfig holds configuration for the disk cache.
type DiskCacheConfig struct {
	// RootDir is the directory where cache files are stored.
	RootDir string
	// MaxSizeBytes is the maximum size of the cache in bytes.
	MaxSizeBytes int64
	// MaxConcurrentWrites limits background disk writes.
	// Defaults to 16 if <= 0.
	MaxConcurrentWrites int64
	// FileSystem defaults to fs.Default.
	FileSystem fs.FileSystem
}

// DiskBlockCache implements BlockCache backed by the local filesystem. It
// keeps blocks fetched from object storage across runs.
//
// Blocks are stored as <RootDir>/<Path>/<Block>.blk.
type DiskBlockCache struct {
	mu          sync.Mutex
	rootDir     string
	fsys        fs.FileSystem
	maxSize     int64
	currentSize int64

	writeSem *semaphore.Weighted

	items   map[CacheKey]*lruEntry
	lruHead *lruEntry
	lruTail *lruEntry
	wg      sync.WaitGroup

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key        CacheKey
	size       int64
	filePath   string
	next, prev *lruEntry
}

const emptyPathDir = "_"

// NewDiskBlockCache creates a disk-backed block cache and indexes any blocks
// already present under config.RootDir.
func NewDiskBlockCache(config DiskCacheConfig) (*DiskBlockCache, error) {
	fsys := config.FileSystem
	if fsys == nil {
		fsys = fs.Default
	}
	if err := fsys.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskBlockCache{
		rootDir:  config.RootDir,
		fsys:     fsys,
		maxSize:  config.MaxSizeBytes,
		items:    make(map[CacheKey]*lruEntry),
		writeSem: semaphore.NewWeighted(maxWrites),
	}
	c.scanExistingFiles()
	return c, nil
}

func (c *DiskBlockCache) scanExistingFiles() {
	_ = filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep scanning past unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		key, ok := c.parsePathToKey(path)
		if !ok {
			return nil
		}
		c.addToLRU(key, path, info.Size())
		return nil
	})
}

func (c *DiskBlockCache) encodeKeyToRelPath(key CacheKey) string {
	dir := emptyPathDir
	if key.Path != "" {
		dir = filepath.FromSlash(key.Path)
	}
	return filepath.Join(dir, fmt.Sprintf("%d.blk", key.Block))
}

func (c *DiskBlockCache) parsePathToKey(absPath string) (CacheKey, bool) {
	relPath, err := filepath.Rel(c.rootDir, absPath)
	if err != nil {
		return CacheKey{}, false
	}
	dir, file := filepath.Split(relPath)

	var k CacheKey
	if n, err := fmt.Sscanf(file, "%d.blk", &k.Block); err != nil || n != 1 {
		return CacheKey{}, false
	}
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir != emptyPathDir {
		k.Path = filepath.ToSlash(dir)
	}
	return k, true
}

// Get reads a cached block from disk.
func (c *DiskBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	ent, ok := c.items[key]
	if ok {
		c.moveToFront(ent)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := fs.ReadFile(c.fsys, ent.filePath)
	if err != nil {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur == ent {
			c.removeEntry(ent)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set writes a block in the background. Blocks are immutable, so an existing
// entry is never rewritten. When all write slots are busy the block is
// dropped.
func (c *DiskBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		c.moveToFront(ent)
		c.mu.Unlock()
		return
	}
	size := int64(len(b))
	if size > c.maxSize {
		c.mu.Unlock()
		return
	}
	absPath := filepath.Join(c.rootDir, c.encodeKeyToRelPath(key))
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		if err := writeFileAtomic(c.fsys, absPath, b); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.items[key]; ok {
			return
		}
		for c.currentSize+size > c.maxSize && c.lruTail != nil {
			c.evictOne()
		}
		c.addToLRU(key, absPath, size)
	}()
}

func writeFileAtomic(fsys fs.FileSystem, path string, b []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmpName := filepath.Join(filepath.Dir(path), fmt.Sprintf("tmp-blk-%d", rand.Uint64()))
	tmp, err := fsys.OpenFile(tmpName, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = fsys.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		_ = fsys.Remove(tmpName)
		return err
	}
	return nil
}

// Forget removes every block of path and its files.
func (c *DiskBlockCache) Forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*lruEntry
	for k, ent := range c.items {
		if k.Path == path {
			toRemove = append(toRemove, ent)
		}
	}
	for _, ent := range toRemove {
		_ = c.fsys.Remove(ent.filePath)
		c.removeEntry(ent)
	}
}

// Close waits for all background writes to complete.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Stats returns hit and miss counts.
func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the bytes currently indexed.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// LRU helpers; callers hold c.mu.

func (c *DiskBlockCache) addToLRU(key CacheKey, path string, size int64) {
	ent := &lruEntry{key: key, filePath: path, size: size}
	c.items[key] = ent
	c.currentSize += size

	if c.lruHead == nil {
		c.lruHead = ent
		c.lruTail = ent
		return
	}
	ent.next = c.lruHead
	c.lruHead.prev = ent
	c.lruHead = ent
}

func (c *DiskBlockCache) moveToFront(ent *lruEntry) {
	if c.lruHead == ent {
		return
	}
	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if c.lruTail == ent {
		c.lruTail = ent.prev
	}
	ent.next = c.lruHead
	ent.prev = nil
	if c.lruHead != nil {
		c.lruHead.prev = ent
	}
	c.lruHead = ent
	if c.lruTail == nil {
		c.lruTail = ent
	}
}

func (c *DiskBlockCache) removeEntry(ent *lruEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.lruHead = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.lruTail = ent.prev
	}
	ent.next, ent.prev = nil, nil
	delete(c.items, ent.key)
	c.currentSize -= ent.size
}

func (c *DiskBlockCache) evictOne() {
	if c.lruTail == nil {
		return
	}
	_ = c.fsys.Remove(c.lruTail.filePath)
	c.removeEntry(c.lruTail)
}
