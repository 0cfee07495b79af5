package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hydroframe/pfb"
	"github.com/hydroframe/pfb/blobstore"
	"github.com/hydroframe/pfb/blobstore/minio"
	"github.com/hydroframe/pfb/blobstore/s3"
	"github.com/hydroframe/pfb/codec"
	"github.com/hydroframe/pfb/internal/cache"
	"github.com/hydroframe/pfb/resource"
	"github.com/spf13/pflag"
)

// cli holds the flags shared by every subcommand.
type cli struct {
	ctx context.Context

	store         string
	root          string
	bucket        string
	prefix        string
	endpoint      string
	region        string
	accessKey     string
	secretKey     string
	insecure      bool
	prefetchBelow int64
	decompress    bool
	cacheMB       int64
	cacheDir      string
	cacheDirMB    int64
	ioLimit       int64
	memoryLimitMB int64
	topology      string
	noHeaderCheck bool
	headerLayout  string
	verbose       bool
	format        string
	codecName     string

	rc      *resource.Controller
	closers []func() error
}

func (c *cli) registerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.store, "store", "local", "byte source: local (mmap), file (pread), s3 or minio")
	fs.StringVar(&c.root, "root", "", "root directory for local and file stores (default: the file's directory)")
	fs.StringVar(&c.bucket, "bucket", "", "bucket for s3 and minio stores")
	fs.StringVar(&c.prefix, "prefix", "", "key prefix for s3 and minio stores")
	fs.StringVar(&c.endpoint, "endpoint", "", "object store endpoint (s3-compatible URL, or host:port for minio)")
	fs.StringVar(&c.region, "region", "", "AWS region for the s3 store")
	fs.StringVar(&c.accessKey, "access-key", os.Getenv("MINIO_ACCESS_KEY"), "minio access key")
	fs.StringVar(&c.secretKey, "secret-key", os.Getenv("MINIO_SECRET_KEY"), "minio secret key")
	fs.BoolVar(&c.insecure, "insecure", false, "use plain HTTP for minio")
	fs.Int64Var(&c.prefetchBelow, "prefetch-below", 0, "s3: download objects up to this many bytes whole instead of ranged reads")
	fs.BoolVar(&c.decompress, "decompress", false, "fall back to .zst and .lz4 copies of missing files")
	fs.Int64Var(&c.cacheMB, "cache-mb", 0, "in-memory block cache size in MiB (0 disables)")
	fs.StringVar(&c.cacheDir, "cache-dir", "", "on-disk block cache directory behind the memory cache")
	fs.Int64Var(&c.cacheDirMB, "cache-dir-mb", 4096, "on-disk block cache size in MiB")
	fs.Int64Var(&c.ioLimit, "io-limit", 0, "maximum read throughput in bytes per second (0 is unlimited)")
	fs.Int64Var(&c.memoryLimitMB, "memory-limit-mb", 0, "memory budget for decoded data and caches in MiB (0 tracks only)")
	fs.StringVar(&c.topology, "topology", "", "process grid P,Q,R when it cannot be derived from the first subgrid")
	fs.BoolVar(&c.noHeaderCheck, "no-header-check", false, "skip verifying each subgrid's stored header")
	fs.StringVar(&c.headerLayout, "header-layout", "detect", "file header layout: detect, padded (count at 64) or packed (count at 60, as ParFlow writes)")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging to stderr")
	fs.StringVar(&c.format, "format", "table", "output format: table or json")
	fs.StringVar(&c.codecName, "codec", "go-json", "JSON encoder for --format json: json or go-json")
}

func (c *cli) logger() *pfb.Logger {
	if c.verbose {
		return pfb.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return pfb.NewTextLogger(slog.LevelWarn)
}

func (c *cli) controller() *resource.Controller {
	if c.rc == nil {
		c.rc = resource.NewController(resource.Config{
			MemoryLimitBytes:   c.memoryLimitMB << 20,
			MaxWorkers:         1 << 10,
			IOLimitBytesPerSec: c.ioLimit,
		})
	}
	return c.rc
}

// openStore builds the configured store. dir is the directory used by
// local and file stores when --root is not set.
func (c *cli) openStore(dir string) (blobstore.Store, error) {
	var (
		store blobstore.Store
		err   error
	)
	root := c.root
	if root == "" {
		root = dir
	}
	switch c.store {
	case "local":
		store = blobstore.NewLocalStore(root)
	case "file":
		store = blobstore.NewFileStore(root)
	case "s3":
		if c.bucket == "" {
			return nil, errors.New("--bucket is required for the s3 store")
		}
		opts := []s3.Option{s3.WithPrefix(c.prefix), s3.WithPrefetchBelow(c.prefetchBelow)}
		if c.region != "" {
			opts = append(opts, s3.WithRegion(c.region))
		}
		if c.endpoint != "" {
			opts = append(opts, s3.WithEndpoint(c.endpoint))
		}
		store, err = s3.New(c.ctx, c.bucket, opts...)
	case "minio":
		if c.bucket == "" || c.endpoint == "" {
			return nil, errors.New("--bucket and --endpoint are required for the minio store")
		}
		client, dialErr := minio.Dial(c.endpoint, c.accessKey, c.secretKey, !c.insecure)
		if dialErr != nil {
			return nil, dialErr
		}
		store = minio.NewStore(client, c.bucket, c.prefix)
	default:
		return nil, fmt.Errorf("unknown store %q", c.store)
	}
	if err != nil {
		return nil, err
	}

	if c.cacheMB > 0 || c.cacheDir != "" {
		bc, err := c.blockCache()
		if err != nil {
			return nil, err
		}
		store = blobstore.NewCachingStore(store, bc, blobstore.DefaultBlockSize)
	}
	if c.decompress {
		store = blobstore.NewDecompressingStore(store, c.controller())
	}
	return store, nil
}

func (c *cli) blockCache() (cache.BlockCache, error) {
	var mem cache.BlockCache
	if c.cacheMB > 0 {
		mem = cache.NewShardedLRUBlockCache(c.cacheMB<<20, c.controller())
	}
	if c.cacheDir == "" {
		c.closers = append(c.closers, mem.Close)
		return mem, nil
	}
	disk, err := cache.NewDiskBlockCache(cache.DiskCacheConfig{RootDir: c.cacheDir, MaxSizeBytes: c.cacheDirMB << 20})
	if err != nil {
		return nil, err
	}
	var bc cache.BlockCache = disk
	if mem != nil {
		bc = cache.NewTieredCache(mem, disk)
	}
	c.closers = append(c.closers, bc.Close)
	return bc, nil
}

func (c *cli) close() {
	for _, fn := range c.closers {
		_ = fn()
	}
	c.closers = nil
}

func (c *cli) fileOptions() ([]pfb.Option, error) {
	layout, err := pfb.ParseHeaderLayout(c.headerLayout)
	if err != nil {
		return nil, fmt.Errorf("--header-layout: %w", err)
	}
	opts := []pfb.Option{
		pfb.WithLogger(c.logger()),
		pfb.WithHeaderCheck(!c.noHeaderCheck),
		pfb.WithHeaderLayout(layout),
	}
	if c.ioLimit > 0 {
		opts = append(opts, pfb.WithResourceController(c.controller()))
	}
	if c.topology != "" {
		v, err := parseInts(c.topology, 3)
		if err != nil {
			return nil, fmt.Errorf("--topology: %w", err)
		}
		opts = append(opts, pfb.WithTopology(v[0], v[1], v[2]))
	}
	return opts, nil
}

// openFile opens a single file named on the command line. For local and
// file stores without --root the path is split into directory and name.
func (c *cli) openFile(arg string, extra ...pfb.Option) (*pfb.File, error) {
	dir, name := "", arg
	if (c.store == "local" || c.store == "file") && c.root == "" {
		dir, name = filepath.Dir(arg), filepath.Base(arg)
	}
	store, err := c.openStore(dir)
	if err != nil {
		return nil, err
	}
	opts, err := c.fileOptions()
	if err != nil {
		return nil, err
	}
	return pfb.Open(c.ctx, store, name, append(opts, extra...)...)
}

func (c *cli) checkFormat() error {
	if c.format != "table" && c.format != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", c.format)
	}
	if _, ok := codec.ByName(c.codecName); !ok {
		return fmt.Errorf("unknown codec %q (want json or go-json)", c.codecName)
	}
	return nil
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseCoords(args []string) (x, y, z int, err error) {
	v, err := parseInts(strings.Join(args, ","), 3)
	if err != nil {
		return 0, 0, 0, err
	}
	return v[0], v[1], v[2], nil
}

func closeFile(f *pfb.File, w io.Writer) {
	if err := f.Close(); err != nil {
		fmt.Fprintf(w, "close: %v\n", err)
	}
}
