package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hydroframe/pfb/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressed blob suffixes understood by DecompressingStore.
const (
	SuffixZstd = ".zst"
	SuffixLZ4  = ".lz4"
)

var zstdDecoderPool sync.Pool

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// DecompressingStore serves zstd (.zst) and LZ4 frame (.lz4) compressed
// blobs as if they were stored plain. A compressed blob is decompressed
// whole into memory on Open, so it suits small files and the sequential
// read path.
//
// Opening "a.pfb" tries "a.pfb", then "a.pfb.zst", then "a.pfb.lz4".
// Opening a name that already carries a suffix decompresses that blob.
type DecompressingStore struct {
	inner Store
	rc    *resource.Controller
}

// NewDecompressingStore wraps inner. When rc is not nil, decompressed bytes
// are charged to its memory budget until the blob is closed.
func NewDecompressingStore(inner Store, rc *resource.Controller) *DecompressingStore {
	return &DecompressingStore{inner: inner, rc: rc}
}

// Open opens name, decompressing it when needed.
func (s *DecompressingStore) Open(ctx context.Context, name string) (Blob, error) {
	if strings.HasSuffix(name, SuffixZstd) || strings.HasSuffix(name, SuffixLZ4) {
		return s.openCompressed(ctx, name)
	}
	b, err := s.inner.Open(ctx, name)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return b, err
	}
	for _, suffix := range []string{SuffixZstd, SuffixLZ4} {
		b, err := s.openCompressed(ctx, name+suffix)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return b, err
		}
	}
	return nil, err
}

// List returns the names under prefix with compression suffixes removed.
func (s *DecompressingStore) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := s.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		n = strings.TrimSuffix(n, SuffixZstd)
		names[i] = strings.TrimSuffix(n, SuffixLZ4)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

func (s *DecompressingStore) openCompressed(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	size := b.Size()
	if err := s.rc.AcquireMemory(ctx, size); err != nil {
		return nil, err
	}
	data, err := decompress(ctx, b, name)
	s.rc.ReleaseMemory(size)
	if err != nil {
		return nil, err
	}

	if err := s.rc.AcquireMemory(ctx, int64(len(data))); err != nil {
		return nil, err
	}
	return &decompressedBlob{memoryBlob: memoryBlob{data: data}, rc: s.rc}, nil
}

func decompress(ctx context.Context, b Blob, name string) ([]byte, error) {
	compressed := make([]byte, b.Size())
	if n, err := b.ReadAt(ctx, compressed, 0); n != len(compressed) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("blobstore: read %s: %w", name, err)
	}

	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(name, SuffixZstd) {
		data, err = decodeZstd(compressed)
	} else {
		data, err = io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: decompress %s: %w", name, err)
	}
	return data, nil
}

func decodeZstd(src []byte) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, err
	}
	defer putZstdDecoder(dec)
	return dec.DecodeAll(src, nil)
}

type decompressedBlob struct {
	memoryBlob
	rc     *resource.Controller
	closed atomic.Bool
}

func (b *decompressedBlob) Close() error {
	if !b.closed.Swap(true) {
		b.rc.ReleaseMemory(int64(len(b.data)))
	}
	return nil
}
