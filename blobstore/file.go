package blobstore

import (
	"context"
	"path/filepath"

	"github.com/hydroframe/pfb/internal/fs"
)

// FileStore implements Store with positioned reads on plain file handles.
// Use it where mapping is undesirable, e.g. on network filesystems where a
// page fault cannot be cancelled.
type FileStore struct {
	root string
	fsys fs.FileSystem
}

// NewFileStore creates a new FileStore rooted at the given directory.
func NewFileStore(root string) *FileStore {
	return NewFileStoreFS(root, fs.Default)
}

// NewFileStoreFS creates a FileStore that opens files through fsys.
func NewFileStoreFS(root string, fsys fs.FileSystem) *FileStore {
	return &FileStore{root: root, fsys: fsys}
}

// Open opens the named file.
func (s *FileStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := fs.Open(s.fsys, filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileBlob{f: f, size: fi.Size()}, nil
}

// List returns regular files under the root whose relative path starts with
// prefix.
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	return walkFiles(ctx, s.root, prefix)
}

type fileBlob struct {
	f    fs.File
	size int64
}

func (b *fileBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.f.ReadAt(p, off)
}

func (b *fileBlob) Close() error { return b.f.Close() }

func (b *fileBlob) Size() int64 { return b.size }
