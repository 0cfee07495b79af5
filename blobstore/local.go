package blobstore

import (
	"context"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hydroframe/pfb/internal/mmap"
)

// LocalStore implements Store over a directory, memory-mapping each blob.
// Names are slash-separated paths relative to the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open maps the named file.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	r, err := mmap.Open(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}
	return &localBlob{r: r}, nil
}

// List walks the root and returns regular files whose slash-separated
// relative path starts with prefix.
func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	return walkFiles(ctx, s.root, prefix)
}

func walkFiles(ctx context.Context, root, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			// Skip directories that cannot contain a match.
			if rel != "." && !strings.HasPrefix(rel+"/", prefix) && !strings.HasPrefix(prefix, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && hasPrefix(rel, prefix) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

type localBlob struct {
	r *mmap.Region
}

func (b *localBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.r.ReadAt(p, off)
}

func (b *localBlob) Close() error {
	return b.r.Close()
}

func (b *localBlob) Size() int64 {
	return b.r.Len()
}

func (b *localBlob) Bytes() ([]byte, error) {
	if data := b.r.Bytes(); data != nil || b.r.Len() == 0 {
		return data, nil
	}
	return nil, mmap.ErrClosed
}
