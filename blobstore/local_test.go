package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func testDirStore(t *testing.T, newStore func(root string) Store) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"WY2003/a.pfb": "hello world, this is a test blob",
		"WY2003/b.pfb": "b",
		"WY2004/a.pfb": "c",
		"readme.txt":   "d",
	})
	store := newStore(root)
	ctx := context.Background()

	blob, err := store.Open(ctx, "WY2003/a.pfb")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(32), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	n, err = blob.ReadAt(ctx, make([]byte, 10), 28)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = store.Open(ctx, "missing.pfb")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List(ctx, "WY2003/")
	require.NoError(t, err)
	assert.Equal(t, []string{"WY2003/a.pfb", "WY2003/b.pfb"}, names)

	names, err = store.List(ctx, "WY")
	require.NoError(t, err)
	assert.Equal(t, []string{"WY2003/a.pfb", "WY2003/b.pfb", "WY2004/a.pfb"}, names)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

func TestLocalStore(t *testing.T) {
	testDirStore(t, func(root string) Store { return NewLocalStore(root) })
}

func TestFileStore(t *testing.T) {
	testDirStore(t, func(root string) Store { return NewFileStore(root) })
}

func TestLocalStore_Mappable(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pfb": "mapped"})

	blob, err := NewLocalStore(root).Open(context.Background(), "a.pfb")
	require.NoError(t, err)

	m, ok := blob.(Mappable)
	require.True(t, ok)
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "mapped", string(data))

	require.NoError(t, blob.Close())
	_, err = m.Bytes()
	assert.Error(t, err)
}

func TestFileStore_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.pfb": "data"})

	blob, err := NewFileStore(root).Open(context.Background(), "a.pfb")
	require.NoError(t, err)
	defer blob.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = blob.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
