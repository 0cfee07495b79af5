package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.pfb")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestRegion_ReadAt(t *testing.T) {
	content := []byte("header--subgrid")
	r, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, int64(len(content)), r.Len())
	assert.Equal(t, content, r.Bytes())

	buf := make([]byte, 7)
	n, err := r.ReadAt(buf, 8)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "subgrid", string(buf))

	n, err = r.ReadAt(make([]byte, 10), 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	partial := make([]byte, 10)
	n, err = r.ReadAt(partial, 8)
	assert.Equal(t, 7, n)
	assert.Equal(t, io.EOF, err)

	_, err = r.ReadAt(buf, -1)
	assert.Equal(t, io.EOF, err)
}

func TestRegion_LargerThanHead(t *testing.T) {
	content := make([]byte, 3*headSize+17)
	for i := range content {
		content[i] = byte(i)
	}
	r, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 4)
	_, err = r.ReadAt(buf, int64(len(content)-4))
	require.NoError(t, err)
	assert.Equal(t, content[len(content)-4:], buf)
}

func TestRegion_EmptyFile(t *testing.T) {
	r, err := Open(writeTemp(t, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(0), r.Len())
	assert.Empty(t, r.Bytes())
	_, err = r.ReadAt(make([]byte, 1), 0)
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, r.Close())
}

func TestRegion_AfterClose(t *testing.T) {
	r, err := Open(writeTemp(t, []byte("data")))
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.Nil(t, r.Bytes())
	_, err = r.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegion_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pfb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
