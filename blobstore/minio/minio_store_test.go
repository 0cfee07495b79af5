package minio

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/hydroframe/pfb/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance at
// MINIO_ENDPOINT (default localhost:9000). Skipped when unreachable.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := "test-pfb"

	client, err := Dial(endpoint, "minioadmin", "minioadmin", false)
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "WY2003/test.pfb", data))
	defer func() {
		_ = client.RemoveObject(ctx, bucket, "test-prefix/WY2003/test.pfb", minio.RemoveObjectOptions{})
	}()

	blob, err := store.Open(ctx, "WY2003/test.pfb")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "minio", string(buf))

	n, err = blob.ReadAt(ctx, make([]byte, 10), 12)
	assert.Equal(t, 5, n)
	assert.ErrorIs(t, err, io.EOF)

	names, err := store.List(ctx, "WY2003/")
	require.NoError(t, err)
	assert.Contains(t, names, "WY2003/test.pfb")

	_, err = store.Open(ctx, "WY2003/missing.pfb")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
