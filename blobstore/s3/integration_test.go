package s3

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStore_Integration runs against a real bucket named by
// GRAPHGO_TEST_S3_BUCKET and skips otherwise.
func TestStore_Integration(t *testing.T) {
	bucket := os.Getenv("GRAPHGO_TEST_S3_BUCKET")
	if bucket == "" {
		t.Skip("GRAPHGO_TEST_S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		t.Skipf("AWS config not available: %v", err)
	}

	store := NewStore(s3.NewFromConfig(cfg), bucket, "graphgo-test/")

	data := []byte("sectioned snapshot bytes")
	require.NoError(t, store.Put(ctx, "it/1.grp", bytes.NewReader(data)))
	defer func() { _ = store.Delete(ctx, "it/1.grp") }()

	rc, err := store.Get(ctx, "it/1.grp")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "it/")
	require.NoError(t, err)
	assert.Contains(t, names, "it/1.grp")

	require.NoError(t, store.Delete(ctx, "it/1.grp"))
}
