package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphgo/internal/fs"
	"github.com/hupe1980/graphgo/resource"
)

// storeLifecycle runs the shared Put/Get/Delete/List contract against a
// store implementation.
func storeLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("sectioned snapshot bytes")
	require.NoError(t, store.Put(ctx, "graphs/social/1.grp", bytes.NewReader(data)))
	require.NoError(t, store.Put(ctx, "graphs/social/2.grp", bytes.NewReader([]byte("newer"))))
	require.NoError(t, store.Put(ctx, "graphs/roads/1.grp", bytes.NewReader([]byte("other"))))

	rc, err := store.Get(ctx, "graphs/social/1.grp")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "graphs/social/")
	require.NoError(t, err)
	assert.Equal(t, []string{"graphs/social/1.grp", "graphs/social/2.grp"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Put replaces.
	require.NoError(t, store.Put(ctx, "graphs/social/1.grp", bytes.NewReader([]byte("replaced"))))
	rc, err = store.Get(ctx, "graphs/social/1.grp")
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("replaced"), got)

	// Delete is idempotent.
	require.NoError(t, store.Delete(ctx, "graphs/social/1.grp"))
	require.NoError(t, store.Delete(ctx, "graphs/social/1.grp"))

	_, err = store.Get(ctx, "graphs/social/1.grp")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.List(ctx, "graphs/social/")
	require.NoError(t, err)
	assert.Equal(t, []string{"graphs/social/2.grp"}, names)
}

func TestMemoryStore(t *testing.T) {
	storeLifecycle(t, NewMemoryStore())
}

func TestMemoryStore_GetIsolatedFromLaterPuts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "a", strings.NewReader("before")))
	rc, err := store.Get(ctx, "a")
	require.NoError(t, err)
	defer rc.Close()

	require.NoError(t, store.Put(ctx, "a", strings.NewReader("after!")))

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "before", string(got))
}

func TestLocalStore(t *testing.T) {
	storeLifecycle(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_EmptyRootListsEmpty(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "never-created"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_FailedPutKeepsTarget(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ffs := fs.NewFaultyFS(nil)
	store := NewLocalStore(dir, func(o *LocalOptions) {
		o.FileSystem = ffs
	})

	require.NoError(t, store.Put(ctx, "graph.grp", strings.NewReader("original")))

	// Writes land in temp files, so failing them must leave the target
	// untouched and clean up the temp.
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 2})
	err := store.Put(ctx, "graph.grp", strings.NewReader("replacement"))
	require.ErrorIs(t, err, fs.ErrInjected)

	rc, err := store.Get(ctx, "graph.grp")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "original", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "graph.grp", entries[0].Name())
}

func TestLocalStore_FailedSyncCleansUp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: -1, FailOnSync: true})
	store := NewLocalStore(dir, func(o *LocalOptions) {
		o.FileSystem = ffs
	})

	err := store.Put(ctx, "graph.grp", strings.NewReader("data"))
	require.ErrorIs(t, err, fs.ErrInjected)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_RateLimited(t *testing.T) {
	ctx := context.Background()
	// Generous limit: the wire-up is under test, not the throttling itself.
	c := resource.NewController(func(o *resource.Options) {
		o.IOLimitBytesPerSec = 1 << 20
	})
	store := NewLocalStore(t.TempDir(), func(o *LocalOptions) {
		o.Controller = c
	})

	payload := bytes.Repeat([]byte("x"), 4096)
	require.NoError(t, store.Put(ctx, "limited.grp", bytes.NewReader(payload)))

	rc, err := store.Get(ctx, "limited.grp")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, payload, got)
}

// trackingStore counts Get calls to observe cache effectiveness.
type trackingStore struct {
	BlobStore
	gets int
}

func (s *trackingStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	s.gets++
	return s.BlobStore.Get(ctx, name)
}

func TestCachingStore(t *testing.T) {
	ctx := context.Background()
	inner := &trackingStore{BlobStore: NewMemoryStore()}
	store := NewCachingStore(inner, 1<<20)

	require.NoError(t, store.Put(ctx, "hot.grp", strings.NewReader("payload")))

	readAll := func() string {
		t.Helper()
		rc, err := store.Get(ctx, "hot.grp")
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}

	assert.Equal(t, "payload", readAll())
	assert.Equal(t, "payload", readAll())
	assert.Equal(t, "payload", readAll())
	assert.Equal(t, 1, inner.gets, "repeat reads must come from the cache")

	hits, misses := store.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)

	// Writing through invalidates.
	require.NoError(t, store.Put(ctx, "hot.grp", strings.NewReader("updated")))
	assert.Equal(t, "updated", readAll())
	assert.Equal(t, 2, inner.gets)

	// Deleting drops the blob and the cache entry.
	require.NoError(t, store.Delete(ctx, "hot.grp"))
	_, err := store.Get(ctx, "hot.grp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachingStore_OversizedBlobServedNotRetained(t *testing.T) {
	ctx := context.Background()
	inner := &trackingStore{BlobStore: NewMemoryStore()}
	store := NewCachingStore(inner, 4)

	require.NoError(t, store.Put(ctx, "big.grp", strings.NewReader("larger than capacity")))

	for i := 0; i < 2; i++ {
		rc, err := store.Get(ctx, "big.grp")
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, "larger than capacity", string(b))
	}
	assert.Equal(t, 2, inner.gets)
}
