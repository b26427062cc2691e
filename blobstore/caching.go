package blobstore

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/graphgo/internal/cache"
)

// CachingStore wraps a BlobStore with a read-through LRU over whole blobs.
// It is meant for remote stores where the same snapshot is fetched
// repeatedly, e.g. several processes re-hydrating the current graph.
//
// Get buffers the blob in memory either way (the loader consumes snapshots
// whole); blobs larger than the cache capacity are served but not retained.
// Put and Delete invalidate the entry, so readers through this store never
// observe a stale blob after a local write.
type CachingStore struct {
	inner BlobStore
	cache *cache.LRU
}

// NewCachingStore creates a CachingStore holding at most maxBytes of blob
// payload.
func NewCachingStore(inner BlobStore, maxBytes int64) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(maxBytes),
	}
}

// Get returns the cached blob, or fetches and caches it on a miss.
func (s *CachingStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	if data, ok := s.cache.Get(name); ok {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	rc, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	s.cache.Set(name, data)
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Put writes through to the inner store and drops the cached entry.
func (s *CachingStore) Put(ctx context.Context, name string, r io.Reader) error {
	s.cache.Remove(name)
	return s.inner.Put(ctx, name, r)
}

// Delete removes the blob and its cached entry.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.Remove(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}
