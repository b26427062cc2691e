// Package blobstore provides storage abstraction for graph snapshots.
//
// BlobStore is the interface for reading and writing named, immutable blobs.
// A blob is a whole object: Put replaces it atomically and Get streams it
// back, which matches how snapshots are produced and consumed (written once,
// then read front to back by the snapshot loader). Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with atomic temp-file writes
//   - CachingStore: read-through LRU wrapper for remote stores
//   - s3.Store: Amazon S3 with multipart uploads (and a DynamoDB-backed
//     snapshot catalog for tracking the latest version per graph)
//   - minio.Store: MinIO and other S3-compatible object storage
//
// # Usage
//
// Stores move opaque bytes; the snapshot encoding stays in the graph
// package:
//
//	var buf bytes.Buffer
//	if err := g.SaveToWriter(&buf); err != nil { ... }
//	if err := store.Put(ctx, "social/3.grp", &buf); err != nil { ... }
//
//	rc, err := store.Get(ctx, "social/3.grp")
//	if err != nil { ... }
//	defer rc.Close()
//	g, err := graphgo.LoadFromReader(rc)
package blobstore
