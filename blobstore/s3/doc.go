// Package s3 provides a BlobStore implementation backed by Amazon S3, plus
// a DynamoDB-backed SnapshotCatalog that tracks the latest snapshot per
// graph.
//
// Put streams through the s3/manager multipart uploader, so snapshots larger
// than a single PutObject limit upload without buffering in memory. Get
// streams the object body straight into the snapshot reader.
//
// # Basic Usage
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := s3blob.NewStore(s3.NewFromConfig(cfg), "my-bucket", "graphs/")
//
//	var buf bytes.Buffer
//	if err := g.SaveToWriter(&buf); err != nil { ... }
//	if err := store.Put(ctx, "social/7.grp", &buf); err != nil { ... }
//
// # Snapshot Catalog
//
// S3 has no compare-and-swap, so "which snapshot is current for graph X" is
// kept in DynamoDB. Commit writes a new version with a conditional put;
// Latest returns the newest committed entry, including the structural hash
// the loader verifies after download.
//
//	catalog := s3blob.NewSnapshotCatalog(dynamodb.NewFromConfig(cfg), "graphgo-snapshots")
//	err := catalog.Commit(ctx, s3blob.CatalogEntry{
//	    Graph: "social", Key: "social/7.grp",
//	    Hash: g.Hash(), NodeCount: g.NodeCount(), EdgeCount: g.DirectedEdgeCount(),
//	})
package s3
