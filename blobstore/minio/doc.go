// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is a high-performance, S3-compatible object storage system. The
// official MinIO Go client keeps this store compatible with MinIO itself and
// with other S3-compatible systems like Ceph, SeaweedFS, and Garage, without
// pulling in any AWS dependencies.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "graphs/")
//
//	var buf bytes.Buffer
//	if err := g.SaveToWriter(&buf); err != nil { ... }
//	if err := store.Put(ctx, "social/7.grp", &buf); err != nil { ... }
//
// Snapshots stream both ways: Put uploads with an unknown length so the
// client switches to multipart for large graphs, and Get hands the object
// body straight to graphgo.LoadFromReader.
package minio
