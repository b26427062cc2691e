// Package graphgo provides a compact in-memory graph engine for Go.
//
// Graphgo holds graphs with tens to hundreds of millions of edges in a
// cache-friendly compressed sparse row (CSR) form and serves exact structural
// queries and randomized sampling workloads on top of it:
//
//   - Dense 32-bit node ids with a bijective string vocabulary
//   - CSR adjacency with per-node sorted neighbors (binary-searched HasEdge)
//   - Optional Elias-Fano succinct destination encoding (2-4x smaller, same answers)
//   - Lock-free concurrent construction over pre-computed edge slots
//   - Connected components (union-find) and strongly connected components (iterative Tarjan)
//   - Minimum spanning forest (Kruskal) and randomized parallel spanning trees
//   - Second-order (node2vec-style) random walks and negative edge sampling
//   - Set algebra over graphs: union, intersection, difference, symmetric difference
//   - Sectioned binary snapshots with checksums, compression, and zero-copy mmap loads
//   - Pluggable blob storage for snapshots (local, in-memory, S3, MinIO)
//
// # Quick Start
//
// Build a graph from string-keyed edges and query it:
//
//	g, err := graphgo.FromEdges([]graphgo.Edge{
//	    {Source: "a", Destination: "b"},
//	    {Source: "b", Destination: "c"},
//	    {Source: "c", Destination: "a"},
//	}, graphgo.WithName("triangle"))
//	if err != nil {
//	    panic(err)
//	}
//
//	id, _ := g.NodeID("a")
//	for neighbor := range g.Neighbors(id) {
//	    fmt.Println(g.MustNodeKey(neighbor))
//	}
//
// # Immutability
//
// A graph is built once and never mutated: read queries are safe for
// unbounded concurrent readers without locks, and every "mutating" operation
// (operators, remapping, transforms) returns a fresh graph. The single
// documented exception is SetDirected, which toggles the directedness flag
// in place without touching the edge arrays.
//
// # Randomized Workloads
//
// Random walks and negative sampling take explicit 64-bit seeds and are
// reproducible for a fixed seed:
//
//	params, _ := graphgo.NewWalkParameters(80,
//	    graphgo.WithIterations(10),
//	    graphgo.WithWalkWeights(weights),
//	    graphgo.WithRandomState(42),
//	)
//	walks, err := g.CompleteWalks(ctx, params)
//
// # Snapshots
//
// Graphs serialize to a sectioned binary snapshot with per-section checksums
// and optional zstd/lz4 compression. Snapshots saved uncompressed can be
// loaded with zero-copy mmap, aliasing the graph arrays directly onto the
// mapped file:
//
//	_ = g.SaveToFile("graph.bin")
//	g2, _ := graphgo.LoadFromFileMmap("graph.bin")
//	defer g2.Close()
package graphgo
