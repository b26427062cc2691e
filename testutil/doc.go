// Package testutil provides testing utilities for graphgo.
//
// This package is intended for use in tests and benchmarks only. It
// generates deterministic string-keyed edge lists that feed straight into
// graphgo.FromEdges, so property tests can run against graphs that are
// larger and messier than hand-written fixtures while staying reproducible.
//
// # Deterministic Random Graphs
//
//	rng := testutil.NewRNG(42)
//	edges := rng.RandomEdges(100, 400)   // 400 edges over up to 100 nodes
//
// # Structured Fixtures
//
//	testutil.Chain(10)    // n0-n1-...-n9
//	testutil.Clique(5)    // complete graph on 5 nodes
//	testutil.Grid(4, 6)   // 4x6 lattice
//
// The generators emit EdgeTuple values rather than graphgo.Edge so the
// package stays import-cycle-free; tests convert with their own helper.
package testutil
