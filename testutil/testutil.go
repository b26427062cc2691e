package testutil

import (
	"fmt"
	"math/rand"
	"sync"
)

// EdgeTuple is one string-keyed edge with a positive weight. It mirrors the
// fields of graphgo.Edge that every fixture needs; tests convert with a
// one-line loop.
type EdgeTuple struct {
	Source      string
	Destination string
	Weight      float32
}

// NodeName returns the canonical fixture name for node i ("n0", "n1", ...).
func NodeName(i int) string {
	return fmt.Sprintf("n%d", i)
}

// RNG is a seeded, thread-safe random generator for fixture construction.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG creates a generator with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

// Reset rewinds the generator to its initial seed, so two passes produce
// identical fixtures.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// RandomEdges draws edgeCount edges over a universe of nodeCount node names.
// Self-loops and duplicates may occur, which is deliberate: builders are
// expected to handle them per policy. Weights are uniform in (0, 1].
func (r *RNG) RandomEdges(nodeCount, edgeCount int) []EdgeTuple {
	r.mu.Lock()
	defer r.mu.Unlock()

	edges := make([]EdgeTuple, edgeCount)
	for i := range edges {
		edges[i] = EdgeTuple{
			Source:      NodeName(r.rand.Intn(nodeCount)),
			Destination: NodeName(r.rand.Intn(nodeCount)),
			Weight:      1 - r.rand.Float32(),
		}
	}
	return edges
}

// RandomConnectedEdges returns a random spanning chain over all nodeCount
// nodes plus extraCount random extra edges, so the resulting undirected
// graph is connected by construction.
func (r *RNG) RandomConnectedEdges(nodeCount, extraCount int) []EdgeTuple {
	r.mu.Lock()
	perm := r.rand.Perm(nodeCount)
	r.mu.Unlock()

	edges := make([]EdgeTuple, 0, nodeCount-1+extraCount)
	for i := 1; i < nodeCount; i++ {
		edges = append(edges, EdgeTuple{
			Source:      NodeName(perm[i-1]),
			Destination: NodeName(perm[i]),
			Weight:      1,
		})
	}
	return append(edges, r.RandomEdges(nodeCount, extraCount)...)
}

// Chain returns the path graph n0-n1-...-n(n-1).
func Chain(n int) []EdgeTuple {
	edges := make([]EdgeTuple, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, EdgeTuple{Source: NodeName(i - 1), Destination: NodeName(i), Weight: 1})
	}
	return edges
}

// Clique returns the complete graph on n nodes, one edge per unordered pair.
func Clique(n int) []EdgeTuple {
	edges := make([]EdgeTuple, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, EdgeTuple{Source: NodeName(i), Destination: NodeName(j), Weight: 1})
		}
	}
	return edges
}

// Grid returns a rows x cols lattice with edges between horizontal and
// vertical neighbors. Node (r, c) is named NodeName(r*cols + c).
func Grid(rows, cols int) []EdgeTuple {
	edges := make([]EdgeTuple, 0, 2*rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			at := r*cols + c
			if c+1 < cols {
				edges = append(edges, EdgeTuple{Source: NodeName(at), Destination: NodeName(at + 1), Weight: 1})
			}
			if r+1 < rows {
				edges = append(edges, EdgeTuple{Source: NodeName(at), Destination: NodeName(at + cols), Weight: 1})
			}
		}
	}
	return edges
}
