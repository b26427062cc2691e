package graphgo

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphgo/internal/rng"
	"github.com/hupe1980/graphgo/internal/unionfind"
)

// SpanningForest is the result of a spanning-tree construction: one tree per
// connected component. TreeEdges holds len(membership) - ComponentCount
// entries regardless of which algorithm produced it.
type SpanningForest struct {
	// TreeEdges lists the accepted edges as (parent-ish, child-ish) pairs in
	// acceptance order. The pairs are undirected; no orientation is implied.
	TreeEdges [][2]NodeID

	// Membership maps each node to its dense component id, numbered by first
	// appearance in node order.
	Membership []uint32

	ComponentCount   uint32
	MinComponentSize uint32
	MaxComponentSize uint32
}

// TreeEdgeCount returns the number of accepted tree edges.
func (f *SpanningForest) TreeEdgeCount() uint64 {
	return uint64(len(f.TreeEdges))
}

// KruskalSpanningForest builds a deterministic spanning forest: edges are
// considered in increasing weight order (edge-id order on unweighted graphs,
// ties broken by edge id) and an edge is accepted when it joins two trees.
// Edge direction is ignored, so directed graphs are valid input; on weighted
// graphs the result is a minimum spanning forest.
func (g *Graph) KruskalSpanningForest() *SpanningForest {
	n := g.NodeCount()
	if n == 0 {
		return &SpanningForest{}
	}

	forest := unionfind.New(n)
	tree := make([][2]NodeID, 0, n-1)

	accept := func(u, v uint32) {
		if u != v && forest.Union(u, v) {
			tree = append(tree, [2]NodeID{NodeID(u), NodeID(v)})
		}
	}

	if g.IsWeighted() {
		// Materialize the source column once so the sorted pass stays linear
		// in lookups.
		srcs := make([]uint32, g.DirectedEdgeCount())
		for src := uint32(0); src < n; src++ {
			for slot := g.offsets[src]; slot < g.offsets[src+1]; slot++ {
				srcs[slot] = src
			}
		}
		slots := make([]uint64, len(srcs))
		for i := range slots {
			slots[i] = uint64(i)
		}
		sort.Slice(slots, func(i, j int) bool {
			a, b := slots[i], slots[j]
			if g.weights[a] != g.weights[b] {
				return g.weights[a] < g.weights[b]
			}
			return a < b
		})
		for _, slot := range slots {
			accept(srcs[slot], g.dstAt(slot))
		}
	} else {
		for src := uint32(0); src < n; src++ {
			for slot := g.offsets[src]; slot < g.offsets[src+1]; slot++ {
				accept(src, g.dstAt(slot))
			}
		}
	}

	membership, count, minSize, maxSize := componentStats(forest)
	return &SpanningForest{
		TreeEdges:        tree,
		Membership:       membership,
		ComponentCount:   count,
		MinComponentSize: minSize,
		MaxComponentSize: maxSize,
	}
}

// SpanningTreeOption configures RandomSpanningTree.
type SpanningTreeOption func(*spanningTreeOptions)

type spanningTreeOptions struct {
	includeAllEdgeTypes bool
}

// WithAllEdgeTypes controls which edges of a typed graph participate. When
// false, only edges of the first edge type (id 0) are candidates, so the
// forest may split components connected solely through other types. Untyped
// graphs ignore the flag. Default true.
func WithAllEdgeTypes(include bool) SpanningTreeOption {
	return func(o *spanningTreeOptions) {
		o.includeAllEdgeTypes = include
	}
}

// unclaimed marks nodes no tree has reached yet during random growth.
const unclaimed = ^uint32(0)

// RandomSpanningTree builds a randomized spanning forest in expected linear
// work. The node range is split into one stripe per worker; workers grow
// randomized trees inside their stripes in parallel (stripes are disjoint, so
// claim writes need no locks), then a seeded merge pass stitches the stripe
// trees together across stripe boundaries. A fixed seed with a fixed worker
// count reproduces the same forest; the seed selects among equally valid
// spanning trees, not a root.
//
// Directed graphs are rejected with ErrUnsupportedOnDirected because the
// orientation of the result would be ill-defined; use KruskalSpanningForest
// for those.
func (g *Graph) RandomSpanningTree(seed uint64, optFns ...SpanningTreeOption) (*SpanningForest, error) {
	if g.directed {
		return nil, &ErrUnsupportedOnDirected{Operation: "random spanning tree"}
	}

	opts := spanningTreeOptions{includeAllEdgeTypes: true}
	for _, fn := range optFns {
		fn(&opts)
	}
	// The type filter only means something on typed graphs.
	filtered := !opts.includeAllEdgeTypes && g.HasEdgeTypes()

	n := g.NodeCount()
	if n == 0 {
		return &SpanningForest{}, nil
	}

	workers := g.controller.Workers()
	if uint64(workers) > uint64(n) {
		workers = int(n)
	}
	stripe := (uint64(n) + uint64(workers) - 1) / uint64(workers)

	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = unclaimed
	}

	// Phase 1: randomized growth. Each worker owns a contiguous stripe of the
	// id space and claims only nodes inside it, so writes to parent are
	// disjoint by construction.
	var group errgroup.Group
	group.SetLimit(workers)
	for w := 0; w < workers; w++ {
		start := uint32(uint64(w) * stripe)
		end := n
		if e := uint64(start) + stripe; e < uint64(n) {
			end = uint32(e)
		}
		group.Go(func() error {
			r := rng.New(rng.SplitMix64(seed) + uint64(start))
			var stack []uint32
			for v := start; v < end; v++ {
				if parent[v] != unclaimed {
					continue
				}
				parent[v] = v
				stack = append(stack[:0], v)
				for len(stack) > 0 {
					// Pop a random element so the tree shape follows the seed
					// rather than the layout.
					last := len(stack) - 1
					i := r.Uint64n(uint64(len(stack)))
					stack[i], stack[last] = stack[last], stack[i]
					u := stack[last]
					stack = stack[:last]

					for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
						if filtered && g.edgeTypes[slot] != 0 {
							continue
						}
						c := g.dstAt(slot)
						if c < start || c >= end || parent[c] != unclaimed {
							continue
						}
						parent[c] = u
						stack = append(stack, c)
					}
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	forest := unionfind.New(n)
	tree := make([][2]NodeID, 0, n-1)
	for v := uint32(0); v < n; v++ {
		if p := parent[v]; p != v {
			forest.Union(p, v)
			tree = append(tree, [2]NodeID{NodeID(p), NodeID(v)})
		}
	}

	// Phase 2: stitch stripe trees. Nodes are visited in a seeded random
	// permutation and the first edge joining two trees wins, so the crossing
	// edges also follow the seed deterministically.
	perm := make([]uint32, n)
	for i := range perm {
		perm[i] = uint32(i)
	}
	r := rng.New(rng.SplitMix64(seed ^ 0x6d65726765)) // merge stream
	for i := uint64(n) - 1; i > 0; i-- {
		j := r.Uint64n(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	for _, u := range perm {
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			if filtered && g.edgeTypes[slot] != 0 {
				continue
			}
			c := g.dstAt(slot)
			if c == u {
				continue
			}
			if forest.Union(u, c) {
				tree = append(tree, [2]NodeID{NodeID(u), NodeID(c)})
			}
		}
	}

	membership, count, minSize, maxSize := componentStats(forest)
	return &SpanningForest{
		TreeEdges:        tree,
		Membership:       membership,
		ComponentCount:   count,
		MinComponentSize: minSize,
		MaxComponentSize: maxSize,
	}, nil
}
