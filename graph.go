package graphgo

import (
	"io"
	"iter"
	"sort"

	"github.com/hupe1980/graphgo/internal/succinct"
	"github.com/hupe1980/graphgo/resource"
	"github.com/hupe1980/graphgo/vocabulary"
)

// Graph is an immutable compressed sparse row (CSR) graph.
//
// Nodes are dense 32-bit ids assigned by a string vocabulary; directed edge
// entries are stored grouped by source with destinations sorted, so neighbor
// lookups are binary searches over a contiguous slice. An undirected edge is
// materialized as two directed entries except self-loops, which are stored
// once.
//
// A Graph is built once and never mutated. All read queries are safe for
// unbounded concurrent readers; operations that conceptually change the graph
// return a fresh Graph. The single in-place method is SetDirected, which
// toggles the directedness flag without touching the edge arrays.
type Graph struct {
	name     string
	directed bool

	// offsets has nodeCount+1 entries; offsets[i] is the first edge slot of
	// node i. Present in both encodings.
	offsets []uint64

	// Exactly one of dst and seq is set: dst holds plain destinations, seq
	// holds the Elias-Fano encoded codes src*N + dst of the same entries.
	dst []uint32
	seq *succinct.Sequence

	weights   []float32 // per-slot weights, nil when unweighted
	edgeTypes []uint32  // per-slot edge type ids, nil when untyped

	// Node types: zero or more types per node, CSR-shaped.
	nodeTypeOffsets []uint64
	nodeTypeIDs     []uint32

	vocab         *vocabulary.Vocabulary
	edgeTypeVocab *vocabulary.Vocabulary
	nodeTypeVocab *vocabulary.Vocabulary

	// Cached single-pass stats, computed by finalize.
	selfloops uint64
	traps     uint32

	metrics    MetricsCollector
	logger     *Logger
	controller *resource.Controller

	mmapCloser io.Closer
}

// finalize computes the cached structural counters and fills ambient
// defaults. Every construction path calls it exactly once before the graph
// escapes.
func (g *Graph) finalize() *Graph {
	if g.metrics == nil {
		g.metrics = NoopMetricsCollector{}
	}
	if g.logger == nil {
		g.logger = NoopLogger()
	}
	if g.controller == nil {
		g.controller = resource.NewController()
	}

	n := g.NodeCount()
	for src := uint32(0); src < n; src++ {
		lo, hi := g.offsets[src], g.offsets[src+1]
		if lo == hi {
			g.traps++
			continue
		}
		// Destinations are sorted, so the self-loop slot is found by search.
		if _, ok := g.edgeSlot(src, src); ok {
			g.selfloops++
		}
	}
	return g
}

// Name returns the graph's human-readable name. Purely descriptive.
func (g *Graph) Name() string {
	return g.name
}

// IsDirected reports whether edges are directed.
func (g *Graph) IsDirected() bool {
	return g.directed
}

// IsWeighted reports whether edges carry weights.
func (g *Graph) IsWeighted() bool {
	return g.weights != nil
}

// IsSuccinct reports whether destinations are stored Elias-Fano encoded.
func (g *Graph) IsSuccinct() bool {
	return g.seq != nil
}

// HasEdgeTypes reports whether edges carry type ids.
func (g *Graph) HasEdgeTypes() bool {
	return g.edgeTypes != nil
}

// HasNodeTypes reports whether nodes carry type ids.
func (g *Graph) HasNodeTypes() bool {
	return g.nodeTypeOffsets != nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() uint32 {
	if len(g.offsets) == 0 {
		return 0
	}
	return uint32(len(g.offsets) - 1)
}

// DirectedEdgeCount returns the number of stored directed edge entries.
// On undirected graphs this counts both directions of every edge and
// self-loops once.
func (g *Graph) DirectedEdgeCount() uint64 {
	if len(g.offsets) == 0 {
		return 0
	}
	return g.offsets[len(g.offsets)-1]
}

// EdgeCount returns the number of edges as the user sees them: on directed
// graphs the directed entry count, on undirected graphs the number of
// distinct undirected edges.
func (g *Graph) EdgeCount() uint64 {
	e := g.DirectedEdgeCount()
	if g.directed {
		return e
	}
	return (e-g.selfloops)/2 + g.selfloops
}

// SelfloopCount returns the number of self-loop entries.
func (g *Graph) SelfloopCount() uint64 {
	return g.selfloops
}

// TrapNodeCount returns the number of nodes with no outgoing edges.
// Random walks arriving at a trap node truncate.
func (g *Graph) TrapNodeCount() uint32 {
	return g.traps
}

// Density returns the ratio of non-loop directed entries to the loop-free
// directed capacity N*(N-1). Multigraphs can exceed 1. Graphs with fewer
// than two nodes have density 0.
func (g *Graph) Density() float64 {
	n := uint64(g.NodeCount())
	if n < 2 {
		return 0
	}
	return float64(g.DirectedEdgeCount()-g.selfloops) / float64(n*(n-1))
}

// NodeID returns the dense id for a node key.
func (g *Graph) NodeID(key string) (NodeID, bool) {
	id, ok := g.vocab.Get(key)
	return NodeID(id), ok
}

// NodeKey returns the key assigned to a dense node id.
func (g *Graph) NodeKey(id NodeID) (string, error) {
	key, err := g.vocab.Translate(uint32(id))
	if err != nil {
		return "", translateError(err)
	}
	return key, nil
}

// MustNodeKey is like NodeKey but panics on an out-of-range id.
func (g *Graph) MustNodeKey(id NodeID) string {
	return g.vocab.MustTranslate(uint32(id))
}

// NodeKeys returns all node keys in dense id order.
func (g *Graph) NodeKeys() []string {
	return g.vocab.Keys()
}

// Degree returns the out-degree of a node. On undirected graphs this equals
// the full degree because both directions are stored.
func (g *Graph) Degree(id NodeID) (uint64, error) {
	if uint32(id) >= g.NodeCount() {
		return 0, &ErrInvalidNodeID{NodeID: id, NodeCount: g.NodeCount()}
	}
	return g.degreeUnchecked(uint32(id)), nil
}

// MaxDegree returns the largest out-degree, 0 for the empty graph.
func (g *Graph) MaxDegree() uint64 {
	var max uint64
	n := g.NodeCount()
	for i := uint32(0); i < n; i++ {
		if d := g.degreeUnchecked(i); d > max {
			max = d
		}
	}
	return max
}

// MinDegree returns the smallest out-degree, 0 for the empty graph.
func (g *Graph) MinDegree() uint64 {
	n := g.NodeCount()
	if n == 0 {
		return 0
	}
	min := g.degreeUnchecked(0)
	for i := uint32(1); i < n; i++ {
		if d := g.degreeUnchecked(i); d < min {
			min = d
		}
	}
	return min
}

// MeanDegree returns the average out-degree, 0 for the empty graph.
func (g *Graph) MeanDegree() float64 {
	n := g.NodeCount()
	if n == 0 {
		return 0
	}
	return float64(g.DirectedEdgeCount()) / float64(n)
}

// HasEdge reports whether the directed entry (src, dst) exists. Out-of-range
// endpoints report false.
func (g *Graph) HasEdge(src, dst NodeID) bool {
	n := g.NodeCount()
	if uint32(src) >= n || uint32(dst) >= n {
		return false
	}
	_, ok := g.edgeSlot(uint32(src), uint32(dst))
	return ok
}

// Neighbors returns the destinations of a node's edges in sorted order.
// An out-of-range id yields nothing.
func (g *Graph) Neighbors(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if uint32(id) >= g.NodeCount() {
			return
		}
		lo, hi := g.offsets[id], g.offsets[id+1]
		for slot := lo; slot < hi; slot++ {
			if !yield(NodeID(g.dstAt(slot))) {
				return
			}
		}
	}
}

// NeighborSlice returns the destinations of a node's edges as a fresh slice.
func (g *Graph) NeighborSlice(id NodeID) ([]NodeID, error) {
	if uint32(id) >= g.NodeCount() {
		return nil, &ErrInvalidNodeID{NodeID: id, NodeCount: g.NodeCount()}
	}
	lo, hi := g.offsets[id], g.offsets[id+1]
	out := make([]NodeID, 0, hi-lo)
	for slot := lo; slot < hi; slot++ {
		out = append(out, NodeID(g.dstAt(slot)))
	}
	return out, nil
}

// Edges returns all directed entries as (edge id, [source, destination])
// pairs. Edge ids are slot positions: grouped by source in node order with
// destinations sorted, matching the ids reported by the builder.
func (g *Graph) Edges() iter.Seq2[EdgeID, [2]NodeID] {
	return func(yield func(EdgeID, [2]NodeID) bool) {
		n := g.NodeCount()
		for src := uint32(0); src < n; src++ {
			lo, hi := g.offsets[src], g.offsets[src+1]
			for slot := lo; slot < hi; slot++ {
				if !yield(EdgeID(slot), [2]NodeID{NodeID(src), NodeID(g.dstAt(slot))}) {
					return
				}
			}
		}
	}
}

// EdgeEndpoints returns the source and destination of a directed entry.
func (g *Graph) EdgeEndpoints(id EdgeID) (NodeID, NodeID, error) {
	if uint64(id) >= g.DirectedEdgeCount() {
		return 0, 0, &ErrInvalidEdgeID{EdgeID: id, EdgeCount: g.DirectedEdgeCount()}
	}
	return NodeID(g.srcAt(uint64(id))), NodeID(g.dstAt(uint64(id))), nil
}

// EdgeWeight returns the weight of a directed entry. Unweighted graphs
// report 1.0 for every edge.
func (g *Graph) EdgeWeight(id EdgeID) (float32, error) {
	if uint64(id) >= g.DirectedEdgeCount() {
		return 0, &ErrInvalidEdgeID{EdgeID: id, EdgeCount: g.DirectedEdgeCount()}
	}
	return g.weightAt(uint64(id)), nil
}

// EdgeType returns the type id of a directed entry. The boolean is false
// when the graph has no edge types.
func (g *Graph) EdgeType(id EdgeID) (EdgeTypeID, bool, error) {
	if uint64(id) >= g.DirectedEdgeCount() {
		return 0, false, &ErrInvalidEdgeID{EdgeID: id, EdgeCount: g.DirectedEdgeCount()}
	}
	if g.edgeTypes == nil {
		return 0, false, nil
	}
	return EdgeTypeID(g.edgeTypes[id]), true, nil
}

// EdgeTypeName returns the key of an edge type id.
func (g *Graph) EdgeTypeName(id EdgeTypeID) (string, error) {
	if g.edgeTypeVocab == nil {
		return "", &ErrMalformedInput{Reason: "graph has no edge types"}
	}
	name, err := g.edgeTypeVocab.Translate(uint32(id))
	return name, translateError(err)
}

// EdgeTypeCount returns the number of distinct edge types.
func (g *Graph) EdgeTypeCount() uint32 {
	if g.edgeTypeVocab == nil {
		return 0
	}
	return uint32(g.edgeTypeVocab.Len())
}

// NodeTypes returns the type ids of a node, empty when the node is untyped
// or the graph has no node types.
func (g *Graph) NodeTypes(id NodeID) ([]NodeTypeID, error) {
	if uint32(id) >= g.NodeCount() {
		return nil, &ErrInvalidNodeID{NodeID: id, NodeCount: g.NodeCount()}
	}
	if g.nodeTypeOffsets == nil {
		return nil, nil
	}
	lo, hi := g.nodeTypeOffsets[id], g.nodeTypeOffsets[id+1]
	out := make([]NodeTypeID, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, NodeTypeID(g.nodeTypeIDs[i]))
	}
	return out, nil
}

// NodeTypeName returns the key of a node type id.
func (g *Graph) NodeTypeName(id NodeTypeID) (string, error) {
	if g.nodeTypeVocab == nil {
		return "", &ErrMalformedInput{Reason: "graph has no node types"}
	}
	name, err := g.nodeTypeVocab.Translate(uint32(id))
	return name, translateError(err)
}

// NodeTypeCount returns the number of distinct node types.
func (g *Graph) NodeTypeCount() uint32 {
	if g.nodeTypeVocab == nil {
		return 0
	}
	return uint32(g.nodeTypeVocab.Len())
}

// EncodeEdge packs an edge into the code src*N + dst. Codes order edges
// exactly like the slot layout (by source, then destination), which is what
// the succinct encoding and the negative sampler rely on. Endpoints are not
// range-checked; out-of-range ids produce meaningless codes.
func (g *Graph) EncodeEdge(src, dst NodeID) uint64 {
	return uint64(src)*uint64(g.NodeCount()) + uint64(dst)
}

// DecodeEdge unpacks an edge code produced by EncodeEdge.
func (g *Graph) DecodeEdge(code uint64) (NodeID, NodeID) {
	n := uint64(g.NodeCount())
	return NodeID(code / n), NodeID(code % n)
}

// MaxEncodableEdgeNumber returns the exclusive upper bound of the edge code
// space, N*N. Node ids are 32-bit, so the product always fits in 64 bits.
func (g *Graph) MaxEncodableEdgeNumber() uint64 {
	n := uint64(g.NodeCount())
	return n * n
}

// degreeUnchecked returns the out-degree without bounds checks.
func (g *Graph) degreeUnchecked(id uint32) uint64 {
	return g.offsets[id+1] - g.offsets[id]
}

// dstAt returns the destination stored in an edge slot.
func (g *Graph) dstAt(slot uint64) uint32 {
	if g.seq != nil {
		return uint32(g.seq.Access(slot) % uint64(g.NodeCount()))
	}
	return g.dst[slot]
}

// srcAt returns the source of an edge slot. Plain mode recovers it from the
// offsets, succinct mode divides the code.
func (g *Graph) srcAt(slot uint64) uint32 {
	if g.seq != nil {
		return uint32(g.seq.Access(slot) / uint64(g.NodeCount()))
	}
	// First node whose range ends past the slot.
	i := sort.Search(len(g.offsets)-1, func(i int) bool {
		return g.offsets[i+1] > slot
	})
	return uint32(i)
}

// weightAt returns the slot weight, 1.0 on unweighted graphs.
func (g *Graph) weightAt(slot uint64) float32 {
	if g.weights == nil {
		return 1.0
	}
	return g.weights[slot]
}

// edgeSlot finds the slot of the directed entry (src, dst). Both endpoints
// must be in range. With duplicate entries it returns the first slot.
func (g *Graph) edgeSlot(src, dst uint32) (uint64, bool) {
	lo, hi := g.offsets[src], g.offsets[src+1]
	if g.seq != nil {
		code := uint64(src)*uint64(g.NodeCount()) + uint64(dst)
		i := uint64(sort.Search(int(hi-lo), func(i int) bool {
			return g.seq.Access(lo+uint64(i)) >= code
		}))
		if lo+i < hi && g.seq.Access(lo+i) == code {
			return lo + i, true
		}
		return 0, false
	}
	i := uint64(sort.Search(int(hi-lo), func(i int) bool {
		return g.dst[lo+uint64(i)] >= dst
	}))
	if lo+i < hi && g.dst[lo+i] == dst {
		return lo + i, true
	}
	return 0, false
}

// hasCode reports whether the directed entry with the given edge code exists.
func (g *Graph) hasCode(code uint64) bool {
	n := uint64(g.NodeCount())
	if n == 0 {
		return false
	}
	src := uint32(code / n)
	if src >= g.NodeCount() {
		return false
	}
	_, ok := g.edgeSlot(src, uint32(code%n))
	return ok
}

// appendNeighbors appends the destinations of a node to buf and returns it.
// Succinct mode decodes the slot range in one high-vector walk.
func (g *Graph) appendNeighbors(buf []uint32, id uint32) []uint32 {
	lo, hi := g.offsets[id], g.offsets[id+1]
	if lo == hi {
		return buf
	}
	if g.seq != nil {
		n := uint64(g.NodeCount())
		g.seq.AccessRangeFunc(lo, hi, func(code uint64) {
			buf = append(buf, uint32(code%n))
		})
		return buf
	}
	return append(buf, g.dst[lo:hi]...)
}
