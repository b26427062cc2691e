package graphgo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphgo/internal/conv"
	"github.com/hupe1980/graphgo/internal/csr"
	"github.com/hupe1980/graphgo/internal/succinct"
	"github.com/hupe1980/graphgo/resource"
	"github.com/hupe1980/graphgo/vocabulary"
)

// Edge is one string-keyed input edge for FromEdges and FromSortedEdges.
type Edge struct {
	// Source and Destination name the endpoints. Unknown keys are added to
	// the vocabulary in order of first appearance unless WithNodes fixed the
	// node set up front.
	Source      string
	Destination string

	// Type optionally names the edge type. Either every edge carries a type
	// or none does.
	Type string

	// Weight is the edge weight, used only when building with
	// WithWeighted(true). Weights must be positive and finite.
	Weight float32
}

// Node declares a node up front, optionally with types. See WithNodes.
type Node struct {
	Key   string
	Types []string
}

// SelfloopPolicy configures how construction treats edges whose endpoints
// are equal.
type SelfloopPolicy uint8

const (
	// SelfloopKeep stores self-loops as regular entries. A self-loop is a
	// single directed entry even on undirected graphs.
	SelfloopKeep SelfloopPolicy = iota
	// SelfloopSkip drops self-loops silently.
	SelfloopSkip
	// SelfloopFail rejects input containing self-loops.
	SelfloopFail
)

// DuplicatePolicy configures how construction treats repeated (source,
// destination) pairs. On undirected graphs the mirrored entries count too:
// providing both (a,b) and (b,a) is a duplicate.
type DuplicatePolicy uint8

const (
	// DuplicateSkip keeps the first occurrence (in input order) of a
	// duplicate edge and drops the rest.
	DuplicateSkip DuplicatePolicy = iota
	// DuplicateKeep stores every occurrence, producing a multigraph.
	DuplicateKeep
	// DuplicateFail rejects input containing duplicate edges.
	DuplicateFail
)

// parallelFillThreshold is the edge count below which the slot fill runs on
// the calling goroutine.
const parallelFillThreshold = 4096

// builderEntry is one resolved directed entry awaiting its slot.
type builderEntry struct {
	src    uint32
	dst    uint32
	weight float32
	etype  uint32
	pos    int // input position, breaks sort ties so DuplicateSkip keeps the earliest
}

// FromEdges builds a graph from unsorted string-keyed edges.
//
// The pipeline resolves keys against the vocabulary, mirrors entries on
// undirected graphs, applies the self-loop and duplicate policies,
// counting-sorts entries into their slots, and fills the CSR arrays with a
// worker per stripe.
func FromEdges(edges []Edge, optFns ...Option) (*Graph, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	g, err := fromEdges(edges, opts, false)

	opts.metricsCollector.RecordBuild(builtNodes(g), builtEdges(g), time.Since(start), err)
	opts.logger.LogBuild(context.Background(), opts.name, builtNodes(g), builtEdges(g), err)
	return g, err
}

// FromSortedEdges builds a graph from edges already sorted by (source id,
// destination id) under the node order fixed by WithNodes, which is
// mandatory here. The input must be the complete directed entry stream: on
// undirected graphs both directions of every edge appear explicitly (and
// self-loops once). Skipping the sort makes this the fastest bulk path;
// out-of-order input fails with ErrMalformedInput.
func FromSortedEdges(edges []Edge, optFns ...Option) (*Graph, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	g, err := fromEdges(edges, opts, true)

	opts.metricsCollector.RecordBuild(builtNodes(g), builtEdges(g), time.Since(start), err)
	opts.logger.LogBuild(context.Background(), opts.name, builtNodes(g), builtEdges(g), err)
	return g, err
}

func builtNodes(g *Graph) uint32 {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

func builtEdges(g *Graph) uint64 {
	if g == nil {
		return 0
	}
	return g.DirectedEdgeCount()
}

func fromEdges(edges []Edge, opts options, sorted bool) (*Graph, error) {
	if sorted && len(opts.nodes) == 0 {
		return nil, &ErrMalformedInput{Reason: "sorted construction requires the node list (WithNodes)"}
	}
	if opts.controller == nil {
		opts.controller = resource.NewController()
	}

	vocab, err := buildVocabulary(edges, opts)
	if err != nil {
		return nil, err
	}
	edgeTypeVocab, err := buildEdgeTypeVocabulary(edges, opts)
	if err != nil {
		return nil, err
	}

	entries, err := resolveEntries(edges, vocab, edgeTypeVocab, opts, sorted)
	if err != nil {
		return nil, err
	}
	if !sorted {
		sortEntries(entries)
	}
	entries, err = applyDuplicatePolicy(entries, vocab, opts.duplicatePolicy, sorted)
	if err != nil {
		return nil, err
	}

	nodeCount, err := conv.IntToUint32(vocab.Len())
	if err != nil {
		return nil, &ErrMalformedInput{Reason: fmt.Sprintf("node count %d exceeds the dense id range", vocab.Len())}
	}
	matrix, weights, types, err := fillMatrix(opts.controller, nodeCount, entries, opts.weighted, edgeTypeVocab != nil)
	if err != nil {
		return nil, err
	}

	return assembleGraph(opts, matrix, weights, types, vocab, edgeTypeVocab)
}

// buildVocabulary assigns dense ids: from the node list when given, else
// from edge endpoints in order of first appearance.
func buildVocabulary(edges []Edge, opts options) (*vocabulary.Vocabulary, error) {
	if len(opts.nodes) > 0 {
		vocab := vocabulary.NewWithCapacity(len(opts.nodes))
		for _, node := range opts.nodes {
			before := vocab.Len()
			vocab.Insert(node.Key)
			if vocab.Len() == before {
				return nil, &ErrMalformedInput{Reason: fmt.Sprintf("duplicate node key %q", node.Key)}
			}
		}
		return vocab, nil
	}

	vocab := vocabulary.New()
	for _, e := range edges {
		vocab.Insert(e.Source)
		vocab.Insert(e.Destination)
	}
	return vocab, nil
}

// buildEdgeTypeVocabulary returns nil when no edge carries a type. A mix of
// typed and untyped edges is malformed.
func buildEdgeTypeVocabulary(edges []Edge, opts options) (*vocabulary.Vocabulary, error) {
	typed := 0
	for _, e := range edges {
		if e.Type != "" {
			typed++
		}
	}
	if typed == 0 && len(opts.edgeTypeNames) == 0 {
		return nil, nil
	}
	if typed != 0 && typed != len(edges) {
		return nil, &ErrMalformedInput{Reason: "edge types must be set on all edges or none"}
	}

	vocab := vocabulary.New()
	for _, name := range opts.edgeTypeNames {
		before := vocab.Len()
		vocab.Insert(name)
		if vocab.Len() == before {
			return nil, &ErrMalformedInput{Reason: fmt.Sprintf("duplicate edge type name %q", name)}
		}
	}
	if typed == 0 {
		// Type names were declared but the edges are untyped.
		return nil, &ErrMalformedInput{Reason: "edge type names declared but edges carry no types"}
	}
	for _, e := range edges {
		vocab.Insert(e.Type)
	}
	return vocab, nil
}

func resolveEntries(edges []Edge, vocab, edgeTypeVocab *vocabulary.Vocabulary, opts options, sorted bool) ([]builderEntry, error) {
	capacity := len(edges)
	if !opts.directed && !sorted {
		capacity *= 2
	}
	entries := make([]builderEntry, 0, capacity)

	for i, e := range edges {
		src, ok := vocab.Get(e.Source)
		if !ok {
			// Only reachable with a fixed node list.
			return nil, &ErrMalformedInput{Reason: fmt.Sprintf("edge %d references unknown node %q", i, e.Source)}
		}
		dst, ok := vocab.Get(e.Destination)
		if !ok {
			return nil, &ErrMalformedInput{Reason: fmt.Sprintf("edge %d references unknown node %q", i, e.Destination)}
		}

		weight := float32(1.0)
		if opts.weighted {
			w := float64(e.Weight)
			if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				return nil, &ErrMalformedInput{Reason: fmt.Sprintf("edge %d weight %g must be positive and finite", i, e.Weight)}
			}
			weight = e.Weight
		}

		var etype uint32
		if edgeTypeVocab != nil {
			etype, _ = edgeTypeVocab.Get(e.Type)
		}

		if src == dst {
			switch opts.selfloopPolicy {
			case SelfloopSkip:
				continue
			case SelfloopFail:
				return nil, &ErrMalformedInput{Reason: fmt.Sprintf("self-loop on node %q", e.Source)}
			}
			entries = append(entries, builderEntry{src: src, dst: dst, weight: weight, etype: etype, pos: i})
			continue
		}

		entries = append(entries, builderEntry{src: src, dst: dst, weight: weight, etype: etype, pos: i})
		if !opts.directed && !sorted {
			entries = append(entries, builderEntry{src: dst, dst: src, weight: weight, etype: etype, pos: i})
		}
	}
	return entries, nil
}

func sortEntries(entries []builderEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.src != b.src {
			return a.src < b.src
		}
		if a.dst != b.dst {
			return a.dst < b.dst
		}
		return a.pos < b.pos
	})
}

// applyDuplicatePolicy collapses or rejects repeated (src, dst) pairs in the
// sorted entry stream. For unsorted construction the pos tiebreak in
// sortEntries guarantees the survivor of DuplicateSkip is the earliest input
// occurrence.
func applyDuplicatePolicy(entries []builderEntry, vocab *vocabulary.Vocabulary, policy DuplicatePolicy, sorted bool) ([]builderEntry, error) {
	if policy == DuplicateKeep || len(entries) == 0 {
		return entries, nil
	}

	w := 1
	for i := 1; i < len(entries); i++ {
		prev := entries[w-1]
		cur := entries[i]
		if sorted && (cur.src < prev.src || (cur.src == prev.src && cur.dst < prev.dst)) {
			// Out-of-order input surfaces here instead of deep in the fill.
			return nil, &ErrMalformedInput{Reason: "edges declared sorted are not sorted"}
		}
		if cur.src == prev.src && cur.dst == prev.dst {
			if policy == DuplicateFail {
				return nil, &ErrMalformedInput{
					Reason: fmt.Sprintf("duplicate edge (%q -> %q)", vocab.MustTranslate(cur.src), vocab.MustTranslate(cur.dst)),
				}
			}
			continue
		}
		entries[w] = cur
		w++
	}
	return entries[:w], nil
}

// fillMatrix writes the entries into a concurrent CSR builder, one worker
// per stripe. Slots are the entry positions, so workers never contend.
func fillMatrix(controller *resource.Controller, nodeCount uint32, entries []builderEntry, weighted, typed bool) (*csr.Matrix, []float32, []uint32, error) {
	edgeCount := uint64(len(entries))
	inner := csr.NewBuilder(nodeCount, edgeCount)

	var weights []float32
	if weighted {
		weights = make([]float32, edgeCount)
	}
	var types []uint32
	if typed {
		types = make([]uint32, edgeCount)
	}

	workers := 1
	if controller != nil {
		workers = controller.Workers()
	}

	writeSlot := func(slot uint64) error {
		e := entries[slot]
		// Payload writes happen before Set: its atomic counter is the
		// release fence Build synchronizes on.
		if weights != nil {
			weights[slot] = e.weight
		}
		if types != nil {
			types[slot] = e.etype
		}
		return inner.Set(slot, e.src, e.dst)
	}

	if edgeCount < parallelFillThreshold || workers <= 1 {
		for slot := uint64(0); slot < edgeCount; slot++ {
			if err := writeSlot(slot); err != nil {
				return nil, nil, nil, translateError(err)
			}
		}
	} else {
		var group errgroup.Group
		group.SetLimit(workers)
		chunk := (edgeCount + uint64(workers) - 1) / uint64(workers)
		for start := uint64(0); start < edgeCount; start += chunk {
			end := min(start+chunk, edgeCount)
			group.Go(func() error {
				for slot := start; slot < end; slot++ {
					if err := writeSlot(slot); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := group.Wait(); err != nil {
			return nil, nil, nil, translateError(err)
		}
	}

	matrix, err := inner.Build()
	if err != nil {
		return nil, nil, nil, translateError(err)
	}
	return matrix, weights, types, nil
}

// assembleGraph attaches payloads, vocabularies, and node types to the built
// adjacency, optionally re-encoding destinations succinctly.
func assembleGraph(opts options, matrix *csr.Matrix, weights []float32, types []uint32, vocab, edgeTypeVocab *vocabulary.Vocabulary) (*Graph, error) {
	ntOffsets, ntIDs, ntVocab, err := buildNodeTypes(opts.nodes)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		name:            opts.name,
		directed:        opts.directed,
		offsets:         matrix.Offsets(),
		dst:             matrix.Destinations(),
		weights:         weights,
		edgeTypes:       types,
		nodeTypeOffsets: ntOffsets,
		nodeTypeIDs:     ntIDs,
		vocab:           vocab,
		edgeTypeVocab:   edgeTypeVocab,
		nodeTypeVocab:   ntVocab,
		metrics:         opts.metricsCollector,
		logger:          opts.logger,
		controller:      opts.controller,
	}

	if opts.succinct {
		seq, err := encodeSuccinct(matrix)
		if err != nil {
			return nil, err
		}
		g.seq = seq
		g.dst = nil
	}

	return g.finalize(), nil
}

// buildNodeTypes shapes the per-node type lists into CSR arrays. Returns
// nils when no node carries a type.
func buildNodeTypes(nodes []Node) ([]uint64, []uint32, *vocabulary.Vocabulary, error) {
	total := 0
	for _, node := range nodes {
		total += len(node.Types)
	}
	if total == 0 {
		return nil, nil, nil, nil
	}

	vocab := vocabulary.New()
	offsets := make([]uint64, len(nodes)+1)
	ids := make([]uint32, 0, total)
	for i, node := range nodes {
		for _, name := range node.Types {
			ids = append(ids, vocab.Insert(name))
		}
		offsets[i+1] = uint64(len(ids))
	}
	return offsets, ids, vocab, nil
}

// encodeSuccinct re-encodes the destination array as the Elias-Fano sequence
// of edge codes src*N + dst. The sorted slot layout makes the code stream
// monotone by construction.
func encodeSuccinct(matrix *csr.Matrix) (*succinct.Sequence, error) {
	n := uint64(matrix.NodeCount())
	offsets := matrix.Offsets()
	dst := matrix.Destinations()

	codes := make([]uint64, 0, matrix.EdgeCount())
	for src := uint32(0); src < matrix.NodeCount(); src++ {
		base := uint64(src) * n
		for slot := offsets[src]; slot < offsets[src+1]; slot++ {
			codes = append(codes, base+uint64(dst[slot]))
		}
	}
	return succinct.Encode(codes, n*n)
}

// Builder assembles a graph from dense ids with pre-computed edge slots.
// Slot writes are lock-free and safe from many goroutines as long as every
// slot is written exactly once; a repeated slot panics because slot
// disjointness is the caller's contract. Build reports unwritten slots as
// ErrIncompleteBuild.
//
// Node keys default to the decimal ids ("0", "1", ...) unless WithNodes
// provides them. Edge types require WithEdgeTypeNames.
type Builder struct {
	opts      options
	inner     *csr.Builder
	weights   []float32
	types     []uint32
	edgeCount uint64
}

// NewBuilder allocates the edge arrays for the declared node and edge counts.
func NewBuilder(nodeCount uint32, edgeCount uint64, optFns ...Option) *Builder {
	opts := applyOptions(optFns)

	if opts.controller == nil {
		opts.controller = resource.NewController()
	}

	b := &Builder{
		opts:      opts,
		inner:     csr.NewBuilder(nodeCount, edgeCount),
		edgeCount: edgeCount,
	}
	if opts.weighted {
		b.weights = make([]float32, edgeCount)
	}
	if len(opts.edgeTypeNames) > 0 {
		b.types = make([]uint32, edgeCount)
	}
	return b
}

// NodeCount returns the declared node count.
func (b *Builder) NodeCount() uint32 {
	return b.inner.NodeCount()
}

// EdgeCount returns the declared edge count.
func (b *Builder) EdgeCount() uint64 {
	return b.edgeCount
}

// Written returns the number of distinct slots written so far.
func (b *Builder) Written() uint64 {
	return b.inner.Written()
}

// SetEdge writes the directed entry (src, dst) into its slot. On weighted
// builders the weight defaults to 1.0.
func (b *Builder) SetEdge(slot EdgeID, src, dst NodeID) error {
	return b.set(uint64(slot), uint32(src), uint32(dst), 1.0, 0, false)
}

// SetWeightedEdge writes a weighted directed entry. The builder must have
// been created with WithWeighted(true).
func (b *Builder) SetWeightedEdge(slot EdgeID, src, dst NodeID, weight float32) error {
	if !b.opts.weighted {
		return &ErrMalformedInput{Reason: "builder is not weighted (WithWeighted)"}
	}
	w := float64(weight)
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return &ErrMalformedInput{Reason: fmt.Sprintf("edge weight %g must be positive and finite", weight)}
	}
	return b.set(uint64(slot), uint32(src), uint32(dst), weight, 0, false)
}

// SetTypedEdge writes a typed directed entry. The builder must have been
// created with WithEdgeTypeNames.
func (b *Builder) SetTypedEdge(slot EdgeID, src, dst NodeID, edgeType EdgeTypeID) error {
	if b.types == nil {
		return &ErrMalformedInput{Reason: "builder has no edge types (WithEdgeTypeNames)"}
	}
	if uint32(edgeType) >= uint32(len(b.opts.edgeTypeNames)) {
		return &ErrMalformedInput{Reason: fmt.Sprintf("edge type %d not in [0, %d)", edgeType, len(b.opts.edgeTypeNames))}
	}
	return b.set(uint64(slot), uint32(src), uint32(dst), 1.0, uint32(edgeType), true)
}

// SetWeightedTypedEdge writes a weighted, typed directed entry.
func (b *Builder) SetWeightedTypedEdge(slot EdgeID, src, dst NodeID, weight float32, edgeType EdgeTypeID) error {
	if !b.opts.weighted {
		return &ErrMalformedInput{Reason: "builder is not weighted (WithWeighted)"}
	}
	if b.types == nil {
		return &ErrMalformedInput{Reason: "builder has no edge types (WithEdgeTypeNames)"}
	}
	w := float64(weight)
	if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return &ErrMalformedInput{Reason: fmt.Sprintf("edge weight %g must be positive and finite", weight)}
	}
	if uint32(edgeType) >= uint32(len(b.opts.edgeTypeNames)) {
		return &ErrMalformedInput{Reason: fmt.Sprintf("edge type %d not in [0, %d)", edgeType, len(b.opts.edgeTypeNames))}
	}
	return b.set(uint64(slot), uint32(src), uint32(dst), weight, uint32(edgeType), true)
}

func (b *Builder) set(slot uint64, src, dst uint32, weight float32, etype uint32, typed bool) error {
	if slot >= b.edgeCount {
		return &ErrInvalidEdgeID{EdgeID: EdgeID(slot), EdgeCount: b.edgeCount}
	}
	// Payload writes happen before the inner Set: its atomic counter is the
	// release fence Build synchronizes on.
	if b.weights != nil {
		b.weights[slot] = weight
	}
	if b.types != nil && typed {
		b.types[slot] = etype
	}
	return translateError(b.inner.Set(slot, src, dst))
}

// Build validates the filled slots and assembles the graph. Slots must form
// an adjacency grouped by source with destinations sorted; the counting sort
// that pre-computes slots guarantees this.
func (b *Builder) Build() (*Graph, error) {
	start := time.Now()

	g, err := b.build()

	b.opts.metricsCollector.RecordBuild(builtNodes(g), builtEdges(g), time.Since(start), err)
	b.opts.logger.LogBuild(context.Background(), b.opts.name, builtNodes(g), builtEdges(g), err)
	return g, err
}

func (b *Builder) build() (*Graph, error) {
	matrix, err := b.inner.Build()
	if err != nil {
		return nil, translateError(err)
	}

	nodeCount := b.inner.NodeCount()
	if len(b.opts.nodes) > 0 && uint32(len(b.opts.nodes)) != nodeCount {
		return nil, &ErrMalformedInput{
			Reason: fmt.Sprintf("node list length %d does not match node count %d", len(b.opts.nodes), nodeCount),
		}
	}

	vocab, err := builderVocabulary(nodeCount, b.opts.nodes)
	if err != nil {
		return nil, err
	}

	var edgeTypeVocab *vocabulary.Vocabulary
	if b.types != nil {
		edgeTypeVocab = vocabulary.NewWithCapacity(len(b.opts.edgeTypeNames))
		for _, name := range b.opts.edgeTypeNames {
			before := edgeTypeVocab.Len()
			edgeTypeVocab.Insert(name)
			if edgeTypeVocab.Len() == before {
				return nil, &ErrMalformedInput{Reason: fmt.Sprintf("duplicate edge type name %q", name)}
			}
		}
	}

	return assembleGraph(b.opts, matrix, b.weights, b.types, vocab, edgeTypeVocab)
}

// builderVocabulary uses the declared node keys, falling back to decimal ids.
func builderVocabulary(nodeCount uint32, nodes []Node) (*vocabulary.Vocabulary, error) {
	vocab := vocabulary.NewWithCapacity(int(nodeCount))
	if len(nodes) > 0 {
		for _, node := range nodes {
			before := vocab.Len()
			vocab.Insert(node.Key)
			if vocab.Len() == before {
				return nil, &ErrMalformedInput{Reason: fmt.Sprintf("duplicate node key %q", node.Key)}
			}
		}
		return vocab, nil
	}
	for i := uint32(0); i < nodeCount; i++ {
		vocab.Insert(strconv.FormatUint(uint64(i), 10))
	}
	return vocab, nil
}
