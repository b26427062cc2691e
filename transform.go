package graphgo

import (
	"fmt"
	"math"

	"github.com/hupe1980/graphgo/vocabulary"
)

// SetDirected toggles the directedness flag in place. This is the single
// in-place mutation on a Graph: it changes how the entry stream is
// interpreted, not the stream itself. Flipping a directed graph whose
// entries are not mirror-closed to undirected produces a graph that violates
// the undirected invariants, so callers flip only between representations
// they know to be compatible.
func (g *Graph) SetDirected(directed bool) {
	g.directed = directed
}

// DropSelfloops returns a copy of the graph without self-loop entries.
func (g *Graph) DropSelfloops() (*Graph, error) {
	n := g.NodeCount()
	entries := make([]builderEntry, 0, g.DirectedEdgeCount()-g.selfloops)
	for u := uint32(0); u < n; u++ {
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			v := g.dstAt(slot)
			if v == u {
				continue
			}
			var etype uint32
			if g.edgeTypes != nil {
				etype = g.edgeTypes[slot]
			}
			entries = append(entries, builderEntry{src: u, dst: v, weight: g.weightAt(slot), etype: etype, pos: len(entries)})
		}
	}
	return g.rebuildFrom(entries, g.edgeTypeVocab)
}

type selfloopOptions struct {
	weight    float32
	weightSet bool
	typeName  string
	typed     bool
}

// SelfloopOption configures AddSelfloops.
type SelfloopOption func(*selfloopOptions) error

// WithSelfloopWeight sets the weight assigned to added self-loops. Only
// valid on weighted graphs; defaults to 1.0.
func WithSelfloopWeight(w float32) SelfloopOption {
	return func(o *selfloopOptions) error {
		v := float64(w)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return &ErrMalformedInput{Reason: fmt.Sprintf("self-loop weight %g must be positive and finite", w)}
		}
		o.weight = w
		o.weightSet = true
		return nil
	}
}

// WithSelfloopEdgeTypeName sets the edge type assigned to added self-loops,
// inserting the name into the type vocabulary when new. Required on typed
// graphs, invalid on untyped ones.
func WithSelfloopEdgeTypeName(name string) SelfloopOption {
	return func(o *selfloopOptions) error {
		if name == "" {
			return &ErrMalformedInput{Reason: "self-loop edge type name must not be empty"}
		}
		o.typeName = name
		o.typed = true
		return nil
	}
}

// AddSelfloops returns a copy of the graph where every node that lacks a
// self-loop gains one. Existing self-loops keep their payloads.
func (g *Graph) AddSelfloops(optFns ...SelfloopOption) (*Graph, error) {
	opts := selfloopOptions{weight: 1.0}
	for _, fn := range optFns {
		if err := fn(&opts); err != nil {
			return nil, err
		}
	}

	if opts.weightSet && !g.IsWeighted() {
		return nil, &ErrMalformedInput{Reason: "self-loop weight requires a weighted graph"}
	}
	if opts.typed && !g.HasEdgeTypes() {
		return nil, &ErrMalformedInput{Reason: "self-loop edge type name requires a graph with edge types"}
	}
	if !opts.typed && g.HasEdgeTypes() {
		return nil, &ErrMalformedInput{Reason: "graphs with edge types require a self-loop edge type name"}
	}

	edgeTypeVocab := g.edgeTypeVocab
	var loopType uint32
	if opts.typed {
		edgeTypeVocab = g.edgeTypeVocab.Clone()
		loopType = edgeTypeVocab.Insert(opts.typeName)
	}

	n := g.NodeCount()
	entries := make([]builderEntry, 0, g.DirectedEdgeCount()+uint64(n)-g.selfloops)
	for u := uint32(0); u < n; u++ {
		looped := false
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			v := g.dstAt(slot)
			if !looped && v >= u {
				if v == u {
					looped = true
				} else {
					entries = append(entries, builderEntry{src: u, dst: u, weight: opts.weight, etype: loopType, pos: len(entries)})
					looped = true
				}
			}
			var etype uint32
			if g.edgeTypes != nil {
				etype = g.edgeTypes[slot]
			}
			entries = append(entries, builderEntry{src: u, dst: v, weight: g.weightAt(slot), etype: etype, pos: len(entries)})
		}
		if !looped {
			entries = append(entries, builderEntry{src: u, dst: u, weight: opts.weight, etype: loopType, pos: len(entries)})
		}
	}
	return g.rebuildFrom(entries, edgeTypeVocab)
}

// SetAllEdgeTypes returns a copy of the graph where every edge carries the
// single given type. Works on typed and untyped graphs alike; the adjacency
// is shared, only the type payload is replaced.
func (g *Graph) SetAllEdgeTypes(name string) (*Graph, error) {
	if name == "" {
		return nil, &ErrMalformedInput{Reason: "edge type name must not be empty"}
	}

	vocab := vocabulary.New()
	vocab.Insert(name)

	res := g.shallowCopy()
	res.edgeTypes = make([]uint32, g.DirectedEdgeCount())
	res.edgeTypeVocab = vocab
	return res.finalize(), nil
}

// SetAllNodeTypes returns a copy of the graph where every node carries
// exactly the single given type.
func (g *Graph) SetAllNodeTypes(name string) (*Graph, error) {
	if name == "" {
		return nil, &ErrMalformedInput{Reason: "node type name must not be empty"}
	}

	vocab := vocabulary.New()
	vocab.Insert(name)

	n := g.NodeCount()
	offsets := make([]uint64, n+1)
	for i := uint32(0); i < n; i++ {
		offsets[i+1] = uint64(i) + 1
	}

	res := g.shallowCopy()
	res.nodeTypeOffsets = offsets
	res.nodeTypeIDs = make([]uint32, n)
	res.nodeTypeVocab = vocab
	return res.finalize(), nil
}

// shallowCopy clones the graph shell, sharing the immutable adjacency and
// payload arrays but cloning the vocabularies.
func (g *Graph) shallowCopy() *Graph {
	res := &Graph{
		name:            g.name,
		directed:        g.directed,
		offsets:         g.offsets,
		dst:             g.dst,
		seq:             g.seq,
		weights:         g.weights,
		edgeTypes:       g.edgeTypes,
		nodeTypeOffsets: g.nodeTypeOffsets,
		nodeTypeIDs:     g.nodeTypeIDs,
		vocab:           g.vocab.Clone(),
		metrics:         g.metrics,
		logger:          g.logger,
		controller:      g.controller,
	}
	if g.edgeTypeVocab != nil {
		res.edgeTypeVocab = g.edgeTypeVocab.Clone()
	}
	if g.nodeTypeVocab != nil {
		res.nodeTypeVocab = g.nodeTypeVocab.Clone()
	}
	return res
}

// rebuildFrom assembles a graph from already slot-ordered entries, keeping
// this graph's identity (name, directedness, vocabularies, node types) and
// encoding.
func (g *Graph) rebuildFrom(entries []builderEntry, edgeTypeVocab *vocabulary.Vocabulary) (*Graph, error) {
	matrix, weights, types, err := fillMatrix(g.controller, g.NodeCount(), entries, g.IsWeighted(), edgeTypeVocab != nil)
	if err != nil {
		return nil, err
	}

	res := &Graph{
		name:            g.name,
		directed:        g.directed,
		offsets:         matrix.Offsets(),
		dst:             matrix.Destinations(),
		weights:         weights,
		edgeTypes:       types,
		nodeTypeOffsets: g.nodeTypeOffsets,
		nodeTypeIDs:     g.nodeTypeIDs,
		vocab:           g.vocab.Clone(),
		metrics:         g.metrics,
		logger:          g.logger,
		controller:      g.controller,
	}
	if edgeTypeVocab != nil {
		res.edgeTypeVocab = edgeTypeVocab.Clone()
	}
	if g.nodeTypeVocab != nil {
		res.nodeTypeVocab = g.nodeTypeVocab.Clone()
	}
	if g.IsSuccinct() {
		seq, err := encodeSuccinct(matrix)
		if err != nil {
			return nil, err
		}
		res.seq = seq
		res.dst = nil
	}
	return res.finalize(), nil
}
