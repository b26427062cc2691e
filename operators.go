package graphgo

import (
	"context"
	"fmt"
	"time"
)

// validateOperatorTerms checks that two graphs can be combined edge-wise:
// same directedness, agreement on carrying weights and edge types, and the
// same node universe with identical id assignment. Edge type vocabularies
// must also assign identical ids, otherwise type payloads would silently
// change meaning in the result.
func (g *Graph) validateOperatorTerms(other *Graph) error {
	if g.directed != other.directed {
		return &ErrIncompatibleGraphs{Reason: "graphs must both be directed or both be undirected"}
	}
	if g.IsWeighted() != other.IsWeighted() {
		return &ErrIncompatibleGraphs{Reason: "both graphs must carry edge weights or neither"}
	}
	if g.HasEdgeTypes() != other.HasEdgeTypes() {
		return &ErrIncompatibleGraphs{Reason: "both graphs must carry edge types or neither"}
	}
	if !g.vocab.Equal(other.vocab) {
		return &ErrIncompatibleGraphs{Reason: "node vocabularies differ"}
	}
	if g.HasEdgeTypes() && !g.edgeTypeVocab.Equal(other.edgeTypeVocab) {
		return &ErrIncompatibleGraphs{Reason: "edge type vocabularies differ"}
	}
	return nil
}

// Union returns a graph holding every edge of g plus every edge of other
// that g does not already have. Payloads of shared edges come from g.
func (g *Graph) Union(other *Graph) (*Graph, error) {
	return g.applyOperator(other, "union", "|", []operatorTerm{
		{source: g},
		{source: other, deny: g},
	})
}

// Intersection returns a graph holding the edges present in both g and
// other, with g's payloads.
func (g *Graph) Intersection(other *Graph) (*Graph, error) {
	return g.applyOperator(other, "intersection", "&", []operatorTerm{
		{source: g, mustHave: other},
	})
}

// Difference returns a graph holding the edges of g that other does not
// have.
func (g *Graph) Difference(other *Graph) (*Graph, error) {
	return g.applyOperator(other, "difference", "-", []operatorTerm{
		{source: g, deny: other},
	})
}

// SymmetricDifference returns a graph holding the edges present in exactly
// one of the two graphs.
func (g *Graph) SymmetricDifference(other *Graph) (*Graph, error) {
	return g.applyOperator(other, "symmetric difference", "^", []operatorTerm{
		{source: g, deny: other},
		{source: other, deny: g},
	})
}

// Overlaps reports whether the two graphs share at least one edge. The
// comparison is existence-based: weights and types are ignored. Graphs with
// different directedness or node vocabularies never overlap.
func (g *Graph) Overlaps(other *Graph) bool {
	if g.directed != other.directed || !g.vocab.Equal(other.vocab) {
		return false
	}

	// Probe the smaller entry stream against the larger one.
	a, b := g, other
	if a.DirectedEdgeCount() > b.DirectedEdgeCount() {
		a, b = b, a
	}
	n := a.NodeCount()
	for u := uint32(0); u < n; u++ {
		for slot := a.offsets[u]; slot < a.offsets[u+1]; slot++ {
			if _, ok := b.edgeSlot(u, a.dstAt(slot)); ok {
				return true
			}
		}
	}
	return false
}

// Contains reports whether every edge of other also exists in g, ignoring
// weights and types. Graphs with different directedness or node vocabularies
// are never contained.
func (g *Graph) Contains(other *Graph) bool {
	if g.directed != other.directed || !g.vocab.Equal(other.vocab) {
		return false
	}
	n := other.NodeCount()
	for u := uint32(0); u < n; u++ {
		for slot := other.offsets[u]; slot < other.offsets[u+1]; slot++ {
			if _, ok := g.edgeSlot(u, other.dstAt(slot)); !ok {
				return false
			}
		}
	}
	return true
}

// operatorTerm is one contributing edge stream: the source's directed
// entries filtered against an optional deny list and an optional must-have
// list. The union of g and other, for example, streams g unfiltered plus
// other with g as the deny list.
type operatorTerm struct {
	source   *Graph
	deny     *Graph
	mustHave *Graph
}

func (t operatorTerm) appendEntries(entries []builderEntry) []builderEntry {
	src := t.source
	typed := src.edgeTypes != nil
	n := src.NodeCount()
	for u := uint32(0); u < n; u++ {
		for slot := src.offsets[u]; slot < src.offsets[u+1]; slot++ {
			v := src.dstAt(slot)
			var etype uint32
			if typed {
				etype = src.edgeTypes[slot]
			}
			if t.deny != nil && t.deny.hasEntry(u, v, typed, etype) {
				continue
			}
			if t.mustHave != nil && !t.mustHave.hasEntry(u, v, typed, etype) {
				continue
			}
			entries = append(entries, builderEntry{
				src:    u,
				dst:    v,
				weight: src.weightAt(slot),
				etype:  etype,
				pos:    len(entries),
			})
		}
	}
	return entries
}

// hasEntry reports whether the graph stores a directed entry (src, dst),
// additionally matching the edge type when typed is set. Duplicate runs
// share endpoints, so the type scan walks the run from its first slot.
func (g *Graph) hasEntry(src, dst uint32, typed bool, etype uint32) bool {
	slot, ok := g.edgeSlot(src, dst)
	if !ok {
		return false
	}
	if !typed || g.edgeTypes == nil {
		return true
	}
	for ; slot < g.offsets[src+1] && g.dstAt(slot) == dst; slot++ {
		if g.edgeTypes[slot] == etype {
			return true
		}
	}
	return false
}

func (g *Graph) applyOperator(other *Graph, op, symbol string, terms []operatorTerm) (out *Graph, err error) {
	start := time.Now()
	defer func() {
		g.metrics.RecordOperator(op, time.Since(start), err)
		g.logger.LogOperator(context.Background(), op, err)
	}()

	if err := g.validateOperatorTerms(other); err != nil {
		return nil, err
	}

	var entries []builderEntry
	for _, term := range terms {
		entries = term.appendEntries(entries)
	}
	sortEntries(entries)

	matrix, weights, types, err := fillMatrix(g.controller, g.NodeCount(), entries, g.IsWeighted(), g.HasEdgeTypes())
	if err != nil {
		return nil, err
	}

	var name string
	if g.name != "" || other.name != "" {
		name = fmt.Sprintf("(%s %s %s)", g.name, symbol, other.name)
	}

	// Node types follow g when it has them, falling back to other's; the
	// shared vocabulary keeps the per-node arrays aligned either way.
	typeSource := g
	if !g.HasNodeTypes() && other.HasNodeTypes() {
		typeSource = other
	}

	res := &Graph{
		name:            name,
		directed:        g.directed,
		offsets:         matrix.Offsets(),
		dst:             matrix.Destinations(),
		weights:         weights,
		edgeTypes:       types,
		nodeTypeOffsets: typeSource.nodeTypeOffsets,
		nodeTypeIDs:     typeSource.nodeTypeIDs,
		vocab:           g.vocab.Clone(),
		metrics:         g.metrics,
		logger:          g.logger,
		controller:      g.controller,
	}
	if g.edgeTypeVocab != nil {
		res.edgeTypeVocab = g.edgeTypeVocab.Clone()
	}
	if typeSource.nodeTypeVocab != nil {
		res.nodeTypeVocab = typeSource.nodeTypeVocab.Clone()
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
