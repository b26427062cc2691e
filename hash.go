package graphgo

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// structuralHasher streams fixed-width values into an FNV-1a state without
// per-value allocations.
type structuralHasher struct {
	h   hash.Hash64
	buf [8]byte
}

func (s *structuralHasher) u32(v uint32) {
	binary.LittleEndian.PutUint32(s.buf[:4], v)
	s.h.Write(s.buf[:4])
}

func (s *structuralHasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(s.buf[:8], v)
	s.h.Write(s.buf[:8])
}

func (s *structuralHasher) str(v string) {
	s.u32(uint32(len(v)))
	s.h.Write([]byte(v))
}

// Hash returns a 64-bit structural hash over the graph content: flags,
// counts, adjacency, weights, type assignments and vocabularies. Graphs with
// equal content hash equal regardless of the destination encoding, so a
// plain and a succinct copy of the same graph collide on purpose. The name
// is identity, not structure, and does not contribute. The value is not
// stable across releases.
func (g *Graph) Hash() uint64 {
	s := structuralHasher{h: fnv.New64a()}

	var flags uint32
	if g.directed {
		flags |= 1
	}
	if g.IsWeighted() {
		flags |= 1 << 1
	}
	if g.HasEdgeTypes() {
		flags |= 1 << 2
	}
	if g.HasNodeTypes() {
		flags |= 1 << 3
	}
	s.u32(flags)

	edgeCount := g.DirectedEdgeCount()
	s.u32(g.NodeCount())
	s.u64(edgeCount)

	for _, off := range g.offsets {
		s.u64(off)
	}
	for slot := uint64(0); slot < edgeCount; slot++ {
		s.u32(g.dstAt(slot))
	}
	for _, w := range g.weights {
		s.u32(math.Float32bits(w))
	}
	for _, t := range g.edgeTypes {
		s.u32(t)
	}
	for _, off := range g.nodeTypeOffsets {
		s.u64(off)
	}
	for _, t := range g.nodeTypeIDs {
		s.u32(t)
	}

	for _, key := range g.vocab.Keys() {
		s.str(key)
	}
	if g.edgeTypeVocab != nil {
		for _, key := range g.edgeTypeVocab.Keys() {
			s.str(key)
		}
	}
	if g.nodeTypeVocab != nil {
		for _, key := range g.nodeTypeVocab.Keys() {
			s.str(key)
		}
	}

	return s.h.Sum64()
}
