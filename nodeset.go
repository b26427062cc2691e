package graphgo

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// NodeSet is a compressed set of node ids. Connectivity analysis and the
// vertex cover return their node partitions as NodeSets; the set algebra is
// exposed as named methods returning fresh sets.
//
// A NodeSet is not safe for concurrent mutation; freely share it once no
// writer remains.
type NodeSet struct {
	rb *roaring.Bitmap
}

// NewNodeSet creates a set holding the given ids.
func NewNodeSet(ids ...NodeID) *NodeSet {
	s := &NodeSet{rb: roaring.New()}
	for _, id := range ids {
		s.rb.Add(uint32(id))
	}
	return s
}

// Add inserts a node id.
func (s *NodeSet) Add(id NodeID) {
	s.rb.Add(uint32(id))
}

// Remove deletes a node id.
func (s *NodeSet) Remove(id NodeID) {
	s.rb.Remove(uint32(id))
}

// Contains reports whether the set holds id.
func (s *NodeSet) Contains(id NodeID) bool {
	return s.rb.Contains(uint32(id))
}

// Len returns the number of ids in the set.
func (s *NodeSet) Len() uint64 {
	return s.rb.GetCardinality()
}

// IsEmpty reports whether the set holds no ids.
func (s *NodeSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Min returns the smallest id in the set. The set must not be empty.
func (s *NodeSet) Min() NodeID {
	return NodeID(s.rb.Minimum())
}

// Max returns the largest id in the set. The set must not be empty.
func (s *NodeSet) Max() NodeID {
	return NodeID(s.rb.Maximum())
}

// Clone returns an independent copy.
func (s *NodeSet) Clone() *NodeSet {
	return &NodeSet{rb: s.rb.Clone()}
}

// Iterator yields the ids in ascending order.
func (s *NodeSet) Iterator() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(NodeID(it.Next())) {
				return
			}
		}
	}
}

// ToSlice returns the ids in ascending order.
func (s *NodeSet) ToSlice() []NodeID {
	out := make([]NodeID, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		out = append(out, NodeID(it.Next()))
	}
	return out
}

// Union returns a new set holding the ids of either set.
func (s *NodeSet) Union(other *NodeSet) *NodeSet {
	return &NodeSet{rb: roaring.Or(s.rb, other.rb)}
}

// Intersection returns a new set holding the ids present in both sets.
func (s *NodeSet) Intersection(other *NodeSet) *NodeSet {
	return &NodeSet{rb: roaring.And(s.rb, other.rb)}
}

// Difference returns a new set holding the ids of s that are not in other.
func (s *NodeSet) Difference(other *NodeSet) *NodeSet {
	return &NodeSet{rb: roaring.AndNot(s.rb, other.rb)}
}

// SymmetricDifference returns a new set holding the ids in exactly one of the
// two sets.
func (s *NodeSet) SymmetricDifference(other *NodeSet) *NodeSet {
	return &NodeSet{rb: roaring.Xor(s.rb, other.rb)}
}

// Overlaps reports whether the sets share at least one id.
func (s *NodeSet) Overlaps(other *NodeSet) bool {
	return s.rb.Intersects(other.rb)
}

// ContainsSet reports whether every id of other is in s.
func (s *NodeSet) ContainsSet(other *NodeSet) bool {
	return other.rb.AndCardinality(s.rb) == other.rb.GetCardinality()
}

// Equal reports whether both sets hold exactly the same ids.
func (s *NodeSet) Equal(other *NodeSet) bool {
	return s.rb.Equals(other.rb)
}
