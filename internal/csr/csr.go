// Package csr stores adjacency in compressed sparse row form: an offsets
// array of length N+1 whose i-th and i+1-th entries delimit node i's
// outbound edge slots, and a flat destinations array of length E. Destination
// slices are non-decreasing per node, which is what makes binary-search
// containment probes and the succinct re-encoding possible.
package csr

import (
	"fmt"
	"sort"
)

// Matrix is an immutable CSR adjacency. Once built it is safe for unlimited
// concurrent readers.
type Matrix struct {
	offsets []uint64
	dst     []uint32
}

// New validates the arrays and wraps them. offsets must have length N+1,
// start at 0, be non-decreasing, and end at len(dst); destinations must be
// non-decreasing within each node's slice and below N.
func New(offsets []uint64, dst []uint32) (*Matrix, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("csr: offsets must have at least one entry")
	}
	if offsets[0] != 0 {
		return nil, fmt.Errorf("csr: offsets must start at 0, got %d", offsets[0])
	}
	if offsets[len(offsets)-1] != uint64(len(dst)) {
		return nil, fmt.Errorf("csr: offsets end at %d, destinations length is %d", offsets[len(offsets)-1], len(dst))
	}
	nodeCount := uint32(len(offsets) - 1)
	for i := 0; i < len(offsets)-1; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("csr: offsets decrease at node %d", i)
		}
	}
	for i := uint32(0); i < nodeCount; i++ {
		slice := dst[offsets[i]:offsets[i+1]]
		for j, d := range slice {
			if d >= nodeCount {
				return nil, &NodeError{Node: d, NodeCount: nodeCount}
			}
			if j > 0 && slice[j-1] > d {
				return nil, &OrderError{Node: i, Slot: offsets[i] + uint64(j)}
			}
		}
	}
	return &Matrix{offsets: offsets, dst: dst}, nil
}

// NodeCount returns N.
func (m *Matrix) NodeCount() uint32 {
	return uint32(len(m.offsets) - 1)
}

// EdgeCount returns the number of directed edge entries E.
func (m *Matrix) EdgeCount() uint64 {
	return uint64(len(m.dst))
}

// Offsets exposes the underlying offsets array. Callers must not mutate it.
func (m *Matrix) Offsets() []uint64 {
	return m.offsets
}

// Destinations exposes the underlying destinations array. Callers must not
// mutate it.
func (m *Matrix) Destinations() []uint32 {
	return m.dst
}

// Bounds returns the slot range [start, end) of node's outbound edges.
// The caller guarantees node < NodeCount.
func (m *Matrix) Bounds(node uint32) (uint64, uint64) {
	return m.offsets[node], m.offsets[node+1]
}

// Degree returns the outbound edge count of node.
// The caller guarantees node < NodeCount.
func (m *Matrix) Degree(node uint32) uint64 {
	return m.offsets[node+1] - m.offsets[node]
}

// Neighbors returns node's destination slice. The slice aliases the matrix
// and must not be mutated. The caller guarantees node < NodeCount.
func (m *Matrix) Neighbors(node uint32) []uint32 {
	return m.dst[m.offsets[node]:m.offsets[node+1]]
}

// HasEdge reports whether the directed entry (src, dst) is present, by
// binary search over src's sorted destination slice.
func (m *Matrix) HasEdge(src, dst uint32) bool {
	if src >= m.NodeCount() || dst >= m.NodeCount() {
		return false
	}
	slice := m.Neighbors(src)
	i := sort.Search(len(slice), func(k int) bool { return slice[k] >= dst })
	return i < len(slice) && slice[i] == dst
}

// EdgeSlot returns the slot of the first (src, dst) entry and true if it
// exists.
func (m *Matrix) EdgeSlot(src, dst uint32) (uint64, bool) {
	if src >= m.NodeCount() || dst >= m.NodeCount() {
		return 0, false
	}
	slice := m.Neighbors(src)
	i := sort.Search(len(slice), func(k int) bool { return slice[k] >= dst })
	if i < len(slice) && slice[i] == dst {
		return m.offsets[src] + uint64(i), true
	}
	return 0, false
}

// SourceOf returns the source node owning the given edge slot, by binary
// search over the offsets array. The caller guarantees slot < EdgeCount.
func (m *Matrix) SourceOf(slot uint64) uint32 {
	// First node whose range ends beyond the slot.
	i := sort.Search(len(m.offsets)-1, func(k int) bool { return m.offsets[k+1] > slot })
	return uint32(i)
}
