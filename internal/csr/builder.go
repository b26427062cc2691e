package csr

import (
	"fmt"
	"sync/atomic"

	"github.com/hupe1980/graphgo/internal/bitset"
)

// Builder fills the destination array from many goroutines at once. Every
// edge slot is pre-computed by the caller (typically a counting sort over the
// sorted (src, dst) stream), so concurrent writers touch disjoint slots and
// the fill phase needs no locks. An atomic slot bitset records which slots
// were written: a second write to the same slot is a caller contract breach
// and panics, and Build reports slots that were never written.
type Builder struct {
	nodeCount uint32
	src       []uint32
	dst       []uint32
	written   *bitset.BitSet
	count     atomic.Uint64
	built     atomic.Bool
}

// NewBuilder allocates the edge arrays for the declared node and edge counts.
func NewBuilder(nodeCount uint32, edgeCount uint64) *Builder {
	return &Builder{
		nodeCount: nodeCount,
		src:       make([]uint32, edgeCount),
		dst:       make([]uint32, edgeCount),
		written:   bitset.New(edgeCount),
	}
}

// NodeCount returns the declared node count.
func (b *Builder) NodeCount() uint32 {
	return b.nodeCount
}

// EdgeCount returns the declared edge count.
func (b *Builder) EdgeCount() uint64 {
	return uint64(len(b.dst))
}

// Written returns the number of distinct slots written so far.
func (b *Builder) Written() uint64 {
	return b.count.Load()
}

// Set writes the directed entry (src, dst) into its pre-computed slot.
// Safe to call from many goroutines as long as every slot is written exactly
// once; a repeated slot panics because disjointness is the caller's contract,
// not a runtime data condition.
func (b *Builder) Set(slot uint64, src, dst uint32) error {
	if slot >= uint64(len(b.dst)) {
		return &SlotError{Slot: slot, EdgeCount: uint64(len(b.dst))}
	}
	if src >= b.nodeCount {
		return &NodeError{Node: src, NodeCount: b.nodeCount}
	}
	if dst >= b.nodeCount {
		return &NodeError{Node: dst, NodeCount: b.nodeCount}
	}
	if b.written.TestAndSet(slot) {
		panic(fmt.Sprintf("csr: slot %d written twice", slot))
	}
	b.src[slot] = src
	b.dst[slot] = dst
	// The counter doubles as the release fence Build synchronizes on.
	b.count.Add(1)
	return nil
}

// Build validates the filled arrays and hands out the immutable matrix.
// It returns IncompleteError if any slot was never written, and OrderError
// if the caller's slot pre-computation did not yield an adjacency grouped by
// source and sorted by destination.
func (b *Builder) Build() (*Matrix, error) {
	if b.built.Swap(true) {
		return nil, fmt.Errorf("csr: Build called twice")
	}
	edgeCount := uint64(len(b.dst))
	if written := b.count.Load(); written != edgeCount {
		return nil, &IncompleteError{Written: written, Expected: edgeCount}
	}

	// Derive offsets from the source column and verify the slot layout:
	// sources must be non-decreasing (slots grouped per node in node order)
	// and destinations non-decreasing within each group.
	offsets := make([]uint64, b.nodeCount+1)
	for slot := uint64(0); slot < edgeCount; slot++ {
		s := b.src[slot]
		if slot > 0 {
			prev := b.src[slot-1]
			if prev > s {
				return nil, &OrderError{Node: s, Slot: slot}
			}
			if prev == s && b.dst[slot-1] > b.dst[slot] {
				return nil, &OrderError{Node: s, Slot: slot}
			}
		}
		offsets[s+1]++
	}
	for i := 0; i < int(b.nodeCount); i++ {
		offsets[i+1] += offsets[i]
	}

	m := &Matrix{offsets: offsets, dst: b.dst}
	// Release the scratch source column; the matrix re-derives sources from
	// the offsets when needed.
	b.src = nil
	return m, nil
}
