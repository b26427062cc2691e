package csr

import (
	"errors"
	"sync"
	"testing"
)

// seven-edge scenario used across the engine tests:
// (0,0) (0,1) (1,2) (1,3) (2,3) (3,4) (4,4)
var sevenEdges = [][2]uint32{
	{0, 0}, {0, 1}, {1, 2}, {1, 3}, {2, 3}, {3, 4}, {4, 4},
}

func buildSeven(t *testing.T) *Matrix {
	t.Helper()
	b := NewBuilder(7, 7)
	for slot, e := range sevenEdges {
		if err := b.Set(uint64(slot), e[0], e[1]); err != nil {
			t.Fatalf("Set(%d): %v", slot, err)
		}
	}
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestBuilderSequential(t *testing.T) {
	m := buildSeven(t)
	if m.NodeCount() != 7 {
		t.Fatalf("NodeCount = %d, want 7", m.NodeCount())
	}
	if m.EdgeCount() != 7 {
		t.Fatalf("EdgeCount = %d, want 7", m.EdgeCount())
	}
	wantOffsets := []uint64{0, 2, 4, 5, 6, 7, 7, 7}
	for i, w := range wantOffsets {
		if m.Offsets()[i] != w {
			t.Fatalf("offsets[%d] = %d, want %d", i, m.Offsets()[i], w)
		}
	}
	for slot, e := range sevenEdges {
		if m.Destinations()[slot] != e[1] {
			t.Fatalf("dst[%d] = %d, want %d", slot, m.Destinations()[slot], e[1])
		}
		if m.SourceOf(uint64(slot)) != e[0] {
			t.Fatalf("SourceOf(%d) = %d, want %d", slot, m.SourceOf(uint64(slot)), e[0])
		}
	}
}

func TestBuilderConcurrent(t *testing.T) {
	const (
		nodes   = 64
		perNode = 16
	)
	edgeCount := uint64(nodes * perNode)
	b := NewBuilder(nodes, edgeCount)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			// Each worker owns a disjoint stripe of source nodes.
			for src := worker * nodes / 8; src < (worker+1)*nodes/8; src++ {
				for j := 0; j < perNode; j++ {
					slot := uint64(src*perNode + j)
					if err := b.Set(slot, uint32(src), uint32(j)); err != nil {
						t.Errorf("Set(%d): %v", slot, err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for src := uint32(0); src < nodes; src++ {
		nbrs := m.Neighbors(src)
		if len(nbrs) != perNode {
			t.Fatalf("node %d degree = %d, want %d", src, len(nbrs), perNode)
		}
		for j, d := range nbrs {
			if d != uint32(j) {
				t.Fatalf("node %d neighbor %d = %d", src, j, d)
			}
		}
	}
}

func TestBuilderIncomplete(t *testing.T) {
	b := NewBuilder(3, 4)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(2, 1, 2); err != nil {
		t.Fatal(err)
	}
	_, err := b.Build()
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Build error = %v, want IncompleteError", err)
	}
	if incomplete.Written != 2 || incomplete.Expected != 4 {
		t.Fatalf("IncompleteError = %+v", incomplete)
	}
}

func TestBuilderOutOfRange(t *testing.T) {
	b := NewBuilder(3, 2)

	var slotErr *SlotError
	if err := b.Set(2, 0, 1); !errors.As(err, &slotErr) {
		t.Fatalf("slot overflow error = %v", err)
	}

	var nodeErr *NodeError
	if err := b.Set(0, 3, 1); !errors.As(err, &nodeErr) {
		t.Fatalf("src overflow error = %v", err)
	}
	if err := b.Set(0, 0, 7); !errors.As(err, &nodeErr) {
		t.Fatalf("dst overflow error = %v", err)
	}
}

func TestBuilderDoubleWritePanics(t *testing.T) {
	b := NewBuilder(3, 2)
	if err := b.Set(0, 0, 1); err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("double write did not panic")
		}
	}()
	_ = b.Set(0, 0, 2)
}

func TestBuilderDisorderedSlots(t *testing.T) {
	// Slots claim node 1 before node 0, which breaks the grouped layout.
	b := NewBuilder(2, 2)
	if err := b.Set(0, 1, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(1, 0, 1); err != nil {
		t.Fatal(err)
	}
	_, err := b.Build()
	var orderErr *OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("Build error = %v, want OrderError", err)
	}
}

func TestBuilderUnsortedDestinations(t *testing.T) {
	b := NewBuilder(3, 2)
	if err := b.Set(0, 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(1, 0, 1); err != nil {
		t.Fatal(err)
	}
	_, err := b.Build()
	var orderErr *OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("Build error = %v, want OrderError", err)
	}
}

func TestHasEdge(t *testing.T) {
	m := buildSeven(t)
	present := map[[2]uint32]bool{}
	for _, e := range sevenEdges {
		present[e] = true
	}
	for src := uint32(0); src < 7; src++ {
		for dst := uint32(0); dst < 7; dst++ {
			want := present[[2]uint32{src, dst}]
			if got := m.HasEdge(src, dst); got != want {
				t.Fatalf("HasEdge(%d, %d) = %v, want %v", src, dst, got, want)
			}
		}
	}
	if m.HasEdge(99, 0) || m.HasEdge(0, 99) {
		t.Fatal("out-of-range endpoints must report no edge")
	}
}

func TestEdgeSlot(t *testing.T) {
	m := buildSeven(t)
	for slot, e := range sevenEdges {
		got, ok := m.EdgeSlot(e[0], e[1])
		if !ok || got != uint64(slot) {
			t.Fatalf("EdgeSlot(%d, %d) = (%d, %v), want (%d, true)", e[0], e[1], got, ok, slot)
		}
	}
	if _, ok := m.EdgeSlot(2, 0); ok {
		t.Fatal("EdgeSlot found a missing edge")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New([]uint64{0, 1}, []uint32{0}); err != nil {
		t.Fatalf("valid matrix rejected: %v", err)
	}
	if _, err := New([]uint64{1, 1}, nil); err == nil {
		t.Fatal("offsets not starting at 0 accepted")
	}
	if _, err := New([]uint64{0, 2}, []uint32{0}); err == nil {
		t.Fatal("offset/destination length mismatch accepted")
	}
	if _, err := New([]uint64{0, 2}, []uint32{1, 0}); err == nil {
		t.Fatal("unsorted destinations accepted")
	}
	if _, err := New([]uint64{0, 1}, []uint32{5}); err == nil {
		t.Fatal("destination beyond node count accepted")
	}
}
