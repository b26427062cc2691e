// Package queue implements the indexed binary min-heap used by weighted
// traversal. The queue never holds more than one live entry per node id:
// pushing a node that is already queued lowers its priority in place
// (decrease-key) instead of inserting a duplicate, and a position table maps
// node id to heap slot for O(1) membership lookups.
package queue

import "errors"

// ErrOutOfBounds is returned when a pushed node id is not below the capacity
// fixed at construction.
var ErrOutOfBounds = errors.New("queue: node id out of bounds")

// Item is one queue entry.
type Item struct {
	Node     uint32  // Node is the dense node id of the entry.
	Priority float32 // Priority orders the heap; lower pops first.
}

// DijkstraQueue is an indexed binary min-heap over node ids below a fixed
// capacity. It is not safe for concurrent use.
type DijkstraQueue struct {
	items []Item
	pos   []int32 // node id -> heap slot, -1 when absent
}

// NewDijkstraQueue creates an empty queue accepting node ids in
// [0, capacity).
func NewDijkstraQueue(capacity uint32) *DijkstraQueue {
	pos := make([]int32, capacity)
	for i := range pos {
		pos[i] = -1
	}
	return &DijkstraQueue{
		items: make([]Item, 0, 16),
		pos:   pos,
	}
}

// Len returns the number of queued entries.
func (q *DijkstraQueue) Len() int {
	return len(q.items)
}

// Contains reports whether node has a live entry.
func (q *DijkstraQueue) Contains(node uint32) bool {
	return node < uint32(len(q.pos)) && q.pos[node] >= 0
}

// Priority returns the current priority of node's live entry.
func (q *DijkstraQueue) Priority(node uint32) (float32, bool) {
	if !q.Contains(node) {
		return 0, false
	}
	return q.items[q.pos[node]].Priority, true
}

// Push inserts node with the given priority, or lowers the priority of its
// existing entry. Pushing with a priority that is not lower than the current
// one is a no-op, matching standard decrease-key semantics.
func (q *DijkstraQueue) Push(node uint32, priority float32) error {
	if node >= uint32(len(q.pos)) {
		return ErrOutOfBounds
	}
	if slot := q.pos[node]; slot >= 0 {
		if priority >= q.items[slot].Priority {
			return nil
		}
		q.items[slot].Priority = priority
		q.up(int(slot))
		return nil
	}
	q.items = append(q.items, Item{Node: node, Priority: priority})
	q.pos[node] = int32(len(q.items) - 1)
	q.up(len(q.items) - 1)
	return nil
}

// PopMin removes and returns the minimum-priority entry.
func (q *DijkstraQueue) PopMin() (uint32, float32, bool) {
	if len(q.items) == 0 {
		return 0, 0, false
	}
	top := q.items[0]
	last := len(q.items) - 1
	q.swap(0, last)
	q.items = q.items[:last]
	q.pos[top.Node] = -1
	if last > 0 {
		q.down(0)
	}
	return top.Node, top.Priority, true
}

func (q *DijkstraQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.items[parent].Priority <= q.items[i].Priority {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *DijkstraQueue) down(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		min := left
		if right := left + 1; right < n && q.items[right].Priority < q.items[left].Priority {
			min = right
		}
		if q.items[i].Priority <= q.items[min].Priority {
			return
		}
		q.swap(i, min)
		i = min
	}
}

func (q *DijkstraQueue) swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.pos[q.items[i].Node] = int32(i)
	q.pos[q.items[j].Node] = int32(j)
}
