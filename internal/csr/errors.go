package csr

import "fmt"

// IncompleteError indicates that Build was invoked while slots remained
// unwritten.
type IncompleteError struct {
	Written  uint64
	Expected uint64
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("csr: build incomplete: %d of %d slots written", e.Written, e.Expected)
}

// SlotError indicates an edge slot outside the declared edge count.
type SlotError struct {
	Slot      uint64
	EdgeCount uint64
}

func (e *SlotError) Error() string {
	return fmt.Sprintf("csr: slot %d out of range [0, %d)", e.Slot, e.EdgeCount)
}

// NodeError indicates an endpoint outside the declared node count.
type NodeError struct {
	Node      uint32
	NodeCount uint32
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("csr: node %d out of range [0, %d)", e.Node, e.NodeCount)
}

// OrderError indicates that the written slots do not form an adjacency
// grouped by source and sorted by destination.
type OrderError struct {
	Node uint32
	Slot uint64
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("csr: slot %d breaks the sorted adjacency order at node %d", e.Slot, e.Node)
}
