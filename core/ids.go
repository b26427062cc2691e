package core

// NodeID is a dense, internal identifier for a node within a single graph.
// It is strictly 32-bit, allowing for max 4 Billion nodes per graph.
// Used for all hot-path structures (CSR adjacency, bitsets, heaps).
type NodeID uint32

// MaxNodeID is the maximum possible value for a NodeID.
const MaxNodeID = ^NodeID(0)

// EdgeID is a dense, internal identifier for a directed edge entry.
// Edge ids are assigned by rank in the sorted adjacency, so 64 bits are
// required once a graph exceeds 4 Billion directed entries.
type EdgeID uint64

// MaxEdgeID is the maximum possible value for an EdgeID.
const MaxEdgeID = ^EdgeID(0)

// NodeTypeID is a dense identifier into the node-type vocabulary.
type NodeTypeID uint32

// EdgeTypeID is a dense identifier into the edge-type vocabulary.
type EdgeTypeID uint32
