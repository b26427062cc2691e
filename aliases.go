package graphgo

import "github.com/hupe1980/graphgo/core"

// NodeID is the dense node identifier. See core.NodeID.
type NodeID = core.NodeID

// EdgeID is the dense directed edge identifier. See core.EdgeID.
type EdgeID = core.EdgeID

// NodeTypeID identifies a node type. See core.NodeTypeID.
type NodeTypeID = core.NodeTypeID

// EdgeTypeID identifies an edge type. See core.EdgeTypeID.
type EdgeTypeID = core.EdgeTypeID

// MaxNodeID is the largest representable node id.
const MaxNodeID = core.MaxNodeID

// MaxEdgeID is the largest representable edge id.
const MaxEdgeID = core.MaxEdgeID
