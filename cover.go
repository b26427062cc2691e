package graphgo

// ApproximatedVertexCover returns a 2-approximation of the minimum vertex
// cover. Edges are scanned in slot order; when both endpoints of an edge are
// still uncovered, both join the cover, so the added pairs form a matching
// and the result is at most twice the optimum. Every edge is guaranteed to
// have at least one covered endpoint. A self-loop contributes its single
// node.
func (g *Graph) ApproximatedVertexCover() *NodeSet {
	cover := NewNodeSet()
	n := g.NodeCount()
	for u := uint32(0); u < n; u++ {
		if cover.Contains(NodeID(u)) {
			continue
		}
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			v := g.dstAt(slot)
			if v == u {
				cover.Add(NodeID(u))
				break
			}
			if !cover.Contains(NodeID(v)) {
				cover.Add(NodeID(u))
				cover.Add(NodeID(v))
				break
			}
		}
	}
	return cover
}
