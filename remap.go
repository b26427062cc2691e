package graphgo

// AreNodesRemappable reports whether both graphs cover exactly the same node
// key set, regardless of id assignment.
func (g *Graph) AreNodesRemappable(other *Graph) bool {
	return g.vocab.SameKeys(other.vocab)
}

// Remap returns a copy of this graph whose node ids follow other's
// vocabulary order. Edges, weights, edge types, and node types are all
// re-indexed; only the id assignment changes, never the content. Fails with
// ErrIncompatibleGraphs unless the two key sets are identical.
func (g *Graph) Remap(other *Graph) (*Graph, error) {
	if !g.AreNodesRemappable(other) {
		return nil, &ErrIncompatibleGraphs{Reason: "node key sets differ"}
	}

	n := g.NodeCount()
	newID := make([]uint32, n)
	for id, key := range g.vocab.Keys() {
		mapped, _ := other.vocab.Get(key)
		newID[id] = mapped
	}

	entries := make([]builderEntry, 0, g.DirectedEdgeCount())
	for u := uint32(0); u < n; u++ {
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			var etype uint32
			if g.edgeTypes != nil {
				etype = g.edgeTypes[slot]
			}
			entries = append(entries, builderEntry{
				src:    newID[u],
				dst:    newID[g.dstAt(slot)],
				weight: g.weightAt(slot),
				etype:  etype,
				pos:    len(entries),
			})
		}
	}
	// Remapping scrambles the slot layout.
	sortEntries(entries)

	matrix, weights, types, err := fillMatrix(g.controller, n, entries, g.IsWeighted(), g.HasEdgeTypes())
	if err != nil {
		return nil, err
	}

	res := &Graph{
		name:       g.name,
		directed:   g.directed,
		offsets:    matrix.Offsets(),
		dst:        matrix.Destinations(),
		weights:    weights,
		edgeTypes:  types,
		vocab:      other.vocab.Clone(),
		metrics:    g.metrics,
		logger:     g.logger,
		controller: g.controller,
	}
	if g.edgeTypeVocab != nil {
		res.edgeTypeVocab = g.edgeTypeVocab.Clone()
	}
	if g.HasNodeTypes() {
		res.nodeTypeOffsets, res.nodeTypeIDs = g.remapNodeTypes(newID)
		res.nodeTypeVocab = g.nodeTypeVocab.Clone()
	}
	if g.IsSuccinct() {
		seq, err := encodeSuccinct(matrix)
		if err != nil {
			return nil, err
		}
		res.seq = seq
		res.dst = nil
	}
	return res.finalize(), nil
}

// remapNodeTypes rebuilds the CSR-shaped node type arrays under a new node
// id assignment.
func (g *Graph) remapNodeTypes(newID []uint32) ([]uint64, []uint32) {
	n := g.NodeCount()

	offsets := make([]uint64, n+1)
	for old := uint32(0); old < n; old++ {
		offsets[newID[old]+1] = g.nodeTypeOffsets[old+1] - g.nodeTypeOffsets[old]
	}
	for i := uint32(0); i < n; i++ {
		offsets[i+1] += offsets[i]
	}

	ids := make([]uint32, len(g.nodeTypeIDs))
	for old := uint32(0); old < n; old++ {
		lo, hi := g.nodeTypeOffsets[old], g.nodeTypeOffsets[old+1]
		copy(ids[offsets[newID[old]]:], g.nodeTypeIDs[lo:hi])
	}
	return offsets, ids
}
