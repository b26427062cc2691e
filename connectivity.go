package graphgo

import (
	"github.com/hupe1980/graphgo/internal/unionfind"
)

// ConnectedComponents computes the weakly connected components in one linear
// pass of union-find over the symmetrized edge stream. It returns the dense
// component id per node (numbered by first appearance in node order), the
// component count, and the smallest and largest component sizes. Edge
// direction is ignored.
func (g *Graph) ConnectedComponents() (membership []uint32, count, minSize, maxSize uint32) {
	n := g.NodeCount()
	if n == 0 {
		return nil, 0, 0, 0
	}

	forest := unionfind.New(n)
	for src := uint32(0); src < n; src++ {
		lo, hi := g.offsets[src], g.offsets[src+1]
		for slot := lo; slot < hi; slot++ {
			forest.Union(src, g.dstAt(slot))
		}
	}

	return componentStats(forest)
}

// componentStats flattens a disjoint-set forest into the membership/count/size
// tuple shared by connectivity and spanning-forest results.
func componentStats(forest *unionfind.Forest) (membership []uint32, count, minSize, maxSize uint32) {
	n := forest.Len()
	membership = make([]uint32, n)

	// Dense component ids in first-appearance order.
	ids := make(map[uint32]uint32, forest.Count())
	sizes := make([]uint32, 0, forest.Count())
	for v := uint32(0); v < n; v++ {
		root := forest.Find(v)
		id, ok := ids[root]
		if !ok {
			id = uint32(len(sizes))
			ids[root] = id
			sizes = append(sizes, 0)
		}
		membership[v] = id
		sizes[id]++
	}

	count = uint32(len(sizes))
	minSize, maxSize = sizes[0], sizes[0]
	for _, s := range sizes[1:] {
		if s < minSize {
			minSize = s
		}
		if s > maxSize {
			maxSize = s
		}
	}
	return membership, count, minSize, maxSize
}

// tarjanFrame is one suspended node of the depth-first search: the node and
// the next edge slot to resume from.
type tarjanFrame struct {
	node uint32
	slot uint64
}

// StronglyConnectedComponents partitions the nodes into strongly connected
// components using Tarjan's algorithm with an explicit heap-allocated stack,
// so arbitrarily deep graphs cannot overflow the goroutine stack. Singleton
// unreachable nodes form their own components. Components are emitted in
// reverse topological order of the condensation; on undirected graphs the
// partition equals the weakly connected components.
func (g *Graph) StronglyConnectedComponents() []*NodeSet {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	// index holds the visit order + 1, so the zero value means unvisited.
	index := make([]uint32, n)
	lowlink := make([]uint32, n)
	onStack := make([]bool, n)

	var (
		components []*NodeSet
		next       uint32
		stack      []uint32
		frames     []tarjanFrame
	)

	for v := uint32(0); v < n; v++ {
		if index[v] != 0 {
			continue
		}

		index[v] = next + 1
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, tarjanFrame{node: v, slot: g.offsets[v]})

		for len(frames) > 0 {
			f := &frames[len(frames)-1]

			if f.slot < g.offsets[f.node+1] {
				w := g.dstAt(f.slot)
				f.slot++

				if index[w] == 0 {
					index[w] = next + 1
					lowlink[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, tarjanFrame{node: w, slot: g.offsets[w]})
				} else if onStack[w] && index[w]-1 < lowlink[f.node] {
					lowlink[f.node] = index[w] - 1
				}
				continue
			}

			// All edges of f.node explored: propagate the lowlink to the
			// parent and emit a component if f.node is its root.
			done := *f
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[done.node] < lowlink[parent] {
					lowlink[parent] = lowlink[done.node]
				}
			}

			if lowlink[done.node] == index[done.node]-1 {
				set := NewNodeSet()
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					set.Add(NodeID(w))
					if w == done.node {
						break
					}
				}
				components = append(components, set)
			}
		}
	}

	return components
}
