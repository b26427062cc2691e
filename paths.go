package graphgo

import (
	"math"

	"github.com/hupe1980/graphgo/queue"
)

// ShortestPaths holds the result of a single-source Dijkstra run: one
// distance and one predecessor per node. Unreachable nodes have distance
// +Inf and no predecessor.
type ShortestPaths struct {
	source NodeID
	dist   []float32
	pred   []NodeID
}

// Dijkstra computes shortest-path distances from source to every node. On
// weighted graphs the path length is the sum of edge weights (weights are
// validated finite and positive at construction); on unweighted graphs it is
// the hop count.
func (g *Graph) Dijkstra(source NodeID) (*ShortestPaths, error) {
	n := g.NodeCount()
	if uint32(source) >= n {
		return nil, &ErrInvalidNodeID{NodeID: source, NodeCount: n}
	}

	sp := &ShortestPaths{
		source: source,
		dist:   make([]float32, n),
		pred:   make([]NodeID, n),
	}
	inf := float32(math.Inf(1))
	for i := range sp.dist {
		sp.dist[i] = inf
		sp.pred[i] = MaxNodeID
	}
	sp.dist[source] = 0

	q := queue.NewDijkstraQueue(n)
	if err := q.Push(uint32(source), 0); err != nil {
		return nil, translateError(err)
	}
	for {
		u, du, ok := q.PopMin()
		if !ok {
			break
		}
		for slot := g.offsets[u]; slot < g.offsets[u+1]; slot++ {
			v := g.dstAt(slot)
			alt := du + g.weightAt(slot)
			if alt >= sp.dist[v] {
				continue
			}
			sp.dist[v] = alt
			sp.pred[v] = NodeID(u)
			if err := q.Push(v, alt); err != nil {
				return nil, translateError(err)
			}
		}
	}
	return sp, nil
}

// Source returns the node the distances are measured from.
func (sp *ShortestPaths) Source() NodeID {
	return sp.source
}

// DistanceTo returns the shortest-path distance from the source to id, +Inf
// when id is unreachable.
func (sp *ShortestPaths) DistanceTo(id NodeID) (float32, error) {
	if uint32(id) >= uint32(len(sp.dist)) {
		return 0, &ErrInvalidNodeID{NodeID: id, NodeCount: uint32(len(sp.dist))}
	}
	return sp.dist[id], nil
}

// Reachable reports whether id can be reached from the source.
func (sp *ShortestPaths) Reachable(id NodeID) bool {
	return uint32(id) < uint32(len(sp.dist)) && !math.IsInf(float64(sp.dist[id]), 1)
}

// PathTo returns the node sequence of a shortest path from the source to id,
// both endpoints included. It returns nil when id is unreachable.
func (sp *ShortestPaths) PathTo(id NodeID) ([]NodeID, error) {
	if uint32(id) >= uint32(len(sp.dist)) {
		return nil, &ErrInvalidNodeID{NodeID: id, NodeCount: uint32(len(sp.dist))}
	}
	if !sp.Reachable(id) {
		return nil, nil
	}

	path := []NodeID{id}
	for cur := id; cur != sp.source; {
		cur = sp.pred[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
