package graphgo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDijkstra(t *testing.T) {
	t.Run("WeightedDirected", func(t *testing.T) {
		// a -1-> b -1-> c and a -3-> c: the two-hop route wins.
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b", Weight: 1},
			{Source: "b", Destination: "c", Weight: 1},
			{Source: "a", Destination: "c", Weight: 3},
			{Source: "c", Destination: "d", Weight: 0.5},
		}, WithDirected(true), WithWeighted(true), WithNodes([]Node{
			{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"},
		}))
		require.NoError(t, err)

		sp, err := g.Dijkstra(0)
		require.NoError(t, err)
		assert.Equal(t, NodeID(0), sp.Source())

		dist := func(id NodeID) float32 {
			d, err := sp.DistanceTo(id)
			require.NoError(t, err)
			return d
		}
		assert.Equal(t, float32(0), dist(0))
		assert.Equal(t, float32(1), dist(1))
		assert.Equal(t, float32(2), dist(2))
		assert.Equal(t, float32(2.5), dist(3))

		path, err := sp.PathTo(3)
		require.NoError(t, err)
		assert.Equal(t, []NodeID{0, 1, 2, 3}, path)
	})

	t.Run("UnweightedCountsHops", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "c"},
			{Source: "c", Destination: "d"},
		})
		require.NoError(t, err)

		sp, err := g.Dijkstra(0)
		require.NoError(t, err)

		d, err := sp.DistanceTo(3)
		require.NoError(t, err)
		assert.Equal(t, float32(3), d)

		// Undirected adjacency is mirrored, so the reverse direction works too.
		back, err := g.Dijkstra(3)
		require.NoError(t, err)
		d, err = back.DistanceTo(0)
		require.NoError(t, err)
		assert.Equal(t, float32(3), d)
	})

	t.Run("Unreachable", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
		}, WithDirected(true), WithNodes([]Node{
			{Key: "a"}, {Key: "b"}, {Key: "island"},
		}))
		require.NoError(t, err)

		sp, err := g.Dijkstra(0)
		require.NoError(t, err)

		assert.False(t, sp.Reachable(2))
		d, err := sp.DistanceTo(2)
		require.NoError(t, err)
		assert.True(t, math.IsInf(float64(d), 1))

		path, err := sp.PathTo(2)
		require.NoError(t, err)
		assert.Nil(t, path)
	})

	t.Run("SourcePathIsItself", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
		})
		require.NoError(t, err)

		sp, err := g.Dijkstra(1)
		require.NoError(t, err)

		path, err := sp.PathTo(1)
		require.NoError(t, err)
		assert.Equal(t, []NodeID{1}, path)
	})

	t.Run("DirectionRespected", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
		}, WithDirected(true))
		require.NoError(t, err)

		sp, err := g.Dijkstra(1)
		require.NoError(t, err)
		assert.False(t, sp.Reachable(0))
	})

	t.Run("SourceOutOfRange", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
		})
		require.NoError(t, err)

		_, err = g.Dijkstra(9)

		var invalid *ErrInvalidNodeID
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, NodeID(9), invalid.NodeID)
	})

	t.Run("TargetOutOfRange", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
		})
		require.NoError(t, err)

		sp, err := g.Dijkstra(0)
		require.NoError(t, err)

		_, err = sp.DistanceTo(5)
		var invalid *ErrInvalidNodeID
		require.ErrorAs(t, err, &invalid)

		_, err = sp.PathTo(5)
		require.ErrorAs(t, err, &invalid)

		assert.False(t, sp.Reachable(5))
	})
}
