package graphgo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectedComponents(t *testing.T) {
	t.Run("TwoTrianglesAndAnIsolate", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "c"},
			{Source: "c", Destination: "a"},
			{Source: "x", Destination: "y"},
			{Source: "y", Destination: "z"},
			{Source: "z", Destination: "x"},
		}, WithNodes([]Node{
			{Key: "a"}, {Key: "b"}, {Key: "c"},
			{Key: "x"}, {Key: "y"}, {Key: "z"},
			{Key: "lone"},
		}))
		require.NoError(t, err)

		membership, count, minSize, maxSize := g.ConnectedComponents()

		assert.Equal(t, uint32(3), count)
		assert.Equal(t, uint32(1), minSize)
		assert.Equal(t, uint32(3), maxSize)
		assert.Equal(t, []uint32{0, 0, 0, 1, 1, 1, 2}, membership)
	})

	t.Run("DirectionIsIgnored", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "c", Destination: "b"},
		}, WithDirected(true))
		require.NoError(t, err)

		_, count, _, _ := g.ConnectedComponents()
		assert.Equal(t, uint32(1), count)
	})

	t.Run("Empty", func(t *testing.T) {
		g, err := FromEdges(nil)
		require.NoError(t, err)

		membership, count, minSize, maxSize := g.ConnectedComponents()
		assert.Nil(t, membership)
		assert.Equal(t, uint32(0), count)
		assert.Equal(t, uint32(0), minSize)
		assert.Equal(t, uint32(0), maxSize)
	})
}

func TestStronglyConnectedComponents(t *testing.T) {
	t.Run("CycleAndTail", func(t *testing.T) {
		// a -> b -> c -> a forms the only non-trivial component; d feeds the
		// cycle and e is unreachable.
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "c"},
			{Source: "c", Destination: "a"},
			{Source: "d", Destination: "a"},
		}, WithDirected(true), WithNodes([]Node{
			{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "d"}, {Key: "e"},
		}))
		require.NoError(t, err)

		components := g.StronglyConnectedComponents()
		require.Len(t, components, 3)

		// Every node lands in exactly one component.
		seen := NewNodeSet()
		for _, c := range components {
			assert.False(t, seen.Overlaps(c))
			seen = seen.Union(c)
		}
		assert.Equal(t, uint64(5), seen.Len())

		var cycle *NodeSet
		for _, c := range components {
			if c.Len() == 3 {
				cycle = c
			}
		}
		require.NotNil(t, cycle)
		assert.Equal(t, []NodeID{0, 1, 2}, cycle.ToSlice())
	})

	t.Run("DirectedChainIsAllSingletons", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "c"},
		}, WithDirected(true))
		require.NoError(t, err)

		components := g.StronglyConnectedComponents()
		assert.Len(t, components, 3)

		_, count, _, _ := g.ConnectedComponents()
		assert.Equal(t, uint32(1), count)
	})

	t.Run("MutualPairCollapses", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "a"},
		}, WithDirected(true))
		require.NoError(t, err)

		components := g.StronglyConnectedComponents()
		require.Len(t, components, 1)
		assert.Equal(t, uint64(2), components[0].Len())
	})

	t.Run("UndirectedMatchesWeakComponents", func(t *testing.T) {
		// On undirected graphs the strong partition equals the weak one.
		edges := make([]Edge, 0, 64)
		for i := 0; i < 32; i++ {
			edges = append(edges, Edge{
				Source:      fmt.Sprintf("n%d", i%24),
				Destination: fmt.Sprintf("n%d", (i*5+2)%24),
			})
		}

		g, err := FromEdges(edges)
		require.NoError(t, err)

		_, weak, _, _ := g.ConnectedComponents()
		strong := g.StronglyConnectedComponents()
		assert.Equal(t, int(weak), len(strong))
	})

	t.Run("Empty", func(t *testing.T) {
		g, err := FromEdges(nil)
		require.NoError(t, err)
		assert.Nil(t, g.StronglyConnectedComponents())
	})
}

func TestNodeSet(t *testing.T) {
	t.Run("Basics", func(t *testing.T) {
		s := NewNodeSet(3, 1, 7)

		assert.Equal(t, uint64(3), s.Len())
		assert.True(t, s.Contains(1))
		assert.False(t, s.Contains(2))
		assert.Equal(t, NodeID(1), s.Min())
		assert.Equal(t, NodeID(7), s.Max())
		assert.Equal(t, []NodeID{1, 3, 7}, s.ToSlice())

		s.Remove(3)
		assert.False(t, s.Contains(3))
		assert.Equal(t, uint64(2), s.Len())
	})

	t.Run("Algebra", func(t *testing.T) {
		a := NewNodeSet(1, 2, 3)
		b := NewNodeSet(3, 4)

		assert.Equal(t, []NodeID{1, 2, 3, 4}, a.Union(b).ToSlice())
		assert.Equal(t, []NodeID{3}, a.Intersection(b).ToSlice())
		assert.Equal(t, []NodeID{1, 2}, a.Difference(b).ToSlice())
		assert.Equal(t, []NodeID{1, 2, 4}, a.SymmetricDifference(b).ToSlice())

		assert.True(t, a.Overlaps(b))
		assert.False(t, a.Overlaps(NewNodeSet(9)))
		assert.True(t, a.ContainsSet(NewNodeSet(1, 3)))
		assert.False(t, a.ContainsSet(b))

		// Inputs are untouched.
		assert.Equal(t, uint64(3), a.Len())
		assert.Equal(t, uint64(2), b.Len())
	})

	t.Run("CloneIsIndependent", func(t *testing.T) {
		a := NewNodeSet(1)
		c := a.Clone()
		c.Add(2)

		assert.True(t, a.Equal(NewNodeSet(1)))
		assert.False(t, a.Equal(c))
	})

	t.Run("IteratorEarlyBreak", func(t *testing.T) {
		s := NewNodeSet(1, 2, 3, 4)

		var got []NodeID
		for id := range s.Iterator() {
			got = append(got, id)
			if len(got) == 2 {
				break
			}
		}
		assert.Equal(t, []NodeID{1, 2}, got)
	})

	t.Run("Empty", func(t *testing.T) {
		s := NewNodeSet()
		assert.True(t, s.IsEmpty())
		assert.Empty(t, s.ToSlice())
	})
}
