package graphgo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	t.Run("FullyFeatured", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "a", Weight: 2, Type: "loop"},
			{Source: "a", Destination: "b", Weight: 1, Type: "follows"},
			{Source: "b", Destination: "c", Weight: 5, Type: "follows"},
		}, WithDirected(true), WithWeighted(true), WithName("social"), WithNodes([]Node{
			{Key: "a", Types: []string{"user"}},
			{Key: "b", Types: []string{"user"}},
			{Key: "c", Types: []string{"admin"}},
		}))
		require.NoError(t, err)

		report := g.Report()

		assert.Contains(t, report, `graph "social" (directed)`)
		assert.Contains(t, report, "nodes:      3")
		assert.Contains(t, report, "edges:      3")
		assert.Contains(t, report, "self-loops: 1")
		assert.Contains(t, report, "trap nodes: 1")
		assert.Contains(t, report, "degree:     min 0 / mean 1.00 / max 2")
		assert.Contains(t, report, "weights:    yes (total 8.000)")
		assert.Contains(t, report, "edge types: 2")
		assert.Contains(t, report, "node types: 2")
		assert.Contains(t, report, "encoding:   csr")
		assert.Greater(t, strings.Count(report, "\n"), 7)
	})

	t.Run("BareUndirected", func(t *testing.T) {
		g, err := FromEdges([]Edge{{Source: "a", Destination: "b"}})
		require.NoError(t, err)

		report := g.Report()

		assert.Contains(t, report, "graph (undirected)")
		assert.Contains(t, report, "weights:    none")
		assert.NotContains(t, report, "edge types")
		assert.NotContains(t, report, "node types")
	})

	t.Run("Succinct", func(t *testing.T) {
		g, err := FromEdges([]Edge{{Source: "a", Destination: "b"}}, WithSuccinct(true))
		require.NoError(t, err)

		assert.Contains(t, g.Report(), "encoding:   elias-fano")
	})
}

func TestString(t *testing.T) {
	g, err := FromEdges([]Edge{
		{Source: "a", Destination: "b"},
		{Source: "b", Destination: "c"},
	}, WithDirected(true), WithName("tiny"))
	require.NoError(t, err)

	assert.Equal(t, `Graph(name="tiny", directed=true, nodes=3, edges=2, weighted=false, succinct=false)`, g.String())
}
