package graphgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_EqualContentHashesEqual(t *testing.T) {
	build := func(t *testing.T) *Graph {
		t.Helper()
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b", Weight: 1, Type: "x"},
			{Source: "b", Destination: "c", Weight: 5, Type: "y"},
		}, WithDirected(true), WithWeighted(true), WithNodes([]Node{
			{Key: "a", Types: []string{"red"}},
			{Key: "b"},
			{Key: "c"},
		}))
		require.NoError(t, err)
		return g
	}

	assert.Equal(t, build(t).Hash(), build(t).Hash())
}

func TestHash_NameDoesNotContribute(t *testing.T) {
	edges := []Edge{{Source: "a", Destination: "b"}}
	first, err := FromEdges(edges, WithName("first"))
	require.NoError(t, err)
	second, err := FromEdges(edges, WithName("second"))
	require.NoError(t, err)

	assert.Equal(t, first.Hash(), second.Hash())
}

func TestHash_SuccinctMatchesPlain(t *testing.T) {
	edges := []Edge{
		{Source: "a", Destination: "b"},
		{Source: "b", Destination: "c"},
		{Source: "c", Destination: "a"},
	}
	plain, err := FromEdges(edges, WithDirected(true))
	require.NoError(t, err)
	succinct, err := FromEdges(edges, WithDirected(true), WithSuccinct(true))
	require.NoError(t, err)

	require.True(t, succinct.IsSuccinct())
	assert.Equal(t, plain.Hash(), succinct.Hash())
}

func TestHash_SensitiveToContent(t *testing.T) {
	base, err := FromEdges([]Edge{
		{Source: "a", Destination: "b", Weight: 1},
		{Source: "b", Destination: "c", Weight: 5},
	}, WithDirected(true), WithWeighted(true), WithNodes(abcd))
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func() (*Graph, error)
	}{
		{
			name: "EdgeSetDiffers",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1},
					{Source: "b", Destination: "d", Weight: 5},
				}, WithDirected(true), WithWeighted(true), WithNodes(abcd))
			},
		},
		{
			name: "WeightDiffers",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1},
					{Source: "b", Destination: "c", Weight: 6},
				}, WithDirected(true), WithWeighted(true), WithNodes(abcd))
			},
		},
		{
			name: "DirectednessDiffers",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1},
					{Source: "b", Destination: "c", Weight: 5},
				}, WithWeighted(true), WithNodes(abcd))
			},
		},
		{
			name: "NodeKeyDiffers",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1},
					{Source: "b", Destination: "c", Weight: 5},
				}, WithDirected(true), WithWeighted(true), WithNodes([]Node{
					{Key: "a"}, {Key: "b"}, {Key: "c"}, {Key: "e"},
				}))
			},
		},
		{
			name: "EdgeTypesAdded",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1, Type: "x"},
					{Source: "b", Destination: "c", Weight: 5, Type: "x"},
				}, WithDirected(true), WithWeighted(true), WithNodes(abcd))
			},
		},
		{
			name: "NodeTypesAdded",
			build: func() (*Graph, error) {
				return FromEdges([]Edge{
					{Source: "a", Destination: "b", Weight: 1},
					{Source: "b", Destination: "c", Weight: 5},
				}, WithDirected(true), WithWeighted(true), WithNodes([]Node{
					{Key: "a", Types: []string{"red"}}, {Key: "b"}, {Key: "c"}, {Key: "d"},
				}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variant, err := tt.build()
			require.NoError(t, err)
			assert.NotEqual(t, base.Hash(), variant.Hash())
		})
	}
}
