package graphgo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphgo/persistence"
)

// fullFeaturedGraph exercises every optional payload at once: weights, edge
// types, and node types.
func fullFeaturedGraph(t *testing.T, extra ...Option) *Graph {
	t.Helper()
	opts := append([]Option{
		WithName("social"),
		WithDirected(true),
		WithWeighted(true),
		WithNodes([]Node{
			{Key: "alice", Types: []string{"user"}},
			{Key: "bob", Types: []string{"user", "admin"}},
			{Key: "carol"},
		}),
	}, extra...)
	g, err := FromEdges([]Edge{
		{Source: "alice", Destination: "bob", Weight: 1, Type: "follows"},
		{Source: "alice", Destination: "carol", Weight: 2.5, Type: "blocks"},
		{Source: "bob", Destination: "alice", Weight: 0.25, Type: "follows"},
	}, opts...)
	require.NoError(t, err)
	return g
}

// chainGraph builds a path graph long enough that its sections compress.
func chainGraph(t *testing.T, n int, extra ...Option) *Graph {
	t.Helper()
	edges := make([]Edge, 0, n-1)
	for i := 0; i < n-1; i++ {
		edges = append(edges, Edge{
			Source:      fmt.Sprintf("n%04d", i),
			Destination: fmt.Sprintf("n%04d", i+1),
		})
	}
	g, err := FromEdges(edges, append([]Option{WithDirected(true)}, extra...)...)
	require.NoError(t, err)
	return g
}

func saveToBuffer(t *testing.T, g *Graph, optFns ...persistence.WriteOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, g.SaveToWriter(&buf, optFns...))
	return buf.Bytes()
}

// assertGraphsEquivalent checks that got answers every query like want. The
// structural hash covers adjacency, payloads, and vocabularies; the spot
// queries on top guard the wiring between the loaded arrays and the lookup
// paths.
func assertGraphsEquivalent(t *testing.T, want, got *Graph) {
	t.Helper()

	assert.Equal(t, want.Hash(), got.Hash())
	assert.Equal(t, want.Name(), got.Name())
	assert.Equal(t, want.IsDirected(), got.IsDirected())
	assert.Equal(t, want.IsWeighted(), got.IsWeighted())
	assert.Equal(t, want.HasEdgeTypes(), got.HasEdgeTypes())
	assert.Equal(t, want.HasNodeTypes(), got.HasNodeTypes())
	assert.Equal(t, want.NodeCount(), got.NodeCount())
	assert.Equal(t, want.EdgeCount(), got.EdgeCount())
	assert.Equal(t, want.SelfloopCount(), got.SelfloopCount())
	assert.Equal(t, want.TrapNodeCount(), got.TrapNodeCount())

	for id := NodeID(0); id < NodeID(want.NodeCount()); id++ {
		wantKey, err := want.NodeKey(id)
		require.NoError(t, err)
		gotKey, err := got.NodeKey(id)
		require.NoError(t, err)
		assert.Equal(t, wantKey, gotKey)

		wantNeighbors, err := want.NeighborSlice(id)
		require.NoError(t, err)
		gotNeighbors, err := got.NeighborSlice(id)
		require.NoError(t, err)
		assert.Equal(t, wantNeighbors, gotNeighbors)

		if want.HasNodeTypes() {
			wantTypes, err := want.NodeTypes(id)
			require.NoError(t, err)
			gotTypes, err := got.NodeTypes(id)
			require.NoError(t, err)
			assert.Equal(t, wantTypes, gotTypes)
		}
	}

	for slot := EdgeID(0); slot < EdgeID(want.DirectedEdgeCount()); slot++ {
		if want.IsWeighted() {
			wantW, err := want.EdgeWeight(slot)
			require.NoError(t, err)
			gotW, err := got.EdgeWeight(slot)
			require.NoError(t, err)
			assert.Equal(t, wantW, gotW)
		}
		if want.HasEdgeTypes() {
			wantT, _, err := want.EdgeType(slot)
			require.NoError(t, err)
			gotT, _, err := got.EdgeType(slot)
			require.NoError(t, err)
			assert.Equal(t, wantT, gotT)

			wantName, err := want.EdgeTypeName(wantT)
			require.NoError(t, err)
			gotName, err := got.EdgeTypeName(gotT)
			require.NoError(t, err)
			assert.Equal(t, wantName, gotName)
		}
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Run("FullFeatured", func(t *testing.T) {
		g := fullFeaturedGraph(t)
		got, err := LoadFromReader(bytes.NewReader(saveToBuffer(t, g)))
		require.NoError(t, err)

		assertGraphsEquivalent(t, g, got)
		assert.False(t, got.IsSuccinct())
	})

	t.Run("Succinct", func(t *testing.T) {
		g := fullFeaturedGraph(t, WithSuccinct(true))
		require.True(t, g.IsSuccinct())

		got, err := LoadFromReader(bytes.NewReader(saveToBuffer(t, g)))
		require.NoError(t, err)

		assert.True(t, got.IsSuccinct())
		assertGraphsEquivalent(t, g, got)
	})

	t.Run("Undirected", func(t *testing.T) {
		g, err := FromEdges([]Edge{
			{Source: "a", Destination: "b"},
			{Source: "b", Destination: "c"},
		})
		require.NoError(t, err)
		require.False(t, g.IsDirected())

		got, err := LoadFromReader(bytes.NewReader(saveToBuffer(t, g)))
		require.NoError(t, err)

		assertGraphsEquivalent(t, g, got)
		assert.Equal(t, uint64(2), got.EdgeCount())
		assert.Equal(t, uint64(4), got.DirectedEdgeCount())
	})

	t.Run("EmptyGraph", func(t *testing.T) {
		g, err := FromEdges(nil, WithName("empty"))
		require.NoError(t, err)

		got, err := LoadFromReader(bytes.NewReader(saveToBuffer(t, g)))
		require.NoError(t, err)

		assert.Equal(t, uint32(0), got.NodeCount())
		assert.Equal(t, uint64(0), got.EdgeCount())
		assert.Equal(t, "empty", got.Name())
		assert.Equal(t, g.Hash(), got.Hash())
	})

	t.Run("LoadedGraphAnswersAlgorithms", func(t *testing.T) {
		g := chainGraph(t, 64)
		got, err := LoadFromReader(bytes.NewReader(saveToBuffer(t, g)))
		require.NoError(t, err)

		_, count, _, _ := got.ConnectedComponents()
		assert.Equal(t, uint32(1), count)

		source, ok := got.NodeID("n0000")
		require.True(t, ok)
		paths, err := got.Dijkstra(source)
		require.NoError(t, err)
		last, ok := got.NodeID("n0063")
		require.True(t, ok)
		require.True(t, paths.Reachable(last))
		dist, err := paths.DistanceTo(last)
		require.NoError(t, err)
		assert.Equal(t, float32(63), dist)
	})
}

func TestSnapshot_FileRoundTrip(t *testing.T) {
	g := fullFeaturedGraph(t)
	path := filepath.Join(t.TempDir(), "social.grp")
	require.NoError(t, g.SaveToFile(path))

	t.Run("LoadFromFile", func(t *testing.T) {
		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assertGraphsEquivalent(t, g, got)
	})

	t.Run("LoadFromFileMmap", func(t *testing.T) {
		got, err := LoadFromFileMmap(path)
		require.NoError(t, err)

		assertGraphsEquivalent(t, g, got)

		require.NoError(t, got.Close())
		assert.NoError(t, got.Close()) // idempotent
	})
}

func TestSnapshot_CompressedFile(t *testing.T) {
	g := chainGraph(t, 2048, WithName("chain"))
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.grp")
	packed := filepath.Join(dir, "packed.grp")
	require.NoError(t, g.SaveToFile(plain))
	require.NoError(t, g.SaveToFile(packed, persistence.WithCompression(persistence.CompressionZSTD)))

	assert.Less(t, fileSize(t, packed), fileSize(t, plain))

	got, err := LoadFromFile(packed)
	require.NoError(t, err)
	assertGraphsEquivalent(t, g, got)

	// Mapping serves pages verbatim, so compressed sections cannot back it.
	_, err = LoadFromFileMmap(packed)
	require.ErrorIs(t, err, persistence.ErrCompressedMapping)

	mapped, err := LoadFromFileMmap(plain)
	require.NoError(t, err)
	defer mapped.Close()
	assert.Equal(t, g.Hash(), mapped.Hash())
}

func TestSnapshot_RejectsDamage(t *testing.T) {
	t.Run("StoredHashMismatch", func(t *testing.T) {
		g := fullFeaturedGraph(t)
		snap := g.snapshot()
		snap.Meta.Hash ^= 1

		var buf bytes.Buffer
		require.NoError(t, persistence.Write(&buf, snap))

		_, err := LoadFromReader(&buf)
		var malformed *ErrMalformedInput
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "hash mismatch")
	})

	t.Run("DuplicateNodeKeys", func(t *testing.T) {
		snap := &persistence.Snapshot{
			Meta:         persistence.Meta{NodeCount: 2},
			NodeKeys:     []string{"a", "a"},
			Offsets:      []uint64{0, 0, 0},
			Destinations: []uint32{},
		}
		var buf bytes.Buffer
		require.NoError(t, persistence.Write(&buf, snap))

		_, err := LoadFromReader(&buf)
		var malformed *ErrMalformedInput
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "duplicates")
	})

	t.Run("DecreasingOffsets", func(t *testing.T) {
		snap := &persistence.Snapshot{
			Meta:         persistence.Meta{NodeCount: 3, EntryCount: 3},
			NodeKeys:     []string{"a", "b", "c"},
			Offsets:      []uint64{0, 2, 1, 3},
			Destinations: []uint32{1, 2, 0},
		}
		var buf bytes.Buffer
		require.NoError(t, persistence.Write(&buf, snap))

		_, err := LoadFromReader(&buf)
		var malformed *ErrMalformedInput
		require.ErrorAs(t, err, &malformed)
		assert.Contains(t, malformed.Reason, "offsets decrease")
	})

	t.Run("GarbageBytes", func(t *testing.T) {
		_, err := LoadFromReader(bytes.NewReader([]byte("not a snapshot")))
		require.Error(t, err)
	})
}

func TestSnapshot_Metrics(t *testing.T) {
	t.Run("SaveRecorded", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		g := fullFeaturedGraph(t, WithMetricsCollector(mc))

		var buf bytes.Buffer
		require.NoError(t, g.SaveToWriter(&buf))

		stats := mc.GetStats()
		assert.Equal(t, int64(1), stats.SaveCount)
		assert.Equal(t, int64(0), stats.SaveErrors)
	})

	t.Run("LoadRecorded", func(t *testing.T) {
		g := fullFeaturedGraph(t)
		data := saveToBuffer(t, g)

		mc := &BasicMetricsCollector{}
		_, err := LoadFromReader(bytes.NewReader(data), WithMetricsCollector(mc))
		require.NoError(t, err)

		stats := mc.GetStats()
		assert.Equal(t, int64(1), stats.LoadCount)
		assert.Equal(t, int64(0), stats.LoadErrors)
	})

	t.Run("FailedLoadRecorded", func(t *testing.T) {
		mc := &BasicMetricsCollector{}
		_, err := LoadFromReader(bytes.NewReader([]byte("garbage")), WithMetricsCollector(mc))
		require.Error(t, err)

		stats := mc.GetStats()
		assert.Equal(t, int64(1), stats.LoadCount)
		assert.Equal(t, int64(1), stats.LoadErrors)
	})

	t.Run("LoadedGraphKeepsCollector", func(t *testing.T) {
		g := fullFeaturedGraph(t)
		data := saveToBuffer(t, g)

		mc := &BasicMetricsCollector{}
		got, err := LoadFromReader(bytes.NewReader(data), WithMetricsCollector(mc))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, got.SaveToWriter(&buf))
		assert.Equal(t, int64(1), mc.GetStats().SaveCount)
	})
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
