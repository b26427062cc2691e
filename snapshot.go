package graphgo

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/graphgo/internal/succinct"
	"github.com/hupe1980/graphgo/persistence"
	"github.com/hupe1980/graphgo/vocabulary"
)

// SaveToWriter writes the graph as a binary snapshot to w.
//
// The stream carries everything needed to reconstruct the graph: the node
// vocabulary, the adjacency arrays in their stored encoding, optional
// payloads and type vocabularies, and the structural hash, which loads
// recompute and verify. Options control compression and the metadata codec;
// see SaveToFile for the compression trade-off.
func (g *Graph) SaveToWriter(w io.Writer, optFns ...persistence.WriteOption) (err error) {
	start := time.Now()
	defer func() {
		g.metrics.RecordSnapshotSave(time.Since(start), err)
	}()

	return persistence.Write(w, g.snapshot(), optFns...)
}

// SaveToFile atomically writes the graph snapshot to filename: the bytes go
// to a temp file in the same directory and are renamed over the target only
// after a successful sync.
//
// The default writes uncompressed sections so the file stays usable with
// LoadFromFileMmap; persistence.WithCompression shrinks the file but forces
// loads to copy.
func (g *Graph) SaveToFile(filename string, optFns ...persistence.WriteOption) (err error) {
	start := time.Now()
	defer func() {
		g.metrics.RecordSnapshotSave(time.Since(start), err)
		g.logger.LogSnapshotSave(context.Background(), filename, err)
	}()

	return persistence.WriteFile(filename, g.snapshot(), optFns...)
}

// LoadFromReader reads a snapshot from r and reconstructs the graph.
//
// Only ambient options apply (WithMetricsCollector, WithLogger,
// WithController); the snapshot itself defines name, directedness, encoding,
// and payloads. The structural hash stored at save time is recomputed over
// the decoded arrays, so corruption that slipped past the per-section
// checksums still fails the load.
func LoadFromReader(r io.Reader, optFns ...Option) (*Graph, error) {
	o := applyOptions(optFns)

	var g *Graph
	start := time.Now()
	snap, err := persistence.Read(r)
	if err == nil {
		g, err = graphFromSnapshot(snap, o)
	}
	o.metricsCollector.RecordSnapshotLoad(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFromFile reads a snapshot file written by SaveToFile. See
// LoadFromReader for option semantics and integrity checks.
func LoadFromFile(filename string, optFns ...Option) (*Graph, error) {
	o := applyOptions(optFns)

	var g *Graph
	start := time.Now()
	snap, err := persistence.ReadFile(filename)
	if err == nil {
		g, err = graphFromSnapshot(snap, o)
	}
	o.metricsCollector.RecordSnapshotLoad(time.Since(start), err)
	o.logger.LogSnapshotLoad(context.Background(), filename, err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LoadFromFileMmap memory-maps a snapshot file and serves the adjacency
// directly from the mapping instead of copying it onto the heap, so the load
// is near-instant and the resident cost is paid per page on first touch.
//
// The graph owns the mapping and Close releases it; every query after Close
// is invalid. Requires a file written without compression.
func LoadFromFileMmap(filename string, optFns ...Option) (*Graph, error) {
	o := applyOptions(optFns)

	var g *Graph
	start := time.Now()
	snap, closer, err := persistence.MapFile(filename)
	if err == nil {
		g, err = graphFromSnapshot(snap, o)
		if err != nil {
			_ = closer.Close()
		} else {
			g.mmapCloser = closer
		}
	}
	o.metricsCollector.RecordSnapshotLoad(time.Since(start), err)
	o.logger.LogSnapshotLoad(context.Background(), filename, err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// snapshot bridges the graph to the persistence layer's neutral form. The
// returned snapshot aliases the graph's arrays and must only be read.
func (g *Graph) snapshot() *persistence.Snapshot {
	snap := &persistence.Snapshot{
		Meta: persistence.Meta{
			Name:       g.name,
			Directed:   g.directed,
			Weighted:   g.weights != nil,
			Succinct:   g.seq != nil,
			EdgeTyped:  g.edgeTypes != nil,
			NodeTyped:  g.nodeTypeOffsets != nil,
			NodeCount:  g.NodeCount(),
			EntryCount: g.DirectedEdgeCount(),
			Hash:       g.Hash(),
		},
		NodeKeys:        g.vocab.Keys(),
		Offsets:         g.offsets,
		Weights:         g.weights,
		EdgeTypes:       g.edgeTypes,
		NodeTypeOffsets: g.nodeTypeOffsets,
		NodeTypeIDs:     g.nodeTypeIDs,
	}

	if g.seq != nil {
		snap.SequenceLow = g.seq.LowWords()
		snap.SequenceHigh = g.seq.HighWords()
		snap.Meta.SequenceUniverse = g.seq.Universe()
		snap.Meta.SequenceHighBits = g.seq.HighBitLen()
	} else {
		snap.Destinations = g.dst
	}
	if g.edgeTypeVocab != nil {
		snap.Meta.EdgeTypeNames = g.edgeTypeVocab.Keys()
	}
	if g.nodeTypeVocab != nil {
		snap.Meta.NodeTypeNames = g.nodeTypeVocab.Keys()
	}
	return snap
}

// graphFromSnapshot reconstructs a graph from a decoded snapshot. The arrays
// are adopted, not copied; for mapped snapshots they alias the mapping.
func graphFromSnapshot(snap *persistence.Snapshot, o options) (*Graph, error) {
	m := &snap.Meta

	vocab := vocabulary.NewWithCapacity(len(snap.NodeKeys))
	for _, key := range snap.NodeKeys {
		vocab.Insert(key)
	}
	if vocab.Len() != len(snap.NodeKeys) {
		return nil, &ErrMalformedInput{Reason: "snapshot node keys contain duplicates"}
	}

	// Offsets must be non-decreasing before anything walks the adjacency;
	// all remaining content damage is caught by the hash comparison below.
	prev := uint64(0)
	for i, off := range snap.Offsets {
		if off < prev {
			return nil, &ErrMalformedInput{Reason: fmt.Sprintf("snapshot offsets decrease at index %d", i)}
		}
		prev = off
	}

	g := &Graph{
		name:       m.Name,
		directed:   m.Directed,
		offsets:    snap.Offsets,
		vocab:      vocab,
		metrics:    o.metricsCollector,
		logger:     o.logger,
		controller: o.controller,
	}

	if m.Succinct {
		seq, err := succinct.FromParts(m.EntryCount, m.SequenceUniverse, snap.SequenceLow, snap.SequenceHigh, m.SequenceHighBits)
		if err != nil {
			return nil, &ErrMalformedInput{Reason: "snapshot sequence words are inconsistent", cause: err}
		}
		g.seq = seq
	} else {
		g.dst = snap.Destinations
	}
	if m.Weighted {
		g.weights = snap.Weights
	}
	if m.EdgeTyped {
		g.edgeTypes = snap.EdgeTypes
		g.edgeTypeVocab = vocabularyFromNames(m.EdgeTypeNames)
	}
	if m.NodeTyped {
		g.nodeTypeOffsets = snap.NodeTypeOffsets
		g.nodeTypeIDs = snap.NodeTypeIDs
		g.nodeTypeVocab = vocabularyFromNames(m.NodeTypeNames)
	}

	g.finalize()

	if got := g.Hash(); got != m.Hash {
		return nil, &ErrMalformedInput{
			Reason: fmt.Sprintf("snapshot hash mismatch: stored 0x%016x, computed 0x%016x", m.Hash, got),
		}
	}
	return g, nil
}

func vocabularyFromNames(names []string) *vocabulary.Vocabulary {
	v := vocabulary.NewWithCapacity(len(names))
	for _, name := range names {
		v.Insert(name)
	}
	return v
}
