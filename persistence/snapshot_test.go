package persistence

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/graphgo/codec"
	"github.com/hupe1980/graphgo/internal/rng"
)

// makeSnapshot builds a small directed snapshot exercising every optional
// payload: weights, edge types, and node types.
func makeSnapshot() *Snapshot {
	return &Snapshot{
		Meta: Meta{
			Name:          "social",
			Directed:      true,
			Weighted:      true,
			EdgeTyped:     true,
			NodeTyped:     true,
			NodeCount:     3,
			EntryCount:    3,
			Hash:          0x9e3779b97f4a7c15,
			EdgeTypeNames: []string{"follows", "blocks"},
			NodeTypeNames: []string{"user", "bot"},
		},
		NodeKeys:        []string{"alice", "bob", "carol"},
		Offsets:         []uint64{0, 2, 3, 3},
		Destinations:    []uint32{1, 2, 0},
		Weights:         []float32{1, 2.5, 0.25},
		EdgeTypes:       []uint32{0, 1, 0},
		NodeTypeOffsets: []uint64{0, 1, 1, 2},
		NodeTypeIDs:     []uint32{0, 1},
	}
}

// bigSnapshot builds a snapshot whose destinations section is large and
// repetitive, so block compression genuinely engages.
func bigSnapshot() *Snapshot {
	const entries = 8192
	dst := make([]uint32, entries)
	for i := range dst {
		dst[i] = 1
	}
	return &Snapshot{
		Meta:         Meta{Directed: true, NodeCount: 2, EntryCount: entries},
		NodeKeys:     []string{"hub", "sink"},
		Offsets:      []uint64{0, entries, entries},
		Destinations: dst,
	}
}

func writeSnapshot(t *testing.T, snap *Snapshot, optFns ...WriteOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap, optFns...))
	return buf.Bytes()
}

func assertSnapshotEqual(t *testing.T, want, got *Snapshot) {
	t.Helper()
	assert.Equal(t, want.Meta, got.Meta)
	assert.Equal(t, want.NodeKeys, got.NodeKeys)
	assert.Equal(t, want.Offsets, got.Offsets)
	assert.Equal(t, want.Destinations, got.Destinations)
	assert.Equal(t, want.SequenceLow, got.SequenceLow)
	assert.Equal(t, want.SequenceHigh, got.SequenceHigh)
	assert.Equal(t, want.Weights, got.Weights)
	assert.Equal(t, want.EdgeTypes, got.EdgeTypes)
	assert.Equal(t, want.NodeTypeOffsets, got.NodeTypeOffsets)
	assert.Equal(t, want.NodeTypeIDs, got.NodeTypeIDs)
}

func TestWriteRead(t *testing.T) {
	t.Run("FullFeatured", func(t *testing.T) {
		snap := makeSnapshot()
		data := writeSnapshot(t, snap)

		assert.Equal(t, uint32(MagicNumber), binary.LittleEndian.Uint32(data))

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("Succinct", func(t *testing.T) {
		snap := &Snapshot{
			Meta: Meta{
				Directed:         true,
				Succinct:         true,
				NodeCount:        3,
				EntryCount:       2,
				SequenceUniverse: 9,
				SequenceHighBits: 16,
			},
			NodeKeys:     []string{"a", "b", "c"},
			Offsets:      []uint64{0, 1, 2, 2},
			SequenceLow:  []uint64{0x0123456789abcdef},
			SequenceHigh: []uint64{0x5},
		}
		data := writeSnapshot(t, snap)

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("EmptyGraph", func(t *testing.T) {
		snap := &Snapshot{
			NodeKeys:     []string{},
			Offsets:      []uint64{0},
			Destinations: []uint32{},
		}
		data := writeSnapshot(t, snap)

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("StdlibJSONCodec", func(t *testing.T) {
		snap := makeSnapshot()
		data := writeSnapshot(t, snap, WithCodec(codec.JSON{}))

		var header FileHeader
		require.NoError(t, binary.Read(bytes.NewReader(data), binary.LittleEndian, &header))
		assert.Equal(t, "json", headerCodecName(header.Codec))

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("ZstdShrinksAndRoundTrips", func(t *testing.T) {
		snap := bigSnapshot()
		raw := writeSnapshot(t, snap)
		data := writeSnapshot(t, snap, WithCompression(CompressionZSTD))
		assert.Less(t, len(data), len(raw)/4)

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("LZ4ShrinksAndRoundTrips", func(t *testing.T) {
		snap := bigSnapshot()
		raw := writeSnapshot(t, snap)
		data := writeSnapshot(t, snap, WithCompression(CompressionLZ4))
		assert.Less(t, len(data), len(raw)/4)

		got, err := Read(bytes.NewReader(data))
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})
}

func TestWrite_ShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"NodeKeyCountMismatch", func(s *Snapshot) { s.NodeKeys = s.NodeKeys[:2] }},
		{"OffsetsLengthWrong", func(s *Snapshot) { s.Offsets = s.Offsets[:3] }},
		{"OffsetsEndMismatch", func(s *Snapshot) { s.Meta.EntryCount = 4 }},
		{"WeightsLengthMismatch", func(s *Snapshot) { s.Weights = s.Weights[:1] }},
		{"WeightsWithoutFlag", func(s *Snapshot) { s.Meta.Weighted = false }},
		{"SuccinctWithDestinations", func(s *Snapshot) { s.Meta.Succinct = true }},
		{"NodeTypeOffsetsEndMismatch", func(s *Snapshot) { s.NodeTypeIDs = s.NodeTypeIDs[:1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := makeSnapshot()
			tt.mutate(snap)
			err := Write(io.Discard, snap)
			require.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

type longNameCodec struct{ codec.GoJSON }

func (longNameCodec) Name() string { return "extremely-long-codec-name" }

func TestWrite_CodecNameTooLong(t *testing.T) {
	err := Write(io.Discard, makeSnapshot(), WithCodec(longNameCodec{}))
	require.ErrorIs(t, err, ErrInvalidCodecName)
}

func TestRead_Corruption(t *testing.T) {
	base := writeSnapshot(t, makeSnapshot())

	damaged := func(mutate func(data []byte)) []byte {
		data := append([]byte(nil), base...)
		mutate(data)
		return data
	}

	t.Run("BadMagic", func(t *testing.T) {
		data := damaged(func(d []byte) { d[0] ^= 0xff })
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("BadVersion", func(t *testing.T) {
		data := damaged(func(d []byte) { d[4] ^= 0xff })
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrInvalidVersion)
	})

	t.Run("SectionCountZeroed", func(t *testing.T) {
		data := damaged(func(d []byte) {
			binary.LittleEndian.PutUint32(d[8:], 0)
		})
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("UnknownCodecName", func(t *testing.T) {
		data := damaged(func(d []byte) {
			copy(d[12:20], "nope\x00\x00\x00\x00")
		})
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("UnknownSectionKind", func(t *testing.T) {
		data := damaged(func(d []byte) { d[headerSize] = 99 })
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("DuplicateSectionKind", func(t *testing.T) {
		// Relabel the second section as another meta section.
		data := damaged(func(d []byte) { d[headerSize+sectionHeaderSize] = 1 })
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("DirectoryOffsetDamage", func(t *testing.T) {
		data := damaged(func(d []byte) { d[headerSize+8] ^= 0xff })
		_, err := Read(bytes.NewReader(data))
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("PayloadBitFlip", func(t *testing.T) {
		data := damaged(func(d []byte) { d[len(d)-1] ^= 0xff })
		_, err := Read(bytes.NewReader(data))
		require.True(t, IsChecksumMismatch(err))

		var mismatch *ChecksumMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "node-type-ids", mismatch.Section)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Read(bytes.NewReader(base[:len(base)-4]))
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestReadMapped(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		snap := makeSnapshot()
		data := writeSnapshot(t, snap)

		got, err := ReadMapped(data)
		require.NoError(t, err)
		assertSnapshotEqual(t, snap, got)
	})

	t.Run("ArraysAliasTheMapping", func(t *testing.T) {
		data := writeSnapshot(t, makeSnapshot())

		got, err := ReadMapped(data)
		require.NoError(t, err)

		// The offsets array must point into data, not into a copy.
		require.NotEmpty(t, got.Offsets)
		first := got.Offsets[0]
		for i := range data {
			data[i] ^= 0xff
		}
		assert.NotEqual(t, first, got.Offsets[0])
	})

	t.Run("CompressedRejected", func(t *testing.T) {
		data := writeSnapshot(t, bigSnapshot(), WithCompression(CompressionZSTD))
		_, err := ReadMapped(data)
		require.ErrorIs(t, err, ErrCompressedMapping)
	})

	t.Run("TruncatedRejected", func(t *testing.T) {
		data := writeSnapshot(t, makeSnapshot())
		_, err := ReadMapped(data[:len(data)-8])
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}

func TestStringList(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		keys := []string{"alpha", "", "βήτα", "delta"}
		got, err := parseStringList(appendStringList(nil, keys))
		require.NoError(t, err)
		assert.Equal(t, keys, got)
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := parseStringList(appendStringList(nil, nil))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		data := append(appendStringList(nil, []string{"a"}), 0)
		_, err := parseStringList(data)
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("CountLiesHigh", func(t *testing.T) {
		data := appendStringList(nil, []string{"a", "b"})
		binary.LittleEndian.PutUint64(data, 1<<40)
		_, err := parseStringList(data)
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})

	t.Run("TruncatedKey", func(t *testing.T) {
		data := appendStringList(nil, []string{"abcdef"})
		_, err := parseStringList(data[:len(data)-2])
		require.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}

func TestCompressSection(t *testing.T) {
	repetitive := bytes.Repeat([]byte("graphgo!"), 1024)

	t.Run("ZstdRoundTrip", func(t *testing.T) {
		stored, actual, err := compressSection(repetitive, CompressionZSTD)
		require.NoError(t, err)
		require.Equal(t, CompressionZSTD, actual)
		assert.Less(t, len(stored), len(repetitive))

		dst := make([]byte, len(repetitive))
		require.NoError(t, decompressSection(stored, actual, dst))
		assert.Equal(t, repetitive, dst)
	})

	t.Run("LZ4RoundTrip", func(t *testing.T) {
		stored, actual, err := compressSection(repetitive, CompressionLZ4)
		require.NoError(t, err)
		require.Equal(t, CompressionLZ4, actual)
		assert.Less(t, len(stored), len(repetitive))

		dst := make([]byte, len(repetitive))
		require.NoError(t, decompressSection(stored, actual, dst))
		assert.Equal(t, repetitive, dst)
	})

	t.Run("IncompressibleFallsBack", func(t *testing.T) {
		r := rng.New(7)
		raw := make([]byte, 4096)
		for i := 0; i < len(raw); i += 8 {
			binary.LittleEndian.PutUint64(raw[i:], r.Uint64())
		}

		for _, want := range []CompressionType{CompressionLZ4, CompressionZSTD} {
			stored, actual, err := compressSection(raw, want)
			require.NoError(t, err)
			assert.Equal(t, CompressionNone, actual, "compression %s should fall back", want)
			assert.Equal(t, raw, stored)
		}
	})

	t.Run("NonePassthrough", func(t *testing.T) {
		stored, actual, err := compressSection(repetitive, CompressionNone)
		require.NoError(t, err)
		assert.Equal(t, CompressionNone, actual)
		assert.Equal(t, repetitive, stored)
	})
}
