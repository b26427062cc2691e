package persistence

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/hupe1980/graphgo/codec"
)

// Meta is the codec-encoded metadata document of a snapshot. It carries the
// graph shape flags, the counts the array sections are checked against, and
// the structural hash of the graph at save time.
type Meta struct {
	Name      string `json:"name,omitempty"`
	Directed  bool   `json:"directed"`
	Weighted  bool   `json:"weighted"`
	Succinct  bool   `json:"succinct"`
	EdgeTyped bool   `json:"edge_typed"`
	NodeTyped bool   `json:"node_typed"`

	NodeCount uint32 `json:"node_count"`
	// EntryCount is the number of directed adjacency entries. Undirected
	// graphs store every edge twice, so this is twice their edge count.
	EntryCount uint64 `json:"entry_count"`
	// Hash is the structural hash of the graph at save time. Loaders compare
	// it against the hash of the decoded arrays to catch corruption that
	// slipped past the per-section checksums.
	Hash uint64 `json:"hash"`

	// SequenceUniverse and SequenceHighBits carry the Elias-Fano geometry
	// needed to reassemble a succinct destination sequence.
	SequenceUniverse uint64 `json:"sequence_universe,omitempty"`
	SequenceHighBits uint64 `json:"sequence_high_bits,omitempty"`

	// Type vocabularies are small; they ride in the metadata document in id
	// order rather than in their own sections.
	EdgeTypeNames []string `json:"edge_type_names,omitempty"`
	NodeTypeNames []string `json:"node_type_names,omitempty"`
}

// Snapshot is the in-memory form of a persisted graph: the metadata document
// plus the raw arrays of the compressed sparse row encoding. It decouples the
// file format from the graph type; the root package converts between the two.
//
// Snapshots returned by ReadMapped alias the mapped file; they are read-only
// and valid only while the mapping is open.
type Snapshot struct {
	Meta     Meta
	NodeKeys []string

	Offsets      []uint64
	Destinations []uint32 // plain encoding; empty when Meta.Succinct
	SequenceLow  []uint64 // succinct low-bit words; empty unless Meta.Succinct
	SequenceHigh []uint64 // succinct high bit-vector words; empty unless Meta.Succinct

	Weights         []float32 // empty unless Meta.Weighted
	EdgeTypes       []uint32  // empty unless Meta.EdgeTyped
	NodeTypeOffsets []uint64  // empty unless Meta.NodeTyped
	NodeTypeIDs     []uint32  // empty unless Meta.NodeTyped
}

// validate checks that the array lengths agree with the metadata counts and
// flags. It runs before every write and after every read.
func (s *Snapshot) validate() error {
	m := &s.Meta

	if uint64(len(s.NodeKeys)) != uint64(m.NodeCount) {
		return malformed("%d node keys for %d nodes", len(s.NodeKeys), m.NodeCount)
	}
	if uint64(len(s.Offsets)) != uint64(m.NodeCount)+1 {
		return malformed("offsets length %d, want %d", len(s.Offsets), uint64(m.NodeCount)+1)
	}
	if last := s.Offsets[len(s.Offsets)-1]; last != m.EntryCount {
		return malformed("offsets end at %d, entry count is %d", last, m.EntryCount)
	}

	if m.Succinct {
		if len(s.Destinations) != 0 {
			return malformed("succinct snapshot carries plain destinations")
		}
	} else {
		if len(s.SequenceLow) != 0 || len(s.SequenceHigh) != 0 {
			return malformed("plain snapshot carries sequence words")
		}
		if uint64(len(s.Destinations)) != m.EntryCount {
			return malformed("destinations length %d, entry count is %d", len(s.Destinations), m.EntryCount)
		}
	}

	if m.Weighted {
		if uint64(len(s.Weights)) != m.EntryCount {
			return malformed("weights length %d, entry count is %d", len(s.Weights), m.EntryCount)
		}
	} else if len(s.Weights) != 0 {
		return malformed("unweighted snapshot carries weights")
	}

	if m.EdgeTyped {
		if uint64(len(s.EdgeTypes)) != m.EntryCount {
			return malformed("edge types length %d, entry count is %d", len(s.EdgeTypes), m.EntryCount)
		}
	} else if len(s.EdgeTypes) != 0 {
		return malformed("untyped snapshot carries edge types")
	}

	if m.NodeTyped {
		if uint64(len(s.NodeTypeOffsets)) != uint64(m.NodeCount)+1 {
			return malformed("node type offsets length %d, want %d", len(s.NodeTypeOffsets), uint64(m.NodeCount)+1)
		}
		if last := s.NodeTypeOffsets[len(s.NodeTypeOffsets)-1]; last != uint64(len(s.NodeTypeIDs)) {
			return malformed("node type offsets end at %d, %d ids present", last, len(s.NodeTypeIDs))
		}
	} else if len(s.NodeTypeOffsets) != 0 || len(s.NodeTypeIDs) != 0 {
		return malformed("snapshot carries node types without the node-typed flag")
	}

	return nil
}

// section pairs a directory kind with its raw (uncompressed) payload.
type section struct {
	kind uint32
	raw  []byte
}

// sections assembles the payloads in file order. Bulk arrays become raw byte
// views; nothing is copied.
func (s *Snapshot) sections(c codec.Codec) ([]section, error) {
	metaBytes, err := c.Marshal(s.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	out := make([]section, 0, 10)
	out = append(out,
		section{sectionMeta, metaBytes},
		section{sectionNodeKeys, appendStringList(nil, s.NodeKeys)},
	)

	offsets, err := uint64Bytes(s.Offsets)
	if err != nil {
		return nil, err
	}
	out = append(out, section{sectionOffsets, offsets})

	if s.Meta.Succinct {
		low, err := uint64Bytes(s.SequenceLow)
		if err != nil {
			return nil, err
		}
		high, err := uint64Bytes(s.SequenceHigh)
		if err != nil {
			return nil, err
		}
		out = append(out, section{sectionSequenceLow, low}, section{sectionSequenceHigh, high})
	} else {
		dst, err := uint32Bytes(s.Destinations)
		if err != nil {
			return nil, err
		}
		out = append(out, section{sectionDestinations, dst})
	}

	if s.Meta.Weighted {
		weights, err := float32Bytes(s.Weights)
		if err != nil {
			return nil, err
		}
		out = append(out, section{sectionWeights, weights})
	}
	if s.Meta.EdgeTyped {
		types, err := uint32Bytes(s.EdgeTypes)
		if err != nil {
			return nil, err
		}
		out = append(out, section{sectionEdgeTypes, types})
	}
	if s.Meta.NodeTyped {
		ntOffsets, err := uint64Bytes(s.NodeTypeOffsets)
		if err != nil {
			return nil, err
		}
		ntIDs, err := uint32Bytes(s.NodeTypeIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, section{sectionNodeTypeOffsets, ntOffsets}, section{sectionNodeTypeIDs, ntIDs})
	}

	return out, nil
}

// appendStringList encodes keys as [count u64] then per key [len u32][bytes],
// little-endian, matching the vocabulary wire format.
func appendStringList(dst []byte, keys []string) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, uint64(len(keys)))
	for _, k := range keys {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(k)))
		dst = append(dst, k...)
	}
	return dst
}

// parseStringList decodes appendStringList's encoding. Trailing bytes are an
// error.
func parseStringList(b []byte) ([]string, error) {
	if len(b) < 8 {
		return nil, malformed("node-keys section truncated")
	}
	count := binary.LittleEndian.Uint64(b)
	b = b[8:]
	// Each key needs at least its 4-byte length prefix; division avoids
	// overflow on hostile counts.
	if count > uint64(len(b))/4 {
		return nil, malformed("node-keys count %d exceeds section size", count)
	}

	keys := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		if len(b) < 4 {
			return nil, malformed("node-keys section truncated")
		}
		n := binary.LittleEndian.Uint32(b)
		b = b[4:]
		if uint64(len(b)) < uint64(n) {
			return nil, malformed("node-keys section truncated")
		}
		keys = append(keys, string(b[:n]))
		b = b[n:]
	}
	if len(b) != 0 {
		return nil, malformed("node-keys section has %d trailing bytes", len(b))
	}
	return keys, nil
}

// uint64Bytes returns the raw byte view of slice without copying.
// Alignment is checked before the unsafe conversion.
func uint64Bytes(slice []uint64) ([]byte, error) {
	if len(slice) == 0 {
		return nil, nil
	}
	if err := checkAlignment(unsafe.Pointer(&slice[0]), 8, "uint64"); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*8), nil
}

// uint32Bytes returns the raw byte view of slice without copying.
// Alignment is checked before the unsafe conversion.
func uint32Bytes(slice []uint32) ([]byte, error) {
	if len(slice) == 0 {
		return nil, nil
	}
	if err := checkAlignment(unsafe.Pointer(&slice[0]), 4, "uint32"); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*4), nil
}

// float32Bytes returns the raw byte view of slice without copying.
// Alignment is checked before the unsafe conversion.
func float32Bytes(slice []float32) ([]byte, error) {
	if len(slice) == 0 {
		return nil, nil
	}
	if err := checkAlignment(unsafe.Pointer(&slice[0]), 4, "float32"); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&slice[0])), len(slice)*4), nil
}
