package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/hupe1980/graphgo/codec"
	"github.com/hupe1980/graphgo/internal/conv"
	"github.com/hupe1980/graphgo/internal/hash"
)

// Read decodes a snapshot from r, verifying section checksums and
// decompressing payloads into freshly allocated arrays.
func Read(r io.Reader) (*Snapshot, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	c, err := checkHeader(&header)
	if err != nil {
		return nil, err
	}

	headers := make([]sectionHeader, header.Sections)
	for i := range headers {
		if err := binary.Read(r, binary.LittleEndian, &headers[i]); err != nil {
			return nil, fmt.Errorf("read section directory: %w", err)
		}
	}

	a := newSnapshotAssembler()
	pos := uint64(headerSize) + uint64(sectionHeaderSize)*uint64(len(headers))
	for i := range headers {
		h := &headers[i]
		if err := a.claim(h.Kind); err != nil {
			return nil, err
		}
		end, err := checkSectionHeader(h, pos)
		if err != nil {
			return nil, err
		}
		if skip := h.Offset - pos; skip > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(skip)); err != nil {
				return nil, fmt.Errorf("skip padding: %w", err)
			}
		}
		pos = end

		dst, err := a.buffer(h.Kind, h.RawLen)
		if err != nil {
			return nil, err
		}

		if CompressionType(h.Compression) == CompressionNone {
			// Raw payloads are read straight into the typed destination.
			if _, err := io.ReadFull(r, dst); err != nil {
				return nil, fmt.Errorf("read section %s: %w", sectionName(h.Kind), err)
			}
			if sum := hash.CRC32C(dst); sum != h.Checksum {
				return nil, &ChecksumMismatchError{Section: sectionName(h.Kind), Expected: h.Checksum, Actual: sum}
			}
		} else {
			storedLen, err := conv.Uint64ToInt(h.StoredLen)
			if err != nil {
				return nil, malformed("section %s: %v", sectionName(h.Kind), err)
			}
			stored := make([]byte, storedLen)
			if _, err := io.ReadFull(r, stored); err != nil {
				return nil, fmt.Errorf("read section %s: %w", sectionName(h.Kind), err)
			}
			if sum := hash.CRC32C(stored); sum != h.Checksum {
				return nil, &ChecksumMismatchError{Section: sectionName(h.Kind), Expected: h.Checksum, Actual: sum}
			}
			if err := decompressSection(stored, CompressionType(h.Compression), dst); err != nil {
				return nil, fmt.Errorf("section %s: %w", sectionName(h.Kind), err)
			}
		}
	}

	return a.finish(c)
}

// ReadMapped decodes a snapshot in place from a memory-mapped file. Bulk
// arrays alias data directly, so the returned snapshot is read-only and valid
// only while the mapping stays open. All sections must be stored
// uncompressed.
func ReadMapped(data []byte) (*Snapshot, error) {
	br := bytes.NewReader(data)
	var header FileHeader
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	c, err := checkHeader(&header)
	if err != nil {
		return nil, err
	}

	headers := make([]sectionHeader, header.Sections)
	for i := range headers {
		if err := binary.Read(br, binary.LittleEndian, &headers[i]); err != nil {
			return nil, fmt.Errorf("read section directory: %w", err)
		}
	}

	a := newSnapshotAssembler()
	pos := uint64(headerSize) + uint64(sectionHeaderSize)*uint64(len(headers))
	for i := range headers {
		h := &headers[i]
		if err := a.claim(h.Kind); err != nil {
			return nil, err
		}
		end, err := checkSectionHeader(h, pos)
		if err != nil {
			return nil, err
		}
		if CompressionType(h.Compression) != CompressionNone {
			return nil, fmt.Errorf("%w: section %s is %s", ErrCompressedMapping, sectionName(h.Kind), CompressionType(h.Compression))
		}
		if end > uint64(len(data)) {
			return nil, malformed("section %s extends beyond file end", sectionName(h.Kind))
		}
		pos = end

		payload := data[h.Offset:end]
		if sum := hash.CRC32C(payload); sum != h.Checksum {
			return nil, &ChecksumMismatchError{Section: sectionName(h.Kind), Expected: h.Checksum, Actual: sum}
		}
		if err := a.view(h.Kind, payload); err != nil {
			return nil, err
		}
	}

	return a.finish(c)
}

// checkHeader validates the fixed header and resolves the metadata codec.
func checkHeader(header *FileHeader) (codec.Codec, error) {
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}
	if header.Sections == 0 || header.Sections > maxSections {
		return nil, malformed("section count %d", header.Sections)
	}
	name := headerCodecName(header.Codec)
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// headerCodecName trims the NUL padding of the fixed codec field.
func headerCodecName(raw [8]byte) string {
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

// checkSectionHeader validates one directory entry against pos, the end of
// the previous section, and returns the payload end position. Sections are
// contiguous and 8-byte aligned; anything else is corruption.
func checkSectionHeader(h *sectionHeader, pos uint64) (uint64, error) {
	if !CompressionType(h.Compression).valid() {
		return 0, fmt.Errorf("section %s: %w: %d", sectionName(h.Kind), ErrUnsupportedCompression, h.Compression)
	}
	if h.StoredLen > maxSectionLen || h.RawLen > maxSectionLen {
		return 0, malformed("section %s implausibly large (%d stored, %d raw)", sectionName(h.Kind), h.StoredLen, h.RawLen)
	}
	if CompressionType(h.Compression) == CompressionNone {
		if h.StoredLen != h.RawLen {
			return 0, malformed("section %s stored raw with %d stored, %d raw", sectionName(h.Kind), h.StoredLen, h.RawLen)
		}
	} else if h.StoredLen == 0 && h.RawLen > 0 {
		return 0, malformed("section %s has no payload for %d raw bytes", sectionName(h.Kind), h.RawLen)
	}
	if h.Offset != align8(pos) {
		return 0, malformed("section %s at offset %d, want %d", sectionName(h.Kind), h.Offset, align8(pos))
	}
	return h.Offset + h.StoredLen, nil
}

// snapshotAssembler collects decoded sections until the final shape checks.
type snapshotAssembler struct {
	snap      Snapshot
	metaBytes []byte
	keyBytes  []byte
	seen      map[uint32]bool
}

func newSnapshotAssembler() *snapshotAssembler {
	return &snapshotAssembler{seen: make(map[uint32]bool, maxSections)}
}

func (a *snapshotAssembler) claim(kind uint32) error {
	if a.seen[kind] {
		return malformed("duplicate section %s", sectionName(kind))
	}
	a.seen[kind] = true
	return nil
}

// buffer allocates typed storage for kind and returns its writable raw byte
// view of length rawLen. Allocating the typed slice first guarantees the
// alignment the unsafe view needs.
func (a *snapshotAssembler) buffer(kind uint32, rawLen uint64) ([]byte, error) {
	switch kind {
	case sectionMeta:
		return allocBytes(&a.metaBytes, kind, rawLen)
	case sectionNodeKeys:
		return allocBytes(&a.keyBytes, kind, rawLen)
	case sectionOffsets:
		return allocUint64(&a.snap.Offsets, kind, rawLen)
	case sectionDestinations:
		return allocUint32(&a.snap.Destinations, kind, rawLen)
	case sectionSequenceLow:
		return allocUint64(&a.snap.SequenceLow, kind, rawLen)
	case sectionSequenceHigh:
		return allocUint64(&a.snap.SequenceHigh, kind, rawLen)
	case sectionWeights:
		return allocFloat32(&a.snap.Weights, kind, rawLen)
	case sectionEdgeTypes:
		return allocUint32(&a.snap.EdgeTypes, kind, rawLen)
	case sectionNodeTypeOffsets:
		return allocUint64(&a.snap.NodeTypeOffsets, kind, rawLen)
	case sectionNodeTypeIDs:
		return allocUint32(&a.snap.NodeTypeIDs, kind, rawLen)
	default:
		return nil, malformed("unknown section kind %d", kind)
	}
}

// view aliases mapped payload bytes as typed storage for kind. Only meta and
// node keys are decoded by copy later; bulk arrays are used in place.
func (a *snapshotAssembler) view(kind uint32, data []byte) error {
	var err error
	switch kind {
	case sectionMeta:
		a.metaBytes = data
	case sectionNodeKeys:
		a.keyBytes = data
	case sectionOffsets:
		a.snap.Offsets, err = mapUint64s(kind, data)
	case sectionDestinations:
		a.snap.Destinations, err = mapUint32s(kind, data)
	case sectionSequenceLow:
		a.snap.SequenceLow, err = mapUint64s(kind, data)
	case sectionSequenceHigh:
		a.snap.SequenceHigh, err = mapUint64s(kind, data)
	case sectionWeights:
		a.snap.Weights, err = mapFloat32s(kind, data)
	case sectionEdgeTypes:
		a.snap.EdgeTypes, err = mapUint32s(kind, data)
	case sectionNodeTypeOffsets:
		a.snap.NodeTypeOffsets, err = mapUint64s(kind, data)
	case sectionNodeTypeIDs:
		a.snap.NodeTypeIDs, err = mapUint32s(kind, data)
	default:
		return malformed("unknown section kind %d", kind)
	}
	return err
}

// finish decodes the metadata document, checks section presence against its
// flags, and validates array shapes.
func (a *snapshotAssembler) finish(c codec.Codec) (*Snapshot, error) {
	if a.metaBytes == nil {
		return nil, malformed("missing meta section")
	}
	if err := c.Unmarshal(a.metaBytes, &a.snap.Meta); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	if a.keyBytes == nil {
		return nil, malformed("missing node-keys section")
	}
	keys, err := parseStringList(a.keyBytes)
	if err != nil {
		return nil, err
	}
	a.snap.NodeKeys = keys

	m := &a.snap.Meta
	if a.snap.Offsets == nil {
		return nil, malformed("missing offsets section")
	}
	if m.Succinct {
		if a.snap.SequenceLow == nil || a.snap.SequenceHigh == nil {
			return nil, malformed("succinct snapshot missing sequence sections")
		}
		if a.snap.Destinations != nil {
			return nil, malformed("succinct snapshot carries a destinations section")
		}
	} else {
		if a.snap.Destinations == nil {
			return nil, malformed("missing destinations section")
		}
		if a.snap.SequenceLow != nil || a.snap.SequenceHigh != nil {
			return nil, malformed("plain snapshot carries sequence sections")
		}
	}
	if m.Weighted != (a.snap.Weights != nil) {
		return nil, malformed("weights section does not match the weighted flag")
	}
	if m.EdgeTyped != (a.snap.EdgeTypes != nil) {
		return nil, malformed("edge-types section does not match the edge-typed flag")
	}
	if m.NodeTyped != (a.snap.NodeTypeOffsets != nil && a.snap.NodeTypeIDs != nil) {
		return nil, malformed("node-type sections do not match the node-typed flag")
	}

	if err := a.snap.validate(); err != nil {
		return nil, err
	}
	return &a.snap, nil
}

func allocBytes(dst *[]byte, kind uint32, rawLen uint64) ([]byte, error) {
	n, err := conv.Uint64ToInt(rawLen)
	if err != nil {
		return nil, malformed("section %s: %v", sectionName(kind), err)
	}
	*dst = make([]byte, n)
	return *dst, nil
}

func allocUint64(dst *[]uint64, kind uint32, rawLen uint64) ([]byte, error) {
	if rawLen%8 != 0 {
		return nil, malformed("section %s length %d not a multiple of 8", sectionName(kind), rawLen)
	}
	s := make([]uint64, rawLen/8)
	*dst = s
	return uint64Bytes(s)
}

func allocUint32(dst *[]uint32, kind uint32, rawLen uint64) ([]byte, error) {
	if rawLen%4 != 0 {
		return nil, malformed("section %s length %d not a multiple of 4", sectionName(kind), rawLen)
	}
	s := make([]uint32, rawLen/4)
	*dst = s
	return uint32Bytes(s)
}

func allocFloat32(dst *[]float32, kind uint32, rawLen uint64) ([]byte, error) {
	if rawLen%4 != 0 {
		return nil, malformed("section %s length %d not a multiple of 4", sectionName(kind), rawLen)
	}
	s := make([]float32, rawLen/4)
	*dst = s
	return float32Bytes(s)
}

func mapUint64s(kind uint32, data []byte) ([]uint64, error) {
	if len(data)%8 != 0 {
		return nil, malformed("section %s length %d not a multiple of 8", sectionName(kind), len(data))
	}
	if len(data) == 0 {
		return []uint64{}, nil
	}
	if uintptr(unsafe.Pointer(&data[0]))%8 != 0 {
		return nil, fmt.Errorf("%w: section %s", ErrUnalignedAccess, sectionName(kind))
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), len(data)/8), nil
}

func mapUint32s(kind uint32, data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, malformed("section %s length %d not a multiple of 4", sectionName(kind), len(data))
	}
	if len(data) == 0 {
		return []uint32{}, nil
	}
	if uintptr(unsafe.Pointer(&data[0]))%4 != 0 {
		return nil, fmt.Errorf("%w: section %s", ErrUnalignedAccess, sectionName(kind))
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4), nil
}

func mapFloat32s(kind uint32, data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, malformed("section %s length %d not a multiple of 4", sectionName(kind), len(data))
	}
	if len(data) == 0 {
		return []float32{}, nil
	}
	if uintptr(unsafe.Pointer(&data[0]))%4 != 0 {
		return nil, fmt.Errorf("%w: section %s", ErrUnalignedAccess, sectionName(kind))
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), len(data)/4), nil
}
