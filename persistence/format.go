package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies graph snapshot files (ASCII: "GRP0").
	MagicNumber = 0x47525030
	// FormatVersion is the current snapshot format version (v1.0.0).
	FormatVersion = 0x00010000

	// headerSize is the byte size of FileHeader on the wire.
	headerSize = 24
	// sectionHeaderSize is the byte size of one directory entry on the wire.
	sectionHeaderSize = 40

	// maxSections bounds the directory so corrupt headers cannot force large
	// allocations before any payload is read.
	maxSections = 16
	// maxSectionLen bounds a single section payload (stored or raw).
	maxSectionLen = 1 << 36
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrUnknownCodec   = errors.New("unknown codec")
	// ErrInvalidCodecName is returned when a writer codec name does not fit
	// the fixed header field.
	ErrInvalidCodecName = errors.New("codec name must be 1-8 bytes")
	// ErrMalformedSnapshot covers structural damage that is not a checksum
	// failure: truncated directories, impossible lengths, missing sections.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// ErrCompressedMapping is returned by mapped loads when a section is
	// compressed; in-place access requires raw payload bytes.
	ErrCompressedMapping = errors.New("mapped load requires uncompressed sections")
	// ErrUnsupportedCompression is returned for compression type values this
	// version does not implement.
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)

// FileHeader is the 24-byte header at the start of every snapshot file.
type FileHeader struct {
	Magic    uint32  // 0x47525030 ("GRP0")
	Version  uint32  // Snapshot format version
	Sections uint32  // Number of directory entries
	Codec    [8]byte // NUL-padded codec name for the meta section
	_        [4]byte
}

// sectionHeader is one 40-byte directory entry. Offsets are absolute file
// positions; payloads are 8-byte aligned.
type sectionHeader struct {
	Kind        uint32
	Compression uint32
	Offset      uint64 // Absolute offset of the stored payload
	StoredLen   uint64 // Bytes on disk (after compression)
	RawLen      uint64 // Bytes after decompression
	Checksum    uint32 // CRC32C of the stored payload
	_           [4]byte
}

// Section kinds. Presence rules follow the meta flags: weights exist iff the
// graph is weighted, sequence sections replace destinations iff succinct.
const (
	sectionMeta uint32 = iota + 1
	sectionNodeKeys
	sectionOffsets
	sectionDestinations
	sectionSequenceLow
	sectionSequenceHigh
	sectionWeights
	sectionEdgeTypes
	sectionNodeTypeOffsets
	sectionNodeTypeIDs
)

// sectionName returns a stable human-readable name for error messages.
func sectionName(kind uint32) string {
	switch kind {
	case sectionMeta:
		return "meta"
	case sectionNodeKeys:
		return "node-keys"
	case sectionOffsets:
		return "offsets"
	case sectionDestinations:
		return "destinations"
	case sectionSequenceLow:
		return "sequence-low"
	case sectionSequenceHigh:
		return "sequence-high"
	case sectionWeights:
		return "weights"
	case sectionEdgeTypes:
		return "edge-types"
	case sectionNodeTypeOffsets:
		return "node-type-offsets"
	case sectionNodeTypeIDs:
		return "node-type-ids"
	default:
		return fmt.Sprintf("unknown(%d)", kind)
	}
}

// CompressionType selects the section payload compression.
type CompressionType uint32

const (
	// CompressionNone stores payloads raw. Required for mapped loads.
	CompressionNone CompressionType = 0
	// CompressionLZ4 favors decompression speed.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD favors compression ratio.
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

func (c CompressionType) valid() bool {
	return c == CompressionNone || c == CompressionLZ4 || c == CompressionZSTD
}

// ChecksumMismatchError is returned when a section payload fails CRC
// verification.
type ChecksumMismatchError struct {
	Section  string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("section %s: checksum mismatch: expected 0x%08x, got 0x%08x", e.Section, e.Expected, e.Actual)
}

// IsChecksumMismatch returns true if err is a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var mismatch *ChecksumMismatchError
	return errors.As(err, &mismatch)
}

// malformed wraps ErrMalformedSnapshot with a reason.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedSnapshot, fmt.Sprintf(format, args...))
}

// align8 rounds n up to the next multiple of 8.
func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}
