//go:build amd64 || arm64

// Package persistence implements the binary snapshot format for compressed
// graphs.
//
// A snapshot file starts with a fixed header followed by a section directory
// and the section payloads. Each section carries one logical array of the
// graph (offsets, destinations, weights, ...) or a codec-encoded metadata
// document, is independently checksummed with CRC32-Castagnoli, and may be
// compressed with LZ4 or zstd. Payloads are 8-byte aligned so an uncompressed
// file can be memory-mapped and its arrays used in place without copying.
//
// PLATFORM REQUIREMENTS:
// - Architecture: amd64 or arm64 only
// - Endianness: Little-endian (native on x86_64 and ARM64)
// - Alignment: 4-byte for float32/uint32, 8-byte for uint64
//
// The unsafe operations in this package are verified at runtime with alignment
// checks and platform validation. See safety.go for implementation details.
package persistence
