package persistence

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/graphgo/codec"
	"github.com/hupe1980/graphgo/internal/hash"
)

type writeOptions struct {
	compression CompressionType
	codec       codec.Codec
}

// WriteOption customizes how a snapshot is written.
type WriteOption func(*writeOptions)

// WithCompression selects the section payload compression. The default is
// CompressionNone, which keeps the file memory-mappable.
func WithCompression(c CompressionType) WriteOption {
	return func(o *writeOptions) { o.compression = c }
}

// WithCodec selects the codec for the metadata section. The codec name is
// recorded in the file header and must resolve via codec.ByName on load.
func WithCodec(c codec.Codec) WriteOption {
	return func(o *writeOptions) { o.codec = c }
}

func applyWriteOptions(optFns ...WriteOption) writeOptions {
	opts := writeOptions{
		compression: CompressionNone,
		codec:       codec.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.codec == nil {
		opts.codec = codec.Default
	}
	return opts
}

// Write serializes snap: header, section directory, then 8-byte aligned
// section payloads. Each payload is checksummed after compression, so readers
// verify bytes as stored.
func Write(w io.Writer, snap *Snapshot, optFns ...WriteOption) error {
	opts := applyWriteOptions(optFns...)

	var codecName [8]byte
	name := opts.codec.Name()
	if len(name) == 0 || len(name) > len(codecName) {
		return fmt.Errorf("%w: %q", ErrInvalidCodecName, name)
	}
	copy(codecName[:], name)

	if err := snap.validate(); err != nil {
		return err
	}

	secs, err := snap.sections(opts.codec)
	if err != nil {
		return err
	}

	headers := make([]sectionHeader, len(secs))
	stored := make([][]byte, len(secs))
	pos := uint64(headerSize) + uint64(sectionHeaderSize)*uint64(len(secs))
	for i, sec := range secs {
		data, actual, err := compressSection(sec.raw, opts.compression)
		if err != nil {
			return fmt.Errorf("compress section %s: %w", sectionName(sec.kind), err)
		}

		pos = align8(pos)
		headers[i] = sectionHeader{
			Kind:        sec.kind,
			Compression: uint32(actual),
			Offset:      pos,
			StoredLen:   uint64(len(data)),
			RawLen:      uint64(len(sec.raw)),
			Checksum:    hash.CRC32C(data),
		}
		stored[i] = data
		pos += uint64(len(data))
	}

	header := FileHeader{
		Magic:    MagicNumber,
		Version:  FormatVersion,
		Sections: uint32(len(secs)),
		Codec:    codecName,
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range headers {
		if err := binary.Write(w, binary.LittleEndian, &headers[i]); err != nil {
			return fmt.Errorf("write section directory: %w", err)
		}
	}

	var pad [8]byte
	cur := uint64(headerSize) + uint64(sectionHeaderSize)*uint64(len(secs))
	for i, data := range stored {
		if n := headers[i].Offset - cur; n > 0 {
			if _, err := w.Write(pad[:n]); err != nil {
				return fmt.Errorf("write padding: %w", err)
			}
			cur += n
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write section %s: %w", sectionName(headers[i].Kind), err)
		}
		cur += uint64(len(data))
	}

	return nil
}
