package persistence

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// compressSection compresses raw with the requested algorithm. Sections that
// do not shrink meaningfully (ratio above 0.9) are stored raw; the returned
// type records what was actually stored.
func compressSection(raw []byte, want CompressionType) ([]byte, CompressionType, error) {
	if want == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var compressed []byte
	var err error

	switch want {
	case CompressionLZ4:
		compressed, err = compressLZ4(raw)
	case CompressionZSTD:
		compressed, err = compressZSTD(raw)
	default:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint32(want))
	}
	if err != nil {
		return nil, 0, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(raw))*0.9 {
		return raw, CompressionNone, nil
	}
	return compressed, want, nil
}

// compressLZ4 compresses raw using LZ4 block compression. Returns nil when
// the input is incompressible.
func compressLZ4(raw []byte) ([]byte, error) {
	maxCompressedSize := lz4.CompressBlockBound(len(raw))
	compressed := make([]byte, maxCompressedSize)

	n, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

// compressZSTD compresses raw using ZSTD.
func compressZSTD(raw []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(raw, nil), nil
}

// decompressSection decodes stored bytes into dst, whose length is the
// expected raw size. dst is written in place so typed destination slices keep
// their alignment guarantees.
func decompressSection(stored []byte, c CompressionType, dst []byte) error {
	switch c {
	case CompressionNone:
		if len(stored) != len(dst) {
			return malformed("raw section length %d, directory says %d", len(stored), len(dst))
		}
		copy(dst, stored)
		return nil

	case CompressionLZ4:
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return malformed("lz4: %v", err)
		}
		if n != len(dst) {
			return malformed("lz4 decompressed %d bytes, directory says %d", n, len(dst))
		}
		return nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(stored, dst[:0])
		if err != nil {
			return malformed("zstd: %v", err)
		}
		// DecodeAll appends; an output matching len(dst) never outgrew the
		// backing array, so dst holds the decoded bytes.
		if len(decoded) != len(dst) {
			return malformed("zstd decompressed %d bytes, directory says %d", len(decoded), len(dst))
		}
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint32(c))
	}
}
