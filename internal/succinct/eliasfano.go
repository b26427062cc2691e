// Package succinct implements the Elias-Fano encoding of monotone
// non-decreasing integer sequences. The graph uses it to store the sorted
// edge stream as codes src*N + dst in roughly 2 + log2(universe/n) bits per
// edge instead of a full word, while keeping O(1) amortized random access.
//
// Values are split at a width boundary: the low bits are packed verbatim,
// the high bits are unary-coded into a bit vector where the i-th value sets
// bit (value >> lowWidth) + i. Access selects the i-th set bit; a sampled
// select index keeps that walk short.
package succinct

import (
	"fmt"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

// selectSampleRate is the distance between sampled select positions.
// Access walks at most this many set bits from the nearest sample.
const selectSampleRate = 32

// Sequence is an immutable Elias-Fano encoded sequence. Once built it is
// safe for unlimited concurrent readers.
type Sequence struct {
	n        uint64
	universe uint64
	lowWidth uint
	lowMask  uint64
	low      []uint64
	high     *bitset.BitSet
	samples  []uint64
}

// Encode packs a non-decreasing sequence whose values are all strictly below
// universe.
func Encode(values []uint64, universe uint64) (*Sequence, error) {
	n := uint64(len(values))
	s := &Sequence{
		n:        n,
		universe: universe,
		lowWidth: lowWidthFor(n, universe),
	}
	s.lowMask = (uint64(1) << s.lowWidth) - 1

	if n == 0 {
		s.high = bitset.New(1)
		return s, nil
	}

	lowWords := (n*uint64(s.lowWidth) + 63) / 64
	s.low = make([]uint64, lowWords)
	s.high = bitset.New(uint(highLen(n, universe, s.lowWidth)))

	prev := uint64(0)
	for i, v := range values {
		if v >= universe {
			return nil, fmt.Errorf("succinct: value %d at index %d exceeds universe %d", v, i, universe)
		}
		if v < prev {
			return nil, fmt.Errorf("succinct: sequence decreases at index %d (%d after %d)", i, v, prev)
		}
		prev = v

		s.setLow(uint64(i), v&s.lowMask)
		pos := (v >> s.lowWidth) + uint64(i)
		s.high.Set(uint(pos))
		if uint64(i)%selectSampleRate == 0 {
			s.samples = append(s.samples, pos)
		}
	}
	return s, nil
}

// lowWidthFor picks the split width floor(log2(universe/n)).
func lowWidthFor(n, universe uint64) uint {
	if n == 0 || universe/n < 2 {
		return 0
	}
	return uint(bits.Len64(universe/n) - 1)
}

// highLen returns the bit-vector length of the unary-coded high parts.
func highLen(n, universe uint64, lowWidth uint) uint64 {
	return (universe >> lowWidth) + n + 1
}

// Len returns the number of encoded values.
func (s *Sequence) Len() uint64 {
	return s.n
}

// Universe returns the declared strict upper bound.
func (s *Sequence) Universe() uint64 {
	return s.universe
}

// NumBits returns the size of the encoded payload in bits.
func (s *Sequence) NumBits() uint64 {
	return uint64(len(s.low))*64 + uint64(s.high.Len())
}

// Access returns the i-th value. The caller guarantees i < Len.
func (s *Sequence) Access(i uint64) uint64 {
	pos := s.selectBit(i)
	return ((pos - i) << s.lowWidth) | s.getLow(i)
}

// AccessRange appends the values with ranks [start, end) to out and returns
// it. Decoding a contiguous range walks the high bit vector once instead of
// re-selecting per value. The caller guarantees start <= end <= Len.
func (s *Sequence) AccessRange(start, end uint64, out []uint64) []uint64 {
	s.AccessRangeFunc(start, end, func(v uint64) {
		out = append(out, v)
	})
	return out
}

// AccessRangeFunc calls fn with each value with rank in [start, end), in
// rank order and without allocating. The caller guarantees
// start <= end <= Len.
func (s *Sequence) AccessRangeFunc(start, end uint64, fn func(uint64)) {
	if start >= end {
		return
	}
	pos := s.selectBit(start)
	for i := start; i < end; i++ {
		fn(((pos - i) << s.lowWidth) | s.getLow(i))
		if i+1 < end {
			next, ok := s.high.NextSet(uint(pos) + 1)
			if !ok {
				panic("succinct: high bit vector ran out of set bits")
			}
			pos = uint64(next)
		}
	}
}

// selectBit returns the position of the i-th set bit in the high vector.
func (s *Sequence) selectBit(i uint64) uint64 {
	pos := s.samples[i/selectSampleRate]
	for k := i % selectSampleRate; k > 0; k-- {
		next, ok := s.high.NextSet(uint(pos) + 1)
		if !ok {
			panic("succinct: select past the last set bit")
		}
		pos = uint64(next)
	}
	return pos
}

func (s *Sequence) setLow(i, v uint64) {
	if s.lowWidth == 0 {
		return
	}
	bitPos := i * uint64(s.lowWidth)
	word := bitPos >> 6
	off := bitPos & 63
	s.low[word] |= v << off
	if off+uint64(s.lowWidth) > 64 {
		s.low[word+1] |= v >> (64 - off)
	}
}

func (s *Sequence) getLow(i uint64) uint64 {
	if s.lowWidth == 0 {
		return 0
	}
	bitPos := i * uint64(s.lowWidth)
	word := bitPos >> 6
	off := bitPos & 63
	v := s.low[word] >> off
	if off+uint64(s.lowWidth) > 64 {
		v |= s.low[word+1] << (64 - off)
	}
	return v & s.lowMask
}

// LowWidth returns the packed width of the low halves.
func (s *Sequence) LowWidth() uint {
	return s.lowWidth
}

// LowWords exposes the packed low-bit words for serialization.
// Callers must not mutate the returned slice.
func (s *Sequence) LowWords() []uint64 {
	return s.low
}

// HighWords exposes the high bit-vector words for serialization.
// Callers must not mutate the returned slice.
func (s *Sequence) HighWords() []uint64 {
	return s.high.Bytes()
}

// HighBitLen returns the length of the high bit vector in bits.
func (s *Sequence) HighBitLen() uint64 {
	return uint64(s.high.Len())
}

// FromParts reassembles a sequence from serialized parts, rebuilding the
// select samples in one pass. The word slices are aliased, not copied, so a
// memory-mapped snapshot can back them directly.
func FromParts(n, universe uint64, lowWords []uint64, highWords []uint64, highBitLen uint64) (*Sequence, error) {
	s := &Sequence{
		n:        n,
		universe: universe,
		lowWidth: lowWidthFor(n, universe),
		low:      lowWords,
		high:     bitset.FromWithLength(uint(highBitLen), highWords),
	}
	s.lowMask = (uint64(1) << s.lowWidth) - 1

	if n == 0 {
		return s, nil
	}

	if want := (n*uint64(s.lowWidth) + 63) / 64; uint64(len(lowWords)) != want {
		return nil, fmt.Errorf("succinct: low words length %d, want %d", len(lowWords), want)
	}
	if want := highLen(n, universe, s.lowWidth); highBitLen != want {
		return nil, fmt.Errorf("succinct: high bit length %d, want %d", highBitLen, want)
	}

	pos := uint(0)
	for i := uint64(0); i < n; i++ {
		p, ok := s.high.NextSet(pos)
		if !ok {
			return nil, fmt.Errorf("succinct: high bit vector holds fewer than %d set bits", n)
		}
		if i%selectSampleRate == 0 {
			s.samples = append(s.samples, uint64(p))
		}
		pos = p + 1
	}
	return s, nil
}
