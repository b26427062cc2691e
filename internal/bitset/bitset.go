package bitset

import (
	"math/bits"
	"sync/atomic"
)

// BitSet is a fixed-capacity bitset safe for concurrent claiming.
type BitSet struct {
	words []atomic.Uint64
	size  uint64
}

// New creates a bitset holding size bits, all clear.
func New(size uint64) *BitSet {
	return &BitSet{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Len returns the capacity in bits.
func (b *BitSet) Len() uint64 {
	return b.size
}

// Test reports whether bit i is set.
func (b *BitSet) Test(i uint64) bool {
	return b.words[i/64].Load()&(1<<(i%64)) != 0
}

// Set sets bit i.
func (b *BitSet) Set(i uint64) {
	b.words[i/64].Or(1 << (i % 64))
}

// TestAndSet sets bit i and reports whether it was already set. The claim is
// atomic: of two concurrent claimants exactly one observes false.
func (b *BitSet) TestAndSet(i uint64) bool {
	mask := uint64(1) << (i % 64)
	return b.words[i/64].Or(mask)&mask != 0
}

// Count returns the number of set bits.
func (b *BitSet) Count() uint64 {
	var n uint64
	for i := range b.words {
		n += uint64(bits.OnesCount64(b.words[i].Load()))
	}
	return n
}
