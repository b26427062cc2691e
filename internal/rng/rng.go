// Package rng provides the small deterministic generators used by the
// randomized graph algorithms (random walks, negative sampling, random
// spanning trees). Every generator is seeded explicitly so that a fixed seed
// reproduces the same sequence of draws.
package rng

// SplitMix64 advances the given state by one splitmix64 step and returns the
// next output. It is used to scramble user seeds and to derive independent
// per-walk streams from a single base seed.
func SplitMix64(state uint64) uint64 {
	state += 0x9e3779b97f4a7c15
	z := state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Xorshift is a xorshift64* generator. The zero value is invalid; use New,
// which scrambles the seed through splitmix64 so that small or zero seeds
// still produce a well-mixed non-zero state.
type Xorshift struct {
	state uint64
}

// New creates a generator for the given seed.
func New(seed uint64) *Xorshift {
	state := SplitMix64(seed)
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &Xorshift{state: state}
}

// Uint64 returns the next value in the stream.
func (x *Xorshift) Uint64() uint64 {
	s := x.state
	s ^= s >> 12
	s ^= s << 25
	s ^= s >> 27
	x.state = s
	return s * 0x2545f4914f6cdd1d
}

// Uint32 returns the next value truncated to 32 bits.
func (x *Xorshift) Uint32() uint32 {
	return uint32(x.Uint64() >> 32)
}

// Uint64n returns a value uniformly distributed in [0, n).
// n must be greater than zero.
func (x *Xorshift) Uint64n(n uint64) uint64 {
	if n == 0 {
		panic("rng: Uint64n called with n == 0")
	}
	// Rejection sampling over the top multiple of n to avoid modulo bias.
	limit := ^uint64(0) - (^uint64(0) % n)
	for {
		v := x.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Uint32n returns a value uniformly distributed in [0, n).
func (x *Xorshift) Uint32n(n uint32) uint32 {
	return uint32(x.Uint64n(uint64(n)))
}

// Float64 returns a value in [0, 1) with 53 bits of precision.
func (x *Xorshift) Float64() float64 {
	return float64(x.Uint64()>>11) / (1 << 53)
}

// Fork derives an independent generator from the current stream. The parent
// advances by one draw; the child is seeded from that draw.
func (x *Xorshift) Fork() *Xorshift {
	return New(x.Uint64())
}
