// Package conv provides checked integer conversions for boundary crossings.
//
// The graph core runs on fixed-width ids (uint32 nodes, uint64 edge slots)
// while Go APIs deal in platform-sized ints. Conversions at trust
// boundaries — vocabulary sizes becoming node counts, snapshot section
// lengths becoming slice lengths — go through these helpers so an oversized
// value surfaces as an error instead of wrapping around.
//
// Inside hot loops, where ranges are already proven, direct casts remain
// the right tool.
package conv
