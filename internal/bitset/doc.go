// Package bitset provides a fixed-capacity atomic bitset for slot claims.
//
// The CSR builder uses it to detect double-written edge slots during the
// lock-free parallel fill: every writer claims its slot with TestAndSet, and
// a second claim of the same slot exposes a broken disjointness contract.
//
// Capacity is fixed at construction because every user knows its universe up
// front (the declared edge count). Indices are not range-checked here; the
// callers validate before claiming.
package bitset
