// Package unionfind implements a disjoint-set forest with path halving and
// union by rank. It backs weak-connectivity analysis and Kruskal-style
// spanning forests, so the element domain is the dense node id space.
package unionfind

// Forest is a disjoint-set forest over the elements [0, n).
// It is not safe for concurrent use.
type Forest struct {
	parent []uint32
	rank   []uint8
	count  uint32
}

// New creates a forest of n singleton sets.
func New(n uint32) *Forest {
	parent := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
	}
	return &Forest{
		parent: parent,
		rank:   make([]uint8, n),
		count:  n,
	}
}

// Len returns the number of elements.
func (f *Forest) Len() uint32 {
	return uint32(len(f.parent))
}

// Count returns the current number of disjoint sets.
func (f *Forest) Count() uint32 {
	return f.count
}

// Find returns the representative of x's set, halving the path on the way up.
func (f *Forest) Find(x uint32) uint32 {
	for f.parent[x] != x {
		f.parent[x] = f.parent[f.parent[x]]
		x = f.parent[x]
	}
	return x
}

// Union merges the sets containing a and b.
// It returns true if the sets were disjoint, false if a and b were already
// connected.
func (f *Forest) Union(a, b uint32) bool {
	ra, rb := f.Find(a), f.Find(b)
	if ra == rb {
		return false
	}
	if f.rank[ra] < f.rank[rb] {
		ra, rb = rb, ra
	}
	f.parent[rb] = ra
	if f.rank[ra] == f.rank[rb] {
		f.rank[ra]++
	}
	f.count--
	return true
}

// Connected reports whether a and b are in the same set.
func (f *Forest) Connected(a, b uint32) bool {
	return f.Find(a) == f.Find(b)
}
