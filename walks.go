package graphgo

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/graphgo/internal/rng"
)

// WalkWeights biases the transition probabilities of second-order random
// walks. All four weights default to 1.0, which makes every step depend only
// on the current node (a first-order walk):
//
//   - Return multiplies transitions back to the previous node or onto a
//     self-loop of the current node (the inverse of node2vec's p).
//   - Explore multiplies transitions to nodes that are not neighbors of the
//     previous node (the inverse of node2vec's q).
//   - ChangeNodeType divides transitions to nodes sharing a node type with
//     the current node.
//   - ChangeEdgeType divides transitions over edges carrying the same edge
//     type as the edge the walk arrived on.
type WalkWeights struct {
	Return         float32
	Explore        float32
	ChangeNodeType float32
	ChangeEdgeType float32
}

// DefaultWalkWeights returns the neutral parametrization: every weight 1.0.
func DefaultWalkWeights() WalkWeights {
	return WalkWeights{Return: 1, Explore: 1, ChangeNodeType: 1, ChangeEdgeType: 1}
}

// NewWalkWeights builds a validated WalkWeights. Each weight must be a
// strictly positive finite number; validation happens here, before any walk
// starts.
func NewWalkWeights(returnWeight, exploreWeight, changeNodeTypeWeight, changeEdgeTypeWeight float32) (WalkWeights, error) {
	w := WalkWeights{
		Return:         returnWeight,
		Explore:        exploreWeight,
		ChangeNodeType: changeNodeTypeWeight,
		ChangeEdgeType: changeEdgeTypeWeight,
	}
	if err := w.validate(); err != nil {
		return WalkWeights{}, err
	}
	return w, nil
}

func (w WalkWeights) validate() error {
	checks := []struct {
		name  string
		value float32
	}{
		{"return", w.Return},
		{"explore", w.Explore},
		{"change node type", w.ChangeNodeType},
		{"change edge type", w.ChangeEdgeType},
	}
	for _, c := range checks {
		v := float64(c.value)
		if c.value <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrMalformedInput{
				Reason: fmt.Sprintf("%s weight %v is not a strictly positive real number", c.name, c.value),
			}
		}
	}
	return nil
}

// IsFirstOrder reports whether every weight equals 1.0, in which case steps
// ignore the walk history entirely.
func (w WalkWeights) IsFirstOrder() bool {
	return w.Return == 1 && w.Explore == 1 && w.ChangeNodeType == 1 && w.ChangeEdgeType == 1
}

const (
	// defaultMaxNeighbors caps how many neighbor slots a single step
	// inspects. Hub nodes beyond the cap are subsampled, trading exactness
	// of the transition distribution for bounded per-step work.
	defaultMaxNeighbors = 100

	// trapStartRetries bounds how many alternative starts a trap-avoiding
	// walk tries before giving up and emitting the truncated walk.
	trapStartRetries = 32
)

// WalkParameters configures a batch of random walks. Build it with
// NewWalkParameters; every option validates its own range.
type WalkParameters struct {
	length       uint64
	iterations   uint64
	maxNeighbors uint32
	seed         uint64
	weights      WalkWeights
	retryTraps   bool
	sources      []NodeID
}

// WalkOption mutates WalkParameters under construction.
type WalkOption func(*WalkParameters) error

// NewWalkParameters creates walk parameters for walks of the given length,
// counted in nodes: a walk of length L has at most L-1 steps. Defaults: one
// iteration per source, neighbor cap 100, seed 42, neutral weights, walks
// started from every node of the graph.
func NewWalkParameters(length uint64, optFns ...WalkOption) (*WalkParameters, error) {
	if length == 0 {
		return nil, &ErrMalformedInput{Reason: "walk length must be greater than zero"}
	}

	p := &WalkParameters{
		length:       length,
		iterations:   1,
		maxNeighbors: defaultMaxNeighbors,
		seed:         42,
		weights:      DefaultWalkWeights(),
	}
	for _, fn := range optFns {
		if err := fn(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// WithWalkIterations sets how many walks start from each source node.
func WithWalkIterations(n uint64) WalkOption {
	return func(p *WalkParameters) error {
		if n == 0 {
			return &ErrMalformedInput{Reason: "walk iterations must be greater than zero"}
		}
		p.iterations = n
		return nil
	}
}

// WithMaxNeighbors sets the neighbor subsampling cap. Zero disables the cap
// and makes every step consider the full neighbor slice.
func WithMaxNeighbors(n uint32) WalkOption {
	return func(p *WalkParameters) error {
		p.maxNeighbors = n
		return nil
	}
}

// WithWalkSeed sets the base seed. Walk w draws from an independent stream
// seeded with splitmix64(seed + w), so a fixed seed reproduces every walk
// regardless of worker count.
func WithWalkSeed(seed uint64) WalkOption {
	return func(p *WalkParameters) error {
		p.seed = seed
		return nil
	}
}

// WithWalkWeights sets the transition weights. The weights are re-validated
// so that literals bypassing NewWalkWeights still fail before walking.
func WithWalkWeights(w WalkWeights) WalkOption {
	return func(p *WalkParameters) error {
		if err := w.validate(); err != nil {
			return err
		}
		p.weights = w
		return nil
	}
}

// WithWalkSources restricts walks to the given start nodes instead of every
// node. Ids are validated against the graph when the walks are planned.
func WithWalkSources(sources ...NodeID) WalkOption {
	return func(p *WalkParameters) error {
		if len(sources) == 0 {
			return &ErrMalformedInput{Reason: "walk sources must not be empty"}
		}
		p.sources = append([]NodeID(nil), sources...)
		return nil
	}
}

// WithRetryTrapStarts makes walks that would start on a trap node retry from
// a different source (bounded) instead of emitting a single-node walk.
func WithRetryTrapStarts(retry bool) WalkOption {
	return func(p *WalkParameters) error {
		p.retryTraps = retry
		return nil
	}
}

// walkPlan is a validated walk batch: the source universe and total count.
type walkPlan struct {
	params      *WalkParameters
	sources     []NodeID // nil means every node is a source
	sourceCount uint64
	total       uint64
}

func (pl walkPlan) source(i uint64) NodeID {
	if pl.sources != nil {
		return pl.sources[i]
	}
	return NodeID(i)
}

func (g *Graph) planWalks(params *WalkParameters) (walkPlan, error) {
	if params == nil {
		return walkPlan{}, &ErrMalformedInput{Reason: "walk parameters must not be nil"}
	}

	pl := walkPlan{params: params, sources: params.sources}
	if pl.sources != nil {
		for _, s := range pl.sources {
			if uint32(s) >= g.NodeCount() {
				return walkPlan{}, &ErrInvalidNodeID{NodeID: s, NodeCount: g.NodeCount()}
			}
		}
		pl.sourceCount = uint64(len(pl.sources))
	} else {
		pl.sourceCount = uint64(g.NodeCount())
	}
	pl.total = params.iterations * pl.sourceCount
	return pl, nil
}

// walkContext is the per-worker scratch reused across walk steps.
type walkContext struct {
	slots []uint64
	trans []float64
}

var walkContextPool = sync.Pool{
	New: func() any { return new(walkContext) },
}

// RandomWalks returns a lazy, finite, restartable sequence of walks:
// iterations × sources walks, in iteration-major order. Ranging over the
// sequence twice replays the identical walks; the sequence stays valid for
// the lifetime of the graph.
func (g *Graph) RandomWalks(params *WalkParameters) (iter.Seq[[]NodeID], error) {
	pl, err := g.planWalks(params)
	if err != nil {
		return nil, err
	}

	return func(yield func([]NodeID) bool) {
		wc := walkContextPool.Get().(*walkContext)
		defer walkContextPool.Put(wc)

		for w := uint64(0); w < pl.total; w++ {
			if !yield(g.runWalk(pl, w, wc)) {
				return
			}
		}
	}, nil
}

// CompleteWalks materializes every walk of the batch in parallel. The result
// is deterministic for a fixed seed: walk w is seeded independently of which
// worker runs it, and slot w of the result holds walk w.
func (g *Graph) CompleteWalks(ctx context.Context, params *WalkParameters) (walks [][]NodeID, err error) {
	start := time.Now()
	defer func() {
		var length uint64
		if params != nil {
			length = params.length
		}
		g.metrics.RecordWalks(len(walks), time.Since(start), err)
		g.logger.LogWalks(ctx, len(walks), length, err)
	}()

	pl, err := g.planWalks(params)
	if err != nil {
		return nil, err
	}

	out := make([][]NodeID, pl.total)
	workers := uint64(g.controller.Workers())
	if workers > pl.total {
		workers = pl.total
	}
	if workers <= 1 {
		wc := walkContextPool.Get().(*walkContext)
		defer walkContextPool.Put(wc)
		for w := uint64(0); w < pl.total; w++ {
			out[w] = g.runWalk(pl, w, wc)
		}
		return out, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(int(workers))
	chunk := (pl.total + workers - 1) / workers
	for begin := uint64(0); begin < pl.total; begin += chunk {
		end := min(begin+chunk, pl.total)
		group.Go(func() error {
			wc := walkContextPool.Get().(*walkContext)
			defer walkContextPool.Put(wc)
			for w := begin; w < end; w++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[w] = g.runWalk(pl, w, wc)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Graph) isTrap(id uint32) bool {
	return g.offsets[id] == g.offsets[id+1]
}

func (g *Graph) runWalk(pl walkPlan, w uint64, wc *walkContext) []NodeID {
	r := rng.New(rng.SplitMix64(pl.params.seed + w))

	start := pl.source(w % pl.sourceCount)
	if pl.params.retryTraps && g.isTrap(uint32(start)) {
		for attempt := 0; attempt < trapStartRetries; attempt++ {
			alt := pl.source(r.Uint64n(pl.sourceCount))
			if !g.isTrap(uint32(alt)) {
				start = alt
				break
			}
		}
	}
	return g.singleWalk(pl.params, start, r, wc)
}

// singleWalk runs one walk of up to params.length nodes. A trap node
// truncates the walk.
func (g *Graph) singleWalk(params *WalkParameters, start NodeID, r *rng.Xorshift, wc *walkContext) []NodeID {
	walk := make([]NodeID, 0, params.length)
	walk = append(walk, start)

	// Uniform fast path: no edge weights and neutral walk weights mean every
	// neighbor slot is equally likely, so the step is a single draw. The
	// neighbor cap is skipped because a uniform pick over a uniform
	// subsample is the same distribution.
	if !g.IsWeighted() && params.weights.IsFirstOrder() {
		cur := uint32(start)
		for uint64(len(walk)) < params.length {
			lo, hi := g.offsets[cur], g.offsets[cur+1]
			if lo == hi {
				break
			}
			cur = g.dstAt(lo + r.Uint64n(hi-lo))
			walk = append(walk, NodeID(cur))
		}
		return walk
	}

	var (
		cur          = uint32(start)
		prev         uint32
		prevValid    bool
		arrivalType  uint32
		arrivalTyped bool
	)
	for uint64(len(walk)) < params.length {
		if g.isTrap(cur) {
			break
		}
		slot := g.stepSlot(params, r, wc, cur, prev, prevValid, arrivalType, arrivalTyped)
		if g.edgeTypes != nil {
			arrivalType = g.edgeTypes[slot]
			arrivalTyped = true
		}
		prev, prevValid = cur, true
		cur = g.dstAt(slot)
		walk = append(walk, NodeID(cur))
	}
	return walk
}

// stepSlot samples the next edge slot out of cur, renormalizing the neighbor
// transition weights against the walk history.
func (g *Graph) stepSlot(params *WalkParameters, r *rng.Xorshift, wc *walkContext, cur, prev uint32, prevValid bool, arrivalType uint32, arrivalTyped bool) uint64 {
	lo, hi := g.offsets[cur], g.offsets[cur+1]
	degree := hi - lo

	wc.slots = wc.slots[:0]
	if limit := uint64(params.maxNeighbors); limit > 0 && degree > limit {
		// Subsample distinct slots from the hub. Rejection over the small
		// scratch stays cheap because the cap is far below the degree here.
		for uint64(len(wc.slots)) < limit {
			s := lo + r.Uint64n(degree)
			if !containsSlot(wc.slots, s) {
				wc.slots = append(wc.slots, s)
			}
		}
	} else {
		for s := lo; s < hi; s++ {
			wc.slots = append(wc.slots, s)
		}
	}

	w := params.weights
	wc.trans = wc.trans[:0]
	total := 0.0
	for _, s := range wc.slots {
		t := float64(g.weightAt(s))
		candidate := g.dstAt(s)

		if w.ChangeNodeType != 1 && g.nodeTypeIDs != nil && g.shareNodeType(cur, candidate) {
			t /= float64(w.ChangeNodeType)
		}
		if prevValid {
			if w.ChangeEdgeType != 1 && arrivalTyped && g.edgeTypes[s] == arrivalType {
				t /= float64(w.ChangeEdgeType)
			}
			switch {
			case candidate == prev || candidate == cur:
				if w.Return != 1 {
					t *= float64(w.Return)
				}
			case w.Explore != 1 && !g.HasEdge(NodeID(prev), NodeID(candidate)):
				t *= float64(w.Explore)
			}
		}

		total += t
		wc.trans = append(wc.trans, t)
	}

	u := r.Float64() * total
	acc := 0.0
	for i, t := range wc.trans {
		acc += t
		if u < acc {
			return wc.slots[i]
		}
	}
	// Rounding can leave u at the accumulated total; take the last slot.
	return wc.slots[len(wc.slots)-1]
}

func containsSlot(slots []uint64, s uint64) bool {
	for _, v := range slots {
		if v == s {
			return true
		}
	}
	return false
}

// shareNodeType reports whether nodes a and b have at least one node type in
// common. Type lists per node are short, so the nested scan beats building
// sets.
func (g *Graph) shareNodeType(a, b uint32) bool {
	alo, ahi := g.nodeTypeOffsets[a], g.nodeTypeOffsets[a+1]
	blo, bhi := g.nodeTypeOffsets[b], g.nodeTypeOffsets[b+1]
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			if g.nodeTypeIDs[i] == g.nodeTypeIDs[j] {
				return true
			}
		}
	}
	return false
}
