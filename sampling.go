package graphgo

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/graphgo/internal/rng"
)

// defaultSamplingAttempts bounds how many consecutive fruitless sampling
// rounds the negative sampler tolerates before giving up. The counter resets
// whenever a round makes progress, so the bound only fires when the
// remaining complement is effectively exhausted.
const defaultSamplingAttempts = 100000

type sampleOptions struct {
	seed           uint64
	degreeWeighted bool
	attempts       uint64
}

// SampleOption configures negative sampling.
type SampleOption func(*sampleOptions) error

// WithSampleSeed sets the seed for reproducible negative samples.
func WithSampleSeed(seed uint64) SampleOption {
	return func(o *sampleOptions) error {
		o.seed = seed
		return nil
	}
}

// WithDegreeWeightedSampling draws endpoints proportionally to node degree
// instead of uniformly: sources by out-degree, destinations by in-degree.
// Sampling a uniformly random edge slot walks exactly that cumulative-degree
// distribution, so no separate CDF is materialized.
func WithDegreeWeightedSampling(enabled bool) SampleOption {
	return func(o *sampleOptions) error {
		o.degreeWeighted = enabled
		return nil
	}
}

// WithSamplingAttempts overrides the bound on consecutive fruitless rounds.
func WithSamplingAttempts(n uint64) SampleOption {
	return func(o *sampleOptions) error {
		if n == 0 {
			return &ErrMalformedInput{Reason: "sampling attempts must be greater than zero"}
		}
		o.attempts = n
		return nil
	}
}

// SampleNegatives returns a new graph holding n edges drawn from the
// complement of this graph's edge set: pairs that are not edges here. The
// result shares this graph's vocabulary and node types, is unweighted and
// untyped, and keeps the directedness and encoding of the source.
//
// Self-loops are candidates only when this graph itself has self-loops.
// Requests larger than the complement fail up front with ErrOutOfCapacity;
// near-complete graphs that stop yielding fresh pairs fail with the same
// error instead of looping forever.
func (g *Graph) SampleNegatives(ctx context.Context, n uint64, optFns ...SampleOption) (out *Graph, err error) {
	start := time.Now()
	var produced uint64
	defer func() {
		g.metrics.RecordNegativeSampling(n, produced, time.Since(start), err)
		g.logger.LogNegativeSampling(ctx, n, produced, err)
	}()

	opts := sampleOptions{
		seed:     0xbadf00d,
		attempts: defaultSamplingAttempts,
	}
	for _, fn := range optFns {
		if err := fn(&opts); err != nil {
			return nil, err
		}
	}

	if n == 0 {
		return nil, &ErrMalformedInput{Reason: "number of negative samples must be greater than zero"}
	}
	edgeCount := g.DirectedEdgeCount()
	if opts.degreeWeighted && edgeCount == 0 {
		return nil, &ErrMalformedInput{Reason: "degree-weighted sampling requires a graph with at least one edge"}
	}

	capacity := g.negativeCapacity()
	if n > capacity {
		return nil, &ErrOutOfCapacity{Requested: n, Capacity: capacity}
	}

	nodes := uint64(g.NodeCount())
	allowLoops := g.selfloops > 0
	picked := roaring64.New()

	var (
		fruitless uint64
		round     uint64
	)
	for picked.GetCardinality() < n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := n - picked.GetCardinality()
		codes := g.sampleCandidateCodes(opts, round, batch, edgeCount)
		round++

		before := picked.GetCardinality()
		for _, code := range codes {
			src, dst := uint32(code/nodes), uint32(code%nodes)
			if src == dst && !allowLoops {
				continue
			}
			if g.hasCode(code) {
				continue
			}
			if picked.CheckedAdd(code) && picked.GetCardinality() == n {
				break
			}
		}
		produced = picked.GetCardinality()

		if produced > before {
			fruitless = 0
		} else {
			fruitless++
			if fruitless > opts.attempts {
				return nil, &ErrOutOfCapacity{Requested: n, Capacity: produced}
			}
		}
	}

	return g.assembleNegatives(picked)
}

// negativeCapacity counts the pairs that could still become negative edges:
// the complete pair universe minus the distinct pairs already present.
// Self-loop pairs join the universe only when the graph has self-loops.
func (g *Graph) negativeCapacity() uint64 {
	nodes := uint64(g.NodeCount())
	if nodes == 0 {
		return 0
	}

	complete := nodes * (nodes - 1)
	distinct, loops := g.distinctPairCounts()
	if !g.directed {
		complete /= 2
		distinct /= 2
	}
	if g.selfloops > 0 {
		complete += nodes
		distinct += loops
	}
	return complete - distinct
}

// distinctPairCounts scans the sorted slot layout once and counts distinct
// (src, dst) pairs, split into non-loop pairs and loops. Undirected graphs
// store each non-loop pair twice, so callers halve the first count.
func (g *Graph) distinctPairCounts() (nonLoops, loops uint64) {
	n := g.NodeCount()
	for src := uint32(0); src < n; src++ {
		lo, hi := g.offsets[src], g.offsets[src+1]
		var prev uint32
		for slot := lo; slot < hi; slot++ {
			d := g.dstAt(slot)
			if slot > lo && d == prev {
				continue // multigraph sibling
			}
			prev = d
			if d == src {
				loops++
			} else {
				nonLoops++
			}
		}
	}
	return nonLoops, loops
}

// sampleCandidateCodes draws batch candidate pair codes for one round. Each
// candidate uses its own splitmix64-derived stream, so the result does not
// depend on how the batch is chunked across workers. Undirected candidates
// are normalized to src <= dst before encoding.
func (g *Graph) sampleCandidateCodes(opts sampleOptions, round, batch, edgeCount uint64) []uint64 {
	nodes := uint64(g.NodeCount())
	roundSeed := rng.SplitMix64(opts.seed + round)

	codes := make([]uint64, batch)
	draw := func(i uint64) {
		r := rng.New(roundSeed + i)
		var src, dst uint32
		if opts.degreeWeighted {
			src = g.srcAt(r.Uint64n(edgeCount))
			dst = g.dstAt(r.Uint64n(edgeCount))
		} else {
			src = uint32(r.Uint64n(nodes))
			dst = uint32(r.Uint64n(nodes))
		}
		if !g.directed && src > dst {
			src, dst = dst, src
		}
		codes[i] = uint64(src)*nodes + uint64(dst)
	}

	workers := g.controller.Workers()
	if batch < parallelFillThreshold || workers <= 1 {
		for i := uint64(0); i < batch; i++ {
			draw(i)
		}
		return codes
	}

	var wg sync.WaitGroup
	chunk := (batch + uint64(workers) - 1) / uint64(workers)
	for begin := uint64(0); begin < batch; begin += chunk {
		end := min(begin+chunk, batch)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := begin; i < end; i++ {
				draw(i)
			}
		}()
	}
	wg.Wait()
	return codes
}

// assembleNegatives builds the result graph from the picked pair codes,
// mirroring non-loop pairs on undirected graphs.
func (g *Graph) assembleNegatives(picked *roaring64.Bitmap) (*Graph, error) {
	nodes := uint64(g.NodeCount())

	entries := make([]builderEntry, 0, picked.GetCardinality())
	it := picked.Iterator()
	for it.HasNext() {
		code := it.Next()
		src, dst := uint32(code/nodes), uint32(code%nodes)
		entries = append(entries, builderEntry{src: src, dst: dst})
		if !g.directed && src != dst {
			entries = append(entries, builderEntry{src: dst, dst: src})
		}
	}
	sortEntries(entries)

	matrix, _, _, err := fillMatrix(g.controller, g.NodeCount(), entries, false, false)
	if err != nil {
		return nil, err
	}

	name := g.name
	if name != "" {
		name = "negative " + name
	}
	neg := &Graph{
		name:            name,
		directed:        g.directed,
		offsets:         matrix.Offsets(),
		dst:             matrix.Destinations(),
		nodeTypeOffsets: g.nodeTypeOffsets,
		nodeTypeIDs:     g.nodeTypeIDs,
		vocab:           g.vocab.Clone(),
		metrics:         g.metrics,
		logger:          g.logger,
		controller:      g.controller,
	}
	if g.nodeTypeVocab != nil {
		neg.nodeTypeVocab = g.nodeTypeVocab.Clone()
	}
	if g.IsSuccinct() {
		seq, err := encodeSuccinct(matrix)
		if err != nil {
			return nil, err
		}
		neg.seq = seq
		neg.dst = nil
	}
	return neg.finalize(), nil
}
