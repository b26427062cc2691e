package graphgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    buildCounter  prometheus.Counter
//	    walkHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(nodes uint32, edges uint64, duration time.Duration, err error) {
//	    p.buildCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after each graph build.
	// nodes and edges are the built counts, duration is the total time taken,
	// err is nil if successful.
	RecordBuild(nodes uint32, edges uint64, duration time.Duration, err error)

	// RecordWalks is called after each random walk batch.
	// walks is the number of walks produced, duration is the total time taken.
	RecordWalks(walks int, duration time.Duration, err error)

	// RecordNegativeSampling is called after each negative sampling run.
	// requested is the number of samples asked for, produced the number drawn.
	RecordNegativeSampling(requested, produced uint64, duration time.Duration, err error)

	// RecordOperator is called after each graph set operation.
	RecordOperator(op string, duration time.Duration, err error)

	// RecordSnapshotSave is called after each snapshot save.
	RecordSnapshotSave(duration time.Duration, err error)

	// RecordSnapshotLoad is called after each snapshot load.
	RecordSnapshotLoad(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(uint32, uint64, time.Duration, error)            {}
func (NoopMetricsCollector) RecordWalks(int, time.Duration, error)                       {}
func (NoopMetricsCollector) RecordNegativeSampling(uint64, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordOperator(string, time.Duration, error)                 {}
func (NoopMetricsCollector) RecordSnapshotSave(time.Duration, error)                     {}
func (NoopMetricsCollector) RecordSnapshotLoad(time.Duration, error)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	WalkBatches     atomic.Int64
	WalkCount       atomic.Int64
	WalkErrors      atomic.Int64
	WalkTotalNanos  atomic.Int64
	SampleRuns      atomic.Int64
	SampleRequested atomic.Int64
	SampleProduced  atomic.Int64
	SampleErrors    atomic.Int64
	OperatorCount   atomic.Int64
	OperatorErrors  atomic.Int64
	SaveCount       atomic.Int64
	SaveErrors      atomic.Int64
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(nodes uint32, edges uint64, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordWalks implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWalks(walks int, duration time.Duration, err error) {
	b.WalkBatches.Add(1)
	b.WalkCount.Add(int64(walks))
	b.WalkTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WalkErrors.Add(1)
	}
}

// RecordNegativeSampling implements MetricsCollector.
func (b *BasicMetricsCollector) RecordNegativeSampling(requested, produced uint64, duration time.Duration, err error) {
	b.SampleRuns.Add(1)
	b.SampleRequested.Add(int64(requested))
	b.SampleProduced.Add(int64(produced))
	if err != nil {
		b.SampleErrors.Add(1)
	}
}

// RecordOperator implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOperator(op string, duration time.Duration, err error) {
	b.OperatorCount.Add(1)
	if err != nil {
		b.OperatorErrors.Add(1)
	}
}

// RecordSnapshotSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotSave(duration time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
	}
}

// RecordSnapshotLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshotLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:      b.BuildCount.Load(),
		BuildErrors:     b.BuildErrors.Load(),
		BuildAvgNanos:   b.getAvgBuildNanos(),
		WalkBatches:     b.WalkBatches.Load(),
		WalkCount:       b.WalkCount.Load(),
		WalkErrors:      b.WalkErrors.Load(),
		WalkAvgNanos:    b.getAvgWalkNanos(),
		SampleRuns:      b.SampleRuns.Load(),
		SampleRequested: b.SampleRequested.Load(),
		SampleProduced:  b.SampleProduced.Load(),
		SampleErrors:    b.SampleErrors.Load(),
		OperatorCount:   b.OperatorCount.Load(),
		OperatorErrors:  b.OperatorErrors.Load(),
		SaveCount:       b.SaveCount.Load(),
		SaveErrors:      b.SaveErrors.Load(),
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgBuildNanos() int64 {
	count := b.BuildCount.Load()
	if count == 0 {
		return 0
	}
	return b.BuildTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgWalkNanos() int64 {
	count := b.WalkBatches.Load()
	if count == 0 {
		return 0
	}
	return b.WalkTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount      int64
	BuildErrors     int64
	BuildAvgNanos   int64
	WalkBatches     int64
	WalkCount       int64
	WalkErrors      int64
	WalkAvgNanos    int64
	SampleRuns      int64
	SampleRequested int64
	SampleProduced  int64
	SampleErrors    int64
	OperatorCount   int64
	OperatorErrors  int64
	SaveCount       int64
	SaveErrors      int64
	LoadCount       int64
	LoadErrors      int64
}
