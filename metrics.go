package propgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the metric
// package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordAddEdges is called after each edge-loading operation.
	// vertices and edges are the resulting universe sizes,
	// duration is the total time taken, err is nil if successful.
	RecordAddEdges(vertices, edges int, duration time.Duration, err error)

	// RecordLoad is called after each label, relationship or attribute load.
	// op is the backend command name, rows/dropped come from the LoadResult.
	RecordLoad(op string, rows, dropped int, duration time.Duration, err error)

	// RecordMatch is called after each pattern match.
	// paths is the number of returned length-one paths.
	RecordMatch(paths int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAddEdges(int, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordLoad(string, int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordMatch(int, time.Duration, error)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddEdgesCount  atomic.Int64
	AddEdgesErrors atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadRows       atomic.Int64
	LoadDropped    atomic.Int64
	LoadTotalNanos atomic.Int64
	MatchCount     atomic.Int64
	MatchErrors    atomic.Int64
	MatchPaths     atomic.Int64
}

// RecordAddEdges implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddEdges(vertices, edges int, duration time.Duration, err error) {
	b.AddEdgesCount.Add(1)
	if err != nil {
		b.AddEdgesErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(op string, rows, dropped int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadRows.Add(int64(rows))
	b.LoadDropped.Add(int64(dropped))
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordMatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMatch(paths int, duration time.Duration, err error) {
	b.MatchCount.Add(1)
	b.MatchPaths.Add(int64(paths))
	if err != nil {
		b.MatchErrors.Add(1)
	}
}
