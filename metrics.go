package sfindex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordRebuild is called after each dataset load/rebuild.
	// records is the number of records encoded, skipped the number dropped,
	// duration the total time taken; err is nil if successful.
	RecordRebuild(records, skipped int, duration time.Duration, err error)

	// RecordFilter is called after each filter scan.
	// matches is the number of records returned; wildcard reports whether
	// the all-wildcard short circuit was taken.
	RecordFilter(matches int, wildcard bool, duration time.Duration, err error)

	// RecordSegmentLoad is called after each segment document fetch+parse.
	RecordSegmentLoad(records int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRebuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordFilter(int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordSegmentLoad(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	RebuildCount      atomic.Int64
	RebuildErrors     atomic.Int64
	RebuildRecords    atomic.Int64
	RebuildSkipped    atomic.Int64
	RebuildTotalNanos atomic.Int64

	FilterCount      atomic.Int64
	FilterErrors     atomic.Int64
	FilterMatches    atomic.Int64
	FilterWildcards  atomic.Int64
	FilterTotalNanos atomic.Int64

	SegmentLoadCount  atomic.Int64
	SegmentLoadErrors atomic.Int64
}

// RecordRebuild implements MetricsCollector.
func (m *BasicMetricsCollector) RecordRebuild(records, skipped int, duration time.Duration, err error) {
	m.RebuildCount.Add(1)
	m.RebuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.RebuildErrors.Add(1)
		return
	}
	m.RebuildRecords.Add(int64(records))
	m.RebuildSkipped.Add(int64(skipped))
}

// RecordFilter implements MetricsCollector.
func (m *BasicMetricsCollector) RecordFilter(matches int, wildcard bool, duration time.Duration, err error) {
	m.FilterCount.Add(1)
	m.FilterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.FilterErrors.Add(1)
		return
	}
	m.FilterMatches.Add(int64(matches))
	if wildcard {
		m.FilterWildcards.Add(1)
	}
}

// RecordSegmentLoad implements MetricsCollector.
func (m *BasicMetricsCollector) RecordSegmentLoad(_ int, _ time.Duration, err error) {
	m.SegmentLoadCount.Add(1)
	if err != nil {
		m.SegmentLoadErrors.Add(1)
	}
}
