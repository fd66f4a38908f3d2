package pagedb

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems.
// Package prommetrics provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordPut is called after each put operation.
	// duration is the total time taken, err is nil if successful.
	RecordPut(duration time.Duration, err error)

	// RecordGet is called after each get. found is false for missing or
	// unreadable records.
	RecordGet(duration time.Duration, found bool)

	// RecordDelete is called after each delete operation.
	RecordDelete(duration time.Duration, err error)

	// RecordQuery is called after each query. indexed is false when the
	// query fell back to a full scan.
	RecordQuery(results int, indexed bool, duration time.Duration)

	// RecordFlush is called after each flush.
	RecordFlush(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(time.Duration, error)       {}
func (NoopMetricsCollector) RecordGet(time.Duration, bool)        {}
func (NoopMetricsCollector) RecordDelete(time.Duration, error)    {}
func (NoopMetricsCollector) RecordQuery(int, bool, time.Duration) {}
func (NoopMetricsCollector) RecordFlush(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount        atomic.Int64
	PutErrors       atomic.Int64
	PutTotalNanos   atomic.Int64
	GetCount        atomic.Int64
	GetMisses       atomic.Int64
	DeleteCount     atomic.Int64
	DeleteErrors    atomic.Int64
	QueryCount      atomic.Int64
	QueryScans      atomic.Int64
	QueryResults    atomic.Int64
	QueryTotalNanos atomic.Int64
	FlushCount      atomic.Int64
	FlushErrors     atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(_ time.Duration, found bool) {
	b.GetCount.Add(1)
	if !found {
		b.GetMisses.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, indexed bool, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if !indexed {
		b.QueryScans.Add(1)
	}
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(_ time.Duration, err error) {
	b.FlushCount.Add(1)
	if err != nil {
		b.FlushErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:      b.PutCount.Load(),
		PutErrors:     b.PutErrors.Load(),
		PutAvgNanos:   avg(b.PutTotalNanos.Load(), b.PutCount.Load()),
		GetCount:      b.GetCount.Load(),
		GetMisses:     b.GetMisses.Load(),
		DeleteCount:   b.DeleteCount.Load(),
		DeleteErrors:  b.DeleteErrors.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryScans:    b.QueryScans.Load(),
		QueryResults:  b.QueryResults.Load(),
		QueryAvgNanos: avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		FlushCount:    b.FlushCount.Load(),
		FlushErrors:   b.FlushErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount      int64
	PutErrors     int64
	PutAvgNanos   int64
	GetCount      int64
	GetMisses     int64
	DeleteCount   int64
	DeleteErrors  int64
	QueryCount    int64
	QueryScans    int64
	QueryResults  int64
	QueryAvgNanos int64
	FlushCount    int64
	FlushErrors   int64
}
