package arena

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives allocator lifecycle events.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordAlloc is called for every backend allocation (including reallocations).
	RecordAlloc(kind Kind, size int)
	// RecordFree is called for every explicit Free.
	RecordFree(kind Kind)
	// RecordFreeAll is called after a FreeAll; callbacks is the number fired.
	RecordFreeAll(kind Kind, callbacks int, duration time.Duration)
	// RecordDestroy is called after Destroy.
	RecordDestroy(kind Kind)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(Kind, int)                  {}
func (NoopMetricsCollector) RecordFree(Kind)                        {}
func (NoopMetricsCollector) RecordFreeAll(Kind, int, time.Duration) {}
func (NoopMetricsCollector) RecordDestroy(Kind)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// It is safe to share between allocators owned by different goroutines.
type BasicMetricsCollector struct {
	AllocCount        atomic.Int64
	AllocBytes        atomic.Int64
	FreeCount         atomic.Int64
	FreeAllCount      atomic.Int64
	FreeAllCallbacks  atomic.Int64
	FreeAllTotalNanos atomic.Int64
	DestroyCount      atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(_ Kind, size int) {
	b.AllocCount.Add(1)
	b.AllocBytes.Add(int64(size))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(Kind) {
	b.FreeCount.Add(1)
}

// RecordFreeAll implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFreeAll(_ Kind, callbacks int, duration time.Duration) {
	b.FreeAllCount.Add(1)
	b.FreeAllCallbacks.Add(int64(callbacks))
	b.FreeAllTotalNanos.Add(duration.Nanoseconds())
}

// RecordDestroy implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDestroy(Kind) {
	b.DestroyCount.Add(1)
}

// AverageFreeAllLatency returns the mean FreeAll duration.
func (b *BasicMetricsCollector) AverageFreeAllLatency() time.Duration {
	return time.Duration(b.getAvgFreeAllNanos())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:       b.AllocCount.Load(),
		AllocBytes:       b.AllocBytes.Load(),
		FreeCount:        b.FreeCount.Load(),
		FreeAllCount:     b.FreeAllCount.Load(),
		FreeAllCallbacks: b.FreeAllCallbacks.Load(),
		FreeAllAvgNanos:  b.getAvgFreeAllNanos(),
		DestroyCount:     b.DestroyCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgFreeAllNanos() int64 {
	count := b.FreeAllCount.Load()
	if count == 0 {
		return 0
	}
	return b.FreeAllTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount       int64
	AllocBytes       int64
	FreeCount        int64
	FreeAllCount     int64
	FreeAllCallbacks int64
	FreeAllAvgNanos  int64
	DestroyCount     int64
}
