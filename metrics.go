package scopemem

import "github.com/hupe1980/scopemem/arena"

// MetricsCollector receives allocator lifecycle events from every scope.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector = arena.MetricsCollector

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector = arena.NoopMetricsCollector

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector = arena.BasicMetricsCollector

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats = arena.BasicMetricsStats
