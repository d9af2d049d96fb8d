package arena

import (
	"log/slog"

	"github.com/hupe1980/scopemem/internal/backend"
)

// MemoryAcquirer reserves memory from an external budget.
// *resource.Controller satisfies it.
type MemoryAcquirer = backend.MemoryAcquirer

type options struct {
	logger    *slog.Logger
	metrics   MetricsCollector
	blockSize int
	offHeap   bool
	acquirer  MemoryAcquirer
	override  bool
}

// Option configures an Allocator.
type Option func(*options)

// WithLogger sets the logger used for lifecycle events.
// If nil is passed, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithBlockSize sets the block size of the block kinds (rounded up to a
// power of two, at least 4 KiB). Other kinds ignore it.
func WithBlockSize(size int) Option {
	return func(o *options) {
		o.blockSize = size
	}
}

// WithOffHeap backs the blocks of the block kinds with anonymous memory
// mappings outside the Go heap.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithMemoryAcquirer charges every block and jumbo chunk of the block kinds
// against acq. When the budget refuses a reservation the allocation panics
// with resource.ErrMemoryLimitExceeded, the same way a failing system
// allocator aborts.
func WithMemoryAcquirer(acq MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acq
	}
}

// WithoutOverride makes New ignore OverrideEnv.
func WithoutOverride() Option {
	return func(o *options) {
		o.override = false
	}
}
