package scopemem

import (
	"log/slog"

	"github.com/hupe1980/scopemem/arena"
)

type options struct {
	globalKind       arena.Kind
	fileKind         arena.Kind
	packetKind       arena.Kind
	memoryLimit      int64
	offHeap          bool
	blockSize        int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Scopes set.
type Option func(*options)

// WithKinds selects the allocator kinds of the global, file and packet
// scopes. The defaults are KindBlock, KindBlock and KindBlockFast.
// KindSystem is rejected by NewScopes because it cannot be scoped.
func WithKinds(global, file, packet arena.Kind) Option {
	return func(o *options) {
		o.globalKind = global
		o.fileKind = file
		o.packetKind = packet
	}
}

// WithMemoryLimit caps the memory reserved by all block-based scopes
// together. Allocations beyond the limit panic with
// resource.ErrMemoryLimitExceeded. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithOffHeap backs block-based scopes with anonymous memory mappings.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithBlockSize sets the block size of block-based scopes.
func WithBlockSize(size int) Option {
	return func(o *options) {
		o.blockSize = size
	}
}

// WithMetricsCollector configures a metrics collector shared by all scopes.
//
// Example:
//
//	metrics := &scopemem.BasicMetricsCollector{}
//	s, _ := scopemem.NewScopes(scopemem.WithMetricsCollector(metrics))
//	// ... run a capture ...
//	stats := metrics.GetStats()
//	fmt.Printf("FreeAlls: %d, Avg latency: %dns\n", stats.FreeAllCount, stats.FreeAllAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for scope transitions.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		globalKind:       arena.KindBlock,
		fileKind:         arena.KindBlock,
		packetKind:       arena.KindBlockFast,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	return o
}
