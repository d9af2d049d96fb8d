package arena

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/scopemem/internal/backend"
)

// callbackWarnThreshold is the registry size above which Register logs a
// (throttled) warning. Registries this large usually mean containers are
// created per packet on a long-lived allocator.
const callbackWarnThreshold = 4096

var discardLogger = slog.New(slog.DiscardHandler)

// Allocator is a scope-bound pool allocator. The nil *Allocator is the
// system allocator.
type Allocator struct {
	kind    Kind
	backend backend.Backend

	callbacks   []callbackRecord
	dispatching bool

	pools map[any]resettable

	inScope    bool
	destroyed  bool
	generation uint32

	logger  *slog.Logger
	metrics MetricsCollector
	warn    rate.Sometimes

	allocs         uint64
	frees          uint64
	reallocs       uint64
	freeAlls       uint64
	bytesRequested uint64
}

// System returns the system allocator, which is nil.
func System() *Allocator { return nil }

// New creates an allocator of the given kind. The allocator starts in scope.
// When OverrideEnv is set to a valid kind it replaces kind, unless
// WithoutOverride is given. New returns nil for KindSystem.
func New(kind Kind, opts ...Option) *Allocator {
	o := options{override: true}
	for _, opt := range opts {
		opt(&o)
	}

	if kind == KindSystem {
		return nil
	}
	if o.override {
		if k, ok := kindOverride(); ok {
			kind = k
		}
	}

	cfg := backend.BlockConfig{
		BlockSize: o.blockSize,
		OffHeap:   o.offHeap,
		Acquirer:  o.acquirer,
	}

	var be backend.Backend
	switch kind {
	case KindSimple:
		be = backend.NewSimple()
	case KindStrict:
		be = backend.NewStrict()
	case KindBlock:
		be = backend.NewBlock(cfg)
	case KindBlockFast:
		be = backend.NewBlockFast(cfg)
	default:
		panic(ErrUnknownKind)
	}

	logger := o.logger
	if logger == nil {
		logger = discardLogger
	}
	metrics := o.metrics
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}

	a := &Allocator{
		kind:    kind,
		backend: be,
		pools:   make(map[any]resettable),
		inScope: true,
		logger:  logger.With("allocator", kind.String()),
		metrics: metrics,
		warn:    rate.Sometimes{First: 1, Interval: time.Minute},
	}
	a.logger.Debug("allocator created", "off_heap", o.offHeap)
	return a
}

// Kind reports the allocation strategy in use.
func (a *Allocator) Kind() Kind {
	if a == nil {
		return KindSystem
	}
	return a.kind
}

// InScope reports whether the allocator may currently be used.
// The system allocator is always in scope.
func (a *Allocator) InScope() bool {
	if a == nil {
		return true
	}
	return a.inScope && !a.destroyed
}

// Destroyed reports whether Destroy was called.
func (a *Allocator) Destroyed() bool {
	return a != nil && a.destroyed
}

// Generation is incremented by every FreeAll and by Destroy. Containers
// remember it to detect use after their memory was reclaimed.
func (a *Allocator) Generation() uint32 {
	if a == nil {
		return 0
	}
	return a.generation
}

func (a *Allocator) checkAlive() {
	if a.destroyed {
		panic(ErrDestroyed)
	}
}

func (a *Allocator) checkUsable() {
	a.checkAlive()
	if !a.inScope {
		panic(ErrOutOfScope)
	}
}

// Alloc returns a buffer of exactly size bytes. The contents are
// unspecified. A size of zero (or less) returns nil.
func (a *Allocator) Alloc(size int) []byte {
	if a == nil {
		if size <= 0 {
			return nil
		}
		return make([]byte, size)
	}
	a.checkUsable()
	if size <= 0 {
		return nil
	}
	a.allocs++
	a.bytesRequested += uint64(size)
	a.metrics.RecordAlloc(a.kind, size)
	return a.backend.Alloc(size)
}

// Alloc0 is Alloc with the buffer zeroed.
func (a *Allocator) Alloc0(size int) []byte {
	buf := a.Alloc(size)
	clear(buf)
	return buf
}

// Free releases buf early. Freeing is optional: FreeAll reclaims everything.
// A nil buf is ignored.
func (a *Allocator) Free(buf []byte) {
	if a == nil {
		return
	}
	a.checkUsable()
	if buf == nil {
		return
	}
	a.frees++
	a.metrics.RecordFree(a.kind)
	a.backend.Free(buf)
}

// Realloc resizes buf to size bytes, preserving min(len(buf), size) bytes.
// A nil buf behaves like Alloc, a size of zero like Free (returning nil).
func (a *Allocator) Realloc(buf []byte, size int) []byte {
	if a == nil {
		if size <= 0 {
			return nil
		}
		out := make([]byte, size)
		copy(out, buf)
		return out
	}
	if buf == nil {
		return a.Alloc(size)
	}
	if size <= 0 {
		a.Free(buf)
		return nil
	}
	a.checkUsable()
	a.reallocs++
	a.bytesRequested += uint64(size)
	a.metrics.RecordAlloc(a.kind, size)
	return a.backend.Realloc(buf, size)
}

// FreeAll invalidates every buffer and pooled value handed out so far.
// FREE_ALL callbacks run first, newest registration first.
// On the system allocator FreeAll does nothing.
func (a *Allocator) FreeAll() {
	if a == nil {
		return
	}
	a.checkAlive()
	a.freeAll()
}

func (a *Allocator) freeAll() {
	start := time.Now()

	fired := a.dispatch(EventFreeAll)
	for _, p := range a.pools {
		p.rewind()
	}
	a.backend.FreeAll()
	a.generation++
	a.freeAlls++

	elapsed := time.Since(start)
	a.metrics.RecordFreeAll(a.kind, fired, elapsed)
	a.logger.Debug("free all",
		"generation", a.generation,
		"callbacks", fired,
		"duration", elapsed,
	)
}

// Destroy runs every callback with EventDestroy, releases all memory and
// makes the allocator unusable. Any later use panics with ErrDestroyed.
func (a *Allocator) Destroy() {
	if a == nil {
		return
	}
	a.checkAlive()

	fired := a.dispatch(EventDestroy)
	a.callbacks = nil
	for _, p := range a.pools {
		p.drop()
	}
	a.pools = nil
	a.backend.Cleanup()
	a.destroyed = true
	a.inScope = false
	a.generation++

	a.metrics.RecordDestroy(a.kind)
	a.logger.Debug("destroyed", "callbacks", fired)
}

// EnterScope makes an out-of-scope allocator usable again.
// It panics with ErrScopeAlreadyEntered if the allocator is already in scope.
func (a *Allocator) EnterScope() {
	if a == nil {
		return
	}
	a.checkAlive()
	if a.inScope {
		panic(ErrScopeAlreadyEntered)
	}
	a.inScope = true
}

// LeaveScope frees everything and marks the allocator out of scope.
// It panics with ErrOutOfScope if the allocator is not in scope.
func (a *Allocator) LeaveScope() {
	if a == nil {
		return
	}
	a.checkUsable()
	a.freeAll()
	a.inScope = false
}

// GC returns idle memory to the system when the backend supports it.
func (a *Allocator) GC() {
	if a == nil {
		return
	}
	a.checkAlive()
	if c, ok := a.backend.(backend.Collector); ok {
		c.GC()
	}
}

// CheckCanaries verifies the guard bytes of every live allocation of a
// KindStrict allocator and panics with backend.ErrCanaryCorrupted on damage.
// It does nothing for other kinds.
func (a *Allocator) CheckCanaries() {
	if a == nil {
		return
	}
	a.checkAlive()
	if c, ok := a.backend.(backend.Checker); ok {
		c.CheckCanaries()
	}
}
