package backend

import "errors"

var (
	// ErrUnknownBuffer is raised when a buffer is freed through a backend that
	// did not produce it (or was already freed).
	ErrUnknownBuffer = errors.New("backend: buffer not owned by this allocator")
	// ErrCanaryCorrupted is raised when the guard bytes around an allocation
	// were overwritten.
	ErrCanaryCorrupted = errors.New("backend: canary corrupted")
	// ErrTooLarge is raised for allocations that cannot be described by a
	// chunk header.
	ErrTooLarge = errors.New("backend: allocation too large")
)

// Backend is the contract every allocation strategy satisfies.
type Backend interface {
	// Alloc returns a buffer of exactly size bytes. size is always > 0.
	Alloc(size int) []byte
	// Free releases a buffer previously returned by Alloc or Realloc.
	Free(buf []byte)
	// Realloc resizes buf to size bytes, preserving its contents.
	// buf is never nil and size is always > 0.
	Realloc(buf []byte, size int) []byte
	// FreeAll invalidates every buffer handed out so far. The backend stays usable.
	FreeAll()
	// Cleanup releases every resource. The backend is not used afterwards.
	Cleanup()
}

// Collector is implemented by backends that can return unused memory.
type Collector interface {
	GC()
}

// Checker is implemented by backends that guard allocations with canaries.
type Checker interface {
	CheckCanaries()
}

// Stats reports backend accounting.
type Stats struct {
	BlocksActive  uint64 // Blocks currently held
	BytesReserved uint64 // Bytes held from the system (blocks + jumbo chunks)
	LiveAllocs    uint64 // Allocations not yet freed (0 for BlockFast, which never frees)
	FreeChunks    uint64 // Chunks waiting on free lists
}

// Reporter is implemented by backends that expose accounting.
type Reporter interface {
	Stats() Stats
}

// MemoryAcquirer reserves memory from an external budget.
// resource.Controller satisfies it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}
