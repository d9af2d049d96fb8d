// Package backend implements the allocation strategies behind arena.Allocator.
//
// Every strategy satisfies the five-operation Backend contract (Alloc, Free,
// Realloc, FreeAll, Cleanup). Optional capabilities are discovered with type
// assertions:
//
//   - Collector: GC releases memory the strategy no longer needs
//   - Checker:   CheckCanaries validates guard bytes around live blocks
//   - Reporter:  Stats exposes block and byte accounting
//
// # Strategies
//
//	┌────────────┬──────────────────────────────────────────────────────────┐
//	│ Simple     │ one Go slice per allocation, tracked in a live set       │
//	│ Strict     │ canaries + pre/post fill, panics on corruption           │
//	│ Block      │ fixed blocks, size classes, free lists, jumbo chunks, GC │
//	│ BlockFast  │ bump pointer only, Free is a no-op                       │
//	└────────────┴──────────────────────────────────────────────────────────┘
//
// No strategy returns a live address twice without an intervening Free or
// FreeAll. Passing a buffer to Free or Realloc that came from a different
// backend is undefined (Strict detects it and panics).
//
// Backends are not safe for concurrent use.
package backend
