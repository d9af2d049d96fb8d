// Package arena provides scope-bound pool allocators.
//
// An Allocator hands out byte buffers from a pluggable backend and reclaims
// all of them at once with FreeAll or Destroy, so a parsing pipeline can
// allocate large numbers of short-lived records per packet, per connection
// or per capture without freeing them one by one.
//
// # Allocator Kinds
//
//	KindSystem     nil allocator, plain Go heap, never bulk-freed
//	KindSimple     one slice per allocation, tracked for FreeAll
//	KindStrict     canaries and fill patterns for debugging
//	KindBlock      size-classed blocks with free lists and GC
//	KindBlockFast  bump allocation, Free is a no-op
//
// A nil *Allocator is valid everywhere and means "the system allocator", so
// call sites work the same whether pooling was requested or not.
//
// # Lifecycle
//
//	a := arena.New(arena.KindBlock)
//	buf := a.Alloc(128)
//	a.FreeAll()   // every buffer is invalid, a is still usable
//	a.Destroy()   // a must never be used again
//
// LeaveScope performs a FreeAll and marks the allocator unusable until
// EnterScope. Any allocation while out of scope panics with ErrOutOfScope.
//
// # Callbacks
//
// Containers bind their lifetime to an allocator with Register. Callbacks run
// most-recently-registered first on FreeAll (a false return deregisters the
// callback) and on Destroy (every callback is deregistered afterwards).
//
// # Typed Pools
//
// Go values that hold pointers cannot live in raw backend memory, so
// containers allocate their nodes from a Pool bound to the allocator. Pools
// are rewound on FreeAll and dropped on Destroy together with the backend.
//
// # Concurrency
//
// An Allocator and everything built on it is owned by one goroutine at a
// time. There is no internal locking.
package arena
