// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// MapAnon creates read-write private mappings outside the Go garbage
// collector's control. The block backends use them as backing storage when an
// allocator is created with arena.WithOffHeap.
//
//	m, err := mmap.MapAnon(256 << 10)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON, madvise(2) for hints
//   - Windows: VirtualAlloc/VirtualFree (Advise is a no-op)
//
// Accessing a slice obtained from Bytes after Close results in undefined
// behavior (likely a crash).
package mmap
