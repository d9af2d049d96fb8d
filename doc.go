// Package scopemem provides scope-bound memory pools and the containers
// built on them.
//
// A program that processes data in nested lifetimes (a long-running
// process, one input file, one record of that file) allocates everything
// belonging to a lifetime from that lifetime's allocator, and frees it all
// at once when the lifetime ends. Scopes manages the three allocators and
// enforces their nesting.
//
// # Quick Start
//
//	s, _ := scopemem.NewScopes()
//	defer s.Close()
//
//	_ = s.EnterFileScope()
//	for _, pkt := range packets {
//		_ = s.EnterPacketScope()
//		fields := list.New[string](s.Packet())
//		// ... dissect pkt into fields ...
//		_ = s.LeavePacketScope() // fields is gone
//	}
//	_ = s.LeaveFileScope()
//
// # Packages
//
//   - arena: allocators, lifecycle callbacks, typed pools and bindings
//   - list: doubly linked list, stack and queue
//   - hashmap: chained hash map with optional autoreset
//   - tree: red-black tree with integer, string and composite keys, and an interval tree
//   - multimap: per-key trees ordered by a sequence number
//   - hash: seeded hash functions used by hashmap
//   - resource: shared memory budget and rate limiting
//
// # Allocator kinds
//
// Each scope can be backed by any arena.Kind. The environment variable
// SCOPEMEM_ALLOCATOR_OVERRIDE forces every allocator of the process to one
// kind, which is useful to run a workload under the strict (canary
// checking) allocator:
//
//	SCOPEMEM_ALLOCATOR_OVERRIDE=strict go test ./...
//
// # Containers and lifetimes
//
// A container created with New lives entirely in one allocator and becomes
// unusable when that allocator is freed. Containers created with
// NewAutoreset keep their header in a long-lived allocator and empty
// themselves whenever the short-lived data allocator is freed:
//
//	m := hashmap.NewAutoreset[string, int](s.Global(), s.File(), hash.String, hash.Equal[string])
//
// # Logging and metrics
//
// Scope transitions are logged through a Logger (log/slog). Allocation and
// free-all events can be collected with WithMetricsCollector:
//
//	metrics := &scopemem.BasicMetricsCollector{}
//	s, _ := scopemem.NewScopes(scopemem.WithMetricsCollector(metrics), scopemem.WithLogLevel(slog.LevelDebug))
package scopemem
