// Package hashmap implements a chained hash map bound to arena allocators.
//
// Buckets are selected with multiplicative hashing (hash.Slot) so any key
// hash is spread over the table, and because the multiplier is randomized
// per process, collision sets crafted offline do not carry over. Keys
// derived from packet bytes must still be hashed with the seeded strong
// hashes (hash.String, hash.Bytes, hash.Uint64, ...).
//
// # Single Scope
//
//	m := hashmap.New[string, int](a, hash.String, hash.Equal[string])
//
// The map lives and dies with a: after a.FreeAll any use panics with
// arena.ErrStale.
//
// # Dual Scope (autoreset)
//
//	m := hashmap.NewAutoreset[uint32, *Conv](fileScope, packetScope, hash.Uint32, hash.Equal[uint32])
//
// The header belongs to the metadata allocator, the entries to the data
// allocator. Every FreeAll of the data allocator empties the map, which stays
// usable. Any FreeAll or Destroy of the metadata allocator (and Destroy of the
// data allocator) kills it; further use panics with arena.ErrDestroyed.
package hashmap
