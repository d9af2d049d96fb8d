// Package hash provides the seeded hash functions used by hashmap and multimap.
//
// # Strong Hashing
//
// StrongHash is a one-at-a-time avalanche mix with two random seeds chosen at
// process start. Equal inputs hash identically within one process but
// differently across processes, so an attacker who controls the keys (for
// example bytes taken from captured packets) cannot precompute a set of
// colliding keys and force every entry into one bucket.
//
// Use Bytes, String, Int64, Uint64 or Float64 for any key derived from
// untrusted input. Uint32 is the identity function and is only suitable for
// trusted in-process integers.
//
// # Slot Selection
//
// Slot spreads any 32-bit hash over a power-of-two table with a random odd
// multiplier, so even a poor caller-supplied hash function lands uniformly:
//
//	slot := hash.Slot(h, capacityLog2)
//
// # Testing
//
// SetSeeds pins all three seeds so tests can assert exact values.
package hash
