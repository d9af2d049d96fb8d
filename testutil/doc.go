// Package testutil provides testing utilities for scopemem.
//
// This package is intended for use in tests, benchmarks and the scopestat
// workload generator. It provides a seeded, lock-protected RNG with helpers
// for the key shapes the containers are exercised with.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniqueUint32s(1000, 1<<20) // distinct tree keys
//	s := rng.String(12)                   // random ASCII
//	ivs := rng.Intervals(500, 1<<16, 256)  // random [low, high] ranges
//
// # Skewed Workloads
//
//	id := rng.Zipf(100, 1.2) // a few conversation ids dominate
package testutil
