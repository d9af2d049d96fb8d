// Package resource implements the Controller used to govern arena memory.
//
// The Controller provides two limits:
//
//   - Memory: a hard budget shared by any number of allocators (fail-fast)
//   - Rate: a token bucket used to pace event ingestion (e.g. packet replay)
//
// # Memory Budget
//
// Block backends reserve every block they map from the controller and return
// it on Destroy or GC. AcquireMemory never blocks; it returns
// ErrMemoryLimitExceeded when the budget would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//	a := arena.New(arena.KindBlock, arena.WithMemoryAcquirer(rc))
//
// # Rate Limiting
//
//	rc := resource.NewController(resource.Config{EventsPerSec: 10000})
//	if err := rc.Wait(ctx, 1); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
// This allows optional limits without nil checks everywhere.
package resource
