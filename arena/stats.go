package arena

import "github.com/hupe1980/scopemem/internal/backend"

// BackendStats reports what the allocation strategy currently holds.
type BackendStats = backend.Stats

// Stats is a snapshot of allocator accounting.
type Stats struct {
	Kind       Kind
	Generation uint32
	InScope    bool

	Allocs         uint64
	Frees          uint64
	Reallocs       uint64
	FreeAlls       uint64
	BytesRequested uint64

	Callbacks int
	Pools     int
	PoolBytes uint64

	Backend BackendStats
}

// Stats returns a snapshot of the allocator's accounting.
// The system allocator reports zero values.
func (a *Allocator) Stats() Stats {
	if a == nil {
		return Stats{Kind: KindSystem, InScope: true}
	}

	s := Stats{
		Kind:           a.kind,
		Generation:     a.generation,
		InScope:        a.InScope(),
		Allocs:         a.allocs,
		Frees:          a.frees,
		Reallocs:       a.reallocs,
		FreeAlls:       a.freeAlls,
		BytesRequested: a.bytesRequested,
		Pools:          len(a.pools),
	}
	for _, cb := range a.callbacks {
		if cb.fn != nil {
			s.Callbacks++
		}
	}
	for _, p := range a.pools {
		s.PoolBytes += p.bytes()
	}
	if r, ok := a.backend.(backend.Reporter); ok && !a.destroyed {
		s.Backend = r.Stats()
	}
	return s
}
