package multimap

import (
	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/hash"
	"github.com/hupe1980/scopemem/hashmap"
	"github.com/hupe1980/scopemem/tree"
)

// Multimap is a hash map of per-key red-black trees keyed by sequence number.
type Multimap[K, V any] struct {
	m    *hashmap.Map[K, *tree.Tree[V]]
	data *arena.Allocator
}

// New creates a multimap living in a.
func New[K, V any](a *arena.Allocator, hashFn hash.Func[K], eqFn hash.EqualFunc[K]) *Multimap[K, V] {
	return &Multimap[K, V]{
		m:    hashmap.New[K, *tree.Tree[V]](a, hashFn, eqFn),
		data: a,
	}
}

// NewAutoreset creates a multimap whose header lives in meta and whose
// contents live in data. Every FreeAll on data empties it.
func NewAutoreset[K, V any](meta, data *arena.Allocator, hashFn hash.Func[K], eqFn hash.EqualFunc[K]) *Multimap[K, V] {
	return &Multimap[K, V]{
		m:    hashmap.NewAutoreset[K, *tree.Tree[V]](meta, data, hashFn, eqFn),
		data: data,
	}
}

// Insert stores v under (key, seq), overwriting an existing entry. It
// reports whether key already had a tree.
func (mm *Multimap[K, V]) Insert(key K, seq uint32, v V) bool {
	t, ok := mm.m.Lookup(key)
	if !ok {
		t = tree.New[V](mm.data)
		mm.m.Insert(key, t)
	}
	t.Insert(seq, v)
	return ok
}

// Lookup returns the value stored under exactly (key, seq).
func (mm *Multimap[K, V]) Lookup(key K, seq uint32) (V, bool) {
	t, ok := mm.m.Lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return t.Lookup(seq)
}

// LookupLE returns the value stored under key with the largest sequence
// number <= seq.
func (mm *Multimap[K, V]) LookupLE(key K, seq uint32) (V, bool) {
	_, v, ok := mm.LookupLEFull(key, seq)
	return v, ok
}

// LookupLEFull is LookupLE that also returns the matched sequence number.
func (mm *Multimap[K, V]) LookupLEFull(key K, seq uint32) (uint32, V, bool) {
	t, ok := mm.m.Lookup(key)
	if !ok {
		var zero V
		return 0, zero, false
	}
	return t.LookupLEFull(seq)
}

// Remove marks (key, seq) as removed and returns its value.
func (mm *Multimap[K, V]) Remove(key K, seq uint32) (V, bool) {
	t, ok := mm.m.Lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return t.Remove(seq)
}

// Count returns the number of live entries under key.
func (mm *Multimap[K, V]) Count(key K) int {
	t, ok := mm.m.Lookup(key)
	if !ok {
		return 0
	}
	return t.Count()
}

// Size returns the number of live entries over all keys. It walks every
// tree; do not call it on hot paths.
func (mm *Multimap[K, V]) Size() int {
	total := 0
	mm.m.Foreach(func(_ K, t *tree.Tree[V]) {
		total += t.Count()
	})
	return total
}

// Keys returns how many keys have a tree, including keys whose entries were
// all removed.
func (mm *Multimap[K, V]) Keys() int {
	return mm.m.Size()
}
