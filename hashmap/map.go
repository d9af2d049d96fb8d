package hashmap

import (
	"iter"
	"math/bits"

	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/hash"
	"github.com/hupe1980/scopemem/list"
)

// DefaultCapacityLog2 is the log2 of the initial bucket count.
const DefaultCapacityLog2 = 5

type item[K, V any] struct {
	key   K
	value V
	next  *item[K, V]
}

// Map is a chained hash map. The zero value is not usable; call New or
// NewAutoreset.
type Map[K, V any] struct {
	bind *arena.Binding

	pool    *arena.Pool[item[K, V]]
	table   []*item[K, V]
	count   int
	capLog2 uint

	hashFn hash.Func[K]
	eqFn   hash.EqualFunc[K]
}

// New creates a map whose header and entries live in a.
func New[K, V any](a *arena.Allocator, hashFn hash.Func[K], eqFn hash.EqualFunc[K]) *Map[K, V] {
	m := newMap[K, V](a, hashFn, eqFn)
	m.bind = arena.Bind(a)
	return m
}

// NewAutoreset creates a map whose header lives in meta and whose entries
// live in data. meta must outlive data's resets.
func NewAutoreset[K, V any](meta, data *arena.Allocator, hashFn hash.Func[K], eqFn hash.EqualFunc[K]) *Map[K, V] {
	m := newMap[K, V](data, hashFn, eqFn)
	m.bind = arena.BindAutoreset(meta, data, m.reset)
	return m
}

func newMap[K, V any](data *arena.Allocator, hashFn hash.Func[K], eqFn hash.EqualFunc[K]) *Map[K, V] {
	return &Map[K, V]{
		pool:    arena.NewPool[item[K, V]](data),
		capLog2: DefaultCapacityLog2,
		hashFn:  hashFn,
		eqFn:    eqFn,
	}
}

func (m *Map[K, V]) reset() {
	m.table = nil
	m.count = 0
	m.capLog2 = DefaultCapacityLog2
}

func (m *Map[K, V]) check() {
	m.bind.Check()
}

// Allocators returns the metadata and data allocators (equal for New).
func (m *Map[K, V]) Allocators() (meta, data *arena.Allocator) {
	return m.bind.Meta(), m.bind.Data()
}

// Size returns the number of entries.
func (m *Map[K, V]) Size() int {
	m.check()
	return m.count
}

// Capacity returns the current bucket count (0 before the first insert).
func (m *Map[K, V]) Capacity() int {
	m.check()
	return len(m.table)
}

func (m *Map[K, V]) slot(key K) uint32 {
	return hash.Slot(m.hashFn(key), m.capLog2)
}

// find returns the link that points at key's item, or the chain's terminal
// nil link when key is absent.
func (m *Map[K, V]) find(key K) **item[K, V] {
	link := &m.table[m.slot(key)]
	for *link != nil && !m.eqFn((*link).key, key) {
		link = &(*link).next
	}
	return link
}

// Insert stores value under key. If key was present its value is replaced
// (the stored key is kept) and the old value is returned with true.
func (m *Map[K, V]) Insert(key K, value V) (old V, existed bool) {
	m.check()
	if m.table == nil {
		m.table = make([]*item[K, V], 1<<m.capLog2)
	}

	link := m.find(key)
	if it := *link; it != nil {
		old = it.value
		it.value = value
		return old, true
	}

	it := m.pool.Get()
	it.key = key
	it.value = value
	*link = it
	m.count++

	if m.count >= len(m.table) {
		m.rehash(m.capLog2 + 1)
	}
	return old, false
}

func (m *Map[K, V]) rehash(log2 uint) {
	old := m.table
	m.capLog2 = log2
	m.table = make([]*item[K, V], 1<<log2)
	for _, it := range old {
		for it != nil {
			next := it.next
			s := m.slot(it.key)
			it.next = m.table[s]
			m.table[s] = it
			it = next
		}
	}
}

// Reserve sizes the table for at least n entries without further growth.
func (m *Map[K, V]) Reserve(n int) {
	m.check()
	if n <= 0 {
		return
	}
	need := max(uint(bits.Len(uint(n))), DefaultCapacityLog2)
	if m.table == nil {
		m.capLog2 = need
		m.table = make([]*item[K, V], 1<<need)
		return
	}
	if need > m.capLog2 {
		m.rehash(need)
	}
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	m.check()
	return m.table != nil && *m.find(key) != nil
}

// Lookup returns the value stored under key.
func (m *Map[K, V]) Lookup(key K) (V, bool) {
	_, v, ok := m.LookupExtended(key)
	return v, ok
}

// LookupExtended returns the key as originally inserted together with its
// value.
func (m *Map[K, V]) LookupExtended(key K) (origKey K, value V, ok bool) {
	m.check()
	if m.table == nil {
		return origKey, value, false
	}
	if it := *m.find(key); it != nil {
		return it.key, it.value, true
	}
	return origKey, value, false
}

// Remove deletes key and returns its value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	m.check()
	var zero V
	if m.table == nil {
		return zero, false
	}
	link := m.find(key)
	it := *link
	if it == nil {
		return zero, false
	}
	v := it.value
	m.unlink(link)
	return v, true
}

// Steal deletes key without handing back its value; ownership of the value
// stays with whoever holds it. It reports whether key was present.
func (m *Map[K, V]) Steal(key K) bool {
	m.check()
	if m.table == nil {
		return false
	}
	link := m.find(key)
	if *link == nil {
		return false
	}
	m.unlink(link)
	return true
}

func (m *Map[K, V]) unlink(link **item[K, V]) {
	it := *link
	*link = it.next
	m.count--
	m.pool.Put(it)
}

// Foreach calls fn for every entry in unspecified order. fn must not modify
// the map; use ForeachRemove to delete while iterating.
func (m *Map[K, V]) Foreach(fn func(key K, value V)) {
	m.check()
	for _, it := range m.table {
		for ; it != nil; it = it.next {
			fn(it.key, it.value)
		}
	}
}

// All returns an iterator over the entries in unspecified order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.check()
		for _, it := range m.table {
			for ; it != nil; it = it.next {
				if !yield(it.key, it.value) {
					return
				}
			}
		}
	}
}

// ForeachRemove deletes every entry for which fn returns true and returns
// how many were deleted.
func (m *Map[K, V]) ForeachRemove(fn func(key K, value V) bool) int {
	m.check()
	removed := 0
	for i := range m.table {
		link := &m.table[i]
		for *link != nil {
			if it := *link; fn(it.key, it.value) {
				m.unlink(link)
				removed++
			} else {
				link = &it.next
			}
		}
	}
	return removed
}

// Find returns the value of the first entry for which fn returns true.
func (m *Map[K, V]) Find(fn func(key K, value V) bool) (V, bool) {
	m.check()
	for _, it := range m.table {
		for ; it != nil; it = it.next {
			if fn(it.key, it.value) {
				return it.value, true
			}
		}
	}
	var zero V
	return zero, false
}

// Keys returns a new list, allocated from a, holding every key.
func (m *Map[K, V]) Keys(a *arena.Allocator) *list.List[K] {
	m.check()
	l := list.New[K](a)
	for _, it := range m.table {
		for ; it != nil; it = it.next {
			l.Append(it.key)
		}
	}
	return l
}

// Destroy releases every entry and unregisters the autoreset callbacks.
// The map must not be used again.
func (m *Map[K, V]) Destroy() {
	m.check()
	m.bind.Release()
	for _, it := range m.table {
		for it != nil {
			next := it.next
			m.pool.Put(it)
			it = next
		}
	}
	m.reset()
}
