package tree

import (
	"github.com/hupe1980/scopemem/arena"
)

// Flags modify string-key operations.
type Flags uint8

const (
	// CaseInsensitive folds ASCII letters to lower case before storing or
	// comparing the key. A key inserted with it is found by a case-sensitive
	// lookup only through its lower-case spelling.
	CaseInsensitive Flags = 1 << iota
)

type keyKind uint8

const (
	keyNone keyKind = iota
	keyInteger
	keyString
)

// Tree is a red-black tree with logical deletion. A tree holds either
// integer keys (uint32 and composite) or string keys, never both.
type Tree[V any] struct {
	core[V]
	bind *arena.Binding
	kind keyKind
}

// New creates a tree whose header and nodes live in a.
func New[V any](a *arena.Allocator) *Tree[V] {
	t := &Tree[V]{core: newCore[V](a)}
	t.bind = arena.Bind(a)
	return t
}

// NewAutoreset creates a tree whose header lives in meta and whose nodes live
// in data. Every FreeAll on data empties the tree; it stays usable until meta
// frees everything or either allocator is destroyed.
func NewAutoreset[V any](meta, data *arena.Allocator) *Tree[V] {
	t := &Tree[V]{core: newCore[V](data)}
	t.bind = arena.BindAutoreset(meta, data, t.reset)
	return t
}

func (t *Tree[V]) reset() {
	t.root = nil
	t.kind = keyNone
}

// use validates the tree for an operation that stores keys of kind k.
func (t *Tree[V]) use(k keyKind) {
	t.bind.Check()
	switch t.kind {
	case keyNone:
		t.kind = k
	case k:
	default:
		panic(ErrKeyKindMismatch)
	}
}

// expect validates the tree for an operation that reads keys of kind k.
func (t *Tree[V]) expect(k keyKind) {
	t.bind.Check()
	if t.kind != keyNone && t.kind != k {
		panic(ErrKeyKindMismatch)
	}
}

// IsEmpty reports whether the tree has no nodes at all. A tree whose
// entries were all removed still holds their tombstones and is not empty.
func (t *Tree[V]) IsEmpty() bool {
	t.bind.Check()
	return t.root == nil
}

// Count returns the number of live entries, including those stored under
// composite keys.
func (t *Tree[V]) Count() int {
	t.bind.Check()
	return t.count()
}

// Insert stores v under key, overwriting (and reviving) an existing entry.
func (t *Tree[V]) Insert(key uint32, v V) {
	t.use(keyInteger)
	t.insert(uint64(key), v)
}

// Lookup returns the value stored under key.
func (t *Tree[V]) Lookup(key uint32) (V, bool) {
	t.expect(keyInteger)
	return t.lookup(uint64(key)).value()
}

// LookupLE returns the value with the largest key <= key.
func (t *Tree[V]) LookupLE(key uint32) (V, bool) {
	_, v, ok := t.LookupLEFull(key)
	return v, ok
}

// LookupLEFull is LookupLE that also returns the matched key.
func (t *Tree[V]) LookupLEFull(key uint32) (uint32, V, bool) {
	t.expect(keyInteger)
	return matched(t.lookupLE(uint64(key)))
}

// LookupGE returns the value with the smallest key >= key.
func (t *Tree[V]) LookupGE(key uint32) (V, bool) {
	_, v, ok := t.LookupGEFull(key)
	return v, ok
}

// LookupGEFull is LookupGE that also returns the matched key.
func (t *Tree[V]) LookupGEFull(key uint32) (uint32, V, bool) {
	t.expect(keyInteger)
	return matched(t.lookupGE(uint64(key)))
}

func matched[V any](n *node[V]) (uint32, V, bool) {
	if n == nil {
		var zero V
		return 0, zero, false
	}
	return uint32(n.key), n.data, true //nolint:gosec // integer trees only hold uint32 keys
}

// Remove marks the entry under key as removed and returns its value.
// The node stays in the tree.
func (t *Tree[V]) Remove(key uint32) (V, bool) {
	t.expect(keyInteger)
	return remove(t.lookup(uint64(key)))
}

func remove[V any](n *node[V]) (V, bool) {
	v, ok := n.value()
	if ok {
		n.clear()
	}
	return v, ok
}

// InsertString stores v under the string key.
func (t *Tree[V]) InsertString(key string, v V, flags Flags) {
	t.use(keyString)
	key = foldKey(key, flags)

	n, parent, left := t.findString(key)
	if n == nil {
		n = t.nodes.Get()
		n.skey = key
		t.attach(parent, n, left)
	}
	n.data = v
	n.live = true
}

// LookupString returns the value stored under the string key.
func (t *Tree[V]) LookupString(key string, flags Flags) (V, bool) {
	t.expect(keyString)
	n, _, _ := t.findString(foldKey(key, flags))
	return n.value()
}

// RemoveString marks the entry under the string key as removed.
func (t *Tree[V]) RemoveString(key string, flags Flags) (V, bool) {
	t.expect(keyString)
	n, _, _ := t.findString(foldKey(key, flags))
	return remove(n)
}

func foldKey(key string, flags Flags) string {
	if flags&CaseInsensitive == 0 {
		return key
	}
	return asciiLower(key)
}

// asciiLower lower-cases A-Z only, leaving other bytes untouched.
func asciiLower(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Foreach calls fn in key order for every live entry of an integer-keyed
// tree. path holds the key words from the top level down and is only valid
// during the call. A true return from fn stops the walk, and Foreach returns
// true.
func (t *Tree[V]) Foreach(fn func(path []uint32, v V) bool) bool {
	t.expect(keyInteger)
	var buf [16]uint32
	return t.foreach(buf[:0], fn)
}

func (c *core[V]) foreach(path []uint32, fn func([]uint32, V) bool) bool {
	for n := leftmost(c.root); n != nil; n = n.next() {
		p := append(path, uint32(n.key)) //nolint:gosec // integer trees only hold uint32 keys
		if n.live && fn(p, n.data) {
			return true
		}
		if n.sub != nil && n.sub.foreach(p, fn) {
			return true
		}
	}
	return false
}

// ForeachString is Foreach for string-keyed trees.
func (t *Tree[V]) ForeachString(fn func(key string, v V) bool) bool {
	t.expect(keyString)
	for n := leftmost(t.root); n != nil; n = n.next() {
		if n.live && fn(n.skey, n.data) {
			return true
		}
	}
	return false
}

// Destroy returns every node to the allocator's pools and unregisters the
// autoreset callbacks. The tree must not be used again.
func (t *Tree[V]) Destroy() {
	t.bind.Check()
	t.bind.Release()
	t.release()
	t.kind = keyNone
}
