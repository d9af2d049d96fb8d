package tree

import (
	"github.com/hupe1980/scopemem/arena"
	"github.com/hupe1980/scopemem/list"
)

// IntervalTree stores closed ranges [low, high] and answers overlap queries
// in O(log n + k). It is a red-black tree keyed by low where every node also
// records the largest high of its subtree.
//
// Intervals with equal low are kept as separate entries.
type IntervalTree[V any] struct {
	core[V]
	bind *arena.Binding
}

// NewIntervalTree creates an interval tree whose nodes live in a.
func NewIntervalTree[V any](a *arena.Allocator) *IntervalTree[V] {
	t := &IntervalTree[V]{
		core: newCore[V](a),
		bind: arena.Bind(a),
	}
	t.onRotate = func(lower, upper *node[V]) {
		updateMaxEdge(lower)
		updateMaxEdge(upper)
	}
	return t
}

func updateMaxEdge[V any](n *node[V]) {
	m := n.high
	if n.left != nil {
		m = max(m, n.left.maxEdge)
	}
	if n.right != nil {
		m = max(m, n.right.maxEdge)
	}
	n.maxEdge = m
}

// IsEmpty reports whether the tree holds no intervals.
func (t *IntervalTree[V]) IsEmpty() bool {
	t.bind.Check()
	return t.root == nil
}

// Insert adds [low, high] with value v. It panics with ErrInvalidInterval
// if high < low.
func (t *IntervalTree[V]) Insert(low, high uint64, v V) {
	t.bind.Check()
	if high < low {
		panic(ErrInvalidInterval)
	}

	var parent *node[V]
	left := false
	for n := t.root; n != nil; {
		n.maxEdge = max(n.maxEdge, high)
		parent = n
		if low < n.key {
			left, n = true, n.left
		} else {
			left, n = false, n.right
		}
	}

	n := t.nodes.Get()
	n.key = low
	n.high = high
	n.maxEdge = high
	n.data = v
	n.live = true
	t.attach(parent, n, left)
}

// FindIntervals returns, in ascending order of low, the values of every
// interval that overlaps [low, high]. The list is allocated from a.
func (t *IntervalTree[V]) FindIntervals(a *arena.Allocator, low, high uint64) *list.List[V] {
	t.bind.Check()
	out := list.New[V](a)
	findIntervals(t.root, low, high, out)
	return out
}

func findIntervals[V any](n *node[V], low, high uint64, out *list.List[V]) {
	if n == nil {
		return
	}
	if n.left != nil && n.left.maxEdge >= low {
		findIntervals(n.left, low, high, out)
	}
	if n.key <= high && low <= n.high {
		out.Append(n.data)
	}
	if n.key <= high {
		findIntervals(n.right, low, high, out)
	}
}

// Foreach calls fn for every interval in ascending order of low. A true
// return from fn stops the walk, and Foreach returns true.
func (t *IntervalTree[V]) Foreach(fn func(low, high uint64, v V) bool) bool {
	t.bind.Check()
	for n := leftmost(t.root); n != nil; n = n.next() {
		if fn(n.key, n.high, n.data) {
			return true
		}
	}
	return false
}

// Count returns the number of intervals.
func (t *IntervalTree[V]) Count() int {
	t.bind.Check()
	return t.count()
}

// Destroy returns every node to the allocator's pool. The tree must not be
// used again.
func (t *IntervalTree[V]) Destroy() {
	t.bind.Check()
	t.bind.Release()
	t.release()
}
