package list

import (
	"iter"

	"github.com/hupe1980/scopemem/arena"
)

// Frame is one element of a List.
type Frame[T any] struct {
	prev, next *Frame[T]

	// Value is the stored element.
	Value T
}

// Next returns the following frame or nil.
func (f *Frame[T]) Next() *Frame[T] { return f.next }

// Prev returns the preceding frame or nil.
func (f *Frame[T]) Prev() *Frame[T] { return f.prev }

// List is a doubly linked list. The zero value is not usable; call New.
type List[T any] struct {
	bind *arena.Binding
	pool *arena.Pool[Frame[T]]

	head, tail *Frame[T]
	count      int
}

// New creates an empty list whose frames are allocated from a.
func New[T any](a *arena.Allocator) *List[T] {
	return &List[T]{
		bind: arena.Bind(a),
		pool: arena.NewPool[Frame[T]](a),
	}
}

func (l *List[T]) check() {
	l.bind.Check()
}

// Allocator returns the allocator the list lives in.
func (l *List[T]) Allocator() *arena.Allocator { return l.bind.Data() }

// Count returns the number of frames.
func (l *List[T]) Count() int {
	l.check()
	return l.count
}

// Head returns the first frame or nil.
func (l *List[T]) Head() *Frame[T] {
	l.check()
	return l.head
}

// Tail returns the last frame or nil.
func (l *List[T]) Tail() *Frame[T] {
	l.check()
	return l.tail
}

func (l *List[T]) newFrame(v T) *Frame[T] {
	f := l.pool.Get()
	f.Value = v
	return f
}

// Prepend inserts v at the head.
func (l *List[T]) Prepend(v T) *Frame[T] {
	l.check()
	f := l.newFrame(v)
	l.linkAfter(nil, f)
	return f
}

// Append inserts v at the tail.
func (l *List[T]) Append(v T) *Frame[T] {
	l.check()
	f := l.newFrame(v)
	l.linkAfter(l.tail, f)
	return f
}

// linkAfter inserts f after at, or at the head when at is nil.
func (l *List[T]) linkAfter(at, f *Frame[T]) {
	if at == nil {
		f.prev = nil
		f.next = l.head
		if l.head != nil {
			l.head.prev = f
		} else {
			l.tail = f
		}
		l.head = f
	} else {
		f.prev = at
		f.next = at.next
		if at.next != nil {
			at.next.prev = f
		} else {
			l.tail = f
		}
		at.next = f
	}
	l.count++
}

// RemoveFrame unlinks f, which must belong to l, and returns it to the pool.
func (l *List[T]) RemoveFrame(f *Frame[T]) {
	l.check()
	if f.prev != nil {
		f.prev.next = f.next
	} else {
		l.head = f.next
	}
	if f.next != nil {
		f.next.prev = f.prev
	} else {
		l.tail = f.prev
	}
	l.count--
	l.pool.Put(f)
}

// FindCustom returns the first frame whose value compares equal (cmp == 0)
// to v, or nil.
func (l *List[T]) FindCustom(v T, cmp func(a, b T) int) *Frame[T] {
	l.check()
	for f := l.head; f != nil; f = f.next {
		if cmp(f.Value, v) == 0 {
			return f
		}
	}
	return nil
}

// InsertSorted inserts v after every element that compares <= v, scanning
// from the head. Use it when new values tend to be small.
func (l *List[T]) InsertSorted(v T, cmp func(a, b T) int) *Frame[T] {
	l.check()
	var at *Frame[T]
	for cur := l.head; cur != nil && cmp(cur.Value, v) <= 0; cur = cur.next {
		at = cur
	}
	f := l.newFrame(v)
	l.linkAfter(at, f)
	return f
}

// AppendSorted is InsertSorted scanning from the tail. Use it when new
// values tend to be large.
func (l *List[T]) AppendSorted(v T, cmp func(a, b T) int) *Frame[T] {
	l.check()
	at := l.tail
	for at != nil && cmp(at.Value, v) > 0 {
		at = at.prev
	}
	f := l.newFrame(v)
	l.linkAfter(at, f)
	return f
}

// Foreach calls fn for every value from head to tail.
func (l *List[T]) Foreach(fn func(T)) {
	l.check()
	for f := l.head; f != nil; f = f.next {
		fn(f.Value)
	}
}

// All returns an iterator over the values from head to tail.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		l.check()
		for f := l.head; f != nil; f = f.next {
			if !yield(f.Value) {
				return
			}
		}
	}
}

// Slice copies the values into a new Go slice.
func (l *List[T]) Slice() []T {
	l.check()
	out := make([]T, 0, l.count)
	for f := l.head; f != nil; f = f.next {
		out = append(out, f.Value)
	}
	return out
}

// Destroy returns every frame to the pool. The list must not be used again.
func (l *List[T]) Destroy() {
	l.check()
	for f := l.head; f != nil; {
		next := f.next
		l.pool.Put(f)
		f = next
	}
	l.head, l.tail, l.count = nil, nil, 0
	l.bind.Release()
}

// Find returns the first frame holding v, or nil.
func Find[T comparable](l *List[T], v T) *Frame[T] {
	l.check()
	for f := l.head; f != nil; f = f.next {
		if f.Value == v {
			return f
		}
	}
	return nil
}

// Remove unlinks the first frame holding v and reports whether one was found.
func Remove[T comparable](l *List[T], v T) bool {
	f := Find(l, v)
	if f == nil {
		return false
	}
	l.RemoveFrame(f)
	return true
}
