package list

import "github.com/hupe1980/scopemem/arena"

// Stack is a LIFO adapter over List.
type Stack[T any] struct {
	l *List[T]
}

// NewStack creates an empty stack on a.
func NewStack[T any](a *arena.Allocator) *Stack[T] {
	return &Stack[T]{l: New[T](a)}
}

// Push adds v on top.
func (s *Stack[T]) Push(v T) { s.l.Prepend(v) }

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	return peekHead(s.l)
}

// Pop removes and returns the top value.
func (s *Stack[T]) Pop() (T, bool) {
	return popHead(s.l)
}

// Count returns the number of values.
func (s *Stack[T]) Count() int { return s.l.Count() }

// Destroy releases the stack's frames.
func (s *Stack[T]) Destroy() { s.l.Destroy() }

// Queue is a FIFO adapter over List.
type Queue[T any] struct {
	l *List[T]
}

// NewQueue creates an empty queue on a.
func NewQueue[T any](a *arena.Allocator) *Queue[T] {
	return &Queue[T]{l: New[T](a)}
}

// Push adds v at the back.
func (q *Queue[T]) Push(v T) { q.l.Append(v) }

// Peek returns the front value without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	return peekHead(q.l)
}

// Pop removes and returns the front value.
func (q *Queue[T]) Pop() (T, bool) {
	return popHead(q.l)
}

// Count returns the number of values.
func (q *Queue[T]) Count() int { return q.l.Count() }

// Destroy releases the queue's frames.
func (q *Queue[T]) Destroy() { q.l.Destroy() }

func peekHead[T any](l *List[T]) (T, bool) {
	h := l.Head()
	if h == nil {
		var zero T
		return zero, false
	}
	return h.Value, true
}

func popHead[T any](l *List[T]) (T, bool) {
	h := l.Head()
	if h == nil {
		var zero T
		return zero, false
	}
	v := h.Value
	l.RemoveFrame(h)
	return v, true
}
