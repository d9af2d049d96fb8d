package arena

import "unsafe"

const (
	poolMinChunk = 16
	poolMaxChunk = 4096
)

type resettable interface {
	rewind()
	drop()
	bytes() uint64
}

// poolKey identifies the pool of element type T on one allocator.
type poolKey[T any] struct{}

// Pool hands out *T values whose lifetime is bound to an allocator. Values
// are carved from chunks that are reused after FreeAll, so steady-state
// workloads stop allocating from the Go heap.
//
// A Pool on the system allocator is backed by new(T).
type Pool[T any] struct {
	a      *Allocator
	chunks [][]T
	ci     int // current chunk
	cur    int // next free index in chunks[ci]
	free   []*T
}

// NewPool returns the allocator's pool for T, creating it on first use.
func NewPool[T any](a *Allocator) *Pool[T] {
	if a == nil {
		return &Pool[T]{}
	}
	a.checkAlive()

	key := poolKey[T]{}
	if p, ok := a.pools[key]; ok {
		return p.(*Pool[T])
	}
	p := &Pool[T]{a: a}
	a.pools[key] = p
	return p
}

// Allocator returns the allocator the pool is bound to.
func (p *Pool[T]) Allocator() *Allocator {
	return p.a
}

// Get returns a zeroed *T.
func (p *Pool[T]) Get() *T {
	if p.a == nil {
		return new(T)
	}
	p.a.checkUsable()

	if n := len(p.free); n > 0 {
		x := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return x
	}
	if len(p.chunks) == 0 || p.cur == len(p.chunks[p.ci]) {
		p.nextChunk()
	}
	x := &p.chunks[p.ci][p.cur]
	p.cur++
	return x
}

// Put returns x to the pool early. x is zeroed and must not be used again.
func (p *Pool[T]) Put(x *T) {
	if p.a == nil || x == nil {
		return
	}
	p.a.checkUsable()

	var zero T
	*x = zero
	p.free = append(p.free, x)
}

func (p *Pool[T]) nextChunk() {
	switch {
	case len(p.chunks) == 0:
		p.chunks = append(p.chunks, make([]T, poolMinChunk))
		p.ci = 0
	case p.ci+1 < len(p.chunks):
		p.ci++
	default:
		size := min(len(p.chunks[p.ci])*2, poolMaxChunk)
		p.chunks = append(p.chunks, make([]T, size))
		p.ci = len(p.chunks) - 1
	}
	p.cur = 0
}

func (p *Pool[T]) rewind() {
	for i := 0; i <= p.ci && i < len(p.chunks); i++ {
		clear(p.chunks[i])
	}
	p.ci, p.cur = 0, 0
	clear(p.free)
	p.free = p.free[:0]
}

func (p *Pool[T]) drop() {
	p.chunks = nil
	p.free = nil
	p.ci, p.cur = 0, 0
}

func (p *Pool[T]) bytes() uint64 {
	var zero T
	n := 0
	for _, c := range p.chunks {
		n += len(c)
	}
	return uint64(n) * uint64(unsafe.Sizeof(zero))
}
