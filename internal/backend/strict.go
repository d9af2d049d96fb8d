package backend

import (
	"unsafe"
)

const (
	// CanarySize is the number of guard bytes on each side of an allocation.
	CanarySize = 8
	// CanaryValue fills the guard bytes.
	CanaryValue = 0x9E
	// Prefill is written into fresh user memory.
	Prefill = 0xA1
	// Postfill is written over released memory.
	Postfill = 0x1A
)

type strictBlock struct {
	raw  []byte
	size int
}

func (b *strictBlock) user() []byte {
	return b.raw[CanarySize : CanarySize+b.size : CanarySize+b.size]
}

func (b *strictBlock) check() {
	tail := CanarySize + b.size
	for i := 0; i < CanarySize; i++ {
		if b.raw[i] != CanaryValue || b.raw[tail+i] != CanaryValue {
			panic(ErrCanaryCorrupted)
		}
	}
}

// Strict is a debugging backend. Every allocation is surrounded by canaries,
// fresh memory is filled with Prefill and released memory with Postfill so
// use-after-free reads are recognizable.
type Strict struct {
	live map[*byte]*strictBlock
}

// NewStrict creates a Strict backend.
func NewStrict() *Strict {
	return &Strict{live: make(map[*byte]*strictBlock)}
}

// Alloc implements Backend.
func (s *Strict) Alloc(size int) []byte {
	b := &strictBlock{
		raw:  make([]byte, size+2*CanarySize),
		size: size,
	}
	fill(b.raw[:CanarySize], CanaryValue)
	fill(b.raw[CanarySize:CanarySize+size], Prefill)
	fill(b.raw[CanarySize+size:], CanaryValue)

	user := b.user()
	s.live[&user[0]] = b
	return user
}

// Free implements Backend.
func (s *Strict) Free(buf []byte) {
	p := unsafe.SliceData(buf)
	b, ok := s.live[p]
	if !ok {
		panic(ErrUnknownBuffer)
	}
	b.check()
	fill(b.raw, Postfill)
	delete(s.live, p)
}

// Realloc implements Backend.
func (s *Strict) Realloc(buf []byte, size int) []byte {
	p := unsafe.SliceData(buf)
	b, ok := s.live[p]
	if !ok {
		panic(ErrUnknownBuffer)
	}
	out := s.Alloc(size)
	copy(out, b.user())
	s.Free(buf)
	return out
}

// FreeAll implements Backend.
func (s *Strict) FreeAll() {
	for p, b := range s.live {
		b.check()
		fill(b.raw, Postfill)
		delete(s.live, p)
	}
}

// Cleanup implements Backend.
func (s *Strict) Cleanup() {
	s.FreeAll()
}

// CheckCanaries implements Checker.
func (s *Strict) CheckCanaries() {
	for _, b := range s.live {
		b.check()
	}
}

// Stats implements Reporter.
func (s *Strict) Stats() Stats {
	var reserved uint64
	for _, b := range s.live {
		reserved += toCount(len(b.raw))
	}
	return Stats{
		BytesReserved: reserved,
		LiveAllocs:    toCount(len(s.live)),
	}
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
