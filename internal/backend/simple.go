package backend

import "unsafe"

// Simple hands out one Go slice per allocation and tracks the live set so
// FreeAll can drop every reference at once.
type Simple struct {
	live map[*byte]int
}

// NewSimple creates a Simple backend.
func NewSimple() *Simple {
	return &Simple{live: make(map[*byte]int)}
}

// Alloc implements Backend.
func (s *Simple) Alloc(size int) []byte {
	buf := make([]byte, size)
	s.live[&buf[0]] = size
	return buf[:size:size]
}

// Free implements Backend.
func (s *Simple) Free(buf []byte) {
	delete(s.live, unsafe.SliceData(buf))
}

// Realloc implements Backend.
func (s *Simple) Realloc(buf []byte, size int) []byte {
	out := s.Alloc(size)
	copy(out, buf)
	delete(s.live, unsafe.SliceData(buf))
	return out
}

// FreeAll implements Backend.
func (s *Simple) FreeAll() {
	clear(s.live)
}

// Cleanup implements Backend.
func (s *Simple) Cleanup() {
	s.live = nil
}

// Stats implements Reporter.
func (s *Simple) Stats() Stats {
	var reserved uint64
	for _, n := range s.live {
		reserved += toCount(n)
	}
	return Stats{
		BytesReserved: reserved,
		LiveAllocs:    toCount(len(s.live)),
	}
}
