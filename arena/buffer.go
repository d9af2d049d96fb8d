package arena

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrBufferFull is returned by Buffer writes that hit the length limit.
var ErrBufferFull = errors.New("arena: buffer length limit reached")

const defaultBufferCap = 24

// Buffer is a growable byte buffer whose storage comes from an allocator.
// It implements io.Writer, io.ByteWriter and io.StringWriter.
type Buffer struct {
	a      *Allocator
	buf    []byte
	n      int
	maxLen int
}

// NewBuffer returns an empty buffer with room for capacity bytes.
func NewBuffer(a *Allocator, capacity int) *Buffer {
	return NewBufferLimited(a, capacity, 0)
}

// NewBufferLimited is NewBuffer with an upper bound on the length. Writes
// beyond maxLen are truncated and report ErrBufferFull. A maxLen of zero
// means unlimited.
func NewBufferLimited(a *Allocator, capacity, maxLen int) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferCap
	}
	if maxLen > 0 && capacity > maxLen {
		capacity = maxLen
	}
	return &Buffer{
		a:      a,
		buf:    a.Alloc(capacity),
		maxLen: maxLen,
	}
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return b.n }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// Bytes returns the written bytes. The slice aliases allocator memory.
func (b *Buffer) Bytes() []byte { return b.buf[:b.n] }

// String returns a Go string copy of the contents.
func (b *Buffer) String() string { return string(b.buf[:b.n]) }

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() { b.n = 0 }

// Truncate keeps the first n bytes.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.n {
		panic("arena: Buffer.Truncate out of range")
	}
	b.n = n
}

// room grows the buffer so that need more bytes fit, honoring maxLen,
// and returns how many of them actually fit.
func (b *Buffer) room(need int) int {
	if b.maxLen > 0 && b.n+need > b.maxLen {
		need = b.maxLen - b.n
	}
	if b.n+need <= len(b.buf) {
		return need
	}
	newCap := max(len(b.buf)*2, b.n+need)
	if b.maxLen > 0 {
		newCap = min(newCap, b.maxLen)
	}
	b.buf = b.a.Realloc(b.buf, newCap)
	return need
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) {
	n := b.room(len(p))
	copy(b.buf[b.n:], p[:n])
	b.n += n
	if n < len(p) {
		return n, ErrBufferFull
	}
	return n, nil
}

// WriteString appends s.
func (b *Buffer) WriteString(s string) (int, error) {
	n := b.room(len(s))
	copy(b.buf[b.n:], s[:n])
	b.n += n
	if n < len(s) {
		return n, ErrBufferFull
	}
	return n, nil
}

// WriteByte appends c.
func (b *Buffer) WriteByte(c byte) error {
	if b.room(1) == 0 {
		return ErrBufferFull
	}
	b.buf[b.n] = c
	b.n++
	return nil
}

// WriteRune appends the UTF-8 encoding of r. A rune that does not fit
// entirely is not written.
func (b *Buffer) WriteRune(r rune) (int, error) {
	var tmp [utf8.UTFMax]byte
	size := utf8.EncodeRune(tmp[:], r)
	if b.maxLen > 0 && b.n+size > b.maxLen {
		return 0, ErrBufferFull
	}
	return b.Write(tmp[:size])
}

// Printf appends formatted text.
func (b *Buffer) Printf(format string, args ...any) (int, error) {
	return fmt.Fprintf(b, format, args...)
}

// Destroy frees the storage. The buffer must not be used afterwards.
func (b *Buffer) Destroy() {
	b.a.Free(b.buf)
	b.buf, b.n = nil, 0
}
