package hash

import (
	"bytes"
	"encoding/binary"
	"math"
	"unsafe"
)

// Func hashes a key to 32 bits.
type Func[K any] func(K) uint32

// EqualFunc reports whether two keys are equal.
type EqualFunc[K any] func(a, b K) bool

// Bytes is the strong hash of b.
func Bytes(b []byte) uint32 {
	return StrongHash(b)
}

// String is the strong hash of the bytes of s.
func String(s string) uint32 {
	return StrongHash(unsafe.Slice(unsafe.StringData(s), len(s))) //nolint:gosec // read-only view of s
}

// Int64 is the strong hash of the little-endian encoding of v.
func Int64(v int64) uint32 {
	return Uint64(uint64(v)) //nolint:gosec // bit pattern is hashed
}

// Uint64 is the strong hash of the little-endian encoding of v.
func Uint64(v uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return StrongHash(buf[:])
}

// Float64 is the strong hash of the IEEE-754 bits of v.
// -0 and +0 hash differently, like their bit patterns.
func Float64(v float64) uint32 {
	return Uint64(math.Float64bits(v))
}

// Uint32 is the identity hash. Use it only for trusted keys.
func Uint32(v uint32) uint32 {
	return v
}

// Equal compares comparable keys with ==.
func Equal[K comparable](a, b K) bool {
	return a == b
}

// EqualBytes compares byte slices by content.
func EqualBytes(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// Direct is the identity hash for small integer keys such as ids or
// counters. Like Uint32 it must only be used for trusted keys.
func Direct[K ~int | ~int32 | ~uint | ~uint32 | ~uint16 | ~uint8](v K) uint32 {
	return uint32(v) //nolint:gosec // truncation is the hash
}
