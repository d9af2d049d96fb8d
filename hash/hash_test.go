package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSeeds(t *testing.T, x, pre, post uint32) {
	t.Helper()
	ox, opre, opost := Seeds()
	SetSeeds(x, pre, post)
	t.Cleanup(func() { SetSeeds(ox, opre, opost) })
}

// reference is a straightforward transcription of the one-at-a-time mix.
func reference(buf []byte, pre, post uint32) uint32 {
	h := pre + uint32(len(buf))
	step := func(b byte) {
		h += h << 10
		h ^= h >> 6
		h += uint32(b)
	}
	for _, b := range buf {
		step(b)
	}
	step(byte(post))
	step(byte(post >> 8))
	step(byte(post >> 16))
	step(byte(post >> 24))
	h += h << 10
	h ^= h >> 6
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

func TestStrongHash_Deterministic(t *testing.T) {
	withSeeds(t, 0x9E3779B1, 0x1234, 0xCAFEBABE)

	inputs := [][]byte{nil, {}, []byte("a"), []byte("conversation"), make([]byte, 1024)}
	for _, in := range inputs {
		assert.Equal(t, StrongHash(in), StrongHash(append([]byte(nil), in...)))
		assert.Equal(t, reference(in, 0x1234, 0xCAFEBABE), StrongHash(in))
	}
}

func TestStrongHash_SeedsChangeOutput(t *testing.T) {
	in := []byte("GET /index.html HTTP/1.1")

	withSeeds(t, 1, 0x11111111, 0x22222222)
	h1 := StrongHash(in)

	SetSeeds(1, 0x33333333, 0x44444444)
	h2 := StrongHash(in)
	assert.NotEqual(t, h1, h2, "different seeds should give different hashes")

	SetSeeds(1, 0x11111111, 0x99999999)
	h3 := StrongHash(in)
	assert.NotEqual(t, h1, h3, "postseed alone changes the hash")
}

func TestStrongHash_LengthFolded(t *testing.T) {
	withSeeds(t, 1, 0, 0)
	// Trailing zero bytes must not collide with the shorter input.
	assert.NotEqual(t, StrongHash([]byte{1}), StrongHash([]byte{1, 0}))
}

func TestSetSeeds_ForcesOddMultiplier(t *testing.T) {
	withSeeds(t, 4, 0, 0)
	x, _, _ := Seeds()
	assert.Equal(t, uint32(5), x)
}

func TestSlot(t *testing.T) {
	withSeeds(t, 0x9E3779B1, 0, 0)

	for log2 := uint(1); log2 <= 16; log2++ {
		for _, h := range []uint32{0, 1, 2, 0xFFFFFFFF, 0xDEADBEEF} {
			s := Slot(h, log2)
			require.Less(t, s, uint32(1)<<log2)
		}
	}

	// Sequential keys with the identity hash spread over many buckets.
	const log2 = 5
	used := make(map[uint32]struct{})
	for i := uint32(0); i < 64; i++ {
		used[Slot(Uint32(i), log2)] = struct{}{}
	}
	assert.Greater(t, len(used), 16)
}

func TestKeyHashes(t *testing.T) {
	withSeeds(t, 1, 7, 9)

	assert.Equal(t, StrongHash([]byte("abc")), String("abc"))
	assert.Equal(t, Bytes([]byte("abc")), String("abc"))
	assert.Equal(t, Uint64(42), Int64(42))
	assert.NotEqual(t, Float64(0.0), Float64(1.0))
	assert.Equal(t, Float64(2.5), Float64(2.5))
	assert.Equal(t, uint32(77), Uint32(77))
	assert.Equal(t, uint32(77), Direct(77))
	assert.Equal(t, uint32(0xFF), Direct(uint8(0xFF)))
	assert.Equal(t, String(""), Bytes(nil))

	assert.True(t, Equal("a", "a"))
	assert.False(t, Equal(1, 2))
	assert.True(t, EqualBytes([]byte("x"), []byte("x")))
}
