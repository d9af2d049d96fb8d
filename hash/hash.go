package hash

import (
	"crypto/rand"
	"encoding/binary"
)

type seedState struct {
	x        uint32 // odd multiplier for Slot
	preseed  uint32
	postseed uint32
}

var seeds seedState

func init() {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	SetSeeds(
		binary.LittleEndian.Uint32(buf[0:4]),
		binary.LittleEndian.Uint32(buf[4:8]),
		binary.LittleEndian.Uint32(buf[8:12]),
	)
}

// SetSeeds replaces the process-wide seeds. x is forced odd.
//
// It exists for tests that need deterministic hashes; production code
// should rely on the random seeds chosen at startup.
func SetSeeds(x, preseed, postseed uint32) {
	seeds = seedState{
		x:        x | 1,
		preseed:  preseed,
		postseed: postseed,
	}
}

// Seeds returns the current seeds.
func Seeds() (x, preseed, postseed uint32) {
	return seeds.x, seeds.preseed, seeds.postseed
}

// Slot maps h onto a table of 1<<capacityLog2 buckets.
// capacityLog2 must be in [1, 32].
func Slot(h uint32, capacityLog2 uint) uint32 {
	return (h * seeds.x) >> (32 - capacityLog2)
}

// StrongHash hashes buf with the process seeds.
func StrongHash(buf []byte) uint32 {
	h := seeds.preseed + uint32(len(buf)) //nolint:gosec // length is folded in modulo 2^32

	for _, b := range buf {
		h = mix(h, b)
	}

	post := seeds.postseed
	h = mix(h, byte(post))
	h = mix(h, byte(post>>8))
	h = mix(h, byte(post>>16))
	h = mix(h, byte(post>>24))

	h += h << 10
	h ^= h >> 6
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}

func mix(h uint32, b byte) uint32 {
	h += h << 10
	h ^= h >> 6
	h += uint32(b)
	return h
}
