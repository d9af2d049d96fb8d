package backend

import (
	"github.com/hupe1980/scopemem/internal/conv"
	"github.com/hupe1980/scopemem/internal/mmap"
	"github.com/hupe1980/scopemem/resource"
)

const (
	// DefaultBlockSize is the size of a block (256 KiB).
	DefaultBlockSize = 256 << 10
	// MinBlockSize is the smallest accepted block size.
	MinBlockSize = 4 << 10
	// alignment of every chunk handed out by the block strategies.
	alignment = 8
)

// BlockConfig configures the block strategies.
type BlockConfig struct {
	// BlockSize is rounded up to a power of two. Defaults to DefaultBlockSize.
	BlockSize int
	// OffHeap backs blocks with anonymous mappings instead of Go slices.
	OffHeap bool
	// Acquirer, if set, is charged for every block and jumbo chunk.
	Acquirer MemoryAcquirer
}

func (c BlockConfig) normalized() BlockConfig {
	if c.BlockSize <= 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.BlockSize < MinBlockSize {
		c.BlockSize = MinBlockSize
	}
	size := MinBlockSize
	for size < c.BlockSize {
		size <<= 1
	}
	c.BlockSize = size
	return c
}

type block struct {
	data    []byte
	mapping *mmap.Mapping
	advice  mmap.AccessPattern
	offset  int
	live    int
}

// newBlock reserves size bytes from the budget and the system. Budget and
// system failures are fatal, the same way a failing system allocator aborts.
// advice is passed to the kernel for off-heap blocks.
func newBlock(size int, offHeap bool, acq MemoryAcquirer, advice mmap.AccessPattern) *block {
	reserve(acq, size)

	if !offHeap {
		return &block{data: make([]byte, size)}
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		release(acq, size)
		panic(err)
	}
	_ = m.Advise(advice)
	return &block{data: m.Bytes(), mapping: m, advice: advice}
}

func (b *block) release(acq MemoryAcquirer) {
	size := len(b.data)
	if b.mapping != nil {
		_ = b.mapping.Close()
	}
	b.data = nil
	b.mapping = nil
	release(acq, size)
}

// reuse prefaults a rewound off-heap block that is about to be bumped again.
func (b *block) reuse() {
	if b.mapping != nil {
		_ = b.mapping.Advise(mmap.AccessWillNeed)
		b.advice = mmap.AccessWillNeed
	}
}

// reset rewinds the block. Off-heap pages are handed back to the kernel.
func (b *block) reset() {
	b.offset = 0
	b.live = 0
	if b.mapping != nil {
		_ = b.mapping.Advise(mmap.AccessDontNeed)
		b.advice = mmap.AccessDontNeed
	}
}

func reserve(acq MemoryAcquirer, size int) {
	if acq == nil {
		return
	}
	if !acq.TryAcquireMemory(int64(size)) {
		panic(resource.ErrMemoryLimitExceeded)
	}
}

func release(acq MemoryAcquirer, size int) {
	if acq == nil {
		return
	}
	acq.ReleaseMemory(int64(size))
}

func alignUp(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// blockID returns the id of the block at slice index i, as stored in chunk
// headers and the idle set.
func blockID(i int) uint32 {
	id, err := conv.IntToUint32(i)
	if err != nil {
		panic(ErrTooLarge)
	}
	return id
}

// blockIndex is the inverse of blockID.
func blockIndex(id uint32) int {
	i, err := conv.Uint32ToInt(id)
	if err != nil {
		panic(ErrTooLarge)
	}
	return i
}

// byteCount converts a length for Stats.
func toCount(n int) uint64 {
	v, err := conv.IntToUint64(n)
	if err != nil {
		panic(err)
	}
	return v
}
