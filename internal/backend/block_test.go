package backend

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scopemem/internal/mmap"
	"github.com/hupe1980/scopemem/resource"
)

func TestBlock_FreeListReuse(t *testing.T) {
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize})
	defer b.Cleanup()

	first := b.Alloc(24)
	addr := unsafe.SliceData(first)
	b.Free(first)
	assert.Equal(t, uint64(1), b.Stats().FreeChunks)

	// Same size class: the freed chunk comes back.
	second := b.Alloc(30)
	assert.Same(t, addr, unsafe.SliceData(second))
	assert.Zero(t, b.Stats().FreeChunks)
}

func TestBlock_ReallocInPlace(t *testing.T) {
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize})
	defer b.Cleanup()

	buf := b.Alloc(20) // 32-byte class
	copy(buf, "packet-header")
	addr := unsafe.SliceData(buf)

	grown := b.Realloc(buf, 32)
	assert.Same(t, addr, unsafe.SliceData(grown))
	assert.Equal(t, "packet-header", string(grown[:13]))

	moved := b.Realloc(grown, 200)
	assert.NotSame(t, addr, unsafe.SliceData(moved))
	assert.Equal(t, "packet-header", string(moved[:13]))
}

func TestBlock_Jumbo(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize, Acquirer: rc})
	defer b.Cleanup()

	big := b.Alloc(MinBlockSize * 2)
	require.Len(t, big, MinBlockSize*2)
	assert.Equal(t, int64(MinBlockSize*2+headerSize), rc.MemoryUsage())

	b.Free(big)
	assert.Zero(t, rc.MemoryUsage())

	big = b.Alloc(MinBlockSize * 2)
	b.FreeAll()
	assert.Zero(t, rc.MemoryUsage(), "FreeAll drops jumbo chunks")
	_ = big
}

func TestBlock_GCReleasesIdleBlocks(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize, Acquirer: rc})
	defer b.Cleanup()

	// Fill several blocks with 1 KiB chunks (4 per 4 KiB block incl. headers → 3).
	var bufs [][]byte
	for i := 0; i < 12; i++ {
		bufs = append(bufs, b.Alloc(1000))
	}
	blocks := b.Stats().BlocksActive
	require.Greater(t, blocks, uint64(2))
	assert.Equal(t, int64(blocks)*MinBlockSize, rc.MemoryUsage())

	for _, buf := range bufs {
		b.Free(buf)
	}
	b.GC()

	st := b.Stats()
	assert.Equal(t, uint64(1), st.BlocksActive, "only the current block survives")
	assert.Equal(t, int64(MinBlockSize), rc.MemoryUsage())

	// Chunks that pointed into released blocks are gone from the free lists.
	for st.FreeChunks > 0 {
		buf := b.Alloc(1000)
		_, idx := readHeader(buf)
		assert.Equal(t, b.current, int(idx))
		st = b.Stats()
	}
}

func TestBlock_FreeAllRewinds(t *testing.T) {
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize})
	defer b.Cleanup()

	first := b.Alloc(100)
	addr := unsafe.SliceData(first)
	for i := 0; i < 20; i++ {
		b.Alloc(500)
	}
	blocks := b.Stats().BlocksActive

	b.FreeAll()
	assert.Equal(t, blocks, b.Stats().BlocksActive, "blocks are kept for reuse")
	assert.Zero(t, b.Stats().LiveAllocs)

	again := b.Alloc(100)
	assert.Same(t, addr, unsafe.SliceData(again))

	b.GC()
	assert.Equal(t, uint64(1), b.Stats().BlocksActive)
}

func TestBlock_BudgetExceeded(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: MinBlockSize})
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize, Acquirer: rc})
	defer b.Cleanup()

	b.Alloc(1000)
	b.Alloc(1000)
	b.Alloc(1000)

	assert.PanicsWithValue(t, resource.ErrMemoryLimitExceeded, func() {
		b.Alloc(1000)
	})
}

func TestBlock_CleanupReleasesBudget(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize, Acquirer: rc, OffHeap: true})

	for i := 0; i < 10; i++ {
		buf := b.Alloc(900)
		buf[0] = byte(i)
	}
	b.Alloc(MinBlockSize)
	require.Positive(t, rc.MemoryUsage())

	b.Cleanup()
	assert.Zero(t, rc.MemoryUsage())
}

func TestBlockFast_ReallocInPlace(t *testing.T) {
	f := NewBlockFast(BlockConfig{BlockSize: MinBlockSize})
	defer f.Cleanup()

	buf := f.Alloc(10)
	copy(buf, "0123456789")
	addr := unsafe.SliceData(buf)

	grown := f.Realloc(buf, 100)
	assert.Same(t, addr, unsafe.SliceData(grown), "latest allocation grows in place")
	assert.Equal(t, "0123456789", string(grown[:10]))

	other := f.Alloc(8)
	_ = other

	moved := f.Realloc(grown, 200)
	assert.NotSame(t, addr, unsafe.SliceData(moved))
	assert.Equal(t, "0123456789", string(moved[:10]))
}

func TestBlockFast_FreeAllReusesBlocks(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	f := NewBlockFast(BlockConfig{BlockSize: MinBlockSize, Acquirer: rc})
	defer f.Cleanup()

	first := f.Alloc(64)
	addr := unsafe.SliceData(first)
	for i := 0; i < 50; i++ {
		f.Alloc(512)
	}
	f.Alloc(MinBlockSize) // jumbo
	reserved := rc.MemoryUsage()

	f.FreeAll()
	assert.Less(t, rc.MemoryUsage(), reserved)

	again := f.Alloc(64)
	assert.Same(t, addr, unsafe.SliceData(again))

	for i := 0; i < 50; i++ {
		f.Alloc(512)
	}
	assert.Equal(t, reserved-int64(MinBlockSize), rc.MemoryUsage(), "no new blocks after rewind")
}

func TestOffHeapAdvice(t *testing.T) {
	b := NewBlock(BlockConfig{BlockSize: MinBlockSize, OffHeap: true})
	defer b.Cleanup()
	b.Alloc(64)
	require.Len(t, b.blocks, 1)
	assert.Equal(t, mmap.AccessRandom, b.blocks[0].advice)

	b.FreeAll()
	assert.Equal(t, mmap.AccessDontNeed, b.blocks[0].advice)
	b.Alloc(64)
	assert.Equal(t, mmap.AccessWillNeed, b.blocks[0].advice)

	f := NewBlockFast(BlockConfig{BlockSize: MinBlockSize, OffHeap: true})
	defer f.Cleanup()
	f.Alloc(64)
	require.Len(t, f.blocks, 1)
	assert.Equal(t, mmap.AccessSequential, f.blocks[0].advice)

	f.FreeAll()
	assert.Equal(t, mmap.AccessWillNeed, f.blocks[0].advice)

	heap := NewBlock(BlockConfig{BlockSize: MinBlockSize})
	defer heap.Cleanup()
	heap.Alloc(64)
	assert.Equal(t, mmap.AccessDefault, heap.blocks[0].advice)
}

func TestBlockIDs(t *testing.T) {
	assert.Equal(t, uint32(7), blockID(7))
	assert.Equal(t, 7, blockIndex(7))
	assert.Equal(t, uint64(4096), toCount(4096))

	assert.PanicsWithValue(t, ErrTooLarge, func() { blockID(-1) })
	assert.Panics(t, func() { toCount(-1) })
}

func TestStats_Reserved(t *testing.T) {
	s := NewSimple()
	s.Alloc(10)
	s.Alloc(30)
	assert.Equal(t, Stats{BytesReserved: 40, LiveAllocs: 2}, s.Stats())

	st := NewStrict()
	defer st.Cleanup()
	st.Alloc(16)
	got := st.Stats()
	assert.Equal(t, uint64(1), got.LiveAllocs)
	assert.Greater(t, got.BytesReserved, uint64(16), "canaries are counted")
}
