package backend

import (
	"encoding/binary"
	"math"
	"math/bits"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/scopemem/internal/conv"
	"github.com/hupe1980/scopemem/internal/mmap"
)

const (
	// headerSize precedes every chunk: capacity (uint32) + block index (uint32).
	headerSize = 8
	// minClassShift is the smallest size class (16 bytes).
	minClassShift = 4
	// jumboIndex marks a chunk that owns its own backing slice.
	jumboIndex = math.MaxUint32
)

// Block carves fixed-size blocks into power-of-two size classes. Freed chunks
// go onto per-class free lists and are reused before fresh space is bumped.
// Requests larger than a quarter block become jumbo chunks with their own
// backing slice. Blocks whose chunks are all free are tracked in an idle set
// and released by GC.
type Block struct {
	cfg      BlockConfig
	maxSmall int // largest chunk capacity served from blocks

	blocks  []*block // nil once released by GC
	current int      // bump block, -1 if none
	fresh   []int    // rewound blocks ready to become current
	free    [][][]byte
	idle    *roaring.Bitmap
	jumbo   map[*byte][]byte
	live    uint64
	nfree   uint64
}

// NewBlock creates a Block backend.
func NewBlock(cfg BlockConfig) *Block {
	cfg = cfg.normalized()
	maxSmall := cfg.BlockSize / 4
	classes := bits.Len(uint(maxSmall)) - minClassShift //nolint:gosec // maxSmall > 0

	return &Block{
		cfg:      cfg,
		maxSmall: maxSmall,
		current:  -1,
		free:     make([][][]byte, classes),
		idle:     roaring.New(),
		jumbo:    make(map[*byte][]byte),
	}
}

// sizeClass returns the class index and chunk capacity for size.
func sizeClass(size int) (int, int) {
	if size <= 1<<minClassShift {
		return 0, 1 << minClassShift
	}
	shift := bits.Len(uint(size - 1)) //nolint:gosec // size > 0
	return shift - minClassShift, 1 << shift
}

func putHeader(hdr []byte, capacity int, index uint32) {
	c, err := conv.IntToUint32(capacity)
	if err != nil {
		panic(ErrTooLarge)
	}
	binary.LittleEndian.PutUint32(hdr[0:4], c)
	binary.LittleEndian.PutUint32(hdr[4:8], index)
}

// chunkHeader returns the header bytes that precede buf.
func chunkHeader(buf []byte) []byte {
	p := unsafe.Pointer(unsafe.SliceData(buf))                           //nolint:gosec // unsafe is required to reach the chunk header
	return unsafe.Slice((*byte)(unsafe.Add(p, -headerSize)), headerSize) //nolint:gosec // header precedes every chunk
}

func readHeader(buf []byte) (capacity int, index uint32) {
	hdr := chunkHeader(buf)
	c, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(hdr[0:4]))
	if err != nil {
		panic(ErrTooLarge)
	}
	return c, binary.LittleEndian.Uint32(hdr[4:8])
}

// Alloc implements Backend.
func (b *Block) Alloc(size int) []byte {
	if size > b.maxSmall {
		return b.allocJumbo(size)
	}

	class, capacity := sizeClass(size)
	if n := len(b.free[class]); n > 0 {
		chunk := b.free[class][n-1]
		b.free[class][n-1] = nil
		b.free[class] = b.free[class][:n-1]
		b.nfree--

		_, idx := readHeader(chunk)
		b.blocks[idx].live++
		b.idle.Remove(idx)
		b.live++
		return chunk[:size:size]
	}

	need := headerSize + capacity
	idx := b.bumpBlock(need)
	blk := b.blocks[idx]

	off := blk.offset
	putHeader(blk.data[off:off+headerSize], capacity, blockID(idx))
	blk.offset += need
	blk.live++
	b.live++

	start := off + headerSize
	return blk.data[start : start+size : start+size]
}

// bumpBlock returns the index of a block with at least need free bytes.
func (b *Block) bumpBlock(need int) int {
	if b.current >= 0 {
		cur := b.blocks[b.current]
		if cur.offset+need <= len(cur.data) {
			return b.current
		}
		if cur.live == 0 {
			b.idle.Add(blockID(b.current))
		}
	}

	for len(b.fresh) > 0 {
		idx := b.fresh[len(b.fresh)-1]
		b.fresh = b.fresh[:len(b.fresh)-1]
		if idx >= len(b.blocks) || b.blocks[idx] == nil || b.blocks[idx].offset != 0 {
			continue
		}
		b.idle.Remove(blockID(idx))
		b.blocks[idx].reuse()
		b.current = idx
		return idx
	}

	b.blocks = append(b.blocks, newBlock(b.cfg.BlockSize, b.cfg.OffHeap, b.cfg.Acquirer, mmap.AccessRandom))
	b.current = len(b.blocks) - 1
	return b.current
}

func (b *Block) allocJumbo(size int) []byte {
	reserve(b.cfg.Acquirer, headerSize+size)
	raw := make([]byte, headerSize+size)
	putHeader(raw[:headerSize], size, jumboIndex)

	user := raw[headerSize : headerSize+size : headerSize+size]
	b.jumbo[&user[0]] = raw
	b.live++
	return user
}

// Free implements Backend.
func (b *Block) Free(buf []byte) {
	capacity, idx := readHeader(buf)
	p := unsafe.SliceData(buf)

	if idx == jumboIndex {
		raw, ok := b.jumbo[p]
		if !ok {
			panic(ErrUnknownBuffer)
		}
		delete(b.jumbo, p)
		release(b.cfg.Acquirer, len(raw))
		b.live--
		return
	}

	class, _ := sizeClass(capacity)
	b.free[class] = append(b.free[class], unsafe.Slice(p, capacity))
	b.nfree++
	b.live--

	blk := b.blocks[idx]
	blk.live--
	if blk.live == 0 && blockIndex(idx) != b.current {
		b.idle.Add(idx)
	}
}

// Realloc implements Backend. A chunk is resized in place while the new size
// fits its capacity.
func (b *Block) Realloc(buf []byte, size int) []byte {
	capacity, _ := readHeader(buf)
	if size <= capacity {
		return unsafe.Slice(unsafe.SliceData(buf), capacity)[:size:size]
	}

	out := b.Alloc(size)
	copy(out, buf)
	b.Free(buf)
	return out
}

// FreeAll implements Backend. Blocks are kept and rewound; jumbo chunks are
// dropped.
func (b *Block) FreeAll() {
	for p, raw := range b.jumbo {
		release(b.cfg.Acquirer, len(raw))
		delete(b.jumbo, p)
	}
	for i := range b.free {
		clear(b.free[i])
		b.free[i] = b.free[i][:0]
	}
	b.nfree = 0
	b.live = 0

	b.idle.Clear()
	b.fresh = b.fresh[:0]
	b.current = -1
	for i := len(b.blocks) - 1; i >= 0; i-- {
		blk := b.blocks[i]
		if blk == nil {
			continue
		}
		blk.reset()
		b.idle.Add(blockID(i))
		b.fresh = append(b.fresh, i)
	}
}

// GC implements Collector. It releases every idle block except the current
// one and purges free-list entries that pointed into them.
func (b *Block) GC() {
	if b.current >= 0 {
		b.idle.Remove(blockID(b.current))
	}
	if b.idle.IsEmpty() {
		return
	}

	for i, list := range b.free {
		kept := list[:0]
		for _, chunk := range list {
			_, idx := readHeader(chunk)
			if b.idle.Contains(idx) {
				b.nfree--
				continue
			}
			kept = append(kept, chunk)
		}
		clear(list[len(kept):])
		b.free[i] = kept
	}

	it := b.idle.Iterator()
	for it.HasNext() {
		idx := it.Next()
		if blk := b.blocks[idx]; blk != nil {
			blk.release(b.cfg.Acquirer)
			b.blocks[idx] = nil
		}
	}
	b.idle.Clear()

	// Trailing released slots can be dropped entirely.
	n := len(b.blocks)
	for n > 0 && b.blocks[n-1] == nil && n-1 != b.current {
		n--
	}
	b.blocks = b.blocks[:n]
}

// Cleanup implements Backend.
func (b *Block) Cleanup() {
	b.FreeAll()
	for i, blk := range b.blocks {
		if blk != nil {
			blk.release(b.cfg.Acquirer)
			b.blocks[i] = nil
		}
	}
	b.blocks = nil
	b.fresh = nil
	b.current = -1
	b.idle.Clear()
}

// Stats implements Reporter.
func (b *Block) Stats() Stats {
	var st Stats
	for _, blk := range b.blocks {
		if blk != nil {
			st.BlocksActive++
			st.BytesReserved += toCount(len(blk.data))
		}
	}
	for _, raw := range b.jumbo {
		st.BytesReserved += toCount(len(raw))
	}
	st.LiveAllocs = b.live
	st.FreeChunks = b.nfree
	return st
}
