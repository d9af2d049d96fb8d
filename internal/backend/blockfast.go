package backend

import (
	"unsafe"

	"github.com/hupe1980/scopemem/internal/mmap"
)

// BlockFast is a pure bump allocator. Free is a no-op and memory only comes
// back through FreeAll, which makes it the cheapest choice for short scopes
// such as a single packet.
type BlockFast struct {
	cfg      BlockConfig
	maxSmall int

	blocks  []*block
	current int
	jumbo   [][]byte

	// most recent allocation, eligible for in-place Realloc
	lastPtr   *byte
	lastStart int
}

// NewBlockFast creates a BlockFast backend.
func NewBlockFast(cfg BlockConfig) *BlockFast {
	cfg = cfg.normalized()
	return &BlockFast{
		cfg:      cfg,
		maxSmall: cfg.BlockSize / 4,
		current:  -1,
	}
}

// Alloc implements Backend.
func (f *BlockFast) Alloc(size int) []byte {
	if size > f.maxSmall {
		reserve(f.cfg.Acquirer, size)
		buf := make([]byte, size)
		f.jumbo = append(f.jumbo, buf)
		f.lastPtr = nil
		return buf[:size:size]
	}

	need := alignUp(size)
	blk := f.blockFor(need)
	start := blk.offset
	blk.offset += need
	blk.live++

	buf := blk.data[start : start+size : start+size]
	f.lastPtr = &buf[0]
	f.lastStart = start
	return buf
}

func (f *BlockFast) blockFor(need int) *block {
	if f.current >= 0 {
		cur := f.blocks[f.current]
		if cur.offset+need <= len(cur.data) {
			return cur
		}
	}
	// Blocks after current were rewound by FreeAll and can be reused.
	if f.current+1 < len(f.blocks) {
		f.current++
		f.blocks[f.current].reuse()
		return f.blocks[f.current]
	}
	f.blocks = append(f.blocks, newBlock(f.cfg.BlockSize, f.cfg.OffHeap, f.cfg.Acquirer, mmap.AccessSequential))
	f.current = len(f.blocks) - 1
	return f.blocks[f.current]
}

// Free implements Backend. Memory is reclaimed by FreeAll only.
func (f *BlockFast) Free([]byte) {}

// Realloc implements Backend. The most recent allocation grows in place when
// its block has room.
func (f *BlockFast) Realloc(buf []byte, size int) []byte {
	if size <= len(buf) {
		return buf[:size:size]
	}

	p := unsafe.SliceData(buf)
	if p == f.lastPtr && size <= f.maxSmall {
		blk := f.blocks[f.current]
		end := f.lastStart + alignUp(size)
		if end <= len(blk.data) {
			blk.offset = end
			return blk.data[f.lastStart : f.lastStart+size : f.lastStart+size]
		}
	}

	out := f.Alloc(size)
	copy(out, buf)
	return out
}

// FreeAll implements Backend.
func (f *BlockFast) FreeAll() {
	for _, buf := range f.jumbo {
		release(f.cfg.Acquirer, len(buf))
	}
	clear(f.jumbo)
	f.jumbo = f.jumbo[:0]

	for _, blk := range f.blocks {
		blk.reset()
	}
	if len(f.blocks) > 0 {
		f.current = 0
		f.blocks[0].reuse()
	}
	f.lastPtr = nil
}

// Cleanup implements Backend.
func (f *BlockFast) Cleanup() {
	f.FreeAll()
	for _, blk := range f.blocks {
		blk.release(f.cfg.Acquirer)
	}
	f.blocks = nil
	f.current = -1
}

// Stats implements Reporter.
func (f *BlockFast) Stats() Stats {
	var st Stats
	for _, blk := range f.blocks {
		st.BlocksActive++
		st.BytesReserved += toCount(len(blk.data))
	}
	for _, buf := range f.jumbo {
		st.BytesReserved += toCount(len(buf))
	}
	return st
}
