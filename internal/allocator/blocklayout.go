package allocator

import "encoding/binary"

// Block layout (C2, spec.md 4.2). Every block is addressed by its byte
// offset from the arena base rather than by a Go pointer: free-list links
// and boundary tags are offsets, not pointers, per the "Intrusive links
// vs. ownership" design note in spec.md 9. Offset 0 is always the
// prologue (permanently allocated, never a free-list member), so 0 also
// doubles as the null link sentinel without a separate "has value" flag.

const (
	wordSize  = 8  // header/footer tag width in bytes.
	headerLen = wordSize
	footerLen = wordSize

	alignSize  = 8  // ALIGN, spec.md 3.
	minBlock   = 32 // MIN_BLOCK, spec.md 3: header + footer + next + prev.
	overhead   = 2 * headerLen
	nullOffset = 0 // prologue's own address; never a valid free-block offset.
)

// alignUp rounds size up to the next multiple of alignSize.
func alignUp(size uintptr) uintptr {
	return (size + alignSize - 1) &^ (alignSize - 1)
}

// pack combines a 31-bit size and the allocated bit into one tag word, the
// Go-side analogue of the source's `allocated:1, block_size:31` bitfield
// (spec.md 3). The remaining 4 bytes of the 8-byte tag are left untouched
// by callers so unrelated bits, if any are ever stored there, survive a
// PACK the way spec.md 4.2 requires.
func pack(size uint32, allocated bool) uint32 {
	v := size << 1
	if allocated {
		v |= 1
	}

	return v
}

func unpack(tag uint32) (size uint32, allocated bool) {
	return tag >> 1, tag&1 != 0
}

func readTag(mem []byte, addr uintptr) (size uint32, allocated bool) {
	return unpack(binary.LittleEndian.Uint32(mem[addr:]))
}

// writeTag rewrites a header or footer word in one store so no reader can
// observe a size/alloc pair that was never true (spec.md 4.2).
func writeTag(mem []byte, addr uintptr, size uint32, allocated bool) {
	binary.LittleEndian.PutUint32(mem[addr:], pack(size, allocated))
}

func blockSizeAt(mem []byte, addr uintptr) uintptr {
	size, _ := readTag(mem, addr)

	return uintptr(size)
}

func isAllocated(mem []byte, addr uintptr) bool {
	_, allocated := readTag(mem, addr)

	return allocated
}

// footerAddr returns the address of bp's footer word.
func footerAddr(mem []byte, bp uintptr) uintptr {
	return bp + blockSizeAt(mem, bp) - footerLen
}

// setBlockTag writes matching header and footer words for bp, sized size.
func setBlockTag(mem []byte, bp uintptr, size uint32, allocated bool) {
	writeTag(mem, bp, size, allocated)
	writeTag(mem, bp+uintptr(size)-footerLen, size, allocated)
}

// nextBlock returns the address immediately after bp (spec.md 4.2).
func nextBlock(mem []byte, bp uintptr) uintptr {
	return bp + blockSizeAt(mem, bp)
}

// prevFooterAddr returns the address of the footer word belonging to the
// block physically preceding bp.
func prevFooterAddr(bp uintptr) uintptr {
	return bp - footerLen
}

// prevBlock returns the address of the block physically preceding bp,
// read via that neighbor's footer (spec.md 4.2).
func prevBlock(mem []byte, bp uintptr) uintptr {
	return bp - blockSizeAt(mem, prevFooterAddr(bp))
}

// Free blocks reuse their link area (the 16 bytes right after the header)
// to hold two offsets: next then prev. List-head sentinels reuse the same
// two slots to hold {head, tail} of their list (spec.md 3).

func linkNextAddr(bp uintptr) uintptr { return bp + headerLen }
func linkPrevAddr(bp uintptr) uintptr { return bp + headerLen + wordSize }

func getLinkNext(mem []byte, bp uintptr) uintptr {
	return uintptr(binary.LittleEndian.Uint64(mem[linkNextAddr(bp):]))
}

func setLinkNext(mem []byte, bp uintptr, v uintptr) {
	binary.LittleEndian.PutUint64(mem[linkNextAddr(bp):], uint64(v))
}

func getLinkPrev(mem []byte, bp uintptr) uintptr {
	return uintptr(binary.LittleEndian.Uint64(mem[linkPrevAddr(bp):]))
}

func setLinkPrev(mem []byte, bp uintptr, v uintptr) {
	binary.LittleEndian.PutUint64(mem[linkPrevAddr(bp):], uint64(v))
}

func clearLinks(mem []byte, bp uintptr) {
	setLinkNext(mem, bp, nullOffset)
	setLinkPrev(mem, bp, nullOffset)
}
