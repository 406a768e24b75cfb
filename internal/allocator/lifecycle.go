package allocator

import "github.com/orizon-lang/segheap/internal/errors"

// Heap bring-up and growth (C6, spec.md 4.6). initHeap lays out the
// prologue, the seg list directory and one free block spanning the rest
// of the initial chunk; growHeap extends the arena on demand when
// findFit comes up empty.

// initHeap commits the configured initial chunk and writes the
// prologue, the segListClasses list-head blocks, one free block
// covering the remainder, and the epilogue.
func (h *Heap) initHeap() error {
	base, ok := h.ar.grow(h.cfg.InitialChunkSize)
	if !ok || base != 0 {
		return h.fail("initHeap: failed to commit initial chunk")
	}

	mem := h.mem()

	setBlockTag(mem, 0, headerLen, true) // prologue: header doubles as its own footer.

	h.segListBase = nextBlock(mem, 0)
	for class := 0; class < segListClasses; class++ {
		addr := h.segListBase + uintptr(class)*minBlock
		setBlockTag(mem, addr, minBlock, true)
		clearLinks(mem, addr)
	}

	initBlock := h.segListBase + segListDirSize
	initSize := h.cfg.InitialChunkSize - overhead - segListDirSize

	setBlockTag(mem, initBlock, uint32(initSize), false)
	h.insert(initBlock)

	h.epilogue = initBlock + initSize
	writeTag(mem, h.epilogue, 0, true)

	return nil
}

// growHeap extends the arena by enough to satisfy an asize-byte request
// and returns the resulting free block, or noFit if the arena could not
// be grown (spec.md 4.5 step 4, 4.6). When the block immediately before
// the old epilogue is free and smaller than asize, the requested growth
// is reduced by that block's size: the new free block is built to reuse
// the old epilogue's slot as its header and coalesce immediately
// reabsorbs the existing tail, so the caller ends up with a block of
// exactly asize bytes. A free tail of asize bytes or more is not
// subtracted; the grow is then a full asize and the coalesced block is
// larger than asize.
func (h *Heap) growHeap(asize uint32) uintptr {
	mem := h.mem()

	last := prevBlock(mem, h.epilogue)

	tailFree := uintptr(0)
	if !isAllocated(mem, last) {
		tailFree = blockSizeAt(mem, last)
	}

	extendAmt := uintptr(asize)
	if tailFree > 0 && tailFree < uintptr(asize) {
		extendAmt = uintptr(asize) - tailFree
	}

	if _, ok := h.ar.grow(extendAmt); !ok {
		h.lastErr = errors.ArenaExhausted(extendAmt, h.ar.high())

		return noFit
	}

	mem = h.mem()

	newFree := h.epilogue
	setBlockTag(mem, newFree, uint32(extendAmt), false)

	h.epilogue = newFree + extendAmt
	writeTag(mem, h.epilogue, 0, true)

	return h.coalesce(newFree)
}
