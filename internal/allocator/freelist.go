package allocator

// Segregated free list index (C3, spec.md 4.3 and 3). Immediately after
// the prologue the arena holds segListClasses list-head blocks, each a
// permanently allocated minBlock-sized block whose link area stores
// {head, tail} of that size class's doubly linked free list.

const (
	segListClasses  = 6    // K+1 with K=5, spec.md 3.
	sizeClassBase   = 4000 // MINSIZE, spec.md 3.
	findFitProbeCap = 12   // per-class first-fit probe limit, spec.md 4.5.
	segListDirSize  = segListClasses * minBlock
)

// classOf returns the size class a free block of this size belongs to:
// class i holds sizeClassBase*2^i < size <= sizeClassBase*2^(i+1) for
// i < segListClasses-1, and the last class holds everything larger.
// Sizes at or below sizeClassBase also fall in class 0.
func classOf(size uint32) int {
	bound := uint64(sizeClassBase) * 2
	for i := 0; i < segListClasses-1; i++ {
		if uint64(size) <= bound {
			return i
		}

		bound *= 2
	}

	return segListClasses - 1
}

// listHeadAddr returns the address of class c's list-head sentinel.
func (h *Heap) listHeadAddr(class int) uintptr {
	return h.segListBase + uintptr(class)*minBlock
}

// insert prepends bp to the front of its size class's list (LIFO), per
// spec.md 4.3. bp's tag must already reflect its final (post-split) size
// and free state.
func (h *Heap) insert(bp uintptr) {
	mem := h.mem()
	class := classOf(uint32(blockSizeAt(mem, bp)))
	head := h.listHeadAddr(class)

	oldRoot := getLinkNext(mem, head)

	setLinkPrev(mem, bp, nullOffset)
	setLinkNext(mem, bp, oldRoot)

	if oldRoot == nullOffset {
		setLinkPrev(mem, head, bp) // empty list: bp becomes tail too.
	} else {
		setLinkPrev(mem, oldRoot, bp)
	}

	setLinkNext(mem, head, bp)
}

// remove splices bp out of whichever size class list it currently sits
// in, per the five cases of spec.md 4.3. bp's link fields are cleared
// afterward.
func (h *Heap) remove(bp uintptr) {
	mem := h.mem()
	class := classOf(uint32(blockSizeAt(mem, bp)))
	head := h.listHeadAddr(class)

	root := getLinkNext(mem, head)
	tail := getLinkPrev(mem, head)

	switch {
	case root == nullOffset:
		panic(h.fail("remove: size class is empty"))
	case root == tail: // singleton
		setLinkNext(mem, head, nullOffset)
		setLinkPrev(mem, head, nullOffset)
	case bp == root: // head of a multi-element list
		succ := getLinkNext(mem, bp)
		setLinkNext(mem, head, succ)
		setLinkPrev(mem, succ, nullOffset)
	case bp == tail: // tail of a multi-element list
		pred := getLinkPrev(mem, bp)
		setLinkPrev(mem, head, pred)
		setLinkNext(mem, pred, nullOffset)
	default: // middle
		pred := getLinkPrev(mem, bp)
		succ := getLinkNext(mem, bp)
		setLinkNext(mem, pred, succ)
		setLinkPrev(mem, succ, pred)
	}

	clearLinks(mem, bp)
}
