package allocator

// coalesce absorbs bp's free physical neighbors into it, the four-case
// merge of spec.md 4.4. bp must already carry header/footer marking it
// free, at its pre-merge size, and must not yet be a member of any free
// list. It returns the address of the surviving (possibly larger) block,
// already inserted into its size class.
func (h *Heap) coalesce(bp uintptr) uintptr {
	mem := h.mem()

	prevAlloc := isAllocated(mem, prevFooterAddr(bp))
	nextAlloc := isAllocated(mem, nextBlock(mem, bp))
	size := blockSizeAt(mem, bp)

	switch {
	case prevAlloc && nextAlloc: // case I: A | bp | A
		h.insert(bp)

		return bp

	case prevAlloc && !nextAlloc: // case II: A | bp | F
		next := nextBlock(mem, bp)
		h.remove(next)

		size += blockSizeAt(mem, next)
		setBlockTag(mem, bp, uint32(size), false)
		h.insert(bp)

		return bp

	case !prevAlloc && nextAlloc: // case III: F | bp | A
		prev := prevBlock(mem, bp)
		h.remove(prev)

		size += blockSizeAt(mem, prev)
		setBlockTag(mem, prev, uint32(size), false)
		h.insert(prev)

		return prev

	default: // case IV: F | bp | F
		prev := prevBlock(mem, bp)
		next := nextBlock(mem, bp)
		// Remove both neighbors before rewriting any size: rewriting
		// first would change prev's class out from under the list it
		// still sits in (spec.md 4.4 and 9 flag this ordering hazard
		// in the source this is adapted from).
		h.remove(next)
		h.remove(prev)

		size += blockSizeAt(mem, prev) + blockSizeAt(mem, next)
		setBlockTag(mem, prev, uint32(size), false)
		h.insert(prev)

		return prev
	}
}
