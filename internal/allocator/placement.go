package allocator

// noFit is returned by findFit and growHeap when no block could be
// produced. It is distinct from nullOffset (0), which is a legitimate
// address (the prologue) that must never be confused with "not found".
const noFit = ^uintptr(0)

// findFit searches the segregated lists for the first block able to hold
// asize bytes, per the placement engine (C5, spec.md 4.5). It starts at
// the minimum size class that could contain asize and scans upward,
// first-fit within each class, bounded to Config.FindFitProbeLimit probes
// per class (findFitProbeCap by default) so one pathological class can't
// make every allocation linear.
func (h *Heap) findFit(asize uint32) uintptr {
	mem := h.mem()

	for class := classOf(asize); class < segListClasses; class++ {
		head := h.listHeadAddr(class)

		bp := getLinkNext(mem, head)
		for probes := 0; bp != nullOffset && probes < h.cfg.FindFitProbeLimit; probes++ {
			if blockSizeAt(mem, bp) >= uintptr(asize) {
				return bp
			}

			bp = getLinkNext(mem, bp)
		}
	}

	return noFit
}

// place commits asize bytes of bp to an allocation, splitting off the
// remainder as a new free block when it would still be usable (C5,
// spec.md 4.5). bp must already be known free and of size >= asize and
// is removed from its list either way.
func (h *Heap) place(bp uintptr, asize uint32) {
	mem := h.mem()

	total := blockSizeAt(mem, bp)
	remainder := total - uintptr(asize)

	h.remove(bp)

	if remainder < minBlock {
		setBlockTag(mem, bp, uint32(total), true)

		return
	}

	setBlockTag(mem, bp, asize, true)

	split := bp + uintptr(asize)
	setBlockTag(mem, split, uint32(remainder), false)
	h.insert(split)
}
