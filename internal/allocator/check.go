package allocator

import (
	"fmt"

	"github.com/orizon-lang/segheap/internal/errors"
)

// Check walks the heap and every size class list, verifying the
// invariants of spec.md 3, and returns one error per violation found.
// A nil/empty return means the heap is internally consistent. Check
// reports violations and repairs nothing. It does not bounds-check the
// sizes and links it follows, so a tag or link that points outside the
// committed arena makes it panic. When verbose is true, each violation (or an
// all-clear message) is also printed, matching the diagnostic
// check(verbose) contract of spec.md 6.
func (h *Heap) Check(verbose bool) []*errors.StandardError {
	mem := h.mem()

	var violations []*errors.StandardError

	violations = append(violations, h.checkHeapWalk(mem)...)
	violations = append(violations, h.checkFreeLists(mem)...)

	if verbose {
		if len(violations) == 0 {
			fmt.Println("heap check: ok")
		}

		for _, v := range violations {
			fmt.Println("heap check:", v)
		}
	}

	return violations
}

// checkHeapWalk walks every physical block from just after the prologue
// to the epilogue, checking header/footer agreement (invariant: every
// block's boundary tags match), alignment and minimum size, and that no
// two physically adjacent blocks are both free (invariant: coalescing
// is never left pending).
func (h *Heap) checkHeapWalk(mem []byte) []*errors.StandardError {
	var violations []*errors.StandardError

	if size, allocated := readTag(mem, 0); size != headerLen || !allocated {
		violations = append(violations, errors.HeapInconsistent("prologue header corrupted"))
	}

	prevWasFree := false
	bp := nextBlock(mem, 0)

	for bp < h.epilogue {
		size, allocated := readTag(mem, bp)
		if size == 0 {
			violations = append(violations, errors.HeapInconsistent("zero-size block before epilogue"))

			break
		}

		if size%alignSize != 0 {
			violations = append(violations, errors.InvalidSize(uintptr(size), "block size not 8-byte aligned"))
		}

		if uintptr(size) < minBlock {
			violations = append(violations, errors.InvalidSize(uintptr(size), "block smaller than minimum block size"))
		}

		footerSize, footerAlloc := readTag(mem, footerAddr(mem, bp))
		if footerSize != size || footerAlloc != allocated {
			violations = append(violations, errors.HeapInconsistent("header and footer disagree"))
		}

		if !allocated && prevWasFree {
			violations = append(violations, errors.HeapInconsistent("two physically adjacent free blocks were not coalesced"))
		}

		prevWasFree = !allocated
		bp = nextBlock(mem, bp)
	}

	if bp != h.epilogue {
		violations = append(violations, errors.HeapInconsistent("heap walk did not land exactly on the epilogue"))
	}

	if size, allocated := readTag(mem, h.epilogue); size != 0 || !allocated {
		violations = append(violations, errors.HeapInconsistent("epilogue header corrupted"))
	}

	return violations
}

// checkFreeLists walks every size class's doubly linked list, checking
// that membership agrees with each block's own size class (invariant:
// every free block lives in the list its size maps to), that the link
// structure is consistent in both directions, and that every free block
// found by the heap walk is accounted for by exactly one list (and vice
// versa).
func (h *Heap) checkFreeLists(mem []byte) []*errors.StandardError {
	var violations []*errors.StandardError

	seen := make(map[uintptr]bool)

	for class := 0; class < segListClasses; class++ {
		head := h.listHeadAddr(class)

		var prev uintptr = nullOffset

		node := getLinkNext(mem, head)
		for node != nullOffset {
			if isAllocated(mem, node) {
				violations = append(violations, errors.HeapInconsistent("allocated block present in a free list"))
			}

			if classOf(uint32(blockSizeAt(mem, node))) != class {
				violations = append(violations, errors.HeapInconsistent("free block lives in the wrong size class list"))
			}

			if getLinkPrev(mem, node) != prev {
				violations = append(violations, errors.HeapInconsistent("free list prev link does not match traversal order"))
			}

			if seen[node] {
				violations = append(violations, errors.HeapInconsistent("free block linked into more than one list"))
			}

			seen[node] = true
			prev = node
			node = getLinkNext(mem, node)
		}

		if getLinkPrev(mem, head) != prev {
			violations = append(violations, errors.HeapInconsistent("free list tail pointer does not match last node visited"))
		}
	}

	bp := nextBlock(mem, 0)
	for bp < h.epilogue {
		if !isAllocated(mem, bp) && !seen[bp] {
			violations = append(violations, errors.HeapInconsistent("free block missing from its size class list"))
		}

		bp = nextBlock(mem, bp)
	}

	return violations
}
