// Package allocator implements a segregated explicit free list heap
// allocator: boundary-tag blocks, six size classes, four-case coalescing
// and bounded first-fit placement over a single growable arena.
package allocator

import (
	"unsafe"

	"github.com/orizon-lang/segheap/internal/errors"
)

// Config controls a Heap's sizing and failure policy.
type Config struct {
	// InitialChunkSize is committed from the arena at NewHeap time.
	InitialChunkSize uintptr
	// MaxArenaSize bounds how large the backing reservation may ever grow.
	MaxArenaSize uintptr
	// FindFitProbeLimit caps how many candidates findFit inspects per size
	// class before giving up on that class, trading placement quality for
	// a bounded worst case (spec.md 4.5).
	FindFitProbeLimit int
	// ReallocPanicsOnExhaustion controls Reallocate's behavior when the
	// grow requested by a larger size cannot be satisfied: by default it
	// panics rather than silently returning nil and leaking the original
	// block's identity, matching the documented failure policy. Set false
	// to get a nil return and an unfreed original block instead.
	ReallocPanicsOnExhaustion bool
}

// Option mutates a Config.
type Option func(*Config)

// WithInitialChunkSize overrides the bytes committed when the heap is
// first created.
func WithInitialChunkSize(n uintptr) Option {
	return func(c *Config) { c.InitialChunkSize = n }
}

// WithMaxArenaSize overrides the ceiling on total arena growth.
func WithMaxArenaSize(n uintptr) Option {
	return func(c *Config) { c.MaxArenaSize = n }
}

// WithFindFitProbeLimit overrides the per-class first-fit probe bound.
func WithFindFitProbeLimit(n int) Option {
	return func(c *Config) { c.FindFitProbeLimit = n }
}

// WithReallocPanicsOnExhaustion toggles Reallocate's failure policy.
func WithReallocPanicsOnExhaustion(panics bool) Option {
	return func(c *Config) { c.ReallocPanicsOnExhaustion = panics }
}

func defaultConfig() *Config {
	return &Config{
		InitialChunkSize:          8 * 1024,
		MaxArenaSize:              1 << 30, // 1 GiB reservation ceiling.
		FindFitProbeLimit:         findFitProbeCap,
		ReallocPanicsOnExhaustion: true,
	}
}

// AllocatorStats summarizes a Heap's lifetime activity.
type AllocatorStats struct {
	AllocationCount uint64
	FreeCount       uint64
	BytesRequested  uint64
	BytesInUse      uint64
	ArenaCommitted  uintptr
}

// Heap is a single segregated free list allocator instance. Heap is not
// safe for concurrent use: spec.md's concurrency model names thread
// safety a non-goal, so a Heap carries no internal lock.
type Heap struct {
	ar          arena
	segListBase uintptr
	epilogue    uintptr
	cfg         *Config
	lastErr     error
	stats       AllocatorStats
}

// NewHeap creates a Heap and commits its initial chunk.
func NewHeap(opts ...Option) (*Heap, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.InitialChunkSize < uintptr(overhead+segListDirSize+minBlock) {
		return nil, errors.InvalidSize(cfg.InitialChunkSize, "initial chunk too small for prologue, seg list directory and one block")
	}

	ar, err := newMemArena(cfg.MaxArenaSize)
	if err != nil {
		return nil, err
	}

	h := &Heap{ar: ar, cfg: cfg}
	if err := h.initHeap(); err != nil {
		return nil, err
	}

	return h, nil
}

// mem returns the arena's committed bytes.
func (h *Heap) mem() []byte { return h.ar.bytes() }

// fail records and returns a HEAP_INCONSISTENT error for an invariant
// violated at a point no caller input should have been able to reach.
func (h *Heap) fail(detail string) *errors.StandardError {
	err := errors.HeapInconsistent(detail)
	h.lastErr = err

	return err
}

// LastError returns the most recent internal error recorded, if any.
func (h *Heap) LastError() error { return h.lastErr }

// Stats returns a snapshot of the heap's lifetime counters.
func (h *Heap) Stats() AllocatorStats {
	s := h.stats
	s.ArenaCommitted = h.ar.high()

	return s
}

// Allocate reserves at least size bytes and returns a pointer to the
// payload, or nil if the arena could not be grown further (spec.md 4.5,
// 4.6). Allocate never returns a nil error through LastError for size 0;
// it returns nil directly, matching free(0)/malloc(0) convention.
func (h *Heap) Allocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	asize := alignUp(size + overhead)
	if asize < minBlock {
		asize = minBlock
	}

	bp := h.findFit(uint32(asize))
	if bp == noFit {
		bp = h.growHeap(uint32(asize))
		if bp == noFit {
			return nil
		}
	}

	h.place(bp, uint32(asize))

	// place may keep the whole block (remainder < minBlock) rather than
	// splitting, so the committed block can be larger than asize; read
	// it back so BytesInUse tracks the size Free will later subtract.
	committed := blockSizeAt(h.mem(), bp)

	h.stats.AllocationCount++
	h.stats.BytesRequested += uint64(size)
	h.stats.BytesInUse += uint64(committed)

	return h.payloadPtr(bp)
}

// Free releases a block returned by Allocate, coalescing it with any
// free physical neighbors (spec.md 4.4, 4.6). Free of nil is a no-op.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	bp := h.blockFromPayload(ptr)
	mem := h.mem()
	size := blockSizeAt(mem, bp)

	setBlockTag(mem, bp, uint32(size), false)
	h.coalesce(bp)

	h.stats.FreeCount++
	h.stats.BytesInUse -= uint64(size)
}

// Reallocate resizes the block at ptr to newSize, preserving the lesser
// of the old and new sizes worth of payload bytes (spec.md 4.6). It
// always allocates the replacement before freeing the original, so the
// original's contents remain readable for the copy even under the
// corrected copy-length behavior of spec.md 9.
func (h *Heap) Reallocate(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return h.Allocate(newSize)
	}

	if newSize == 0 {
		h.Free(ptr)

		return nil
	}

	mem := h.mem()
	bp := h.blockFromPayload(ptr)
	oldPayload := blockSizeAt(mem, bp) - overhead

	newPtr := h.Allocate(newSize)
	if newPtr == nil {
		if h.cfg.ReallocPanicsOnExhaustion {
			panic(h.fail("reallocate: arena exhausted growing block"))
		}

		return nil
	}

	copySize := oldPayload
	if newSize < copySize {
		copySize = newSize
	}

	if copySize > 0 {
		src := unsafe.Slice((*byte)(ptr), copySize)
		dst := unsafe.Slice((*byte)(newPtr), copySize)
		copy(dst, src)
	}

	h.Free(ptr)

	return newPtr
}

// payloadPtr returns a pointer to bp's payload area.
func (h *Heap) payloadPtr(bp uintptr) unsafe.Pointer {
	mem := h.mem()

	return unsafe.Add(unsafe.Pointer(&mem[0]), bp+headerLen)
}

// blockFromPayload recovers a block's header address from a pointer
// Allocate previously handed out.
func (h *Heap) blockFromPayload(ptr unsafe.Pointer) uintptr {
	mem := h.mem()
	base := uintptr(unsafe.Pointer(&mem[0]))

	return uintptr(ptr) - base - headerLen
}

// DefaultHeap is the package-level singleton used by the Alloc/Free/
// Realloc/Init convenience functions. It stays nil until Init is called.
var DefaultHeap *Heap

// Init installs DefaultHeap. Must be called before Alloc/Free/Realloc.
func Init(opts ...Option) error {
	h, err := NewHeap(opts...)
	if err != nil {
		return err
	}

	DefaultHeap = h

	return nil
}

// Alloc allocates from DefaultHeap.
func Alloc(size uintptr) unsafe.Pointer {
	if DefaultHeap == nil {
		return nil
	}

	return DefaultHeap.Allocate(size)
}

// Free releases a pointer allocated from DefaultHeap.
func Free(ptr unsafe.Pointer) {
	if DefaultHeap == nil {
		return
	}

	DefaultHeap.Free(ptr)
}

// Realloc resizes a pointer allocated from DefaultHeap.
func Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if DefaultHeap == nil {
		return nil
	}

	return DefaultHeap.Reallocate(ptr, newSize)
}
