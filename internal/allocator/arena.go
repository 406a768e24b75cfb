package allocator

import (
	"fmt"
)

// arena is the OS memory primitive the heap grows into (C1, spec.md 4.1).
// It models a monotonically growing arena: grow extends the committed
// region by n bytes and returns the byte offset the new region starts at;
// it never shrinks and the base of the reservation never moves, so every
// offset handed out by grow stays valid for the arena's lifetime.
type arena interface {
	// grow commits n more bytes, returning the offset of the new region.
	// ok is false if the reservation is exhausted.
	grow(n uintptr) (base uintptr, ok bool)
	// low is always 0; kept as a method so callers never hardcode it.
	low() uintptr
	// high is the offset one past the last committed byte.
	high() uintptr
	// bytes exposes the committed region for the block layout to read/write.
	bytes() []byte
}

// memArena is the default arena: a single large virtual reservation that
// is grown by bumping a committed-length watermark. reserve is supplied by
// a platform file (arena_unix.go, arena_fallback.go) so the reservation
// itself can use golang.org/x/sys/unix on platforms where that pays off,
// the way this codebase's asyncio package reaches for x/sys/unix for raw
// syscalls rather than re-deriving them.
type memArena struct {
	mem  []byte
	used uintptr
}

// newMemArena reserves capacity bytes of address space up front so that
// later grows never relocate already-handed-out offsets.
func newMemArena(capacity uintptr) (*memArena, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("allocator: arena capacity must be > 0")
	}

	mem, err := reserve(capacity)
	if err != nil {
		return nil, fmt.Errorf("allocator: failed to reserve arena: %w", err)
	}

	return &memArena{mem: mem}, nil
}

func (a *memArena) grow(n uintptr) (uintptr, bool) {
	if n == 0 || a.used+n > uintptr(len(a.mem)) {
		return 0, false
	}

	base := a.used
	a.used += n

	return base, true
}

func (a *memArena) low() uintptr { return 0 }

func (a *memArena) high() uintptr { return a.used }

func (a *memArena) bytes() []byte { return a.mem[:a.used] }
