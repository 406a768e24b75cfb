//go:build linux

package allocator

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// reserve asks the kernel for capacity bytes of anonymous, zero-filled
// address space. Linux only backs pages with physical memory when they
// are first touched, so reserving a generous capacity up front (see
// Config.MaxArenaSize) costs address space, not RAM, and lets grow()
// bump a watermark without ever relocating the mapping.
func reserve(capacity uintptr) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", capacity, err)
	}

	return mem, nil
}
