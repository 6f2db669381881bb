// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux || darwin || freebsd || netbsd || openbsd

package native

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap allocates blocks as anonymous private mappings. The pages live
// outside the Go heap and are returned to the system by Free.
type Mmap struct{}

// Alloc maps size bytes of zeroed, read-write memory.
func (Mmap) Alloc(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("native: mmap %d bytes: %w", size, err)
	}
	return &Block{data: data, release: unix.Munmap}, nil
}

// Free unmaps the block synchronously.
func (Mmap) Free(b *Block) error {
	return b.free()
}

func defaultAllocator() Allocator {
	return Mmap{}
}
