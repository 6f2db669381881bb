// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"errors"
	"fmt"
	"unsafe"
)

// Allocation errors.
var (
	// ErrInvalidSize is returned when a zero or negative size is requested.
	ErrInvalidSize = errors.New("native: invalid block size")

	// ErrBudgetExceeded is returned when an allocation would exceed a budget.
	ErrBudgetExceeded = errors.New("native: memory budget exceeded")

	// ErrDoubleFree is returned when a block is freed twice.
	ErrDoubleFree = errors.New("native: block already freed")
)

// Allocator hands out and reclaims owned memory blocks.
type Allocator interface {
	// Alloc returns a zeroed block of exactly size bytes.
	Alloc(size int) (*Block, error)

	// Free releases the block. The block's bytes must not be used afterwards.
	Free(b *Block) error
}

// Block is a contiguous memory region owned by the allocator that
// produced it.
type Block struct {
	data  []byte
	freed bool

	// release returns the memory to the system. Set by the allocator.
	release func([]byte) error
}

// Bytes returns the block's memory. The slice aliases the block; it is
// nil once the block has been freed.
func (b *Block) Bytes() []byte {
	if b == nil || b.freed {
		return nil
	}
	return b.data
}

// Len returns the block size in bytes.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Freed reports whether the block has been released.
func (b *Block) Freed() bool {
	return b == nil || b.freed
}

// Addr returns the address of the first byte, or 0 for a freed block.
// The address is stable for the block's lifetime.
func (b *Block) Addr() uintptr {
	if b.Freed() || len(b.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.data)))
}

func (b *Block) free() error {
	if b == nil {
		return nil
	}
	if b.freed {
		return ErrDoubleFree
	}
	b.freed = true
	data := b.data
	b.data = nil
	if b.release == nil {
		return nil
	}
	if err := b.release(data); err != nil {
		return fmt.Errorf("native: release %d bytes: %w", len(data), err)
	}
	return nil
}

// Empty returns a live zero-length block that owns no memory. Any
// allocator's Free invalidates it.
func Empty() *Block {
	return &Block{data: []byte{}}
}

// Default returns the platform allocator: mmap-backed where available,
// heap-backed otherwise.
func Default() Allocator {
	return defaultAllocator()
}

// Heap allocates blocks on the Go heap. Free drops the reference so the
// memory becomes collectable; the block itself is invalidated immediately.
type Heap struct{}

// Alloc returns a zeroed heap block.
func (Heap) Alloc(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return &Block{data: make([]byte, size)}, nil
}

// Free invalidates the block.
func (Heap) Free(b *Block) error {
	return b.free()
}
