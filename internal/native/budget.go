// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package native

import (
	"fmt"
	"sync"
)

// Stats contains allocation statistics for a Budget.
type Stats struct {
	// LimitBytes is the budget in bytes (0 = unlimited).
	LimitBytes int

	// UsedBytes is the memory currently held by live blocks.
	UsedBytes int

	// LiveBlocks is the number of blocks not yet freed.
	LiveBlocks int

	// Allocs and Frees count successful calls.
	Allocs, Frees uint64
}

// String returns a human-readable summary.
func (s Stats) String() string {
	return fmt.Sprintf("native[%d/%d bytes, %d live, %d allocs, %d frees]",
		s.UsedBytes, s.LimitBytes, s.LiveBlocks, s.Allocs, s.Frees)
}

// Budget wraps an Allocator, tracks live memory and refuses allocations
// that would push usage past the limit.
//
// Budget is safe for concurrent use.
type Budget struct {
	mu    sync.Mutex
	base  Allocator
	limit int
	stats Stats
}

// NewBudget returns a Budget over base. A limit of 0 disables the check
// and only tracks usage.
func NewBudget(base Allocator, limit int) *Budget {
	if base == nil {
		base = Default()
	}
	return &Budget{
		base:  base,
		limit: limit,
		stats: Stats{LimitBytes: limit},
	}
}

// Alloc allocates from the wrapped allocator if the budget allows it.
func (a *Budget) Alloc(size int) (*Block, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && a.stats.UsedBytes+size > a.limit {
		return nil, fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrBudgetExceeded, size, a.stats.UsedBytes, a.limit)
	}
	b, err := a.base.Alloc(size)
	if err != nil {
		return nil, err
	}
	a.stats.UsedBytes += b.Len()
	a.stats.LiveBlocks++
	a.stats.Allocs++
	return b, nil
}

// Free releases the block through the wrapped allocator.
func (a *Budget) Free(b *Block) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	size := b.Len()
	if err := a.base.Free(b); err != nil {
		return err
	}
	a.stats.UsedBytes -= size
	a.stats.LiveBlocks--
	a.stats.Frees++
	return nil
}

// Stats returns a snapshot of the allocation statistics.
func (a *Budget) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
