// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native provides owned memory blocks for directbuf arenas.
//
// A Block is a fixed-size byte region with exactly one owner. On Linux,
// macOS and the BSDs the default allocator maps anonymous private pages
// outside the Go heap, so the bytes never move and can be handed to a
// renderer by address. Elsewhere a heap allocator is used.
//
// Blocks are released explicitly with Allocator.Free. Releasing a block
// unmaps its pages immediately; any slice still aliasing the block must not
// be used afterwards.
package native
