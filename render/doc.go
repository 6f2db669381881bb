// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render draws batches of primitives read from producer-owned
// memory.
//
// A Batch is one draw call worth of primitives of a single kind: points,
// independent line segments, or line strips, in two or three dimensions,
// with optional per-primitive stroke weights and packed ARGB colors. The
// batch streams alias the producer's buffers; renderers read them during
// DrawBatch and never write to them.
//
// # Core Interfaces
//
//   - Renderer: draws batches into a RenderTarget, Flush ends the frame
//   - RenderTarget: where output goes (PixmapTarget, SurfaceTarget)
//   - DeviceHandle: GPU device access from the host application
//   - BatchReleaser: notified when the producer frees a batch's memory
//
// # Renderer Implementations
//
//   - SoftwareRenderer: anti-aliased CPU rasterization (golang.org/x/image/vector)
//   - GPURenderer: instanced draws on a wgpu/hal device with a naga-compiled shader
//   - RecordingRenderer: headless per-frame snapshots
//
// # Usage
//
//	renderer := render.NewSoftwareRenderer()
//	target := render.NewPixmapTarget(800, 600)
//
//	batch := &render.Batch{
//	    Label:         "line_2d",
//	    Topology:      gputypes.PrimitiveTopologyLineList,
//	    Dim:           2,
//	    Stride:        4,
//	    Count:         1,
//	    Coords:        []float32{10, 10, 200, 120},
//	    DefaultWeight: 2,
//	    DefaultColor:  -16777216, // opaque black
//	}
//	_ = renderer.DrawBatch(target, batch)
//	_ = renderer.Flush()
//
// # Thread Safety
//
// Renderers are NOT thread-safe. Each renderer should be used from a single
// goroutine, or external synchronization must be used.
package render
