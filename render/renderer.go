// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"log/slog"
)

// Renderer executes batched draw calls against a render target.
//
// The Renderer interface is the primary abstraction for rendering backends:
//
//   - SoftwareRenderer: CPU rasterization into a PixmapTarget
//   - GPURenderer: uploads batch streams through a host-provided GPU device
//   - RecordingRenderer: keeps per-frame snapshots of every batch
//
// A renderer draws each batch with its own stroke state; nothing set up
// for one batch leaks into the next.
//
// Thread Safety: Renderers are NOT thread-safe. Each renderer should be used
// from a single goroutine, or external synchronization must be used.
//
// Example:
//
//	renderer := render.NewSoftwareRenderer()
//	target := render.NewPixmapTarget(800, 600)
//
//	if err := renderer.DrawBatch(target, batch); err != nil {
//	    log.Printf("draw failed: %v", err)
//	}
//	_ = renderer.Flush()
type Renderer interface {
	// DrawBatch draws every primitive of the batch in one call.
	//
	// The batch streams are read, never written, and must not be retained
	// after DrawBatch returns.
	DrawBatch(target RenderTarget, batch *Batch) error

	// Flush ends the frame.
	//
	// For CPU renderers, this is typically a no-op as operations are
	// synchronous. For GPU renderers, this may submit pending work.
	Flush() error
}

// BatchReleaser is implemented by renderers that keep per-batch resources
// (GPU buffers, cached snapshots). ReleaseBatch drops everything held for
// the label; it is called when the producer side frees the batch memory.
type BatchReleaser interface {
	ReleaseBatch(label string)
}

// FrameDiscarder is implemented by renderers that queue work between
// DrawBatch and Flush. DiscardFrame drops everything queued since the last
// Flush; it is called when a frame is abandoned after a DrawBatch error.
type FrameDiscarder interface {
	DiscardFrame()
}

// LoggerSetter is implemented by renderers that accept a logger.
type LoggerSetter interface {
	SetLogger(l *slog.Logger)
}

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if this is a GPU-accelerated renderer.
	IsGPU bool

	// SupportsAntialiasing indicates if anti-aliased rendering is supported.
	SupportsAntialiasing bool

	// SupportsStrokeWeights indicates if per-primitive weights are honored.
	SupportsStrokeWeights bool

	// Supports3D indicates if three-dimensional batches are accepted.
	Supports3D bool
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	Renderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}

// nopHandler discards all records; used until SetLogger is called.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func nopLogger() *slog.Logger { return slog.New(nopHandler{}) }
