// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/vector"

	"github.com/gogpu/gputypes"
)

// Target errors.
var (
	// ErrNilTarget is returned when a renderer receives a nil target.
	ErrNilTarget = errors.New("render: nil target")

	// ErrNoCPUAccess is returned when a CPU renderer gets a GPU-only target.
	ErrNoCPUAccess = errors.New("render: target does not support CPU rendering")
)

// SoftwareRenderer rasterizes batches on the CPU with anti-aliased
// coverage from golang.org/x/image/vector.
//
// Points are drawn as squares whose side is the stroke weight, line
// segments as quads of that width. Consecutive primitives sharing color
// and weight are accumulated into a single coverage pass. The z
// coordinate of three-dimensional batches is dropped (orthographic
// projection onto the target plane). Primitives with non-finite
// coordinates are skipped.
//
// Example:
//
//	renderer := render.NewSoftwareRenderer()
//	target := render.NewPixmapTarget(800, 600)
//	_ = renderer.DrawBatch(target, batch)
//	img := target.Image()
type SoftwareRenderer struct {
	// rast is reused across batches and resized with the target.
	rast *vector.Rasterizer

	// pending reports whether rast holds coverage not yet composited.
	pending bool

	log *slog.Logger
}

// NewSoftwareRenderer creates a new CPU-based software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{log: nopLogger()}
}

// SetLogger sets the logger used for per-batch diagnostics.
func (r *SoftwareRenderer) SetLogger(l *slog.Logger) {
	if l == nil {
		l = nopLogger()
	}
	r.log = l
}

// DrawBatch rasterizes every primitive of the batch into the target.
//
// Returns an error if the target is GPU-only (no Pixels() support).
func (r *SoftwareRenderer) DrawBatch(target RenderTarget, batch *Batch) error {
	if target == nil {
		return ErrNilTarget
	}
	pixels := target.Pixels()
	if pixels == nil {
		return ErrNoCPUAccess
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Count == 0 {
		return nil
	}

	width, height := target.Width(), target.Height()
	dst := &image.RGBA{
		Pix:    pixels,
		Stride: target.Stride(),
		Rect:   image.Rect(0, 0, width, height),
	}
	r.ensureRasterizer(width, height)

	// Style runs: start a new coverage pass whenever color or weight changes.
	runColor, runWeight := batch.ColorAt(0), batch.WeightAt(0)
	skipped := 0
	for i := range batch.Count {
		c, w := batch.ColorAt(i), batch.WeightAt(i)
		if c != runColor || w != runWeight {
			r.composite(dst, runColor)
			runColor, runWeight = c, w
		}
		if !r.addPrimitive(batch, i, w) {
			skipped++
		}
	}
	r.composite(dst, runColor)

	r.log.Debug("software: batch drawn",
		"label", batch.Label,
		"topology", batch.Topology.String(),
		"count", batch.Count,
		"skipped", skipped)
	return nil
}

// Flush ends the frame.
// For the software renderer, this is a no-op as operations are synchronous.
func (r *SoftwareRenderer) Flush() error {
	return nil
}

// Capabilities returns the renderer's capabilities.
func (r *SoftwareRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{
		IsGPU:                 false,
		SupportsAntialiasing:  true,
		SupportsStrokeWeights: true,
		Supports3D:            true,
	}
}

func (r *SoftwareRenderer) ensureRasterizer(width, height int) {
	if r.rast == nil {
		r.rast = vector.NewRasterizer(width, height)
		return
	}
	if sz := r.rast.Size(); sz.X != width || sz.Y != height {
		r.rast.Reset(width, height)
	}
}

// composite blends the accumulated coverage with the given color and
// clears the rasterizer for the next run.
func (r *SoftwareRenderer) composite(dst *image.RGBA, packed int32) {
	if !r.pending {
		return
	}
	sz := r.rast.Size()
	if c := ARGB(packed); c.A != 0 {
		r.rast.Draw(dst, dst.Rect, image.NewUniform(c), image.Point{})
	}
	r.rast.Reset(sz.X, sz.Y)
	r.pending = false
}

// addPrimitive appends the outline of primitive i to the rasterizer.
// Returns false if the primitive was skipped.
func (r *SoftwareRenderer) addPrimitive(b *Batch, i int, weight float32) bool {
	if weight <= 0 || !finite(weight) {
		return false
	}
	n := b.Vertices()
	for j := range n {
		x, y, z := b.Vertex(i, j)
		if !finite(x) || !finite(y) || !finite(z) {
			return false
		}
	}

	half := weight / 2
	switch b.Topology {
	case gputypes.PrimitiveTopologyPointList:
		for j := range n {
			x, y, _ := b.Vertex(i, j)
			r.addSquare(x, y, half)
		}
	case gputypes.PrimitiveTopologyLineList:
		for j := 0; j+1 < n; j += 2 {
			x0, y0, _ := b.Vertex(i, j)
			x1, y1, _ := b.Vertex(i, j+1)
			r.addSegment(x0, y0, x1, y1, half)
		}
	case gputypes.PrimitiveTopologyLineStrip:
		for j := 0; j+1 < n; j++ {
			x0, y0, _ := b.Vertex(i, j)
			x1, y1, _ := b.Vertex(i, j+1)
			r.addSegment(x0, y0, x1, y1, half)
		}
		if b.Closed && n > 2 {
			x0, y0, _ := b.Vertex(i, n-1)
			x1, y1, _ := b.Vertex(i, 0)
			r.addSegment(x0, y0, x1, y1, half)
		}
	}
	return true
}

// addSquare winds the same way as addSegment for a left-to-right segment.
func (r *SoftwareRenderer) addSquare(x, y, half float32) {
	r.rast.MoveTo(x-half, y+half)
	r.rast.LineTo(x+half, y+half)
	r.rast.LineTo(x+half, y-half)
	r.rast.LineTo(x-half, y-half)
	r.rast.ClosePath()
	r.pending = true
}

// addSegment adds a stroked line segment as a quad. All quads share the
// same winding, so overlapping segments saturate instead of cancelling.
func (r *SoftwareRenderer) addSegment(x0, y0, x1, y1, half float32) {
	dx := x1 - x0
	dy := y1 - y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 1e-6 {
		// Degenerate segment: draw the dot so zero-length lines stay visible.
		r.addSquare(x0, y0, half)
		return
	}

	px := -dy / length * half
	py := dx / length * half

	r.rast.MoveTo(x0+px, y0+py)
	r.rast.LineTo(x1+px, y1+py)
	r.rast.LineTo(x1-px, y1-py)
	r.rast.LineTo(x0-px, y0-py)
	r.rast.ClosePath()
	r.pending = true
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Ensure SoftwareRenderer implements the renderer interfaces.
var (
	_ Renderer        = (*SoftwareRenderer)(nil)
	_ CapableRenderer = (*SoftwareRenderer)(nil)
	_ LoggerSetter    = (*SoftwareRenderer)(nil)
)
