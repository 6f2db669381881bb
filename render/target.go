// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gputypes"
)

// RenderTarget is the surface a frame of batches lands on.
//
// A target exposes CPU pixels, a GPU texture view, or both. The software
// renderer needs Pixels; the GPU renderer uses TextureView and falls back
// to Pixels when there is no view.
type RenderTarget interface {
	Width() int
	Height() int
	Format() gputypes.TextureFormat

	// TextureView is nil for CPU-only targets.
	TextureView() TextureView

	// Pixels is nil for GPU-only targets. Rows are Stride bytes apart.
	Pixels() []byte
	Stride() int
}

// TextureView is a host-owned texture view. Renderers draw into it but
// never destroy it.
type TextureView interface {
	Destroy()
}

// PixmapTarget renders into an *image.RGBA in CPU memory. It is the
// default target of a directbuf Context and the one PNG output reads.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget returns a transparent width x height pixmap.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return NewPixmapTargetFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewPixmapTargetFromImage draws into img in place.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

func (t *PixmapTarget) Width() int                     { return t.img.Bounds().Dx() }
func (t *PixmapTarget) Height() int                    { return t.img.Bounds().Dy() }
func (t *PixmapTarget) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (t *PixmapTarget) TextureView() TextureView       { return nil }
func (t *PixmapTarget) Pixels() []byte                 { return t.img.Pix }
func (t *PixmapTarget) Stride() int                    { return t.img.Stride }

// Image returns the pixmap. It shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear paints every pixel with c, typically once per tick before Submit.
func (t *PixmapTarget) Clear(c color.Color) {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// ClearARGB is Clear with a packed ARGB color as stored in color streams.
func (t *PixmapTarget) ClearARGB(c int32) {
	t.Clear(ARGB(c))
}

var _ RenderTarget = (*PixmapTarget)(nil)

// SurfaceTarget renders into a texture view owned by the host, such as
// the swapchain image of a window. Hosts that acquire a new image every
// tick swap it in with SetView before submitting.
type SurfaceTarget struct {
	width, height int
	format        gputypes.TextureFormat
	view          TextureView
}

// NewSurfaceTarget returns a GPU-only target over view.
func NewSurfaceTarget(width, height int, format gputypes.TextureFormat, view TextureView) *SurfaceTarget {
	return &SurfaceTarget{width: width, height: height, format: format, view: view}
}

// SetView replaces the view drawn into by the next frame. The previous
// view stays owned by the host.
func (t *SurfaceTarget) SetView(view TextureView) {
	t.view = view
}

func (t *SurfaceTarget) Width() int                     { return t.width }
func (t *SurfaceTarget) Height() int                    { return t.height }
func (t *SurfaceTarget) Format() gputypes.TextureFormat { return t.format }
func (t *SurfaceTarget) TextureView() TextureView       { return t.view }
func (t *SurfaceTarget) Pixels() []byte                 { return nil }
func (t *SurfaceTarget) Stride() int                    { return 0 }

var _ RenderTarget = (*SurfaceTarget)(nil)
