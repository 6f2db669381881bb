// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image/color"
	"unsafe"

	"github.com/gogpu/gputypes"
)

// Batch errors.
var (
	// ErrNilBatch is returned when a renderer receives a nil batch.
	ErrNilBatch = errors.New("render: nil batch")

	// ErrInvalidBatch is returned when batch streams disagree with its layout.
	ErrInvalidBatch = errors.New("render: invalid batch")
)

// Batch is one draw call worth of primitives of a single kind.
//
// The stream slices alias memory owned by the producer side. A renderer
// reads them during DrawBatch and must not retain them past the call,
// since the owner may release or overwrite the memory afterwards.
type Batch struct {
	// Label identifies the batch across frames (the primitive kind name).
	Label string

	// Topology selects points, independent line segments, or line strips.
	Topology gputypes.PrimitiveTopology

	// Dim is the number of coordinates per vertex (2 or 3).
	Dim int

	// Count is the number of primitives.
	Count int

	// Stride is the number of coordinates per primitive.
	Stride int

	// Closed joins the last vertex of each line strip back to the first.
	Closed bool

	// Coords holds Count*Stride coordinates.
	Coords []float32

	// Weights holds one stroke weight per primitive, or nil.
	Weights []float32

	// Colors holds one packed ARGB color per primitive, or nil.
	Colors []int32

	// DefaultWeight applies to every primitive when Weights is nil.
	DefaultWeight float32

	// DefaultColor applies to every primitive when Colors is nil.
	DefaultColor int32
}

// Validate checks that the streams match the declared layout.
func (b *Batch) Validate() error {
	if b == nil {
		return ErrNilBatch
	}
	switch b.Topology {
	case gputypes.PrimitiveTopologyPointList,
		gputypes.PrimitiveTopologyLineList,
		gputypes.PrimitiveTopologyLineStrip:
	default:
		return fmt.Errorf("%w: unsupported topology %v", ErrInvalidBatch, b.Topology)
	}
	if b.Dim != 2 && b.Dim != 3 {
		return fmt.Errorf("%w: dimension %d", ErrInvalidBatch, b.Dim)
	}
	if b.Stride <= 0 || b.Stride%b.Dim != 0 {
		return fmt.Errorf("%w: stride %d for dimension %d", ErrInvalidBatch, b.Stride, b.Dim)
	}
	if b.Count < 0 || len(b.Coords) != b.Count*b.Stride {
		return fmt.Errorf("%w: %d coords for %d primitives of stride %d",
			ErrInvalidBatch, len(b.Coords), b.Count, b.Stride)
	}
	if b.Weights != nil && len(b.Weights) != b.Count {
		return fmt.Errorf("%w: %d weights for %d primitives", ErrInvalidBatch, len(b.Weights), b.Count)
	}
	if b.Colors != nil && len(b.Colors) != b.Count {
		return fmt.Errorf("%w: %d colors for %d primitives", ErrInvalidBatch, len(b.Colors), b.Count)
	}
	return nil
}

// Vertices returns the number of vertices per primitive.
func (b *Batch) Vertices() int {
	if b.Dim == 0 {
		return 0
	}
	return b.Stride / b.Dim
}

// VertexCount returns the number of vertices a draw of one primitive
// emits, counting the repeated first vertex of a closed strip.
func (b *Batch) VertexCount() int {
	n := b.Vertices()
	if b.Closed && b.Topology == gputypes.PrimitiveTopologyLineStrip && n > 0 {
		n++
	}
	return n
}

// Vertex returns the x, y, z coordinates of vertex j of primitive i.
// z is 0 for two-dimensional batches.
func (b *Batch) Vertex(i, j int) (x, y, z float32) {
	off := i*b.Stride + j*b.Dim
	x, y = b.Coords[off], b.Coords[off+1]
	if b.Dim == 3 {
		z = b.Coords[off+2]
	}
	return x, y, z
}

// WeightAt returns the stroke weight of primitive i.
func (b *Batch) WeightAt(i int) float32 {
	if b.Weights == nil {
		return b.DefaultWeight
	}
	return b.Weights[i]
}

// ColorAt returns the packed color of primitive i.
func (b *Batch) ColorAt(i int) int32 {
	if b.Colors == nil {
		return b.DefaultColor
	}
	return b.Colors[i]
}

// CoordBytes returns the coordinate stream as bytes without copying.
func (b *Batch) CoordBytes() []byte {
	return sliceBytes(b.Coords)
}

// WeightBytes returns the weight stream as bytes without copying.
func (b *Batch) WeightBytes() []byte {
	return sliceBytes(b.Weights)
}

// ColorBytes returns the color stream as bytes without copying.
func (b *Batch) ColorBytes() []byte {
	return sliceBytes(b.Colors)
}

func sliceBytes[T float32 | int32](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*4)
}

// ARGB decodes a packed 0xAARRGGBB color (stored as a signed 32-bit
// integer) into a non-premultiplied color.
func ARGB(c int32) color.NRGBA {
	u := uint32(c)
	return color.NRGBA{
		R: uint8(u >> 16),
		G: uint8(u >> 8),
		B: uint8(u),
		A: uint8(u >> 24),
	}
}
