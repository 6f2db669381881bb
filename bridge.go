package directbuf

import (
	"fmt"
	"slices"

	"github.com/gogpu/directbuf/render"
)

// Default stroke applied to registrations without weight or color streams.
const (
	DefaultStrokeWeight float32 = 1
	DefaultStrokeColor  int32   = -16777216 // opaque black, 0xFF000000
)

// Bridge holds the live registrations and submits them to a renderer, one
// batch per primitive kind.
//
// Bridge is not safe for concurrent use; Context serializes access.
type Bridge struct {
	renderer render.Renderer
	target   render.RenderTarget

	// order lists registered kinds by first registration.
	order []PrimitiveKind
	live  [kindCount]*Registration

	defaultWeight float32
	defaultColor  int32
}

// NewBridge returns a Bridge drawing into target through renderer with the
// package default stroke.
func NewBridge(renderer render.Renderer, target render.RenderTarget) *Bridge {
	return &Bridge{
		renderer:      renderer,
		target:        target,
		defaultWeight: DefaultStrokeWeight,
		defaultColor:  DefaultStrokeColor,
	}
}

// SetDefaultStroke sets the weight and color used by registrations that
// have no weight or color stream. It applies to registrations installed
// afterwards.
func (b *Bridge) SetDefaultStroke(weight float32, color int32) {
	b.defaultWeight = weight
	b.defaultColor = color
}

// Renderer returns the renderer batches are submitted to.
func (b *Bridge) Renderer() render.Renderer { return b.renderer }

// Target returns the render target.
func (b *Bridge) Target() render.RenderTarget { return b.target }

// Kinds returns the registered kinds in submission order.
func (b *Bridge) Kinds() []PrimitiveKind {
	return slices.Clone(b.order)
}

// Len returns the number of live registrations.
func (b *Bridge) Len() int { return len(b.order) }

// Registration returns the live registration for kind.
func (b *Bridge) Registration(kind PrimitiveKind) (*Registration, bool) {
	if !kind.Valid() {
		return nil, false
	}
	reg := b.live[kind]
	return reg, reg != nil
}

// install makes reg the live registration for its kind. A previous
// registration is released before reg becomes visible to Submit, and the
// renderer is told to drop resources bound to the kind.
func (b *Bridge) install(reg *Registration) {
	reg.batch = render.Batch{
		Label:         reg.kind.String(),
		Topology:      reg.kind.Topology(),
		Dim:           reg.kind.Dimension(),
		Count:         reg.count,
		Stride:        reg.stride,
		Closed:        reg.closed,
		Coords:        elements[float32](reg.coords),
		DefaultWeight: b.defaultWeight,
		DefaultColor:  b.defaultColor,
	}
	if reg.weights != nil {
		reg.batch.Weights = elements[float32](reg.weights)
	}
	if reg.colors != nil {
		reg.batch.Colors = elements[int32](reg.colors)
	}

	old := b.live[reg.kind]
	if old == nil {
		b.order = append(b.order, reg.kind)
	} else {
		b.drop(old)
		Logger().Info("directbuf: replaced registration",
			"kind", reg.kind.String(), "old_count", old.count, "new_count", reg.count)
	}
	b.live[reg.kind] = reg
}

// Unregister releases the registration for kind. It reports whether one
// was live.
func (b *Bridge) Unregister(kind PrimitiveKind) bool {
	reg, ok := b.Registration(kind)
	if !ok {
		return false
	}
	b.drop(reg)
	b.live[kind] = nil
	b.order = slices.DeleteFunc(b.order, func(k PrimitiveKind) bool { return k == kind })
	return true
}

func (b *Bridge) drop(reg *Registration) {
	if err := reg.release(); err != nil {
		Logger().Warn("directbuf: release failed", "kind", reg.kind.String(), "err", err)
	}
	if rel, ok := b.renderer.(render.BatchReleaser); ok {
		rel.ReleaseBatch(reg.kind.String())
	}
}

// Submit issues one DrawBatch per live registration, in registration
// order, then flushes the renderer once. The batches alias the arena
// memory; nothing is copied and the arenas are never written.
//
// With no registrations Submit does nothing and returns nil. Registrations
// with zero primitives are skipped. The first renderer error aborts the
// frame: batches already queued by the renderer are discarded and the
// error is returned wrapped with the kind.
func (b *Bridge) Submit() error {
	if len(b.order) == 0 {
		return nil
	}
	primitives := 0
	for _, kind := range b.order {
		reg := b.live[kind]
		if reg.count == 0 {
			continue
		}
		if err := b.renderer.DrawBatch(b.target, &reg.batch); err != nil {
			if d, ok := b.renderer.(render.FrameDiscarder); ok {
				d.DiscardFrame()
			}
			return fmt.Errorf("directbuf: submit %s: %w", kind, err)
		}
		primitives += reg.count
	}
	if err := b.renderer.Flush(); err != nil {
		return fmt.Errorf("directbuf: submit: flush: %w", err)
	}
	Logger().Debug("directbuf: submitted", "batches", len(b.order), "primitives", primitives)
	return nil
}

// Close releases every registration.
func (b *Bridge) Close() {
	for _, kind := range slices.Clone(b.order) {
		b.Unregister(kind)
	}
}
