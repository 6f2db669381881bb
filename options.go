package directbuf

import "github.com/gogpu/directbuf/render"

// Memory selects the backing store of arenas.
type Memory int

const (
	// NativeMemory maps arenas outside the Go heap where the platform
	// supports it, and falls back to the heap elsewhere.
	NativeMemory Memory = iota

	// HeapMemory keeps arenas on the Go heap.
	HeapMemory
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Default software rendering into an 800x600 pixmap
//	dc := directbuf.NewContext(800, 600)
//
//	// Custom renderer and target (dependency injection)
//	dc := directbuf.NewContext(800, 600,
//	    directbuf.WithRenderer(gpuRenderer),
//	    directbuf.WithTarget(surface))
type ContextOption func(*contextOptions)

type contextOptions struct {
	renderer      render.Renderer
	target        render.RenderTarget
	memory        Memory
	memoryLimit   int
	defaultWeight float32
	defaultColor  int32
	policy        ChannelPolicy
}

func defaultOptions() contextOptions {
	return contextOptions{
		renderer:      nil, // software renderer
		target:        nil, // pixmap of the context size
		memory:        NativeMemory,
		defaultWeight: DefaultStrokeWeight,
		defaultColor:  DefaultStrokeColor,
		policy:        WrapChannels,
	}
}

// WithRenderer sets the renderer batches are submitted to. The default is
// a render.SoftwareRenderer.
func WithRenderer(r render.Renderer) ContextOption {
	return func(o *contextOptions) {
		o.renderer = r
	}
}

// WithTarget sets the render target. The default is a render.PixmapTarget
// of the context size.
func WithTarget(t render.RenderTarget) ContextOption {
	return func(o *contextOptions) {
		o.target = t
	}
}

// WithMemory selects where arenas live.
func WithMemory(m Memory) ContextOption {
	return func(o *contextOptions) {
		o.memory = m
	}
}

// WithMemoryLimit caps the total arena size in bytes. Allocations past the
// limit fail with ErrAllocationFailure. 0 means unlimited.
func WithMemoryLimit(bytes int) ContextOption {
	return func(o *contextOptions) {
		o.memoryLimit = max(bytes, 0)
	}
}

// WithDefaultStroke sets the packed color of primitives without a color
// stream. The default is opaque black.
func WithDefaultStroke(color int32) ContextOption {
	return func(o *contextOptions) {
		o.defaultColor = color
	}
}

// WithDefaultStrokeWeight sets the weight of primitives without a weight
// stream. The default is 1.
func WithDefaultStrokeWeight(weight float32) ContextOption {
	return func(o *contextOptions) {
		o.defaultWeight = weight
	}
}

// WithChannelPolicy sets the policy used by Context.Pack.
func WithChannelPolicy(p ChannelPolicy) ContextOption {
	return func(o *contextOptions) {
		o.policy = p
	}
}
