package directbuf

import (
	"errors"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/gogpu/directbuf/internal/native"
	"github.com/gogpu/directbuf/render"
)

// ErrClosed is returned by Context methods after Close.
var ErrClosed = errors.New("directbuf: context closed")

// ErrNoImage is returned by SavePNG and EncodePNG when the target is not a
// pixmap.
var ErrNoImage = errors.New("directbuf: target has no CPU image")

// Context ties a Registry and a Bridge to one renderer and target. It is
// the explicit replacement for a process-wide render context: create one
// per output and pass it to the producer.
//
// All methods are safe for concurrent use. Tick runs the producer and the
// submission under one lock, so writes and renderer reads never overlap.
type Context struct {
	mu       sync.Mutex
	width    int
	height   int
	renderer render.Renderer
	target   render.RenderTarget
	budget   *native.Budget
	registry *Registry
	bridge   *Bridge
	policy   ChannelPolicy
	tracked  *trackedRenderer
	closed   bool
}

// Ensure Context implements io.Closer
var _ io.Closer = (*Context)(nil)

// NewContext creates a context drawing into a width x height target.
//
//	// Software rendering into a pixmap
//	dc := directbuf.NewContext(800, 600)
//
//	// Custom renderer (dependency injection)
//	dc := directbuf.NewContext(800, 600, directbuf.WithRenderer(rec))
func NewContext(width, height int, opts ...ContextOption) *Context {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	renderer := options.renderer
	if renderer == nil {
		renderer = render.NewSoftwareRenderer()
	}
	target := options.target
	if target == nil {
		target = render.NewPixmapTarget(width, height)
	}

	var base native.Allocator = native.Heap{}
	if options.memory == NativeMemory {
		base = native.Default()
	}
	budget := native.NewBudget(base, options.memoryLimit)

	bridge := NewBridge(renderer, target)
	bridge.SetDefaultStroke(options.defaultWeight, options.defaultColor)

	return &Context{
		width:    width,
		height:   height,
		renderer: renderer,
		target:   target,
		tracked:  trackRenderer(renderer),
		budget:   budget,
		registry: NewRegistry(budget, bridge),
		bridge:   bridge,
		policy:   options.policy,
	}
}

// Width returns the context width.
func (c *Context) Width() int { return c.width }

// Height returns the context height.
func (c *Context) Height() int { return c.height }

// Renderer returns the renderer.
func (c *Context) Renderer() render.Renderer { return c.renderer }

// Target returns the render target.
func (c *Context) Target() render.RenderTarget { return c.target }

// Allocate reserves and registers the streams for count primitives of
// kind. See Registry.Allocate.
func (c *Context) Allocate(kind PrimitiveKind, count int, opts ...AllocOption) (*Buffers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.registry.Allocate(kind, count, opts...)
}

// AllocateNamed is Allocate with the kind given by name.
func (c *Context) AllocateNamed(name string, count int, opts ...AllocOption) (*Buffers, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.registry.AllocateNamed(name, count, opts...)
}

// Release drops the registration for kind and frees its arenas. It
// reports whether one was live.
func (c *Context) Release(kind PrimitiveKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bridge.Unregister(kind)
}

// Kinds returns the registered kinds in submission order.
func (c *Context) Kinds() []PrimitiveKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bridge.Kinds()
}

// Submit draws every registration. See Bridge.Submit.
func (c *Context) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.bridge.Submit()
}

// Tick advances one frame: produce writes the views, then the
// registrations are submitted. A produce error skips the submission.
//
// produce runs with the context locked; it writes views and may call Pack,
// but must not call other Context methods.
func (c *Context) Tick(produce func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if produce != nil {
		if err := produce(); err != nil {
			return err
		}
	}
	return c.bridge.Submit()
}

// Pack encodes channels with the context's channel policy.
func (c *Context) Pack(channels ...int) (int32, error) {
	return PackWith(c.policy, channels...)
}

// MemoryStats reports arena memory usage.
type MemoryStats = native.Stats

// Stats returns arena allocation statistics.
func (c *Context) Stats() MemoryStats {
	return c.budget.Stats()
}

// EncodePNG encodes the target image as PNG.
func (c *Context) EncodePNG(w io.Writer) error {
	pm, ok := c.target.(*render.PixmapTarget)
	if !ok {
		return ErrNoImage
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return png.Encode(w, pm.Image())
}

// SavePNG writes the target image to a PNG file.
func (c *Context) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close releases every registration. Views obtained from the context
// report ErrReleased afterwards. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.bridge.Close()
	untrackRenderer(c.tracked)
	return nil
}
