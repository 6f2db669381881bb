package directbuf

import (
	"errors"
	"fmt"

	"github.com/gogpu/directbuf/internal/native"
	"github.com/gogpu/directbuf/render"
)

// AllocOption configures a single Allocate call.
type AllocOption func(*allocOptions)

type allocOptions struct {
	coords  int
	stroked bool
	colored bool
	closed  bool
}

// WithCoords sets the coordinate count per primitive. Required for
// polyline kinds; ignored for fixed kinds.
func WithCoords(n int) AllocOption {
	return func(o *allocOptions) {
		o.coords = n
	}
}

// WithStroked allocates a per-primitive stroke weight stream.
func WithStroked() AllocOption {
	return func(o *allocOptions) {
		o.stroked = true
	}
}

// WithColored allocates a per-primitive packed color stream.
func WithColored() AllocOption {
	return func(o *allocOptions) {
		o.colored = true
	}
}

// WithClosed joins the last vertex of each polyline back to its first.
// Ignored for non-polyline kinds.
func WithClosed() AllocOption {
	return func(o *allocOptions) {
		o.closed = true
	}
}

// Buffers are the writable views of one registration.
type Buffers struct {
	// Kind is the registered primitive kind.
	Kind PrimitiveKind

	// Coords has shape [count, coords per primitive].
	Coords *TypedView[float32]

	// Weights has shape [count, 1], or is nil when not stroked.
	Weights *TypedView[float32]

	// Colors has shape [count, 1] of packed ARGB values, or is nil when
	// not colored.
	Colors *TypedView[int32]
}

// Registration is the live set of arenas for one primitive kind.
type Registration struct {
	kind   PrimitiveKind
	count  int
	stride int
	closed bool

	coords  *Arena
	weights *Arena
	colors  *Arena

	buffers *Buffers
	batch   render.Batch
}

// Kind returns the primitive kind.
func (r *Registration) Kind() PrimitiveKind { return r.kind }

// Count returns the number of primitives.
func (r *Registration) Count() int { return r.count }

// Stride returns the coordinate count per primitive.
func (r *Registration) Stride() int { return r.stride }

// Closed reports whether polylines are closed.
func (r *Registration) Closed() bool { return r.closed }

// Buffers returns the registration's views.
func (r *Registration) Buffers() *Buffers { return r.buffers }

// Arenas returns the allocated arenas: coords first, then weights and
// colors when present.
func (r *Registration) Arenas() []*Arena {
	out := []*Arena{r.coords}
	if r.weights != nil {
		out = append(out, r.weights)
	}
	if r.colors != nil {
		out = append(out, r.colors)
	}
	return out
}

// Bytes returns the total arena size.
func (r *Registration) Bytes() int {
	n := 0
	for _, a := range r.Arenas() {
		n += a.Size()
	}
	return n
}

func (r *Registration) release() error {
	var errs []error
	for _, a := range r.Arenas() {
		if err := a.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Registry allocates arenas and installs the resulting registrations in a
// Bridge.
type Registry struct {
	alloc  native.Allocator
	bridge *Bridge
}

// NewRegistry returns a Registry allocating from alloc and installing into
// bridge. A nil alloc selects the platform allocator. The bridge is
// required; Allocate fails with ErrInvalidArgument without one.
func NewRegistry(alloc native.Allocator, bridge *Bridge) *Registry {
	if alloc == nil {
		alloc = native.Default()
	}
	return &Registry{alloc: alloc, bridge: bridge}
}

// Bridge returns the bridge registrations are installed into.
func (r *Registry) Bridge() *Bridge { return r.bridge }

// AllocateNamed is Allocate with the kind given by name, e.g. "polyline_2d".
func (r *Registry) AllocateNamed(name string, count int, opts ...AllocOption) (*Buffers, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	return r.Allocate(kind, count, opts...)
}

// Allocate reserves the streams for count primitives of kind and installs
// them as the live registration for kind, releasing any previous one.
//
// Coordinates are always allocated; weights and colors only when
// requested with WithStroked and WithColored. Nothing is allocated when
// the arguments are invalid, and a failed allocation leaves the previous
// registration live.
func (r *Registry) Allocate(kind PrimitiveKind, count int, opts ...AllocOption) (*Buffers, error) {
	if r.bridge == nil {
		return nil, newError("allocate", CodeInvalidArgument, "registry has no bridge", nil)
	}
	var o allocOptions
	for _, opt := range opts {
		opt(&o)
	}

	stride, err := kind.coordsFor(o.coords)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, newError("allocate", CodeInvalidArgument,
			fmt.Sprintf("%s: primitive count %d", kind, count), nil)
	}
	if o.coords != 0 && o.coords != stride {
		Logger().Debug("directbuf: ignoring coordinate count for fixed kind",
			"kind", kind.String(), "supplied", o.coords, "coords", stride)
	}
	if count > maxElements/stride {
		return nil, newError("allocate", CodeInvalidArgument,
			fmt.Sprintf("%s: %d primitives of %d coordinates overflows", kind, count, stride), nil)
	}

	reg := &Registration{
		kind:   kind,
		count:  count,
		stride: stride,
		closed: o.closed && kind.IsPolyline(),
	}
	if err := r.allocateArenas(reg, o); err != nil {
		return nil, err
	}
	reg.buffers = reg.views()

	Logger().Debug("directbuf: allocated",
		"kind", kind.String(), "count", count, "coords", stride,
		"stroked", o.stroked, "colored", o.colored, "bytes", reg.Bytes())

	r.bridge.install(reg)
	return reg.buffers, nil
}

// maxElements bounds a single arena so its byte size fits in an int.
const maxElements = int(^uint(0)>>1) / elementSize

func (r *Registry) allocateArenas(reg *Registration, o allocOptions) error {
	name := reg.kind.String()

	coords, err := newArena(r.alloc, name+".coords", Float32, reg.count*reg.stride)
	if err != nil {
		return err
	}
	reg.coords = coords

	if o.stroked {
		reg.weights, err = newArena(r.alloc, name+".weights", Float32, reg.count)
		if err != nil {
			return r.rollback(reg, err)
		}
	}
	if o.colored {
		reg.colors, err = newArena(r.alloc, name+".colors", Int32, reg.count)
		if err != nil {
			return r.rollback(reg, err)
		}
	}
	return nil
}

// rollback frees the arenas already allocated for reg and returns cause,
// joined with any release failure.
func (r *Registry) rollback(reg *Registration, cause error) error {
	if err := reg.release(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (r *Registration) views() *Buffers {
	b := &Buffers{
		Kind:   r.kind,
		Coords: newView[float32](r.coords, r.count, r.stride),
	}
	if r.weights != nil {
		b.Weights = newView[float32](r.weights, r.count, 1)
	}
	if r.colors != nil {
		b.Colors = newView[int32](r.colors, r.count, 1)
	}
	return b
}
