package directbuf

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/directbuf/internal/native"
)

// ElementType is the scalar type stored in an Arena.
type ElementType int

const (
	// Float32 elements back coordinate and weight streams.
	Float32 ElementType = iota
	// Int32 elements back packed color streams.
	Int32
)

// elementSize is the byte size of both element types.
const elementSize = 4

// String returns "float32" or "int32".
func (t ElementType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// VertexFormat returns the GPU vertex format of a single element.
func (t ElementType) VertexFormat() gputypes.VertexFormat {
	if t == Int32 {
		return gputypes.VertexFormatSint32
	}
	return gputypes.VertexFormatFloat32
}

// Arena owns one contiguous native allocation holding a fixed number of
// elements of one type. Views created over it alias its memory and become
// invalid when the arena is released.
type Arena struct {
	label string
	elem  ElementType
	count int
	block *native.Block
	alloc native.Allocator
}

// newArena allocates count elements from alloc. A zero count yields an
// empty arena that holds no memory and never touches alloc.
func newArena(alloc native.Allocator, label string, elem ElementType, count int) (*Arena, error) {
	if count < 0 || count > math.MaxInt/elementSize {
		return nil, newError("allocate", CodeInvalidArgument,
			fmt.Sprintf("%s: element count %d", label, count), nil)
	}
	if count == 0 {
		return &Arena{label: label, elem: elem, block: native.Empty(), alloc: native.Heap{}}, nil
	}
	block, err := alloc.Alloc(count * elementSize)
	if err != nil {
		return nil, newError("allocate", CodeAllocationFailure,
			fmt.Sprintf("%s: %d bytes", label, count*elementSize), err)
	}
	return &Arena{
		label: label,
		elem:  elem,
		count: count,
		block: block,
		alloc: alloc,
	}, nil
}

// Label returns the stream name, e.g. "polyline_2d.coords".
func (a *Arena) Label() string { return a.label }

// ElementType returns the element type.
func (a *Arena) ElementType() ElementType { return a.elem }

// Len returns the number of elements.
func (a *Arena) Len() int { return a.count }

// Size returns the size in bytes.
func (a *Arena) Size() int { return a.count * elementSize }

// Released reports whether the memory has been returned.
func (a *Arena) Released() bool { return a.block.Freed() }

// Bytes returns the arena memory, or nil after Release.
func (a *Arena) Bytes() []byte { return a.block.Bytes() }

// Addr returns the address of the first byte, or 0 after Release.
func (a *Arena) Addr() uintptr { return a.block.Addr() }

// Descriptor describes a GPU buffer able to receive this arena's bytes.
func (a *Arena) Descriptor() gputypes.BufferDescriptor {
	return gputypes.BufferDescriptor{
		Label: a.label,
		Size:  uint64(a.Size()),
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	}
}

// Release returns the memory to the allocator. Releasing twice is a no-op.
func (a *Arena) Release() error {
	if a == nil || a.block.Freed() {
		return nil
	}
	if err := a.alloc.Free(a.block); err != nil {
		return newError("release", CodeAllocationFailure, a.label, err)
	}
	return nil
}

// elements reinterprets the arena bytes as a []T of length Len. It returns
// nil once the arena has been released.
func elements[T float32 | int32](a *Arena) []T {
	b := a.block.Bytes()
	if b == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), a.count)
}
