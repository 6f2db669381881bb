package directbuf

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// PrimitiveKind identifies the shape family of a batch.
type PrimitiveKind int

const (
	// Point2D is a single point: x, y.
	Point2D PrimitiveKind = iota
	// Point3D is a single point: x, y, z.
	Point3D
	// Line2D is a segment: x0, y0, x1, y1.
	Line2D
	// Line3D is a segment: x0, y0, z0, x1, y1, z1.
	Line3D
	// Polyline2D is a strip of 2D vertices; the length is supplied by the caller.
	Polyline2D
	// Polyline3D is a strip of 3D vertices; the length is supplied by the caller.
	Polyline3D

	kindCount
)

// Minimum coordinates per polyline: three 2D vertices or two 3D vertices.
const minPolylineCoords = 6

var kindNames = [kindCount]string{
	Point2D:    "point_2d",
	Point3D:    "point_3d",
	Line2D:     "line_2d",
	Line3D:     "line_3d",
	Polyline2D: "polyline_2d",
	Polyline3D: "polyline_3d",
}

// Kinds returns every primitive kind in declaration order.
func Kinds() []PrimitiveKind {
	out := make([]PrimitiveKind, kindCount)
	for i := range out {
		out[i] = PrimitiveKind(i)
	}
	return out
}

// ParseKind maps a kind name ("point_2d", ..., "polyline_3d") to its
// PrimitiveKind. Matching is case-insensitive.
func ParseKind(name string) (PrimitiveKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, kn := range kindNames {
		if kn == n {
			return PrimitiveKind(k), nil
		}
	}
	return 0, newError("parse kind", CodeInvalidArgument, fmt.Sprintf("unknown primitive kind %q", name), nil)
}

// Valid reports whether k is one of the declared kinds.
func (k PrimitiveKind) Valid() bool {
	return k >= 0 && k < kindCount
}

// String returns the kind name.
func (k PrimitiveKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("PrimitiveKind(%d)", int(k))
	}
	return kindNames[k]
}

// Dimension returns the number of coordinates per vertex.
func (k PrimitiveKind) Dimension() int {
	switch k {
	case Point2D, Line2D, Polyline2D:
		return 2
	case Point3D, Line3D, Polyline3D:
		return 3
	default:
		return 0
	}
}

// CoordsPerPrimitive returns the fixed coordinate count of k. ok is false
// for polylines, whose count is supplied at allocation, and for invalid
// kinds.
func (k PrimitiveKind) CoordsPerPrimitive() (n int, ok bool) {
	switch k {
	case Point2D:
		return 2, true
	case Point3D:
		return 3, true
	case Line2D:
		return 4, true
	case Line3D:
		return 6, true
	default:
		return 0, false
	}
}

// IsPolyline reports whether k takes a caller-supplied coordinate count.
func (k PrimitiveKind) IsPolyline() bool {
	return k == Polyline2D || k == Polyline3D
}

// Topology returns the GPU primitive topology used to draw k.
func (k PrimitiveKind) Topology() gputypes.PrimitiveTopology {
	switch k {
	case Point2D, Point3D:
		return gputypes.PrimitiveTopologyPointList
	case Line2D, Line3D:
		return gputypes.PrimitiveTopologyLineList
	case Polyline2D, Polyline3D:
		return gputypes.PrimitiveTopologyLineStrip
	default:
		return gputypes.PrimitiveTopologyPointList
	}
}

// coordsFor resolves the per-primitive coordinate count for an allocation.
// supplied is the caller's count, 0 when absent.
func (k PrimitiveKind) coordsFor(supplied int) (int, error) {
	if !k.Valid() {
		return 0, newError("allocate", CodeInvalidArgument, fmt.Sprintf("unknown primitive kind %d", int(k)), nil)
	}
	if n, ok := k.CoordsPerPrimitive(); ok {
		return n, nil
	}
	if supplied == 0 {
		return 0, newError("allocate", CodeInvalidArgument,
			k.String()+" requires a per-primitive coordinate count", nil)
	}
	dim := k.Dimension()
	if supplied < minPolylineCoords || supplied%dim != 0 {
		return 0, newError("allocate", CodeInvalidArgument,
			fmt.Sprintf("%s coordinate count %d must be a multiple of %d and at least %d",
				k, supplied, dim, minPolylineCoords), nil)
	}
	return supplied, nil
}
