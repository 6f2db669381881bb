// Package directbuf shares native memory between a producer and a batched
// 2D/3D primitive renderer without copying per frame.
//
// # Overview
//
// A producer (a simulation, a data feed, a scripting host) allocates one
// set of streams per primitive kind once, then rewrites the streams in
// place every tick. The renderer reads the very same bytes when the frame
// is submitted: one batched draw per kind, no per-primitive calls.
//
// # Quick Start
//
//	import "github.com/gogpu/directbuf"
//
//	dc := directbuf.NewContext(800, 600)
//	defer dc.Close()
//
//	// 100 closed quads, each with its own weight and color
//	bufs, err := dc.Allocate(directbuf.Polyline2D, 100,
//	    directbuf.WithCoords(8), directbuf.WithStroked(),
//	    directbuf.WithColored(), directbuf.WithClosed())
//	if err != nil {
//	    return err
//	}
//
//	red, _ := directbuf.Pack(255, 0, 0)
//	_ = bufs.Colors.Fill(red)
//	_ = bufs.Weights.Fill(2)
//
//	err = dc.Tick(func() error {
//	    return bufs.Coords.SetRow(0, []float32{10, 10, 90, 10, 90, 90, 10, 90})
//	})
//
//	dc.SavePNG("frame.png")
//
// # Primitive Kinds
//
// Each kind fixes the number of coordinates per primitive:
//
//	Point2D     x, y                       2
//	Point3D     x, y, z                    3
//	Line2D      x0, y0, x1, y1             4
//	Line3D      x0, y0, z0, x1, y1, z1     6
//	Polyline2D  supplied with WithCoords   multiple of 2, at least 6
//	Polyline3D  supplied with WithCoords   multiple of 3, at least 6
//
// # Streams
//
// Coordinates are always allocated as a [count, coords] float32 view.
// WithStroked adds a [count, 1] float32 weight view and WithColored a
// [count, 1] int32 color view. Primitives without a stream use the
// context's default stroke weight and color.
//
// Colors are packed 0xAARRGGBB values stored as signed 32-bit integers;
// use Pack, PackWith or PackColor to build them.
//
// # Ownership
//
// Each stream lives in an Arena owned by the context. Allocating a kind
// again replaces its registration and releases the old arenas before
// returning; views of the old registration then report ErrReleased.
// Slices obtained from Row and Data alias arena memory and must not be
// kept past the registration's lifetime.
//
// # Renderers
//
// Any render.Renderer can consume the batches: the CPU
// render.SoftwareRenderer (default), the wgpu-backed render.GPURenderer,
// or render.RecordingRenderer for headless inspection.
package directbuf

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
