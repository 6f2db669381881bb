package directbuf

import (
	"errors"
	"testing"

	"github.com/gogpu/directbuf/internal/native"
	"github.com/gogpu/directbuf/render"
)

// failingAllocator fails every allocation after the first ok ones.
type failingAllocator struct {
	base  *native.Budget
	ok    int
	calls int
}

func (a *failingAllocator) Alloc(size int) (*native.Block, error) {
	a.calls++
	if a.calls > a.ok {
		return nil, errors.New("mmap: cannot allocate memory")
	}
	return a.base.Alloc(size)
}

func (a *failingAllocator) Free(b *native.Block) error {
	return a.base.Free(b)
}

func newTestRegistry(t *testing.T) (*Registry, *native.Budget, *render.RecordingRenderer) {
	t.Helper()
	rec := render.NewRecordingRenderer(0)
	budget := native.NewBudget(native.Heap{}, 0)
	reg := NewRegistry(budget, NewBridge(rec, nil))
	t.Cleanup(reg.Bridge().Close)
	return reg, budget, rec
}

func TestAllocateFixedKinds(t *testing.T) {
	tests := []struct {
		kind   PrimitiveKind
		count  int
		coords int
	}{
		{Point2D, 10, 2},
		{Point3D, 10, 3},
		{Line2D, 5, 4},
		{Line3D, 5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			reg, _, _ := newTestRegistry(t)
			bufs, err := reg.Allocate(tt.kind, tt.count)
			if err != nil {
				t.Fatal(err)
			}
			if c, w := bufs.Coords.Shape(); c != tt.count || w != tt.coords {
				t.Errorf("Coords.Shape() = (%d, %d), want (%d, %d)", c, w, tt.count, tt.coords)
			}
			if len(bufs.Coords.Data()) != tt.count*tt.coords {
				t.Errorf("len(Coords.Data()) = %d", len(bufs.Coords.Data()))
			}
			if bufs.Weights != nil || bufs.Colors != nil {
				t.Error("weights and colors should be nil when not requested")
			}
			if bufs.Kind != tt.kind {
				t.Errorf("Kind = %v", bufs.Kind)
			}
		})
	}
}

func TestAllocatePolylineStreams(t *testing.T) {
	reg, budget, _ := newTestRegistry(t)

	bufs, err := reg.Allocate(Polyline2D, 100, WithCoords(8), WithStroked(), WithColored())
	if err != nil {
		t.Fatal(err)
	}
	if n := len(bufs.Coords.Data()); n != 800 {
		t.Errorf("coords = %d floats, want 800", n)
	}
	if bufs.Weights == nil || len(bufs.Weights.Data()) != 100 {
		t.Errorf("weights = %v, want 100 floats", bufs.Weights)
	}
	if bufs.Colors == nil || len(bufs.Colors.Data()) != 100 {
		t.Errorf("colors = %v, want 100 ints", bufs.Colors)
	}
	if w := bufs.Weights.Width(); w != 1 {
		t.Errorf("Weights.Width() = %d, want 1", w)
	}

	stats := budget.Stats()
	if stats.LiveBlocks != 3 || stats.UsedBytes != (800+100+100)*4 {
		t.Errorf("stats = %v, want 3 blocks of 4000 bytes", stats)
	}
}

func TestAllocatePolylineWithoutCoords(t *testing.T) {
	reg, budget, _ := newTestRegistry(t)

	_, err := reg.Allocate(Polyline2D, 10)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if budget.Stats().Allocs != 0 {
		t.Error("no memory should be allocated")
	}
	if _, ok := reg.Bridge().Registration(Polyline2D); ok {
		t.Error("no registration should exist")
	}
}

func TestAllocateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		kind  PrimitiveKind
		count int
		opts  []AllocOption
	}{
		{"unknown kind", PrimitiveKind(17), 10, nil},
		{"negative count", Line2D, -3, nil},
		{"polyline odd coords", Polyline2D, 10, []AllocOption{WithCoords(7)}},
		{"overflow", Line3D, maxElements, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, budget, _ := newTestRegistry(t)
			if _, err := reg.Allocate(tt.kind, tt.count, tt.opts...); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
			if budget.Stats().Allocs != 0 || reg.Bridge().Len() != 0 {
				t.Error("invalid allocation left state behind")
			}
		})
	}
}

func TestAllocateWithoutBridge(t *testing.T) {
	budget := native.NewBudget(native.Heap{}, 0)
	reg := NewRegistry(budget, nil)
	if _, err := reg.Allocate(Point2D, 4); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Allocate() = %v, want ErrInvalidArgument", err)
	}
	if budget.Stats().Allocs != 0 {
		t.Error("Allocate without a bridge should not allocate")
	}
}

func TestAllocateNamed(t *testing.T) {
	reg, _, _ := newTestRegistry(t)

	bufs, err := reg.AllocateNamed("Polyline_3D", 4, WithCoords(9))
	if err != nil {
		t.Fatal(err)
	}
	if bufs.Kind != Polyline3D || bufs.Coords.Width() != 9 {
		t.Errorf("got kind %v width %d", bufs.Kind, bufs.Coords.Width())
	}

	if _, err := reg.AllocateNamed("bogus_kind", 4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AllocateNamed(bogus_kind) error = %v, want ErrInvalidArgument", err)
	}
}

func TestAllocateFixedKindIgnoresCoords(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	bufs, err := reg.Allocate(Line2D, 3, WithCoords(10), WithClosed())
	if err != nil {
		t.Fatal(err)
	}
	if bufs.Coords.Width() != 4 {
		t.Errorf("Width() = %d, want 4", bufs.Coords.Width())
	}
	r, _ := reg.Bridge().Registration(Line2D)
	if r.Closed() {
		t.Error("closed flag should only apply to polylines")
	}
}

func TestAllocateRollback(t *testing.T) {
	budget := native.NewBudget(native.Heap{}, 0)
	alloc := &failingAllocator{base: budget, ok: 1}
	rec := render.NewRecordingRenderer(0)
	reg := NewRegistry(alloc, NewBridge(rec, nil))

	// Colors fail after coords succeeded: coords must be freed again.
	_, err := reg.Allocate(Line2D, 10, WithColored())
	if !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("error = %v, want ErrAllocationFailure", err)
	}
	if s := budget.Stats(); s.LiveBlocks != 0 || s.Allocs != 1 || s.Frees != 1 {
		t.Errorf("stats = %v, want the coords block freed", s)
	}
	if reg.Bridge().Len() != 0 {
		t.Error("failed allocation must not register")
	}
}

func TestAllocateFailureKeepsPrevious(t *testing.T) {
	budget := native.NewBudget(native.Heap{}, 0)
	alloc := &failingAllocator{base: budget, ok: 1}
	reg := NewRegistry(alloc, NewBridge(render.NewRecordingRenderer(0), nil))
	defer reg.Bridge().Close()

	first, err := reg.Allocate(Point2D, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Allocate(Point2D, 4); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("error = %v, want ErrAllocationFailure", err)
	}
	if first.Coords.Released() {
		t.Error("previous registration should stay live after a failed replacement")
	}
	if r, ok := reg.Bridge().Registration(Point2D); !ok || r.Count() != 2 {
		t.Error("previous registration should still be installed")
	}
}

func TestRegistrationAccessors(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	bufs, err := reg.Allocate(Polyline2D, 3, WithCoords(6), WithStroked(), WithClosed())
	if err != nil {
		t.Fatal(err)
	}
	r, ok := reg.Bridge().Registration(Polyline2D)
	if !ok {
		t.Fatal("registration missing")
	}
	if r.Kind() != Polyline2D || r.Count() != 3 || r.Stride() != 6 || !r.Closed() {
		t.Errorf("registration = %v/%d/%d/%v", r.Kind(), r.Count(), r.Stride(), r.Closed())
	}
	if r.Buffers() != bufs {
		t.Error("Buffers() should return the views handed out by Allocate")
	}
	arenas := r.Arenas()
	if len(arenas) != 2 || arenas[0].Label() != "polyline_2d.coords" || arenas[1].Label() != "polyline_2d.weights" {
		t.Errorf("Arenas() = %v", arenas)
	}
	if r.Bytes() != (18+3)*4 {
		t.Errorf("Bytes() = %d", r.Bytes())
	}
}
