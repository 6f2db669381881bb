package directbuf

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/directbuf/internal/native"
	"github.com/gogpu/directbuf/render"
)

// failingRenderer rejects every batch with err.
type failingRenderer struct {
	err     error
	flushes int
}

func (r *failingRenderer) DrawBatch(render.RenderTarget, *render.Batch) error { return r.err }
func (r *failingRenderer) Flush() error                                      { r.flushes++; return nil }

// kindFailingRenderer records like RecordingRenderer but rejects batches
// of one label while fail is set.
type kindFailingRenderer struct {
	*render.RecordingRenderer
	label string
	fail  bool
}

func (r *kindFailingRenderer) DrawBatch(target render.RenderTarget, b *render.Batch) error {
	if r.fail && b.Label == r.label {
		return errors.New("device lost")
	}
	return r.RecordingRenderer.DrawBatch(target, b)
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	rec := render.NewRecordingRenderer(0)
	b := NewBridge(rec, nil)
	if err := b.Submit(); err != nil {
		t.Fatalf("Submit() = %v, want nil", err)
	}
	if len(rec.Frames()) != 0 {
		t.Error("empty Submit should not reach the renderer")
	}
}

func TestSubmitOrderAndLayout(t *testing.T) {
	reg, _, rec := newTestRegistry(t)

	if _, err := reg.Allocate(Line3D, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Allocate(Point2D, 3, WithColored()); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Allocate(Polyline2D, 1, WithCoords(8), WithStroked(), WithClosed()); err != nil {
		t.Fatal(err)
	}
	if err := reg.Bridge().Submit(); err != nil {
		t.Fatal(err)
	}

	frame := rec.LastFrame()
	if len(frame) != 3 {
		t.Fatalf("frame has %d batches, want 3", len(frame))
	}
	want := []struct {
		label    string
		topology gputypes.PrimitiveTopology
		dim      int
		count    int
		stride   int
		closed   bool
		weights  bool
		colors   bool
	}{
		{"line_3d", gputypes.PrimitiveTopologyLineList, 3, 2, 6, false, false, false},
		{"point_2d", gputypes.PrimitiveTopologyPointList, 2, 3, 2, false, false, true},
		{"polyline_2d", gputypes.PrimitiveTopologyLineStrip, 2, 1, 8, true, true, false},
	}
	for i, w := range want {
		got := frame[i]
		if got.Label != w.label || got.Topology != w.topology || got.Dim != w.dim ||
			got.Count != w.count || got.Stride != w.stride || got.Closed != w.closed {
			t.Errorf("batch %d = %s/%v/%d/%d/%d/%v, want %+v", i,
				got.Label, got.Topology, got.Dim, got.Count, got.Stride, got.Closed, w)
		}
		if (got.Weights != nil) != w.weights || (got.Colors != nil) != w.colors {
			t.Errorf("batch %d streams: weights=%v colors=%v", i, got.Weights != nil, got.Colors != nil)
		}
	}
}

func TestSubmitDefaults(t *testing.T) {
	rec := render.NewRecordingRenderer(0)
	bridge := NewBridge(rec, nil)
	bridge.SetDefaultStroke(3, -16776961)
	reg := NewRegistry(native.Heap{}, bridge)
	defer bridge.Close()

	if _, err := reg.Allocate(Point2D, 1); err != nil {
		t.Fatal(err)
	}
	if err := bridge.Submit(); err != nil {
		t.Fatal(err)
	}
	b := rec.LastFrame()[0]
	if b.WeightAt(0) != 3 || b.ColorAt(0) != -16776961 {
		t.Errorf("defaults = (%v, %d), want (3, -16776961)", b.WeightAt(0), b.ColorAt(0))
	}
}

func TestSubmitCarriesCurrentTick(t *testing.T) {
	reg, _, rec := newTestRegistry(t)

	bufs, err := reg.Allocate(Line2D, 2, WithStroked(), WithColored())
	if err != nil {
		t.Fatal(err)
	}
	red, _ := Pack(255, 0, 0)
	blue, _ := Pack(0, 0, 255)

	ticks := []struct {
		coords  []float32
		weights []float32
		colors  []int32
	}{
		{[]float32{0, 0, 1, 1, 2, 2, 3, 3}, []float32{1, 2}, []int32{red, blue}},
		{[]float32{9, 8, 7, 6, 5, 4, 3, 2}, []float32{4, 5}, []int32{blue, red}},
	}
	for i, tick := range ticks {
		if err := bufs.Coords.CopyFrom(tick.coords); err != nil {
			t.Fatal(err)
		}
		if err := bufs.Weights.CopyFrom(tick.weights); err != nil {
			t.Fatal(err)
		}
		if err := bufs.Colors.CopyFrom(tick.colors); err != nil {
			t.Fatal(err)
		}
		if err := reg.Bridge().Submit(); err != nil {
			t.Fatal(err)
		}
		got := rec.LastFrame()[0]
		if !slices.Equal(got.Coords, tick.coords) ||
			!slices.Equal(got.Weights, tick.weights) ||
			!slices.Equal(got.Colors, tick.colors) {
			t.Errorf("tick %d: batch = %v %v %v, want %v %v %v", i,
				got.Coords, got.Weights, got.Colors, tick.coords, tick.weights, tick.colors)
		}
	}
}

func TestSubmitAliasesArenaMemory(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	bufs, err := reg.Allocate(Point3D, 4)
	if err != nil {
		t.Fatal(err)
	}
	r, _ := reg.Bridge().Registration(Point3D)
	if &r.batch.Coords[0] != &bufs.Coords.Data()[0] {
		t.Error("batch coords should alias the arena")
	}
}

func TestSubmitDoesNotWriteArenas(t *testing.T) {
	bridge := NewBridge(render.NewSoftwareRenderer(), render.NewPixmapTarget(32, 32))
	reg := NewRegistry(native.Heap{}, bridge)
	defer bridge.Close()

	bufs, err := reg.Allocate(Polyline2D, 2, WithCoords(6), WithStroked(), WithColored(), WithClosed())
	if err != nil {
		t.Fatal(err)
	}
	_ = bufs.Coords.CopyFrom([]float32{1, 1, 30, 1, 15, 30, 5, 5, 10, 5, 5, 10})
	_ = bufs.Weights.CopyFrom([]float32{2, 1})
	_ = bufs.Colors.Fill(-1)

	r, _ := reg.Bridge().Registration(Polyline2D)
	var before [][]byte
	for _, a := range r.Arenas() {
		before = append(before, bytes.Clone(a.Bytes()))
	}
	if err := bridge.Submit(); err != nil {
		t.Fatal(err)
	}
	for i, a := range r.Arenas() {
		if !bytes.Equal(a.Bytes(), before[i]) {
			t.Errorf("arena %s changed during Submit", a.Label())
		}
	}
}

func TestReplaceReleasesPrevious(t *testing.T) {
	reg, budget, rec := newTestRegistry(t)

	old, err := reg.Allocate(Point2D, 10, WithColored())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Allocate(Line2D, 1); err != nil {
		t.Fatal(err)
	}
	fresh, err := reg.Allocate(Point2D, 5)
	if err != nil {
		t.Fatal(err)
	}

	if !old.Coords.Released() || !old.Colors.Released() {
		t.Error("replaced arenas should be released synchronously")
	}
	if err := old.Coords.Set(0, 0, 1); !errors.Is(err, ErrReleased) {
		t.Errorf("write to replaced view: %v, want ErrReleased", err)
	}
	if fresh.Coords.Released() || fresh.Coords.Len() != 5 {
		t.Error("new registration should be live")
	}
	if !slices.Equal(rec.Released(), []string{"point_2d"}) {
		t.Errorf("renderer releases = %v, want [point_2d]", rec.Released())
	}
	if s := budget.Stats(); s.LiveBlocks != 2 {
		t.Errorf("live blocks = %d, want 2 (point_2d coords, line_2d coords)", s.LiveBlocks)
	}

	// The replaced kind keeps its first slot.
	if got := reg.Bridge().Kinds(); !slices.Equal(got, []PrimitiveKind{Point2D, Line2D}) {
		t.Errorf("Kinds() = %v", got)
	}
	if err := reg.Bridge().Submit(); err != nil {
		t.Fatal(err)
	}
	if frame := rec.LastFrame(); len(frame) != 2 || frame[0].Count != 5 {
		t.Errorf("frame after replacement = %d batches", len(frame))
	}
}

func TestUnregister(t *testing.T) {
	reg, budget, rec := newTestRegistry(t)
	bufs, err := reg.Allocate(Line2D, 4, WithStroked())
	if err != nil {
		t.Fatal(err)
	}
	if !reg.Bridge().Unregister(Line2D) {
		t.Fatal("Unregister() = false")
	}
	if reg.Bridge().Unregister(Line2D) {
		t.Error("second Unregister() = true")
	}
	if !bufs.Weights.Released() || budget.Stats().LiveBlocks != 0 {
		t.Error("Unregister should free all arenas")
	}
	if reg.Bridge().Len() != 0 {
		t.Error("bridge should be empty")
	}
	if err := reg.Bridge().Submit(); err != nil {
		t.Fatal(err)
	}
	if len(rec.Frames()) != 0 {
		t.Error("Submit after Unregister should be a no-op")
	}
}

func TestSubmitWrapsRendererError(t *testing.T) {
	boom := errors.New("device lost")
	fr := &failingRenderer{err: boom}
	bridge := NewBridge(fr, nil)
	reg := NewRegistry(native.Heap{}, bridge)
	defer bridge.Close()

	if _, err := reg.Allocate(Polyline3D, 1, WithCoords(6)); err != nil {
		t.Fatal(err)
	}
	err := bridge.Submit()
	if !errors.Is(err, boom) {
		t.Fatalf("Submit() = %v, want wrapped %v", err, boom)
	}
	if want := "directbuf: submit polyline_3d: device lost"; err.Error() != want {
		t.Errorf("Submit() = %q, want %q", err, want)
	}
	if fr.flushes != 0 {
		t.Error("a failed frame should not be flushed")
	}
}

func TestSubmitErrorDiscardsFrame(t *testing.T) {
	fr := &kindFailingRenderer{RecordingRenderer: render.NewRecordingRenderer(0), label: "line_2d"}
	bridge := NewBridge(fr, nil)
	reg := NewRegistry(native.Heap{}, bridge)
	defer bridge.Close()

	points, err := reg.Allocate(Point2D, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Allocate(Line2D, 1); err != nil {
		t.Fatal(err)
	}

	if err := points.Coords.CopyFrom([]float32{1, 1}); err != nil {
		t.Fatal(err)
	}
	fr.fail = true
	if err := bridge.Submit(); err == nil {
		t.Fatal("Submit() should fail while line_2d is rejected")
	}

	if err := points.Coords.CopyFrom([]float32{2, 2}); err != nil {
		t.Fatal(err)
	}
	fr.fail = false
	if err := bridge.Submit(); err != nil {
		t.Fatal(err)
	}

	if n := len(fr.Frames()); n != 1 {
		t.Fatalf("recorded %d frames, want 1", n)
	}
	frame := fr.LastFrame()
	if len(frame) != 2 {
		t.Fatalf("frame has %d batches, want 2: the aborted frame leaked into the next", len(frame))
	}
	if frame[0].Label != "point_2d" || !slices.Equal(frame[0].Coords, []float32{2, 2}) {
		t.Errorf("first batch = %s %v, want point_2d [2 2]", frame[0].Label, frame[0].Coords)
	}
}

func TestSubmitSkipsEmptyRegistrations(t *testing.T) {
	reg, _, rec := newTestRegistry(t)

	bufs, err := reg.Allocate(Point2D, 0, WithStroked(), WithColored())
	if err != nil {
		t.Fatalf("Allocate(Point2D, 0) = %v", err)
	}
	if bufs.Coords.Len() != 0 || bufs.Coords.Size() != 0 || bufs.Weights.Len() != 0 || bufs.Colors.Len() != 0 {
		t.Errorf("empty registration views = %d/%d/%d", bufs.Coords.Len(), bufs.Weights.Len(), bufs.Colors.Len())
	}
	if _, err := reg.Allocate(Line2D, 1); err != nil {
		t.Fatal(err)
	}
	if err := reg.Bridge().Submit(); err != nil {
		t.Fatal(err)
	}

	frame := rec.LastFrame()
	if len(frame) != 1 || frame[0].Label != "line_2d" {
		t.Fatalf("frame = %d batches, want only line_2d", len(frame))
	}
	if got := reg.Bridge().Kinds(); !slices.Equal(got, []PrimitiveKind{Point2D, Line2D}) {
		t.Errorf("Kinds() = %v, empty registration should stay live", got)
	}
}

func BenchmarkSubmit(b *testing.B) {
	rec := &failingRenderer{}
	bridge := NewBridge(rec, nil)
	reg := NewRegistry(native.Default(), bridge)
	defer bridge.Close()
	for _, k := range Kinds() {
		if _, err := reg.Allocate(k, 1000, WithCoords(12)); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = bridge.Submit()
	}
}
