package directbuf_test

import (
	"fmt"

	"github.com/gogpu/directbuf"
	"github.com/gogpu/directbuf/render"
)

func ExamplePack() {
	blue, _ := directbuf.Pack(0, 0, 255)
	halfRed, _ := directbuf.Pack(128, 255, 0, 0)
	fmt.Println(blue, halfRed)
	fmt.Printf("%#08x\n", uint32(halfRed))
	// Output:
	// -16776961 -2130771968
	// 0x80ff0000
}

func ExampleContext_Allocate() {
	dc := directbuf.NewContext(800, 600, directbuf.WithRenderer(render.NewRecordingRenderer(1)))
	defer dc.Close()

	bufs, err := dc.Allocate(directbuf.Polyline2D, 100,
		directbuf.WithCoords(8), directbuf.WithStroked(), directbuf.WithColored())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(bufs.Coords.Data()), len(bufs.Weights.Data()), len(bufs.Colors.Data()))

	_, err = dc.Allocate(directbuf.Polyline2D, 100)
	fmt.Println(err)
	// Output:
	// 800 100 100
	// directbuf: allocate: invalid_argument: polyline_2d requires a per-primitive coordinate count
}

func ExampleContext_Tick() {
	rec := render.NewRecordingRenderer(1)
	dc := directbuf.NewContext(100, 100, directbuf.WithRenderer(rec))
	defer dc.Close()

	bufs, _ := dc.Allocate(directbuf.Line2D, 1, directbuf.WithColored())
	red, _ := directbuf.Pack(255, 0, 0)

	_ = dc.Tick(func() error {
		if err := bufs.Coords.SetRow(0, []float32{0, 0, 100, 100}); err != nil {
			return err
		}
		return bufs.Colors.Set(0, 0, red)
	})

	b := rec.LastFrame()[0]
	fmt.Println(b.Label, b.Coords, render.ARGB(b.Colors[0]))
	// Output: line_2d [0 0 100 100] {255 0 0 255}
}
