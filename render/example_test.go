// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render_test

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/directbuf/render"
)

// ExampleNewSoftwareRenderer draws two line segments on the CPU.
func ExampleNewSoftwareRenderer() {
	renderer := render.NewSoftwareRenderer()
	target := render.NewPixmapTarget(100, 100)

	batch := &render.Batch{
		Label:         "line_2d",
		Topology:      gputypes.PrimitiveTopologyLineList,
		Dim:           2,
		Stride:        4,
		Count:         2,
		Coords:        []float32{10, 50, 90, 50, 50, 10, 50, 90},
		DefaultWeight: 2,
		DefaultColor:  -16777216, // opaque black
	}
	if err := renderer.DrawBatch(target, batch); err != nil {
		fmt.Println("draw failed:", err)
		return
	}
	_ = renderer.Flush()

	fmt.Println(target.Image().RGBAAt(50, 50))
	// Output: {0 0 0 255}
}

// ExampleRecordingRenderer captures what a frame submitted.
func ExampleRecordingRenderer() {
	rec := render.NewRecordingRenderer(1)

	_ = rec.DrawBatch(nil, &render.Batch{
		Label:    "point_3d",
		Topology: gputypes.PrimitiveTopologyPointList,
		Dim:      3,
		Stride:   3,
		Count:    2,
		Coords:   []float32{1, 2, 3, 4, 5, 6},
	})
	_ = rec.Flush()

	for _, b := range rec.LastFrame() {
		fmt.Println(b.Label, b.Topology, b.Count)
	}
	// Output: point_3d PointList 2
}
