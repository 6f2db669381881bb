package main

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// overlay draws status text on top of a rendered frame.
type overlay struct {
	face font.Face
	src  image.Image
}

func newOverlay(size float64) (*overlay, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	return &overlay{
		face: face,
		src:  image.NewUniform(color.NRGBA{B: 255, A: 255}),
	}, nil
}

// draw writes s with its baseline starting at (x, y).
func (o *overlay) draw(dst draw.Image, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  o.src,
		Face: o.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
