package video

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = Displayer{}

// Displayer lets tinyfont and other drivers.Displayer clients draw on a
// Surface. Pixels outside the surface are clipped.
type Displayer struct {
	S Surface
}

func (d Displayer) Size() (x, y int16) {
	if d.S == nil {
		return 0, 0
	}
	w, h := d.S.Size()
	return int16(w), int16(h)
}

func (d Displayer) SetPixel(x, y int16, c color.RGBA) {
	if d.S == nil {
		return
	}
	w, h := d.S.Size()
	if x < 0 || y < 0 || int(x) >= w || int(y) >= h {
		return
	}
	d.S.DrawPixel(int(x), int(y), Color{R: c.R, G: c.G, B: c.B})
}

func (d Displayer) Display() error { return nil }
