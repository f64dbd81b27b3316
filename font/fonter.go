package font

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Fonter exposes Basic8x8 as a tinyfont.Fonter so tinyfont.WriteLine and
// friends can draw with the console glyphs on any drivers.Displayer.
//
// Runes above 0xFF draw as '?'. Concurrent access is not safe due to
// internal glyph reuse.
var Fonter tinyfont.Fonter = &fonter{}

type fonter struct {
	g glyph
}

type glyph struct {
	r rune
}

func (g *glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	bm := &Basic8x8[glyphIndex(g.r)]
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			if !bm.Set(col, row) {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g *glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    Width,
		Height:   Height,
		XAdvance: Width,
		XOffset:  0,
		YOffset:  -(Height - 1),
	}
}

func (f *fonter) GetYAdvance() uint8 { return Height }

func (f *fonter) GetGlyph(r rune) tinyfont.Glypher {
	f.g.r = r
	return &f.g
}

func glyphIndex(r rune) byte {
	if r < 0 || r > 0xFF {
		return '?'
	}
	return byte(r)
}
