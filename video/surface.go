// Package video owns display memory. Nothing else in the kernel writes to
// the framebuffer.
package video

import (
	"errors"
	"fmt"

	"candycane/hal"
)

// Color is an 8-bit-per-channel color. Scaling to the hardware depth
// happens at draw time.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{R: 0xFF, G: 0xFF, B: 0xFF}
	Black = Color{}
	Red   = Color{R: 0xFF}
	Green = Color{G: 0xFF}
	Blue  = Color{B: 0xFF}
)

// RGB returns a Color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Invert flips every channel.
func (c Color) Invert() Color { return Color{R: ^c.R, G: ^c.G, B: ^c.B} }

// Surface is a drawable display. Coordinates are pixels.
//
// DrawGlyph and ClearCell silently ignore cells that do not fit on the
// surface. DrawPixel performs no geometry check.
type Surface interface {
	Size() (width, height int)
	Clear(c Color)
	DrawPixel(x, y int, c Color)
	DrawGlyph(ch byte, x, y int, c Color)
	ClearCell(x, y int, c Color)
}

var (
	ErrAlreadyInitialized = errors.New("surface already initialized")
	ErrWrongBackend       = errors.New("framebuffer type not handled by this backend")
)

// New returns the backend matching info.Type.
func New(info hal.FramebufferInfo, buf []byte) (Surface, error) {
	switch info.Type {
	case hal.FramebufferRGB:
		return NewLinear(info, buf)
	case hal.FramebufferEGAText:
		return NewText(info, buf)
	default:
		return nil, fmt.Errorf("video: %w: %s", hal.ErrUnsupportedType, info.Type)
	}
}

func cellFits(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && x+glyphW <= w && y+glyphH <= h
}
