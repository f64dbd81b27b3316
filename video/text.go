package video

import (
	"fmt"

	"candycane/font"
	"candycane/hal"
)

// Text draws into an EGA text buffer: one little-endian 16-bit word per
// cell, low byte the character, high byte the attribute (bg<<4 | fg).
//
// Pixel coordinates are accepted so the console can drive either backend;
// each 8x8 pixel cell maps to one text cell. Colors map to the nearest of
// the 16 palette entries. There is no pixel addressing, so DrawPixel does
// nothing.
type Text struct {
	info  hal.FramebufferInfo
	buf   []byte
	ready bool
}

// NewText returns an initialized Text surface.
func NewText(info hal.FramebufferInfo, buf []byte) (*Text, error) {
	s := &Text{}
	if err := s.Init(info, buf); err != nil {
		return nil, err
	}
	return s, nil
}

// Init takes ownership of buf. It may only succeed once.
func (s *Text) Init(info hal.FramebufferInfo, buf []byte) error {
	if s.ready {
		return ErrAlreadyInitialized
	}
	if info.Type != hal.FramebufferEGAText {
		return fmt.Errorf("text: %w: %s", ErrWrongBackend, info.Type)
	}
	if err := info.Validate(len(buf)); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	s.info = info
	s.buf = buf
	s.ready = true
	return nil
}

// Info returns the descriptor the surface was initialized with.
func (s *Text) Info() hal.FramebufferInfo { return s.info }

func (s *Text) Size() (width, height int) {
	return int(s.info.Width) * font.Width, int(s.info.Height) * font.Height
}

func (s *Text) Clear(c Color) {
	if !s.ready {
		return
	}
	idx := Nearest(c)
	cell := uint16(idx<<4|idx)<<8 | ' '
	for row := 0; row < int(s.info.Height); row++ {
		off := row * int(s.info.Pitch)
		for col := 0; col < int(s.info.Width); col++ {
			le.PutUint16(s.buf[off+col*2:], cell)
		}
	}
}

func (s *Text) DrawPixel(x, y int, c Color) {}

func (s *Text) DrawGlyph(ch byte, x, y int, c Color) {
	w, h := s.Size()
	if !s.ready || !cellFits(x, y, w, h) {
		return
	}
	if ch == ' ' {
		s.ClearCell(x, y, c)
		return
	}
	off := s.cellOffset(x, y)
	bg := s.buf[off+1] & 0xF0
	s.buf[off] = ch
	s.buf[off+1] = bg | Nearest(c)
}

func (s *Text) ClearCell(x, y int, c Color) {
	w, h := s.Size()
	if !s.ready || !cellFits(x, y, w, h) {
		return
	}
	idx := Nearest(c)
	off := s.cellOffset(x, y)
	s.buf[off] = ' '
	s.buf[off+1] = idx<<4 | idx
}

// Cell returns the character and attribute stored at text cell (col, row).
func (s *Text) Cell(col, row int) (ch, attr byte) {
	off := row*int(s.info.Pitch) + col*2
	return s.buf[off], s.buf[off+1]
}

func (s *Text) cellOffset(x, y int) int {
	return (y/font.Height)*int(s.info.Pitch) + (x/font.Width)*2
}

// Nearest returns the palette index closest to c.
func Nearest(c Color) uint8 {
	best := uint8(0)
	bestDist := -1
	for i, p := range hal.EGAPalette {
		dr := int(c.R) - int(p[0])
		dg := int(c.G) - int(p[1])
		db := int(c.B) - int(p[2])
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = uint8(i), d
		}
	}
	return best
}
