package video

import (
	"encoding/binary"
	"fmt"

	"candycane/font"
	"candycane/hal"
)

const (
	glyphW = font.Width
	glyphH = font.Height
)

var le = binary.LittleEndian

// Linear draws into a linear RGB framebuffer of 15, 16, 24 or 32 bpp.
//
// 32bpp packs each 8-bit channel straight into its bit position without
// narrowing to the channel's mask size. 16bpp and 15bpp narrow each channel
// to its mask size first. 24bpp glyphs overwrite unlit pixels with black
// while the other depths leave them untouched.
type Linear struct {
	info  hal.FramebufferInfo
	buf   []byte
	ready bool
}

// NewLinear returns an initialized Linear surface.
func NewLinear(info hal.FramebufferInfo, buf []byte) (*Linear, error) {
	s := &Linear{}
	if err := s.Init(info, buf); err != nil {
		return nil, err
	}
	return s, nil
}

// Init takes ownership of buf. It never touches the memory itself and may
// only succeed once.
func (s *Linear) Init(info hal.FramebufferInfo, buf []byte) error {
	if s.ready {
		return ErrAlreadyInitialized
	}
	if info.Type != hal.FramebufferRGB {
		return fmt.Errorf("linear: %w: %s", ErrWrongBackend, info.Type)
	}
	if err := info.Validate(len(buf)); err != nil {
		return fmt.Errorf("linear: %w", err)
	}
	s.info = info
	s.buf = buf
	s.ready = true
	return nil
}

// Info returns the descriptor the surface was initialized with.
func (s *Linear) Info() hal.FramebufferInfo { return s.info }

func (s *Linear) Size() (width, height int) {
	return int(s.info.Width), int(s.info.Height)
}

// Clear fills every visible pixel. Pitch padding is left untouched.
func (s *Linear) Clear(c Color) {
	if !s.ready {
		return
	}
	w, h := s.Size()
	pitch := int(s.info.Pitch)

	switch s.info.BitsPerPixel {
	case 32:
		p := s.pack(c)
		for y := 0; y < h; y++ {
			row := s.buf[y*pitch : y*pitch+w*4]
			i := 0
			for ; len(row)-i >= 16; i += 16 {
				le.PutUint32(row[i:], p)
				le.PutUint32(row[i+4:], p)
				le.PutUint32(row[i+8:], p)
				le.PutUint32(row[i+12:], p)
			}
			for ; i < len(row); i += 4 {
				le.PutUint32(row[i:], p)
			}
		}

	case 24:
		for y := 0; y < h; y++ {
			row := s.buf[y*pitch : y*pitch+w*3]
			for i := 0; i < len(row); i += 3 {
				row[i+0] = c.B
				row[i+1] = c.G
				row[i+2] = c.R
			}
		}

	case 16, 15:
		p := uint16(s.packScaled(c))
		for y := 0; y < h; y++ {
			row := s.buf[y*pitch : y*pitch+w*2]
			for i := 0; i < len(row); i += 2 {
				le.PutUint16(row[i:], p)
			}
		}
	}
}

// DrawPixel writes one pixel at y*pitch + x*bytesPerPixel. Coordinates are
// not checked against the geometry; a write that would leave the memory
// region is dropped.
func (s *Linear) DrawPixel(x, y int, c Color) {
	if !s.ready {
		return
	}
	bpp := s.info.BytesPerPixel()
	off := y*int(s.info.Pitch) + x*bpp
	if off < 0 || off+bpp > len(s.buf) {
		return
	}

	switch s.info.BitsPerPixel {
	case 32:
		le.PutUint32(s.buf[off:], s.pack(c))
	case 16, 15:
		le.PutUint16(s.buf[off:], uint16(s.packScaled(c)))
	case 24:
		p := s.packScaled(c)
		s.buf[off+0] = byte(p)
		s.buf[off+1] = byte(p >> 8)
		s.buf[off+2] = byte(p >> 16)
	}
}

// DrawGlyph renders ch with its top-left corner at (x, y).
func (s *Linear) DrawGlyph(ch byte, x, y int, c Color) {
	w, h := s.Size()
	if !s.ready || !cellFits(x, y, w, h) {
		return
	}
	if ch == ' ' {
		s.ClearCell(x, y, c)
		return
	}

	g := &font.Basic8x8[ch]
	pitch := int(s.info.Pitch)
	base := y*pitch + x*s.info.BytesPerPixel()

	switch s.info.BitsPerPixel {
	case 32:
		p := s.pack(c)
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				if g.Set(col, row) {
					le.PutUint32(dst[col*4:], p)
				}
			}
		}

	case 16, 15:
		p := uint16(s.packScaled(c))
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				if g.Set(col, row) {
					le.PutUint16(dst[col*2:], p)
				}
			}
		}

	case 24:
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				mask := g[row] >> uint(col) & 1
				dst[col*3+0] = mask * c.B
				dst[col*3+1] = mask * c.G
				dst[col*3+2] = mask * c.R
			}
		}
	}
}

// ClearCell fills the 8x8 cell at (x, y).
func (s *Linear) ClearCell(x, y int, c Color) {
	w, h := s.Size()
	if !s.ready || !cellFits(x, y, w, h) {
		return
	}

	pitch := int(s.info.Pitch)
	base := y*pitch + x*s.info.BytesPerPixel()

	switch s.info.BitsPerPixel {
	case 32:
		p := s.pack(c)
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				le.PutUint32(dst[col*4:], p)
			}
		}

	case 16, 15:
		p := uint16(s.packScaled(c))
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				le.PutUint16(dst[col*2:], p)
			}
		}

	case 24:
		for row := 0; row < glyphH; row++ {
			dst := s.buf[base+row*pitch:]
			for col := 0; col < glyphW; col++ {
				dst[col*3+0] = c.B
				dst[col*3+1] = c.G
				dst[col*3+2] = c.R
			}
		}
	}
}

// pack places each channel at its bit position unscaled.
func (s *Linear) pack(c Color) uint32 {
	return uint32(c.R)<<s.info.Red.Position |
		uint32(c.G)<<s.info.Green.Position |
		uint32(c.B)<<s.info.Blue.Position
}

// packScaled narrows each channel to its mask size before placing it.
func (s *Linear) packScaled(c Color) uint32 {
	return scale(c.R, s.info.Red) | scale(c.G, s.info.Green) | scale(c.B, s.info.Blue)
}

func scale(v uint8, ch hal.Channel) uint32 {
	if ch.MaskSize < 8 {
		v >>= 8 - ch.MaskSize
	}
	return uint32(v) << ch.Position
}
