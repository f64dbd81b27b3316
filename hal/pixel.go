package hal

import (
	"encoding/binary"

	"candycane/font"
)

// EGAPalette is the 16-color text mode palette, indexed by attribute nibble.
var EGAPalette = [16][3]uint8{
	{0x00, 0x00, 0x00}, // black
	{0x00, 0x00, 0xAA}, // blue
	{0x00, 0xAA, 0x00}, // green
	{0x00, 0xAA, 0xAA}, // cyan
	{0xAA, 0x00, 0x00}, // red
	{0xAA, 0x00, 0xAA}, // magenta
	{0xAA, 0x55, 0x00}, // brown
	{0xAA, 0xAA, 0xAA}, // light grey
	{0x55, 0x55, 0x55}, // grey
	{0x55, 0x55, 0xFF}, // light blue
	{0x55, 0xFF, 0x55}, // light green
	{0x55, 0xFF, 0xFF}, // light cyan
	{0xFF, 0x55, 0x55}, // light red
	{0xFF, 0x55, 0xFF}, // light magenta
	{0xFF, 0xFF, 0x55}, // yellow
	{0xFF, 0xFF, 0xFF}, // white
}

// PixelSize returns the displayed size of a framebuffer in pixels.
func PixelSize(info FramebufferInfo) (w, h int) {
	if info.Type == FramebufferEGAText {
		return int(info.Width) * font.Width, int(info.Height) * font.Height
	}
	return int(info.Width), int(info.Height)
}

// DecodeRGBA converts framebuffer memory to 8-bit RGBA in dst, which must
// hold PixelSize(info) pixels. It is what the scanout hardware would show.
func DecodeRGBA(info FramebufferInfo, src, dst []byte) {
	if info.Type == FramebufferEGAText {
		decodeText(info, src, dst)
		return
	}

	w, h := PixelSize(info)
	bpp := info.BytesPerPixel()
	if bpp == 0 {
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*int(info.Pitch) + x*bpp
			if off+bpp > len(src) {
				return
			}
			var raw uint32
			switch bpp {
			case 4:
				raw = binary.LittleEndian.Uint32(src[off:])
			case 3:
				raw = uint32(src[off]) | uint32(src[off+1])<<8 | uint32(src[off+2])<<16
			case 2:
				raw = uint32(binary.LittleEndian.Uint16(src[off:]))
			}
			j := (y*w + x) * 4
			if j+3 >= len(dst) {
				return
			}
			dst[j+0] = expand(raw, info.Red)
			dst[j+1] = expand(raw, info.Green)
			dst[j+2] = expand(raw, info.Blue)
			dst[j+3] = 0xFF
		}
	}
}

func expand(raw uint32, ch Channel) uint8 {
	if ch.MaskSize == 0 {
		return 0
	}
	size := ch.MaskSize
	if size > 8 {
		size = 8
	}
	max := uint32(1)<<size - 1
	v := (raw >> ch.Position) & max
	return uint8(v * 255 / max)
}

func decodeText(info FramebufferInfo, src, dst []byte) {
	w, _ := PixelSize(info)
	for row := 0; row < int(info.Height); row++ {
		for col := 0; col < int(info.Width); col++ {
			off := row*int(info.Pitch) + col*2
			if off+1 >= len(src) {
				return
			}
			g := &font.Basic8x8[src[off]]
			fg := EGAPalette[src[off+1]&0x0F]
			bg := EGAPalette[src[off+1]>>4]
			for gy := 0; gy < font.Height; gy++ {
				for gx := 0; gx < font.Width; gx++ {
					c := bg
					if g.Set(gx, gy) {
						c = fg
					}
					j := ((row*font.Height+gy)*w + col*font.Width + gx) * 4
					if j+3 >= len(dst) {
						return
					}
					dst[j+0], dst[j+1], dst[j+2], dst[j+3] = c[0], c[1], c[2], 0xFF
				}
			}
		}
	}
}
