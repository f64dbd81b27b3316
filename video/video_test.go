package video

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"candycane/font"
	"candycane/hal"
)

func rgbInfo(bpp uint8, w, h, pitch uint32) hal.FramebufferInfo {
	info := hal.FramebufferInfo{
		Addr:         0xFD000000,
		Pitch:        pitch,
		Width:        w,
		Height:       h,
		BitsPerPixel: bpp,
		Type:         hal.FramebufferRGB,
	}
	switch bpp {
	case 32, 24:
		info.Red = hal.Channel{Position: 16, MaskSize: 8}
		info.Green = hal.Channel{Position: 8, MaskSize: 8}
		info.Blue = hal.Channel{Position: 0, MaskSize: 8}
	case 16:
		info.Red = hal.Channel{Position: 11, MaskSize: 5}
		info.Green = hal.Channel{Position: 5, MaskSize: 6}
		info.Blue = hal.Channel{Position: 0, MaskSize: 5}
	case 15:
		info.Red = hal.Channel{Position: 10, MaskSize: 5}
		info.Green = hal.Channel{Position: 5, MaskSize: 5}
		info.Blue = hal.Channel{Position: 0, MaskSize: 5}
	}
	return info
}

func newLinear(t *testing.T, info hal.FramebufferInfo) (*Linear, []byte) {
	t.Helper()
	buf := make([]byte, int(info.Pitch)*int(info.Height))
	s, err := NewLinear(info, buf)
	if err != nil {
		t.Fatalf("NewLinear: %v", err)
	}
	return s, buf
}

func TestLinearInitOnce(t *testing.T) {
	info := rgbInfo(32, 16, 16, 64)
	s, _ := newLinear(t, info)

	other := make([]byte, 64*16)
	if err := s.Init(info, other); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init() = %v; want ErrAlreadyInitialized", err)
	}
	s.Clear(White)
	if !bytes.Equal(other, make([]byte, len(other))) {
		t.Fatal("second Init() replaced the framebuffer")
	}
}

func TestLinearInitValidates(t *testing.T) {
	tcs := []struct {
		name string
		info hal.FramebufferInfo
		size int
		want error
	}{
		{name: "pitch", info: rgbInfo(32, 16, 16, 60), size: 60 * 16, want: hal.ErrPitchTooSmall},
		{name: "region", info: rgbInfo(16, 16, 16, 32), size: 32*16 - 1, want: hal.ErrBufferTooSmall},
		{name: "depth", info: rgbInfo(8, 16, 16, 16), size: 16 * 16, want: hal.ErrUnsupportedDepth},
		{name: "type", info: hal.FramebufferInfo{Type: hal.FramebufferEGAText, BitsPerPixel: 16}, size: 0, want: ErrWrongBackend},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLinear(tc.info, make([]byte, tc.size))
			if !errors.Is(err, tc.want) {
				t.Fatalf("NewLinear() = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestDrawPixel32Unmasked(t *testing.T) {
	// 5-bit channel masks on a 32bpp surface: channels are shifted in
	// unscaled and may overlap their neighbours.
	info := rgbInfo(32, 8, 8, 32)
	info.Red = hal.Channel{Position: 10, MaskSize: 5}
	info.Green = hal.Channel{Position: 5, MaskSize: 5}
	info.Blue = hal.Channel{Position: 0, MaskSize: 5}
	s, buf := newLinear(t, info)

	c := RGB(0xFF, 0x80, 0x13)
	s.DrawPixel(3, 2, c)

	want := uint32(0xFF)<<10 | uint32(0x80)<<5 | uint32(0x13)
	if got := le.Uint32(buf[2*32+3*4:]); got != want {
		t.Fatalf("pixel word = %#x; want %#x", got, want)
	}
}

func TestDrawPixelDepths(t *testing.T) {
	c := RGB(0x80, 0x40, 0x08)
	tcs := []struct {
		bpp  uint8
		want []byte
	}{
		{bpp: 32, want: []byte{0x08, 0x40, 0x80, 0x00}},
		{bpp: 24, want: []byte{0x08, 0x40, 0x80}},
		// r=0x10<<11 | g=0x10<<5 | b=0x01 -> 0x8201
		{bpp: 16, want: []byte{0x01, 0x82}},
		// r=0x10<<10 | g=0x08<<5 | b=0x01 -> 0x4101
		{bpp: 15, want: []byte{0x01, 0x41}},
	}
	for _, tc := range tcs {
		info := rgbInfo(tc.bpp, 4, 4, 4*4)
		s, buf := newLinear(t, info)
		s.DrawPixel(1, 1, c)
		off := 16 + info.BytesPerPixel()
		if got := buf[off : off+len(tc.want)]; !bytes.Equal(got, tc.want) {
			t.Fatalf("%dbpp DrawPixel bytes = % x; want % x", tc.bpp, got, tc.want)
		}
	}
}

func TestDrawPixelOutsideRegionDropped(t *testing.T) {
	s, buf := newLinear(t, rgbInfo(32, 4, 4, 16))
	s.DrawPixel(0, 4, White)
	s.DrawPixel(-1, 0, White)
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatal("out-of-region DrawPixel modified memory")
	}
}

func TestClearHonoursPitch(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	for _, bpp := range []uint8{32, 24, 16, 15} {
		// width 7 leaves a remainder after the 4-pixel unroll.
		info := rgbInfo(bpp, 7, 3, 0)
		info.Pitch = uint32(7*info.BytesPerPixel() + 5)
		s, buf := newLinear(t, info)
		for i := range buf {
			buf[i] = 0xAA
		}

		s.Clear(c)

		// DrawPixel and Clear agree when channel masks are 8 bits wide.
		n := info.BytesPerPixel()
		probe, want := newLinear(t, rgbInfo(bpp, 1, 1, uint32(n)))
		probe.DrawPixel(0, 0, c)
		for y := 0; y < 3; y++ {
			row := buf[y*int(info.Pitch):]
			for x := 0; x < 7; x++ {
				if got := row[x*n : x*n+n]; !bytes.Equal(got, want) {
					t.Fatalf("%dbpp pixel (%d,%d) = % x; want % x", bpp, x, y, got, want)
				}
			}
			for i := 7 * n; i < int(info.Pitch); i++ {
				if row[i] != 0xAA {
					t.Fatalf("%dbpp padding byte %d of row %d = %#x; want 0xaa", bpp, i, y, row[i])
				}
			}
		}
	}
}

func TestDrawGlyphKeepsUnlitPixels(t *testing.T) {
	for _, bpp := range []uint8{32, 16} {
		info := rgbInfo(bpp, 16, 16, 0)
		info.Pitch = uint32(16 * info.BytesPerPixel())
		s, buf := newLinear(t, info)
		for i := range buf {
			buf[i] = 0x5A
		}

		s.DrawGlyph('A', 8, 8, White)

		n := info.BytesPerPixel()
		lit := bytes.Repeat([]byte{0xFF}, n)
		if bpp == 32 {
			lit[3] = 0
		}
		g := &font.Basic8x8['A']
		for row := 0; row < 8; row++ {
			for col := 0; col < 8; col++ {
				off := (8+row)*int(info.Pitch) + (8+col)*n
				px := buf[off : off+n]
				if g.Set(col, row) {
					if !bytes.Equal(px, lit) {
						t.Fatalf("%dbpp lit pixel (%d,%d) = % x; want % x", bpp, col, row, px, lit)
					}
					continue
				}
				if !bytes.Equal(px, bytes.Repeat([]byte{0x5A}, n)) {
					t.Fatalf("%dbpp unlit pixel (%d,%d) = % x; want untouched", bpp, col, row, px)
				}
			}
		}
	}
}

func TestDrawGlyph24WritesEveryPixel(t *testing.T) {
	info := rgbInfo(24, 8, 8, 24)
	s, buf := newLinear(t, info)
	for i := range buf {
		buf[i] = 0x5A
	}

	c := RGB(1, 2, 3)
	s.DrawGlyph('H', 0, 0, c)

	g := &font.Basic8x8['H']
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			px := buf[row*24+col*3 : row*24+col*3+3]
			want := []byte{0, 0, 0}
			if g.Set(col, row) {
				want = []byte{3, 2, 1}
			}
			if !bytes.Equal(px, want) {
				t.Fatalf("pixel (%d,%d) = % x; want % x", col, row, px, want)
			}
		}
	}
}

func TestDrawGlyphClipsSilently(t *testing.T) {
	s, buf := newLinear(t, rgbInfo(32, 16, 16, 64))
	s.DrawGlyph('A', 9, 0, White)
	s.DrawGlyph('A', 0, 9, White)
	s.ClearCell(9, 9, White)
	s.DrawGlyph('A', -1, 0, White)
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatal("clipped draw modified memory")
	}
}

func TestDrawGlyphSpaceClearsCell(t *testing.T) {
	s, buf := newLinear(t, rgbInfo(32, 8, 8, 32))
	c := RGB(9, 8, 7)
	s.DrawGlyph(' ', 0, 0, c)
	want := s.pack(c)
	for i := 0; i < len(buf); i += 4 {
		if got := le.Uint32(buf[i:]); got != want {
			t.Fatalf("word %d = %#x; want %#x", i/4, got, want)
		}
	}
}

func TestTextBackend(t *testing.T) {
	info := hal.FramebufferInfo{
		Addr:         0xB8000,
		Pitch:        80 * 2,
		Width:        80,
		Height:       25,
		BitsPerPixel: 16,
		Type:         hal.FramebufferEGAText,
	}
	s, err := NewText(info, make([]byte, 80*25*2))
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	if w, h := s.Size(); w != 640 || h != 200 {
		t.Fatalf("Size() = %d,%d; want 640,200", w, h)
	}

	s.Clear(Blue)
	if ch, attr := s.Cell(79, 24); ch != ' ' || attr != 0x11 {
		t.Fatalf("Cell after Clear = %q,%#x; want ' ',0x11", ch, attr)
	}

	s.DrawGlyph('Z', 8, 16, White)
	if ch, attr := s.Cell(1, 2); ch != 'Z' || attr != 0x1F {
		t.Fatalf("Cell after DrawGlyph = %q,%#x; want 'Z',0x1f", ch, attr)
	}

	s.ClearCell(8, 16, Black)
	if ch, attr := s.Cell(1, 2); ch != ' ' || attr != 0x00 {
		t.Fatalf("Cell after ClearCell = %q,%#x; want ' ',0x00", ch, attr)
	}

	s.DrawGlyph('Q', 80*8-7, 0, White)
	if ch, _ := s.Cell(79, 0); ch != ' ' {
		t.Fatalf("clipped DrawGlyph wrote %q", ch)
	}
}

func TestNearest(t *testing.T) {
	tcs := []struct {
		in   Color
		want uint8
	}{
		{in: Black, want: 0},
		{in: White, want: 15},
		{in: RGB(0xFF, 0xFF, 0x00), want: 14},
		{in: RGB(50, 50, 200), want: 9},
		{in: RGB(0xA0, 0xA0, 0xA0), want: 7},
	}
	for _, tc := range tcs {
		if got := Nearest(tc.in); got != tc.want {
			t.Fatalf("Nearest(%v) = %d; want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(rgbInfo(32, 8, 8, 32), make([]byte, 256))
	if err != nil {
		t.Fatalf("New(rgb): %v", err)
	}
	if _, ok := s.(*Linear); !ok {
		t.Fatalf("New(rgb) = %T; want *Linear", s)
	}

	text := hal.FramebufferInfo{Pitch: 4, Width: 2, Height: 2, BitsPerPixel: 16, Type: hal.FramebufferEGAText}
	s, err = New(text, make([]byte, 8))
	if err != nil {
		t.Fatalf("New(text): %v", err)
	}
	if _, ok := s.(*Text); !ok {
		t.Fatalf("New(text) = %T; want *Text", s)
	}

	if _, err := New(hal.FramebufferInfo{Type: hal.FramebufferIndexed}, nil); !errors.Is(err, hal.ErrUnsupportedType) {
		t.Fatalf("New(indexed) = %v; want ErrUnsupportedType", err)
	}
}

func TestDisplayerClips(t *testing.T) {
	s, buf := newLinear(t, rgbInfo(32, 4, 4, 16))
	d := Displayer{S: s}
	if x, y := d.Size(); x != 4 || y != 4 {
		t.Fatalf("Size() = %d,%d; want 4,4", x, y)
	}
	d.SetPixel(4, 0, color.RGBA{R: 255, A: 255})
	d.SetPixel(0, -1, color.RGBA{R: 255, A: 255})
	if !bytes.Equal(buf, make([]byte, len(buf))) {
		t.Fatal("clipped SetPixel modified memory")
	}
	d.SetPixel(1, 1, color.RGBA{R: 255, A: 255})
	if got := le.Uint32(buf[16+4:]); got != 0xFF0000 {
		t.Fatalf("pixel word = %#x; want 0xff0000", got)
	}
}
