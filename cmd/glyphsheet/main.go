// Command glyphsheet renders the console glyph table to a BMP file through
// the same surface code the kernel draws with.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"candycane/font"
	"candycane/hal"
	"candycane/kfmt"
	"candycane/video"

	"golang.org/x/image/bmp"
	"tinygo.org/x/tinyfont"
)

const (
	cell    = 12
	marginX = 6 * font.Width
	marginY = 3 * font.Height
)

func main() {
	var (
		out string
		bpp int
	)
	flag.StringVar(&out, "o", "glyphs.bmp", "Output BMP path.")
	flag.IntVar(&bpp, "bpp", 32, "Framebuffer depth to render at: 15, 16, 24 or 32.")
	flag.Parse()

	img, err := render(bpp)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := bmp.Encode(f, img); err != nil {
		_ = f.Close()
		fmt.Fprintf(os.Stderr, "encode %q: %v\n", out, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var label = color.RGBA{R: 180, G: 255, B: 180, A: 255}

// columnLabel is the low hex digit of a column, "0" through "F".
func columnLabel(i int) string {
	return kfmt.Sprint("{u1h}", kfmt.U8(uint8(i&0xF)))[2:]
}

// render lays out all 256 glyphs as a 16x16 table with hex labels.
func render(bpp int) (*image.RGBA, error) {
	w := marginX + 16*cell + font.Width
	h := marginY + 16*cell + font.Height
	info, err := hal.HostConfig{Width: w, Height: h, BitsPerPixel: bpp}.FramebufferInfo()
	if err != nil {
		return nil, fmt.Errorf("glyphsheet: %w", err)
	}
	buf := make([]byte, int(info.Pitch)*h)
	s, err := video.NewLinear(info, buf)
	if err != nil {
		return nil, err
	}
	s.Clear(video.RGB(16, 16, 48))

	d := video.Displayer{S: s}
	title := fmt.Sprintf("8x8 @ %dbpp", bpp)
	tinyfont.WriteLine(d, font.Fonter, 0, font.Height-1, title, color.RGBA{R: 255, G: 180, B: 180, A: 255})

	for i := 0; i < 16; i++ {
		col := columnLabel(i)
		tinyfont.WriteLine(d, font.Fonter, int16(marginX+i*cell), int16(2*font.Height), col, label)

		row := kfmt.Sprint("{u1h}", kfmt.U8(uint8(i<<4)))
		tinyfont.WriteLine(d, font.Fonter, 0, int16(marginY+i*cell+font.Height-1), row, label)
	}

	for ch := 0; ch < 256; ch++ {
		x := marginX + (ch%16)*cell
		y := marginY + (ch/16)*cell
		s.DrawGlyph(byte(ch), x, y, video.White)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	hal.DecodeRGBA(info, buf, img.Pix)
	return img, nil
}
