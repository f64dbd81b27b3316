package console

import (
	"errors"

	"candycane/video"
)

var ErrSpriteOrigin = errors.New("console: sprite anchor outside grid")

// Sprite is multi-line character art anchored at its top-left cell.
// '\n' moves down one row keeping the column and '\r' returns to X.
type Sprite struct {
	X, Y  int
	Data  string
	Color video.Color
}

// DrawSprite renders sp cell by cell without moving the cursor. Rows and
// columns wrap at the grid edge. Drawing stops at a NUL byte.
func (c *Console) DrawSprite(sp Sprite) error {
	c.guard.Lock()
	defer c.guard.Unlock()

	if sp.X < 0 || sp.Y < 0 || sp.X >= c.maxX || sp.Y >= c.maxY {
		return ErrSpriteOrigin
	}

	x, y := sp.X, sp.Y
	for i := 0; i < len(sp.Data) && sp.Data[i] != 0; i++ {
		switch ch := sp.Data[i]; ch {
		case '\n':
			y = (y + 1) % c.maxY
		case '\r':
			x = sp.X
		default:
			c.putCharAt(ch, x, y, sp.Color)
			x++
			if x == c.maxX {
				y++
			}
			y %= c.maxY
			x %= c.maxX
		}
	}
	return nil
}

// Blinker flashes a block at the cursor by drawing a cleared cell in
// alternating colors. Glyphs at most depths only set their lit pixels, so
// the block must be taken down with Hide before text lands in its cell.
type Blinker struct {
	c     *Console
	color video.Color

	shown  bool
	px, py int
}

func NewBlinker(c *Console, start video.Color) *Blinker {
	return &Blinker{c: c, color: start}
}

// Step paints the cell under the cursor and inverts the color for the next
// call. A block left behind at an old cursor position is cleared first.
func (b *Blinker) Step() {
	c := b.c
	c.guard.Lock()
	defer c.guard.Unlock()

	if b.shown && (b.px != c.x || b.py != c.y) {
		c.putCharAt(' ', b.px, b.py, c.bg)
	}
	c.putCharAt(' ', c.x, c.y, b.color)
	b.shown, b.px, b.py = true, c.x, c.y
	b.color = b.color.Invert()
}

// Hide restores the last painted cell to the background.
func (b *Blinker) Hide() {
	c := b.c
	c.guard.Lock()
	defer c.guard.Unlock()

	if !b.shown {
		return
	}
	c.putCharAt(' ', b.px, b.py, c.bg)
	b.shown = false
}

// Color returns the color the next Step paints.
func (b *Blinker) Color() video.Color { return b.color }
