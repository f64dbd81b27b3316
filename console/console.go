// Package console prints characters on a video.Surface as a fixed grid of
// glyph cells. The cursor wraps in both directions; there is no scrolling.
package console

import (
	"errors"
	"io"
	"math"
	"sync"

	"candycane/video"
)

var ErrCursorOutOfRange = errors.New("console: cursor position outside grid")

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Option configures a Console.
type Option func(*Console)

// WithGuard runs every Console operation with l held. Passing the
// interrupt gate keeps handlers from observing a half-updated cursor.
func WithGuard(l sync.Locker) Option {
	return func(c *Console) {
		if l != nil {
			c.guard = l
		}
	}
}

// Console is a character cursor over a Surface.
type Console struct {
	guard sync.Locker
	s     video.Surface

	glyphW, glyphH int
	maxX, maxY     int
	x, y           int

	fg, bg video.Color
}

// New returns a Console covering s with glyphW x glyphH cells. The surface
// is cleared to black and the cursor starts at (0, 0).
func New(s video.Surface, glyphW, glyphH int, def video.Color, opts ...Option) *Console {
	if glyphW <= 0 {
		glyphW = 1
	}
	if glyphH <= 0 {
		glyphH = 1
	}
	w, h := s.Size()
	c := &Console{
		guard:  noLock{},
		s:      s,
		glyphW: glyphW,
		glyphH: glyphH,
		maxX:   max(w/glyphW, 1),
		maxY:   max(h/glyphH, 1),
		fg:     def,
		bg:     video.Black,
	}
	for _, o := range opts {
		o(c)
	}

	c.guard.Lock()
	defer c.guard.Unlock()
	s.Clear(c.bg)
	return c
}

// Clear fills the surface with bg, makes bg the background color and homes
// the cursor. The text color argument is ignored; the foreground keeps its
// current value.
func (c *Console) Clear(_, bg video.Color) {
	c.guard.Lock()
	defer c.guard.Unlock()

	c.bg = bg
	c.s.Clear(bg)
	c.x, c.y = 0, 0
}

// SetColor sets the color used for subsequent characters.
func (c *Console) SetColor(col video.Color) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.fg = col
}

func (c *Console) Color() video.Color {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.fg
}

// Background returns the color spaces and erased cells are filled with.
func (c *Console) Background() video.Color {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.bg
}

// PutChar draws ch at the cursor and advances it.
func (c *Console) PutChar(ch byte) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.putChar(ch)
}

func (c *Console) putChar(ch byte) {
	if ch == '\n' {
		c.x = 0
		c.y = (c.y + 1) % c.maxY
		return
	}

	col := c.fg
	if ch == ' ' {
		col = c.bg
	}
	c.s.DrawGlyph(ch, c.x*c.glyphW, c.y*c.glyphH, col)

	c.x++
	if c.x >= c.maxX {
		c.y++
	}
	c.x %= c.maxX
	c.y %= c.maxY
}

// PutCharAt draws ch in cell (x, y) without moving the cursor. A newline
// does nothing and a space clears the cell to col.
func (c *Console) PutCharAt(ch byte, x, y int, col video.Color) {
	c.guard.Lock()
	defer c.guard.Unlock()
	c.putCharAt(ch, x, y, col)
}

func (c *Console) putCharAt(ch byte, x, y int, col video.Color) {
	switch ch {
	case '\n':
	case ' ':
		c.s.ClearCell(x*c.glyphW, y*c.glyphH, col)
	default:
		c.s.DrawGlyph(ch, x*c.glyphW, y*c.glyphH, col)
	}
}

// PutString prints s up to its first NUL byte and returns the number of
// bytes consumed.
func (c *Console) PutString(s string) uint32 {
	c.guard.Lock()
	defer c.guard.Unlock()

	var n uint32
	for i := 0; i < len(s) && s[i] != 0 && n != math.MaxUint32; i++ {
		c.putChar(s[i])
		n++
	}
	return n
}

// Write prints p like PutString. It reports io.ErrShortWrite when p holds
// a NUL byte.
func (c *Console) Write(p []byte) (int, error) {
	c.guard.Lock()
	defer c.guard.Unlock()

	for i, b := range p {
		if b == 0 {
			return i, io.ErrShortWrite
		}
		c.putChar(b)
	}
	return len(p), nil
}

// Backspace moves the cursor back one cell and erases it. It does nothing
// at (0, 0).
func (c *Console) Backspace() {
	c.guard.Lock()
	defer c.guard.Unlock()

	if c.x == 0 && c.y == 0 {
		return
	}
	if c.x == 0 {
		c.y--
		c.x = c.maxX - 1
	} else {
		c.x--
	}
	c.s.ClearCell(c.x*c.glyphW, c.y*c.glyphH, c.bg)
}

func (c *Console) Cursor() (x, y int) {
	c.guard.Lock()
	defer c.guard.Unlock()
	return c.x, c.y
}

// GridSize returns the number of columns and rows.
func (c *Console) GridSize() (w, h int) {
	return c.maxX, c.maxY
}

// SetCursor moves the cursor. Positions outside the grid are rejected and
// leave the cursor where it was.
func (c *Console) SetCursor(x, y int) error {
	c.guard.Lock()
	defer c.guard.Unlock()

	if x < 0 || y < 0 || x >= c.maxX || y >= c.maxY {
		return ErrCursorOutOfRange
	}
	c.x, c.y = x, y
	return nil
}
