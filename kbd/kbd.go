// Package kbd decodes PS/2 scan code set 1 into modifier and key state.
package kbd

import (
	"sync/atomic"

	"candycane/console"
	"candycane/kfmt"
	"candycane/video"
)

// Modifier bits reported by Driver.Special.
const (
	LShift   = 0x01
	RShift   = 0x02
	Shift    = LShift | RShift
	Ctrl     = 0x04
	Alt      = 0x08
	CapsLock = 0x10
	NumLock  = 0x20
	Super    = 0x40
	Extended = 0x80
)

const (
	codeBackspace = 0x0E
	codeCtrl      = 0x1D
	codeLShift    = 0x2A
	codeRShift    = 0x36
	codeAlt       = 0x38
	codeCapsLock  = 0x3A
	codeNumLock   = 0x45
	codeSuper     = 0x5B
	codeExtended  = 0xE0
	codeBreak     = 0x80
)

// Echo is a scan code and the modifier state after it was handled,
// queued for the debug echo on the main loop.
type Echo struct {
	Code    uint8
	Special uint8
}

// Render prints the echo: the code in hex and the modifiers in binary, in
// yellow. A backspace make code also erases the four cells before it.
func (e Echo) Render(c *console.Console) {
	c.SetColor(video.RGB(0xFF, 0xFF, 0x00))
	kfmt.Print(c, "{u1h} ", kfmt.U8(e.Code))
	if e.Code == codeBackspace {
		for i := 0; i < 4; i++ {
			c.Backspace()
		}
	}
	kfmt.Print(c, "{u1b} ", kfmt.U8(e.Special))
	c.SetColor(video.White)
}

// Poster accepts echoes without blocking. A full queue drops them.
type Poster interface {
	TrySend(e Echo) bool
}

// Driver holds keyboard state. HandleScanCode is the interrupt handler
// body; the other methods may be called from the main flow.
type Driver struct {
	echo Poster

	enabled      atomic.Bool
	special      atomic.Uint32
	capsReleased bool
	numReleased  bool
	keys         [256]atomic.Bool
}

// New returns an enabled Driver that posts echoes to echo, which may be nil.
func New(echo Poster) *Driver {
	d := &Driver{echo: echo, capsReleased: true, numReleased: true}
	d.enabled.Store(true)
	return d
}

func (d *Driver) Enable()  { d.enabled.Store(true) }
func (d *Driver) Disable() { d.enabled.Store(false) }

// Special returns the modifier bits.
func (d *Driver) Special() uint8 { return uint8(d.special.Load()) }

// Pressed reports whether the key producing ch is held down.
func (d *Driver) Pressed(ch byte) bool { return d.keys[ch].Load() }

// HandleScanCode updates state for one byte from the keyboard and posts an
// echo. It does nothing while the driver is disabled.
func (d *Driver) HandleScanCode(code uint8) {
	if !d.enabled.Load() {
		return
	}

	s := d.Special()
	ext := s&Extended != 0
	s &^= Extended

	switch code {
	case codeLShift:
		s |= LShift
	case codeRShift:
		s |= RShift
	case codeCtrl:
		s |= Ctrl
	case codeAlt:
		s |= Alt
	case codeCapsLock:
		if d.capsReleased {
			s ^= CapsLock
			d.capsReleased = false
		}
	case codeNumLock:
		if d.numReleased {
			s ^= NumLock
			d.numReleased = false
		}
	case codeSuper:
		if ext {
			s |= Super
		}
	case codeExtended:
		s |= Extended

	case codeLShift | codeBreak:
		s &^= LShift
	case codeRShift | codeBreak:
		s &^= RShift
	case codeCtrl | codeBreak:
		s &^= Ctrl
	case codeAlt | codeBreak:
		s &^= Alt
	case codeCapsLock | codeBreak:
		d.capsReleased = true
	case codeNumLock | codeBreak:
		d.numReleased = true
	case codeSuper | codeBreak:
		if ext {
			s &^= Super
		}

	default:
		d.keys[ASCII(code)].Store(code&codeBreak == 0)
	}
	d.special.Store(uint32(s))

	if d.echo != nil {
		d.echo.TrySend(Echo{Code: code, Special: s})
	}
}
