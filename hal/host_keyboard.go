//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// ebitenScanCodes maps window keys to set 1 make codes. Codes above 0xFF
// carry the ScanExtended prefix in their high byte.
var ebitenScanCodes = map[ebiten.Key]uint16{
	ebiten.KeyEscape:       ScanEscape,
	ebiten.KeyDigit1:       0x02,
	ebiten.KeyDigit2:       0x03,
	ebiten.KeyDigit3:       0x04,
	ebiten.KeyDigit4:       0x05,
	ebiten.KeyDigit5:       0x06,
	ebiten.KeyDigit6:       0x07,
	ebiten.KeyDigit7:       0x08,
	ebiten.KeyDigit8:       0x09,
	ebiten.KeyDigit9:       0x0A,
	ebiten.KeyDigit0:       0x0B,
	ebiten.KeyMinus:        0x0C,
	ebiten.KeyEqual:        0x0D,
	ebiten.KeyBackspace:    ScanBackspace,
	ebiten.KeyTab:          ScanTab,
	ebiten.KeyQ:            0x10,
	ebiten.KeyW:            0x11,
	ebiten.KeyE:            0x12,
	ebiten.KeyR:            0x13,
	ebiten.KeyT:            0x14,
	ebiten.KeyY:            0x15,
	ebiten.KeyU:            0x16,
	ebiten.KeyI:            0x17,
	ebiten.KeyO:            0x18,
	ebiten.KeyP:            0x19,
	ebiten.KeyBracketLeft:  0x1A,
	ebiten.KeyBracketRight: 0x1B,
	ebiten.KeyEnter:        ScanEnter,
	ebiten.KeyControlLeft:  ScanCtrl,
	ebiten.KeyA:            0x1E,
	ebiten.KeyS:            0x1F,
	ebiten.KeyD:            0x20,
	ebiten.KeyF:            0x21,
	ebiten.KeyG:            0x22,
	ebiten.KeyH:            0x23,
	ebiten.KeyJ:            0x24,
	ebiten.KeyK:            0x25,
	ebiten.KeyL:            0x26,
	ebiten.KeySemicolon:    0x27,
	ebiten.KeyQuote:        0x28,
	ebiten.KeyBackquote:    0x29,
	ebiten.KeyShiftLeft:    ScanLShift,
	ebiten.KeyBackslash:    0x2B,
	ebiten.KeyZ:            0x2C,
	ebiten.KeyX:            0x2D,
	ebiten.KeyC:            0x2E,
	ebiten.KeyV:            0x2F,
	ebiten.KeyB:            0x30,
	ebiten.KeyN:            0x31,
	ebiten.KeyM:            0x32,
	ebiten.KeyComma:        0x33,
	ebiten.KeyPeriod:       0x34,
	ebiten.KeySlash:        0x35,
	ebiten.KeyShiftRight:   ScanRShift,
	ebiten.KeyAltLeft:      ScanAlt,
	ebiten.KeySpace:        ScanSpace,
	ebiten.KeyCapsLock:     ScanCapsLock,
	ebiten.KeyF1:           0x3B,
	ebiten.KeyF2:           0x3C,
	ebiten.KeyF3:           0x3D,
	ebiten.KeyF4:           0x3E,
	ebiten.KeyF5:           0x3F,
	ebiten.KeyF6:           0x40,
	ebiten.KeyF7:           0x41,
	ebiten.KeyF8:           0x42,
	ebiten.KeyF9:           0x43,
	ebiten.KeyF10:          0x44,
	ebiten.KeyNumLock:      ScanNumLock,

	ebiten.KeyControlRight: ScanExtended<<8 | ScanCtrl,
	ebiten.KeyAltRight:     ScanExtended<<8 | ScanAlt,
	ebiten.KeyMetaLeft:     ScanExtended<<8 | ScanSuper,
	ebiten.KeyMetaRight:    ScanExtended<<8 | 0x5C,
	ebiten.KeyArrowUp:      ScanExtended<<8 | 0x48,
	ebiten.KeyArrowLeft:    ScanExtended<<8 | 0x4B,
	ebiten.KeyArrowRight:   ScanExtended<<8 | 0x4D,
	ebiten.KeyArrowDown:    ScanExtended<<8 | 0x50,
}

type ebitenPoller struct {
	kbd  *hostKeyboard
	keys []ebiten.Key
}

// poll emits make codes for keys pressed and break codes for keys released
// since the previous frame.
func (p *ebitenPoller) poll() {
	p.keys = inpututil.AppendJustPressedKeys(p.keys[:0])
	for _, k := range p.keys {
		p.send(k, false)
	}
	p.keys = inpututil.AppendJustReleasedKeys(p.keys[:0])
	for _, k := range p.keys {
		p.send(k, true)
	}
}

func (p *ebitenPoller) send(k ebiten.Key, release bool) {
	code, ok := ebitenScanCodes[k]
	if !ok {
		return
	}
	if code > 0xFF {
		p.kbd.emit(ScanExtended)
	}
	c := uint8(code)
	if release {
		c |= ScanBreak
	}
	p.kbd.emit(c)
}
