package hal

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MultibootMagic is the value a compliant loader leaves in EAX.
const MultibootMagic = 0x2BADB002

// Multiboot info flag bits used by the kernel.
const (
	MultibootFlagMemory      = 1 << 0
	MultibootFlagFramebuffer = 1 << 12
)

// Offsets into the multiboot v1 info block.
const (
	mbFlags      = 0
	mbMemLower   = 4
	mbMemUpper   = 8
	mbFBAddr     = 88
	mbFBPitch    = 96
	mbFBWidth    = 100
	mbFBHeight   = 104
	mbFBBpp      = 108
	mbFBType     = 109
	mbFBColorPos = 110

	// MultibootInfoSize covers every field up to the RGB color info.
	MultibootInfoSize = 116
)

var (
	ErrBadMultibootMagic = errors.New("bad multiboot magic")
	ErrShortMultiboot    = errors.New("multiboot info block too short")
)

// MultibootInfo is the subset of the multiboot info block the kernel reads.
type MultibootInfo struct {
	Flags       uint32
	MemLower    uint32
	MemUpper    uint32
	Framebuffer FramebufferInfo
}

func (m MultibootInfo) HasMemory() bool      { return m.Flags&MultibootFlagMemory != 0 }
func (m MultibootInfo) HasFramebuffer() bool { return m.Flags&MultibootFlagFramebuffer != 0 }

// ParseMultiboot decodes a raw multiboot info block.
func ParseMultiboot(magic uint32, b []byte) (MultibootInfo, error) {
	if magic != MultibootMagic {
		return MultibootInfo{}, fmt.Errorf("%w: %#x", ErrBadMultibootMagic, magic)
	}
	if len(b) < 4 {
		return MultibootInfo{}, fmt.Errorf("%w: %d bytes", ErrShortMultiboot, len(b))
	}

	le := binary.LittleEndian
	var m MultibootInfo
	m.Flags = le.Uint32(b[mbFlags:])

	if m.HasMemory() {
		if len(b) < mbMemUpper+4 {
			return MultibootInfo{}, fmt.Errorf("%w: memory fields", ErrShortMultiboot)
		}
		m.MemLower = le.Uint32(b[mbMemLower:])
		m.MemUpper = le.Uint32(b[mbMemUpper:])
	}

	if m.HasFramebuffer() {
		if len(b) < MultibootInfoSize {
			return MultibootInfo{}, fmt.Errorf("%w: framebuffer fields", ErrShortMultiboot)
		}
		fb := &m.Framebuffer
		fb.Addr = le.Uint64(b[mbFBAddr:])
		fb.Pitch = le.Uint32(b[mbFBPitch:])
		fb.Width = le.Uint32(b[mbFBWidth:])
		fb.Height = le.Uint32(b[mbFBHeight:])
		fb.BitsPerPixel = b[mbFBBpp]
		fb.Type = FramebufferType(b[mbFBType])
		if fb.Type == FramebufferRGB {
			c := b[mbFBColorPos:]
			fb.Red = Channel{Position: c[0], MaskSize: c[1]}
			fb.Green = Channel{Position: c[2], MaskSize: c[3]}
			fb.Blue = Channel{Position: c[4], MaskSize: c[5]}
		}
	}
	return m, nil
}

// EncodeMultiboot produces an info block in the loader's layout. Host
// platforms use it to boot the kernel through the same path as hardware.
func EncodeMultiboot(m MultibootInfo) []byte {
	b := make([]byte, MultibootInfoSize)
	le := binary.LittleEndian
	le.PutUint32(b[mbFlags:], m.Flags)
	le.PutUint32(b[mbMemLower:], m.MemLower)
	le.PutUint32(b[mbMemUpper:], m.MemUpper)

	fb := m.Framebuffer
	le.PutUint64(b[mbFBAddr:], fb.Addr)
	le.PutUint32(b[mbFBPitch:], fb.Pitch)
	le.PutUint32(b[mbFBWidth:], fb.Width)
	le.PutUint32(b[mbFBHeight:], fb.Height)
	b[mbFBBpp] = fb.BitsPerPixel
	b[mbFBType] = uint8(fb.Type)
	c := b[mbFBColorPos:]
	c[0], c[1] = fb.Red.Position, fb.Red.MaskSize
	c[2], c[3] = fb.Green.Position, fb.Green.MaskSize
	c[4], c[5] = fb.Blue.Position, fb.Blue.MaskSize
	return b
}
