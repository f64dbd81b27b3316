package hal

import (
	"errors"
	"fmt"
)

// FramebufferType mirrors the multiboot framebuffer_type field.
type FramebufferType uint8

const (
	FramebufferIndexed FramebufferType = iota
	FramebufferRGB
	FramebufferEGAText
)

func (t FramebufferType) String() string {
	switch t {
	case FramebufferIndexed:
		return "indexed"
	case FramebufferRGB:
		return "rgb"
	case FramebufferEGAText:
		return "ega-text"
	default:
		return "unknown"
	}
}

// Channel locates one color component inside a packed pixel.
type Channel struct {
	Position uint8
	MaskSize uint8
}

// FramebufferInfo describes display memory. It is immutable after boot.
//
// Addr is the physical address reported by the loader. It is never
// dereferenced; the memory itself is reached through Framebuffer.Buffer.
// For EGA text Width and Height count character cells.
type FramebufferInfo struct {
	Addr         uint64
	Pitch        uint32
	Width        uint32
	Height       uint32
	BitsPerPixel uint8
	Type         FramebufferType

	Red   Channel
	Green Channel
	Blue  Channel
}

var (
	ErrUnsupportedDepth = errors.New("unsupported bits per pixel")
	ErrUnsupportedType  = errors.New("unsupported framebuffer type")
	ErrPitchTooSmall    = errors.New("pitch smaller than a scan line")
	ErrBufferTooSmall   = errors.New("framebuffer region smaller than pitch*height")
)

// BytesPerPixel returns the byte stride of one pixel (or text cell).
func (fi FramebufferInfo) BytesPerPixel() int {
	switch fi.BitsPerPixel {
	case 32:
		return 4
	case 24:
		return 3
	case 16, 15:
		return 2
	default:
		return 0
	}
}

// Validate checks the descriptor against a memory region of bufLen bytes.
func (fi FramebufferInfo) Validate(bufLen int) error {
	switch fi.Type {
	case FramebufferRGB:
		if fi.BytesPerPixel() == 0 {
			return fmt.Errorf("%w: %d", ErrUnsupportedDepth, fi.BitsPerPixel)
		}
	case FramebufferEGAText:
		if fi.BitsPerPixel != 16 {
			return fmt.Errorf("%w: %d for text mode", ErrUnsupportedDepth, fi.BitsPerPixel)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, fi.Type)
	}

	line := uint64(fi.Width) * uint64(fi.BytesPerPixel())
	if uint64(fi.Pitch) < line {
		return fmt.Errorf("%w: pitch %d < %d", ErrPitchTooSmall, fi.Pitch, line)
	}
	if need := uint64(fi.Pitch) * uint64(fi.Height); uint64(bufLen) < need {
		return fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, bufLen, need)
	}
	return nil
}
