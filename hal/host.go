package hal

import (
	"fmt"
	"os"
	"sync"
)

// Synthetic machine layout reported to the kernel on host platforms.
const (
	hostInfoAddr   = 0x00010000
	hostKernelEnd  = 0x0011A3C0
	hostMemLowerKB = 639
	hostMemUpperKB = 130048
	hostLFBAddr    = 0xFD000000
	hostTextAddr   = 0x000B8000
)

// HostConfig describes the emulated display.
//
// Width and Height are pixels, or character cells when Text is set.
type HostConfig struct {
	Width        int
	Height       int
	BitsPerPixel int
	Text         bool
}

// DefaultHostConfig is a 640x480 32bpp linear framebuffer.
func DefaultHostConfig() HostConfig {
	return HostConfig{Width: 640, Height: 480, BitsPerPixel: 32}
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	irq    *hostIRQ
	t      *hostTime
	boot   BootInfo
}

// New returns a host HAL implementation.
func New(cfg HostConfig) (HAL, error) {
	return newHost(cfg)
}

func newHost(cfg HostConfig) (*hostHAL, error) {
	info, err := cfg.FramebufferInfo()
	if err != nil {
		return nil, err
	}
	fb := newHostFramebuffer(info)
	if err := info.Validate(len(fb.buf)); err != nil {
		return nil, fmt.Errorf("hal: host framebuffer: %w", err)
	}

	mb := EncodeMultiboot(MultibootInfo{
		Flags:       MultibootFlagMemory | MultibootFlagFramebuffer,
		MemLower:    hostMemLowerKB,
		MemUpper:    hostMemUpperKB,
		Framebuffer: info,
	})

	kbd := newHostKeyboard()
	return &hostHAL{
		logger: &hostLogger{w: os.Stdout},
		fb:     fb,
		kbd:    kbd,
		irq:    newHostIRQ(kbd.ch),
		t:      newHostTime(),
		boot: BootInfo{
			Magic:     MultibootMagic,
			InfoAddr:  hostInfoAddr,
			Info:      mb,
			KernelEnd: hostKernelEnd,
			FreeStart: (hostKernelEnd + 0xFFF) &^ 0xFFF,
		},
	}, nil
}

// FramebufferInfo returns the descriptor the host loader reports for cfg.
func (cfg HostConfig) FramebufferInfo() (FramebufferInfo, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return FramebufferInfo{}, fmt.Errorf("hal: invalid host display %dx%d", cfg.Width, cfg.Height)
	}
	info := FramebufferInfo{
		Width:  uint32(cfg.Width),
		Height: uint32(cfg.Height),
	}
	if cfg.Text {
		info.Addr = hostTextAddr
		info.Type = FramebufferEGAText
		info.BitsPerPixel = 16
		info.Pitch = info.Width * 2
		return info, nil
	}

	info.Addr = hostLFBAddr
	info.Type = FramebufferRGB
	info.BitsPerPixel = uint8(cfg.BitsPerPixel)
	switch cfg.BitsPerPixel {
	case 32, 24:
		info.Red = Channel{Position: 16, MaskSize: 8}
		info.Green = Channel{Position: 8, MaskSize: 8}
		info.Blue = Channel{Position: 0, MaskSize: 8}
	case 16:
		info.Red = Channel{Position: 11, MaskSize: 5}
		info.Green = Channel{Position: 5, MaskSize: 6}
		info.Blue = Channel{Position: 0, MaskSize: 5}
	case 15:
		info.Red = Channel{Position: 10, MaskSize: 5}
		info.Green = Channel{Position: 5, MaskSize: 5}
		info.Blue = Channel{Position: 0, MaskSize: 5}
	default:
		return FramebufferInfo{}, fmt.Errorf("hal: %w: %d", ErrUnsupportedDepth, cfg.BitsPerPixel)
	}
	// Scan lines are padded to 4 bytes the way VBE modes report them.
	line := info.Width * uint32(info.BytesPerPixel())
	info.Pitch = (line + 3) &^ 3
	return info, nil
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) Display() Display       { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input           { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Interrupts() Interrupts { return h.irq }
func (h *hostHAL) Time() Time             { return h.t }
func (h *hostHAL) Boot() BootInfo         { return h.boot }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostKeyboard is the keyboard data line. Host input sources emit scan
// codes onto it; the interrupt controller delivers them.
type hostKeyboard struct {
	ch chan uint8
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan uint8, 256)}
}

func (k *hostKeyboard) ScanCodes() <-chan uint8 { return k.ch }

// emit drops the code when the line is full, like a PS/2 controller whose
// output buffer was never read.
func (k *hostKeyboard) emit(code uint8) {
	select {
	case k.ch <- code:
	default:
	}
}
