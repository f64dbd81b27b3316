package kernel

import (
	"errors"
	"fmt"
	"sync/atomic"

	"candycane/console"
	"candycane/font"
	"candycane/hal"
	"candycane/internal/buildinfo"
	"candycane/kbd"
	"candycane/kfmt"
	"candycane/video"
)

// DefaultOSName is printed in the banner and the crash header.
const DefaultOSName = "Candy Cane OS"

// Physical load address of the kernel image.
const kernelBase = 0x100000

var ErrNoFramebuffer = errors.New("loader reported no framebuffer")

// BootConfig configures Boot.
type BootConfig struct {
	HAL    hal.HAL
	OSName string
	// BlinkTicks is the cursor blink half-period in timer ticks.
	BlinkTicks uint64
}

// System is the running kernel: display, console, keyboard and the main
// loop state.
type System struct {
	hal    hal.HAL
	log    hal.Logger
	osName string

	Multiboot hal.MultibootInfo
	Surface   video.Surface
	Console   *console.Console
	Keyboard  *kbd.Driver

	mbox       Mailbox
	blink      *console.Blinker
	blinkTicks uint64
	ticks      uint64
	lastBlink  uint64

	crash  crashState
	halted atomic.Bool
}

// Boot brings up the display and keyboard from the loader's information
// and prints the welcome banner.
func Boot(cfg BootConfig) (*System, error) {
	h := cfg.HAL
	if h == nil {
		return nil, errors.New("kernel: nil HAL")
	}
	if cfg.OSName == "" {
		cfg.OSName = DefaultOSName
	}
	if cfg.BlinkTicks == 0 {
		cfg.BlinkTicks = 50
	}

	bi := h.Boot()
	mb, err := hal.ParseMultiboot(bi.Magic, bi.Info)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	if !mb.HasFramebuffer() {
		return nil, fmt.Errorf("kernel: %w", ErrNoFramebuffer)
	}

	var buf []byte
	if d := h.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			buf = fb.Buffer()
		}
	}
	surf, err := video.New(mb.Framebuffer, buf)
	if err != nil {
		return nil, fmt.Errorf("kernel: video: %w", err)
	}

	s := &System{
		hal:        h,
		log:        h.Logger(),
		osName:     cfg.OSName,
		Multiboot:  mb,
		Surface:    surf,
		blinkTicks: cfg.BlinkTicks,
	}

	var opts []console.Option
	irq := h.Interrupts()
	if irq != nil {
		opts = append(opts, console.WithGuard(irq.Gate()))
	}
	s.Console = console.New(surf, font.Width, font.Height, video.White, opts...)
	s.blink = console.NewBlinker(s.Console, video.White)

	s.Keyboard = kbd.New(&s.mbox)
	if irq != nil {
		irq.HandleKeyboard(s.Keyboard.HandleScanCode)
	}

	fbi := mb.Framebuffer
	s.logf("kernel: {s} ({s}) framebuffer {u4}x{u4}x{u1} pitch {u4} at {u8h}",
		kfmt.Str(s.osName), kfmt.Str(buildinfo.Short()),
		kfmt.U32(fbi.Width), kfmt.U32(fbi.Height), kfmt.U8(fbi.BitsPerPixel),
		kfmt.U32(fbi.Pitch), kfmt.U64(fbi.Addr))

	s.printInfo(bi)
	return s, nil
}

func (s *System) printInfo(bi hal.BootInfo) {
	c := s.Console

	c.PutString("Welcome to ")
	for i := 0; i < len(s.osName); i++ {
		if i%2 == 0 {
			c.SetColor(video.RGB(255, 180, 180))
		} else {
			c.SetColor(video.RGB(180, 255, 180))
		}
		c.PutChar(s.osName[i])
	}
	c.PutChar('\n')
	c.SetColor(video.White)

	kfmt.Println(c, "Multiboot Magic Number: {u4h}    Multiboot Info Struct Address: {u4h}",
		kfmt.U32(bi.Magic), kfmt.U32(bi.InfoAddr))
	kfmt.Println(c, "Kernel end address: {u4h}", kfmt.U32(bi.KernelEnd))
	kfmt.Println(c, "Kernel memory used: {u4h}", kfmt.U32(bi.KernelEnd-kernelBase))
	kfmt.Println(c, "Free memory start address: {u4h}", kfmt.U32(bi.FreeStart))

	kfmt.Println(c, "Multiboot info flags: {u4b}", kfmt.U32(s.Multiboot.Flags))
	if s.Multiboot.HasMemory() {
		kfmt.Println(c, "Mem_lower:Mem_upper is {u4h}:{u4h}",
			kfmt.U32(s.Multiboot.MemLower), kfmt.U32(s.Multiboot.MemUpper))
	}
}

func (s *System) logf(format string, args ...kfmt.Arg) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(kfmt.Sprint(format, args...))
}

// Step runs one main loop iteration: render queued keyboard echoes and
// advance the cursor blink. A panic inside it ends in the crash screen;
// check Halted to tell.
func (s *System) Step() {
	s.Call(s.step)
}

func (s *System) step() {
	if s.mbox.Len() > 0 {
		s.blink.Hide()
	}
	for {
		e, ok := s.mbox.TryRecv()
		if !ok {
			break
		}
		e.Render(s.Console)
	}

	if t := s.hal.Time(); t != nil {
		s.drainTicks(t.Ticks())
	}
	if s.ticks-s.lastBlink >= s.blinkTicks {
		s.lastBlink = s.ticks
		s.blink.Step()
	}

	if d := s.hal.Display(); d != nil {
		if fb := d.Framebuffer(); fb != nil {
			_ = fb.Present()
		}
	}
}

func (s *System) drainTicks(ch <-chan uint64) {
	if ch == nil {
		return
	}
	for {
		select {
		case seq := <-ch:
			s.ticks = seq
		default:
			return
		}
	}
}

// Ticks returns the last timer tick the main loop observed.
func (s *System) Ticks() uint64 { return s.ticks }

// Echoes returns the keyboard echo mailbox.
func (s *System) Echoes() *Mailbox { return &s.mbox }

// Halted reports whether the kernel has crashed. A halted System ignores
// Step.
func (s *System) Halted() bool { return s.halted.Load() }
