package kernel

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"candycane/font"
	"candycane/hal"
	"candycane/kbd"
	"candycane/video"
)

type testFB struct {
	info     hal.FramebufferInfo
	buf      []byte
	presents int
}

func (f *testFB) Info() hal.FramebufferInfo    { return f.info }
func (f *testFB) Buffer() []byte               { return f.buf }
func (f *testFB) Framebuffer() hal.Framebuffer { return f }

func (f *testFB) Present() error {
	f.presents++
	return nil
}

type testIRQ struct {
	gate sync.Mutex
	kbd  func(uint8)
}

func (q *testIRQ) Gate() sync.Locker             { return &q.gate }
func (q *testIRQ) HandleKeyboard(fn func(uint8)) { q.kbd = fn }

func (q *testIRQ) fire(code uint8) {
	q.gate.Lock()
	defer q.gate.Unlock()
	q.kbd(code)
}

type testLog struct{ lines []string }

func (l *testLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type testTime struct{ ch chan uint64 }

func (t testTime) Ticks() <-chan uint64 { return t.ch }

type testHAL struct {
	boot  hal.BootInfo
	fb    *testFB
	irq   *testIRQ
	log   *testLog
	ticks chan uint64
}

func (h *testHAL) Logger() hal.Logger         { return h.log }
func (h *testHAL) Display() hal.Display       { return h.fb }
func (h *testHAL) Input() hal.Input           { return nil }
func (h *testHAL) Interrupts() hal.Interrupts { return h.irq }
func (h *testHAL) Time() hal.Time             { return testTime{ch: h.ticks} }
func (h *testHAL) Boot() hal.BootInfo         { return h.boot }

// newTextHAL returns an 80x25 EGA text machine.
func newTextHAL() *testHAL {
	info := hal.FramebufferInfo{
		Addr:         0xB8000,
		Pitch:        160,
		Width:        80,
		Height:       25,
		BitsPerPixel: 16,
		Type:         hal.FramebufferEGAText,
	}
	mb := hal.EncodeMultiboot(hal.MultibootInfo{
		Flags:       hal.MultibootFlagMemory | hal.MultibootFlagFramebuffer,
		MemLower:    0x27F,
		MemUpper:    0x1FC00,
		Framebuffer: info,
	})
	return &testHAL{
		boot: hal.BootInfo{
			Magic:     hal.MultibootMagic,
			InfoAddr:  0x10000,
			Info:      mb,
			KernelEnd: 0x0011A3C0,
			FreeStart: 0x0011B000,
		},
		fb:    &testFB{info: info, buf: make([]byte, 160*25)},
		irq:   &testIRQ{},
		log:   &testLog{},
		ticks: make(chan uint64, 16),
	}
}

// newLinearHAL returns a 640x200 32bpp machine, an 80x25 cell grid.
func newLinearHAL() *testHAL {
	h := newTextHAL()
	info := hal.FramebufferInfo{
		Addr:         0xFD000000,
		Pitch:        640 * 4,
		Width:        640,
		Height:       200,
		BitsPerPixel: 32,
		Type:         hal.FramebufferRGB,
		Red:          hal.Channel{Position: 16, MaskSize: 8},
		Green:        hal.Channel{Position: 8, MaskSize: 8},
		Blue:         hal.Channel{Position: 0, MaskSize: 8},
	}
	h.boot.Info = hal.EncodeMultiboot(hal.MultibootInfo{
		Flags:       hal.MultibootFlagMemory | hal.MultibootFlagFramebuffer,
		MemLower:    0x27F,
		MemUpper:    0x1FC00,
		Framebuffer: info,
	})
	h.fb = &testFB{info: info, buf: make([]byte, 640*4*200)}
	return h
}

func boot(t *testing.T, h *testHAL) *System {
	t.Helper()
	s, err := Boot(BootConfig{HAL: h})
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	return s
}

func row(s *System, y int) string {
	txt := s.Surface.(*video.Text)
	var b strings.Builder
	for x := 0; x < 80; x++ {
		ch, _ := txt.Cell(x, y)
		b.WriteByte(ch)
	}
	return strings.TrimRight(b.String(), " \x00")
}

func TestBootBanner(t *testing.T) {
	s := boot(t, newTextHAL())

	want := []string{
		"Welcome to Candy Cane OS",
		"Multiboot Magic Number: 0x2BADB002    Multiboot Info Struct Address: 0x10000",
		"Kernel end address: 0x11A3C0",
		"Kernel memory used: 0x1A3C0",
		"Free memory start address: 0x11B000",
		"Multiboot info flags: 0b1000000000001",
		"Mem_lower:Mem_upper is 0x27F:0x1FC00",
	}
	for y, w := range want {
		if got := row(s, y); got != w {
			t.Fatalf("row %d = %q; want %q", y, got, w)
		}
	}
	if x, y := s.Console.Cursor(); x != 0 || y != len(want) {
		t.Fatalf("Cursor() = %d,%d; want 0,%d", x, y, len(want))
	}
}

func TestBootErrors(t *testing.T) {
	h := newTextHAL()
	h.boot.Magic = 0x1BADB002
	if _, err := Boot(BootConfig{HAL: h}); !errors.Is(err, hal.ErrBadMultibootMagic) {
		t.Fatalf("Boot(bad magic) = %v; want ErrBadMultibootMagic", err)
	}

	h = newTextHAL()
	h.boot.Info = hal.EncodeMultiboot(hal.MultibootInfo{Flags: hal.MultibootFlagMemory})
	if _, err := Boot(BootConfig{HAL: h}); !errors.Is(err, ErrNoFramebuffer) {
		t.Fatalf("Boot(no framebuffer) = %v; want ErrNoFramebuffer", err)
	}

	h = newTextHAL()
	h.fb.buf = h.fb.buf[:100]
	if _, err := Boot(BootConfig{HAL: h}); !errors.Is(err, hal.ErrBufferTooSmall) {
		t.Fatalf("Boot(short buffer) = %v; want ErrBufferTooSmall", err)
	}
}

func TestKeyboardEchoDeferred(t *testing.T) {
	h := newTextHAL()
	s := boot(t, h)

	h.irq.fire(0x2A)
	h.irq.fire(0x1E)
	if got := row(s, 7); got != "" {
		t.Fatalf("interrupt handler drew %q before the main loop ran", got)
	}
	if s.Echoes().Len() != 2 {
		t.Fatalf("queued echoes = %d; want 2", s.Echoes().Len())
	}
	if s.Keyboard.Special() != kbd.LShift {
		t.Fatalf("Special() = %08b; want %08b", s.Keyboard.Special(), kbd.LShift)
	}

	s.Step()
	if got, want := row(s, 7), "0x2A 0b1 0x1E 0b1"; got != want {
		t.Fatalf("row 7 = %q; want %q", got, want)
	}
	if s.Echoes().Len() != 0 {
		t.Fatalf("queued echoes after Step = %d; want 0", s.Echoes().Len())
	}
	if _, attr := s.Surface.(*video.Text).Cell(0, 7); attr&0x0F != 14 {
		t.Fatalf("echo attribute = %#x; want yellow foreground", attr)
	}
}

func TestCursorBlink(t *testing.T) {
	h := newTextHAL()
	s := boot(t, h)
	txt := s.Surface.(*video.Text)

	s.Step()
	if _, attr := txt.Cell(0, 7); attr != 0x00 {
		t.Fatalf("cursor cell attr before blink period = %#x; want 0", attr)
	}

	h.ticks <- 50
	s.Step()
	if _, attr := txt.Cell(0, 7); attr != 0xFF {
		t.Fatalf("cursor cell attr after first blink = %#x; want 0xff", attr)
	}

	h.ticks <- 75
	s.Step()
	if _, attr := txt.Cell(0, 7); attr != 0xFF {
		t.Fatalf("cursor blinked early: attr %#x", attr)
	}

	h.ticks <- 99
	h.ticks <- 100
	s.Step()
	if _, attr := txt.Cell(0, 7); attr != 0x00 {
		t.Fatalf("cursor cell attr after second blink = %#x; want 0", attr)
	}
	if s.Ticks() != 100 {
		t.Fatalf("Ticks() = %d; want 100", s.Ticks())
	}
}

func TestEchoClearsCursorBlock(t *testing.T) {
	h := newLinearHAL()
	s := boot(t, h)
	cx, cy := s.Console.Cursor()

	h.ticks <- 50
	s.Step()
	h.irq.fire(0x1E)
	s.Step()

	g := &font.Basic8x8['0']
	pitch := int(h.fb.info.Pitch)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			off := (cy*8+row)*pitch + (cx*8+col)*4
			px := h.fb.buf[off : off+3]
			black := px[0] == 0 && px[1] == 0 && px[2] == 0
			if g.Set(col, row) == black {
				t.Fatalf("echo glyph pixel (%d,%d) = % x; lit=%v", col, row, px, g.Set(col, row))
			}
		}
	}
}

func TestPanicScreen(t *testing.T) {
	h := newTextHAL()
	s := boot(t, h)

	s.Call(func() { panic("boom") })
	if !s.Halted() {
		t.Fatal("Halted() = false after panic")
	}

	want := map[int]string{
		0:  "--- Candy Cane OS CRASHED: REGISTER DUMP ---",
		1:  "EAX: 0x0",
		8:  "EBP: 0x0",
		10: "EFLAGS: 0b0",
		11: "CR0: 0x0",
		13: "CR3: 0x0",
		14: "-----------------------------------",
		15: "panic: boom",
	}
	for y, w := range want {
		if got := row(s, y); got != w {
			t.Fatalf("row %d = %q; want %q", y, got, w)
		}
	}
	if !strings.HasPrefix(row(s, 9), "EIP: 0x") {
		t.Fatalf("row 9 = %q; want EIP line", row(s, 9))
	}
	if _, attr := s.Surface.(*video.Text).Cell(0, 1); attr != 0x9F {
		t.Fatalf("dump attribute = %#x; want white on blue 0x9f", attr)
	}
	if _, attr := s.Surface.(*video.Text).Cell(79, 24); attr != 0x99 {
		t.Fatalf("background attribute = %#x; want 0x99", attr)
	}

	var logged bool
	for _, l := range h.log.lines {
		if strings.Contains(l, "panic: boom") {
			logged = true
		}
	}
	if !logged {
		t.Fatalf("panic not logged: %q", h.log.lines)
	}
}

func TestPanicOnce(t *testing.T) {
	h := newTextHAL()
	s := boot(t, h)

	s.Panic(PanicInfo{Registers: Registers{EAX: 0xDEADBEEF, EFLAGS: 0x202}})
	if got := row(s, 1); got != "EAX: 0xDEADBEEF" {
		t.Fatalf("row 1 = %q; want EAX: 0xDEADBEEF", got)
	}
	if got := row(s, 10); got != "EFLAGS: 0b1000000010" {
		t.Fatalf("row 10 = %q; want EFLAGS: 0b1000000010", got)
	}

	s.Panic(PanicInfo{Registers: Registers{EAX: 1}})
	if got := row(s, 1); got != "EAX: 0xDEADBEEF" {
		t.Fatalf("second Panic redrew the screen: row 1 = %q", got)
	}

	h.irq.fire(0x1E)
	s.Step()
	if s.Echoes().Len() != 1 {
		t.Fatal("halted kernel drained the echo mailbox")
	}
}
