package hal

import "sync"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Framebuffer is the display memory handed to the video layer at boot.
//
// Buffer is the region described by Info; the caller that receives it owns
// all writes to it.
type Framebuffer interface {
	Info() FramebufferInfo
	Buffer() []byte
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Keyboard is a PS/2 style device producing scan code set 1 bytes.
type Keyboard interface {
	ScanCodes() <-chan uint8
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Interrupts delivers asynchronous device events.
//
// Gate is held by every handler invocation. Main-flow code locks it to mask
// delivery for the length of a critical section and unlocks it to restore.
type Interrupts interface {
	Gate() sync.Locker
	// HandleKeyboard installs the IRQ1 handler.
	HandleKeyboard(fn func(scanCode uint8))
}

// Time provides a base tick stream.
//
// The tick duration is platform-defined.
type Time interface {
	Ticks() <-chan uint64
}

// BootInfo is what the loader handed the kernel.
type BootInfo struct {
	Magic     uint32
	InfoAddr  uint32
	Info      []byte // raw multiboot info block
	KernelEnd uint32
	FreeStart uint32
}

// HAL provides the only contact point between the kernel and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Interrupts() Interrupts
	Time() Time
	Boot() BootInfo
}
