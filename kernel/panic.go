package kernel

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"candycane/console"
	"candycane/kfmt"
	"candycane/video"
)

// Registers is the CPU state shown on the crash screen.
type Registers struct {
	EAX, EBX, ECX, EDX uint32
	ESI, EDI, ESP, EBP uint32
	EIP                uint32
	EFLAGS             uint32
	CR0, CR2, CR3      uint32
}

// PanicInfo describes a kernel crash.
type PanicInfo struct {
	Registers Registers
	Value     any
	Stack     []byte
}

// PanicBackground is the crash screen color.
var PanicBackground = video.RGB(50, 50, 200)

type crashState struct {
	once sync.Once
}

// Call runs fn on the kernel's behalf. A panic in fn is recovered and
// turned into the crash screen. Nothing runs once the kernel has halted.
func (s *System) Call(fn func()) {
	if s.Halted() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.Panic(PanicInfo{
				Registers: captureRegisters(),
				Value:     r,
				Stack:     debug.Stack(),
			})
		}
	}()
	fn()
}

// Panic shows the crash screen and halts the kernel. Only the first call
// has any effect.
func (s *System) Panic(info PanicInfo) {
	s.crash.once.Do(func() {
		s.halted.Store(true)

		if s.log != nil {
			s.logf("{s} panic: {s}", kfmt.Str(s.osName), kfmt.Str(fmt.Sprint(info.Value)))
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line == "" {
					continue
				}
				s.log.WriteLineString(line)
			}
		}

		DumpRegisters(s.Console, s.osName, info.Registers)
		if info.Value != nil {
			kfmt.Println(s.Console, "panic: {s}", kfmt.Str(fmt.Sprint(info.Value)))
		}
		if d := s.hal.Display(); d != nil {
			if fb := d.Framebuffer(); fb != nil {
				_ = fb.Present()
			}
		}
	})
}

// DumpRegisters clears c to the crash background and prints regs.
func DumpRegisters(c *console.Console, osName string, regs Registers) {
	c.Clear(video.White, PanicBackground)
	kfmt.Println(c, "--- {s} CRASHED: REGISTER DUMP ---", kfmt.Str(osName))

	reg := func(name string, v uint32) {
		kfmt.Println(c, "{s}: {u4h}", kfmt.Str(name), kfmt.U32(v))
	}
	reg("EAX", regs.EAX)
	reg("EBX", regs.EBX)
	reg("ECX", regs.ECX)
	reg("EDX", regs.EDX)
	reg("ESI", regs.ESI)
	reg("EDI", regs.EDI)
	reg("ESP", regs.ESP)
	reg("EBP", regs.EBP)
	reg("EIP", regs.EIP)
	kfmt.Println(c, "{s}: {u4b}", kfmt.Str("EFLAGS"), kfmt.U32(regs.EFLAGS))
	reg("CR0", regs.CR0)
	reg("CR2", regs.CR2)
	reg("CR3", regs.CR3)

	kfmt.Println(c, "-----------------------------------")
}

// captureRegisters records what a hosted kernel can observe: the low 32
// bits of the program counter that panicked. The rest read as zero.
func captureRegisters() Registers {
	var pcs [1]uintptr
	// Skip runtime.Callers, this function, the deferred closure and
	// runtime.gopanic.
	if runtime.Callers(4, pcs[:]) == 0 {
		return Registers{}
	}
	return Registers{EIP: uint32(pcs[0])}
}
