//go:build unix

package hal

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// ErrNotTerminal is returned when stdin cannot be put into raw mode.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// stdinKeyboard reads raw stdin and types each byte onto the keyboard line
// as scan codes. Ctrl-C calls onInterrupt instead.
type stdinKeyboard struct {
	kbd         *hostKeyboard
	onInterrupt func()

	fd          int
	oldState    *term.State
	nonblockSet bool
	stopCh      chan struct{}
	done        chan struct{}
	stopped     sync.Once
}

func newStdinKeyboard(kbd *hostKeyboard, onInterrupt func()) *stdinKeyboard {
	return &stdinKeyboard{
		kbd:         kbd,
		onInterrupt: onInterrupt,
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (s *stdinKeyboard) Start() error {
	s.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(s.fd) {
		close(s.done)
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(s.fd)
	if err != nil {
		close(s.done)
		return fmt.Errorf("stdin raw mode: %w", err)
	}
	s.oldState = old

	if err := syscall.SetNonblock(s.fd, true); err != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
		close(s.done)
		return fmt.Errorf("stdin nonblocking: %w", err)
	}
	s.nonblockSet = true

	go s.loop()
	return nil
}

func (s *stdinKeyboard) loop() {
	defer close(s.done)
	buf := make([]byte, 1)
	var codes []uint8
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		n, err := syscall.Read(s.fd, buf)
		if n > 0 {
			if buf[0] == 0x03 && s.onInterrupt != nil {
				s.onInterrupt()
				continue
			}
			codes = ASCIIScanCodes(codes[:0], buf[0])
			for _, c := range codes {
				s.kbd.emit(c)
			}
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Stop ends the reader and restores the terminal.
func (s *stdinKeyboard) Stop() {
	s.stopped.Do(func() { close(s.stopCh) })
	<-s.done
	if s.nonblockSet {
		_ = syscall.SetNonblock(s.fd, false)
		s.nonblockSet = false
	}
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}
