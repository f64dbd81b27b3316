//go:build !unix

package hal

import "errors"

var ErrNotTerminal = errors.New("stdin is not a terminal")

type stdinKeyboard struct{}

func newStdinKeyboard(*hostKeyboard, func()) *stdinKeyboard { return &stdinKeyboard{} }

func (s *stdinKeyboard) Start() error { return ErrNotTerminal }
func (s *stdinKeyboard) Stop()        {}
