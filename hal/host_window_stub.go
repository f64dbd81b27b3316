//go:build !cgo

package hal

import "errors"

// ErrNoWindow is returned by RunWindow in builds without cgo.
var ErrNoWindow = errors.New("window mode requires cgo; run with -headless")

func RunWindow(HostConfig, func(HAL) func() error) error { return ErrNoWindow }
