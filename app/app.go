package app

import (
	"candycane/console"
	"candycane/hal"
	"candycane/kernel"
	"candycane/video"
)

type Config struct {
	OSName     string
	BlinkTicks uint64
	// Logo draws the candy cane sprite in the bottom right corner.
	Logo bool
	// PanicAfter crashes the kernel on purpose once this many timer ticks
	// have passed. Zero disables it.
	PanicAfter uint64
}

// New boots the kernel with default config and returns its main loop step.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{Logo: true})
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	sys, err := kernel.Boot(kernel.BootConfig{
		HAL:        h,
		OSName:     cfg.OSName,
		BlinkTicks: cfg.BlinkTicks,
	})
	if err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString(err.Error())
		}
		return func() error { return err }
	}

	if cfg.Logo {
		drawLogo(sys.Console)
	}

	return func() error {
		sys.Step()
		if cfg.PanicAfter > 0 && sys.Ticks() >= cfg.PanicAfter {
			sys.Call(func() { panic("panic demo") })
		}
		return nil
	}
}

const logo = "" +
	" .--. \r\n" +
	"/ .. \\\r\n" +
	"|/  \\|\r\n" +
	"    ||\r\n" +
	"    ||\r\n" +
	"    ||\r\n" +
	"    '-"

const logoW, logoH = 6, 7

func drawLogo(c *console.Console) {
	w, h := c.GridSize()
	if w < logoW+1 || h < logoH+8 {
		return
	}
	_ = c.DrawSprite(console.Sprite{
		X:     w - logoW - 1,
		Y:     h - logoH,
		Data:  logo,
		Color: video.RGB(255, 64, 64),
	})
}
