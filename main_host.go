package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"candycane/app"
	"candycane/hal"

	"golang.org/x/image/bmp"
)

func main() {
	var (
		cfg      hal.HeadlessConfig
		appCfg   app.Config
		dumpPath string
	)
	host := hal.DefaultHostConfig()
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Step rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N steps in headless mode (0 = run forever).")
	flag.BoolVar(&cfg.Stdin, "stdin", true, "Read raw keyboard input from the terminal in headless mode.")
	flag.IntVar(&host.Width, "width", host.Width, "Display width in pixels (cells with -text).")
	flag.IntVar(&host.Height, "height", host.Height, "Display height in pixels (cells with -text).")
	flag.IntVar(&host.BitsPerPixel, "bpp", host.BitsPerPixel, "Bits per pixel: 15, 16, 24 or 32.")
	flag.BoolVar(&host.Text, "text", false, "Use an EGA text mode framebuffer.")
	flag.StringVar(&dumpPath, "dump", "", "Write the final framebuffer to this BMP file (headless).")
	flag.BoolVar(&appCfg.Logo, "logo", true, "Draw the logo sprite.")
	flag.Uint64Var(&appCfg.PanicAfter, "panic-after", 0, "Crash on purpose after N timer ticks (0 = never).")
	flag.Parse()

	if host.Text && !isFlagSet("width") && !isFlagSet("height") {
		host.Width, host.Height = 80, 25
	}

	if !cfg.Enabled {
		if err := hal.RunWindow(host, func(h hal.HAL) func() error {
			return app.NewWithConfig(h, appCfg)
		}); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var machine hal.HAL
	err := hal.RunHeadless(ctx, host, func(h hal.HAL) func() error {
		machine = h
		return app.NewWithConfig(h, appCfg)
	}, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpPath != "" && machine != nil {
		if err := dump(machine, dumpPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

func dump(h hal.HAL, path string) error {
	img := hal.Snapshot(h.Display().Framebuffer())
	if img == nil {
		return errors.New("dump: framebuffer not readable")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("dump: %w", err)
	}
	return f.Close()
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
