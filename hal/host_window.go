//go:build cgo

package hal

import (
	"fmt"
	"image"

	"candycane/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that shows the framebuffer as the
// scanout hardware would and forwards keyboard input as scan codes.
// It blocks until the window closes.
func RunWindow(cfg HostConfig, newApp func(HAL) func() error) error {
	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	step := newApp(h)

	w, hh := PixelSize(h.fb.info)
	g := &hostGame{h: h, step: step, poller: &ebitenPoller{kbd: h.kbd}}
	ebiten.SetWindowTitle(fmt.Sprintf("Candy Cane OS (%s)", buildinfo.Short()))
	ebiten.SetWindowSize(w*2, hh*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h      *hostHAL
	poller *ebitenPoller
	img    *image.RGBA
	fbImg  *ebiten.Image
	step   func() error
}

func (g *hostGame) Update() error {
	g.poller.poll()
	g.h.t.step(1)
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	img := g.h.fb.snapshot(g.img)
	if img != g.img || g.fbImg == nil {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(img.Bounds().Dx(), img.Bounds().Dy())
	}
	g.img = img

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return PixelSize(g.h.fb.info)
}
