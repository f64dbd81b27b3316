package hal

import "image"

type hostFramebuffer struct {
	info FramebufferInfo
	buf  []byte
}

func newHostFramebuffer(info FramebufferInfo) *hostFramebuffer {
	return &hostFramebuffer{
		info: info,
		buf:  make([]byte, int(info.Pitch)*int(info.Height)),
	}
}

func (f *hostFramebuffer) Info() FramebufferInfo { return f.info }
func (f *hostFramebuffer) Buffer() []byte        { return f.buf }
func (f *hostFramebuffer) Present() error        { return nil }

// snapshot decodes display memory into img, reallocating it when the size
// differs. It must run on the goroutine that drives the kernel.
func (f *hostFramebuffer) snapshot(img *image.RGBA) *image.RGBA {
	w, h := PixelSize(f.info)
	if img == nil || img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	DecodeRGBA(f.info, f.buf, img.Pix)
	return img
}

// Snapshot returns the current contents of a host framebuffer as an image.
// It returns nil for framebuffers not created by the host HAL.
func Snapshot(fb Framebuffer) *image.RGBA {
	hf, ok := fb.(*hostFramebuffer)
	if !ok {
		return nil
	}
	return hf.snapshot(nil)
}
