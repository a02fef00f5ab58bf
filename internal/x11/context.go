package x11

import (
	"image"

	"github.com/BurntSushi/xgbutil/xgraphics"

	"github.com/1broseidon/lumen/internal/gfx"
)

// SoftwareContext renders into a gfx.SoftDevice and presents its backbuffer
// by painting an xgraphics image onto the window. Swap intervals are paced
// against the refresh rate of the monitor the window opened on.
type SoftwareContext struct {
	win    *Window
	device *gfx.SoftDevice
	pacer  *gfx.Pacer
	img    *xgraphics.Image
}

var _ gfx.Context = (*SoftwareContext)(nil)

func newSoftwareContext(w *Window) *SoftwareContext {
	return &SoftwareContext{
		win:   w,
		pacer: gfx.NewPacer(w.refresh),
	}
}

func (c *SoftwareContext) Init() error {
	c.device = gfx.NewSoftDevice(c.win.tr.width, c.win.tr.height, c.win.logger)
	c.win.logger.Debug("software context ready",
		"window", c.win.id,
		"refresh_hz", 1/c.pacer.Period().Seconds(),
	)
	return nil
}

// SwapBuffers waits for the next presentation slot and paints the
// backbuffer.
func (c *SoftwareContext) SwapBuffers() error {
	c.pacer.Wait()
	if c.win.destroyed || c.device == nil {
		return nil
	}

	bb := c.device.Backbuffer()
	if c.img == nil || !c.img.Rect.Eq(bb.Bounds()) {
		if c.img != nil {
			c.img.Destroy()
		}
		c.img = xgraphics.New(c.win.backend.conn.XUtil, bb.Bounds())
		if err := c.img.XSurfaceSet(c.win.id); err != nil {
			c.img = nil
			return err
		}
	}

	copyToBGRA(c.img.Pix, c.img.Stride, bb)
	c.img.XDraw()
	c.img.XPaint(c.win.id)
	return nil
}

func (c *SoftwareContext) SetSwapInterval(interval int) { c.pacer.SetInterval(interval) }

func (c *SoftwareContext) Device() gfx.Device {
	if c.device == nil {
		return nil
	}
	return c.device
}

func (c *SoftwareContext) release() {
	if c.img != nil {
		c.img.Destroy()
		c.img = nil
	}
}

// copyToBGRA converts src into a BGRA pixel buffer of the same size.
func copyToBGRA(dst []uint8, stride int, src *image.RGBA) {
	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		d := dst[y*stride : y*stride+b.Dx()*4]
		for i := 0; i < len(s); i += 4 {
			d[i+0] = s[i+2]
			d[i+1] = s[i+1]
			d[i+2] = s[i+0]
			d[i+3] = s[i+3]
		}
	}
}
