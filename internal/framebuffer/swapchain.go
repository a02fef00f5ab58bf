package framebuffer

import (
	"log/slog"

	"github.com/1broseidon/lumen/internal/gfx"
)

// SwapChain is the window's presentation surface seen as a Target. It owns
// no attachments; binding it directs draws to the default target.
type SwapChain struct {
	dev       gfx.Device
	spec      Spec
	destroyed bool
	logger    *slog.Logger
}

var _ Target = (*SwapChain)(nil)

// NewSwapChain sizes the device's default surface to spec.
func NewSwapChain(dev gfx.Device, spec Spec, opts ...Option) (*SwapChain, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	spec = spec.withDefaults()
	spec.SwapChainTarget = true
	dev.ResizeDefault(int(spec.Width), int(spec.Height))
	return &SwapChain{dev: dev, spec: spec, logger: o.logger}, nil
}

func (s *SwapChain) Bind() error {
	if s.destroyed {
		return ErrDestroyed
	}
	return s.dev.BindTarget(gfx.DefaultTarget)
}

func (s *SwapChain) Unbind() {
	_ = s.dev.BindTarget(gfx.DefaultTarget)
}

// Resize resizes the default surface. Zero or unchanged sizes are ignored.
func (s *SwapChain) Resize(width, height uint32) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if width == 0 || height == 0 || (width == s.spec.Width && height == s.spec.Height) {
		return nil
	}
	s.spec.Width = width
	s.spec.Height = height
	s.dev.ResizeDefault(int(width), int(height))
	s.logger.Debug("swap chain resized", "width", width, "height", height)
	return nil
}

// ColorAttachmentID is always zero: the presentation surface cannot be
// sampled.
func (s *SwapChain) ColorAttachmentID() gfx.TextureID { return 0 }

func (s *SwapChain) Spec() Spec { return s.spec }

func (s *SwapChain) Destroy() { s.destroyed = true }
