// Package framebuffer manages render targets: the off-screen Framebuffer with
// its color and depth attachments, and the SwapChain standing for the
// window's presentation surface.
package framebuffer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/lumen/internal/gfx"
	"github.com/gogpu/gputypes"
)

var (
	ErrInvalidSize = errors.New("framebuffer size must be positive")
	// ErrLost is returned by every operation on a Framebuffer whose
	// attachments could not be reallocated.
	ErrLost      = errors.New("framebuffer lost")
	ErrDestroyed = errors.New("framebuffer destroyed")
)

// Spec describes a render target.
type Spec struct {
	Width   uint32
	Height  uint32
	Samples uint32
	// SwapChainTarget selects the window's presentation surface instead of
	// an off-screen target.
	SwapChainTarget bool
	// ColorFormat and DepthFormat default to gfx.DefaultColorFormat and
	// gfx.DefaultDepthFormat when undefined.
	ColorFormat gputypes.TextureFormat
	DepthFormat gputypes.TextureFormat
}

func (s Spec) validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	return nil
}

func (s Spec) withDefaults() Spec {
	if s.Samples == 0 {
		s.Samples = 1
	}
	if s.ColorFormat == gputypes.TextureFormatUndefined {
		s.ColorFormat = gfx.DefaultColorFormat
	}
	if s.DepthFormat == gputypes.TextureFormatUndefined {
		s.DepthFormat = gfx.DefaultDepthFormat
	}
	return s
}

// Target is a surface draws can be directed to.
type Target interface {
	Bind() error
	Unbind()
	// Resize changes the target size. Zero or unchanged sizes are ignored.
	Resize(width, height uint32) error
	// ColorAttachmentID returns the sampleable color output, or zero when
	// the target has none.
	ColorAttachmentID() gfx.TextureID
	Spec() Spec
	Destroy()
}

// Option configures a target.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for allocation messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates the target variant selected by spec.SwapChainTarget.
func New(dev gfx.Device, spec Spec, opts ...Option) (Target, error) {
	if spec.SwapChainTarget {
		return NewSwapChain(dev, spec, opts...)
	}
	return NewFramebuffer(dev, spec, opts...)
}

// Framebuffer is an off-screen render target owning exactly one color and one
// depth attachment, both sized to its spec.
type Framebuffer struct {
	dev    gfx.Device
	spec   Spec
	target gfx.TargetID
	color  gfx.TextureID
	depth  gfx.TextureID

	lost      error
	destroyed bool
	logger    *slog.Logger
}

var _ Target = (*Framebuffer)(nil)

// NewFramebuffer allocates a render target and its attachments for spec.
func NewFramebuffer(dev gfx.Device, spec Spec, opts ...Option) (*Framebuffer, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	target, err := dev.CreateTarget()
	if err != nil {
		return nil, fmt.Errorf("create render target: %w", err)
	}
	fb := &Framebuffer{
		dev:    dev,
		spec:   spec.withDefaults(),
		target: target,
		logger: o.logger,
	}
	if err := fb.Invalidate(); err != nil {
		dev.DeleteTarget(target)
		return nil, err
	}
	return fb, nil
}

// Invalidate releases the current attachments and allocates new ones
// matching the current Spec. If allocation fails, everything allocated so far is
// released and the framebuffer is lost.
func (fb *Framebuffer) Invalidate() error {
	if err := fb.usable(); err != nil {
		return err
	}
	fb.release()

	color, depth, err := fb.allocate()
	if err != nil {
		fb.lost = err
		fb.logger.Error("framebuffer lost",
			"target", fb.target,
			"width", fb.spec.Width,
			"height", fb.spec.Height,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrLost, err)
	}
	fb.color, fb.depth = color, depth
	fb.logger.Debug("framebuffer invalidated",
		"target", fb.target,
		"width", fb.spec.Width,
		"height", fb.spec.Height,
		"color", color,
		"depth", depth,
	)
	return nil
}

func (fb *Framebuffer) allocate() (gfx.TextureID, gfx.TextureID, error) {
	desc := gfx.TextureDesc{
		Width:       int(fb.spec.Width),
		Height:      int(fb.spec.Height),
		Usage:       gfx.AttachmentUsage,
		SampleCount: int(fb.spec.Samples),
	}

	colorDesc := desc
	colorDesc.Label = "color"
	colorDesc.Format = fb.spec.ColorFormat
	color, err := fb.dev.CreateTexture(colorDesc)
	if err != nil {
		return 0, 0, fmt.Errorf("allocate color attachment: %w", err)
	}

	depthDesc := desc
	depthDesc.Label = "depth"
	depthDesc.Format = fb.spec.DepthFormat
	depth, err := fb.dev.CreateTexture(depthDesc)
	if err != nil {
		fb.dev.DeleteTexture(color)
		return 0, 0, fmt.Errorf("allocate depth attachment: %w", err)
	}

	fail := func(err error) (gfx.TextureID, gfx.TextureID, error) {
		fb.dev.DeleteTexture(color)
		fb.dev.DeleteTexture(depth)
		return 0, 0, err
	}
	if err := fb.dev.Attach(fb.target, gfx.AttachmentColor0, color); err != nil {
		return fail(err)
	}
	if err := fb.dev.Attach(fb.target, gfx.AttachmentDepthStencil, depth); err != nil {
		return fail(err)
	}
	if err := fb.dev.CheckTarget(fb.target); err != nil {
		return fail(err)
	}
	return color, depth, nil
}

func (fb *Framebuffer) release() {
	if fb.color != 0 {
		fb.dev.DeleteTexture(fb.color)
		fb.color = 0
	}
	if fb.depth != 0 {
		fb.dev.DeleteTexture(fb.depth)
		fb.depth = 0
	}
}

func (fb *Framebuffer) usable() error {
	if fb.destroyed {
		return ErrDestroyed
	}
	if fb.lost != nil {
		return fmt.Errorf("%w: %w", ErrLost, fb.lost)
	}
	return nil
}

// Resize updates the Spec and reallocates the attachments. Zero or
// unchanged sizes leave the framebuffer untouched.
func (fb *Framebuffer) Resize(width, height uint32) error {
	if err := fb.usable(); err != nil {
		return err
	}
	if width == 0 || height == 0 {
		fb.logger.Debug("ignoring degenerate framebuffer resize", "width", width, "height", height)
		return nil
	}
	if width == fb.spec.Width && height == fb.spec.Height {
		return nil
	}
	fb.spec.Width = width
	fb.spec.Height = height
	return fb.Invalidate()
}

// Bind directs subsequent draws into this framebuffer.
func (fb *Framebuffer) Bind() error {
	if err := fb.usable(); err != nil {
		return err
	}
	return fb.dev.BindTarget(fb.target)
}

// Unbind restores the default presentation target.
func (fb *Framebuffer) Unbind() {
	_ = fb.dev.BindTarget(gfx.DefaultTarget)
}

// ColorAttachmentID returns the id of the color attachment, or zero once the
// framebuffer is lost or destroyed.
func (fb *Framebuffer) ColorAttachmentID() gfx.TextureID { return fb.color }

// DepthAttachmentID returns the id of the depth attachment.
func (fb *Framebuffer) DepthAttachmentID() gfx.TextureID { return fb.depth }

// TargetID returns the device render target backing this framebuffer.
func (fb *Framebuffer) TargetID() gfx.TargetID { return fb.target }

func (fb *Framebuffer) Spec() Spec { return fb.spec }

// Lost reports whether a reallocation failed.
func (fb *Framebuffer) Lost() bool { return fb.lost != nil }

// Destroy releases the render target and both attachments.
func (fb *Framebuffer) Destroy() {
	if fb.destroyed {
		return
	}
	fb.destroyed = true
	fb.release()
	fb.dev.DeleteTarget(fb.target)
	fb.logger.Debug("framebuffer destroyed", "target", fb.target)
}
