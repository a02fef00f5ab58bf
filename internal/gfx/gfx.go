// Package gfx defines the graphics boundary the platform layer depends on:
// the per-window graphics Context and the Device that allocates render
// target attachments.
package gfx

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var (
	ErrInvalidDimensions = errors.New("texture dimensions must be positive")
	ErrTextureTooLarge   = errors.New("texture exceeds device limits")
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrUnknownTexture    = errors.New("unknown texture")
	ErrUnknownTarget     = errors.New("unknown render target")
	ErrIncompleteTarget  = errors.New("render target incomplete")
)

// TextureID names a texture owned by a Device. Zero is never a valid id.
type TextureID uint32

// TargetID names a render target owned by a Device. Zero is the default
// presentation target.
type TargetID uint32

// DefaultTarget is the presentation surface of the context.
const DefaultTarget TargetID = 0

// AttachmentPoint selects which output of a render target a texture feeds.
type AttachmentPoint int

const (
	AttachmentColor0 AttachmentPoint = iota
	AttachmentDepthStencil
)

func (p AttachmentPoint) String() string {
	switch p {
	case AttachmentColor0:
		return "color0"
	case AttachmentDepthStencil:
		return "depth-stencil"
	default:
		return fmt.Sprintf("AttachmentPoint(%d)", int(p))
	}
}

// Default attachment formats.
const (
	DefaultColorFormat = gputypes.TextureFormatRGBA8Unorm
	DefaultDepthFormat = gputypes.TextureFormatDepth24PlusStencil8
)

// AttachmentUsage is the usage every render target attachment is created with:
// it is drawn into and may be sampled elsewhere in the pipeline.
const AttachmentUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

// TextureDesc describes a 2D texture allocation.
type TextureDesc struct {
	Label       string
	Width       int
	Height      int
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	SampleCount int
}

// IsDepthFormat reports whether f stores depth rather than color.
func IsDepthFormat(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatDepth24PlusStencil8
}

// IsColorFormat reports whether f is a supported color format.
func IsColorFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
		return true
	default:
		return false
	}
}

// Device allocates textures and render targets and tracks which target is
// bound for drawing. Devices are used from a single goroutine.
type Device interface {
	CreateTarget() (TargetID, error)
	DeleteTarget(id TargetID)
	CreateTexture(desc TextureDesc) (TextureID, error)
	DeleteTexture(id TextureID)
	Attach(target TargetID, point AttachmentPoint, texture TextureID) error
	CheckTarget(target TargetID) error
	BindTarget(target TargetID) error
	BoundTarget() TargetID
	ResizeDefault(width, height int)
}

// Context is the connection between a native window and the device drawing
// into it. The window that created a Context owns its lifetime.
type Context interface {
	Init() error
	SwapBuffers() error
	// SetSwapInterval sets how many refresh periods SwapBuffers waits for.
	SetSwapInterval(interval int)
	Device() Device
}
