package gfx

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxTextureDimension matches the common desktop GPU limit.
const DefaultMaxTextureDimension = 16384

// SoftDevice is a Device that keeps every texture in process memory. Color
// textures are *image.RGBA and depth textures are float32 slices. Ids come
// from a monotonic counter and are never handed out twice.
type SoftDevice struct {
	// MaxTextureDimension bounds texture width and height. Zero means
	// DefaultMaxTextureDimension.
	MaxTextureDimension int

	nextID     uint32
	textures   map[TextureID]*softTexture
	targets    map[TargetID]*softTarget
	bound      TargetID
	backbuffer *image.RGBA
	stats      DeviceStats
	logger     *slog.Logger
}

// DeviceStats counts allocations over the device lifetime.
type DeviceStats struct {
	TexturesCreated int
	TexturesDeleted int
	TargetsCreated  int
	TargetsDeleted  int
	Binds           int
}

type softTexture struct {
	desc  TextureDesc
	color *image.RGBA
	depth []float32
}

type softTarget struct {
	attachments map[AttachmentPoint]TextureID
}

var _ Device = (*SoftDevice)(nil)

// NewSoftDevice creates a device whose default target is width x height.
func NewSoftDevice(width, height int, logger *slog.Logger) *SoftDevice {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &SoftDevice{
		textures: make(map[TextureID]*softTexture),
		targets:  make(map[TargetID]*softTarget),
		logger:   logger,
	}
	d.ResizeDefault(width, height)
	return d
}

func (d *SoftDevice) newID() uint32 {
	d.nextID++
	return d.nextID
}

func (d *SoftDevice) maxDimension() int {
	if d.MaxTextureDimension > 0 {
		return d.MaxTextureDimension
	}
	return DefaultMaxTextureDimension
}

// CreateTarget allocates an empty render target.
func (d *SoftDevice) CreateTarget() (TargetID, error) {
	id := TargetID(d.newID())
	d.targets[id] = &softTarget{attachments: make(map[AttachmentPoint]TextureID)}
	d.stats.TargetsCreated++
	return id, nil
}

// DeleteTarget releases a render target. Attached textures are not deleted.
// Deleting the bound target rebinds the default target.
func (d *SoftDevice) DeleteTarget(id TargetID) {
	if _, ok := d.targets[id]; !ok {
		return
	}
	delete(d.targets, id)
	d.stats.TargetsDeleted++
	if d.bound == id {
		d.bound = DefaultTarget
	}
}

// CreateTexture allocates a texture described by desc.
func (d *SoftDevice) CreateTexture(desc TextureDesc) (TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, desc.Width, desc.Height)
	}
	if limit := d.maxDimension(); desc.Width > limit || desc.Height > limit {
		return 0, fmt.Errorf("%w: %dx%d (max %d)", ErrTextureTooLarge, desc.Width, desc.Height, limit)
	}
	if desc.SampleCount <= 0 {
		desc.SampleCount = 1
	}

	tex := &softTexture{desc: desc}
	switch {
	case IsColorFormat(desc.Format):
		tex.color = image.NewRGBA(image.Rect(0, 0, desc.Width, desc.Height))
	case IsDepthFormat(desc.Format):
		tex.depth = make([]float32, desc.Width*desc.Height)
		for i := range tex.depth {
			tex.depth[i] = 1
		}
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}

	id := TextureID(d.newID())
	d.textures[id] = tex
	d.stats.TexturesCreated++
	d.logger.Debug("texture created", "id", id, "label", desc.Label, "width", desc.Width, "height", desc.Height)
	return id, nil
}

// DeleteTexture releases a texture and detaches it from every target.
func (d *SoftDevice) DeleteTexture(id TextureID) {
	if _, ok := d.textures[id]; !ok {
		return
	}
	delete(d.textures, id)
	d.stats.TexturesDeleted++
	for _, target := range d.targets {
		for point, tex := range target.attachments {
			if tex == id {
				delete(target.attachments, point)
			}
		}
	}
}

// Attach connects texture to the given output of target.
func (d *SoftDevice) Attach(target TargetID, point AttachmentPoint, texture TextureID) error {
	t, ok := d.targets[target]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTarget, target)
	}
	tex, ok := d.textures[texture]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, texture)
	}
	switch point {
	case AttachmentColor0:
		if tex.color == nil {
			return fmt.Errorf("%w: texture %d is not a color texture", ErrIncompleteTarget, texture)
		}
	case AttachmentDepthStencil:
		if tex.depth == nil {
			return fmt.Errorf("%w: texture %d is not a depth texture", ErrIncompleteTarget, texture)
		}
	default:
		return fmt.Errorf("%w: attachment point %v", ErrIncompleteTarget, point)
	}
	t.attachments[point] = texture
	return nil
}

// CheckTarget verifies that target has a color attachment and that all
// attachments agree on size.
func (d *SoftDevice) CheckTarget(target TargetID) error {
	t, ok := d.targets[target]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTarget, target)
	}
	colorID, ok := t.attachments[AttachmentColor0]
	if !ok {
		return fmt.Errorf("%w: missing color attachment", ErrIncompleteTarget)
	}
	want := d.textures[colorID].desc
	for point, id := range t.attachments {
		desc := d.textures[id].desc
		if desc.Width != want.Width || desc.Height != want.Height {
			return fmt.Errorf("%w: %v is %dx%d, color is %dx%d",
				ErrIncompleteTarget, point, desc.Width, desc.Height, want.Width, want.Height)
		}
	}
	return nil
}

// BindTarget makes target the destination of subsequent draws.
func (d *SoftDevice) BindTarget(target TargetID) error {
	if target != DefaultTarget {
		if _, ok := d.targets[target]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTarget, target)
		}
	}
	d.bound = target
	d.stats.Binds++
	return nil
}

// BoundTarget returns the current draw target.
func (d *SoftDevice) BoundTarget() TargetID { return d.bound }

// ResizeDefault reallocates the presentation backbuffer when its size changes.
func (d *SoftDevice) ResizeDefault(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if d.backbuffer != nil {
		b := d.backbuffer.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return
		}
	}
	d.backbuffer = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Backbuffer returns the image backing the default target.
func (d *SoftDevice) Backbuffer() *image.RGBA { return d.backbuffer }

// TextureDesc returns the descriptor a live texture was created with.
func (d *SoftDevice) TextureDesc(id TextureID) (TextureDesc, bool) {
	tex, ok := d.textures[id]
	if !ok {
		return TextureDesc{}, false
	}
	return tex.desc, true
}

// ColorImage returns the pixels of a color texture.
func (d *SoftDevice) ColorImage(id TextureID) (*image.RGBA, bool) {
	tex, ok := d.textures[id]
	if !ok || tex.color == nil {
		return nil, false
	}
	return tex.color, true
}

// Attachment returns the texture attached to point of target.
func (d *SoftDevice) Attachment(target TargetID, point AttachmentPoint) (TextureID, bool) {
	t, ok := d.targets[target]
	if !ok {
		return 0, false
	}
	id, ok := t.attachments[point]
	return id, ok
}

// LiveTextures returns the number of textures currently allocated.
func (d *SoftDevice) LiveTextures() int { return len(d.textures) }

// LiveTargets returns the number of render targets currently allocated.
func (d *SoftDevice) LiveTargets() int { return len(d.targets) }

// Stats returns lifetime allocation counters.
func (d *SoftDevice) Stats() DeviceStats { return d.stats }

// Clear fills the color output of the bound target with c and resets its
// depth output to the far plane.
func (d *SoftDevice) Clear(c color.RGBA) {
	if d.bound == DefaultTarget {
		fill(d.backbuffer, c)
		return
	}
	t := d.targets[d.bound]
	if id, ok := t.attachments[AttachmentColor0]; ok {
		fill(d.textures[id].color, c)
	}
	if id, ok := t.attachments[AttachmentDepthStencil]; ok {
		depth := d.textures[id].depth
		for i := range depth {
			depth[i] = 1
		}
	}
}

// BlitToDefault scales a color texture over the whole backbuffer.
func (d *SoftDevice) BlitToDefault(id TextureID) error {
	src, ok := d.ColorImage(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if d.backbuffer == nil {
		return nil
	}
	dst := d.backbuffer
	if src.Bounds().Eq(dst.Bounds()) {
		xdraw.Draw(dst, dst.Bounds(), src, image.Point{}, xdraw.Src)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return nil
}

func fill(img *image.RGBA, c color.RGBA) {
	if img == nil {
		return
	}
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}
