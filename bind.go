package accel3d

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/texture"
)

// texRegisters are the texture unit register values last programmed.
type texRegisters struct {
	base, size, mode uint32
	valid            bool
}

// AddTexture makes t available to BindTexture under its id. A texture
// previously added under the same id is released.
func (c *Context) AddTexture(t *texture.Texture) {
	if old, ok := c.textures[t.ID()]; ok && old != t {
		c.ReleaseTexture(t.ID())
	}
	c.textures[t.ID()] = t
}

// Texture returns the texture added under id.
func (c *Context) Texture(id texture.ID) (*texture.Texture, bool) {
	t, ok := c.textures[id]
	return t, ok
}

// BindTexture selects the texture used by textured primitives and makes
// it resident. Id 0 unbinds. On failure the texture stays bound and
// textured primitives are refused until a bind succeeds, so batches using
// it fall back to software.
func (c *Context) BindTexture(ctx context.Context, id texture.ID) error {
	if id == 0 {
		c.bound = nil
		c.configured = false
		return nil
	}
	t, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	if t != c.bound {
		c.bound = t
		c.configured = false
	}
	c.tex.SetLuminanceAlpha(lumAlpha(&c.state))
	if err := c.prepareTexture(ctx); err != nil {
		c.lastErr = err
		return err
	}
	return nil
}

// ReleaseTexture evicts the texture added under id and forgets it.
func (c *Context) ReleaseTexture(id texture.ID) {
	t, ok := c.textures[id]
	if !ok {
		return
	}
	c.tex.Evict(t)
	delete(c.textures, id)
	if c.bound == t {
		c.bound = nil
		c.configured = false
	}
}

// SetTexturePriority sets the eviction priority of a texture. Textures
// with lower priority are evicted first.
func (c *Context) SetTexturePriority(id texture.ID, p float32) error {
	t, ok := c.textures[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	t.SetPriority(p)
	return nil
}

// TextureResident reports whether the texture added under id has device
// memory.
func (c *Context) TextureResident(id texture.ID) bool {
	t, ok := c.textures[id]
	if !ok {
		return false
	}
	_, ok = c.tex.Resident(t)
	return ok
}

// prepareTexture makes the bound texture resident and current, and
// programs the texture unit when its registers change.
func (c *Context) prepareTexture(ctx context.Context) error {
	t := c.bound
	if err := c.tex.Bind(t); err != nil {
		c.log.Warn("accel3d: texture bind failed", "texture", t.ID(), "err", err)
		return fmt.Errorf("%w: texture %d: %w", ErrTextureUnavailable, t.ID(), err)
	}
	a := c.tex.Allocation(t)
	l := a.Layout()
	regs := texRegisters{
		base:  a.LevelBase(0),
		size:  uint32(bits.Len(uint(l.Side))-1)&device.TexSizeLog2Mask | uint32(l.Levels)<<device.TexSizeLevelsShift&device.TexSizeLevelsMask,
		mode:  texMode(t.Sampler()),
		valid: true,
	}
	if regs != c.texRegs {
		p := &c.prog
		p.Reset()
		p.Emit(device.RegTexBase, regs.base)
		p.Emit(device.RegTexSize, regs.size)
		p.Emit(device.RegTexMode, regs.mode)
		if err := c.sink.Submit(ctx, p); err != nil {
			return err
		}
		c.texRegs = regs
	}
	return nil
}

// lumAlpha reports whether luminance textures are loaded as alpha, which
// the darkening blend needs.
func lumAlpha(st *RenderState) bool {
	b, ok := deviceBlend(st)
	return ok && b == device.BlendLuminance
}

// texMode encodes a sampler into the RegTexMode fields.
func texMode(s texture.Sampler) uint32 {
	var m uint32
	switch s.WrapS {
	case gputypes.AddressModeRepeat:
		m |= device.TexModeRepeatS
	case gputypes.AddressModeMirrorRepeat:
		m |= device.TexModeRepeatS | device.TexModeMirrorS
	}
	switch s.WrapT {
	case gputypes.AddressModeRepeat:
		m |= device.TexModeRepeatT
	case gputypes.AddressModeMirrorRepeat:
		m |= device.TexModeRepeatT | device.TexModeMirrorT
	}
	if s.Mag == gputypes.FilterModeLinear {
		m |= device.TexModeMagLinear
	}
	if s.Min == gputypes.FilterModeLinear {
		m |= device.TexModeMinLinear
	}
	if s.Mipmapped() {
		m |= device.TexModeMipmap
	}
	return m
}

// filters maps a sampler onto the device filters used when a primitive
// magnifies and when it minifies.
func filters(s texture.Sampler) (mag, minify device.TexFilter) {
	mag = device.FilterNearest
	if s.Mag == gputypes.FilterModeLinear {
		mag = device.FilterLinear
	}
	linear := s.Min == gputypes.FilterModeLinear
	switch {
	case !s.Mipmapped():
		minify = device.FilterNearest
		if linear {
			minify = device.FilterLinear
		}
	case s.Mip == gputypes.MipmapFilterModeLinear:
		minify = device.FilterNearestMipLinear
		if linear {
			minify = device.FilterLinearMipLinear
		}
	default:
		minify = device.FilterNearestMipNearest
		if linear {
			minify = device.FilterLinearMipNearest
		}
	}
	return mag, minify
}
