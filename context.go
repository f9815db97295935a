// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package accel3d

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/internal/clip"
	"github.com/gogpu/accel3d/internal/fixed"
	"github.com/gogpu/accel3d/internal/setup"
	"github.com/gogpu/accel3d/internal/tess"
	"github.com/gogpu/accel3d/prim"
	"github.com/gogpu/accel3d/texture"
)

// Stats counts context activity.
type Stats struct {
	Batches         int
	RejectedBatches int // batches not fully consumed
	Primitives      int // primitives handled on the device path
	Draws           int // draw commands submitted
	Culled          int // triangles dropped by face culling
	Degenerate      int // primitives or pieces covering no pixel
	Clipped         int // primitives changed or dropped by the left-edge clipper
	Tessellated     int // triangles split to respect the texel span limit
	Leaves          int // triangles emitted by the tesselation engine
	Selections      int // selector runs not served from the cache

	Texture texture.Stats
	Sink    device.SinkStats
}

// Context is the render context of one device: render state, the bound
// texture, the texture memory manager and the path from primitives to
// register programs.
//
// A Context is not safe for concurrent use. The device and its texture
// pool must not be shared with another Context.
type Context struct {
	profile Profile
	sink    *device.Sink
	tex     *texture.Manager
	engine  *setup.Engine
	sel     *selector
	log     *slog.Logger

	state  RenderState
	video  device.VideoMode
	window image.Point

	// Derived from state, window and the bound texture by configure.
	configured bool
	boundGen   uint32 // generation of the bound texture at configure
	clipper    clip.Clipper
	tessCfg    tess.Config
	tessellate bool
	textured   bool

	textures map[texture.ID]*texture.Texture
	bound    *texture.Texture
	texRegs  texRegisters

	tris    []clip.Tri
	prog    device.Program
	stats   Stats
	lastErr error
}

// NewContext returns a context drawing to dev, with textures placed in mem
// by alloc.
func NewContext(dev device.Device, mem device.Memory, alloc device.Allocator, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p, ok := LookupProfile(o.profile)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, o.profile)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	c := &Context{
		profile: p,
		sink:    device.NewSink(dev, device.WithWaitTimeout(o.waitTimeout), device.WithLogger(log)),
		tex: texture.NewManager(alloc, mem,
			texture.WithLogger(log),
			texture.WithMaxSize(p.MaxTextureSize),
		),
		engine:   setup.New(setup.NewScales(o.colorBits, o.depthBits, p.UVMaxTexels, p.MaxTextureSize)),
		sel:      newSelector(),
		log:      log,
		state:    DefaultRenderState(),
		video:    p.VideoMode,
		window:   o.window,
		textures: make(map[texture.ID]*texture.Texture),
	}
	log.Info("accel3d: context created",
		"profile", p.Name,
		"uvMaxTexels", p.UVMaxTexels,
		"window", o.window)
	return c, nil
}

// Profile returns the chip profile of the context.
func (c *Context) Profile() Profile { return c.profile }

// State returns the current render state.
func (c *Context) State() RenderState { return c.state }

// Textures returns the texture memory manager.
func (c *Context) Textures() *texture.Manager { return c.tex }

// LastError returns the error that stopped the last batch or bind, or nil.
func (c *Context) LastError() error { return c.lastErr }

// Stats returns activity counters.
func (c *Context) Stats() Stats {
	s := c.stats
	s.Selections = c.sel.runs
	s.Texture = c.tex.Stats()
	s.Sink = c.sink.Stats()
	return s
}

// UpdateRenderState applies the deltas. Rendering functions are selected
// again before the next batch if the state changed.
func (c *Context) UpdateRenderState(deltas ...StateDelta) {
	next := c.state
	for _, d := range deltas {
		d(&next)
	}
	if next == c.state {
		return
	}
	c.state = next
	c.sel.invalidate()
	c.configured = false
}

// SetVideoMode changes the color buffer format.
func (c *Context) SetVideoMode(m device.VideoMode) {
	if m == c.video {
		return
	}
	c.video = m
	c.sel.invalidate()
	c.configured = false
}

// SetWindow moves the window. A window whose left edge lies off screen
// enables the software clipper.
func (c *Context) SetWindow(origin image.Point) {
	if origin == c.window {
		return
	}
	c.window = origin
	c.configured = false
}

// Selection returns the rendering-function selection for the current
// state, selecting again if the state changed.
func (c *Context) Selection() Selection {
	return *c.sel.resolve(&c.state, c.video)
}

// InvalidateAllDeviceMemory frees every texture allocation. Call it when
// the surrounding display configuration changes; textures are reloaded on
// their next use.
func (c *Context) InvalidateAllDeviceMemory() {
	c.tex.EvictAll()
	c.texRegs = texRegisters{}
	c.configured = false
	c.log.Info("accel3d: device memory invalidated")
}

// configure derives the setup, clip and tesselation configuration from the
// render state, the window and the bound texture, and queues the state
// registers.
func (c *Context) configure(ctx context.Context, sel *Selection) error {
	st := &c.state
	var (
		flags setup.Flags
		attrs prim.Attr
	)
	if st.Caps.Has(CapSmooth) {
		flags |= setup.Smooth
		attrs |= prim.AttrColor
	}
	if st.Caps&(CapDepthTest|CapDepthWrite) != 0 {
		flags |= setup.Depth
		attrs |= prim.AttrDepth
	}
	if st.Caps.Has(CapFog) {
		flags |= setup.Fog
		attrs |= prim.AttrFog
	}

	cfg := setup.Config{Command: sel.Command}
	c.textured = st.Caps.Has(CapTexture) && c.bound != nil
	perspective := c.textured && st.Caps.Has(CapPerspective)
	if c.bound != nil {
		c.boundGen = c.bound.Generation()
	}
	if c.textured {
		t := c.bound
		flags |= setup.Texture
		attrs |= prim.AttrTexture
		if perspective {
			flags |= setup.Perspective
			attrs |= prim.AttrW
		}
		levels := 1
		if t.Mipmapped() {
			flags |= setup.Mipmap
			levels = t.Levels()
		}
		smp := t.Sampler()
		var w, h int
		if t.Levels() > 0 {
			w, h = t.Level(0).Width, t.Level(0).Height
		}
		cfg.Texture = setup.TextureInfo{
			Width:   w,
			Height:  h,
			Levels:  levels,
			RepeatS: smp.WrapS == gputypes.AddressModeRepeat,
			RepeatT: smp.WrapT == gputypes.AddressModeRepeat,
		}
		cfg.MagFilter, cfg.MinFilter = filters(smp)
		c.tessCfg = tess.Config{
			ScaleS:      float64(w),
			ScaleT:      float64(h),
			MaxTexels:   float64(c.profile.UVMaxTexels),
			Attrs:       attrs,
			Perspective: perspective,
		}
	}
	cfg.Flags = flags
	c.engine.Configure(cfg)
	c.tessellate = perspective && c.profile.UVMaxTexels > 0
	c.clipper = clip.New(float32(c.window.X), attrs)
	c.tex.SetLuminanceAlpha(sel.Blend == device.BlendLuminance)

	p := &c.prog
	p.Reset()
	p.Emit(device.RegWindowOrigin, uint32(uint16(int16(c.window.X)))|uint32(uint16(int16(c.window.Y)))<<16)
	p.Emit(device.RegAlphaRef, fixed.ClampUnsigned(int64(fixed.FromFloat(st.AlphaRef, 255)), 8))
	if err := c.sink.Submit(ctx, p); err != nil {
		return err
	}
	c.configured = true
	c.log.Debug("accel3d: configured",
		"flags", uint16(flags),
		"textured", c.textured,
		"tessellate", c.tessellate,
		"clip", c.clipper.Active())
	return nil
}
