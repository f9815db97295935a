// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package setup turns screen-space primitives into register programs.
//
// For a triangle it computes the edge walker (dominant edge and two sub
// edges, scanline counts) and, for every active attribute, a start value at
// the first sampled scanline, a step per pixel along the scan direction (the
// X-derivative) and a step per scanline along the dominant edge (the
// Y-derivative). All values are converted to the device's fixed-point
// encodings before they are queued.
//
// X-derivatives of a plane do not change when a triangle is cut into pieces,
// so in the affine case they are computed once per source triangle and only
// their sign is flipped when a piece scans in the other direction. Under
// perspective correction texture values are renormalized per piece and the
// derivatives are recomputed every time.
package setup

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/prim"
)

// Flags select the attributes the device interpolates.
type Flags uint16

// Setup flags.
const (
	Smooth      Flags = 1 << iota // Gouraud color; flat otherwise
	Depth                         // depth test or write
	Texture                       // texture mapping
	Perspective                   // perspective-correct texture coordinates
	Mipmap                        // per-primitive level of detail
	Fog                           // fog factor
)

// Has reports whether every flag in m is set.
func (f Flags) Has(m Flags) bool { return f&m == m }

// Scales hold the register units of one unit of each attribute.
type Scales struct {
	Color float64 // per 1.0 of a color channel
	Depth float64 // per 1.0 of depth
	Tex   float64 // per texel
	Q     float64 // per 1.0 of the normalized perspective weight
	Fog   float64 // per 1.0 of fog
}

// NewScales derives the scales from the frame buffer depths and the
// texture limits of the device.
//
// Colors carry 12 fraction bits below the channel range. Depth fills the
// top bits of a signed 32-bit register. The texture scale is the largest
// power of two that keeps uvMax+maxTex texels within 30 bits, since
// coordinates are rebased per primitive and never exceed that span.
func NewScales(colorBits, depthBits, uvMax, maxTex int) Scales {
	colorBits = min(max(colorBits, 1), 8)
	depthBits = min(max(depthBits, 1), 32)
	texSpan := float64(max(uvMax+maxTex, 1))
	return Scales{
		Color: float64(int(1)<<colorBits-1) * (1 << 12),
		Depth: (math.Exp2(float64(depthBits)) - 1) * math.Exp2(float64(31-depthBits)),
		Tex:   math.Exp2(math.Floor(math.Log2((1 << 30) / texSpan))),
		Q:     1 << 30,
		Fog:   255 * (1 << 12),
	}
}

// TextureInfo describes the bound texture as far as setup is concerned.
type TextureInfo struct {
	Width, Height    int // texels of level 0
	Levels           int // mip levels available to the device
	RepeatS, RepeatT bool
}

// Config is the per-state setup configuration.
type Config struct {
	Flags   Flags
	Command device.Command // mode bits; primitive type and scan direction are set per primitive
	Texture TextureInfo

	// MagFilter is used when the primitive magnifies (level 0),
	// MinFilter otherwise.
	MagFilter, MinFilter device.TexFilter
}

// Engine computes register programs for primitives. The program returned
// by each call is owned by the engine and valid until the next call.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	scales Scales
	prog   device.Program
	cache  xcache
	lod    float32

	flat    f32.Vec4
	hasFlat bool
}

// New returns an engine with the given scales.
func New(s Scales) *Engine {
	return &Engine{scales: s}
}

// Configure replaces the configuration and invalidates cached derivatives.
func (e *Engine) Configure(cfg Config) {
	e.cfg = cfg
	e.cache.valid = false
}

// Config returns the current configuration.
func (e *Engine) Config() Config { return e.cfg }

// Scales returns the register scales.
func (e *Engine) Scales() Scales { return e.scales }

// Begin starts a new source primitive. Cached X-derivatives belong to the
// previous source triangle and are dropped. Under flat shading every piece
// of the primitive takes its color from provoking; nil selects the last
// vertex of each piece.
func (e *Engine) Begin(provoking *prim.Vertex) {
	e.cache.valid = false
	e.hasFlat = provoking != nil
	if e.hasFlat {
		e.flat = provoking.Color
	}
}

// LOD returns the level of detail chosen for the last textured primitive.
func (e *Engine) LOD() float32 { return e.lod }

// attr indexes the interpolated attributes.
type attr int

const (
	attrR attr = iota
	attrG
	attrB
	attrA
	attrZ
	attrS
	attrT
	attrQ
	attrF
	numAttrs
)

// attrRegs lists start, X-step and dominant Y-step registers per attribute.
var attrRegs = [numAttrs][3]device.Register{
	attrR: {device.RegRStart, device.RegDRdx, device.RegDRdyDom},
	attrG: {device.RegGStart, device.RegDGdx, device.RegDGdyDom},
	attrB: {device.RegBStart, device.RegDBdx, device.RegDBdyDom},
	attrA: {device.RegAStart, device.RegDAdx, device.RegDAdyDom},
	attrZ: {device.RegZStart, device.RegDZdx, device.RegDZdyDom},
	attrS: {device.RegSStart, device.RegDSdx, device.RegDSdyDom},
	attrT: {device.RegTStart, device.RegDTdx, device.RegDTdyDom},
	attrQ: {device.RegQStart, device.RegDQdx, device.RegDQdyDom},
	attrF: {device.RegFStart, device.RegDFdx, device.RegDFdyDom},
}

// values holds one unscaled value per attribute.
type values [numAttrs]float64

// xcache holds the X-derivatives of the current source triangle, already
// multiplied by the scan direction dir.
type xcache struct {
	valid bool
	dir   float64
	dx    values
}

// active reports whether attribute a is interpolated under the current
// flags. Color is always written; flat shading just has zero steps.
func (e *Engine) active(a attr) bool {
	f := e.cfg.Flags
	switch a {
	case attrZ:
		return f.Has(Depth)
	case attrS, attrT:
		return f.Has(Texture)
	case attrQ:
		return f.Has(Texture | Perspective)
	case attrF:
		return f.Has(Fog)
	default:
		return true
	}
}

func (e *Engine) scale(a attr) float64 {
	switch a {
	case attrZ:
		return e.scales.Depth
	case attrS, attrT:
		return e.scales.Tex
	case attrQ:
		return e.scales.Q
	case attrF:
		return e.scales.Fog
	default:
		return e.scales.Color
	}
}
