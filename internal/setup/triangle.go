package setup

import (
	"math"

	xfixed "golang.org/x/image/math/fixed"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/internal/fixed"
	"github.com/gogpu/accel3d/prim"
)

// maxSubpixel bounds snapped coordinates so that 26.6 values never wrap.
const maxSubpixel = 1 << 24

// snap rounds a window coordinate to the 26.6 sub-pixel grid.
func snap(v float32) xfixed.Int26_6 {
	f := math.Round(float64(v) * 64)
	f = math.Max(math.Min(f, maxSubpixel), -maxSubpixel)
	return xfixed.Int26_6(f)
}

// row returns the lowest scanline whose center lies at or above y. The
// scanlines covered between two edge ends y0 > y1 are [row(y1), row(y0)).
func row(y xfixed.Int26_6) int {
	return (y - 32).Ceil()
}

func float(v xfixed.Int26_6) float64 {
	return float64(v) / 64
}

func finite(vs ...*prim.Vertex) bool {
	for _, v := range vs {
		x, y := float64(v.X), float64(v.Y)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return false
		}
	}
	return true
}

// Triangle computes the program for the triangle (a, b, c).
//
// With trust set, ccw is the winding of (a, b, c) as submitted and decides
// the scan direction. Without it the winding is recomputed from the sorted
// vertices, which is required for pieces produced by tesselation or
// clipping. ok is false when the triangle has no area or covers no
// scanline; nothing is drawn then.
func (e *Engine) Triangle(a, b, c *prim.Vertex, ccw, trust bool) (prog *device.Program, ok bool) {
	e.prog.Reset()
	if !finite(a, b, c) {
		return nil, false
	}

	var vals [3]values
	e.load(vals[:], e.provoking(c), a, b, c)
	v0, v1, v2, odd := prim.SortDescY(a, b, c)
	f0, f1, f2 := pick(vals, a, b, v0), pick(vals, a, b, v1), pick(vals, a, b, v2)

	sx0, sy0 := snap(v0.X), snap(v0.Y)
	sx1, sy1 := snap(v1.X), snap(v1.Y)
	sx2, sy2 := snap(v2.X), snap(v2.Y)
	x0, y0 := float(sx0), float(sy0)
	x1, y1 := float(sx1), float(sy1)
	x2, y2 := float(sx2), float(sy2)

	area2 := (x1-x0)*(y2-y0) - (x2-x0)*(y1-y0)
	if math.Abs(area2) < fixed.Epsilon {
		return nil, false
	}
	r0, r1, r2 := row(sy0), row(sy1), row(sy2)
	count, sub := r0-r1, r1-r2
	if count+sub <= 0 {
		return nil, false
	}

	dir := 1.0
	if trust {
		if ccw != odd {
			dir = -1
		}
	} else if area2 > 0 {
		dir = -1
	}

	// Edges. Slopes are per scanline walking down from v0.
	yc := float64(r0-1) + 0.5
	yc1 := float64(r1-1) + 0.5
	invDy := fixed.Recip(y0 - y2)
	dxDom := (x2 - x0) * invDy
	dxSub := (x1 - x0) * fixed.Recip(y0-y1)
	dxSub2 := (x2 - x1) * fixed.Recip(y1-y2)

	p := &e.prog
	p.EmitInt(device.RegStartXDom, fixed.FDot16FromFloat64(x0+(y0-yc)*dxDom))
	p.EmitInt(device.RegDXDom, fixed.FDot16FromFloat64(dxDom))
	p.EmitInt(device.RegStartXSub, fixed.FDot16FromFloat64(x0+(y0-yc)*dxSub))
	p.EmitInt(device.RegDXSub, fixed.FDot16FromFloat64(dxSub))
	p.EmitInt(device.RegStartXSub2, fixed.FDot16FromFloat64(x1+(y1-yc1)*dxSub2))
	p.EmitInt(device.RegDXSub2, fixed.FDot16FromFloat64(dxSub2))
	p.Emit(device.RegStartY, fixed.Clamp15(int32(r0-1)))
	p.Emit(device.RegCount, fixed.Clamp15(int32(count)))
	p.Emit(device.RegSubCount, fixed.Clamp15(int32(sub)))

	e.xDerivatives(&f0, &f1, &f2, y1-y0, y2-y0, area2, dir)

	for at := range numAttrs {
		if !e.active(at) {
			continue
		}
		s := e.scale(at)
		dy := (f2[at] - f0[at]) * invDy
		regs := attrRegs[at]
		p.EmitInt(regs[0], fixed.FromFloat64(f0[at]+(y0-yc)*dy, s))
		p.EmitInt(regs[1], fixed.FromFloat64(e.cache.dx[at], s))
		p.EmitInt(regs[2], fixed.FromFloat64(dy, s))
	}

	cmd := e.command(device.CmdTriangle, dir)
	if e.cfg.Flags.Has(Texture | Mipmap) {
		e.lod = e.triangleLOD([3]*values{&f0, &f1, &f2}, x1-x0, y1-y0, x2-x0, y2-y0, area2)
		p.Emit(device.RegLOD, fixed.LOD(e.lod, e.maxLevel()))
	} else {
		e.lod = 0
	}
	cmd = e.filter(cmd)
	p.Emit(device.RegRender, uint32(cmd))
	return p, true
}

// pick returns the loaded values of v, which is one of a, b or the third
// vertex loaded into vals.
func pick(vals [3]values, a, b, v *prim.Vertex) values {
	switch v {
	case a:
		return vals[0]
	case b:
		return vals[1]
	default:
		return vals[2]
	}
}

// xDerivatives fills the X-step cache for the plane through the three
// value sets. The deltas are relative to f0's vertex.
//
// In the affine case the derivatives of a source triangle hold for every
// piece cut from it, so the cache is reused and only its sign follows the
// scan direction. Perspective-corrected values are renormalized per piece
// and always recomputed.
func (e *Engine) xDerivatives(f0, f1, f2 *values, dy1, dy2, area2, dir float64) {
	if e.cache.valid && !e.cfg.Flags.Has(Texture|Perspective) {
		if e.cache.dir != dir {
			for i := range e.cache.dx {
				e.cache.dx[i] = -e.cache.dx[i]
			}
			e.cache.dir = dir
		}
		return
	}
	inv := fixed.Recip(area2)
	for at := range numAttrs {
		d1, d2 := f1[at]-f0[at], f2[at]-f0[at]
		e.cache.dx[at] = dir * (d1*dy2 - d2*dy1) * inv
	}
	e.cache.dir = dir
	e.cache.valid = true
}

// command composes the draw command for a primitive of type kind.
func (e *Engine) command(kind device.Command, dir float64) device.Command {
	f := e.cfg.Flags
	cmd := e.cfg.Command.WithPrim(kind)
	cmd = setBit(cmd, device.CmdScanLeft, dir < 0)
	cmd = setBit(cmd, device.CmdGouraud, f.Has(Smooth))
	cmd = setBit(cmd, device.CmdTexture, f.Has(Texture))
	cmd = setBit(cmd, device.CmdPerspective, f.Has(Texture|Perspective))
	cmd = setBit(cmd, device.CmdFog, f.Has(Fog))
	return cmd
}

// filter sets the texture filter for the chosen level of detail.
func (e *Engine) filter(cmd device.Command) device.Command {
	if !e.cfg.Flags.Has(Texture) {
		return cmd
	}
	if e.lod > 0 {
		return cmd.WithFilter(e.cfg.MinFilter)
	}
	return cmd.WithFilter(e.cfg.MagFilter)
}

func (e *Engine) maxLevel() int {
	return max(e.cfg.Texture.Levels-1, 0)
}

func setBit(c, bit device.Command, on bool) device.Command {
	if on {
		return c | bit
	}
	return c &^ bit
}
