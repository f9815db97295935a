package setup

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/accel3d/internal/fixed"
	"github.com/gogpu/accel3d/prim"
)

// provoking returns the flat color for a piece whose last vertex is last.
func (e *Engine) provoking(last *prim.Vertex) f32.Vec4 {
	if e.hasFlat {
		return e.flat
	}
	return last.Color
}

// load converts the vertices into unscaled attribute values.
//
// Texture coordinates become texels of level 0. With repeat wrapping they
// are rebased by whole texture periods so the smallest coordinate falls in
// [0, 1) periods; this keeps register values small without changing what
// is sampled. Under perspective correction S and T are premultiplied by the
// per-vertex weight q normalized to the largest weight of the primitive.
func (e *Engine) load(dst []values, flat f32.Vec4, vs ...*prim.Vertex) {
	f := e.cfg.Flags
	tex := e.cfg.Texture
	tw, th := float64(tex.Width), float64(tex.Height)

	var baseS, baseT float64
	qmax := 1.0
	if f.Has(Texture) {
		minS, minT := math.Inf(1), math.Inf(1)
		qmax = 0
		for _, v := range vs {
			minS = math.Min(minS, float64(v.S))
			minT = math.Min(minT, float64(v.T))
			qmax = math.Max(qmax, math.Abs(float64(v.Q())))
		}
		if tex.RepeatS && !math.IsInf(minS, 0) {
			baseS = math.Floor(minS)
		}
		if tex.RepeatT && !math.IsInf(minT, 0) {
			baseT = math.Floor(minT)
		}
		if qmax < fixed.Epsilon {
			qmax = 1
		}
	}

	for i, v := range vs {
		d := &dst[i]
		col := v.Color
		if !f.Has(Smooth) {
			col = flat
		}
		d[attrR] = float64(col[0])
		d[attrG] = float64(col[1])
		d[attrB] = float64(col[2])
		d[attrA] = float64(col[3])
		d[attrZ] = float64(v.Z)
		d[attrF] = float64(v.Fog)
		if !f.Has(Texture) {
			continue
		}
		s := (float64(v.S) - baseS) * tw
		t := (float64(v.T) - baseT) * th
		q := 1.0
		if f.Has(Perspective) {
			q = float64(v.Q()) / qmax
			s *= q
			t *= q
		}
		d[attrS], d[attrT], d[attrQ] = s, t, q
	}
}

// triangleLOD selects the level of detail for a triangle.
//
// The footprint rho at a vertex is the larger squared length of the texel
// gradient along screen X and screen Y. The device filters a whole
// primitive with one level, so the largest rho over the three vertices
// decides, and log4(rho) is the level.
func (e *Engine) triangleLOD(f [3]*values, dx1, dy1, dx2, dy2, area2 float64) float32 {
	inv := fixed.Recip(area2)
	plane := func(at attr) (ddx, ddy float64) {
		d1, d2 := f[1][at]-f[0][at], f[2][at]-f[0][at]
		return (d1*dy2 - d2*dy1) * inv, (d2*dx1 - d1*dx2) * inv
	}
	sdx, sdy := plane(attrS)
	tdx, tdy := plane(attrT)
	qdx, qdy := plane(attrQ)

	var rho float64
	for _, v := range f {
		q := v[attrQ]
		if math.Abs(q) < fixed.Epsilon {
			continue
		}
		u, w := v[attrS]/q, v[attrT]/q
		dudx, dudy := (sdx-u*qdx)/q, (sdy-u*qdy)/q
		dvdx, dvdy := (tdx-w*qdx)/q, (tdy-w*qdy)/q
		rho = math.Max(rho, math.Max(dudx*dudx+dvdx*dvdx, dudy*dudy+dvdy*dvdy))
	}
	return clampLOD(fixed.Log4(float32(rho)), e.maxLevel())
}

func clampLOD(lod float32, maxLevel int) float32 {
	return fixed.Clampf(lod, 0, float32(maxLevel))
}
