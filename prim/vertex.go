package prim

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Vertex is a screen-space vertex with its interpolated attributes.
//
// X and Y are window coordinates in pixels, Z is depth in [0, 1] and W is the
// homogeneous clip w used for perspective correction. Color holds RGBA in
// [0, 1]. S and T are texture coordinates in normalized texture units
// (1.0 spans the texture once). Fog is the fog blend factor in [0, 1].
type Vertex struct {
	X, Y, Z, W float32
	Color      f32.Vec4
	S, T       float32
	Fog        float32
}

// Q returns the perspective weight 1/W. A zero or non-finite W yields 1 so
// that a vertex without a homogeneous coordinate behaves as affine.
func (v *Vertex) Q() float32 {
	if v.W == 0 || math.IsNaN(float64(v.W)) || math.IsInf(float64(v.W), 0) {
		return 1
	}
	return 1 / v.W
}

// Attr selects vertex attributes that take part in interpolation.
type Attr uint8

// Interpolated attributes. Position is always interpolated.
const (
	AttrColor Attr = 1 << iota
	AttrDepth
	AttrTexture
	AttrW
	AttrFog

	AttrAll = AttrColor | AttrDepth | AttrTexture | AttrW | AttrFog
)

// Has reports whether every attribute in m is set.
func (a Attr) Has(m Attr) bool { return a&m == m }

// Mix returns the vertex at parameter t along the segment from a to b.
//
// X and Y are always interpolated. Attributes outside attrs are copied from
// a unchanged, so inactive attributes are never read from b.
func Mix(a, b *Vertex, t float32, attrs Attr) Vertex {
	r := *a
	r.X = lerp(a.X, b.X, t)
	r.Y = lerp(a.Y, b.Y, t)
	if attrs&AttrDepth != 0 {
		r.Z = lerp(a.Z, b.Z, t)
	}
	if attrs&AttrW != 0 {
		r.W = lerp(a.W, b.W, t)
	}
	if attrs&AttrColor != 0 {
		for i := range r.Color {
			r.Color[i] = lerp(a.Color[i], b.Color[i], t)
		}
	}
	if attrs&AttrTexture != 0 {
		r.S = lerp(a.S, b.S, t)
		r.T = lerp(a.T, b.T, t)
	}
	if attrs&AttrFog != 0 {
		r.Fog = lerp(a.Fog, b.Fog, t)
	}
	return r
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// SignedArea returns twice the signed screen-space area of the triangle
// (a, b, c). The result is positive when the vertices wind counter-clockwise
// in a y-up frame.
func SignedArea(a, b, c *Vertex) float64 {
	return (float64(b.X)-float64(a.X))*(float64(c.Y)-float64(a.Y)) -
		(float64(c.X)-float64(a.X))*(float64(b.Y)-float64(a.Y))
}

// SortDescY returns the three vertices ordered by descending Y together with
// a flag telling whether the permutation applied was odd (which reverses the
// winding of the triangle).
func SortDescY(a, b, c *Vertex) (top, mid, bot *Vertex, odd bool) {
	top, mid, bot = a, b, c
	if mid.Y > top.Y {
		top, mid = mid, top
		odd = !odd
	}
	if bot.Y > mid.Y {
		mid, bot = bot, mid
		odd = !odd
	}
	if mid.Y > top.Y {
		top, mid = mid, top
		odd = !odd
	}
	return top, mid, bot, odd
}
