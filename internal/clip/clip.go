// Package clip clips primitives against the left edge of the screen.
//
// The device's clip unit does not discard geometry at negative screen X, so
// when a window's left edge lies off screen, primitives are clipped in
// software before setup. Vertices are in window coordinates; a vertex is
// outside when x + XOffset < 0, and new vertices are placed on the line
// x = Edge - XOffset.
package clip

import "github.com/gogpu/accel3d/prim"

// DefaultEdge places the clip line on the centre of the first pixel column.
const DefaultEdge = 0.5

// Tri is a triangle produced by the clipper, in the winding of its source.
type Tri [3]prim.Vertex

// Clipper clips against the screen's left edge.
//
// Attrs selects which vertex attributes are interpolated onto new vertices;
// the others are copied from the inside vertex of the clipped edge and may
// be stale.
type Clipper struct {
	XOffset float32
	Edge    float32
	Attrs   prim.Attr
}

// New returns a clipper for a window whose left edge is at screen x
// xOffset.
func New(xOffset float32, attrs prim.Attr) Clipper {
	return Clipper{XOffset: xOffset, Edge: DefaultEdge, Attrs: attrs}
}

// Active reports whether the window crosses the screen's left boundary.
func (c Clipper) Active() bool {
	return c.XOffset < 0
}

// Outside reports whether v lies left of the screen.
func (c Clipper) Outside(v *prim.Vertex) bool {
	return v.X+c.XOffset < 0
}

// Boundary returns the clip line in window coordinates.
func (c Clipper) Boundary() float32 {
	return c.Edge - c.XOffset
}

// Triangle clips (a, b, d) and appends the surviving triangles to dst.
//
// No vertex outside: the triangle is appended unchanged. All outside:
// nothing is appended. One outside: its two edges are cut and the remaining
// quad is appended as two triangles. Two outside: both are pulled onto the
// boundary along their edges to the inside vertex, giving one triangle.
// clipped reports whether the input was changed or discarded.
func (c Clipper) Triangle(dst []Tri, a, b, d *prim.Vertex) (out []Tri, clipped bool) {
	v := [3]*prim.Vertex{a, b, d}
	var mask, n int
	for i, p := range v {
		if c.Outside(p) {
			mask |= 1 << i
			n++
		}
	}

	switch n {
	case 0:
		return append(dst, Tri{*a, *b, *d}), false
	case 3:
		return dst, true
	case 1:
		// Rotate so the outside vertex comes first; rotation keeps winding.
		i := outsideIndex(mask)
		o, p, q := v[i], v[(i+1)%3], v[(i+2)%3]
		op := c.cut(p, o)
		oq := c.cut(q, o)
		return append(dst, Tri{op, *p, *q}, Tri{op, *q, oq}), true
	default:
		// Rotate so the inside vertex comes first.
		i := insideIndex(mask)
		in, p, q := v[i], v[(i+1)%3], v[(i+2)%3]
		return append(dst, Tri{*in, c.cut(in, p), c.cut(in, q)}), true
	}
}

// Line clips the segment (a, b). visible is false when both ends are
// outside.
func (c Clipper) Line(a, b *prim.Vertex) (ca, cb prim.Vertex, visible bool) {
	ao, bo := c.Outside(a), c.Outside(b)
	switch {
	case ao && bo:
		return *a, *b, false
	case ao:
		return c.cut(b, a), *b, true
	case bo:
		return *a, c.cut(a, b), true
	default:
		return *a, *b, true
	}
}

// Point reports whether a point survives clipping.
func (c Clipper) Point(a *prim.Vertex) bool {
	return !c.Outside(a)
}

// cut returns the point where the edge from the inside vertex in to the
// outside vertex out crosses the boundary.
func (c Clipper) cut(in, out *prim.Vertex) prim.Vertex {
	x := c.Boundary()
	var t float32
	if dx := out.X - in.X; dx != 0 {
		t = (x - in.X) / dx
	}
	t = min(max(t, 0), 1)
	r := prim.Mix(in, out, t, c.Attrs)
	r.X = x
	return r
}

func outsideIndex(mask int) int {
	switch mask {
	case 1:
		return 0
	case 2:
		return 1
	default:
		return 2
	}
}

func insideIndex(mask int) int {
	return outsideIndex(7 &^ mask)
}
