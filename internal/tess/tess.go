// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tess subdivides textured triangles in texture space so that no
// piece spans more texels along any edge than the device can interpolate.
//
// Edges are measured in texels: |Δs|*ScaleS and |Δt|*ScaleT. An edge is
// oversized when either exceeds MaxTexels. Triangles are handled by the
// number of oversized edges:
//
//   - none: emitted as is
//   - one: the edge is split at its texture-space midpoint and both halves
//     are processed again
//   - two: both oversized edges are walked from their shared apex in
//     lock-step increments of MaxTexels and each strip is tiled
//   - three: the apex opposite the shortest edge is walked the same way, with
//     half increments when the two edges run in opposite directions
//
// Every piece is reclassified before it is emitted, so the span limit holds
// for every leaf regardless of how the strips were cut.
//
// Split points are chosen in texture space. Under perspective the new
// vertex's position, depth, color and fog are interpolated at the screen
// parameter that maps to the texture-space split, not at the texture-space
// parameter itself, so the pieces tile the original screen triangle.
package tess

import (
	"math"

	"github.com/gogpu/accel3d/prim"
)

// Epsilon is the length below which an edge or area is treated as zero.
const Epsilon = 1e-10

// MaxDepth bounds the recursion. Each level at least halves the span of the
// pieces it produces, so real input never reaches it.
const MaxDepth = 32

// Config describes the texture and the device limit.
type Config struct {
	ScaleS, ScaleT float64   // texels per unit of s and t
	MaxTexels      float64   // largest span per edge, in texels
	Attrs          prim.Attr // attributes interpolated on new vertices
	Perspective    bool      // place split points perspective-correctly
}

// Emitter receives each leaf triangle in the winding of the input. Returning
// false stops the tesselation.
type Emitter func(a, b, c *prim.Vertex) bool

// Tessellate splits (a, b, c) until every piece is within the span limit and
// passes the pieces to emit. It returns the number of leaves emitted and
// false if emit stopped early.
func Tessellate(cfg Config, a, b, c *prim.Vertex, emit Emitter) (leaves int, ok bool) {
	t := tessellator{cfg: cfg, emit: emit}
	ok = t.triangle(*a, *b, *c, 0)
	return t.leaves, ok
}

// Span returns the texel span of the edge (a, b): the larger of its s and t
// extents.
func (cfg Config) Span(a, b *prim.Vertex) float64 {
	ds, dt := cfg.deltas(a, b)
	return max(math.Abs(ds), math.Abs(dt))
}

// Oversized reports whether the edge (a, b) exceeds the span limit.
func (cfg Config) Oversized(a, b *prim.Vertex) bool {
	return cfg.Span(a, b) > cfg.MaxTexels+Epsilon
}

func (cfg Config) deltas(a, b *prim.Vertex) (ds, dt float64) {
	return (float64(b.S) - float64(a.S)) * cfg.ScaleS, (float64(b.T) - float64(a.T)) * cfg.ScaleT
}

type tessellator struct {
	cfg    Config
	emit   Emitter
	leaves int
}

func (t *tessellator) triangle(a, b, c prim.Vertex, depth int) bool {
	if isDegenerate(&a, &b, &c) {
		return true
	}
	v := [3]prim.Vertex{a, b, c}

	// over[i] is the edge from v[i] to v[i+1].
	var over [3]bool
	var n int
	for i := range 3 {
		over[i] = t.cfg.Oversized(&v[i], &v[(i+1)%3])
		if over[i] {
			n++
		}
	}
	if n == 0 || depth >= MaxDepth || t.cfg.MaxTexels <= 0 {
		t.leaves++
		return t.emit(&v[0], &v[1], &v[2])
	}

	switch n {
	case 1:
		i := 0
		for !over[i] {
			i++
		}
		p, q, r := v[i], v[(i+1)%3], v[(i+2)%3]
		m := t.split(&p, &q, 0.5)
		return t.triangle(p, m, r, depth+1) && t.triangle(m, q, r, depth+1)

	case 2:
		// The apex is the vertex shared by both oversized edges: the one
		// whose incoming and outgoing edges are oversized.
		apex := 0
		for i := range 3 {
			if over[i] && over[(i+2)%3] {
				apex = i
			}
		}
		return t.walk(v, apex, t.cfg.MaxTexels, depth)

	default:
		apex := t.apexOppositeShortest(v)
		step := t.cfg.MaxTexels
		if t.opposite(&v[apex], &v[(apex+1)%3], &v[(apex+2)%3]) {
			step /= 2
		}
		return t.walk(v, apex, step, depth)
	}
}

// walk steps along the edges apex->p and apex->q in increments of step
// texels and tiles each strip between consecutive cuts.
func (t *tessellator) walk(v [3]prim.Vertex, apex int, step float64, depth int) bool {
	a, p, q := v[apex], v[(apex+1)%3], v[(apex+2)%3]
	lp, lq := t.cfg.Span(&a, &p), t.cfg.Span(&a, &q)
	steps := int(math.Ceil(max(lp, lq) / step))
	steps = max(steps, 1)

	at := func(end *prim.Vertex, length float64, k int) prim.Vertex {
		if length < Epsilon {
			return a
		}
		lambda := min(float64(k)*step/length, 1)
		if lambda >= 1 {
			return *end
		}
		return t.split(&a, end, lambda)
	}

	pk, qk := a, a
	for k := 1; k <= steps; k++ {
		pn, qn := at(&p, lp, k), at(&q, lq, k)
		if !t.strip(pk, qk, pn, qn, depth) {
			return false
		}
		pk, qk = pn, qn
	}
	return true
}

// strip tiles the quad (p0, p1, q1, q0), where p0-q0 is the cut nearer the
// apex and p1-q1 the farther one. Both cuts are divided so that their pieces
// are within the span limit, then zipped into triangles.
func (t *tessellator) strip(p0, q0, p1, q1 prim.Vertex, depth int) bool {
	lo := t.polyline(p0, q0)
	hi := t.polyline(p1, q1)

	i, j := 0, 0
	na, nb := len(lo)-1, len(hi)-1
	for i < na || j < nb {
		var ok bool
		if i < na && (j == nb || float64(i+1)*float64(nb) <= float64(j+1)*float64(na)) {
			ok = t.triangle(lo[i], hi[j], lo[i+1], depth+1)
			i++
		} else {
			ok = t.triangle(lo[i], hi[j], hi[j+1], depth+1)
			j++
		}
		if !ok {
			return false
		}
	}
	return true
}

// polyline divides the segment (a, b) into pieces within the span limit.
func (t *tessellator) polyline(a, b prim.Vertex) []prim.Vertex {
	n := max(1, int(math.Ceil(t.cfg.Span(&a, &b)/t.cfg.MaxTexels-Epsilon)))
	out := make([]prim.Vertex, 0, n+1)
	out = append(out, a)
	for k := 1; k < n; k++ {
		out = append(out, t.split(&a, &b, float64(k)/float64(n)))
	}
	return append(out, b)
}

// split returns the vertex at texture-space parameter lambda along (a, b).
//
// Texture coordinates and W are linear in lambda. Screen-linear attributes
// (position, depth, color, fog) are taken at the matching screen parameter,
// which differs from lambda under perspective.
func (t *tessellator) split(a, b *prim.Vertex, lambda float64) prim.Vertex {
	mu := lambda
	if t.cfg.Perspective {
		qa, qb := float64(a.Q()), float64(b.Q())
		if d := (1-lambda)*qb + lambda*qa; math.Abs(d) > Epsilon {
			mu = lambda * qa / d
		}
	}
	r := prim.Mix(a, b, float32(mu), t.cfg.Attrs&^(prim.AttrTexture|prim.AttrW))
	l := float32(lambda)
	r.S = a.S + (b.S-a.S)*l
	r.T = a.T + (b.T-a.T)*l
	if t.cfg.Perspective || t.cfg.Attrs.Has(prim.AttrW) {
		r.W = a.W + (b.W-a.W)*l
	}
	return r
}

// apexOppositeShortest returns the vertex opposite the edge with the
// smallest squared texel length.
func (t *tessellator) apexOppositeShortest(v [3]prim.Vertex) int {
	best, apex := math.Inf(1), 0
	for i := range 3 {
		ds, dt := t.cfg.deltas(&v[i], &v[(i+1)%3])
		if l := ds*ds + dt*dt; l < best {
			best, apex = l, (i+2)%3
		}
	}
	return apex
}

// opposite reports whether the edges apex->p and apex->q share a dominant
// texture axis and run in opposite directions along it.
func (t *tessellator) opposite(apex, p, q *prim.Vertex) bool {
	ps, pt := t.cfg.deltas(apex, p)
	qs, qt := t.cfg.deltas(apex, q)
	pAxisS := math.Abs(ps) >= math.Abs(pt)
	qAxisS := math.Abs(qs) >= math.Abs(qt)
	if pAxisS != qAxisS {
		return false
	}
	if pAxisS {
		return ps*qs < 0
	}
	return pt*qt < 0
}

func isDegenerate(a, b, c *prim.Vertex) bool {
	return math.Abs(prim.SignedArea(a, b, c)) < Epsilon
}
