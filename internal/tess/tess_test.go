package tess

import (
	"math"
	"testing"

	"github.com/gogpu/accel3d/prim"
)

func tv(x, y, s, t float32) prim.Vertex {
	return prim.Vertex{X: x, Y: y, W: 1, S: s, T: t}
}

type collector struct {
	cfg    Config
	leaves [][3]prim.Vertex
}

func (c *collector) emit(a, b, d *prim.Vertex) bool {
	c.leaves = append(c.leaves, [3]prim.Vertex{*a, *b, *d})
	return true
}

func run(t *testing.T, cfg Config, a, b, d prim.Vertex) *collector {
	t.Helper()
	c := &collector{cfg: cfg}
	n, ok := Tessellate(cfg, &a, &b, &d, c.emit)
	if !ok {
		t.Fatal("Tessellate stopped early")
	}
	if n != len(c.leaves) {
		t.Fatalf("Tessellate reported %d leaves, emitted %d", n, len(c.leaves))
	}
	return c
}

// checkInvariants verifies the span limit on every leaf and that the leaves
// cover the source triangle exactly.
func checkInvariants(t *testing.T, c *collector, a, b, d prim.Vertex) {
	t.Helper()
	src := prim.SignedArea(&a, &b, &d)
	var sum float64
	for i, l := range c.leaves {
		for e := range 3 {
			if span := c.cfg.Span(&l[e], &l[(e+1)%3]); span > c.cfg.MaxTexels+1e-3 {
				t.Fatalf("leaf %d edge %d spans %v texels, limit %v", i, e, span, c.cfg.MaxTexels)
			}
		}
		area := prim.SignedArea(&l[0], &l[1], &l[2])
		if math.Signbit(area) != math.Signbit(src) {
			t.Fatalf("leaf %d winding flipped: %v vs %v", i, area, src)
		}
		sum += area
	}
	if d := math.Abs(sum - src); d > 1e-4*math.Abs(src) {
		t.Errorf("leaf area %v, source area %v", sum, src)
	}
}

func TestWithinLimitPassesThrough(t *testing.T) {
	cfg := Config{ScaleS: 64, ScaleT: 64, MaxTexels: 128}
	a, b, d := tv(0, 0, 0, 0), tv(100, 0, 1, 0), tv(0, 100, 0, 1)
	c := run(t, cfg, a, b, d)
	if len(c.leaves) != 1 {
		t.Fatalf("leaves = %d, want 1", len(c.leaves))
	}
	if c.leaves[0] != [3]prim.Vertex{a, b, d} {
		t.Errorf("leaf = %+v, want the input", c.leaves[0])
	}
}

func TestCases(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 128, Attrs: prim.AttrAll}
	tests := []struct {
		name    string
		a, b, d prim.Vertex
	}{
		{"one oversized edge", tv(10, 10, 0, 0), tv(200, 10, 1, 0), tv(100, 200, 0.5, 0.25)},
		{"two oversized edges", tv(10, 10, 0, 0), tv(200, 10, 2, 0), tv(10, 200, 2, 0.25)},
		{"three oversized edges", tv(10, 10, 0, 0), tv(200, 10, 4, 0), tv(10, 200, 0, 4)},
		{"three opposite directions", tv(100, 10, 0, 0), tv(200, 200, 3, 1), tv(10, 200, -3, 1)},
		{"clockwise input", tv(10, 10, 0, 0), tv(10, 200, 0, 4), tv(200, 10, 4, 0)},
		{"negative coordinates", tv(0, 0, -2, -2), tv(50, 0, 2, -2), tv(0, 50, -2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := run(t, cfg, tt.a, tt.b, tt.d)
			if len(c.leaves) < 2 {
				t.Errorf("leaves = %d, want a subdivision", len(c.leaves))
			}
			checkInvariants(t, c, tt.a, tt.b, tt.d)
		})
	}
}

// TestLongEdge4096 spans 4096 texels on the long edge with a 128 texel
// limit.
func TestLongEdge4096(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 128, Attrs: prim.AttrAll, Perspective: true}
	a, b, d := tv(10, 10, 0, 0), tv(200, 10, 16, 0), tv(10, 200, 0, 0.25)

	c := run(t, cfg, a, b, d)
	if len(c.leaves) < 32 {
		t.Errorf("leaves = %d, want at least 32", len(c.leaves))
	}
	checkInvariants(t, c, a, b, d)
}

func TestPerspectiveSplitPoint(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 200, Attrs: prim.AttrAll, Perspective: true}
	// Near vertex at w=1, far vertex at w=3 along one oversized edge.
	a := prim.Vertex{X: 0, Y: 0, W: 1, S: 0}
	b := prim.Vertex{X: 100, Y: 0, W: 3, S: 1}
	d := prim.Vertex{X: 0, Y: 100, W: 1, S: 0.5}

	c := run(t, cfg, a, b, d)
	if len(c.leaves) != 2 {
		t.Fatalf("leaves = %d, want 2", len(c.leaves))
	}
	m := c.leaves[0][1]
	if m.S != 0.5 || m.W != 2 {
		t.Errorf("split s, w = %v, %v, want 0.5, 2", m.S, m.W)
	}
	// q = 1 and 1/3: the texture midpoint sits at screen parameter 0.75.
	if math.Abs(float64(m.X)-75) > 1e-3 || m.Y != 0 {
		t.Errorf("split position = (%v, %v), want (75, 0)", m.X, m.Y)
	}
}

func TestDegenerateInput(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 128}
	c := run(t, cfg, tv(0, 0, 0, 0), tv(10, 10, 8, 0), tv(20, 20, 16, 0))
	if len(c.leaves) != 0 {
		t.Errorf("leaves = %d, want 0 for a zero-area triangle", len(c.leaves))
	}
}

func TestEmitterStops(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 128}
	a, b, d := tv(10, 10, 0, 0), tv(200, 10, 16, 0), tv(10, 200, 0, 0.25)

	var calls int
	n, ok := Tessellate(cfg, &a, &b, &d, func(_, _, _ *prim.Vertex) bool {
		calls++
		return calls < 3
	})
	if ok {
		t.Error("Tessellate ok = true after the emitter stopped")
	}
	if calls != 3 || n != 3 {
		t.Errorf("calls = %d, leaves = %d, want 3", calls, n)
	}
}

func TestNaNCoordinatesTerminate(t *testing.T) {
	cfg := Config{ScaleS: 256, ScaleT: 256, MaxTexels: 128}
	nan := float32(math.NaN())
	c := run(t, cfg, tv(0, 0, nan, 0), tv(100, 0, 1, 0), tv(0, 100, 0, 1))
	if len(c.leaves) == 0 {
		t.Error("NaN texture coordinates dropped the triangle")
	}
}
