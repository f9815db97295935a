package clip

import (
	"math"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/accel3d/prim"
)

const eps = 1e-4

func vtx(x, y, z, c float32) prim.Vertex {
	return prim.Vertex{X: x, Y: y, Z: z, W: 1, Color: f32.Vec4{c, c, c, 1}}
}

func area(t Tri) float64 {
	return prim.SignedArea(&t[0], &t[1], &t[2])
}

// TestTriangleOneVertexOutside clips a triangle with one vertex at x = -10
// against the boundary x = 0.
func TestTriangleOneVertexOutside(t *testing.T) {
	c := Clipper{Edge: 0, Attrs: prim.AttrColor | prim.AttrDepth}
	a := vtx(-10, 0, 0.2, 0.0)
	b := vtx(20, -10, 0.6, 0.5)
	d := vtx(20, 20, 1.0, 1.0)

	out, clipped := c.Triangle(nil, &a, &b, &d)
	if !clipped {
		t.Fatal("clipped = false")
	}
	if len(out) != 2 {
		t.Fatalf("triangles = %d, want 2", len(out))
	}

	src := area(Tri{a, b, d})
	var sum float64
	for _, tri := range out {
		if math.Signbit(area(tri)) != math.Signbit(src) {
			t.Errorf("winding flipped: %v vs %v", area(tri), src)
		}
		sum += area(tri)
		for _, v := range tri {
			if v.X < -eps {
				t.Errorf("vertex x = %v left of the boundary", v.X)
			}
			if v.Z < 0.2-eps || v.Z > 1.0+eps {
				t.Errorf("depth %v outside [0.2, 1]", v.Z)
			}
			if v.Color[0] < -eps || v.Color[0] > 1+eps {
				t.Errorf("color %v outside [0, 1]", v.Color[0])
			}
		}
	}

	var onEdge int
	for _, tri := range out {
		for _, v := range tri {
			if math.Abs(float64(v.X)) < eps {
				onEdge++
			}
		}
	}
	// The two new vertices appear three times across the two triangles.
	if onEdge != 3 {
		t.Errorf("vertices on the boundary = %d, want 3", onEdge)
	}

	// The clipped-away sliver is the triangle left of x = 0.
	cut := Tri{a, out[0][0], out[1][2]}
	if d := math.Abs(sum + area(cut) - src); d > 1e-3 {
		t.Errorf("area not preserved: kept %v + cut %v != %v", sum, area(cut), src)
	}
}

func TestTriangleCases(t *testing.T) {
	c := Clipper{Edge: 0, Attrs: prim.AttrAll}
	in1, in2, in3 := vtx(5, 0, 0, 0), vtx(10, 10, 0, 0), vtx(15, 0, 0, 0)
	out1, out2, out3 := vtx(-5, 0, 0, 0), vtx(-10, 10, 0, 0), vtx(-15, 0, 0, 0)

	tests := []struct {
		name        string
		a, b, d     prim.Vertex
		want        int
		wantClipped bool
	}{
		{"none outside", in1, in2, in3, 1, false},
		{"all outside", out1, out2, out3, 0, true},
		{"first outside", out1, in2, in3, 2, true},
		{"second outside", in1, out2, in3, 2, true},
		{"third outside", in1, in2, out3, 2, true},
		{"first inside", in1, out2, out3, 1, true},
		{"second inside", out1, in2, out3, 1, true},
		{"third inside", out1, out2, in3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, clipped := c.Triangle(nil, &tt.a, &tt.b, &tt.d)
			if len(out) != tt.want || clipped != tt.wantClipped {
				t.Fatalf("Triangle() = %d triangles, clipped %v; want %d, %v", len(out), clipped, tt.want, tt.wantClipped)
			}
			src := area(Tri{tt.a, tt.b, tt.d})
			for _, tri := range out {
				if a := area(tri); a != 0 && math.Signbit(a) != math.Signbit(src) {
					t.Errorf("winding flipped")
				}
				for _, v := range tri {
					if v.X < -eps {
						t.Errorf("vertex at x = %v survived", v.X)
					}
				}
			}
		})
	}
}

// TestInactiveAttributesUntouched checks that attributes outside Attrs are
// copied from the inside vertex rather than interpolated.
func TestInactiveAttributesUntouched(t *testing.T) {
	c := Clipper{Edge: 0, Attrs: prim.AttrDepth}
	in := prim.Vertex{X: 10, Z: 1, S: 7, Color: f32.Vec4{0.25, 0.25, 0.25, 1}}
	out := prim.Vertex{X: -10, Z: 0, S: -100, Color: f32.Vec4{1, 1, 1, 1}}

	_, b, ok := c.Line(&in, &out)
	if !ok {
		t.Fatal("Line() not visible")
	}
	if b.X != 0 || math.Abs(float64(b.Z-0.5)) > eps {
		t.Errorf("clipped end = (%v, z %v), want (0, z 0.5)", b.X, b.Z)
	}
	if b.S != 7 || b.Color != in.Color {
		t.Errorf("inactive attributes changed: s %v color %v", b.S, b.Color)
	}
}

func TestWindowOffset(t *testing.T) {
	c := New(-8, prim.AttrColor)
	if !c.Active() {
		t.Fatal("Active() = false for a negative offset")
	}
	if got := c.Boundary(); got != 8.5 {
		t.Errorf("Boundary() = %v, want 8.5", got)
	}
	a, b := vtx(4, 0, 0, 0), vtx(20, 0, 0, 1)
	ca, _, ok := c.Line(&a, &b)
	if !ok || ca.X != 8.5 {
		t.Errorf("Line() start = %v, visible %v", ca.X, ok)
	}
	if c.Point(&a) {
		t.Error("Point() kept a vertex left of the screen")
	}
	if New(0, 0).Active() {
		t.Error("Active() = true at offset 0")
	}

	l1, l2 := vtx(1, 0, 0, 0), vtx(2, 0, 0, 0)
	if _, _, ok := c.Line(&l1, &l2); ok {
		t.Error("Line() with both ends outside is visible")
	}
}
