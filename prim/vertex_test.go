package prim

import (
	"testing"

	"golang.org/x/image/math/f32"
)

func TestMixGatesAttributes(t *testing.T) {
	a := Vertex{X: 0, Y: 0, Z: 0, W: 1, Color: f32.Vec4{0, 0, 0, 1}, S: 0, T: 0, Fog: 0}
	b := Vertex{X: 10, Y: 20, Z: 1, W: 3, Color: f32.Vec4{1, 1, 1, 1}, S: 4, T: 8, Fog: 1}

	tests := []struct {
		name  string
		attrs Attr
		want  Vertex
	}{
		{
			name:  "position only",
			attrs: 0,
			want:  Vertex{X: 5, Y: 10, W: 1, Color: f32.Vec4{0, 0, 0, 1}},
		},
		{
			name:  "color and depth",
			attrs: AttrColor | AttrDepth,
			want:  Vertex{X: 5, Y: 10, Z: 0.5, W: 1, Color: f32.Vec4{0.5, 0.5, 0.5, 1}},
		},
		{
			name:  "all",
			attrs: AttrAll,
			want:  Vertex{X: 5, Y: 10, Z: 0.5, W: 2, Color: f32.Vec4{0.5, 0.5, 0.5, 1}, S: 2, T: 4, Fog: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mix(&a, &b, 0.5, tt.attrs)
			if got != tt.want {
				t.Errorf("Mix(a, b, 0.5, %b) = %+v, want %+v", tt.attrs, got, tt.want)
			}
		})
	}
}

func TestQ(t *testing.T) {
	tests := []struct {
		w, want float32
	}{
		{1, 1},
		{2, 0.5},
		{0, 1},
		{-4, -0.25},
	}
	for _, tt := range tests {
		v := Vertex{W: tt.w}
		if got := v.Q(); got != tt.want {
			t.Errorf("Vertex{W: %v}.Q() = %v, want %v", tt.w, got, tt.want)
		}
	}
}

func TestSortDescY(t *testing.T) {
	a := Vertex{Y: 1}
	b := Vertex{Y: 3}
	c := Vertex{Y: 2}

	top, mid, bot, odd := SortDescY(&a, &b, &c)
	if top.Y != 3 || mid.Y != 2 || bot.Y != 1 {
		t.Fatalf("SortDescY order = %v %v %v, want 3 2 1", top.Y, mid.Y, bot.Y)
	}
	// (a, b, c) -> (b, c, a) is a rotation, an even permutation.
	if odd {
		t.Errorf("SortDescY odd = true, want false for a rotation")
	}

	_, _, _, odd = SortDescY(&b, &a, &c)
	if !odd {
		t.Errorf("SortDescY odd = false, want true for a single swap")
	}
}

func TestSignedAreaPreservedBySort(t *testing.T) {
	a := Vertex{X: 0, Y: 0}
	b := Vertex{X: 10, Y: 0}
	c := Vertex{X: 0, Y: 10}

	area := SignedArea(&a, &b, &c)
	if area != 100 {
		t.Fatalf("SignedArea = %v, want 100", area)
	}
	top, mid, bot, odd := SortDescY(&a, &b, &c)
	sorted := SignedArea(top, mid, bot)
	if odd {
		sorted = -sorted
	}
	if sorted != area {
		t.Errorf("sorted area with parity = %v, want %v", sorted, area)
	}
}

func TestKind(t *testing.T) {
	if KindTriangle.String() != "triangle" || KindTriangle.Vertices() != 3 {
		t.Errorf("KindTriangle = %s/%d", KindTriangle, KindTriangle.Vertices())
	}
	if Kind(9).String() != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q", Kind(9).String())
	}
	p := Line(Vertex{X: 1}, Vertex{X: 2})
	if p.Kind != KindLine || p.V[1].X != 2 {
		t.Errorf("Line() = %+v", p)
	}
}
