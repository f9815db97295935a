package main

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/accel3d"
	"github.com/gogpu/accel3d/prim"
	"github.com/gogpu/accel3d/texture"
)

// Scenario is one replay file: a chip profile, a set of textures and a
// sequence of steps, each optionally changing state before drawing a batch.
type Scenario struct {
	Profile  string        `yaml:"profile"`
	Window   [2]int        `yaml:"window"`
	Textures []TextureDesc `yaml:"textures"`
	Steps    []Step        `yaml:"steps"`
}

// TextureDesc describes a solid texture, optionally with a full mip chain.
type TextureDesc struct {
	ID       uint32   `yaml:"id"`
	Format   string   `yaml:"format"`
	Width    int      `yaml:"width"`
	Height   int      `yaml:"height"`
	Color    [4]uint8 `yaml:"color"`
	Mipmaps  bool     `yaml:"mipmaps"`
	Linear   bool     `yaml:"linear"`
	Priority float32  `yaml:"priority"`
}

// Step is one replay step. Fields are applied in declaration order.
type Step struct {
	State      *StateChange    `yaml:"state"`
	Release    *uint32         `yaml:"release"`
	Invalidate bool            `yaml:"invalidate"`
	Bind       *uint32         `yaml:"bind"`
	Batch      []PrimitiveDesc `yaml:"batch"`
}

// StateChange lists render state changes.
type StateChange struct {
	Enable      []string `yaml:"enable"`
	Disable     []string `yaml:"disable"`
	DepthFunc   string   `yaml:"depth_func"`
	Blend       string   `yaml:"blend"`
	Cull        string   `yaml:"cull"`
	PolygonMode string   `yaml:"polygon_mode"`
	LineWidth   float32  `yaml:"line_width"`
	PointSize   float32  `yaml:"point_size"`
}

// PrimitiveDesc is a point, line or triangle given by one to three
// vertices.
type PrimitiveDesc struct {
	Kind     string       `yaml:"kind"`
	Vertices []VertexDesc `yaml:"vertices"`
}

// VertexDesc is a vertex. Missing W defaults to 1 and missing color to
// opaque white.
type VertexDesc struct {
	X     float32     `yaml:"x"`
	Y     float32     `yaml:"y"`
	Z     float32     `yaml:"z"`
	W     float32     `yaml:"w"`
	S     float32     `yaml:"s"`
	T     float32     `yaml:"t"`
	Color *[4]float32 `yaml:"color"`
}

// ParseScenario decodes a yaml scenario. Unknown fields are errors.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	return &s, nil
}

var capNames = map[string]accel3d.Caps{
	"depth_test":      accel3d.CapDepthTest,
	"depth_write":     accel3d.CapDepthWrite,
	"texture":         accel3d.CapTexture,
	"perspective":     accel3d.CapPerspective,
	"smooth":          accel3d.CapSmooth,
	"blend":           accel3d.CapBlend,
	"alpha_test":      accel3d.CapAlphaTest,
	"fog":             accel3d.CapFog,
	"dither":          accel3d.CapDither,
	"cull_face":       accel3d.CapCullFace,
	"line_stipple":    accel3d.CapLineStipple,
	"polygon_stipple": accel3d.CapPolygonStipple,
	"logic_op":        accel3d.CapLogicOp,
	"point_smooth":    accel3d.CapPointSmooth,
	"line_smooth":     accel3d.CapLineSmooth,
	"polygon_smooth":  accel3d.CapPolygonSmooth,
}

func parseCaps(names []string) (accel3d.Caps, error) {
	var c accel3d.Caps
	for _, n := range names {
		v, ok := capNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown capability %q", n)
		}
		c |= v
	}
	return c, nil
}

var depthFuncs = map[string]gputypes.CompareFunction{
	"never":         gputypes.CompareFunctionNever,
	"less":          gputypes.CompareFunctionLess,
	"equal":         gputypes.CompareFunctionEqual,
	"less_equal":    gputypes.CompareFunctionLessEqual,
	"greater":       gputypes.CompareFunctionGreater,
	"not_equal":     gputypes.CompareFunctionNotEqual,
	"greater_equal": gputypes.CompareFunctionGreaterEqual,
	"always":        gputypes.CompareFunctionAlways,
}

var blends = map[string]gputypes.BlendComponent{
	"replace": accel3d.BlendReplace,
	"alpha":   accel3d.BlendAlpha,
	"darken":  accel3d.BlendDarken,
}

var polygonModes = map[string]accel3d.PolygonMode{
	"fill":  accel3d.PolygonFill,
	"line":  accel3d.PolygonLine,
	"point": accel3d.PolygonPoint,
}

var cullModes = map[string]gputypes.CullMode{
	"none":  gputypes.CullModeNone,
	"front": gputypes.CullModeFront,
	"back":  gputypes.CullModeBack,
}

// Deltas converts the state change into render state changes.
func (s *StateChange) Deltas() ([]accel3d.StateDelta, error) {
	var ds []accel3d.StateDelta
	on, err := parseCaps(s.Enable)
	if err != nil {
		return nil, err
	}
	off, err := parseCaps(s.Disable)
	if err != nil {
		return nil, err
	}
	if on != 0 {
		ds = append(ds, accel3d.Enable(on))
	}
	if off != 0 {
		ds = append(ds, accel3d.Disable(off))
	}
	if s.DepthFunc != "" {
		f, ok := depthFuncs[s.DepthFunc]
		if !ok {
			return nil, fmt.Errorf("unknown depth function %q", s.DepthFunc)
		}
		ds = append(ds, accel3d.SetDepthFunc(f))
	}
	if s.Blend != "" {
		b, ok := blends[s.Blend]
		if !ok {
			return nil, fmt.Errorf("unknown blend %q", s.Blend)
		}
		ds = append(ds, accel3d.SetBlend(b))
	}
	if s.Cull != "" {
		m, ok := cullModes[s.Cull]
		if !ok {
			return nil, fmt.Errorf("unknown cull mode %q", s.Cull)
		}
		ds = append(ds, accel3d.SetCull(gputypes.FrontFaceCCW, m))
	}
	if s.PolygonMode != "" {
		m, ok := polygonModes[s.PolygonMode]
		if !ok {
			return nil, fmt.Errorf("unknown polygon mode %q", s.PolygonMode)
		}
		ds = append(ds, accel3d.SetPolygonMode(m, m))
	}
	if s.LineWidth != 0 {
		ds = append(ds, accel3d.SetLineWidth(s.LineWidth))
	}
	if s.PointSize != 0 {
		ds = append(ds, accel3d.SetPointSize(s.PointSize))
	}
	return ds, nil
}

var formats = map[string]texture.Format{
	"bgr8":       texture.FormatBGR8,
	"bgra8":      texture.FormatBGRA8,
	"luminance8": texture.FormatLuminance8,
}

// Build creates the texture.
func (ts *TextureDesc) Build() (*texture.Texture, error) {
	f, ok := formats[ts.Format]
	if !ok {
		return nil, fmt.Errorf("texture %d: unknown format %q", ts.ID, ts.Format)
	}
	c := ts.Color
	src := image.NewUniform(color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
	img := image.NewRGBA(image.Rect(0, 0, ts.Width, ts.Height))
	draw.Draw(img, img.Bounds(), src, image.Point{}, draw.Src)
	levels, err := texture.GenerateMipChain(img, f)
	if err != nil {
		return nil, fmt.Errorf("texture %d: %w", ts.ID, err)
	}
	if !ts.Mipmaps {
		levels = levels[:1]
	}
	t := texture.New(texture.ID(ts.ID), f, levels...)
	smp := texture.DefaultSampler()
	if ts.Linear {
		smp.Mag, smp.Min = gputypes.FilterModeLinear, gputypes.FilterModeLinear
	}
	if ts.Mipmaps {
		smp.Mip = gputypes.MipmapFilterModeNearest
		if ts.Linear {
			smp.Mip = gputypes.MipmapFilterModeLinear
		}
	}
	t.SetSampler(smp)
	if ts.Priority != 0 {
		t.SetPriority(ts.Priority)
	}
	return t, nil
}

// Primitives converts the step's batch.
func (st *Step) Primitives() (prim.Batch, error) {
	b := make(prim.Batch, 0, len(st.Batch))
	for i, ps := range st.Batch {
		vs := make([]prim.Vertex, len(ps.Vertices))
		for j := range ps.Vertices {
			vs[j] = ps.Vertices[j].vertex()
		}
		want := map[string]int{"point": 1, "line": 2, "triangle": 3}[ps.Kind]
		if want == 0 {
			return nil, fmt.Errorf("primitive %d: unknown kind %q", i, ps.Kind)
		}
		if len(vs) != want {
			return nil, fmt.Errorf("primitive %d: %s needs %d vertices, got %d", i, ps.Kind, want, len(vs))
		}
		switch ps.Kind {
		case "point":
			b = append(b, prim.Point(vs[0]))
		case "line":
			b = append(b, prim.Line(vs[0], vs[1]))
		case "triangle":
			b = append(b, prim.Triangle(vs[0], vs[1], vs[2]))
		}
	}
	return b, nil
}

func (v VertexDesc) vertex() prim.Vertex {
	out := prim.Vertex{X: v.X, Y: v.Y, Z: v.Z, W: v.W, S: v.S, T: v.T, Color: f32.Vec4{1, 1, 1, 1}}
	if out.W == 0 {
		out.W = 1
	}
	if v.Color != nil {
		out.Color = f32.Vec4(*v.Color)
	}
	return out
}
