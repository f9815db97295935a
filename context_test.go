package accel3d

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/prim"
	"github.com/gogpu/accel3d/texture"
)

type rig struct {
	c   *Context
	rec *device.Recorder
}

func newRigSized(t *testing.T, pool uint32, opts ...Option) *rig {
	t.Helper()
	rec := device.NewRecorder(pool, 64)
	opts = append([]Option{WithProfile(ProfileCompact)}, opts...)
	c, err := NewContext(rec, rec, device.NewHeap(pool), opts...)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return &rig{c: c, rec: rec}
}

func newRig(t *testing.T, opts ...Option) *rig {
	t.Helper()
	return newRigSized(t, 1<<20, opts...)
}

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	return newRig(t, opts...).c
}

func (r *rig) draw(t *testing.T, batch ...prim.Primitive) (bool, int) {
	t.Helper()
	return r.c.SetupAndDrawPrimitiveBatch(context.Background(), batch)
}

func sv(x, y float32) prim.Vertex {
	return prim.Vertex{X: x, Y: y, W: 1, Color: f32.Vec4{0.2, 0.4, 0.6, 1}}
}

func tsv(x, y, s, t float32) prim.Vertex {
	v := sv(x, y)
	v.S, v.T = s, t
	return v
}

func solidLevel(w, h int, px ...byte) texture.Level {
	p := make([]byte, 0, w*h*len(px))
	for range w * h {
		p = append(p, px...)
	}
	return texture.Level{Width: w, Height: h, Pixels: p}
}

func (r *rig) addTexture(t *testing.T, id texture.ID, f texture.Format, lvl texture.Level) *texture.Texture {
	t.Helper()
	tex := texture.New(id, f, lvl)
	r.c.AddTexture(tex)
	if err := r.c.BindTexture(context.Background(), id); err != nil {
		t.Fatalf("BindTexture(%d): %v", id, err)
	}
	return tex
}

var texturing = Enable(CapTexture | CapPerspective)

func TestSolidTriangleSingleDraw(t *testing.T) {
	r := newRig(t)
	ok, n := r.draw(t, prim.Triangle(sv(10, 10), sv(200, 10), sv(10, 200)))
	if !ok || n != 1 {
		t.Fatalf("SetupAndDrawPrimitiveBatch = %v, %d, want true, 1", ok, n)
	}
	draws := r.rec.Draws()
	if len(draws) != 1 {
		t.Fatalf("draw commands = %d, want 1", len(draws))
	}
	if got := draws[0].Command.Prim(); got != device.CmdTriangle {
		t.Errorf("prim = %d, want triangle", got)
	}
	if draws[0].Command.Has(device.CmdDepthEnable) || draws[0].Command.Has(device.CmdTexture) {
		t.Errorf("command %#x enables depth or texture", uint32(draws[0].Command))
	}
	s := r.c.Stats()
	if s.Tessellated != 0 || s.Leaves != 0 || s.Clipped != 0 {
		t.Errorf("tessellated, leaves, clipped = %d, %d, %d, want 0, 0, 0", s.Tessellated, s.Leaves, s.Clipped)
	}
}

func TestTessellatedTriangle(t *testing.T) {
	r := newRig(t)
	r.addTexture(t, 1, texture.FormatBGRA8, solidLevel(256, 256, 1, 2, 3, 4))
	r.c.UpdateRenderState(texturing)

	// S runs over 16 repeats of a 256-texel texture: 4096 texels along the
	// long edge against a 128 texel limit.
	ok, _ := r.draw(t, prim.Triangle(tsv(10, 10, 0, 0), tsv(200, 10, 16, 0), tsv(10, 200, 0, 0)))
	if !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	s := r.c.Stats()
	if s.Tessellated != 1 {
		t.Errorf("Tessellated = %d, want 1", s.Tessellated)
	}
	if s.Leaves < 32 {
		t.Errorf("Leaves = %d, want >= 32", s.Leaves)
	}
	if s.Draws+s.Degenerate != s.Leaves {
		t.Errorf("draws %d + degenerate %d != leaves %d", s.Draws, s.Degenerate, s.Leaves)
	}
	if got := len(r.rec.Draws()); got != s.Draws {
		t.Errorf("recorded draws = %d, want %d", got, s.Draws)
	}
	for i, d := range r.rec.Draws() {
		if !d.Command.Has(device.CmdTexture | device.CmdPerspective) {
			t.Fatalf("draw %d: command %#x lacks texture bits", i, uint32(d.Command))
		}
	}
}

// TestMutatedBoundTextureReconfigures grows the bound texture between two
// identical batches. The second must tessellate against the new size.
func TestMutatedBoundTextureReconfigures(t *testing.T) {
	r := newRig(t)
	tex := r.addTexture(t, 1, texture.FormatBGRA8, solidLevel(8, 8, 1, 2, 3, 4))
	r.c.UpdateRenderState(texturing)

	tri := prim.Triangle(tsv(10, 10, 0, 0), tsv(200, 10, 16, 0), tsv(10, 200, 0, 0))
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	small := r.c.Stats().Leaves

	tex.SetLevels(solidLevel(256, 256, 1, 2, 3, 4))
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch after SetLevels not consumed: %v", r.c.LastError())
	}
	if got := r.c.Stats().Leaves - small; got < 32 {
		t.Errorf("leaves after growing to 256x256 = %d, want >= 32", got)
	}
	if small >= 32 {
		t.Errorf("leaves at 8x8 = %d, want fewer than 32", small)
	}
}

func TestSamplerChangeReachesNextBatch(t *testing.T) {
	r := newRig(t)
	var levels []texture.Level
	for side := 16; side >= 1; side /= 2 {
		levels = append(levels, solidLevel(side, side, 1, 2, 3, 4))
	}
	tex := texture.New(1, texture.FormatBGRA8, levels...)
	r.c.AddTexture(tex)
	if err := r.c.BindTexture(context.Background(), 1); err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	r.c.UpdateRenderState(Enable(CapTexture))

	tri := prim.Triangle(tsv(10, 10, 0, 0), tsv(14, 10, 8, 0), tsv(10, 14, 0, 8))
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	draws := r.rec.Draws()
	if _, ok := draws[len(draws)-1].Regs[device.RegLOD]; ok {
		t.Fatal("level of detail written without mipmapping")
	}

	smp := texture.DefaultSampler()
	smp.Min = gputypes.FilterModeLinear
	smp.Mip = gputypes.MipmapFilterModeNearest
	tex.SetSampler(smp)
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch after SetSampler not consumed: %v", r.c.LastError())
	}
	draws = r.rec.Draws()
	d := draws[len(draws)-1]
	if _, ok := d.Regs[device.RegLOD]; !ok {
		t.Error("level of detail not written after enabling mipmaps")
	}
	if !d.Command.Has(device.CmdTexture) {
		t.Errorf("command %#x lacks texture bit", uint32(d.Command))
	}
}

func TestLeftEdgeClip(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c prim.Vertex
		draws   int
	}{
		{"two outside", sv(10, 10), sv(100, 10), sv(10, 100), 1},
		{"one outside", sv(10, 50), sv(100, 10), sv(100, 100), 2},
		{"all outside", sv(1, 1), sv(15, 1), sv(1, 15), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t, WithWindow(image.Pt(-20, 0)))
			if ok, _ := r.draw(t, prim.Triangle(tt.a, tt.b, tt.c)); !ok {
				t.Fatalf("batch not consumed: %v", r.c.LastError())
			}
			if got := len(r.rec.Draws()); got != tt.draws {
				t.Errorf("draws = %d, want %d", got, tt.draws)
			}
			if got := r.c.Stats().Clipped; got != 1 {
				t.Errorf("Clipped = %d, want 1", got)
			}
			if got, want := r.rec.ReadRegister(device.RegWindowOrigin), uint32(0xFFEC); got != want {
				t.Errorf("WindowOrigin = %#x, want %#x", got, want)
			}
		})
	}
}

func TestClipInactiveOnScreen(t *testing.T) {
	r := newRig(t, WithWindow(image.Pt(20, 0)))
	r.draw(t, prim.Triangle(sv(-5, 10), sv(100, 10), sv(10, 100)))
	if got := r.c.Stats().Clipped; got != 0 {
		t.Errorf("Clipped = %d, want 0 for an on-screen window", got)
	}
}

func TestPartialConsumption(t *testing.T) {
	r := newRig(t)
	r.c.UpdateRenderState(SetLineWidth(2))
	tri := prim.Triangle(sv(10, 10), sv(200, 10), sv(10, 200))
	ok, n := r.draw(t, tri, prim.Line(sv(0, 0), sv(10, 10)), tri)
	if ok || n != 1 {
		t.Errorf("SetupAndDrawPrimitiveBatch = %v, %d, want false, 1", ok, n)
	}
	if err := r.c.LastError(); !errors.Is(err, ErrUnsupported) {
		t.Errorf("LastError() = %v, want ErrUnsupported", err)
	}
	if got := len(r.rec.Draws()); got != 1 {
		t.Errorf("draws = %d, want 1", got)
	}
	if got := r.c.Stats().RejectedBatches; got != 1 {
		t.Errorf("RejectedBatches = %d, want 1", got)
	}
}

func TestAllPrimitivesFail(t *testing.T) {
	r := newRig(t)
	r.c.UpdateRenderState(Enable(CapLogicOp))
	ok, n := r.draw(t, prim.Point(sv(1, 1)))
	if ok || n != 0 {
		t.Errorf("SetupAndDrawPrimitiveBatch = %v, %d, want false, 0", ok, n)
	}
	if !errors.Is(r.c.LastError(), ErrAllPrimitivesFail) {
		t.Errorf("LastError() = %v, want ErrAllPrimitivesFail", r.c.LastError())
	}
	if len(r.rec.Writes()) != 0 {
		t.Errorf("%d register writes for a rejected batch, want 0", len(r.rec.Writes()))
	}

	// Restoring the state accelerates again.
	r.c.UpdateRenderState(Disable(CapLogicOp))
	if ok, _ := r.draw(t, prim.Point(sv(1, 1))); !ok {
		t.Errorf("batch after restoring state not consumed: %v", r.c.LastError())
	}
}

func TestFaceCulling(t *testing.T) {
	r := newRig(t)
	r.c.UpdateRenderState(Enable(CapCullFace), SetCull(gputypes.FrontFaceCCW, gputypes.CullModeBack))
	ccw := prim.Triangle(sv(10, 10), sv(200, 10), sv(10, 200))
	cw := prim.Triangle(sv(10, 10), sv(10, 200), sv(200, 10))
	if ok, _ := r.draw(t, ccw, cw); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	if got := len(r.rec.Draws()); got != 1 {
		t.Errorf("draws = %d, want 1", got)
	}
	if got := r.c.Stats().Culled; got != 1 {
		t.Errorf("Culled = %d, want 1", got)
	}
}

func TestPolygonLineMode(t *testing.T) {
	r := newRig(t)
	r.c.UpdateRenderState(SetPolygonMode(PolygonLine, PolygonLine))
	if ok, _ := r.draw(t, prim.Triangle(sv(10, 10), sv(200, 10), sv(10, 200))); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	draws := r.rec.Draws()
	if len(draws) != 3 {
		t.Fatalf("draws = %d, want 3 edge lines", len(draws))
	}
	for i, d := range draws {
		if d.Command.Prim() != device.CmdLine {
			t.Errorf("draw %d prim = %d, want line", i, d.Command.Prim())
		}
	}
}

func TestPointsAndLines(t *testing.T) {
	r := newRig(t)
	ok, n := r.draw(t,
		prim.Point(sv(5, 5)),
		prim.Line(sv(0, 0), sv(40, 10)),
	)
	if !ok || n != 2 {
		t.Fatalf("SetupAndDrawPrimitiveBatch = %v, %d, want true, 2", ok, n)
	}
	draws := r.rec.Draws()
	if len(draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(draws))
	}
	if draws[0].Command.Prim() != device.CmdPoint || draws[1].Command.Prim() != device.CmdLine {
		t.Errorf("prims = %d, %d, want point, line", draws[0].Command.Prim(), draws[1].Command.Prim())
	}
	if got := draws[1].Int(device.RegLineCount); got != 40 {
		t.Errorf("LineCount = %d, want 40", got)
	}
}

func TestBindTextureProgramsUnit(t *testing.T) {
	r := newRig(t)
	tex := r.addTexture(t, 7, texture.FormatBGRA8, solidLevel(64, 64, 1, 2, 3, 4))

	a := r.c.Textures().Allocation(tex)
	if a == nil {
		t.Fatal("bound texture not resident")
	}
	if got := r.rec.ReadRegister(device.RegTexBase); got != a.LevelBase(0) {
		t.Errorf("TexBase = %#x, want %#x", got, a.LevelBase(0))
	}
	if got, want := r.rec.ReadRegister(device.RegTexSize), uint32(6|1<<device.TexSizeLevelsShift); got != want {
		t.Errorf("TexSize = %#x, want %#x", got, want)
	}
	if got, want := r.rec.ReadRegister(device.RegTexMode), device.TexModeRepeatS|device.TexModeRepeatT; got != want {
		t.Errorf("TexMode = %#x, want %#x", got, want)
	}
	if !r.c.TextureResident(7) {
		t.Error("TextureResident(7) = false")
	}
}

func TestTextureUnavailableFallsBack(t *testing.T) {
	// The pool is smaller than one 64x64 texture.
	r := newRigSized(t, 4096)
	tex := texture.New(1, texture.FormatBGRA8, solidLevel(64, 64, 0, 0, 0, 0))
	r.c.AddTexture(tex)
	err := r.c.BindTexture(context.Background(), 1)
	if !errors.Is(err, ErrTextureUnavailable) || !errors.Is(err, texture.ErrPoolExhausted) {
		t.Fatalf("BindTexture = %v, want ErrTextureUnavailable wrapping ErrPoolExhausted", err)
	}

	r.c.UpdateRenderState(texturing)
	tri := prim.Triangle(tsv(10, 10, 0, 0), tsv(200, 10, 1, 0), tsv(10, 200, 0, 1))
	if ok, n := r.draw(t, tri); ok || n != 0 {
		t.Errorf("textured batch = %v, %d, want false, 0", ok, n)
	}
	if !errors.Is(r.c.LastError(), ErrTextureUnavailable) {
		t.Errorf("LastError() = %v, want ErrTextureUnavailable", r.c.LastError())
	}

	r.c.UpdateRenderState(Disable(CapTexture))
	if ok, _ := r.draw(t, tri); !ok {
		t.Errorf("untextured batch not consumed: %v", r.c.LastError())
	}
}

func TestBindUnknownTexture(t *testing.T) {
	c := newTestContext(t)
	if err := c.BindTexture(context.Background(), 42); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("BindTexture(42) = %v, want ErrUnknownTexture", err)
	}
	if err := c.SetTexturePriority(42, 1); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("SetTexturePriority(42) = %v, want ErrUnknownTexture", err)
	}
	if c.TextureResident(42) {
		t.Error("TextureResident(42) = true")
	}
}

func TestInvalidateAllDeviceMemory(t *testing.T) {
	r := newRig(t)
	r.addTexture(t, 1, texture.FormatBGRA8, solidLevel(32, 32, 9, 9, 9, 9))
	r.c.UpdateRenderState(texturing)
	tri := prim.Triangle(tsv(10, 10, 0, 0), tsv(100, 10, 1, 0), tsv(10, 100, 0, 1))
	r.draw(t, tri)

	r.c.InvalidateAllDeviceMemory()
	if r.c.TextureResident(1) {
		t.Fatal("texture resident after InvalidateAllDeviceMemory")
	}
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch after invalidation not consumed: %v", r.c.LastError())
	}
	if !r.c.TextureResident(1) {
		t.Error("texture not reloaded on next use")
	}
	if got := r.c.Stats().Texture.Allocations; got != 2 {
		t.Errorf("Allocations = %d, want 2", got)
	}
}

func TestReleaseTexture(t *testing.T) {
	r := newRig(t)
	r.addTexture(t, 3, texture.FormatBGRA8, solidLevel(16, 16, 1, 1, 1, 1))
	r.c.ReleaseTexture(3)
	if _, ok := r.c.Texture(3); ok {
		t.Error("texture still known after ReleaseTexture")
	}
	if got := r.c.Stats().Texture.Resident; got != 0 {
		t.Errorf("Resident = %d, want 0", got)
	}
	// Textured state without a bound texture draws untextured.
	r.c.UpdateRenderState(texturing)
	if ok, _ := r.draw(t, prim.Triangle(sv(10, 10), sv(100, 10), sv(10, 100))); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	if r.rec.Draws()[0].Command.Has(device.CmdTexture) {
		t.Error("texture bit set with no texture bound")
	}
}

func TestLuminanceAlphaReload(t *testing.T) {
	r := newRig(t)
	tex := r.addTexture(t, 1, texture.FormatLuminance8, solidLevel(16, 16, 0x80))
	r.c.UpdateRenderState(texturing)
	tri := prim.Triangle(tsv(10, 10, 0, 0), tsv(100, 10, 1, 0), tsv(10, 100, 0, 1))

	texel := func() []byte {
		base := r.c.Textures().Allocation(tex).LevelBase(0)
		return r.rec.Memory()[base : base+4]
	}
	r.draw(t, tri)
	if got := texel(); string(got) != "\x80\x80\x80\xff" {
		t.Errorf("texel = % x, want 80 80 80 ff", got)
	}

	r.c.UpdateRenderState(Enable(CapBlend), SetBlend(BlendDarken))
	if ok, _ := r.draw(t, tri); !ok {
		t.Fatalf("batch not consumed: %v", r.c.LastError())
	}
	if got := texel(); string(got) != "\x00\x00\x00\x80" {
		t.Errorf("texel = % x, want 00 00 00 80", got)
	}
	if got := r.rec.Draws()[len(r.rec.Draws())-1].Command.Blend(); got != device.BlendLuminance {
		t.Errorf("blend = %d, want BlendLuminance", got)
	}
}

func TestWaitTimeout(t *testing.T) {
	r := newRig(t, WithWaitTimeout(time.Millisecond))
	r.rec.SetStalled(true)
	ok, n := r.draw(t, prim.Triangle(sv(10, 10), sv(200, 10), sv(10, 200)))
	if ok || n != 0 {
		t.Errorf("SetupAndDrawPrimitiveBatch = %v, %d, want false, 0", ok, n)
	}
	if !errors.Is(r.c.LastError(), device.ErrWaitTimeout) {
		t.Errorf("LastError() = %v, want ErrWaitTimeout", r.c.LastError())
	}
}

func TestProfiles(t *testing.T) {
	if _, err := NewContext(nil, nil, nil, WithProfile("missing")); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("NewContext(missing profile) = %v, want ErrUnknownProfile", err)
	}
	p, ok := LookupProfile("")
	if !ok || p.Name != ProfileExtended {
		t.Errorf("LookupProfile(\"\") = %q, %v, want %q", p.Name, ok, ProfileExtended)
	}
	if p, _ := LookupProfile(ProfileCompact); p.UVMaxTexels != 128 {
		t.Errorf("compact UVMaxTexels = %d, want 128", p.UVMaxTexels)
	}
	if p.UVMaxTexels != 2048 {
		t.Errorf("extended UVMaxTexels = %d, want 2048", p.UVMaxTexels)
	}
	names := Profiles()
	if len(names) < 2 || names[0] != ProfileCompact || names[1] != ProfileExtended {
		t.Errorf("Profiles() = %v, want [compact extended ...]", names)
	}
}
