package accel3d

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/internal/cache"
	"github.com/gogpu/accel3d/prim"
)

// Strategy is how one primitive class is drawn.
type Strategy uint8

// Strategies.
const (
	// StrategyRejected hands primitives of the class to the caller's
	// software path.
	StrategyRejected Strategy = iota

	// StrategyAccelerated draws primitives of the class on the device.
	StrategyAccelerated
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyAccelerated:
		return "accelerated"
	case StrategyRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// face is the resolved handling of one triangle winding.
type face struct {
	cull bool
	mode PolygonMode
}

// Selection is the resolved drawing strategy for a render state.
type Selection struct {
	Strategies [prim.KindCount]Strategy
	Reasons    [prim.KindCount]string // why a class was rejected

	// AllFail is set when no class is accelerated. The whole batch then
	// belongs to the software path.
	AllFail bool

	// Command holds the mode bits shared by every primitive: video mode,
	// depth, blend, texture function, alpha test, fog and dither.
	Command device.Command

	// Blend is the device blend function for the state.
	Blend device.BlendFunc

	// faces is indexed by counter-clockwise winding: [0] clockwise,
	// [1] counter-clockwise. It is only filled when triangles are
	// accelerated.
	faces [2]face
}

// Strategy returns the strategy for class k.
func (s *Selection) Strategy(k prim.Kind) Strategy {
	if k >= prim.KindCount {
		return StrategyRejected
	}
	return s.Strategies[k]
}

// face returns the handling of a triangle with the given winding.
func (s *Selection) face(ccw bool) face {
	if ccw {
		return s.faces[1]
	}
	return s.faces[0]
}

// selectionKey is a render state with the context-wide inputs of a
// selection.
type selectionKey struct {
	state RenderState
	video device.VideoMode
}

// selector runs the rendering-function state machine. Selections are
// memoized by state, so toggling between a few states does not rebuild
// face tables.
type selector struct {
	cache   *cache.Cache[selectionKey, Selection]
	current Selection
	needs   bool
	runs    int
}

func newSelector() *selector {
	return &selector{
		cache: cache.New[selectionKey, Selection](32),
		needs: true,
	}
}

// invalidate forces re-selection before the next batch.
func (s *selector) invalidate() { s.needs = true }

// resolve returns the current selection, re-selecting when needed.
func (s *selector) resolve(st *RenderState, video device.VideoMode) *Selection {
	if s.needs {
		key := selectionKey{state: *st, video: video}
		s.current = s.cache.GetOrCreate(key, func() Selection {
			s.runs++
			return selectFor(st, video)
		})
		s.needs = false
	}
	return &s.current
}

// selectFor tests a render state against the device's limitations.
func selectFor(st *RenderState, video device.VideoMode) Selection {
	var sel Selection
	reject := func(k prim.Kind, reason string) {
		if sel.Reasons[k] == "" {
			sel.Reasons[k] = reason
		}
	}
	rejectAll := func(reason string) {
		for k := range prim.KindCount {
			reject(k, reason)
		}
	}

	// Limits shared by every class.
	blend, ok := deviceBlend(st)
	if !ok {
		rejectAll("unsupported blend equation")
	}
	if st.Caps.Has(CapAlphaTest) && !alphaTestSupported(st) {
		rejectAll("alpha test other than greater-than on textured primitives")
	}
	const rgb = gputypes.ColorWriteMaskRed | gputypes.ColorWriteMaskGreen | gputypes.ColorWriteMaskBlue
	if st.ColorMask&rgb != rgb {
		rejectAll("color mask excludes a color channel")
	}
	if st.DrawBuffer == DrawFrontAndBack {
		rejectAll("drawing to two buffers")
	}
	if st.Caps.Has(CapLogicOp) {
		rejectAll("logic op")
	}

	// Per-class limits.
	if st.Caps.Has(CapPointSmooth) {
		reject(prim.KindPoint, "antialiased points")
	}
	if st.PointSize != 1 {
		reject(prim.KindPoint, "point size other than 1")
	}
	if st.Caps.Has(CapLineStipple) {
		reject(prim.KindLine, "line stipple")
	}
	if st.Caps.Has(CapLineSmooth) {
		reject(prim.KindLine, "antialiased lines")
	}
	if st.LineWidth != 1 {
		reject(prim.KindLine, "line width other than 1")
	}
	if st.Caps.Has(CapPolygonStipple) {
		reject(prim.KindTriangle, "polygon stipple")
	}
	if st.Caps.Has(CapPolygonSmooth) {
		reject(prim.KindTriangle, "antialiased polygons")
	}
	faces := faceTable(st)
	for _, f := range faces {
		if f.cull {
			continue
		}
		if f.mode == PolygonPoint {
			reject(prim.KindTriangle, "point polygon mode")
		}
		if f.mode == PolygonLine && sel.Reasons[prim.KindLine] != "" {
			reject(prim.KindTriangle, "line polygon mode with lines rejected")
		}
	}

	sel.AllFail = true
	for k := range prim.KindCount {
		if sel.Reasons[k] == "" {
			sel.Strategies[k] = StrategyAccelerated
			sel.AllFail = false
		}
	}
	if sel.Strategies[prim.KindTriangle] == StrategyAccelerated {
		sel.faces = faces
	}
	sel.Blend = blend
	sel.Command = baseCommand(st, video, blend)
	return sel
}

// faceTable resolves front and back faces from the winding convention.
func faceTable(st *RenderState) [2]face {
	var t [2]face
	for i, ccw := range [2]bool{false, true} {
		front := ccw == (st.FrontFace == gputypes.FrontFaceCCW)
		f := face{mode: st.BackMode}
		if front {
			f.mode = st.FrontMode
		}
		if st.Caps.Has(CapCullFace) {
			switch st.CullMode {
			case gputypes.CullModeFront:
				f.cull = front
			case gputypes.CullModeBack:
				f.cull = !front
			}
		}
		t[i] = f
	}
	return t
}

// deviceBlend maps the blend equation onto the device's blend functions.
func deviceBlend(st *RenderState) (device.BlendFunc, bool) {
	if !st.Caps.Has(CapBlend) {
		return device.BlendNone, true
	}
	switch st.Blend {
	case BlendReplace:
		return device.BlendNone, true
	case BlendAlpha:
		return device.BlendSrcAlpha, true
	case BlendDarken:
		return device.BlendLuminance, true
	default:
		return device.BlendNone, false
	}
}

// alphaTestSupported reports whether the alpha test can be expressed. The
// device only discards texels at or below a reference alpha, which serves
// a greater-than test on textured primitives.
func alphaTestSupported(st *RenderState) bool {
	return st.Caps.Has(CapTexture) && st.AlphaFunc == gputypes.CompareFunctionGreater
}

// baseCommand composes the mode bits of a state.
func baseCommand(st *RenderState, video device.VideoMode, blend device.BlendFunc) device.Command {
	cmd := device.CmdClipEnable.WithVideoMode(video).WithBlend(blend).WithTexFunc(st.TexFunc)
	if st.Caps.Has(CapDepthTest) {
		cmd |= device.CmdDepthEnable
		cmd = cmd.WithDepthFunc(st.DepthFunc)
		if st.Caps.Has(CapDepthWrite) {
			cmd |= device.CmdDepthWrite
		}
	}
	if st.Caps.Has(CapAlphaTest) {
		cmd |= device.CmdAlphaTest
	}
	if st.Caps.Has(CapDither) {
		cmd |= device.CmdDither
	}
	return cmd
}
