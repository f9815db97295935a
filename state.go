package accel3d

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/accel3d/device"
)

// Caps are pipeline capabilities switched on and off as a whole.
type Caps uint32

// Capabilities.
const (
	CapDepthTest Caps = 1 << iota
	CapDepthWrite
	CapTexture
	CapPerspective // perspective-correct texturing
	CapSmooth      // Gouraud shading; flat otherwise
	CapBlend
	CapAlphaTest
	CapFog
	CapDither
	CapCullFace
	CapLineStipple
	CapPolygonStipple
	CapLogicOp
	CapPointSmooth
	CapLineSmooth
	CapPolygonSmooth
)

// Has reports whether every capability in m is enabled.
func (c Caps) Has(m Caps) bool { return c&m == m }

// PolygonMode is how the faces of a triangle are rasterized.
type PolygonMode uint8

// Polygon modes.
const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

// DrawBuffer selects the color buffers written.
type DrawBuffer uint8

// Draw buffers.
const (
	DrawBack DrawBuffer = iota
	DrawFront
	DrawFrontAndBack
)

// RenderState is the pipeline state primitives are drawn with. It is
// comparable and used as the key of the selection cache.
type RenderState struct {
	Caps Caps

	DepthFunc gputypes.CompareFunction
	Blend     gputypes.BlendComponent
	AlphaFunc gputypes.CompareFunction
	AlphaRef  float32
	ColorMask gputypes.ColorWriteMask

	DrawBuffer DrawBuffer
	FrontFace  gputypes.FrontFace
	CullMode   gputypes.CullMode
	FrontMode  PolygonMode
	BackMode   PolygonMode

	LineWidth float32
	PointSize float32
	TexFunc   device.TexFunc
}

// DefaultRenderState returns the initial state of a Context: smooth
// shading, depth test off, no blending, all channels written.
func DefaultRenderState() RenderState {
	return RenderState{
		Caps:      CapSmooth,
		DepthFunc: gputypes.CompareFunctionLess,
		Blend:     BlendReplace,
		AlphaFunc: gputypes.CompareFunctionAlways,
		ColorMask: gputypes.ColorWriteMaskAll,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  gputypes.CullModeNone,
		LineWidth: 1,
		PointSize: 1,
		TexFunc:   device.TexModulate,
	}
}

// StateDelta changes part of a RenderState.
type StateDelta func(*RenderState)

// Enable turns capabilities on.
func Enable(c Caps) StateDelta {
	return func(s *RenderState) { s.Caps |= c }
}

// Disable turns capabilities off.
func Disable(c Caps) StateDelta {
	return func(s *RenderState) { s.Caps &^= c }
}

// SetDepthFunc sets the depth comparison.
func SetDepthFunc(f gputypes.CompareFunction) StateDelta {
	return func(s *RenderState) { s.DepthFunc = f }
}

// SetBlend sets the color blend equation.
func SetBlend(b gputypes.BlendComponent) StateDelta {
	return func(s *RenderState) { s.Blend = b }
}

// SetAlphaFunc sets the alpha test comparison and reference in [0, 1].
func SetAlphaFunc(f gputypes.CompareFunction, ref float32) StateDelta {
	return func(s *RenderState) {
		s.AlphaFunc = f
		s.AlphaRef = ref
	}
}

// SetColorMask sets the written color channels.
func SetColorMask(m gputypes.ColorWriteMask) StateDelta {
	return func(s *RenderState) { s.ColorMask = m }
}

// SetDrawBuffer sets the color buffers written.
func SetDrawBuffer(b DrawBuffer) StateDelta {
	return func(s *RenderState) { s.DrawBuffer = b }
}

// SetCull sets the winding of front faces and which faces are culled.
// Culling also needs CapCullFace.
func SetCull(front gputypes.FrontFace, mode gputypes.CullMode) StateDelta {
	return func(s *RenderState) {
		s.FrontFace = front
		s.CullMode = mode
	}
}

// SetPolygonMode sets how front and back faces are rasterized.
func SetPolygonMode(front, back PolygonMode) StateDelta {
	return func(s *RenderState) {
		s.FrontMode = front
		s.BackMode = back
	}
}

// SetLineWidth sets the line width in pixels.
func SetLineWidth(w float32) StateDelta {
	return func(s *RenderState) { s.LineWidth = w }
}

// SetPointSize sets the point size in pixels.
func SetPointSize(sz float32) StateDelta {
	return func(s *RenderState) { s.PointSize = sz }
}

// SetTexFunc sets the texture environment function.
func SetTexFunc(f device.TexFunc) StateDelta {
	return func(s *RenderState) { s.TexFunc = f }
}

// Standard blend equations.
var (
	// BlendReplace writes the source color.
	BlendReplace = gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	}

	// BlendAlpha is src*a + dst*(1-a).
	BlendAlpha = gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}

	// BlendDarken is dst*(1-a). Drawn with a luminance texture loaded as
	// alpha, it darkens the frame buffer by the texture.
	BlendDarken = gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
)
