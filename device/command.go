package device

import "github.com/gogpu/gputypes"

// Command is the value written to RegRender. It selects the primitive type
// and every per-primitive pipeline mode.
//
// Layout:
//
//	bits  0-1  primitive type
//	bit   2    clip enable
//	bits  3-5  video mode (color buffer format)
//	bit   6    depth test enable
//	bits  7-9  depth compare function
//	bit   10   depth write
//	bit   11   texture enable
//	bits 12-13 texture function
//	bits 14-15 blend function
//	bit   16   Gouraud shading
//	bit   17   fog
//	bit   18   perspective correction
//	bits 19-21 texture filter
//	bit   22   alpha test
//	bit   23   dither
//	bit   24   scan right to left
type Command uint32

// Primitive types.
const (
	CmdPoint    Command = 0
	CmdLine     Command = 1
	CmdTriangle Command = 2
	CmdPrimMask Command = 3
)

// Single-bit modes.
const (
	CmdClipEnable  Command = 1 << 2
	CmdDepthEnable Command = 1 << 6
	CmdDepthWrite  Command = 1 << 10
	CmdTexture     Command = 1 << 11
	CmdGouraud     Command = 1 << 16
	CmdFog         Command = 1 << 17
	CmdPerspective Command = 1 << 18
	CmdAlphaTest   Command = 1 << 22
	CmdDither      Command = 1 << 23
	CmdScanLeft    Command = 1 << 24
)

const (
	videoModeShift = 3
	videoModeMask  = 7 << videoModeShift
	depthFuncShift = 7
	depthFuncMask  = 7 << depthFuncShift
	texFuncShift   = 12
	texFuncMask    = 3 << texFuncShift
	blendShift     = 14
	blendMask      = 3 << blendShift
	texFilterShift = 19
	texFilterMask  = 7 << texFilterShift
)

// VideoMode is the color buffer format the primitive is written into.
type VideoMode uint8

// Video modes.
const (
	VideoRGB565 VideoMode = iota
	VideoRGB555
	VideoRGB888
	VideoARGB8888
)

// TexFunc is the texture environment function.
type TexFunc uint8

// Texture functions.
const (
	TexModulate TexFunc = iota
	TexDecal
	TexReplace
)

// BlendFunc is the hardware blend equation.
type BlendFunc uint8

// Blend functions supported by the device.
const (
	BlendNone      BlendFunc = iota
	BlendSrcAlpha            // src*a + dst*(1-a)
	BlendLuminance           // dst*(1-a), with texel alpha carrying luminance
)

// TexFilter is the hardware texture filter.
type TexFilter uint8

// Texture filters.
const (
	FilterNearest TexFilter = iota
	FilterLinear
	FilterNearestMipNearest
	FilterLinearMipNearest
	FilterNearestMipLinear
	FilterLinearMipLinear
)

// Prim returns the primitive type bits.
func (c Command) Prim() Command { return c & CmdPrimMask }

// WithPrim returns c with the primitive type replaced.
func (c Command) WithPrim(p Command) Command { return c&^CmdPrimMask | p&CmdPrimMask }

// Has reports whether every bit of m is set.
func (c Command) Has(m Command) bool { return c&m == m }

// VideoMode returns the video mode field.
func (c Command) VideoMode() VideoMode { return VideoMode((c & videoModeMask) >> videoModeShift) }

// WithVideoMode returns c with the video mode field replaced.
func (c Command) WithVideoMode(m VideoMode) Command {
	return c&^videoModeMask | Command(m)<<videoModeShift&videoModeMask
}

// DepthFunc returns the depth compare field.
func (c Command) DepthFunc() gputypes.CompareFunction {
	return gputypes.CompareFunction((c&depthFuncMask)>>depthFuncShift) + gputypes.CompareFunctionNever
}

// WithDepthFunc returns c with the depth compare field replaced. Undefined
// compares as Less.
func (c Command) WithDepthFunc(f gputypes.CompareFunction) Command {
	if f == gputypes.CompareFunctionUndefined {
		f = gputypes.CompareFunctionLess
	}
	v := Command(f - gputypes.CompareFunctionNever)
	return c&^depthFuncMask | v<<depthFuncShift&depthFuncMask
}

// TexFunc returns the texture function field.
func (c Command) TexFunc() TexFunc { return TexFunc((c & texFuncMask) >> texFuncShift) }

// WithTexFunc returns c with the texture function field replaced.
func (c Command) WithTexFunc(f TexFunc) Command {
	return c&^texFuncMask | Command(f)<<texFuncShift&texFuncMask
}

// Blend returns the blend function field.
func (c Command) Blend() BlendFunc { return BlendFunc((c & blendMask) >> blendShift) }

// WithBlend returns c with the blend function field replaced.
func (c Command) WithBlend(b BlendFunc) Command {
	return c&^blendMask | Command(b)<<blendShift&blendMask
}

// Filter returns the texture filter field.
func (c Command) Filter() TexFilter { return TexFilter((c & texFilterMask) >> texFilterShift) }

// WithFilter returns c with the texture filter field replaced.
func (c Command) WithFilter(f TexFilter) Command {
	return c&^texFilterMask | Command(f)<<texFilterShift&texFilterMask
}
