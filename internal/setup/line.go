package setup

import (
	"math"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/internal/fixed"
	"github.com/gogpu/accel3d/prim"
)

// Line computes the program for the line from a to b.
//
// The device steps one pixel along the major axis per step, so the line
// runs round(major) steps with fractional increments on the minor axis.
// Attribute deltas are written per step into the X-step registers. A line
// shorter than a pixel is drawn as a single step; ok is false only for
// non-finite input.
func (e *Engine) Line(a, b *prim.Vertex) (prog *device.Program, ok bool) {
	e.prog.Reset()
	if !finite(a, b) {
		return nil, false
	}
	var vals [2]values
	e.load(vals[:], e.provoking(b), a, b)

	x0, y0 := float(snap(a.X)), float(snap(a.Y))
	x1, y1 := float(snap(b.X)), float(snap(b.Y))
	dx, dy := x1-x0, y1-y0
	major := math.Max(math.Abs(dx), math.Abs(dy))
	steps := max(int(math.Round(major)), 1)
	inv := fixed.Recip(major)

	p := &e.prog
	p.EmitInt(device.RegLineX, fixed.FDot16FromFloat64(x0))
	p.EmitInt(device.RegLineY, fixed.FDot16FromFloat64(y0))
	p.EmitInt(device.RegLineDX, fixed.FDot16FromFloat64(dx*inv))
	p.EmitInt(device.RegLineDY, fixed.FDot16FromFloat64(dy*inv))
	p.Emit(device.RegLineCount, fixed.Clamp15(int32(steps)))

	var step values
	for at := range numAttrs {
		step[at] = (vals[1][at] - vals[0][at]) * inv
	}
	e.emitAttrs(&vals[0], &step)

	e.lod = 0
	if e.cfg.Flags.Has(Texture|Mipmap) && math.Abs(vals[0][attrQ]) > fixed.Epsilon {
		// Texel distance per pixel along the line, measured at the start.
		q := vals[0][attrQ]
		u, v := vals[0][attrS]/q, vals[0][attrT]/q
		du := (step[attrS] - u*step[attrQ]) / q
		dv := (step[attrT] - v*step[attrQ]) / q
		e.lod = clampLOD(fixed.Log4(float32(du*du+dv*dv)), e.maxLevel())
		p.Emit(device.RegLOD, fixed.LOD(e.lod, e.maxLevel()))
	}
	p.Emit(device.RegRender, uint32(e.filter(e.command(device.CmdLine, 1))))
	return p, true
}

// Point computes the program for a single pixel at a.
func (e *Engine) Point(a *prim.Vertex) (prog *device.Program, ok bool) {
	e.prog.Reset()
	if !finite(a) {
		return nil, false
	}
	var vals [1]values
	e.load(vals[:], e.provoking(a), a)

	p := &e.prog
	p.EmitInt(device.RegLineX, fixed.FDot16FromFloat64(float(snap(a.X))))
	p.EmitInt(device.RegLineY, fixed.FDot16FromFloat64(float(snap(a.Y))))
	p.EmitInt(device.RegLineDX, 0)
	p.EmitInt(device.RegLineDY, 0)
	p.Emit(device.RegLineCount, 1)

	var zero values
	e.emitAttrs(&vals[0], &zero)

	e.lod = 0
	if e.cfg.Flags.Has(Texture | Mipmap) {
		p.Emit(device.RegLOD, 0)
	}
	p.Emit(device.RegRender, uint32(e.filter(e.command(device.CmdPoint, 1))))
	return p, true
}

// emitAttrs writes start values and per-step deltas of the active
// attributes. Lines have no dominant edge, so the Y-steps are zero.
func (e *Engine) emitAttrs(start, step *values) {
	p := &e.prog
	for at := range numAttrs {
		if !e.active(at) {
			continue
		}
		s := e.scale(at)
		regs := attrRegs[at]
		p.EmitInt(regs[0], fixed.FromFloat64(start[at], s))
		p.EmitInt(regs[1], fixed.FromFloat64(step[at], s))
		p.EmitInt(regs[2], 0)
	}
}
