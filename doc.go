// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package accel3d is the rasterization and texture-resource core of a
// driver for a fixed-function 3D accelerator.
//
// # Overview
//
// A [Context] turns batches of screen-space points, lines and triangles into
// register programs for a device that draws trapezoids from per-edge and
// per-attribute start values and deltas. The device has a bounded texture
// memory pool and limits the texel span a single primitive may cover, so the
// context also manages texture residency and splits large textured
// triangles.
//
//	heap := device.NewHeap(8 << 20)
//	c, err := accel3d.NewContext(dev, mem, heap, accel3d.WithProfile(accel3d.ProfileCompact))
//	if err != nil {
//	    return err
//	}
//	c.UpdateRenderState(accel3d.Enable(accel3d.CapDepthTest | accel3d.CapDepthWrite))
//	ok, next := c.SetupAndDrawPrimitiveBatch(ctx, batch)
//	if !ok {
//	    drawInSoftware(batch[next:])
//	}
//
// # Pipeline
//
// Each batch first resolves the rendering functions for the render state:
// every primitive class is either accelerated or rejected. A rejected class
// hands the rest of the batch back to the caller. Accelerated triangles then
// go through face culling, the left-edge clipper (only when the window
// crosses the left screen edge), the texture-space tesselation engine (only
// for perspective-correct textured triangles) and the setup engine, whose
// programs are fed to the device through a [device.Sink].
//
// # Textures
//
// Textures are added with [Context.AddTexture] and bound with
// [Context.BindTexture]. Binding validates the texture, allocates device
// memory (evicting lower-priority textures when the pool is full) and loads
// stale levels. A texture that cannot be made resident makes textured
// primitives fall back to software.
//
// # Coordinate System
//
// Window coordinates in pixels, Y up. Pixel centers lie at half-integer
// coordinates; a triangle covers the scanlines whose centers lie in
// [ymin, ymax).
package accel3d
