package accel3d

import (
	"context"
	"fmt"

	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/internal/tess"
	"github.com/gogpu/accel3d/prim"
)

// SetupAndDrawPrimitiveBatch draws the primitives of batch in order.
//
// It returns true and len(batch) when every primitive was consumed. When a
// primitive cannot be drawn on the device (its class is rejected, its
// texture is unavailable, or the device could not take the commands) it
// returns false and the index of that primitive; the caller draws it and
// the rest of the batch in software. LastError tells why.
func (c *Context) SetupAndDrawPrimitiveBatch(ctx context.Context, batch prim.Batch) (fullyConsumed bool, firstUnconsumed int) {
	c.stats.Batches++
	c.lastErr = nil
	n, err := c.drawBatch(ctx, batch)
	if err != nil {
		c.lastErr = err
		c.stats.RejectedBatches++
		c.log.Debug("accel3d: batch partially consumed",
			"consumed", n,
			"total", len(batch),
			"err", err)
		return false, n
	}
	return true, n
}

func (c *Context) drawBatch(ctx context.Context, batch prim.Batch) (int, error) {
	sel := c.sel.resolve(&c.state, c.video)
	if sel.AllFail {
		c.log.Warn("accel3d: all primitive classes rejected",
			"points", sel.Reasons[prim.KindPoint],
			"lines", sel.Reasons[prim.KindLine],
			"triangles", sel.Reasons[prim.KindTriangle])
		return 0, ErrAllPrimitivesFail
	}
	if c.bound != nil && c.bound.Generation() != c.boundGen {
		c.configured = false
	}
	if !c.configured {
		if err := c.configure(ctx, sel); err != nil {
			return 0, err
		}
	}
	// Checked every batch: the texture may have been evicted or its source
	// data changed since the last one.
	var texErr error
	if c.textured {
		texErr = c.prepareTexture(ctx)
	}

	for i := range batch {
		p := &batch[i]
		if sel.Strategy(p.Kind) != StrategyAccelerated {
			return i, fmt.Errorf("%w: %v: %s", ErrUnsupported, p.Kind, sel.Reasons[p.Kind])
		}
		if texErr != nil {
			return i, texErr
		}
		if err := c.drawPrimitive(ctx, sel, p); err != nil {
			return i, err
		}
		c.stats.Primitives++
	}
	return len(batch), nil
}

func (c *Context) drawPrimitive(ctx context.Context, sel *Selection, p *prim.Primitive) error {
	switch p.Kind {
	case prim.KindPoint:
		return c.drawPoint(ctx, &p.V[0])
	case prim.KindLine:
		return c.drawLine(ctx, &p.V[0], &p.V[1], &p.V[1])
	case prim.KindTriangle:
		return c.drawTriangle(ctx, sel, &p.V[0], &p.V[1], &p.V[2])
	default:
		return fmt.Errorf("%w: %v", ErrUnsupported, p.Kind)
	}
}

func (c *Context) drawPoint(ctx context.Context, a *prim.Vertex) error {
	if c.clipper.Active() && !c.clipper.Point(a) {
		c.stats.Clipped++
		return nil
	}
	c.engine.Begin(a)
	prog, ok := c.engine.Point(a)
	if !ok {
		c.stats.Degenerate++
		return nil
	}
	return c.submit(ctx, prog)
}

// drawLine draws the line from a to b. Under flat shading it takes the
// color of provoking.
func (c *Context) drawLine(ctx context.Context, a, b, provoking *prim.Vertex) error {
	c.engine.Begin(provoking)
	if c.clipper.Active() && (c.clipper.Outside(a) || c.clipper.Outside(b)) {
		c.stats.Clipped++
		ca, cb, visible := c.clipper.Line(a, b)
		if !visible {
			return nil
		}
		a, b = &ca, &cb
	}
	prog, ok := c.engine.Line(a, b)
	if !ok {
		c.stats.Degenerate++
		return nil
	}
	return c.submit(ctx, prog)
}

// drawTriangle resolves the face, then clips, tessellates and sets up the
// triangle. The X-derivatives of every piece come from the same plane, so
// the engine starts one source triangle here.
func (c *Context) drawTriangle(ctx context.Context, sel *Selection, a, b, d *prim.Vertex) error {
	ccw := prim.SignedArea(a, b, d) > 0
	f := sel.face(ccw)
	if f.cull {
		c.stats.Culled++
		return nil
	}
	if f.mode == PolygonLine {
		for _, e := range [3][2]*prim.Vertex{{a, b}, {b, d}, {d, a}} {
			if err := c.drawLine(ctx, e[0], e[1], d); err != nil {
				return err
			}
		}
		return nil
	}

	c.engine.Begin(d)
	if !c.clipper.Active() {
		return c.emitTriangle(ctx, a, b, d, ccw, true)
	}
	pieces, clipped := c.clipper.Triangle(c.tris[:0], a, b, d)
	c.tris = pieces
	if clipped {
		c.stats.Clipped++
	}
	for i := range pieces {
		t := &pieces[i]
		if err := c.emitTriangle(ctx, &t[0], &t[1], &t[2], ccw, !clipped); err != nil {
			return err
		}
	}
	return nil
}

// emitTriangle tessellates the triangle when texture spans are limited
// and sets up every resulting piece.
func (c *Context) emitTriangle(ctx context.Context, a, b, d *prim.Vertex, ccw, trust bool) error {
	if !c.tessellate {
		return c.setupTriangle(ctx, a, b, d, ccw, trust)
	}
	var err error
	leaves, _ := tess.Tessellate(c.tessCfg, a, b, d, func(a, b, d *prim.Vertex) bool {
		err = c.setupTriangle(ctx, a, b, d, ccw, false)
		return err == nil
	})
	c.stats.Leaves += leaves
	if leaves > 1 {
		c.stats.Tessellated++
		c.log.Debug("accel3d: triangle tessellated", "leaves", leaves)
	}
	return err
}

func (c *Context) setupTriangle(ctx context.Context, a, b, d *prim.Vertex, ccw, trust bool) error {
	prog, ok := c.engine.Triangle(a, b, d, ccw, trust)
	if !ok {
		c.stats.Degenerate++
		return nil
	}
	return c.submit(ctx, prog)
}

func (c *Context) submit(ctx context.Context, p *device.Program) error {
	if err := c.sink.Submit(ctx, p); err != nil {
		return err
	}
	c.stats.Draws++
	return nil
}
