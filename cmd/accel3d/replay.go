package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gogpu/accel3d"
	"github.com/gogpu/accel3d/device"
	"github.com/gogpu/accel3d/texture"
)

// Config holds command-line overrides applied to every scenario.
type Config struct {
	Profile string
	Timeout time.Duration
	Logger  *slog.Logger
}

// StepResult is the outcome of one step's batch.
type StepResult struct {
	Consumed bool
	First    int
	Err      error
}

// Report summarizes one replayed scenario.
type Report struct {
	Name    string
	Profile string
	Steps   []StepResult
	Stats   accel3d.Stats
	Writes  int
}

// Replay runs s against a recording device sized from its profile.
func Replay(ctx context.Context, name string, s *Scenario, cfg Config) (*Report, error) {
	profile := s.Profile
	if cfg.Profile != "" {
		profile = cfg.Profile
	}
	p, ok := accel3d.LookupProfile(profile)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", name, accel3d.ErrUnknownProfile, profile)
	}

	rec := device.NewRecorder(p.TextureMemory, p.FIFOSlots)
	c, err := accel3d.NewContext(rec, rec, device.NewHeap(p.TextureMemory),
		accel3d.WithProfile(p.Name),
		accel3d.WithWindow(image.Pt(s.Window[0], s.Window[1])),
		accel3d.WithWaitTimeout(cfg.Timeout),
		accel3d.WithLogger(cfg.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	for i := range s.Textures {
		t, err := s.Textures[i].Build()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		c.AddTexture(t)
	}

	r := &Report{Name: name, Profile: p.Name}
	for i := range s.Steps {
		res, err := replayStep(ctx, c, &s.Steps[i])
		if err != nil {
			return nil, fmt.Errorf("%s: step %d: %w", name, i, err)
		}
		r.Steps = append(r.Steps, res)
	}
	r.Stats = c.Stats()
	r.Writes = len(rec.Writes())
	return r, nil
}

func replayStep(ctx context.Context, c *accel3d.Context, st *Step) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}
	if st.State != nil {
		ds, err := st.State.Deltas()
		if err != nil {
			return StepResult{}, err
		}
		c.UpdateRenderState(ds...)
	}
	if st.Release != nil {
		c.ReleaseTexture(texture.ID(*st.Release))
	}
	if st.Invalidate {
		c.InvalidateAllDeviceMemory()
	}
	var res StepResult
	if st.Bind != nil {
		// A failed bind is reported with the step; the batch still runs
		// and reports its own outcome.
		res.Err = c.BindTexture(ctx, texture.ID(*st.Bind))
	}
	if len(st.Batch) == 0 {
		res.Consumed = true
		return res, nil
	}
	batch, err := st.Primitives()
	if err != nil {
		return StepResult{}, err
	}
	res.Consumed, res.First = c.SetupAndDrawPrimitiveBatch(ctx, batch)
	if !res.Consumed {
		res.Err = c.LastError()
	}
	return res, nil
}
