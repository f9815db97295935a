// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command accel3d replays yaml scenario files against an in-memory
// recording device and reports the emitted command statistics.
//
// Usage:
//
//	accel3d [flags] scenario.yaml...
//
// Each file is replayed on its own Context, concurrently.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/accel3d"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("accel3d", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: accel3d [flags] scenario.yaml...\n\nReplays scenarios against the recording device.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	var (
		profile  string
		timeout  time.Duration
		verbose  bool
		parallel int
		list     bool
	)
	fs.StringVarP(&profile, "profile", "p", "", "Chip profile for every scenario (overrides the file)")
	fs.DurationVarP(&timeout, "timeout", "t", 0, "Device wait timeout (0 waits forever)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Log per-batch diagnostics to stderr")
	fs.IntVarP(&parallel, "jobs", "j", 0, "Scenarios replayed at once (0 = no limit)")
	fs.BoolVar(&list, "list-profiles", false, "List chip profiles and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if list {
		for _, name := range accel3d.Profiles() {
			p, _ := accel3d.LookupProfile(name)
			fmt.Fprintf(stdout, "%-10s uvMaxTexels=%d maxTexture=%d fifo=%d memory=%d\n",
				p.Name, p.UVMaxTexels, p.MaxTextureSize, p.FIFOSlots, p.TextureMemory)
		}
		return 0
	}

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: no scenario files")
		fs.Usage()
		return 2
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	cfg := Config{
		Profile: profile,
		Timeout: timeout,
		Logger:  slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reports, err := replayFiles(ctx, files, cfg, parallel)
	for _, r := range reports {
		if r != nil {
			printReport(stdout, r)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// replayFiles replays every file and returns the reports in file order.
// The first failure cancels the remaining replays.
func replayFiles(ctx context.Context, files []string, cfg Config, limit int) ([]*Report, error) {
	reports := make([]*Report, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range files {
		g.Go(func() error {
			s, err := loadScenario(name)
			if err != nil {
				return err
			}
			r, err := Replay(ctx, name, s, cfg)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	return reports, g.Wait()
}

func loadScenario(name string) (*Scenario, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := ParseScenario(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func printReport(w io.Writer, r *Report) {
	s := r.Stats
	fmt.Fprintf(w, "%s (profile %s)\n", r.Name, r.Profile)
	for i, st := range r.Steps {
		switch {
		case st.Err != nil && st.Consumed:
			fmt.Fprintf(w, "  step %d: ok (%v)\n", i, st.Err)
		case st.Err != nil:
			fmt.Fprintf(w, "  step %d: stopped at %d: %v\n", i, st.First, st.Err)
		default:
			fmt.Fprintf(w, "  step %d: ok\n", i)
		}
	}
	fmt.Fprintf(w, "  batches %d (rejected %d), primitives %d, draws %d\n",
		s.Batches, s.RejectedBatches, s.Primitives, s.Draws)
	fmt.Fprintf(w, "  culled %d, degenerate %d, clipped %d, tessellated %d (%d leaves)\n",
		s.Culled, s.Degenerate, s.Clipped, s.Tessellated, s.Leaves)
	fmt.Fprintf(w, "  textures: allocations %d, evictions %d, loads %d, reloads %d, failures %d\n",
		s.Texture.Allocations, s.Texture.Evictions, s.Texture.Loads, s.Texture.Reloads, s.Texture.Failures)
	fmt.Fprintf(w, "  register writes %d, selections %d\n", r.Writes, s.Selections)
}
