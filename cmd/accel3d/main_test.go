package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/accel3d"
)

func TestParseScenarioRejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario(strings.NewReader("profile: compact\nbogus: 1\n"))
	if err == nil {
		t.Fatal("ParseScenario accepted an unknown field")
	}
}

func TestReplay(t *testing.T) {
	s, err := loadScenario("testdata/textured.yaml")
	if err != nil {
		t.Fatalf("loadScenario: %v", err)
	}
	r, err := Replay(context.Background(), "textured", s, Config{})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(r.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(r.Steps))
	}
	for i, st := range r.Steps[:2] {
		if !st.Consumed || st.Err != nil {
			t.Errorf("step %d = %+v, want consumed", i, st)
		}
	}
	// Wide lines are rejected after the point is drawn.
	last := r.Steps[2]
	if last.Consumed || last.First != 1 || !errors.Is(last.Err, accel3d.ErrUnsupported) {
		t.Errorf("step 2 = %+v, want stopped at 1 with ErrUnsupported", last)
	}
	if r.Stats.Tessellated != 1 || r.Stats.Leaves < 32 {
		t.Errorf("tessellated %d with %d leaves, want 1 with >= 32", r.Stats.Tessellated, r.Stats.Leaves)
	}
	if r.Stats.Clipped == 0 {
		t.Error("no primitive clipped against the left edge")
	}
}

func TestReplayUnknownProfile(t *testing.T) {
	_, err := Replay(context.Background(), "x", &Scenario{}, Config{Profile: "missing"})
	if !errors.Is(err, accel3d.ErrUnknownProfile) {
		t.Errorf("Replay = %v, want ErrUnknownProfile", err)
	}
}

func TestStateChangeErrors(t *testing.T) {
	tests := []struct {
		name   string
		change StateChange
	}{
		{"capability", StateChange{Enable: []string{"stencil"}}},
		{"depth function", StateChange{DepthFunc: "sometimes"}},
		{"blend", StateChange{Blend: "add"}},
		{"cull", StateChange{Cull: "both"}},
		{"polygon mode", StateChange{PolygonMode: "wire"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.change.Deltas(); err == nil {
				t.Error("Deltas() = nil error")
			}
		})
	}
}

func TestPrimitivesVertexCount(t *testing.T) {
	st := Step{Batch: []PrimitiveDesc{{Kind: "line", Vertices: []VertexDesc{{X: 1}}}}}
	if _, err := st.Primitives(); err == nil {
		t.Error("Primitives() accepted a line with one vertex")
	}
	st = Step{Batch: []PrimitiveDesc{{Kind: "quad"}}}
	if _, err := st.Primitives(); err == nil {
		t.Error("Primitives() accepted an unknown kind")
	}
}

func TestRun(t *testing.T) {
	var out, errOut bytes.Buffer
	if code := run([]string{"testdata/textured.yaml"}, &out, &errOut); code != 0 {
		t.Fatalf("run = %d, stderr: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "profile compact") {
		t.Errorf("report missing profile: %s", out.String())
	}

	out.Reset()
	if code := run([]string{"--list-profiles"}, &out, &errOut); code != 0 {
		t.Fatalf("run --list-profiles = %d", code)
	}
	if !strings.Contains(out.String(), "extended") {
		t.Errorf("profile list = %q", out.String())
	}

	errOut.Reset()
	if code := run(nil, &out, &errOut); code != 2 {
		t.Errorf("run without files = %d, want 2", code)
	}
	if !strings.Contains(errOut.String(), "Usage: accel3d") || !strings.Contains(errOut.String(), "--jobs") {
		t.Errorf("usage without files = %q", errOut.String())
	}
}
