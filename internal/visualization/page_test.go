package visualization

import (
	"strings"
	"testing"

	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/walker"
)

func collectRun(t *testing.T, cfg simulation.Config, seed uint64) Run {
	t.Helper()
	c := &simulation.Collector{}
	sim, err := simulation.New(cfg, c, simulation.WithSeed(seed))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(); err != nil {
		t.Fatal(err)
	}
	run, err := RunFromCollector(c, sim.Seed())
	if err != nil {
		t.Fatal(err)
	}
	return run
}

func TestRenderHTML_ProducesValidHTML(t *testing.T) {
	run := collectRun(t, simulation.Config{
		Walkers: 3, Steps: 20, FrameInterval: 5,
		ExportFrames: true, ExportTrajectory: true, ExportDistance: true,
	}, 21)

	html, err := RenderHTML(run)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	s := string(html)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"3 walkers, 20 steps, seed 21.",
		"<polyline",
		"Distance from origin",
		`"positions":`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if got := strings.Count(s, `stroke-opacity="0.7"`); got != 3 {
		t.Errorf("found %d trajectory polylines, want 3", got)
	}
	if strings.Contains(s, "New run") {
		t.Error("static page should not offer a new run button")
	}
}

func TestRenderHTML_WithoutStats(t *testing.T) {
	run := collectRun(t, simulation.Config{
		Walkers: 1, Steps: 4, FrameInterval: 1, ExportTrajectory: true,
	}, 2)

	html, err := RenderHTML(run)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	if strings.Contains(string(html), "Distance from origin") {
		t.Error("distance panel rendered without stats")
	}
}

func TestRenderHTMLForServer_HasAPIBase(t *testing.T) {
	run := collectRun(t, simulation.Config{
		Walkers: 2, Steps: 4, FrameInterval: 1, ExportTrajectory: true,
	}, 2)

	html, err := RenderHTMLForServer(run, "http://localhost:9999")
	if err != nil {
		t.Fatal(err)
	}
	s := string(html)
	if !strings.Contains(s, "New run") {
		t.Error("server page missing new run button")
	}
	if !strings.Contains(s, `localhost:9999`) {
		t.Error("server page missing API base URL")
	}
}

func TestRunFromCollector_RequiresTrajectory(t *testing.T) {
	if _, err := RunFromCollector(&simulation.Collector{}, 1); err == nil {
		t.Error("expected error without trajectory")
	}
}

func TestPathPoints_FlipsY(t *testing.T) {
	got := pathPoints([]walker.Position{{X: 0, Y: 0}, {X: 1, Y: 2}, {X: -3, Y: -1}})
	if want := "0,0 1,-2 -3,1"; got != want {
		t.Errorf("pathPoints() = %q, want %q", got, want)
	}
}

func TestBounds_IncludesOrigin(t *testing.T) {
	minX, minY, maxX, maxY := bounds([][]walker.Position{{{X: 2, Y: 3}, {X: 4, Y: 5}}})
	if minX != 0 || minY != 0 || maxX != 4 || maxY != 5 {
		t.Errorf("bounds = (%d,%d,%d,%d), want (0,0,4,5)", minX, minY, maxX, maxY)
	}
}

func TestCompactFrames(t *testing.T) {
	frames := []simulation.Frame{{
		Index: 1, Step: 4,
		Positions: []walker.Position{{X: 1}},
		Trails:    [][]walker.Position{{{X: 0}, {X: 1}}},
	}}
	got := CompactFrames(frames)
	if len(got) != 1 || got[0].Index != 1 || got[0].Step != 4 || got[0].Positions[0].X != 1 {
		t.Errorf("CompactFrames() = %+v", got)
	}
}
