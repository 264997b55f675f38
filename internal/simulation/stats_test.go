package simulation

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/latwalk/internal/walker"
)

func TestComputeDistanceStats_KnownTable(t *testing.T) {
	table, err := TableFromPaths([][]walker.Position{
		{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		{{X: 0, Y: -1}, {X: 0, Y: -2}, {X: 3, Y: -4}},
	})
	if err != nil {
		t.Fatal(err)
	}

	stats := ComputeDistanceStats(table)

	if diff := cmp.Diff([]int{0, 1, 2}, stats.Time); diff != "" {
		t.Errorf("time mismatch (-want +got):\n%s", diff)
	}
	wantPer := [][]float64{{1, 1}, {math.Sqrt2, 2}, {1, 5}}
	if diff := cmp.Diff(wantPer, stats.PerWalker); diff != "" {
		t.Errorf("per-walker mismatch (-want +got):\n%s", diff)
	}
	wantMean := []float64{1, (math.Sqrt2 + 2) / 2, 3}
	if diff := cmp.Diff(wantMean, stats.Mean); diff != "" {
		t.Errorf("mean mismatch (-want +got):\n%s", diff)
	}
	if stats.FinalMean() != 3 {
		t.Errorf("FinalMean() = %f, want 3", stats.FinalMean())
	}
	if got := stats.MaxDeviation(); math.Abs(got-(3-math.Sqrt2)) > 1e-12 {
		t.Errorf("MaxDeviation() = %f, want %f", got, 3-math.Sqrt2)
	}
}

func TestComputeDistanceStats_Idempotent(t *testing.T) {
	sim, err := New(Config{Walkers: 6, Steps: 100, FrameInterval: 1}, nil, WithSeed(21))
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(); err != nil {
		t.Fatal(err)
	}

	first := ComputeDistanceStats(sim.Table())
	second := ComputeDistanceStats(sim.Table())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("stats differ between calls:\n%s", diff)
	}
}

func TestDistanceStats_EmptyFinalMean(t *testing.T) {
	if got := (DistanceStats{}).FinalMean(); got != 0 {
		t.Errorf("FinalMean() = %f, want 0", got)
	}
}

func TestTableFromPaths_Errors(t *testing.T) {
	if _, err := TableFromPaths(nil); err == nil {
		t.Error("expected error for no paths")
	}
	_, err := TableFromPaths([][]walker.Position{{{}, {}}, {{}}})
	if err == nil {
		t.Error("expected error for ragged paths")
	}
}
