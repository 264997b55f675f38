package store

import (
	"testing"

	"github.com/nvandessel/latwalk/internal/simulation"
)

// completedRun runs a small seeded simulation and wraps it as a Run.
func completedRun(t *testing.T, walkers, steps int, seed uint64) *Run {
	t.Helper()
	cfg := simulation.Config{
		Walkers:          walkers,
		Steps:            steps,
		FrameInterval:    1,
		ExportTrajectory: true,
		ExportDistance:   true,
	}
	sim, err := simulation.New(cfg, nil, simulation.WithSeed(seed))
	if err != nil {
		t.Fatalf("simulation.New: %v", err)
	}
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return &Run{
		Seed:   sim.Seed(),
		Config: cfg,
		Table:  sim.Table(),
	}
}
