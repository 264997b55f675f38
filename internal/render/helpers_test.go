package render

import (
	"testing"

	"github.com/nvandessel/latwalk/internal/simulation"
)

func newSim(t *testing.T, cfg simulation.Config, r simulation.Renderer) *simulation.Simulation {
	t.Helper()
	sim, err := simulation.New(cfg, r, simulation.WithSeed(7))
	if err != nil {
		t.Fatalf("simulation.New: %v", err)
	}
	return sim
}
