// Package ensemble runs many independent simulations and pools their
// distance statistics, to compare the mean distance against sqrt(t) with
// less noise than a single run gives.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/walker"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidEnsemble is returned for a run count below 1.
var ErrInvalidEnsemble = errors.New("invalid ensemble")

// Config describes an ensemble.
type Config struct {
	// Simulation is the configuration shared by every run. Frame and
	// trajectory export are turned off for ensemble runs.
	Simulation simulation.Config

	// Runs is the number of independent simulations.
	Runs int

	// BaseSeed seeds run r with BaseSeed+r. 0 picks a clock-derived base.
	BaseSeed uint64

	// Parallel bounds concurrent runs. Values < 1 use runtime.NumCPU().
	Parallel int

	// Progress, when set, is called after each run completes. It may be
	// called from several goroutines at once.
	Progress func(done, total int)

	// Logger receives per-run debug logs. Nil discards them.
	Logger *slog.Logger
}

// Result is the pooled outcome of an ensemble.
type Result struct {
	BaseSeed uint64 `json:"base_seed"`
	Runs     int    `json:"runs"`
	Walkers  int    `json:"walkers"`
	Steps    int    `json:"steps"`

	// Mean[t] is the mean distance over every walker of every run.
	Mean   []float64 `json:"mean"`
	Theory []float64 `json:"theory"`

	// RunFinalMeans[r] is run r's mean distance at the last time index.
	RunFinalMeans []float64 `json:"run_final_means"`

	// MaxDeviation is max over t of |Mean[t] - Theory[t]|.
	MaxDeviation float64 `json:"max_deviation"`
}

// FinalMean returns the pooled mean at the last time index.
func (r *Result) FinalMean() float64 {
	if len(r.Mean) == 0 {
		return 0
	}
	return r.Mean[len(r.Mean)-1]
}

// Run executes the ensemble. Each run owns its walkers, table and move
// source; nothing is shared between goroutines except the result slots.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("%w: runs must be >= 1, got %d", ErrInvalidEnsemble, cfg.Runs)
	}
	simCfg := cfg.Simulation
	simCfg.ExportFrames = false
	simCfg.ExportTrajectory = false
	simCfg.ExportDistance = false
	if err := simCfg.Validate(); err != nil {
		return nil, err
	}

	base := cfg.BaseSeed
	if base == 0 {
		_, base = walker.NewSource(0)
	}
	parallel := cfg.Parallel
	if parallel < 1 {
		parallel = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	perRun := make([]simulation.DistanceStats, cfg.Runs)
	var (
		mu   sync.Mutex
		done int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for r := 0; r < cfg.Runs; r++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			seed := base + uint64(r)
			sim, err := simulation.New(simCfg, nil, simulation.WithSeed(seed))
			if err != nil {
				return err
			}
			if err := sim.Run(); err != nil {
				return fmt.Errorf("run %d (seed %d): %w", r, seed, err)
			}
			perRun[r] = simulation.ComputeDistanceStats(sim.Table())
			logger.Debug("ensemble run completed", "run", r, "seed", seed, "final_mean", perRun[r].FinalMean())

			if cfg.Progress != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				cfg.Progress(n, cfg.Runs)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pool(base, simCfg, perRun), nil
}

// pool averages per-run means. Every run has the same walker count, so the
// average of run means equals the mean over all walkers.
func pool(base uint64, cfg simulation.Config, perRun []simulation.DistanceStats) *Result {
	rows := cfg.Steps + 1
	res := &Result{
		BaseSeed:      base,
		Runs:          len(perRun),
		Walkers:       cfg.Walkers,
		Steps:         cfg.Steps,
		Mean:          make([]float64, rows),
		Theory:        make([]float64, rows),
		RunFinalMeans: make([]float64, len(perRun)),
	}

	for r, s := range perRun {
		for t := 0; t < rows; t++ {
			res.Mean[t] += s.Mean[t]
		}
		res.RunFinalMeans[r] = s.FinalMean()
	}
	for t := 0; t < rows; t++ {
		res.Mean[t] /= float64(len(perRun))
		res.Theory[t] = math.Sqrt(float64(t))
		if d := math.Abs(res.Mean[t] - res.Theory[t]); d > res.MaxDeviation {
			res.MaxDeviation = d
		}
	}
	return res
}
