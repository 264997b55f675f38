package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/ensemble"
	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/spf13/cobra"
)

func newEnsembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Average many independent runs",
		Long: `Run R independent simulations in parallel and pool their mean distance
curves. Run r uses seed base+r, so an ensemble with a fixed --seed is
reproducible regardless of --parallel.

With --out, the pooled curve is written as distance.png and/or
distance.arrow (per --format).

Examples:
  latwalk ensemble --runs 100 --walkers 20 --steps 1000
  latwalk ensemble --runs 50 --seed 7 --out ./ensemble --format png,arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			runs, _ := cmd.Flags().GetInt("runs")
			parallel, _ := cmd.Flags().GetInt("parallel")
			out, _ := cmd.Flags().GetString("out")
			formats, _ := cmd.Flags().GetStringSlice("format")
			quiet, _ := cmd.Flags().GetBool("quiet")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, &cfg.Simulation)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			var renderers simulation.MultiRenderer
			if out != "" {
				if !filepath.IsAbs(out) {
					out = filepath.Join(root, out)
				}
				outFormats, err := ensembleFormats(formats)
				if err != nil {
					return err
				}
				renderers, err = render.New(render.Options{Dir: out, Formats: outFormats})
				if err != nil {
					return err
				}
			}

			ecfg := ensemble.Config{
				Simulation: cfg.Simulation.Config,
				Runs:       runs,
				BaseSeed:   cfg.Simulation.Seed,
				Parallel:   parallel,
				Logger:     logging.Component(logger, "ensemble"),
			}
			if !quiet && !jsonOut {
				ecfg.Progress = ensembleProgress(cmd.ErrOrStderr())
			}

			result, err := ensemble.Run(cmd.Context(), ecfg)
			if err != nil {
				return err
			}

			if len(renderers) > 0 {
				pooled := simulation.DistanceStats{
					Time:   make([]int, len(result.Mean)),
					Mean:   result.Mean,
					Theory: result.Theory,
				}
				for t := range pooled.Time {
					pooled.Time[t] = t
				}
				if err := renderers.OnDistanceStats(pooled); err != nil {
					return fmt.Errorf("render pooled distance: %w", err)
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"base_seed":       result.BaseSeed,
					"runs":            result.Runs,
					"walkers":         result.Walkers,
					"steps":           result.Steps,
					"final_mean":      result.FinalMean(),
					"final_theory":    result.Theory[len(result.Theory)-1],
					"max_deviation":   result.MaxDeviation,
					"run_final_means": result.RunFinalMeans,
				})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Ensemble of %d runs (base seed %d)\n", result.Runs, result.BaseSeed)
			fmt.Fprintf(w, "  walkers per run: %d, steps: %d\n", result.Walkers, result.Steps)
			fmt.Fprintf(w, "  pooled final mean distance: %.3f (sqrt(t) = %.3f)\n",
				result.FinalMean(), result.Theory[len(result.Theory)-1])
			fmt.Fprintf(w, "  max deviation from sqrt(t): %.3f\n", result.MaxDeviation)
			if out != "" {
				fmt.Fprintf(w, "  output: %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().Int("runs", 100, "Number of independent runs")
	cmd.Flags().Int("parallel", 0, "Concurrent runs (0 for one per CPU)")
	cmd.Flags().Int("walkers", 0, "Walkers per run")
	cmd.Flags().Int("steps", 0, "Last time index of each run")
	cmd.Flags().Uint64("seed", 0, "Base seed (0 picks one from the clock)")
	cmd.Flags().Bool("record-origin", false, "Record the origin as row 0 and move from t=1")
	cmd.Flags().StringP("out", "o", "", "Write the pooled curve to this directory")
	cmd.Flags().StringSlice("format", []string{string(constants.FormatPNG)}, "Pooled output formats: png, arrow")
	cmd.Flags().BoolP("quiet", "q", false, "Don't print progress")

	return cmd
}

// ensembleFormats accepts only the formats that can render a bare
// distance curve.
func ensembleFormats(names []string) ([]constants.OutputFormat, error) {
	var out []constants.OutputFormat
	for _, n := range names {
		f := constants.OutputFormat(n)
		if f != constants.FormatPNG && f != constants.FormatArrow {
			return nil, fmt.Errorf("ensemble output supports png and arrow, got %q", n)
		}
		out = append(out, f)
	}
	return out, nil
}

// ensembleProgress prints completed runs. Progress callbacks arrive from
// several goroutines.
func ensembleProgress(w io.Writer) func(done, total int) {
	var mu sync.Mutex
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "\rruns %d/%d", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}
