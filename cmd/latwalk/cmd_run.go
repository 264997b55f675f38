package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/nvandessel/latwalk/internal/config"
	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/sanitize"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/store"
	"github.com/nvandessel/latwalk/internal/visualization"
	"github.com/spf13/cobra"
)

// newScreen opens the terminal for the terminal format. Tests replace it
// with a simulation screen.
var newScreen = tcell.NewScreen

// runOptions are the run flags that are not part of the config file.
type runOptions struct {
	label  string
	noSave bool
	noOpen bool
	quiet  bool
}

// runResult is what `latwalk run` reports.
type runResult struct {
	RunID        int64    `json:"run_id,omitempty"`
	Seed         uint64   `json:"seed"`
	Walkers      int      `json:"walkers"`
	Steps        int      `json:"steps"`
	Frames       int      `json:"frames"`
	FinalMean    float64  `json:"final_mean"`
	FinalTheory  float64  `json:"final_theory"`
	MaxDeviation float64  `json:"max_deviation"`
	OutputDir    string   `json:"output_dir"`
	Formats      []string `json:"formats"`
	HTMLPath     string   `json:"html_path,omitempty"`
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate lattice random walkers and render the results",
		Long: `Run one simulation and feed its events to the selected renderers.

Flags override the matching keys in ~/.latwalk/config.yaml. Completed runs
are saved to .latwalk/latwalk.db under --root unless --no-save is given or
store.enabled is false.

Examples:
  latwalk run                                  # 10 walkers, 400 steps, PNG output
  latwalk run --walkers 50 --steps 2000 --seed 42
  latwalk run --format png,arrow --out ./out
  latwalk run --format terminal --delay 20ms   # Watch it live
  latwalk run --format html                    # Write walk.html and open it`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := runOptions{}
			label, _ := cmd.Flags().GetString("label")
			opts.label = sanitize.Label(label)
			opts.noSave, _ = cmd.Flags().GetBool("no-save")
			opts.noOpen, _ = cmd.Flags().GetBool("no-open")
			opts.quiet, _ = cmd.Flags().GetBool("quiet")
			if jsonOut {
				opts.quiet = true
			}

			logger := newLogger(cmd, cfg)
			result, err := runSimulation(cmd.Context(), cmd.ErrOrStderr(), root, cfg, opts, logger)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			printRunResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Int("walkers", 0, "Number of walkers")
	cmd.Flags().Int("steps", 0, "Last time index (the run records steps+1 rows)")
	cmd.Flags().Int("interval", 0, "Emit a frame every N time indices")
	cmd.Flags().Uint64("seed", 0, "PRNG seed (0 picks one from the clock)")
	cmd.Flags().Bool("record-origin", false, "Record the origin as row 0 and move from t=1")
	cmd.Flags().Bool("no-frames", false, "Skip frame export")
	cmd.Flags().Bool("no-trajectory", false, "Skip final trajectory export")
	cmd.Flags().Bool("no-distance", false, "Skip distance statistics export")
	cmd.Flags().StringP("out", "o", "", "Output directory (relative paths are under --root)")
	cmd.Flags().StringSlice("format", nil, "Output formats: png, arrow, html, terminal")
	cmd.Flags().Duration("delay", 0, "Pause after each terminal frame")
	cmd.Flags().String("label", "", "Label stored with the run")
	cmd.Flags().Bool("no-save", false, "Don't save the run to the store")
	cmd.Flags().Bool("no-open", false, "Don't open the browser for html output")
	cmd.Flags().BoolP("quiet", "q", false, "Don't print progress")

	return cmd
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.LatwalkConfig) error {
	flags := cmd.Flags()
	applySimulationFlags(cmd, &cfg.Simulation)

	if flags.Changed("out") {
		cfg.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("format") {
		formats, _ := flags.GetStringSlice("format")
		cfg.Output.Formats = nil
		for _, f := range formats {
			cfg.Output.Formats = append(cfg.Output.Formats, strings.ToLower(strings.TrimSpace(f)))
		}
	}
	if flags.Changed("delay") {
		cfg.Output.FrameDelay, _ = flags.GetDuration("delay")
	}

	if cfg.HasFormat(constants.FormatHTML) && !cfg.Simulation.ExportTrajectory {
		return fmt.Errorf("html output needs the trajectory; drop --no-trajectory")
	}
	return nil
}

// applySimulationFlags copies the simulation flags that cmd defines and
// the user set.
func applySimulationFlags(cmd *cobra.Command, sim *config.SimulationConfig) {
	flags := cmd.Flags()
	if flags.Changed("walkers") {
		sim.Walkers, _ = flags.GetInt("walkers")
	}
	if flags.Changed("steps") {
		sim.Steps, _ = flags.GetInt("steps")
	}
	if flags.Changed("interval") {
		sim.FrameInterval, _ = flags.GetInt("interval")
	}
	if flags.Changed("seed") {
		sim.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("record-origin") {
		sim.RecordOrigin, _ = flags.GetBool("record-origin")
	}
	if v, _ := flags.GetBool("no-frames"); v {
		sim.ExportFrames = false
	}
	if v, _ := flags.GetBool("no-trajectory"); v {
		sim.ExportTrajectory = false
	}
	if v, _ := flags.GetBool("no-distance"); v {
		sim.ExportDistance = false
	}
}

// runSimulation executes one configured run: renderers, optional terminal
// screen, HTML page and store.
func runSimulation(ctx context.Context, stderr io.Writer, root string, cfg *config.LatwalkConfig, opts runOptions, logger *slog.Logger) (*runResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	outDir := os.ExpandEnv(cfg.Output.Dir)
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(root, outDir)
	}

	formats := make([]constants.OutputFormat, 0, len(cfg.Output.Formats))
	for _, f := range cfg.Output.Formats {
		formats = append(formats, constants.OutputFormat(f))
	}

	var screen tcell.Screen
	if cfg.HasFormat(constants.FormatTerminal) {
		s, err := newScreen()
		if err != nil {
			return nil, fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %w", err)
		}
		defer s.Fini()
		screen = s
		opts.quiet = true
	}

	events := logging.NewEventLogger(store.LocalDataPath(root), cfg.Logging.Level)
	defer events.Close()

	renderers, err := render.New(render.Options{
		Dir:        outDir,
		Formats:    formats,
		Screen:     screen,
		FrameDelay: cfg.Output.FrameDelay,
		Events:     events,
	})
	if err != nil {
		return nil, err
	}

	var collector *simulation.Collector
	if cfg.HasFormat(constants.FormatHTML) {
		collector = &simulation.Collector{}
		renderers = append(renderers, collector)
	}

	simOpts := []simulation.Option{
		simulation.WithSeed(cfg.Simulation.Seed),
		simulation.WithLogger(logging.Component(logger, "simulation")),
	}
	if !opts.quiet {
		simOpts = append(simOpts, simulation.WithProgress(progressPrinter(stderr)))
	}

	sim, err := simulation.New(cfg.Simulation.Config, renderers, simOpts...)
	if err != nil {
		return nil, err
	}
	events.Emit("run_start", map[string]any{
		"seed":    sim.Seed(),
		"walkers": cfg.Simulation.Walkers,
		"steps":   cfg.Simulation.Steps,
	})
	if err := sim.Run(); err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}

	stats := simulation.ComputeDistanceStats(sim.Table())
	result := &runResult{
		Seed:         sim.Seed(),
		Walkers:      cfg.Simulation.Walkers,
		Steps:        cfg.Simulation.Steps,
		Frames:       sim.CurrentFrame(),
		FinalMean:    stats.FinalMean(),
		FinalTheory:  stats.Theory[len(stats.Theory)-1],
		MaxDeviation: stats.MaxDeviation(),
		OutputDir:    outDir,
		Formats:      cfg.Output.Formats,
	}

	if collector != nil {
		htmlPath, err := writeRunHTML(collector, sim.Seed(), outDir)
		if err != nil {
			return nil, err
		}
		result.HTMLPath = htmlPath
		if !opts.noOpen {
			if err := visualization.OpenBrowser(htmlPath); err != nil {
				fmt.Fprintf(stderr, "Could not open browser: %v\nOpen %s manually.\n", err, htmlPath)
			}
		}
	}

	if cfg.Store.Enabled && !opts.noSave {
		id, err := saveRun(ctx, root, &store.Run{
			Label:  opts.label,
			Seed:   sim.Seed(),
			Config: cfg.Simulation.Config,
			Table:  sim.Table(),
		})
		if err != nil {
			return nil, err
		}
		result.RunID = id
	}

	events.Emit("run_end", map[string]any{
		"run_id":        result.RunID,
		"final_mean":    result.FinalMean,
		"max_deviation": result.MaxDeviation,
	})
	logger.Debug("run finished", "run_id", result.RunID, "seed", result.Seed, "output", outDir)
	return result, nil
}

// writeRunHTML renders the collected run to <outDir>/walk.html.
func writeRunHTML(c *simulation.Collector, seed uint64, outDir string) (string, error) {
	run, err := visualization.RunFromCollector(c, seed)
	if err != nil {
		return "", err
	}
	page, err := visualization.RenderHTML(run)
	if err != nil {
		return "", fmt.Errorf("render HTML: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, constants.HTMLFileName)
	if err := os.WriteFile(path, page, 0644); err != nil {
		return "", fmt.Errorf("write HTML file: %w", err)
	}
	return path, nil
}

// saveRun stores the run in the project's SQLite database.
func saveRun(ctx context.Context, root string, run *store.Run) (int64, error) {
	runStore, err := store.NewSQLiteRunStore(root)
	if err != nil {
		return 0, fmt.Errorf("failed to open run store: %w", err)
	}
	defer runStore.Close()

	id, err := runStore.SaveRun(ctx, run)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// progressPrinter reports progress on w in whole-percent increments.
func progressPrinter(w io.Writer) simulation.ProgressFunc {
	last := -1
	return func(done, total int) {
		pct := done * 100 / total
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\rstep %d/%d (%d%%)", done, total, pct)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

func printRunResult(w io.Writer, r *runResult) {
	if r.RunID != 0 {
		fmt.Fprintf(w, "Run #%d (seed %d)\n", r.RunID, r.Seed)
	} else {
		fmt.Fprintf(w, "Run (seed %d, not saved)\n", r.Seed)
	}
	fmt.Fprintf(w, "  walkers: %d, steps: %d, frames: %d\n", r.Walkers, r.Steps, r.Frames)
	fmt.Fprintf(w, "  final mean distance: %.3f (sqrt(t) = %.3f)\n", r.FinalMean, r.FinalTheory)
	fmt.Fprintf(w, "  max deviation from sqrt(t): %.3f\n", r.MaxDeviation)
	if len(r.Formats) > 0 {
		fmt.Fprintf(w, "  output: %s (%s)\n", r.OutputDir, strings.Join(r.Formats, ", "))
	}
	if r.HTMLPath != "" {
		fmt.Fprintf(w, "  page: %s\n", r.HTMLPath)
	}
}
