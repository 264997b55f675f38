package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/store"
	"github.com/spf13/cobra"
)

// statsRow is one sampled time index of a stored run.
type statsRow struct {
	T      int     `json:"t"`
	Mean   float64 `json:"mean"`
	Theory float64 `json:"theory"`
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <run-id>",
		Short: "Show distance statistics for a stored run",
		Long: `Recompute mean distance from the origin for a stored run and compare it
with the sqrt(t) prediction.

Examples:
  latwalk stats 3               # Summary plus 10 sampled time indices
  latwalk stats 3 --samples 50  # Denser series
  latwalk stats 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			samples, _ := cmd.Flags().GetInt("samples")

			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			runStore, err := store.NewSQLiteRunStore(root)
			if err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer runStore.Close()

			run, err := runStore.GetRun(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to load run %d: %w", id, err)
			}

			stats := simulation.ComputeDistanceStats(run.Table)
			rows := sampleRows(stats, samples)

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"run":    store.Summarize(run),
					"series": rows,
				})
			}

			printStats(cmd.OutOrStdout(), store.Summarize(run), rows)
			return nil
		},
	}

	cmd.Flags().Int("samples", 10, "Number of time indices to show")

	return cmd
}

// parseRunID parses a positive run ID argument.
func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid run ID %q", s)
	}
	return id, nil
}

// sampleRows picks about n evenly spaced time indices, always including the
// first and the last.
func sampleRows(stats simulation.DistanceStats, n int) []statsRow {
	last := len(stats.Mean) - 1
	if last < 0 {
		return nil
	}
	if n < 2 {
		n = 2
	}
	stride := max(1, last/(n-1))

	var rows []statsRow
	for t := 0; t < last; t += stride {
		rows = append(rows, statsRow{T: t, Mean: stats.Mean[t], Theory: stats.Theory[t]})
	}
	return append(rows, statsRow{T: last, Mean: stats.Mean[last], Theory: stats.Theory[last]})
}

func printStats(w io.Writer, s store.RunSummary, rows []statsRow) {
	label := ""
	if s.Label != "" {
		label = fmt.Sprintf(" %q", s.Label)
	}
	fmt.Fprintf(w, "Run #%d%s (seed %d)\n", s.ID, label, s.Seed)
	fmt.Fprintf(w, "  walkers: %d, steps: %d, record origin: %v\n", s.Walkers, s.Steps, s.RecordOrigin)
	fmt.Fprintf(w, "  final mean distance: %.3f\n", s.FinalMean)
	fmt.Fprintf(w, "  max deviation from sqrt(t): %.3f\n", s.MaxDeviation)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%8s  %10s  %10s\n", "t", "mean", "sqrt(t)")
	for _, r := range rows {
		fmt.Fprintf(w, "%8d  %10.3f  %10.3f\n", r.T, r.Mean, r.Theory)
	}
}

// isNotFound reports whether err means a run ID does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, store.ErrRunNotFound)
}
