package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/store"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <run-id | trajectory.arrow>",
		Short: "Check that a recorded trajectory is a valid lattice walk",
		Long: `Check a stored run or an exported trajectory.arrow file.

Every walker must start on (or one unit from) the origin and move exactly
one lattice unit between consecutive rows. Arrow files do not record the
row-0 convention, so pass --record-origin for tables whose first row is
the origin.

Examples:
  latwalk validate 4
  latwalk validate out/trajectory.arrow --record-origin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			recordOrigin, _ := cmd.Flags().GetBool("record-origin")

			var run *store.Run
			var err error
			if strings.HasSuffix(args[0], ".arrow") {
				run, err = runFromArrowFile(args[0], recordOrigin)
			} else {
				run, err = loadStoredRun(cmd, root, args[0])
			}
			if err != nil {
				return err
			}

			issues := store.ValidateRun(run)

			if jsonOut {
				if issues == nil {
					issues = []store.ValidationError{}
				}
				if err := writeJSON(cmd.OutOrStdout(), map[string]any{
					"source": args[0],
					"valid":  len(issues) == 0,
					"issues": issues,
				}); err != nil {
					return err
				}
			} else if len(issues) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d walkers, %d rows)\n", args[0], run.Table.Walkers(), run.Table.Rows())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d issue(s)\n", args[0], len(issues))
				for _, issue := range issues {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", issue)
				}
			}

			if len(issues) > 0 {
				return fmt.Errorf("validation failed with %d issue(s)", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().Bool("record-origin", false, "Arrow input: row 0 is the origin")

	return cmd
}

func loadStoredRun(cmd *cobra.Command, root, arg string) (*store.Run, error) {
	id, err := parseRunID(arg)
	if err != nil {
		return nil, err
	}
	runStore, err := store.NewSQLiteRunStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	defer runStore.Close()

	run, err := runStore.GetRun(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}
	return run, nil
}

// runFromArrowFile wraps an exported trajectory in a Run whose config
// matches the table's shape.
func runFromArrowFile(path string, recordOrigin bool) (*store.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trajectory: %w", err)
	}
	defer f.Close()

	table, err := render.ReadTrajectoryArrow(f)
	if err != nil {
		return nil, fmt.Errorf("read trajectory %s: %w", path, err)
	}

	cfg := simulation.DefaultConfig()
	cfg.Walkers = table.Walkers()
	cfg.Steps = table.Rows() - 1
	cfg.RecordOrigin = recordOrigin
	return &store.Run{Config: cfg, Table: table}, nil
}
