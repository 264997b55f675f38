package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored runs",
		Long: `List runs saved in .latwalk/latwalk.db, newest first.

Examples:
  latwalk history              # Last 20 runs
  latwalk history --limit 0    # Every run
  latwalk history delete 7     # Remove run 7 and its positions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			runStore, err := store.NewSQLiteRunStore(root)
			if err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer runStore.Close()

			runs, err := runStore.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				if runs == nil {
					runs = []store.RunSummary{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs stored.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tWALKERS\tSTEPS\tSEED\tFINAL MEAN\tLABEL")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%.3f\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Walkers, r.Steps, r.Seed, r.FinalMean, r.Label)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum runs to list (0 for all)")
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			jsonOut, _ := cmd.Flags().GetBool("json")

			id, err := parseRunID(args[0])
			if err != nil {
				return err
			}

			runStore, err := store.NewSQLiteRunStore(root)
			if err != nil {
				return fmt.Errorf("failed to open run store: %w", err)
			}
			defer runStore.Close()

			if err := runStore.DeleteRun(cmd.Context(), id); err != nil {
				if isNotFound(err) {
					return fmt.Errorf("no run with ID %d", id)
				}
				return fmt.Errorf("failed to delete run: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status": "deleted",
					"id":     id,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run #%d\n", id)
			return nil
		},
	}
}
