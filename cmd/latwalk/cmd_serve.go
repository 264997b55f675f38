package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/nvandessel/latwalk/internal/visualization"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an interactive run page on localhost",
		Long: `Start a local HTTP server that renders a run as an HTML page.

The page animates the recorded frames and can request fresh runs from
/api/frames with different walker counts, step counts and seeds.

Examples:
  latwalk serve                          # Open the page in a browser
  latwalk serve --walkers 25 --steps 900 --seed 3 --no-open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noOpen, _ := cmd.Flags().GetBool("no-open")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applySimulationFlags(cmd, &cfg.Simulation)
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv := visualization.NewServer(cfg.Simulation.Config, cfg.Simulation.Seed)
			return runServer(cmd, srv, noOpen)
		},
	}

	cmd.Flags().Int("walkers", 0, "Number of walkers")
	cmd.Flags().Int("steps", 0, "Last time index")
	cmd.Flags().Int("interval", 0, "Emit a frame every N time indices")
	cmd.Flags().Uint64("seed", 0, "PRNG seed for the first run (0 picks one from the clock)")
	cmd.Flags().Bool("record-origin", false, "Record the origin as row 0 and move from t=1")
	cmd.Flags().Bool("no-open", false, "Don't open the browser")

	return cmd
}

// runServer starts srv and blocks until Ctrl-C or the command context ends.
func runServer(cmd *cobra.Command, srv *visualization.Server, noOpen bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			srvCancel()
		case <-srvCtx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	// Wait for server to start
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && srv.Addr() == "" {
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Walk server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	// Block until server exits
	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
