package main

import (
	"fmt"
	"path/filepath"

	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve walk tools over MCP (stdio)",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: walk_simulate, walk_history, walk_stats, walk_export.
Resource: latwalk://runs/recent.

Runs are stored in .latwalk/latwalk.db under --root, and walk_export only
writes inside --root or ~/.latwalk/exports. Logs go to stderr because
stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			absRoot, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}

			logger := logging.Component(newLogger(cmd, cfg), "mcp")
			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "latwalk",
				Version: version,
				Root:    absRoot,
				Logger:  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer srv.Close()

			return srv.Run(cmd.Context())
		},
	}
}
