package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/latwalk/internal/config"
	"github.com/spf13/cobra"
)

// configKeys lists the settable keys in display order.
var configKeys = []string{
	"simulation.walkers",
	"simulation.steps",
	"simulation.frame_interval",
	"simulation.seed",
	"simulation.record_origin",
	"simulation.export_frames",
	"simulation.export_trajectory",
	"simulation.export_distance",
	"output.dir",
	"output.formats",
	"output.frame_delay",
	"logging.level",
	"logging.format",
	"store.enabled",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage latwalk configuration",
		Long: `View and modify latwalk configuration settings.

Configuration is stored in ~/.latwalk/config.yaml. LATWALK_* environment
variables override the file.

Examples:
  latwalk config list                          # Show all settings
  latwalk config get simulation.walkers        # Get a specific setting
  latwalk config set simulation.steps 1000     # Set a setting
  latwalk config set output.formats png,arrow`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.LatwalkConfig) {
	fmt.Fprintln(w, "Configuration (~/.latwalk/config.yaml):")
	section := ""
	for _, key := range configKeys {
		prefix, _, _ := strings.Cut(key, ".")
		if prefix != section {
			section = prefix
			fmt.Fprintln(w)
		}
		value, _ := getConfigValue(cfg, key)
		fmt.Fprintf(w, "  %-30s %v\n", key+":", value)
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key, value := args[0], args[1]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("rejected %s=%s: %w", key, value, err)
			}

			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.LatwalkConfig, key string) (any, bool) {
	sim := cfg.Simulation
	switch key {
	case "simulation.walkers":
		return sim.Walkers, true
	case "simulation.steps":
		return sim.Steps, true
	case "simulation.frame_interval":
		return sim.FrameInterval, true
	case "simulation.seed":
		return sim.Seed, true
	case "simulation.record_origin":
		return sim.RecordOrigin, true
	case "simulation.export_frames":
		return sim.ExportFrames, true
	case "simulation.export_trajectory":
		return sim.ExportTrajectory, true
	case "simulation.export_distance":
		return sim.ExportDistance, true
	case "output.dir":
		return cfg.Output.Dir, true
	case "output.formats":
		return strings.Join(cfg.Output.Formats, ","), true
	case "output.frame_delay":
		return cfg.Output.FrameDelay.String(), true
	case "logging.level":
		return cfg.Logging.Level, true
	case "logging.format":
		return cfg.Logging.Format, true
	case "store.enabled":
		return cfg.Store.Enabled, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.LatwalkConfig, key, value string) error {
	sim := &cfg.Simulation
	switch key {
	case "simulation.walkers":
		return setInt(&sim.Walkers, value)
	case "simulation.steps":
		return setInt(&sim.Steps, value)
	case "simulation.frame_interval":
		return setInt(&sim.FrameInterval, value)
	case "simulation.seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s (must be a non-negative integer)", value)
		}
		sim.Seed = n
	case "simulation.record_origin":
		sim.RecordOrigin = parseBool(value)
	case "simulation.export_frames":
		sim.ExportFrames = parseBool(value)
	case "simulation.export_trajectory":
		sim.ExportTrajectory = parseBool(value)
	case "simulation.export_distance":
		sim.ExportDistance = parseBool(value)
	case "output.dir":
		cfg.Output.Dir = value
	case "output.formats":
		cfg.Output.Formats = nil
		for _, f := range strings.Split(value, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Output.Formats = append(cfg.Output.Formats, strings.ToLower(f))
			}
		}
	case "output.frame_delay":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Output.FrameDelay = d
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "store.enabled":
		cfg.Store.Enabled = parseBool(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %s", value)
	}
	*dst = n
	return nil
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}
