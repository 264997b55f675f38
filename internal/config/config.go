// Package config provides unified configuration loading for latwalk.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/simulation"
	"gopkg.in/yaml.v3"
)

// LatwalkConfig contains all latwalk configuration settings.
type LatwalkConfig struct {
	// Simulation sets the size of a run and which events it emits.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Output controls where and how runs are rendered.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational and event logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store controls persistence of completed runs.
	Store StoreConfig `json:"store" yaml:"store"`
}

// SimulationConfig wraps simulation.Config with the PRNG seed.
type SimulationConfig struct {
	simulation.Config `yaml:",inline"`

	// Seed for the move source. 0 picks a clock-derived seed per run.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// OutputConfig configures renderers.
type OutputConfig struct {
	// Dir is the directory images and Arrow files are written to.
	// Supports ${VAR} syntax for env vars.
	Dir string `json:"dir" yaml:"dir"`

	// Formats lists the renderers to feed: png, arrow, html, terminal.
	Formats []string `json:"formats" yaml:"formats"`

	// FrameDelay pauses the terminal renderer after each frame.
	FrameDelay time.Duration `json:"frame_delay" yaml:"frame_delay"`
}

// LoggingConfig configures latwalk's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug", or "trace".
	// "debug" enables event logging to .latwalk/events.jsonl.
	// "trace" additionally logs every emitted frame.
	Level string `json:"level" yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// StoreConfig configures the SQLite run store.
type StoreConfig struct {
	// Enabled saves every completed run to <root>/.latwalk/latwalk.db.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns a LatwalkConfig with sensible defaults.
func Default() *LatwalkConfig {
	return &LatwalkConfig{
		Simulation: SimulationConfig{
			Config: simulation.DefaultConfig(),
		},
		Output: OutputConfig{
			Dir:        ".",
			Formats:    []string{string(constants.FormatPNG)},
			FrameDelay: 50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Enabled: true,
		},
	}
}

// Path returns the default config file location, ~/.latwalk/config.yaml.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DataDirName, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.latwalk/config.yaml -> environment variables
func Load() (*LatwalkConfig, error) {
	config := Default()

	if configPath, err := Path(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// The document is checked against the config schema before decoding.
func LoadFromFile(path string) (*LatwalkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Output.Dir = expandEnvVars(config.Output.Dir)

	return config, nil
}

// Save writes the configuration to path with owner-only permissions.
func Save(config *LatwalkConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *LatwalkConfig) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}

	for _, f := range c.Output.Formats {
		if !constants.OutputFormat(f).Valid() {
			return fmt.Errorf("invalid output format: %s (valid: png, arrow, html, terminal)", f)
		}
	}

	if c.Output.FrameDelay < 0 {
		return fmt.Errorf("frame_delay must be non-negative, got %v", c.Output.FrameDelay)
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Logging.Format != "" && c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}

	return nil
}

// HasFormat reports whether f is among the configured output formats.
func (c *LatwalkConfig) HasFormat(f constants.OutputFormat) bool {
	for _, v := range c.Output.Formats {
		if constants.OutputFormat(v) == f {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *LatwalkConfig) {
	if n, ok := envInt("LATWALK_WALKERS"); ok {
		config.Simulation.Walkers = n
	}
	if n, ok := envInt("LATWALK_STEPS"); ok {
		config.Simulation.Steps = n
	}
	if n, ok := envInt("LATWALK_FRAME_INTERVAL"); ok {
		config.Simulation.FrameInterval = n
	}
	if v := os.Getenv("LATWALK_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}
	if v := os.Getenv("LATWALK_RECORD_ORIGIN"); v != "" {
		config.Simulation.RecordOrigin = v == "true" || v == "1"
	}

	if v := os.Getenv("LATWALK_OUTPUT_DIR"); v != "" {
		config.Output.Dir = expandEnvVars(v)
	}
	if v := os.Getenv("LATWALK_FORMATS"); v != "" {
		var formats []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				formats = append(formats, f)
			}
		}
		config.Output.Formats = formats
	}

	if v := os.Getenv("LATWALK_STORE_ENABLED"); v != "" {
		config.Store.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("LATWALK_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("LATWALK_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
