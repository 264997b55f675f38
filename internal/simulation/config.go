package simulation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/latwalk/internal/constants"
)

// ErrInvalidConfiguration is returned when a Config fails validation.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config controls the size of a run and which events it emits.
type Config struct {
	// Walkers is the number of independent walkers. Must be >= 1.
	Walkers int `json:"walkers" yaml:"walkers"`

	// Steps is the last time index. The table holds Steps+1 rows. Must be >= 0.
	Steps int `json:"steps" yaml:"steps"`

	// FrameInterval emits a frame every FrameInterval time indices. Must be >= 1.
	FrameInterval int `json:"frame_interval" yaml:"frame_interval"`

	ExportFrames     bool `json:"export_frames" yaml:"export_frames"`
	ExportTrajectory bool `json:"export_trajectory" yaml:"export_trajectory"`
	ExportDistance   bool `json:"export_distance" yaml:"export_distance"`

	// RecordOrigin makes row 0 the starting position. When false, walkers
	// move before every recorded row, including row 0.
	RecordOrigin bool `json:"record_origin" yaml:"record_origin"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Walkers:          constants.DefaultWalkers,
		Steps:            constants.DefaultSteps,
		FrameInterval:    constants.DefaultFrameInterval,
		ExportFrames:     true,
		ExportTrajectory: true,
		ExportDistance:   true,
	}
}

// Validate checks the numeric bounds. The returned error wraps
// ErrInvalidConfiguration.
func (c Config) Validate() error {
	if c.Walkers < 1 {
		return fmt.Errorf("%w: walkers must be at least 1, got %d", ErrInvalidConfiguration, c.Walkers)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidConfiguration, c.Steps)
	}
	if c.FrameInterval < 1 {
		return fmt.Errorf("%w: frame_interval must be at least 1, got %d", ErrInvalidConfiguration, c.FrameInterval)
	}
	return nil
}

// FrameCount returns how many frames a run with this config emits.
func (c Config) FrameCount() int {
	if !c.ExportFrames || c.FrameInterval < 1 || c.Steps < 0 {
		return 0
	}
	return c.Steps/c.FrameInterval + 1
}
