// Package store persists completed simulation runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/latwalk/internal/simulation"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is a completed simulation with its full position table.
type Run struct {
	ID        int64             `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Label     string            `json:"label,omitempty"`
	Seed      uint64            `json:"seed"`
	Config    simulation.Config `json:"config"`

	Table *simulation.PositionTable `json:"-"`
}

// RunSummary describes a stored run without its positions.
type RunSummary struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Label         string    `json:"label,omitempty"`
	Seed          uint64    `json:"seed"`
	Walkers       int       `json:"walkers"`
	Steps         int       `json:"steps"`
	FrameInterval int       `json:"frame_interval"`
	RecordOrigin  bool      `json:"record_origin"`
	FinalMean     float64   `json:"final_mean"`
	MaxDeviation  float64   `json:"max_deviation"`
}

// Summarize computes the summary for a run from its table.
func Summarize(r *Run) RunSummary {
	s := RunSummary{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		Label:         r.Label,
		Seed:          r.Seed,
		Walkers:       r.Config.Walkers,
		Steps:         r.Config.Steps,
		FrameInterval: r.Config.FrameInterval,
		RecordOrigin:  r.Config.RecordOrigin,
	}
	if r.Table != nil {
		stats := simulation.ComputeDistanceStats(r.Table)
		s.FinalMean = stats.FinalMean()
		s.MaxDeviation = stats.MaxDeviation()
	}
	return s
}

// RunStore defines the interface for storing and querying runs.
type RunStore interface {
	// SaveRun stores a run and returns its assigned ID. The run's ID and
	// CreatedAt are set on success.
	SaveRun(ctx context.Context, run *Run) (int64, error)

	// GetRun loads a run with its full table. Returns ErrRunNotFound if absent.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns returns the most recent runs first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// DeleteRun removes a run and its positions. Returns ErrRunNotFound if absent.
	DeleteRun(ctx context.Context, id int64) error

	// Close releases resources.
	Close() error
}
