package mcp

import (
	"github.com/nvandessel/latwalk/internal/store"
)

// WalkSimulateInput defines the input for the walk_simulate tool.
type WalkSimulateInput struct {
	Walkers       int    `json:"walkers,omitempty" jsonschema:"number of walkers (default 10)"`
	Steps         int    `json:"steps,omitempty" jsonschema:"last time index; the run records steps+1 rows (default 400)"`
	FrameInterval int    `json:"frame_interval,omitempty" jsonschema:"steps between frames (default 4)"`
	Seed          uint64 `json:"seed,omitempty" jsonschema:"PRNG seed; 0 picks one from the clock"`
	RecordOrigin  bool   `json:"record_origin,omitempty" jsonschema:"record the origin as row 0 and move from t=1"`
	Save          bool   `json:"save,omitempty" jsonschema:"store the run so walk_stats and walk_export can use it"`
	Label         string `json:"label,omitempty" jsonschema:"label for a saved run"`
}

// SeriesPoint is one sampled time index of a distance series.
type SeriesPoint struct {
	Step   int     `json:"step"`
	Mean   float64 `json:"mean"`
	Theory float64 `json:"theory"`
}

// RunStats summarizes a run's distance statistics.
type RunStats struct {
	Seed         uint64        `json:"seed" jsonschema:"seed that reproduces the run"`
	Walkers      int           `json:"walkers"`
	Steps        int           `json:"steps"`
	FinalMean    float64       `json:"final_mean" jsonschema:"mean distance from origin at the last step"`
	FinalTheory  float64       `json:"final_theory" jsonschema:"sqrt(steps)"`
	MaxDeviation float64       `json:"max_deviation" jsonschema:"largest |mean - sqrt(t)| over the run"`
	Series       []SeriesPoint `json:"series" jsonschema:"mean and theory sampled at up to 50 evenly spaced steps"`
}

// WalkSimulateOutput defines the output for the walk_simulate tool.
type WalkSimulateOutput struct {
	RunID int64    `json:"run_id,omitempty" jsonschema:"ID of the saved run, if saved"`
	Stats RunStats `json:"stats"`
}

// WalkHistoryInput defines the input for the walk_history tool.
type WalkHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum runs to list (default 20)"`
}

// WalkHistoryOutput defines the output for the walk_history tool.
type WalkHistoryOutput struct {
	Runs  []store.RunSummary `json:"runs"`
	Count int                `json:"count"`
}

// WalkStatsInput defines the input for the walk_stats tool.
type WalkStatsInput struct {
	RunID int64 `json:"run_id" jsonschema:"ID of a saved run"`
}

// WalkStatsOutput defines the output for the walk_stats tool.
type WalkStatsOutput struct {
	RunID  int64    `json:"run_id"`
	Label  string   `json:"label,omitempty"`
	Stats  RunStats `json:"stats"`
	Issues []string `json:"issues,omitempty" jsonschema:"table consistency problems, if any"`
}

// WalkExportInput defines the input for the walk_export tool.
type WalkExportInput struct {
	RunID int64  `json:"run_id" jsonschema:"ID of a saved run"`
	Dir   string `json:"dir,omitempty" jsonschema:"output directory relative to the project root (default: project root)"`
}

// WalkExportOutput defines the output for the walk_export tool.
type WalkExportOutput struct {
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}
