// Package constants provides named constants used throughout the latwalk codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Simulation defaults
const (
	// DefaultWalkers is the number of independent walkers in a run.
	DefaultWalkers = 10

	// DefaultSteps is the number of time indices after the first one.
	// A run records DefaultSteps+1 rows.
	DefaultSteps = 400

	// DefaultFrameInterval is the number of steps between exported frames.
	DefaultFrameInterval = 4
)

// Rendering constants
const (
	// BoxScale multiplies int(sqrt(steps)) to get the side length of the
	// square plotting window. The expected distance grows as sqrt(t), so a
	// window of 5*sqrt(steps) keeps nearly all walkers in view.
	BoxScale = 5

	// FrameNameFormat is the file name pattern for exported frames.
	FrameNameFormat = "f_%05d.png"

	// FramesDirName is the directory, relative to the output dir, holding frames.
	FramesDirName = "frames"

	// TrajectoryFileName is the final trajectory image.
	TrajectoryFileName = "trajectory.png"

	// DistanceFileName is the distance-vs-theory plot.
	DistanceFileName = "distance.png"

	// HTMLFileName is the self-contained run page.
	HTMLFileName = "walk.html"

	// PlotSizeInches is the width and height of generated PNG plots.
	PlotSizeInches = 6
)

// Storage constants
const (
	// DataDirName is the per-project directory holding the run database and event log.
	DataDirName = ".latwalk"

	// DatabaseFileName is the SQLite database inside DataDirName.
	DatabaseFileName = "latwalk.db"

	// EventLogFileName is the JSONL event trace inside DataDirName.
	EventLogFileName = "events.jsonl"

	// DefaultHistoryLimit is the number of runs listed when no limit is given.
	DefaultHistoryLimit = 20
)
