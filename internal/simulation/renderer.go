package simulation

import (
	"fmt"

	"github.com/nvandessel/latwalk/internal/walker"
)

// Frame is a snapshot emitted every FrameInterval time indices.
type Frame struct {
	// Index counts frames emitted so far, starting at 0.
	Index int `json:"index"`

	// Step is the time index the snapshot was taken at.
	Step int `json:"step"`

	// MaxStep is the configured last time index.
	MaxStep int `json:"max_step"`

	// Positions holds each walker's current position.
	Positions []walker.Position `json:"positions"`

	// Trails holds, per walker, the positions for rows [0, Step].
	Trails [][]walker.Position `json:"trails"`
}

// Trajectory is the complete recorded history of a run.
type Trajectory struct {
	// Paths holds, per walker, the positions for every row.
	Paths [][]walker.Position `json:"paths"`

	// MaxStep is the configured last time index.
	MaxStep int `json:"max_step"`
}

// Renderer receives the events a run produces. Implementations own all I/O.
// A returned error aborts the run and is passed back to the caller of Run.
type Renderer interface {
	OnFrame(f Frame) error
	OnFinalTrajectory(t Trajectory) error
	OnDistanceStats(s DistanceStats) error
}

// NopRenderer ignores every event.
type NopRenderer struct{}

func (NopRenderer) OnFrame(Frame) error                { return nil }
func (NopRenderer) OnFinalTrajectory(Trajectory) error { return nil }
func (NopRenderer) OnDistanceStats(DistanceStats) error {
	return nil
}

// MultiRenderer delivers each event to every renderer in order and stops
// at the first error.
type MultiRenderer []Renderer

// NewMultiRenderer drops nil renderers and returns the rest as one Renderer.
func NewMultiRenderer(renderers ...Renderer) MultiRenderer {
	out := make(MultiRenderer, 0, len(renderers))
	for _, r := range renderers {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m MultiRenderer) OnFrame(f Frame) error {
	for i, r := range m {
		if err := r.OnFrame(f); err != nil {
			return fmt.Errorf("renderer %d: %w", i, err)
		}
	}
	return nil
}

func (m MultiRenderer) OnFinalTrajectory(t Trajectory) error {
	for i, r := range m {
		if err := r.OnFinalTrajectory(t); err != nil {
			return fmt.Errorf("renderer %d: %w", i, err)
		}
	}
	return nil
}

func (m MultiRenderer) OnDistanceStats(s DistanceStats) error {
	for i, r := range m {
		if err := r.OnDistanceStats(s); err != nil {
			return fmt.Errorf("renderer %d: %w", i, err)
		}
	}
	return nil
}

// Collector keeps every event in memory.
type Collector struct {
	Frames     []Frame
	Trajectory *Trajectory
	Stats      *DistanceStats
}

func (c *Collector) OnFrame(f Frame) error {
	c.Frames = append(c.Frames, f)
	return nil
}

func (c *Collector) OnFinalTrajectory(t Trajectory) error {
	c.Trajectory = &t
	return nil
}

func (c *Collector) OnDistanceStats(s DistanceStats) error {
	c.Stats = &s
	return nil
}
