package render

import (
	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/simulation"
)

// EventTrace records a summary of every event to the JSONL event log.
type EventTrace struct {
	events *logging.EventLogger
}

// NewEventTrace wraps an event logger. A nil logger makes every call a no-op.
func NewEventTrace(events *logging.EventLogger) *EventTrace {
	return &EventTrace{events: events}
}

func (e *EventTrace) OnFrame(f simulation.Frame) error {
	e.events.Emit("frame", map[string]any{
		"index":   f.Index,
		"step":    f.Step,
		"walkers": len(f.Positions),
	})
	return nil
}

func (e *EventTrace) OnFinalTrajectory(t simulation.Trajectory) error {
	e.events.Emit("trajectory", map[string]any{
		"walkers":  len(t.Paths),
		"max_step": t.MaxStep,
	})
	return nil
}

func (e *EventTrace) OnDistanceStats(s simulation.DistanceStats) error {
	e.events.Emit("distance_stats", map[string]any{
		"final_mean":    s.FinalMean(),
		"max_deviation": s.MaxDeviation(),
	})
	return nil
}
