package simulation

import (
	"errors"
	"testing"
)

type countingRenderer struct {
	frames, trajectories, stats int
	err                         error
}

func (c *countingRenderer) OnFrame(Frame) error {
	c.frames++
	return c.err
}

func (c *countingRenderer) OnFinalTrajectory(Trajectory) error {
	c.trajectories++
	return c.err
}

func (c *countingRenderer) OnDistanceStats(DistanceStats) error {
	c.stats++
	return c.err
}

func TestMultiRenderer_FansOut(t *testing.T) {
	a, b := &countingRenderer{}, &countingRenderer{}
	m := NewMultiRenderer(a, nil, b)
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2 (nil dropped)", len(m))
	}

	sim, err := New(Config{Walkers: 2, Steps: 4, FrameInterval: 2, ExportFrames: true, ExportTrajectory: true, ExportDistance: true}, m)
	if err != nil {
		t.Fatal(err)
	}
	if err := sim.Run(); err != nil {
		t.Fatal(err)
	}

	for name, r := range map[string]*countingRenderer{"a": a, "b": b} {
		if r.frames != 3 || r.trajectories != 1 || r.stats != 1 {
			t.Errorf("renderer %s saw frames=%d trajectories=%d stats=%d", name, r.frames, r.trajectories, r.stats)
		}
	}
}

func TestMultiRenderer_StopsAtFirstError(t *testing.T) {
	failing := &countingRenderer{err: errBoom}
	after := &countingRenderer{}
	m := NewMultiRenderer(failing, after)

	if err := m.OnFrame(Frame{}); !errors.Is(err, errBoom) {
		t.Errorf("OnFrame error = %v, want errBoom", err)
	}
	if err := m.OnFinalTrajectory(Trajectory{}); !errors.Is(err, errBoom) {
		t.Errorf("OnFinalTrajectory error = %v, want errBoom", err)
	}
	if err := m.OnDistanceStats(DistanceStats{}); !errors.Is(err, errBoom) {
		t.Errorf("OnDistanceStats error = %v, want errBoom", err)
	}
	if after.frames+after.trajectories+after.stats != 0 {
		t.Error("renderer after the failing one received events")
	}
}
