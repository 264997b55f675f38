package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/walker"
)

// ErrAlreadyRun is returned when Run is called on a Simulation that has already started.
var ErrAlreadyRun = errors.New("simulation already run")

// State is the lifecycle stage of a Simulation.
type State int

const (
	NotStarted State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProgressFunc is called after each time index with the number of rows
// recorded so far and the total row count.
type ProgressFunc func(done, total int)

// Option configures a Simulation.
type Option func(*Simulation)

// WithSource sets the move source. It overrides WithSeed.
func WithSource(src walker.MoveSource) Option {
	return func(s *Simulation) { s.src = src }
}

// WithSeed seeds the default PCG source. Zero picks a clock-derived seed.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.seed = seed }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Simulation) { s.progress = fn }
}

// Simulation holds the walkers and recorded positions of one run.
type Simulation struct {
	cfg      Config
	renderer Renderer
	walkers  []walker.Walker
	table    *PositionTable

	src      walker.MoveSource
	seed     uint64
	logger   *slog.Logger
	progress ProgressFunc

	state        State
	currentStep  int
	currentFrame int
}

// New validates cfg and allocates a Simulation. A nil renderer is replaced
// by NopRenderer.
func New(cfg Config, renderer Renderer, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}

	s := &Simulation{
		cfg:      cfg,
		renderer: renderer,
		walkers:  make([]walker.Walker, cfg.Walkers),
		table:    NewPositionTable(cfg.Steps+1, cfg.Walkers),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.src == nil {
		s.src, s.seed = walker.NewSource(s.seed)
	}

	return s, nil
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// Seed returns the seed of the default source. It is meaningless when
// WithSource was used.
func (s *Simulation) Seed() uint64 { return s.seed }

// State returns the lifecycle stage.
func (s *Simulation) State() State { return s.state }

// CurrentStep returns the number of rows recorded so far, which is
// Steps+1 once Run completes.
func (s *Simulation) CurrentStep() int { return s.currentStep }

// CurrentFrame returns the number of frames emitted so far.
func (s *Simulation) CurrentFrame() int { return s.currentFrame }

// Table returns the position table. It is only complete after Run returns nil.
func (s *Simulation) Table() *PositionTable { return s.table }

// Positions returns every walker's current position.
func (s *Simulation) Positions() []walker.Position {
	out := make([]walker.Position, len(s.walkers))
	for i := range s.walkers {
		out[i] = s.walkers[i].Position()
	}
	return out
}

// Run executes the time loop and emits events to the renderer.
// It may be called once; later calls return ErrAlreadyRun.
func (s *Simulation) Run() error {
	if s.state != NotStarted {
		return ErrAlreadyRun
	}
	s.state = Running
	start := time.Now()

	rows := s.cfg.Steps + 1
	for t := 0; t < rows; t++ {
		if err := s.advance(t); err != nil {
			return err
		}
		if s.progress != nil {
			s.progress(s.currentStep, rows)
		}
	}

	if s.cfg.ExportTrajectory {
		traj := Trajectory{Paths: s.table.Paths(s.cfg.Steps), MaxStep: s.cfg.Steps}
		if err := s.renderer.OnFinalTrajectory(traj); err != nil {
			return fmt.Errorf("render trajectory: %w", err)
		}
	}

	if s.cfg.ExportDistance {
		stats := ComputeDistanceStats(s.table)
		if err := s.renderer.OnDistanceStats(stats); err != nil {
			return fmt.Errorf("render distance stats: %w", err)
		}
	}

	s.state = Completed
	s.logger.Debug("simulation completed",
		"walkers", s.cfg.Walkers,
		"steps", s.cfg.Steps,
		"frames", s.currentFrame,
		"elapsed", time.Since(start))
	return nil
}

// advance moves every walker, records row t, and emits a frame if due.
func (s *Simulation) advance(t int) error {
	move := t > 0 || !s.cfg.RecordOrigin
	for i := range s.walkers {
		if move {
			s.walkers[i].Step(s.src)
		}
		s.table.Set(t, i, s.walkers[i].Position())
	}
	s.currentStep = t + 1

	if !s.cfg.ExportFrames || t%s.cfg.FrameInterval != 0 {
		return nil
	}

	frame := Frame{
		Index:     s.currentFrame,
		Step:      t,
		MaxStep:   s.cfg.Steps,
		Positions: s.Positions(),
		Trails:    s.table.Paths(t),
	}
	s.logger.Log(context.Background(), logging.LevelTrace, "emitting frame", "frame", frame.Index, "step", t)
	if err := s.renderer.OnFrame(frame); err != nil {
		return fmt.Errorf("render frame %d: %w", frame.Index, err)
	}
	s.currentFrame++
	return nil
}
