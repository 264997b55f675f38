package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nvandessel/latwalk/internal/simulation"
)

// InMemoryRunStore implements RunStore for testing and for runs that
// should not touch disk.
type InMemoryRunStore struct {
	mu     sync.RWMutex
	runs   map[int64]*Run
	nextID int64
}

// NewInMemoryRunStore creates a new in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{
		runs:   make(map[int64]*Run),
		nextID: 1,
	}
}

// SaveRun stores a copy of the run.
func (s *InMemoryRunStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if run == nil || run.Table == nil {
		return 0, fmt.Errorf("run with a position table is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.ID = s.nextID
	s.nextID++

	stored := *run
	stored.Table = copyTable(run.Table)
	s.runs[run.ID] = &stored
	return run.ID, nil
}

// GetRun returns a copy of the stored run.
func (s *InMemoryRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	out := *r
	out.Table = copyTable(r.Table)
	return &out, nil
}

// ListRuns returns summaries, newest first.
func (s *InMemoryRunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunSummary, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, Summarize(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRun removes a run.
func (s *InMemoryRunStore) DeleteRun(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op.
func (s *InMemoryRunStore) Close() error {
	return nil
}

func copyTable(t *simulation.PositionTable) *simulation.PositionTable {
	out := simulation.NewPositionTable(t.Rows(), t.Walkers())
	for r := 0; r < t.Rows(); r++ {
		copy(out.X[r], t.X[r])
		copy(out.Y[r], t.Y[r])
	}
	return out
}
