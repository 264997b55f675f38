package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/latwalk/internal/simulation"
)

func newTestSQLiteStore(t *testing.T) (*SQLiteRunStore, string) {
	t.Helper()
	tmpDir := t.TempDir()
	s, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("NewSQLiteRunStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, tmpDir
}

func TestNewSQLiteRunStore(t *testing.T) {
	s, tmpDir := newTestSQLiteStore(t)

	dbPath := filepath.Join(tmpDir, ".latwalk", "latwalk.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("latwalk.db was not created")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}

	version, err := getSchemaVersion(context.Background(), s.db)
	if err != nil {
		t.Fatalf("getSchemaVersion: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestSQLiteRunStore_SaveGet(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	run := completedRun(t, 3, 25, 17)
	run.Label = "baseline"
	run.Seed = 1<<63 + 5 // above int64 range

	id, err := s.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if id != run.ID || id <= 0 {
		t.Errorf("SaveRun returned id %d, run.ID %d", id, run.ID)
	}
	if run.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}

	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Label != "baseline" || got.Seed != run.Seed {
		t.Errorf("got label %q seed %d", got.Label, got.Seed)
	}
	if diff := cmp.Diff(run.Config, got.Config); diff != "" {
		t.Errorf("config mismatch (-saved +loaded):\n%s", diff)
	}
	if diff := cmp.Diff(run.Table, got.Table); diff != "" {
		t.Errorf("table mismatch (-saved +loaded):\n%s", diff)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
	}
}

func TestSQLiteRunStore_StatsFromStoredTableMatch(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	run := completedRun(t, 4, 60, 8)
	id, err := s.SaveRun(ctx, run)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	want := simulation.ComputeDistanceStats(run.Table)
	if diff := cmp.Diff(want, simulation.ComputeDistanceStats(got.Table)); diff != "" {
		t.Errorf("stats differ after storage:\n%s", diff)
	}
}

func TestSQLiteRunStore_GetMissing(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	_, err := s.GetRun(context.Background(), 404)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(404) error = %v, want ErrRunNotFound", err)
	}
}

func TestSQLiteRunStore_SaveRejectsMismatchedTable(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	run := completedRun(t, 2, 5, 1)
	run.Config.Steps = 6

	if _, err := s.SaveRun(context.Background(), run); err == nil {
		t.Error("expected error for table/config shape mismatch")
	}
	if _, err := s.SaveRun(context.Background(), &Run{}); err == nil {
		t.Error("expected error for run without table")
	}
}

func TestSQLiteRunStore_ListRuns(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := s.SaveRun(ctx, completedRun(t, 2, 10+i, uint64(i+1)))
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Errorf("runs not newest first: %v", []int64{all[0].ID, all[1].ID, all[2].ID})
	}
	if all[0].Steps != 12 || all[0].Walkers != 2 {
		t.Errorf("unexpected summary %+v", all[0])
	}
	if all[0].FinalMean <= 0 {
		t.Errorf("FinalMean = %f, want > 0", all[0].FinalMean)
	}

	limited, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d runs with limit 2", len(limited))
	}
}

func TestSQLiteRunStore_DeleteRun(t *testing.T) {
	s, _ := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, completedRun(t, 2, 4, 3))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteRun(ctx, id); err != nil {
		t.Fatalf("DeleteRun() error = %v", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM positions WHERE run_id = ?`, id).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("%d positions left after delete", count)
	}
	if err := s.DeleteRun(ctx, id); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("second DeleteRun error = %v, want ErrRunNotFound", err)
	}
}

func TestSQLiteRunStore_Reopen(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.SaveRun(ctx, completedRun(t, 1, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewSQLiteRunStore(tmpDir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, err := s2.GetRun(ctx, id); err != nil {
		t.Errorf("GetRun after reopen: %v", err)
	}
}
