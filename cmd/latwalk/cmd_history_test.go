package main

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/store"
)

// seedRuns stores n runs in root via the run command and returns root.
func seedRuns(t *testing.T, n int) string {
	t.Helper()
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	for i := range n {
		runJSON(t, tmpDir, "--seed", "11", "--format", "arrow", "--out", "out", "--label", "run"+string(rune('a'+i)))
	}
	return tmpDir
}

func TestHistoryCmd(t *testing.T) {
	root := seedRuns(t, 3)

	out, err := execute(t, "history", "--root", root, "--json", "--limit", "2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var got struct {
		Runs  []store.RunSummary `json:"runs"`
		Count int                `json:"count"`
	}
	decodeJSON(t, out, &got)
	if got.Count != 2 {
		t.Fatalf("count = %d, want 2", got.Count)
	}
	ids := []int64{got.Runs[0].ID, got.Runs[1].ID}
	if diff := cmp.Diff([]int64{3, 2}, ids); diff != "" {
		t.Errorf("history order (-want +got):\n%s", diff)
	}

	out, err = execute(t, "history", "--root", root)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "FINAL MEAN") || !strings.Contains(out, "runc") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out, err := execute(t, "history", "--root", tmpDir)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs stored.") {
		t.Errorf("output = %q", out)
	}

	out, err = execute(t, "history", "--root", tmpDir, "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	if !strings.Contains(out, `"runs": []`) {
		t.Errorf("empty history should encode an empty list, got %s", out)
	}
}

func TestHistoryDeleteCmd(t *testing.T) {
	root := seedRuns(t, 1)

	if _, err := execute(t, "history", "delete", "1", "--root", root); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := execute(t, "history", "delete", "1", "--root", root)
	if err == nil || !strings.Contains(err.Error(), "no run with ID 1") {
		t.Errorf("second delete error = %v", err)
	}
	if _, err := execute(t, "history", "delete", "abc", "--root", root); err == nil {
		t.Error("expected error for a non-numeric ID")
	}
}

func TestStatsCmd(t *testing.T) {
	root := seedRuns(t, 1)

	out, err := execute(t, "stats", "1", "--root", root, "--json", "--samples", "5")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var got struct {
		Run    store.RunSummary `json:"run"`
		Series []statsRow       `json:"series"`
	}
	decodeJSON(t, out, &got)
	if got.Run.ID != 1 || got.Run.Seed != 11 || got.Run.Walkers != 3 {
		t.Errorf("summary = %+v", got.Run)
	}
	var ts []int
	for _, r := range got.Series {
		ts = append(ts, r.T)
	}
	if diff := cmp.Diff([]int{0, 5, 10, 15, 20}, ts); diff != "" {
		t.Errorf("sampled t (-want +got):\n%s", diff)
	}

	if _, err := execute(t, "stats", "42", "--root", root); err == nil {
		t.Error("expected error for a missing run")
	}
}

func TestSampleRows(t *testing.T) {
	table := simulation.NewPositionTable(11, 1)
	stats := simulation.ComputeDistanceStats(table)

	tests := []struct {
		name string
		n    int
		want []int
	}{
		{"even stride", 6, []int{0, 2, 4, 6, 8, 10}},
		{"uneven stride keeps last", 4, []int{0, 3, 6, 9, 10}},
		{"more samples than rows", 50, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"minimum two", 0, []int{0, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, r := range sampleRows(stats, tt.n) {
				got = append(got, r.T)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sampleRows(%d) (-want +got):\n%s", tt.n, diff)
			}
		})
	}
}

func TestValidateCmd(t *testing.T) {
	root := seedRuns(t, 1)

	out, err := execute(t, "validate", "1", "--root", root)
	if err != nil {
		t.Fatalf("validate run: %v", err)
	}
	if !strings.Contains(out, "valid (3 walkers, 21 rows)") {
		t.Errorf("output = %q", out)
	}

	arrowPath := filepath.Join(root, "out", render.TrajectoryArrowFile)
	if _, err := execute(t, "validate", arrowPath, "--root", root); err != nil {
		t.Fatalf("validate arrow: %v", err)
	}

	// The default convention moves before row 0, so claiming the origin
	// is recorded flags every walker.
	out, err = execute(t, "validate", arrowPath, "--root", root, "--record-origin")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(out, "3 issue(s)") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateCmd_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := execute(t, "validate", filepath.Join(tmpDir, "nope.arrow"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want a not-exist error", err)
	}
}
