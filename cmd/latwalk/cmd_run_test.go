package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/render"
	"github.com/nvandessel/latwalk/internal/simulation"
)

// runJSON executes `latwalk run --json` in root with extra args.
func runJSON(t *testing.T, root string, args ...string) runResult {
	t.Helper()
	base := []string{"run", "--json", "--root", root, "--no-open", "--walkers", "3", "--steps", "20", "--interval", "5"}
	out, err := execute(t, append(base, args...)...)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var got runResult
	decodeJSON(t, out, &got)
	return got
}

func TestRunCmd_ArrowOutputAndStore(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	root := filepath.Join(tmpDir, "project")

	got := runJSON(t, root, "--seed", "7", "--format", "arrow", "--out", "out", "--label", "first")

	want := runResult{
		RunID:     1,
		Seed:      7,
		Walkers:   3,
		Steps:     20,
		Frames:    5,
		OutputDir: filepath.Join(root, "out"),
		Formats:   []string{"arrow"},
	}
	ignoreStats := cmpopts.IgnoreFields(runResult{}, "FinalMean", "FinalTheory", "MaxDeviation")
	if diff := cmp.Diff(want, got, ignoreStats); diff != "" {
		t.Errorf("run result mismatch (-want +got):\n%s", diff)
	}
	if got.FinalMean <= 0 {
		t.Errorf("FinalMean = %v, want > 0", got.FinalMean)
	}

	for _, name := range []string{render.TrajectoryArrowFile, render.DistanceArrowFile} {
		if _, err := os.Stat(filepath.Join(root, "out", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, constants.DataDirName, constants.DatabaseFileName)); err != nil {
		t.Errorf("run store not created: %v", err)
	}
}

func TestRunCmd_SeedReproducible(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	a := runJSON(t, tmpDir, "--seed", "99", "--format", "", "--no-save")
	b := runJSON(t, tmpDir, "--seed", "99", "--format", "", "--no-save")
	if a.FinalMean != b.FinalMean || a.MaxDeviation != b.MaxDeviation {
		t.Errorf("same seed gave different runs: %+v vs %+v", a, b)
	}
	if a.RunID != 0 {
		t.Errorf("RunID = %d with --no-save, want 0", a.RunID)
	}
}

func TestRunCmd_RecordOrigin(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	got := runJSON(t, tmpDir, "--steps", "0", "--record-origin", "--format", "", "--no-save")
	if got.FinalMean != 0 {
		t.Errorf("FinalMean = %v with record-origin and zero steps, want 0", got.FinalMean)
	}
	if got.Frames != 1 {
		t.Errorf("Frames = %d, want 1", got.Frames)
	}
}

func TestRunCmd_HTML(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	got := runJSON(t, tmpDir, "--format", "html", "--out", "page", "--no-save")
	wantPath := filepath.Join(tmpDir, "page", constants.HTMLFileName)
	if got.HTMLPath != wantPath {
		t.Errorf("HTMLPath = %q, want %q", got.HTMLPath, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("page has no SVG")
	}
}

func TestRunCmd_Terminal(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	var screen tcell.SimulationScreen
	old := newScreen
	newScreen = func() (tcell.Screen, error) {
		screen = tcell.NewSimulationScreen("UTF-8")
		return screen, nil
	}
	t.Cleanup(func() { newScreen = old })

	got := runJSON(t, tmpDir, "--format", "terminal", "--delay", "0s", "--no-save")
	if screen == nil {
		t.Fatal("terminal screen was not opened")
	}
	if got.Frames != 5 {
		t.Errorf("Frames = %d, want 5", got.Frames)
	}
}

func TestRunCmd_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{
			name: "zero walkers",
			args: []string{"--walkers", "0"},
			is:   simulation.ErrInvalidConfiguration,
		},
		{
			name: "negative steps",
			args: []string{"--steps=-1"},
			is:   simulation.ErrInvalidConfiguration,
		},
		{
			name:    "unknown format",
			args:    []string{"--format", "gif"},
			wantErr: "invalid output format",
		},
		{
			name:    "html without trajectory",
			args:    []string{"--format", "html", "--no-trajectory"},
			wantErr: "html output needs the trajectory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "--root", tmpDir, "--no-save", "--quiet"}, tt.args...)
			_, err := execute(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error %v does not wrap %v", err, tt.is)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunCmd_TextOutput(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	out, err := execute(t, "run", "--root", tmpDir, "--seed", "3", "--steps", "10", "--format", "", "--quiet")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Run #1 (seed 3)", "final mean distance", "max deviation"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf strings.Builder
	progress := progressPrinter(&buf)
	for done := 1; done <= 200; done++ {
		progress(done, 200)
	}
	out := buf.String()
	if got := strings.Count(out, "\r"); got != 101 {
		t.Errorf("printed %d updates, want one per percent from 0 to 100", got)
	}
	if !strings.HasSuffix(out, "step 200/200 (100%)\n") {
		t.Errorf("output does not end with the final step: %q", out[max(0, len(out)-40):])
	}
}
