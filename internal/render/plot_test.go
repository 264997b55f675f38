package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/latwalk/internal/constants"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("%s is not a PNG", path)
	}
}

func TestPlotRenderer_WritesAllImages(t *testing.T) {
	dir := t.TempDir()
	r := NewPlotRenderer(dir)
	cfg := smallConfig()
	runWith(t, cfg, 42, r)

	for i := 0; i < cfg.FrameCount(); i++ {
		assertPNG(t, r.FramePath(i))
	}
	if _, err := os.Stat(r.FramePath(cfg.FrameCount())); !os.IsNotExist(err) {
		t.Errorf("unexpected extra frame %s", r.FramePath(cfg.FrameCount()))
	}
	assertPNG(t, filepath.Join(dir, constants.TrajectoryFileName))
	assertPNG(t, filepath.Join(dir, constants.DistanceFileName))
}

func TestPlotRenderer_FramePath(t *testing.T) {
	r := NewPlotRenderer("out")
	want := filepath.Join("out", "frames", "f_00012.png")
	if got := r.FramePath(12); got != want {
		t.Errorf("FramePath(12) = %q, want %q", got, want)
	}
}

func TestPlotRenderer_FramesDirError(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the frames directory should go.
	if err := os.WriteFile(filepath.Join(dir, constants.FramesDirName), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	sim := newSim(t, cfg, NewPlotRenderer(dir))
	if err := sim.Run(); err == nil {
		t.Fatal("expected error when frames directory cannot be created")
	}
}
