package render

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/walker"
)

// Glyphs drawn by the terminal renderer.
const (
	walkerGlyph = '●'
	trailGlyph  = '·'
	originGlyph = '+'
)

var walkerColors = []tcell.Color{
	tcell.ColorRed,
	tcell.ColorGreen,
	tcell.ColorYellow,
	tcell.ColorBlue,
	tcell.ColorFuchsia,
	tcell.ColorAqua,
	tcell.ColorOrange,
	tcell.ColorPurple,
}

func walkerColor(i int) tcell.Color {
	return walkerColors[i%len(walkerColors)]
}

// TerminalRenderer animates frames on a tcell screen. The bottom line holds
// a status message; the rest is the lattice window, scaled to fit.
type TerminalRenderer struct {
	screen tcell.Screen
	delay  time.Duration
	sleep  func(time.Duration)
}

// NewTerminalRenderer draws on screen, pausing delay after each frame.
// The caller owns the screen's Init and Fini.
func NewTerminalRenderer(screen tcell.Screen, delay time.Duration) *TerminalRenderer {
	return &TerminalRenderer{screen: screen, delay: delay, sleep: time.Sleep}
}

func (r *TerminalRenderer) OnFrame(f simulation.Frame) error {
	r.screen.Clear()
	half := BoxSide(f.MaxStep) / 2
	r.drawTrails(f.Trails, half)
	for i, p := range f.Positions {
		r.plot(p, half, walkerGlyph, tcell.StyleDefault.Foreground(walkerColor(i)).Bold(true))
	}
	r.status(fmt.Sprintf("t=%d/%d frame %d walkers %d", f.Step, f.MaxStep, f.Index, len(f.Positions)))
	r.screen.Show()

	if r.delay > 0 {
		r.sleep(r.delay)
	}
	return nil
}

func (r *TerminalRenderer) OnFinalTrajectory(t simulation.Trajectory) error {
	r.screen.Clear()
	half := BoxSide(t.MaxStep) / 2
	r.drawTrails(t.Paths, half)
	for i, path := range t.Paths {
		r.plot(path[len(path)-1], half, walkerGlyph, tcell.StyleDefault.Foreground(walkerColor(i)).Bold(true))
	}
	r.status(fmt.Sprintf("done: %d walkers, %d steps", len(t.Paths), t.MaxStep))
	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) OnDistanceStats(s simulation.DistanceStats) error {
	last := len(s.Mean) - 1
	if last < 0 {
		return nil
	}
	r.status(fmt.Sprintf("t=%d mean distance %.2f, sqrt(t) %.2f", s.Time[last], s.Mean[last], s.Theory[last]))
	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) drawTrails(trails [][]walker.Position, half int) {
	r.plot(walker.Position{}, half, originGlyph, tcell.StyleDefault.Foreground(tcell.ColorGray))
	for i, trail := range trails {
		style := tcell.StyleDefault.Foreground(walkerColor(i)).Dim(true)
		for _, p := range trail {
			r.plot(p, half, trailGlyph, style)
		}
	}
}

func (r *TerminalRenderer) plot(p walker.Position, half int, glyph rune, style tcell.Style) {
	w, h := r.screen.Size()
	if col, row, ok := project(p, half, w, h-1); ok {
		r.screen.SetContent(col, row, glyph, nil, style)
	}
}

// status overwrites the last screen line.
func (r *TerminalRenderer) status(msg string) {
	w, h := r.screen.Size()
	if h == 0 {
		return
	}
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, h-1, ' ', nil, tcell.StyleDefault)
	}
	for x, ch := range []rune(msg) {
		if x >= w {
			break
		}
		r.screen.SetContent(x, h-1, ch, nil, tcell.StyleDefault.Reverse(true))
	}
}

// project maps lattice coordinates in [-half, half] onto a w×h cell grid,
// y up. Points outside the window are dropped.
func project(p walker.Position, half, w, h int) (col, row int, ok bool) {
	if w <= 0 || h <= 0 || half <= 0 {
		return 0, 0, false
	}
	if p.X < -half || p.X > half || p.Y < -half || p.Y > half {
		return 0, 0, false
	}
	span := 2 * half
	col = (p.X + half) * (w - 1) / span
	row = (half - p.Y) * (h - 1) / span
	return col, row, true
}
