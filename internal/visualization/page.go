// Package visualization renders completed runs as self-contained HTML pages
// and serves them from a local HTTP server.
package visualization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/walker"
)

// palette is the default matplotlib cycle, so pages match the PNG output's feel.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Distance chart size in pixels.
const (
	chartWidth  = 600
	chartHeight = 360
)

// Run is everything a page needs to draw one simulation.
type Run struct {
	Seed       uint64
	Trajectory simulation.Trajectory
	Stats      *simulation.DistanceStats
	Frames     []simulation.Frame
}

// RunFromCollector assembles a Run from the events a Collector kept.
// The trajectory is required.
func RunFromCollector(c *simulation.Collector, seed uint64) (Run, error) {
	if c.Trajectory == nil {
		return Run{}, fmt.Errorf("run has no trajectory; enable trajectory export")
	}
	return Run{Seed: seed, Trajectory: *c.Trajectory, Stats: c.Stats, Frames: c.Frames}, nil
}

// FramePoint is the compact per-frame payload used by the page's animation
// and the /api/frames endpoint. Trails are omitted since the page draws
// the full trajectory once.
type FramePoint struct {
	Index     int               `json:"index"`
	Step      int               `json:"step"`
	Positions []walker.Position `json:"positions"`
}

// CompactFrames strips trails from frames.
func CompactFrames(frames []simulation.Frame) []FramePoint {
	out := make([]FramePoint, len(frames))
	for i, f := range frames {
		out[i] = FramePoint{Index: f.Index, Step: f.Step, Positions: f.Positions}
	}
	return out
}

type svgPolyline struct {
	Color  string
	Points string
}

type svgPoint struct {
	X, Y  int
	Color string
}

// pageData holds data passed to the HTML template.
// FramesJSON is pre-sanitized JSON (via json.HTMLEscape) safe for inline <script>.
type pageData struct {
	Title       string
	Walkers     int
	Steps       int
	Seed        uint64
	FinalMean   float64
	FinalTheory float64
	APIBase     string
	Colors      []string

	TrajViewBox string
	StrokeWidth float64
	DotRadius   float64
	Paths       []svgPolyline
	Ends        []svgPoint

	HasStats    bool
	ChartWidth  int
	ChartHeight int
	DistWalkers []svgPolyline
	DistMean    string
	DistTheory  string

	FramesJSON template.JS
}

// RenderHTML produces a self-contained HTML page with the trajectory,
// the distance chart and an animation of the frames.
func RenderHTML(run Run) ([]byte, error) {
	return renderPage(run, "")
}

// RenderHTMLForServer is RenderHTML with a "New run" button that fetches
// fresh frames from apiBaseURL.
func RenderHTMLForServer(run Run, apiBaseURL string) ([]byte, error) {
	return renderPage(run, apiBaseURL)
}

func renderPage(run Run, apiBase string) ([]byte, error) {
	tr := run.Trajectory
	data := pageData{
		Title:       "Lattice random walk",
		Walkers:     len(tr.Paths),
		Steps:       tr.MaxStep,
		Seed:        run.Seed,
		APIBase:     apiBase,
		Colors:      palette,
		ChartWidth:  chartWidth,
		ChartHeight: chartHeight,
	}

	minX, minY, maxX, maxY := bounds(tr.Paths)
	span := max(maxX-minX, maxY-minY) + 2
	data.TrajViewBox = fmt.Sprintf("%d %d %d %d", minX-1, -maxY-1, span, span)
	data.StrokeWidth = float64(span) / 400
	data.DotRadius = float64(span) / 120

	for i, path := range tr.Paths {
		color := palette[i%len(palette)]
		data.Paths = append(data.Paths, svgPolyline{Color: color, Points: pathPoints(path)})
		end := path[len(path)-1]
		data.Ends = append(data.Ends, svgPoint{X: end.X, Y: -end.Y, Color: color})
	}

	if s := run.Stats; s != nil && len(s.Mean) > 0 {
		data.HasStats = true
		last := len(s.Mean) - 1
		data.FinalMean = s.Mean[last]
		data.FinalTheory = s.Theory[last]

		top := 1.0
		for _, row := range s.PerWalker {
			for _, d := range row {
				top = max(top, d)
			}
		}
		top = max(top, s.Theory[last])

		walkers := len(s.PerWalker[0])
		for i := 0; i < walkers; i++ {
			data.DistWalkers = append(data.DistWalkers, svgPolyline{
				Color:  palette[i%len(palette)],
				Points: chartPoints(s.Time, s.WalkerSeries(i), top),
			})
		}
		data.DistMean = chartPoints(s.Time, s.Mean, top)
		data.DistTheory = chartPoints(s.Time, s.Theory, top)
	}

	framesJSON, err := json.Marshal(CompactFrames(run.Frames))
	if err != nil {
		return nil, fmt.Errorf("marshal frames: %w", err)
	}
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, framesJSON)
	// Pre-sanitized via json.HTMLEscape; only integers reach this payload.
	data.FramesJSON = template.JS(escaped.String()) // #nosec G203

	tmplBytes, err := templates.ReadFile("templates/walk.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}
	tmpl, err := template.New("walk").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

// bounds returns the bounding box of every position, always including the origin.
func bounds(paths [][]walker.Position) (minX, minY, maxX, maxY int) {
	for _, path := range paths {
		for _, p := range path {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	return minX, minY, maxX, maxY
}

// pathPoints formats a path as SVG points with y flipped.
func pathPoints(path []walker.Position) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(p.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(-p.Y))
	}
	return b.String()
}

// chartPoints scales a series into the distance chart's pixel space.
func chartPoints(ts []int, ys []float64, top float64) string {
	last := 1
	if len(ts) > 1 {
		last = ts[len(ts)-1]
	}
	var b strings.Builder
	for i, t := range ts {
		if i > 0 {
			b.WriteByte(' ')
		}
		x := float64(t) / float64(last) * chartWidth
		y := chartHeight - ys[i]/top*chartHeight
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	return b.String()
}
