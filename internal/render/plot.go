package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/simulation"
	"github.com/nvandessel/latwalk/internal/walker"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var dashed = []vg.Length{vg.Points(4), vg.Points(3)}

// PlotRenderer writes PNG images with gonum/plot:
// frames/f_00000.png per frame, trajectory.png and distance.png.
type PlotRenderer struct {
	dir       string
	framesDir string
	framesOK  bool
}

// NewPlotRenderer creates a renderer writing under dir.
func NewPlotRenderer(dir string) *PlotRenderer {
	return &PlotRenderer{
		dir:       dir,
		framesDir: filepath.Join(dir, constants.FramesDirName),
	}
}

// FramePath returns the file a frame with the given index is written to.
func (r *PlotRenderer) FramePath(index int) string {
	return filepath.Join(r.framesDir, fmt.Sprintf(constants.FrameNameFormat, index))
}

func (r *PlotRenderer) OnFrame(f simulation.Frame) error {
	if !r.framesOK {
		if err := os.MkdirAll(r.framesDir, 0755); err != nil {
			return fmt.Errorf("creating frames directory: %w", err)
		}
		r.framesOK = true
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("t = %d", f.Step)
	half := float64(BoxSide(f.MaxStep)) / 2
	p.X.Min, p.X.Max = -half, half
	p.Y.Min, p.Y.Max = -half, half

	for i, trail := range f.Trails {
		line, err := plotter.NewLine(toXYs(trail))
		if err != nil {
			return fmt.Errorf("frame %d trail %d: %w", f.Index, i, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(0.8)
		p.Add(line)
	}

	for i, pos := range f.Positions {
		dot, err := plotter.NewScatter(toXYs([]walker.Position{pos}))
		if err != nil {
			return fmt.Errorf("frame %d walker %d: %w", f.Index, i, err)
		}
		dot.GlyphStyle.Color = plotutil.Color(i)
		dot.GlyphStyle.Shape = draw.CircleGlyph{}
		dot.GlyphStyle.Radius = vg.Points(3)
		p.Add(dot)
	}

	if err := savePlot(p, r.FramePath(f.Index)); err != nil {
		return fmt.Errorf("saving frame %d: %w", f.Index, err)
	}
	return nil
}

func (r *PlotRenderer) OnFinalTrajectory(t simulation.Trajectory) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trajectories of %d walkers, %d steps", len(t.Paths), t.MaxStep)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	for i, path := range t.Paths {
		line, err := plotter.NewLine(toXYs(path))
		if err != nil {
			return fmt.Errorf("trajectory walker %d: %w", i, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1)

		end, err := plotter.NewScatter(toXYs(path[len(path)-1:]))
		if err != nil {
			return fmt.Errorf("trajectory walker %d: %w", i, err)
		}
		end.GlyphStyle.Color = plotutil.Color(i)
		end.GlyphStyle.Shape = draw.CircleGlyph{}
		end.GlyphStyle.Radius = vg.Points(3)
		p.Add(line, end)
	}

	if err := savePlot(p, filepath.Join(r.dir, constants.TrajectoryFileName)); err != nil {
		return fmt.Errorf("saving trajectory: %w", err)
	}
	return nil
}

func (r *PlotRenderer) OnDistanceStats(s simulation.DistanceStats) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = "Distance from origin"
	p.X.Label.Text = "t"
	p.Y.Label.Text = "distance"
	p.Legend.Top = true
	p.Legend.Left = true

	walkers := 0
	if len(s.PerWalker) > 0 {
		walkers = len(s.PerWalker[0])
	}
	for i := 0; i < walkers; i++ {
		line, err := plotter.NewLine(seriesXYs(s.Time, s.WalkerSeries(i)))
		if err != nil {
			return fmt.Errorf("distance walker %d: %w", i, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Dashes = dashed
		p.Add(line)
	}

	mean, err := plotter.NewLine(seriesXYs(s.Time, s.Mean))
	if err != nil {
		return fmt.Errorf("distance mean: %w", err)
	}
	mean.LineStyle.Width = vg.Points(2.5)
	mean.LineStyle.Dashes = dashed

	theory, err := plotter.NewLine(seriesXYs(s.Time, s.Theory))
	if err != nil {
		return fmt.Errorf("distance theory: %w", err)
	}
	theory.LineStyle.Width = vg.Points(1.5)
	theory.LineStyle.Color = plotutil.Color(walkers)

	p.Add(mean, theory)
	p.Legend.Add("mean distance", mean)
	p.Legend.Add("sqrt(t)", theory)

	if err := savePlot(p, filepath.Join(r.dir, constants.DistanceFileName)); err != nil {
		return fmt.Errorf("saving distance plot: %w", err)
	}
	return nil
}

func savePlot(p *plot.Plot, path string) error {
	size := vg.Length(constants.PlotSizeInches) * vg.Inch
	return p.Save(size, size, path)
}

func toXYs(ps []walker.Position) plotter.XYs {
	xys := make(plotter.XYs, len(ps))
	for i, p := range ps {
		xys[i].X = float64(p.X)
		xys[i].Y = float64(p.Y)
	}
	return xys
}

func seriesXYs(ts []int, ys []float64) plotter.XYs {
	xys := make(plotter.XYs, len(ts))
	for i, t := range ts {
		xys[i].X = float64(t)
		xys[i].Y = ys[i]
	}
	return xys
}
