// Package render turns simulation events into files and screen output.
//
// Each renderer implements simulation.Renderer and owns all of its I/O.
// New assembles the renderers selected by a list of output formats.
package render

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/nvandessel/latwalk/internal/constants"
	"github.com/nvandessel/latwalk/internal/logging"
	"github.com/nvandessel/latwalk/internal/simulation"
)

// Options selects and configures renderers.
type Options struct {
	// Dir receives PNG and Arrow output.
	Dir string

	// Formats selects the renderers. FormatHTML is handled by the caller
	// because the page needs the whole run; it is ignored here.
	Formats []constants.OutputFormat

	// Screen is required when FormatTerminal is selected.
	Screen tcell.Screen

	// FrameDelay pauses the terminal renderer after each frame.
	FrameDelay time.Duration

	// Events, when non-nil, receives a trace of every event.
	Events *logging.EventLogger
}

// New builds one renderer per selected format, plus the event trace.
func New(opts Options) (simulation.MultiRenderer, error) {
	var renderers []simulation.Renderer
	for _, f := range opts.Formats {
		switch f {
		case constants.FormatPNG:
			renderers = append(renderers, NewPlotRenderer(opts.Dir))
		case constants.FormatArrow:
			renderers = append(renderers, NewArrowRenderer(opts.Dir))
		case constants.FormatTerminal:
			if opts.Screen == nil {
				return nil, fmt.Errorf("terminal format requires a screen")
			}
			renderers = append(renderers, NewTerminalRenderer(opts.Screen, opts.FrameDelay))
		case constants.FormatHTML:
		default:
			return nil, fmt.Errorf("unknown output format %q", f)
		}
	}
	if opts.Events != nil {
		renderers = append(renderers, NewEventTrace(opts.Events))
	}
	return simulation.NewMultiRenderer(renderers...), nil
}

// BoxSide returns the side length of the square window used to draw frames:
// int(sqrt(maxStep)) * BoxScale, never smaller than BoxScale.
func BoxSide(maxStep int) int {
	side := int(math.Sqrt(float64(maxStep))) * constants.BoxScale
	if side < constants.BoxScale {
		side = constants.BoxScale
	}
	return side
}
