package constants

// OutputFormat names a renderer that a run can feed.
type OutputFormat string

const (
	// FormatPNG writes frame, trajectory and distance plots as PNG images.
	FormatPNG OutputFormat = "png"

	// FormatArrow writes the trajectory and distance series as Arrow IPC files.
	FormatArrow OutputFormat = "arrow"

	// FormatHTML writes a self-contained HTML report.
	FormatHTML OutputFormat = "html"

	// FormatTerminal animates frames in the terminal.
	FormatTerminal OutputFormat = "terminal"
)

// AllFormats lists every recognized output format.
var AllFormats = []OutputFormat{FormatPNG, FormatArrow, FormatHTML, FormatTerminal}

// Valid returns true if the format is a recognized value.
func (f OutputFormat) Valid() bool {
	switch f {
	case FormatPNG, FormatArrow, FormatHTML, FormatTerminal:
		return true
	}
	return false
}

// String returns the string representation of the format.
func (f OutputFormat) String() string {
	return string(f)
}
