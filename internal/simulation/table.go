package simulation

import (
	"fmt"

	"github.com/nvandessel/latwalk/internal/walker"
)

// PositionTable holds every walker's position at every time index.
// X[t][i] and Y[t][i] are walker i's coordinates after time index t.
// Rows are allocated once and never resized.
type PositionTable struct {
	X [][]int
	Y [][]int
}

// NewPositionTable allocates a rows × walkers table of zeros.
func NewPositionTable(rows, walkers int) *PositionTable {
	xs := make([]int, rows*walkers)
	ys := make([]int, rows*walkers)
	t := &PositionTable{
		X: make([][]int, rows),
		Y: make([][]int, rows),
	}
	for r := 0; r < rows; r++ {
		t.X[r] = xs[r*walkers : (r+1)*walkers : (r+1)*walkers]
		t.Y[r] = ys[r*walkers : (r+1)*walkers : (r+1)*walkers]
	}
	return t
}

// TableFromPaths rebuilds a table from per-walker paths of equal length.
func TableFromPaths(paths [][]walker.Position) (*PositionTable, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no walker paths")
	}
	rows := len(paths[0])
	for i, p := range paths {
		if len(p) != rows {
			return nil, fmt.Errorf("walker %d has %d rows, want %d", i, len(p), rows)
		}
	}
	t := NewPositionTable(rows, len(paths))
	for i, p := range paths {
		for r, pos := range p {
			t.X[r][i] = pos.X
			t.Y[r][i] = pos.Y
		}
	}
	return t, nil
}

// Rows returns the number of time indices the table holds.
func (t *PositionTable) Rows() int {
	return len(t.X)
}

// Walkers returns the number of walkers the table holds.
func (t *PositionTable) Walkers() int {
	if len(t.X) == 0 {
		return 0
	}
	return len(t.X[0])
}

// At returns walker i's position at time index row.
func (t *PositionTable) At(row, i int) walker.Position {
	return walker.Position{X: t.X[row][i], Y: t.Y[row][i]}
}

// Set records walker i's position at time index row.
func (t *PositionTable) Set(row, i int, p walker.Position) {
	t.X[row][i] = p.X
	t.Y[row][i] = p.Y
}

// Row returns every walker's position at time index row.
func (t *PositionTable) Row(row int) []walker.Position {
	out := make([]walker.Position, t.Walkers())
	for i := range out {
		out[i] = t.At(row, i)
	}
	return out
}

// Paths returns, for every walker, its positions over rows [0, upto].
// The result is a copy.
func (t *PositionTable) Paths(upto int) [][]walker.Position {
	n := t.Walkers()
	paths := make([][]walker.Position, n)
	for i := 0; i < n; i++ {
		p := make([]walker.Position, upto+1)
		for r := 0; r <= upto; r++ {
			p[r] = t.At(r, i)
		}
		paths[i] = p
	}
	return paths
}
