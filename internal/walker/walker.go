// Package walker implements a single 2D lattice random walker.
package walker

import "fmt"

// Move is one of the four unit moves on the square lattice.
type Move int

const (
	Up Move = iota
	Down
	Left
	Right
)

// NumMoves is the size of the move set. Sources are asked for a value in [0, NumMoves).
const NumMoves = 4

// displacement maps each move to its (dx, dy).
var displacement = [NumMoves][2]int{
	Up:    {0, 1},
	Down:  {0, -1},
	Left:  {-1, 0},
	Right: {1, 0},
}

// Delta returns the displacement applied by m.
func (m Move) Delta() (dx, dy int) {
	d := displacement[m]
	return d[0], d[1]
}

func (m Move) String() string {
	switch m {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Move(%d)", int(m))
	}
}

// Position is a point on the integer lattice.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Walker holds the current position of one random walker.
// The zero value is a walker at the origin.
type Walker struct {
	X int
	Y int
}

// Position returns the walker's current position.
func (w *Walker) Position() Position {
	return Position{X: w.X, Y: w.Y}
}

// Step moves the walker one unit in a direction chosen uniformly by src
// and returns the move taken.
func (w *Walker) Step(src MoveSource) Move {
	m := Move(src.IntN(NumMoves))
	dx, dy := m.Delta()
	w.X += dx
	w.Y += dy
	return m
}
