package walker

import (
	"math/rand/v2"
	"time"
)

// MoveSource supplies move indices. IntN must return a value in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type MoveSource interface {
	IntN(n int) int
}

// NewSource returns a PCG-backed source. A zero seed is replaced by one
// derived from the clock; the seed actually used is returned so runs can be
// reproduced.
func NewSource(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// Always returns a source that picks m on every step.
func Always(m Move) MoveSource {
	return fixedSource(m)
}

type fixedSource Move

func (f fixedSource) IntN(n int) int {
	return int(f) % n
}

// Sequence returns a source that cycles through moves in order.
func Sequence(moves ...Move) MoveSource {
	if len(moves) == 0 {
		moves = []Move{Up}
	}
	return &sequenceSource{moves: moves}
}

type sequenceSource struct {
	moves []Move
	next  int
}

func (s *sequenceSource) IntN(n int) int {
	m := s.moves[s.next%len(s.moves)]
	s.next++
	return int(m) % n
}
