package simulation

import "math"

// DistanceStats holds Euclidean distance-from-origin series for a table.
type DistanceStats struct {
	// Time is [0, 1, ..., rows-1].
	Time []int `json:"time"`

	// PerWalker[t][i] is walker i's distance from the origin at time index t.
	PerWalker [][]float64 `json:"per_walker"`

	// Mean[t] is the mean of PerWalker[t] across walkers.
	Mean []float64 `json:"mean"`

	// Theory[t] is sqrt(t), the reference curve for an unbiased 2D lattice walk.
	Theory []float64 `json:"theory"`
}

// ComputeDistanceStats derives distance series from a table.
// It does not modify the table; repeated calls return equal results.
func ComputeDistanceStats(t *PositionTable) DistanceStats {
	rows, walkers := t.Rows(), t.Walkers()
	stats := DistanceStats{
		Time:      make([]int, rows),
		PerWalker: make([][]float64, rows),
		Mean:      make([]float64, rows),
		Theory:    make([]float64, rows),
	}

	for r := 0; r < rows; r++ {
		stats.Time[r] = r
		stats.Theory[r] = math.Sqrt(float64(r))

		dist := make([]float64, walkers)
		var sum float64
		for i := 0; i < walkers; i++ {
			x, y := float64(t.X[r][i]), float64(t.Y[r][i])
			dist[i] = math.Sqrt(x*x + y*y)
			sum += dist[i]
		}
		stats.PerWalker[r] = dist
		if walkers > 0 {
			stats.Mean[r] = sum / float64(walkers)
		}
	}

	return stats
}

// WalkerSeries returns walker i's distance over time.
func (s DistanceStats) WalkerSeries(i int) []float64 {
	out := make([]float64, len(s.PerWalker))
	for t, row := range s.PerWalker {
		out[t] = row[i]
	}
	return out
}

// FinalMean returns the mean distance at the last time index, or 0 for empty stats.
func (s DistanceStats) FinalMean() float64 {
	if len(s.Mean) == 0 {
		return 0
	}
	return s.Mean[len(s.Mean)-1]
}

// MaxDeviation returns the largest |Mean[t] - Theory[t]|.
func (s DistanceStats) MaxDeviation() float64 {
	var worst float64
	for t := range s.Mean {
		if d := math.Abs(s.Mean[t] - s.Theory[t]); d > worst {
			worst = d
		}
	}
	return worst
}
