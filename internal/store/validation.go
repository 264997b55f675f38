package store

import (
	"fmt"
)

// ValidationError describes an inconsistency in a stored run.
type ValidationError struct {
	Step   int    `json:"step"`
	Walker int    `json:"walker"`
	Issue  string `json:"issue"` // "shape", "origin", "jump"
	Detail string `json:"detail"`
}

// String returns a human-readable description of the validation error.
func (e ValidationError) String() string {
	if e.Issue == "shape" {
		return fmt.Sprintf("%s: %s", e.Issue, e.Detail)
	}
	return fmt.Sprintf("%s at step %d walker %d: %s", e.Issue, e.Step, e.Walker, e.Detail)
}

// ValidateRun checks that a run's table is a valid lattice walk:
//   - the table has Steps+1 rows and Walkers columns
//   - row 0 is the origin (RecordOrigin) or one unit from it
//   - consecutive rows differ by exactly one unit on exactly one axis
func ValidateRun(r *Run) []ValidationError {
	var issues []ValidationError
	t := r.Table
	if t == nil {
		return []ValidationError{{Issue: "shape", Detail: "run has no position table"}}
	}
	if t.Rows() != r.Config.Steps+1 || t.Walkers() != r.Config.Walkers {
		return []ValidationError{{
			Issue:  "shape",
			Detail: fmt.Sprintf("table is %dx%d, config wants %dx%d", t.Rows(), t.Walkers(), r.Config.Steps+1, r.Config.Walkers),
		}}
	}

	wantFirst := 1
	if r.Config.RecordOrigin {
		wantFirst = 0
	}
	for w := 0; w < t.Walkers(); w++ {
		p := t.At(0, w)
		if d := abs(p.X) + abs(p.Y); d != wantFirst {
			issues = append(issues, ValidationError{
				Step: 0, Walker: w, Issue: "origin",
				Detail: fmt.Sprintf("first row at (%d,%d), want distance %d from origin", p.X, p.Y, wantFirst),
			})
		}
	}

	for step := 1; step < t.Rows(); step++ {
		for w := 0; w < t.Walkers(); w++ {
			prev, cur := t.At(step-1, w), t.At(step, w)
			if abs(cur.X-prev.X)+abs(cur.Y-prev.Y) != 1 {
				issues = append(issues, ValidationError{
					Step: step, Walker: w, Issue: "jump",
					Detail: fmt.Sprintf("(%d,%d) -> (%d,%d)", prev.X, prev.Y, cur.X, cur.Y),
				})
			}
		}
	}

	return issues
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
