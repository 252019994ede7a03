package engine

import "math"

// OutcomeProbability is the engine's sole output type at every stage:
// a home-win / draw / away-win triple summing to 1
type OutcomeProbability struct {
	HomeWin float64 `json:"homeWin"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"awayWin"`
}

// NeutralOutcome is the degenerate estimate used when no data is available
func NeutralOutcome() OutcomeProbability {
	third := 1.0 / 3.0
	return OutcomeProbability{HomeWin: third, Draw: third, AwayWin: third}
}

// Normalize rescales the triple so the components sum to exactly 1.
// A zero-sum triple becomes the neutral default rather than dividing by zero.
func (o OutcomeProbability) Normalize() OutcomeProbability {
	total := o.HomeWin + o.Draw + o.AwayWin
	if total <= 0 {
		return NeutralOutcome()
	}
	return OutcomeProbability{
		HomeWin: o.HomeWin / total,
		Draw:    o.Draw / total,
		AwayWin: o.AwayWin / total,
	}
}

// IsValid reports whether each component is a probability and the triple
// sums to 1 within the given tolerance
func (o OutcomeProbability) IsValid(tolerance float64) bool {
	for _, p := range []float64{o.HomeWin, o.Draw, o.AwayWin} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return false
		}
	}
	return math.Abs(o.HomeWin+o.Draw+o.AwayWin-1.0) <= tolerance
}

// Mirror converts an away-perspective triple into the home frame of
// reference: the away side's win is the home side's loss, draws carry over
func (o OutcomeProbability) Mirror() OutcomeProbability {
	return OutcomeProbability{HomeWin: o.AwayWin, Draw: o.Draw, AwayWin: o.HomeWin}
}
