package engine

// TransitionMatrix maps half-time states to full-time states from one
// team's own perspective. Rows and columns are indexed win, draw, loss;
// every row sums to one.
type TransitionMatrix [3][3]float64

// PriorTransitionMatrix encodes the baseline tendency for half-time
// states to persist: leads usually hold, level games stay open
func PriorTransitionMatrix() TransitionMatrix {
	return TransitionMatrix{
		{0.6, 0.3, 0.1},
		{0.3, 0.4, 0.3},
		{0.1, 0.3, 0.6},
	}
}

func stateIndex(scored, conceded int) int {
	switch {
	case scored > conceded:
		return 0
	case scored == conceded:
		return 1
	default:
		return 2
	}
}

// EmpiricalTransitionMatrix counts half-time to full-time state moves in
// a team's history. Rows with no observations fall back to the prior row
// so the matrix is always row stochastic.
func EmpiricalTransitionMatrix(records []MatchRecord, teamID string) TransitionMatrix {
	prior := PriorTransitionMatrix()
	if !Config.UseEmpiricalTransitions {
		return prior
	}

	var counts [3][3]int
	for _, m := range records {
		if !m.Involves(teamID) {
			continue
		}
		htScored, htConceded := m.HalfTimeGoalsFor(teamID)
		ftScored, ftConceded := m.GoalsFor(teamID)
		counts[stateIndex(htScored, htConceded)][stateIndex(ftScored, ftConceded)]++
	}

	var matrix TransitionMatrix
	for row := 0; row < 3; row++ {
		total := counts[row][0] + counts[row][1] + counts[row][2]
		if total == 0 {
			matrix[row] = prior[row]
			continue
		}
		for col := 0; col < 3; col++ {
			matrix[row][col] = float64(counts[row][col]) / float64(total)
		}
	}
	return matrix
}

// Merge averages two matrices element-wise. Used to blend both sides'
// tendencies into a single fixture matrix.
func (t TransitionMatrix) Merge(other TransitionMatrix) TransitionMatrix {
	var merged TransitionMatrix
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			merged[row][col] = (t[row][col] + other[row][col]) / 2.0
		}
	}
	return merged
}

// Project pushes a half-time state distribution through the matrix to a
// full-time distribution, both from the same team's perspective
func (t TransitionMatrix) Project(halfTime OutcomeTriple) OutcomeTriple {
	ht := [3]float64{halfTime.Win, halfTime.Draw, halfTime.Loss}
	var ft [3]float64
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			ft[col] += ht[row] * t[row][col]
		}
	}
	return OutcomeTriple{Win: ft[0], Draw: ft[1], Loss: ft[2]}
}

// TransitionOutcome projects both teams' half-time tendencies through
// the merged fixture matrix and averages the results in the home frame.
// The away side's triple is mirrored (its win is the home side's loss)
// before averaging.
func TransitionOutcome(records []MatchRecord, home, away *TeamPerformance) OutcomeProbability {
	matrix := EmpiricalTransitionMatrix(records, home.TeamID).
		Merge(EmpiricalTransitionMatrix(records, away.TeamID))

	homeFT := matrix.Project(home.HalfTimeResults)
	awayFT := matrix.Project(away.HalfTimeResults)

	homeView := homeFT.AsProbability()
	awayView := awayFT.AsProbability().Mirror()

	out := OutcomeProbability{
		HomeWin: (homeView.HomeWin + awayView.HomeWin) / 2.0,
		Draw:    (homeView.Draw + awayView.Draw) / 2.0,
		AwayWin: (homeView.AwayWin + awayView.AwayWin) / 2.0,
	}
	return out.Normalize()
}
