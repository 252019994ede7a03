package engine

import "math"

// ExpectedGoals derives the Poisson means for both sides of a fixture
// from the teams' venue-specific efficiencies, applies the common
// opponent adjustment and then the sanity constraints.
func ExpectedGoals(home, away *TeamPerformance, adjustment float64) (float64, float64) {
	expHome := home.HomeAttack * away.AwayDefense * Config.HomeAdvantageFactor
	expAway := away.AwayAttack * home.HomeDefense

	// Common opponent evidence nudges both means in opposite directions
	expHome *= 1.0 + adjustment
	expAway *= 1.0 - adjustment

	return constrainGoals(expHome, expAway, home.HomeAttack, away.AwayAttack)
}

// constrainGoals clamps both means to the allowed range, caps their
// ratio, shrinks them toward the league average, and finally ties each
// mean back to its side's own attack efficiency so a team's expectancy
// never drifts beyond the band around what it actually scores.
func constrainGoals(expHome, expAway, homeAttack, awayAttack float64) (float64, float64) {
	expHome = clampGoals(expHome)
	expAway = clampGoals(expAway)

	larger, smaller := expHome, expAway
	if expAway > expHome {
		larger, smaller = expAway, expHome
	}
	if smaller > 0 && larger/smaller > Config.MaxGoalRatio {
		larger = smaller * Config.MaxGoalRatio
		if expHome > expAway {
			expHome = larger
		} else {
			expAway = larger
		}
	}

	shrink := Config.ShrinkageFactor
	expHome = expHome*(1.0-shrink) + Config.LeagueAverageGoals*shrink
	expAway = expAway*(1.0-shrink) + Config.LeagueAverageGoals*shrink

	expHome = efficiencyBand(expHome, homeAttack)
	expAway = efficiencyBand(expAway, awayAttack)

	return clampGoals(expHome), clampGoals(expAway)
}

// efficiencyBand keeps an expectancy within a multiplicative band of the
// side's own attack rate. The epsilon guards rates of exactly zero.
func efficiencyBand(expected, attack float64) float64 {
	ratio := expected / (attack + 0.001)
	if ratio < Config.EfficiencyBandLow {
		return attack * Config.EfficiencyBandLow
	}
	if ratio > Config.EfficiencyBandHigh {
		return attack * Config.EfficiencyBandHigh
	}
	return expected
}

func clampGoals(e float64) float64 {
	if e < Config.MinExpectedGoals {
		return Config.MinExpectedGoals
	}
	if e > Config.MaxExpectedGoals {
		return Config.MaxExpectedGoals
	}
	return e
}

// PoissonPMF is the probability of exactly k events at mean lambda
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda <= 0 {
		return 0.0
	}
	logP := float64(k)*math.Log(lambda) - lambda - logFactorial(k)
	return math.Exp(logP)
}

func logFactorial(k int) float64 {
	var sum float64
	for i := 2; i <= k; i++ {
		sum += math.Log(float64(i))
	}
	return sum
}

// ScoreGrid is the joint probability of every scoreline up to MaxGoals
// per side, indexed [homeGoals][awayGoals]
type ScoreGrid [][]float64

// BuildScoreGrid evaluates the independent Poisson product over the
// scoreline grid
func BuildScoreGrid(expHome, expAway float64) ScoreGrid {
	size := Config.MaxGoals + 1
	grid := make(ScoreGrid, size)
	for h := 0; h < size; h++ {
		grid[h] = make([]float64, size)
		ph := PoissonPMF(h, expHome)
		for a := 0; a < size; a++ {
			grid[h][a] = ph * PoissonPMF(a, expAway)
		}
	}
	return grid
}

// Outcome sums the grid triangles into a home win / draw / away win
// triple. The grid truncates at MaxGoals so the sums are renormalized
// to absorb the missing tail mass.
func (g ScoreGrid) Outcome() OutcomeProbability {
	var out OutcomeProbability
	for h := range g {
		for a := range g[h] {
			switch {
			case h > a:
				out.HomeWin += g[h][a]
			case h == a:
				out.Draw += g[h][a]
			default:
				out.AwayWin += g[h][a]
			}
		}
	}
	return out.Normalize()
}

// MostLikelyScore returns the scoreline with the highest joint
// probability. Ties resolve to the lower scoreline.
func (g ScoreGrid) MostLikelyScore() (int, int) {
	bestH, bestA := 0, 0
	best := -1.0
	for h := range g {
		for a := range g[h] {
			if g[h][a] > best {
				best = g[h][a]
				bestH, bestA = h, a
			}
		}
	}
	return bestH, bestA
}

// PoissonOutcome is the full pipeline from team performances to a
// home-framed outcome triple
func PoissonOutcome(home, away *TeamPerformance, adjustment float64) OutcomeProbability {
	expHome, expAway := ExpectedGoals(home, away, adjustment)
	return BuildScoreGrid(expHome, expAway).Outcome()
}
