package engine

import (
	"math"
	"time"
)

// CommonOpponentAnalysis captures how two teams fared against the
// opponents they have both faced.
type CommonOpponentAnalysis struct {
	Opponents     []string
	HomeQuality   float64
	AwayQuality   float64
	StrengthRatio float64
}

// CommonOpponents finds every team that appears in both sides' histories,
// excluding the two participants themselves
func CommonOpponents(records []MatchRecord, homeID, awayID string) []string {
	homeSeen := map[string]bool{}
	awaySeen := map[string]bool{}
	for _, m := range records {
		if m.Involves(homeID) {
			opp := m.OpponentOf(homeID)
			if opp != awayID {
				homeSeen[opp] = true
			}
		}
		if m.Involves(awayID) {
			opp := m.OpponentOf(awayID)
			if opp != homeID {
				awaySeen[opp] = true
			}
		}
	}

	var shared []string
	for opp := range homeSeen {
		if awaySeen[opp] {
			shared = append(shared, opp)
		}
	}
	return shared
}

// qualityAgainst averages the result points a team took from its matches
// against one opponent (1 win, 0.5 draw, 0 loss)
func qualityAgainst(records []MatchRecord, teamID, opponentID string) (float64, bool) {
	var total float64
	var n int
	for _, m := range records {
		if m.Involves(teamID) && m.OpponentOf(teamID) == opponentID {
			total += m.ResultPoint(teamID)
			n++
		}
	}
	if n == 0 {
		return 0.0, false
	}
	return total / float64(n), true
}

// AnalyzeCommonOpponents scores both teams against their shared opponents.
// Per-opponent result quality is averaged first so a team that played one
// opponent many times does not dominate the comparison. With no shared
// opponents (or both qualities zero) the ratio sits at the neutral 0.5.
func AnalyzeCommonOpponents(records []MatchRecord, homeID, awayID string) CommonOpponentAnalysis {
	analysis := CommonOpponentAnalysis{
		Opponents:     CommonOpponents(records, homeID, awayID),
		StrengthRatio: 0.5,
	}
	if len(analysis.Opponents) == 0 {
		return analysis
	}

	var homeSum, awaySum float64
	for _, opp := range analysis.Opponents {
		if q, ok := qualityAgainst(records, homeID, opp); ok {
			homeSum += q
		}
		if q, ok := qualityAgainst(records, awayID, opp); ok {
			awaySum += q
		}
	}
	n := float64(len(analysis.Opponents))
	analysis.HomeQuality = homeSum / n
	analysis.AwayQuality = awaySum / n

	if total := analysis.HomeQuality + analysis.AwayQuality; total > 0 {
		analysis.StrengthRatio = analysis.HomeQuality / total
	}
	return analysis
}

// AdjustmentFactor converts a strength ratio into a bounded multiplier
// delta for the goal expectancies. Confidence saturates with the number
// of shared opponents so a single common opponent barely moves the dial.
func AdjustmentFactor(analysis CommonOpponentAnalysis) float64 {
	n := float64(len(analysis.Opponents))
	if n == 0 {
		return 0.0
	}
	confidence := 1.0 - math.Exp(-n/Config.AdjustmentSaturation)
	return Config.MaxAdjustment * confidence * (analysis.StrengthRatio - 0.5) * 2.0
}

// StrengthScores sums decayed goal differences over the most recent match
// each team played against every shared opponent. Older matches decay
// linearly and bottom out at zero.
func StrengthScores(records []MatchRecord, homeID, awayID string, now time.Time) (float64, float64) {
	shared := CommonOpponents(records, homeID, awayID)
	var homeScore, awayScore float64
	for _, opp := range shared {
		homeScore += decayedGoalDiff(records, homeID, opp, now)
		awayScore += decayedGoalDiff(records, awayID, opp, now)
	}
	return homeScore, awayScore
}

func decayedGoalDiff(records []MatchRecord, teamID, opponentID string, now time.Time) float64 {
	var latest *MatchRecord
	for i := range records {
		m := &records[i]
		if !m.Involves(teamID) || m.OpponentOf(teamID) != opponentID {
			continue
		}
		if latest == nil || m.Date.After(latest.Date) {
			latest = m
		}
	}
	if latest == nil {
		return 0.0
	}

	scored, conceded := latest.GoalsFor(teamID)
	diff := float64(scored - conceded)

	decay := 1.0
	if latest.HasDate() {
		days := now.Sub(latest.Date).Hours() / 24.0
		if days > 0 {
			decay = 1.0 - (days/Config.StrengthDecayDays)*Config.StrengthDecayRate
			if decay < 0 {
				decay = 0.0
			}
		}
	}
	return diff * decay
}
