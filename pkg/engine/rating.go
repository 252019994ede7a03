package engine

import (
	"math"
	"time"
)

// TimeDecayWeight returns the exponential decay weight for a match played
// at the given date, evaluated at "now". Matches dated in the future
// contribute nothing.
func TimeDecayWeight(matchDate, now time.Time) float64 {
	if matchDate.After(now) {
		return 0.0
	}
	years := now.Sub(matchDate).Hours() / (24.0 * 365.25)
	return math.Exp(-years / Config.DecayYears)
}

// matchWeight combines time decay with the cup discount. Undated
// records and weights below the negligible threshold are zeroed so they
// drop out of the replay entirely.
func matchWeight(m MatchRecord, now time.Time) float64 {
	if !m.HasDate() {
		return 0.0
	}
	w := TimeDecayWeight(m.Date, now)
	if m.IsCup {
		w *= Config.CupWeight
	}
	if w < Config.NegligibleWeight {
		return 0.0
	}
	return w
}

// ExpectedScore is the logistic expectation of team A scoring against
// team B given their ratings
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10.0, (ratingB-ratingA)/Config.RatingScale))
}

// TeamRating replays a team's history in date order, maintaining an
// evolving rating for the team and every opponent it has faced. Each
// result moves both ratings by the weighted Elo update. Returns the
// team's final rating.
func TeamRating(records []MatchRecord, teamID string, now time.Time) float64 {
	sorted := SortByDate(records)
	ratings := map[string]float64{teamID: Config.InitialRating}

	for _, m := range sorted {
		if !m.Involves(teamID) {
			continue
		}
		w := matchWeight(m, now)
		if w == 0.0 {
			continue
		}

		opponent := m.OpponentOf(teamID)
		if _, ok := ratings[opponent]; !ok {
			ratings[opponent] = Config.InitialRating
		}

		ra := ratings[teamID]
		rb := ratings[opponent]
		if m.PlayedAtHome(teamID) {
			ra += Config.HomeBonus
		} else {
			rb += Config.HomeBonus
		}

		expected := ExpectedScore(ra, rb)
		actual := m.ResultPoint(teamID)

		delta := Config.KFactor * w * (actual - expected)
		ratings[teamID] += delta
		ratings[opponent] -= delta
	}

	return ratings[teamID]
}

// HeadToHeadRatings replays only the matches the two teams played against
// each other and returns both final ratings. With no mutual history both
// come back at the initial rating.
func HeadToHeadRatings(records []MatchRecord, teamA, teamB string, now time.Time) (float64, float64) {
	sorted := SortByDate(records)
	ra := Config.InitialRating
	rb := Config.InitialRating

	for _, m := range sorted {
		if !m.Involves(teamA) || !m.Involves(teamB) {
			continue
		}
		w := matchWeight(m, now)
		if w == 0.0 {
			continue
		}

		ea := ra
		eb := rb
		if m.PlayedAtHome(teamA) {
			ea += Config.HomeBonus
		} else {
			eb += Config.HomeBonus
		}

		expected := ExpectedScore(ea, eb)
		actual := m.ResultPoint(teamA)

		delta := Config.KFactor * w * (actual - expected)
		ra += delta
		rb -= delta
	}

	return ra, rb
}

// RatingOutcome converts two ratings into a home-framed outcome triple.
// The draw share widens as the rating gap closes, so evenly matched
// sides draw more often than mismatched ones.
func RatingOutcome(homeRating, awayRating float64) OutcomeProbability {
	effective := homeRating + Config.HomeBonus
	gap := effective - awayRating

	draw := Config.DrawBaseline + Config.DrawRange*math.Exp(-math.Abs(gap)/Config.DrawGapScale)
	expected := ExpectedScore(effective, awayRating)

	out := OutcomeProbability{
		HomeWin: expected * (1.0 - draw),
		Draw:    draw,
		AwayWin: (1.0 - expected) * (1.0 - draw),
	}
	return out.Normalize()
}
