package engine

// TeamPerformance is the derived aggregate over one team's match history.
// It is recomputed fresh for every prediction request and never mutated.
type TeamPerformance struct {
	TeamID       string
	TotalMatches int

	// Goals per match, overall and split by venue
	AttackEfficiency  float64
	DefenseEfficiency float64
	HomeAttack        float64
	HomeDefense       float64
	AwayAttack        float64
	AwayDefense       float64

	// Goals per match split by half
	FirstHalfAttack   float64
	FirstHalfDefense  float64
	SecondHalfAttack  float64
	SecondHalfDefense float64

	// Result frequencies (smoothed per configuration)
	FullTimeResults OutcomeTriple
	HalfTimeResults OutcomeTriple

	// Raw counts behind the frequencies
	Wins, Draws, Losses                            int
	FirstHalfWins, FirstHalfDraws, FirstHalfLosses int
}

// OutcomeTriple is a win/draw/loss probability vector from one team's
// own perspective (not the fixture's home frame)
type OutcomeTriple struct {
	Win  float64 `json:"win"`
	Draw float64 `json:"draw"`
	Loss float64 `json:"loss"`
}

// AsProbability reads the triple as a home-framed outcome, with the
// subject team's win mapped to the home win slot
func (o OutcomeTriple) AsProbability() OutcomeProbability {
	return OutcomeProbability{HomeWin: o.Win, Draw: o.Draw, AwayWin: o.Loss}
}

// ComputeTeamPerformance aggregates a team's records into attack/defense
// efficiencies, half splits and result frequencies. Returns nil for an
// empty history; callers treat that as missing data.
func ComputeTeamPerformance(records []MatchRecord, teamID string) *TeamPerformance {
	if len(records) == 0 {
		return nil
	}

	p := &TeamPerformance{TeamID: teamID}

	var goalsScored, goalsConceded int
	var homeScored, homeConceded, awayScored, awayConceded int
	var homeGames, awayGames int
	var firstHalfScored, firstHalfConceded, secondHalfScored, secondHalfConceded int

	for _, m := range records {
		if !m.Involves(teamID) {
			continue
		}
		p.TotalMatches++

		scored, conceded := m.GoalsFor(teamID)
		htScored, htConceded := m.HalfTimeGoalsFor(teamID)

		goalsScored += scored
		goalsConceded += conceded
		firstHalfScored += htScored
		firstHalfConceded += htConceded
		secondHalfScored += scored - htScored
		secondHalfConceded += conceded - htConceded

		if m.PlayedAtHome(teamID) {
			homeGames++
			homeScored += scored
			homeConceded += conceded
		} else {
			awayGames++
			awayScored += scored
			awayConceded += conceded
		}

		switch {
		case scored > conceded:
			p.Wins++
		case scored == conceded:
			p.Draws++
		default:
			p.Losses++
		}

		switch {
		case htScored > htConceded:
			p.FirstHalfWins++
		case htScored == htConceded:
			p.FirstHalfDraws++
		default:
			p.FirstHalfLosses++
		}
	}

	if p.TotalMatches == 0 {
		return nil
	}

	n := float64(p.TotalMatches)
	p.AttackEfficiency = float64(goalsScored) / n
	p.DefenseEfficiency = float64(goalsConceded) / n
	p.FirstHalfAttack = float64(firstHalfScored) / n
	p.FirstHalfDefense = float64(firstHalfConceded) / n
	p.SecondHalfAttack = float64(secondHalfScored) / n
	p.SecondHalfDefense = float64(secondHalfConceded) / n

	// Venue splits fall back to the overall efficiency when the team has
	// no matches in that venue
	if homeGames > 0 {
		p.HomeAttack = float64(homeScored) / float64(homeGames)
		p.HomeDefense = float64(homeConceded) / float64(homeGames)
	} else {
		p.HomeAttack = p.AttackEfficiency
		p.HomeDefense = p.DefenseEfficiency
	}
	if awayGames > 0 {
		p.AwayAttack = float64(awayScored) / float64(awayGames)
		p.AwayDefense = float64(awayConceded) / float64(awayGames)
	} else {
		p.AwayAttack = p.AttackEfficiency
		p.AwayDefense = p.DefenseEfficiency
	}

	w, d, l := resultFrequencies(p.Wins, p.Draws, p.Losses)
	p.FullTimeResults = OutcomeTriple{Win: w, Draw: d, Loss: l}

	w, d, l = resultFrequencies(p.FirstHalfWins, p.FirstHalfDraws, p.FirstHalfLosses)
	p.HalfTimeResults = OutcomeTriple{Win: w, Draw: d, Loss: l}

	return p
}
