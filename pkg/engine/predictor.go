package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/richard-senior/podds/internal/logger"
)

// PredictionRequest carries everything needed to price one fixture
type PredictionRequest struct {
	HomeID   string        `json:"homeId"`
	HomeName string        `json:"homeName,omitempty"`
	AwayID   string        `json:"awayId"`
	AwayName string        `json:"awayName,omitempty"`
	History  []MatchRecord `json:"history"`
	// Now anchors time decay. Zero means time.Now().
	Now time.Time `json:"-"`
}

// Prediction is the combined output plus the per-source intermediates
// kept for diagnostics and tuning
type Prediction struct {
	HomeID     string             `json:"homeId"`
	AwayID     string             `json:"awayId"`
	Outcome    OutcomeProbability `json:"outcome"`
	Poisson    OutcomeProbability `json:"poisson"`
	Transition OutcomeProbability `json:"transition"`
	Rating     OutcomeProbability `json:"rating"`

	ExpectedHomeGoals float64 `json:"expectedHomeGoals"`
	ExpectedAwayGoals float64 `json:"expectedAwayGoals"`
	LikelyHomeGoals   int     `json:"likelyHomeGoals"`
	LikelyAwayGoals   int     `json:"likelyAwayGoals"`
	HomeRating        float64 `json:"homeRating"`
	AwayRating        float64 `json:"awayRating"`
	CommonOpponents   int     `json:"commonOpponents"`
	Adjustment        float64 `json:"adjustment"`
	HomeStrength      float64 `json:"homeStrength"`
	AwayStrength      float64 `json:"awayStrength"`
	HomeH2HRating     float64 `json:"homeH2HRating"`
	AwayH2HRating     float64 `json:"awayH2HRating"`
	Neutral           bool    `json:"neutral,omitempty"`
}

// Predict prices a single fixture. A request with no usable history for
// either side comes back as the neutral triple rather than an error.
func Predict(req PredictionRequest) (*Prediction, error) {
	if req.HomeID == "" || req.AwayID == "" {
		return nil, fmt.Errorf("prediction requires both team ids")
	}
	if req.HomeID == req.AwayID {
		return nil, fmt.Errorf("team %s cannot play itself", req.HomeID)
	}
	if err := ValidateRecords(req.History); err != nil {
		return nil, fmt.Errorf("invalid match history: %w", err)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	p := &Prediction{HomeID: req.HomeID, AwayID: req.AwayID}

	home := ComputeTeamPerformance(req.History, req.HomeID)
	away := ComputeTeamPerformance(req.History, req.AwayID)
	if home == nil || away == nil {
		logger.Info("no history for fixture, returning neutral", req.HomeID, req.AwayID)
		p.Neutral = true
		p.Outcome = NeutralOutcome()
		p.Poisson = NeutralOutcome()
		p.Transition = NeutralOutcome()
		p.Rating = NeutralOutcome()
		return p, nil
	}

	analysis := AnalyzeCommonOpponents(req.History, req.HomeID, req.AwayID)
	p.CommonOpponents = len(analysis.Opponents)
	p.Adjustment = AdjustmentFactor(analysis)
	p.HomeStrength, p.AwayStrength = StrengthScores(req.History, req.HomeID, req.AwayID, now)

	p.ExpectedHomeGoals, p.ExpectedAwayGoals = ExpectedGoals(home, away, p.Adjustment)
	grid := BuildScoreGrid(p.ExpectedHomeGoals, p.ExpectedAwayGoals)
	p.Poisson = grid.Outcome()
	p.LikelyHomeGoals, p.LikelyAwayGoals = grid.MostLikelyScore()

	p.Transition = TransitionOutcome(req.History, home, away)

	p.HomeRating = TeamRating(req.History, req.HomeID, now)
	p.AwayRating = TeamRating(req.History, req.AwayID, now)
	p.Rating = RatingOutcome(p.HomeRating, p.AwayRating)
	p.HomeH2HRating, p.AwayH2HRating = HeadToHeadRatings(req.History, req.HomeID, req.AwayID, now)

	p.Outcome = combine(p.Poisson, p.Transition, p.Rating, home, away)
	return p, nil
}

// combine blends the three sources by the configured weights, then
// applies the second half momentum nudge to the win components
func combine(poisson, transition, rating OutcomeProbability, home, away *TeamPerformance) OutcomeProbability {
	pw := Config.PoissonWeight
	tw := Config.TransitionWeight
	rw := Config.RatingWeight

	out := OutcomeProbability{
		HomeWin: pw*poisson.HomeWin + tw*transition.HomeWin + rw*rating.HomeWin,
		Draw:    pw*poisson.Draw + tw*transition.Draw + rw*rating.Draw,
		AwayWin: pw*poisson.AwayWin + tw*transition.AwayWin + rw*rating.AwayWin,
	}

	out.HomeWin *= secondHalfFactor(home)
	out.AwayWin *= secondHalfFactor(away)

	return out.Normalize()
}

// secondHalfFactor rewards teams that outscore their first half rate
// after the break. The nudge is deliberately small.
func secondHalfFactor(p *TeamPerformance) float64 {
	if p.FirstHalfAttack <= 0 {
		return 1.0
	}
	ratio := p.SecondHalfAttack / p.FirstHalfAttack
	return 1.0 + (ratio-1.0)*Config.SecondHalfNudge
}

// PredictAll prices a batch of fixtures concurrently. A failed fixture
// is logged and reported as nil in its slot, never aborting the batch.
func PredictAll(requests []PredictionRequest) []*Prediction {
	results := make([]*Prediction, len(requests))
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			pred, err := Predict(requests[idx])
			if err != nil {
				logger.Error("prediction failed", requests[idx].HomeID, requests[idx].AwayID, err)
				return
			}
			results[idx] = pred
		}(i)
	}
	wg.Wait()
	return results
}
