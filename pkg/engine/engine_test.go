package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// newTestMatch builds a completed match with half time scores derived
// from the full time scores (half the goals by the interval)
func newTestMatch(homeID, awayID string, homeGoals, awayGoals int, daysAgo int) MatchRecord {
	return MatchRecord{
		HomeID:            homeID,
		AwayID:            awayID,
		HomeGoals:         homeGoals,
		AwayGoals:         awayGoals,
		HalfTimeHomeGoals: homeGoals / 2,
		HalfTimeAwayGoals: awayGoals / 2,
		Date:              testNow.AddDate(0, 0, -daysAgo),
	}
}

// standardHistory returns a small league where "strong" beats everyone,
// "weak" loses to everyone, and "mid" sits between them
func standardHistory() []MatchRecord {
	return []MatchRecord{
		newTestMatch("strong", "mid", 3, 0, 7),
		newTestMatch("mid", "strong", 1, 2, 14),
		newTestMatch("strong", "weak", 4, 0, 21),
		newTestMatch("weak", "strong", 0, 2, 28),
		newTestMatch("mid", "weak", 2, 1, 35),
		newTestMatch("weak", "mid", 0, 0, 42),
	}
}

func TestMatchValidation(t *testing.T) {
	m := newTestMatch("a", "b", 2, 1, 1)
	require.NoError(t, m.Validate())

	bad := m
	bad.HomeGoals = -1
	assert.Error(t, bad.Validate(), "negative score should fail validation")

	bad = m
	bad.HalfTimeHomeGoals = 3
	assert.Error(t, bad.Validate(), "half time exceeding full time should fail")
}

func TestSortByDateDoesNotMutateInput(t *testing.T) {
	records := []MatchRecord{
		newTestMatch("a", "b", 1, 0, 1),
		newTestMatch("b", "a", 0, 1, 10),
	}
	first := records[0]
	sorted := SortByDate(records)
	assert.Equal(t, first, records[0], "input slice must be untouched")
	assert.True(t, !sorted[0].Date.After(sorted[1].Date))
}

func TestTeamPerformanceCounts(t *testing.T) {
	p := ComputeTeamPerformance(standardHistory(), "strong")
	require.NotNil(t, p)

	assert.Equal(t, 4, p.TotalMatches)
	assert.Equal(t, 4, p.Wins)
	assert.Equal(t, 0, p.Losses)
	assert.InDelta(t, 11.0/4.0, p.AttackEfficiency, 1e-9)
	assert.InDelta(t, 1.0/4.0, p.DefenseEfficiency, 1e-9)
}

func TestTeamPerformanceVenueFallback(t *testing.T) {
	// Team only ever played at home, away split must fall back to overall
	records := []MatchRecord{newTestMatch("a", "b", 2, 1, 1)}
	p := ComputeTeamPerformance(records, "a")
	require.NotNil(t, p)
	assert.Equal(t, p.AttackEfficiency, p.AwayAttack)
	assert.Equal(t, p.DefenseEfficiency, p.AwayDefense)
}

func TestTeamPerformanceEmptyHistory(t *testing.T) {
	assert.Nil(t, ComputeTeamPerformance(nil, "a"))
	assert.Nil(t, ComputeTeamPerformance(standardHistory(), "unknown"))
}

func TestWilsonScoreShrinksTowardHalf(t *testing.T) {
	// Perfect record over few trials must not read as certainty
	smoothed := WilsonScore(5, 5, 0.95)
	assert.Less(t, smoothed, 1.0)
	assert.Greater(t, smoothed, 0.5)

	// More evidence means less shrinkage
	more := WilsonScore(50, 50, 0.95)
	assert.Greater(t, more, smoothed)
}

func TestWilsonScoreNoTrials(t *testing.T) {
	assert.Equal(t, 0.5, WilsonScore(0, 0, 0.95))
}

func TestMultinomialWilson(t *testing.T) {
	w, d, l := MultinomialWilson(0, 0, 0, 0.95)
	assert.InDelta(t, 1.0/3.0, w, 1e-9)
	assert.InDelta(t, 1.0/3.0, d, 1e-9)
	assert.InDelta(t, 1.0/3.0, l, 1e-9)

	w, d, l = MultinomialWilson(8, 1, 1, 0.95)
	assert.InDelta(t, 1.0, w+d+l, 1e-9, "smoothed triple must renormalize")
	assert.Greater(t, w, d)
	assert.Greater(t, w, l)
	assert.Less(t, w, 0.8, "smoothing must pull the dominant share down")
}

func TestTimeDecayWeight(t *testing.T) {
	assert.InDelta(t, 1.0, TimeDecayWeight(testNow, testNow), 1e-9)
	assert.Equal(t, 0.0, TimeDecayWeight(testNow.AddDate(0, 0, 1), testNow), "future matches carry no weight")

	recent := TimeDecayWeight(testNow.AddDate(0, -1, 0), testNow)
	old := TimeDecayWeight(testNow.AddDate(-2, 0, 0), testNow)
	assert.Greater(t, recent, old)
}

func TestCupMatchesWeighLess(t *testing.T) {
	league := newTestMatch("a", "b", 1, 0, 5)
	cup := league
	cup.IsCup = true
	assert.Less(t, matchWeight(cup, testNow), matchWeight(league, testNow))
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-9)
	assert.Greater(t, ExpectedScore(1600, 1500), 0.5)
	assert.InDelta(t, 1.0, ExpectedScore(1600, 1500)+ExpectedScore(1500, 1600), 1e-9)
}

func TestTeamRatingRewardsWinners(t *testing.T) {
	records := standardHistory()
	strong := TeamRating(records, "strong", testNow)
	weak := TeamRating(records, "weak", testNow)
	assert.Greater(t, strong, Config.InitialRating)
	assert.Less(t, weak, Config.InitialRating)
	assert.Greater(t, strong, weak)
}

func TestHeadToHeadIgnoresOtherMatches(t *testing.T) {
	records := standardHistory()
	ra, rb := HeadToHeadRatings(records, "strong", "mid", testNow)
	assert.Greater(t, ra, rb)

	// No mutual history leaves both at the initial rating
	ra, rb = HeadToHeadRatings(records, "strong", "stranger", testNow)
	assert.Equal(t, Config.InitialRating, ra)
	assert.Equal(t, Config.InitialRating, rb)
}

func TestRatingOutcomeDrawPeaksWhenEven(t *testing.T) {
	even := RatingOutcome(1500, 1500+Config.HomeBonus)
	lopsided := RatingOutcome(1800, 1400)
	assert.Greater(t, even.Draw, lopsided.Draw)
	assert.True(t, even.IsValid(1e-9))
	assert.True(t, lopsided.IsValid(1e-9))
}

func TestCommonOpponentsExcludeParticipants(t *testing.T) {
	shared := CommonOpponents(standardHistory(), "strong", "weak")
	assert.Equal(t, []string{"mid"}, shared)
}

func TestCommonOpponentAnalysis(t *testing.T) {
	analysis := AnalyzeCommonOpponents(standardHistory(), "strong", "weak")
	require.Len(t, analysis.Opponents, 1)
	// strong beat mid twice, weak drew and lost against mid
	assert.Greater(t, analysis.HomeQuality, analysis.AwayQuality)
	assert.Greater(t, analysis.StrengthRatio, 0.5)
	assert.Greater(t, AdjustmentFactor(analysis), 0.0)
}

func TestCommonOpponentAnalysisNeutralWithoutOverlap(t *testing.T) {
	records := []MatchRecord{
		newTestMatch("a", "x", 1, 0, 1),
		newTestMatch("b", "y", 1, 0, 1),
	}
	analysis := AnalyzeCommonOpponents(records, "a", "b")
	assert.Empty(t, analysis.Opponents)
	assert.Equal(t, 0.5, analysis.StrengthRatio)
	assert.Equal(t, 0.0, AdjustmentFactor(analysis))
}

func TestAdjustmentFactorBounded(t *testing.T) {
	analysis := CommonOpponentAnalysis{
		Opponents:     []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		StrengthRatio: 1.0,
	}
	a := AdjustmentFactor(analysis)
	assert.Greater(t, a, 0.0)
	assert.LessOrEqual(t, a, Config.MaxAdjustment)
}

func TestStrengthScoresDecay(t *testing.T) {
	records := []MatchRecord{
		newTestMatch("a", "x", 3, 0, 1),
		newTestMatch("b", "x", 3, 0, 400),
	}
	fresh, stale := StrengthScores(records, "a", "b", testNow)
	assert.Greater(t, fresh, stale, "recent result must outweigh an old identical one")
	assert.GreaterOrEqual(t, stale, 0.0)
}

func TestPoissonPMF(t *testing.T) {
	var total float64
	for k := 0; k < 50; k++ {
		total += PoissonPMF(k, 1.4)
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0.0, PoissonPMF(-1, 1.4))
}

func TestExpectedGoalsConstraints(t *testing.T) {
	strong := &TeamPerformance{HomeAttack: 10.0, HomeDefense: 0.0, AwayAttack: 10.0, AwayDefense: 0.0}
	weak := &TeamPerformance{HomeAttack: 0.0, HomeDefense: 10.0, AwayAttack: 0.0, AwayDefense: 10.0}

	h, a := ExpectedGoals(strong, weak, 0.0)
	assert.LessOrEqual(t, h, Config.MaxExpectedGoals)
	assert.GreaterOrEqual(t, a, Config.MinExpectedGoals)
	assert.Greater(t, h, a, "lopsided efficiencies keep the stronger side ahead")
}

func TestEfficiencyBandTracksAttackRate(t *testing.T) {
	// Shrinkage drags a prolific side toward the league average; the
	// band pulls the expectancy back to at least half its attack rate.
	prolific := &TeamPerformance{HomeAttack: 2.0, HomeDefense: 0.0, AwayAttack: 2.0, AwayDefense: 0.0}
	toothless := &TeamPerformance{HomeAttack: 0.0, HomeDefense: 2.0, AwayAttack: 0.0, AwayDefense: 2.0}

	h, a := ExpectedGoals(prolific, toothless, 0.0)
	assert.GreaterOrEqual(t, h, prolific.HomeAttack*Config.EfficiencyBandLow-1e-9)
	assert.Equal(t, Config.MinExpectedGoals, a, "a side that never scores stays at the floor")
	assert.Greater(t, h, a)
}

func TestExpectedGoalsHomeAdvantage(t *testing.T) {
	neutral := &TeamPerformance{HomeAttack: 1.4, HomeDefense: 1.4, AwayAttack: 1.4, AwayDefense: 1.4}
	h, a := ExpectedGoals(neutral, neutral, 0.0)
	assert.Greater(t, h, a, "identical sides still carry home advantage")
}

func TestScoreGridOutcome(t *testing.T) {
	out := BuildScoreGrid(2.0, 1.0).Outcome()
	assert.True(t, out.IsValid(1e-9))
	assert.Greater(t, out.HomeWin, out.AwayWin)

	h, a := BuildScoreGrid(2.0, 1.0).MostLikelyScore()
	assert.GreaterOrEqual(t, h, a)
}

func TestScoreGridMassBounded(t *testing.T) {
	// The grid truncates at MaxGoals, so the raw triangle sums cover
	// slightly less than unit mass and never more.
	grid := BuildScoreGrid(2.0, 1.0)
	var total float64
	for h := range grid {
		for a := range grid[h] {
			total += grid[h][a]
		}
	}
	assert.LessOrEqual(t, total, 1.0+1e-9)
	assert.Greater(t, total, 0.9, "the tail beyond the grid is small")
}

func TestPriorTransitionMatrixRowStochastic(t *testing.T) {
	m := PriorTransitionMatrix()
	for row := 0; row < 3; row++ {
		sum := m[row][0] + m[row][1] + m[row][2]
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestEmpiricalTransitionFallsBackToPrior(t *testing.T) {
	// Team always leads at half time, so the losing row is unobserved
	records := []MatchRecord{
		{HomeID: "a", AwayID: "b", HomeGoals: 2, AwayGoals: 0, HalfTimeHomeGoals: 1, Date: testNow},
	}
	m := EmpiricalTransitionMatrix(records, "a")
	prior := PriorTransitionMatrix()
	assert.Equal(t, prior[2], m[2], "unobserved row uses the prior")
	assert.Equal(t, [3]float64{1, 0, 0}, m[0], "observed row reflects the history")
}

func TestTransitionProjectPreservesMass(t *testing.T) {
	ht := OutcomeTriple{Win: 0.5, Draw: 0.3, Loss: 0.2}
	ft := PriorTransitionMatrix().Project(ht)
	assert.InDelta(t, 1.0, ft.Win+ft.Draw+ft.Loss, 1e-9)
}

func TestTransitionOutcomeValid(t *testing.T) {
	records := standardHistory()
	home := ComputeTeamPerformance(records, "strong")
	away := ComputeTeamPerformance(records, "weak")
	out := TransitionOutcome(records, home, away)
	assert.True(t, out.IsValid(1e-9))
	assert.Greater(t, out.HomeWin, out.AwayWin)
}

func TestTransitionOutcomeMirrorsAwayFrame(t *testing.T) {
	records := standardHistory()
	home := ComputeTeamPerformance(records, "strong")
	away := ComputeTeamPerformance(records, "weak")

	forward := TransitionOutcome(records, home, away)
	reversed := TransitionOutcome(records, away, home)

	// Swapping the sides flips the frame of reference exactly
	assert.InDelta(t, forward.HomeWin, reversed.Mirror().HomeWin, 1e-9)
	assert.InDelta(t, forward.Draw, reversed.Mirror().Draw, 1e-9)
	assert.InDelta(t, forward.AwayWin, reversed.Mirror().AwayWin, 1e-9)
}

func TestPredictEmptyHistoryIsExactlyNeutral(t *testing.T) {
	pred, err := Predict(PredictionRequest{HomeID: "a", AwayID: "b", Now: testNow})
	require.NoError(t, err)
	assert.True(t, pred.Neutral)
	assert.Equal(t, 1.0/3.0, pred.Outcome.HomeWin)
	assert.Equal(t, 1.0/3.0, pred.Outcome.Draw)
	assert.Equal(t, 1.0/3.0, pred.Outcome.AwayWin)
}

func TestPredictRejectsBadRequests(t *testing.T) {
	_, err := Predict(PredictionRequest{HomeID: "a", AwayID: "a"})
	assert.Error(t, err)

	_, err = Predict(PredictionRequest{HomeID: "", AwayID: "b"})
	assert.Error(t, err)

	bad := newTestMatch("a", "b", 1, 0, 1)
	bad.HomeGoals = -1
	_, err = Predict(PredictionRequest{HomeID: "a", AwayID: "b", History: []MatchRecord{bad}})
	assert.Error(t, err)
}

func TestPredictFavorsStrongerSide(t *testing.T) {
	pred, err := Predict(PredictionRequest{
		HomeID:  "strong",
		AwayID:  "weak",
		History: standardHistory(),
		Now:     testNow,
	})
	require.NoError(t, err)
	assert.True(t, pred.Outcome.IsValid(1e-9))
	assert.Greater(t, pred.Outcome.HomeWin, pred.Outcome.AwayWin)
	assert.True(t, pred.Poisson.IsValid(1e-9))
	assert.True(t, pred.Transition.IsValid(1e-9))
	assert.True(t, pred.Rating.IsValid(1e-9))
	assert.Equal(t, 1, pred.CommonOpponents)
}

func TestPredictIsDeterministic(t *testing.T) {
	req := PredictionRequest{HomeID: "strong", AwayID: "mid", History: standardHistory(), Now: testNow}
	first, err := Predict(req)
	require.NoError(t, err)
	second, err := Predict(req)
	require.NoError(t, err)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, first.ExpectedHomeGoals, second.ExpectedHomeGoals)
}

func TestPredictAllSurvivesBadFixture(t *testing.T) {
	requests := []PredictionRequest{
		{HomeID: "strong", AwayID: "weak", History: standardHistory(), Now: testNow},
		{HomeID: "x", AwayID: "x"},
	}
	results := PredictAll(requests)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1], "failed fixture reports nil without aborting the batch")
}

func TestDominantHomeFormWithoutSharedOpponents(t *testing.T) {
	// A keeps winning at home 2-0, B keeps losing away 0-2, against
	// disjoint opposition. The skew must come entirely from the goal
	// model since the common-opponent signal is silent.
	history := []MatchRecord{
		newTestMatch("A", "x1", 2, 0, 10),
		newTestMatch("A", "x2", 2, 0, 20),
		newTestMatch("A", "x3", 2, 0, 30),
		newTestMatch("y1", "B", 2, 0, 10),
		newTestMatch("y2", "B", 2, 0, 20),
		newTestMatch("y3", "B", 2, 0, 30),
	}
	pred, err := Predict(PredictionRequest{HomeID: "A", AwayID: "B", History: history, Now: testNow})
	require.NoError(t, err)

	assert.Equal(t, 0, pred.CommonOpponents)
	assert.Equal(t, 0.0, pred.Adjustment)
	assert.Greater(t, pred.Outcome.HomeWin, 0.5)
	assert.Greater(t, pred.Outcome.Draw, pred.Outcome.AwayWin)
}

func TestSymmetricProfilesDrawNotZero(t *testing.T) {
	// Identical mirrored histories: win probabilities nearly balance
	// (home advantage aside) and the draw share stays substantial
	history := []MatchRecord{
		newTestMatch("A", "x1", 1, 1, 10),
		newTestMatch("x2", "A", 1, 1, 20),
		newTestMatch("B", "y1", 1, 1, 10),
		newTestMatch("y2", "B", 1, 1, 20),
	}
	pred, err := Predict(PredictionRequest{HomeID: "A", AwayID: "B", History: history, Now: testNow})
	require.NoError(t, err)

	assert.Greater(t, pred.Outcome.Draw, 0.1)
	assert.InDelta(t, pred.Outcome.HomeWin, pred.Outcome.AwayWin, 0.15)
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	assert.NoError(t, ValidateConfig(cfg))

	cfg.PoissonWeight = -0.1
	assert.Error(t, ValidateConfig(cfg))

	cfg = DefaultEngineConfig()
	cfg.MaxGoals = 0
	assert.Error(t, ValidateConfig(cfg))
}
