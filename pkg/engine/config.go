package engine

import "fmt"

// EngineConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment.
// None of these values are fitted from data; they are fixed configuration.
type EngineConfig struct {

	// === RATING MODEL PARAMETERS ===

	InitialRating      float64 // Baseline rating for unseen teams (default: 1500)
	KFactor            float64 // Rating update step size (default: 32)
	HomeBonus          float64 // Rating points added to whichever side plays at home (default: 30)
	RatingScale        float64 // Logistic scale for expected score (default: 400)
	DecayYears         float64 // Exponential time-decay constant in years (default: 1.0)
	CupWeight          float64 // Event weight for cup matches, league matches weigh 1.0 (default: 0.8)
	NegligibleWeight   float64 // Matches whose combined weight falls below this are skipped (default: 0.01)
	DrawBaseline       float64 // Floor of the dynamic draw probability (default: 0.15)
	DrawRange          float64 // Span of the dynamic draw probability (default: 0.2)
	DrawGapScale       float64 // Rating-gap scale governing draw probability decay (default: 200)

	// === GOAL EXPECTANCY PARAMETERS ===

	HomeAdvantageFactor float64 // Multiplier on home expected goals (default: 1.15)
	MaxExpectedGoals    float64 // Upper clamp on expected goals per side (default: 3.5)
	MinExpectedGoals    float64 // Lower clamp on expected goals per side (default: 0.1)
	MaxGoalRatio        float64 // Cap on the ratio between the two expected-goal values (default: 3.0)
	LeagueAverageGoals  float64 // Prior goal rate the expectation is shrunk toward (default: 1.4)
	ShrinkageFactor     float64 // Fraction of shrinkage toward the league average (default: 0.2)
	EfficiencyBandLow   float64 // Lower bound on expected goals relative to attack efficiency (default: 0.5)
	EfficiencyBandHigh  float64 // Upper bound on expected goals relative to attack efficiency (default: 2.0)
	MaxGoals            int     // Scoreline grid considers 0..MaxGoals goals per side (default: 5)

	// === COMMON OPPONENT ADJUSTMENT ===

	MaxAdjustment        float64 // Largest expected-goal swing from the common-opponent signal (default: 0.5)
	AdjustmentSaturation float64 // Shared-opponent count at which the swing approaches its cap (default: 3.0)
	StrengthDecayDays    float64 // Per-week decay step of the standalone strength score (default: 7)
	StrengthDecayRate    float64 // Weight lost per decay step in the strength score (default: 0.01)

	// === OUTCOME COMBINER ===

	PoissonWeight    float64 // Blend weight of the Poisson-derived triple (default: 0.7)
	TransitionWeight float64 // Blend weight of the transition-matrix triple (default: 0.3)
	RatingWeight     float64 // Blend weight of the rating-derived triple (default: 0.0)
	SecondHalfNudge  float64 // Magnitude of the second-half attacking-rate adjustment (default: 0.05)

	// === SMOOTHING ===

	WilsonConfidence float64 // Confidence level of the Wilson-score correction (default: 0.95)

	// === FEATURE FLAGS ===

	// The source maintained a simple and an "advanced" pipeline side by side;
	// these flags unify them behind one configurable path.
	UseEmpiricalTransitions bool // Estimate transition matrices from history rather than fixed priors (default: true)
	UseWilsonSmoothing      bool // Apply Wilson correction to small-sample frequencies (default: true)
}

// DefaultEngineConfig returns the default configuration with all standard values
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		InitialRating:    1500.0,
		KFactor:          32.0,
		HomeBonus:        30.0,
		RatingScale:      400.0,
		DecayYears:       1.0,
		CupWeight:        0.8,
		NegligibleWeight: 0.01,
		DrawBaseline:     0.15,
		DrawRange:        0.2,
		DrawGapScale:     200.0,

		HomeAdvantageFactor: 1.15,
		MaxExpectedGoals:    3.5,
		MinExpectedGoals:    0.1,
		MaxGoalRatio:        3.0,
		LeagueAverageGoals:  1.4,
		ShrinkageFactor:     0.2,
		EfficiencyBandLow:   0.5,
		EfficiencyBandHigh:  2.0,
		MaxGoals:            5,

		MaxAdjustment:        0.5,
		AdjustmentSaturation: 3.0,
		StrengthDecayDays:    7.0,
		StrengthDecayRate:    0.01,

		PoissonWeight:    0.7,
		TransitionWeight: 0.3,
		RatingWeight:     0.0,
		SecondHalfNudge:  0.05,

		WilsonConfidence: 0.95,

		UseEmpiricalTransitions: true,
		UseWilsonSmoothing:      true,
	}
}

// Global configuration instance
var Config *EngineConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultEngineConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *EngineConfig) {
	Config = newConfig
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *EngineConfig) error {
	if config.InitialRating <= 0 {
		return fmt.Errorf("InitialRating must be positive, got: %f", config.InitialRating)
	}
	if config.KFactor <= 0 {
		return fmt.Errorf("KFactor must be positive, got: %f", config.KFactor)
	}
	if config.DecayYears <= 0 {
		return fmt.Errorf("DecayYears must be positive, got: %f", config.DecayYears)
	}
	if config.CupWeight <= 0 || config.CupWeight > 1.0 {
		return fmt.Errorf("CupWeight must be in (0,1], got: %f", config.CupWeight)
	}
	if config.MaxGoals < 3 {
		return fmt.Errorf("MaxGoals should be at least 3 to capture realistic scores, got: %d", config.MaxGoals)
	}
	if config.MinExpectedGoals <= 0 || config.MinExpectedGoals >= config.MaxExpectedGoals {
		return fmt.Errorf("expected-goal clamps are inverted: [%f, %f]", config.MinExpectedGoals, config.MaxExpectedGoals)
	}
	if config.ShrinkageFactor < 0 || config.ShrinkageFactor > 1.0 {
		return fmt.Errorf("ShrinkageFactor must be in [0,1], got: %f", config.ShrinkageFactor)
	}
	if config.PoissonWeight < 0 || config.TransitionWeight < 0 || config.RatingWeight < 0 {
		return fmt.Errorf("combiner weights must be non-negative, got: %f/%f/%f",
			config.PoissonWeight, config.TransitionWeight, config.RatingWeight)
	}
	total := config.PoissonWeight + config.TransitionWeight + config.RatingWeight
	if total <= 0 {
		return fmt.Errorf("combiner weights must sum to a positive value, got: %f", total)
	}
	if config.WilsonConfidence < 0.5 || config.WilsonConfidence >= 1.0 {
		return fmt.Errorf("WilsonConfidence must be in [0.5,1), got: %f", config.WilsonConfidence)
	}
	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetHomeAdvantageFactor returns the current home-advantage multiplier
func GetHomeAdvantageFactor() float64 {
	return Config.HomeAdvantageFactor
}

// SetCombinerWeights updates the blend weights in one call
func SetCombinerWeights(poisson, transition, rating float64) {
	Config.PoissonWeight = poisson
	Config.TransitionWeight = transition
	Config.RatingWeight = rating
}

// GetWilsonConfidence returns the configured Wilson confidence level
func GetWilsonConfidence() float64 {
	return Config.WilsonConfidence
}
