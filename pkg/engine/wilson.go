package engine

// WilsonScore returns the Wilson-interval center for an observed proportion,
// pulling small-sample estimates away from extreme raw values.
// Zero trials returns the neutral binary default of 0.5.
func WilsonScore(successes, trials int, confidence float64) float64 {
	if trials == 0 {
		return 0.5
	}

	p := float64(successes) / float64(trials)
	z := zValue(confidence)
	n := float64(trials)

	denominator := 1.0 + z*z/n
	center := (p + z*z/(2.0*n)) / denominator

	return center
}

// zValue maps a confidence level to its standard-normal quantile.
// Uncommon levels fall back to 95%.
func zValue(confidence float64) float64 {
	switch confidence {
	case 0.99:
		return 2.576
	case 0.95:
		return 1.96
	case 0.90:
		return 1.645
	case 0.85:
		return 1.44
	case 0.80:
		return 1.282
	default:
		return 1.96
	}
}

// MultinomialWilson applies the Wilson correction to a three-outcome
// win/draw/loss split. Each category is corrected independently as a
// binomial (that category vs the rest) and the corrected values are
// renormalized to sum to 1. Zero observations returns a third each.
func MultinomialWilson(wins, draws, losses int, confidence float64) (float64, float64, float64) {
	total := wins + draws + losses
	if total == 0 {
		third := 1.0 / 3.0
		return third, third, third
	}

	winProb := WilsonScore(wins, total, confidence)
	drawProb := WilsonScore(draws, total, confidence)
	lossProb := WilsonScore(losses, total, confidence)

	sum := winProb + drawProb + lossProb
	if sum > 0 {
		winProb /= sum
		drawProb /= sum
		lossProb /= sum
	}

	return winProb, drawProb, lossProb
}

// resultFrequencies returns either the Wilson-smoothed or the raw
// win/draw/loss frequencies depending on configuration
func resultFrequencies(wins, draws, losses int) (float64, float64, float64) {
	if Config.UseWilsonSmoothing {
		return MultinomialWilson(wins, draws, losses, Config.WilsonConfidence)
	}
	total := wins + draws + losses
	if total == 0 {
		third := 1.0 / 3.0
		return third, third, third
	}
	n := float64(total)
	return float64(wins) / n, float64(draws) / n, float64(losses) / n
}
