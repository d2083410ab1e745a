package mcmctree

// AcceptRateEstimator tracks a per-level running estimate of the
// Metropolis accept probability, updated by exponential smoothing
// (spec.md §3): alpha[l] <- (1-eta)*alpha[l] + eta*1[accepted].
type AcceptRateEstimator struct {
	eta     float64
	alpha   []float64
	samples []int
}

// NewAcceptRateEstimator builds an estimator for numLevels levels, seeded
// with initialGuesses (one per level; must have length numLevels).
func NewAcceptRateEstimator(initialGuesses []float64, eta float64) *AcceptRateEstimator {
	alpha := make([]float64, len(initialGuesses))
	copy(alpha, initialGuesses)
	return &AcceptRateEstimator{
		eta:     eta,
		alpha:   alpha,
		samples: make([]int, len(initialGuesses)),
	}
}

// Alpha returns the current running accept-rate estimate for level.
func (e *AcceptRateEstimator) Alpha(level int) float64 {
	return e.alpha[level]
}

// Update records one decision at level (accepted or not) and updates
// alpha[level] by exponential smoothing.
func (e *AcceptRateEstimator) Update(level int, accepted bool) {
	observed := 0.0
	if accepted {
		observed = 1.0
	}
	e.alpha[level] = (1-e.eta)*e.alpha[level] + e.eta*observed
	e.samples[level]++
}

// Samples returns the number of decisions recorded at level so far.
func (e *AcceptRateEstimator) Samples(level int) int {
	return e.samples[level]
}

// NumLevels returns how many levels this estimator tracks.
func (e *AcceptRateEstimator) NumLevels() int {
	return len(e.alpha)
}
