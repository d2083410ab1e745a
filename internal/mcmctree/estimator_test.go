package mcmctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptRateEstimatorSmoothing(t *testing.T) {
	est := NewAcceptRateEstimator([]float64{0.5, 0.5}, 0.5)

	est.Update(0, true)
	assert.InDelta(t, 0.75, est.Alpha(0), 1e-9)
	assert.Equal(t, 0.5, est.Alpha(1))
	assert.Equal(t, 1, est.Samples(0))
	assert.Equal(t, 0, est.Samples(1))

	est.Update(0, false)
	assert.InDelta(t, 0.375, est.Alpha(0), 1e-9)
	assert.Equal(t, 2, est.Samples(0))
}

func TestAcceptRateEstimatorNumLevels(t *testing.T) {
	est := NewAcceptRateEstimator([]float64{0.1, 0.2, 0.3}, 0.1)
	assert.Equal(t, 3, est.NumLevels())
}
