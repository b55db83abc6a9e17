package ssacal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefinePeakRecoversMean(t *testing.T) {
	const sigma = 15.
	h := NewAmplitudeHist("hAmp")
	fillGaussian(h, 5500, 1000, sigma)
	var n float64
	for _, count := range gaussianCounts(1000, sigma) {
		n += float64(count)
	}

	peak, err := LocatePeak(h, 5000, 6000)
	require.NoError(t, err)
	assert.InDelta(t, 5500.5, peak.X, 1)

	mean, meanErr, err := RefinePeak(h, peak.X)
	require.NoError(t, err)
	assert.InDelta(t, 5500.5, mean, sigma/math.Sqrt(n))
	assert.Greater(t, meanErr, 0.)
	assert.Less(t, meanErr, 1.)
}

func TestRefinePeakEmptyWindow(t *testing.T) {
	h := NewAmplitudeHist("hAmp")

	_, _, err := RefinePeak(h, 5500)
	var fitErr *ErrFitConvergence
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, 5500., fitErr.Center)
}

func TestInitialGaussParams(t *testing.T) {
	xs := []float64{-1, 0, 1}
	ys := []float64{1, 2, 1}
	ps := initialGaussParams(xs, ys, 1)
	assert.Equal(t, 2., ps[0])
	assert.InDelta(t, 0, ps[1], 1e-12)
	assert.InDelta(t, 0.7071, ps[2], 1e-4)
}
