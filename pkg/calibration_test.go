package ssacal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"
)

func linePoints(a, b float64, xs [N_REF_LINES]float64) [N_REF_LINES]CalibrationPoint {
	var points [N_REF_LINES]CalibrationPoint
	for i, x := range xs {
		points[i] = CalibrationPoint{Centroid: x, CentroidErr: 0.5, Energy: a + b*x}
	}
	return points
}

func TestFitCalibrationCollinear(t *testing.T) {
	points := linePoints(10, 2, [N_REF_LINES]float64{100, 300, 550})

	fn, curve, err := FitCalibration(0, points)
	require.NoError(t, err)
	assert.InDelta(t, 10, fn.A, 1e-9)
	assert.InDelta(t, 2, fn.B, 1e-12)
	assert.InDelta(t, 0, fn.AErr, 1e-6)
	assert.InDelta(t, 0, fn.BErr, 1e-6)
	for _, r := range curve.Residuals {
		assert.InDelta(t, 0, r, 1e-9)
	}
	assert.InDelta(t, 1110, fn.Energy(550), 1e-9)
}

func TestFitCalibrationWeights(t *testing.T) {
	points := [N_REF_LINES]CalibrationPoint{
		{Centroid: 100, CentroidErr: 0.1, Energy: 200},
		{Centroid: 200, CentroidErr: 0.1, Energy: 400},
		{Centroid: 300, CentroidErr: 100, Energy: 700},
	}
	fn, _, err := FitCalibration(2, points)
	require.NoError(t, err)
	// The imprecise point barely moves the line through the other two
	assert.InDelta(t, 2, fn.B, 1e-3)
	assert.Greater(t, fn.BErr, 0.)
	assert.Equal(t, 2, fn.Channel)
}

func TestFitCalibrationUnusableErrors(t *testing.T) {
	points := linePoints(1, 3, [N_REF_LINES]float64{10, 20, 40})
	points[1].CentroidErr = 0

	fn, _, err := FitCalibration(0, points)
	require.NoError(t, err)
	assert.InDelta(t, 3, fn.B, 1e-12)
}

func TestFitCalibrationDegenerate(t *testing.T) {
	var degenerate *ErrDegenerateCalibration

	points := linePoints(0, 1, [N_REF_LINES]float64{100, 100, 100})
	points[1].Energy, points[2].Energy = 200, 300
	_, _, err := FitCalibration(4, points)
	require.True(t, errors.As(err, &degenerate))
	assert.Equal(t, 4, degenerate.Channel)

	points = linePoints(0, 1, [N_REF_LINES]float64{100, 200, 300})
	points[2].Energy = points[1].Energy
	_, _, err = FitCalibration(4, points)
	require.True(t, errors.As(err, &degenerate))
}

func TestCalibrationCurveGraph(t *testing.T) {
	points := linePoints(10, 2, [N_REF_LINES]float64{100, 300, 550})
	_, curve, err := FitCalibration(6, points)
	require.NoError(t, err)

	graph := curve.Graph()
	assert.Equal(t, "CalibChannel6", graph.Annotation()["name"])
	assert.Equal(t, N_REF_LINES, graph.Len())
	assert.Equal(t, 300., graph.Point(1).X)
}

func syntheticAmplitudeHist() *hbook.H1D {
	h := NewAmplitudeHist("hAmp")
	for _, center := range syntheticPeaks {
		fillGaussian(h, center, 400, 5)
	}
	return h
}

func TestCalibrateChannelSyntheticPeaks(t *testing.T) {
	ctx := NewCalibrationContext(WindowSet{Kind: OtherWindows, Ranges: syntheticRanges})

	fn, curve, err := ctx.CalibrateChannel(0, syntheticAmplitudeHist())
	require.NoError(t, err)
	assert.InDelta(t, 4.68, fn.B, 0.01)
	assert.InDelta(t, 45, fn.A, 5)
	for i, p := range curve.Points {
		assert.InDelta(t, syntheticPeaks[i]+0.5, p.Centroid, 0.1)
		assert.Equal(t, ReferenceEnergies[i], p.Energy)
	}
}

func TestCalibrateChannelsPartialFailure(t *testing.T) {
	ctx := NewCalibrationContext(WindowSet{Kind: OtherWindows, Ranges: syntheticRanges})
	hists := [N_DET_CH]*hbook.H1D{
		syntheticAmplitudeHist(),
		syntheticAmplitudeHist(),
		NewAmplitudeHist("empty"),
		syntheticAmplitudeHist(),
	}

	result, err := ctx.CalibrateChannels(hists)
	require.Error(t, err)

	var channelErrs ChannelErrors
	require.True(t, errors.As(err, &channelErrs))
	assert.Equal(t, []int{4}, channelErrs.Channels())
	assert.Equal(t, []int{0, 2, 6}, result.Functions.Channels())
	assert.Len(t, result.Curves, 3)
}
