package ssacal

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/stat"
)

const N_REF_LINES = 3

// Annihilation, 40K and 208Tl lines in keV, ascending
var ReferenceEnergies = [N_REF_LINES]float64{510.998, 1460.820, 2614.511}

type CalibrationPoint struct {
	Centroid    float64
	CentroidErr float64
	Energy      float64
}

// CalibrationFunction maps the amplitude of a channel to energy:
// E = A + B*amplitude.
type CalibrationFunction struct {
	Channel int
	A       float64
	B       float64
	AErr    float64
	BErr    float64
}

func (c CalibrationFunction) Energy(amplitude float64) float64 {
	return c.A + c.B*amplitude
}

// CalibrationCurve keeps the fitted points of a channel and their
// residuals with respect to the calibration function.
type CalibrationCurve struct {
	Channel   int
	Points    [N_REF_LINES]CalibrationPoint
	Residuals [N_REF_LINES]float64
}

// Graph returns the curve as a scatter with errors on the amplitude axis.
func (c CalibrationCurve) Graph() *hbook.S2D {
	pts := make([]hbook.Point2D, N_REF_LINES)
	for i, p := range c.Points {
		pts[i] = hbook.Point2D{
			X:    p.Centroid,
			Y:    p.Energy,
			ErrX: hbook.Range{Min: p.CentroidErr, Max: p.CentroidErr},
		}
	}
	s := hbook.NewS2D(pts...)
	s.Annotation()["name"] = fmt.Sprintf("CalibChannel%d", c.Channel)
	s.Annotation()["title"] = fmt.Sprintf("Calibration of Channel %d", c.Channel)
	return s
}

// FitCalibration fits E = A + B*amplitude through the points, weighting
// each one with 1/CentroidErr^2. Parameter errors are scaled with the
// reduced chi2, exactly aligned points give zero errors.
func FitCalibration(channel int, points [N_REF_LINES]CalibrationPoint) (CalibrationFunction, CalibrationCurve, error) {
	curve := CalibrationCurve{Channel: channel, Points: points}

	for i := 1; i < N_REF_LINES; i++ {
		if !(points[i].Energy > points[i-1].Energy) {
			return CalibrationFunction{}, curve, &ErrDegenerateCalibration{
				Channel: channel,
				Reason:  "reference energies are not strictly increasing",
			}
		}
	}

	xs := make([]float64, N_REF_LINES)
	ys := make([]float64, N_REF_LINES)
	ws := make([]float64, N_REF_LINES)
	distinct := map[float64]bool{}
	useErrors := true
	for i, p := range points {
		xs[i] = p.Centroid
		ys[i] = p.Energy
		distinct[p.Centroid] = true
		if !(p.CentroidErr > 0) || math.IsInf(p.CentroidErr, 0) {
			useErrors = false
		}
	}
	if len(distinct) < 2 {
		return CalibrationFunction{}, curve, &ErrDegenerateCalibration{
			Channel: channel,
			Reason:  fmt.Sprintf("%d distinct amplitude values", len(distinct)),
		}
	}
	for i, p := range points {
		if useErrors {
			ws[i] = 1 / (p.CentroidErr * p.CentroidErr)
		} else {
			ws[i] = 1
		}
	}
	if !useErrors && verbosity > 0 {
		message := fmt.Sprintf("Channel %d: centroid errors unusable, fitting with equal weights", channel)
		logger.Info(message, "calibration")
	}

	a, b := stat.LinearRegression(xs, ys, ws, false)

	var sw, sx, sxx, chi2 float64
	for i, x := range xs {
		sw += ws[i]
		sx += ws[i] * x
		sxx += ws[i] * x * x
	}
	det := sw*sxx - sx*sx
	if !(det > 0) {
		return CalibrationFunction{}, curve, &ErrDegenerateCalibration{
			Channel: channel,
			Reason:  "singular normal equations",
		}
	}
	for i, x := range xs {
		curve.Residuals[i] = ys[i] - (a + b*x)
		chi2 += ws[i] * curve.Residuals[i] * curve.Residuals[i]
	}
	scale := chi2 / float64(N_REF_LINES-2)

	fn := CalibrationFunction{
		Channel: channel,
		A:       a,
		B:       b,
		AErr:    math.Sqrt(sxx / det * scale),
		BErr:    math.Sqrt(sw / det * scale),
	}
	return fn, curve, nil
}

// CalibrationContext owns the search ranges and reference energies used
// to calibrate every channel of a configuration.
type CalibrationContext struct {
	Windows  WindowSet
	Energies [N_REF_LINES]float64
}

func NewCalibrationContext(windows WindowSet) *CalibrationContext {
	return &CalibrationContext{
		Windows:  windows,
		Energies: ReferenceEnergies,
	}
}

// FindPoints locates and refits every reference line in the amplitude
// spectrum.
func (c *CalibrationContext) FindPoints(h *hbook.H1D) ([N_REF_LINES]CalibrationPoint, error) {
	var points [N_REF_LINES]CalibrationPoint
	for i, window := range c.Windows.Ranges {
		peak, err := LocatePeak(h, window.Low, window.High)
		if err != nil {
			return points, fmt.Errorf("line %g keV: %w", c.Energies[i], err)
		}
		mean, meanErr, err := RefinePeak(h, peak.X)
		if err != nil {
			return points, fmt.Errorf("line %g keV: %w", c.Energies[i], err)
		}
		points[i] = CalibrationPoint{
			Centroid:    mean,
			CentroidErr: meanErr,
			Energy:      c.Energies[i],
		}
	}
	return points, nil
}

// CalibrateChannel finds the reference peaks in the amplitude spectrum of a
// channel and fits its calibration function.
func (c *CalibrationContext) CalibrateChannel(channel int, h *hbook.H1D) (CalibrationFunction, CalibrationCurve, error) {
	points, err := c.FindPoints(h)
	if err != nil {
		return CalibrationFunction{}, CalibrationCurve{Channel: channel}, err
	}
	fn, curve, err := FitCalibration(channel, points)
	if err != nil {
		return fn, curve, err
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Channel %d: E = (%g +- %g) + (%g +- %g) * amplitude",
			channel, fn.A, fn.AErr, fn.B, fn.BErr)
		logger.Info(message, "calibration")
	}
	return fn, curve, nil
}

type CalibrationResult struct {
	Functions Calibrations
	Curves    map[int]CalibrationCurve
}

type channelCalibration struct {
	channel int
	fn      CalibrationFunction
	curve   CalibrationCurve
	err     error
}

// CalibrateChannels calibrates every detector channel concurrently. The
// result holds the channels that succeeded, the error reports the others.
func (c *CalibrationContext) CalibrateChannels(hists [N_DET_CH]*hbook.H1D) (CalibrationResult, error) {
	results := make(chan channelCalibration, N_DET_CH)
	for i, ch := range DetectorChannels {
		go func(channel int, h *hbook.H1D) {
			fn, curve, err := c.CalibrateChannel(channel, h)
			results <- channelCalibration{channel: channel, fn: fn, curve: curve, err: err}
		}(ch, hists[i])
	}

	result := CalibrationResult{
		Functions: make(Calibrations),
		Curves:    make(map[int]CalibrationCurve),
	}
	failed := make(ChannelErrors)
	for range DetectorChannels {
		r := <-results
		if r.err != nil {
			logger.Error(fmt.Sprintf("calibration of channel %d failed: %v", r.channel, r.err))
			failed[r.channel] = r.err
			continue
		}
		result.Functions[r.channel] = r.fn
		result.Curves[r.channel] = r.curve
	}
	return result, failed.OrNil()
}
