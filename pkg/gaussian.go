package ssacal

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/gonum/mat"
)

// Half width, in amplitude units, of the window fitted around a peak
const REFIT_HALF_WIDTH = 50.

func gauss(x float64, ps []float64) float64 {
	z := (x - ps[1]) / ps[2]
	return ps[0] * math.Exp(-0.5*z*z)
}

// RefinePeak fits a gaussian to the bins within REFIT_HALF_WIDTH of xmax
// and returns its mean and the standard error on the mean. Empty bins do
// not enter the fit and every other bin is weighted with its poisson error.
func RefinePeak(h *hbook.H1D, xmax float64) (float64, float64, error) {
	lo, hi := xmax-REFIT_HALF_WIDTH, xmax+REFIT_HALF_WIDTH
	first, last, ok := binsInRange(h, lo, hi)
	if !ok {
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: "no bins in fit window"}
	}

	bins := h.Binning.Bins
	xs := make([]float64, 0, last-first+1)
	ys := make([]float64, 0, last-first+1)
	ws := make([]float64, 0, last-first+1)
	for i := first; i <= last; i++ {
		content := bins[i].SumW()
		if content == 0 {
			continue
		}
		xs = append(xs, bins[i].XMid())
		ys = append(ys, content)
		ws = append(ws, 1/math.Sqrt(math.Max(math.Abs(content), 1)))
	}
	if len(xs) < 3 {
		reason := fmt.Sprintf("%d non-empty bins in [%g, %g]", len(xs), lo, hi)
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: reason}
	}

	init := initialGaussParams(xs, ys, bins[first].XWidth())
	residuals := func(dst, ps []float64) {
		for i, x := range xs {
			dst[i] = (gauss(x, ps) - ys[i]) * ws[i]
		}
	}
	jacobian := lm.NumJac{Func: residuals}

	problem := lm.LMProblem{
		Dim:        3,
		Size:       len(xs),
		Func:       residuals,
		Jac:        jacobian.Jac,
		InitParams: init,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}
	result, err := lm.LM(problem, &lm.Settings{Iterations: 200, ObjectiveTol: 1e-16})
	if err != nil {
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: "minimizer failed", Err: err}
	}

	ps := result.X
	for _, p := range ps {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, 0, &ErrFitConvergence{Center: xmax, Reason: fmt.Sprintf("non finite parameters %v", ps)}
		}
	}
	if ps[2] == 0 {
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: "zero width"}
	}
	if ps[1] < lo || ps[1] > hi {
		reason := fmt.Sprintf("mean %g outside fit window [%g, %g]", ps[1], lo, hi)
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: reason}
	}

	// Covariance of the weighted least squares problem is (J^T J)^-1
	jac := mat.NewDense(len(xs), 3, nil)
	jacobian.Jac(jac, ps)
	var jtj, cov mat.Dense
	jtj.Mul(jac.T(), jac)
	if err := cov.Inverse(&jtj); err != nil {
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: "singular covariance", Err: err}
	}
	variance := cov.At(1, 1)
	if !(variance >= 0) || math.IsInf(variance, 0) {
		return 0, 0, &ErrFitConvergence{Center: xmax, Reason: fmt.Sprintf("invalid mean variance %g", variance)}
	}

	if verbosity > 1 {
		message := fmt.Sprintf("Gaussian fit of %s: constant %g, mean %g, sigma %g",
			histName(h), ps[0], ps[1], math.Abs(ps[2]))
		logger.Info(message, "gaussian")
	}
	return ps[1], math.Sqrt(variance), nil
}

// initialGaussParams estimates constant, mean and sigma from the moments
// of the selected bins.
func initialGaussParams(xs, ys []float64, binWidth float64) []float64 {
	var sum, sumX, peak float64
	for i, x := range xs {
		sum += ys[i]
		sumX += ys[i] * x
		peak = math.Max(peak, ys[i])
	}
	mean := sumX / sum
	var sumDev2 float64
	for i, x := range xs {
		sumDev2 += ys[i] * (x - mean) * (x - mean)
	}
	sigma := math.Sqrt(sumDev2 / sum)
	if !(sigma > 0) {
		sigma = binWidth
	}
	return []float64{peak, mean, sigma}
}
