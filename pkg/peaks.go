package ssacal

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// Peak is the highest bin found by LocatePeak, X being its centre.
type Peak struct {
	Bin     int
	X       float64
	Content float64
}

// binsInRange returns the first and last bin overlapping [lo, hi], the
// same selection a user range on the axis would make. ok is false when no
// bin overlaps.
func binsInRange(h *hbook.H1D, lo, hi float64) (first, last int, ok bool) {
	first, last = -1, -1
	bins := h.Binning.Bins
	for i := range bins {
		if bins[i].XMin() < hi && bins[i].XMax() > lo {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last, first >= 0 && lo <= hi
}

// LocatePeak returns the bin with maximum content among the bins
// overlapping [lo, hi]. Ties resolve to the first bin reaching the maximum.
func LocatePeak(h *hbook.H1D, lo, hi float64) (Peak, error) {
	first, last, ok := binsInRange(h, lo, hi)
	if !ok {
		return Peak{}, &ErrEmptyRange{Low: lo, High: hi}
	}

	bins := h.Binning.Bins
	peak := Peak{Bin: first, X: bins[first].XMid(), Content: bins[first].SumW()}
	for i := first + 1; i <= last; i++ {
		if content := bins[i].SumW(); content > peak.Content {
			peak = Peak{Bin: i, X: bins[i].XMid(), Content: content}
		}
	}

	if verbosity > 2 {
		message := fmt.Sprintf("Maximum of %s in [%g, %g] at bin %d (x=%g, content=%g)",
			histName(h), lo, hi, peak.Bin, peak.X, peak.Content)
		logger.Info(message, "peaks")
	}
	return peak, nil
}
