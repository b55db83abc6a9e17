package ssacal

import (
	"strconv"

	"go-hep.org/x/hep/hbook"
)

const (
	AMPLITUDE_BINS = 60000
	AMPLITUDE_MAX  = 60000.
	ENERGY_BINS    = 10000
	ENERGY_MAX     = 10000.
	TOF_BINS       = 1000
)

func newNamedH1D(name string, nbins int, xmin, xmax float64) *hbook.H1D {
	h := hbook.NewH1D(nbins, xmin, xmax)
	h.Annotation()["name"] = name
	h.Annotation()["title"] = name
	return h
}

// NewAmplitudeHist returns the raw amplitude spectrum used for calibration.
func NewAmplitudeHist(name string) *hbook.H1D {
	return newNamedH1D(name, AMPLITUDE_BINS, 0, AMPLITUDE_MAX)
}

// NewEnergyHist returns an energy spectrum in keV.
func NewEnergyHist(name string) *hbook.H1D {
	return newNamedH1D(name, ENERGY_BINS, 0, ENERGY_MAX)
}

// NewTOFHist returns a histogram covering the corrected TOF range.
func NewTOFHist(name string) *hbook.H1D {
	return newNamedH1D(name, TOF_BINS, -TOF_PERIOD, 0)
}

// mergeHists sums the bin contents of two histograms with the same
// binning. A nil dst returns src.
func mergeHists(dst, src *hbook.H1D) *hbook.H1D {
	if dst == nil {
		return src
	}
	if src == nil {
		return dst
	}
	name := histName(dst)
	merged := hbook.AddH1D(dst, src)
	merged.Annotation()["name"] = name
	merged.Annotation()["title"] = name
	return merged
}

func histName(h *hbook.H1D) string {
	name, _ := h.Annotation()["name"].(string)
	return name
}

// histContent sums the in-range bin contents.
func histContent(h *hbook.H1D) float64 {
	var sum float64
	for i := 0; i < h.Len(); i++ {
		sum += h.Value(i)
	}
	return sum
}

func histValues(h *hbook.H1D) []float64 {
	values := make([]float64, h.Len())
	for i := range values {
		values[i] = h.Value(i)
	}
	return values
}

// FillAmplitudes builds the raw amplitude spectrum of every detector
// channel.
func FillAmplitudes(events []RawEvent) [N_DET_CH]*hbook.H1D {
	var hists [N_DET_CH]*hbook.H1D
	for i, ch := range DetectorChannels {
		hists[i] = NewAmplitudeHist(ampHistName(ch))
	}
	for _, event := range events {
		for i, ch := range DetectorChannels {
			hists[i].Fill(event.Amplitude[ch], 1)
		}
	}
	return hists
}

func ampHistName(channel int) string {
	return "hAmpRaw" + strconv.Itoa(channel)
}
