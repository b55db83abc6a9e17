package ssacal

import (
	"math"

	"go-hep.org/x/hep/hbook"
)

// gaussianCounts returns the rounded content of a gaussian peak for integer
// offsets in [-3 sigma, 3 sigma].
func gaussianCounts(amplitude, sigma float64) map[int]int {
	counts := make(map[int]int)
	width := int(3 * sigma)
	for offset := -width; offset <= width; offset++ {
		z := float64(offset) / sigma
		n := int(math.Round(amplitude * math.Exp(-0.5*z*z)))
		if n > 0 {
			counts[offset] = n
		}
	}
	return counts
}

// fillGaussian fills h with a gaussian peak whose bins start at center.
func fillGaussian(h *hbook.H1D, center, amplitude, sigma float64) {
	for offset, n := range gaussianCounts(amplitude, sigma) {
		h.Fill(center+float64(offset)+0.5, float64(n))
	}
}

var syntheticPeaks = [N_REF_LINES]float64{100, 300, 550}

var syntheticRanges = [N_REF_LINES]Range{
	{Low: 50, High: 150},
	{Low: 250, High: 350},
	{Low: 500, High: 600},
}

// syntheticEvents returns events with the same amplitude peaks on every
// detector channel and TOF values spread over the prompt and the two
// accidental windows.
func syntheticEvents(trigger float64) []RawEvent {
	var amplitudes []float64
	for _, center := range syntheticPeaks {
		for offset, n := range gaussianCounts(400, 5) {
			for k := 0; k < n; k++ {
				amplitudes = append(amplitudes, center+float64(offset)+0.25)
			}
		}
	}

	events := make([]RawEvent, len(amplitudes))
	for i, amp := range amplitudes {
		tof := -2000.
		if i%3 != 0 {
			tof = -3999.5 + float64((i*37)%3999)
		}
		events[i].TriggerTime = trigger
		for _, ch := range DetectorChannels {
			events[i].Amplitude[ch] = amp
			events[i].ChannelTime[ch] = trigger + tof
		}
		events[i].Amplitude[MONITOR_CH] = float64(i)
	}
	return events
}
