package ssacal

import (
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

const (
	// Half width of the prompt window around the TOF peak
	PROMPT_HALF_WIDTH = 500.
	// Default lower edge of the early window
	DEFAULT_TOF_OUTER_BOUND = -4000.
)

type WindowKind int

const (
	Prompt WindowKind = iota
	Early
	Late
)

var windowKindStrings = []string{
	"prompt",
	"early",
	"late",
}

func (k WindowKind) String() string {
	if k < Prompt || k > Late {
		return "UNKNOWN"
	}
	return windowKindStrings[k]
}

// TOFWindow selects the TOF values in (Lo, Hi]. The late window ends at 0,
// so a TOF of exactly 0 (a channel time one full period before the
// trigger) is counted as late.
type TOFWindow struct {
	Kind WindowKind
	Lo   float64
	Hi   float64
}

func (w TOFWindow) Contains(tof float64) bool {
	return tof > w.Lo && tof <= w.Hi
}

// Width is the length of the interval used to fill the window, the
// normalization of the accidental subtraction depends only on it.
func (w TOFWindow) Width() float64 {
	return w.Hi - w.Lo
}

type Windows struct {
	Prompt TOFWindow
	Early  TOFWindow
	Late   TOFWindow
}

// PartitionWindows builds the three disjoint windows around the TOF peak.
func PartitionWindows(xpeak, outer float64) Windows {
	return Windows{
		Prompt: TOFWindow{Kind: Prompt, Lo: xpeak - PROMPT_HALF_WIDTH, Hi: xpeak + PROMPT_HALF_WIDTH},
		Early:  TOFWindow{Kind: Early, Lo: outer, Hi: xpeak - PROMPT_HALF_WIDTH},
		Late:   TOFWindow{Kind: Late, Lo: xpeak + PROMPT_HALF_WIDTH, Hi: 0},
	}
}

// Classify returns the window a TOF value falls in. ok is false for values
// outside the three windows.
func (w Windows) Classify(tof float64) (kind WindowKind, ok bool) {
	for _, window := range w.List() {
		if window.Contains(tof) {
			return window.Kind, true
		}
	}
	return Prompt, false
}

func (w Windows) List() []TOFWindow {
	return []TOFWindow{w.Prompt, w.Early, w.Late}
}

// ChannelSpectra holds the energy spectra of one detector channel through
// the accidental subtraction.
type ChannelSpectra struct {
	Channel   int
	TOFPeak   float64
	Windows   Windows
	TOF       *hbook.H1D
	Raw       *hbook.H1D
	Prompt    *hbook.H1D
	Early     *hbook.H1D
	Late      *hbook.H1D
	Corrected *hbook.H1D
}

func spectrumName(kind string, channel int) string {
	return fmt.Sprintf("%s_ch%d", kind, channel)
}

// NewChannelSpectra returns empty TOF and raw energy spectra for a
// channel.
func NewChannelSpectra(channel int) *ChannelSpectra {
	return &ChannelSpectra{
		Channel: channel,
		TOF:     NewTOFHist(spectrumName("tof", channel)),
		Raw:     NewEnergyHist(spectrumName("raw", channel)),
	}
}

// Fill adds the TOF and, when defined, the energy of an event.
func (s *ChannelSpectra) Fill(energy, tof float64) {
	s.TOF.Fill(tof, 1)
	if !math.IsNaN(energy) {
		s.Raw.Fill(energy, 1)
	}
}

// Merge adds the TOF and raw spectra of other into s.
func (s *ChannelSpectra) Merge(other *ChannelSpectra) {
	s.TOF = mergeHists(s.TOF, other.TOF)
	s.Raw = mergeHists(s.Raw, other.Raw)
}

// SubtractAccidentals computes Corrected = Prompt - 0.5*(Wp/We)*Early -
// 0.5*(Wp/Wl)*Late. Bins may become negative.
func SubtractAccidentals(spectra *ChannelSpectra) error {
	w := spectra.Windows
	for _, window := range w.List() {
		if !(window.Width() > 0) {
			return &ErrEmptyWindow{
				Channel: spectra.Channel,
				Window:  window.Kind,
				Reason:  fmt.Sprintf("non positive width (%g, %g]", window.Lo, window.Hi),
			}
		}
	}
	for _, kind := range []WindowKind{Prompt, Early, Late} {
		h := spectra.window(kind)
		if h == nil || h.Entries() == 0 {
			return &ErrEmptyWindow{Channel: spectra.Channel, Window: kind, Reason: "no entries"}
		}
	}

	earlyScale := 0.5 * w.Prompt.Width() / w.Early.Width()
	lateScale := 0.5 * w.Prompt.Width() / w.Late.Width()
	corrected := hbook.AddScaledH1D(spectra.Prompt, -earlyScale, spectra.Early)
	corrected = hbook.AddScaledH1D(corrected, -lateScale, spectra.Late)
	corrected.Annotation()["name"] = spectrumName("corrected", spectra.Channel)
	corrected.Annotation()["title"] = spectrumName("corrected", spectra.Channel)
	spectra.Corrected = corrected

	if verbosity > 1 {
		message := fmt.Sprintf("Channel %d: prompt %d, early %d (x%.4f), late %d (x%.4f) entries",
			spectra.Channel, spectra.Prompt.Entries(), spectra.Early.Entries(), earlyScale,
			spectra.Late.Entries(), lateScale)
		logger.Info(message, "background")
	}
	return nil
}

func (s *ChannelSpectra) window(kind WindowKind) *hbook.H1D {
	switch kind {
	case Prompt:
		return s.Prompt
	case Early:
		return s.Early
	case Late:
		return s.Late
	}
	return nil
}

// SubtractBackground runs the whole accidental subtraction of a channel
// over the reduced events.
func SubtractBackground(channel int, events []ReducedEvent, outer float64) (*ChannelSpectra, error) {
	index := DetectorIndex(channel)
	if index < 0 {
		return nil, fmt.Errorf("channel %d is not a detector channel", channel)
	}
	spectra := NewChannelSpectra(channel)
	for i := range events {
		spectra.Fill(events[i].Energy[index], events[i].TOF[index])
	}
	return spectra, SubtractWindows(spectra, events, outer)
}

// SubtractWindows completes spectra whose TOF histogram is already filled:
// it locates the TOF peak, splits the events into windows and subtracts
// the accidentals.
func SubtractWindows(spectra *ChannelSpectra, events []ReducedEvent, outer float64) error {
	channel := spectra.Channel
	index := DetectorIndex(channel)
	if index < 0 {
		return fmt.Errorf("channel %d is not a detector channel", channel)
	}
	if histContent(spectra.TOF) == 0 {
		return &ErrEmptyWindow{Channel: channel, Window: Prompt, Reason: "no TOF entries"}
	}

	peak, err := LocatePeak(spectra.TOF, -TOF_PERIOD, 0)
	if err != nil {
		return err
	}
	spectra.TOFPeak = peak.X
	spectra.Windows = PartitionWindows(peak.X, outer)

	spectra.Prompt = NewEnergyHist(spectrumName("prompt", channel))
	spectra.Early = NewEnergyHist(spectrumName("early", channel))
	spectra.Late = NewEnergyHist(spectrumName("late", channel))
	for i := range events {
		energy := events[i].Energy[index]
		if math.IsNaN(energy) {
			continue
		}
		kind, ok := spectra.Windows.Classify(events[i].TOF[index])
		if !ok {
			continue
		}
		spectra.window(kind).Fill(energy, 1)
	}

	if verbosity > 0 {
		message := fmt.Sprintf("Channel %d: TOF peak at %g, prompt (%g, %g], early (%g, %g], late (%g, %g]",
			channel, peak.X,
			spectra.Windows.Prompt.Lo, spectra.Windows.Prompt.Hi,
			spectra.Windows.Early.Lo, spectra.Windows.Early.Hi,
			spectra.Windows.Late.Lo, spectra.Windows.Late.Hi)
		logger.Info(message, "background")
	}
	return SubtractAccidentals(spectra)
}
