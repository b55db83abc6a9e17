package ssacal

const (
	// Digitizer channels stored per trigger in the SSA trees
	N_DIGI_CH = 16
	// Detectors are read on even digitizer channels
	N_DET_CH = 4
	// Beam monitor, passed through unmodified
	MONITOR_CH = 14
)

// DetectorChannels lists the digitizer channel of each detector.
var DetectorChannels = [N_DET_CH]int{0, 2, 4, 6}

// RawEvent is one trigger as read from a run file.
type RawEvent struct {
	Amplitude   [N_DIGI_CH]float64
	ChannelTime [N_DIGI_CH]float64
	TriggerTime float64
}

// ReducedEvent is the output row written for every input event.
// Energies of channels without calibration are NaN.
type ReducedEvent struct {
	RunNumber int
	Energy    [N_DET_CH]float64
	TOF       [N_DET_CH]float64
	Monitor   float64
}

// DetectorIndex returns the position of a digitizer channel in
// DetectorChannels, or -1.
func DetectorIndex(channel int) int {
	for i, ch := range DetectorChannels {
		if ch == channel {
			return i
		}
	}
	return -1
}
