package ssacal

import (
	"math"
	"sort"

	"golang.org/x/exp/maps"
)

// Calibrations holds the calibration function of each digitizer channel.
type Calibrations map[int]CalibrationFunction

// NewCalibrations indexes a list of functions by channel.
func NewCalibrations(functions []CalibrationFunction) Calibrations {
	calibrations := make(Calibrations, len(functions))
	for _, fn := range functions {
		calibrations[fn.Channel] = fn
	}
	return calibrations
}

func (c Calibrations) Energy(channel int, amplitude float64) (float64, error) {
	fn, ok := c[channel]
	if !ok {
		return 0, &ErrMissingCalibration{Channel: channel}
	}
	return fn.Energy(amplitude), nil
}

// Channels returns the calibrated channels in ascending order.
func (c Calibrations) Channels() []int {
	channels := maps.Keys(c)
	sort.Ints(channels)
	return channels
}

// Functions returns the calibration functions ordered by channel.
func (c Calibrations) Functions() []CalibrationFunction {
	functions := make([]CalibrationFunction, 0, len(c))
	for _, ch := range c.Channels() {
		functions = append(functions, c[ch])
	}
	return functions
}

// Reconstruct computes energy and corrected TOF of every detector channel.
// Channels without calibration get a NaN energy.
func (c Calibrations) Reconstruct(event *RawEvent, run int) ReducedEvent {
	reduced := ReducedEvent{
		RunNumber: run,
		Monitor:   event.Amplitude[MONITOR_CH],
	}
	for i, ch := range DetectorChannels {
		energy, err := c.Energy(ch, event.Amplitude[ch])
		if err != nil {
			energy = math.NaN()
		}
		reduced.Energy[i] = energy
		reduced.TOF[i] = EventTOF(event, ch)
	}
	return reduced
}
