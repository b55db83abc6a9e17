package ssacal

const (
	// Period of the trigger clock in TOF units
	TOF_PERIOD = 4096.
	// Number of periods a raw difference may have wrapped
	TOF_FOLDS = 5
)

// NormalizeTOF maps a raw channel-minus-trigger time difference into
// (-TOF_PERIOD, 0]. A value in (-(j+1)P, -jP] for j in [0, TOF_FOLDS) is
// shifted by j periods, anything else is returned unchanged.
func NormalizeTOF(raw float64) float64 {
	for j := 0; j < TOF_FOLDS; j++ {
		lo := -float64(j+1) * TOF_PERIOD
		hi := -float64(j) * TOF_PERIOD
		if raw > lo && raw <= hi {
			return raw + float64(j)*TOF_PERIOD
		}
	}
	return raw
}

// EventTOF returns the corrected TOF of a digitizer channel.
func EventTOF(event *RawEvent, channel int) float64 {
	return NormalizeTOF(event.ChannelTime[channel] - event.TriggerTime)
}
