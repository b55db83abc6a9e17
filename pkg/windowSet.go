package ssacal

import (
	"encoding/json"
	"fmt"
)

// Range is a closed amplitude interval, written as [low, high] in JSON.
type Range struct {
	Low  float64
	High float64
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Low, r.High})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if pair[0] > pair[1] {
		return fmt.Errorf("invalid range [%g, %g]", pair[0], pair[1])
	}
	*r = Range{Low: pair[0], High: pair[1]}
	return nil
}

type WindowSetKind int

const (
	SixMeVWindows WindowSetKind = iota
	OtherWindows
)

var windowSetKindStrings = []string{
	"6MeV",
	"other",
}

func (k WindowSetKind) String() string {
	if k < SixMeVWindows || k > OtherWindows {
		return "UNKNOWN"
	}
	return windowSetKindStrings[k]
}

func (k WindowSetKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *WindowSetKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range windowSetKindStrings {
		if v == s {
			*k = WindowSetKind(i)
			return nil
		}
	}
	return fmt.Errorf("invalid WindowSetKind: %s", s)
}

// WindowSet holds the amplitude search range of each reference line, in
// the order of ReferenceEnergies.
type WindowSet struct {
	Kind   WindowSetKind
	Ranges [N_REF_LINES]Range
}

// Search ranges observed with the 6 MeV beam setting
var DefaultSixMeVRanges = [N_REF_LINES]Range{
	{Low: 5000, High: 6000},
	{Low: 14500, High: 15500},
	{Low: 26500, High: 27500},
}

// No separate table was recorded for the other settings, they start from
// the 6 MeV ranges and are expected to be overridden in the configuration.
var DefaultOtherRanges = DefaultSixMeVRanges

// SelectWindowSet picks the search ranges for a nominal beam energy
// setting.
func SelectWindowSet(energySetting int, sixMeV, other [N_REF_LINES]Range) WindowSet {
	if energySetting == 6 {
		return WindowSet{Kind: SixMeVWindows, Ranges: sixMeV}
	}
	return WindowSet{Kind: OtherWindows, Ranges: other}
}
