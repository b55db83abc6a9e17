package ssacal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillAmplitudes(t *testing.T) {
	events := make([]RawEvent, 3)
	for i := range events {
		events[i].Amplitude[0] = 5500.2
		events[i].Amplitude[2] = float64(i)
		events[i].Amplitude[1] = 100
	}

	hists := FillAmplitudes(events)
	assert.Equal(t, "hAmpRaw0", histName(hists[0]))
	assert.Equal(t, "hAmpRaw6", histName(hists[3]))
	assert.Equal(t, 3., hists[0].Value(5500))
	assert.Equal(t, 1., hists[1].Value(2))
	assert.Equal(t, 3., hists[3].Value(0))
}

func TestMergeHists(t *testing.T) {
	a := NewEnergyHist("raw_ch0")
	b := NewEnergyHist("other")
	a.Fill(10.5, 1)
	b.Fill(10.5, 2)
	b.Fill(20.5, 1)

	merged := mergeHists(a, b)
	assert.Equal(t, "raw_ch0", histName(merged))
	assert.Equal(t, 3., merged.Value(10))
	assert.Equal(t, 1., merged.Value(20))

	assert.Same(t, b, mergeHists(nil, b))
	assert.Same(t, a, mergeHists(a, nil))
}
