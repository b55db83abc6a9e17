package ssacal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionWindows(t *testing.T) {
	windows := PartitionWindows(-2000, DEFAULT_TOF_OUTER_BOUND)

	assert.Equal(t, 1000., windows.Prompt.Width())
	assert.Equal(t, 1500., windows.Early.Width())
	assert.Equal(t, 1500., windows.Late.Width())

	assert.True(t, windows.Prompt.Contains(-1500))
	assert.False(t, windows.Prompt.Contains(-2500))
	assert.True(t, windows.Early.Contains(-2500))
	assert.False(t, windows.Early.Contains(-4000))
	assert.True(t, windows.Late.Contains(0))

	kind, ok := windows.Classify(-1000)
	require.True(t, ok)
	assert.Equal(t, Late, kind)
	_, ok = windows.Classify(-4050)
	assert.False(t, ok)
	assert.Equal(t, "early", Early.String())
}

// backgroundEvents returns a flat TOF background at energy 3000.5 and a
// prompt signal at TOF -2000 with energy 1000.5.
func backgroundEvents(nSignal int) []ReducedEvent {
	var events []ReducedEvent
	for k := 0; k < 4000; k++ {
		var event ReducedEvent
		event.Energy[0] = 3000.5
		event.TOF[0] = -3999.5 + float64(k)
		events = append(events, event)
	}
	for k := 0; k < nSignal; k++ {
		var event ReducedEvent
		event.Energy[0] = 1000.5
		event.TOF[0] = -2000
		events = append(events, event)
	}
	return events
}

func TestSubtractBackgroundUniform(t *testing.T) {
	spectra, err := SubtractBackground(0, backgroundEvents(500), DEFAULT_TOF_OUTER_BOUND)
	require.NoError(t, err)

	assert.True(t, spectra.Windows.Prompt.Contains(-2000))
	assert.InDelta(t, 1000, spectra.Windows.Prompt.Width(), 1e-9)
	assert.Equal(t, int64(4500), spectra.TOF.Entries())
	assert.Equal(t, int64(4500), spectra.Raw.Entries())

	corrected := histValues(spectra.Corrected)
	assert.InDelta(t, 0, corrected[3000], 0.01)
	assert.InDelta(t, 500, corrected[1000], 1e-9)

	var total float64
	for _, v := range corrected {
		total += v
	}
	assert.InDelta(t, 500, total, 0.01)
	assert.Equal(t, "corrected_ch0", histName(spectra.Corrected))
}

func TestSubtractBackgroundEmptyWindow(t *testing.T) {
	var events []ReducedEvent
	for k := 0; k < 100; k++ {
		var event ReducedEvent
		event.Energy[0] = 1000.5
		event.TOF[0] = -2000
		events = append(events, event)
	}

	_, err := SubtractBackground(0, events, DEFAULT_TOF_OUTER_BOUND)
	var windowErr *ErrEmptyWindow
	require.True(t, errors.As(err, &windowErr))
	assert.Equal(t, Early, windowErr.Window)
	assert.Equal(t, 0, windowErr.Channel)

	_, err = SubtractBackground(2, nil, DEFAULT_TOF_OUTER_BOUND)
	require.True(t, errors.As(err, &windowErr))
	assert.Equal(t, 2, windowErr.Channel)

	_, err = SubtractBackground(3, events, DEFAULT_TOF_OUTER_BOUND)
	require.Error(t, err)
}

func TestSubtractAccidentalsNonPositiveWidth(t *testing.T) {
	spectra := NewChannelSpectra(0)
	spectra.Windows = PartitionWindows(-1800, -2000)
	spectra.Prompt = NewEnergyHist("prompt")
	spectra.Early = NewEnergyHist("early")
	spectra.Late = NewEnergyHist("late")
	spectra.Early.Fill(10, 1)
	spectra.Late.Fill(10, 1)

	err := SubtractAccidentals(spectra)
	var windowErr *ErrEmptyWindow
	require.True(t, errors.As(err, &windowErr))
	assert.Equal(t, Early, windowErr.Window)
}

func TestSubtractAccidentalsScaling(t *testing.T) {
	spectra := NewChannelSpectra(4)
	spectra.Windows = Windows{
		Prompt: TOFWindow{Kind: Prompt, Lo: -100, Hi: 100},
		Early:  TOFWindow{Kind: Early, Lo: -500, Hi: -100},
		Late:   TOFWindow{Kind: Late, Lo: 100, Hi: 200},
	}
	spectra.Prompt = NewEnergyHist("prompt")
	spectra.Early = NewEnergyHist("early")
	spectra.Late = NewEnergyHist("late")
	spectra.Prompt.Fill(10.5, 10)
	spectra.Early.Fill(10.5, 4)
	spectra.Late.Fill(10.5, 2)
	spectra.Late.Fill(20.5, 1)

	require.NoError(t, SubtractAccidentals(spectra))
	corrected := histValues(spectra.Corrected)
	// 10 - 0.5*(200/400)*4 - 0.5*(200/100)*2
	assert.InDelta(t, 7, corrected[10], 1e-12)
	assert.InDelta(t, -1, corrected[20], 1e-12)
}

func TestSubtractAccidentalsEmptyPrompt(t *testing.T) {
	spectra := NewChannelSpectra(6)
	spectra.Windows = PartitionWindows(-2000, DEFAULT_TOF_OUTER_BOUND)
	spectra.Prompt = NewEnergyHist("prompt")
	spectra.Early = NewEnergyHist("early")
	spectra.Late = NewEnergyHist("late")
	spectra.Early.Fill(10.5, 4)
	spectra.Late.Fill(10.5, 4)

	err := SubtractAccidentals(spectra)
	var windowErr *ErrEmptyWindow
	require.True(t, errors.As(err, &windowErr))
	assert.Equal(t, Prompt, windowErr.Window)
	assert.Equal(t, 6, windowErr.Channel)
	assert.Nil(t, spectra.Corrected)

	spectra.Prompt = nil
	err = SubtractAccidentals(spectra)
	require.True(t, errors.As(err, &windowErr))
	assert.Equal(t, Prompt, windowErr.Window)
}

func TestClassifyZeroTOF(t *testing.T) {
	windows := PartitionWindows(-2000, DEFAULT_TOF_OUTER_BOUND)
	kind, ok := windows.Classify(NormalizeTOF(-TOF_PERIOD))
	require.True(t, ok)
	assert.Equal(t, Late, kind)
}
