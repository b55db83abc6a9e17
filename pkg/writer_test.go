package ssacal

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterEvents(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "analysis.h5")
	writer, err := NewWriter(fname)
	require.NoError(t, err)

	events := []ReducedEvent{
		{RunNumber: 58, Energy: [N_DET_CH]float64{1, 2, 3, math.NaN()}, TOF: [N_DET_CH]float64{-1, -2, -3, -4}, Monitor: 7},
		{RunNumber: 58, Energy: [N_DET_CH]float64{5, 6, 7, 8}, TOF: [N_DET_CH]float64{-5, -6, -7, -8}, Monitor: 8},
	}
	require.NoError(t, writer.WriteEvents(events[:1]))
	require.NoError(t, writer.WriteEvents(events[1:]))
	require.NoError(t, writer.WriteRunInfo(58, 2))
	assert.Equal(t, 2, writer.EvtCounter)
	require.NoError(t, writer.Close())

	read, err := ReadEvents(fname)
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.True(t, math.IsNaN(read[0].Energy[3]))
	read[0].Energy[3] = 0
	events[0].Energy[3] = 0
	assert.Equal(t, events, read)
}

func TestWriterSpectra(t *testing.T) {
	spectra, err := SubtractBackground(2, channelEvents(2, backgroundEvents(100)), DEFAULT_TOF_OUTER_BOUND)
	require.NoError(t, err)

	fname := filepath.Join(t.TempDir(), "analysis.h5")
	writer, err := NewWriter(fname)
	require.NoError(t, err)
	require.NoError(t, writer.WriteSpectra(spectra))
	require.NoError(t, writer.Close())

	for _, kind := range []string{"raw", "prompt", "early", "late", "corrected"} {
		values, err := ReadSpectrum(fname, kind, 2)
		require.NoError(t, err)
		assert.Len(t, values, ENERGY_BINS)
	}
	corrected, err := ReadSpectrum(fname, "corrected", 2)
	require.NoError(t, err)
	assert.Equal(t, histValues(spectra.Corrected), corrected)

	_, err = ReadSpectrum(fname, "corrected", 0)
	require.Error(t, err)
}

// channelEvents moves the channel 0 values of events to another detector
// channel.
func channelEvents(channel int, events []ReducedEvent) []ReducedEvent {
	index := DetectorIndex(channel)
	moved := make([]ReducedEvent, len(events))
	for i, event := range events {
		moved[i].Energy[index] = event.Energy[0]
		moved[i].TOF[index] = event.TOF[0]
	}
	return moved
}
