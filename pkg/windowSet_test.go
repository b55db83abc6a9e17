package ssacal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWindowSet(t *testing.T) {
	other := [N_REF_LINES]Range{{1, 2}, {3, 4}, {5, 6}}

	windows := SelectWindowSet(6, DefaultSixMeVRanges, other)
	assert.Equal(t, SixMeVWindows, windows.Kind)
	assert.Equal(t, Range{Low: 14500, High: 15500}, windows.Ranges[1])

	for _, energy := range []int{0, 4, 8} {
		windows = SelectWindowSet(energy, DefaultSixMeVRanges, other)
		assert.Equal(t, OtherWindows, windows.Kind)
		assert.Equal(t, other, windows.Ranges)
	}
}

func TestWindowSetJSON(t *testing.T) {
	windows := WindowSet{Kind: OtherWindows, Ranges: DefaultSixMeVRanges}
	data, err := json.Marshal(windows)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Kind":"other","Ranges":[[5000,6000],[14500,15500],[26500,27500]]}`, string(data))

	var decoded WindowSet
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, windows, decoded)

	var kind WindowSetKind
	assert.Error(t, json.Unmarshal([]byte(`"7MeV"`), &kind))
	assert.Equal(t, "UNKNOWN", WindowSetKind(5).String())
}
