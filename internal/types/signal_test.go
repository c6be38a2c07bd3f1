package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalTypeDirection(t *testing.T) {
	tests := []struct {
		signal SignalType
		want   int
	}{
		{SignalTypeBuyFull, 1},
		{SignalTypeSellFull, -1},
		{SignalTypeBuyHalf, 0},
		{SignalTypeSellHalf, 0},
		{SignalTypeHold, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.signal), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.signal.Direction())
		})
	}
}

func TestSignalTypeSides(t *testing.T) {
	assert.True(t, SignalTypeBuyFull.IsBuy())
	assert.True(t, SignalTypeBuyHalf.IsBuy())
	assert.False(t, SignalTypeBuyFull.IsSell())

	assert.True(t, SignalTypeSellFull.IsSell())
	assert.True(t, SignalTypeSellHalf.IsSell())
	assert.False(t, SignalTypeSellHalf.IsBuy())

	assert.False(t, SignalTypeHold.IsBuy())
	assert.False(t, SignalTypeHold.IsSell())
}
