package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 30.0, Clamp(12, 30, 100))
	assert.Equal(t, 100.0, Clamp(117.5, 30, 100))
	assert.Equal(t, 64.2, Clamp(64.2, 30, 100))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 85.3, RoundTo(85.26, 1))
	assert.Equal(t, 2.0, RoundTo(1.96, 1))
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 2.68, RoundPrice(2.675))
	assert.Equal(t, 1540.0, RoundPrice(1540.0000001))
	assert.Equal(t, 2312.46, RoundPrice(2312.4649))
}

func TestMeanStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.Equal(t, 5.0, Mean(values))
	assert.InDelta(t, 2.0, StdDev(values), 1e-9)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev(nil))
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{3, -1, 8, 2})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 8.0, hi)
}

func TestHaversine(t *testing.T) {
	// Bangalore -> Mysore is roughly 128 km as the crow flies
	d := Haversine(12.9716, 77.5946, 12.2958, 76.6394)
	assert.InDelta(t, 128, d, 4)
	assert.Zero(t, Haversine(19.076, 72.8777, 19.076, 72.8777))
}
