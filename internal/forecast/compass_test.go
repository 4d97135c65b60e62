package forecast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swellbot/swellbot/internal/forecast"
)

func TestDegreesToCompass(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{22.5, "NNE"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{337.5, "NNW"},
		{350, "N"},   // wraps back around to north
		{360, "N"},   // full circle normalizes to 0
		{-45, "NW"},  // negative angles normalize first
		{405, "NE"},  // 405 - 360 = 45
		{11.2, "N"},  // just below the NNE boundary
		{11.3, "NNE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, forecast.DegreesToCompass(tt.degrees), "degrees=%v", tt.degrees)
	}
}

func TestCircularMean(t *testing.T) {
	tests := []struct {
		name    string
		degrees []float64
		want    float64
	}{
		{"empty input", nil, 0},
		{"single value", []float64{10}, 10},
		{"wraps around north", []float64{350, 10}, 0},
		{"no wrap", []float64{90, 180}, 135},
		{"quarter circle", []float64{0, 90}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, forecast.CircularMean(tt.degrees), 0.001)
		})
	}
}

func TestCircularMean_ArithmeticMeanWouldBeWrong(t *testing.T) {
	// The arithmetic mean of 350 and 10 is 180, pointing the opposite way.
	got := forecast.CircularMean([]float64{350, 10})
	assert.InDelta(t, 0, got, 0.001)
}
