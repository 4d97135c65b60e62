package forecast

import "math"

// compassLabels lists the 16-point compass rose starting at north and
// proceeding clockwise in 22.5 degree steps.
var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE",
	"E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW",
	"W", "WNW", "NW", "NNW",
}

// DegreesToCompass maps a direction in degrees to a 16-point compass label.
// Any finite input is accepted; negative angles and angles above 360 are
// normalized first.
func DegreesToCompass(degrees float64) string {
	norm := normalizeDegrees(degrees)
	idx := int(math.Round(norm/22.5)) % 16
	return compassLabels[idx]
}

// CircularMean computes the mean of a set of directions in degrees using
// vector summation, so that wrap-around at 360 is handled correctly
// (the mean of 350 and 10 is 0, not 180). An empty input yields 0.
func CircularMean(degrees []float64) float64 {
	if len(degrees) == 0 {
		return 0.0
	}

	var sumSin, sumCos float64
	for _, d := range degrees {
		rad := d * math.Pi / 180
		sumSin += math.Sin(rad)
		sumCos += math.Cos(rad)
	}

	mean := math.Atan2(sumSin, sumCos) * 180 / math.Pi
	return normalizeDegrees(mean)
}

// normalizeDegrees maps any angle into [0, 360).
func normalizeDegrees(degrees float64) float64 {
	norm := math.Mod(degrees, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}
