package forecast

import (
	"fmt"
	"math"
)

// DefaultBeachOrientation is the direction a beach faces when none is
// configured: 180 degrees, a south-facing beach.
const DefaultBeachOrientation = 180.0

// Rating band labels.
const (
	BandPoor      = "Poor"
	BandFair      = "Fair"
	BandGood      = "Good"
	BandExcellent = "Excellent"
	BandEpic      = "Epic"
)

// Stock descriptions per band, used when no override phrase applies.
var bandPhrases = map[string]string{
	BandPoor:      "Not worth the paddle",
	BandFair:      "Rideable but nothing special",
	BandGood:      "Fun conditions worth a surf",
	BandExcellent: "Quality waves on offer",
	BandEpic:      "Firing, drop everything",
}

// CalculateRating scores a session's averaged conditions on a 1-10 scale.
// It is a pure function of its five inputs: wave height (m), wave period (s),
// wind speed (km/h), wind direction (deg), and the direction the beach faces
// (deg). Wind blowing from land to sea (offshore) grooms the wave face and
// scores better than onshore wind at the same speed.
//
// The returned description combines the rating band with either an override
// phrase for extreme conditions or a stock phrase for the band. Any finite
// input produces an in-range rating; implausible values are scored, not
// rejected.
func CalculateRating(waveHeight, wavePeriod, windSpeed, windDirection, beachOrientation float64) (int, string) {
	score := 5.0

	// Longer-period swell carries more energy and breaks cleaner.
	switch {
	case wavePeriod < 6:
		score -= 1
	case wavePeriod < 8:
		// neutral
	case wavePeriod < 12:
		score += 2
	default:
		score += 3
	}

	// Height sweet spot is 0.5-2.5m; very large surf scores a diminishing
	// return since it is hazardous for most surfers.
	switch {
	case waveHeight < 0.5:
		score -= 2
	case waveHeight < 1.5:
		score += 2
	case waveHeight < 2.5:
		score += 3
	default:
		score += 1
	}

	offshore := IsOffshore(windDirection, beachOrientation)
	switch {
	case windSpeed < 5:
		// Glassy regardless of direction.
		score += 2
	case windSpeed < 15:
		if offshore {
			score += 1
		} else {
			score -= 1
		}
	default:
		if !offshore {
			score -= 2
		}
	}

	rating := int(math.Round(score))
	if rating < 1 {
		rating = 1
	}
	if rating > 10 {
		rating = 10
	}

	return rating, describeRating(rating, waveHeight, windSpeed)
}

// IsOffshore reports whether the wind blows from land toward the sea for a
// beach facing beachOrientation degrees. A wind more than 90 degrees away
// from the direction the beach faces comes from behind it.
func IsOffshore(windDirection, beachOrientation float64) bool {
	// math.Mod keeps the sign of the dividend, so normalize before folding.
	angleDiff := math.Abs(normalizeDegrees(windDirection-beachOrientation+180) - 180)
	return angleDiff > 90
}

func describeRating(rating int, waveHeight, windSpeed float64) string {
	var band string
	switch {
	case rating <= 3:
		band = BandPoor
	case rating <= 5:
		band = BandFair
	case rating <= 7:
		band = BandGood
	case rating <= 9:
		band = BandExcellent
	default:
		band = BandEpic
	}

	phrase := bandPhrases[band]
	switch {
	case waveHeight < 0.3:
		phrase = "Waves too small"
	case windSpeed >= 20:
		phrase = "Strong winds affecting conditions"
	}

	return fmt.Sprintf("%s - %s", band, phrase)
}
