package forecast

import (
	"strings"
	"time"
)

// AggregateSession buckets the hourly samples falling on date inside the
// session's hour window, averages them, and scores the result. Wind samples
// are matched to marine samples by timestamp string rather than index, since
// the two bundles come from separate API calls and may have gaps.
//
// Missing values are skipped, never treated as zero. A session with no wave
// height samples at all is undefined and returns nil; callers render a "no
// data" placeholder for it. A session whose period or wind arrays are wholly
// absent still aggregates, with those means defaulting to zero.
func AggregateSession(marine *MarineSeries, wind *WindSeries, date string, session Session, tideState string, beachOrientation float64) *SessionSummary {
	startHour, endHour := session.Window()

	windIdx := make(map[string]int, len(wind.Time))
	for i, ts := range wind.Time {
		windIdx[ts] = i
	}

	var (
		heights, periods []float64
		speeds, dirs     []float64
	)
	for i, ts := range marine.Time {
		if !strings.HasPrefix(ts, date) {
			continue
		}
		h, ok := timestampHour(ts)
		if !ok || h < startHour || h > endHour {
			continue
		}

		if v := at(marine.WaveHeight, i); v != nil {
			heights = append(heights, *v)
		}
		if v := at(marine.WavePeriod, i); v != nil {
			periods = append(periods, *v)
		}
		if j, ok := windIdx[ts]; ok {
			if v := at(wind.WindSpeed, j); v != nil {
				speeds = append(speeds, *v)
			}
			if v := at(wind.WindDirection, j); v != nil {
				dirs = append(dirs, *v)
			}
		}
	}

	if len(heights) == 0 {
		return nil
	}

	summary := &SessionSummary{
		Session:       session,
		WaveHeight:    mean(heights),
		WavePeriod:    mean(periods),
		WindSpeed:     mean(speeds),
		WindDirection: CircularMean(dirs),
		TideState:     tideState,
	}
	summary.Rating, summary.Description = CalculateRating(
		summary.WaveHeight,
		summary.WavePeriod,
		summary.WindSpeed,
		summary.WindDirection,
		beachOrientation,
	)
	return summary
}

// timestampHour extracts the hour-of-day from an hourly timestamp.
func timestampHour(ts string) (int, bool) {
	for _, layout := range tideTimeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// at returns the i-th element of an optional-value array, or nil when the
// array is shorter than its time axis.
func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// mean returns the arithmetic mean, or 0 for an empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
