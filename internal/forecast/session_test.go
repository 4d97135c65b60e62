package forecast_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/forecast"
)

func morningSeries(date string) (*forecast.MarineSeries, *forecast.WindSeries) {
	times := make([]string, 0, 5)
	for h := 6; h <= 10; h++ {
		times = append(times, fmt.Sprintf("%sT%02d:00", date, h))
	}

	marine := &forecast.MarineSeries{
		Time:       times,
		WaveHeight: []*float64{ptr(1.0), ptr(2.0), nil, ptr(1.5), ptr(1.5)},
		WavePeriod: []*float64{ptr(10), ptr(10), ptr(10), ptr(10), ptr(10)},
	}
	wind := &forecast.WindSeries{
		Time:          times,
		WindSpeed:     []*float64{ptr(10), ptr(10), ptr(10), ptr(10), ptr(10)},
		WindDirection: []*float64{ptr(350), ptr(10), ptr(350), ptr(10), ptr(0)},
	}
	return marine, wind
}

func TestAggregateSession(t *testing.T) {
	date := "2026-08-28"
	marine, wind := morningSeries(date)

	summary := forecast.AggregateSession(marine, wind, date, forecast.SessionMorning, "Tide rising", 180)
	require.NotNil(t, summary)

	assert.Equal(t, forecast.SessionMorning, summary.Session)
	assert.InDelta(t, 1.5, summary.WaveHeight, 0.001) // nil sample skipped, not zeroed
	assert.InDelta(t, 10, summary.WavePeriod, 0.001)
	assert.InDelta(t, 10, summary.WindSpeed, 0.001)
	assert.InDelta(t, 0, summary.WindDirection, 0.001) // circular mean across north
	assert.Equal(t, "Tide rising", summary.TideState)

	// 1.5m at 10s with light offshore wind on a south-facing beach.
	assert.Equal(t, 10, summary.Rating)
	assert.Contains(t, summary.Description, "Epic")
}

func TestAggregateSession_BoundaryHourIsInclusive(t *testing.T) {
	date := "2026-08-28"
	times := []string{date + "T10:00"}
	marine := &forecast.MarineSeries{
		Time:       times,
		WaveHeight: []*float64{ptr(1.2)},
		WavePeriod: []*float64{ptr(8)},
	}
	wind := &forecast.WindSeries{Time: times}

	// Hour 10 belongs to both morning and midday.
	morning := forecast.AggregateSession(marine, wind, date, forecast.SessionMorning, "", 180)
	midday := forecast.AggregateSession(marine, wind, date, forecast.SessionMidday, "", 180)
	require.NotNil(t, morning)
	require.NotNil(t, midday)
	assert.InDelta(t, 1.2, morning.WaveHeight, 0.001)
	assert.InDelta(t, 1.2, midday.WaveHeight, 0.001)

	afternoon := forecast.AggregateSession(marine, wind, date, forecast.SessionAfternoon, "", 180)
	assert.Nil(t, afternoon)
}

func TestAggregateSession_NoWaveDataReturnsNil(t *testing.T) {
	date := "2026-08-28"
	times := []string{date + "T07:00", date + "T08:00", date + "T09:00"}
	marine := &forecast.MarineSeries{
		Time:       times,
		WaveHeight: []*float64{nil, nil, nil},
		WavePeriod: []*float64{ptr(8), ptr(8), ptr(8)},
	}
	wind := &forecast.WindSeries{Time: times}

	assert.Nil(t, forecast.AggregateSession(marine, wind, date, forecast.SessionMorning, "", 180))
}

func TestAggregateSession_IgnoresOtherDates(t *testing.T) {
	marine := &forecast.MarineSeries{
		Time:       []string{"2026-08-27T07:00", "2026-08-27T08:00"},
		WaveHeight: []*float64{ptr(1.0), ptr(1.0)},
	}
	wind := &forecast.WindSeries{}

	assert.Nil(t, forecast.AggregateSession(marine, wind, "2026-08-28", forecast.SessionMorning, "", 180))
}

func TestAggregateSession_WindMatchedByTimestampNotIndex(t *testing.T) {
	date := "2026-08-28"
	marine := &forecast.MarineSeries{
		Time:       []string{date + "T07:00", date + "T08:00"},
		WaveHeight: []*float64{ptr(1.0), ptr(1.0)},
		WavePeriod: []*float64{ptr(8), ptr(8)},
	}
	// Wind bundle starts an hour earlier, so indexes do not line up.
	wind := &forecast.WindSeries{
		Time:          []string{date + "T06:00", date + "T07:00", date + "T08:00"},
		WindSpeed:     []*float64{ptr(99), ptr(5), ptr(5)},
		WindDirection: []*float64{ptr(99), ptr(90), ptr(90)},
	}

	summary := forecast.AggregateSession(marine, wind, date, forecast.SessionMorning, "", 180)
	require.NotNil(t, summary)
	assert.InDelta(t, 5, summary.WindSpeed, 0.001)
	assert.InDelta(t, 90, summary.WindDirection, 0.001)
}

func TestAggregateSession_MissingWindDefaultsToZero(t *testing.T) {
	date := "2026-08-28"
	marine := &forecast.MarineSeries{
		Time:       []string{date + "T07:00", date + "T08:00"},
		WaveHeight: []*float64{ptr(1.0), ptr(1.0)},
	}
	wind := &forecast.WindSeries{}

	summary := forecast.AggregateSession(marine, wind, date, forecast.SessionMorning, "", 180)
	require.NotNil(t, summary)
	assert.Zero(t, summary.WindSpeed)
	assert.Zero(t, summary.WavePeriod)
}

func TestSessionWindow(t *testing.T) {
	start, end := forecast.SessionMorning.Window()
	assert.Equal(t, 6, start)
	assert.Equal(t, 10, end)

	start, end = forecast.SessionMidday.Window()
	assert.Equal(t, 10, start)
	assert.Equal(t, 14, end)

	start, end = forecast.SessionAfternoon.Window()
	assert.Equal(t, 14, start)
	assert.Equal(t, 18, end)
}
