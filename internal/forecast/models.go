// Package forecast provides surf condition aggregation and rating.
//
// The package turns raw hourly marine and wind time series into per-session
// surf summaries: it detects tidal extremes from the sampled sea-level curve,
// buckets hours into morning/midday/afternoon sessions, and scores each
// session on a 1-10 scale from wave height, wave period, and how the wind
// sits relative to the beach orientation.
package forecast

import (
	"context"
	"errors"
	"time"
)

// Forecast errors.
var (
	// ErrLocationNotFound indicates the requested spot could not be geocoded.
	ErrLocationNotFound = errors.New("location not found")
	// ErrBeyondHorizon indicates the requested day is outside the 5-day forecast window.
	ErrBeyondHorizon = errors.New("requested day is beyond the forecast window")
	// ErrProviderUnavailable indicates the marine data provider is down.
	ErrProviderUnavailable = errors.New("marine data provider unavailable")
)

// MaxForecastDays is the forecast horizon supported by the upstream data source.
const MaxForecastDays = 5

// MarineSeries holds index-aligned hourly marine data for up to MaxForecastDays.
// A nil entry means the value is missing for that hour and must be skipped,
// never treated as zero.
type MarineSeries struct {
	// Time holds ISO-8601-like hourly timestamps (e.g. "2026-08-28T06:00"),
	// ascending, possibly spanning multiple calendar days.
	Time          []string
	WaveHeight    []*float64 // meters
	WavePeriod    []*float64 // seconds
	WaveDirection []*float64 // degrees 0-360
	SeaLevel      []*float64 // meters above mean sea level
}

// WindSeries holds index-aligned hourly wind data. It is time-aligned with
// MarineSeries by timestamp string, not by index: the two bundles come from
// separate API calls and either may have gaps.
type WindSeries struct {
	Time          []string
	WindSpeed     []*float64 // km/h at 10m
	WindDirection []*float64 // degrees 0-360
}

// TideKind identifies a tidal extremum.
type TideKind string

const (
	TideHigh TideKind = "high"
	TideLow  TideKind = "low"
)

// TideEvent is a local extremum in the sampled sea-level curve.
type TideEvent struct {
	Time   string   // hourly timestamp the extremum was observed at
	Height float64  // meters above mean sea level
	Kind   TideKind // high or low
}

// Session names a part of the day used to bucket hourly samples.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionMidday    Session = "midday"
	SessionAfternoon Session = "afternoon"
)

// Sessions lists all sessions in chronological order.
var Sessions = []Session{SessionMorning, SessionMidday, SessionAfternoon}

// Window returns the inclusive hour range for the session. Adjacent sessions
// deliberately share their boundary hour (10 belongs to both morning and
// midday, 14 to both midday and afternoon).
func (s Session) Window() (startHour, endHour int) {
	switch s {
	case SessionMorning:
		return 6, 10
	case SessionMidday:
		return 10, 14
	default:
		return 14, 18
	}
}

// Label returns the display name for the session.
func (s Session) Label() string {
	switch s {
	case SessionMorning:
		return "Morning"
	case SessionMidday:
		return "Midday"
	default:
		return "Afternoon"
	}
}

// SessionSummary holds averaged conditions and the rating for one session.
// All values are derived per call and never persisted.
type SessionSummary struct {
	Session       Session
	WaveHeight    float64 // meters, arithmetic mean over the session window
	WavePeriod    float64 // seconds, arithmetic mean over the session window
	WindSpeed     float64 // km/h, arithmetic mean over the session window
	WindDirection float64 // degrees, circular mean over the session window
	Rating        int     // 1-10
	Description   string
	TideState     string // empty when no tide data applies to the session
}

// Report is a full day's surf forecast for one spot.
type Report struct {
	Location  string
	Lat       float64
	Lon       float64
	Date      string // YYYY-MM-DD
	DayLabel  string // "Today", "Tomorrow", weekday name
	DayOffset int
	Sessions  []SessionSummary // one entry per session that had data
	Tides     []TideEvent
	Text      string // rendered forecast, what the agent tool returns
	FetchedAt time.Time
}

// Provider fetches hourly marine and wind bundles for a location.
type Provider interface {
	// GetMarine retrieves the marine bundle (waves and sea level) for up to
	// days forecast days at hourly resolution.
	GetMarine(ctx context.Context, lat, lon float64, days int) (*MarineSeries, error)
	// GetWind retrieves the wind bundle for the same horizon.
	GetWind(ctx context.Context, lat, lon float64, days int) (*WindSeries, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}
