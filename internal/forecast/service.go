package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/geocoding"
	"github.com/swellbot/swellbot/internal/telemetry"
)

// ServiceConfig holds configuration for the forecast service.
type ServiceConfig struct {
	// Provider supplies the hourly marine and wind bundles.
	Provider Provider

	// Geocoder resolves spot names to coordinates.
	Geocoder geocoding.Geocoder

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records provider call and cache metrics when non-nil.
	Metrics *telemetry.ProviderMetrics

	// CacheTTL is how long to cache assembled reports (default: 15 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default:
	// 0.01 ~ 1.1km). Spots within the same cell share cached bundles.
	CacheGridSize float64

	// CleanupInterval is how often to sweep expired entries (default: 15
	// minutes).
	CleanupInterval time.Duration

	// BeachOrientation is the direction the beach faces in degrees
	// (default: 180, south-facing).
	BeachOrientation float64

	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// Service assembles surf forecast reports: geocode, fetch, tide detection,
// session aggregation, rating, rendering. Reports are cached per coordinate
// grid cell and day offset.
type Service struct {
	provider         Provider
	geocoder         geocoding.Geocoder
	logger           zerolog.Logger
	metrics          *telemetry.ProviderMetrics
	cacheTTL         time.Duration
	cacheGridSize    float64
	cleanupInterval  time.Duration
	beachOrientation float64
	now              func() time.Time

	mu          sync.RWMutex
	cache       map[string]*cachedReport
	lastCleanup time.Time
}

type cachedReport struct {
	report    *Report
	expiresAt time.Time
}

// Request asks for a forecast for one spot and day.
type Request struct {
	// Location is the free-text spot name, e.g. "Bells Beach".
	Location string

	// When is the free-text time reference ("today", "tomorrow", a weekday
	// name). Empty means today.
	When string

	// BeachOrientation overrides the configured beach facing direction in
	// degrees when non-nil.
	BeachOrientation *float64
}

// NewService creates a new forecast service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.01 // ~1.1km at the equator
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 15 * time.Minute
	}

	beachOrientation := cfg.BeachOrientation
	if beachOrientation == 0 {
		beachOrientation = DefaultBeachOrientation
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider:         cfg.Provider,
		geocoder:         cfg.Geocoder,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		cacheTTL:         cacheTTL,
		cacheGridSize:    cacheGridSize,
		cleanupInterval:  cleanupInterval,
		beachOrientation: beachOrientation,
		now:              now,
		cache:            make(map[string]*cachedReport),
	}
}

// Forecast builds the surf report for a spot and day. Sessions without wave
// data are left out of the report; the rendered text shows a "no data"
// placeholder for them. Returns ErrLocationNotFound when the spot cannot be
// geocoded and ErrBeyondHorizon when the requested day is outside the 5-day
// window.
func (s *Service) Forecast(ctx context.Context, req Request) (*Report, error) {
	loc, err := s.geocoder.Geocode(ctx, req.Location)
	if err != nil {
		if errors.Is(err, geocoding.ErrNotFound) {
			return nil, fmt.Errorf("%q: %w", req.Location, ErrLocationNotFound)
		}
		return nil, fmt.Errorf("geocoding %q: %w", req.Location, err)
	}

	// Resolve the day in the spot's own timezone so "tomorrow" flips at the
	// beach's midnight, not the server's.
	localNow := s.now()
	if tz, tzErr := time.LoadLocation(loc.Timezone); tzErr == nil && loc.Timezone != "" {
		localNow = localNow.In(tz)
	}

	offset, dayLabel := ResolveDay(req.When, localNow)
	if offset > MaxForecastDays {
		return nil, fmt.Errorf("%s: %w", dayLabel, ErrBeyondHorizon)
	}
	date := localNow.AddDate(0, 0, offset).Format("2006-01-02")

	orientation := s.beachOrientation
	if req.BeachOrientation != nil {
		orientation = *req.BeachOrientation
	}

	cacheKey := s.cacheKey(loc.Lat, loc.Lon, offset, orientation)
	s.mu.RLock()
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.metrics.RecordCacheHit(s.provider.Name(), "forecast")
		s.logger.Debug().Str("cache_key", cacheKey).Msg("cache hit for forecast")
		return cached.report, nil
	}
	s.mu.RUnlock()
	s.metrics.RecordCacheMiss(s.provider.Name(), "forecast")

	return s.fetchReport(ctx, loc, req.Location, date, dayLabel, offset, orientation, cacheKey)
}

func (s *Service) fetchReport(ctx context.Context, loc *geocoding.Location, query, date, dayLabel string, offset int, orientation float64, cacheKey string) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after taking the write lock so concurrent requests for
	// the same spot fetch once.
	if cached, ok := s.cache[cacheKey]; ok && s.now().Before(cached.expiresAt) {
		return cached.report, nil
	}

	s.logger.Debug().
		Str("location", loc.Name).
		Float64("lat", loc.Lat).
		Float64("lon", loc.Lon).
		Str("date", date).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast bundles")

	fetchStart := s.now()
	marine, err := s.provider.GetMarine(ctx, loc.Lat, loc.Lon, MaxForecastDays)
	s.metrics.RecordRequest(s.provider.Name(), "marine", s.now().Sub(fetchStart), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	fetchStart = s.now()
	wind, err := s.provider.GetWind(ctx, loc.Lat, loc.Lon, MaxForecastDays)
	s.metrics.RecordRequest(s.provider.Name(), "wind", s.now().Sub(fetchStart), err)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, err)
	}

	report := s.assemble(loc, query, date, dayLabel, offset, orientation, marine, wind)

	s.cache[cacheKey] = &cachedReport{
		report:    report,
		expiresAt: s.now().Add(s.cacheTTL),
	}
	s.maybeCleanup()

	return report, nil
}

// assemble runs the pure core over the fetched bundles.
func (s *Service) assemble(loc *geocoding.Location, query, date, dayLabel string, offset int, orientation float64, marine *MarineSeries, wind *WindSeries) *Report {
	tides := FindTideExtremes(marine.Time, marine.SeaLevel, date)

	var summaries []SessionSummary
	for _, session := range Sessions {
		startHour, endHour := session.Window()
		tideState := TideStateForSession(tides, startHour, endHour)
		if summary := AggregateSession(marine, wind, date, session, tideState, orientation); summary != nil {
			summaries = append(summaries, *summary)
		}
	}

	report := &Report{
		Location:  loc.Name,
		Lat:       loc.Lat,
		Lon:       loc.Lon,
		Date:      date,
		DayLabel:  dayLabel,
		DayOffset: offset,
		Sessions:  summaries,
		Tides:     tides,
		FetchedAt: s.now(),
	}
	report.Text = RenderReport(report)

	s.logger.Info().
		Str("location", loc.Name).
		Str("date", date).
		Int("sessions", len(summaries)).
		Int("tide_events", len(tides)).
		Msg("forecast assembled")

	return report
}

// cacheKey buckets nearby coordinates into the same grid cell.
func (s *Service) cacheKey(lat, lon float64, offset int, orientation float64) string {
	gridLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f:%.4f:%d:%.0f", gridLat, gridLon, offset, orientation)
}

// maybeCleanup sweeps expired entries. Caller must hold the write lock.
func (s *Service) maybeCleanup() {
	now := s.now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	for key, cached := range s.cache {
		if now.After(cached.expiresAt) {
			delete(s.cache, key)
		}
	}
	s.lastCleanup = now
}
