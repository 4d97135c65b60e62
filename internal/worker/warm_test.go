package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/forecast"
	"github.com/swellbot/swellbot/internal/geocoding"
	"github.com/swellbot/swellbot/internal/worker"
)

type stubGeocoder struct {
	err error
}

func (g *stubGeocoder) Geocode(_ context.Context, name string) (*geocoding.Location, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &geocoding.Location{
		Name:        name,
		CountryCode: "AU",
		Lat:         -33.8908,
		Lon:         151.2743,
		Timezone:    "UTC",
	}, nil
}

func (g *stubGeocoder) Name() string { return "stub-geocoder" }

type stubProvider struct {
	marineErr error
}

func ptr(v float64) *float64 { return &v }

func (p *stubProvider) GetMarine(_ context.Context, _, _ float64, _ int) (*forecast.MarineSeries, error) {
	if p.marineErr != nil {
		return nil, p.marineErr
	}
	series := &forecast.MarineSeries{}
	for h := 0; h < 24; h++ {
		series.Time = append(series.Time, fmt.Sprintf("2026-08-24T%02d:00", h))
		series.WaveHeight = append(series.WaveHeight, ptr(1.5))
		series.WavePeriod = append(series.WavePeriod, ptr(11))
		series.SeaLevel = append(series.SeaLevel, ptr(float64(h%12)/6))
	}
	return series, nil
}

func (p *stubProvider) GetWind(_ context.Context, _, _ float64, _ int) (*forecast.WindSeries, error) {
	series := &forecast.WindSeries{}
	for h := 0; h < 24; h++ {
		series.Time = append(series.Time, fmt.Sprintf("2026-08-24T%02d:00", h))
		series.WindSpeed = append(series.WindSpeed, ptr(8))
		series.WindDirection = append(series.WindDirection, ptr(0))
	}
	return series, nil
}

func (p *stubProvider) Name() string { return "stub-provider" }

func newWarmJob(cfg worker.WarmConfig, provider *stubProvider, geocoder *stubGeocoder) *worker.WarmJob {
	svc := forecast.NewService(forecast.ServiceConfig{
		Provider: provider,
		Geocoder: geocoder,
		Logger:   zerolog.Nop(),
		Now: func() time.Time {
			return time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
		},
	})
	return worker.NewWarmJob(worker.WarmJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Service: svc,
	})
}

func twoSpotConfig() worker.WarmConfig {
	return worker.WarmConfig{
		Targets: []worker.WarmTarget{
			{Name: "Bondi Beach", Priority: 1},
			{Name: "Manly Beach", Priority: 2},
		},
		Days:        []string{"today", "tomorrow"},
		Concurrency: 2,
		Timeout:     time.Second,
	}
}

func TestWarmJob_Run_AllSuccessful(t *testing.T) {
	job := newWarmJob(twoSpotConfig(), &stubProvider{}, &stubGeocoder{})

	result := job.Run(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 4, result.TotalRequests)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
	assert.False(t, result.EndTime.Before(result.StartTime))
}

func TestWarmJob_Run_CountsFailures(t *testing.T) {
	provider := &stubProvider{marineErr: errors.New("upstream timeout")}
	job := newWarmJob(twoSpotConfig(), provider, &stubGeocoder{})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 4, result.Failed)
	require.Len(t, result.Errors, 4)
	for _, e := range result.Errors {
		assert.NotEmpty(t, e.Spot)
		assert.NotEmpty(t, e.When)
		assert.Contains(t, e.Error, "upstream timeout")
	}
}

func TestWarmJob_Run_UnknownSpotsFail(t *testing.T) {
	geocoder := &stubGeocoder{err: geocoding.ErrNotFound}
	job := newWarmJob(twoSpotConfig(), &stubProvider{}, geocoder)

	result := job.Run(context.Background())

	assert.Equal(t, 4, result.Failed)
}

func TestWarmJob_Metrics_AccumulateAcrossRuns(t *testing.T) {
	job := newWarmJob(twoSpotConfig(), &stubProvider{}, &stubGeocoder{})

	job.Run(context.Background())
	job.Run(context.Background())

	metrics := job.Metrics()
	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.Equal(t, int64(8), metrics.SuccessfulWarms)
	assert.Equal(t, int64(0), metrics.FailedWarms)
	assert.False(t, metrics.LastRunAt.IsZero())
}

func TestNewWarmJob_Defaults(t *testing.T) {
	job := worker.NewWarmJob(worker.WarmJobConfig{Logger: zerolog.Nop()})
	require.NotNil(t, job)

	metrics := job.Metrics()
	assert.Equal(t, int64(0), metrics.TotalRuns)
}
