package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/api/handler"
	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/forecast"
	"github.com/swellbot/swellbot/internal/geocoding"
)

type stubGeocoder struct {
	location *geocoding.Location
	err      error
}

func (g *stubGeocoder) Geocode(_ context.Context, _ string) (*geocoding.Location, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.location, nil
}

func (g *stubGeocoder) Name() string { return "stub-geocoder" }

type stubProvider struct {
	marine *forecast.MarineSeries
	wind   *forecast.WindSeries
	err    error
}

func (p *stubProvider) GetMarine(_ context.Context, _, _ float64, _ int) (*forecast.MarineSeries, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.marine, nil
}

func (p *stubProvider) GetWind(_ context.Context, _, _ float64, _ int) (*forecast.WindSeries, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.wind, nil
}

func (p *stubProvider) Name() string { return "stub-provider" }

func ptr(v float64) *float64 { return &v }

func forecastService(geocoder *stubGeocoder, provider *stubProvider, now time.Time) *forecast.Service {
	return forecast.NewService(forecast.ServiceConfig{
		Provider: provider,
		Geocoder: geocoder,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return now },
	})
}

func surfableDay(date string) (*forecast.MarineSeries, *forecast.WindSeries) {
	var times []string
	var heights, periods, levels, speeds, dirs []*float64
	for h := 0; h < 24; h++ {
		times = append(times, fmt.Sprintf("%sT%02d:00", date, h))
		heights = append(heights, ptr(1.5))
		periods = append(periods, ptr(11))
		levels = append(levels, ptr(float64(h%12)/6))
		speeds = append(speeds, ptr(10))
		dirs = append(dirs, ptr(0))
	}
	marine := &forecast.MarineSeries{Time: times, WaveHeight: heights, WavePeriod: periods, SeaLevel: levels}
	wind := &forecast.WindSeries{Time: times, WindSpeed: speeds, WindDirection: dirs}
	return marine, wind
}

func TestForecastHandler_Get(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	marine, wind := surfableDay("2026-08-24")
	loc := &geocoding.Location{Name: "Bondi Beach", Lat: -33.89, Lon: 151.27, Timezone: "UTC"}
	svc := forecastService(&stubGeocoder{location: loc}, &stubProvider{marine: marine, wind: wind}, now)
	h := handler.NewForecastHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast?location=Bondi", http.NoBody)
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bondi Beach", resp.Location)
	assert.Equal(t, "2026-08-24", resp.Date)
	assert.Equal(t, "Today", resp.DayLabel)
	require.Len(t, resp.Sessions, 3)
	assert.Equal(t, "Morning", resp.Sessions[0].Session)
	assert.InDelta(t, 1.5, resp.Sessions[0].WaveHeight, 0.001)
	assert.NotEmpty(t, resp.Tides)
	assert.Contains(t, resp.Text, "Bondi Beach")
}

func TestForecastHandler_Get_MissingLocation(t *testing.T) {
	h := handler.NewForecastHandler(nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast", http.NoBody)
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var p models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "location", p.Errors[0].Field)
}

func TestForecastHandler_Get_LocationNotFound(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	svc := forecastService(&stubGeocoder{err: geocoding.ErrNotFound}, &stubProvider{}, now)
	h := handler.NewForecastHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast?location=Atlantis", http.NoBody)
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no surf spot found for Atlantis")
}

func TestForecastHandler_Get_BeyondHorizon(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC) // a Monday
	loc := &geocoding.Location{Name: "Bondi Beach", Timezone: "UTC"}
	svc := forecastService(&stubGeocoder{location: loc}, &stubProvider{}, now)
	h := handler.NewForecastHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast?location=Bondi&when=sunday", http.NoBody)
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastHandler_Get_ProviderUnavailable(t *testing.T) {
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	loc := &geocoding.Location{Name: "Bondi Beach", Timezone: "UTC"}
	svc := forecastService(&stubGeocoder{location: loc}, &stubProvider{err: fmt.Errorf("connection refused")}, now)
	h := handler.NewForecastHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/forecast?location=Bondi", http.NoBody)
	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
