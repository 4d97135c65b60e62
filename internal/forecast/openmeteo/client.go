// Package openmeteo provides clients for the Open-Meteo marine and weather
// forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/forecast"
	"github.com/swellbot/swellbot/internal/provider/resilience"
)

const (
	// ProviderName identifies this forecast data provider.
	ProviderName = "openmeteo"

	// DefaultMarineURL is the Open-Meteo marine API base URL.
	DefaultMarineURL = "https://marine-api.open-meteo.com/v1/marine"

	// DefaultWeatherURL is the Open-Meteo weather forecast API base URL.
	DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

	marineHourly  = "wave_height,wave_period,wave_direction,sea_level_height_msl"
	weatherHourly = "wind_speed_10m,wind_direction_10m"
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// MarineURL is the marine API base URL (optional).
	MarineURL string

	// WeatherURL is the weather API base URL (optional).
	WeatherURL string

	// HTTPClient is the HTTP client to use (optional). If nil, uses a
	// resilient client with defaults. Open-Meteo requires no API key.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client implementing forecast.Provider.
type Client struct {
	marineURL  string
	weatherURL string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	marineURL := cfg.MarineURL
	if marineURL == "" {
		marineURL = DefaultMarineURL
	}

	weatherURL := cfg.WeatherURL
	if weatherURL == "" {
		weatherURL = DefaultWeatherURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		marineURL:  marineURL,
		weatherURL: weatherURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetMarine fetches the hourly marine bundle (waves and sea level) for up to
// days forecast days. Timestamps are in the location's local timezone.
func (c *Client) GetMarine(ctx context.Context, lat, lon float64, days int) (*forecast.MarineSeries, error) {
	reqURL := c.marineURL + "?" + forecastQuery(lat, lon, days, marineHourly)

	var omResp marineResponse
	if err := c.getJSON(ctx, reqURL, &omResp); err != nil {
		return nil, fmt.Errorf("fetching marine data: %w", err)
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("hours", len(omResp.Hourly.Time)).
		Msg("fetched marine bundle")

	return &forecast.MarineSeries{
		Time:          omResp.Hourly.Time,
		WaveHeight:    omResp.Hourly.WaveHeight,
		WavePeriod:    omResp.Hourly.WavePeriod,
		WaveDirection: omResp.Hourly.WaveDirection,
		SeaLevel:      omResp.Hourly.SeaLevel,
	}, nil
}

// GetWind fetches the hourly wind bundle over the same horizon. Wind speed is
// requested in km/h at 10m.
func (c *Client) GetWind(ctx context.Context, lat, lon float64, days int) (*forecast.WindSeries, error) {
	reqURL := c.weatherURL + "?" + forecastQuery(lat, lon, days, weatherHourly) + "&wind_speed_unit=kmh"

	var omResp weatherResponse
	if err := c.getJSON(ctx, reqURL, &omResp); err != nil {
		return nil, fmt.Errorf("fetching wind data: %w", err)
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("hours", len(omResp.Hourly.Time)).
		Msg("fetched wind bundle")

	return &forecast.WindSeries{
		Time:          omResp.Hourly.Time,
		WindSpeed:     omResp.Hourly.WindSpeed,
		WindDirection: omResp.Hourly.WindDirection,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// forecastQuery builds the query string shared by both Open-Meteo endpoints.
// timezone=auto makes the API return local timestamps, which is what the
// session windows are defined in.
func forecastQuery(lat, lon float64, days int, hourly string) string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("hourly", hourly)
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(days))
	return q.Encode()
}

// Open-Meteo API response structures. Hourly value arrays are nullable per
// element; a null marks a missing sample and decodes to nil.

type marineResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    struct {
		Time          []string   `json:"time"`
		WaveHeight    []*float64 `json:"wave_height"`
		WavePeriod    []*float64 `json:"wave_period"`
		WaveDirection []*float64 `json:"wave_direction"`
		SeaLevel      []*float64 `json:"sea_level_height_msl"`
	} `json:"hourly"`
}

type weatherResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    struct {
		Time          []string   `json:"time"`
		WindSpeed     []*float64 `json:"wind_speed_10m"`
		WindDirection []*float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}
