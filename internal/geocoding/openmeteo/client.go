// Package openmeteo provides a geocoder backed by the Open-Meteo geocoding API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/geocoding"
	"github.com/swellbot/swellbot/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "openmeteo-geocoding"

	// DefaultBaseURL is the Open-Meteo geocoding API base URL.
	DefaultBaseURL = "https://geocoding-api.open-meteo.com/v1/search"

	// DefaultCountryCode biases search results. Swellbot's surf spots are
	// Australian by default.
	DefaultCountryCode = "AU"

	// searchCount is how many candidates to request before country filtering.
	searchCount = 10
)

// ClientConfig holds configuration for the geocoding client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional).
	BaseURL string

	// CountryCode restricts matches to one country (optional, defaults
	// to AU).
	CountryCode string

	// NoCountryFilter disables the country restriction.
	NoCountryFilter bool

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client resolves place names via the Open-Meteo geocoding API.
type Client struct {
	baseURL     string
	countryCode string
	httpClient  *resilience.Client
	logger      zerolog.Logger
}

// NewClient creates a new geocoding client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	countryCode := cfg.CountryCode
	if countryCode == "" && !cfg.NoCountryFilter {
		countryCode = DefaultCountryCode
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Geocode returns the first match for name within the configured country.
// Returns geocoding.ErrNotFound when nothing matches.
func (c *Client) Geocode(ctx context.Context, name string) (*geocoding.Location, error) {
	q := url.Values{}
	q.Set("name", strings.TrimSpace(name))
	q.Set("count", fmt.Sprintf("%d", searchCount))
	q.Set("language", "en")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var omResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&omResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	for _, r := range omResp.Results {
		if c.countryCode != "" && !strings.EqualFold(r.CountryCode, c.countryCode) {
			continue
		}
		c.logger.Debug().
			Str("query", name).
			Str("match", r.Name).
			Float64("lat", r.Latitude).
			Float64("lon", r.Longitude).
			Msg("geocoded location")
		return &geocoding.Location{
			Name:        r.Name,
			Region:      r.Admin1,
			CountryCode: r.CountryCode,
			Lat:         r.Latitude,
			Lon:         r.Longitude,
			Timezone:    r.Timezone,
		}, nil
	}

	return nil, fmt.Errorf("%q: %w", name, geocoding.ErrNotFound)
}

// Open-Meteo geocoding API response structure.

type searchResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"`
		Timezone    string  `json:"timezone"`
	} `json:"results"`
}
