package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/geocoding"
	"github.com/swellbot/swellbot/internal/geocoding/openmeteo"
)

const searchBody = `{
	"results": [
		{
			"name": "Torquay",
			"latitude": 50.615,
			"longitude": -3.51,
			"country_code": "GB",
			"admin1": "England",
			"timezone": "Europe/London"
		},
		{
			"name": "Torquay",
			"latitude": -38.3318,
			"longitude": 144.3262,
			"country_code": "AU",
			"admin1": "Victoria",
			"timezone": "Australia/Melbourne"
		}
	]
}`

func newSearchServer(t *testing.T, body string) (*httptest.Server, *map[string][]string) {
	t.Helper()
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &gotQuery
}

func TestClient_Geocode_PrefersConfiguredCountry(t *testing.T) {
	server, gotQuery := newSearchServer(t, searchBody)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	loc, err := client.Geocode(context.Background(), "  Torquay ")
	require.NoError(t, err)

	// The British Torquay is first in the results but filtered out.
	assert.Equal(t, "Torquay", loc.Name)
	assert.Equal(t, "AU", loc.CountryCode)
	assert.Equal(t, "Victoria", loc.Region)
	assert.InDelta(t, -38.3318, loc.Lat, 0.001)
	assert.Equal(t, "Australia/Melbourne", loc.Timezone)

	assert.Equal(t, "Torquay", (*gotQuery)["name"][0], "query is trimmed")
	assert.Equal(t, "10", (*gotQuery)["count"][0])
}

func TestClient_Geocode_NoCountryFilterTakesFirstMatch(t *testing.T) {
	server, _ := newSearchServer(t, searchBody)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:         server.URL,
		NoCountryFilter: true,
		Logger:          zerolog.Nop(),
	})

	loc, err := client.Geocode(context.Background(), "Torquay")
	require.NoError(t, err)
	assert.Equal(t, "GB", loc.CountryCode)
}

func TestClient_Geocode_NotFound(t *testing.T) {
	server, _ := newSearchServer(t, `{"results": []}`)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
}

func TestClient_Geocode_NoMatchInCountry(t *testing.T) {
	// Only a British result; the AU filter leaves nothing.
	server, _ := newSearchServer(t, `{
		"results": [
			{"name": "Newquay", "latitude": 50.41, "longitude": -5.08, "country_code": "GB", "admin1": "England", "timezone": "Europe/London"}
		]
	}`)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.Geocode(context.Background(), "Newquay")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)
}

func TestClient_Geocode_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.Geocode(context.Background(), "Torquay")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 400")
}
