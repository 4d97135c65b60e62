// Package geocoding resolves surf spot names to coordinates.
package geocoding

import (
	"context"
	"errors"
)

// Geocoding errors.
var (
	// ErrNotFound indicates no match for the requested place name.
	ErrNotFound = errors.New("no geocoding match for location")
	// ErrProviderUnavailable indicates the geocoding provider is down.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Location is a resolved place.
type Location struct {
	Name        string  // resolved display name, e.g. "Torquay"
	Region      string  // admin area, e.g. "Victoria"
	CountryCode string  // ISO 3166-1 alpha-2
	Lat         float64
	Lon         float64
	Timezone    string // IANA timezone of the place
}

// Geocoder resolves free-text place names to coordinates.
type Geocoder interface {
	// Geocode returns the best match for name, or ErrNotFound.
	Geocode(ctx context.Context, name string) (*Location, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}
