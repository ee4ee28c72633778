// Package geocode resolves free-form location strings to coordinates.
// Geocoding is best-effort: a failure leaves the campground without a
// geometry rather than failing the save.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/config"
	"github.com/wildpitch/wildpitch/internal/domain"
)

// ErrNoResult indicates the location string matched nothing.
var ErrNoResult = errors.New("no geocoding result")

// Geocoder resolves a location string to a point.
type Geocoder interface {
	// Forward geocodes a location string. Returns ErrNoResult when the
	// provider has no match.
	Forward(ctx context.Context, location string) (*domain.Point, error)
}

// HTTPGeocoder calls a GeoJSON forward-geocoding API over HTTP.
// The response shape follows the Mapbox v6 forward endpoint: a
// FeatureCollection whose features carry [longitude, latitude] points.
type HTTPGeocoder struct {
	endpoint    string
	accessToken string
	client      *http.Client
	logger      zerolog.Logger
}

// NewHTTPGeocoder creates a geocoder backed by an HTTP API.
func NewHTTPGeocoder(cfg config.GeocoderConfig, logger zerolog.Logger) *HTTPGeocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &HTTPGeocoder{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.With().Str("component", "geocoder").Logger(),
	}
}

// featureCollection is the subset of the GeoJSON response we read.
type featureCollection struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Forward geocodes a location string, taking the provider's best match.
func (g *HTTPGeocoder) Forward(ctx context.Context, location string) (*domain.Point, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("limit", "1")
	if g.accessToken != "" {
		q.Set("access_token", g.accessToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding request failed: status %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(fc.Features) == 0 || len(fc.Features[0].Geometry.Coordinates) < 2 {
		return nil, ErrNoResult
	}

	coords := fc.Features[0].Geometry.Coordinates
	point := &domain.Point{
		Longitude: coords[0],
		Latitude:  coords[1],
	}

	g.logger.Debug().
		Str("location", location).
		Float64("longitude", point.Longitude).
		Float64("latitude", point.Latitude).
		Msg("location geocoded")

	return point, nil
}

// Noop is a Geocoder that never resolves anything.
// Used when geocoding is disabled.
type Noop struct{}

// Forward always returns ErrNoResult.
func (Noop) Forward(ctx context.Context, location string) (*domain.Point, error) {
	return nil, ErrNoResult
}

// Ensure implementations satisfy Geocoder.
var (
	_ Geocoder = (*HTTPGeocoder)(nil)
	_ Geocoder = Noop{}
)
