package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/domain"
	"github.com/wildpitch/wildpitch/internal/repository"
)

// CachingGeocoder wraps a Geocoder with a cache layer.
// Identical location strings are common (users copy-paste town names), so
// caching cuts most provider calls. Negative results are cached too.
type CachingGeocoder struct {
	inner  Geocoder
	cache  repository.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// noResultMarker is the cached value for locations with no match.
var noResultMarker = []byte("!")

// NewCachingGeocoder wraps a geocoder with caching.
func NewCachingGeocoder(inner Geocoder, cache repository.Cache, ttl time.Duration, logger zerolog.Logger) *CachingGeocoder {
	return &CachingGeocoder{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "geocoder_cache").Logger(),
	}
}

// Forward geocodes a location string, consulting the cache first.
// Cache failures fall through to the inner geocoder.
func (c *CachingGeocoder) Forward(ctx context.Context, location string) (*domain.Point, error) {
	key := "geocode:" + location

	if data, err := c.cache.Get(ctx, key); err == nil {
		if string(data) == string(noResultMarker) {
			return nil, ErrNoResult
		}
		var point domain.Point
		if err := json.Unmarshal(data, &point); err == nil {
			return &point, nil
		}
		// Corrupt entry; drop it and re-resolve.
		_ = c.cache.Delete(ctx, key)
	} else if !errors.Is(err, repository.ErrCacheMiss) {
		c.logger.Warn().Err(err).Msg("geocode cache read failed")
	}

	point, err := c.inner.Forward(ctx, location)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			if cerr := c.cache.Set(ctx, key, noResultMarker, c.ttl); cerr != nil {
				c.logger.Warn().Err(cerr).Msg("geocode cache write failed")
			}
		}
		return nil, err
	}

	if data, merr := json.Marshal(point); merr == nil {
		if cerr := c.cache.Set(ctx, key, data, c.ttl); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("geocode cache write failed")
		}
	}

	return point, nil
}

// Ensure CachingGeocoder implements Geocoder.
var _ Geocoder = (*CachingGeocoder)(nil)
