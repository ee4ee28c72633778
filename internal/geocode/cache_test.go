package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/cache/memory"
	"github.com/wildpitch/wildpitch/internal/domain"
)

// countingGeocoder records how often the provider is actually called.
type countingGeocoder struct {
	calls int
	point *domain.Point
	err   error
}

func (c *countingGeocoder) Forward(ctx context.Context, location string) (*domain.Point, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.point, nil
}

func TestCachingGeocoder_Forward(t *testing.T) {
	t.Run("repeat lookups hit the cache", func(t *testing.T) {
		cache := memory.NewCache()
		defer cache.Stop()

		inner := &countingGeocoder{point: &domain.Point{Longitude: 1, Latitude: 2}}
		g := NewCachingGeocoder(inner, cache, time.Minute, zerolog.Nop())

		for i := 0; i < 3; i++ {
			point, err := g.Forward(context.Background(), "Yosemite Valley, CA")
			require.NoError(t, err)
			require.Equal(t, 1.0, point.Longitude)
		}
		require.Equal(t, 1, inner.calls)
	})

	t.Run("no-result is cached too", func(t *testing.T) {
		cache := memory.NewCache()
		defer cache.Stop()

		inner := &countingGeocoder{err: ErrNoResult}
		g := NewCachingGeocoder(inner, cache, time.Minute, zerolog.Nop())

		for i := 0; i < 3; i++ {
			_, err := g.Forward(context.Background(), "Nowhere")
			require.ErrorIs(t, err, ErrNoResult)
		}
		require.Equal(t, 1, inner.calls)
	})

	t.Run("provider errors are not cached", func(t *testing.T) {
		cache := memory.NewCache()
		defer cache.Stop()

		inner := &countingGeocoder{err: errors.New("rate limited")}
		g := NewCachingGeocoder(inner, cache, time.Minute, zerolog.Nop())

		_, err := g.Forward(context.Background(), "Anywhere")
		require.Error(t, err)
		_, err = g.Forward(context.Background(), "Anywhere")
		require.Error(t, err)
		require.Equal(t, 2, inner.calls)
	})
}
