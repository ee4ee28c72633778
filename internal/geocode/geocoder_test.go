package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wildpitch/wildpitch/internal/config"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) *HTTPGeocoder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPGeocoder(config.GeocoderConfig{
		Endpoint:    server.URL,
		AccessToken: "test-token",
		Timeout:     time.Second,
	}, zerolog.Nop())
}

func TestHTTPGeocoder_Forward(t *testing.T) {
	t.Run("takes the best match", func(t *testing.T) {
		g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Yosemite Valley, CA", r.URL.Query().Get("q"))
			require.Equal(t, "1", r.URL.Query().Get("limit"))
			require.Equal(t, "test-token", r.URL.Query().Get("access_token"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-119.53,37.74]}}]}`)) //nolint:errcheck
		})

		point, err := g.Forward(context.Background(), "Yosemite Valley, CA")
		require.NoError(t, err)
		require.InDelta(t, -119.53, point.Longitude, 0.001)
		require.InDelta(t, 37.74, point.Latitude, 0.001)
	})

	t.Run("empty feature list is no result", func(t *testing.T) {
		g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"features":[]}`)) //nolint:errcheck
		})

		_, err := g.Forward(context.Background(), "Nowhere")
		require.ErrorIs(t, err, ErrNoResult)
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := g.Forward(context.Background(), "Anywhere")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrNoResult)
	})
}

func TestNoop_Forward(t *testing.T) {
	_, err := Noop{}.Forward(context.Background(), "Anywhere")
	require.ErrorIs(t, err, ErrNoResult)
}
