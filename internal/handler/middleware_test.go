package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMethodOverride(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Method
	})
	handler := MethodOverride(next)

	t.Run("query parameter override", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/campgrounds/9?_method=DELETE", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, http.MethodDelete, got)
	})

	t.Run("form body override", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/campgrounds/9", strings.NewReader("_method=PUT"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, http.MethodPut, got)
	})

	t.Run("only PUT and DELETE are honored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/campgrounds/9?_method=PATCH", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, http.MethodPost, got)
	})

	t.Run("GET never rewritten", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/campgrounds/9?_method=DELETE", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, http.MethodGet, got)
	})
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMaxBody(t *testing.T) {
	handler := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("field=very-long-value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
