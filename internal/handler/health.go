package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// DatabaseChecker reports database liveness for the health endpoint.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	db DatabaseChecker
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// ServeHTTP reports service health. Returns 503 when the database is
// unreachable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status}) //nolint:errcheck
}
