package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is implemented by stores that can report their availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler reports whether the backing store is reachable.
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
}

// NewHealthHandler creates a health handler that gives the store timeout to answer.
func NewHealthHandler(store Pinger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{store: store, timeout: timeout}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
