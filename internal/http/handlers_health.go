package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service health, including database connectivity when
// a Pinger is configured.
type HealthHandler struct {
	DB Pinger
}

// Health handles GET /healthz and HEAD /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.DB.PingContext(ctx); err != nil {
			WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "unhealthy", Err: err})
			return
		}
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
