package httpx

import (
	"net/http"

	"github.com/cronhook/cronhook/internal/service"
)

// MetricsHandlers serves GET /metrics, the JSON aggregate snapshot.
type MetricsHandlers struct {
	Svc *service.MetricsService
}

// Get handles GET /metrics.
func (h *MetricsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Svc.Snapshot(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}
