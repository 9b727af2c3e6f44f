package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cronhook/cronhook/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Targets   *service.TargetService
	Schedules *service.ScheduleService
	Runs      *service.RunService
	Metrics   *service.MetricsService
	Logger    *slog.Logger // Optional: request logging and panic recovery
}

// NewRouter creates and configures the control-plane HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	targetHandlers := &TargetHandlers{Svc: services.Targets}
	scheduleHandlers := &ScheduleHandlers{Svc: services.Schedules}
	runHandlers := &RunHandlers{Svc: services.Runs}
	metricsHandlers := &MetricsHandlers{Svc: services.Metrics}

	mux.Handle("GET /health", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /health", http.HandlerFunc(healthHandler))

	registerTargetRoutes(mux, targetHandlers)
	registerScheduleRoutes(mux, scheduleHandlers)
	registerRunRoutes(mux, runHandlers)

	mux.HandleFunc("GET /metrics", metricsHandlers.Get)
	mux.Handle("GET /metrics/prometheus", promhttp.Handler())

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Logging(logger)(Recover(logger)(mux))
}

func registerTargetRoutes(mux *http.ServeMux, h *TargetHandlers) {
	mux.HandleFunc("POST /targets", h.Create)
	mux.HandleFunc("GET /targets", h.List)
	mux.HandleFunc("GET /targets/{id}", h.Get)
	mux.HandleFunc("PUT /targets/{id}", h.Update)
	mux.HandleFunc("DELETE /targets/{id}", h.Delete)
}

func registerScheduleRoutes(mux *http.ServeMux, h *ScheduleHandlers) {
	mux.HandleFunc("POST /schedules", h.Create)
	mux.HandleFunc("GET /schedules", h.List)
	mux.HandleFunc("GET /schedules/{id}", h.Get)
	mux.HandleFunc("POST /schedules/{id}/pause", h.Pause)
	mux.HandleFunc("POST /schedules/{id}/resume", h.Resume)
	mux.HandleFunc("DELETE /schedules/{id}", h.Delete)
}

func registerRunRoutes(mux *http.ServeMux, h *RunHandlers) {
	mux.HandleFunc("GET /runs", h.List)
	mux.HandleFunc("GET /runs/{id}", h.Get)
}
