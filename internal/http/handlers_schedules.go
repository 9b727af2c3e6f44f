package httpx

import (
	"net/http"

	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/service"
)

// ScheduleHandlers serves the /schedules routes.
type ScheduleHandlers struct {
	Svc *service.ScheduleService
}

// Create handles POST /schedules.
func (h *ScheduleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateScheduleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	schedule, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, schedule)
}

// List handles GET /schedules.
func (h *ScheduleHandlers) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Svc.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, schedules)
}

// Get handles GET /schedules/{id}.
func (h *ScheduleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, schedule)
}

// Pause handles POST /schedules/{id}/pause. Only active schedules qualify.
func (h *ScheduleHandlers) Pause(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Svc.Pause(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, schedule)
}

// Resume handles POST /schedules/{id}/resume. Only paused schedules qualify.
func (h *ScheduleHandlers) Resume(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Svc.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, schedule)
}

// Delete handles DELETE /schedules/{id}. Runs and attempts cascade.
func (h *ScheduleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
