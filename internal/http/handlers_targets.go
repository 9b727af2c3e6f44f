package httpx

import (
	"net/http"

	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/service"
)

// TargetHandlers serves the /targets routes.
type TargetHandlers struct {
	Svc *service.TargetService
}

// Create handles POST /targets.
func (h *TargetHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTargetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	target, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, target)
}

// List handles GET /targets.
func (h *TargetHandlers) List(w http.ResponseWriter, r *http.Request) {
	targets, err := h.Svc.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, targets)
}

// Get handles GET /targets/{id}.
func (h *TargetHandlers) Get(w http.ResponseWriter, r *http.Request) {
	target, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, target)
}

// Update handles PUT /targets/{id}. Omitted fields are left unchanged.
func (h *TargetHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTargetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	target, err := h.Svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, target)
}

// Delete handles DELETE /targets/{id}. Schedules and their history cascade.
func (h *TargetHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
