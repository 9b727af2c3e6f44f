package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/service"
)

// RunHandlers serves the /runs routes.
type RunHandlers struct {
	Svc *service.RunService
}

// List handles GET /runs with optional filters and pagination.
func (h *RunHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, ok := parseRunListQuery(w, r)
	if !ok {
		return
	}
	runs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, runs)
}

// Get handles GET /runs/{id}, returning the run with its attempt history.
func (h *RunHandlers) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, detail)
}

// parseRunListQuery extracts the run list filters. Ill-typed or out-of-range
// query values get a 422 with the offending parameter's location.
func parseRunListQuery(w http.ResponseWriter, r *http.Request) (model.RunListOptions, bool) {
	q := r.URL.Query()
	opts := model.RunListOptions{
		ScheduleID: q.Get("schedule_id"),
		Status:     model.RunStatus(q.Get("status")),
		Limit:      100,
	}

	fail := func(param, msg string) (model.RunListOptions, bool) {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string][]validationError{
			"detail": {{Loc: []string{"query", param}, Msg: msg, Type: "value_error"}},
		})
		return opts, false
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail("limit", "value is not a valid integer")
		}
		if n < 1 || n > 1000 {
			return fail("limit", "limit must be between 1 and 1000")
		}
		opts.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fail("offset", "value is not a valid integer")
		}
		if n < 0 {
			return fail("offset", "offset must be >= 0")
		}
		opts.Offset = n
	}
	if raw := q.Get("start_time"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return fail("start_time", "value is not a valid datetime")
		}
		opts.StartTime = &t
	}
	if raw := q.Get("end_time"); raw != "" {
		t, err := parseTimestamp(raw)
		if err != nil {
			return fail("end_time", "value is not a valid datetime")
		}
		opts.EndTime = &t
	}
	return opts, true
}

// parseTimestamp accepts RFC 3339 and naive ISO 8601 instants, normalizing
// to naive UTC.
func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	var zero time.Time
	return zero, &time.ParseError{Layout: time.RFC3339, Value: raw}
}
