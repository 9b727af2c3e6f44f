// Package httpx implements the REST control plane: target and schedule CRUD,
// schedule lifecycle, run queries, and metrics.
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// detailResponse is the error body shape for all non-422 errors.
type detailResponse struct {
	Detail string `json:"detail"`
}

// validationError is one entry of a 422 body for malformed request payloads.
type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// DecodeJSON decodes the request body into dst. On failure it writes a 422
// with a validation-error array and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string][]validationError{
			"detail": {{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}},
		})
		return false
	}
	return true
}

// WriteError maps an application error to its HTTP status and detail body.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteJSON(w, http.StatusInternalServerError, detailResponse{Detail: "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeValidation, apperrors.ErrCodeInvalidTransition:
		status = http.StatusBadRequest
	case apperrors.ErrCodeConflict:
		status = http.StatusConflict
	case apperrors.ErrCodeInternal:
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, detailResponse{Detail: appErr.Message})
}
