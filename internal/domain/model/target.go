// Package model defines the core data types and structures used throughout
// the cronhook scheduler.
package model

import (
	"encoding/json"
	"strings"
	"time"

	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// AllowedMethods is the set of HTTP methods a target may use.
var AllowedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Target represents an external HTTP endpoint that schedules fire against.
type Target struct {
	ID           string            `json:"id"            db:"id"`
	Name         string            `json:"name"          db:"name"`
	URL          string            `json:"url"           db:"url"`
	Method       string            `json:"method"        db:"method"`
	Headers      map[string]string `json:"headers"       db:"headers"`
	BodyTemplate json.RawMessage   `json:"body_template" db:"body_template"`
	CreatedAt    time.Time         `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"    db:"updated_at"`
}

// CreateTargetRequest represents a request to register a new target.
type CreateTargetRequest struct {
	Name         string            `json:"name"`
	URL          string            `json:"url"`
	Method       string            `json:"method,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	BodyTemplate json.RawMessage   `json:"body_template,omitempty"`
}

// Validate checks the request fields and normalizes the method to upper-case.
func (r *CreateTargetRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	if err := validateTargetURL(r.URL); err != nil {
		return err
	}
	if r.Method == "" {
		r.Method = "GET"
	}
	r.Method = strings.ToUpper(r.Method)
	if !AllowedMethods[r.Method] {
		return apperrors.ValidationField("method", "method must be one of GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
	}
	return nil
}

// UpdateTargetRequest represents a partial update to an existing target.
// Nil fields are left unchanged.
type UpdateTargetRequest struct {
	Name         *string            `json:"name,omitempty"`
	URL          *string            `json:"url,omitempty"`
	Method       *string            `json:"method,omitempty"`
	Headers      *map[string]string `json:"headers,omitempty"`
	BodyTemplate json.RawMessage    `json:"body_template,omitempty"`
}

// Validate checks any provided fields and normalizes the method to upper-case.
func (r *UpdateTargetRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return apperrors.ValidationField("name", "name must not be empty")
	}
	if r.URL != nil {
		if err := validateTargetURL(*r.URL); err != nil {
			return err
		}
	}
	if r.Method != nil {
		upper := strings.ToUpper(*r.Method)
		if !AllowedMethods[upper] {
			return apperrors.ValidationField("method", "method must be one of GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
		}
		*r.Method = upper
	}
	return nil
}

// Apply copies the provided fields onto the target.
func (r *UpdateTargetRequest) Apply(t *Target) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.URL != nil {
		t.URL = *r.URL
	}
	if r.Method != nil {
		t.Method = *r.Method
	}
	if r.Headers != nil {
		t.Headers = *r.Headers
	}
	if r.BodyTemplate != nil {
		t.BodyTemplate = r.BodyTemplate
	}
}

func validateTargetURL(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return apperrors.ValidationField("url", "URL must start with http:// or https://")
	}
	return nil
}
