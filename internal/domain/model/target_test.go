package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cronhook/cronhook/internal/errors"
)

func TestCreateTargetRequestValidate(t *testing.T) {
	t.Run("valid request defaults method to GET", func(t *testing.T) {
		req := CreateTargetRequest{Name: "health ping", URL: "https://example.com/ping"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "GET", req.Method)
	})

	t.Run("method is upper-cased", func(t *testing.T) {
		req := CreateTargetRequest{Name: "poster", URL: "https://example.com", Method: "post"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "POST", req.Method)
	})

	t.Run("missing name", func(t *testing.T) {
		req := CreateTargetRequest{URL: "https://example.com"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("bad url scheme", func(t *testing.T) {
		req := CreateTargetRequest{Name: "ftp", URL: "ftp://example.com"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown method", func(t *testing.T) {
		req := CreateTargetRequest{Name: "weird", URL: "https://example.com", Method: "BREW"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestUpdateTargetRequestApply(t *testing.T) {
	target := Target{
		Name:    "orig",
		URL:     "https://old.example.com",
		Method:  "GET",
		Headers: map[string]string{"X-Old": "1"},
	}

	name := "renamed"
	method := "post"
	req := UpdateTargetRequest{
		Name:         &name,
		Method:       &method,
		BodyTemplate: json.RawMessage(`{"k":"v"}`),
	}
	require.NoError(t, req.Validate())
	req.Apply(&target)

	assert.Equal(t, "renamed", target.Name)
	assert.Equal(t, "POST", target.Method)
	assert.Equal(t, "https://old.example.com", target.URL)
	assert.Equal(t, map[string]string{"X-Old": "1"}, target.Headers)
	assert.JSONEq(t, `{"k":"v"}`, string(target.BodyTemplate))
}

func TestUpdateTargetRequestValidateRejectsEmptyName(t *testing.T) {
	empty := "  "
	req := UpdateTargetRequest{Name: &empty}
	assert.Error(t, req.Validate())
}
