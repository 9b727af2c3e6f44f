package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

func strPtr(s string) *string { return &s }

func TestTargetServiceCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("defaults method and headers", func(t *testing.T) {
		target, err := f.targets.Create(ctx, model.CreateTargetRequest{
			Name: "ping",
			URL:  "https://example.com/ping",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, target.ID)
		assert.Equal(t, "GET", target.Method)
		assert.NotNil(t, target.Headers)
		assert.Empty(t, target.Headers)
		assert.True(t, f.clock.Now().Equal(target.CreatedAt))
	})

	t.Run("rejects bad url", func(t *testing.T) {
		_, err := f.targets.Create(ctx, model.CreateTargetRequest{
			Name: "ping",
			URL:  "ftp://example.com",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects missing name", func(t *testing.T) {
		_, err := f.targets.Create(ctx, model.CreateTargetRequest{URL: "https://example.com"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestTargetServiceGetNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.targets.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Target not found", err.(*apperrors.AppError).Message)
}

func TestTargetServiceUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)

	t.Run("partial update keeps other fields", func(t *testing.T) {
		updated, err := f.targets.Update(ctx, target.ID, model.UpdateTargetRequest{
			Name: strPtr("renamed"),
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Name)
		assert.Equal(t, target.URL, updated.URL)
	})

	t.Run("normalizes method", func(t *testing.T) {
		updated, err := f.targets.Update(ctx, target.ID, model.UpdateTargetRequest{
			Method: strPtr("post"),
		})
		require.NoError(t, err)
		assert.Equal(t, "POST", updated.Method)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := f.targets.Update(ctx, target.ID, model.UpdateTargetRequest{
			Name: strPtr("  "),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := f.targets.Update(ctx, "nope", model.UpdateTargetRequest{Name: strPtr("x")})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestTargetServiceDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)

	require.NoError(t, f.targets.Delete(ctx, target.ID))

	err := f.targets.Delete(ctx, target.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
