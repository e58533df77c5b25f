package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository/memory"
)

func TestGymLogRoutes(t *testing.T) {
	repos := memory.NewStore().Repositories()
	owner := &domain.Account{Name: "U1", Email: "u1@example.com", PasswordHash: "x"}
	other := &domain.Account{Name: "U2", Email: "u2@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Accounts.Create(context.Background(), owner))
	require.NoError(t, repos.Accounts.Create(context.Background(), other))
	router := newTestRouter(t, repos, nil)
	token := tokenFor(t, owner.ID)

	rec, env := do(t, router, http.MethodPost, "/api/v1/logs", token,
		`{"exercise_name": "Squat", "sets": 5, "reps": 5, "weight": 100, "notes": "belt on", "performed_at": "2026-03-02T18:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var log GymLogResponse
	dataAs(t, env, &log)
	require.NotNil(t, log.Notes)

	rec, env = do(t, router, http.MethodPatch, "/api/v1/logs/"+log.ID, token, `{"notes": null, "reps": 6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dataAs(t, env, &log)
	assert.Nil(t, log.Notes)
	assert.Equal(t, 6, log.Reps)
	assert.Equal(t, 5, log.Sets)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/logs/"+log.ID, tokenFor(t, other.ID), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/api/v1/logs?from=2026-03-02&to=2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list ListResponse[GymLogResponse]
	dataAs(t, env, &list)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Pagination.Total)

	rec, env = do(t, router, http.MethodGet, "/api/v1/logs?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"from: must be a date (YYYY-MM-DD) or RFC 3339 timestamp"}, env.Details)

	rec, env = do(t, router, http.MethodPost, "/api/v1/logs", token, `{"exercise_name": "Row", "sets": 0, "reps": 8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"sets: is required"}, env.Details)

	rec, _ = do(t, router, http.MethodDelete, "/api/v1/logs/"+log.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
