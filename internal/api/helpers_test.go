package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/service"
)

const testSecret = "api-test-secret-0123456789"

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenFor(t *testing.T, accountID string) string {
	t.Helper()
	claims := service.TokenClaims{
		AccountID:        accountID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestRouter(t *testing.T, repos repository.Repositories, plans service.PlanService) *gin.Engine {
	t.Helper()
	if plans == nil {
		plans = service.NewPlanService(repos.Plans, repos.Exercises, quietLogger())
	}
	router, err := NewRouter(quietLogger(), Services{
		Auth:      service.NewAuthService(repos.Accounts, testSecret, time.Hour, quietLogger()),
		Exercises: service.NewExerciseService(repos.Exercises, nil, 0, quietLogger()),
		GymLogs:   service.NewGymLogService(repos.GymLogs),
		Plans:     plans,
	})
	require.NoError(t, err)
	return router
}

// do sends body (marshalled unless it is a string) and decodes the envelope.
func do(t *testing.T, router http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// dataAs re-decodes the envelope's data into out.
func dataAs(t *testing.T, env Envelope, out any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

type mockPlanService struct {
	mock.Mock
}

func (m *mockPlanService) CreatePlan(ctx context.Context, actorID string, in service.CreatePlanInput) (*domain.PlanDetail, error) {
	args := m.Called(ctx, actorID, in)
	detail, _ := args.Get(0).(*domain.PlanDetail)
	return detail, args.Error(1)
}

func (m *mockPlanService) GetPlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error) {
	args := m.Called(ctx, actorID, planID)
	detail, _ := args.Get(0).(*domain.PlanDetail)
	return detail, args.Error(1)
}

func (m *mockPlanService) ListPlans(ctx context.Context, actorID string, q service.PlanQuery) (*service.PageResult[domain.WorkoutPlan], error) {
	args := m.Called(ctx, actorID, q)
	page, _ := args.Get(0).(*service.PageResult[domain.WorkoutPlan])
	return page, args.Error(1)
}

func (m *mockPlanService) UpdatePlan(ctx context.Context, actorID, planID string, upd service.PlanUpdate) (*domain.PlanDetail, error) {
	args := m.Called(ctx, actorID, planID, upd)
	detail, _ := args.Get(0).(*domain.PlanDetail)
	return detail, args.Error(1)
}

func (m *mockPlanService) DeletePlan(ctx context.Context, actorID, planID string) error {
	return m.Called(ctx, actorID, planID).Error(0)
}

func (m *mockPlanService) DuplicatePlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error) {
	args := m.Called(ctx, actorID, planID)
	detail, _ := args.Get(0).(*domain.PlanDetail)
	return detail, args.Error(1)
}

func (m *mockPlanService) AddItem(ctx context.Context, actorID, planID string, spec domain.PlanItemSpec) (*domain.PlanItemDetail, error) {
	args := m.Called(ctx, actorID, planID, spec)
	item, _ := args.Get(0).(*domain.PlanItemDetail)
	return item, args.Error(1)
}

func (m *mockPlanService) UpdateItem(ctx context.Context, actorID, planID, itemID string, patch domain.PlanItemPatch) (*domain.PlanItemDetail, error) {
	args := m.Called(ctx, actorID, planID, itemID, patch)
	item, _ := args.Get(0).(*domain.PlanItemDetail)
	return item, args.Error(1)
}

func (m *mockPlanService) RemoveItem(ctx context.Context, actorID, planID, itemID string) error {
	return m.Called(ctx, actorID, planID, itemID).Error(0)
}
