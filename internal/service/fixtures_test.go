package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/repository/memory"
)

var errInjected = errors.New("injected store failure")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repos repository.Repositories
	owner *domain.Account
	other *domain.Account
}

// newFixture seeds two accounts and the exercises "1", "2" and "3".
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()

	owner := &domain.Account{Name: "U1", Email: "u1@example.com", PasswordHash: "x"}
	other := &domain.Account{Name: "U2", Email: "u2@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Accounts.Create(ctx, owner))
	require.NoError(t, repos.Accounts.Create(ctx, other))

	for _, e := range []domain.Exercise{
		{ID: "1", Name: "Bench Press", Description: "Flat barbell press", BodyPart: domain.BodyPartChest, Type: domain.ExerciseTypeStrength, Difficulty: domain.DifficultyIntermediate, Equipment: []string{"barbell", "bench"}},
		{ID: "2", Name: "Push Up", BodyPart: domain.BodyPartChest, Type: domain.ExerciseTypeStrength},
		{ID: "3", Name: "Plank", BodyPart: domain.BodyPartCore, Type: domain.ExerciseTypeBalance},
	} {
		require.NoError(t, repos.Exercises.Create(ctx, &e))
	}
	return &fixture{repos: repos, owner: owner, other: other}
}

func spec(exerciseID string, sets, reps int) domain.PlanItemSpec {
	return domain.PlanItemSpec{ExerciseID: exerciseID, Sets: sets, Reps: reps}
}

func intPtr(v int) *int { return &v }

// faultyPlans fails chosen plan store calls. failItemAt is the 1-based CreateItem call that
// fails; 0 never fails.
type faultyPlans struct {
	repository.PlanRepository
	failItemAt   int
	failDelete   bool
	itemCalls    *int
	createdPlans *[]string
}

func newFaultyPlans(inner repository.PlanRepository, failItemAt int) *faultyPlans {
	return &faultyPlans{PlanRepository: inner, failItemAt: failItemAt, itemCalls: new(int), createdPlans: new([]string)}
}

func (f *faultyPlans) CreatePlan(ctx context.Context, plan *domain.WorkoutPlan) error {
	if err := f.PlanRepository.CreatePlan(ctx, plan); err != nil {
		return err
	}
	*f.createdPlans = append(*f.createdPlans, plan.ID)
	return nil
}

func (f *faultyPlans) CreateItem(ctx context.Context, item *domain.PlanItem) error {
	*f.itemCalls++
	if *f.itemCalls == f.failItemAt {
		return errInjected
	}
	return f.PlanRepository.CreateItem(ctx, item)
}

func (f *faultyPlans) DeletePlan(ctx context.Context, id string) error {
	if f.failDelete {
		return errInjected
	}
	return f.PlanRepository.DeletePlan(ctx, id)
}

// transactionalFaultyPlans keeps the inner store's transactions and injects the same faults
// into the transaction-bound repository.
type transactionalFaultyPlans struct {
	*faultyPlans
	tx repository.PlanTransactor
}

func (t *transactionalFaultyPlans) WithinTransaction(ctx context.Context, fn func(ctx context.Context, plans repository.PlanRepository) error) error {
	return t.tx.WithinTransaction(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		bound := *t.faultyPlans
		bound.PlanRepository = plans
		return fn(ctx, &bound)
	})
}

// writePaths runs a test against both the transactional and the compensating writer.
func writePaths(t *testing.T, failItemAt int, run func(t *testing.T, f *fixture, plans *faultyPlans, w *PlanWriter)) {
	t.Run("transactional", func(t *testing.T) {
		f := newFixture(t)
		faulty := newFaultyPlans(f.repos.Plans, failItemAt)
		wrapped := &transactionalFaultyPlans{faultyPlans: faulty, tx: f.repos.Plans.(repository.PlanTransactor)}
		w := NewPlanWriter(wrapped, f.repos.Exercises, quietLogger())
		require.True(t, w.Transactional())
		run(t, f, faulty, w)
	})
	t.Run("compensating", func(t *testing.T) {
		f := newFixture(t)
		faulty := newFaultyPlans(f.repos.Plans, failItemAt)
		w := NewPlanWriter(faulty, f.repos.Exercises, quietLogger())
		require.False(t, w.Transactional())
		run(t, f, faulty, w)
	})
}
