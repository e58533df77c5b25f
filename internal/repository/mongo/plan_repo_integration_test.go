//go:build integration

package mongo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/service"
)

const testTimeout = 10 * time.Second

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRepositories connects to MONGO_URI and hands out a throwaway database with indexes
// in place, one account and exercises "1", "2" and "3". Tests skip without it.
func testRepositories(t *testing.T) (repository.Repositories, string) {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	client, err := ConnectDB(ctx, uri)
	require.NoError(t, err)

	db := client.Database("gym_tracker_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Errorf("drop test database: %v", err)
		}
		if err := DisconnectDB(client); err != nil {
			t.Errorf("disconnect: %v", err)
		}
	})

	require.NoError(t, EnsureIndexes(ctx, db, quietLogger()))
	repos := New(db)

	owner := &domain.Account{Name: "U1", Email: "u1@example.com", PasswordHash: "x"}
	require.NoError(t, repos.Accounts.Create(ctx, owner))
	for _, e := range []domain.Exercise{
		{ID: "1", Name: "Bench Press", BodyPart: domain.BodyPartChest, Type: domain.ExerciseTypeStrength},
		{ID: "2", Name: "Barbell Row", BodyPart: domain.BodyPartBack, Type: domain.ExerciseTypeStrength},
		{ID: "3", Name: "Squat", BodyPart: domain.BodyPartLegs, Type: domain.ExerciseTypeStrength},
	} {
		require.NoError(t, repos.Exercises.Create(ctx, &e))
	}
	return repos, owner.ID
}

func itemSpecs(exerciseIDs ...string) []domain.PlanItemSpec {
	specs := make([]domain.PlanItemSpec, len(exerciseIDs))
	for i, id := range exerciseIDs {
		specs[i] = domain.PlanItemSpec{ExerciseID: id, Sets: 3, Reps: 10}
	}
	return specs
}

func newPlan(ownerID, name string, public bool, muscles ...domain.BodyPart) *domain.WorkoutPlan {
	return &domain.WorkoutPlan{OwnerID: ownerID, Name: name, MuscleTypes: muscles, IsPublic: public}
}

func TestPlanRepository_CreateItemDuplicateAndReferences(t *testing.T) {
	repos, owner := testRepositories(t)
	ctx := context.Background()
	plans := repos.Plans

	plan := newPlan(owner, "Push Day", true, domain.BodyPartChest)
	require.NoError(t, plans.CreatePlan(ctx, plan))
	require.NoError(t, plans.CreateItem(ctx, &domain.PlanItem{PlanID: plan.ID, ExerciseID: "1", Sets: 3, Reps: 8, OrderIndex: 1}))

	err := plans.CreateItem(ctx, &domain.PlanItem{PlanID: plan.ID, ExerciseID: "1", Sets: 5, Reps: 5, OrderIndex: 2})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = plans.CreateItem(ctx, &domain.PlanItem{PlanID: plan.ID, ExerciseID: "404", Sets: 5, Reps: 5, OrderIndex: 2})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
	err = plans.CreateItem(ctx, &domain.PlanItem{PlanID: "missing", ExerciseID: "2", Sets: 5, Reps: 5, OrderIndex: 1})
	assert.ErrorIs(t, err, repository.ErrInvalidReference)

	items, err := plans.ListItems(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPlanRepository_CompensatingCreateRemovesHeader(t *testing.T) {
	repos, owner := testRepositories(t)
	ctx := context.Background()
	w := service.NewPlanWriter(repos.Plans, repos.Exercises, quietLogger())
	require.False(t, w.Transactional())

	_, err := w.Create(ctx, newPlan(owner, "Push Day", true, domain.BodyPartChest), itemSpecs("1", "2", "1"))
	require.ErrorIs(t, err, service.ErrPartialWrite)
	assert.ErrorIs(t, err, service.ErrExerciseAlreadyInPlan)

	var aggErr *service.AggregateWriteError
	require.True(t, errors.As(err, &aggErr))
	assert.True(t, aggErr.RolledBack)
	assert.Equal(t, 1, aggErr.Failed)

	_, err = repos.Plans.GetPlan(ctx, aggErr.PlanID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	items, err := repos.Plans.ListItems(ctx, aggErr.PlanID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPlanRepository_CompensatingReplaceRestoresItems(t *testing.T) {
	repos, owner := testRepositories(t)
	ctx := context.Background()
	w := service.NewPlanWriter(repos.Plans, repos.Exercises, quietLogger())

	created, err := w.Create(ctx, newPlan(owner, "Push Day", true, domain.BodyPartChest), itemSpecs("1", "2"))
	require.NoError(t, err)

	replacement := itemSpecs("3", "3")
	_, err = w.Update(ctx, created.ID, service.PlanUpdate{Items: &replacement})
	var aggErr *service.AggregateWriteError
	require.True(t, errors.As(err, &aggErr))
	assert.True(t, aggErr.RolledBack)
	assert.True(t, aggErr.HeaderKept)

	current, err := w.Load(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, current.Items, 2)
	for i := range current.Items {
		assert.Equal(t, created.Items[i].ID, current.Items[i].ID)
		assert.Equal(t, created.Items[i].OrderIndex, current.Items[i].OrderIndex)
	}
}

func TestPlanRepository_AdvanceRevision(t *testing.T) {
	repos, owner := testRepositories(t)
	ctx := context.Background()
	plans := repos.Plans

	plan := newPlan(owner, "Pull Day", false, domain.BodyPartBack)
	require.NoError(t, plans.CreatePlan(ctx, plan))

	one := 1
	rev, err := plans.AdvanceRevision(ctx, plan.ID, &one)
	require.NoError(t, err)
	assert.Equal(t, 2, rev)

	_, err = plans.AdvanceRevision(ctx, plan.ID, &one)
	assert.ErrorIs(t, err, repository.ErrStaleRevision)

	_, err = plans.AdvanceRevision(ctx, "missing", &one)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = plans.AdvanceRevision(ctx, "missing", nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPlanRepository_ListPlansFilters(t *testing.T) {
	repos, owner := testRepositories(t)
	ctx := context.Background()
	w := service.NewPlanWriter(repos.Plans, repos.Exercises, quietLogger())

	_, err := w.Create(ctx, newPlan(owner, "Push Day", true, domain.BodyPartChest, domain.BodyPartArms), itemSpecs("1"))
	require.NoError(t, err)
	_, err = w.Create(ctx, newPlan(owner, "Pull Day", true, domain.BodyPartBack), itemSpecs("2"))
	require.NoError(t, err)
	_, err = w.Create(ctx, newPlan(owner, "Secret Push", false, domain.BodyPartChest), itemSpecs("1", "3"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter repository.PlanFilter
		want   []string
	}{
		{"anonymous sees public only", repository.PlanFilter{}, []string{"Push Day", "Pull Day"}},
		{"owner sees own private", repository.PlanFilter{ViewerID: owner}, []string{"Push Day", "Pull Day", "Secret Push"}},
		{"search is case-insensitive", repository.PlanFilter{ViewerID: owner, Search: "push"}, []string{"Push Day", "Secret Push"}},
		{"muscle types must all match", repository.PlanFilter{ViewerID: owner, MuscleTypes: []domain.BodyPart{domain.BodyPartChest, domain.BodyPartArms}}, []string{"Push Day"}},
		{"exercise existence", repository.PlanFilter{ViewerID: owner, ExerciseID: "1"}, []string{"Push Day", "Secret Push"}},
		{"exercise nobody uses", repository.PlanFilter{ViewerID: owner, ExerciseID: "404"}, []string{}},
		{"regex characters are literal", repository.PlanFilter{Search: "Push.*"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, total, err := repos.Plans.ListPlans(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			got := make([]string, len(plans))
			for i, p := range plans {
				got[i] = p.Name
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}
