package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

func newPlan(owner string) *domain.WorkoutPlan {
	return &domain.WorkoutPlan{
		OwnerID:     owner,
		Name:        "Push Day",
		MuscleTypes: []domain.BodyPart{domain.BodyPartChest},
		IsPublic:    true,
	}
}

func TestPlanWriter_CreateReadsBackSubmittedItems(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, _ *faultyPlans, w *PlanWriter) {
		specs := []domain.PlanItemSpec{spec("3", 3, 60), spec("1", 4, 8), spec("2", 3, 15)}

		detail, err := w.Create(context.Background(), newPlan(f.owner.ID), specs)
		require.NoError(t, err)
		require.Len(t, detail.Items, 3)
		assert.Equal(t, 1, detail.Revision)

		for i, item := range detail.Items {
			assert.Equal(t, specs[i].ExerciseID, item.ExerciseID)
			assert.Equal(t, i+1, item.OrderIndex)
			assert.Equal(t, specs[i].Sets, item.Sets)
			assert.Equal(t, specs[i].Reps, item.Reps)
			require.NotNil(t, item.Exercise)
		}
		bench := detail.Items[1].Exercise
		assert.Equal(t, "Bench Press", bench.Name)
		assert.Equal(t, "Flat barbell press", bench.Description)
		assert.Equal(t, domain.BodyPartChest, bench.BodyPart)
		assert.Equal(t, domain.ExerciseTypeStrength, bench.Type)
		assert.Equal(t, domain.DifficultyIntermediate, bench.Difficulty)
		assert.Equal(t, []string{"barbell", "bench"}, bench.Equipment)
	})
}

func TestPlanWriter_CreateKeepsExplicitOrderIndex(t *testing.T) {
	f := newFixture(t)
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())

	specs := []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15)}
	specs[0].OrderIndex = intPtr(5)

	detail, err := w.Create(context.Background(), newPlan(f.owner.ID), specs)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "2", detail.Items[0].ExerciseID)
	assert.Equal(t, 2, detail.Items[0].OrderIndex)
	assert.Equal(t, "1", detail.Items[1].ExerciseID)
	assert.Equal(t, 5, detail.Items[1].OrderIndex)
}

func TestPlanWriter_CreateIsAllOrNothing(t *testing.T) {
	specs := []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15), spec("3", 3, 60)}

	for k := 1; k <= len(specs); k++ {
		writePaths(t, k, func(t *testing.T, f *fixture, plans *faultyPlans, w *PlanWriter) {
			ctx := context.Background()
			_, err := w.Create(ctx, newPlan(f.owner.ID), specs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPartialWrite)
			assert.ErrorIs(t, err, errInjected)

			var aggErr *AggregateWriteError
			require.True(t, errors.As(err, &aggErr))
			assert.True(t, aggErr.RolledBack)
			assert.Equal(t, "create", aggErr.Op)
			assert.Equal(t, len(specs), aggErr.Total)

			require.Len(t, *plans.createdPlans, 1)
			_, err = f.repos.Plans.GetPlan(ctx, (*plans.createdPlans)[0])
			assert.ErrorIs(t, err, repository.ErrNotFound)
			items, err := f.repos.Plans.ListItems(ctx, (*plans.createdPlans)[0])
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestPlanWriter_CompensatingPathObservesEveryInsert(t *testing.T) {
	f := newFixture(t)
	plans := newFaultyPlans(f.repos.Plans, 1)
	w := NewPlanWriter(plans, f.repos.Exercises, quietLogger())

	_, err := w.Create(context.Background(), newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15), spec("3", 3, 60)})
	require.Error(t, err)
	assert.Equal(t, 3, *plans.itemCalls)

	var aggErr *AggregateWriteError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, 1, aggErr.Failed)
}

func TestPlanWriter_DuplicateExerciseInListFailsCreate(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, plans *faultyPlans, w *PlanWriter) {
		ctx := context.Background()
		_, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("1", 3, 10)})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPartialWrite)
		assert.ErrorIs(t, err, ErrConflict)
		assert.ErrorIs(t, err, ErrExerciseAlreadyInPlan)

		require.Len(t, *plans.createdPlans, 1)
		_, err = f.repos.Plans.GetPlan(ctx, (*plans.createdPlans)[0])
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPlanWriter_FailedCompensationLeavesOrphanReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plans := newFaultyPlans(f.repos.Plans, 2)
	plans.failDelete = true
	w := NewPlanWriter(plans, f.repos.Exercises, quietLogger())

	_, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15)})
	var aggErr *AggregateWriteError
	require.True(t, errors.As(err, &aggErr))
	assert.False(t, aggErr.RolledBack)

	orphan, err := f.repos.Plans.GetPlan(ctx, aggErr.PlanID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, orphan.OwnerID)
}

func TestPlanWriter_CreateRejectsUnknownExerciseBeforeWriting(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, plans *faultyPlans, w *PlanWriter) {
		_, err := w.Create(context.Background(), newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("404", 3, 10)})
		assert.ErrorIs(t, err, ErrExerciseNotFound)
		assert.Empty(t, *plans.createdPlans)
		assert.Zero(t, *plans.itemCalls)
	})
}

func TestPlanWriter_ReplaceItems(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, _ *faultyPlans, w *PlanWriter) {
		ctx := context.Background()
		created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15)})
		require.NoError(t, err)

		items := []domain.PlanItemSpec{spec("3", 2, 45)}
		updated, err := w.Update(ctx, created.ID, PlanUpdate{
			Patch:    domain.PlanPatch{Name: domain.Some("Core Day"), DurationMinutes: domain.Some(30)},
			Revision: intPtr(created.Revision),
			Items:    &items,
		})
		require.NoError(t, err)
		assert.Equal(t, "Core Day", updated.Name)
		require.NotNil(t, updated.DurationMinutes)
		assert.Equal(t, 30, *updated.DurationMinutes)
		assert.Equal(t, created.Revision+1, updated.Revision)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, "3", updated.Items[0].ExerciseID)
		assert.Equal(t, 1, updated.Items[0].OrderIndex)
	})
}

func TestPlanWriter_HeaderOnlyUpdateKeepsItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())
	created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8)})
	require.NoError(t, err)

	updated, err := w.Update(ctx, created.ID, PlanUpdate{Patch: domain.PlanPatch{IsPublic: domain.Some(false)}})
	require.NoError(t, err)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, created.Name, updated.Name)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, created.Items[0].ID, updated.Items[0].ID)
}

func TestPlanWriter_StaleRevisionIsConflict(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, _ *faultyPlans, w *PlanWriter) {
		ctx := context.Background()
		created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8)})
		require.NoError(t, err)

		items := []domain.PlanItemSpec{spec("2", 3, 15)}
		_, err = w.Update(ctx, created.ID, PlanUpdate{Revision: intPtr(created.Revision + 7), Items: &items})
		assert.ErrorIs(t, err, ErrStaleRevision)
		assert.ErrorIs(t, err, ErrConflict)

		current, err := w.Load(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.Revision, current.Revision)
		require.Len(t, current.Items, 1)
		assert.Equal(t, "1", current.Items[0].ExerciseID)
	})
}

func TestPlanWriter_FailedReplaceKeepsPreviousItems(t *testing.T) {
	writePaths(t, 0, func(t *testing.T, f *fixture, plans *faultyPlans, w *PlanWriter) {
		ctx := context.Background()
		created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15)})
		require.NoError(t, err)

		plans.failItemAt = *plans.itemCalls + 2
		items := []domain.PlanItemSpec{spec("3", 2, 45), spec("1", 5, 5)}
		_, err = w.Update(ctx, created.ID, PlanUpdate{Items: &items})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPartialWrite)

		var aggErr *AggregateWriteError
		require.True(t, errors.As(err, &aggErr))
		assert.Equal(t, "replace", aggErr.Op)
		assert.True(t, aggErr.RolledBack)
		assert.Equal(t, !w.Transactional(), aggErr.HeaderKept)

		current, err := w.Load(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, current.Items, 2)
		for i := range current.Items {
			assert.Equal(t, created.Items[i].ID, current.Items[i].ID)
			assert.Equal(t, created.Items[i].ExerciseID, current.Items[i].ExerciseID)
			assert.Equal(t, created.Items[i].OrderIndex, current.Items[i].OrderIndex)
		}
	})
}

func TestPlanWriter_AddItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())

	specs := []domain.PlanItemSpec{spec("1", 4, 8)}
	specs[0].OrderIndex = intPtr(4)
	created, err := w.Create(ctx, newPlan(f.owner.ID), specs)
	require.NoError(t, err)

	added, err := w.AddItem(ctx, created.ID, spec("2", 3, 15))
	require.NoError(t, err)
	assert.Equal(t, 5, added.OrderIndex)
	require.NotNil(t, added.Exercise)
	assert.Equal(t, "Push Up", added.Exercise.Name)

	current, err := w.Load(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Revision+1, current.Revision)
}

func TestPlanWriter_AddDuplicateExerciseLeavesItemsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())
	created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15)})
	require.NoError(t, err)

	for _, exerciseID := range []string{"1", "2"} {
		_, err = w.AddItem(ctx, created.ID, spec(exerciseID, 1, 1))
		assert.ErrorIs(t, err, ErrConflict)
	}

	current, err := w.Load(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, current.Items, 2)
	assert.Equal(t, created.Revision, current.Revision)
}

func TestPlanWriter_AddToEmptyPlanStartsAtOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())
	created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8)})
	require.NoError(t, err)
	require.NoError(t, w.RemoveItem(ctx, created.ID, created.Items[0].ID))

	added, err := w.AddItem(ctx, created.ID, spec("3", 2, 30))
	require.NoError(t, err)
	assert.Equal(t, 1, added.OrderIndex)
}

func TestPlanWriter_RemoveItemKeepsOtherOrderIndexes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())
	created, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("1", 4, 8), spec("2", 3, 15), spec("3", 3, 60)})
	require.NoError(t, err)

	require.NoError(t, w.RemoveItem(ctx, created.ID, created.Items[1].ID))

	current, err := w.Load(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, current.Items, 2)
	assert.Equal(t, 1, current.Items[0].OrderIndex)
	assert.Equal(t, 3, current.Items[1].OrderIndex)

	err = w.RemoveItem(ctx, created.ID, created.Items[1].ID)
	assert.ErrorIs(t, err, ErrPlanItemNotFound)
}

func TestPlanWriter_UpdateItemIsPartialAndScopedToPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := NewPlanWriter(f.repos.Plans, f.repos.Exercises, quietLogger())

	specs := []domain.PlanItemSpec{spec("1", 4, 8)}
	notes := "pause at the bottom"
	specs[0].Notes = &notes
	first, err := w.Create(ctx, newPlan(f.owner.ID), specs)
	require.NoError(t, err)
	second, err := w.Create(ctx, newPlan(f.owner.ID), []domain.PlanItemSpec{spec("2", 3, 15)})
	require.NoError(t, err)

	updated, err := w.UpdateItem(ctx, first.ID, first.Items[0].ID, domain.PlanItemPatch{Reps: domain.Some(6)})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Sets)
	assert.Equal(t, 6, updated.Reps)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	updated, err = w.UpdateItem(ctx, first.ID, first.Items[0].ID, domain.PlanItemPatch{Notes: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Notes)

	_, err = w.UpdateItem(ctx, first.ID, second.Items[0].ID, domain.PlanItemPatch{Reps: domain.Some(1)})
	assert.ErrorIs(t, err, ErrPlanItemNotFound)
}
