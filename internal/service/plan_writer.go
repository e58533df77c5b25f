package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// PlanWriter writes a plan header together with its item list so that callers observe
// all or nothing. When the plan store implements repository.PlanTransactor the writes run
// in one transaction; otherwise a failed create deletes the header again and a failed
// replace restores the previous items, both best-effort.
//
// PlanWriter does not authorize. Callers check ownership first.
type PlanWriter struct {
	plans     repository.PlanRepository
	exercises repository.ExerciseRepository
	tx        repository.PlanTransactor // nil when the store has no transactions
	logger    *slog.Logger
}

func NewPlanWriter(plans repository.PlanRepository, exercises repository.ExerciseRepository, logger *slog.Logger) *PlanWriter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &PlanWriter{
		plans:     plans,
		exercises: exercises,
		logger:    logger.With(slog.String("component", "plan_writer")),
	}
	if tx, ok := plans.(repository.PlanTransactor); ok {
		w.tx = tx
	}
	return w
}

// Transactional reports which write path is in use.
func (w *PlanWriter) Transactional() bool { return w.tx != nil }

// PlanUpdate is a header patch plus an optional replacement item list. A nil Items leaves
// the current items alone. A non-nil Revision must match the stored one.
type PlanUpdate struct {
	Patch    domain.PlanPatch
	Revision *int
	Items    *[]domain.PlanItemSpec
}

// buildItems assigns position+1 to specs without an explicit order index.
func buildItems(planID string, specs []domain.PlanItemSpec) []domain.PlanItem {
	items := make([]domain.PlanItem, len(specs))
	for i, spec := range specs {
		order := i + 1
		if spec.OrderIndex != nil {
			order = *spec.OrderIndex
		}
		items[i] = domain.PlanItem{
			PlanID:      planID,
			ExerciseID:  spec.ExerciseID,
			Sets:        spec.Sets,
			Reps:        spec.Reps,
			Weight:      spec.Weight,
			RestSeconds: spec.RestSeconds,
			Notes:       spec.Notes,
			OrderIndex:  order,
		}
	}
	return items
}

// checkExercises fails with ErrExerciseNotFound before anything is written.
func (w *PlanWriter) checkExercises(ctx context.Context, specs []domain.PlanItemSpec) error {
	ids := make([]string, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if !seen[spec.ExerciseID] {
			seen[spec.ExerciseID] = true
			ids = append(ids, spec.ExerciseID)
		}
	}
	found, err := w.exercises.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
		}
	}
	return nil
}

// insertAll issues every insert and observes every result. It returns the number of
// failures and the first failure.
func insertAll(ctx context.Context, plans repository.PlanRepository, items []domain.PlanItem) (int, error) {
	failed := 0
	var first error
	for i := range items {
		if err := plans.CreateItem(ctx, &items[i]); err != nil {
			failed++
			if first == nil {
				first = itemWriteError(err)
			}
		}
	}
	return failed, first
}

// headerWriteError classifies a failed header insert; the only reference is the owner.
func headerWriteError(err error) error {
	if errors.Is(err, repository.ErrInvalidReference) {
		return ErrAccountNotFound
	}
	return err
}

// insertUntilFailure stops at the first failure; inside a transaction later statements
// would fail anyway.
func insertUntilFailure(ctx context.Context, plans repository.PlanRepository, items []domain.PlanItem) error {
	for i := range items {
		if err := plans.CreateItem(ctx, &items[i]); err != nil {
			return itemWriteError(err)
		}
	}
	return nil
}

// Create inserts the header and all items and returns the stored plan with joined exercises.
func (w *PlanWriter) Create(ctx context.Context, plan *domain.WorkoutPlan, specs []domain.PlanItemSpec) (*domain.PlanDetail, error) {
	if len(specs) == 0 {
		return nil, &ValidationError{Details: []string{"exercises: must contain at least 1 item"}}
	}
	if err := w.checkExercises(ctx, specs); err != nil {
		return nil, err
	}

	if w.tx != nil {
		err := w.tx.WithinTransaction(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
			if err := plans.CreatePlan(ctx, plan); err != nil {
				return headerWriteError(err)
			}
			if err := insertUntilFailure(ctx, plans, buildItems(plan.ID, specs)); err != nil {
				return &AggregateWriteError{Op: "create", PlanID: plan.ID, Failed: 1, Total: len(specs), RolledBack: true, Cause: err}
			}
			return nil
		})
		if err != nil {
			w.logFailure("create", plan.ID, err)
			return nil, err
		}
		return w.Load(ctx, plan.ID)
	}

	// Header failure aborts with nothing to undo.
	if err := w.plans.CreatePlan(ctx, plan); err != nil {
		return nil, headerWriteError(err)
	}
	failed, cause := insertAll(ctx, w.plans, buildItems(plan.ID, specs))
	if failed > 0 {
		aggErr := &AggregateWriteError{Op: "create", PlanID: plan.ID, Failed: failed, Total: len(specs), RolledBack: true, Cause: cause}
		if err := w.plans.DeletePlan(ctx, plan.ID); err != nil {
			aggErr.RolledBack = false
			w.logger.Error("compensating delete failed, plan header left orphaned",
				slog.String("plan_id", plan.ID),
				slog.String("error", err.Error()))
		}
		w.logFailure("create", plan.ID, aggErr)
		return nil, aggErr
	}
	return w.Load(ctx, plan.ID)
}

// Update applies the header patch and, when Items is set, replaces the whole item list.
func (w *PlanWriter) Update(ctx context.Context, planID string, upd PlanUpdate) (*domain.PlanDetail, error) {
	if upd.Items != nil {
		if len(*upd.Items) == 0 {
			return nil, &ValidationError{Details: []string{"exercises: must contain at least 1 item"}}
		}
		if err := w.checkExercises(ctx, *upd.Items); err != nil {
			return nil, err
		}
	}

	writeHeader := func(ctx context.Context, plans repository.PlanRepository) error {
		if _, err := plans.AdvanceRevision(ctx, planID, upd.Revision); err != nil {
			return mapRepoError(err, ErrPlanNotFound, nil)
		}
		if !upd.Patch.IsEmpty() {
			if _, err := plans.UpdatePlan(ctx, planID, upd.Patch); err != nil {
				return mapRepoError(err, ErrPlanNotFound, nil)
			}
		}
		return nil
	}

	if w.tx != nil {
		err := w.tx.WithinTransaction(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
			if err := writeHeader(ctx, plans); err != nil {
				return err
			}
			if upd.Items == nil {
				return nil
			}
			if err := plans.DeleteItems(ctx, planID); err != nil {
				return err
			}
			if err := insertUntilFailure(ctx, plans, buildItems(planID, *upd.Items)); err != nil {
				return &AggregateWriteError{Op: "replace", PlanID: planID, Failed: 1, Total: len(*upd.Items), RolledBack: true, Cause: err}
			}
			return nil
		})
		if err != nil {
			w.logFailure("replace", planID, err)
			return nil, err
		}
		return w.Load(ctx, planID)
	}

	if err := writeHeader(ctx, w.plans); err != nil {
		return nil, err
	}
	if upd.Items != nil {
		if err := w.replaceItems(ctx, planID, *upd.Items); err != nil {
			w.logFailure("replace", planID, err)
			return nil, err
		}
	}
	return w.Load(ctx, planID)
}

// replaceItems is the non-transactional replace: snapshot, delete all, insert all, and on
// failure put the snapshot back. The header patch is not undone.
func (w *PlanWriter) replaceItems(ctx context.Context, planID string, specs []domain.PlanItemSpec) error {
	previous, err := w.plans.ListItems(ctx, planID)
	if err != nil {
		return err
	}
	if err := w.plans.DeleteItems(ctx, planID); err != nil {
		return err
	}

	failed, cause := insertAll(ctx, w.plans, buildItems(planID, specs))
	if failed == 0 {
		return nil
	}

	aggErr := &AggregateWriteError{Op: "replace", PlanID: planID, Failed: failed, Total: len(specs), RolledBack: true, HeaderKept: true, Cause: cause}
	if err := w.plans.DeleteItems(ctx, planID); err != nil {
		aggErr.RolledBack = false
		w.logger.Error("failed to clear partial item list", slog.String("plan_id", planID), slog.String("error", err.Error()))
		return aggErr
	}
	for i := range previous {
		if err := w.plans.CreateItem(ctx, &previous[i]); err != nil {
			aggErr.RolledBack = false
			w.logger.Error("failed to restore plan item",
				slog.String("plan_id", planID),
				slog.String("item_id", previous[i].ID),
				slog.String("error", err.Error()))
		}
	}
	return aggErr
}

// run executes fn in a transaction when available, otherwise directly against the store.
func (w *PlanWriter) run(ctx context.Context, fn func(ctx context.Context, plans repository.PlanRepository) error) error {
	if w.tx != nil {
		return w.tx.WithinTransaction(ctx, fn)
	}
	return fn(ctx, w.plans)
}

// AddItem appends one exercise. Without an explicit order index it goes after the current
// highest one, or first in an empty plan.
func (w *PlanWriter) AddItem(ctx context.Context, planID string, spec domain.PlanItemSpec) (*domain.PlanItemDetail, error) {
	exercise, err := w.exercises.GetByID(ctx, spec.ExerciseID)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, nil)
	}

	var item domain.PlanItem
	err = w.run(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		_, err := plans.FindItemByExercise(ctx, planID, spec.ExerciseID)
		if err == nil {
			return ErrExerciseAlreadyInPlan
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if spec.OrderIndex == nil {
			highest, err := plans.MaxOrderIndex(ctx, planID)
			if err != nil {
				return err
			}
			if highest >= domain.MaxCount {
				return &ValidationError{Details: []string{domain.TooLarge("order_index")}}
			}
			next := highest + 1
			spec.OrderIndex = &next
		}
		item = buildItems(planID, []domain.PlanItemSpec{spec})[0]
		if err := plans.CreateItem(ctx, &item); err != nil {
			return itemWriteError(err)
		}
		_, err = plans.AdvanceRevision(ctx, planID, nil)
		return mapRepoError(err, ErrPlanNotFound, nil)
	})
	if err != nil {
		return nil, err
	}

	summary := exercise.Summary()
	return &domain.PlanItemDetail{PlanItem: item, Exercise: &summary}, nil
}

// itemOf loads an item and checks it belongs to planID.
func itemOf(ctx context.Context, plans repository.PlanRepository, planID, itemID string) (*domain.PlanItem, error) {
	item, err := plans.GetItem(ctx, itemID)
	if err != nil {
		return nil, mapRepoError(err, ErrPlanItemNotFound, nil)
	}
	if item.PlanID != planID {
		return nil, ErrPlanItemNotFound
	}
	return item, nil
}

func (w *PlanWriter) UpdateItem(ctx context.Context, planID, itemID string, patch domain.PlanItemPatch) (*domain.PlanItemDetail, error) {
	var updated *domain.PlanItem
	err := w.run(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		if _, err := itemOf(ctx, plans, planID, itemID); err != nil {
			return err
		}
		var err error
		updated, err = plans.UpdateItem(ctx, itemID, patch)
		if err != nil {
			return mapRepoError(err, ErrPlanItemNotFound, nil)
		}
		_, err = plans.AdvanceRevision(ctx, planID, nil)
		return mapRepoError(err, ErrPlanNotFound, nil)
	})
	if err != nil {
		return nil, err
	}

	detail := domain.PlanItemDetail{PlanItem: *updated}
	if exercise, err := w.exercises.GetByID(ctx, updated.ExerciseID); err == nil {
		summary := exercise.Summary()
		detail.Exercise = &summary
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &detail, nil
}

// RemoveItem deletes one item. Other items keep their order index.
func (w *PlanWriter) RemoveItem(ctx context.Context, planID, itemID string) error {
	return w.run(ctx, func(ctx context.Context, plans repository.PlanRepository) error {
		if _, err := itemOf(ctx, plans, planID, itemID); err != nil {
			return err
		}
		if err := plans.DeleteItem(ctx, itemID); err != nil {
			return mapRepoError(err, ErrPlanItemNotFound, nil)
		}
		_, err := plans.AdvanceRevision(ctx, planID, nil)
		return mapRepoError(err, ErrPlanNotFound, nil)
	})
}

// Load reads the header and its ordered items, each joined with its exercise.
func (w *PlanWriter) Load(ctx context.Context, planID string) (*domain.PlanDetail, error) {
	plan, err := w.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, mapRepoError(err, ErrPlanNotFound, nil)
	}
	items, err := w.plans.ListItems(ctx, planID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ExerciseID)
	}
	exercises, err := w.exercises.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &domain.PlanDetail{WorkoutPlan: *plan, Items: make([]domain.PlanItemDetail, 0, len(items))}
	for _, it := range items {
		d := domain.PlanItemDetail{PlanItem: it}
		if e, ok := exercises[it.ExerciseID]; ok {
			summary := e.Summary()
			d.Exercise = &summary
		}
		detail.Items = append(detail.Items, d)
	}
	return detail, nil
}

func (w *PlanWriter) logFailure(op, planID string, err error) {
	var aggErr *AggregateWriteError
	if !errors.As(err, &aggErr) {
		return
	}
	w.logger.Warn("plan aggregate write failed",
		slog.String("op", op),
		slog.String("plan_id", planID),
		slog.Int("failed_items", aggErr.Failed),
		slog.Int("total_items", aggErr.Total),
		slog.Bool("rolled_back", aggErr.RolledBack),
		slog.Bool("transactional", w.tx != nil),
		slog.String("error", aggErr.Cause.Error()))
}
