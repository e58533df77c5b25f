package memory

import (
	"context"
	"maps"
	"time"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// planRepo inside a transaction already holds txMu, so write methods skip it.
type planRepo struct {
	s    *Store
	inTx bool
}

func (r *planRepo) writeLock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.txMu.Lock()
	return r.s.txMu.Unlock
}

func clonePlan(p domain.WorkoutPlan) domain.WorkoutPlan {
	p.MuscleTypes = append([]domain.BodyPart(nil), p.MuscleTypes...)
	if p.DurationMinutes != nil {
		d := *p.DurationMinutes
		p.DurationMinutes = &d
	}
	return p
}

// WithinTransaction runs fn with exclusive access to the plan tables and restores them if
// fn fails.
func (r *planRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context, plans repository.PlanRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.RLock()
	plans := maps.Clone(r.s.plans)
	items := maps.Clone(r.s.items)
	seq := maps.Clone(r.s.itemSeq)
	r.s.mu.RUnlock()

	if err := fn(ctx, &planRepo{s: r.s, inTx: true}); err != nil {
		r.s.mu.Lock()
		r.s.plans, r.s.items, r.s.itemSeq = plans, items, seq
		r.s.mu.Unlock()
		return err
	}
	return nil
}

func (r *planRepo) CreatePlan(_ context.Context, plan *domain.WorkoutPlan) error {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[plan.OwnerID]; !ok {
		return repository.ErrInvalidReference
	}
	plan.ID = newID(plan.ID)
	if _, taken := r.s.plans[plan.ID]; taken {
		return repository.ErrDuplicate
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Revision == 0 {
		plan.Revision = 1
	}
	r.s.plans[plan.ID] = clonePlan(*plan)
	return nil
}

func (r *planRepo) GetPlan(_ context.Context, id string) (*domain.WorkoutPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePlan(p)
	return &p, nil
}

func (r *planRepo) ListPlans(_ context.Context, f repository.PlanFilter) ([]domain.WorkoutPlan, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []domain.WorkoutPlan
	for _, p := range r.s.plans {
		own := f.ViewerID != "" && p.OwnerID == f.ViewerID
		if f.OnlyOwn && !own {
			continue
		}
		if !own && !p.IsPublic {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) {
			continue
		}
		if !containsAll(p.MuscleTypes, f.MuscleTypes) {
			continue
		}
		if f.Difficulty != "" && p.Difficulty != f.Difficulty {
			continue
		}
		if f.ExerciseID != "" && r.s.findItemLocked(p.ID, f.ExerciseID) == nil {
			continue
		}
		matched = append(matched, clonePlan(p))
	}
	sortStable(matched, func(a, b domain.WorkoutPlan) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return paginate(matched, f.Page), len(matched), nil
}

func (r *planRepo) UpdatePlan(_ context.Context, id string, patch domain.PlanPatch) (*domain.WorkoutPlan, error) {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	r.s.plans[id] = p
	p = clonePlan(p)
	return &p, nil
}

func (r *planRepo) DeletePlan(_ context.Context, id string) error {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deletePlanLocked(id)
	return nil
}

func (r *planRepo) AdvanceRevision(_ context.Context, id string, expected *int) (int, error) {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if expected != nil && *expected != p.Revision {
		return 0, repository.ErrStaleRevision
	}
	p.Revision++
	p.UpdatedAt = time.Now().UTC()
	r.s.plans[id] = p
	return p.Revision, nil
}

func (r *planRepo) CreateItem(_ context.Context, item *domain.PlanItem) error {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.plans[item.PlanID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.exercises[item.ExerciseID]; !ok {
		return repository.ErrInvalidReference
	}
	if r.s.findItemLocked(item.PlanID, item.ExerciseID) != nil {
		return repository.ErrDuplicate
	}
	item.ID = newID(item.ID)
	if _, taken := r.s.items[item.ID]; taken {
		return repository.ErrDuplicate
	}
	item.CreatedAt = time.Now().UTC()
	r.s.seq++
	r.s.items[item.ID] = *item
	r.s.itemSeq[item.ID] = r.s.seq
	return nil
}

func (r *planRepo) GetItem(_ context.Context, id string) (*domain.PlanItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (r *planRepo) ListItems(_ context.Context, planID string) ([]domain.PlanItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := []domain.PlanItem{}
	for _, it := range r.s.items {
		if it.PlanID == planID {
			items = append(items, it)
		}
	}
	sortStable(items, func(a, b domain.PlanItem) bool {
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return r.s.itemSeq[a.ID] < r.s.itemSeq[b.ID]
	})
	return items, nil
}

func (r *planRepo) FindItemByExercise(_ context.Context, planID, exerciseID string) (*domain.PlanItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it := r.s.findItemLocked(planID, exerciseID)
	if it == nil {
		return nil, repository.ErrNotFound
	}
	return it, nil
}

func (r *planRepo) MaxOrderIndex(_ context.Context, planID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	highest := 0
	for _, it := range r.s.items {
		if it.PlanID == planID && it.OrderIndex > highest {
			highest = it.OrderIndex
		}
	}
	return highest, nil
}

func (r *planRepo) UpdateItem(_ context.Context, id string, patch domain.PlanItemPatch) (*domain.PlanItem, error) {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&it)
	r.s.items[id] = it
	return &it, nil
}

func (r *planRepo) DeleteItem(_ context.Context, id string) error {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.items, id)
	delete(r.s.itemSeq, id)
	return nil
}

func (r *planRepo) DeleteItems(_ context.Context, planID string) error {
	defer r.writeLock()()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deleteItemsLocked(planID)
	return nil
}

func (s *Store) findItemLocked(planID, exerciseID string) *domain.PlanItem {
	for _, it := range s.items {
		if it.PlanID == planID && it.ExerciseID == exerciseID {
			return &it
		}
	}
	return nil
}

func (s *Store) deleteItemsLocked(planID string) {
	for id, it := range s.items {
		if it.PlanID == planID {
			delete(s.items, id)
			delete(s.itemSeq, id)
		}
	}
}

func (s *Store) deletePlanLocked(planID string) {
	s.deleteItemsLocked(planID)
	delete(s.plans, planID)
}
