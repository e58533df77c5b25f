package memory

import (
	"context"
	"time"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

type gymLogRepo struct {
	s *Store
}

func (r *gymLogRepo) Create(_ context.Context, log *domain.GymLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[log.OwnerID]; !ok {
		return repository.ErrInvalidReference
	}
	log.ID = newID(log.ID)
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	if log.PerformedAt.IsZero() {
		log.PerformedAt = now
	}
	r.s.logs[log.ID] = *log
	return nil
}

func (r *gymLogRepo) GetByID(_ context.Context, id string) (*domain.GymLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *gymLogRepo) List(_ context.Context, f repository.GymLogFilter) ([]domain.GymLog, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []domain.GymLog
	for _, l := range r.s.logs {
		if l.OwnerID != f.OwnerID {
			continue
		}
		if f.Search != "" && !containsFold(l.ExerciseName, f.Search) {
			continue
		}
		if f.From != nil && l.PerformedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && l.PerformedAt.After(*f.To) {
			continue
		}
		matched = append(matched, l)
	}
	sortStable(matched, func(a, b domain.GymLog) bool {
		if !a.PerformedAt.Equal(b.PerformedAt) {
			return a.PerformedAt.After(b.PerformedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return paginate(matched, f.Page), len(matched), nil
}

func (r *gymLogRepo) Update(_ context.Context, id string, patch domain.GymLogPatch) (*domain.GymLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&l)
	l.UpdatedAt = time.Now().UTC()
	r.s.logs[id] = l
	return &l, nil
}

func (r *gymLogRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.logs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.logs, id)
	return nil
}
