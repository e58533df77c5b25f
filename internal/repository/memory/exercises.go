package memory

import (
	"context"
	"time"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

type exerciseRepo struct {
	s *Store
}

func cloneExercise(e domain.Exercise) domain.Exercise {
	e.Equipment = append([]string(nil), e.Equipment...)
	return e
}

func (r *exerciseRepo) Create(_ context.Context, exercise *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exercise.ID = newID(exercise.ID)
	if _, taken := r.s.exercises[exercise.ID]; taken {
		return repository.ErrDuplicate
	}
	for _, existing := range r.s.exercises {
		if existing.Name == exercise.Name {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.exercises[exercise.ID] = cloneExercise(*exercise)
	return nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = cloneExercise(e)
	return &e, nil
}

func (r *exerciseRepo) GetByIDs(_ context.Context, ids []string) (map[string]*domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	found := make(map[string]*domain.Exercise, len(ids))
	for _, id := range ids {
		if e, ok := r.s.exercises[id]; ok {
			e = cloneExercise(e)
			found[id] = &e
		}
	}
	return found, nil
}

func (r *exerciseRepo) List(_ context.Context, f repository.ExerciseFilter) ([]domain.Exercise, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var matched []domain.Exercise
	for _, e := range r.s.exercises {
		if f.Search != "" && !containsFold(e.Name, f.Search) {
			continue
		}
		if f.BodyPart != "" && e.BodyPart != f.BodyPart {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Difficulty != "" && e.Difficulty != f.Difficulty {
			continue
		}
		if !containsAll(e.Equipment, f.Equipment) {
			continue
		}
		matched = append(matched, cloneExercise(e))
	}
	sortStable(matched, func(a, b domain.Exercise) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return paginate(matched, f.Page), len(matched), nil
}

func (r *exerciseRepo) Update(_ context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&e)
	for otherID, other := range r.s.exercises {
		if otherID != id && other.Name == e.Name {
			return nil, repository.ErrDuplicate
		}
	}
	e.UpdatedAt = time.Now().UTC()
	r.s.exercises[id] = e
	e = cloneExercise(e)
	return &e, nil
}

func (r *exerciseRepo) SetMediaKey(_ context.Context, id, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.exercises[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.MediaKey = key
	e.UpdatedAt = time.Now().UTC()
	r.s.exercises[id] = e
	return nil
}
