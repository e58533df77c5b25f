package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-tracker/internal/access"
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

type CreateGymLogInput struct {
	ExerciseName string
	Sets         int
	Reps         int
	Weight       float64
	Notes        *string
	PerformedAt  *time.Time // defaults to now
}

func (in CreateGymLogInput) Validate() []string {
	var details []string
	if in.ExerciseName == "" {
		details = append(details, "exercise_name: is required")
	}
	if in.Sets <= 0 {
		details = append(details, "sets: must be greater than 0")
	}
	if in.Reps <= 0 {
		details = append(details, "reps: must be greater than 0")
	}
	if in.Weight < 0 {
		details = append(details, "weight: must be 0 or greater")
	}
	if in.Sets > domain.MaxCount {
		details = append(details, domain.TooLarge("sets"))
	}
	if in.Reps > domain.MaxCount {
		details = append(details, domain.TooLarge("reps"))
	}
	return details
}

type GymLogQuery struct {
	Search string
	From   *time.Time
	To     *time.Time
	Page   PageRequest
}

// GymLogService manages an account's private gym log.
type GymLogService interface {
	CreateLog(ctx context.Context, actorID string, in CreateGymLogInput) (*domain.GymLog, error)
	GetLog(ctx context.Context, actorID, logID string) (*domain.GymLog, error)
	ListLogs(ctx context.Context, actorID string, q GymLogQuery) (*PageResult[domain.GymLog], error)
	UpdateLog(ctx context.Context, actorID, logID string, patch domain.GymLogPatch) (*domain.GymLog, error)
	DeleteLog(ctx context.Context, actorID, logID string) error
}

type gymLogService struct {
	logs repository.GymLogRepository
}

func NewGymLogService(logs repository.GymLogRepository) GymLogService {
	return &gymLogService{logs: logs}
}

// authorize evaluates op on a log; logs are never public.
func (s *gymLogService) authorize(ctx context.Context, actorID, logID string, op access.Operation) (*domain.GymLog, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	res := access.Resource{Exists: log != nil}
	if log != nil {
		res.OwnerID = log.OwnerID
	}
	switch access.Evaluate(actorID, res, op) {
	case access.Allow:
		return log, nil
	case access.DenyNotFound:
		return nil, ErrGymLogNotFound
	default:
		return nil, ErrGymLogForbidden
	}
}

func (s *gymLogService) CreateLog(ctx context.Context, actorID string, in CreateGymLogInput) (*domain.GymLog, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}
	log := &domain.GymLog{
		OwnerID:      actorID,
		ExerciseName: in.ExerciseName,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
		Notes:        in.Notes,
	}
	if in.PerformedAt != nil {
		log.PerformedAt = in.PerformedAt.UTC()
	}
	if err := s.logs.Create(ctx, log); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return log, nil
}

func (s *gymLogService) GetLog(ctx context.Context, actorID, logID string) (*domain.GymLog, error) {
	return s.authorize(ctx, actorID, logID, access.OpRead)
}

func (s *gymLogService) ListLogs(ctx context.Context, actorID string, q GymLogQuery) (*PageResult[domain.GymLog], error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, &ValidationError{Details: []string{"to: must not be before from"}}
	}
	page := q.Page.normalize()
	logs, total, err := s.logs.List(ctx, repository.GymLogFilter{
		OwnerID: actorID,
		Search:  q.Search,
		From:    q.From,
		To:      q.To,
		Page:    page.window(),
	})
	if err != nil {
		return nil, err
	}
	return newPageResult(logs, page, total), nil
}

func (s *gymLogService) UpdateLog(ctx context.Context, actorID, logID string, patch domain.GymLogPatch) (*domain.GymLog, error) {
	if err := validationError(patch.Validate()); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actorID, logID, access.OpUpdate); err != nil {
		return nil, err
	}
	log, err := s.logs.Update(ctx, logID, patch)
	return log, mapRepoError(err, ErrGymLogNotFound, nil)
}

func (s *gymLogService) DeleteLog(ctx context.Context, actorID, logID string) error {
	if _, err := s.authorize(ctx, actorID, logID, access.OpDelete); err != nil {
		return err
	}
	return mapRepoError(s.logs.Delete(ctx, logID), ErrGymLogNotFound, nil)
}
