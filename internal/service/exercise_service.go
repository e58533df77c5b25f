package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"alcyxob/gym-tracker/internal/storage"
)

// CreateExerciseInput adds a catalog entry under an externally chosen ID.
type CreateExerciseInput struct {
	ID          string
	Name        string
	Description string
	BodyPart    domain.BodyPart
	Type        domain.ExerciseType
	Difficulty  domain.Difficulty
	Equipment   []string
}

func (in CreateExerciseInput) Validate() []string {
	var details []string
	if in.ID == "" {
		details = append(details, "id: is required")
	}
	if in.Name == "" {
		details = append(details, "name: is required")
	}
	if !in.BodyPart.Valid() {
		details = append(details, "body_part: must be a valid body part")
	}
	if !in.Type.Valid() {
		details = append(details, "type: must be a valid exercise type")
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	return details
}

type ExerciseQuery struct {
	Search     string
	BodyPart   domain.BodyPart
	Type       domain.ExerciseType
	Difficulty domain.Difficulty
	Equipment  []string
	Page       PageRequest
}

// ExerciseView is an exercise with a short-lived download URL for its demo media, if any.
type ExerciseView struct {
	domain.Exercise
	MediaURL string
}

// MediaUpload tells the client where to PUT the file and which key to confirm afterwards.
type MediaUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresAt time.Time
}

// --- Service Interface ---
type ExerciseService interface {
	CreateExercise(ctx context.Context, in CreateExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id string) (*ExerciseView, error)
	ListExercises(ctx context.Context, q ExerciseQuery) (*PageResult[domain.Exercise], error)
	UpdateExercise(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error)
	RequestMediaUpload(ctx context.Context, id, contentType string) (*MediaUpload, error)
	ConfirmMediaUpload(ctx context.Context, id, objectKey string) (*ExerciseView, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo  repository.ExerciseRepository
	media         storage.FileStorage // nil disables the media operations
	presignExpiry time.Duration
	logger        *slog.Logger
}

// NewExerciseService creates a new instance of exerciseService. media may be nil.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, media storage.FileStorage, presignExpiry time.Duration, logger *slog.Logger) ExerciseService {
	if logger == nil {
		logger = slog.Default()
	}
	if presignExpiry <= 0 {
		presignExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exerciseService{
		exerciseRepo:  exerciseRepo,
		media:         media,
		presignExpiry: presignExpiry,
		logger:        logger.With(slog.String("component", "exercise_service")),
	}
}

func (s *exerciseService) CreateExercise(ctx context.Context, in CreateExerciseInput) (*domain.Exercise, error) {
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}
	exercise := &domain.Exercise{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		BodyPart:    in.BodyPart,
		Type:        in.Type,
		Difficulty:  in.Difficulty,
		Equipment:   in.Equipment,
	}
	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, mapRepoError(err, nil, ErrExerciseExists)
	}
	return exercise, nil
}

// GetExercise retrieves a single exercise, presigning its media when storage is configured.
func (s *exerciseService) GetExercise(ctx context.Context, id string) (*ExerciseView, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, nil)
	}
	return s.view(ctx, exercise), nil
}

// view never fails: a presign error only drops the URL.
func (s *exerciseService) view(ctx context.Context, exercise *domain.Exercise) *ExerciseView {
	v := &ExerciseView{Exercise: *exercise}
	if s.media == nil || exercise.MediaKey == "" {
		return v
	}
	url, err := s.media.GeneratePresignedDownloadURL(ctx, exercise.MediaKey, s.presignExpiry)
	if err != nil {
		s.logger.Warn("could not presign exercise media",
			slog.String("exercise_id", exercise.ID),
			slog.String("error", err.Error()))
		return v
	}
	v.MediaURL = url
	return v
}

func (s *exerciseService) ListExercises(ctx context.Context, q ExerciseQuery) (*PageResult[domain.Exercise], error) {
	var details []string
	if q.BodyPart != "" && !q.BodyPart.Valid() {
		details = append(details, "body_part: must be a valid body part")
	}
	if q.Type != "" && !q.Type.Valid() {
		details = append(details, "type: must be a valid exercise type")
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	if err := validationError(details); err != nil {
		return nil, err
	}

	page := q.Page.normalize()
	exercises, total, err := s.exerciseRepo.List(ctx, repository.ExerciseFilter{
		Search:     q.Search,
		BodyPart:   q.BodyPart,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Equipment:  q.Equipment,
		Page:       page.window(),
	})
	if err != nil {
		return nil, err
	}
	return newPageResult(exercises, page, total), nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	if err := validationError(patch.Validate()); err != nil {
		return nil, err
	}
	exercise, err := s.exerciseRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, ErrExerciseExists)
	}
	return exercise, nil
}

func mediaKeyPrefix(exerciseID string) string {
	return "exercises/" + exerciseID + "/"
}

// RequestMediaUpload presigns a PUT for a fresh object key under the exercise's prefix.
func (s *exerciseService) RequestMediaUpload(ctx context.Context, id, contentType string) (*MediaUpload, error) {
	if s.media == nil {
		return nil, ErrMediaStorageDisabled
	}
	if !strings.HasPrefix(contentType, "video/") && !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Details: []string{"content_type: must be an image/* or video/* type"}}
	}
	if _, err := s.exerciseRepo.GetByID(ctx, id); err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, nil)
	}

	key := mediaKeyPrefix(id) + uuid.NewString()
	url, err := s.media.GeneratePresignedUploadURL(ctx, key, contentType, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign media upload: %w", err)
	}
	return &MediaUpload{UploadURL: url, ObjectKey: key, ExpiresAt: time.Now().UTC().Add(s.presignExpiry)}, nil
}

// ConfirmMediaUpload records objectKey as the exercise's media and deletes the previous object.
func (s *exerciseService) ConfirmMediaUpload(ctx context.Context, id, objectKey string) (*ExerciseView, error) {
	if s.media == nil {
		return nil, ErrMediaStorageDisabled
	}
	if !strings.HasPrefix(objectKey, mediaKeyPrefix(id)) || len(objectKey) == len(mediaKeyPrefix(id)) {
		return nil, &ValidationError{Details: []string{"object_key: does not belong to this exercise"}}
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, nil)
	}
	previous := exercise.MediaKey
	if err := s.exerciseRepo.SetMediaKey(ctx, id, objectKey); err != nil {
		return nil, mapRepoError(err, ErrExerciseNotFound, nil)
	}
	exercise.MediaKey = objectKey

	if previous != "" && previous != objectKey {
		if err := s.media.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced exercise media",
				slog.String("exercise_id", id),
				slog.String("key", previous),
				slog.String("error", err.Error()))
		}
	}
	return s.view(ctx, exercise), nil
}
