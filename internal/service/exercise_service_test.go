package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-tracker/internal/domain"
)

type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, contentType, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	args := m.Called(ctx, objectKey, expires)
	return args.String(0), args.Error(1)
}

func (m *mockFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	args := m.Called(ctx, objectKey)
	return args.Error(0)
}

func TestExerciseService_CreateAndConflicts(t *testing.T) {
	f := newFixture(t)
	svc := NewExerciseService(f.repos.Exercises, nil, 0, quietLogger())
	ctx := context.Background()

	created, err := svc.CreateExercise(ctx, CreateExerciseInput{
		ID: "10", Name: "Deadlift", BodyPart: domain.BodyPartBack, Type: domain.ExerciseTypeStrength,
	})
	require.NoError(t, err)
	assert.Equal(t, "10", created.ID)

	_, err = svc.CreateExercise(ctx, CreateExerciseInput{
		ID: "11", Name: "Deadlift", BodyPart: domain.BodyPartBack, Type: domain.ExerciseTypeStrength,
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateExercise(ctx, CreateExerciseInput{ID: "12", Name: "Wall Sit", BodyPart: "knees", Type: domain.ExerciseTypeStrength})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"body_part: must be a valid body part"}, vErr.Details)
}

func TestExerciseService_ListAndUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewExerciseService(f.repos.Exercises, nil, 0, quietLogger())
	ctx := context.Background()

	page, err := svc.ListExercises(ctx, ExerciseQuery{BodyPart: domain.BodyPartChest})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.Limit)

	page, err = svc.ListExercises(ctx, ExerciseQuery{Page: PageRequest{Page: 1, Limit: 1000}})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Limit)
	assert.Equal(t, 3, page.Total)

	_, err = svc.ListExercises(ctx, ExerciseQuery{Type: "yoga"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateExercise(ctx, "1", domain.ExercisePatch{Difficulty: domain.Null[domain.Difficulty](), Description: domain.Some("Barbell bench press")})
	require.NoError(t, err)
	assert.Empty(t, updated.Difficulty)
	assert.Equal(t, "Barbell bench press", updated.Description)
	assert.Equal(t, "Bench Press", updated.Name)

	_, err = svc.UpdateExercise(ctx, "1", domain.ExercisePatch{Name: domain.Some("Plank")})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.UpdateExercise(ctx, "404", domain.ExercisePatch{Name: domain.Some("Ghost")})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestExerciseService_MediaDisabledWithoutStorage(t *testing.T) {
	f := newFixture(t)
	svc := NewExerciseService(f.repos.Exercises, nil, 0, quietLogger())

	_, err := svc.RequestMediaUpload(context.Background(), "1", "video/mp4")
	assert.ErrorIs(t, err, ErrMediaStorageDisabled)

	view, err := svc.GetExercise(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, view.MediaURL)
}

func TestExerciseService_MediaUploadFlow(t *testing.T) {
	f := newFixture(t)
	media := new(mockFileStorage)
	svc := NewExerciseService(f.repos.Exercises, media, time.Minute, quietLogger())
	ctx := context.Background()

	media.On("GeneratePresignedUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "exercises/1/")
	}), "video/mp4", time.Minute).Return("https://bucket/upload", nil).Twice()

	upload, err := svc.RequestMediaUpload(ctx, "1", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/upload", upload.UploadURL)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "exercises/1/"))

	media.On("GeneratePresignedDownloadURL", mock.Anything, upload.ObjectKey, time.Minute).Return("https://bucket/first", nil)
	view, err := svc.ConfirmMediaUpload(ctx, "1", upload.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/first", view.MediaURL)

	// A second upload replaces the first object.
	second, err := svc.RequestMediaUpload(ctx, "1", "video/mp4")
	require.NoError(t, err)
	media.On("GeneratePresignedDownloadURL", mock.Anything, second.ObjectKey, time.Minute).Return("https://bucket/second", nil)
	media.On("DeleteObject", mock.Anything, upload.ObjectKey).Return(errors.New("access denied"))

	view, err = svc.ConfirmMediaUpload(ctx, "1", second.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/second", view.MediaURL)

	got, err := svc.GetExercise(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "https://bucket/second", got.MediaURL)
	media.AssertExpectations(t)
}

func TestExerciseService_MediaValidation(t *testing.T) {
	f := newFixture(t)
	media := new(mockFileStorage)
	svc := NewExerciseService(f.repos.Exercises, media, time.Minute, quietLogger())
	ctx := context.Background()

	_, err := svc.RequestMediaUpload(ctx, "1", "application/pdf")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.RequestMediaUpload(ctx, "404", "image/png")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	_, err = svc.ConfirmMediaUpload(ctx, "1", "exercises/2/abc")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.ConfirmMediaUpload(ctx, "1", "exercises/1/")
	assert.ErrorIs(t, err, ErrValidation)

	media.AssertNotCalled(t, "GeneratePresignedUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
