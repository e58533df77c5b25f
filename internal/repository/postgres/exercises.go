package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// ExerciseStore implements repository.ExerciseRepository.
type ExerciseStore struct {
	db DBTX
}

var _ repository.ExerciseRepository = (*ExerciseStore)(nil)

const exerciseColumns = `id, name, description, body_part, type, COALESCE(difficulty, ''), equipment, COALESCE(media_key, ''), created_at, updated_at`

func scanExercise(row pgx.Row) (*domain.Exercise, error) {
	var e domain.Exercise
	var bodyPart, exType, difficulty string
	err := row.Scan(&e.ID, &e.Name, &e.Description, &bodyPart, &exType, &difficulty,
		&e.Equipment, &e.MediaKey, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, MapError(err)
	}
	e.BodyPart = domain.BodyPart(bodyPart)
	e.Type = domain.ExerciseType(exType)
	e.Difficulty = domain.Difficulty(difficulty)
	return &e, nil
}

func equipmentArg(equipment []string) []string {
	if equipment == nil {
		return []string{}
	}
	return equipment
}

func (s *ExerciseStore) Create(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	_, err := s.db.Exec(ctx, `
		INSERT INTO exercises (id, name, description, body_part, type, difficulty, equipment, media_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		exercise.ID, exercise.Name, exercise.Description, string(exercise.BodyPart), string(exercise.Type),
		nullIfEmpty(string(exercise.Difficulty)), equipmentArg(exercise.Equipment), nullIfEmpty(exercise.MediaKey),
		exercise.CreatedAt, exercise.UpdatedAt)
	return MapError(err)
}

func (s *ExerciseStore) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	return scanExercise(s.db.QueryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id))
}

func (s *ExerciseStore) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Exercise, error) {
	found := make(map[string]*domain.Exercise, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		found[e.ID] = e
	}
	return found, MapError(rows.Err())
}

func (s *ExerciseStore) List(ctx context.Context, f repository.ExerciseFilter) ([]domain.Exercise, int, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add(`name ILIKE ` + w.arg(likePattern(f.Search)))
	}
	if f.BodyPart != "" {
		w.add(`body_part = ` + w.arg(string(f.BodyPart)))
	}
	if f.Type != "" {
		w.add(`type = ` + w.arg(string(f.Type)))
	}
	if f.Difficulty != "" {
		w.add(`difficulty = ` + w.arg(string(f.Difficulty)))
	}
	if len(f.Equipment) > 0 {
		w.add(`equipment @> ` + w.arg(f.Equipment))
	}
	where := w.clause()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM exercises`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + exerciseColumns + ` FROM exercises` + where + ` ORDER BY name, id` + pageClause(&w, f.Page)
	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer rows.Close()

	exercises := []domain.Exercise{}
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, 0, err
		}
		exercises = append(exercises, *e)
	}
	return exercises, total, MapError(rows.Err())
}

func (s *ExerciseStore) Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	var b setBuilder
	if patch.Name.Present() {
		b.add("name", patch.Name.Value)
	}
	if patch.Description.Present() {
		b.add("description", patch.Description.Value)
	}
	if patch.BodyPart.Present() {
		b.add("body_part", string(patch.BodyPart.Value))
	}
	if patch.Type.Present() {
		b.add("type", string(patch.Type.Value))
	}
	if patch.Difficulty.Set {
		b.add("difficulty", nullIfEmpty(string(patch.Difficulty.Value)))
	}
	if patch.Equipment.Set {
		b.add("equipment", equipmentArg(patch.Equipment.Value))
	}
	b.add("updated_at", time.Now().UTC())

	return scanExercise(s.db.QueryRow(ctx,
		`UPDATE exercises SET `+b.clause()+` WHERE id = `+b.arg(id)+` RETURNING `+exerciseColumns,
		b.args...))
}

func (s *ExerciseStore) SetMediaKey(ctx context.Context, id, key string) error {
	return checkAffected(s.db.Exec(ctx,
		`UPDATE exercises SET media_key = $1, updated_at = $2 WHERE id = $3`,
		nullIfEmpty(key), time.Now().UTC(), id))
}
