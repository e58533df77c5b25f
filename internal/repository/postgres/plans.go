package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// PlanStore implements repository.PlanRepository and repository.PlanTransactor. A store
// bound to a transaction has a nil pool.
type PlanStore struct {
	db     DBTX
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var (
	_ repository.PlanRepository = (*PlanStore)(nil)
	_ repository.PlanTransactor = (*PlanStore)(nil)
)

// WithinTransaction runs fn in a database transaction. Nested calls reuse the outer one.
func (s *PlanStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, plans repository.PlanRepository) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Error("failed to roll back transaction after panic",
					slog.String("error", rbErr.Error()), slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, &PlanStore{db: tx, logger: s.logger}); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("failed to roll back transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("original_error", err.Error()))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const planColumns = `id, owner_id, name, description, muscle_types, COALESCE(difficulty, ''), duration_minutes, is_public, revision, created_at, updated_at`

func scanPlan(row pgx.Row) (*domain.WorkoutPlan, error) {
	var p domain.WorkoutPlan
	var muscles []string
	var difficulty string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &muscles, &difficulty,
		&p.DurationMinutes, &p.IsPublic, &p.Revision, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, MapError(err)
	}
	p.MuscleTypes = fromStrings[domain.BodyPart](muscles)
	p.Difficulty = domain.Difficulty(difficulty)
	return &p, nil
}

func (s *PlanStore) CreatePlan(ctx context.Context, plan *domain.WorkoutPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.Revision == 0 {
		plan.Revision = 1
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO workout_plans (id, owner_id, name, description, muscle_types, difficulty, duration_minutes, is_public, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		plan.ID, plan.OwnerID, plan.Name, plan.Description, toStrings(plan.MuscleTypes),
		nullIfEmpty(string(plan.Difficulty)), plan.DurationMinutes, plan.IsPublic, plan.Revision,
		plan.CreatedAt, plan.UpdatedAt)
	return MapError(err)
}

func (s *PlanStore) GetPlan(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	return scanPlan(s.db.QueryRow(ctx, `SELECT `+planColumns+` FROM workout_plans WHERE id = $1`, id))
}

func (s *PlanStore) ListPlans(ctx context.Context, f repository.PlanFilter) ([]domain.WorkoutPlan, int, error) {
	var w whereBuilder
	switch {
	case f.OnlyOwn:
		w.add(`p.owner_id = ` + w.arg(f.ViewerID))
	case f.ViewerID != "":
		w.add(`(p.is_public OR p.owner_id = ` + w.arg(f.ViewerID) + `)`)
	default:
		w.add(`p.is_public`)
	}
	if f.Search != "" {
		w.add(`p.name ILIKE ` + w.arg(likePattern(f.Search)))
	}
	if len(f.MuscleTypes) > 0 {
		w.add(`p.muscle_types @> ` + w.arg(toStrings(f.MuscleTypes)))
	}
	if f.Difficulty != "" {
		w.add(`p.difficulty = ` + w.arg(string(f.Difficulty)))
	}
	if f.ExerciseID != "" {
		w.add(`EXISTS (SELECT 1 FROM plan_items i WHERE i.plan_id = p.id AND i.exercise_id = ` + w.arg(f.ExerciseID) + `)`)
	}
	where := w.clause()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM workout_plans p`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + planColumns + ` FROM workout_plans p` + where +
		` ORDER BY p.created_at DESC, p.id` + pageClause(&w, f.Page)
	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer rows.Close()

	plans := []domain.WorkoutPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, *p)
	}
	return plans, total, MapError(rows.Err())
}

func (s *PlanStore) UpdatePlan(ctx context.Context, id string, patch domain.PlanPatch) (*domain.WorkoutPlan, error) {
	var b setBuilder
	if patch.Name.Present() {
		b.add("name", patch.Name.Value)
	}
	if patch.Description.Present() {
		b.add("description", patch.Description.Value)
	}
	if patch.MuscleTypes.Present() {
		b.add("muscle_types", toStrings(patch.MuscleTypes.Value))
	}
	if patch.Difficulty.Set {
		b.add("difficulty", nullIfEmpty(string(patch.Difficulty.Value)))
	}
	if patch.DurationMinutes.Set {
		b.add("duration_minutes", patch.DurationMinutes.Ptr())
	}
	if patch.IsPublic.Present() {
		b.add("is_public", patch.IsPublic.Value)
	}
	b.add("updated_at", time.Now().UTC())

	return scanPlan(s.db.QueryRow(ctx,
		`UPDATE workout_plans SET `+b.clause()+` WHERE id = `+b.arg(id)+` RETURNING `+planColumns,
		b.args...))
}

// DeletePlan relies on ON DELETE CASCADE for the plan's items.
func (s *PlanStore) DeletePlan(ctx context.Context, id string) error {
	return checkAffected(s.db.Exec(ctx, `DELETE FROM workout_plans WHERE id = $1`, id))
}

func (s *PlanStore) AdvanceRevision(ctx context.Context, id string, expected *int) (int, error) {
	var revision int
	err := s.db.QueryRow(ctx, `
		UPDATE workout_plans SET revision = revision + 1, updated_at = $2
		WHERE id = $1 AND ($3::integer IS NULL OR revision = $3)
		RETURNING revision`,
		id, time.Now().UTC(), expected).Scan(&revision)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the plan is gone or the revision moved on.
		if _, getErr := s.GetPlan(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, repository.ErrStaleRevision
	}
	if err != nil {
		return 0, MapError(err)
	}
	return revision, nil
}

const itemColumns = `id, plan_id, exercise_id, sets, reps, weight, rest_seconds, notes, order_index, created_at`

func scanItem(row pgx.Row) (*domain.PlanItem, error) {
	var it domain.PlanItem
	err := row.Scan(&it.ID, &it.PlanID, &it.ExerciseID, &it.Sets, &it.Reps, &it.Weight,
		&it.RestSeconds, &it.Notes, &it.OrderIndex, &it.CreatedAt)
	if err != nil {
		return nil, MapError(err)
	}
	return &it, nil
}

func (s *PlanStore) CreateItem(ctx context.Context, item *domain.PlanItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(ctx, `INSERT INTO plan_items (`+itemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.PlanID, item.ExerciseID, item.Sets, item.Reps, item.Weight,
		item.RestSeconds, item.Notes, item.OrderIndex, item.CreatedAt)
	return MapError(err)
}

func (s *PlanStore) GetItem(ctx context.Context, id string) (*domain.PlanItem, error) {
	return scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM plan_items WHERE id = $1`, id))
}

func (s *PlanStore) ListItems(ctx context.Context, planID string) ([]domain.PlanItem, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+itemColumns+` FROM plan_items WHERE plan_id = $1 ORDER BY order_index, seq`, planID)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	items := []domain.PlanItem{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, MapError(rows.Err())
}

func (s *PlanStore) FindItemByExercise(ctx context.Context, planID, exerciseID string) (*domain.PlanItem, error) {
	return scanItem(s.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM plan_items WHERE plan_id = $1 AND exercise_id = $2`, planID, exerciseID))
}

func (s *PlanStore) MaxOrderIndex(ctx context.Context, planID string) (int, error) {
	var highest int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index), 0) FROM plan_items WHERE plan_id = $1`, planID).Scan(&highest)
	return highest, MapError(err)
}

func (s *PlanStore) UpdateItem(ctx context.Context, id string, patch domain.PlanItemPatch) (*domain.PlanItem, error) {
	var b setBuilder
	if patch.Sets.Present() {
		b.add("sets", patch.Sets.Value)
	}
	if patch.Reps.Present() {
		b.add("reps", patch.Reps.Value)
	}
	if patch.Weight.Set {
		b.add("weight", patch.Weight.Ptr())
	}
	if patch.RestSeconds.Set {
		b.add("rest_seconds", patch.RestSeconds.Ptr())
	}
	if patch.Notes.Set {
		b.add("notes", patch.Notes.Ptr())
	}
	if patch.OrderIndex.Present() {
		b.add("order_index", patch.OrderIndex.Value)
	}
	if b.empty() {
		return s.GetItem(ctx, id)
	}

	return scanItem(s.db.QueryRow(ctx,
		`UPDATE plan_items SET `+b.clause()+` WHERE id = `+b.arg(id)+` RETURNING `+itemColumns,
		b.args...))
}

func (s *PlanStore) DeleteItem(ctx context.Context, id string) error {
	return checkAffected(s.db.Exec(ctx, `DELETE FROM plan_items WHERE id = $1`, id))
}

func (s *PlanStore) DeleteItems(ctx context.Context, planID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM plan_items WHERE plan_id = $1`, planID)
	return MapError(err)
}
