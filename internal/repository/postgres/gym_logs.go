package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// GymLogStore implements repository.GymLogRepository.
type GymLogStore struct {
	db DBTX
}

var _ repository.GymLogRepository = (*GymLogStore)(nil)

const gymLogColumns = `id, owner_id, exercise_name, sets, reps, weight, notes, performed_at, created_at, updated_at`

func scanGymLog(row pgx.Row) (*domain.GymLog, error) {
	var l domain.GymLog
	err := row.Scan(&l.ID, &l.OwnerID, &l.ExerciseName, &l.Sets, &l.Reps, &l.Weight,
		&l.Notes, &l.PerformedAt, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, MapError(err)
	}
	return &l, nil
}

func (s *GymLogStore) Create(ctx context.Context, log *domain.GymLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now
	if log.PerformedAt.IsZero() {
		log.PerformedAt = now
	}

	_, err := s.db.Exec(ctx, `INSERT INTO gym_logs (`+gymLogColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.OwnerID, log.ExerciseName, log.Sets, log.Reps, log.Weight, log.Notes,
		log.PerformedAt, log.CreatedAt, log.UpdatedAt)
	return MapError(err)
}

func (s *GymLogStore) GetByID(ctx context.Context, id string) (*domain.GymLog, error) {
	return scanGymLog(s.db.QueryRow(ctx, `SELECT `+gymLogColumns+` FROM gym_logs WHERE id = $1`, id))
}

func (s *GymLogStore) List(ctx context.Context, f repository.GymLogFilter) ([]domain.GymLog, int, error) {
	var w whereBuilder
	w.add(`owner_id = ` + w.arg(f.OwnerID))
	if f.Search != "" {
		w.add(`exercise_name ILIKE ` + w.arg(likePattern(f.Search)))
	}
	if f.From != nil {
		w.add(`performed_at >= ` + w.arg(*f.From))
	}
	if f.To != nil {
		w.add(`performed_at <= ` + w.arg(*f.To))
	}
	where := w.clause()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM gym_logs`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + gymLogColumns + ` FROM gym_logs` + where +
		` ORDER BY performed_at DESC, created_at DESC, id` + pageClause(&w, f.Page)
	rows, err := s.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer rows.Close()

	logs := []domain.GymLog{}
	for rows.Next() {
		l, err := scanGymLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *l)
	}
	return logs, total, MapError(rows.Err())
}

func (s *GymLogStore) Update(ctx context.Context, id string, patch domain.GymLogPatch) (*domain.GymLog, error) {
	var b setBuilder
	if patch.ExerciseName.Present() {
		b.add("exercise_name", patch.ExerciseName.Value)
	}
	if patch.Sets.Present() {
		b.add("sets", patch.Sets.Value)
	}
	if patch.Reps.Present() {
		b.add("reps", patch.Reps.Value)
	}
	if patch.Weight.Present() {
		b.add("weight", patch.Weight.Value)
	}
	if patch.Notes.Set {
		b.add("notes", patch.Notes.Ptr())
	}
	if patch.PerformedAt.Present() {
		b.add("performed_at", patch.PerformedAt.Value)
	}
	b.add("updated_at", time.Now().UTC())

	return scanGymLog(s.db.QueryRow(ctx,
		`UPDATE gym_logs SET `+b.clause()+` WHERE id = `+b.arg(id)+` RETURNING `+gymLogColumns,
		b.args...))
}

func (s *GymLogStore) Delete(ctx context.Context, id string) error {
	return checkAffected(s.db.Exec(ctx, `DELETE FROM gym_logs WHERE id = $1`, id))
}
