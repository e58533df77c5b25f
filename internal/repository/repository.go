// Package repository defines the persistence gateway the services consume. Backends live in
// the postgres, mongo and memory subpackages and must all satisfy these interfaces.
package repository

import (
	"context"
	"time"

	"alcyxob/gym-tracker/internal/domain"
)

// Error constants for the repository layer. Backends translate driver errors into these.
var (
	ErrNotFound         = RepositoryError("not found")
	ErrDuplicate        = RepositoryError("duplicate record")
	ErrInvalidReference = RepositoryError("referenced record does not exist")
	ErrStaleRevision    = RepositoryError("revision does not match")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Page is an offset window. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// ExerciseFilter narrows catalog listings. Zero values mean "no filter".
type ExerciseFilter struct {
	Search     string // case-insensitive substring of the name
	BodyPart   domain.BodyPart
	Type       domain.ExerciseType
	Difficulty domain.Difficulty
	Equipment  []string // exercise must list all of them
	Page       Page
}

// GymLogFilter always scopes to one owner.
type GymLogFilter struct {
	OwnerID string
	Search  string // case-insensitive substring of the exercise name
	From    *time.Time
	To      *time.Time
	Page    Page
}

// PlanFilter returns public plans plus the viewer's own. With OnlyOwn set only the viewer's
// plans are returned; an empty ViewerID sees public plans only.
type PlanFilter struct {
	ViewerID    string
	OnlyOwn     bool
	Search      string            // case-insensitive substring of the name
	MuscleTypes []domain.BodyPart // plan must target all of them
	Difficulty  domain.Difficulty
	ExerciseID  string // plan must contain an item for this exercise
	Page        Page
}

// AccountRepository stores accounts. Delete removes the account's gym logs, plans and plan items.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, id string, patch domain.AccountPatch) (*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// ExerciseRepository stores the exercise catalog. Names are unique.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) error
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	// GetByIDs returns the exercises that exist, keyed by ID. Missing IDs are simply absent.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, int, error)
	Update(ctx context.Context, id string, patch domain.ExercisePatch) (*domain.Exercise, error)
	SetMediaKey(ctx context.Context, id, key string) error
}

// GymLogRepository stores gym log entries, newest first in listings.
type GymLogRepository interface {
	Create(ctx context.Context, log *domain.GymLog) error
	GetByID(ctx context.Context, id string) (*domain.GymLog, error)
	List(ctx context.Context, filter GymLogFilter) ([]domain.GymLog, int, error)
	Update(ctx context.Context, id string, patch domain.GymLogPatch) (*domain.GymLog, error)
	Delete(ctx context.Context, id string) error
}

// PlanRepository stores plan headers and their items. Deleting a plan deletes its items.
type PlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.WorkoutPlan) error
	GetPlan(ctx context.Context, id string) (*domain.WorkoutPlan, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]domain.WorkoutPlan, int, error)
	UpdatePlan(ctx context.Context, id string, patch domain.PlanPatch) (*domain.WorkoutPlan, error)
	DeletePlan(ctx context.Context, id string) error
	// AdvanceRevision bumps the plan revision. When expected is non-nil and differs from the
	// stored revision it returns ErrStaleRevision without writing.
	AdvanceRevision(ctx context.Context, id string, expected *int) (int, error)

	// CreateItem fails with ErrDuplicate if the plan already holds the exercise and with
	// ErrInvalidReference if the plan or exercise is missing.
	CreateItem(ctx context.Context, item *domain.PlanItem) error
	GetItem(ctx context.Context, id string) (*domain.PlanItem, error)
	// ListItems orders by OrderIndex, then insertion order.
	ListItems(ctx context.Context, planID string) ([]domain.PlanItem, error)
	FindItemByExercise(ctx context.Context, planID, exerciseID string) (*domain.PlanItem, error)
	// MaxOrderIndex returns 0 for a plan without items.
	MaxOrderIndex(ctx context.Context, planID string) (int, error)
	UpdateItem(ctx context.Context, id string, patch domain.PlanItemPatch) (*domain.PlanItem, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, planID string) error
}

// PlanTransactor is implemented by plan stores that can run several writes atomically. The
// repository handed to fn is bound to the transaction; returning an error rolls it back.
type PlanTransactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, plans PlanRepository) error) error
}

// Repositories bundles one backend's stores.
type Repositories struct {
	Accounts  AccountRepository
	Exercises ExerciseRepository
	GymLogs   GymLogRepository
	Plans     PlanRepository
	// Close releases the backend's connections. May be nil.
	Close func()
}
