package service

import (
	"errors"
	"fmt"
	"strings"

	"alcyxob/gym-tracker/internal/repository"
)

// --- Error Taxonomy ---
// Every error a service returns wraps one of these, so the API layer can choose a status
// code with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrPartialWrite = errors.New("aggregate write failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// --- Entity Errors ---
var (
	ErrAccountNotFound  = fmt.Errorf("%w: account", ErrNotFound)
	ErrExerciseNotFound = fmt.Errorf("%w: exercise", ErrNotFound)
	ErrGymLogNotFound   = fmt.Errorf("%w: gym log", ErrNotFound)
	ErrPlanNotFound     = fmt.Errorf("%w: workout plan", ErrNotFound)
	ErrPlanItemNotFound = fmt.Errorf("%w: plan item", ErrNotFound)

	ErrPlanForbidden   = fmt.Errorf("%w: only the plan owner can modify it", ErrForbidden)
	ErrGymLogForbidden = fmt.Errorf("%w: gym log belongs to another account", ErrForbidden)

	ErrEmailTaken            = fmt.Errorf("%w: email is already registered", ErrConflict)
	ErrExerciseExists        = fmt.Errorf("%w: an exercise with this id or name already exists", ErrConflict)
	ErrExerciseAlreadyInPlan = fmt.Errorf("%w: exercise is already part of this plan", ErrConflict)
	ErrStaleRevision         = fmt.Errorf("%w: plan was modified since the supplied revision", ErrConflict)

	ErrAuthenticationFailed = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	ErrTokenGeneration      = errors.New("failed to generate authentication token")

	ErrMediaStorageDisabled = errors.New("media storage is not configured")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// validationError returns nil when there are no details.
func validationError(details []string) error {
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}

// AggregateWriteError reports a plan create or replace whose item writes did not all
// succeed. It matches both ErrPartialWrite and the first item failure.
type AggregateWriteError struct {
	Op     string // "create" or "replace"
	PlanID string
	Failed int
	Total  int
	// RolledBack is false when the compensating step itself failed and the store may hold
	// an orphaned header or a partial item list.
	RolledBack bool
	// HeaderKept is set when a replace ran without a transaction: the header patch and
	// revision bump stay applied even though the items were restored.
	HeaderKept bool
	Cause      error
}

func (e *AggregateWriteError) Error() string {
	return fmt.Sprintf("%s plan %s: %d of %d items failed (rolled back: %t): %v",
		e.Op, e.PlanID, e.Failed, e.Total, e.RolledBack, e.Cause)
}

func (e *AggregateWriteError) Unwrap() []error {
	return []error{ErrPartialWrite, e.Cause}
}

// mapRepoError converts store errors into the taxonomy. notFound replaces ErrNotFound and
// conflict replaces ErrDuplicate; anything unrecognised passes through as an upstream failure.
func mapRepoError(err, notFound, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrDuplicate) && conflict != nil:
		return conflict
	case errors.Is(err, repository.ErrStaleRevision):
		return ErrStaleRevision
	default:
		return err
	}
}

// itemWriteError classifies a failed plan item insert.
func itemWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrExerciseAlreadyInPlan
	case errors.Is(err, repository.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrExerciseNotFound, err)
	default:
		return err
	}
}
