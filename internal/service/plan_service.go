package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"alcyxob/gym-tracker/internal/access"
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
)

// CreatePlanInput is a new plan header plus its initial, non-empty item list.
type CreatePlanInput struct {
	Name            string
	Description     string
	MuscleTypes     []domain.BodyPart
	Difficulty      domain.Difficulty
	DurationMinutes *int
	IsPublic        bool
	Items           []domain.PlanItemSpec
}

func (in CreatePlanInput) Validate() []string {
	var details []string
	if in.Name == "" {
		details = append(details, "name: is required")
	}
	if len(in.MuscleTypes) == 0 {
		details = append(details, "muscle_types: must contain at least 1 item")
	}
	for _, m := range in.MuscleTypes {
		if !m.Valid() {
			details = append(details, fmt.Sprintf("muscle_types: %q is not a valid body part", m))
		}
	}
	if in.Difficulty != "" && !in.Difficulty.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes <= 0 {
		details = append(details, "duration_minutes: must be greater than 0")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes > domain.MaxCount {
		details = append(details, domain.TooLarge("duration_minutes"))
	}
	if len(in.Items) == 0 {
		details = append(details, "exercises: must contain at least 1 item")
	}
	return append(details, validateItemSpecs(in.Items)...)
}

func validateItemSpecs(specs []domain.PlanItemSpec) []string {
	var details []string
	for i, spec := range specs {
		details = append(details, validateItemSpec(fmt.Sprintf("exercises[%d].", i), spec)...)
	}
	return details
}

func validateItemSpec(prefix string, spec domain.PlanItemSpec) []string {
	var details []string
	if spec.ExerciseID == "" {
		details = append(details, prefix+"exercise_id: is required")
	}
	if spec.Sets <= 0 {
		details = append(details, prefix+"sets: must be greater than 0")
	}
	if spec.Reps <= 0 {
		details = append(details, prefix+"reps: must be greater than 0")
	}
	if spec.Weight != nil && *spec.Weight < 0 {
		details = append(details, prefix+"weight: must be 0 or greater")
	}
	if spec.RestSeconds != nil && *spec.RestSeconds < 0 {
		details = append(details, prefix+"rest_seconds: must be 0 or greater")
	}
	if spec.OrderIndex != nil && *spec.OrderIndex < 1 {
		details = append(details, prefix+"order_index: must be 1 or greater")
	}
	if spec.Sets > domain.MaxCount {
		details = append(details, domain.TooLarge(prefix+"sets"))
	}
	if spec.Reps > domain.MaxCount {
		details = append(details, domain.TooLarge(prefix+"reps"))
	}
	if spec.RestSeconds != nil && *spec.RestSeconds > domain.MaxCount {
		details = append(details, domain.TooLarge(prefix+"rest_seconds"))
	}
	if spec.OrderIndex != nil && *spec.OrderIndex > domain.MaxCount {
		details = append(details, domain.TooLarge(prefix+"order_index"))
	}
	return details
}

// PlanQuery filters plan listings. Anonymous callers see public plans only.
type PlanQuery struct {
	Search      string
	MuscleTypes []domain.BodyPart
	Difficulty  domain.Difficulty
	ExerciseID  string
	Mine        bool
	Page        PageRequest
}

// PlanService is the workout plan use-case surface. actorID is empty for anonymous callers.
type PlanService interface {
	CreatePlan(ctx context.Context, actorID string, in CreatePlanInput) (*domain.PlanDetail, error)
	GetPlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error)
	ListPlans(ctx context.Context, actorID string, q PlanQuery) (*PageResult[domain.WorkoutPlan], error)
	UpdatePlan(ctx context.Context, actorID, planID string, upd PlanUpdate) (*domain.PlanDetail, error)
	DeletePlan(ctx context.Context, actorID, planID string) error
	DuplicatePlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error)

	AddItem(ctx context.Context, actorID, planID string, spec domain.PlanItemSpec) (*domain.PlanItemDetail, error)
	UpdateItem(ctx context.Context, actorID, planID, itemID string, patch domain.PlanItemPatch) (*domain.PlanItemDetail, error)
	RemoveItem(ctx context.Context, actorID, planID, itemID string) error
}

type planService struct {
	plans  repository.PlanRepository
	writer *PlanWriter
	logger *slog.Logger
}

func NewPlanService(plans repository.PlanRepository, exercises repository.ExerciseRepository, logger *slog.Logger) PlanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &planService{
		plans:  plans,
		writer: NewPlanWriter(plans, exercises, logger),
		logger: logger.With(slog.String("component", "plan_service")),
	}
}

// authorize loads the plan and evaluates op against it. A denied read reports
// ErrPlanNotFound so private plans are not disclosed; denied writes report ErrPlanForbidden.
func (s *planService) authorize(ctx context.Context, actorID, planID string, op access.Operation) (*domain.WorkoutPlan, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	res := access.Resource{Exists: plan != nil}
	if plan != nil {
		res.OwnerID = plan.OwnerID
		res.Public = plan.IsPublic
	}

	switch access.Evaluate(actorID, res, op) {
	case access.Allow:
		return plan, nil
	case access.DenyNotFound:
		return nil, ErrPlanNotFound
	default:
		if op == access.OpRead {
			return nil, ErrPlanNotFound
		}
		s.logger.Debug("plan access denied",
			slog.String("plan_id", planID),
			slog.String("actor_id", actorID),
			slog.String("op", op.String()))
		return nil, ErrPlanForbidden
	}
}

func (s *planService) CreatePlan(ctx context.Context, actorID string, in CreatePlanInput) (*domain.PlanDetail, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	if err := validationError(in.Validate()); err != nil {
		return nil, err
	}

	plan := &domain.WorkoutPlan{
		OwnerID:         actorID,
		Name:            in.Name,
		Description:     in.Description,
		MuscleTypes:     in.MuscleTypes,
		Difficulty:      in.Difficulty,
		DurationMinutes: in.DurationMinutes,
		IsPublic:        in.IsPublic,
	}
	return s.writer.Create(ctx, plan, in.Items)
}

func (s *planService) GetPlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error) {
	if _, err := s.authorize(ctx, actorID, planID, access.OpRead); err != nil {
		return nil, err
	}
	return s.writer.Load(ctx, planID)
}

func (s *planService) ListPlans(ctx context.Context, actorID string, q PlanQuery) (*PageResult[domain.WorkoutPlan], error) {
	if q.Mine && actorID == "" {
		return nil, ErrUnauthorized
	}
	var details []string
	for _, m := range q.MuscleTypes {
		if !m.Valid() {
			details = append(details, fmt.Sprintf("muscle_types: %q is not a valid body part", m))
		}
	}
	if q.Difficulty != "" && !q.Difficulty.Valid() {
		details = append(details, "difficulty: must be beginner, intermediate or advanced")
	}
	if err := validationError(details); err != nil {
		return nil, err
	}

	page := q.Page.normalize()
	plans, total, err := s.plans.ListPlans(ctx, repository.PlanFilter{
		ViewerID:    actorID,
		OnlyOwn:     q.Mine,
		Search:      q.Search,
		MuscleTypes: q.MuscleTypes,
		Difficulty:  q.Difficulty,
		ExerciseID:  q.ExerciseID,
		Page:        page.window(),
	})
	if err != nil {
		return nil, err
	}
	return newPageResult(plans, page, total), nil
}

func (s *planService) UpdatePlan(ctx context.Context, actorID, planID string, upd PlanUpdate) (*domain.PlanDetail, error) {
	details := upd.Patch.Validate()
	if upd.Items != nil {
		if len(*upd.Items) == 0 {
			details = append(details, "exercises: must contain at least 1 item")
		}
		details = append(details, validateItemSpecs(*upd.Items)...)
	}
	if err := validationError(details); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actorID, planID, access.OpUpdate); err != nil {
		return nil, err
	}
	return s.writer.Update(ctx, planID, upd)
}

// DeletePlan removes the plan; its items go with it.
func (s *planService) DeletePlan(ctx context.Context, actorID, planID string) error {
	if _, err := s.authorize(ctx, actorID, planID, access.OpDelete); err != nil {
		return err
	}
	return mapRepoError(s.plans.DeletePlan(ctx, planID), ErrPlanNotFound, nil)
}

// DuplicatePlan copies a plan the actor can read into a new private plan the actor owns.
func (s *planService) DuplicatePlan(ctx context.Context, actorID, planID string) (*domain.PlanDetail, error) {
	if actorID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := s.authorize(ctx, actorID, planID, access.OpRead); err != nil {
		return nil, err
	}
	source, err := s.writer.Load(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(source.Items) == 0 {
		return nil, &ValidationError{Details: []string{"exercises: plan has no exercises to copy"}}
	}

	specs := make([]domain.PlanItemSpec, 0, len(source.Items))
	for _, it := range source.Items {
		order := it.OrderIndex
		specs = append(specs, domain.PlanItemSpec{
			ExerciseID:  it.ExerciseID,
			Sets:        it.Sets,
			Reps:        it.Reps,
			Weight:      it.Weight,
			RestSeconds: it.RestSeconds,
			Notes:       it.Notes,
			OrderIndex:  &order,
		})
	}
	copyPlan := &domain.WorkoutPlan{
		OwnerID:         actorID,
		Name:            source.Name + " (copy)",
		Description:     source.Description,
		MuscleTypes:     source.MuscleTypes,
		Difficulty:      source.Difficulty,
		DurationMinutes: source.DurationMinutes,
		IsPublic:        false,
	}
	return s.writer.Create(ctx, copyPlan, specs)
}

func (s *planService) AddItem(ctx context.Context, actorID, planID string, spec domain.PlanItemSpec) (*domain.PlanItemDetail, error) {
	if err := validationError(validateItemSpec("", spec)); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actorID, planID, access.OpCreateChild); err != nil {
		return nil, err
	}
	return s.writer.AddItem(ctx, planID, spec)
}

func (s *planService) UpdateItem(ctx context.Context, actorID, planID, itemID string, patch domain.PlanItemPatch) (*domain.PlanItemDetail, error) {
	details := patch.Validate()
	if patch.IsEmpty() {
		details = append(details, "body: at least one field must be provided")
	}
	if err := validationError(details); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actorID, planID, access.OpUpdate); err != nil {
		return nil, err
	}
	return s.writer.UpdateItem(ctx, planID, itemID, patch)
}

func (s *planService) RemoveItem(ctx context.Context, actorID, planID, itemID string) error {
	if _, err := s.authorize(ctx, actorID, planID, access.OpDelete); err != nil {
		return err
	}
	return s.writer.RemoveItem(ctx, planID, itemID)
}
