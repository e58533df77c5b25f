package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
)

// PlanHandler serves workout plans and their exercise entries.
type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

// PlanItemRequest is one exercise entry of a plan. Without order_index the entry's
// position in the list (1-based) is used.
type PlanItemRequest struct {
	ExerciseID  string   `json:"exercise_id" binding:"required"`
	Sets        int      `json:"sets" binding:"required,gt=0,max=2147483647"`
	Reps        int      `json:"reps" binding:"required,gt=0,max=2147483647"`
	Weight      *float64 `json:"weight" binding:"omitempty,gte=0"`
	RestSeconds *int     `json:"rest_seconds" binding:"omitempty,gte=0,max=2147483647"`
	Notes       *string  `json:"notes"`
	OrderIndex  *int     `json:"order_index" binding:"omitempty,min=1,max=2147483647"`
}

func (r PlanItemRequest) spec() domain.PlanItemSpec {
	return domain.PlanItemSpec{
		ExerciseID:  r.ExerciseID,
		Sets:        r.Sets,
		Reps:        r.Reps,
		Weight:      r.Weight,
		RestSeconds: r.RestSeconds,
		Notes:       r.Notes,
		OrderIndex:  r.OrderIndex,
	}
}

func specs(items []PlanItemRequest) []domain.PlanItemSpec {
	out := make([]domain.PlanItemSpec, len(items))
	for i, it := range items {
		out[i] = it.spec()
	}
	return out
}

type CreatePlanRequest struct {
	Name            string            `json:"name" binding:"required,max=200"`
	Description     string            `json:"description"`
	MuscleTypes     []string          `json:"muscle_types" binding:"required,min=1,dive,body_part"`
	Difficulty      string            `json:"difficulty" binding:"omitempty,difficulty"`
	DurationMinutes *int              `json:"duration_minutes" binding:"omitempty,gt=0,max=2147483647"`
	IsPublic        bool              `json:"is_public"`
	Exercises       []PlanItemRequest `json:"exercises" binding:"required,min=1,dive"`
}

// UpdatePlanRequest changes the supplied header fields. A non-null exercises list replaces
// every entry of the plan and must not be empty.
type UpdatePlanRequest struct {
	Name            domain.Optional[string]            `json:"name"`
	Description     domain.Optional[string]            `json:"description"`
	MuscleTypes     domain.Optional[[]domain.BodyPart] `json:"muscle_types"`
	Difficulty      domain.Optional[domain.Difficulty] `json:"difficulty"`
	DurationMinutes domain.Optional[int]               `json:"duration_minutes"`
	IsPublic        domain.Optional[bool]              `json:"is_public"`
	Exercises       *[]PlanItemRequest                 `json:"exercises" binding:"omitempty,min=1,dive"`
	// Revision, when sent, must equal the plan's current revision.
	Revision *int `json:"revision" binding:"omitempty,min=1"`
}

type UpdatePlanItemRequest struct {
	Sets        domain.Optional[int]     `json:"sets"`
	Reps        domain.Optional[int]     `json:"reps"`
	Weight      domain.Optional[float64] `json:"weight"`
	RestSeconds domain.Optional[int]     `json:"rest_seconds"`
	Notes       domain.Optional[string]  `json:"notes"`
	OrderIndex  domain.Optional[int]     `json:"order_index"`
}

type ListPlansQuery struct {
	PageQuery
	Search      string `form:"search"`
	MuscleTypes string `form:"muscle_types"` // comma separated, all required
	Difficulty  string `form:"difficulty" binding:"omitempty,difficulty"`
	ExerciseID  string `form:"exercise_id"`
	Mine        bool   `form:"mine"`
}

type PlanExerciseResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BodyPart    string   `json:"body_part"`
	Type        string   `json:"type"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Equipment   []string `json:"equipment"`
}

type PlanItemResponse struct {
	ID          string                `json:"id"`
	ExerciseID  string                `json:"exercise_id"`
	Sets        int                   `json:"sets"`
	Reps        int                   `json:"reps"`
	Weight      *float64              `json:"weight"`
	RestSeconds *int                  `json:"rest_seconds"`
	Notes       *string               `json:"notes"`
	OrderIndex  int                   `json:"order_index"`
	Exercise    *PlanExerciseResponse `json:"exercise,omitempty"`
}

type PlanResponse struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	MuscleTypes     []domain.BodyPart  `json:"muscle_types"`
	Difficulty      string             `json:"difficulty,omitempty"`
	DurationMinutes *int               `json:"duration_minutes"`
	IsPublic        bool               `json:"is_public"`
	Revision        int                `json:"revision"`
	Exercises       []PlanItemResponse `json:"exercises,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// MapPlanToResponse maps a plan header; list endpoints return headers only.
func MapPlanToResponse(p *domain.WorkoutPlan) PlanResponse {
	return PlanResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Name:            p.Name,
		Description:     p.Description,
		MuscleTypes:     p.MuscleTypes,
		Difficulty:      string(p.Difficulty),
		DurationMinutes: p.DurationMinutes,
		IsPublic:        p.IsPublic,
		Revision:        p.Revision,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func MapPlanDetailToResponse(d *domain.PlanDetail) PlanResponse {
	resp := MapPlanToResponse(&d.WorkoutPlan)
	resp.Exercises = make([]PlanItemResponse, len(d.Items))
	for i := range d.Items {
		resp.Exercises[i] = MapPlanItemToResponse(&d.Items[i])
	}
	return resp
}

func MapPlanItemToResponse(it *domain.PlanItemDetail) PlanItemResponse {
	resp := PlanItemResponse{
		ID:          it.ID,
		ExerciseID:  it.ExerciseID,
		Sets:        it.Sets,
		Reps:        it.Reps,
		Weight:      it.Weight,
		RestSeconds: it.RestSeconds,
		Notes:       it.Notes,
		OrderIndex:  it.OrderIndex,
	}
	if e := it.Exercise; e != nil {
		equipment := e.Equipment
		if equipment == nil {
			equipment = []string{}
		}
		resp.Exercise = &PlanExerciseResponse{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			BodyPart:    string(e.BodyPart),
			Type:        string(e.Type),
			Difficulty:  string(e.Difficulty),
			Equipment:   equipment,
		}
	}
	return resp
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a workout plan
// @Description Creates the plan and all of its exercise entries. If any entry cannot be
// @Description stored nothing is kept and the request fails.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan with at least one exercise"
// @Success 201 {object} Envelope{data=PlanResponse}
// @Failure 400 {object} Envelope "Invalid input"
// @Failure 401 {object} Envelope "Unauthorized"
// @Failure 404 {object} Envelope "Referenced exercise not found"
// @Failure 500 {object} Envelope "Plan could not be saved"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	muscles := make([]domain.BodyPart, len(req.MuscleTypes))
	for i, m := range req.MuscleTypes {
		muscles[i] = domain.BodyPart(m)
	}
	plan, err := h.planService.CreatePlan(c.Request.Context(), actorID(c), service.CreatePlanInput{
		Name:            req.Name,
		Description:     req.Description,
		MuscleTypes:     muscles,
		Difficulty:      domain.Difficulty(req.Difficulty),
		DurationMinutes: req.DurationMinutes,
		IsPublic:        req.IsPublic,
		Items:           specs(req.Exercises),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Workout plan created", MapPlanDetailToResponse(plan))
}

// ListPlans godoc
// @Summary List workout plans
// @Description Public plans plus the caller's own. mine=true limits to the caller's plans.
// @Tags Plans
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param muscle_types query string false "Comma separated body parts, all required"
// @Param difficulty query string false "Difficulty"
// @Param exercise_id query string false "Only plans containing this exercise"
// @Param mine query bool false "Only the caller's plans (requires auth)"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} Envelope{data=ListResponse[PlanResponse]}
// @Failure 400 {object} Envelope "Invalid filter"
// @Failure 401 {object} Envelope "mine=true without a token"
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var q ListPlansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}

	page, err := h.planService.ListPlans(c.Request.Context(), actorID(c), service.PlanQuery{
		Search:      q.Search,
		MuscleTypes: bodyParts(q.MuscleTypes),
		Difficulty:  domain.Difficulty(q.Difficulty),
		ExerciseID:  q.ExerciseID,
		Mine:        q.Mine,
		Page:        q.request(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", newListResponse(page, MapPlanToResponse))
}

// GetPlan godoc
// @Summary Get a workout plan with its exercises
// @Description Private plans are only visible to their owner; others get 404.
// @Tags Plans
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} Envelope{data=PlanResponse}
// @Failure 404 {object} Envelope "Plan not found"
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", MapPlanDetailToResponse(plan))
}

// UpdatePlan godoc
// @Summary Update a workout plan
// @Description Changes the supplied fields. When exercises is sent the whole list is replaced.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param plan body UpdatePlanRequest true "Fields to change"
// @Success 200 {object} Envelope{data=PlanResponse}
// @Failure 400 {object} Envelope "Invalid input or stale revision"
// @Failure 403 {object} Envelope "Not the plan owner"
// @Failure 404 {object} Envelope "Plan not found"
// @Failure 500 {object} Envelope "Exercises could not be replaced"
// @Router /plans/{id} [patch]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	upd := service.PlanUpdate{
		Patch: domain.PlanPatch{
			Name:            req.Name,
			Description:     req.Description,
			MuscleTypes:     req.MuscleTypes,
			Difficulty:      req.Difficulty,
			DurationMinutes: req.DurationMinutes,
			IsPublic:        req.IsPublic,
		},
		Revision: req.Revision,
	}
	if req.Exercises != nil {
		items := specs(*req.Exercises)
		upd.Items = &items
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), actorID(c), c.Param("id"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Workout plan updated", MapPlanDetailToResponse(plan))
}

// DeletePlan godoc
// @Summary Delete a workout plan and its exercises
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope "Not the plan owner"
// @Failure 404 {object} Envelope "Plan not found"
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeletePlan(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Workout plan deleted", nil)
}

// DuplicatePlan godoc
// @Summary Copy a readable plan into a new private plan owned by the caller
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 201 {object} Envelope{data=PlanResponse}
// @Failure 404 {object} Envelope "Plan not found"
// @Router /plans/{id}/duplicate [post]
func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	plan, err := h.planService.DuplicatePlan(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Workout plan copied", MapPlanDetailToResponse(plan))
}

// AddPlanExercise godoc
// @Summary Add an exercise to a plan
// @Description Without order_index the entry goes after the current last one.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param exercise body PlanItemRequest true "Exercise entry"
// @Success 201 {object} Envelope{data=PlanItemResponse}
// @Failure 400 {object} Envelope "Invalid input or exercise already in plan"
// @Failure 403 {object} Envelope "Not the plan owner"
// @Failure 404 {object} Envelope "Plan or exercise not found"
// @Router /plans/{id}/exercises [post]
func (h *PlanHandler) AddPlanExercise(c *gin.Context) {
	var req PlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	item, err := h.planService.AddItem(c.Request.Context(), actorID(c), c.Param("id"), req.spec())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Exercise added to plan", MapPlanItemToResponse(item))
}

// UpdatePlanExercise godoc
// @Summary Update one exercise entry of a plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param itemId path string true "Plan exercise entry ID"
// @Param exercise body UpdatePlanItemRequest true "Fields to change"
// @Success 200 {object} Envelope{data=PlanItemResponse}
// @Failure 400 {object} Envelope "Invalid input"
// @Failure 403 {object} Envelope "Not the plan owner"
// @Failure 404 {object} Envelope "Plan or entry not found"
// @Router /plans/{id}/exercises/{itemId} [patch]
func (h *PlanHandler) UpdatePlanExercise(c *gin.Context) {
	var req UpdatePlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	item, err := h.planService.UpdateItem(c.Request.Context(), actorID(c), c.Param("id"), c.Param("itemId"), domain.PlanItemPatch{
		Sets:        req.Sets,
		Reps:        req.Reps,
		Weight:      req.Weight,
		RestSeconds: req.RestSeconds,
		Notes:       req.Notes,
		OrderIndex:  req.OrderIndex,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Plan exercise updated", MapPlanItemToResponse(item))
}

// RemovePlanExercise godoc
// @Summary Remove one exercise entry from a plan
// @Description Remaining entries keep their order_index.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Param itemId path string true "Plan exercise entry ID"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope "Not the plan owner"
// @Failure 404 {object} Envelope "Plan or entry not found"
// @Router /plans/{id}/exercises/{itemId} [delete]
func (h *PlanHandler) RemovePlanExercise(c *gin.Context) {
	if err := h.planService.RemoveItem(c.Request.Context(), actorID(c), c.Param("id"), c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Exercise removed from plan", nil)
}
