package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateExerciseRequest defines the expected JSON for creating an exercise.
type CreateExerciseRequest struct {
	ID          string   `json:"id" binding:"required,max=64"`
	Name        string   `json:"name" binding:"required,max=200"`
	Description string   `json:"description"`
	BodyPart    string   `json:"body_part" binding:"required,body_part"`
	Type        string   `json:"type" binding:"required,exercise_type"`
	Difficulty  string   `json:"difficulty" binding:"omitempty,difficulty"`
	Equipment   []string `json:"equipment" binding:"omitempty,dive,required"`
}

// UpdateExerciseRequest is a partial edit; difficulty and equipment accept null.
type UpdateExerciseRequest struct {
	Name        domain.Optional[string]              `json:"name"`
	Description domain.Optional[string]              `json:"description"`
	BodyPart    domain.Optional[domain.BodyPart]     `json:"body_part"`
	Type        domain.Optional[domain.ExerciseType] `json:"type"`
	Difficulty  domain.Optional[domain.Difficulty]   `json:"difficulty"`
	Equipment   domain.Optional[[]string]            `json:"equipment"`
}

type ListExercisesQuery struct {
	PageQuery
	Search     string `form:"search"`
	BodyPart   string `form:"body_part" binding:"omitempty,body_part"`
	Type       string `form:"type" binding:"omitempty,exercise_type"`
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
	Equipment  string `form:"equipment"` // comma separated, all required
}

type MediaUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type ConfirmMediaRequest struct {
	ObjectKey string `json:"object_key" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BodyPart    string    `json:"body_part"`
	Type        string    `json:"type"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Equipment   []string  `json:"equipment"`
	MediaURL    string    `json:"media_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MediaUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	ObjectKey string    `json:"object_key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	equipment := ex.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return ExerciseResponse{
		ID:          ex.ID,
		Name:        ex.Name,
		Description: ex.Description,
		BodyPart:    string(ex.BodyPart),
		Type:        string(ex.Type),
		Difficulty:  string(ex.Difficulty),
		Equipment:   equipment,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

func mapExerciseView(v *service.ExerciseView) ExerciseResponse {
	resp := MapExerciseToResponse(&v.Exercise)
	resp.MediaURL = v.MediaURL
	return resp
}

// --- Handler Methods ---

// CreateExercise godoc
// @Summary Add an exercise to the catalog
// @Description The id is chosen by the caller and must be unique, as must the name.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body CreateExerciseRequest true "Exercise details"
// @Success 201 {object} Envelope{data=ExerciseResponse} "Exercise created successfully"
// @Failure 400 {object} Envelope "Invalid input or duplicate id/name"
// @Failure 401 {object} Envelope "Unauthorized"
// @Failure 500 {object} Envelope "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), service.CreateExerciseInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		BodyPart:    domain.BodyPart(req.BodyPart),
		Type:        domain.ExerciseType(req.Type),
		Difficulty:  domain.Difficulty(req.Difficulty),
		Equipment:   req.Equipment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Exercise created", MapExerciseToResponse(exercise))
}

// ListExercises godoc
// @Summary List catalog exercises
// @Tags Exercises
// @Produce json
// @Param search query string false "Case-insensitive name search"
// @Param body_part query string false "Body part"
// @Param type query string false "Exercise type"
// @Param difficulty query string false "Difficulty"
// @Param equipment query string false "Comma separated equipment, all required"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} Envelope{data=ListResponse[ExerciseResponse]}
// @Failure 400 {object} Envelope "Invalid filter"
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	var q ListExercisesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}

	page, err := h.exerciseService.ListExercises(c.Request.Context(), service.ExerciseQuery{
		Search:     q.Search,
		BodyPart:   domain.BodyPart(q.BodyPart),
		Type:       domain.ExerciseType(q.Type),
		Difficulty: domain.Difficulty(q.Difficulty),
		Equipment:  splitList(q.Equipment),
		Page:       q.request(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", newListResponse(page, MapExerciseToResponse))
}

// GetExercise godoc
// @Summary Get one exercise
// @Description Includes a short-lived media_url when the exercise has demo media.
// @Tags Exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} Envelope{data=ExerciseResponse}
// @Failure 404 {object} Envelope "Exercise not found"
// @Router /exercises/{id} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	view, err := h.exerciseService.GetExercise(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", mapExerciseView(view))
}

// UpdateExercise godoc
// @Summary Update an exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param exercise body UpdateExerciseRequest true "Fields to change"
// @Success 200 {object} Envelope{data=ExerciseResponse}
// @Failure 400 {object} Envelope "Invalid input or duplicate name"
// @Failure 404 {object} Envelope "Exercise not found"
// @Router /exercises/{id} [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req UpdateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), c.Param("id"), domain.ExercisePatch{
		Name:        req.Name,
		Description: req.Description,
		BodyPart:    req.BodyPart,
		Type:        req.Type,
		Difficulty:  req.Difficulty,
		Equipment:   req.Equipment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Exercise updated", MapExerciseToResponse(exercise))
}

// RequestMediaUpload godoc
// @Summary Get a presigned URL for uploading demo media
// @Description PUT the file to upload_url, then confirm object_key.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param upload body MediaUploadRequest true "Media content type"
// @Success 200 {object} Envelope{data=MediaUploadResponse}
// @Failure 400 {object} Envelope "Unsupported content type"
// @Failure 404 {object} Envelope "Exercise not found"
// @Failure 503 {object} Envelope "Media storage not configured"
// @Router /exercises/{id}/media/upload-url [post]
func (h *ExerciseHandler) RequestMediaUpload(c *gin.Context) {
	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	upload, err := h.exerciseService.RequestMediaUpload(c.Request.Context(), c.Param("id"), req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", MediaUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// ConfirmMediaUpload godoc
// @Summary Attach uploaded demo media to an exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exercise ID"
// @Param media body ConfirmMediaRequest true "Uploaded object key"
// @Success 200 {object} Envelope{data=ExerciseResponse}
// @Failure 400 {object} Envelope "Key does not belong to the exercise"
// @Failure 404 {object} Envelope "Exercise not found"
// @Router /exercises/{id}/media [put]
func (h *ExerciseHandler) ConfirmMediaUpload(c *gin.Context) {
	var req ConfirmMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	view, err := h.exerciseService.ConfirmMediaUpload(c.Request.Context(), c.Param("id"), req.ObjectKey)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Media attached", mapExerciseView(view))
}
