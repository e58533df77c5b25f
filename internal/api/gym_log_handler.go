package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
)

type GymLogHandler struct {
	gymLogService service.GymLogService
}

func NewGymLogHandler(gymLogService service.GymLogService) *GymLogHandler {
	return &GymLogHandler{gymLogService: gymLogService}
}

type CreateGymLogRequest struct {
	ExerciseName string     `json:"exercise_name" binding:"required,max=200"`
	Sets         int        `json:"sets" binding:"required,gt=0,max=2147483647"`
	Reps         int        `json:"reps" binding:"required,gt=0,max=2147483647"`
	Weight       float64    `json:"weight" binding:"gte=0"`
	Notes        *string    `json:"notes"`
	PerformedAt  *time.Time `json:"performed_at"`
}

// UpdateGymLogRequest is a partial edit; "notes": null clears the notes.
type UpdateGymLogRequest struct {
	ExerciseName domain.Optional[string]    `json:"exercise_name"`
	Sets         domain.Optional[int]       `json:"sets"`
	Reps         domain.Optional[int]       `json:"reps"`
	Weight       domain.Optional[float64]   `json:"weight"`
	Notes        domain.Optional[string]    `json:"notes"`
	PerformedAt  domain.Optional[time.Time] `json:"performed_at"`
}

type ListGymLogsQuery struct {
	PageQuery
	Search string `form:"search"`
	From   string `form:"from"` // RFC 3339 or YYYY-MM-DD
	To     string `form:"to"`
}

type GymLogResponse struct {
	ID           string    `json:"id"`
	ExerciseName string    `json:"exercise_name"`
	Sets         int       `json:"sets"`
	Reps         int       `json:"reps"`
	Weight       float64   `json:"weight"`
	Notes        *string   `json:"notes"`
	PerformedAt  time.Time `json:"performed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func MapGymLogToResponse(l *domain.GymLog) GymLogResponse {
	return GymLogResponse{
		ID:           l.ID,
		ExerciseName: l.ExerciseName,
		Sets:         l.Sets,
		Reps:         l.Reps,
		Weight:       l.Weight,
		Notes:        l.Notes,
		PerformedAt:  l.PerformedAt,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// CreateLog godoc
// @Summary Record a performed exercise
// @Tags Gym Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body CreateGymLogRequest true "Log entry"
// @Success 201 {object} Envelope{data=GymLogResponse}
// @Failure 400 {object} Envelope "Invalid input"
// @Failure 401 {object} Envelope "Unauthorized"
// @Router /logs [post]
func (h *GymLogHandler) CreateLog(c *gin.Context) {
	var req CreateGymLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	log, err := h.gymLogService.CreateLog(c.Request.Context(), actorID(c), service.CreateGymLogInput{
		ExerciseName: req.ExerciseName,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Notes:        req.Notes,
		PerformedAt:  req.PerformedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Log entry created", MapGymLogToResponse(log))
}

// ListLogs godoc
// @Summary List the caller's gym log, newest first
// @Tags Gym Logs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive exercise name search"
// @Param from query string false "Earliest performed_at (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Latest performed_at (RFC 3339 or YYYY-MM-DD, inclusive)"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} Envelope{data=ListResponse[GymLogResponse]}
// @Failure 400 {object} Envelope "Invalid filter"
// @Router /logs [get]
func (h *GymLogHandler) ListLogs(c *gin.Context) {
	var q ListGymLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindingError(c, err)
		return
	}
	from, ok := parseDay(q.From, false)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Validation failed", "from: must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return
	}
	to, ok := parseDay(q.To, true)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Validation failed", "to: must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		return
	}

	page, err := h.gymLogService.ListLogs(c.Request.Context(), actorID(c), service.GymLogQuery{
		Search: q.Search,
		From:   from,
		To:     to,
		Page:   q.request(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", newListResponse(page, MapGymLogToResponse))
}

// GetLog godoc
// @Summary Get one of the caller's log entries
// @Tags Gym Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Success 200 {object} Envelope{data=GymLogResponse}
// @Failure 403 {object} Envelope "Entry belongs to another account"
// @Failure 404 {object} Envelope "Entry not found"
// @Router /logs/{id} [get]
func (h *GymLogHandler) GetLog(c *gin.Context) {
	log, err := h.gymLogService.GetLog(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", MapGymLogToResponse(log))
}

// UpdateLog godoc
// @Summary Update a log entry
// @Tags Gym Logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Param log body UpdateGymLogRequest true "Fields to change"
// @Success 200 {object} Envelope{data=GymLogResponse}
// @Failure 400 {object} Envelope "Invalid input"
// @Failure 403 {object} Envelope "Entry belongs to another account"
// @Failure 404 {object} Envelope "Entry not found"
// @Router /logs/{id} [patch]
func (h *GymLogHandler) UpdateLog(c *gin.Context) {
	var req UpdateGymLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	log, err := h.gymLogService.UpdateLog(c.Request.Context(), actorID(c), c.Param("id"), domain.GymLogPatch{
		ExerciseName: req.ExerciseName,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Notes:        req.Notes,
		PerformedAt:  req.PerformedAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Log entry updated", MapGymLogToResponse(log))
}

// DeleteLog godoc
// @Summary Delete a log entry
// @Tags Gym Logs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Log ID"
// @Success 200 {object} Envelope
// @Failure 403 {object} Envelope "Entry belongs to another account"
// @Failure 404 {object} Envelope "Entry not found"
// @Router /logs/{id} [delete]
func (h *GymLogHandler) DeleteLog(c *gin.Context) {
	if err := h.gymLogService.DeleteLog(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Log entry deleted", nil)
}
