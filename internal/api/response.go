package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"alcyxob/gym-tracker/internal/service"
)

// Envelope is the body of every response.
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListResponse is the data payload of list endpoints.
type ListResponse[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func newListResponse[S, T any](page *service.PageResult[S], mapItem func(*S) T) ListResponse[T] {
	items := make([]T, len(page.Items))
	for i := range page.Items {
		items[i] = mapItem(&page.Items[i])
	}
	return ListResponse[T]{
		Items: items,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	}
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string, details ...string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Message: message, Details: details})
}

// statusFor picks the HTTP status for a service error. Partial writes are checked first
// because they also match the cause of the first failed item.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPartialWrite):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrMediaStorageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError turns a service error into the envelope. Messages of unclassified errors
// are logged and never sent to the client.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)

	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrPartialWrite):
		loggerFrom(c).Error("aggregate write failed", slog.String("error", err.Error()))
		abortWithError(c, code, partialWriteMessage(err))
	case errors.As(err, &vErr):
		abortWithError(c, code, "Validation failed", vErr.Details...)
	case code == http.StatusInternalServerError:
		loggerFrom(c).Error("request failed", slog.String("error", err.Error()))
		abortWithError(c, code, "An unexpected error occurred")
	default:
		abortWithError(c, code, err.Error())
	}
}

// partialWriteMessage tells the client what survived a failed plan write.
func partialWriteMessage(err error) string {
	var aggErr *service.AggregateWriteError
	if !errors.As(err, &aggErr) {
		return "Failed to save workout plan"
	}
	switch {
	case aggErr.Op == "create" && aggErr.RolledBack:
		return "Failed to save workout plan; no changes were kept"
	case aggErr.Op == "create":
		return "Failed to save workout plan; an incomplete plan may remain"
	case !aggErr.RolledBack:
		return "Failed to save workout plan exercises; the exercise list may be incomplete"
	case aggErr.HeaderKept:
		return "Failed to save workout plan exercises; plan details were updated and the previous exercises kept"
	default:
		return "Failed to save workout plan; no changes were kept"
	}
}

// bindingError reports a failed ShouldBind* call as a validation failure.
func bindingError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &fieldErrs):
		details := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, fieldMessage(fe))
		}
		abortWithError(c, http.StatusBadRequest, "Validation failed", details...)
	case errors.As(err, &typeErr):
		abortWithError(c, http.StatusBadRequest, "Validation failed",
			fmt.Sprintf("%s: must be of type %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		abortWithError(c, http.StatusBadRequest, "Request body must be valid JSON")
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid request", err.Error())
	}
}
