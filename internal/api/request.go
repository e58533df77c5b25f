package api

import (
	"strings"
	"time"

	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/service"
)

// PageQuery is embedded in the query structs of list endpoints.
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=1000000"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (q PageQuery) request() service.PageRequest {
	return service.PageRequest{Page: q.Page, Limit: q.Limit}
}

// splitList reads a comma separated query value; blanks are dropped.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func bodyParts(raw string) []domain.BodyPart {
	parts := splitList(raw)
	if len(parts) == 0 {
		return nil
	}
	out := make([]domain.BodyPart, len(parts))
	for i, p := range parts {
		out[i] = domain.BodyPart(p)
	}
	return out
}

// parseDay accepts RFC 3339 timestamps or plain dates. A plain date used as an upper bound
// covers the whole day.
func parseDay(raw string, endOfDay bool) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
