package handler

import (
	"fmt"
	"strings"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// dateTime accepts both RFC 3339 timestamps and plain "2006-01-02" dates so
// clients can send a bare deadline date.
type dateTime struct {
	time.Time
}

func (d *dateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// --- Request types ---

type createTaskRequest struct {
	Title       string    `json:"title"       validate:"required"`
	Description string    `json:"description"`
	Deadline    *dateTime `json:"deadline"`
	Priority    string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Category    string    `json:"category"`
}

// updateTaskRequest is decoded with DisallowUnknownFields: a PATCH naming any
// field outside this allow-list (owner, id, timestamps, typos) is rejected
// with 400 instead of silently ignored.
type updateTaskRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Deadline    *dateTime `json:"deadline"`
	Priority    *string   `json:"priority"`
	Completed   *bool     `json:"completed"`
	Category    *string   `json:"category"`
}
