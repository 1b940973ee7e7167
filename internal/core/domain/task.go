package domain

import (
	"errors"
	"time"
)

// Priority is the coarse urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidInput = errors.New("invalid input")
var ErrEmailTaken = errors.New("email already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid login credentials")
var ErrInvalidToken = errors.New("invalid token")
var ErrTooManyAttempts = errors.New("too many login attempts")

// Valid reports whether p is one of the three known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a single to-do item. Owner is set once at creation from the
// authenticated identity and is never reassigned; every read and write
// is additionally scoped by it.
type Task struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	Owner       string     `json:"owner" bson:"owner"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty" bson:"deadline,omitempty"`
	Priority    Priority   `json:"priority" bson:"priority"`
	Completed   bool       `json:"completed" bson:"completed"`
	Category    string     `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}
