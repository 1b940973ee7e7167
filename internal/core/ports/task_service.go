package ports

import (
	"context"
	"time"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

// CreateTaskInput carries the client-supplied fields for a new task. Any
// owner value sent by the client is dropped before this struct is built; the
// service stamps the authenticated identity unconditionally.
type CreateTaskInput struct {
	Title       string
	Description string
	Deadline    *time.Time
	Priority    domain.Priority // empty = medium
	Category    string
}

// ListTasksQuery carries the raw optional query parameters for GET /tasks.
// SortBy is "field" or "field:direction"; parsing and allow-listing happen in
// the service.
type ListTasksQuery struct {
	Priority  string
	Completed *bool
	SortBy    string
}

// TaskService defines the owner-scoped use-case operations on tasks.
type TaskService interface {
	Create(ctx context.Context, owner string, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, owner string, query ListTasksQuery) ([]domain.Task, error)
	Update(ctx context.Context, owner, id string, update TaskUpdate) (*domain.Task, error)
	ToggleComplete(ctx context.Context, owner, id string) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
}
