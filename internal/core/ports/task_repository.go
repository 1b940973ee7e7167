package ports

import (
	"context"
	"time"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

// TaskFilter carries the validated query for listing tasks. Owner is always
// set by the service layer; the repository never lists across owners.
type TaskFilter struct {
	Owner     string
	Priority  domain.Priority // empty = no constraint
	Completed *bool           // nil = no constraint
	SortField string          // validated field name; empty = store-default order
	SortAsc   bool
}

// TaskUpdate holds the allow-listed fields a PATCH may replace. Nil pointers
// mean "leave the stored value alone". Owner, ID, and timestamps are not
// representable here and therefore can never be written from client input.
type TaskUpdate struct {
	Title       *string
	Description *string
	Deadline    *time.Time
	Priority    *domain.Priority
	Completed   *bool
	Category    *string
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Deadline == nil &&
		u.Priority == nil && u.Completed == nil && u.Category == nil
}

// TaskRepository defines persistence for tasks. Update and Delete constrain
// the lookup by both task ID and owner and return domain.ErrTaskNotFound when
// no owned document matches, so non-owners cannot distinguish "exists under
// someone else" from "does not exist".
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	FindByID(ctx context.Context, owner, id string) (*domain.Task, error)
	Update(ctx context.Context, owner, id string, update TaskUpdate, updatedAt time.Time) (*domain.Task, error)
	Delete(ctx context.Context, owner, id string) (*domain.Task, error)
}
