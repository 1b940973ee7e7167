package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmaster/taskmaster-api/internal/api/metrics"
	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

// sortableFields is the allow-list for the sortBy query parameter. Anything
// else falls back to the store-default ordering instead of erroring.
var sortableFields = map[string]string{
	"deadline":   "deadline",
	"priority":   "priority",
	"title":      "title",
	"completed":  "completed",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

// TaskService implements the owner-scoped task use cases.
type TaskService struct {
	repo     ports.TaskRepository
	activity ports.ActivityRecorder // nil = feed disabled
	logger   zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, activity ports.ActivityRecorder, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, activity: activity, logger: logger}
}

// Create persists a new task. The owner always comes from the authenticated
// identity; nothing the client sends can change it.
func (s *TaskService) Create(ctx context.Context, owner string, input ports.CreateTaskInput) (*domain.Task, error) {
	if owner == "" || strings.TrimSpace(input.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Owner:       owner,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Deadline:    input.Deadline,
		Priority:    priority,
		Completed:   false,
		Category:    input.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner", owner).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(created.Priority)).Inc()
	s.record(created, domain.ActivityCreated)

	return created, nil
}

// List returns the caller's tasks intersected with the optional filters and
// ordered per sortBy. Filters compose with AND; an absent filter places no
// constraint on its field.
func (s *TaskService) List(ctx context.Context, owner string, query ports.ListTasksQuery) ([]domain.Task, error) {
	if owner == "" {
		return nil, domain.ErrInvalidInput
	}

	filter := ports.TaskFilter{
		Owner:     owner,
		Completed: query.Completed,
	}
	if query.Priority != "" {
		filter.Priority = domain.Priority(query.Priority)
	}
	filter.SortField, filter.SortAsc = parseSortBy(query.SortBy)

	return s.repo.List(ctx, filter)
}

// Update applies the allow-listed partial fields as full per-field
// replacements. The lookup is constrained by owner, so a task ID belonging to
// another user fails with the same NotFound as a nonexistent one.
func (s *TaskService) Update(ctx context.Context, owner, id string, update ports.TaskUpdate) (*domain.Task, error) {
	if owner == "" || id == "" {
		return nil, domain.ErrTaskNotFound
	}
	if update.Empty() {
		return nil, domain.ErrInvalidInput
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if update.Priority != nil && !update.Priority.Valid() {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.repo.Update(ctx, owner, id, update, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	action := domain.ActivityUpdated
	if update.Completed != nil {
		if *update.Completed {
			action = domain.ActivityCompleted
		} else {
			action = domain.ActivityReopened
		}
	}
	s.record(updated, action)

	return updated, nil
}

// ToggleComplete flips the completed flag, a convenience specialization of
// Update.
func (s *TaskService) ToggleComplete(ctx context.Context, owner, id string) (*domain.Task, error) {
	current, err := s.repo.FindByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	next := !current.Completed
	return s.Update(ctx, owner, id, ports.TaskUpdate{Completed: &next})
}

// Delete removes the task and returns the deleted record, under the same
// owner-scoped NotFound policy as Update.
func (s *TaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	if owner == "" || id == "" {
		return nil, domain.ErrTaskNotFound
	}

	deleted, err := s.repo.Delete(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	s.record(deleted, domain.ActivityDeleted)
	return deleted, nil
}

func (s *TaskService) record(task *domain.Task, action domain.ActivityAction) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ports.ActivityInput{
		Owner:     task.Owner,
		TaskID:    task.ID,
		Action:    action,
		Title:     task.Title,
		Timestamp: time.Now().UTC(),
	})
}

// parseSortBy splits "field" or "field:direction" into a store field name and
// direction. Unknown fields and directions never error: the field falls back
// to the stable default and the direction to ascending.
func parseSortBy(sortBy string) (field string, asc bool) {
	if sortBy == "" {
		return "", true
	}
	parts := strings.SplitN(sortBy, ":", 2)
	mapped, ok := sortableFields[parts[0]]
	if !ok {
		return "", true
	}
	asc = true
	if len(parts) == 2 && parts[1] == "desc" {
		asc = false
	}
	return mapped, asc
}
