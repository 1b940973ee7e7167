package ports

import (
	"context"
	"time"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

// ActivityInput is one task mutation headed for the activity feed.
type ActivityInput struct {
	Owner     string
	TaskID    string
	Action    domain.ActivityAction
	Title     string
	Timestamp time.Time
}

// ActivityRecorder accepts activity entries for asynchronous persistence.
// Record must never block the mutation path for long and must never fail it.
type ActivityRecorder interface {
	Record(entry ActivityInput)
}

// ActivityRepository defines persistence for the activity feed.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityEntry) error
	ListByOwner(ctx context.Context, owner string, limit int64) ([]domain.ActivityEntry, error)
}

// ActivityService persists queued activity entries and serves the feed.
type ActivityService interface {
	Process(ctx context.Context, entry ActivityInput) error
	Feed(ctx context.Context, owner string) ([]domain.ActivityEntry, error)
}
