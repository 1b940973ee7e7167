package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmaster/taskmaster-api/internal/api/metrics"
	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

const feedLimit = 50

type activityService struct {
	repo ports.ActivityRepository
	log  zerolog.Logger
}

// NewActivityService returns an ActivityService implementation.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityService {
	return &activityService{repo: repo, log: log}
}

// Process persists a single queued activity entry.
func (s *activityService) Process(ctx context.Context, in ports.ActivityInput) error {
	start := time.Now()

	entry := &domain.ActivityEntry{
		Owner:     in.Owner,
		TaskID:    in.TaskID,
		Action:    in.Action,
		Title:     in.Title,
		Timestamp: in.Timestamp,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		metrics.ActivityProcessingDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("process activity: %w", err)
	}

	metrics.ActivityProcessingDuration.WithLabelValues(string(in.Action)).Observe(time.Since(start).Seconds())
	s.log.Debug().
		Str("owner", in.Owner).
		Str("task_id", in.TaskID).
		Str("action", string(in.Action)).
		Msg("activity recorded")

	return nil
}

// Feed returns the owner's most recent activity entries, newest first.
func (s *activityService) Feed(ctx context.Context, owner string) ([]domain.ActivityEntry, error) {
	if owner == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, owner, feedLimit)
}
