package domain

import "time"

// ActivityAction identifies what happened to a task.
type ActivityAction string

const (
	ActivityCreated   ActivityAction = "created"
	ActivityUpdated   ActivityAction = "updated"
	ActivityCompleted ActivityAction = "completed"
	ActivityReopened  ActivityAction = "reopened"
	ActivityDeleted   ActivityAction = "deleted"
)

// ActivityEntry records one task mutation for the owner's activity feed.
// Entries are written asynchronously and are best-effort: losing one never
// fails the mutation that produced it.
type ActivityEntry struct {
	ID        string         `json:"id" bson:"_id,omitempty"`
	Owner     string         `json:"owner" bson:"owner"`
	TaskID    string         `json:"task_id" bson:"task_id"`
	Action    ActivityAction `json:"action" bson:"action"`
	Title     string         `json:"title" bson:"title"`
	Timestamp time.Time      `json:"timestamp" bson:"timestamp"`
}
