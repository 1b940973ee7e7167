package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

const activityCollection = "activity"

// ActivityRepository implements ports.ActivityRepository on MongoDB.
type ActivityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{coll: db.Collection(activityCollection)}
}

type mongoActivity struct {
	ID        primitive.ObjectID    `bson:"_id,omitempty"`
	Owner     string                `bson:"owner"`
	TaskID    string                `bson:"task_id"`
	Action    domain.ActivityAction `bson:"action"`
	Title     string                `bson:"title"`
	Timestamp time.Time             `bson:"timestamp"`
}

func (r *ActivityRepository) Insert(ctx context.Context, entry *domain.ActivityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoActivity{
		Owner:     entry.Owner,
		TaskID:    entry.TaskID,
		Action:    entry.Action,
		Title:     entry.Title,
		Timestamp: entry.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's newest entries first, capped at limit.
func (r *ActivityRepository) ListByOwner(ctx context.Context, owner string, limit int64) ([]domain.ActivityEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoActivity
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	entries := make([]domain.ActivityEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, domain.ActivityEntry{
			ID:        doc.ID.Hex(),
			Owner:     doc.Owner,
			TaskID:    doc.TaskID,
			Action:    doc.Action,
			Title:     doc.Title,
			Timestamp: doc.Timestamp.UTC(),
		})
	}
	return entries, nil
}

// EnsureIndexes creates the feed index.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}
