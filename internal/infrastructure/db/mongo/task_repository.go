package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

const tasksCollection = "tasks"

// TaskRepository implements ports.TaskRepository on MongoDB. Every filter it
// builds includes the owner, so a task ID under a different owner behaves
// exactly like a nonexistent one.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       string             `bson:"owner"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Deadline    *time.Time         `bson:"deadline,omitempty"`
	Priority    domain.Priority    `bson:"priority"`
	Completed   bool               `bson:"completed"`
	Category    string             `bson:"category,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (mt mongoTask) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          mt.ID.Hex(),
		Owner:       mt.Owner,
		Title:       mt.Title,
		Description: mt.Description,
		Priority:    mt.Priority,
		Completed:   mt.Completed,
		Category:    mt.Category,
		CreatedAt:   mt.CreatedAt.UTC(),
		UpdatedAt:   mt.UpdatedAt.UTC(),
	}
	if mt.Deadline != nil {
		d := mt.Deadline.UTC()
		t.Deadline = &d
	}
	return t
}

// ownedFilter constrains a lookup by both document ID and owner. An
// unparseable hex ID short-circuits to not-found instead of erroring.
func ownedFilter(owner, id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}
	return bson.M{"_id": oid, "owner": owner}, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoTask{
		Owner:       task.Owner,
		Title:       task.Title,
		Description: task.Description,
		Deadline:    task.Deadline,
		Priority:    task.Priority,
		Completed:   task.Completed,
		Category:    task.Category,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// List returns the owner's tasks matching the filter. The sort always ends
// with an ascending _id tiebreaker so the ordering is deterministic for a
// fixed data set, including when no sort field was requested.
func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"owner": filter.Owner}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}

	sort := bson.D{}
	if filter.SortField != "" {
		dir := 1
		if !filter.SortAsc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: filter.SortField, Value: dir})
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoTask
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, *doc.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, owner, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(owner, id)
	if err != nil {
		return nil, err
	}

	var doc mongoTask
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies the set fields as whole-value replacements in a single
// owner-scoped findOneAndUpdate. Concurrent updates are last-write-wins at
// the field level; there is no version check.
func (r *TaskRepository) Update(ctx context.Context, owner, id string, update ports.TaskUpdate, updatedAt time.Time) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(owner, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": updatedAt}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Deadline != nil {
		set["deadline"] = *update.Deadline
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}
	if update.Completed != nil {
		set["completed"] = *update.Completed
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc mongoTask
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the owned task and returns the deleted document.
func (r *TaskRepository) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := ownedFilter(owner, id)
	if err != nil {
		return nil, err
	}

	var doc mongoTask
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("delete task: %w", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the indexes backing owner-scoped lookups and the
// filter/sort columns.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "completed", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "deadline", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
