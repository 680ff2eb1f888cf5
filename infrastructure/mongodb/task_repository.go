package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"task-api/domain/models"
	"task-api/domain/repositories"
)

type taskDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description *string   `bson:"description"`
	Date        string    `bson:"date"`
	Checked     bool      `bson:"checked"`
	OwnerID     string    `bson:"owner_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toTaskDocument(t *models.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date.Format(models.DateLayout),
		Checked:     t.Checked,
		OwnerID:     t.OwnerID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toModel() (*models.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(models.DateLayout, d.Date)
	if err != nil {
		return nil, err
	}
	return &models.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Date:        date,
		Checked:     d.Checked,
		OwnerID:     ownerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

type TaskRepository struct {
	tasks *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) repositories.TaskRepository {
	return &TaskRepository{tasks: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.tasks.InsertOne(ctx, toTaskDocument(task))
	return translate(err)
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var doc taskDocument
	if err := r.tasks.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel()
}

func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.find(ctx, bson.M{})
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID.String()})
}

func (r *TaskRepository) find(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": task.ID.String(), "owner_id": task.OwnerID.String()},
		bson.M{"$set": bson.M{
			"title":       task.Title,
			"description": task.Description,
			"date":        task.Date.Format(models.DateLayout),
			"checked":     task.Checked,
			"updated_at":  task.UpdatedAt,
		}},
	)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id.String(), "owner_id": ownerID.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result, err := r.tasks.DeleteMany(ctx, bson.M{"owner_id": ownerID.String()})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
