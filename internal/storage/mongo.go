package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valter-silva-au/taskdesk/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoCollection     = "tasks"
	mongoConnectTimeout = 10 * time.Second
)

// mongoTask is the stored document. Ids are ObjectIDs; their hex form is the
// public task id.
type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d mongoTask) toModel() models.Task {
	return models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type mongoTaskStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoTaskStore connects to the MongoDB deployment at uri and stores
// tasks in the "tasks" collection of database.
func NewMongoTaskStore(ctx context.Context, uri, database string) (TaskStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("opening mongo store: store.mongo_uri must be set")
	}
	if database == "" {
		database = "taskdesk"
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("opening mongo store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("opening mongo store: ping: %w", err)
	}

	return &mongoTaskStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// objectID parses a public id. A malformed id cannot name a stored task.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (s *mongoTaskStore) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	ts := now()
	doc := mongoTask{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	created := doc.toModel()
	return &created, nil
}

func (s *mongoTaskStore) List(ctx context.Context) ([]models.Task, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := make([]models.Task, 0)
	for cur.Next(ctx) {
		var doc mongoTask
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (s *mongoTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var doc mongoTask
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	t := doc.toModel()
	return &t, nil
}

func (s *mongoTaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	var doc mongoTask
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	t := doc.toModel()
	return &t, nil
}

func (s *mongoTaskStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoTaskStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
