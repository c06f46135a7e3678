package repo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

const TasksCollection = "tasks"

var mongoSortFields = map[model.SortField]string{
	model.SortByCreatedAt: "createdAt",
	model.SortByUpdatedAt: "updatedAt",
	model.SortByTitle:     "title",
	model.SortByPriority:  "priority",
	model.SortByStatus:    "status",
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	UserID      string             `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toModel() model.Task {
	return model.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    model.Priority(d.Priority),
		Status:      model.Status(d.Status),
		OwnerID:     d.UserID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// MongoTaskRepo stores one document per task in the tasks collection.
type MongoTaskRepo struct {
	coll *mongo.Collection
}

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{coll: db.Collection(TasksCollection)}
}

// EnsureIndexes creates the owner-prefixed indexes the list queries rely on.
func (r *MongoTaskRepo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_userId_createdAt")},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "updatedAt", Value: -1}}, Options: options.Index().SetName("idx_userId_updatedAt")},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("idx_userId_status")},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "priority", Value: 1}}, Options: options.Index().SetName("idx_userId_priority")},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_userId_status_createdAt")},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, models); err != nil {
		return unavailable("ensure indexes", err)
	}
	return nil
}

func (r *MongoTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	// Mongo keeps millisecond precision; truncate so the returned record matches a later read.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		UserID:      t.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.Task{}, unavailable("create", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTaskRepo) Get(ctx context.Context, id, ownerID string) (model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	var doc taskDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "userId": ownerID}).Decode(&doc)
	if err != nil {
		return model.Task{}, r.mapError("get", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTaskRepo) List(ctx context.Context, q model.TaskQuery) ([]model.Task, error) {
	field, ok := mongoSortFields[q.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := -1
	if q.SortOrder == model.SortAsc {
		dir = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, mongoFilter(q), opts)
	if err != nil {
		return nil, r.mapError("list", err)
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, r.mapError("list", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toModel())
	}
	return tasks, nil
}

func (r *MongoTaskRepo) Count(ctx context.Context, q model.TaskQuery) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, mongoFilter(q))
	if err != nil {
		return 0, r.mapError("count", err)
	}
	return total, nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, id, ownerID string, patch model.UpdateTaskInput) (model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Task{}, ErrorNotFound
	}

	// Pipeline update so updatedAt never moves backwards; values are $literal so a
	// title such as "$status" is not read as a field path.
	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{"updatedAt": bson.M{"$max": bson.A{"$updatedAt", now}}}
	if patch.Title != nil {
		set["title"] = bson.M{"$literal": *patch.Title}
	}
	if patch.Description != nil {
		set["description"] = bson.M{"$literal": *patch.Description}
	}
	if patch.Priority != nil {
		set["priority"] = bson.M{"$literal": string(*patch.Priority)}
	}
	if patch.Status != nil {
		set["status"] = bson.M{"$literal": string(*patch.Status)}
	}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "userId": ownerID}, update, opts).Decode(&doc)
	if err != nil {
		return model.Task{}, r.mapError("update", err)
	}
	return doc.toModel(), nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrorNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "userId": ownerID})
	if err != nil {
		return r.mapError("delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *MongoTaskRepo) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *MongoTaskRepo) mapError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrorNotFound
	}
	return unavailable(op, err)
}

func mongoFilter(q model.TaskQuery) bson.M {
	filter := bson.M{"userId": q.OwnerID}
	if q.Status != nil {
		filter["status"] = string(*q.Status)
	}
	if q.Priority != nil {
		filter["priority"] = string(*q.Priority)
	}
	if q.Search != "" {
		// Quoted so the search is a literal substring, not a pattern.
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	return filter
}
