package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository stores tasks as documents, with activities and subtasks
// embedded in the task they belong to.
type TaskRepository struct {
	collection *mongo.Collection
}

func NewTaskRepository(collection *mongo.Collection) *TaskRepository {
	return &TaskRepository{collection: collection}
}

// EnsureIndexes creates the indexes backing the listing queries.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isTrashed", Value: 1}, {Key: "team", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "stage", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task indexes: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Find(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filterDocument(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *models.Task) error {
	_, err := r.collection.InsertOne(ctx, task)
	return err
}

func (r *TaskRepository) Update(ctx context.Context, id primitive.ObjectID, update models.TaskUpdate) (*models.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, updateDocument(update), opts).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) SetSubTaskCompleted(ctx context.Context, taskID, subTaskID primitive.ObjectID, completed bool) error {
	filter := bson.M{"_id": taskID, "subTasks._id": subTaskID}
	update := bson.M{"$set": bson.M{"subTasks.$.isCompleted": completed}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNoDocument
	}
	return nil
}

func (r *TaskRepository) PushSubTask(ctx context.Context, taskID primitive.ObjectID, subTask models.SubTask) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$push": bson.M{"subTasks": subTask}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return models.ErrNoDocument
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return models.ErrNoDocument
	}
	return nil
}

func (r *TaskRepository) DeleteTrashed(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"isTrashed": true})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *TaskRepository) RestoreTrashed(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(ctx, bson.M{"isTrashed": true}, bson.M{"$set": bson.M{"isTrashed": false}})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func filterDocument(f models.TaskFilter) bson.M {
	query := bson.M{"isTrashed": f.Trashed}
	if f.MemberID != "" {
		query["team"] = f.MemberID
	}
	if f.Stage != "" {
		query["stage"] = string(f.Stage)
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"stage": pattern},
			bson.M{"priority": pattern},
		}
	}
	return query
}

// updateDocument sets each present field and pushes the appended activity,
// so concurrent writers only overwrite the fields they touch.
func updateDocument(u models.TaskUpdate) bson.M {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Priority != nil {
		set["priority"] = string(*u.Priority)
	}
	if u.Stage != nil {
		set["stage"] = string(*u.Stage)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Assets != nil {
		set["assets"] = *u.Assets
	}
	if u.Links != nil {
		set["links"] = *u.Links
	}
	if u.Team != nil {
		set["team"] = *u.Team
	}
	if u.SubTasks != nil {
		set["subTasks"] = *u.SubTasks
	}
	if u.IsTrashed != nil {
		set["isTrashed"] = *u.IsTrashed
	}

	doc := bson.M{"$set": set}
	if u.AppendActivity != nil {
		doc["$push"] = bson.M{"activities": *u.AppendActivity}
	}
	return doc
}
