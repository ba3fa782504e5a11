package services

import (
	"context"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStore is the task collection as seen by the lifecycle manager. Methods
// addressing a single task return models.ErrNoDocument when nothing matches.
type TaskStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	// Find returns matching tasks, most recently created first.
	Find(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	// Update applies update and returns the task as stored afterwards.
	Update(ctx context.Context, id primitive.ObjectID, update models.TaskUpdate) (*models.Task, error)
	SetSubTaskCompleted(ctx context.Context, taskID, subTaskID primitive.ObjectID, completed bool) error
	PushSubTask(ctx context.Context, taskID primitive.ObjectID, subTask models.SubTask) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteTrashed(ctx context.Context) (int64, error)
	RestoreTrashed(ctx context.Context) (int64, error)
}

// UserStore is the user collection collaborator.
type UserStore interface {
	// FindByIDs returns the users that exist among ids; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	PushTask(ctx context.Context, userID, taskID string) error
	// FindActiveRecent returns up to limit active users, newest first.
	FindActiveRecent(ctx context.Context, limit int) ([]models.User, error)
}

// Notifier creates one notification addressed to a whole team.
type Notifier interface {
	Notify(ctx context.Context, team []string, text, taskID string) error
}
