package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryTaskRepository keeps tasks in process. It backs TASKS_STORE=memory
// and the handler tests.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[primitive.ObjectID]models.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[primitive.ObjectID]models.Task)}
}

func (r *MemoryTaskRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrNoDocument
	}
	out := copyTask(task)
	return &out, nil
}

func (r *MemoryTaskRepository) Find(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := []models.Task{}
	for _, t := range r.tasks {
		if t.IsTrashed != filter.Trashed {
			continue
		}
		if filter.Stage != "" && t.Stage != filter.Stage {
			continue
		}
		if filter.MemberID != "" && !t.HasMember(filter.MemberID) {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		out = append(out, copyTask(t))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func matchesSearch(t models.Task, search string) bool {
	for _, field := range []string{t.Title, string(t.Stage), string(t.Priority)} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func (r *MemoryTaskRepository) Insert(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = copyTask(*task)
	return nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id primitive.ObjectID, u models.TaskUpdate) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, models.ErrNoDocument
	}
	task = copyTask(task)

	task.UpdatedAt = u.UpdatedAt
	if u.Title != nil {
		task.Title = *u.Title
	}
	if u.Date != nil {
		task.Date = *u.Date
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Stage != nil {
		task.Stage = *u.Stage
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Assets != nil {
		task.Assets = append([]string{}, *u.Assets...)
	}
	if u.Links != nil {
		task.Links = append([]string{}, *u.Links...)
	}
	if u.Team != nil {
		task.Team = append([]string{}, *u.Team...)
	}
	if u.SubTasks != nil {
		task.SubTasks = append([]models.SubTask{}, *u.SubTasks...)
	}
	if u.IsTrashed != nil {
		task.IsTrashed = *u.IsTrashed
	}
	if u.AppendActivity != nil {
		task.Activities = append(task.Activities, *u.AppendActivity)
	}

	r.tasks[id] = task
	out := copyTask(task)
	return &out, nil
}

func (r *MemoryTaskRepository) SetSubTaskCompleted(_ context.Context, taskID, subTaskID primitive.ObjectID, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return models.ErrNoDocument
	}
	task = copyTask(task)
	for i := range task.SubTasks {
		if task.SubTasks[i].ID == subTaskID {
			task.SubTasks[i].IsCompleted = completed
			r.tasks[taskID] = task
			return nil
		}
	}
	return models.ErrNoDocument
}

func (r *MemoryTaskRepository) PushSubTask(_ context.Context, taskID primitive.ObjectID, subTask models.SubTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return models.ErrNoDocument
	}
	task = copyTask(task)
	task.SubTasks = append(task.SubTasks, subTask)
	r.tasks[taskID] = task
	return nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return models.ErrNoDocument
	}
	delete(r.tasks, id)
	return nil
}

func (r *MemoryTaskRepository) DeleteTrashed(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tasks {
		if t.IsTrashed {
			delete(r.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryTaskRepository) RestoreTrashed(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tasks {
		if t.IsTrashed {
			t.IsTrashed = false
			r.tasks[id] = t
			n++
		}
	}
	return n, nil
}

func copyTask(t models.Task) models.Task {
	t.Activities = append([]models.Activity{}, t.Activities...)
	t.SubTasks = append([]models.SubTask{}, t.SubTasks...)
	t.Assets = append([]string{}, t.Assets...)
	t.Links = append([]string{}, t.Links...)
	t.Team = append([]string{}, t.Team...)
	return t
}

// MemoryUserRepository is the in-process user directory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository(users ...models.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[string]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *MemoryUserRepository) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			u.Tasks = append([]string{}, u.Tasks...)
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *MemoryUserRepository) PushTask(_ context.Context, userID, taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return models.ErrNoDocument
	}
	for _, id := range u.Tasks {
		if id == taskID {
			return nil
		}
	}
	u.Tasks = append(append([]string{}, u.Tasks...), taskID)
	r.users[userID] = u
	return nil
}

func (r *MemoryUserRepository) FindActiveRecent(_ context.Context, limit int) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.User{}
	for _, u := range r.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Tasks returns the task ids linked to a user.
func (r *MemoryUserRepository) Tasks(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.users[userID].Tasks...)
}
