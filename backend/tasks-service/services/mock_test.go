package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"orbitplan/backend/tasks-service/models"
	"orbitplan/backend/tasks-service/repositories"
	"orbitplan/backend/utils"
)

type notifyCall struct {
	Team   []string
	Text   string
	TaskID string
}

// MockNotifier records every notification. NotifyFunc, when set, decides
// the returned error.
type MockNotifier struct {
	mu         sync.Mutex
	Calls      []notifyCall
	NotifyFunc func(team []string, text, taskID string) error
}

func (m *MockNotifier) Notify(_ context.Context, team []string, text, taskID string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, notifyCall{Team: append([]string{}, team...), Text: text, TaskID: taskID})
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(team, text, taskID)
	}
	return nil
}

var (
	fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	admin    = utils.Caller{UserID: "admin", IsAdmin: true}
	member   = utils.Caller{UserID: "u1"}
)

type fixture struct {
	svc      *TaskService
	tasks    *repositories.MemoryTaskRepository
	users    *repositories.MemoryUserRepository
	notifier *MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks: repositories.NewMemoryTaskRepository(),
		users: repositories.NewMemoryUserRepository(
			models.User{ID: "u1", Name: "Ana", Title: "Dev", IsActive: true, CreatedAt: fixedNow},
			models.User{ID: "u2", Name: "Bo", Title: "QA", IsActive: true, CreatedAt: fixedNow.Add(time.Minute)},
		),
		notifier: &MockNotifier{},
	}
	f.svc = NewTaskService(f.tasks, f.users, f.notifier)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) create(t *testing.T, req models.CreateTaskRequest) *models.TaskView {
	t.Helper()
	res, err := f.svc.CreateTask(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	return res.Task
}

func launchPlan() models.CreateTaskRequest {
	return models.CreateTaskRequest{
		Title:    "Launch plan",
		Team:     []string{"u1", "u2"},
		Stage:    "Todo",
		Date:     "2024-01-01",
		Priority: "High",
	}
}
