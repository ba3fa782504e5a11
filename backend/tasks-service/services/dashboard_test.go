package services

import (
	"reflect"
	"testing"
	"time"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func viewAt(stage models.Stage, priority models.Priority, created time.Time) models.TaskView {
	return models.TaskView{Task: models.Task{
		ID:        primitive.NewObjectID(),
		Stage:     stage,
		Priority:  priority,
		CreatedAt: created,
	}}
}

func TestSummarizeCounts(t *testing.T) {
	tasks := []models.TaskView{
		viewAt(models.StageTodo, models.PriorityLow, fixedNow),
		viewAt(models.StageTodo, models.PriorityHigh, fixedNow.Add(time.Hour)),
		viewAt(models.StageCompleted, models.PriorityHigh, fixedNow.Add(2*time.Hour)),
	}

	got := Summarize(tasks, nil, false)

	if got.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", got.TotalTasks)
	}
	wantStages := map[models.Stage]int{models.StageTodo: 2, models.StageCompleted: 1}
	if !reflect.DeepEqual(got.Tasks, wantStages) {
		t.Errorf("Tasks = %v, want %v", got.Tasks, wantStages)
	}
	if _, ok := got.Tasks[models.StageInProgress]; ok {
		t.Error("empty stage must be absent, not zero")
	}

	wantGraph := []models.PriorityTotal{
		{Name: models.PriorityHigh, Total: 2},
		{Name: models.PriorityLow, Total: 1},
	}
	if !reflect.DeepEqual(got.GraphData, wantGraph) {
		t.Errorf("GraphData = %v, want %v", got.GraphData, wantGraph)
	}
	if got.Last10Task[0].CreatedAt != tasks[2].CreatedAt {
		t.Error("Last10Task must start with the newest task")
	}
	if len(got.Users) != 0 || got.Users == nil {
		t.Errorf("Users = %v, want empty list for non-admin", got.Users)
	}
}

func TestSummarizeIgnoresInputOrder(t *testing.T) {
	tasks := []models.TaskView{
		viewAt(models.StageTodo, models.PriorityMedium, fixedNow),
		viewAt(models.StageInProgress, models.PriorityLow, fixedNow),
		viewAt(models.StageCompleted, models.PriorityHigh, fixedNow.Add(time.Minute)),
	}
	reversed := []models.TaskView{tasks[2], tasks[1], tasks[0]}

	a := Summarize(tasks, nil, false)
	b := Summarize(reversed, nil, false)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Summarize depends on input order:\n%+v\n%+v", a, b)
	}
	if tasks[0].Stage != models.StageTodo {
		t.Error("Summarize reordered its input")
	}
}

func TestSummarizeLimitsRecentTasks(t *testing.T) {
	var tasks []models.TaskView
	for i := 0; i < 12; i++ {
		tasks = append(tasks, viewAt(models.StageTodo, models.PriorityLow, fixedNow.Add(time.Duration(i)*time.Minute)))
	}

	got := Summarize(tasks, nil, false)
	if len(got.Last10Task) != 10 || got.TotalTasks != 12 {
		t.Fatalf("Last10Task = %d, TotalTasks = %d", len(got.Last10Task), got.TotalTasks)
	}
	if got.Last10Task[9].CreatedAt != tasks[2].CreatedAt {
		t.Error("Last10Task must hold the ten newest tasks")
	}
}

func TestSummarizeUsers(t *testing.T) {
	var users []models.User
	for i := 0; i < 12; i++ {
		users = append(users, models.User{ID: string(rune('a' + i)), IsActive: true, CreatedAt: fixedNow.Add(time.Duration(i) * time.Hour)})
	}
	users = append(users, models.User{ID: "inactive", IsActive: false, CreatedAt: fixedNow.Add(100 * time.Hour)})

	got := Summarize(nil, users, true)
	if len(got.Users) != 10 {
		t.Fatalf("Users = %d, want 10", len(got.Users))
	}
	if got.Users[0].ID != "l" {
		t.Errorf("first user = %q, want newest active", got.Users[0].ID)
	}
	for _, u := range got.Users {
		if u.ID == "inactive" {
			t.Error("inactive user listed")
		}
	}
	if got.TotalTasks != 0 || len(got.Tasks) != 0 || len(got.GraphData) != 0 {
		t.Errorf("empty task set summary = %+v", got)
	}
}
