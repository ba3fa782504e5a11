package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orbitplan/backend/tasks-service/models"
	"orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const duplicatePrefix = "Duplicate - "

// TaskService is the only component that mutates a task's stage, priority and
// activity trail. Every operation acts on behalf of an explicit caller.
type TaskService struct {
	tasks    TaskStore
	users    UserStore
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewTaskService(tasks TaskStore, users UserStore, notifier Notifier) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateTask stores a new task, then notifies its team and appends the task
// to each member's task list.
func (s *TaskService) CreateTask(ctx context.Context, caller utils.Caller, req models.CreateTaskRequest) (*models.LifecycleResult, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil || strings.TrimSpace(req.Title) == "" {
		return nil, utils.NewValidationError("Missing required fields")
	}

	stage, err := models.ParseStage(req.Stage)
	if err != nil {
		return nil, err
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	team := uniqueIDs(req.Team)
	if len(team) == 0 {
		return nil, utils.NewValidationError("Missing required fields")
	}

	now := s.now()
	assigned := NewAssignedActivity(len(team), priority, date, caller.UserID, now)

	task := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       strings.TrimSpace(req.Title),
		Date:        date,
		Priority:    priority,
		Stage:       stage,
		Activities:  []models.Activity{assigned},
		SubTasks:    []models.SubTask{},
		Description: req.Description,
		Assets:      cloneStrings(req.Assets),
		Links:       cloneStrings(req.Links),
		Team:        team,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.persistNew(ctx, task, assigned.Activity)
}

// Duplicate copies a task's team, subtasks, assets, links, priority, stage and
// description into a new task with a fresh activity trail. The copy is linked
// to every member's task list like a created task.
func (s *TaskService) Duplicate(ctx context.Context, caller utils.Caller, id string) (*models.LifecycleResult, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	src, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	assigned := NewAssignedActivity(len(src.Team), src.Priority, src.Date, caller.UserID, now)

	subTasks := make([]models.SubTask, len(src.SubTasks))
	copy(subTasks, src.SubTasks)

	dup := &models.Task{
		ID:          primitive.NewObjectID(),
		Title:       duplicatePrefix + src.Title,
		Date:        src.Date,
		Priority:    src.Priority,
		Stage:       src.Stage,
		Activities:  []models.Activity{assigned},
		SubTasks:    subTasks,
		Description: src.Description,
		Assets:      cloneStrings(src.Assets),
		Links:       cloneStrings(src.Links),
		Team:        cloneStrings(src.Team),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return s.persistNew(ctx, dup, assigned.Activity)
}

func (s *TaskService) persistNew(ctx context.Context, task *models.Task, text string) (*models.LifecycleResult, error) {
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, utils.NewStorageError("insert task", err)
	}
	taskID := task.ID.Hex()
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created for %d team members", taskID, len(task.Team))

	report := runSideEffects(ctx, taskID,
		sideEffect{
			name: StepNotify,
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, task.Team, text, taskID)
			},
		},
		sideEffect{
			name: StepLinkUsers,
			run: func(ctx context.Context) error {
				return s.linkUsers(ctx, task.Team, taskID)
			},
		},
	)
	return &models.LifecycleResult{Task: s.view(ctx, *task), SideEffects: report}, nil
}

func (s *TaskService) linkUsers(ctx context.Context, team []string, taskID string) error {
	users, err := s.users.FindByIDs(ctx, team)
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	var failed []string
	for _, u := range users {
		if err := s.users.PushTask(ctx, u.ID, taskID); err != nil {
			failed = append(failed, u.ID)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to link task to users %s", strings.Join(failed, ", "))
	}
	return nil
}

// UpdateTask merges patch into the task. A stage change appends a transition
// activity and notifies the team.
func (s *TaskService) UpdateTask(ctx context.Context, caller utils.Caller, id string, patch models.TaskPatch) (*models.LifecycleResult, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	task, err := s.memberTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	update, err := buildUpdate(patch, now)
	if err != nil {
		return nil, err
	}

	stageChanged := update.Stage != nil && *update.Stage != task.Stage
	if stageChanged {
		activity := NewTransitionActivity(*update.Stage, caller.UserID, now)
		update.AppendActivity = &activity
	}

	updated, err := s.tasks.Update(ctx, task.ID, update)
	if err != nil {
		return nil, s.storeErr("update task", err)
	}

	var steps []sideEffect
	if stageChanged {
		text := fmt.Sprintf("Task %q status changed to %s", updated.Title, updated.Stage)
		steps = append(steps, sideEffect{
			name: StepNotify,
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, updated.Team, text, updated.ID.Hex())
			},
		})
		logging.Logger.Infof("Event ID: TASK_STAGE_CHANGED, Description: Task %s moved from %s to %s", updated.ID.Hex(), task.Stage, updated.Stage)
	}

	report := runSideEffects(ctx, updated.ID.Hex(), steps...)
	return &models.LifecycleResult{Task: s.view(ctx, *updated), SideEffects: report}, nil
}

func buildUpdate(patch models.TaskPatch, now time.Time) (models.TaskUpdate, error) {
	update := models.TaskUpdate{UpdatedAt: now}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return update, utils.NewValidationError("Title cannot be empty")
		}
		update.Title = &title
	}
	if patch.Team != nil {
		team := uniqueIDs(*patch.Team)
		if len(team) == 0 {
			return update, utils.NewValidationError("Team cannot be empty")
		}
		update.Team = &team
	}
	if patch.Stage != nil {
		stage, err := models.ParseStage(*patch.Stage)
		if err != nil {
			return update, err
		}
		update.Stage = &stage
	}
	if patch.Priority != nil {
		priority, err := models.ParsePriority(*patch.Priority)
		if err != nil {
			return update, err
		}
		update.Priority = &priority
	}
	if patch.Date != nil {
		date, err := models.ParseDate(*patch.Date)
		if err != nil {
			return update, err
		}
		update.Date = &date
	}
	if patch.Description != nil {
		update.Description = patch.Description
	}
	if patch.Assets != nil {
		assets := cloneStrings(*patch.Assets)
		update.Assets = &assets
	}
	if patch.Links != nil {
		links := cloneStrings(*patch.Links)
		update.Links = &links
	}
	return update, nil
}

// UpdateStage sets the stage directly. Unlike UpdateTask it records no
// activity and sends no notification.
func (s *TaskService) UpdateStage(ctx context.Context, caller utils.Caller, id, rawStage string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	stage, err := models.ParseStage(rawStage)
	if err != nil {
		return err
	}
	task, err := s.memberTask(ctx, caller, id)
	if err != nil {
		return err
	}
	if _, err := s.tasks.Update(ctx, task.ID, models.TaskUpdate{Stage: &stage, UpdatedAt: s.now()}); err != nil {
		return s.storeErr("update task stage", err)
	}
	return nil
}

func (s *TaskService) UpdateSubTaskStatus(ctx context.Context, caller utils.Caller, taskID, subTaskID string, completed bool) error {
	if err := caller.Require(); err != nil {
		return err
	}
	tID, tErr := primitive.ObjectIDFromHex(taskID)
	sID, sErr := primitive.ObjectIDFromHex(subTaskID)
	if tErr != nil || sErr != nil {
		return utils.NewNotFoundError("Task or subtask not found")
	}
	task, err := s.tasks.FindByID(ctx, tID)
	if errors.Is(err, models.ErrNoDocument) {
		return utils.NewNotFoundError("Task or subtask not found")
	}
	if err != nil {
		return utils.NewStorageError("find task", err)
	}
	if err := authorize(caller, task); err != nil {
		return err
	}
	err = s.tasks.SetSubTaskCompleted(ctx, tID, sID, completed)
	if errors.Is(err, models.ErrNoDocument) {
		return utils.NewNotFoundError("Task or subtask not found")
	}
	if err != nil {
		return utils.NewStorageError("update subtask", err)
	}
	return nil
}

func (s *TaskService) AddSubTask(ctx context.Context, caller utils.Caller, taskID string, req models.SubTaskRequest) (*models.SubTask, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil || strings.TrimSpace(req.Title) == "" {
		return nil, utils.NewValidationError("Subtask title is required")
	}
	task, err := s.memberTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	sub := models.SubTask{
		ID:    primitive.NewObjectID(),
		Title: strings.TrimSpace(req.Title),
		Tag:   req.Tag,
	}
	if req.Date != "" {
		if sub.Date, err = models.ParseDate(req.Date); err != nil {
			return nil, err
		}
	}

	if err := s.tasks.PushSubTask(ctx, task.ID, sub); err != nil {
		return nil, s.storeErr("add subtask", err)
	}
	return &sub, nil
}

// AppendActivity adds one entry, stamped now and attributed to the caller.
func (s *TaskService) AppendActivity(ctx context.Context, caller utils.Caller, taskID string, req models.ActivityRequest) (*models.Activity, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, utils.NewValidationError("Activity type is required")
	}
	kind, err := models.ParseActivityType(req.Type)
	if err != nil {
		return nil, err
	}
	task, err := s.memberTask(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	activity := NewActivity(kind, req.Activity, caller.UserID, now)
	if _, err := s.tasks.Update(ctx, task.ID, models.TaskUpdate{AppendActivity: &activity, UpdatedAt: now}); err != nil {
		return nil, s.storeErr("append activity", err)
	}
	return &activity, nil
}

func (s *TaskService) Trash(ctx context.Context, caller utils.Caller, id string) error {
	return s.setTrashed(ctx, caller, id, true)
}

func (s *TaskService) Restore(ctx context.Context, caller utils.Caller, id string) error {
	return s.setTrashed(ctx, caller, id, false)
}

func (s *TaskService) setTrashed(ctx context.Context, caller utils.Caller, id string, trashed bool) error {
	if err := caller.Require(); err != nil {
		return err
	}
	taskID, err := parseTaskID(id)
	if err != nil {
		return err
	}
	if _, err := s.tasks.Update(ctx, taskID, models.TaskUpdate{IsTrashed: &trashed, UpdatedAt: s.now()}); err != nil {
		return s.storeErr("set trashed flag", err)
	}
	return nil
}

// Purge hard-deletes one task.
func (s *TaskService) Purge(ctx context.Context, caller utils.Caller, id string) error {
	if err := caller.Require(); err != nil {
		return err
	}
	taskID, err := parseTaskID(id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return s.storeErr("delete task", err)
	}
	logging.Logger.Infof("Event ID: TASK_PURGED, Description: Task %s deleted", id)
	return nil
}

func (s *TaskService) PurgeAllTrashed(ctx context.Context, caller utils.Caller) (int64, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}
	n, err := s.tasks.DeleteTrashed(ctx)
	if err != nil {
		return 0, utils.NewStorageError("delete trashed tasks", err)
	}
	logging.Logger.Infof("Event ID: TRASH_PURGED, Description: %d trashed tasks deleted", n)
	return n, nil
}

func (s *TaskService) RestoreAllTrashed(ctx context.Context, caller utils.Caller) (int64, error) {
	if err := caller.Require(); err != nil {
		return 0, err
	}
	n, err := s.tasks.RestoreTrashed(ctx)
	if err != nil {
		return 0, utils.NewStorageError("restore trashed tasks", err)
	}
	return n, nil
}

// ListTasks returns tasks in the trashed or live set, newest first. stage is
// matched case-insensitively; search is a case-insensitive substring of the
// title, stage or priority. Non-admin callers only see their own tasks.
func (s *TaskService) ListTasks(ctx context.Context, caller utils.Caller, trashed bool, stage, search string) ([]models.TaskView, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	filter := models.TaskFilter{Trashed: trashed, Search: strings.TrimSpace(search)}
	if strings.TrimSpace(stage) != "" {
		parsed, err := models.ParseStage(stage)
		if err != nil {
			return nil, err
		}
		filter.Stage = parsed
	}
	if !caller.IsAdmin {
		filter.MemberID = caller.UserID
	}

	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewStorageError("list tasks", err)
	}
	return s.views(ctx, tasks), nil
}

func (s *TaskService) GetTask(ctx context.Context, caller utils.Caller, id string) (*models.TaskView, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	task, err := s.memberTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *task), nil
}

// Dashboard summarizes the caller's live tasks; admins see every task and
// the most recent active users.
func (s *TaskService) Dashboard(ctx context.Context, caller utils.Caller) (*models.DashboardSummary, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}
	filter := models.TaskFilter{Trashed: false}
	if !caller.IsAdmin {
		filter.MemberID = caller.UserID
	}
	tasks, err := s.tasks.Find(ctx, filter)
	if err != nil {
		return nil, utils.NewStorageError("list dashboard tasks", err)
	}

	var users []models.User
	if caller.IsAdmin {
		if users, err = s.users.FindActiveRecent(ctx, dashboardRecentUsers); err != nil {
			return nil, utils.NewStorageError("list active users", err)
		}
	}

	summary := Summarize(s.views(ctx, tasks), users, caller.IsAdmin)
	return &summary, nil
}

func (s *TaskService) findTask(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := parseTaskID(id)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, s.storeErr("find task", err)
	}
	return task, nil
}

// memberTask loads a task the caller may act on: admins reach every task,
// everyone else only the tasks whose team they are on.
func (s *TaskService) memberTask(ctx context.Context, caller utils.Caller, id string) (*models.Task, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, task); err != nil {
		return nil, err
	}
	return task, nil
}

func authorize(caller utils.Caller, task *models.Task) error {
	if !caller.IsAdmin && !task.HasMember(caller.UserID) {
		return utils.NewForbiddenError("You are not a member of this task")
	}
	return nil
}

// storeErr turns a store miss into NotFoundError and anything else into a
// StorageError.
func (s *TaskService) storeErr(op string, err error) error {
	if errors.Is(err, models.ErrNoDocument) {
		return utils.NewNotFoundError("Task not found")
	}
	return utils.NewStorageError(op, err)
}

func (s *TaskService) view(ctx context.Context, task models.Task) *models.TaskView {
	views := s.views(ctx, []models.Task{task})
	return &views[0]
}

// views resolves team references with one user lookup. If the lookup fails
// the ids are returned without names.
func (s *TaskService) views(ctx context.Context, tasks []models.Task) []models.TaskView {
	var ids []string
	for _, t := range tasks {
		ids = append(ids, t.Team...)
	}

	known := make(map[string]models.UserSummary)
	if len(ids) > 0 {
		users, err := s.users.FindByIDs(ctx, uniqueIDs(ids))
		if err != nil {
			logging.Logger.Warnf("Event ID: TEAM_RESOLVE_FAILED, Description: Returning unresolved team references: %v", err)
		}
		for _, u := range users {
			known[u.ID] = u.Summary()
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		team := make([]models.UserSummary, 0, len(t.Team))
		for _, id := range t.Team {
			if summary, ok := known[id]; ok {
				team = append(team, summary)
			} else {
				team = append(team, models.UserSummary{ID: id})
			}
		}
		views = append(views, models.TaskView{Task: t, Team: team})
	}
	return views
}

func parseTaskID(id string) (primitive.ObjectID, error) {
	taskID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, utils.NewNotFoundError("Task not found")
	}
	return taskID, nil
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func cloneStrings[S ~[]string](in S) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
