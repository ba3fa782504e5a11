package models

import (
	"errors"
	"strings"
	"time"

	"orbitplan/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNoDocument is returned by stores when a filter matches nothing.
var ErrNoDocument = errors.New("document not found")

type Stage string

const (
	StageTodo       Stage = "todo"
	StageInProgress Stage = "in progress"
	StageCompleted  Stage = "completed"
)

// Stages lists the board columns in display order.
var Stages = []Stage{StageTodo, StageInProgress, StageCompleted}

// ParseStage accepts any casing of the three canonical stages.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StageTodo, StageInProgress, StageCompleted:
		return s, nil
	}
	return "", utils.NewValidationError("Invalid stage value")
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", utils.NewValidationError("Invalid priority value")
}

type ActivityType string

const (
	ActivityAssigned   ActivityType = "assigned"
	ActivityStarted    ActivityType = "started"
	ActivityInProgress ActivityType = "in progress"
	ActivityBug        ActivityType = "bug"
	ActivityCompleted  ActivityType = "completed"
	ActivityCommented  ActivityType = "commented"
)

func ParseActivityType(raw string) (ActivityType, error) {
	a := ActivityType(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActivityAssigned, ActivityStarted, ActivityInProgress, ActivityBug, ActivityCompleted, ActivityCommented:
		return a, nil
	}
	return "", utils.NewValidationError("Invalid activity type")
}

// Activity is an immutable entry of a task's trail.
type Activity struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Type     ActivityType       `json:"type" bson:"type"`
	Activity string             `json:"activity" bson:"activity"`
	Date     time.Time          `json:"date" bson:"date"`
	By       string             `json:"by" bson:"by"`
}

type SubTask struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Date        time.Time          `json:"date" bson:"date"`
	Tag         string             `json:"tag" bson:"tag"`
	IsCompleted bool               `json:"isCompleted" bson:"isCompleted"`
}

type Task struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Title       string             `json:"title" bson:"title"`
	Date        time.Time          `json:"date" bson:"date"`
	Priority    Priority           `json:"priority" bson:"priority"`
	Stage       Stage              `json:"stage" bson:"stage"`
	Activities  []Activity         `json:"activities" bson:"activities"`
	SubTasks    []SubTask          `json:"subTasks" bson:"subTasks"`
	Description string             `json:"description" bson:"description"`
	Assets      []string           `json:"assets" bson:"assets"`
	Links       []string           `json:"links" bson:"links"`
	Team        []string           `json:"team" bson:"team"`
	IsTrashed   bool               `json:"isTrashed" bson:"isTrashed"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasMember reports whether userID is on the task's team.
func (t *Task) HasMember(userID string) bool {
	for _, id := range t.Team {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskView is a task with its team references resolved to user summaries.
type TaskView struct {
	Task
	Team []UserSummary `json:"team"`
}

// TaskFilter selects tasks for listing. MemberID, when set, restricts the
// result to tasks whose team contains that user.
type TaskFilter struct {
	Trashed  bool
	Stage    Stage
	Search   string
	MemberID string
}

// TaskUpdate lists the fields to overwrite. Nil fields are left untouched;
// AppendActivity is pushed onto the end of the activity list.
type TaskUpdate struct {
	Title          *string
	Date           *time.Time
	Priority       *Priority
	Stage          *Stage
	Description    *string
	Assets         *[]string
	Links          *[]string
	Team           *[]string
	SubTasks       *[]SubTask
	IsTrashed      *bool
	AppendActivity *Activity
	UpdatedAt      time.Time
}
