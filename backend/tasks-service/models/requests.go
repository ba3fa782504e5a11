package models

import (
	"encoding/json"
	"strings"
	"time"

	"orbitplan/backend/utils"
)

// LinkList decodes either a JSON array of strings or a single
// comma-separated string. Entries are trimmed and empty ones dropped.
type LinkList []string

func (l *LinkList) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return utils.NewValidationError("links must be a string or a list of strings")
		}
		raw = strings.Split(joined, ",")
	}
	links := make(LinkList, 0, len(raw))
	for _, link := range raw {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	*l = links
	return nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, utils.NewValidationError("Invalid date value")
}

type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required"`
	Team        []string `json:"team" validate:"required,min=1,dive,required"`
	Stage       string   `json:"stage" validate:"required"`
	Date        string   `json:"date" validate:"required"`
	Priority    string   `json:"priority" validate:"required"`
	Assets      []string `json:"assets"`
	Links       LinkList `json:"links"`
	Description string   `json:"description"`
}

// TaskPatch carries the fields of an update. Absent fields stay as they are.
// Activities and the trashed flag have their own operations.
type TaskPatch struct {
	Title       *string   `json:"title"`
	Team        *[]string `json:"team"`
	Stage       *string   `json:"stage"`
	Priority    *string   `json:"priority"`
	Date        *string   `json:"date"`
	Description *string   `json:"description"`
	Assets      *[]string `json:"assets"`
	Links       *LinkList `json:"links"`
}

type SubTaskRequest struct {
	Title string `json:"title" validate:"required"`
	Tag   string `json:"tag"`
	Date  string `json:"date"`
}

type ActivityRequest struct {
	Type     string `json:"type" validate:"required"`
	Activity string `json:"activity"`
}

// SideEffect reports one step of a lifecycle pipeline.
type SideEffect struct {
	Step  string `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// LifecycleResult is returned by operations whose persistence is followed by
// notification and user-list side effects.
type LifecycleResult struct {
	Task        *TaskView    `json:"task"`
	SideEffects []SideEffect `json:"sideEffects"`
}

// Failed reports whether any side effect did not complete.
func (r *LifecycleResult) Failed() bool {
	for _, s := range r.SideEffects {
		if !s.OK {
			return true
		}
	}
	return false
}
