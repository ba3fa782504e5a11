package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no notification with the given id is
// addressed to the user.
var ErrNotFound = errors.New("notification not found")

// Notification is one message sent to a team. IsRead is the flag of the
// recipient it was loaded for.
type Notification struct {
	ID        string    `json:"_id"`
	TaskID    string    `json:"task"`
	Text      string    `json:"text"`
	Team      []string  `json:"team"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotifyRequest struct {
	Team   []string `json:"team" validate:"required,min=1,dive,required"`
	Text   string   `json:"text" validate:"required"`
	TaskID string   `json:"taskId"`
}

// Read scopes accepted by mark-read.
const (
	ReadOne = "one"
	ReadAll = "all"
)
