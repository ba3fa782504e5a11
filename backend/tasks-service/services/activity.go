package services

import (
	"fmt"
	"time"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const activityDateLayout = "Mon Jan 02 2006"

// AssignedText is the message sent to a team when a task is assigned to it.
func AssignedText(teamSize int, priority models.Priority, date time.Time) string {
	text := "New task has been assigned to you"
	if teamSize > 1 {
		text += fmt.Sprintf(" and %d others.", teamSize-1)
	}
	return text + fmt.Sprintf(
		" The task priority is set a %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		priority, date.Format(activityDateLayout),
	)
}

// NewActivity builds an entry stamped at the given server time.
func NewActivity(kind models.ActivityType, text, by string, at time.Time) models.Activity {
	return models.Activity{
		ID:       primitive.NewObjectID(),
		Type:     kind,
		Activity: text,
		Date:     at,
		By:       by,
	}
}

func NewAssignedActivity(teamSize int, priority models.Priority, date time.Time, by string, at time.Time) models.Activity {
	return NewActivity(models.ActivityAssigned, AssignedText(teamSize, priority, date), by, at)
}

// NewTransitionActivity records a move to stage. Moving to completed is a
// completion; any other move counts as progress.
func NewTransitionActivity(stage models.Stage, by string, at time.Time) models.Activity {
	kind := models.ActivityInProgress
	if stage == models.StageCompleted {
		kind = models.ActivityCompleted
	}
	return NewActivity(kind, fmt.Sprintf("Task status changed to %s", stage), by, at)
}
