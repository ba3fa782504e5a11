package services

import (
	"testing"
	"time"

	"orbitplan/backend/tasks-service/models"
)

func TestAssignedText(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		team int
		want string
	}{
		{
			name: "single member",
			team: 1,
			want: "New task has been assigned to you The task priority is set a high priority, so check and act accordingly. The task date is Mon Jan 01 2024. Thank you!!!",
		},
		{
			name: "three members",
			team: 3,
			want: "New task has been assigned to you and 2 others. The task priority is set a high priority, so check and act accordingly. The task date is Mon Jan 01 2024. Thank you!!!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignedText(tt.team, models.PriorityHigh, date); got != tt.want {
				t.Errorf("AssignedText() = %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestNewTransitionActivity(t *testing.T) {
	tests := []struct {
		stage models.Stage
		want  models.ActivityType
	}{
		{models.StageCompleted, models.ActivityCompleted},
		{models.StageInProgress, models.ActivityInProgress},
		{models.StageTodo, models.ActivityInProgress},
	}

	for _, tt := range tests {
		got := NewTransitionActivity(tt.stage, "u1", fixedNow)
		if got.Type != tt.want {
			t.Errorf("NewTransitionActivity(%q).Type = %q, want %q", tt.stage, got.Type, tt.want)
		}
		if got.By != "u1" || got.ID.IsZero() {
			t.Errorf("NewTransitionActivity(%q) = %+v", tt.stage, got)
		}
	}
}
