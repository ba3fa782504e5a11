package repositories

import (
	"reflect"
	"testing"
	"time"

	"orbitplan/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterDocument(t *testing.T) {
	tests := []struct {
		name   string
		filter models.TaskFilter
		want   bson.M
	}{
		{
			name:   "live tasks",
			filter: models.TaskFilter{},
			want:   bson.M{"isTrashed": false},
		},
		{
			name:   "member and stage",
			filter: models.TaskFilter{Trashed: true, Stage: models.StageTodo, MemberID: "u1"},
			want:   bson.M{"isTrashed": true, "stage": "todo", "team": "u1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterDocument(tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("filterDocument() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterDocumentEscapesSearch(t *testing.T) {
	got := filterDocument(models.TaskFilter{Search: "fix (urgent)"})

	or, ok := got["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("$or = %v, want three alternatives", got["$or"])
	}
	title := or[0].(bson.M)["title"].(primitive.Regex)
	if title.Pattern != `fix \(urgent\)` {
		t.Errorf("pattern = %q, want escaped literal", title.Pattern)
	}
	if title.Options != "i" {
		t.Errorf("options = %q, want case-insensitive", title.Options)
	}
}

func TestUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stage := models.StageCompleted
	activity := models.Activity{ID: primitive.NewObjectID(), Type: models.ActivityCompleted}

	got := updateDocument(models.TaskUpdate{Stage: &stage, AppendActivity: &activity, UpdatedAt: now})

	set := got["$set"].(bson.M)
	if len(set) != 2 || set["stage"] != "completed" || set["updatedAt"] != now {
		t.Errorf("$set = %v, want only stage and updatedAt", set)
	}
	push := got["$push"].(bson.M)
	if push["activities"] != activity {
		t.Errorf("$push = %v, want appended activity", push)
	}
}

func TestUpdateDocumentWithoutActivity(t *testing.T) {
	trashed := true
	got := updateDocument(models.TaskUpdate{IsTrashed: &trashed})

	if _, ok := got["$push"]; ok {
		t.Error("unexpected $push without an activity")
	}
	if got["$set"].(bson.M)["isTrashed"] != true {
		t.Errorf("$set = %v, want isTrashed", got["$set"])
	}
}
