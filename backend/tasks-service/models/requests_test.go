package models

import (
	"encoding/json"
	"errors"
	"testing"

	"orbitplan/backend/utils"
)

func TestParseStageNormalizesCase(t *testing.T) {
	for raw, want := range map[string]Stage{
		"Todo":        StageTodo,
		"IN PROGRESS": StageInProgress,
		" completed ": StageCompleted,
		"In Progress": StageInProgress,
	} {
		got, err := ParseStage(raw)
		if err != nil {
			t.Fatalf("ParseStage(%q) failed: %v", raw, err)
		}
		if got != want {
			t.Errorf("ParseStage(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseStageRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "done", "in-progress", "backlog"} {
		_, err := ParseStage(raw)
		var validationErr *utils.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("ParseStage(%q): expected ValidationError, got %v", raw, err)
		}
	}
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority("High")
	if err != nil || got != PriorityHigh {
		t.Fatalf("ParsePriority(High) = %q, %v", got, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Errorf("expected error for unknown priority")
	}
}

func TestLinkListAcceptsStringOrArray(t *testing.T) {
	var fromString struct {
		Links LinkList `json:"links"`
	}
	if err := json.Unmarshal([]byte(`{"links":" https://a.io, ,https://b.io "}`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if len(fromString.Links) != 2 || fromString.Links[0] != "https://a.io" || fromString.Links[1] != "https://b.io" {
		t.Errorf("unexpected links %v", fromString.Links)
	}

	var fromArray struct {
		Links LinkList `json:"links"`
	}
	if err := json.Unmarshal([]byte(`{"links":["https://a.io",""]}`), &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if len(fromArray.Links) != 1 {
		t.Errorf("unexpected links %v", fromArray.Links)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 1 || d.Day() != 1 {
		t.Errorf("unexpected date %v", d)
	}
	if _, err := ParseDate("2024-01-01T09:30:00Z"); err != nil {
		t.Errorf("RFC 3339 should parse: %v", err)
	}
	if _, err := ParseDate("next week"); err == nil {
		t.Errorf("expected error for free-form date")
	}
}
