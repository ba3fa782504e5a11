package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"validation", NewValidationError("Missing required fields"), http.StatusBadRequest, "Missing required fields"},
		{"not found", NewNotFoundError("Task not found"), http.StatusNotFound, "Task not found"},
		{"auth", NewAuthError("User not authenticated"), http.StatusUnauthorized, "User not authenticated"},
		{"forbidden", NewForbiddenError("nope"), http.StatusForbidden, "nope"},
		{"wrapped not found", fmt.Errorf("update: %w", NewNotFoundError("Task not found")), http.StatusNotFound, "Task not found"},
		{"storage", NewStorageError("insert task", errors.New("connection refused")), http.StatusInternalServerError, GenericStorageMessage},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, GenericStorageMessage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := StatusFor(tc.err)
			if status != tc.wantStatus {
				t.Errorf("status = %d, want %d", status, tc.wantStatus)
			}
			if message != tc.wantMessage {
				t.Errorf("message = %q, want %q", message, tc.wantMessage)
			}
		})
	}
}

func TestStorageErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("insert task", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected StorageError to unwrap to its cause")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewStorageError("find task", errors.New("secret driver detail")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status {
		t.Errorf("expected status false")
	}
	if body.Message != GenericStorageMessage {
		t.Errorf("message = %q, cause must not leak", body.Message)
	}
}
