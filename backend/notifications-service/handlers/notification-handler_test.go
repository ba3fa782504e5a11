package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"orbitplan/backend/notifications-service/repositories"
	"orbitplan/backend/notifications-service/services"
	"orbitplan/backend/utils"

	"github.com/gorilla/mux"
)

func newRouter() *mux.Router {
	r := mux.NewRouter()
	NewNotificationHandler(services.NewNotificationService(repositories.NewMemoryNotificationRepo())).Routes(r)
	return r
}

func serve(h http.Handler, method, target, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != "" {
		utils.SetCaller(req, utils.Caller{UserID: userID})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotificationRoundTrip(t *testing.T) {
	h := newRouter()

	rec := serve(h, http.MethodPost, "/api/notifications/add", `{"team":["u1","u2"],"text":"New task","taskId":"t1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d body %s", rec.Code, rec.Body)
	}

	rec = serve(h, http.MethodGet, "/api/notifications", "", "u1")
	var list notificationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Notifications) != 1 || list.Notifications[0].Text != "New task" {
		t.Fatalf("notifications = %+v", list.Notifications)
	}

	id := list.Notifications[0].ID
	rec = serve(h, http.MethodPut, "/api/notifications/read?isReadType=one&id="+id, "", "u1")
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d body %s", rec.Code, rec.Body)
	}

	rec = serve(h, http.MethodGet, "/api/notifications?unread=true", "", "u1")
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list.Notifications) != 0 {
		t.Errorf("unread = %d, want 0", len(list.Notifications))
	}
}

func TestNotificationErrors(t *testing.T) {
	h := newRouter()

	tests := []struct {
		name   string
		method string
		target string
		body   string
		user   string
		status int
	}{
		{"bad payload", http.MethodPost, "/api/notifications/add", `{`, "", http.StatusBadRequest},
		{"empty team", http.MethodPost, "/api/notifications/add", `{"team":[],"text":"x"}`, "", http.StatusBadRequest},
		{"no identity", http.MethodGet, "/api/notifications", "", "", http.StatusUnauthorized},
		{"bad scope", http.MethodPut, "/api/notifications/read?isReadType=some", "", "u1", http.StatusBadRequest},
		{"unknown id", http.MethodPut, "/api/notifications/read?isReadType=one&id=nope", "", "u1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target, tt.body, tt.user)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}
