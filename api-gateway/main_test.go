package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"orbitplan/api-gateway/utils"
	shared "orbitplan/backend/utils"
)

var testSecret = []byte("gateway-secret")

type seen struct {
	path   string
	caller shared.Caller
}

func upstream(t *testing.T, got *seen) *url.URL {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := shared.CallerFromRequest(r)
		if err != nil {
			t.Errorf("upstream CallerFromRequest() error = %v", err)
		}
		*got = seen{path: r.URL.Path, caller: caller}
		shared.WriteMessage(w, "ok")
	}))
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	return u
}

func token(t *testing.T, userID string, isAdmin bool) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, userID, isAdmin, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return "Bearer " + tok
}

func TestGatewayForwardsIdentity(t *testing.T) {
	var got seen
	tasks := upstream(t, &got)
	router := newRouter(testSecret, tasks, tasks)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks?stage=todo", nil)
	req.Header.Set("Authorization", token(t, "u1", false))
	req.Header.Set(shared.HeaderUserID, "spoofed")
	req.Header.Set(shared.HeaderIsAdmin, "true")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	if got.path != "/api/tasks" {
		t.Errorf("upstream path = %q", got.path)
	}
	if got.caller != (shared.Caller{UserID: "u1", IsAdmin: false}) {
		t.Errorf("upstream caller = %+v, client headers must be replaced", got.caller)
	}
}

func TestGatewayRejects(t *testing.T) {
	var got seen
	tasks := upstream(t, &got)
	router := newRouter(testSecret, tasks, tasks)

	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"no token", http.MethodGet, "/api/tasks", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/tasks", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", http.MethodGet, "/api/tasks", "Basic abc", http.StatusUnauthorized},
		{"member creates", http.MethodPost, "/api/tasks/create", token(t, "u1", false), http.StatusForbidden},
		{"member trashes", http.MethodPut, "/api/tasks/abc/trash", token(t, "u1", false), http.StatusForbidden},
		{"internal fan-out", http.MethodPost, "/api/notifications/add", token(t, "admin", true), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = seen{}
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got.path != "" {
				t.Errorf("request reached upstream at %q", got.path)
			}
			if tt.status == http.StatusNotFound {
				return
			}
			var body shared.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Status || body.Message == "" {
				t.Errorf("body = %s, want {status:false,message}", rec.Body)
			}
		})
	}
}

func TestGatewayAdminRoute(t *testing.T) {
	var got seen
	tasks := upstream(t, &got)
	router := newRouter(testSecret, tasks, tasks)

	req := httptest.NewRequest(http.MethodDelete, "/api/tasks/abc/delete-restore?actionType=deleteAll", nil)
	req.Header.Set("Authorization", token(t, "boss", true))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !got.caller.IsAdmin || got.caller.UserID != "boss" {
		t.Errorf("status = %d, upstream caller = %+v", rec.Code, got.caller)
	}
}

func TestGatewayUpstreamDown(t *testing.T) {
	down, _ := url.Parse("http://127.0.0.1:1")
	router := newRouter(testSecret, down, down)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", token(t, "u1", false))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
