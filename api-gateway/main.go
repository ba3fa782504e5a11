package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	shared "orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/gorilla/mux"
)

var (
	anyone    = []string{roleAdmin, roleMember}
	adminOnly = []string{roleAdmin}
)

func main() {
	if err := shared.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	logging.InitLogger("api-gateway", shared.GetEnv("LOG_FILE", ""))

	secret := shared.GetEnv("JWT_SECRET", "")
	if secret == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set")
	}
	tasksURL, err := url.Parse(shared.GetEnv("TASKS_SERVICE_URL", "http://tasks-service:8002"))
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: Invalid TASKS_SERVICE_URL: %v", err)
	}
	notificationsURL, err := url.Parse(shared.GetEnv("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8004"))
	if err != nil {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: Invalid NOTIFICATIONS_SERVICE_URL: %v", err)
	}

	router := newRouter([]byte(secret), tasksURL, notificationsURL)

	serverAddress := fmt.Sprintf(":%s", shared.GetEnv("SERVER_PORT", "8000"))
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      shared.EnableCORS(shared.GetEnv("CORS_ORIGIN", "*"), router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: API gateway listening on %s", serverAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
}

func newRouter(secret []byte, tasksURL, notificationsURL *url.URL) *mux.Router {
	r := mux.NewRouter()
	tasks := reverseProxyURL(tasksURL)
	notifications := reverseProxyURL(notificationsURL)

	route := func(method, path string, target http.Handler, roles []string) {
		r.Handle(path, authMiddleware(target, secret, roles)).Methods(method)
	}

	route(http.MethodPost, "/api/tasks/create", tasks, adminOnly)
	route(http.MethodPost, "/api/tasks/duplicate/{id}", tasks, adminOnly)
	route(http.MethodPost, "/api/tasks/activity/{id}", tasks, anyone)
	route(http.MethodGet, "/api/tasks/dashboard", tasks, anyone)
	route(http.MethodGet, "/api/tasks", tasks, anyone)
	route(http.MethodGet, "/api/tasks/{id}", tasks, anyone)
	route(http.MethodPut, "/api/tasks/create-subtask/{id}", tasks, adminOnly)
	route(http.MethodPut, "/api/tasks/update/{id}", tasks, anyone)
	route(http.MethodPut, "/api/tasks/change-stage/{id}", tasks, anyone)
	route(http.MethodPut, "/api/tasks/change-status/{taskId}/{subTaskId}", tasks, anyone)
	route(http.MethodPut, "/api/tasks/{id}/trash", tasks, adminOnly)
	route(http.MethodPut, "/api/tasks/{id}", tasks, anyone)
	route(http.MethodDelete, "/api/tasks/{id}/delete-restore", tasks, adminOnly)

	// Notification fan-out is internal to the services.
	r.Handle("/api/notifications/add", http.NotFoundHandler())
	route(http.MethodGet, "/api/notifications", notifications, anyone)
	route(http.MethodPut, "/api/notifications/read", notifications, anyone)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteMessage(w, "API gateway is running")
	}).Methods(http.MethodGet)

	return r
}

func reverseProxyURL(target *url.URL) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.Logger.Errorf("Event ID: UPSTREAM_FAILED, Description: %s %s via %s: %v", r.Method, r.URL.Path, target.Host, err)
		shared.WriteJSON(w, http.StatusBadGateway, shared.ErrorBody{Status: false, Message: "Service unavailable, please try again later"})
	}

	return proxy
}
