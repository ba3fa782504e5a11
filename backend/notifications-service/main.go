package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"orbitplan/backend/notifications-service/handlers"
	"orbitplan/backend/notifications-service/repositories"
	"orbitplan/backend/notifications-service/services"
	"orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/gorilla/mux"
)

func main() {
	if err := utils.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	logging.InitLogger("notifications-service", utils.GetEnv("LOG_FILE", ""))
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Notifications Service...")

	var store services.NotificationStore
	if utils.GetEnv("NOTIFICATIONS_STORE", "cassandra") == "memory" {
		logging.Logger.Warn("Event ID: MEMORY_STORE, Description: Using in-memory notification store; data is lost on restart")
		store = repositories.NewMemoryNotificationRepo()
	} else {
		hosts := strings.Split(utils.GetEnv("CASS_DB", "127.0.0.1"), ",")
		repo, err := repositories.NewNotificationRepo(hosts, utils.GetEnv("CASS_KEYSPACE", "notifications"))
		if err != nil {
			logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Failed to initialize repository: %v", err)
		}
		defer repo.CloseSession()

		if err := repo.CreateTable(); err != nil {
			logging.Logger.Fatalf("Event ID: DB_SCHEMA_FAILED, Description: %v", err)
		}
		store = repo
	}

	service := services.NewNotificationService(store)
	handler := handlers.NewNotificationHandler(service)

	router := mux.NewRouter()
	handler.Routes(router)

	serverAddress := fmt.Sprintf(":%s", utils.GetEnv("SERVER_PORT", "8004"))
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      utils.EnableCORS(utils.GetEnv("CORS_ORIGIN", "*"), router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server is running on %s", serverAddress)
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
