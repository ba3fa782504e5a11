package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orbitplan/backend/tasks-service/clients"
	"orbitplan/backend/tasks-service/handlers"
	"orbitplan/backend/tasks-service/repositories"
	"orbitplan/backend/tasks-service/services"
	"orbitplan/backend/utils"
	"orbitplan/backend/utils/logging"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := utils.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	logging.InitLogger("tasks-service", utils.GetEnv("LOG_FILE", ""))
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Tasks Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		taskStore services.TaskStore
		userStore services.UserStore
	)
	if utils.GetEnv("TASKS_STORE", "mongo") == "memory" {
		logging.Logger.Warn("Event ID: MEMORY_STORE, Description: Using in-memory task and user stores; data is lost on restart")
		taskStore = repositories.NewMemoryTaskRepository()
		userStore = repositories.NewMemoryUserRepository()
	} else {
		client, db := connectMongo(ctx)
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
			}
		}()

		tasks := repositories.NewTaskRepository(db.Collection(utils.GetEnv("MONGO_TASKS_COLLECTION", "tasks")))
		users := repositories.NewUserRepository(db.Collection(utils.GetEnv("MONGO_USERS_COLLECTION", "users")))
		if err := tasks.EnsureIndexes(ctx); err != nil {
			logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
		}
		taskStore, userStore = tasks, users
	}

	notifier := clients.NewNotificationsClient(
		utils.GetEnv("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8004"),
		utils.NewHTTPClient(),
		utils.NewCircuitBreaker("notifications-cb", 5*time.Second),
	)

	taskService := services.NewTaskService(taskStore, userStore, notifier)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := mux.NewRouter()
	taskHandler.Routes(r)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteMessage(w, "ok")
	}).Methods(http.MethodGet)

	serverAddress := fmt.Sprintf(":%s", utils.GetEnv("SERVER_PORT", "8002"))
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      utils.EnableCORS(utils.GetEnv("CORS_ORIGIN", "*"), r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_FAILED, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVICE_STOP, Description: Tasks Service stopped")
}

func connectMongo(ctx context.Context) (*mongo.Client, *mongo.Database) {
	mongoURI := utils.GetEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDBName := utils.GetEnv("MONGO_DB_NAME", "orbitplan")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s", mongoDBName)

	return client, client.Database(mongoDBName)
}
