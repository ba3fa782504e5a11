package main

import (
	"fmt"
	"time"

	"orbitplan/backend/tasks-service/clients"
	"orbitplan/backend/tasks-service/repositories"
	"orbitplan/backend/tasks-service/services"
	"orbitplan/backend/utils"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

var maintenanceCaller = utils.Caller{UserID: "orbitctl", IsAdmin: true}

func trashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Bulk operations on trashed tasks",
	}
	cmd.AddCommand(trashActionCmd("restore-all", "Restore every trashed task", func(svc *services.TaskService, c *cobra.Command) (int64, error) {
		return svc.RestoreAllTrashed(c.Context(), maintenanceCaller)
	}))
	cmd.AddCommand(trashActionCmd("purge-all", "Permanently delete every trashed task", func(svc *services.TaskService, c *cobra.Command) (int64, error) {
		return svc.PurgeAllTrashed(c.Context(), maintenanceCaller)
	}))
	return cmd
}

func trashActionCmd(use, short string, action func(*services.TaskService, *cobra.Command) (int64, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(db *mongo.Database) error {
				svc := services.NewTaskService(
					repositories.NewTaskRepository(db.Collection(utils.GetEnv("MONGO_TASKS_COLLECTION", "tasks"))),
					repositories.NewUserRepository(db.Collection(utils.GetEnv("MONGO_USERS_COLLECTION", "users"))),
					clients.NewNotificationsClient(
						utils.GetEnv("NOTIFICATIONS_SERVICE_URL", "http://localhost:8004"),
						utils.NewHTTPClient(),
						utils.NewCircuitBreaker("orbitctl-notifications", 5*time.Second),
					),
				)
				n, err := action(svc, cmd)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tasks\n", use, n)
				return nil
			})
		},
	}
}
