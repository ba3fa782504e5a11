// Command orbitctl performs maintenance tasks against the task store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"orbitplan/backend/utils"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "orbitctl",
		Short:         "orbitctl - maintenance tool for the task tracker",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.LoadEnv(envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with environment variables")

	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(trashCmd())
	return rootCmd
}

// withDatabase connects to the configured Mongo database for the duration
// of fn.
func withDatabase(ctx context.Context, fn func(db *mongo.Database) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(utils.GetEnv("MONGO_URI", "mongodb://localhost:27017")))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return fn(client.Database(utils.GetEnv("MONGO_DB_NAME", "orbitplan")))
}
