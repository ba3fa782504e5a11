package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"orbitplan/backend/tasks-service/models"
	"orbitplan/backend/tasks-service/repositories"
	"orbitplan/backend/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type adminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
}

type adminParams struct {
	Name     string
	Email    string
	Password string
	Title    string
}

func createAdminCmd() *cobra.Command {
	var p adminParams

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active admin user unless the email is already taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(db *mongo.Database) error {
				users := repositories.NewUserRepository(db.Collection(utils.GetEnv("MONGO_USERS_COLLECTION", "users")))
				return seedAdmin(cmd.Context(), cmd.OutOrStdout(), users, p, time.Now().UTC())
			})
		},
	}

	cmd.Flags().StringVar(&p.Name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&p.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&p.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&p.Title, "title", "Administrator", "Job title")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func seedAdmin(ctx context.Context, out io.Writer, store adminStore, p adminParams, now time.Time) error {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" || len(p.Password) < 8 {
		return errors.New("an email and a password of at least 8 characters are required")
	}

	existing, err := store.FindByEmail(ctx, email)
	if err == nil {
		fmt.Fprintf(out, "User %s already exists (id %s)\n", email, existing.ID)
		return nil
	}
	if !errors.Is(err, models.ErrNoDocument) {
		return fmt.Errorf("look up %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Title:     p.Title,
		Role:      "admin",
		Email:     email,
		Password:  string(hash),
		IsAdmin:   true,
		IsActive:  true,
		Tasks:     []string{},
		CreatedAt: now,
	}
	if err := store.Insert(ctx, user); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	fmt.Fprintf(out, "Created admin %s (id %s)\n", email, user.ID)
	return nil
}
