package main

import (
	"errors"
	"fmt"
	"time"

	gateway "orbitplan/api-gateway/utils"
	"orbitplan/backend/utils"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		userID  string
		isAdmin bool
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a gateway token for a user (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := utils.GetEnv("JWT_SECRET", "")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := gateway.GenerateToken([]byte(secret), userID, isAdmin, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id placed in the token")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin rights")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
