package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/reading-engine-api/pkg/config"
	"github.com/taiwoajasa245/reading-engine-api/pkg/util"
)

func newDevTokenCmd() *cobra.Command {
	var (
		userFlag string
		email    string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Sign a bearer token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			if cfg.IsProduction() {
				return errors.New("dev-token is disabled in production")
			}

			userID := uuid.New()
			if userFlag != "" {
				parsed, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("--user must be a uuid: %w", err)
				}
				userID = parsed
			}

			token, err := util.GenerateJWT(userID, email, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user id (uuid); random when empty")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
