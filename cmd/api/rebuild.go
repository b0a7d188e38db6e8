package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/reading-engine-api/internal/progress"
)

func newRebuildSummaryCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "rebuild-summary",
		Short: "Recompute a user's cached summary from the reading and reflection ledgers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("--user must be a uuid: %w", err)
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.prepare(cmd.Context())
			if err != nil {
				return err
			}

			svc := progress.NewProgressService(progress.NewProgressRepo(a.db), c, a.log,
				progress.WithDefaultLocation(a.cfg.DefaultLocation()),
				progress.WithRetryMaxElapsed(a.cfg.RetryMaxElapsed),
			)
			result, err := svc.RebuildSummary(cmd.Context(), userID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user id (uuid)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
