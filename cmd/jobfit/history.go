package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/db"
	"github.com/jonathan/jobfit-analyzer/internal/pipeline"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a user's saved scans, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHistory(cmd.Context(), userID, limit)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (default from config)")
	cmd.Flags().IntVar(&limit, "limit", db.DefaultScanLimit, "Maximum number of scans to list")
	return cmd
}

func (a *app) runHistory(ctx context.Context, userFlag string, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	userID, err := a.resolveUserID(userFlag)
	if err != nil {
		return err
	}
	if userID == uuid.Nil {
		return pipeline.ErrNotSignedIn
	}
	if a.cfg.DatabaseURL == "" {
		return fmt.Errorf("database URL is required (set DATABASE_URL or database_url)")
	}

	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	scans, err := database.ListScans(ctx, userID, limit)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		return a.writeJSON(scans)
	}
	a.printer().PrintScans(scans)
	return nil
}
