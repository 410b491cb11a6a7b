package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned upload files",
	Long: `Reclaim space in the upload directory.

This command:
  1. Deletes temp files left by interrupted uploads
  2. Deletes project directories that have no project in the database

Use --dry-run to list what would be removed.`,
	RunE: runCleanup,
}

var cleanupDryRun bool

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "report orphans without deleting them")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := openDB(ctx, settings, false)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	repo := db.Repo()

	store, root, err := openStore(settings)
	if err != nil {
		return err
	}
	defer func() { _ = root.Close() }()

	slog.Info("starting cleanup", "dir", settings.Upload().Dir, "dry_run", cleanupDryRun)

	tmpRemoved := 0
	if !cleanupDryRun {
		tmpRemoved, err = store.RemoveTemp(ctx)
		if err != nil {
			return err
		}
	}

	ids, err := store.Projects(ctx)
	if err != nil {
		return err
	}

	orphans := 0
	for _, id := range ids {
		_, getErr := repo.GetProject(ctx, id)
		if getErr == nil {
			continue
		}
		if !errors.Is(getErr, aicreat.ErrNotFound) {
			return fmt.Errorf("look up project %s: %w", id, getErr)
		}

		orphans++
		if cleanupDryRun {
			slog.Info("orphaned project directory", "project", id)
			continue
		}
		if err := store.DeleteProject(ctx, id); err != nil {
			return err
		}
		slog.Info("removed orphaned project directory", "project", id)
	}

	slog.Info("cleanup complete", "temp_files_removed", tmpRemoved, "orphaned_projects", orphans)
	return nil
}
