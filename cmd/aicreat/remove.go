package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <project-id> [project-id] ...",
	Short: "Remove projects and their uploaded files",
	Long: `Delete projects from the database together with their assets and
remove their files from the upload directory.

Examples:
  # Remove a single project
  aicreat remove 0b4c6a1e-9a0e-4c7e-8f43-2f3f0f1e9d11

  # Remove quietly (suppress per-project output)
  aicreat remove -q <id1> <id2>`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var removeQuiet bool

func init() {
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-project output")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, parseErr := uuid.Parse(arg)
		if parseErr != nil {
			return fmt.Errorf("invalid project id %q: %w", arg, parseErr)
		}
		ids = append(ids, id)
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

	removed := 0
	notFound := 0

	for _, id := range ids {
		deleteErr := repo.DeleteProject(ctx, id)
		if errors.Is(deleteErr, aicreat.ErrNotFound) {
			notFound++
			if !removeQuiet {
				slog.Warn("not found", "project", id)
			}
			continue
		}
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", id, deleteErr)
		}

		if err := store.DeleteProject(ctx, id); err != nil {
			return fmt.Errorf("remove files of %s: %w", id, err)
		}

		removed++
		if !removeQuiet {
			slog.Info("removed", "project", id)
		}
	}

	slog.Info("remove complete", "removed", removed, "not_found", notFound)
	return nil
}
