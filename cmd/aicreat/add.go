package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Import local images into a new project",
	Long: `Create a project and import image files from local paths into it.

Files are copied to the upload directory and registered as project
assets. Files with a disallowed extension or over MAX_FILE_SIZE are
skipped and reported.

Examples:
  # Import two images
  aicreat add --project "Spring campaign" hero.png banner.jpg

  # Import a directory recursively
  aicreat add -p "Spring campaign" -r ./assets`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addProject   string
	addRecursive bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "name of the project to create (required)")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	_ = addCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	settings, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// Collect files from all arguments
	var files []string
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

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

	project, err := repo.CreateProject(ctx, addProject)
	if err != nil {
		return err
	}

	summary := aicreat.UploadSummary{TotalFiles: len(files)}

	for _, file := range files {
		f, openErr := os.Open(file)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", file, openErr)
		}

		saved, saveErr := store.Save(ctx, project.ID, filepath.Base(file), f)
		_ = f.Close()

		if errors.Is(saveErr, aicreat.ErrUnsupportedType) || errors.Is(saveErr, aicreat.ErrTooLarge) {
			summary.FailedUploads++
			if !addQuiet {
				slog.Warn("skipped", "file", file, "reason", saveErr)
			}
			continue
		}
		if saveErr != nil {
			return fmt.Errorf("add %s: %w", file, saveErr)
		}

		_, addErr := repo.AddAsset(ctx, aicreat.Asset{
			ProjectID:     project.ID,
			Filename:      filepath.Base(file),
			Path:          saved.Path,
			ContentType:   saved.ContentType,
			Etag:          saved.Etag,
			FileSizeBytes: saved.BytesWritten,
		})
		if addErr != nil {
			_ = store.Delete(ctx, saved.Path)
			return fmt.Errorf("record %s: %w", file, addErr)
		}

		summary.SuccessfulUploads++
		if !addQuiet {
			slog.Info("added", "path", saved.Path, "content_type", saved.ContentType)
		}
	}

	slog.Info("add complete",
		"project", project.ID,
		"added", summary.SuccessfulUploads,
		"skipped", summary.FailedUploads,
	)
	return nil
}

// collectFiles gathers regular files from a path, optionally recursively.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, walkPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
