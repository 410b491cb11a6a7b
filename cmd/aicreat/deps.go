package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aicreat/aicreat/config"
	"github.com/aicreat/aicreat/database"
	"github.com/aicreat/aicreat/upload"
)

// openDB connects to Postgres and checks the schema. With migrate set the
// tables are created first.
func openDB(ctx context.Context, settings *config.Settings, migrate bool) (*database.DB, error) {
	db, err := database.Connect(ctx, settings.Database())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if migrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}
	return db, nil
}

// openStore opens the upload directory. The returned root must be closed by the caller.
func openStore(settings *config.Settings) (*upload.Store, *os.Root, error) {
	root, err := upload.OpenRoot(settings.Upload())
	if err != nil {
		return nil, nil, err
	}
	return upload.NewStore(root, settings.Upload()), root, nil
}
