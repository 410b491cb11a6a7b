package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createProjectsTable(ctx context.Context, pool *pgxpool.Pool) error {
	quotedTable := pgx.Identifier{projectsTable}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, quotedTable)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}
	return nil
}

func createAssetsTable(ctx context.Context, pool *pgxpool.Pool) error {
	quotedTable := pgx.Identifier{assetsTable}.Sanitize()
	quotedProjects := pgx.Identifier{projectsTable}.Sanitize()
	indexProject := pgx.Identifier{fmt.Sprintf("idx_%s_project", assetsTable)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			project_id UUID NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			path TEXT NOT NULL UNIQUE,
			content_type TEXT NOT NULL,
			etag TEXT NOT NULL,
			file_size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (project_id, created_at);
	`,
		quotedTable, quotedProjects,
		indexProject, quotedTable,
	)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create assets table: %w", err)
	}
	return nil
}
