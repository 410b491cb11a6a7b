package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aicreat/aicreat"
)

// Repo persists projects and their uploaded assets.
type Repo struct {
	pool *pgxpool.Pool
}

func (r *Repo) CreateProject(ctx context.Context, name string) (aicreat.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return aicreat.Project{}, fmt.Errorf("create project: empty name: %w", aicreat.ErrInvalidInput)
	}

	query := `
		INSERT INTO projects (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`

	var p aicreat.Project
	if err := r.pool.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return aicreat.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (r *Repo) GetProject(ctx context.Context, id uuid.UUID) (aicreat.Project, error) {
	query := `
		SELECT id, name, created_at
		FROM projects
		WHERE id = $1
	`

	var p aicreat.Project
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return aicreat.Project{}, aicreat.ErrNotFound
		}
		return aicreat.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project and, by cascade, its assets.
func (r *Repo) DeleteProject(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete project: %w", aicreat.ErrNotFound)
	}
	return nil
}

// AddAsset records an uploaded file. ID and CreatedAt are assigned by the database.
func (r *Repo) AddAsset(ctx context.Context, a aicreat.Asset) (aicreat.Asset, error) {
	query := `
		INSERT INTO assets (project_id, filename, path, content_type, etag, file_size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, project_id, filename, path, content_type, etag, file_size_bytes, created_at
	`

	var m aicreat.Asset
	err := r.pool.QueryRow(ctx, query, a.ProjectID, a.Filename, a.Path, a.ContentType, a.Etag, a.FileSizeBytes).Scan(
		&m.ID, &m.ProjectID, &m.Filename, &m.Path, &m.ContentType, &m.Etag, &m.FileSizeBytes, &m.CreatedAt,
	)
	if err != nil {
		return aicreat.Asset{}, fmt.Errorf("add asset: %w", err)
	}
	return m, nil
}

// ListAssets returns a project's assets, oldest first.
func (r *Repo) ListAssets(ctx context.Context, projectID uuid.UUID) ([]aicreat.Asset, error) {
	query := `
		SELECT id, project_id, filename, path, content_type, etag, file_size_bytes, created_at
		FROM assets
		WHERE project_id = $1
		ORDER BY created_at, path
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	items := make([]aicreat.Asset, 0)
	for rows.Next() {
		var m aicreat.Asset
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Filename, &m.Path, &m.ContentType, &m.Etag, &m.FileSizeBytes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("list assets: scan: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: rows: %w", err)
	}
	return items, nil
}
