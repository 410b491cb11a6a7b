package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/ai"
	"github.com/aicreat/aicreat/auth"
	"github.com/aicreat/aicreat/config"
)

const (
	maxUploadFiles    = 50
	multipartOverhead = 1 << 20
	multipartMemory   = 32 << 20
)

type Repository interface {
	CreateProject(ctx context.Context, name string) (aicreat.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (aicreat.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	AddAsset(ctx context.Context, a aicreat.Asset) (aicreat.Asset, error)
	ListAssets(ctx context.Context, projectID uuid.UUID) ([]aicreat.Asset, error)
}

type Storage interface {
	Check(filename string) (string, error)
	Save(ctx context.Context, projectID uuid.UUID, filename string, content io.Reader) (aicreat.SavedFile, error)
	Delete(ctx context.Context, path string) error
	DeleteProject(ctx context.Context, projectID uuid.UUID) error
}

type TokenService interface {
	TokenVerifier
	Issue(subject string) (auth.Token, error)
}

type Providers interface {
	Enabled() []string
	Default() string
	Lookup(name string) (ai.Provider, error)
}

// Deps are the collaborators served by the API.
type Deps struct {
	Repo      Repository
	Storage   Storage
	Tokens    TokenService
	Providers Providers
}

// Handler provides the HTTP API.
type Handler struct {
	settings *config.Settings
	deps     Deps
}

// NewHandler creates a new Handler for the given settings snapshot.
func NewHandler(settings *config.Settings, deps Deps) *Handler {
	return &Handler{
		settings: settings,
		deps:     deps,
	}
}

// Router returns an http.Handler with every route mounted under the API prefix.
// Project and token routes require a bearer token.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.settings.CORS().Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route(h.settings.APIPrefix(), func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/providers", h.handleProviders)
		r.Get("/providers/{name}", h.handleProvider)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.deps.Tokens))
			r.Post("/auth/refresh", h.handleRefresh)
			r.Post("/projects/upload", h.handleUpload)
			r.Get("/projects/{id}/assets", h.handleListAssets)
			r.Delete("/projects/{id}", h.handleDeleteProject)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"project": h.settings.ProjectName(),
	})
}

type providersResponse struct {
	Providers       []string      `json:"providers"`
	DefaultProvider string        `json:"default_provider,omitempty"`
	Details         []ai.Provider `json:"details"`
}

func (h *Handler) handleProviders(w http.ResponseWriter, _ *http.Request) {
	enabled := h.deps.Providers.Enabled()
	details := make([]ai.Provider, 0, len(enabled))
	for _, name := range enabled {
		p, err := h.deps.Providers.Lookup(name)
		if err != nil {
			HandleError(w, err)
			return
		}
		details = append(details, p)
	}

	_ = WriteJSON(w, http.StatusOK, providersResponse{
		Providers:       enabled,
		DefaultProvider: h.deps.Providers.Default(),
		Details:         details,
	})
}

func (h *Handler) handleProvider(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Providers.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		HandleError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	subject, ok := Subject(r.Context())
	if !ok || h.deps.Tokens == nil {
		HandleError(w, aicreat.ErrUnauthorized)
		return
	}

	token, err := h.deps.Tokens.Issue(subject)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, token)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxFile := h.settings.Upload().MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(maxFile))

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(w, fmt.Errorf("request body exceeds %d bytes: %w", tooLarge.Limit, aicreat.ErrTooLarge))
			return
		}
		HandleError(w, fmt.Errorf("parse multipart form: %w", aicreat.ErrInvalidInput))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := slices.Concat(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"])
	if len(files) == 0 {
		HandleError(w, fmt.Errorf("no files: %w", aicreat.ErrInvalidInput))
		return
	}
	if len(files) > maxUploadFiles {
		HandleError(w, fmt.Errorf("at most %d files per upload: %w", maxUploadFiles, aicreat.ErrInvalidInput))
		return
	}

	project, err := h.deps.Repo.CreateProject(r.Context(), r.FormValue("projectName"))
	if err != nil {
		HandleError(w, err)
		return
	}

	result := aicreat.UploadResult{
		ProjectID: project.ID,
		Summary:   aicreat.UploadSummary{TotalFiles: len(files)},
	}

	seen := make(map[string]bool, len(files))
	for _, fh := range files {
		if err := h.storeFile(r.Context(), project.ID, fh, seen); err != nil {
			slog.Warn("upload failed", "project", project.ID, "file", fh.Filename, "err", err)
			result.FailedFiles = append(result.FailedFiles, fh.Filename)
			continue
		}
		result.Summary.SuccessfulUploads++
	}
	result.Summary.FailedUploads = len(result.FailedFiles)

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) storeFile(ctx context.Context, projectID uuid.UUID, fh *multipart.FileHeader, seen map[string]bool) error {
	cleaned, err := h.deps.Storage.Check(fh.Filename)
	if err != nil {
		return err
	}
	if seen[cleaned] {
		return fmt.Errorf("duplicate file %s: %w", cleaned, aicreat.ErrInvalidInput)
	}
	seen[cleaned] = true

	if maxFile := h.settings.Upload().MaxFileSize; fh.Size > maxFile {
		return fmt.Errorf("%s exceeds %d bytes: %w", cleaned, maxFile, aicreat.ErrTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open part: %w", err)
	}
	defer func() { _ = f.Close() }()

	saved, err := h.deps.Storage.Save(ctx, projectID, fh.Filename, f)
	if err != nil {
		return err
	}

	_, err = h.deps.Repo.AddAsset(ctx, aicreat.Asset{
		ProjectID:     projectID,
		Filename:      fh.Filename,
		Path:          saved.Path,
		ContentType:   saved.ContentType,
		Etag:          saved.Etag,
		FileSizeBytes: saved.BytesWritten,
	})
	if err != nil {
		if delErr := h.deps.Storage.Delete(ctx, saved.Path); delErr != nil {
			slog.Warn("failed to remove orphaned upload", "path", saved.Path, "err", delErr)
		}
		return err
	}
	return nil
}

func (h *Handler) handleListAssets(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if _, err := h.deps.Repo.GetProject(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	assets, err := h.deps.Repo.ListAssets(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, assets)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if err := h.deps.Repo.DeleteProject(r.Context(), id); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.deps.Storage.DeleteProject(r.Context(), id); err != nil {
		slog.Warn("failed to remove project files", "project", id, "err", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid project id")
		return uuid.Nil, false
	}
	return id, true
}

func bodyLimit(maxFile int64) int64 {
	if maxFile > (math.MaxInt64-multipartOverhead)/maxUploadFiles {
		return math.MaxInt64
	}
	return maxFile*maxUploadFiles + multipartOverhead
}
