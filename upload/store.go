// Package upload stores uploaded images under the configured upload directory.
// It enforces the configured size limit and extension allow-list, writes
// atomically using temp files, and computes SHA256-based etags.
package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

const tmpPrefix = ".t"

// Content types for allowed extensions the system mime table may lack.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".psd":  "image/vnd.adobe.photoshop",
	".tiff": "image/tiff",
}

// Store provides upload storage operations.
type Store struct {
	root *os.Root
	cfg  config.UploadConfig
}

// OpenRoot creates the upload directory if needed and opens it as a root.
func OpenRoot(cfg config.UploadConfig) (*os.Root, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("open upload root: %w", err)
	}
	return root, nil
}

// NewStore creates a new Store with the given root directory and limits.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root, cfg config.UploadConfig) *Store {
	return &Store{root: root, cfg: cfg}
}

// Check validates a filename against the allow-list and returns its cleaned form.
func (s *Store) Check(filename string) (string, error) {
	cleaned, err := aicreat.CleanFilename(filename)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(cleaned)
	if !s.cfg.IsAllowedExtension(ext) {
		return "", fmt.Errorf("%s: %w (allowed: %s)", cleaned, aicreat.ErrUnsupportedType,
			strings.Join(s.cfg.AllowedExtensions(), ", "))
	}
	return cleaned, nil
}

// Open opens a stored file for reading. Returns aicreat.ErrNotFound if the file does not exist.
func (s *Store) Open(ctx context.Context, p string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, aicreat.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Save atomically writes content to <projectID>/<filename> using a temp file and rename.
// The filename is cleaned and must carry an allowed extension. Content larger than
// the configured maximum is rejected with aicreat.ErrTooLarge and nothing is kept.
// The operation respects context cancellation.
func (s *Store) Save(ctx context.Context, projectID uuid.UUID, filename string, content io.Reader) (aicreat.SavedFile, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return aicreat.SavedFile{}, ctxErr
	}

	cleaned, err := s.Check(filename)
	if err != nil {
		return aicreat.SavedFile{}, err
	}
	dest := path.Join(projectID.String(), cleaned)

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return aicreat.SavedFile{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	// read one byte past the limit to detect oversized content
	limited := io.LimitReader(&ctxReader{ctx: ctx, r: content}, s.cfg.MaxFileSize+1)
	fileSizeBytes, err := io.Copy(w, limited)
	if err != nil {
		return aicreat.SavedFile{}, fmt.Errorf("could not copy file contents: %w", err)
	}
	if fileSizeBytes > s.cfg.MaxFileSize {
		return aicreat.SavedFile{}, fmt.Errorf("%s exceeds %d bytes: %w", cleaned, s.cfg.MaxFileSize, aicreat.ErrTooLarge)
	}

	err = t.Sync()
	if err != nil {
		return aicreat.SavedFile{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.MkdirAll(projectID.String(), 0o755); err != nil {
		return aicreat.SavedFile{}, fmt.Errorf("could not create project directory: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return aicreat.SavedFile{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true

	return aicreat.SavedFile{
		Path:         dest,
		BytesWritten: fileSizeBytes,
		Etag:         hex.EncodeToString(h.Sum(nil)),
		ContentType:  detectContentType(dest),
	}, nil
}

// Delete removes a file. Returns aicreat.ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.root.Remove(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return aicreat.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// DeleteProject removes every file stored for a project. A project with no
// files is not an error.
func (s *Store) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.root.RemoveAll(projectID.String()); err != nil {
		return fmt.Errorf("could not delete project files: %w", err)
	}
	return nil
}

// Projects returns the IDs of project directories present in storage.
// Entries that are not project directories are skipped.
func (s *Store) Projects(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("could not list upload directory: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, parseErr := uuid.Parse(e.Name())
		if parseErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveTemp deletes temp files left behind by interrupted saves and
// returns how many were removed.
func (s *Store) RemoveTemp(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	entries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return 0, fmt.Errorf("could not list upload directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		if err := s.root.Remove(e.Name()); err != nil {
			return removed, fmt.Errorf("could not remove temp file: %w", err)
		}
		removed++
	}
	return removed, nil
}

func detectContentType(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if ct, ok := imageContentTypes[ext]; ok {
		return ct
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
