package aicreat

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Asset struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	Filename      string    `json:"filename"`
	Path          string    `json:"path"`
	ContentType   string    `json:"content_type"`
	Etag          string    `json:"etag"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}

// SavedFile describes a file written to upload storage.
type SavedFile struct {
	Path         string
	BytesWritten int64
	Etag         string
	ContentType  string
}

type UploadSummary struct {
	TotalFiles        int `json:"total_files"`
	SuccessfulUploads int `json:"successful_uploads"`
	FailedUploads     int `json:"failed_uploads"`
}

type UploadResult struct {
	ProjectID   uuid.UUID     `json:"project_id"`
	Summary     UploadSummary `json:"summary"`
	FailedFiles []string      `json:"failed_files,omitempty"`
}
