// Package uploads coordinates the upload-then-link sequence shared by the
// result-upload flows: store the bytes, resolve the public URL, complete the
// matching pending request, and write the result record.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vortexmedx/medconnect-backend/internal/models"
	"github.com/vortexmedx/medconnect-backend/internal/storage"
)

// RequestStore reads and completes pending test requests.
type RequestStore interface {
	// OpenForPatient returns the oldest pending request for the patient,
	// or nil when none exists.
	OpenForPatient(ctx context.Context, patientID string) (*models.TestRequest, error)
	Complete(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ResultStore writes result rows.
type ResultStore interface {
	Insert(ctx context.Context, result *models.TestResult) error
}

// FileStore mirrors bucket objects into the medical_files table.
type FileStore interface {
	Insert(ctx context.Context, file *models.StoredFile) error
}

type Input struct {
	SubjectID   string // the patient the file belongs to
	UploadedBy  string // the account performing the upload
	FileName    string
	Category    string // bucket folder, e.g. "Test Result"
	ContentType string
	Content     io.Reader
}

// Coordinator runs the sequence. Each step depends on the previous one
// succeeding; a failure after the bytes landed triggers a compensating blob
// delete so the bucket does not accumulate unlinked objects.
type Coordinator struct {
	store    storage.ObjectStore
	requests RequestStore
	results  ResultStore
	files    FileStore
}

func NewCoordinator(store storage.ObjectStore, requests RequestStore, results ResultStore, files FileStore) *Coordinator {
	return &Coordinator{store: store, requests: requests, results: results, files: files}
}

// UploadAndLink returns the id of the written result row.
func (c *Coordinator) UploadAndLink(ctx context.Context, in Input) (uuid.UUID, error) {
	if in.FileName == "" {
		return uuid.Nil, storage.ErrMissingFileName
	}

	data, err := io.ReadAll(in.Content)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read file: %w", err)
	}

	path := storage.ObjectPath(in.Category, in.SubjectID, in.FileName)
	fileURL, err := c.store.Upload(ctx, path, bytes.NewReader(data), in.ContentType)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upload file: %w", err)
	}

	resultID, err := c.link(ctx, in, path, fileURL)
	if err != nil {
		c.compensate(ctx, path, in.SubjectID)
		return uuid.Nil, err
	}
	return resultID, nil
}

func (c *Coordinator) link(ctx context.Context, in Input, path, fileURL string) (uuid.UUID, error) {
	var requestID *uuid.UUID
	pending, err := c.requests.OpenForPatient(ctx, in.SubjectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up pending requests: %w", err)
	}
	if pending != nil {
		if err := c.requests.Complete(ctx, pending.ID, time.Now()); err != nil {
			return uuid.Nil, fmt.Errorf("failed to complete request: %w", err)
		}
		requestID = &pending.ID
	}

	result := models.TestResult{
		ID:         uuid.New(),
		RequestID:  requestID,
		PatientID:  in.SubjectID,
		UploadedBy: in.UploadedBy,
		FileName:   in.FileName,
		FileType:   fileType(in.FileName),
		FileURL:    fileURL,
	}
	if err := c.results.Insert(ctx, &result); err != nil {
		return uuid.Nil, fmt.Errorf("failed to write result record: %w", err)
	}

	// The file mirror row is bookkeeping, not part of the contract; losing
	// it does not undo an otherwise linked upload.
	file := models.StoredFile{
		ID:         uuid.New(),
		UploadedBy: in.UploadedBy,
		Path:       path,
		FileName:   in.FileName,
		FileType:   result.FileType,
		PublicURL:  fileURL,
	}
	if err := c.files.Insert(ctx, &file); err != nil {
		slog.Warn("failed to record uploaded file", "path", path, "error", err)
	}

	return result.ID, nil
}

func (c *Coordinator) compensate(ctx context.Context, path, subjectID string) {
	if err := c.store.Delete(ctx, path); err != nil {
		// Orphaned blob: bytes are stored but nothing references them.
		slog.Error("compensating blob delete failed",
			"subject_id", subjectID,
			"action", "upload_compensation",
			"path", path,
			"error", err.Error())
	}
}

func fileType(fileName string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
}
