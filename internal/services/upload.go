package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// FileStore is the persistence surface consumed by UploadService.
// *db.FileRepository implements it.
type FileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PostFile, error)
	Create(ctx context.Context, file *models.PostFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, postID *uuid.UUID, offset, limit int) ([]*models.PostFile, error)
}

// BlobStore holds the uploaded bytes. *storage.Store implements it.
type BlobStore interface {
	Save(filename string, r io.Reader) (int64, error)
	Open(filename string) (*os.File, error)
	Remove(filename string) error
	Path(filename string) string
}

// UploadInput carries an incoming file upload
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	PostID      *uuid.UUID
	Description *string
	Body        io.Reader
}

// UploadService stores uploaded files under generated identifiers and keeps
// a metadata row for each. Deleting removes the bytes first, best effort,
// then the row.
type UploadService struct {
	files   FileStore
	blobs   BlobStore
	gate    PermissionGate
	maxSize int64
	logger  *zap.Logger
}

// NewUploadService creates a new upload service. maxSize bounds accepted
// uploads in bytes; zero means unbounded.
func NewUploadService(files FileStore, blobs BlobStore, gate PermissionGate, maxSize int64) *UploadService {
	return &UploadService{
		files:   files,
		blobs:   blobs,
		gate:    gate,
		maxSize: maxSize,
		logger:  logging.WithComponent("upload-service"),
	}
}

// Upload writes the incoming bytes under a freshly generated name and
// records the metadata row. Requires authentication.
func (s *UploadService) Upload(ctx context.Context, id auth.Identity, input UploadInput) (*models.PostFile, error) {
	if _, ok := id.User(); !ok {
		return nil, auth.ErrUnauthenticated
	}
	if input.Filename == "" {
		return nil, Validationf("filename is required")
	}
	if s.maxSize > 0 && input.Size > s.maxSize {
		return nil, Validationf("file exceeds the %d byte upload limit", s.maxSize)
	}

	fileID := uuid.New()
	stored := fileID.String() + filepath.Ext(input.Filename)

	written, err := s.blobs.Save(stored, input.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	file := &models.PostFile{
		ID:          fileID,
		PostID:      input.PostID,
		FileURL:     "/media/" + stored,
		Filename:    input.Filename,
		FileType:    toNullString(&input.ContentType),
		FileSize:    sql.NullInt64{Int64: written, Valid: true},
		Description: toNullString(input.Description),
		UploadedAt:  time.Now().UTC(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		// keep disk and table consistent when the row cannot be written
		if rmErr := s.blobs.Remove(stored); rmErr != nil {
			s.logger.Warn("failed to clean up stored file after create error",
				zap.String("file", stored), zap.Error(rmErr))
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.String("file_id", fileID.String()),
		zap.String("filename", input.Filename),
		zap.Int64("bytes", written))
	return file, nil
}

// Get returns a file's metadata row
func (s *UploadService) Get(ctx context.Context, fileID uuid.UUID) (*models.PostFile, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, NotFoundf("file %s", fileID)
	}
	return file, nil
}

// List returns uploaded files, optionally scoped to one post
func (s *UploadService) List(ctx context.Context, postID *uuid.UUID, offset, limit int) ([]*models.PostFile, error) {
	return s.files.List(ctx, postID, offset, limit)
}

// Open returns a reader over the stored bytes along with the metadata row
func (s *UploadService) Open(ctx context.Context, fileID uuid.UUID) (*models.PostFile, *os.File, error) {
	file, err := s.Get(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.blobs.Open(s.storedName(file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, NotFoundf("stored bytes for file %s", fileID)
		}
		return nil, nil, err
	}
	return file, f, nil
}

// Delete removes the stored bytes and then the metadata row. A failure to
// remove the bytes is surfaced as a diagnostic but does not keep the row:
// the row is deleted regardless so no dangling record remains.
func (s *UploadService) Delete(ctx context.Context, id auth.Identity, fileID uuid.UUID) error {
	if err := s.gate.RequirePermission(ctx, id, PermManageFiles); err != nil {
		return err
	}
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil {
		return NotFoundf("file %s", fileID)
	}

	if err := s.blobs.Remove(s.storedName(file)); err != nil {
		s.logger.Warn("failed to remove stored bytes, deleting record anyway",
			zap.String("file_id", fileID.String()), zap.Error(err))
	}
	return s.files.Delete(ctx, fileID)
}

// storedName recovers the on-disk name from the public file URL
func (s *UploadService) storedName(file *models.PostFile) string {
	return filepath.Base(file.FileURL)
}
