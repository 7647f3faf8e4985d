package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// FileRepository provides uploaded-file metadata database operations
type FileRepository struct {
	*Repository
}

// NewFileRepository creates a new file repository
func NewFileRepository(repo *Repository) *FileRepository {
	return &FileRepository{Repository: repo}
}

// GetByID retrieves file metadata by ID
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PostFile, error) {
	var file models.PostFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// Create persists file metadata
func (r *FileRepository) Create(ctx context.Context, file *models.PostFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// Delete removes a file metadata row
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PostFile{}).Error
}

// List retrieves a page of file metadata, optionally filtered by post
func (r *FileRepository) List(ctx context.Context, postID *uuid.UUID, offset, limit int) ([]*models.PostFile, error) {
	q := r.db.WithContext(ctx).Order("uploaded_at DESC").Offset(offset).Limit(limit)
	if postID != nil {
		q = q.Where("post_id = ?", *postID)
	}
	var files []*models.PostFile
	if err := q.Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
