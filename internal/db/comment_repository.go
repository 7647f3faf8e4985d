package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// CommentRepository provides comment database operations
type CommentRepository struct {
	*Repository
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(repo *Repository) *CommentRepository {
	return &CommentRepository{Repository: repo}
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create persists a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Update applies the given column values to a comment row
func (r *CommentRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a comment row. Child comments keep their parent reference;
// the tree is pruned lazily on read.
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{}).Error
}

// ListByPost retrieves a page of a post's comments ordered oldest first.
// When approvedOnly is set, rows outside the approved status are skipped.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool, offset, limit int) ([]*models.Comment, error) {
	q := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if approvedOnly {
		q = q.Where("status = ?", models.CommentApproved)
	}
	var comments []*models.Comment
	if err := q.Order("created_at").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
