package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// LikeRepository provides like database operations
type LikeRepository struct {
	*Repository
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(repo *Repository) *LikeRepository {
	return &LikeRepository{Repository: repo}
}

// Create persists a like. A duplicate (post, user) or (post, ip) pair
// surfaces as gorm.ErrDuplicatedKey via the unique indexes; two concurrent
// attempts are serialized by the store, exactly one row wins.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// DeleteByUser removes a user's like on a post. Returns false when no like existed.
func (r *LikeRepository) DeleteByUser(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByIP removes an anonymous like on a post. Returns false when no like existed.
func (r *LikeRepository) DeleteByIP(ctx context.Context, postID uuid.UUID, ip string) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND ip_address = ? AND user_id IS NULL", postID, ip).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByPost retrieves a page of a post's likes newest first
func (r *LikeRepository) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Like, error) {
	var likes []*models.Like
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// CountByPost returns the number of likes on a post
func (r *LikeRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// WebmentionRepository provides webmention database operations
type WebmentionRepository struct {
	*Repository
}

// NewWebmentionRepository creates a new webmention repository
func NewWebmentionRepository(repo *Repository) *WebmentionRepository {
	return &WebmentionRepository{Repository: repo}
}

// GetByID retrieves a webmention by ID
func (r *WebmentionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webmention, error) {
	var wm models.Webmention
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&wm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wm, nil
}

// Create persists a webmention. Duplicate (source_url, target_url) pairs
// surface as gorm.ErrDuplicatedKey.
func (r *WebmentionRepository) Create(ctx context.Context, wm *models.Webmention) error {
	return r.db.WithContext(ctx).Create(wm).Error
}

// Update applies the given column values to a webmention row
func (r *WebmentionRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Webmention{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a webmention row
func (r *WebmentionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Webmention{}).Error
}

// ListByPost retrieves a page of a post's webmentions newest first
func (r *WebmentionRepository) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Webmention, error) {
	var mentions []*models.Webmention
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&mentions).Error
	if err != nil {
		return nil, err
	}
	return mentions, nil
}
