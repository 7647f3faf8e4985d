package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// PostFilter narrows down a post listing. ViewerID and IncludeRestricted
// together implement the visibility rule: restricted posts (draft or
// private status, or the is_private flag) are only listed for their author,
// unless IncludeRestricted is set by a caller holding the view-all override.
type PostFilter struct {
	Status            models.PostStatus
	AuthorID          *uuid.UUID
	CategorySlug      string
	TagSlug           string
	Search            string
	ViewerID          *uuid.UUID
	IncludeRestricted bool
	Offset            int
	Limit             int
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post with its content payload
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Data").Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post by its globally unique slug
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Data").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// CreateWithData persists a post and its content payload in one transaction.
// If the payload write fails the post row is rolled back with it.
func (r *PostRepository) CreateWithData(ctx context.Context, post *models.Post, data *models.PostData) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		data.PostID = post.ID
		return tx.Create(data).Error
	})
}

// Update applies the given column values to a post row
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateData applies the given column values to a post's content payload
func (r *PostRepository) UpdateData(ctx context.Context, postID uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.PostData{}).Where("post_id = ?", postID).Updates(fields).Error
}

// Delete removes a post together with its content payload and association rows
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostData{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Webmention{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}

// IncrementViewCount bumps view_count by exactly one. Returns false when no
// post row matched.
func (r *PostRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List retrieves a page of posts ordered by recency
func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Preload("Data")

	if !filter.IncludeRestricted {
		if filter.ViewerID != nil {
			q = q.Where("(status NOT IN ? AND is_private = ?) OR author_id = ?",
				[]models.PostStatus{models.StatusDraft, models.StatusPrivate}, false, *filter.ViewerID)
		} else {
			q = q.Where("status NOT IN ? AND is_private = ?",
				[]models.PostStatus{models.StatusDraft, models.StatusPrivate}, false)
		}
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		q = q.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.CategorySlug != "" {
		q = q.Where("id IN (?)", r.db.Model(&models.PostCategory{}).
			Select("post_categories.post_id").
			Joins("JOIN categories c ON c.id = post_categories.category_id").
			Where("c.slug = ?", filter.CategorySlug))
	}
	if filter.TagSlug != "" {
		q = q.Where("id IN (?)", r.db.Model(&models.PostTag{}).
			Select("post_tags.post_id").
			Joins("JOIN tags t ON t.id = post_tags.tag_id").
			Where("t.slug = ?", filter.TagSlug))
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var posts []*models.Post
	if err := q.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ReplaceCategories replaces a post's category associations
func (r *PostRepository) ReplaceCategories(ctx context.Context, postID uuid.UUID, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		for _, cid := range categoryIDs {
			pc := models.PostCategory{PostID: postID, CategoryID: cid}
			if err := tx.Create(&pc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceTags replaces a post's tag associations
func (r *PostRepository) ReplaceTags(ctx context.Context, postID uuid.UUID, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		for _, tid := range tagIDs {
			pt := models.PostTag{PostID: postID, TagID: tid}
			if err := tx.Create(&pt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CategoriesForPost retrieves the categories associated with a post
func (r *PostRepository) CategoriesForPost(ctx context.Context, postID uuid.UUID) ([]*models.Category, error) {
	var cats []*models.Category
	err := r.db.WithContext(ctx).
		Joins("JOIN post_categories pc ON pc.category_id = categories.id").
		Where("pc.post_id = ?", postID).
		Order("categories.id").
		Find(&cats).Error
	if err != nil {
		return nil, err
	}
	return cats, nil
}

// TagsForPost retrieves the tags associated with a post
func (r *PostRepository) TagsForPost(ctx context.Context, postID uuid.UUID) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN post_tags pt ON pt.tag_id = tags.id").
		Where("pt.post_id = ?", postID).
		Order("tags.id").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
