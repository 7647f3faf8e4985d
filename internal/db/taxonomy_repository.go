package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// TaxonomyRepository provides category and tag database operations
type TaxonomyRepository struct {
	*Repository
}

// NewTaxonomyRepository creates a new taxonomy repository
func NewTaxonomyRepository(repo *Repository) *TaxonomyRepository {
	return &TaxonomyRepository{Repository: repo}
}

// GetCategoryByID retrieves a category by ID
func (r *TaxonomyRepository) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := r.db.WithContext(ctx).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// ListCategories retrieves a page of categories
func (r *TaxonomyRepository) ListCategories(ctx context.Context, offset, limit int) ([]*models.Category, error) {
	var cats []*models.Category
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategory creates a new category
func (r *TaxonomyRepository) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

// UpdateCategory applies the given column values to a category row
func (r *TaxonomyRepository) UpdateCategory(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteCategory removes a category and its post associations
func (r *TaxonomyRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

// GetTagByID retrieves a tag by ID
func (r *TaxonomyRepository) GetTagByID(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// ListTags retrieves a page of tags, optionally matching a name search
func (r *TaxonomyRepository) ListTags(ctx context.Context, offset, limit int, search string) ([]*models.Tag, error) {
	q := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit)
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	var tags []*models.Tag
	if err := q.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a new tag
func (r *TaxonomyRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// UpdateTag applies the given column values to a tag row
func (r *TaxonomyRepository) UpdateTag(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteTag removes a tag and its post associations
func (r *TaxonomyRepository) DeleteTag(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
}
