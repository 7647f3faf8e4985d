package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// SiteRepository provides settings, theme and extension database operations
type SiteRepository struct {
	*Repository
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(repo *Repository) *SiteRepository {
	return &SiteRepository{Repository: repo}
}

// ListSettings retrieves all settings
func (r *SiteRepository) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	var settings []*models.Setting
	if err := r.db.WithContext(ctx).Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// GetSetting retrieves a setting by key
func (r *SiteRepository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

// SetSetting updates the value of an existing setting row
func (r *SiteRepository) SetSetting(ctx context.Context, key, value string) error {
	res := r.db.WithContext(ctx).Model(&models.Setting{}).
		Where("key = ?", key).
		Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListThemes retrieves all installed themes
func (r *SiteRepository) ListThemes(ctx context.Context) ([]*models.Theme, error) {
	var themes []*models.Theme
	if err := r.db.WithContext(ctx).Order("id").Find(&themes).Error; err != nil {
		return nil, err
	}
	return themes, nil
}

// GetThemeByID retrieves a theme by ID
func (r *SiteRepository) GetThemeByID(ctx context.Context, id int64) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).First(&theme, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &theme, nil
}

// GetActiveTheme retrieves the single active theme, or nil when none is active
func (r *SiteRepository) GetActiveTheme(ctx context.Context) (*models.Theme, error) {
	var theme models.Theme
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&theme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &theme, nil
}

// ActivateTheme deactivates every theme and activates the given one, all in
// one transaction so at most one row ever has is_active set.
func (r *SiteRepository) ActivateTheme(ctx context.Context, id int64) (*models.Theme, error) {
	var theme models.Theme
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&theme, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Theme{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Theme{}).Where("id = ?", id).
			Update("is_active", true).Error; err != nil {
			return err
		}
		theme.IsActive = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &theme, nil
}

// ListExtensions retrieves extensions, optionally only active ones
func (r *SiteRepository) ListExtensions(ctx context.Context, activeOnly bool) ([]*models.Extension, error) {
	q := r.db.WithContext(ctx).Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var exts []*models.Extension
	if err := q.Find(&exts).Error; err != nil {
		return nil, err
	}
	return exts, nil
}

// GetExtensionBySlug retrieves an extension by slug
func (r *SiteRepository) GetExtensionBySlug(ctx context.Context, slug string) (*models.Extension, error) {
	var ext models.Extension
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&ext).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ext, nil
}

// SetExtensionActive flips an extension's active flag. Returns the updated
// row, or nil when the slug is unknown.
func (r *SiteRepository) SetExtensionActive(ctx context.Context, slug string, active bool) (*models.Extension, error) {
	var ext models.Extension
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("slug = ?", slug).First(&ext).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Extension{}).Where("id = ?", ext.ID).
			Update("is_active", active).Error; err != nil {
			return err
		}
		ext.IsActive = active
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ext, nil
}
