package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// TaxonomyStore is the persistence surface consumed by TaxonomyService.
// *db.TaxonomyRepository implements it.
type TaxonomyStore interface {
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	ListCategories(ctx context.Context, offset, limit int) ([]*models.Category, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	UpdateCategory(ctx context.Context, id int64, fields map[string]interface{}) error
	DeleteCategory(ctx context.Context, id int64) error
	GetTagByID(ctx context.Context, id int64) (*models.Tag, error)
	ListTags(ctx context.Context, offset, limit int, search string) ([]*models.Tag, error)
	CreateTag(ctx context.Context, tag *models.Tag) error
	UpdateTag(ctx context.Context, id int64, fields map[string]interface{}) error
	DeleteTag(ctx context.Context, id int64) error
}

// CategoryInput carries the writable category fields
type CategoryInput struct {
	Name        string
	Slug        string
	Description *string
}

// TagInput carries the writable tag fields
type TagInput struct {
	Name string
	Slug string
}

// TaxonomyService manages the category and tag vocabularies. Reads are open
// to everyone; writes require the site settings permission.
type TaxonomyService struct {
	store  TaxonomyStore
	gate   PermissionGate
	logger *zap.Logger
}

// NewTaxonomyService creates a new taxonomy service
func NewTaxonomyService(store TaxonomyStore, gate PermissionGate) *TaxonomyService {
	return &TaxonomyService{
		store:  store,
		gate:   gate,
		logger: logging.WithComponent("taxonomy-service"),
	}
}

// ListCategories returns a page of categories
func (s *TaxonomyService) ListCategories(ctx context.Context, offset, limit int) ([]*models.Category, error) {
	return s.store.ListCategories(ctx, offset, limit)
}

// GetCategory returns a single category by id
func (s *TaxonomyService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.store.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, NotFoundf("category %d", id)
	}
	return cat, nil
}

// CreateCategory adds a category to the vocabulary
func (s *TaxonomyService) CreateCategory(ctx context.Context, id auth.Identity, input CategoryInput) (*models.Category, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	if input.Name == "" || input.Slug == "" {
		return nil, Validationf("category name and slug are required")
	}

	cat := &models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: toNullString(input.Description),
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("category %q already exists", input.Slug)
		}
		return nil, err
	}

	s.logger.Info("category created", zap.String("slug", cat.Slug))
	return cat, nil
}

// UpdateCategory applies a partial update to a category
func (s *TaxonomyService) UpdateCategory(ctx context.Context, id auth.Identity, catID int64, input CategoryInput) (*models.Category, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	cat, err := s.store.GetCategoryByID(ctx, catID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, NotFoundf("category %d", catID)
	}

	fields := map[string]interface{}{}
	if input.Name != "" {
		fields["name"] = input.Name
	}
	if input.Slug != "" {
		fields["slug"] = input.Slug
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if len(fields) > 0 {
		if err := s.store.UpdateCategory(ctx, catID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, Conflictf("category %q already exists", input.Slug)
			}
			return nil, err
		}
	}
	return s.store.GetCategoryByID(ctx, catID)
}

// DeleteCategory removes a category and its post associations
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id auth.Identity, catID int64) error {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return err
	}
	cat, err := s.store.GetCategoryByID(ctx, catID)
	if err != nil {
		return err
	}
	if cat == nil {
		return NotFoundf("category %d", catID)
	}
	return s.store.DeleteCategory(ctx, catID)
}

// ListTags returns a page of tags, optionally filtered by a name search
func (s *TaxonomyService) ListTags(ctx context.Context, offset, limit int, search string) ([]*models.Tag, error) {
	return s.store.ListTags(ctx, offset, limit, search)
}

// GetTag returns a single tag by id
func (s *TaxonomyService) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	tag, err := s.store.GetTagByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, NotFoundf("tag %d", id)
	}
	return tag, nil
}

// CreateTag adds a tag to the vocabulary
func (s *TaxonomyService) CreateTag(ctx context.Context, id auth.Identity, input TagInput) (*models.Tag, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	if input.Name == "" || input.Slug == "" {
		return nil, Validationf("tag name and slug are required")
	}

	tag := &models.Tag{Name: input.Name, Slug: input.Slug}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("tag %q already exists", input.Slug)
		}
		return nil, err
	}

	s.logger.Info("tag created", zap.String("slug", tag.Slug))
	return tag, nil
}

// UpdateTag applies a partial update to a tag
func (s *TaxonomyService) UpdateTag(ctx context.Context, id auth.Identity, tagID int64, input TagInput) (*models.Tag, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, NotFoundf("tag %d", tagID)
	}

	fields := map[string]interface{}{}
	if input.Name != "" {
		fields["name"] = input.Name
	}
	if input.Slug != "" {
		fields["slug"] = input.Slug
	}
	if len(fields) > 0 {
		if err := s.store.UpdateTag(ctx, tagID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, Conflictf("tag %q already exists", input.Slug)
			}
			return nil, err
		}
	}
	return s.store.GetTagByID(ctx, tagID)
}

// DeleteTag removes a tag and its post associations
func (s *TaxonomyService) DeleteTag(ctx context.Context, id auth.Identity, tagID int64) error {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return err
	}
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return NotFoundf("tag %d", tagID)
	}
	return s.store.DeleteTag(ctx, tagID)
}
