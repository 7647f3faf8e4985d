package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
)

// stubTaxonomyStore keeps both vocabularies in memory and enforces slug
// uniqueness the way the database constraints would
type stubTaxonomyStore struct {
	categories map[int64]*models.Category
	tags       map[int64]*models.Tag
	nextID     int64
}

func newStubTaxonomyStore() *stubTaxonomyStore {
	return &stubTaxonomyStore{
		categories: map[int64]*models.Category{},
		tags:       map[int64]*models.Tag{},
	}
}

func (s *stubTaxonomyStore) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.categories[id], nil
}

func (s *stubTaxonomyStore) ListCategories(ctx context.Context, offset, limit int) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubTaxonomyStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	for _, c := range s.categories {
		if c.Slug == cat.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	cat.ID = s.nextID
	s.categories[cat.ID] = cat
	return nil
}

func (s *stubTaxonomyStore) UpdateCategory(ctx context.Context, id int64, fields map[string]interface{}) error {
	cat := s.categories[id]
	if cat == nil {
		return nil
	}
	if v, ok := fields["name"]; ok {
		cat.Name = v.(string)
	}
	return nil
}

func (s *stubTaxonomyStore) DeleteCategory(ctx context.Context, id int64) error {
	delete(s.categories, id)
	return nil
}

func (s *stubTaxonomyStore) GetTagByID(ctx context.Context, id int64) (*models.Tag, error) {
	return s.tags[id], nil
}

func (s *stubTaxonomyStore) ListTags(ctx context.Context, offset, limit int, search string) ([]*models.Tag, error) {
	var out []*models.Tag
	for _, tag := range s.tags {
		if search == "" || strings.Contains(tag.Name, search) {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (s *stubTaxonomyStore) CreateTag(ctx context.Context, tag *models.Tag) error {
	for _, t := range s.tags {
		if t.Slug == tag.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextID++
	tag.ID = s.nextID
	s.tags[tag.ID] = tag
	return nil
}

func (s *stubTaxonomyStore) UpdateTag(ctx context.Context, id int64, fields map[string]interface{}) error {
	return nil
}

func (s *stubTaxonomyStore) DeleteTag(ctx context.Context, id int64) error {
	delete(s.tags, id)
	return nil
}

func TestTaxonomyService_WritesAreGated(t *testing.T) {
	svc := NewTaxonomyService(newStubTaxonomyStore(), &stubGate{})

	_, err := svc.CreateCategory(context.Background(), auth.Authenticated(testUser("user")), CategoryInput{
		Name: "News", Slug: "news",
	})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	_, err = svc.CreateTag(context.Background(), auth.Anonymous(), TagInput{Name: "go", Slug: "go"})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaxonomyService_DuplicateSlugIsConflict(t *testing.T) {
	gate := &stubGate{perms: map[string]bool{PermUpdateSiteSettings: true}}
	svc := NewTaxonomyService(newStubTaxonomyStore(), gate)
	admin := auth.Authenticated(testUser("admin"))

	if _, err := svc.CreateCategory(context.Background(), admin, CategoryInput{Name: "News", Slug: "news"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.CreateCategory(context.Background(), admin, CategoryInput{Name: "Other", Slug: "news"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestTaxonomyService_TagSearch(t *testing.T) {
	gate := &stubGate{perms: map[string]bool{PermUpdateSiteSettings: true}}
	store := newStubTaxonomyStore()
	svc := NewTaxonomyService(store, gate)
	admin := auth.Authenticated(testUser("admin"))

	for _, name := range []string{"golang", "gardening", "music"} {
		if _, err := svc.CreateTag(context.Background(), admin, TagInput{Name: name, Slug: name}); err != nil {
			t.Fatalf("create tag %q failed: %v", name, err)
		}
	}

	found, err := svc.ListTags(context.Background(), 0, 10, "g")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected two matches for %q, got %d", "g", len(found))
	}
}

func TestTaxonomyService_DeleteUnknownIsNotFound(t *testing.T) {
	gate := &stubGate{perms: map[string]bool{PermUpdateSiteSettings: true}}
	svc := NewTaxonomyService(newStubTaxonomyStore(), gate)
	admin := auth.Authenticated(testUser("admin"))

	if err := svc.DeleteCategory(context.Background(), admin, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteTag(context.Background(), admin, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
