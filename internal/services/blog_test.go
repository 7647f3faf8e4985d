package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/db"
	"github.com/featherpress/featherpress/internal/models"
)

// stubPostStore keeps posts and their payloads in memory and enforces slug
// uniqueness the way the database constraint would
type stubPostStore struct {
	posts map[uuid.UUID]*models.Post
	data  map[uuid.UUID]*models.PostData
}

func newStubPostStore() *stubPostStore {
	return &stubPostStore{
		posts: map[uuid.UUID]*models.Post{},
		data:  map[uuid.UUID]*models.PostData{},
	}
}

func (s *stubPostStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return detach(s.posts[id]), nil
}

func (s *stubPostStore) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			return detach(p), nil
		}
	}
	return nil, nil
}

// detach mimics a fresh row fetch: mutations on the returned value do not
// touch the stored one
func detach(p *models.Post) *models.Post {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (s *stubPostStore) CreateWithData(ctx context.Context, post *models.Post, data *models.PostData) error {
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	s.posts[post.ID] = post
	data.PostID = post.ID
	s.data[post.ID] = data
	return nil
}

func (s *stubPostStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	post := s.posts[id]
	if post == nil {
		return nil
	}
	if v, ok := fields["status"]; ok {
		post.Status = v.(models.PostStatus)
	}
	if v, ok := fields["is_private"]; ok {
		post.IsPrivate = v.(bool)
	}
	return nil
}

func (s *stubPostStore) UpdateData(ctx context.Context, postID uuid.UUID, fields map[string]interface{}) error {
	return nil
}

func (s *stubPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.posts, id)
	delete(s.data, id)
	return nil
}

func (s *stubPostStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error) {
	post := s.posts[id]
	if post == nil {
		return false, nil
	}
	post.ViewCount++
	return true, nil
}

func (s *stubPostStore) List(ctx context.Context, filter db.PostFilter) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range s.posts {
		if p.Status.Restricted() || p.IsPrivate {
			if filter.IncludeRestricted {
				out = append(out, p)
				continue
			}
			if filter.ViewerID != nil && *filter.ViewerID == p.AuthorID {
				out = append(out, p)
			}
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *stubPostStore) ReplaceCategories(ctx context.Context, postID uuid.UUID, categoryIDs []int64) error {
	return nil
}

func (s *stubPostStore) ReplaceTags(ctx context.Context, postID uuid.UUID, tagIDs []int64) error {
	return nil
}

func (s *stubPostStore) CategoriesForPost(ctx context.Context, postID uuid.UUID) ([]*models.Category, error) {
	return nil, nil
}

func (s *stubPostStore) TagsForPost(ctx context.Context, postID uuid.UUID) ([]*models.Tag, error) {
	return nil, nil
}

func newBlogFixture(perms map[string]bool) (*BlogService, *stubPostStore) {
	store := newStubPostStore()
	likes := &stubLikeStore{}
	gate := &stubGate{perms: perms}
	return NewBlogService(store, likes, gate), store
}

func strPtr(s string) *string { return &s }

func TestBlogService_CreateRequiresAuthentication(t *testing.T) {
	svc, _ := newBlogFixture(nil)

	_, err := svc.Create(context.Background(), auth.Anonymous(), CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "hello",
	})
	if !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestBlogService_SlugConflictLeavesNoPartialRows(t *testing.T) {
	svc, store := newBlogFixture(nil)
	caller := auth.Authenticated(testUser("user"))

	first := CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "hello",
		Status:  models.StatusPublished,
		Content: strPtr("first"),
	}
	if _, err := svc.Create(context.Background(), caller, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := first
	second.Content = strPtr("second")
	_, err := svc.Create(context.Background(), caller, second)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate slug, got %v", err)
	}
	if len(store.posts) != 1 || len(store.data) != 1 {
		t.Errorf("expected exactly one post and one payload row, got %d posts %d payloads",
			len(store.posts), len(store.data))
	}
}

func TestBlogService_CreateValidatesInput(t *testing.T) {
	svc, _ := newBlogFixture(nil)
	caller := auth.Authenticated(testUser("user"))

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"missing slug", CreatePostInput{Feather: models.FeatherText}},
		{"unknown feather", CreatePostInput{Feather: "gif", Slug: "x"}},
		{"unknown status", CreatePostInput{Feather: models.FeatherText, Slug: "x", Status: "archived"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), caller, tt.input)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestBlogService_GetBySlugIncrementsViewCount(t *testing.T) {
	svc, _ := newBlogFixture(nil)
	caller := auth.Authenticated(testUser("user"))

	if _, err := svc.Create(context.Background(), caller, CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "hello",
		Status:  models.StatusPublished,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		view, err := svc.GetBySlug(context.Background(), auth.Anonymous(), "hello")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if view.ViewCount != want {
			t.Errorf("expected view count %d, got %d", want, view.ViewCount)
		}
	}
}

func TestBlogService_RestrictedPostHiddenAsNotFound(t *testing.T) {
	svc, _ := newBlogFixture(nil)
	author := testUser("user")

	if _, err := svc.Create(context.Background(), auth.Authenticated(author), CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "secret",
		Status:  models.StatusDraft,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// anonymous and unrelated users cannot learn the slug exists
	if _, err := svc.GetBySlug(context.Background(), auth.Anonymous(), "secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for anonymous caller, got %v", err)
	}
	other := testUser("user")
	if _, err := svc.GetBySlug(context.Background(), auth.Authenticated(other), "secret"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unrelated user, got %v", err)
	}

	// the author still sees it
	if _, err := svc.GetBySlug(context.Background(), auth.Authenticated(author), "secret"); err != nil {
		t.Errorf("author should see own draft, got %v", err)
	}
}

func TestBlogService_ViewAllOverrideSeesDrafts(t *testing.T) {
	svc, _ := newBlogFixture(map[string]bool{PermViewAllPosts: true})
	author := testUser("user")

	if _, err := svc.Create(context.Background(), auth.Authenticated(author), CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "secret",
		Status:  models.StatusDraft,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	moderator := testUser("admin")
	if _, err := svc.GetBySlug(context.Background(), auth.Authenticated(moderator), "secret"); err != nil {
		t.Errorf("override holder should see the draft, got %v", err)
	}
}

func TestBlogService_UpdateRequiresAuthorOrOverride(t *testing.T) {
	svc, store := newBlogFixture(nil)
	author := testUser("user")

	view, err := svc.Create(context.Background(), auth.Authenticated(author), CreatePostInput{
		Feather: models.FeatherText,
		Slug:    "hello",
		Status:  models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	other := testUser("user")
	_, err = svc.Update(context.Background(), auth.Authenticated(other), view.ID, UpdatePostInput{
		Title: strPtr("hijacked"),
	})
	if !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-author, got %v", err)
	}

	if err := svc.Delete(context.Background(), auth.Anonymous(), view.ID); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for anonymous delete, got %v", err)
	}
	if len(store.posts) != 1 {
		t.Error("post was removed by an unauthorized caller")
	}
}

func TestBlogService_ListHidesRestrictedFromAnonymous(t *testing.T) {
	svc, _ := newBlogFixture(nil)
	author := testUser("user")
	caller := auth.Authenticated(author)

	for _, in := range []CreatePostInput{
		{Feather: models.FeatherText, Slug: "public", Status: models.StatusPublished},
		{Feather: models.FeatherText, Slug: "draft", Status: models.StatusDraft},
	} {
		if _, err := svc.Create(context.Background(), caller, in); err != nil {
			t.Fatalf("create %q failed: %v", in.Slug, err)
		}
	}

	anon, err := svc.List(context.Background(), auth.Anonymous(), ListPostsInput{})
	if err != nil {
		t.Fatalf("anonymous list failed: %v", err)
	}
	if len(anon) != 1 || anon[0].Slug != "public" {
		t.Errorf("anonymous caller should see only the published post, got %d posts", len(anon))
	}

	own, err := svc.List(context.Background(), caller, ListPostsInput{})
	if err != nil {
		t.Fatalf("author list failed: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("author should see both posts, got %d", len(own))
	}
}
