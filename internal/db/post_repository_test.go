package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/featherpress/featherpress/internal/models"
)

func newTestDB(t *testing.T) *Repository {
	t.Helper()
	// A file-backed database keeps every pooled connection on the same data,
	// which an in-memory DSN does not guarantee.
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	err = gdb.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Post{},
		&models.PostData{},
		&models.PostCategory{},
		&models.PostTag{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return NewRepository(gdb)
}

func insertPost(t *testing.T, repo *PostRepository, authorID uuid.UUID, slug string, status models.PostStatus, private bool) *models.Post {
	t.Helper()
	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Feather:   models.FeatherText,
		Slug:      slug,
		Status:    status,
		IsPrivate: private,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data := &models.PostData{ID: uuid.New()}
	if err := repo.CreateWithData(context.Background(), post, data); err != nil {
		t.Fatalf("insert post %s: %v", slug, err)
	}
	return post
}

func TestPostRepository_List_Visibility(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()

	author := uuid.New()
	other := uuid.New()

	insertPost(t, repo, author, "public-post", models.StatusPublished, false)
	insertPost(t, repo, author, "draft-post", models.StatusDraft, false)
	insertPost(t, repo, author, "private-status", models.StatusPrivate, false)
	insertPost(t, repo, author, "private-flag", models.StatusPublished, true)

	slugs := func(posts []*models.Post) map[string]bool {
		out := make(map[string]bool, len(posts))
		for _, p := range posts {
			out[p.Slug] = true
		}
		return out
	}

	t.Run("anonymous sees only unrestricted published posts", func(t *testing.T) {
		posts, err := repo.List(ctx, PostFilter{})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(posts) != 1 || posts[0].Slug != "public-post" {
			t.Errorf("anonymous listing = %v, want only public-post", slugs(posts))
		}
	})

	t.Run("published but flagged private is hidden from other viewers", func(t *testing.T) {
		posts, err := repo.List(ctx, PostFilter{ViewerID: &other})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if got := slugs(posts); got["private-flag"] || got["draft-post"] || got["private-status"] {
			t.Errorf("restricted posts leaked to unrelated viewer: %v", got)
		}
	})

	t.Run("author sees own restricted posts", func(t *testing.T) {
		posts, err := repo.List(ctx, PostFilter{ViewerID: &author})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(posts) != 4 {
			t.Errorf("author listing = %v, want all four posts", slugs(posts))
		}
	})

	t.Run("view-all override sees everything", func(t *testing.T) {
		posts, err := repo.List(ctx, PostFilter{IncludeRestricted: true})
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(posts) != 4 {
			t.Errorf("override listing = %v, want all four posts", slugs(posts))
		}
	})
}

func TestPostRepository_IncrementViewCount(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()

	post := insertPost(t, repo, uuid.New(), "counted", models.StatusPublished, false)

	for i := 0; i < 3; i++ {
		matched, err := repo.IncrementViewCount(ctx, post.ID)
		if err != nil || !matched {
			t.Fatalf("IncrementViewCount() = (%v, %v), want match", matched, err)
		}
	}

	got, err := repo.GetByID(ctx, post.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID() = (%v, %v)", got, err)
	}
	if got.ViewCount != 3 {
		t.Errorf("view count = %d, want 3", got.ViewCount)
	}

	matched, err := repo.IncrementViewCount(ctx, uuid.New())
	if err != nil || matched {
		t.Errorf("IncrementViewCount(unknown) = (%v, %v), want no match", matched, err)
	}
}
