package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
)

// stubGate grants exactly the permissions in its set. Anonymous callers are
// rejected with ErrUnauthenticated, authenticated ones with ErrForbidden.
type stubGate struct {
	perms       map[string]bool
	invalidated []int64
}

func (g *stubGate) RequirePermission(ctx context.Context, id auth.Identity, permission string) error {
	if g.perms[permission] {
		return nil
	}
	if id.IsAnonymous() {
		return auth.ErrUnauthenticated
	}
	return auth.ErrForbidden
}

func (g *stubGate) EffectivePermissions(ctx context.Context, id auth.Identity) ([]string, error) {
	names := make([]string, 0, len(g.perms))
	for name, held := range g.perms {
		if held {
			names = append(names, name)
		}
	}
	return names, nil
}

func (g *stubGate) InvalidateRole(roleID int64) {
	g.invalidated = append(g.invalidated, roleID)
}

// stubPostChecker resolves post existence from an in-memory map
type stubPostChecker struct {
	posts map[uuid.UUID]*models.Post
}

func (s *stubPostChecker) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.posts[id], nil
}

// stubLikeStore keeps likes in a slice and enforces the per-user and per-IP
// uniqueness pairs the way the database constraints would
type stubLikeStore struct {
	likes []*models.Like
}

func (s *stubLikeStore) Create(ctx context.Context, like *models.Like) error {
	for _, l := range s.likes {
		if l.PostID != like.PostID {
			continue
		}
		if like.UserID != nil && l.UserID != nil && *l.UserID == *like.UserID {
			return gorm.ErrDuplicatedKey
		}
		if like.IPAddress.Valid && l.IPAddress.Valid && l.IPAddress.String == like.IPAddress.String {
			return gorm.ErrDuplicatedKey
		}
	}
	s.likes = append(s.likes, like)
	return nil
}

func (s *stubLikeStore) DeleteByUser(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	for i, l := range s.likes {
		if l.PostID == postID && l.UserID != nil && *l.UserID == userID {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubLikeStore) DeleteByIP(ctx context.Context, postID uuid.UUID, ip string) (bool, error) {
	for i, l := range s.likes {
		if l.PostID == postID && l.IPAddress.Valid && l.IPAddress.String == ip {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *stubLikeStore) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Like, error) {
	var out []*models.Like
	for _, l := range s.likes {
		if l.PostID == postID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLikeStore) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var n int64
	for _, l := range s.likes {
		if l.PostID == postID {
			n++
		}
	}
	return n, nil
}

func testUser(role string) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "tester",
		Email:    "tester@example.com",
		RoleID:   2,
		Role:     &models.Role{ID: 2, Name: role},
	}
}

func testPost(authorID uuid.UUID) *models.Post {
	return &models.Post{
		ID:       uuid.New(),
		AuthorID: authorID,
		Feather:  models.FeatherText,
		Slug:     "hello",
		Status:   models.StatusPublished,
	}
}
