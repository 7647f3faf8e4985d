package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// LikeStore is the persistence surface consumed by LikeService.
// *db.LikeRepository implements it.
type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	DeleteByUser(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	DeleteByIP(ctx context.Context, postID uuid.UUID, ip string) (bool, error)
	ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Like, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
}

// PostChecker resolves post existence for like operations
type PostChecker interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
}

// LikeService records likes by authenticated users, or by anonymous IP.
// Uniqueness per (post, user) and per (post, ip) is enforced by the store's
// constraints; a violation surfaces here as a benign conflict.
type LikeService struct {
	likes  LikeStore
	posts  PostChecker
	logger *zap.Logger
}

// NewLikeService creates a new like service
func NewLikeService(likes LikeStore, posts PostChecker) *LikeService {
	return &LikeService{
		likes:  likes,
		posts:  posts,
		logger: logging.WithComponent("like-service"),
	}
}

// Like records a like for the caller. Anonymous callers are keyed by IP.
// Liking an already-liked post is reported as a conflict, never a second row.
func (s *LikeService) Like(ctx context.Context, id auth.Identity, postID uuid.UUID, ip string) (*models.Like, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}

	like := &models.Like{
		ID:        uuid.New(),
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	if user, ok := id.User(); ok {
		uid := user.ID
		like.UserID = &uid
	} else {
		if ip == "" {
			return nil, Validationf("anonymous likes require a caller address")
		}
		like.IPAddress = sql.NullString{String: ip, Valid: true}
	}

	if err := s.likes.Create(ctx, like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("post %s already liked", postID)
		}
		return nil, err
	}

	s.logger.Debug("like recorded", zap.String("post_id", postID.String()))
	return like, nil
}

// Unlike removes the caller's like. Unliking a not-liked post is NotFound.
func (s *LikeService) Unlike(ctx context.Context, id auth.Identity, postID uuid.UUID, ip string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return NotFoundf("post %s", postID)
	}

	var removed bool
	if user, ok := id.User(); ok {
		removed, err = s.likes.DeleteByUser(ctx, postID, user.ID)
	} else {
		if ip == "" {
			return Validationf("anonymous unlikes require a caller address")
		}
		removed, err = s.likes.DeleteByIP(ctx, postID, ip)
	}
	if err != nil {
		return err
	}
	if !removed {
		return NotFoundf("like for post %s", postID)
	}
	return nil
}

// List returns the likes recorded against a post
func (s *LikeService) List(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Like, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}
	return s.likes.ListByPost(ctx, postID, offset, limit)
}

// Count returns the number of likes recorded against a post
func (s *LikeService) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	return s.likes.CountByPost(ctx, postID)
}
