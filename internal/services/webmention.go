package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// WebmentionStore is the persistence surface consumed by WebmentionService.
// *db.WebmentionRepository implements it.
type WebmentionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webmention, error)
	Create(ctx context.Context, wm *models.Webmention) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Webmention, error)
}

// CreateWebmentionInput carries an externally-submitted mention
type CreateWebmentionInput struct {
	SourceURL   string
	TargetURL   string
	MentionType *string
	Content     *string
	AuthorName  *string
	AuthorURL   *string
	AuthorPhoto *string
}

// WebmentionService accepts notifications that an external page references
// a post. Mentions are unique per (source_url, target_url) and start pending
// until moderated.
type WebmentionService struct {
	mentions WebmentionStore
	posts    PostChecker
	gate     PermissionGate
	logger   *zap.Logger
}

// NewWebmentionService creates a new webmention service
func NewWebmentionService(mentions WebmentionStore, posts PostChecker, gate PermissionGate) *WebmentionService {
	return &WebmentionService{
		mentions: mentions,
		posts:    posts,
		gate:     gate,
		logger:   logging.WithComponent("webmention-service"),
	}
}

// ListByPost returns the mentions recorded against a post
func (s *WebmentionService) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Webmention, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}
	return s.mentions.ListByPost(ctx, postID, offset, limit)
}

// Create records a new mention against a post. A repeated (source, target)
// pair is reported as a conflict.
func (s *WebmentionService) Create(ctx context.Context, postID uuid.UUID, input CreateWebmentionInput) (*models.Webmention, error) {
	if input.SourceURL == "" || input.TargetURL == "" {
		return nil, Validationf("source and target URLs are required")
	}
	if input.MentionType != nil && !models.ValidWebmentionType(models.WebmentionType(*input.MentionType)) {
		return nil, Validationf("unknown mention type %q", *input.MentionType)
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}

	wm := &models.Webmention{
		ID:          uuid.New(),
		PostID:      postID,
		SourceURL:   input.SourceURL,
		TargetURL:   input.TargetURL,
		MentionType: toNullString(input.MentionType),
		Content:     toNullString(input.Content),
		AuthorName:  toNullString(input.AuthorName),
		AuthorURL:   toNullString(input.AuthorURL),
		AuthorPhoto: toNullString(input.AuthorPhoto),
		Status:      models.WebmentionPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.mentions.Create(ctx, wm); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("mention from %s already recorded", input.SourceURL)
		}
		return nil, err
	}

	s.logger.Info("webmention recorded",
		zap.String("post_id", postID.String()),
		zap.String("source", input.SourceURL))
	return wm, nil
}

// SetStatus moves a mention through its verification states. Requires the
// comment moderation permission.
func (s *WebmentionService) SetStatus(ctx context.Context, id auth.Identity, mentionID uuid.UUID, status models.WebmentionStatus) (*models.Webmention, error) {
	if err := s.gate.RequirePermission(ctx, id, PermModerateComments); err != nil {
		return nil, err
	}
	switch status {
	case models.WebmentionPending, models.WebmentionVerified, models.WebmentionRejected:
	default:
		return nil, Validationf("unknown webmention status %q", status)
	}

	wm, err := s.mentions.GetByID(ctx, mentionID)
	if err != nil {
		return nil, err
	}
	if wm == nil {
		return nil, NotFoundf("webmention %s", mentionID)
	}
	if err := s.mentions.Update(ctx, mentionID, map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}
	wm.Status = status
	return wm, nil
}

// Delete removes a mention. Requires the comment moderation permission.
func (s *WebmentionService) Delete(ctx context.Context, id auth.Identity, mentionID uuid.UUID) error {
	if err := s.gate.RequirePermission(ctx, id, PermModerateComments); err != nil {
		return err
	}
	wm, err := s.mentions.GetByID(ctx, mentionID)
	if err != nil {
		return err
	}
	if wm == nil {
		return NotFoundf("webmention %s", mentionID)
	}
	return s.mentions.Delete(ctx, mentionID)
}
