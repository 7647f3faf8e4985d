package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// CommentStore is the persistence surface consumed by CommentService.
// *db.CommentRepository implements it.
type CommentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool, offset, limit int) ([]*models.Comment, error)
}

// CreateCommentInput carries the fields accepted at comment creation.
// Guest authors set the Author* fields; authenticated callers override them.
type CreateCommentInput struct {
	Content     string
	ParentID    *uuid.UUID
	AuthorName  *string
	AuthorEmail *string
	AuthorURL   *string
}

// UpdateCommentInput carries partial comment updates
type UpdateCommentInput struct {
	Content *string
	Status  *models.CommentStatus
}

// CommentService manages the comment tree under each post. New comments
// start pending; moderation requires the moderate-comments permission.
type CommentService struct {
	comments CommentStore
	posts    PostChecker
	gate     PermissionGate
	logger   *zap.Logger
}

// NewCommentService creates a new comment service
func NewCommentService(comments CommentStore, posts PostChecker, gate PermissionGate) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		gate:     gate,
		logger:   logging.WithComponent("comment-service"),
	}
}

// ListByPost returns a post's comments oldest first. Moderators see every
// status; everyone else sees approved comments only.
func (s *CommentService) ListByPost(ctx context.Context, id auth.Identity, postID uuid.UUID, offset, limit int) ([]*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}

	approvedOnly := !holdsPermission(ctx, s.gate, id, PermModerateComments)
	return s.comments.ListByPost(ctx, postID, approvedOnly, offset, limit)
}

// Get returns a single comment by id
func (s *CommentService) Get(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, NotFoundf("comment %s", commentID)
	}
	return comment, nil
}

// Create persists a new comment in the pending state. Anonymous callers
// must supply a guest author name.
func (s *CommentService) Create(ctx context.Context, id auth.Identity, postID uuid.UUID, ip string, input CreateCommentInput) (*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}
	if input.Content == "" {
		return nil, Validationf("comment content is required")
	}

	if input.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != postID {
			return nil, Validationf("parent comment does not belong to post %s", postID)
		}
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ID:              uuid.New(),
		PostID:          postID,
		ParentCommentID: input.ParentID,
		Content:         input.Content,
		Status:          models.CommentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ip != "" {
		comment.IPAddress = sql.NullString{String: ip, Valid: true}
	}
	if user, ok := id.User(); ok {
		uid := user.ID
		comment.AuthorID = &uid
		comment.AuthorName = sql.NullString{String: user.Username, Valid: true}
	} else {
		if input.AuthorName == nil || *input.AuthorName == "" {
			return nil, Validationf("guest comments require an author name")
		}
		comment.AuthorName = toNullString(input.AuthorName)
		comment.AuthorEmail = toNullString(input.AuthorEmail)
		comment.AuthorURL = toNullString(input.AuthorURL)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info("comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()))
	return comment, nil
}

// Update edits a comment's content or moderation status. Content edits are
// open to the comment's author; status changes need the moderation permission.
func (s *CommentService) Update(ctx context.Context, id auth.Identity, commentID uuid.UUID, input UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, NotFoundf("comment %s", commentID)
	}

	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Content != nil {
		if err := s.canEdit(ctx, id, comment); err != nil {
			return nil, err
		}
		fields["content"] = *input.Content
	}
	if input.Status != nil {
		if !models.ValidCommentStatus(*input.Status) {
			return nil, Validationf("unknown comment status %q", *input.Status)
		}
		if err := s.gate.RequirePermission(ctx, id, PermModerateComments); err != nil {
			return nil, err
		}
		fields["status"] = *input.Status
	}

	if err := s.comments.Update(ctx, commentID, fields); err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, commentID)
}

// Delete removes a comment. The author may delete their own; moderators may
// delete any.
func (s *CommentService) Delete(ctx context.Context, id auth.Identity, commentID uuid.UUID) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return NotFoundf("comment %s", commentID)
	}
	if err := s.canEdit(ctx, id, comment); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) canEdit(ctx context.Context, id auth.Identity, comment *models.Comment) error {
	if user, ok := id.User(); ok {
		if comment.AuthorID != nil && *comment.AuthorID == user.ID {
			return nil
		}
	}
	return s.gate.RequirePermission(ctx, id, PermModerateComments)
}
