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
	"github.com/featherpress/featherpress/internal/db"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
	"github.com/featherpress/featherpress/pkg/telemetry"
)

// PostStore is the persistence surface consumed by BlogService.
// *db.PostRepository implements it.
type PostStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreateWithData(ctx context.Context, post *models.Post, data *models.PostData) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateData(ctx context.Context, postID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter db.PostFilter) ([]*models.Post, error)
	ReplaceCategories(ctx context.Context, postID uuid.UUID, categoryIDs []int64) error
	ReplaceTags(ctx context.Context, postID uuid.UUID, tagIDs []int64) error
	CategoriesForPost(ctx context.Context, postID uuid.UUID) ([]*models.Category, error)
	TagsForPost(ctx context.Context, postID uuid.UUID) ([]*models.Tag, error)
}

// LikeCounter exposes the like totals joined into post views
type LikeCounter interface {
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
}

// CreatePostInput carries the fields accepted at post creation
type CreatePostInput struct {
	Feather     models.Feather
	Slug        string
	Title       *string
	Status      models.PostStatus
	IsPrivate   bool
	Content     *string
	Markdown    *string
	MediaURL    *string
	MediaType   *string
	QuoteSource *string
	QuoteURL    *string
	LinkURL     *string
	EmbedCode   *string
	CategoryIDs []int64
	TagIDs      []int64
}

// UpdatePostInput carries partial post updates; nil fields are left untouched
type UpdatePostInput struct {
	Title       *string
	Status      *models.PostStatus
	IsPrivate   *bool
	Content     *string
	Markdown    *string
	MediaURL    *string
	MediaType   *string
	QuoteSource *string
	QuoteURL    *string
	LinkURL     *string
	EmbedCode   *string
	CategoryIDs []int64
	TagIDs      []int64
}

// ListPostsInput narrows down a post listing
type ListPostsInput struct {
	Status   models.PostStatus
	AuthorID *uuid.UUID
	Category string
	Tag      string
	Search   string
	Offset   int
	Limit    int
}

// PostView is the read-side representation of a post with its payload,
// taxonomy and like count joined in
type PostView struct {
	ID          uuid.UUID         `json:"id"`
	AuthorID    uuid.UUID         `json:"author_id"`
	Feather     models.Feather    `json:"feather_type"`
	Slug        string            `json:"slug"`
	Title       *string           `json:"title,omitempty"`
	Status      models.PostStatus `json:"status"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	IsPrivate   bool              `json:"is_private"`
	ViewCount   int64             `json:"view_count"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Content     *string `json:"content,omitempty"`
	Markdown    *string `json:"markdown_content,omitempty"`
	MediaURL    *string `json:"media_url,omitempty"`
	MediaType   *string `json:"media_type,omitempty"`
	QuoteSource *string `json:"quote_source,omitempty"`
	QuoteURL    *string `json:"quote_url,omitempty"`
	LinkURL     *string `json:"link_url,omitempty"`
	EmbedCode   *string `json:"embed_code,omitempty"`

	Categories []*models.Category `json:"categories"`
	Tags       []*models.Tag      `json:"tags"`
	LikesCount int64              `json:"likes_count"`
}

// BlogService implements post operations behind the authorization gate
type BlogService struct {
	posts  PostStore
	likes  LikeCounter
	gate   PermissionGate
	logger *zap.Logger
}

// NewBlogService creates a new blog service
func NewBlogService(posts PostStore, likes LikeCounter, gate PermissionGate) *BlogService {
	return &BlogService{
		posts:  posts,
		likes:  likes,
		gate:   gate,
		logger: logging.WithComponent("blog-service"),
	}
}

// List returns a page of posts ordered by recency. Draft and private posts
// are hidden from anonymous callers; authenticated callers additionally see
// their own, and holders of the view-all override see everything.
func (s *BlogService) List(ctx context.Context, id auth.Identity, input ListPostsInput) ([]*PostView, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.list")
	defer span.End()

	filter := db.PostFilter{
		Status:       input.Status,
		AuthorID:     input.AuthorID,
		CategorySlug: input.Category,
		TagSlug:      input.Tag,
		Search:       input.Search,
		Offset:       input.Offset,
		Limit:        input.Limit,
	}
	if user, ok := id.User(); ok {
		uid := user.ID
		filter.ViewerID = &uid
	}
	filter.IncludeRestricted = holdsPermission(ctx, s.gate, id, PermViewAllPosts)

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*PostView, 0, len(posts))
	for _, post := range posts {
		view, err := s.assembleView(ctx, post)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetBySlug returns a single post and bumps its view counter exactly once.
// The bump is unconditional per successful fetch; there is no per-viewer
// dedup. Restricted posts are reported as not found to callers without
// access, so their existence stays hidden.
func (s *BlogService) GetBySlug(ctx context.Context, id auth.Identity, slug string) (*PostView, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.get_by_slug")
	defer span.End()

	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %q", slug)
	}
	if !s.canSee(ctx, id, post) {
		return nil, NotFoundf("post %q", slug)
	}

	if _, err := s.posts.IncrementViewCount(ctx, post.ID); err != nil {
		return nil, err
	}
	post.ViewCount++

	return s.assembleView(ctx, post)
}

// Create persists a new post and its content payload in one transaction
func (s *BlogService) Create(ctx context.Context, id auth.Identity, input CreatePostInput) (*PostView, error) {
	ctx, span := telemetry.StartSpan(ctx, "blog.create")
	defer span.End()

	user, ok := id.User()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	if input.Slug == "" {
		return nil, Validationf("slug is required")
	}
	if !models.ValidFeather(input.Feather) {
		return nil, Validationf("unknown feather type %q", input.Feather)
	}
	status := input.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		return nil, Validationf("unknown status %q", status)
	}

	now := time.Now().UTC()
	post := &models.Post{
		ID:        uuid.New(),
		AuthorID:  user.ID,
		Feather:   input.Feather,
		Slug:      input.Slug,
		Title:     toNullString(input.Title),
		Status:    status,
		IsPrivate: input.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == models.StatusPublished {
		post.PublishedAt = sql.NullTime{Time: now, Valid: true}
	}

	data := &models.PostData{
		ID:              uuid.New(),
		Content:         toNullString(input.Content),
		MarkdownContent: toNullString(input.Markdown),
		MediaURL:        toNullString(input.MediaURL),
		MediaType:       toNullString(input.MediaType),
		QuoteSource:     toNullString(input.QuoteSource),
		QuoteURL:        toNullString(input.QuoteURL),
		LinkURL:         toNullString(input.LinkURL),
		EmbedCode:       toNullString(input.EmbedCode),
	}

	if err := s.posts.CreateWithData(ctx, post, data); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("slug %q already exists", input.Slug)
		}
		return nil, err
	}
	post.Data = data

	if len(input.CategoryIDs) > 0 {
		if err := s.posts.ReplaceCategories(ctx, post.ID, input.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if len(input.TagIDs) > 0 {
		if err := s.posts.ReplaceTags(ctx, post.ID, input.TagIDs); err != nil {
			return nil, err
		}
	}

	s.logger.Info("post created",
		zap.String("post_id", post.ID.String()),
		zap.String("slug", post.Slug),
		zap.String("author", user.Username))

	return s.assembleView(ctx, post)
}

// Update applies a partial update. Only the author or a holder of the
// edit-all override may update a post.
func (s *BlogService) Update(ctx context.Context, id auth.Identity, postID uuid.UUID, input UpdatePostInput) (*PostView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, NotFoundf("post %s", postID)
	}
	if err := s.canManage(ctx, id, post); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.IsPrivate != nil {
		fields["is_private"] = *input.IsPrivate
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, Validationf("unknown status %q", *input.Status)
		}
		fields["status"] = *input.Status
		// published_at is set once, on the transition to published
		if *input.Status == models.StatusPublished && !post.PublishedAt.Valid {
			fields["published_at"] = time.Now().UTC()
		}
	}
	if err := s.posts.Update(ctx, postID, fields); err != nil {
		return nil, err
	}

	dataFields := map[string]interface{}{}
	if input.Content != nil {
		dataFields["content"] = *input.Content
	}
	if input.Markdown != nil {
		dataFields["markdown_content"] = *input.Markdown
	}
	if input.MediaURL != nil {
		dataFields["media_url"] = *input.MediaURL
	}
	if input.MediaType != nil {
		dataFields["media_type"] = *input.MediaType
	}
	if input.QuoteSource != nil {
		dataFields["quote_source"] = *input.QuoteSource
	}
	if input.QuoteURL != nil {
		dataFields["quote_url"] = *input.QuoteURL
	}
	if input.LinkURL != nil {
		dataFields["link_url"] = *input.LinkURL
	}
	if input.EmbedCode != nil {
		dataFields["embed_code"] = *input.EmbedCode
	}
	if len(dataFields) > 0 {
		if err := s.posts.UpdateData(ctx, postID, dataFields); err != nil {
			return nil, err
		}
	}

	if input.CategoryIDs != nil {
		if err := s.posts.ReplaceCategories(ctx, postID, input.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if input.TagIDs != nil {
		if err := s.posts.ReplaceTags(ctx, postID, input.TagIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.assembleView(ctx, updated)
}

// Delete removes a post, cascading to its payload and association rows
func (s *BlogService) Delete(ctx context.Context, id auth.Identity, postID uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return NotFoundf("post %s", postID)
	}
	if err := s.canManage(ctx, id, post); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

// IncrementView bumps a post's view counter without fetching it
func (s *BlogService) IncrementView(ctx context.Context, postID uuid.UUID) error {
	found, err := s.posts.IncrementViewCount(ctx, postID)
	if err != nil {
		return err
	}
	if !found {
		return NotFoundf("post %s", postID)
	}
	return nil
}

// canSee applies the read-side visibility rule for a single post
func (s *BlogService) canSee(ctx context.Context, id auth.Identity, post *models.Post) bool {
	if !post.Status.Restricted() && !post.IsPrivate {
		return true
	}
	user, ok := id.User()
	if !ok {
		return false
	}
	if user.ID == post.AuthorID {
		return true
	}
	return holdsPermission(ctx, s.gate, id, PermViewAllPosts)
}

// canManage allows the author, or anyone holding the edit-all override
func (s *BlogService) canManage(ctx context.Context, id auth.Identity, post *models.Post) error {
	user, ok := id.User()
	if !ok {
		return auth.ErrUnauthenticated
	}
	if user.ID == post.AuthorID {
		return nil
	}
	return s.gate.RequirePermission(ctx, id, PermEditAllPosts)
}

func (s *BlogService) assembleView(ctx context.Context, post *models.Post) (*PostView, error) {
	view := &PostView{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Feather:   post.Feather,
		Slug:      post.Slug,
		Title:     fromNullString(post.Title),
		Status:    post.Status,
		IsPrivate: post.IsPrivate,
		ViewCount: post.ViewCount,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if post.PublishedAt.Valid {
		t := post.PublishedAt.Time
		view.PublishedAt = &t
	}
	if post.Data != nil {
		view.Content = fromNullString(post.Data.Content)
		view.Markdown = fromNullString(post.Data.MarkdownContent)
		view.MediaURL = fromNullString(post.Data.MediaURL)
		view.MediaType = fromNullString(post.Data.MediaType)
		view.QuoteSource = fromNullString(post.Data.QuoteSource)
		view.QuoteURL = fromNullString(post.Data.QuoteURL)
		view.LinkURL = fromNullString(post.Data.LinkURL)
		view.EmbedCode = fromNullString(post.Data.EmbedCode)
	}

	cats, err := s.posts.CategoriesForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	view.Categories = cats

	tags, err := s.posts.TagsForPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	view.Tags = tags

	count, err := s.likes.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	view.LikesCount = count

	return view, nil
}
