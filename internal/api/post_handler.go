package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/internal/services"
)

// PostHandler handles the post resource and its like sub-resource
type PostHandler struct {
	blog  *services.BlogService
	likes *services.LikeService
}

// NewPostHandler creates a new post handler
func NewPostHandler(blog *services.BlogService, likes *services.LikeService) *PostHandler {
	return &PostHandler{blog: blog, likes: likes}
}

type createPostRequest struct {
	Feather     string  `json:"feather_type" binding:"required,feather"`
	Slug        string  `json:"slug" binding:"required,slug,max=100"`
	Title       *string `json:"title"`
	Status      string  `json:"status" binding:"omitempty,poststatus"`
	IsPrivate   bool    `json:"is_private"`
	Content     *string `json:"content"`
	Markdown    *string `json:"markdown_content"`
	MediaURL    *string `json:"media_url"`
	MediaType   *string `json:"media_type"`
	QuoteSource *string `json:"quote_source"`
	QuoteURL    *string `json:"quote_url"`
	LinkURL     *string `json:"link_url"`
	EmbedCode   *string `json:"embed_code"`
	CategoryIDs []int64 `json:"category_ids"`
	TagIDs      []int64 `json:"tag_ids"`
}

type updatePostRequest struct {
	Title       *string `json:"title"`
	Status      *string `json:"status" binding:"omitempty,poststatus"`
	IsPrivate   *bool   `json:"is_private"`
	Content     *string `json:"content"`
	Markdown    *string `json:"markdown_content"`
	MediaURL    *string `json:"media_url"`
	MediaType   *string `json:"media_type"`
	QuoteSource *string `json:"quote_source"`
	QuoteURL    *string `json:"quote_url"`
	LinkURL     *string `json:"link_url"`
	EmbedCode   *string `json:"embed_code"`
	CategoryIDs []int64 `json:"category_ids"`
	TagIDs      []int64 `json:"tag_ids"`
}

// List handles GET /posts
func (h *PostHandler) List(c *gin.Context) {
	input := services.ListPostsInput{
		Status:   models.PostStatus(c.Query("status")),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Offset:   intQuery(c, "offset", 0),
		Limit:    intQuery(c, "limit", 0),
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			badRequest(c, "invalid author id")
			return
		}
		input.AuthorID = &id
	}

	posts, err := h.blog.List(c.Request.Context(), callerIdentity(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// Get handles GET /posts/:id, where the path segment is the post's slug
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.blog.GetBySlug(c.Request.Context(), callerIdentity(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Create handles POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	post, err := h.blog.Create(c.Request.Context(), callerIdentity(c), services.CreatePostInput{
		Feather:     models.Feather(req.Feather),
		Slug:        req.Slug,
		Title:       req.Title,
		Status:      models.PostStatus(req.Status),
		IsPrivate:   req.IsPrivate,
		Content:     req.Content,
		Markdown:    req.Markdown,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
		QuoteSource: req.QuoteSource,
		QuoteURL:    req.QuoteURL,
		LinkURL:     req.LinkURL,
		EmbedCode:   req.EmbedCode,
		CategoryIDs: req.CategoryIDs,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update handles PUT /posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.UpdatePostInput{
		Title:       req.Title,
		IsPrivate:   req.IsPrivate,
		Content:     req.Content,
		Markdown:    req.Markdown,
		MediaURL:    req.MediaURL,
		MediaType:   req.MediaType,
		QuoteSource: req.QuoteSource,
		QuoteURL:    req.QuoteURL,
		LinkURL:     req.LinkURL,
		EmbedCode:   req.EmbedCode,
		CategoryIDs: req.CategoryIDs,
		TagIDs:      req.TagIDs,
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		input.Status = &status
	}

	post, err := h.blog.Update(c.Request.Context(), callerIdentity(c), postID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.blog.Delete(c.Request.Context(), callerIdentity(c), postID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// View handles POST /posts/:id/view
func (h *PostHandler) View(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.blog.IncrementView(c.Request.Context(), postID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Like handles POST /posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	like, err := h.likes.Like(c.Request.Context(), callerIdentity(c), postID, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, like)
}

// Unlike handles DELETE /posts/:id/like
func (h *PostHandler) Unlike(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.likes.Unlike(c.Request.Context(), callerIdentity(c), postID, c.ClientIP()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Likes handles GET /posts/:id/likes
func (h *PostHandler) Likes(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	likes, err := h.likes.List(c.Request.Context(), postID, intQuery(c, "offset", 0), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	count, err := h.likes.Count(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes, "count": count})
}

// uuidParam parses a uuid path parameter, rendering a 400 on failure
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// intQuery parses an integer query parameter with a fallback
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
