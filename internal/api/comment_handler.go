package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/internal/services"
)

// CommentHandler handles the comment resource
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type createCommentRequest struct {
	Content     string  `json:"content" binding:"required"`
	ParentID    *string `json:"parent_comment_id"`
	AuthorName  *string `json:"author_name"`
	AuthorEmail *string `json:"author_email" binding:"omitempty,email"`
	AuthorURL   *string `json:"author_url"`
}

type updateCommentRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

// ListByPost handles GET /posts/:id/comments
func (h *CommentHandler) ListByPost(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.comments.ListByPost(c.Request.Context(), callerIdentity(c), postID,
		intQuery(c, "offset", 0), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Create handles POST /posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.CreateCommentInput{
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		AuthorURL:   req.AuthorURL,
	}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			badRequest(c, "invalid parent_comment_id")
			return
		}
		input.ParentID = &parentID
	}

	comment, err := h.comments.Create(c.Request.Context(), callerIdentity(c), postID, c.ClientIP(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Update handles PUT /comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.UpdateCommentInput{Content: req.Content}
	if req.Status != nil {
		status := models.CommentStatus(*req.Status)
		input.Status = &status
	}

	comment, err := h.comments.Update(c.Request.Context(), callerIdentity(c), commentID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), callerIdentity(c), commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
