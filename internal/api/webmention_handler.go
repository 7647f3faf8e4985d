package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/internal/services"
)

// WebmentionHandler handles the webmention resource
type WebmentionHandler struct {
	mentions *services.WebmentionService
}

// NewWebmentionHandler creates a new webmention handler
func NewWebmentionHandler(mentions *services.WebmentionService) *WebmentionHandler {
	return &WebmentionHandler{mentions: mentions}
}

type createWebmentionRequest struct {
	SourceURL   string  `json:"source_url" binding:"required,url"`
	TargetURL   string  `json:"target_url" binding:"required,url"`
	MentionType *string `json:"mention_type"`
	Content     *string `json:"content"`
	AuthorName  *string `json:"author_name"`
	AuthorURL   *string `json:"author_url"`
	AuthorPhoto *string `json:"author_photo"`
}

type webmentionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListByPost handles GET /posts/:id/webmentions
func (h *WebmentionHandler) ListByPost(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	mentions, err := h.mentions.ListByPost(c.Request.Context(), postID,
		intQuery(c, "offset", 0), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"webmentions": mentions, "count": len(mentions)})
}

// Create handles POST /posts/:id/webmentions
func (h *WebmentionHandler) Create(c *gin.Context) {
	postID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req createWebmentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	mention, err := h.mentions.Create(c.Request.Context(), postID, services.CreateWebmentionInput{
		SourceURL:   req.SourceURL,
		TargetURL:   req.TargetURL,
		MentionType: req.MentionType,
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorURL:   req.AuthorURL,
		AuthorPhoto: req.AuthorPhoto,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mention)
}

// SetStatus handles PUT /webmentions/:id/status
func (h *WebmentionHandler) SetStatus(c *gin.Context) {
	mentionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req webmentionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	mention, err := h.mentions.SetStatus(c.Request.Context(), callerIdentity(c), mentionID,
		models.WebmentionStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mention)
}

// Delete handles DELETE /webmentions/:id
func (h *WebmentionHandler) Delete(c *gin.Context) {
	mentionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.mentions.Delete(c.Request.Context(), callerIdentity(c), mentionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
