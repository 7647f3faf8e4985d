package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/featherpress/featherpress/internal/services"
)

// SiteHandler handles site aggregation, settings, themes and extensions
type SiteHandler struct {
	site *services.SiteService
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(site *services.SiteService) *SiteHandler {
	return &SiteHandler{site: site}
}

// Info handles GET /site/info
func (h *SiteHandler) Info(c *gin.Context) {
	info, err := h.site.Info(c.Request.Context(), callerIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Features handles GET /site/features
func (h *SiteHandler) Features(c *gin.Context) {
	features, err := h.site.GetFeatures(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, features)
}

// Extensions handles GET /site/extensions
func (h *SiteHandler) Extensions(c *gin.Context) {
	exts, err := h.site.ListExtensions(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extensions": exts, "count": len(exts)})
}

type extensionStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetExtensionStatus handles PUT /site/extension/:slug
func (h *SiteHandler) SetExtensionStatus(c *gin.Context) {
	var req extensionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ext, err := h.site.SetExtensionStatus(c.Request.Context(), callerIdentity(c), c.Param("slug"), *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ext)
}

// UpdateSettings handles PATCH /site/settings
func (h *SiteHandler) UpdateSettings(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.site.UpdateSettings(c.Request.Context(), callerIdentity(c), updates); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListThemes handles GET /themes
func (h *SiteHandler) ListThemes(c *gin.Context) {
	themes, err := h.site.ListThemes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"themes": themes, "count": len(themes)})
}

// ActiveTheme handles GET /themes/active and /site/theme
func (h *SiteHandler) ActiveTheme(c *gin.Context) {
	theme, err := h.site.ActiveTheme(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}

// ActivateTheme handles PUT /themes/:id/activate
func (h *SiteHandler) ActivateTheme(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	theme, err := h.site.ActivateTheme(c.Request.Context(), callerIdentity(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, theme)
}
