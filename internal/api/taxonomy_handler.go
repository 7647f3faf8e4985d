package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/featherpress/featherpress/internal/services"
)

// TaxonomyHandler handles the category and tag resources
type TaxonomyHandler struct {
	taxonomy *services.TaxonomyService
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(taxonomy *services.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

type categoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        string  `json:"slug" binding:"required,slug,max=100"`
	Description *string `json:"description"`
}

type tagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"required,slug,max=100"`
}

// ListCategories handles GET /categories
func (h *TaxonomyHandler) ListCategories(c *gin.Context) {
	cats, err := h.taxonomy.ListCategories(c.Request.Context(), intQuery(c, "offset", 0), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "count": len(cats)})
}

// GetCategory handles GET /categories/:id
func (h *TaxonomyHandler) GetCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	cat, err := h.taxonomy.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// CreateCategory handles POST /categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cat, err := h.taxonomy.CreateCategory(c.Request.Context(), callerIdentity(c), services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        string  `json:"name" binding:"omitempty,max=100"`
		Slug        string  `json:"slug" binding:"omitempty,slug,max=100"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cat, err := h.taxonomy.UpdateCategory(c.Request.Context(), callerIdentity(c), id, services.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory handles DELETE /categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteCategory(c.Request.Context(), callerIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTags handles GET /tags
func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	tags, err := h.taxonomy.ListTags(c.Request.Context(),
		intQuery(c, "offset", 0), intQuery(c, "limit", 0), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}

// GetTag handles GET /tags/:id
func (h *TaxonomyHandler) GetTag(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	tag, err := h.taxonomy.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// CreateTag handles POST /tags
func (h *TaxonomyHandler) CreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tag, err := h.taxonomy.CreateTag(c.Request.Context(), callerIdentity(c), services.TagInput{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag handles PUT /tags/:id
func (h *TaxonomyHandler) UpdateTag(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name" binding:"omitempty,max=100"`
		Slug string `json:"slug" binding:"omitempty,slug,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tag, err := h.taxonomy.UpdateTag(c.Request.Context(), callerIdentity(c), id, services.TagInput{
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag handles DELETE /tags/:id
func (h *TaxonomyHandler) DeleteTag(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.taxonomy.DeleteTag(c.Request.Context(), callerIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// intParam parses an integer path parameter, rendering a 400 on failure
func intParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
