package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/services"
)

// errorResponse is the canonical error envelope for all API errors
type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps service and auth errors to deterministic HTTP codes and
// renders the JSON envelope. Unexpected errors are logged with their real
// cause and reported generically.
func respondError(c *gin.Context, err error) {
	code, msg := resolveError(err)
	if code == http.StatusInternalServerError {
		requestLogger(c).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(code, errorResponse{Error: msg})
}

func resolveError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden, "permission denied"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

// badRequest reports a malformed request body or parameter
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}
