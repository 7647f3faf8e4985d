package api

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/pkg/logging"
	"github.com/featherpress/featherpress/pkg/telemetry"
)

const (
	identityKey   = "identity"
	tokenKey      = "session_token"
	sessionCookie = "session_token"
	requestIDKey  = "request_id"
	loggerKey     = "logger"
)

// Tracing opens a span per request, named after the matched route, and
// propagates it through the request context
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		ctx, span := telemetry.StartSpan(c.Request.Context(), c.Request.Method+" "+name)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// IdentityResolver resolves a session token to a caller identity.
// *auth.Gate implements it.
type IdentityResolver interface {
	CurrentUser(ctx context.Context, token string) (auth.Identity, error)
}

// RequestID attaches a fresh request id to the context and response headers,
// and scopes the request logger with it
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Set(loggerKey, logging.WithRequestID(id))
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger returns the logger scoped by the RequestID middleware
func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return logging.GetLogger()
}

// Identity resolves the caller from a bearer header or session cookie and
// stores it in the request context. Absent or invalid credentials yield the
// anonymous identity; endpoints that require authentication reject it later.
func Identity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		c.Set(tokenKey, token)

		id, err := resolver.CurrentUser(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// extractToken pulls the opaque session token from the Authorization header
// or, failing that, the session cookie
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// callerIdentity returns the identity stored by the Identity middleware
func callerIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Anonymous()
}

// callerToken returns the raw session token accompanying the request
func callerToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
