package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/internal/services"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type registerRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50"`
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	DisplayName *string `json:"display_name"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      userResponse `json:"user"`
}

type userResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Role        string  `json:"role,omitempty"`
}

func toUserResponse(user *models.User) userResponse {
	resp := userResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	}
	if user.DisplayName.Valid {
		v := user.DisplayName.String
		resp.DisplayName = &v
	}
	if user.Bio.Valid {
		v := user.Bio.String
		resp.Bio = &v
	}
	if user.AvatarURL.Valid {
		v := user.AvatarURL.String
		resp.AvatarURL = &v
	}
	if user.Role != nil {
		resp.Role = user.Role.Name
	}
	return resp
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, session, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(sessionCookie, session.Token, int(session.ExpiresAt.Sub(session.CreatedAt).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(user),
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := callerToken(c)
	if token == "" {
		respondError(c, auth.ErrUnauthenticated)
		return
	}
	if err := h.users.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := callerIdentity(c).User()
	if !ok {
		respondError(c, auth.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
	Password    *string `json:"password"`
}

// UpdateProfile handles PUT /auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), callerIdentity(c), services.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
		Password:    req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}
