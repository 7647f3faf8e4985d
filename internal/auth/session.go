package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// SessionStore persists session rows
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, token string) error
}

// UserStore resolves session owners
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Sessions issues and resolves opaque session tokens. Expiry is fixed at
// issuance, not sliding.
type Sessions struct {
	store  SessionStore
	users  UserStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessions creates a session service with the given token lifetime
func NewSessions(store SessionStore, users UserStore, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{
		store:  store,
		users:  users,
		ttl:    ttl,
		logger: logging.WithComponent("sessions"),
	}
}

// Create issues a fresh random token for the user and persists it
func (s *Sessions) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Resolve returns the user behind a token. Unknown and expired tokens both
// yield ErrSessionInvalid; the distinction only shows up in logs.
func (s *Sessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	session, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		s.logger.Debug("session token not found")
		return nil, ErrSessionInvalid
	}
	if session.Expired(time.Now().UTC()) {
		s.logger.Debug("session token expired",
			zap.String("user_id", session.UserID.String()),
			zap.Time("expires_at", session.ExpiresAt))
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		s.logger.Warn("session points at missing user", zap.String("user_id", session.UserID.String()))
		return nil, ErrSessionInvalid
	}
	return user, nil
}

// Destroy deletes the session row; there is no revocation list beyond this
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	return s.store.DeleteByToken(ctx, token)
}
