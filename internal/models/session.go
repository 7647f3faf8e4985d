package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an opaque login token with a fixed expiry.
// A user may hold any number of concurrent sessions.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id"`
	Token     string    `gorm:"type:varchar(255);not null;uniqueIndex:sessions_token_ux;column:session_token"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "user_sessions"
}

// Expired reports whether the session has passed its expiry at the given instant
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
