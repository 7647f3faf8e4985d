package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CommentStatus is the moderation state of a comment
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
	CommentSpam     CommentStatus = "spam"
)

// ValidCommentStatus reports whether s is a known comment status
func ValidCommentStatus(s CommentStatus) bool {
	switch s {
	case CommentPending, CommentApproved, CommentRejected, CommentSpam:
		return true
	}
	return false
}

// Comment belongs to a post and optionally to an author; guest comments
// carry the author_* fields instead. Comments form a tree via
// parent_comment_id.
type Comment struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PostID          uuid.UUID      `gorm:"type:uuid;not null;index;column:post_id"`
	AuthorID        *uuid.UUID     `gorm:"type:uuid;column:author_id"`
	AuthorName      sql.NullString `gorm:"type:varchar(100);column:author_name"`
	AuthorEmail     sql.NullString `gorm:"type:varchar(255);column:author_email"`
	AuthorURL       sql.NullString `gorm:"type:varchar(255);column:author_url"`
	Content         string         `gorm:"type:text;not null;column:content"`
	ParentCommentID *uuid.UUID     `gorm:"type:uuid;index;column:parent_comment_id"`
	Status          CommentStatus  `gorm:"type:varchar(20);not null;default:'pending';index;column:status"`
	IPAddress       sql.NullString `gorm:"type:varchar(45);column:ip_address"`
	CreatedAt       time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt       time.Time      `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
