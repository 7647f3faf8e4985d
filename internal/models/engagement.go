package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Like records one like per post per user, or per post per anonymous IP.
// Both pairs are enforced by partial unique indexes, not application logic.
type Like struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PostID    uuid.UUID      `gorm:"type:uuid;not null;index:likes_post_user_ux,unique;index:likes_post_ip_ux,unique;column:post_id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index:likes_post_user_ux,unique;column:user_id"`
	IPAddress sql.NullString `gorm:"type:varchar(45);index:likes_post_ip_ux,unique;column:ip_address"`
	CreatedAt time.Time      `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Like
func (Like) TableName() string {
	return "likes"
}

// WebmentionType classifies how the external page references the post
type WebmentionType string

const (
	MentionTypeMention  WebmentionType = "mention"
	MentionTypeReply    WebmentionType = "reply"
	MentionTypeRepost   WebmentionType = "repost"
	MentionTypeLike     WebmentionType = "like"
	MentionTypeBookmark WebmentionType = "bookmark"
)

// ValidWebmentionType reports whether t is a known webmention type
func ValidWebmentionType(t WebmentionType) bool {
	switch t {
	case MentionTypeMention, MentionTypeReply, MentionTypeRepost, MentionTypeLike, MentionTypeBookmark:
		return true
	}
	return false
}

// WebmentionStatus is the verification state of a webmention
type WebmentionStatus string

const (
	WebmentionPending  WebmentionStatus = "pending"
	WebmentionVerified WebmentionStatus = "verified"
	WebmentionRejected WebmentionStatus = "rejected"
)

// Webmention is an externally-submitted notification that another page
// references this post. Unique per (source_url, target_url).
type Webmention struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;column:id"`
	PostID      uuid.UUID        `gorm:"type:uuid;not null;index;column:post_id"`
	SourceURL   string           `gorm:"type:varchar(255);not null;index:webmentions_source_target_ux,unique;column:source_url"`
	TargetURL   string           `gorm:"type:varchar(255);not null;index:webmentions_source_target_ux,unique;column:target_url"`
	MentionType sql.NullString   `gorm:"type:varchar(20);column:mention_type"`
	Content     sql.NullString   `gorm:"type:text;column:content"`
	AuthorName  sql.NullString   `gorm:"type:varchar(255);column:author_name"`
	AuthorURL   sql.NullString   `gorm:"type:varchar(255);column:author_url"`
	AuthorPhoto sql.NullString   `gorm:"type:varchar(255);column:author_photo"`
	Status      WebmentionStatus `gorm:"type:varchar(20);not null;default:'pending';column:status"`
	CreatedAt   time.Time        `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for Webmention
func (Webmention) TableName() string {
	return "webmentions"
}
