package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PostStatus is the lifecycle state of a post
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusScheduled PostStatus = "scheduled"
	StatusPrivate   PostStatus = "private"
)

// ValidStatus reports whether s is a known post status
func ValidStatus(s PostStatus) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusPrivate:
		return true
	}
	return false
}

// Restricted reports whether posts with this status are hidden from
// anonymous callers
func (s PostStatus) Restricted() bool {
	return s == StatusDraft || s == StatusPrivate
}

// Feather is the content-shape discriminator of a post
type Feather string

const (
	FeatherText  Feather = "text"
	FeatherQuote Feather = "quote"
	FeatherLink  Feather = "link"
	FeatherPhoto Feather = "photo"
	FeatherAudio Feather = "audio"
	FeatherVideo Feather = "video"
)

// ValidFeather reports whether f is a known feather type
func ValidFeather(f Feather) bool {
	switch f {
	case FeatherText, FeatherQuote, FeatherLink, FeatherPhoto, FeatherAudio, FeatherVideo:
		return true
	}
	return false
}

// Post holds post metadata; the content payload lives in PostData
type Post struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id"`
	Feather     Feather        `gorm:"type:varchar(50);not null;column:feather_type"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex:posts_slug_ux;column:slug"`
	Title       sql.NullString `gorm:"type:varchar(255);column:title"`
	Status      PostStatus     `gorm:"type:varchar(20);not null;default:'draft';column:status"`
	PublishedAt sql.NullTime   `gorm:"column:published_at"`
	IsPrivate   bool           `gorm:"not null;default:false;column:is_private"`
	ViewCount   int64          `gorm:"not null;default:0;column:view_count"`
	CreatedAt   time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt   time.Time      `gorm:"not null;column:updated_at"`

	Author *User     `gorm:"foreignKey:AuthorID;references:ID"`
	Data   *PostData `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// PostData is the 1:1 content payload of a post, keyed by feather-specific fields
type PostData struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;column:id"`
	PostID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:post_data_post_ux;column:post_id"`

	// Text content
	Content         sql.NullString `gorm:"type:text;column:content"`
	MarkdownContent sql.NullString `gorm:"type:text;column:markdown_content"`
	RawMarkup       sql.NullString `gorm:"type:text;column:raw_markup"`

	// Media content
	MediaURL          sql.NullString `gorm:"type:varchar(255);column:media_url"`
	MediaThumbnailURL sql.NullString `gorm:"type:varchar(255);column:media_thumbnail_url"`
	MediaType         sql.NullString `gorm:"type:varchar(50);column:media_type"`

	// Quote content
	QuoteSource sql.NullString `gorm:"type:varchar(255);column:quote_source"`
	QuoteURL    sql.NullString `gorm:"type:varchar(255);column:quote_url"`

	// Link content
	LinkURL sql.NullString `gorm:"type:varchar(255);column:link_url"`

	// Embed content
	EmbedCode sql.NullString `gorm:"type:text;column:embed_code"`

	// Attribution
	Attribution sql.NullString `gorm:"type:varchar(255);column:attribution"`
	Copyright   sql.NullString `gorm:"type:varchar(255);column:copyright"`
}

// TableName specifies the table name for PostData
func (PostData) TableName() string {
	return "post_data"
}

// PostFile is an uploaded attachment, optionally bound to a post
type PostFile struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	PostID      *uuid.UUID     `gorm:"type:uuid;index;column:post_id"`
	FileURL     string         `gorm:"type:varchar(255);not null;column:file_url"`
	Filename    string         `gorm:"type:varchar(255);not null;column:filename"`
	FileType    sql.NullString `gorm:"type:varchar(100);column:file_type"`
	FileSize    sql.NullInt64  `gorm:"column:file_size"`
	Description sql.NullString `gorm:"type:text;column:description"`
	UploadedAt  time.Time      `gorm:"not null;column:uploaded_at"`
}

// TableName specifies the table name for PostFile
func (PostFile) TableName() string {
	return "post_files"
}
