package models

import (
	"database/sql"

	"github.com/google/uuid"
)

// Category is one entry of the category vocabulary
type Category struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:categories_name_ux;column:name"`
	Slug        string         `gorm:"type:varchar(100);not null;uniqueIndex:categories_slug_ux;column:slug"`
	Description sql.NullString `gorm:"type:text;column:description"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Tag is one entry of the tag vocabulary
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id"`
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:tags_name_ux;column:name"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex:tags_slug_ux;column:slug"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// PostCategory maps a post to a category
type PostCategory struct {
	PostID     uuid.UUID `gorm:"type:uuid;primaryKey;column:post_id"`
	CategoryID int64     `gorm:"primaryKey;column:category_id"`
}

// TableName specifies the table name for PostCategory
func (PostCategory) TableName() string {
	return "post_categories"
}

// PostTag maps a post to a tag
type PostTag struct {
	PostID uuid.UUID `gorm:"type:uuid;primaryKey;column:post_id"`
	TagID  int64     `gorm:"primaryKey;column:tag_id"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "post_tags"
}
