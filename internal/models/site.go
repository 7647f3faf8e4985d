package models

import "database/sql"

// Setting is one key-value entry of the site configuration
type Setting struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Key         string         `gorm:"type:varchar(100);not null;uniqueIndex:settings_key_ux;column:key"`
	Value       sql.NullString `gorm:"type:text;column:value"`
	Description sql.NullString `gorm:"type:text;column:description"`
	Type        sql.NullString `gorm:"type:varchar(50);column:type"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}

// Theme is an installed front-end theme. At most one row has is_active set;
// the activation operation enforces this inside one transaction.
type Theme struct {
	ID       int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name     string         `gorm:"type:varchar(100);not null;uniqueIndex:themes_name_ux;column:name"`
	Slug     string         `gorm:"type:varchar(255);not null;uniqueIndex:themes_slug_ux;column:slug"`
	Version  sql.NullString `gorm:"type:varchar(20);column:version"`
	Author   sql.NullString `gorm:"type:varchar(100);column:author"`
	IsActive bool           `gorm:"not null;default:false;column:is_active"`
}

// TableName specifies the table name for Theme
func (Theme) TableName() string {
	return "themes"
}

// Extension is an installed site extension with a free-form JSON configuration
type Extension struct {
	ID       int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name     string         `gorm:"type:varchar(100);not null;uniqueIndex:extensions_name_ux;column:name"`
	Slug     string         `gorm:"type:varchar(255);not null;uniqueIndex:extensions_slug_ux;column:slug"`
	Version  sql.NullString `gorm:"type:varchar(20);column:version"`
	IsActive bool           `gorm:"not null;default:false;column:is_active"`
	Config   sql.NullString `gorm:"type:jsonb;column:config"`
}

// TableName specifies the table name for Extension
func (Extension) TableName() string {
	return "extensions"
}
