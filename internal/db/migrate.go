package db

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/featherpress/featherpress/internal/models"
)

// AutoMigrate creates or updates the schema for all persisted entities
func (d *DB) AutoMigrate() error {
	return d.DB.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Session{},
		&models.Post{},
		&models.PostData{},
		&models.PostFile{},
		&models.Category{},
		&models.Tag{},
		&models.PostCategory{},
		&models.PostTag{},
		&models.Comment{},
		&models.Like{},
		&models.Webmention{},
		&models.Setting{},
		&models.Theme{},
		&models.Extension{},
	)
}

// Permission catalog, seeded at setup and treated as immutable afterwards.
var seedPermissions = []models.Permission{
	{Name: "update_site_settings", Description: nullString("Manage site settings, extensions, themes and roles")},
	{Name: "view_all_posts", Description: nullString("See draft and private posts of any author")},
	{Name: "edit_all_posts", Description: nullString("Update or delete posts of any author")},
	{Name: "moderate_comments", Description: nullString("Change moderation status of any comment")},
	{Name: "manage_files", Description: nullString("Delete uploads of any owner")},
}

var seedSettings = []models.Setting{
	{Key: "site_title", Value: nullString("FeatherPress"), Type: nullString("string")},
	{Key: "site_description", Value: nullString("A lightweight blogging platform"), Type: nullString("string")},
	{Key: "posts_per_page", Value: nullString("10"), Type: nullString("integer")},
	{Key: "comments_enabled", Value: nullString("true"), Type: nullString("boolean")},
	{Key: "registration_enabled", Value: nullString("true"), Type: nullString("boolean")},
	{Key: "uploads_enabled", Value: nullString("true"), Type: nullString("boolean")},
	{Key: "webmentions_enabled", Value: nullString("true"), Type: nullString("boolean")},
	{Key: "maintenance_mode", Value: nullString("false"), Type: nullString("boolean")},
}

// Seed inserts the permission catalog, the built-in roles, default settings
// and the default theme. Safe to run repeatedly; existing rows are kept.
func (d *DB) Seed(ctx context.Context) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range seedPermissions {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedPermissions[i]).Error; err != nil {
				return fmt.Errorf("failed to seed permission %q: %w", seedPermissions[i].Name, err)
			}
		}

		roles := []models.Role{
			{Name: models.PublicRoleName, Description: nullString("Anonymous callers")},
			{Name: "user", Description: nullString("Registered users")},
			{Name: "admin", Description: nullString("Site administrators")},
		}
		for i := range roles {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles[i]).Error; err != nil {
				return fmt.Errorf("failed to seed role %q: %w", roles[i].Name, err)
			}
		}

		// Admin role holds the full catalog.
		var admin models.Role
		if err := tx.Where("name = ?", "admin").First(&admin).Error; err != nil {
			return fmt.Errorf("failed to load admin role: %w", err)
		}
		var perms []models.Permission
		if err := tx.Find(&perms).Error; err != nil {
			return fmt.Errorf("failed to load permissions: %w", err)
		}
		for _, p := range perms {
			rp := models.RolePermission{RoleID: admin.ID, PermissionID: p.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rp).Error; err != nil {
				return fmt.Errorf("failed to seed admin permission %q: %w", p.Name, err)
			}
		}

		for i := range seedSettings {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seedSettings[i]).Error; err != nil {
				return fmt.Errorf("failed to seed setting %q: %w", seedSettings[i].Key, err)
			}
		}

		theme := models.Theme{Name: "Default", Slug: "default", IsActive: true}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&theme).Error; err != nil {
			return fmt.Errorf("failed to seed default theme: %w", err)
		}

		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
