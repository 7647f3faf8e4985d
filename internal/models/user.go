package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PublicRoleName is the distinguished role applied to anonymous callers.
// It is seeded at setup and can never be deleted.
const PublicRoleName = "public"

// User represents a registered account
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Username     string         `gorm:"type:varchar(50);not null;uniqueIndex:users_username_ux;column:username"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex:users_email_ux;column:email"`
	PasswordHash string         `gorm:"type:varchar(255);not null;column:password_hash"`
	DisplayName  sql.NullString `gorm:"type:varchar(100);column:display_name"`
	Bio          sql.NullString `gorm:"type:text;column:bio"`
	AvatarURL    sql.NullString `gorm:"type:varchar(255);column:avatar_url"`
	RoleID       int64          `gorm:"not null;column:role_id"`
	CreatedAt    time.Time      `gorm:"not null;column:created_at"`
	UpdatedAt    time.Time      `gorm:"not null;column:updated_at"`

	Role *Role `gorm:"foreignKey:RoleID;references:ID"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role groups users under one named permission set
type Role struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string         `gorm:"type:varchar(50);not null;uniqueIndex:roles_name_ux;column:name"`
	Description sql.NullString `gorm:"type:text;column:description"`
}

// TableName specifies the table name for Role
func (Role) TableName() string {
	return "roles"
}

// Permission is one entry of the immutable permission catalog
type Permission struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:permissions_name_ux;column:name"`
	Description sql.NullString `gorm:"type:text;column:description"`
}

// TableName specifies the table name for Permission
func (Permission) TableName() string {
	return "permissions"
}

// RolePermission maps a role to one of its permissions
type RolePermission struct {
	RoleID       int64 `gorm:"primaryKey;column:role_id"`
	PermissionID int64 `gorm:"primaryKey;column:permission_id"`
}

// TableName specifies the table name for RolePermission
func (RolePermission) TableName() string {
	return "role_permissions"
}
