package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/models"
)

// RoleRepository provides role and permission database operations
type RoleRepository struct {
	*Repository
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(repo *Repository) *RoleRepository {
	return &RoleRepository{Repository: repo}
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// GetByName retrieves a role by name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// List retrieves all roles ordered by id
func (r *RoleRepository) List(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Create creates a new role
func (r *RoleRepository) Create(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

// Update applies the given column values to a role row
func (r *RoleRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Role{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a role and its permission memberships
func (r *RoleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
}

// ListPermissions retrieves the full permission catalog
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]*models.Permission, error) {
	var perms []*models.Permission
	if err := r.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// GetPermissionsByNames retrieves catalog entries matching the given names
func (r *RoleRepository) GetPermissionsByNames(ctx context.Context, names []string) ([]*models.Permission, error) {
	var perms []*models.Permission
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// PermissionsForRole retrieves the permission rows associated with a role.
// This is the effective-permission computation: flat membership, no
// inheritance, read fresh from the join table on every call.
func (r *RoleRepository) PermissionsForRole(ctx context.Context, roleID int64) ([]*models.Permission, error) {
	var perms []*models.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ?", roleID).
		Order("permissions.id").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// ReplacePermissions replaces a role's permission membership in one transaction
func (r *RoleRepository) ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, pid := range permissionIDs {
			rp := models.RolePermission{RoleID: roleID, PermissionID: pid}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
