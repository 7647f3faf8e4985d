package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// RoleStore is the persistence surface consumed by RoleService.
// *db.RoleRepository implements it.
type RoleStore interface {
	GetByID(ctx context.Context, id int64) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	ListPermissions(ctx context.Context) ([]*models.Permission, error)
	GetPermissionsByNames(ctx context.Context, names []string) ([]*models.Permission, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]*models.Permission, error)
	ReplacePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// RoleView is a role with its permission names expanded
type RoleView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// RoleInput carries the writable role fields; Permissions replaces the
// role's whole membership set when non-nil
type RoleInput struct {
	Name        string
	Description *string
	Permissions []string
}

// RoleService administers the role catalog and role-permission membership.
// Every operation requires the site settings permission; membership changes
// invalidate the gate's cached view of the role.
type RoleService struct {
	roles  RoleStore
	gate   PermissionGate
	logger *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roles RoleStore, gate PermissionGate) *RoleService {
	return &RoleService{
		roles:  roles,
		gate:   gate,
		logger: logging.WithComponent("role-service"),
	}
}

// List returns every role with its permissions expanded
func (s *RoleService) List(ctx context.Context, id auth.Identity) ([]*RoleView, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*RoleView, 0, len(roles))
	for _, role := range roles {
		view, err := s.assembleView(ctx, role)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one role with its permissions expanded
func (s *RoleService) Get(ctx context.Context, id auth.Identity, roleID int64) (*RoleView, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, NotFoundf("role %d", roleID)
	}
	return s.assembleView(ctx, role)
}

// ListPermissions returns the seeded permission catalog
func (s *RoleService) ListPermissions(ctx context.Context, id auth.Identity) ([]*models.Permission, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	return s.roles.ListPermissions(ctx)
}

// Create adds a role, optionally with an initial permission set
func (s *RoleService) Create(ctx context.Context, id auth.Identity, input RoleInput) (*RoleView, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, Validationf("role name is required")
	}

	role := &models.Role{
		Name:        input.Name,
		Description: toNullString(input.Description),
	}
	if err := s.roles.Create(ctx, role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflictf("role %q already exists", input.Name)
		}
		return nil, err
	}

	if len(input.Permissions) > 0 {
		if err := s.replaceMembership(ctx, role.ID, input.Permissions); err != nil {
			return nil, err
		}
	}

	s.logger.Info("role created", zap.String("role", role.Name))
	return s.assembleView(ctx, role)
}

// Update applies partial field edits and, when Permissions is non-nil,
// replaces the role's permission membership. Membership changes are visible
// on the next permission check for every user holding the role.
func (s *RoleService) Update(ctx context.Context, id auth.Identity, roleID int64, input RoleInput) (*RoleView, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, NotFoundf("role %d", roleID)
	}

	fields := make(map[string]interface{})
	if input.Name != "" && input.Name != role.Name {
		if role.Name == models.PublicRoleName {
			return nil, Validationf("the %q role cannot be renamed", models.PublicRoleName)
		}
		fields["name"] = input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if len(fields) > 0 {
		if err := s.roles.Update(ctx, roleID, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, Conflictf("role %q already exists", input.Name)
			}
			return nil, err
		}
		if name, ok := fields["name"].(string); ok {
			role.Name = name
		}
		if input.Description != nil {
			role.Description = toNullString(input.Description)
		}
	}

	if input.Permissions != nil {
		if err := s.replaceMembership(ctx, roleID, input.Permissions); err != nil {
			return nil, err
		}
	}
	return s.assembleView(ctx, role)
}

// Delete removes a role. The built-in public role can never be deleted.
func (s *RoleService) Delete(ctx context.Context, id auth.Identity, roleID int64) error {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return err
	}
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return NotFoundf("role %d", roleID)
	}
	if role.Name == models.PublicRoleName {
		return Validationf("the %q role cannot be deleted", models.PublicRoleName)
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return err
	}
	s.gate.InvalidateRole(roleID)

	s.logger.Info("role deleted", zap.String("role", role.Name))
	return nil
}

// replaceMembership resolves permission names to catalog entries and swaps
// the role's membership set
func (s *RoleService) replaceMembership(ctx context.Context, roleID int64, names []string) error {
	perms, err := s.roles.GetPermissionsByNames(ctx, names)
	if err != nil {
		return err
	}
	if len(perms) != len(names) {
		known := make(map[string]bool, len(perms))
		for _, p := range perms {
			known[p.Name] = true
		}
		for _, name := range names {
			if !known[name] {
				return Validationf("unknown permission %q", name)
			}
		}
	}

	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	if err := s.roles.ReplacePermissions(ctx, roleID, ids); err != nil {
		return err
	}
	s.gate.InvalidateRole(roleID)
	return nil
}

func (s *RoleService) assembleView(ctx context.Context, role *models.Role) (*RoleView, error) {
	perms, err := s.roles.PermissionsForRole(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return &RoleView{
		ID:          role.ID,
		Name:        role.Name,
		Description: fromNullString(role.Description),
		Permissions: names,
	}, nil
}
