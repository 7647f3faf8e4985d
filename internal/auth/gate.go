package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// RoleStore resolves roles and their permission membership
type RoleStore interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]*models.Permission, error)
}

// PermissionCache is an optional short-lived cache for effective permission
// sets. Every role or membership mutation must call InvalidateRole so a
// revocation is visible on the very next check.
type PermissionCache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// permissionCacheTTL bounds staleness even if an invalidation is missed
const permissionCacheTTL = 30 * time.Second

// Gate resolves request identities and answers permission checks. Checks
// are role-scoped: revoking a permission from a role demotes every holder
// of that role on the next request.
type Gate struct {
	sessions *Sessions
	roles    RoleStore
	cache    PermissionCache
	logger   *zap.Logger
}

// NewGate creates an authorization gate. cache may be nil, in which case
// every check recomputes the permission set from the store.
func NewGate(sessions *Sessions, roles RoleStore, cache PermissionCache) *Gate {
	return &Gate{
		sessions: sessions,
		roles:    roles,
		cache:    cache,
		logger:   logging.WithComponent("auth-gate"),
	}
}

// CurrentUser resolves a bearer credential to an identity. An absent,
// unknown or expired token yields the anonymous identity; only store
// failures surface as errors. Callers that require authentication check
// IsAnonymous afterwards.
func (g *Gate) CurrentUser(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Anonymous(), nil
	}
	user, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return Anonymous(), nil
		}
		return Anonymous(), err
	}
	return Authenticated(user), nil
}

// EffectivePermissions computes the caller's permission set. Anonymous
// callers are evaluated against the public role, never any other.
func (g *Gate) EffectivePermissions(ctx context.Context, id Identity) ([]string, error) {
	roleID, err := g.roleID(ctx, id)
	if err != nil {
		return nil, err
	}

	if names, ok := g.cachedPermissions(roleID); ok {
		return names, nil
	}

	perms, err := g.roles.PermissionsForRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}

	g.storePermissions(roleID, names)
	return names, nil
}

// RequirePermission allows the call iff the caller's role holds the named
// permission. A denied anonymous caller gets ErrUnauthenticated so HTTP
// layers answer 401; a denied authenticated caller gets ErrForbidden (403).
// The two are never collapsed.
func (g *Gate) RequirePermission(ctx context.Context, id Identity, permission string) error {
	names, err := g.EffectivePermissions(ctx, id)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == permission {
			return nil
		}
	}
	if id.IsAnonymous() {
		return ErrUnauthenticated
	}
	user, _ := id.User()
	g.logger.Debug("permission denied",
		zap.String("user_id", user.ID.String()),
		zap.String("permission", permission))
	return ErrForbidden
}

// InvalidateRole drops a role's cached permission set. Role and membership
// mutations call this so edits take effect on the next request.
func (g *Gate) InvalidateRole(roleID int64) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Delete(permissionKey(roleID)); err != nil {
		g.logger.Debug("permission cache invalidation failed", zap.Error(err))
	}
}

func (g *Gate) roleID(ctx context.Context, id Identity) (int64, error) {
	if user, ok := id.User(); ok {
		return user.RoleID, nil
	}
	public, err := g.roles.GetByName(ctx, models.PublicRoleName)
	if err != nil {
		return 0, fmt.Errorf("failed to load public role: %w", err)
	}
	if public == nil {
		return 0, fmt.Errorf("public role is missing")
	}
	return public.ID, nil
}

func (g *Gate) cachedPermissions(roleID int64) ([]string, bool) {
	if g.cache == nil {
		return nil, false
	}
	raw, err := g.cache.Get(permissionKey(roleID))
	if err != nil {
		return nil, false
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false
	}
	return names, true
}

func (g *Gate) storePermissions(roleID int64, names []string) {
	if g.cache == nil {
		return
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return
	}
	if err := g.cache.Set(permissionKey(roleID), string(raw), permissionCacheTTL); err != nil {
		g.logger.Debug("permission cache write failed", zap.Error(err))
	}
}

func permissionKey(roleID int64) string {
	return "perms:role:" + strconv.FormatInt(roleID, 10)
}
