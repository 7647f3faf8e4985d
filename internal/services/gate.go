package services

import (
	"context"

	"github.com/featherpress/featherpress/internal/auth"
)

// Permission names used by the services. The catalog itself is seeded at
// setup and immutable afterwards.
const (
	PermUpdateSiteSettings = "update_site_settings"
	PermViewAllPosts       = "view_all_posts"
	PermEditAllPosts       = "edit_all_posts"
	PermModerateComments   = "moderate_comments"
	PermManageFiles        = "manage_files"
)

// PermissionGate is the authorization gate consumed by every service.
// *auth.Gate implements it.
type PermissionGate interface {
	RequirePermission(ctx context.Context, id auth.Identity, permission string) error
	EffectivePermissions(ctx context.Context, id auth.Identity) ([]string, error)
	InvalidateRole(roleID int64)
}

// holdsPermission is a boolean view of RequirePermission for callers that
// branch on an override instead of failing the request
func holdsPermission(ctx context.Context, gate PermissionGate, id auth.Identity, permission string) bool {
	return gate.RequirePermission(ctx, id, permission) == nil
}
