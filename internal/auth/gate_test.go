package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/featherpress/featherpress/internal/models"
)

type stubSessionStore struct {
	sessions map[string]*models.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*models.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session *models.Session) error {
	s.sessions[session.Token] = session
	return nil
}

func (s *stubSessionStore) GetByToken(_ context.Context, token string) (*models.Session, error) {
	return s.sessions[token], nil
}

func (s *stubSessionStore) DeleteByToken(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type stubUserStore struct {
	users map[uuid.UUID]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return s.users[id], nil
}

type stubRoleStore struct {
	roles map[string]*models.Role
	perms map[int64][]string
}

func newStubRoleStore() *stubRoleStore {
	return &stubRoleStore{
		roles: make(map[string]*models.Role),
		perms: make(map[int64][]string),
	}
}

func (s *stubRoleStore) addRole(id int64, name string, perms ...string) *models.Role {
	role := &models.Role{ID: id, Name: name}
	s.roles[name] = role
	s.perms[id] = perms
	return role
}

func (s *stubRoleStore) GetByName(_ context.Context, name string) (*models.Role, error) {
	return s.roles[name], nil
}

func (s *stubRoleStore) PermissionsForRole(_ context.Context, roleID int64) ([]*models.Permission, error) {
	var out []*models.Permission
	for i, name := range s.perms[roleID] {
		out = append(out, &models.Permission{ID: int64(i + 1), Name: name})
	}
	return out, nil
}

type fakeCache struct {
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(key string) (string, error) {
	v, ok := c.entries[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) error {
	c.entries[key] = value.(string)
	return nil
}

func (c *fakeCache) Delete(key string) error {
	delete(c.entries, key)
	return nil
}

func newTestUser(roleID int64) *models.User {
	return &models.User{ID: uuid.New(), Username: "alice", RoleID: roleID}
}

func TestGate_RequirePermission(t *testing.T) {
	roles := newStubRoleStore()
	roles.addRole(1, models.PublicRoleName)
	roles.addRole(2, "user", "create_posts")
	roles.addRole(3, "admin", "create_posts", "update_site_settings")

	gate := NewGate(NewSessions(newStubSessionStore(), newStubUserStore(), time.Hour), roles, nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		identity   Identity
		permission string
		wantErr    error
	}{
		{
			name:       "user with permission allowed",
			identity:   Authenticated(newTestUser(2)),
			permission: "create_posts",
			wantErr:    nil,
		},
		{
			name:       "user without permission forbidden",
			identity:   Authenticated(newTestUser(2)),
			permission: "update_site_settings",
			wantErr:    ErrForbidden,
		},
		{
			name:       "admin allowed",
			identity:   Authenticated(newTestUser(3)),
			permission: "update_site_settings",
			wantErr:    nil,
		},
		{
			name:       "anonymous denied as unauthenticated",
			identity:   Anonymous(),
			permission: "update_site_settings",
			wantErr:    ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.RequirePermission(ctx, tt.identity, tt.permission)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("RequirePermission() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGate_RevocationVisibleImmediately(t *testing.T) {
	roles := newStubRoleStore()
	roles.addRole(1, models.PublicRoleName)
	roles.addRole(2, "user", "update_site_settings")

	gate := NewGate(NewSessions(newStubSessionStore(), newStubUserStore(), time.Hour), roles, nil)
	ctx := context.Background()
	id := Authenticated(newTestUser(2))

	if err := gate.RequirePermission(ctx, id, "update_site_settings"); err != nil {
		t.Fatalf("expected allow before revocation, got %v", err)
	}

	// Revoke the permission from the role; the next check must deny.
	roles.perms[2] = nil

	if err := gate.RequirePermission(ctx, id, "update_site_settings"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after revocation, got %v", err)
	}
}

func TestGate_CacheInvalidatedOnMutation(t *testing.T) {
	roles := newStubRoleStore()
	roles.addRole(1, models.PublicRoleName)
	roles.addRole(2, "user", "update_site_settings")

	cache := newFakeCache()
	gate := NewGate(NewSessions(newStubSessionStore(), newStubUserStore(), time.Hour), roles, cache)
	ctx := context.Background()
	id := Authenticated(newTestUser(2))

	if err := gate.RequirePermission(ctx, id, "update_site_settings"); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}

	// Without invalidation the fake cache would keep serving the old set.
	roles.perms[2] = nil
	gate.InvalidateRole(2)

	if err := gate.RequirePermission(ctx, id, "update_site_settings"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after revocation and invalidation, got %v", err)
	}
}

func TestGate_AnonymousUsesPublicRole(t *testing.T) {
	roles := newStubRoleStore()
	roles.addRole(1, models.PublicRoleName, "read_posts")
	roles.addRole(2, "user", "read_posts", "create_posts")

	gate := NewGate(NewSessions(newStubSessionStore(), newStubUserStore(), time.Hour), roles, nil)
	ctx := context.Background()

	perms, err := gate.EffectivePermissions(ctx, Anonymous())
	if err != nil {
		t.Fatalf("EffectivePermissions() error: %v", err)
	}
	if len(perms) != 1 || perms[0] != "read_posts" {
		t.Errorf("anonymous permissions = %v, want only the public role's set", perms)
	}

	if err := gate.RequirePermission(ctx, Anonymous(), "read_posts"); err != nil {
		t.Errorf("anonymous caller should hold the public role's permissions: %v", err)
	}
}

func TestGate_CurrentUser(t *testing.T) {
	users := newStubUserStore()
	sessionStore := newStubSessionStore()
	roles := newStubRoleStore()
	roles.addRole(1, models.PublicRoleName)

	user := newTestUser(1)
	users.users[user.ID] = user

	sessions := NewSessions(sessionStore, users, time.Hour)
	gate := NewGate(sessions, roles, nil)
	ctx := context.Background()

	session, err := sessions.Create(ctx, user.ID)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	// Valid token resolves to the user
	id, err := gate.CurrentUser(ctx, session.Token)
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	got, ok := id.User()
	if !ok || got.ID != user.ID {
		t.Errorf("CurrentUser() = %+v, want user %s", id, user.ID)
	}

	// Absent token is anonymous, not an error
	id, err = gate.CurrentUser(ctx, "")
	if err != nil || !id.IsAnonymous() {
		t.Errorf("CurrentUser(\"\") = (%+v, %v), want anonymous", id, err)
	}

	// Unknown token is anonymous, not an error
	id, err = gate.CurrentUser(ctx, "no-such-token")
	if err != nil || !id.IsAnonymous() {
		t.Errorf("CurrentUser(unknown) = (%+v, %v), want anonymous", id, err)
	}
}
