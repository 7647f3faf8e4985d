package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
)

// stubUserStore keeps users in memory and enforces username/email uniqueness
type stubUserStore struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	user := s.users[id]
	if user == nil {
		return nil
	}
	if v, ok := fields["display_name"]; ok {
		user.DisplayName.String = v.(string)
		user.DisplayName.Valid = true
	}
	if v, ok := fields["password_hash"]; ok {
		user.PasswordHash = v.(string)
	}
	return nil
}

// stubSessionIssuer records issued and revoked tokens
type stubSessionIssuer struct {
	issued  []*models.Session
	revoked []string
}

func (s *stubSessionIssuer) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	s.issued = append(s.issued, session)
	return session, nil
}

func (s *stubSessionIssuer) Destroy(ctx context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

// roleByName satisfies RoleFinder over a fixed map
type roleByName map[string]*models.Role

func (r roleByName) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r[name], nil
}

func newUserFixture() (*UserService, *stubUserStore, *stubSessionIssuer) {
	users := &stubUserStore{users: map[uuid.UUID]*models.User{}}
	sessions := &stubSessionIssuer{}
	roles := roleByName{defaultRoleName: {ID: 2, Name: defaultRoleName}}
	return NewUserService(users, roles, sessions), users, sessions
}

func TestUserService_RegisterAssignsDefaultRole(t *testing.T) {
	svc, _, _ := newUserFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.RoleID != 2 {
		t.Errorf("expected default role id 2, got %d", user.RoleID)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plaintext")
	}
	if !auth.CheckPassword(user.PasswordHash, "correct horse") {
		t.Error("stored hash does not verify the password")
	}
}

func TestUserService_RegisterValidatesInput(t *testing.T) {
	svc, _, _ := newUserFixture()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.c", Password: "long enough"}},
		{"missing email", RegisterInput{Username: "a", Password: "long enough"}},
		{"short password", RegisterInput{Username: "a", Email: "a@b.c", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUserService_RegisterDuplicateIsConflict(t *testing.T) {
	svc, _, _ := newUserFixture()

	input := RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct horse"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUserService_LoginIssuesSession(t *testing.T) {
	svc, _, sessions := newUserFixture()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.UserID != user.ID {
		t.Error("session issued for the wrong user")
	}
	if len(sessions.issued) != 1 {
		t.Errorf("expected one issued session, got %d", len(sessions.issued))
	}

	// login by email works too
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "correct horse"); err != nil {
		t.Errorf("email login failed: %v", err)
	}
}

func TestUserService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _, sessions := newUserFixture()

	if _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// wrong password and unknown account fail identically
	if _, _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody", "whatever"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for unknown account, got %v", err)
	}
	if len(sessions.issued) != 0 {
		t.Errorf("no session should be issued on failure, got %d", len(sessions.issued))
	}
}

func TestUserService_LogoutRevokesToken(t *testing.T) {
	svc, _, sessions := newUserFixture()

	if err := svc.Logout(context.Background(), "some-token"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-token" {
		t.Errorf("token was not revoked: %v", sessions.revoked)
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, users, _ := newUserFixture()

	registered, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), auth.Authenticated(registered), UpdateProfileInput{
		DisplayName: strPtr("Alice"),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.DisplayName.Valid || updated.DisplayName.String != "Alice" {
		t.Errorf("display name not applied: %+v", updated.DisplayName)
	}

	// password change re-hashes
	oldHash := users.users[registered.ID].PasswordHash
	if _, err := svc.UpdateProfile(context.Background(), auth.Authenticated(registered), UpdateProfileInput{
		Password: strPtr("an even longer one"),
	}); err != nil {
		t.Fatalf("password update failed: %v", err)
	}
	if users.users[registered.ID].PasswordHash == oldHash {
		t.Error("password hash unchanged after update")
	}

	if _, err := svc.UpdateProfile(context.Background(), auth.Anonymous(), UpdateProfileInput{}); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
